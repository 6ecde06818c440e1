package parser

import (
	"regexp"
	"strings"
)

// DefaultSenderKeywords mark an entry as a system line when found anywhere in
// its sender (case-insensitive).
var DefaultSenderKeywords = []string{
	"You",
	"Messages and calls are end-to-end encrypted",
	"created this group",
	"added",
	"removed",
	"left",
	"changed",
	"deleted this message",
	"This message was deleted",
	"This message was edited",
	"image omitted",
	"video omitted",
	"audio omitted",
	"document omitted",
	"sticker omitted",
	"GIF omitted",
	"Waiting for this message",
}

// DefaultBodyPatterns mark an entry as a system line when its body matches
// (case-insensitive).
var DefaultBodyPatterns = []string{
	`^\s*$`,
	`Messages and calls are end-to-end encrypted`,
	`created this group`,
	`added you`,
	`changed the`,
	`Security code changed`,
}

// groupLabelPattern matches senders that look like an all-caps group label.
// A contact saved with an all-caps name is dropped too.
var groupLabelPattern = regexp.MustCompile(`^[A-Z\s]+$`)

// SystemFilter decides which entries are system or service lines.
type SystemFilter struct {
	keywords     []string
	rawKeywords  []string
	bodyPatterns []*regexp.Regexp
}

// NewSystemFilter creates a filter from sender keywords and compiled body
// patterns. Patterns should already carry any flags they need.
func NewSystemFilter(senderKeywords []string, bodyPatterns []*regexp.Regexp) *SystemFilter {
	f := &SystemFilter{
		keywords:     make([]string, 0, len(senderKeywords)),
		rawKeywords:  make([]string, 0, len(senderKeywords)),
		bodyPatterns: bodyPatterns,
	}
	for _, kw := range senderKeywords {
		if kw == "" {
			continue
		}
		f.keywords = append(f.keywords, strings.ToLower(kw))
		f.rawKeywords = append(f.rawKeywords, kw)
	}
	return f
}

// DefaultSystemFilter returns the filter built from the default markers.
func DefaultSystemFilter() *SystemFilter {
	patterns := make([]*regexp.Regexp, len(DefaultBodyPatterns))
	for i, p := range DefaultBodyPatterns {
		patterns[i] = regexp.MustCompile(`(?i)` + p)
	}
	return NewSystemFilter(DefaultSenderKeywords, patterns)
}

// Check classifies an entry given its sender candidate and body. It returns
// ReasonKept when the entry should be retained, together with the marker
// that triggered a drop otherwise.
func (f *SystemFilter) Check(candidate, sender, body string) (DropReason, string) {
	lower := strings.ToLower(candidate)
	for i, kw := range f.keywords {
		if strings.Contains(lower, kw) {
			return ReasonSenderKeyword, f.rawKeywords[i]
		}
	}

	if groupLabelPattern.MatchString(candidate) {
		return ReasonGroupLabel, candidate
	}

	for _, re := range f.bodyPatterns {
		if re.MatchString(body) {
			return ReasonSystemBody, re.String()
		}
	}

	if strings.TrimSpace(sender) == "" {
		return ReasonBlankSender, ""
	}
	return ReasonKept, ""
}
