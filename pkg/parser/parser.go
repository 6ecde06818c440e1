package parser

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Parser converts export text into records.
type Parser struct {
	filter *SystemFilter
}

// Option configures a Parser.
type Option func(*Parser)

// WithFilter replaces the default system-line filter.
func WithFilter(f *SystemFilter) Option {
	return func(p *Parser) {
		if f != nil {
			p.filter = f
		}
	}
}

// New creates a Parser.
func New(opts ...Option) *Parser {
	p := &Parser{filter: DefaultSystemFilter()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses text with the default filter and returns the retained records.
func Parse(text string) ([]Record, error) {
	res, err := New().ParseDetailed(text)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// Parse returns the retained records of text.
func (p *Parser) Parse(text string) ([]Record, error) {
	res, err := p.ParseDetailed(text)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// ParseDetailed parses text and keeps the filtering decision for every
// entry. It fails with ErrInvalidExport when no entries are found and with
// a *TimestampError when any entry has a malformed timestamp.
func (p *Parser) ParseDetailed(text string) (*Result, error) {
	entries := Tokenize(text)
	if len(entries) == 0 {
		return nil, ErrInvalidExport
	}

	res := &Result{
		Records:   make([]Record, 0, len(entries)),
		Decisions: make([]Decision, 0, len(entries)),
		Entries:   len(entries),
	}

	for _, entry := range entries {
		ts, err := ParseTimestamp(entry.Timestamp)
		if err != nil {
			return nil, &TimestampError{Index: entry.Index, Literal: entry.Timestamp, Err: err}
		}

		candidate, sender, body := splitSender(entry.Rest)
		rec := NewRecord(ts, sender, body)
		reason, match := p.filter.Check(candidate, sender, body)

		res.Decisions = append(res.Decisions, Decision{
			Entry:  entry,
			Record: rec,
			Reason: reason,
			Match:  match,
		})
		if reason == ReasonKept {
			res.Records = append(res.Records, rec)
		}
	}

	log.Debug().
		Int("entries", res.Entries).
		Int("records", len(res.Records)).
		Msg("parsed export")

	return res, nil
}

// splitSender splits the text after a marker on its first colon. It returns
// the candidate used for keyword matching, the sender and the body. Entries
// without a colon belong to GroupNotification and match on their full text.
func splitSender(rest string) (candidate, sender, body string) {
	rest = strings.TrimSpace(rest)
	name, msg, found := strings.Cut(rest, ":")
	if !found {
		return rest, GroupNotification, rest
	}
	name = strings.TrimSpace(strings.ReplaceAll(strings.TrimSpace(name), "~", ""))
	return name, name, strings.TrimSpace(msg)
}

// String implements fmt.Stringer for log output.
func (d Decision) String() string {
	if d.Match == "" {
		return fmt.Sprintf("#%d %s", d.Entry.Index, d.Reason)
	}
	return fmt.Sprintf("#%d %s (%s)", d.Entry.Index, d.Reason, d.Match)
}
