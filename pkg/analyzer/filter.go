package analyzer

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/ccollicutt/chatlens/pkg/parser"
)

// mediaPattern matches the placeholder left where an attachment was omitted.
var mediaPattern = regexp.MustCompile(`\b(?:image|video|audio|document|sticker) omitted\b`)

const (
	deletedMarker = "This message was deleted"
	waitingMarker = "Waiting for this message"
	editedMarker  = "This message was edited"
)

// selectRecords returns the records sent by participant. Overall or an
// empty participant selects everything. The input slice is never modified.
func selectRecords(participant string, records []parser.Record) []parser.Record {
	if participant == "" || participant == Overall {
		return records
	}
	selected := make([]parser.Record, 0, len(records))
	for _, r := range records {
		if r.Sender == participant {
			selected = append(selected, r)
		}
	}
	return selected
}

// IsMedia reports whether body is an omitted-attachment placeholder.
func IsMedia(body string) bool {
	return mediaPattern.MatchString(body)
}

// Participants returns the selector list: Overall followed by every
// distinct sender in ascending order.
func Participants(records []parser.Record) []string {
	seen := make(map[string]bool)
	var senders []string
	for _, r := range records {
		if !seen[r.Sender] {
			seen[r.Sender] = true
			senders = append(senders, r.Sender)
		}
	}
	sort.Strings(senders)
	return append([]string{Overall}, senders...)
}

// percentage returns part/total*100 rounded to two decimals.
func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*100*100) / 100
}

// counter tallies keys and remembers first-seen order for tie breaking.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

func (c *counter) total() int {
	n := 0
	for _, v := range c.counts {
		n += v
	}
	return n
}

// ranked returns keys by count descending, ties in first-seen order.
func (c *counter) ranked() []string {
	keys := append([]string(nil), c.order...)
	sort.SliceStable(keys, func(i, j int) bool {
		return c.counts[keys[i]] > c.counts[keys[j]]
	})
	return keys
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
