package parser

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

// TimestampLayout is the Go layout of the bracketed export timestamp:
// month/day/2-digit-year, 12-hour clock with seconds and meridiem.
const TimestampLayout = "1/2/06, 3:04:05 PM"

// markerPattern matches one "[M/D/YY, H:MM:SS AM]" marker. The separators
// also accept the narrow no-break space newer exports put before AM/PM.
var markerPattern = regexp.MustCompile(
	`\[(\d{1,2}/\d{1,2}/\d{2,4},[\s\x{202F}\x{00A0}]+\d{1,2}:\d{2}:\d{2}[\s\x{202F}\x{00A0}]+[AP]M)\]`)

// ParseTimestamp converts a bracketed timestamp literal into a time.
// Runs of whitespace are collapsed to one ASCII space before parsing.
func ParseTimestamp(literal string) (time.Time, error) {
	return time.Parse(TimestampLayout, normalizeSpace(literal))
}

func normalizeSpace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				sb.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		sb.WriteRune(r)
	}
	return strings.TrimSpace(sb.String())
}
