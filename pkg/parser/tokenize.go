package parser

import (
	"unicode"
	"unicode/utf8"
)

// Tokenize splits an export into raw entries. Each entry runs from its
// timestamp marker to the next marker or the end of the text, so bodies may
// span lines. Text before the first marker is ignored, as is a marker that is
// not followed by whitespace (it still ends the previous entry).
func Tokenize(text string) []RawEntry {
	locs := markerPattern.FindAllStringSubmatchIndex(text, -1)
	entries := make([]RawEntry, 0, len(locs))

	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		rest := text[loc[1]:end]

		r, _ := utf8.DecodeRuneInString(rest)
		if rest == "" || !unicode.IsSpace(r) {
			continue
		}

		entries = append(entries, RawEntry{
			Index:     len(entries),
			Timestamp: text[loc[2]:loc[3]],
			Rest:      rest,
		})
	}
	return entries
}
