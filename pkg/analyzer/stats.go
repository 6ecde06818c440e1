package analyzer

import (
	"strings"

	"mvdan.cc/xurls/v2"

	"github.com/ccollicutt/chatlens/pkg/parser"
)

// urlPattern finds URLs with or without a scheme.
var urlPattern = xurls.Relaxed()

// FetchStats returns message, word, media and link counts for the
// selected participant.
func FetchStats(participant string, records []parser.Record) Stats {
	var s Stats
	for _, r := range selectRecords(participant, records) {
		s.Messages++
		s.Words += len(strings.Fields(r.Body))
		if IsMedia(r.Body) {
			s.Media++
		}
		s.Links += len(urlPattern.FindAllString(r.Body, -1))
	}
	return s
}

