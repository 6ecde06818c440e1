package analyzer

import (
	"strings"
	"unicode/utf8"

	"github.com/ccollicutt/chatlens/pkg/parser"
)

// DefaultTopWords is the number of entries CommonWords returns by default.
const DefaultTopWords = 10

// asciiPunctuation is the set stripped from both ends of a token.
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// directionalMarks are invisible bidi controls exports insert around names
// and numbers.
var directionalMarks = strings.NewReplacer(
	"\u200e", "", "\u200f", "",
	"\u202a", "", "\u202b", "", "\u202c", "", "\u202d", "", "\u202e", "",
)

// Stopwords is a case-insensitive set of words excluded from CommonWords.
type Stopwords map[string]struct{}

// NewStopwords builds a stopword set. Entries are lowercased.
func NewStopwords(words []string) Stopwords {
	s := make(Stopwords, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			s[w] = struct{}{}
		}
	}
	return s
}

// Contains reports whether the lowercase form of word is a stopword.
func (s Stopwords) Contains(word string) bool {
	_, ok := s[strings.ToLower(word)]
	return ok
}

// Vocabulary joins the bodies eligible for a word cloud with single
// spaces. It excludes group notifications, media placeholders, deleted and
// pending messages, and blank bodies. ok is false when nothing remains.
func Vocabulary(participant string, records []parser.Record) (string, bool) {
	var parts []string
	for _, r := range selectRecords(participant, records) {
		if r.IsSystem() || IsMedia(r.Body) || isBlank(r.Body) {
			continue
		}
		if strings.Contains(r.Body, deletedMarker) || strings.Contains(r.Body, waitingMarker) {
			continue
		}
		parts = append(parts, r.Body)
	}

	text := strings.Join(parts, " ")
	if isBlank(text) {
		return "", false
	}
	return text, true
}

// CommonWords returns the n most frequent words for the selection after
// removing stopwords and surrounding punctuation. Ties keep first-seen
// order. A non-positive n uses DefaultTopWords.
func CommonWords(participant string, records []parser.Record, stopwords Stopwords, n int) []WordCount {
	if n <= 0 {
		n = DefaultTopWords
	}

	c := newCounter()
	for _, r := range selectRecords(participant, records) {
		if !eligibleForWords(r) {
			continue
		}
		for _, tok := range strings.Fields(directionalMarks.Replace(r.Body)) {
			if stopwords.Contains(tok) {
				continue
			}
			tok = strings.Trim(tok, asciiPunctuation)
			if utf8.RuneCountInString(tok) <= 1 || isAllPunctuation(tok) {
				continue
			}
			c.add(tok)
		}
	}

	words := []WordCount{}
	for _, w := range c.ranked() {
		if len(words) == n {
			break
		}
		words = append(words, WordCount{Word: w, Count: c.counts[w]})
	}
	return words
}

func eligibleForWords(r parser.Record) bool {
	if r.IsSystem() || IsMedia(r.Body) || isBlank(r.Body) {
		return false
	}
	for _, marker := range []string{deletedMarker, waitingMarker, editedMarker} {
		if strings.Contains(r.Body, marker) {
			return false
		}
	}
	return true
}

func isAllPunctuation(s string) bool {
	for _, r := range s {
		if !strings.ContainsRune(asciiPunctuation, r) {
			return false
		}
	}
	return true
}
