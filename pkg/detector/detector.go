// Package detector identifies which chat export layout a file uses, so an
// unsupported export can be explained instead of silently rejected.
package detector

import (
	"bufio"
	"context"
	"os"
	"sort"
	"strings"
	"time"
)

// DetectionResult holds the result of analyzing an export.
type DetectionResult struct {
	Matches       []LayoutMatch // Layouts that matched, sorted by confidence descending
	SampledLines  int           // Number of lines sampled
	ParsedLines   int           // Number of lines with a recognized entry prefix
	AmbiguityNote string        // Warning about date ordering if applicable
}

// LayoutMatch represents a layout that matched with its confidence score.
type LayoutMatch struct {
	Layout     *ExportLayout
	Confidence float64   // 0.0 to 1.0 (share of sampled lines matched)
	MatchCount int       // Number of lines that matched
	SampleLine string    // Example line that matched
	ParsedTime time.Time // Parsed timestamp from sample
}

// Detector samples exports to identify their layout.
type Detector struct {
	layouts    []*ExportLayout
	sampleSize int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample (default 100).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// New creates a new Detector with default layouts.
func New(opts ...Option) *Detector {
	d := &Detector{
		layouts:    DefaultLayouts(),
		sampleSize: 100,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile samples an export file and returns detected layouts.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	lines, err := d.sampleFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return d.DetectFromLines(lines), nil
}

// DetectFromText samples export text already held in memory.
func (d *Detector) DetectFromText(text string) *DetectionResult {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if len(lines) >= d.sampleSize {
			break
		}
		if cleanLine(line) != "" {
			lines = append(lines, line)
		}
	}
	return d.DetectFromLines(lines)
}

// DetectFromLines analyzes a slice of export lines.
func (d *Detector) DetectFromLines(lines []string) *DetectionResult {
	result := &DetectionResult{
		SampledLines: len(lines),
	}

	if len(lines) == 0 {
		return result
	}

	type layoutStats struct {
		layout     *ExportLayout
		order      int
		matchCount int
		sampleLine string
		parsedTime time.Time
	}

	stats := make(map[string]*layoutStats)

	for _, line := range lines {
		line = cleanLine(line)
		if line == "" {
			continue
		}

		for i, layout := range d.layouts {
			matches := layout.Pattern.FindStringSubmatch(line)
			if len(matches) < 2 {
				continue
			}

			parsedTime, ok := parseTimestamp(matches[1], layout.Layouts)
			if !ok {
				continue
			}

			key := layout.Name
			if stats[key] == nil {
				stats[key] = &layoutStats{
					layout:     layout,
					order:      i,
					sampleLine: line,
					parsedTime: parsedTime,
				}
			}
			stats[key].matchCount++
		}
	}

	ordered := make([]*layoutStats, 0, len(stats))
	for _, s := range stats {
		ordered = append(ordered, s)
	}
	// Sort by match count descending, then by declaration order (more specific first)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].matchCount != ordered[j].matchCount {
			return ordered[i].matchCount > ordered[j].matchCount
		}
		return ordered[i].order < ordered[j].order
	})

	for _, s := range ordered {
		result.Matches = append(result.Matches, LayoutMatch{
			Layout:     s.layout,
			Confidence: float64(s.matchCount) / float64(len(lines)),
			MatchCount: s.matchCount,
			SampleLine: s.sampleLine,
			ParsedTime: s.parsedTime,
		})
	}

	if len(result.Matches) > 0 {
		result.ParsedLines = result.Matches[0].MatchCount
	}

	if len(result.Matches) > 0 && result.Matches[0].Layout.Ambiguous {
		result.AmbiguityNote = "This layout has date ordering ambiguity (MM/DD vs DD/MM). " +
			"Only month-first dates with a 12-hour clock are accepted."
	}

	return result
}

// cleanLine trims whitespace and the byte-order and direction marks some
// exports put at the start of a line.
func cleanLine(line string) string {
	return strings.TrimSpace(strings.TrimLeft(line, "\ufeff\u200e\u200f"))
}

// parseTimestamp tries each layout after collapsing whitespace runs.
func parseTimestamp(literal string, layouts []string) (time.Time, bool) {
	normalized := strings.Join(strings.FieldsFunc(literal, isSpace), " ")
	for _, layout := range layouts {
		if t, err := time.Parse(layout, normalized); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\u00a0' || r == '\u202f'
}

// sampleFile reads up to sampleSize non-blank lines from a file.
func (d *Detector) sampleFile(_ context.Context, path string) ([]string, error) {
	// #nosec G304 - path is provided by user via CLI
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() && len(lines) < d.sampleSize {
		line := scanner.Text()
		if cleanLine(line) != "" {
			lines = append(lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

// BestMatch returns the highest confidence match, or nil if none found.
func (r *DetectionResult) BestMatch() *LayoutMatch {
	if len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}

// HasMatch returns true if at least one layout matched.
func (r *DetectionResult) HasMatch() bool {
	return len(r.Matches) > 0
}

// Supported returns true if the best match is a layout the parser accepts.
func (r *DetectionResult) Supported() bool {
	best := r.BestMatch()
	return best != nil && best.Layout.Supported
}
