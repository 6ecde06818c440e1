package output

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/ccollicutt/chatlens/pkg/analyzer"
)

// heatmapShades renders a normalized heatmap cell, lightest first.
const heatmapShades = " .:-=+*#%@"

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	_, err := fmt.Fprintf(w, "chatlens: %s messages from %s participants (%s), %s system lines dropped\n",
		humanize.Comma(int64(report.Summary.Records)),
		humanize.Comma(int64(report.Summary.Participants)),
		report.Summary.Participant,
		humanize.Comma(int64(report.Summary.Dropped)))
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	r := report.Result

	// Header
	fmt.Fprintln(w, "=== chatlens Analysis Report ===")
	fmt.Fprintf(w, "Participant: %s\n", report.Summary.Participant)
	fmt.Fprintln(w)

	if r.Stats != nil {
		fmt.Fprintln(w, "[STATS]")
		fmt.Fprintf(w, "  Messages: %s\n", humanize.Comma(int64(r.Stats.Messages)))
		fmt.Fprintf(w, "  Words:    %s\n", humanize.Comma(int64(r.Stats.Words)))
		fmt.Fprintf(w, "  Media:    %s\n", humanize.Comma(int64(r.Stats.Media)))
		fmt.Fprintf(w, "  Links:    %s\n", humanize.Comma(int64(r.Stats.Links)))
		fmt.Fprintln(w)
	}

	if r.Busiest != nil {
		f.formatBusiest(r.Busiest, w)
	}

	if r.Has(analyzer.AggregateTimeline) {
		fmt.Fprintln(w, "[MONTHLY TIMELINE]")
		if len(r.Timeline) == 0 {
			fmt.Fprintln(w, "  No messages")
		}
		for _, p := range r.Timeline {
			fmt.Fprintf(w, "  %-16s %s\n", p.Label, humanize.Comma(int64(p.Count)))
		}
		fmt.Fprintln(w)
	}

	if r.Has(analyzer.AggregateWeekdays) {
		fmt.Fprintln(w, "[WEEKDAY ACTIVITY]")
		f.formatCategories(r.Weekdays, w)
	}

	if r.Has(analyzer.AggregateMonths) {
		fmt.Fprintln(w, "[MONTH ACTIVITY]")
		f.formatCategories(r.Months, w)
	}

	if r.Heatmap != nil {
		f.formatHeatmap(r.Heatmap, w)
	}

	if r.Vocabulary != nil {
		fmt.Fprintln(w, "[VOCABULARY]")
		if r.Vocabulary.OK {
			fmt.Fprintf(w, "  %s words available for a word cloud\n",
				humanize.Comma(int64(len(strings.Fields(r.Vocabulary.Text)))))
		} else {
			fmt.Fprintln(w, "  No text available for a word cloud")
		}
		fmt.Fprintln(w)
	}

	if r.Has(analyzer.AggregateCommonWords) {
		fmt.Fprintln(w, "[COMMON WORDS]")
		if len(r.CommonWords) == 0 {
			fmt.Fprintln(w, "  No words")
		}
		for i, wc := range r.CommonWords {
			fmt.Fprintf(w, "  %2d. %-20s %s\n", i+1, wc.Word, humanize.Comma(int64(wc.Count)))
		}
		fmt.Fprintln(w)
	}

	if r.Has(analyzer.AggregateEmoji) {
		fmt.Fprintln(w, "[EMOJI]")
		if len(r.Emoji) == 0 {
			fmt.Fprintln(w, "  No emoji")
		}
		for _, e := range r.Emoji {
			fmt.Fprintf(w, "  %s  %s (%.2f%%)\n", e.Emoji, humanize.Comma(int64(e.Count)), e.Percentage)
		}
		fmt.Fprintln(w)
	}

	// Summary
	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %s messages, %s participants, %s entries parsed, %s dropped\n",
		humanize.Comma(int64(report.Summary.Records)),
		humanize.Comma(int64(report.Summary.Participants)),
		humanize.Comma(int64(report.Summary.Entries)),
		humanize.Comma(int64(report.Summary.Dropped)))

	if f.opts.Verbose {
		fmt.Fprintf(w, "Run ID: %s\n", report.Metadata.RunID)
		for _, s := range report.Metadata.Sources {
			fmt.Fprintf(w, "Source: %s (%s entries, %s records)\n",
				s.Path, humanize.Comma(int64(s.Entries)), humanize.Comma(int64(s.Records)))
		}
		fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(1e6))
	}

	return nil
}

func (f *TextFormatter) formatBusiest(b *analyzer.Busiest, w io.Writer) {
	fmt.Fprintln(w, "[BUSIEST USERS]")
	if len(b.Top) == 0 {
		fmt.Fprintln(w, "  No messages")
		fmt.Fprintln(w)
		return
	}
	for _, sc := range b.Top {
		fmt.Fprintf(w, "  %-24s %s\n", sc.Sender, humanize.Comma(int64(sc.Count)))
	}
	if f.opts.Verbose {
		fmt.Fprintln(w, "  Share:")
		for _, s := range b.Table {
			fmt.Fprintf(w, "    %-22s %6.2f%%\n", s.Name, s.Percentage)
		}
	}
	fmt.Fprintln(w)
}

func (f *TextFormatter) formatCategories(rows []analyzer.CategoryCount, w io.Writer) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "  No messages")
	}
	for _, c := range rows {
		fmt.Fprintf(w, "  %-12s %s\n", c.Label, humanize.Comma(int64(c.Count)))
	}
	fmt.Fprintln(w)
}

func (f *TextFormatter) formatHeatmap(h *analyzer.Heatmap, w io.Writer) {
	fmt.Fprintln(w, "[ACTIVITY HEATMAP]")
	fmt.Fprintf(w, "  %-10s %s\n", "", "0         1         2   ")
	fmt.Fprintf(w, "  %-10s %s\n", "", "012345678901234567890123")
	for i, day := range h.Weekdays {
		var b strings.Builder
		for _, v := range h.Cells[i] {
			b.WriteByte(shade(v))
		}
		fmt.Fprintf(w, "  %-10s %s\n", day, b.String())
	}
	fmt.Fprintln(w)
}

// shade maps a value in [0,1] to a heatmap character.
func shade(v float64) byte {
	if v <= 0 {
		return heatmapShades[0]
	}
	i := int(v*float64(len(heatmapShades)-1) + 0.5)
	if i < 1 {
		i = 1
	}
	if i >= len(heatmapShades) {
		i = len(heatmapShades) - 1
	}
	return heatmapShades[i]
}
