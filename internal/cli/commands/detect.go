package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatlens/pkg/detector"
	"github.com/ccollicutt/chatlens/pkg/parser"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output      string
	SampleSize  int
	ShowAll     bool
	WriteConfig string
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <file>",
		Short: "Detect which chat export layout a file uses",
		Long: `Analyze a file to identify the chat export layout it resembles.

Samples lines from the file and tests them against known export layouts.
Reports the detected layout with a confidence score and whether chatlens can
read it. For unsupported layouts a hint explains how to produce a readable
export.

Optionally generates a starter config file with --write-config.

Recognized layouts:
  - iOS export, 12-hour clock (supported)
  - iOS export, 24-hour clock
  - Android export, 12-hour and 24-hour clock
  - Bracketed ISO datetime

Example:
  chatlens detect _chat.txt
  chatlens detect --sample 500 _chat.txt
  chatlens detect -w chatlens.yaml _chat.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", 100, "Number of lines to sample")
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show all detected layouts, not just the best match")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	exportFile := args[0]
	ctx := commandContext(cmd)
	w := cmd.OutOrStdout()

	if _, err := os.Stat(exportFile); os.IsNotExist(err) {
		return fmt.Errorf("export file not found: %s", exportFile)
	}

	d := detector.New(detector.WithSampleSize(opts.SampleSize))

	result, err := d.DetectFromFile(ctx, exportFile)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	if opts.WriteConfig != "" {
		if err := writeStarterConfig(w, result, exportFile, opts.WriteConfig); err != nil {
			return err
		}
	}

	switch opts.Output {
	case "json":
		return outputDetectJSON(w, result, exportFile, opts)
	default:
		return outputDetectText(w, result, exportFile, opts)
	}
}

func outputDetectText(w io.Writer, result *detector.DetectionResult, exportFile string, opts *DetectOptions) error {
	var sb strings.Builder

	sb.WriteString("=== Export Layout Detection ===\n\n")
	fmt.Fprintf(&sb, "File: %s\n", exportFile)
	fmt.Fprintf(&sb, "Lines sampled: %d\n", result.SampledLines)
	fmt.Fprintf(&sb, "Lines with entry prefixes: %d\n\n", result.ParsedLines)

	if !result.HasMatch() {
		sb.WriteString("No chat export layout detected.\n\n")
		sb.WriteString("Tip: The file may not be a chat export.\n")
		sb.WriteString("Exports start each message with a timestamp, e.g. \"[1/2/23, 9:05:00 AM] Alice: hello\".\n")
		_, err := io.WriteString(w, sb.String())
		return err
	}

	best := result.BestMatch()
	fmt.Fprintf(&sb, "Detected Layout: %s\n", best.Layout.Name)
	fmt.Fprintf(&sb, "Confidence: %.1f%% (%d/%d lines matched)\n\n",
		best.Confidence*100, best.MatchCount, result.SampledLines)
	fmt.Fprintf(&sb, "Sample match:\n  %s\n", best.SampleLine)
	fmt.Fprintf(&sb, "Parsed as: %s\n\n", best.ParsedTime.Format("2006-01-02 15:04:05"))

	if best.Layout.Supported {
		sb.WriteString("Supported: yes\n")
		sb.WriteString("Run 'chatlens analyze " + exportFile + "' to analyze it.\n\n")
	} else {
		sb.WriteString("Supported: no\n")
		if best.Layout.Hint != "" {
			fmt.Fprintf(&sb, "Hint: %s\n", best.Layout.Hint)
		}
		sb.WriteString("\n")
	}

	if result.AmbiguityNote != "" {
		fmt.Fprintf(&sb, "Note: %s\n\n", result.AmbiguityNote)
	}

	if opts.ShowAll && len(result.Matches) > 1 {
		sb.WriteString("--- Alternative layouts detected ---\n")
		for i, m := range result.Matches[1:] {
			fmt.Fprintf(&sb, "%d. %s (%.1f%% confidence)\n", i+2, m.Layout.Name, m.Confidence*100)
			fmt.Fprintf(&sb, "   pattern: '%s'\n", m.Layout.PatternStr)
		}
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// JSONMatch represents a layout match in JSON output.
type JSONMatch struct {
	Name       string  `json:"name"`
	Pattern    string  `json:"pattern"`
	Confidence float64 `json:"confidence"`
	MatchCount int     `json:"match_count"`
	SampleLine string  `json:"sample_line"`
	Supported  bool    `json:"supported"`
	Ambiguous  bool    `json:"ambiguous,omitempty"`
	Hint       string  `json:"hint,omitempty"`
}

// JSONOutput represents the full JSON output.
type JSONOutput struct {
	File          string      `json:"file"`
	Matches       []JSONMatch `json:"matches"`
	SampledLines  int         `json:"sampled_lines"`
	ParsedLines   int         `json:"parsed_lines"`
	AmbiguityNote string      `json:"ambiguity_note,omitempty"`
}

func outputDetectJSON(w io.Writer, result *detector.DetectionResult, exportFile string, opts *DetectOptions) error {
	out := JSONOutput{
		File:          exportFile,
		SampledLines:  result.SampledLines,
		ParsedLines:   result.ParsedLines,
		AmbiguityNote: result.AmbiguityNote,
		Matches:       make([]JSONMatch, 0),
	}

	matches := result.Matches
	if !opts.ShowAll && len(matches) > 1 {
		matches = matches[:1] // Only show best match
	}

	for _, m := range matches {
		out.Matches = append(out.Matches, JSONMatch{
			Name:       m.Layout.Name,
			Pattern:    m.Layout.PatternStr,
			Confidence: m.Confidence,
			MatchCount: m.MatchCount,
			SampleLine: m.SampleLine,
			Supported:  m.Layout.Supported,
			Ambiguous:  m.Layout.Ambiguous,
			Hint:       m.Layout.Hint,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// writeStarterConfig generates a starter config file for a readable export.
func writeStarterConfig(w io.Writer, result *detector.DetectionResult, exportFile, configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}

	if !result.HasMatch() {
		return fmt.Errorf("cannot generate config: no export layout detected")
	}

	best := result.BestMatch()
	if !best.Layout.Supported {
		return fmt.Errorf("cannot generate config: %s is not supported", best.Layout.Name)
	}

	content := generateStarterConfig(exportFile, best)

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	_, _ = fmt.Fprintf(w, "Wrote starter config to: %s\n\n", configPath)
	return nil
}

// generateStarterConfig creates a YAML config template listing the built-in
// filters so they can be tuned.
func generateStarterConfig(exportFile string, match *detector.LayoutMatch) string {
	absExport := exportFile
	if abs, err := filepath.Abs(exportFile); err == nil {
		absExport = abs
	}

	var keywords, patterns strings.Builder
	for _, kw := range parser.DefaultSenderKeywords {
		fmt.Fprintf(&keywords, "    - %q\n", kw)
	}
	for _, p := range parser.DefaultBodyPatterns {
		fmt.Fprintf(&patterns, "    - '%s'\n", strings.ReplaceAll(p, "'", "''"))
	}

	return fmt.Sprintf(`# Chatlens Configuration
# Generated by: chatlens detect
# Export: %s
# Detected layout: %s (%.0f%% confidence)
#
# Usage: chatlens analyze --config <this file> %s

analytics:
  top_users: 5
  top_words: 10
  # parallel: true

# Extra stopwords replace the built-in English list when given.
# stopwords: [lol, ok]
# stopwords_file: ./stopwords.txt

# Entries whose sender contains a keyword, or whose body matches a pattern,
# are treated as system lines and dropped. Both lists are case-insensitive.
filters:
  sender_keywords:
%s  body_patterns:
%s
# webhooks:
#   - name: archive
#     url: https://example.com/hooks/chatlens
#     token: ${CHATLENS_WEBHOOK_TOKEN}
#     trigger: on_records

server:
  addr: ":8080"

log:
  level: info
`, absExport, match.Layout.Name, match.Confidence*100, absExport,
		keywords.String(), patterns.String())
}
