package commands

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatlens/pkg/config"
	"github.com/ccollicutt/chatlens/pkg/detector"
	"github.com/ccollicutt/chatlens/pkg/parser"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	ConfigFile string
	Verbose    bool
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose <export>",
		Short: "Explain how an export is parsed and filtered",
		Long: `Diagnose how a chat export is read.

This command checks an export for common problems:
- File existence, size and UTF-8 encoding
- The export layout the file resembles
- Timestamp parsing of every entry
- How many entries each system-line filter drops
- Configured webhooks (with --config)

With -v every entry's filter decision is listed.

Example:
  chatlens diagnose chat.txt
  chatlens diagnose -v --config chatlens.yaml chat.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagnose(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Configuration file (defaults are used when omitted)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")

	return cmd
}

func runDiagnose(cmd *cobra.Command, exportPath string, opts *DiagnoseOptions) error {
	w := cmd.OutOrStdout()
	results := []DiagnosticResult{}

	// 1. Configuration
	cfg, result := checkConfig(cmd, opts.ConfigFile)
	results = append(results, result)
	if result.Status == "error" {
		printDiagnostics(w, results, opts)
		return nil
	}

	// 2. Export file
	result = checkExportExists(exportPath)
	results = append(results, result)
	if result.Status == "error" {
		printDiagnostics(w, results, opts)
		return nil
	}

	// 3. Encoding
	text, result := checkExportEncoding(exportPath)
	results = append(results, result)
	if result.Status == "error" {
		printDiagnostics(w, results, opts)
		return nil
	}

	// 4. Layout
	results = append(results, checkExportLayout(text))

	// 5. Parse and filter
	results = append(results, checkParse(cfg, text, opts)...)

	// 6. Webhooks
	results = append(results, checkWebhooks(cfg, opts)...)

	printDiagnostics(w, results, opts)
	return nil
}

func checkConfig(cmd *cobra.Command, path string) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Configuration",
	}

	cfg, err := loadConfig(cmd, path)
	if err != nil {
		result.Status = "error"
		result.Message = err.Error()
		if strings.Contains(err.Error(), "yaml") {
			result.Suggests = []string{
				"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			}
		}
		if errors.Is(err, os.ErrNotExist) {
			result.Suggests = []string{"Check the config file path is correct"}
		}
		return nil, result
	}

	result.Status = "ok"
	if path == "" {
		result.Message = "Using built-in defaults"
	} else {
		result.Message = fmt.Sprintf("Loaded %s", path)
	}
	keywords := fmt.Sprintf("Sender keywords: %d", len(cfg.Filters.SenderKeywords))
	if cfg.Filters.SenderKeywords == nil {
		keywords = fmt.Sprintf("Sender keywords: %d (built-in)", len(parser.DefaultSenderKeywords))
	}
	result.Details = []string{
		fmt.Sprintf("Stopwords: %d", len(cfg.ResolvedStopwords())),
		keywords,
		fmt.Sprintf("Body patterns: %d", len(cfg.Filters.CompiledBodyPatterns())),
	}
	return cfg, result
}

func checkExportExists(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Export File",
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = "error"
		result.Message = fmt.Sprintf("Export file not found: %s", path)
		result.Suggests = []string{"Check the file path is correct"}
		return result
	}
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access export file: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return result
	}
	if info.IsDir() {
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
		result.Suggests = []string{"Pass the exported _chat.txt file, not its folder"}
		return result
	}
	if info.Size() == 0 {
		result.Status = "warning"
		result.Message = "Export file is empty (0 bytes)"
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Found: %s (%s)", path, humanize.Bytes(uint64(info.Size())))
	return result
}

func checkExportEncoding(path string) (string, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Encoding",
	}

	text, err := parser.ReadExport(path)
	if err != nil {
		result.Status = "error"
		result.Message = err.Error()
		if errors.Is(err, parser.ErrInvalidExport) {
			result.Suggests = []string{"Re-export the chat; exports are always UTF-8 text"}
		}
		return "", result
	}

	result.Status = "ok"
	result.Message = "Valid UTF-8"
	return text, result
}

func checkExportLayout(text string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Export Layout",
	}

	det := detector.New().DetectFromText(text)
	if !det.HasMatch() {
		result.Status = "error"
		result.Message = "No known export layout recognized"
		result.Suggests = []string{"The file does not look like a chat export"}
		return result
	}

	best := det.BestMatch()
	result.Details = []string{
		fmt.Sprintf("Confidence: %.1f%% (%d/%d lines)", best.Confidence*100, best.MatchCount, det.SampledLines),
		"Sample: " + truncate(best.SampleLine, 80),
	}
	if det.AmbiguityNote != "" {
		result.Details = append(result.Details, det.AmbiguityNote)
	}

	if !best.Layout.Supported {
		result.Status = "error"
		result.Message = fmt.Sprintf("%s (not supported)", best.Layout.Name)
		if best.Layout.Hint != "" {
			result.Suggests = []string{best.Layout.Hint}
		}
		return result
	}

	result.Status = "ok"
	result.Message = best.Layout.Name
	return result
}

func checkParse(cfg *config.Config, text string, opts *DiagnoseOptions) []DiagnosticResult {
	result := DiagnosticResult{
		Check: "Parse",
	}

	res, err := parser.New(parser.WithFilter(cfg.SystemFilter())).ParseDetailed(text)
	if err != nil {
		result.Status = "error"
		result.Message = err.Error()

		var tsErr *parser.TimestampError
		switch {
		case errors.As(err, &tsErr):
			result.Details = []string{
				fmt.Sprintf("Entry: %d", tsErr.Index),
				fmt.Sprintf("Timestamp: %q", tsErr.Literal),
			}
			result.Suggests = []string{"Run 'chatlens detect <file>' to check the timestamp layout"}
		case errors.Is(err, parser.ErrInvalidExport):
			result.Suggests = []string{"No bracketed timestamp entries were found"}
		}
		return []DiagnosticResult{result}
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("%s entries, %s messages kept",
		humanize.Comma(int64(res.Entries)), humanize.Comma(int64(len(res.Records))))
	if res.Entries > 0 && len(res.Records) == 0 {
		result.Status = "warning"
		result.Message = fmt.Sprintf("All %d entries were filtered out", res.Entries)
		result.Suggests = []string{"Review filters.sender_keywords and filters.body_patterns"}
	}

	results := []DiagnosticResult{result}

	dropped := res.Dropped()
	filterResult := DiagnosticResult{
		Check:   "System Filter",
		Status:  "ok",
		Message: "No entries dropped",
	}
	if len(dropped) > 0 {
		total := 0
		reasons := make([]string, 0, len(dropped))
		for reason, n := range dropped {
			total += n
			reasons = append(reasons, string(reason))
		}
		sort.Strings(reasons)

		filterResult.Message = fmt.Sprintf("%d entries dropped", total)
		for _, reason := range reasons {
			filterResult.Details = append(filterResult.Details,
				fmt.Sprintf("%s: %d", reason, dropped[parser.DropReason(reason)]))
		}
	}
	if opts.Verbose {
		for _, d := range res.Decisions {
			filterResult.Details = append(filterResult.Details, truncate(d.String(), 80))
		}
	}
	results = append(results, filterResult)

	return results
}

func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) {
	_, _ = fmt.Fprintln(w, "=== Chatlens Export Diagnostics ===")
	_, _ = fmt.Fprintln(w)

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		var icon string
		switch r.Status {
		case "ok":
			icon = "PASS"
			okCount++
		case "warning":
			icon = "WARN"
			warnCount++
		case "error":
			icon = "FAIL"
			errCount++
		}

		_, _ = fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		_, _ = fmt.Fprintf(w, "    %s\n", r.Message)

		if opts.Verbose || r.Status != "ok" || r.Check == "System Filter" {
			for _, d := range r.Details {
				_, _ = fmt.Fprintf(w, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			_, _ = fmt.Fprintf(w, "      Hint: %s\n", s)
		}

		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintln(w, "---")
	_, _ = fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		_, _ = fmt.Fprintln(w, "\nThe export cannot be analyzed until the errors above are fixed.")
	} else if warnCount > 0 {
		_, _ = fmt.Fprintln(w, "\nThe export can be analyzed but has warnings.")
	} else {
		_, _ = fmt.Fprintln(w, "\nThe export looks good!")
	}
}

func checkWebhooks(cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	if len(cfg.Webhooks) == 0 {
		// Webhooks are optional, just note they're not configured
		if opts.Verbose {
			results = append(results, DiagnosticResult{
				Check:   "Webhooks",
				Status:  "ok",
				Message: "No webhooks configured (optional)",
			})
		}
		return results
	}

	for _, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		result := DiagnosticResult{
			Check: fmt.Sprintf("Webhook: %s", name),
		}

		issues := []string{}
		warnings := []string{}

		if wh.URL == "" {
			issues = append(issues, "Missing url")
		} else {
			u, err := url.Parse(wh.URL)
			if err != nil {
				issues = append(issues, fmt.Sprintf("Invalid URL: %v", err))
			} else if u.Scheme != "http" && u.Scheme != "https" {
				issues = append(issues, fmt.Sprintf("URL scheme must be http or https, got %q", u.Scheme))
			} else if u.Host == "" {
				issues = append(issues, "URL must have a host")
			}
		}

		if wh.Trigger != "" {
			switch wh.Trigger {
			case config.WebhookTriggerOnRecords, config.WebhookTriggerAlways, config.WebhookTriggerNever:
			default:
				issues = append(issues, fmt.Sprintf("Invalid trigger %q (use on_records, always, or never)", wh.Trigger))
			}
		}

		// Tokens are expanded on load, so a leading $ means the variable was unset
		if strings.HasPrefix(wh.Token, "$") {
			warnings = append(warnings, fmt.Sprintf("Token appears to be an unresolved env var: %s", wh.Token))
		}

		if len(issues) > 0 {
			result.Status = "error"
			result.Message = fmt.Sprintf("%d configuration issue(s)", len(issues))
			result.Details = issues
		} else if len(warnings) > 0 {
			result.Status = "warning"
			result.Message = fmt.Sprintf("%d warning(s)", len(warnings))
			result.Details = warnings
		} else {
			result.Status = "ok"
			result.Message = fmt.Sprintf("Trigger: %s", wh.Trigger)
			if opts.Verbose {
				result.Details = []string{
					fmt.Sprintf("URL: %s", wh.URL),
					fmt.Sprintf("Timeout: %s", wh.Timeout),
				}
				if wh.Token != "" {
					result.Details = append(result.Details, "Token: configured")
				}
			}
		}

		results = append(results, result)
	}

	// Optionally test webhook connectivity
	if opts.Verbose {
		for _, wh := range cfg.Webhooks {
			if wh.URL == "" {
				continue
			}

			name := wh.Name
			if name == "" {
				name = wh.URL
			}

			result := checkWebhookConnectivity(wh)
			result.Check = fmt.Sprintf("Webhook Connectivity: %s", name)
			results = append(results, result)
		}
	}

	return results
}

func checkWebhookConnectivity(wh config.WebhookConfig) DiagnosticResult {
	result := DiagnosticResult{}

	// A HEAD request is enough to see whether the endpoint answers
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequest(http.MethodHead, wh.URL, nil)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot create request: %v", err)
		return result
	}

	if wh.Token != "" {
		req.Header.Set("Authorization", "Bearer "+wh.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot connect: %v", err)
		result.Suggests = []string{
			"Check if the webhook URL is correct",
			"Verify network connectivity",
		}
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.Status = "ok"
		result.Message = fmt.Sprintf("Reachable (status %d)", resp.StatusCode)
	} else {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Reachable but returned status %d", resp.StatusCode)
		result.Suggests = []string{
			"The endpoint may require POST method (will work during actual webhook send)",
			"Check authentication if using a token",
		}
	}

	return result
}

// truncate shortens s to maxLen runes.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
