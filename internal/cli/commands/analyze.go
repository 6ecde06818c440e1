package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatlens/pkg/analyzer"
	"github.com/ccollicutt/chatlens/pkg/config"
	"github.com/ccollicutt/chatlens/pkg/output"
	"github.com/ccollicutt/chatlens/pkg/parser"
	"github.com/ccollicutt/chatlens/pkg/webhook"
)

// AnalyzeOptions holds command-line options for the analyze command.
type AnalyzeOptions struct {
	ConfigFile  string
	Participant string
	Output      string
	Only        []string
	Verbose     bool
	Quiet       bool
	Parallel    bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <export>...",
		Short: "Analyze one or more chat exports",
		Long: `Parse chat exports and report statistics, activity and vocabulary.

Several exports (or glob patterns) are concatenated in file name order and
analyzed as one conversation. System lines such as encryption notices and
group events are dropped before analysis.

Aggregates (select with --only):
  ` + strings.Join(aggregateNames(), ", ") + `

Exit codes:
  0 - Analysis completed
  1 - An input is not a valid chat export
  2 - Configuration or runtime error`,
		Example: `  chatlens analyze chat.txt
  chatlens analyze --participant Alice -o json chat.txt
  chatlens analyze --only stats,emoji_usage 'exports/*.txt'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Configuration file (defaults are used when omitted)")
	cmd.Flags().StringVarP(&opts.Participant, "participant", "p", analyzer.Overall, "Limit analysis to one participant")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringSliceVar(&opts.Only, "only", nil, "Compute only the named aggregate(s)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Include run metadata and per-export parse counts")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")
	cmd.Flags().BoolVar(&opts.Parallel, "parallel", false, "Compute aggregates concurrently")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", string(config.WebhookTriggerOnRecords),
		"When to fire webhook (on_records|always|never)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts *AnalyzeOptions) error {
	ctx := commandContext(cmd)

	cfg, err := loadConfig(cmd, opts.ConfigFile)
	if err != nil {
		return err
	}

	// Flag errors surface before any export is read
	formatter, err := createFormatter(opts)
	if err != nil {
		return err
	}
	webhooks, err := collectWebhooks(cfg, opts)
	if err != nil {
		return err
	}

	analyzerOpts := []analyzer.AnalyzerOption{
		analyzer.WithParticipant(opts.Participant),
	}
	if len(opts.Only) > 0 {
		analyzerOpts = append(analyzerOpts, analyzer.WithAggregates(opts.Only))
	}
	if opts.Parallel {
		analyzerOpts = append(analyzerOpts, analyzer.WithParallel(true))
	}

	a, err := analyzer.NewAnalyzer(cfg, analyzerOpts...)
	if err != nil {
		return fmt.Errorf("creating analyzer: %w", err)
	}

	exports, err := parseExports(args, parser.New(parser.WithFilter(cfg.SystemFilter())))
	if err != nil {
		reportInvalidExport(cmd.ErrOrStderr(), err)
		return err
	}

	result, err := a.Analyze(ctx, exports.Records)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	report := output.NewReport(result, opts.ConfigFile, exports.Sources)

	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	// Webhook failures are logged, never fatal
	webhook.NewClient().Dispatch(ctx, report, webhooks)

	return nil
}

func createFormatter(opts *AnalyzeOptions) (output.Formatter, error) {
	return output.NewFormatter(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
}

// collectWebhooks merges config file webhooks with the CLI webhook.
func collectWebhooks(cfg *config.Config, opts *AnalyzeOptions) ([]config.WebhookConfig, error) {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		trigger := config.WebhookTrigger(opts.WebhookTrigger)
		switch trigger {
		case "":
			trigger = config.WebhookTriggerOnRecords
		case config.WebhookTriggerOnRecords, config.WebhookTriggerAlways, config.WebhookTriggerNever:
		default:
			return nil, fmt.Errorf("invalid --webhook-trigger %q (must be on_records, always, or never)", opts.WebhookTrigger)
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks, nil
}

func aggregateNames() []string {
	names := make([]string, len(analyzer.AllAggregates))
	for i, n := range analyzer.AllAggregates {
		names[i] = string(n)
	}
	return names
}
