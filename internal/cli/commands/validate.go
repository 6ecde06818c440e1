package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatlens/pkg/config"
	"github.com/ccollicutt/chatlens/pkg/parser"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a Chatlens configuration file without running analysis.

Checks:
  - YAML syntax
  - Analytics limits
  - Filter pattern validity
  - Stopwords file readability
  - Webhook URLs and triggers
  - Log level`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	w := cmd.OutOrStdout()

	_, _ = fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(commandContext(cmd), configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	printConfigSummary(w, cfg)
	return nil
}

func printConfigSummary(w io.Writer, cfg *config.Config) {
	keywords := len(cfg.Filters.SenderKeywords)
	keywordSource := ""
	if cfg.Filters.SenderKeywords == nil {
		keywords = len(parser.DefaultSenderKeywords)
		keywordSource = " (built-in)"
	}

	_, _ = fmt.Fprintf(w, "\nConfiguration valid!\n")
	_, _ = fmt.Fprintf(w, "  Top users:       %d\n", cfg.Analytics.TopUsers)
	_, _ = fmt.Fprintf(w, "  Top words:       %d\n", cfg.Analytics.TopWords)
	_, _ = fmt.Fprintf(w, "  Parallel:        %t\n", cfg.Analytics.Parallel)
	_, _ = fmt.Fprintf(w, "  Stopwords:       %d\n", len(cfg.ResolvedStopwords()))
	_, _ = fmt.Fprintf(w, "  Sender keywords: %d%s\n", keywords, keywordSource)
	_, _ = fmt.Fprintf(w, "  Body patterns:   %d\n", len(cfg.Filters.CompiledBodyPatterns()))
	_, _ = fmt.Fprintf(w, "  Server address:  %s\n", cfg.Server.Addr)
	_, _ = fmt.Fprintf(w, "  Log level:       %s\n", cfg.Log.Level)

	if len(cfg.Webhooks) == 0 {
		return
	}

	_, _ = fmt.Fprintf(w, "\nWebhooks:\n")
	for i, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}
		_, _ = fmt.Fprintf(w, "  %d. [%s] %s\n", i+1, wh.Trigger, name)
	}
}
