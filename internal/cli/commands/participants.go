package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatlens/pkg/analyzer"
	"github.com/ccollicutt/chatlens/pkg/parser"
)

// ParticipantsOptions holds command-line options for the participants command.
type ParticipantsOptions struct {
	ConfigFile string
	Output     string
}

// NewParticipantsCommand creates the participants command.
func NewParticipantsCommand() *cobra.Command {
	opts := &ParticipantsOptions{}

	cmd := &cobra.Command{
		Use:   "participants <export>...",
		Short: "List the participants of a chat export",
		Long: `List the names accepted by 'chatlens analyze --participant'.

The first entry is always "` + analyzer.Overall + `", which selects every message.
The remaining names are the senders found in the exports, sorted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParticipants(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Configuration file (defaults are used when omitted)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")

	return cmd
}

func runParticipants(cmd *cobra.Command, args []string, opts *ParticipantsOptions) error {
	if opts.Output != "text" && opts.Output != "json" {
		return fmt.Errorf("invalid output format: %s (must be text or json)", opts.Output)
	}

	cfg, err := loadConfig(cmd, opts.ConfigFile)
	if err != nil {
		return err
	}

	exports, err := parseExports(args, parser.New(parser.WithFilter(cfg.SystemFilter())))
	if err != nil {
		reportInvalidExport(cmd.ErrOrStderr(), err)
		return err
	}

	names := analyzer.Participants(exports.Records)
	w := cmd.OutOrStdout()

	if opts.Output == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(names)
	}

	for _, name := range names {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}
