// Package cli provides the command-line interface for Chatlens.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatlens/internal/cli/commands"
	"github.com/ccollicutt/chatlens/internal/cli/plugins"
	"github.com/ccollicutt/chatlens/pkg/config"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	rootCmd := NewRootCommand()
	args := os.Args[1:]

	if len(args) > 0 && !strings.HasPrefix(args[0], "-") && !isBuiltinCommand(rootCmd, args[0]) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		runner := &plugins.Runner{
			Stdin:   os.Stdin,
			Stdout:  os.Stdout,
			Stderr:  os.Stderr,
			Version: commands.Version,
		}
		return runPlugin(ctx, args, plugins.NewFinder(), runner)
	}

	if err := rootCmd.Execute(); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return commands.ExitCodeFor(err)
	}
	return commands.ExitOK
}

// runPlugin dispatches "<command> [args...]" to the chatlens-<command>
// binary and returns its exit code.
func runPlugin(ctx context.Context, args []string, finder *plugins.Finder, runner *plugins.Runner) int {
	inv := plugins.ParseInvocation(args)
	if err := setupLogging(runner.Stderr, inv.LogLevel); err != nil {
		_, _ = fmt.Fprintf(runner.Stderr, "Error: %v\n", err)
		return commands.ExitError
	}

	path, err := finder.Find(inv.Command)
	if err != nil {
		_, _ = fmt.Fprintln(runner.Stderr, err)
		return commands.ExitError
	}

	code, err := runner.Run(ctx, path, inv)
	if err != nil {
		_, _ = fmt.Fprintf(runner.Stderr, "Error: %v\n", err)
		return commands.ExitError
	}
	return code
}

// isBuiltinCommand checks if a command name is a built-in cobra command.
func isBuiltinCommand(rootCmd *cobra.Command, name string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	// Also check for special commands like help and completion
	return name == "help" || name == "completion"
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "chatlens",
		Short: "Analyze exported group chat logs",
		Long: `Chatlens parses WhatsApp-style chat exports and reports on them.

It reports:
  - Message, word, media and link counts
  - The busiest participants
  - Monthly, weekday and hourly activity
  - A vocabulary text, the most common words and emoji usage

Every analysis can be limited to one participant, and all of it is available
over HTTP with 'chatlens serve'.

PLUGINS:
  Any other command is run as a standalone binary named chatlens-<command>.
  Arguments are passed through unchanged, and the plugin environment carries:
    CHATLENS_CONFIG    absolute path of --config, if given
    CHATLENS_EXPORTS   export files named on the command line
    CHATLENS_BIN       this chatlens binary
    CHATLENS_VERSION   the chatlens version

  Plugin locations (searched in order):
    1. Same directory as the chatlens binary
    2. ~/.chatlens/plugins/
    3. Anywhere in PATH`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupLogging(cmd.ErrOrStderr(), logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level (trace|debug|info|warn|error), overrides $"+config.EnvLogLevel)

	rootCmd.AddCommand(commands.NewAnalyzeCommand())
	rootCmd.AddCommand(commands.NewParticipantsCommand())
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
