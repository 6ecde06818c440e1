package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatlens/pkg/server"
)

// ServeOptions holds command-line options for the serve command.
type ServeOptions struct {
	ConfigFile string
	Addr       string
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analytics HTTP API",
		Long: `Start an HTTP server that analyzes uploaded chat exports.

Endpoints:
  GET  /health                  Liveness check
  POST /api/v1/analyze          Analyze an export (?participant=, ?only=)
  POST /api/v1/participants     List the participants of an export
  POST /api/v1/detect           Report the layout an export resembles

Exports are sent as the raw request body or as a multipart "file" field.
An input that is not a chat export is answered with 422.

The listen address comes from --addr, then $CHATLENS_SERVER_ADDR, then
server.addr in the configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Configuration file (defaults are used when omitted)")
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Listen address (e.g. :8080)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cfg, err := loadConfig(cmd, opts.ConfigFile)
	if err != nil {
		return err
	}
	if opts.Addr != "" {
		cfg.Server.Addr = opts.Addr
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.New(cfg).ListenAndServe(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
