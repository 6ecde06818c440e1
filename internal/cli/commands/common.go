package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatlens/pkg/config"
	"github.com/ccollicutt/chatlens/pkg/output"
	"github.com/ccollicutt/chatlens/pkg/parser"
)

// Exit codes returned by the chatlens binary.
const (
	ExitOK            = 0
	ExitInvalidExport = 1
	ExitError         = 2
)

// ExitCodeFor maps a command error to the process exit code.
func ExitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, parser.ErrInvalidExport):
		return ExitInvalidExport
	default:
		return ExitError
	}
}

const invalidExportHint = `The file is not a valid chat export. Chatlens reads exports whose entries
start with a bracketed timestamp such as "[12/31/19, 11:59:59 PM] Name: text".
Run 'chatlens detect <file>' to see which layout the file resembles.`

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// loadConfig loads the configuration at path (defaults when empty) and, unless
// --log-level was given, applies the configured log level.
func loadConfig(cmd *cobra.Command, path string) (*config.Config, error) {
	cfg, err := config.Load(commandContext(cmd), path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if f := cmd.Flags().Lookup("log-level"); f == nil || !f.Changed {
		if lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level)); err == nil {
			zerolog.SetGlobalLevel(lvl)
		}
	}
	return cfg, nil
}

// parsedExports is the concatenation of several exports in file order.
type parsedExports struct {
	Files   []string
	Results []*parser.Result
	Records []parser.Record
	Sources []output.Source
}

// parseExports expands patterns and parses every matched export with p.
func parseExports(patterns []string, p *parser.Parser) (*parsedExports, error) {
	files, err := parser.ExpandGlobs(patterns)
	if err != nil {
		return nil, fmt.Errorf("expanding exports: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no export files matched: %v", patterns)
	}

	out := &parsedExports{Files: files}
	for _, file := range files {
		text, err := parser.ReadExport(file)
		if err != nil {
			return nil, err
		}

		res, err := p.ParseDetailed(text)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", file, err)
		}

		out.Results = append(out.Results, res)
		out.Records = append(out.Records, res.Records...)
		out.Sources = append(out.Sources, output.NewSource(file, res))
	}
	return out, nil
}

// reportInvalidExport prints the invalid-export hint when err signals one.
func reportInvalidExport(w io.Writer, err error) {
	if errors.Is(err, parser.ErrInvalidExport) {
		_, _ = fmt.Fprintln(w, invalidExportHint)
	}
}
