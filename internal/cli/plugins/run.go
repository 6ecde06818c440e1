package plugins

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/rs/zerolog/log"
)

// Runner executes plugin binaries.
type Runner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Version is exported to the plugin as CHATLENS_VERSION.
	Version string
}

// Run starts the plugin at path for inv and waits for it. The plugin's own
// exit code is returned; an error means the plugin could not be run.
func (r *Runner) Run(ctx context.Context, path string, inv *Invocation) (int, error) {
	cmd := exec.CommandContext(ctx, path, inv.Args...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	cmd.Env = inv.Environ(os.Environ(), r.Version)

	log.Debug().
		Str("plugin", path).
		Str("config", inv.Config).
		Strs("exports", inv.Exports).
		Msg("running plugin")

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 0, fmt.Errorf("running plugin %s: %w", inv.Command, err)
	}
	return 0, nil
}
