package plugins

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ccollicutt/chatlens/pkg/config"
	"github.com/ccollicutt/chatlens/pkg/parser"
)

// Environment variables set for every plugin process.
const (
	// EnvConfig is the absolute path of the --config file, if one was given.
	EnvConfig = "CHATLENS_CONFIG"
	// EnvExports lists the export files named on the command line,
	// separated by filepath.ListSeparator.
	EnvExports = "CHATLENS_EXPORTS"
	// EnvBinary is the chatlens executable, for plugins that call back
	// into 'chatlens analyze -o json'.
	EnvBinary = "CHATLENS_BIN"
	// EnvVersion is the chatlens version.
	EnvVersion = "CHATLENS_VERSION"
)

// Invocation is a plugin command line split into what chatlens
// understands and what it passes through.
type Invocation struct {
	Command string
	// Args are passed to the plugin unchanged.
	Args []string
	// Config is the absolute --config path, or empty.
	Config string
	// LogLevel is the --log-level value, or empty.
	LogLevel string
	// Exports are the existing files matched by positional arguments,
	// sorted and deduplicated.
	Exports []string
}

// ParseInvocation interprets args as "<command> [args...]".
func ParseInvocation(args []string) *Invocation {
	inv := &Invocation{}
	if len(args) == 0 {
		return inv
	}
	inv.Command = args[0]
	inv.Args = args[1:]

	var positional []string
	for i := 0; i < len(inv.Args); i++ {
		arg := inv.Args[i]
		if arg == "--" {
			positional = append(positional, inv.Args[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			positional = append(positional, arg)
			continue
		}

		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if name != "config" && name != "c" && name != "log-level" {
			continue
		}
		if !hasValue {
			if i+1 >= len(inv.Args) {
				continue
			}
			i++
			value = inv.Args[i]
		}

		if name == "log-level" {
			inv.LogLevel = value
		} else if abs, err := filepath.Abs(value); err == nil {
			inv.Config = abs
		}
	}

	inv.Exports = existingFiles(positional)
	return inv
}

func existingFiles(patterns []string) []string {
	paths, err := parser.ExpandGlobs(patterns)
	if err != nil {
		return nil
	}

	var files []string
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			if abs, err := filepath.Abs(p); err == nil {
				p = abs
			}
			files = append(files, p)
		}
	}
	return files
}

// Environ returns base extended with the chatlens plugin variables.
func (inv *Invocation) Environ(base []string, version string) []string {
	env := append([]string{}, base...)
	env = append(env,
		EnvExports+"="+strings.Join(inv.Exports, string(filepath.ListSeparator)),
		EnvVersion+"="+version,
	)
	if inv.Config != "" {
		env = append(env, EnvConfig+"="+inv.Config)
	}
	if inv.LogLevel != "" {
		env = append(env, config.EnvLogLevel+"="+inv.LogLevel)
	}
	if self, err := os.Executable(); err == nil {
		env = append(env, EnvBinary+"="+self)
	}
	return env
}
