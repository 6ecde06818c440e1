// Package plugins runs chatlens-<command> binaries for commands chatlens
// does not implement itself. A plugin receives its arguments verbatim and
// learns the resolved config file, export files and log level from the
// environment, so it can hand the same exports back to 'chatlens analyze'.
package plugins

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Prefix is prepended to a command name to form the plugin binary name.
const Prefix = "chatlens-"

// ErrPluginNotFound is returned when no plugin binary can be located.
var ErrPluginNotFound = errors.New("plugin not found")

// NotFoundError reports the locations searched for a missing plugin.
type NotFoundError struct {
	Command  string
	Searched []string
}

func (e *NotFoundError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "unknown command %q for \"chatlens\"\n", e.Command)
	sb.WriteString("\nIf this is a plugin, install the binary as one of:\n")
	for _, dir := range e.Searched {
		fmt.Fprintf(&sb, "  - %s\n", filepath.Join(dir, Prefix+e.Command))
	}
	fmt.Fprintf(&sb, "  - %s%s anywhere in your PATH\n", Prefix, e.Command)
	sb.WriteString("\nRun 'chatlens --help' for usage.")
	return sb.String()
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrPluginNotFound
}

// Finder locates plugin binaries.
type Finder struct {
	// Dirs are searched in order before PATH.
	Dirs []string
	// SkipPath disables the final PATH lookup.
	SkipPath bool
}

// NewFinder searches the directory of the chatlens binary, then
// ~/.chatlens/plugins, then PATH.
func NewFinder() *Finder {
	var dirs []string
	if execPath, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(execPath))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".chatlens", "plugins"))
	}
	return &Finder{Dirs: dirs}
}

// Find returns the path of the chatlens-<command> binary. Command names
// that contain a path separator are never resolved.
func (f *Finder) Find(command string) (string, error) {
	if command == "" || strings.ContainsAny(command, `/\`) || command == "." || command == ".." {
		return "", &NotFoundError{Command: command, Searched: f.Dirs}
	}

	name := Prefix + command
	for _, dir := range f.Dirs {
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	if !f.SkipPath {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}

	return "", &NotFoundError{Command: command, Searched: f.Dirs}
}

// isExecutable reports whether path is a regular file with an execute bit.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode()&0111 != 0
}
