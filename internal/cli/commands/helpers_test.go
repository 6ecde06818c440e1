package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

// sampleExport has four messages from three participants and one
// encryption notice that the default filter drops.
const sampleExport = "[1/2/23, 9:00:00 AM] Family: Messages and calls are end-to-end encrypted.\n" +
	"[1/2/23, 9:05:00 AM] Alice: hello world 😀 https://go.dev\n" +
	"[1/2/23, 9:06:00 AM] Bob: hi Alice\n" +
	"[1/3/23, 2:00:00 PM] Alice: image omitted\n" +
	"[2/4/23, 8:30:00 PM] Carol: pizza tonight?\n"

const androidExport = "1/2/23, 9:05 AM - Alice: hello\n" +
	"1/2/23, 9:06 AM - Bob: hi\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// execute runs cmd with args and returns what it wrote to stdout and stderr.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
