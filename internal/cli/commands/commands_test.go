package commands

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewAnalyzeCommand(), "analyze <export>...", []string{"config", "participant", "output", "only",
			"verbose", "quiet", "parallel", "webhook-url", "webhook-token", "webhook-trigger"}},
		{NewParticipantsCommand(), "participants <export>...", []string{"config", "output"}},
		{NewDetectCommand(), "detect <file>", []string{"output", "sample", "all", "write-config"}},
		{NewDiagnoseCommand(), "diagnose <export>", []string{"config", "verbose"}},
		{NewServeCommand(), "serve", []string{"config", "addr"}},
		{NewValidateCommand(), "validate <config-file>", nil},
		{NewVersionCommand(), "version", nil},
	}

	for _, tt := range tests {
		t.Run(tt.cmd.Name(), func(t *testing.T) {
			if tt.cmd.Use != tt.use {
				t.Errorf("Unexpected Use: %s", tt.cmd.Use)
			}
			for _, flag := range tt.flags {
				if tt.cmd.Flags().Lookup(flag) == nil {
					t.Errorf("Missing flag: %s", flag)
				}
			}
		})
	}
}

func TestRunVersion(t *testing.T) {
	stdout, _, err := execute(NewVersionCommand())
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if stdout != "chatlens "+Version+"\n" {
		t.Errorf("unexpected output: %q", stdout)
	}
}

func TestRunValidate_Success(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "config.yaml", `analytics:
  top_users: 3
  top_words: 20
filters:
  sender_keywords: [bot]
  body_patterns: ['^ping$']
webhooks:
  - name: archive
    url: https://example.com/hook
    trigger: always
`)

	stdout, _, err := execute(NewValidateCommand(), configPath)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	for _, want := range []string{
		"Configuration valid!",
		"Top users:       3",
		"Top words:       20",
		"Sender keywords: 1\n",
		"Body patterns:   1",
		"1. [always] archive",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected output to contain %q\n%s", want, stdout)
		}
	}
}

func TestRunValidate_BuiltinFilters(t *testing.T) {
	configPath := writeFile(t, t.TempDir(), "config.yaml", "log:\n  level: debug\n")

	stdout, _, err := execute(NewValidateCommand(), configPath)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !strings.Contains(stdout, "(built-in)") {
		t.Errorf("expected built-in keyword note\n%s", stdout)
	}
	if strings.Contains(stdout, "Webhooks:") {
		t.Error("expected no webhook section")
	}
}

func TestRunValidate_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
		want string
	}{
		{"missing file", filepath.Join(dir, "missing.yaml"), "reading config file"},
		{"invalid yaml", writeFile(t, dir, "bad.yaml", "analytics: [unclosed"), "parsing config file"},
		{"bad pattern", writeFile(t, dir, "pattern.yaml", "filters:\n  body_patterns: ['[']\n"), "body_patterns[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(NewValidateCommand(), tt.path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestRunParticipants_Text(t *testing.T) {
	path := writeFile(t, t.TempDir(), "chat.txt", sampleExport)

	stdout, _, err := execute(NewParticipantsCommand(), path)
	if err != nil {
		t.Fatalf("participants failed: %v", err)
	}

	want := "Overall\nAlice\nBob\nCarol\n"
	if stdout != want {
		t.Errorf("expected %q, got %q", want, stdout)
	}
}

func TestRunParticipants_JSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "chat.txt", sampleExport)

	stdout, _, err := execute(NewParticipantsCommand(), "-o", "json", path)
	if err != nil {
		t.Fatalf("participants failed: %v", err)
	}

	var names []string
	if err := json.Unmarshal([]byte(stdout), &names); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(names) != 4 || names[0] != "Overall" {
		t.Errorf("unexpected names: %v", names)
	}
}

func TestRunParticipants_Errors(t *testing.T) {
	dir := t.TempDir()
	export := writeFile(t, dir, "chat.txt", sampleExport)
	invalid := writeFile(t, dir, "android.txt", androidExport)

	if _, _, err := execute(NewParticipantsCommand(), "-o", "xml", export); err == nil {
		t.Error("expected error for invalid output format")
	}

	_, stderr, err := execute(NewParticipantsCommand(), invalid)
	if ExitCodeFor(err) != ExitInvalidExport {
		t.Errorf("expected invalid export, got %v", err)
	}
	if !strings.Contains(stderr, "chatlens detect") {
		t.Errorf("expected detect hint, got %q", stderr)
	}
}

func TestRunServe_InvalidConfig(t *testing.T) {
	configPath := writeFile(t, t.TempDir(), "config.yaml", "server:\n  max_upload_bytes: -1\n")

	_, _, err := execute(NewServeCommand(), "--config", configPath)
	if err == nil {
		t.Fatal("expected error for invalid config")
	}
	if !strings.Contains(err.Error(), "max_upload_bytes") {
		t.Errorf("unexpected error: %v", err)
	}
}
