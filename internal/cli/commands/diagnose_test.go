package commands

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ccollicutt/chatlens/pkg/config"
)

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	return cfg
}

func TestCheckExportExists(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name   string
		path   string
		status string
		msg    string
	}{
		{"not found", filepath.Join(dir, "missing.txt"), "error", "not found"},
		{"directory", dir, "error", "directory"},
		{"empty", writeFile(t, dir, "empty.txt", ""), "warning", "empty"},
		{"ok", writeFile(t, dir, "chat.txt", sampleExport), "ok", "Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := checkExportExists(tt.path)
			if result.Status != tt.status {
				t.Errorf("expected status %s, got %s (%s)", tt.status, result.Status, result.Message)
			}
			if !strings.Contains(result.Message, tt.msg) {
				t.Errorf("expected message containing %q, got %q", tt.msg, result.Message)
			}
		})
	}
}

func TestCheckExportEncoding(t *testing.T) {
	dir := t.TempDir()

	text, result := checkExportEncoding(writeFile(t, dir, "chat.txt", "\ufeff"+sampleExport))
	if result.Status != "ok" {
		t.Errorf("expected ok, got %s: %s", result.Status, result.Message)
	}
	if strings.HasPrefix(text, "\ufeff") {
		t.Error("expected byte order mark to be stripped")
	}

	_, result = checkExportEncoding(writeFile(t, dir, "latin1.txt", "caf\xe9\n"))
	if result.Status != "error" {
		t.Errorf("expected error for invalid UTF-8, got %s", result.Status)
	}
	if len(result.Suggests) == 0 {
		t.Error("expected a suggestion for invalid UTF-8")
	}
}

func TestCheckExportLayout(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		status string
		msg    string
	}{
		{"supported", sampleExport, "ok", "iOS export (12-hour)"},
		{"unsupported", androidExport, "error", "not supported"},
		{"unknown", "hello\n", "error", "No known export layout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := checkExportLayout(tt.text)
			if result.Status != tt.status {
				t.Errorf("expected status %s, got %s", tt.status, result.Status)
			}
			if !strings.Contains(result.Message, tt.msg) {
				t.Errorf("expected message containing %q, got %q", tt.msg, result.Message)
			}
		})
	}
}

func TestCheckParse_DropCounts(t *testing.T) {
	results := checkParse(defaultConfig(t), sampleExport, &DiagnoseOptions{})
	if len(results) != 2 {
		t.Fatalf("expected parse and filter results, got %d", len(results))
	}

	parse := results[0]
	if parse.Status != "ok" {
		t.Errorf("expected ok, got %s: %s", parse.Status, parse.Message)
	}
	if parse.Message != "5 entries, 4 messages kept" {
		t.Errorf("unexpected message: %q", parse.Message)
	}

	filter := results[1]
	if filter.Message != "1 entries dropped" {
		t.Errorf("unexpected filter message: %q", filter.Message)
	}
	if len(filter.Details) != 1 || filter.Details[0] != "system_body: 1" {
		t.Errorf("unexpected drop details: %v", filter.Details)
	}
}

func TestCheckParse_VerboseDecisions(t *testing.T) {
	results := checkParse(defaultConfig(t), sampleExport, &DiagnoseOptions{Verbose: true})
	filter := results[1]

	// one reason line plus one line per entry
	if len(filter.Details) != 6 {
		t.Fatalf("expected 6 detail lines, got %d: %v", len(filter.Details), filter.Details)
	}
	if !strings.HasPrefix(filter.Details[1], "#0 system_body") {
		t.Errorf("expected first decision to be the dropped notice, got %q", filter.Details[1])
	}
	if filter.Details[2] != "#1 kept" {
		t.Errorf("expected second decision kept, got %q", filter.Details[2])
	}
}

func TestCheckParse_AllFiltered(t *testing.T) {
	text := "[1/2/23, 9:00:00 AM] Family: Messages and calls are end-to-end encrypted.\n"
	results := checkParse(defaultConfig(t), text, &DiagnoseOptions{})
	if results[0].Status != "warning" {
		t.Errorf("expected warning when every entry is dropped, got %s", results[0].Status)
	}
}

func TestCheckParse_Failures(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		details bool
	}{
		{"no entries", "hello\n", false},
		{"bad timestamp", "[13/45/23, 9:00:00 AM] Alice: hi\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := checkParse(defaultConfig(t), tt.text, &DiagnoseOptions{})
			if len(results) != 1 {
				t.Fatalf("expected a single result, got %d", len(results))
			}
			if results[0].Status != "error" {
				t.Errorf("expected error, got %s", results[0].Status)
			}
			if tt.details && len(results[0].Details) != 2 {
				t.Errorf("expected entry and timestamp details, got %v", results[0].Details)
			}
			if len(results[0].Suggests) == 0 {
				t.Error("expected a suggestion")
			}
		})
	}
}

func TestRunDiagnose(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "chat.txt", sampleExport)

	stdout, _, err := execute(NewDiagnoseCommand(), path)
	if err != nil {
		t.Fatalf("diagnose failed: %v", err)
	}

	for _, want := range []string{
		"[PASS] Configuration",
		"[PASS] Export File",
		"[PASS] Encoding",
		"[PASS] Export Layout",
		"[PASS] Parse",
		"[PASS] System Filter",
		"- system_body: 1",
		"Summary: 6 passed, 0 warnings, 0 errors",
		"The export looks good!",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected output to contain %q\n%s", want, stdout)
		}
	}
}

func TestRunDiagnose_StopsOnMissingExport(t *testing.T) {
	stdout, _, err := execute(NewDiagnoseCommand(), filepath.Join(t.TempDir(), "missing.txt"))
	if err != nil {
		t.Fatalf("diagnose should report, not fail: %v", err)
	}
	if !strings.Contains(stdout, "[FAIL] Export File") {
		t.Errorf("expected export failure\n%s", stdout)
	}
	if strings.Contains(stdout, "Encoding") {
		t.Error("expected diagnosis to stop after the missing export")
	}
}

func TestRunDiagnose_BadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "chat.txt", sampleExport)

	stdout, _, err := execute(NewDiagnoseCommand(), "--config", filepath.Join(dir, "missing.yaml"), path)
	if err != nil {
		t.Fatalf("diagnose should report, not fail: %v", err)
	}
	if !strings.Contains(stdout, "[FAIL] Configuration") {
		t.Errorf("expected configuration failure\n%s", stdout)
	}
	if !strings.Contains(stdout, "Hint: Check the config file path is correct") {
		t.Errorf("expected path hint\n%s", stdout)
	}
}

func TestCheckWebhooks(t *testing.T) {
	tests := []struct {
		name    string
		webhook config.WebhookConfig
		status  string
	}{
		{"valid", config.WebhookConfig{Name: "ok", URL: "https://example.com/hook", Trigger: config.WebhookTriggerAlways}, "ok"},
		{"missing url", config.WebhookConfig{Name: "no-url"}, "error"},
		{"bad scheme", config.WebhookConfig{URL: "ftp://example.com"}, "error"},
		{"no host", config.WebhookConfig{URL: "http://"}, "error"},
		{"bad trigger", config.WebhookConfig{URL: "https://example.com", Trigger: "on_issues"}, "error"},
		{"unresolved token", config.WebhookConfig{URL: "https://example.com", Token: "${UNSET_TOKEN}"}, "warning"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Webhooks: []config.WebhookConfig{tt.webhook}}
			results := checkWebhooks(cfg, &DiagnoseOptions{})
			if len(results) != 1 {
				t.Fatalf("expected 1 result, got %d", len(results))
			}
			if results[0].Status != tt.status {
				t.Errorf("expected status %s, got %s (%v)", tt.status, results[0].Status, results[0].Details)
			}
		})
	}
}

func TestCheckWebhooks_NoWebhooks(t *testing.T) {
	cfg := &config.Config{}

	if results := checkWebhooks(cfg, &DiagnoseOptions{}); len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}

	results := checkWebhooks(cfg, &DiagnoseOptions{Verbose: true})
	if len(results) != 1 || results[0].Status != "ok" {
		t.Errorf("expected one ok result in verbose mode, got %+v", results)
	}
}

func TestCheckWebhooks_VerboseConnectivity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := &config.Config{Webhooks: []config.WebhookConfig{
		{Name: "local", URL: server.URL, Token: "tok", Trigger: config.WebhookTriggerOnRecords},
	}}

	results := checkWebhooks(cfg, &DiagnoseOptions{Verbose: true})
	if len(results) != 2 {
		t.Fatalf("expected config and connectivity results, got %d", len(results))
	}
	if !strings.Contains(strings.Join(results[0].Details, "\n"), "Token: configured") {
		t.Errorf("expected token detail, got %v", results[0].Details)
	}
	if results[1].Check != "Webhook Connectivity: local" || results[1].Status != "ok" {
		t.Errorf("unexpected connectivity result: %+v", results[1])
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is a long line", 10, "this is..."},
		{"ééééééééééé", 6, "ééé..."},
	}

	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestPrintDiagnostics(t *testing.T) {
	results := []DiagnosticResult{
		{Check: "A", Status: "ok", Message: "fine", Details: []string{"hidden"}},
		{Check: "B", Status: "warning", Message: "hmm", Details: []string{"shown"}},
		{Check: "C", Status: "error", Message: "bad", Suggests: []string{"fix it"}},
	}

	var buf bytes.Buffer
	printDiagnostics(&buf, results, &DiagnoseOptions{})
	out := buf.String()

	if strings.Contains(out, "hidden") {
		t.Error("ok details should be hidden without -v")
	}
	for _, want := range []string{"[PASS] A", "[WARN] B", "- shown", "[FAIL] C", "Hint: fix it",
		"Summary: 1 passed, 1 warnings, 1 errors", "cannot be analyzed"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}
}

func TestCheckConfig_Defaults(t *testing.T) {
	cmd := NewDiagnoseCommand()
	cfg, result := checkConfig(cmd, "")
	if cfg == nil || result.Status != "ok" {
		t.Fatalf("expected defaults to load, got %+v", result)
	}
	if result.Message != "Using built-in defaults" {
		t.Errorf("unexpected message %q", result.Message)
	}
}
