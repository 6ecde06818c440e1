package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ccollicutt/chatlens/pkg/config"
	"github.com/ccollicutt/chatlens/pkg/detector"
	"github.com/ccollicutt/chatlens/pkg/parser"
)

func TestOutputDetectText_NoMatch(t *testing.T) {
	result := detector.New().DetectFromText("just some notes\n")

	var buf bytes.Buffer
	if err := outputDetectText(&buf, result, "notes.txt", &DetectOptions{}); err != nil {
		t.Fatalf("outputDetectText failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "No chat export layout detected") {
		t.Errorf("expected no-match message\n%s", out)
	}
	if !strings.Contains(out, "File: notes.txt") {
		t.Error("expected file name in output")
	}
}

func TestOutputDetectText_Supported(t *testing.T) {
	result := detector.New().DetectFromText(sampleExport)

	var buf bytes.Buffer
	if err := outputDetectText(&buf, result, "chat.txt", &DetectOptions{}); err != nil {
		t.Fatalf("outputDetectText failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Detected Layout: iOS export (12-hour)",
		"Supported: yes",
		"chatlens analyze chat.txt",
		"Parsed as: 2023-01-02 09:00:00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}
}

func TestOutputDetectText_Unsupported(t *testing.T) {
	result := detector.New().DetectFromText(androidExport)

	var buf bytes.Buffer
	if err := outputDetectText(&buf, result, "android.txt", &DetectOptions{}); err != nil {
		t.Fatalf("outputDetectText failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Detected Layout: Android export (12-hour)") {
		t.Errorf("expected Android layout\n%s", out)
	}
	if !strings.Contains(out, "Supported: no") {
		t.Error("expected unsupported marker")
	}
	if !strings.Contains(out, "Hint: export the chat from the iOS app") {
		t.Error("expected hint for unsupported layout")
	}
}

func TestOutputDetectText_Ambiguous(t *testing.T) {
	result := detector.New().DetectFromText("[25/12/2023, 21:05:00] Alice: hello\n")

	var buf bytes.Buffer
	if err := outputDetectText(&buf, result, "chat.txt", &DetectOptions{}); err != nil {
		t.Fatalf("outputDetectText failed: %v", err)
	}

	if !strings.Contains(buf.String(), "Note: This layout has date ordering ambiguity") {
		t.Errorf("expected ambiguity note\n%s", buf.String())
	}
}

func TestOutputDetectJSON(t *testing.T) {
	result := detector.New().DetectFromText(androidExport)

	var buf bytes.Buffer
	if err := outputDetectJSON(&buf, result, "android.txt", &DetectOptions{}); err != nil {
		t.Fatalf("outputDetectJSON failed: %v", err)
	}

	var out JSONOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if out.File != "android.txt" {
		t.Errorf("unexpected file: %s", out.File)
	}
	if len(out.Matches) != 1 {
		t.Fatalf("expected only the best match, got %d", len(out.Matches))
	}
	if out.Matches[0].Supported {
		t.Error("expected Android layout to be unsupported")
	}
	if out.Matches[0].Hint == "" {
		t.Error("expected hint in JSON output")
	}
}

func TestRunDetect(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "chat.txt", sampleExport)

	stdout, _, err := execute(NewDetectCommand(), path)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if !strings.Contains(stdout, "Supported: yes") {
		t.Errorf("unexpected output\n%s", stdout)
	}

	stdout, _, err = execute(NewDetectCommand(), "-o", "json", "--all", path)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	var out JSONOutput
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(out.Matches) == 0 || !out.Matches[0].Supported {
		t.Errorf("expected a supported match, got %+v", out.Matches)
	}
}

func TestRunDetect_MissingFile(t *testing.T) {
	_, _, err := execute(NewDetectCommand(), filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil || !strings.Contains(err.Error(), "export file not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestWriteStarterConfig_Success(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "chatlens.yaml")
	result := detector.New().DetectFromText(sampleExport)

	var buf bytes.Buffer
	if err := writeStarterConfig(&buf, result, "chat.txt", configPath); err != nil {
		t.Fatalf("writeStarterConfig failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Wrote starter config") {
		t.Error("expected confirmation message")
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if !strings.Contains(string(content), "iOS export (12-hour)") {
		t.Error("expected detected layout in header")
	}

	// The generated file must load and reproduce the built-in filters
	cfg, err := config.Load(context.Background(), configPath)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if len(cfg.Filters.SenderKeywords) != len(parser.DefaultSenderKeywords) {
		t.Errorf("expected %d sender keywords, got %d", len(parser.DefaultSenderKeywords), len(cfg.Filters.SenderKeywords))
	}
	if len(cfg.Filters.CompiledBodyPatterns()) != len(parser.DefaultBodyPatterns) {
		t.Errorf("expected %d body patterns, got %d", len(parser.DefaultBodyPatterns), len(cfg.Filters.CompiledBodyPatterns()))
	}
}

func TestWriteStarterConfig_Refusals(t *testing.T) {
	dir := t.TempDir()
	existing := writeFile(t, dir, "existing.yaml", "# keep me\n")

	tests := []struct {
		name   string
		text   string
		path   string
		errMsg string
	}{
		{"existing file", sampleExport, existing, "will not overwrite"},
		{"no match", "hello\n", filepath.Join(dir, "a.yaml"), "no export layout detected"},
		{"unsupported", androidExport, filepath.Join(dir, "b.yaml"), "is not supported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := writeStarterConfig(&buf, detector.New().DetectFromText(tt.text), "chat.txt", tt.path)
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("expected error containing %q, got %v", tt.errMsg, err)
			}
		})
	}

	content, _ := os.ReadFile(existing)
	if string(content) != "# keep me\n" {
		t.Error("existing config was modified")
	}
}
