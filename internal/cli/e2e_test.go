package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ccollicutt/chatlens/internal/cli/commands"
	"github.com/ccollicutt/chatlens/pkg/config"
	"github.com/ccollicutt/chatlens/pkg/output"
	"github.com/ccollicutt/chatlens/pkg/parser"
	"github.com/ccollicutt/chatlens/pkg/server"
	"github.com/ccollicutt/chatlens/pkg/webhook"
)

const (
	familyChat  = "testdata/family_chat.txt"
	androidChat = "testdata/android_chat.txt"
	familyConf  = "testdata/configs/chatlens.yaml"
)

// run executes the root command with args.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func analyzeJSON(t *testing.T, args ...string) *output.Report {
	t.Helper()
	stdout, stderr, err := run(t, append([]string{"analyze", "-o", "json"}, args...)...)
	if err != nil {
		t.Fatalf("analyze failed: %v\n%s", err, stderr)
	}
	var report output.Report
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, stdout)
	}
	return &report
}

func TestE2E_FamilyChat(t *testing.T) {
	report := analyzeJSON(t, familyChat)

	if report.Summary.Entries != 11 {
		t.Errorf("expected 11 entries, got %d", report.Summary.Entries)
	}
	if report.Summary.Records != 8 {
		t.Errorf("expected 8 messages, got %d", report.Summary.Records)
	}
	if report.Summary.Dropped != 3 {
		t.Errorf("expected 3 dropped system lines, got %d", report.Summary.Dropped)
	}

	dropped := report.Metadata.Sources[0].Dropped
	if dropped[string(parser.ReasonSystemBody)] != 2 || dropped[string(parser.ReasonSenderKeyword)] != 1 {
		t.Errorf("unexpected drop reasons: %v", dropped)
	}

	r := report.Result
	want := []string{"Overall", "Dad", "Grandpa", "Mom", "Sam"}
	if strings.Join(r.Participants, ",") != strings.Join(want, ",") {
		t.Errorf("expected participants %v, got %v", want, r.Participants)
	}

	if r.Stats.Messages != 8 || r.Stats.Media != 1 || r.Stats.Links != 1 {
		t.Errorf("unexpected stats: %+v", *r.Stats)
	}

	if len(r.Busiest.Top) == 0 || r.Busiest.Top[0].Sender != "Mom" || r.Busiest.Top[0].Count != 3 {
		t.Errorf("expected Mom as busiest with 3 messages, got %+v", r.Busiest.Top)
	}

	if len(r.Timeline) != 3 {
		t.Fatalf("expected 3 months in the timeline, got %d", len(r.Timeline))
	}
	for i, n := range []int{5, 2, 1} {
		if r.Timeline[i].Count != n {
			t.Errorf("timeline[%d]: expected %d messages, got %d", i, n, r.Timeline[i].Count)
		}
	}

	if len(r.Emoji) != 2 {
		t.Fatalf("expected 2 distinct emoji, got %+v", r.Emoji)
	}
	if r.Emoji[0].Emoji != "😀" || r.Emoji[0].Count != 2 || r.Emoji[0].Percentage != 50 {
		t.Errorf("unexpected top emoji: %+v", r.Emoji[0])
	}

	// The multi-line body stays attached to its message
	if !strings.Contains(r.Vocabulary.Text, "pancakes\nand this one too") {
		t.Errorf("expected continuation line in vocabulary, got %q", r.Vocabulary.Text)
	}
}

func TestE2E_Participant(t *testing.T) {
	report := analyzeJSON(t, "--participant", "Sam", familyChat)

	if report.Summary.Records != 2 {
		t.Errorf("expected 2 messages from Sam, got %d", report.Summary.Records)
	}
	if report.Result.Emoji[0].Emoji != "🥞" || report.Result.Emoji[0].Percentage != 100 {
		t.Errorf("unexpected emoji for Sam: %+v", report.Result.Emoji)
	}
}

func TestE2E_ConfigFile(t *testing.T) {
	report := analyzeJSON(t, "--config", familyConf, familyChat)

	if len(report.Result.Busiest.Top) != 2 {
		t.Errorf("expected top_users 2, got %d", len(report.Result.Busiest.Top))
	}
	if len(report.Result.CommonWords) != 3 {
		t.Fatalf("expected top_words 3, got %d", len(report.Result.CommonWords))
	}
	for _, wc := range report.Result.CommonWords {
		if wc.Word == "Check" || wc.Word == "this" {
			t.Errorf("stopword %q leaked into common words", wc.Word)
		}
	}
	if report.Result.CommonWords[0].Word != "morning" {
		t.Errorf("expected first-seen word first, got %+v", report.Result.CommonWords)
	}
	if report.Metadata.ConfigFile != familyConf {
		t.Errorf("expected config file in metadata, got %q", report.Metadata.ConfigFile)
	}
}

func TestE2E_TextReport(t *testing.T) {
	stdout, _, err := run(t, "analyze", "-v", familyChat)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	for _, want := range []string{
		"[STATS]", "[BUSIEST USERS]", "[MONTHLY TIMELINE]", "[WEEKDAY ACTIVITY]",
		"[MONTH ACTIVITY]", "[ACTIVITY HEATMAP]", "[VOCABULARY]", "[COMMON WORDS]", "[EMOJI]",
		"Run ID:", "Source: " + familyChat,
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected report to contain %q", want)
		}
	}
}

func TestE2E_InvalidExport(t *testing.T) {
	_, stderr, err := run(t, "analyze", androidChat)
	if !errors.Is(err, parser.ErrInvalidExport) {
		t.Fatalf("expected invalid export, got %v", err)
	}
	if commands.ExitCodeFor(err) != 1 {
		t.Errorf("expected exit code 1, got %d", commands.ExitCodeFor(err))
	}
	if !strings.Contains(stderr, "chatlens detect") {
		t.Errorf("expected hint on stderr, got %q", stderr)
	}

	stdout, _, err := run(t, "detect", androidChat)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if !strings.Contains(stdout, "Android export (12-hour)") || !strings.Contains(stdout, "Supported: no") {
		t.Errorf("unexpected detect output\n%s", stdout)
	}
}

func TestE2E_Diagnose(t *testing.T) {
	stdout, _, err := run(t, "diagnose", "-v", familyChat)
	if err != nil {
		t.Fatalf("diagnose failed: %v", err)
	}

	for _, want := range []string{
		"[PASS] Parse",
		"11 entries, 8 messages kept",
		"- sender_keyword: 1",
		"- system_body: 2",
		"#9 sender_keyword (You)",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected output to contain %q\n%s", want, stdout)
		}
	}
}

func TestE2E_Participants(t *testing.T) {
	stdout, _, err := run(t, "participants", familyChat)
	if err != nil {
		t.Fatalf("participants failed: %v", err)
	}
	if stdout != "Overall\nDad\nGrandpa\nMom\nSam\n" {
		t.Errorf("unexpected participants %q", stdout)
	}
}

func TestE2E_CLIMatchesServer(t *testing.T) {
	report := analyzeJSON(t, familyChat)

	cfg, err := config.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}

	data, err := os.ReadFile(familyChat)
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader(data))
	server.New(cfg).Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var served output.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &served); err != nil {
		t.Fatalf("invalid server JSON: %v", err)
	}

	if *served.Result.Stats != *report.Result.Stats {
		t.Errorf("stats differ: server %+v, cli %+v", *served.Result.Stats, *report.Result.Stats)
	}
	if served.Summary.Dropped != report.Summary.Dropped {
		t.Errorf("dropped differ: server %d, cli %d", served.Summary.Dropped, report.Summary.Dropped)
	}
	if len(served.Result.CommonWords) != len(report.Result.CommonWords) {
		t.Errorf("common words differ: server %v, cli %v", served.Result.CommonWords, report.Result.CommonWords)
	}
}

func TestE2E_WebhookFromConfig(t *testing.T) {
	type delivery struct {
		runID  string
		report output.Report
	}
	received := make(chan delivery, 1)

	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var d delivery
		d.runID = r.Header.Get(webhook.RunIDHeader)
		if err := json.NewDecoder(r.Body).Decode(&d.report); err != nil {
			t.Errorf("invalid webhook payload: %v", err)
		}
		received <- d
		w.WriteHeader(http.StatusAccepted)
	}))
	defer hook.Close()

	t.Setenv("FAMILY_HOOK_TOKEN", "s3cret")
	configPath := filepath.Join(t.TempDir(), "chatlens.yaml")
	content := "webhooks:\n  - name: archive\n    url: " + hook.URL + "\n    token: ${FAMILY_HOOK_TOKEN}\n    trigger: always\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	report := analyzeJSON(t, "--config", configPath, familyChat)

	select {
	case d := <-received:
		if d.runID != report.Metadata.RunID {
			t.Errorf("expected run ID %s in header, got %s", report.Metadata.RunID, d.runID)
		}
		if d.report.Summary.Records != 8 {
			t.Errorf("expected 8 records in payload, got %d", d.report.Summary.Records)
		}
	default:
		t.Fatal("webhook was not called")
	}
}
