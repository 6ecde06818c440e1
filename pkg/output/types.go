// Package output provides formatting and output generation for analysis results.
package output

import (
	"time"

	"github.com/google/uuid"

	"github.com/ccollicutt/chatlens/pkg/analyzer"
	"github.com/ccollicutt/chatlens/pkg/parser"
)

// Report is the complete analysis output.
type Report struct {
	// Summary provides headline counts.
	Summary Summary `json:"summary"`

	// Result holds the computed aggregates.
	Result *analyzer.AnalysisResult `json:"result"`

	// Metadata provides context about the analysis.
	Metadata Metadata `json:"metadata"`
}

// Summary provides headline counts.
type Summary struct {
	// Participant is the selection the report covers.
	Participant string `json:"participant"`

	// Participants is the number of distinct senders, excluding Overall.
	Participants int `json:"participants"`

	// Records is the number of messages in the selection.
	Records int `json:"records"`

	// Entries is the number of bracketed entries found across all sources.
	Entries int `json:"entries"`

	// Dropped is the number of entries discarded as system lines.
	Dropped int `json:"dropped"`
}

// Metadata provides context about the analysis run.
type Metadata struct {
	// RunID uniquely identifies this analysis run.
	RunID string `json:"run_id"`

	// ConfigFile is the path to the configuration file used.
	ConfigFile string `json:"config_file,omitempty"`

	// Sources lists the exports that were analyzed.
	Sources []Source `json:"sources"`

	// AnalyzedAt is when the analysis was performed.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// Duration is how long the analysis took.
	Duration time.Duration `json:"duration"`
}

// Source describes one parsed export.
type Source struct {
	Path    string         `json:"path"`
	Entries int            `json:"entries"`
	Records int            `json:"records"`
	Dropped map[string]int `json:"dropped,omitempty"`
}

// NewSource summarizes a detailed parse of the export at path.
func NewSource(path string, res *parser.Result) Source {
	src := Source{
		Path:    path,
		Entries: res.Entries,
		Records: len(res.Records),
	}
	if dropped := res.Dropped(); len(dropped) > 0 {
		src.Dropped = make(map[string]int, len(dropped))
		for reason, n := range dropped {
			src.Dropped[string(reason)] = n
		}
	}
	return src
}

// NewReport creates a Report from analysis results.
func NewReport(result *analyzer.AnalysisResult, configFile string, sources []Source) *Report {
	report := &Report{
		Result: result,
		Metadata: Metadata{
			RunID:      uuid.NewString(),
			ConfigFile: configFile,
			Sources:    sources,
			AnalyzedAt: result.EndTime,
			Duration:   result.Duration(),
		},
		Summary: Summary{
			Participant:  result.Participant,
			Participants: len(result.Participants) - 1,
			Records:      result.Records,
		},
	}
	if report.Summary.Participants < 0 {
		report.Summary.Participants = 0
	}

	for _, s := range sources {
		report.Summary.Entries += s.Entries
		for _, n := range s.Dropped {
			report.Summary.Dropped += n
		}
	}

	return report
}

// HasRecords returns true if the selection contained any messages.
func (r *Report) HasRecords() bool {
	return r.Summary.Records > 0
}
