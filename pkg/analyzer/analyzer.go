package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ccollicutt/chatlens/pkg/config"
	"github.com/ccollicutt/chatlens/pkg/parser"
)

// Analyzer computes a selection of aggregates over a record set.
type Analyzer struct {
	aggregates []Aggregate

	// Options
	participant     string
	stopwords       Stopwords
	topWords        int
	topUsers        int
	aggregateFilter map[AggregateName]bool // nil means all aggregates
	parallel        bool
}

// AnalyzerOption configures analyzer behavior.
type AnalyzerOption func(*Analyzer)

// WithParticipant limits analysis to one sender. Overall selects everyone.
func WithParticipant(name string) AnalyzerOption {
	return func(a *Analyzer) {
		a.participant = name
	}
}

// WithStopwords replaces the stopword set used by common words.
func WithStopwords(s Stopwords) AnalyzerOption {
	return func(a *Analyzer) {
		a.stopwords = s
	}
}

// WithTopWords sets how many common words are reported.
func WithTopWords(n int) AnalyzerOption {
	return func(a *Analyzer) {
		if n > 0 {
			a.topWords = n
		}
	}
}

// WithTopUsers sets how many senders appear in the busiest-users chart.
func WithTopUsers(n int) AnalyzerOption {
	return func(a *Analyzer) {
		if n > 0 {
			a.topUsers = n
		}
	}
}

// WithAggregates limits analysis to the named aggregates.
func WithAggregates(names []string) AnalyzerOption {
	return func(a *Analyzer) {
		if len(names) > 0 {
			a.aggregateFilter = make(map[AggregateName]bool)
			for _, n := range names {
				a.aggregateFilter[AggregateName(n)] = true
			}
		}
	}
}

// WithParallel computes aggregates concurrently.
func WithParallel(p bool) AnalyzerOption {
	return func(a *Analyzer) {
		a.parallel = p
	}
}

// NewAnalyzer creates a new analyzer from configuration. A nil config uses
// the built-in defaults.
func NewAnalyzer(cfg *config.Config, opts ...AnalyzerOption) (*Analyzer, error) {
	a := &Analyzer{
		participant: Overall,
		topWords:    DefaultTopWords,
		topUsers:    DefaultTopUsers,
	}

	if cfg != nil {
		if cfg.Analytics.TopWords > 0 {
			a.topWords = cfg.Analytics.TopWords
		}
		if cfg.Analytics.TopUsers > 0 {
			a.topUsers = cfg.Analytics.TopUsers
		}
		a.parallel = cfg.Analytics.Parallel
		if words := cfg.ResolvedStopwords(); len(words) > 0 {
			a.stopwords = NewStopwords(words)
		}
	}
	if a.stopwords == nil {
		a.stopwords = NewStopwords(config.DefaultStopwords())
	}

	// Apply options
	for _, opt := range opts {
		opt(a)
	}

	if a.aggregateFilter != nil {
		for name := range a.aggregateFilter {
			if !isKnownAggregate(name) {
				return nil, fmt.Errorf("unknown aggregate %q (valid: %v)", name, AllAggregates)
			}
		}
	}

	for _, name := range AllAggregates {
		if a.aggregateFilter != nil && !a.aggregateFilter[name] {
			continue
		}
		a.aggregates = append(a.aggregates, a.createAggregate(name))
	}

	return a, nil
}

func isKnownAggregate(name AggregateName) bool {
	for _, n := range AllAggregates {
		if n == name {
			return true
		}
	}
	return false
}

// createAggregate binds an aggregate to the analyzer's settings.
func (a *Analyzer) createAggregate(name AggregateName) Aggregate {
	var fn func([]parser.Record, *AnalysisResult)

	switch name {
	case AggregateStats:
		fn = func(records []parser.Record, r *AnalysisResult) {
			s := FetchStats(a.participant, records)
			r.Stats = &s
		}
	case AggregateBusiest:
		fn = func(records []parser.Record, r *AnalysisResult) {
			b := busiestUsers(selectRecords(a.participant, records), a.topUsers)
			r.Busiest = &b
		}
	case AggregateTimeline:
		fn = func(records []parser.Record, r *AnalysisResult) {
			r.Timeline = MonthlyTimeline(a.participant, records)
		}
	case AggregateWeekdays:
		fn = func(records []parser.Record, r *AnalysisResult) {
			r.Weekdays = WeekdayActivity(a.participant, records)
		}
	case AggregateMonths:
		fn = func(records []parser.Record, r *AnalysisResult) {
			r.Months = MonthActivity(a.participant, records)
		}
	case AggregateHeatmap:
		fn = func(records []parser.Record, r *AnalysisResult) {
			h := ActivityHeatmap(a.participant, records)
			r.Heatmap = &h
		}
	case AggregateVocabulary:
		fn = func(records []parser.Record, r *AnalysisResult) {
			text, ok := Vocabulary(a.participant, records)
			r.Vocabulary = &VocabularyText{Text: text, OK: ok}
		}
	case AggregateCommonWords:
		fn = func(records []parser.Record, r *AnalysisResult) {
			r.CommonWords = CommonWords(a.participant, records, a.stopwords, a.topWords)
		}
	case AggregateEmoji:
		fn = func(records []parser.Record, r *AnalysisResult) {
			r.Emoji = EmojiUsage(a.participant, records)
		}
	}

	return aggregateFunc{name: name, fn: fn}
}

// Analyze computes the selected aggregates over records.
func (a *Analyzer) Analyze(ctx context.Context, records []parser.Record) (*AnalysisResult, error) {
	result := &AnalysisResult{
		Participant:  a.participant,
		Participants: Participants(records),
		Records:      len(selectRecords(a.participant, records)),
		Aggregates:   make([]AggregateName, 0, len(a.aggregates)),
		StartTime:    time.Now(),
	}
	for _, agg := range a.aggregates {
		result.Aggregates = append(result.Aggregates, agg.Name())
	}

	var err error
	if a.parallel {
		err = a.computeParallel(ctx, records, result)
	} else {
		err = a.computeSequential(ctx, records, result)
	}
	if err != nil {
		return nil, err
	}

	result.EndTime = time.Now()

	log.Debug().
		Str("participant", a.participant).
		Int("records", result.Records).
		Int("aggregates", len(a.aggregates)).
		Bool("parallel", a.parallel).
		Dur("duration", result.Duration()).
		Msg("analysis complete")

	return result, nil
}

func (a *Analyzer) computeSequential(ctx context.Context, records []parser.Record, result *AnalysisResult) error {
	for _, agg := range a.aggregates {
		if err := agg.Compute(ctx, records, result); err != nil {
			return fmt.Errorf("computing %s: %w", agg.Name(), err)
		}
	}
	return nil
}

func (a *Analyzer) computeParallel(ctx context.Context, records []parser.Record, result *AnalysisResult) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, agg := range a.aggregates {
		agg := agg
		g.Go(func() error {
			if err := agg.Compute(gctx, records, result); err != nil {
				return fmt.Errorf("computing %s: %w", agg.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}
