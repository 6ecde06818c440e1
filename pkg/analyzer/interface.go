package analyzer

import (
	"context"

	"github.com/ccollicutt/chatlens/pkg/parser"
)

// Aggregate computes one named result from the full record set.
// Each implementation writes only its own field of the result, so
// aggregates may run concurrently.
type Aggregate interface {
	// Name returns the aggregate name used for selection and reporting.
	Name() AggregateName

	// Compute derives the aggregate for the analyzer's participant and
	// stores it in result.
	Compute(ctx context.Context, records []parser.Record, result *AnalysisResult) error
}

// aggregateFunc adapts a function to the Aggregate interface.
type aggregateFunc struct {
	name AggregateName
	fn   func(records []parser.Record, result *AnalysisResult)
}

func (a aggregateFunc) Name() AggregateName { return a.name }

func (a aggregateFunc) Compute(ctx context.Context, records []parser.Record, result *AnalysisResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.fn(records, result)
	return nil
}
