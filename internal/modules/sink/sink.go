// Package sink provides implementations for value sink modules.
// Sink modules consume the pt values produced by the selectors and
// persist or render them.
package sink

import (
	"context"

	"github.com/ptflow/runtime/pkg/analysis"
)

// Module represents a sink that consumes selected values.
type Module interface {
	// Send delivers values to the sink.
	// Returns the number of values accepted and any error.
	Send(ctx context.Context, values []float64) (int, error)

	// Close releases any resources held by the module.
	Close() error
}

// SummaryProvider is implemented by sinks that accumulate a histogram
// and can report its final state.
type SummaryProvider interface {
	Summary() *analysis.HistogramSummary
}

// PreviewOptions configures dry-run previews.
type PreviewOptions struct {
	// ShowBins includes per-bin counts in the preview
	ShowBins bool
}

// PreviewableModule is implemented by sinks that can describe what they
// would do with a value batch without performing any writes.
type PreviewableModule interface {
	Preview(values []float64, opts PreviewOptions) (*analysis.SinkPreview, error)
}
