// Package analysis provides public types and interfaces for analysis pipelines.
// This package is intended to be importable by external projects that need
// to interact with the ptflow runtime.
package analysis

import "time"

// Pipeline represents a complete analysis pipeline configuration.
// It contains all the modules (Source, Selectors, Sink) and metadata
// required to run a selection over a columnar event dataset.
type Pipeline struct {
	// ID is the unique identifier for this pipeline
	ID string `json:"id"`

	// Name is the human-readable name of the pipeline
	Name string `json:"name"`

	// Description provides additional context about the pipeline
	Description string `json:"description,omitempty"`

	// Version is the pipeline configuration version
	Version string `json:"version"`

	// Source defines the event source module
	Source *ModuleConfig `json:"source"`

	// Selectors is an ordered list of selector modules. When more than one
	// is configured, all are executed against the same events and the
	// runtime cross-checks that their outputs are identical.
	Selectors []ModuleConfig `json:"selectors"`

	// Sink defines the value sink module (histogram, csv, ...)
	Sink *ModuleConfig `json:"sink"`

	// DryRunOptions configures dry-run mode behavior
	DryRunOptions *DryRunOptions `json:"dryRunOptions,omitempty"`

	// Enabled indicates whether the pipeline is active
	Enabled bool `json:"enabled"`

	// CreatedAt is when the pipeline was created
	CreatedAt time.Time `json:"createdAt,omitempty"`

	// UpdatedAt is when the pipeline was last modified
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// ModuleConfig represents the configuration for a pipeline module.
// Modules can be Source, Selector, or Sink types.
type ModuleConfig struct {
	// Type identifies the module type (e.g., "jsonl", "loop", "histogram")
	Type string `json:"type"`

	// Config contains the module-specific configuration
	Config map[string]interface{} `json:"config"`
}

// DryRunOptions configures dry-run mode behavior.
type DryRunOptions struct {
	// ShowBins when true includes per-bin counts in the dry-run preview
	ShowBins bool `json:"showBins,omitempty"`
}

// ExecutionResult represents the result of a pipeline execution.
type ExecutionResult struct {
	// PipelineID is the ID of the executed pipeline
	PipelineID string `json:"pipelineId"`

	// Status is the execution status ("success", "error")
	Status string `json:"status"`

	// StartedAt is when execution started
	StartedAt time.Time `json:"startedAt"`

	// CompletedAt is when execution completed
	CompletedAt time.Time `json:"completedAt"`

	// EventsRead is the number of events fetched from the source
	EventsRead int `json:"eventsRead"`

	// CandidatesSeen is the total number of candidates across all events
	CandidatesSeen int `json:"candidatesSeen"`

	// CandidatesSelected is the number of candidates passing the selection
	CandidatesSelected int `json:"candidatesSelected"`

	// Histogram summarizes the sink accumulator, if the sink provides one
	Histogram *HistogramSummary `json:"histogram,omitempty"`

	// Error contains error details if execution failed
	Error *ExecutionError `json:"error,omitempty"`

	// DryRunPreview contains a preview of what the sink would accumulate
	// (only set in dry-run mode, for sinks implementing previews)
	DryRunPreview *SinkPreview `json:"dryRunPreview,omitempty"`
}

// HistogramSummary describes the final state of a fixed-range histogram.
type HistogramSummary struct {
	// Bins is the number of in-range bins
	Bins int `json:"bins"`

	// Min and Max are the histogram range edges; bins are half-open
	// [lo, hi) so a value equal to Max lands in the overflow counter
	Min float64 `json:"min"`
	Max float64 `json:"max"`

	// Entries is the number of in-range fills
	Entries int64 `json:"entries"`

	// Underflow counts fills below Min
	Underflow int64 `json:"underflow"`

	// Overflow counts fills at or above Max
	Overflow int64 `json:"overflow"`

	// Counts holds per-bin contents, index 0 at Min
	Counts []int64 `json:"counts,omitempty"`

	// Mean and StdDev summarize all accepted values (including outflows)
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
}

// Total returns the total fill count including under/overflow.
func (s *HistogramSummary) Total() int64 {
	return s.Entries + s.Underflow + s.Overflow
}

// SinkPreview contains the preview of what a sink would accumulate.
// Used in dry-run mode to show the would-be result without writing files.
type SinkPreview struct {
	// SinkType is the module type of the previewed sink
	SinkType string `json:"sinkType"`

	// ValueCount is the number of values that would be sent
	ValueCount int `json:"valueCount"`

	// Histogram is the would-be accumulator state (histogram sinks only)
	Histogram *HistogramSummary `json:"histogram,omitempty"`

	// Target is the file the sink would write (plot path, csv path)
	Target string `json:"target,omitempty"`
}

// ExecutionError contains details about an execution failure.
type ExecutionError struct {
	// Code is the error code
	Code string `json:"code"`

	// Message is the human-readable error message
	Message string `json:"message"`

	// Module is the module where the error occurred
	Module string `json:"module,omitempty"`

	// ErrorCategory is the classified category (io, parse, expression, ...)
	ErrorCategory string `json:"errorCategory,omitempty"`

	// Details contains additional error context
	Details map[string]interface{} `json:"details,omitempty"`
}
