// Package runtime provides the pipeline execution engine.
// An Executor runs a pipeline in three stages: fetch events from the
// source, run every configured selector over the same events, and send
// the selected values to the sink. When more than one selector is
// configured their outputs are cross-checked bit for bit before
// anything reaches the sink.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ptflow/runtime/internal/errhandling"
	"github.com/ptflow/runtime/internal/event"
	"github.com/ptflow/runtime/internal/factory"
	"github.com/ptflow/runtime/internal/logger"
	"github.com/ptflow/runtime/internal/modules/selector"
	"github.com/ptflow/runtime/internal/modules/sink"
	"github.com/ptflow/runtime/internal/modules/source"
	"github.com/ptflow/runtime/pkg/analysis"
)

// Execution statuses reported in ExecutionResult.Status.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error codes reported in ExecutionResult.Error.Code.
const (
	ErrCodeInvalidPipeline  = "INVALID_PIPELINE"
	ErrCodeSourceFailed     = "SOURCE_FAILED"
	ErrCodeSelectorFailed   = "SELECTOR_FAILED"
	ErrCodeSelectorMismatch = "SELECTOR_MISMATCH"
	ErrCodeSinkFailed       = "SINK_FAILED"
)

// Validation errors returned before execution starts.
var (
	ErrNilPipeline     = errors.New("pipeline is nil")
	ErrNilSourceModule = errors.New("pipeline has no source module")
	ErrNilSinkModule   = errors.New("pipeline has no sink module")
	ErrNoSelectors     = errors.New("pipeline has no selector modules")
)

// MismatchError reports a disagreement between two selector variants
// that are required to produce identical output.
type MismatchError struct {
	// SelectorIndex is the position of the disagreeing selector
	SelectorIndex int
	// ValueIndex is the first position where the outputs differ,
	// or -1 when the outputs have different lengths
	ValueIndex int
	// Want and Got are the reference and disagreeing values
	Want float64
	Got  float64
	// WantLen and GotLen are the output lengths
	WantLen int
	GotLen  int
}

// Error implements the error interface.
func (e *MismatchError) Error() string {
	if e.ValueIndex < 0 {
		return fmt.Sprintf("selector %d produced %d values, selector 0 produced %d",
			e.SelectorIndex, e.GotLen, e.WantLen)
	}
	return fmt.Sprintf("selector %d disagrees with selector 0 at value %d: got %v, want %v",
		e.SelectorIndex, e.ValueIndex, e.Got, e.Want)
}

// Executor runs analysis pipelines.
type Executor struct {
	sourceModule    source.Module
	selectorModules []selector.Module
	sinkModule      sink.Module
	dryRun          bool
}

// stageTimings accumulates per-stage durations for the metrics log.
type stageTimings struct {
	source   time.Duration
	selector time.Duration
	sink     time.Duration
}

// NewExecutor creates an executor for a pipeline, instantiating its
// modules through the factory.
func NewExecutor(pipeline *analysis.Pipeline, dryRun bool) (*Executor, error) {
	if pipeline == nil {
		return nil, ErrNilPipeline
	}

	sourceModule, err := factory.CreateSourceModule(pipeline.Source)
	if err != nil {
		return nil, fmt.Errorf("creating source module: %w", err)
	}
	selectorModules, err := factory.CreateSelectorModules(pipeline.Selectors)
	if err != nil {
		return nil, fmt.Errorf("creating selector modules: %w", err)
	}
	sinkModule, err := factory.CreateSinkModule(pipeline.Sink, pipeline)
	if err != nil {
		return nil, fmt.Errorf("creating sink module: %w", err)
	}

	return NewExecutorWithModules(sourceModule, selectorModules, sinkModule, dryRun), nil
}

// NewExecutorWithModules creates an executor with pre-built modules.
// Used by tests and by embedders that construct modules directly.
func NewExecutorWithModules(sourceModule source.Module, selectorModules []selector.Module, sinkModule sink.Module, dryRun bool) *Executor {
	return &Executor{
		sourceModule:    sourceModule,
		selectorModules: selectorModules,
		sinkModule:      sinkModule,
		dryRun:          dryRun,
	}
}

// Execute runs the pipeline with a background context.
func (e *Executor) Execute(pipeline *analysis.Pipeline) (*analysis.ExecutionResult, error) {
	return e.ExecuteWithContext(context.Background(), pipeline)
}

// ExecuteWithContext runs the pipeline through all three stages.
// The returned result is always non-nil for a non-nil pipeline; on
// failure its Error field describes what went wrong.
func (e *Executor) ExecuteWithContext(ctx context.Context, pipeline *analysis.Pipeline) (*analysis.ExecutionResult, error) {
	if err := e.validate(pipeline); err != nil {
		if pipeline == nil {
			return nil, err
		}
		result := newResult(pipeline)
		return e.finalizeError(result, pipeline, ErrCodeInvalidPipeline, "", err), err
	}

	result := newResult(pipeline)
	execCtx := logger.ExecutionContext{
		PipelineID:   pipeline.ID,
		PipelineName: pipeline.Name,
		DryRun:       e.dryRun,
	}
	logger.LogExecutionStart(execCtx)

	var timings stageTimings

	events, err := e.executeSource(ctx, pipeline, result, &timings)
	if err != nil {
		e.closeModules()
		return e.finalizeError(result, pipeline, ErrCodeSourceFailed, stageSource, err), err
	}
	// The source is done once events are in memory.
	closeModule("source", e.sourceModule)
	e.sourceModule = nil

	values, err := e.executeSelectors(ctx, pipeline, result, events, &timings)
	if err != nil {
		e.closeModules()
		code := ErrCodeSelectorFailed
		var mismatch *MismatchError
		if errors.As(err, &mismatch) {
			code = ErrCodeSelectorMismatch
		}
		return e.finalizeError(result, pipeline, code, stageSelector, err), err
	}

	if err := e.executeSink(ctx, pipeline, result, values, &timings); err != nil {
		e.closeModules()
		return e.finalizeError(result, pipeline, ErrCodeSinkFailed, stageSink, err), err
	}
	e.closeModules()

	return e.finalizeSuccess(result, execCtx, timings), nil
}

func (e *Executor) validate(pipeline *analysis.Pipeline) error {
	if pipeline == nil {
		return ErrNilPipeline
	}
	if e.sourceModule == nil {
		return ErrNilSourceModule
	}
	if len(e.selectorModules) == 0 {
		return ErrNoSelectors
	}
	if e.sinkModule == nil {
		return ErrNilSinkModule
	}
	return nil
}

// Stage names used in logs and error details.
const (
	stageSource   = "source"
	stageSelector = "selector"
	stageSink     = "sink"
)

func (e *Executor) executeSource(ctx context.Context, pipeline *analysis.Pipeline, result *analysis.ExecutionResult, timings *stageTimings) ([]event.Event, error) {
	stageCtx := logger.ExecutionContext{
		PipelineID:   pipeline.ID,
		PipelineName: pipeline.Name,
		Stage:        stageSource,
		ModuleType:   moduleType(pipeline.Source),
		DryRun:       e.dryRun,
	}
	logger.LogStageStart(stageCtx)

	start := time.Now()
	events, err := e.sourceModule.Fetch(ctx)
	timings.source = time.Since(start)

	if err != nil {
		logger.LogStageEnd(stageCtx, 0, timings.source, &logger.ExecutionError{
			Code:    ErrCodeSourceFailed,
			Message: err.Error(),
		})
		return nil, err
	}

	result.EventsRead = len(events)
	for _, ev := range events {
		result.CandidatesSeen += ev.Len()
	}
	logger.LogStageEnd(stageCtx, len(events), timings.source, nil)
	return events, nil
}

// executeSelectors runs every selector over the same events. The first
// selector's output is the reference; every other output must match it
// bit for bit.
func (e *Executor) executeSelectors(ctx context.Context, pipeline *analysis.Pipeline, result *analysis.ExecutionResult, events []event.Event, timings *stageTimings) ([]float64, error) {
	var reference []float64

	for i, module := range e.selectorModules {
		stageCtx := logger.ExecutionContext{
			PipelineID:    pipeline.ID,
			PipelineName:  pipeline.Name,
			Stage:         stageSelector,
			ModuleType:    selectorType(pipeline, i),
			DryRun:        e.dryRun,
			SelectorIndex: i,
		}
		logger.LogStageStart(stageCtx)

		start := time.Now()
		values, err := module.Process(ctx, events)
		elapsed := time.Since(start)
		timings.selector += elapsed

		if err != nil {
			logger.LogStageEnd(stageCtx, 0, elapsed, &logger.ExecutionError{
				Code:    ErrCodeSelectorFailed,
				Message: err.Error(),
			})
			return nil, fmt.Errorf("selector %d (%s): %w", i, selectorType(pipeline, i), err)
		}

		if i == 0 {
			reference = values
		} else if mismatch := compareValues(i, reference, values); mismatch != nil {
			logger.LogStageEnd(stageCtx, len(values), elapsed, &logger.ExecutionError{
				Code:    ErrCodeSelectorMismatch,
				Message: mismatch.Error(),
			})
			return nil, mismatch
		}

		logger.LogStageEnd(stageCtx, len(values), elapsed, nil)
	}

	result.CandidatesSelected = len(reference)
	return reference, nil
}

func (e *Executor) executeSink(ctx context.Context, pipeline *analysis.Pipeline, result *analysis.ExecutionResult, values []float64, timings *stageTimings) error {
	stageCtx := logger.ExecutionContext{
		PipelineID:   pipeline.ID,
		PipelineName: pipeline.Name,
		Stage:        stageSink,
		ModuleType:   moduleType(pipeline.Sink),
		DryRun:       e.dryRun,
	}
	logger.LogStageStart(stageCtx)

	start := time.Now()
	var err error
	if e.dryRun {
		err = e.previewSink(pipeline, result, values)
	} else {
		_, err = e.sinkModule.Send(ctx, values)
	}
	timings.sink = time.Since(start)

	if err != nil {
		logger.LogStageEnd(stageCtx, 0, timings.sink, &logger.ExecutionError{
			Code:    ErrCodeSinkFailed,
			Message: err.Error(),
		})
		return err
	}

	if !e.dryRun {
		if provider, ok := e.sinkModule.(sink.SummaryProvider); ok {
			result.Histogram = provider.Summary()
		}
	}
	logger.LogStageEnd(stageCtx, len(values), timings.sink, nil)
	return nil
}

// previewSink fills the dry-run preview without letting the sink write
// anything. Sinks without preview support report only the value count.
func (e *Executor) previewSink(pipeline *analysis.Pipeline, result *analysis.ExecutionResult, values []float64) error {
	opts := sink.PreviewOptions{}
	if pipeline.DryRunOptions != nil {
		opts.ShowBins = pipeline.DryRunOptions.ShowBins
	}

	previewable, ok := e.sinkModule.(sink.PreviewableModule)
	if !ok {
		result.DryRunPreview = &analysis.SinkPreview{
			SinkType:   moduleType(pipeline.Sink),
			ValueCount: len(values),
		}
		return nil
	}

	preview, err := previewable.Preview(values, opts)
	if err != nil {
		return err
	}
	result.DryRunPreview = preview
	return nil
}

func (e *Executor) finalizeSuccess(result *analysis.ExecutionResult, execCtx logger.ExecutionContext, timings stageTimings) *analysis.ExecutionResult {
	result.Status = StatusSuccess
	result.CompletedAt = time.Now()
	total := result.CompletedAt.Sub(result.StartedAt)

	metrics := logger.ExecutionMetrics{
		TotalDuration:      total,
		SourceDuration:     timings.source,
		SelectorDuration:   timings.selector,
		SinkDuration:       timings.sink,
		EventsRead:         result.EventsRead,
		CandidatesSelected: result.CandidatesSelected,
	}
	if timings.source > 0 {
		metrics.EventsPerSecond = float64(result.EventsRead) / timings.source.Seconds()
	}
	logger.LogMetrics(execCtx, metrics)
	logger.LogExecutionEnd(execCtx, StatusSuccess, result.CandidatesSelected, total)
	return result
}

func (e *Executor) finalizeError(result *analysis.ExecutionResult, pipeline *analysis.Pipeline, code, stage string, err error) *analysis.ExecutionResult {
	result.Status = StatusError
	result.CompletedAt = time.Now()
	result.Error = buildExecutionError(code, stage, err)

	logger.LogError("pipeline execution failed", logger.ErrorContext{
		PipelineID:   pipeline.ID,
		PipelineName: pipeline.Name,
		Stage:        stage,
		ErrorCode:    code,
		ErrorMessage: err.Error(),
		Err:          err,
		Duration:     result.CompletedAt.Sub(result.StartedAt),
	})
	logger.LogExecutionEnd(logger.ExecutionContext{
		PipelineID:   pipeline.ID,
		PipelineName: pipeline.Name,
		DryRun:       e.dryRun,
	}, StatusError, result.CandidatesSelected, result.CompletedAt.Sub(result.StartedAt))
	return result
}

// buildExecutionError converts a stage failure into the structured form
// carried by the execution result, with the classified category attached.
func buildExecutionError(code, stage string, err error) *analysis.ExecutionError {
	classified := errhandling.ClassifyError(err)
	execErr := &analysis.ExecutionError{
		Code:          code,
		Message:       err.Error(),
		Module:        stage,
		ErrorCategory: string(classified.Category),
	}

	var mismatch *MismatchError
	if errors.As(err, &mismatch) {
		execErr.Details = map[string]interface{}{
			"selectorIndex": mismatch.SelectorIndex,
			"valueIndex":    mismatch.ValueIndex,
		}
	}
	return execErr
}

// compareValues checks that two selector outputs are identical.
// Comparison is on the float bit pattern, so even a last-bit rounding
// difference between variants is reported.
func compareValues(index int, want, got []float64) *MismatchError {
	if len(want) != len(got) {
		return &MismatchError{
			SelectorIndex: index,
			ValueIndex:    -1,
			WantLen:       len(want),
			GotLen:        len(got),
		}
	}
	for i := range want {
		if math.Float64bits(want[i]) != math.Float64bits(got[i]) {
			return &MismatchError{
				SelectorIndex: index,
				ValueIndex:    i,
				Want:          want[i],
				Got:           got[i],
				WantLen:       len(want),
				GotLen:        len(got),
			}
		}
	}
	return nil
}

func newResult(pipeline *analysis.Pipeline) *analysis.ExecutionResult {
	return &analysis.ExecutionResult{
		PipelineID: pipeline.ID,
		StartedAt:  time.Now(),
	}
}

func moduleType(cfg *analysis.ModuleConfig) string {
	if cfg == nil {
		return ""
	}
	return cfg.Type
}

func selectorType(pipeline *analysis.Pipeline, index int) string {
	if index < len(pipeline.Selectors) {
		return pipeline.Selectors[index].Type
	}
	return ""
}

// closeModules closes whatever modules are still open. Errors are
// logged, not returned: by the time we close, the execution outcome is
// already decided.
func (e *Executor) closeModules() {
	if e.sourceModule != nil {
		closeModule("source", e.sourceModule)
		e.sourceModule = nil
	}
	if e.sinkModule != nil {
		closeModule("sink", e.sinkModule)
		e.sinkModule = nil
	}
}

func closeModule(stage string, module interface{ Close() error }) {
	if err := module.Close(); err != nil {
		logger.Warn("failed to close module", "stage", stage, "error", err.Error())
	}
}
