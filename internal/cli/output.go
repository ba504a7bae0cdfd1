// Package cli provides CLI output formatting and display functions.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/ptflow/runtime/pkg/analysis"
)

// OutputOptions configures CLI output behavior.
type OutputOptions struct {
	Verbose bool
	Quiet   bool
	DryRun  bool
}

// PrintExecutionResult displays the pipeline execution result on
// stdout, or the failure on stderr.
func PrintExecutionResult(result *analysis.ExecutionResult, err error, opts OutputOptions) {
	FprintExecutionResult(os.Stdout, os.Stderr, result, err, opts)
}

// FprintExecutionResult displays the execution result on the given writers.
func FprintExecutionResult(out, errOut io.Writer, result *analysis.ExecutionResult, err error, opts OutputOptions) {
	if result == nil {
		fmt.Fprintln(errOut, "✗ No execution result available")
		return
	}

	if err != nil {
		fmt.Fprintln(errOut, "✗ Pipeline execution failed")
		if result.Error != nil {
			if result.Error.Module != "" {
				fmt.Fprintf(errOut, "  Stage: %s\n", result.Error.Module)
			}
			fmt.Fprintf(errOut, "  Error: %s\n", result.Error.Message)
			if opts.Verbose && result.Error.ErrorCategory != "" {
				fmt.Fprintf(errOut, "  Category: %s\n", result.Error.ErrorCategory)
			}
		}
		return
	}

	if opts.Quiet {
		return
	}

	fmt.Fprintln(out, "✓ Pipeline executed successfully")
	fmt.Fprintf(out, "  Events read: %d\n", result.EventsRead)
	fmt.Fprintf(out, "  Candidates seen: %d\n", result.CandidatesSeen)
	fmt.Fprintf(out, "  Candidates selected: %d\n", result.CandidatesSelected)
	if opts.Verbose {
		fmt.Fprintf(out, "  Duration: %v\n", result.CompletedAt.Sub(result.StartedAt))
	}

	if result.Histogram != nil {
		fprintHistogramSummary(out, result.Histogram, opts.Verbose)
	}
	if opts.DryRun && result.DryRunPreview != nil {
		FprintDryRunPreview(out, result.DryRunPreview)
	}
}

// fprintHistogramSummary prints the final accumulator state.
func fprintHistogramSummary(w io.Writer, h *analysis.HistogramSummary, verbose bool) {
	fmt.Fprintf(w, "  Histogram: %d bins over [%g, %g)\n", h.Bins, h.Min, h.Max)
	fmt.Fprintf(w, "    Entries: %d (underflow %d, overflow %d)\n",
		h.Entries, h.Underflow, h.Overflow)
	if h.Total() > 0 {
		fmt.Fprintf(w, "    Mean: %.4f  StdDev: %.4f\n", h.Mean, h.StdDev)
	}
	if verbose && len(h.Counts) > 0 {
		width := (h.Max - h.Min) / float64(h.Bins)
		for i, count := range h.Counts {
			lo := h.Min + float64(i)*width
			fmt.Fprintf(w, "    [%6.3f, %6.3f): %d\n", lo, lo+width, count)
		}
	}
}

// PrintDryRunPreview displays what the sink would have accumulated.
func PrintDryRunPreview(preview *analysis.SinkPreview) {
	FprintDryRunPreview(os.Stdout, preview)
}

// FprintDryRunPreview displays the dry-run preview on the given writer.
func FprintDryRunPreview(w io.Writer, preview *analysis.SinkPreview) {
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Dry-run preview (nothing was written):")
	fmt.Fprintf(w, "  Sink: %s\n", preview.SinkType)
	fmt.Fprintf(w, "  Values: %d\n", preview.ValueCount)
	if preview.Target != "" {
		fmt.Fprintf(w, "  Would write: %s\n", preview.Target)
	}
	if preview.Histogram != nil {
		fprintHistogramSummary(w, preview.Histogram, len(preview.Histogram.Counts) > 0)
	}
}

// PrintConfigSummary prints the pipeline name and version if available.
func PrintConfigSummary(data map[string]interface{}) {
	FprintConfigSummary(os.Stdout, data)
}

// FprintConfigSummary prints the pipeline name and version to the given writer.
func FprintConfigSummary(w io.Writer, data map[string]interface{}) {
	if data == nil {
		return
	}
	section, ok := data["pipeline"].(map[string]interface{})
	if !ok {
		return
	}
	if name, ok := section["name"].(string); ok {
		fmt.Fprintf(w, "  Pipeline: %s\n", name)
	}
	if version, ok := section["version"].(string); ok {
		fmt.Fprintf(w, "  Version: %s\n", version)
	}
}
