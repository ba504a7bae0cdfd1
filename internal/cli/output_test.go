package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ptflow/runtime/internal/config"
	"github.com/ptflow/runtime/pkg/analysis"
)

func successResult() *analysis.ExecutionResult {
	started := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return &analysis.ExecutionResult{
		PipelineID:         "pt-analysis",
		Status:             "success",
		StartedAt:          started,
		CompletedAt:        started.Add(time.Second),
		EventsRead:         100,
		CandidatesSeen:     250,
		CandidatesSelected: 42,
		Histogram: &analysis.HistogramSummary{
			Bins: 16, Min: 0, Max: 4,
			Entries: 40, Overflow: 2,
			Mean: 1.5, StdDev: 0.7,
			Counts: []int64{0, 1, 2, 3},
		},
	}
}

func TestFprintExecutionResultSuccess(t *testing.T) {
	var out, errOut bytes.Buffer
	FprintExecutionResult(&out, &errOut, successResult(), nil, OutputOptions{})

	got := out.String()
	for _, want := range []string{
		"executed successfully",
		"Events read: 100",
		"Candidates seen: 250",
		"Candidates selected: 42",
		"16 bins over [0, 4)",
		"underflow 0, overflow 2",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if errOut.Len() != 0 {
		t.Errorf("unexpected stderr output: %s", errOut.String())
	}
	// Per-bin counts only appear in verbose mode.
	if strings.Contains(got, "[ 0.000,") {
		t.Error("bin listing should require verbose")
	}
}

func TestFprintExecutionResultVerboseBins(t *testing.T) {
	var out, errOut bytes.Buffer
	FprintExecutionResult(&out, &errOut, successResult(), nil, OutputOptions{Verbose: true})

	got := out.String()
	if !strings.Contains(got, "Duration:") {
		t.Errorf("verbose output missing duration:\n%s", got)
	}
	if !strings.Contains(got, "[ 0.000,  0.250): 0") {
		t.Errorf("verbose output missing bin listing:\n%s", got)
	}
}

func TestFprintExecutionResultQuiet(t *testing.T) {
	var out, errOut bytes.Buffer
	FprintExecutionResult(&out, &errOut, successResult(), nil, OutputOptions{Quiet: true})
	if out.Len() != 0 {
		t.Errorf("quiet mode produced output: %s", out.String())
	}
}

func TestFprintExecutionResultFailure(t *testing.T) {
	result := &analysis.ExecutionResult{
		Status: "error",
		Error: &analysis.ExecutionError{
			Code:          "SOURCE_FAILED",
			Message:       "no such file",
			Module:        "source",
			ErrorCategory: "io",
		},
	}
	var out, errOut bytes.Buffer
	FprintExecutionResult(&out, &errOut, result, errors.New("boom"), OutputOptions{Verbose: true})

	got := errOut.String()
	for _, want := range []string{"execution failed", "Stage: source", "no such file", "Category: io"} {
		if !strings.Contains(got, want) {
			t.Errorf("stderr missing %q:\n%s", want, got)
		}
	}
	if out.Len() != 0 {
		t.Errorf("failure wrote to stdout: %s", out.String())
	}
}

func TestFprintExecutionResultNil(t *testing.T) {
	var out, errOut bytes.Buffer
	FprintExecutionResult(&out, &errOut, nil, errors.New("boom"), OutputOptions{})
	if !strings.Contains(errOut.String(), "No execution result") {
		t.Errorf("unexpected stderr: %s", errOut.String())
	}
}

func TestFprintDryRunPreview(t *testing.T) {
	preview := &analysis.SinkPreview{
		SinkType:   "histogram",
		ValueCount: 42,
		Target:     "out/pt.png",
		Histogram:  &analysis.HistogramSummary{Bins: 16, Max: 4, Entries: 40},
	}
	var buf bytes.Buffer
	FprintDryRunPreview(&buf, preview)

	got := buf.String()
	for _, want := range []string{"nothing was written", "Sink: histogram", "Values: 42", "Would write: out/pt.png"} {
		if !strings.Contains(got, want) {
			t.Errorf("preview missing %q:\n%s", want, got)
		}
	}
}

func TestFprintParseErrors(t *testing.T) {
	var buf bytes.Buffer
	FprintParseErrors(&buf, []config.ParseError{
		{Path: "p.yaml", Line: 3, Column: 5, Message: "bad syntax", Type: config.ErrorTypeSyntax},
		{Message: "unreadable"},
	}, true)

	got := buf.String()
	if !strings.Contains(got, "p.yaml:3:5: bad syntax") {
		t.Errorf("missing located error:\n%s", got)
	}
	if !strings.Contains(got, "Type: syntax") {
		t.Errorf("verbose mode missing type:\n%s", got)
	}
	if !strings.Contains(got, "unreadable") {
		t.Errorf("missing unlocated error:\n%s", got)
	}
}

func TestFprintValidationErrors(t *testing.T) {
	long := strings.Repeat("x", 100)
	var buf bytes.Buffer
	FprintValidationErrors(&buf, []config.ValidationError{
		{Path: "/pipeline", Message: long, Type: "required"},
		{Message: "root problem"},
	}, false, false)

	got := buf.String()
	if !strings.Contains(got, "/pipeline: "+long[:77]+"...") {
		t.Errorf("long message not truncated:\n%s", got)
	}
	if !strings.Contains(got, "/: root problem") {
		t.Errorf("empty path not shown as root:\n%s", got)
	}
	if !strings.Contains(got, "Hint:") {
		t.Errorf("missing hint:\n%s", got)
	}
}

func TestFprintConfigSummary(t *testing.T) {
	var buf bytes.Buffer
	FprintConfigSummary(&buf, map[string]interface{}{
		"pipeline": map[string]interface{}{"name": "pt-analysis", "version": "1.0.0"},
	})
	got := buf.String()
	if !strings.Contains(got, "Pipeline: pt-analysis") || !strings.Contains(got, "Version: 1.0.0") {
		t.Errorf("unexpected summary:\n%s", got)
	}

	buf.Reset()
	FprintConfigSummary(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("nil data produced output: %s", buf.String())
	}
}
