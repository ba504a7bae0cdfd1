package sink

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHistogramSendAndSummary(t *testing.T) {
	m, err := NewHistogramFromConfig(map[string]interface{}{"render": "none"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	n, err := m.Send(context.Background(), []float64{5.0, 1.0})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("Send() = %d, want 2", n)
	}

	s := m.Summary()
	if s.Entries != 1 || s.Overflow != 1 || s.Underflow != 0 {
		t.Errorf("entries=%d overflow=%d underflow=%d, want 1/1/0", s.Entries, s.Overflow, s.Underflow)
	}
	// 1.0 lands in bin 4 of the 16-bin [0,4) layout
	if s.Counts[4] != 1 {
		t.Errorf("Counts[4] = %d, want 1", s.Counts[4])
	}
	if s.Total() != 2 {
		t.Errorf("Total() = %d, want 2", s.Total())
	}
	if s.Mean != 3 {
		t.Errorf("Mean = %v, want 3", s.Mean)
	}
	if want := math.Sqrt(8); s.StdDev != want {
		t.Errorf("StdDev = %v, want %v", s.StdDev, want)
	}
}

func TestHistogramASCIIRender(t *testing.T) {
	m, err := NewHistogramFromConfig(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	m.out = &buf

	if _, err := m.Send(context.Background(), []float64{1.0, 1.1, 5.0}); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, DefaultTitle) {
		t.Errorf("missing title in output:\n%s", out)
	}
	if !strings.Contains(out, "overflow=1") {
		t.Errorf("missing overflow count in output:\n%s", out)
	}
	if lines := strings.Count(out, "\n"); lines != 17 {
		t.Errorf("got %d lines, want 17 (header + 16 bins)", lines)
	}
}

func TestHistogramPNGRender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plots", "pt.png")
	m, err := NewHistogramFromConfig(map[string]interface{}{"path": path}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if m.render != RenderPNG {
		t.Fatalf("render = %q, want png when path is set", m.render)
	}

	if _, err := m.Send(context.Background(), []float64{0.5, 1.5, 2.5}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("plot file not written: %v", err)
	}
}

func TestHistogramEmptySkipsPlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pt.png")
	m, err := NewHistogramFromConfig(map[string]interface{}{"path": path}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.Send(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("empty histogram should not write a plot, stat err = %v", err)
	}
}

func TestHistogramPreview(t *testing.T) {
	m, err := NewHistogramFromConfig(map[string]interface{}{"render": "none"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	preview, err := m.Preview([]float64{5.0, 1.0}, PreviewOptions{ShowBins: true})
	if err != nil {
		t.Fatal(err)
	}
	if preview.SinkType != "histogram" || preview.ValueCount != 2 {
		t.Errorf("unexpected preview: %+v", preview)
	}
	if preview.Histogram.Entries != 1 || preview.Histogram.Overflow != 1 {
		t.Errorf("unexpected preview histogram: %+v", preview.Histogram)
	}
	if len(preview.Histogram.Counts) != 16 {
		t.Errorf("ShowBins should include counts, got %v", preview.Histogram.Counts)
	}

	// the preview must not touch the live accumulator
	if m.hist.Total() != 0 {
		t.Errorf("preview mutated accumulator: total=%d", m.hist.Total())
	}

	noBins, err := m.Preview([]float64{5.0}, PreviewOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if noBins.Histogram.Counts != nil {
		t.Errorf("counts should be omitted without ShowBins, got %v", noBins.Histogram.Counts)
	}
}

func TestHistogramTemplatePath(t *testing.T) {
	vars := map[string]interface{}{
		"pipeline": map[string]interface{}{"id": "pt-analysis"},
	}
	m, err := NewHistogramFromConfig(map[string]interface{}{
		"path": "out/{{pipeline.id}}.png",
	}, vars)
	if err != nil {
		t.Fatal(err)
	}
	if m.path != "out/pt-analysis.png" {
		t.Errorf("path = %q, want out/pt-analysis.png", m.path)
	}
}

func TestHistogramConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		config map[string]interface{}
	}{
		{name: "zero bins", config: map[string]interface{}{"bins": 0, "render": "none"}},
		{name: "empty range", config: map[string]interface{}{"min": 4.0, "max": 4.0, "render": "none"}},
		{name: "unknown render", config: map[string]interface{}{"render": "svg"}},
		{name: "png without path", config: map[string]interface{}{"render": "png"}},
		{name: "traversal path", config: map[string]interface{}{"path": "../pt.png"}},
		{name: "bins not a number", config: map[string]interface{}{"bins": "many"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewHistogramFromConfig(tt.config, nil); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
