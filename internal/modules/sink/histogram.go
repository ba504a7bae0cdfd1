// Package sink provides implementations for value sink modules.
// Histogram module accumulates pt values into a fixed-range histogram
// and renders it as a plot file or an ASCII chart.
package sink

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot/vg"

	"github.com/ptflow/runtime/internal/hist"
	"github.com/ptflow/runtime/internal/logger"
	"github.com/ptflow/runtime/internal/pathutil"
	"github.com/ptflow/runtime/internal/template"
	"github.com/ptflow/runtime/pkg/analysis"
)

// Error codes for sink modules
const (
	ErrCodeInvalidSinkConfig = "SINK_INVALID_CONFIG"
	ErrCodeRenderFailed      = "SINK_RENDER_FAILED"
	ErrCodeWriteFailed       = "SINK_WRITE_FAILED"
)

// Render modes for the histogram sink
const (
	RenderPNG   = "png"
	RenderASCII = "ascii"
	RenderNone  = "none"
)

// DefaultTitle is the plot title used when the configuration does not
// override it.
const DefaultTitle = "pt distribution"

// asciiBarWidth is the width of the longest ASCII bar.
const asciiBarWidth = 40

// SinkError carries structured context for sink failures.
type SinkError struct {
	Code    string
	Message string
	Path    string
}

func (e *SinkError) Error() string {
	return e.Message
}

// newSinkError creates a SinkError with path context.
func newSinkError(code, message, path string) *SinkError {
	return &SinkError{Code: code, Message: message, Path: path}
}

// HistogramModule accumulates values into a histogram and renders it.
//
// Configuration options (all optional):
//
//	bins, min, max: histogram shape, default 16 bins over [0, 4)
//	render:         "png", "ascii" or "none"; defaults to "png" when a
//	                path is configured, "ascii" otherwise
//	path:           output file for the png render, may contain
//	                {{pipeline.id}} / {{pipeline.name}} variables
//	title:          plot title, templated like path
type HistogramModule struct {
	hist   *hist.Histogram
	render string
	path   string
	title  string

	// all accepted values, kept for the mean / stddev summary
	values []float64

	// ascii render target, stdout unless overridden in tests
	out io.Writer
}

// NewHistogramFromConfig creates a histogram sink from raw configuration.
// vars supplies template variables (pipeline id and name) resolved into
// the path and title at construction time.
func NewHistogramFromConfig(config map[string]interface{}, vars map[string]interface{}) (*HistogramModule, error) {
	cfg := hist.DefaultConfig()
	var err error
	if cfg.Bins, err = intOption(config, "bins", cfg.Bins); err != nil {
		return nil, err
	}
	if cfg.Min, err = floatOption(config, "min", cfg.Min); err != nil {
		return nil, err
	}
	if cfg.Max, err = floatOption(config, "max", cfg.Max); err != nil {
		return nil, err
	}

	h, err := hist.New(cfg)
	if err != nil {
		return nil, newSinkError(ErrCodeInvalidSinkConfig, err.Error(), "")
	}

	path, err := stringOption(config, "path", "")
	if err != nil {
		return nil, err
	}
	title, err := stringOption(config, "title", DefaultTitle)
	if err != nil {
		return nil, err
	}

	render, err := stringOption(config, "render", "")
	if err != nil {
		return nil, err
	}
	if render == "" {
		if path != "" {
			render = RenderPNG
		} else {
			render = RenderASCII
		}
	}
	switch render {
	case RenderPNG, RenderASCII, RenderNone:
	default:
		return nil, newSinkError(ErrCodeInvalidSinkConfig,
			fmt.Sprintf("unsupported render mode %q", render), path)
	}

	if len(vars) > 0 {
		eval := template.NewEvaluator()
		path = eval.Evaluate(path, vars)
		title = eval.Evaluate(title, vars)
	}

	if render == RenderPNG {
		if path == "" {
			return nil, newSinkError(ErrCodeInvalidSinkConfig,
				"png render requires a 'path'", "")
		}
		if err := pathutil.ValidateFilePath(path); err != nil {
			return nil, newSinkError(ErrCodeInvalidSinkConfig,
				fmt.Sprintf("invalid output path %q: %v", path, err), path)
		}
	}

	logger.Debug("histogram sink initialized",
		slog.Int("bins", cfg.Bins),
		slog.Float64("min", cfg.Min),
		slog.Float64("max", cfg.Max),
		slog.String("render", render),
		slog.String("path", path),
	)

	return &HistogramModule{
		hist:   h,
		render: render,
		path:   path,
		title:  title,
		out:    os.Stdout,
	}, nil
}

// Send fills the histogram with the values and renders the configured
// output. Returns the number of values accepted.
func (m *HistogramModule) Send(ctx context.Context, values []float64) (int, error) {
	for _, v := range values {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		m.hist.Fill(v)
		m.values = append(m.values, v)
	}

	switch m.render {
	case RenderPNG:
		if err := m.writePlot(); err != nil {
			return 0, err
		}
	case RenderASCII:
		m.writeASCII(m.out)
	}

	return len(values), nil
}

// Close releases resources (no-op, rendering happens in Send).
func (m *HistogramModule) Close() error {
	return nil
}

// Summary reports the accumulator state.
func (m *HistogramModule) Summary() *analysis.HistogramSummary {
	return summarize(m.hist, m.values, true)
}

// Preview reports what the sink would accumulate for the given values
// without touching the histogram or writing any file.
func (m *HistogramModule) Preview(values []float64, opts PreviewOptions) (*analysis.SinkPreview, error) {
	h, err := hist.New(m.hist.Config())
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		h.Fill(v)
	}

	return &analysis.SinkPreview{
		SinkType:   "histogram",
		ValueCount: len(values),
		Histogram:  summarize(h, values, opts.ShowBins),
		Target:     m.path,
	}, nil
}

// summarize builds the public summary for an accumulator and the raw
// values that fed it.
func summarize(h *hist.Histogram, values []float64, withBins bool) *analysis.HistogramSummary {
	cfg := h.Config()
	s := &analysis.HistogramSummary{
		Bins:      cfg.Bins,
		Min:       cfg.Min,
		Max:       cfg.Max,
		Entries:   h.Entries(),
		Underflow: h.Underflow(),
		Overflow:  h.Overflow(),
	}
	if withBins {
		s.Counts = h.Counts()
	}
	if len(values) > 0 {
		s.Mean = stat.Mean(values, nil)
	}
	if len(values) > 1 {
		s.StdDev = stat.StdDev(values, nil)
	}
	return s
}

// writePlot renders the histogram to the configured image file.
func (m *HistogramModule) writePlot() error {
	if m.hist.Total() == 0 {
		logger.Warn("histogram is empty, skipping plot render",
			slog.String("path", m.path))
		return nil
	}

	if err := pathutil.EnsureParentDir(m.path); err != nil {
		return newSinkError(ErrCodeWriteFailed, err.Error(), m.path)
	}

	p := hplot.New()
	p.Title.Text = m.title
	p.X.Label.Text = "pt"
	p.Y.Label.Text = "candidates"
	p.Add(hplot.NewH1D(m.hist.H1D()), hplot.NewGrid())

	if err := p.Save(15*vg.Centimeter, -1, m.path); err != nil {
		return newSinkError(ErrCodeRenderFailed,
			fmt.Sprintf("failed to render plot to %q: %v", m.path, err), m.path)
	}

	logger.Info("histogram plot written", slog.String("path", m.path))
	return nil
}

// writeASCII renders the histogram as a bar chart.
func (m *HistogramModule) writeASCII(w io.Writer) {
	cfg := m.hist.Config()
	counts := m.hist.Counts()

	var max int64
	for _, c := range counts {
		if c > max {
			max = c
		}
	}

	fmt.Fprintf(w, "%s (entries=%d, underflow=%d, overflow=%d)\n",
		m.title, m.hist.Entries(), m.hist.Underflow(), m.hist.Overflow())
	for i := 0; i < cfg.Bins; i++ {
		lo, hi := m.hist.BinEdges(i)
		bar := ""
		if max > 0 {
			bar = strings.Repeat("#", int(counts[i]*asciiBarWidth/max))
		}
		fmt.Fprintf(w, "[%6.2f, %6.2f) %6d %s\n", lo, hi, counts[i], bar)
	}
}

// intOption extracts an optional integer from raw configuration.
func intOption(config map[string]interface{}, key string, def int) (int, error) {
	v, ok := config[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	}
	return 0, newSinkError(ErrCodeInvalidSinkConfig,
		fmt.Sprintf("%s must be a number, got %T", key, v), "")
}

// floatOption extracts an optional float from raw configuration.
func floatOption(config map[string]interface{}, key string, def float64) (float64, error) {
	v, ok := config[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, newSinkError(ErrCodeInvalidSinkConfig,
		fmt.Sprintf("%s must be a number, got %T", key, v), "")
}

// stringOption extracts an optional string from raw configuration.
func stringOption(config map[string]interface{}, key, def string) (string, error) {
	v, ok := config[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", newSinkError(ErrCodeInvalidSinkConfig,
			fmt.Sprintf("%s must be a string, got %T", key, v), "")
	}
	return s, nil
}

// Verify interfaces
var (
	_ Module            = (*HistogramModule)(nil)
	_ SummaryProvider   = (*HistogramModule)(nil)
	_ PreviewableModule = (*HistogramModule)(nil)
)
