// Package sink provides implementations for value sink modules.
// CSV module dumps the selected values to a one-column CSV file,
// convenient for feeding the selection into other tools.
package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/ptflow/runtime/internal/logger"
	"github.com/ptflow/runtime/internal/pathutil"
	"github.com/ptflow/runtime/internal/template"
	"github.com/ptflow/runtime/pkg/analysis"
)

// csvHeader is the single column header of the dump.
const csvHeader = "pt"

// CSVModule writes selected values to a CSV file.
type CSVModule struct {
	path string
}

// NewCSVFromConfig creates a CSV sink from raw configuration.
// The path option is required and may contain {{pipeline.id}} /
// {{pipeline.name}} variables, resolved against vars.
func NewCSVFromConfig(config map[string]interface{}, vars map[string]interface{}) (*CSVModule, error) {
	path, err := stringOption(config, "path", "")
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, newSinkError(ErrCodeInvalidSinkConfig, "csv sink requires a 'path'", "")
	}

	if len(vars) > 0 {
		path = template.NewEvaluator().Evaluate(path, vars)
	}
	if err := pathutil.ValidateFilePath(path); err != nil {
		return nil, newSinkError(ErrCodeInvalidSinkConfig,
			fmt.Sprintf("invalid output path %q: %v", path, err), path)
	}

	logger.Debug("csv sink initialized", slog.String("path", path))
	return &CSVModule{path: path}, nil
}

// Send writes the values to the configured file, one per row.
// Returns the number of values written.
func (m *CSVModule) Send(ctx context.Context, values []float64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if err := pathutil.EnsureParentDir(m.path); err != nil {
		return 0, newSinkError(ErrCodeWriteFailed, err.Error(), m.path)
	}

	f, err := os.Create(m.path)
	if err != nil {
		return 0, newSinkError(ErrCodeWriteFailed,
			fmt.Sprintf("failed to create %q: %v", m.path, err), m.path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{csvHeader}); err != nil {
		return 0, newSinkError(ErrCodeWriteFailed,
			fmt.Sprintf("failed to write header to %q: %v", m.path, err), m.path)
	}
	for _, v := range values {
		if err := w.Write([]string{strconv.FormatFloat(v, 'g', -1, 64)}); err != nil {
			return 0, newSinkError(ErrCodeWriteFailed,
				fmt.Sprintf("failed to write value to %q: %v", m.path, err), m.path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, newSinkError(ErrCodeWriteFailed,
			fmt.Sprintf("failed to flush %q: %v", m.path, err), m.path)
	}

	logger.Info("csv dump written",
		slog.String("path", m.path),
		slog.Int("values", len(values)),
	)
	return len(values), nil
}

// Close releases resources (the file handle is scoped to Send).
func (m *CSVModule) Close() error {
	return nil
}

// Preview reports what the sink would write without creating the file.
func (m *CSVModule) Preview(values []float64, _ PreviewOptions) (*analysis.SinkPreview, error) {
	return &analysis.SinkPreview{
		SinkType:   "csv",
		ValueCount: len(values),
		Target:     m.path,
	}, nil
}

// Verify interfaces
var (
	_ Module            = (*CSVModule)(nil)
	_ PreviewableModule = (*CSVModule)(nil)
)
