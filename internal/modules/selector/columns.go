// Package selector provides implementations for candidate selector modules.
// Columns module works on whole columns at a time: it masks the candidates
// that pass the cut, gathers their momenta and computes pt with vectorized
// slice operations.
package selector

import (
	"context"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ptflow/runtime/internal/event"
	"github.com/ptflow/runtime/internal/logger"
)

// ColumnsModule selects candidates with column-wise slice arithmetic.
type ColumnsModule struct {
	threshold float64
}

// NewColumnsFromConfig creates a columns selector module from raw configuration.
func NewColumnsFromConfig(config map[string]interface{}) (*ColumnsModule, error) {
	threshold, err := thresholdFromConfig(config)
	if err != nil {
		return nil, err
	}

	logger.Debug("columns selector initialized",
		slog.Float64("threshold", threshold))

	return &ColumnsModule{threshold: threshold}, nil
}

// Process masks each event's energy column against the cut, compacts the
// momentum columns down to the selected candidates and computes
// pt = sqrt(px*px + py*py) over the compacted slices.
func (m *ColumnsModule) Process(ctx context.Context, events []event.Event) ([]float64, error) {
	values := make([]float64, 0, len(events))

	for i, ev := range events {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := ev.Validate(i); err != nil {
			return nil, err
		}

		px, py := compact(ev, m.threshold)
		if len(px) == 0 {
			continue
		}

		px2 := make([]float64, len(px))
		py2 := make([]float64, len(py))
		floats.MulTo(px2, px, px)
		floats.MulTo(py2, py, py)

		pt2 := make([]float64, len(px2))
		floats.AddTo(pt2, px2, py2)

		for k := range pt2 {
			values = append(values, math.Sqrt(pt2[k]))
		}
	}

	return values, nil
}

// compact gathers the momenta of the candidates whose energy passes the
// cut, preserving candidate order.
func compact(ev event.Event, threshold float64) (px, py []float64) {
	for j := range ev.E {
		if ev.E[j] > threshold {
			px = append(px, ev.Px[j])
			py = append(py, ev.Py[j])
		}
	}
	return px, py
}

// Verify ColumnsModule implements Module
var _ Module = (*ColumnsModule)(nil)
