// Package selector provides implementations for candidate selector modules.
// Frame module builds a dataframe per event and expresses the selection
// as a column filter followed by a derived pt column.
package selector

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/tobgu/qframe"

	"github.com/ptflow/runtime/internal/event"
	"github.com/ptflow/runtime/internal/logger"
)

// FrameModule selects candidates through dataframe operations.
type FrameModule struct {
	threshold float64
}

// NewFrameFromConfig creates a frame selector module from raw configuration.
func NewFrameFromConfig(config map[string]interface{}) (*FrameModule, error) {
	threshold, err := thresholdFromConfig(config)
	if err != nil {
		return nil, err
	}

	logger.Debug("frame selector initialized",
		slog.Float64("threshold", threshold))

	return &FrameModule{threshold: threshold}, nil
}

// Process loads each event into a three-column frame, filters rows on the
// energy cut, derives a pt column from the momentum columns and extracts
// it. Row order is preserved by the filter, so the output matches the
// loop variant exactly.
func (m *FrameModule) Process(ctx context.Context, events []event.Event) ([]float64, error) {
	values := make([]float64, 0, len(events))

	for i, ev := range events {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := ev.Validate(i); err != nil {
			return nil, err
		}
		if ev.Len() == 0 {
			continue
		}

		df := qframe.New(map[string]interface{}{
			"e":  ev.E,
			"px": ev.Px,
			"py": ev.Py,
		})
		if df.Err != nil {
			return nil, frameError(i, "build", df.Err)
		}

		df = df.Filter(qframe.Filter{Column: "e", Comparator: ">", Arg: m.threshold})
		if df.Err != nil {
			return nil, frameError(i, "filter", df.Err)
		}

		df = df.Apply(qframe.Instruction{
			Fn: func(px, py float64) float64 {
				return math.Sqrt(px*px + py*py)
			},
			DstCol:  "pt",
			SrcCol1: "px",
			SrcCol2: "py",
		})
		if df.Err != nil {
			return nil, frameError(i, "apply", df.Err)
		}

		view, err := df.FloatView("pt")
		if err != nil {
			return nil, frameError(i, "view", err)
		}
		values = append(values, view.Slice()...)
	}

	return values, nil
}

// frameError wraps a qframe failure with event context.
func frameError(eventIdx int, op string, err error) *SelectorError {
	return newSelectorError(ErrCodeFrameFailed,
		fmt.Sprintf("frame %s failed at event %d: %v", op, eventIdx, err), eventIdx)
}

// Verify FrameModule implements Module
var _ Module = (*FrameModule)(nil)
