// Package selector provides implementations for candidate selector modules.
// Loop module is the reference variant: a plain nested loop over events
// and candidates. The other variants must match its output bit for bit.
package selector

import (
	"context"
	"log/slog"
	"math"

	"github.com/ptflow/runtime/internal/event"
	"github.com/ptflow/runtime/internal/logger"
)

// LoopModule selects candidates with an explicit candidate loop.
type LoopModule struct {
	threshold float64
}

// NewLoopFromConfig creates a loop selector module from raw configuration.
func NewLoopFromConfig(config map[string]interface{}) (*LoopModule, error) {
	threshold, err := thresholdFromConfig(config)
	if err != nil {
		return nil, err
	}

	logger.Debug("loop selector initialized",
		slog.Float64("threshold", threshold))

	return &LoopModule{threshold: threshold}, nil
}

// Process walks every candidate of every event, applies the energy cut
// and computes pt for the survivors.
func (m *LoopModule) Process(ctx context.Context, events []event.Event) ([]float64, error) {
	values := make([]float64, 0, len(events))

	for i, ev := range events {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := ev.Validate(i); err != nil {
			return nil, err
		}

		for j := range ev.E {
			if ev.E[j] > m.threshold {
				values = append(values, math.Sqrt(ev.Px[j]*ev.Px[j]+ev.Py[j]*ev.Py[j]))
			}
		}
	}

	return values, nil
}

// Verify LoopModule implements Module
var _ Module = (*LoopModule)(nil)
