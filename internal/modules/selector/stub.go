// Package selector provides implementations for candidate selector modules.
package selector

import (
	"context"
	"log/slog"
	"math"

	"github.com/ptflow/runtime/internal/event"
	"github.com/ptflow/runtime/internal/logger"
)

// StubModule is a placeholder selector for testing the pipeline flow.
// It computes pt for every candidate without applying any cut.
type StubModule struct {
	ModuleType string
}

// NewStub creates a new stub selector module.
func NewStub(moduleType string) *StubModule {
	return &StubModule{ModuleType: moduleType}
}

// Process passes every candidate through the pt computation.
func (m *StubModule) Process(_ context.Context, events []event.Event) ([]float64, error) {
	logger.Info("selector module processing events",
		slog.String("type", m.ModuleType),
		slog.Int("events", len(events)),
	)

	values := make([]float64, 0, len(events))
	for i, ev := range events {
		if err := ev.Validate(i); err != nil {
			return nil, err
		}
		for j := range ev.E {
			values = append(values, math.Sqrt(ev.Px[j]*ev.Px[j]+ev.Py[j]*ev.Py[j]))
		}
	}
	return values, nil
}

// Verify StubModule implements Module
var _ Module = (*StubModule)(nil)
