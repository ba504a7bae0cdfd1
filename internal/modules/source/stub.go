// Package source provides implementations for event source modules.
package source

import (
	"context"
	"log/slog"

	"github.com/ptflow/runtime/internal/event"
	"github.com/ptflow/runtime/internal/logger"
)

// StubModule is a placeholder source module for testing the pipeline flow.
// It returns a small fixed dataset without touching any external system.
type StubModule struct {
	ModuleType string
}

// NewStub creates a new stub source module.
func NewStub(moduleType string) *StubModule {
	return &StubModule{ModuleType: moduleType}
}

// Fetch returns sample events to demonstrate pipeline flow.
func (m *StubModule) Fetch(_ context.Context) ([]event.Event, error) {
	logger.Info("source module fetching events",
		slog.String("type", m.ModuleType))

	return []event.Event{
		{E: []float64{150, 50}, Px: []float64{3, 0}, Py: []float64{4, 0}},
		{E: []float64{200}, Px: []float64{1}, Py: []float64{0}},
	}, nil
}

// Close releases resources (no-op for stub).
func (m *StubModule) Close() error {
	return nil
}

// Verify StubModule implements Module
var _ Module = (*StubModule)(nil)
