// Package sink provides implementations for value sink modules.
package sink

import (
	"context"
	"log/slog"

	"github.com/ptflow/runtime/internal/logger"
)

// StubModule is a placeholder sink for testing the pipeline flow.
// It counts the values it receives and discards them.
type StubModule struct {
	ModuleType string
	Received   int
}

// NewStub creates a new stub sink module.
func NewStub(moduleType string) *StubModule {
	return &StubModule{ModuleType: moduleType}
}

// Send counts and discards the values.
func (m *StubModule) Send(_ context.Context, values []float64) (int, error) {
	m.Received += len(values)
	logger.Info("sink module received values",
		slog.String("type", m.ModuleType),
		slog.Int("values", len(values)),
	)
	return len(values), nil
}

// Close releases resources (no-op for stub).
func (m *StubModule) Close() error {
	return nil
}

// Verify StubModule implements Module
var _ Module = (*StubModule)(nil)
