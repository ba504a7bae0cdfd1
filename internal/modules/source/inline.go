// Package source provides implementations for event source modules.
// The inline module serves events embedded directly in the pipeline
// configuration, which keeps small analyses self-contained in one file.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ptflow/runtime/internal/event"
	"github.com/ptflow/runtime/internal/logger"
)

// Common errors for the inline source module
var (
	// ErrNoEvents is returned when the config has no 'events' list
	ErrNoEvents = errors.New("inline source requires an 'events' list")
)

// InlineModule serves a fixed event list parsed from the configuration.
type InlineModule struct {
	events []event.Event
}

// NewInlineFromConfig creates an inline source module from raw configuration.
// The expected shape is:
//
//	events:
//	  - e: [150, 50]
//	    px: [3, 0]
//	    py: [4, 0]
//
// Numbers may arrive as int or float64 depending on whether the config was
// JSON or YAML; both are accepted.
func NewInlineFromConfig(config map[string]interface{}) (*InlineModule, error) {
	raw, ok := config["events"].([]interface{})
	if !ok {
		return nil, ErrNoEvents
	}

	events := make([]event.Event, 0, len(raw))
	for i, item := range raw {
		evMap, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("event %d: expected object, got %T", i, item)
		}

		ev := event.Event{}
		var err error
		if ev.E, err = toFloatSlice(evMap["e"]); err != nil {
			return nil, fmt.Errorf("event %d, column e: %w", i, err)
		}
		if ev.Px, err = toFloatSlice(evMap["px"]); err != nil {
			return nil, fmt.Errorf("event %d, column px: %w", i, err)
		}
		if ev.Py, err = toFloatSlice(evMap["py"]); err != nil {
			return nil, fmt.Errorf("event %d, column py: %w", i, err)
		}

		if err := ev.Validate(i); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	return &InlineModule{events: events}, nil
}

// NewInline creates an inline source module from already-built events.
// Intended for tests and embedding.
func NewInline(events []event.Event) (*InlineModule, error) {
	if err := event.ValidateAll(events); err != nil {
		return nil, err
	}
	return &InlineModule{events: events}, nil
}

// Fetch returns the configured events.
func (m *InlineModule) Fetch(_ context.Context) ([]event.Event, error) {
	logger.Debug("inline source fetched events", slog.Int("events", len(m.events)))
	return m.events, nil
}

// Close releases resources (no-op for inline).
func (m *InlineModule) Close() error {
	return nil
}

// toFloatSlice converts a decoded JSON/YAML array to []float64.
// A missing column yields an empty slice so the length validation
// reports the mismatch rather than a type error.
func toFloatSlice(v interface{}) ([]float64, error) {
	if v == nil {
		return nil, nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected array, got %T", v)
	}

	out := make([]float64, len(raw))
	for i, item := range raw {
		switch n := item.(type) {
		case float64:
			out[i] = n
		case int:
			out[i] = float64(n)
		case int64:
			out[i] = float64(n)
		default:
			return nil, fmt.Errorf("index %d: expected number, got %T", i, item)
		}
	}
	return out, nil
}

// Verify InlineModule implements Module
var _ Module = (*InlineModule)(nil)
