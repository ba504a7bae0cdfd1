// Package source provides implementations for event source modules.
// Source modules are responsible for supplying columnar events to the
// pipeline: per event, three equal-length numeric columns (e, px, py).
package source

import (
	"context"

	"github.com/ptflow/runtime/internal/event"
)

// Module represents a source module that supplies events.
type Module interface {
	// Fetch reads all events from the source.
	// The context can be used to cancel long-running reads.
	// Every returned event satisfies the equal-length column invariant.
	Fetch(ctx context.Context) ([]event.Event, error)
	// Close releases any resources held by the module.
	Close() error
}
