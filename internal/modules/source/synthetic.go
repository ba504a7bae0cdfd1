// Package source provides implementations for event source modules.
// The synthetic module generates deterministic pseudo-random events,
// useful for exercising pipelines without a data file.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/ptflow/runtime/internal/event"
	"github.com/ptflow/runtime/internal/logger"
)

// Defaults for synthetic event generation.
const (
	DefaultSyntheticEvents     = 100
	DefaultSyntheticCandidates = 8
	DefaultSyntheticSeed       = 1
)

// Generation ranges. Energies straddle the standard 100 cut so both
// branches of a selection are exercised; momenta keep most pt values
// inside the standard [0,4) histogram range with some overflow.
const (
	maxEnergy   = 200.0
	maxMomentum = 3.0
)

// ErrInvalidCount is returned when the event or candidate count is negative.
var ErrInvalidCount = errors.New("synthetic source counts must not be negative")

// SyntheticConfig represents the configuration for a synthetic source module.
type SyntheticConfig struct {
	// Events is the number of events to generate
	Events int `json:"events"`
	// Candidates is the number of candidates per event
	Candidates int `json:"candidates"`
	// Seed makes generation reproducible; identical seeds yield
	// identical datasets
	Seed int64 `json:"seed"`
}

// SyntheticModule generates deterministic random events.
type SyntheticModule struct {
	events     int
	candidates int
	seed       int64
}

// NewSyntheticFromConfig creates a synthetic source module from configuration.
// Zero counts fall back to defaults.
func NewSyntheticFromConfig(config SyntheticConfig) (*SyntheticModule, error) {
	if config.Events < 0 || config.Candidates < 0 {
		return nil, ErrInvalidCount
	}

	events := config.Events
	if events == 0 {
		events = DefaultSyntheticEvents
	}
	candidates := config.Candidates
	if candidates == 0 {
		candidates = DefaultSyntheticCandidates
	}
	seed := config.Seed
	if seed == 0 {
		seed = DefaultSyntheticSeed
	}

	return &SyntheticModule{
		events:     events,
		candidates: candidates,
		seed:       seed,
	}, nil
}

// Fetch generates the configured number of events.
func (m *SyntheticModule) Fetch(ctx context.Context) ([]event.Event, error) {
	rng := rand.New(rand.NewSource(m.seed))

	events := make([]event.Event, 0, m.events)
	for i := 0; i < m.events; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ev := event.Event{
			E:  make([]float64, m.candidates),
			Px: make([]float64, m.candidates),
			Py: make([]float64, m.candidates),
		}
		for j := 0; j < m.candidates; j++ {
			ev.E[j] = rng.Float64() * maxEnergy
			ev.Px[j] = (rng.Float64()*2 - 1) * maxMomentum
			ev.Py[j] = (rng.Float64()*2 - 1) * maxMomentum
		}
		events = append(events, ev)
	}

	logger.Debug("synthetic source generated events",
		slog.Int("events", m.events),
		slog.Int("candidates_per_event", m.candidates),
		slog.Int64("seed", m.seed),
	)

	return events, nil
}

// Close releases resources (no-op for synthetic).
func (m *SyntheticModule) Close() error {
	return nil
}

// ParseSyntheticConfig extracts a SyntheticConfig from raw configuration.
func ParseSyntheticConfig(config map[string]interface{}) (SyntheticConfig, error) {
	cfg := SyntheticConfig{}
	var err error
	if v, ok := config["events"]; ok && v != nil {
		if cfg.Events, err = toInt(v); err != nil {
			return cfg, fmt.Errorf("events: %w", err)
		}
	}
	if v, ok := config["candidates"]; ok && v != nil {
		if cfg.Candidates, err = toInt(v); err != nil {
			return cfg, fmt.Errorf("candidates: %w", err)
		}
	}
	if v, ok := config["seed"]; ok && v != nil {
		n, err := toInt(v)
		if err != nil {
			return cfg, fmt.Errorf("seed: %w", err)
		}
		cfg.Seed = int64(n)
	}
	return cfg, nil
}

// Verify SyntheticModule implements Module
var _ Module = (*SyntheticModule)(nil)
