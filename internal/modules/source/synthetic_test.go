package source

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/ptflow/runtime/internal/event"
)

func TestSyntheticFetchDeterministic(t *testing.T) {
	cfg := SyntheticConfig{Events: 5, Candidates: 3, Seed: 42}

	first, err := fetchSynthetic(t, cfg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := fetchSynthetic(t, cfg)
	if err != nil {
		t.Fatal(err)
	}

	if len(first) != 5 {
		t.Fatalf("got %d events, want 5", len(first))
	}
	for i := range first {
		if first[i].Len() != 3 {
			t.Errorf("event %d has %d candidates, want 3", i, first[i].Len())
		}
		for j := 0; j < first[i].Len(); j++ {
			if first[i].E[j] != second[i].E[j] ||
				first[i].Px[j] != second[i].Px[j] ||
				first[i].Py[j] != second[i].Py[j] {
				t.Fatalf("event %d candidate %d differs between identical seeds", i, j)
			}
		}
	}
}

func TestSyntheticFetchRanges(t *testing.T) {
	events, err := fetchSynthetic(t, SyntheticConfig{Events: 50, Candidates: 4, Seed: 7})
	if err != nil {
		t.Fatal(err)
	}

	for i, ev := range events {
		if err := ev.Validate(i); err != nil {
			t.Fatal(err)
		}
		for j := 0; j < ev.Len(); j++ {
			if ev.E[j] < 0 || ev.E[j] >= maxEnergy {
				t.Errorf("event %d energy %v out of range", i, ev.E[j])
			}
			if math.Abs(ev.Px[j]) > maxMomentum || math.Abs(ev.Py[j]) > maxMomentum {
				t.Errorf("event %d momentum (%v, %v) out of range", i, ev.Px[j], ev.Py[j])
			}
		}
	}
}

func TestSyntheticDefaults(t *testing.T) {
	m, err := NewSyntheticFromConfig(SyntheticConfig{})
	if err != nil {
		t.Fatal(err)
	}
	events, err := m.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != DefaultSyntheticEvents {
		t.Errorf("got %d events, want default %d", len(events), DefaultSyntheticEvents)
	}
	if events[0].Len() != DefaultSyntheticCandidates {
		t.Errorf("got %d candidates, want default %d", events[0].Len(), DefaultSyntheticCandidates)
	}
}

func TestSyntheticNegativeCounts(t *testing.T) {
	if _, err := NewSyntheticFromConfig(SyntheticConfig{Events: -1}); !errors.Is(err, ErrInvalidCount) {
		t.Errorf("got %v, want ErrInvalidCount", err)
	}
	if _, err := NewSyntheticFromConfig(SyntheticConfig{Candidates: -1}); !errors.Is(err, ErrInvalidCount) {
		t.Errorf("got %v, want ErrInvalidCount", err)
	}
}

func TestSyntheticCanceledContext(t *testing.T) {
	m, err := NewSyntheticFromConfig(SyntheticConfig{Events: 10, Candidates: 2, Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.Fetch(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestParseSyntheticConfig(t *testing.T) {
	cfg, err := ParseSyntheticConfig(map[string]interface{}{
		"events":     float64(20),
		"candidates": 4,
		"seed":       int64(9),
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Events != 20 || cfg.Candidates != 4 || cfg.Seed != 9 {
		t.Errorf("unexpected config: %+v", cfg)
	}

	if _, err := ParseSyntheticConfig(map[string]interface{}{"events": "many"}); err == nil {
		t.Error("expected error for non-numeric count")
	}
}

func fetchSynthetic(t *testing.T, cfg SyntheticConfig) ([]event.Event, error) {
	t.Helper()
	m, err := NewSyntheticFromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return m.Fetch(context.Background())
}
