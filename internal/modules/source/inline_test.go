package source

import (
	"context"
	"errors"
	"testing"

	"github.com/ptflow/runtime/internal/event"
)

func TestInlineFromConfig(t *testing.T) {
	cfg := map[string]interface{}{
		"events": []interface{}{
			map[string]interface{}{
				"e":  []interface{}{150.0, 50.0},
				"px": []interface{}{3.0, 0.0},
				"py": []interface{}{4.0, 0.0},
			},
			// YAML decodes whole numbers as int
			map[string]interface{}{
				"e":  []interface{}{200},
				"px": []interface{}{1},
				"py": []interface{}{0},
			},
		},
	}

	m, err := NewInlineFromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	events, err := m.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[1].E[0] != 200 {
		t.Errorf("int column not converted: %+v", events[1])
	}
}

func TestInlineFromConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  map[string]interface{}
	}{
		{
			name: "missing events",
			cfg:  map[string]interface{}{},
		},
		{
			name: "event not an object",
			cfg:  map[string]interface{}{"events": []interface{}{"nope"}},
		},
		{
			name: "non-numeric column entry",
			cfg: map[string]interface{}{
				"events": []interface{}{
					map[string]interface{}{
						"e":  []interface{}{"high"},
						"px": []interface{}{1.0},
						"py": []interface{}{1.0},
					},
				},
			},
		},
		{
			name: "length mismatch",
			cfg: map[string]interface{}{
				"events": []interface{}{
					map[string]interface{}{
						"e":  []interface{}{1.0, 2.0},
						"px": []interface{}{1.0},
						"py": []interface{}{1.0, 2.0},
					},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewInlineFromConfig(tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestInlineMissingColumnIsLengthMismatch(t *testing.T) {
	cfg := map[string]interface{}{
		"events": []interface{}{
			map[string]interface{}{
				"e":  []interface{}{1.0},
				"px": []interface{}{1.0},
				// py absent
			},
		},
	}
	_, err := NewInlineFromConfig(cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	var lenErr *event.LengthMismatchError
	if !errors.As(err, &lenErr) {
		t.Fatalf("expected *LengthMismatchError, got %v", err)
	}
}

func TestSyntheticDeterminism(t *testing.T) {
	cfg := SyntheticConfig{Events: 5, Candidates: 3, Seed: 42}

	m1, err := NewSyntheticFromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	m2, err := NewSyntheticFromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}

	ev1, err := m1.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	ev2, err := m2.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(ev1) != 5 || len(ev2) != 5 {
		t.Fatalf("got %d and %d events, want 5", len(ev1), len(ev2))
	}
	for i := range ev1 {
		for j := range ev1[i].E {
			if ev1[i].E[j] != ev2[i].E[j] || ev1[i].Px[j] != ev2[i].Px[j] || ev1[i].Py[j] != ev2[i].Py[j] {
				t.Fatalf("event %d candidate %d differs between identical seeds", i, j)
			}
		}
	}
}

func TestSyntheticInvalidCounts(t *testing.T) {
	if _, err := NewSyntheticFromConfig(SyntheticConfig{Events: -1}); !errors.Is(err, ErrInvalidCount) {
		t.Errorf("got %v, want ErrInvalidCount", err)
	}
}
