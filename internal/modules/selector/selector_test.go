package selector

import (
	"context"
	"errors"
	"testing"

	"github.com/ptflow/runtime/internal/event"
)

// buildVariants constructs one module of every variant with the same
// configuration.
func buildVariants(t *testing.T, config map[string]interface{}) map[string]Module {
	t.Helper()

	loop, err := NewLoopFromConfig(config)
	if err != nil {
		t.Fatal(err)
	}
	columns, err := NewColumnsFromConfig(config)
	if err != nil {
		t.Fatal(err)
	}
	frame, err := NewFrameFromConfig(config)
	if err != nil {
		t.Fatal(err)
	}
	exprMod, err := NewExprFromConfig(config)
	if err != nil {
		t.Fatal(err)
	}
	script, err := NewScriptFromConfig(ScriptConfig{})
	if err != nil {
		t.Fatal(err)
	}

	return map[string]Module{
		"loop":    loop,
		"columns": columns,
		"frame":   frame,
		"expr":    exprMod,
		"script":  script,
	}
}

func TestVariantsAgree(t *testing.T) {
	tests := []struct {
		name   string
		events []event.Event
		want   []float64
	}{
		{
			name: "standard selection",
			events: []event.Event{
				{E: []float64{150, 50}, Px: []float64{3, 0}, Py: []float64{4, 0}},
				{E: []float64{200}, Px: []float64{1}, Py: []float64{0}},
			},
			want: []float64{5, 1},
		},
		{
			name: "empty event contributes nothing",
			events: []event.Event{
				{E: []float64{150}, Px: []float64{3}, Py: []float64{4}},
				{},
				{E: []float64{120}, Px: []float64{0}, Py: []float64{2}},
			},
			want: []float64{5, 2},
		},
		{
			name: "all below cut",
			events: []event.Event{
				{E: []float64{10, 99.9}, Px: []float64{1, 2}, Py: []float64{1, 2}},
			},
			want: []float64{},
		},
		{
			name: "cut is strict",
			events: []event.Event{
				{E: []float64{100, 100.0001}, Px: []float64{3, 3}, Py: []float64{4, 4}},
			},
			want: []float64{5},
		},
		{
			name:   "no events",
			events: nil,
			want:   []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			variants := buildVariants(t, nil)
			reference, err := variants["loop"].Process(context.Background(), tt.events)
			if err != nil {
				t.Fatalf("loop: %v", err)
			}
			if len(reference) != len(tt.want) {
				t.Fatalf("loop returned %d values, want %d", len(reference), len(tt.want))
			}
			for i := range tt.want {
				if reference[i] != tt.want[i] {
					t.Errorf("loop value %d = %v, want %v", i, reference[i], tt.want[i])
				}
			}

			for name, m := range variants {
				if name == "loop" {
					continue
				}
				got, err := m.Process(context.Background(), tt.events)
				if err != nil {
					t.Fatalf("%s: %v", name, err)
				}
				if len(got) != len(reference) {
					t.Fatalf("%s returned %d values, loop returned %d", name, len(got), len(reference))
				}
				// Exact equality: all variants must be bit-identical.
				for i := range reference {
					if got[i] != reference[i] {
						t.Errorf("%s value %d = %v, loop = %v", name, i, got[i], reference[i])
					}
				}
			}
		})
	}
}

func TestCustomThreshold(t *testing.T) {
	events := []event.Event{
		{E: []float64{60, 40}, Px: []float64{1, 2}, Py: []float64{0, 0}},
	}
	config := map[string]interface{}{"threshold": 50.0}

	for name, m := range buildVariants(t, config) {
		if name == "script" {
			// script threshold goes through ScriptConfig, tested separately
			continue
		}
		got, err := m.Process(context.Background(), events)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(got) != 1 || got[0] != 1 {
			t.Errorf("%s = %v, want [1]", name, got)
		}
	}
}

func TestThresholdFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  map[string]interface{}
		want    float64
		wantErr bool
	}{
		{name: "absent defaults", config: nil, want: DefaultThreshold},
		{name: "float", config: map[string]interface{}{"threshold": 50.5}, want: 50.5},
		{name: "int from yaml", config: map[string]interface{}{"threshold": 50}, want: 50},
		{name: "not a number", config: map[string]interface{}{"threshold": "high"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := thresholdFromConfig(tt.config)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLengthMismatchPropagates(t *testing.T) {
	events := []event.Event{
		{E: []float64{150, 200}, Px: []float64{1}, Py: []float64{1, 1}},
	}

	for name, m := range buildVariants(t, nil) {
		_, err := m.Process(context.Background(), events)
		var lenErr *event.LengthMismatchError
		if !errors.As(err, &lenErr) {
			t.Errorf("%s: expected *LengthMismatchError, got %v", name, err)
		}
	}
}

func TestProcessCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := []event.Event{
		{E: []float64{150}, Px: []float64{3}, Py: []float64{4}},
	}

	m, err := NewLoopFromConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Process(ctx, events); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestStubAppliesNoCut(t *testing.T) {
	events := []event.Event{
		{E: []float64{10, 150}, Px: []float64{3, 0}, Py: []float64{4, 1}},
	}
	got, err := NewStub("unknown").Process(context.Background(), events)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != 5 || got[1] != 1 {
		t.Errorf("got %v, want [5 1]", got)
	}
}
