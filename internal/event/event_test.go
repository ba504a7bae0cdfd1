package event

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		ev      Event
		wantErr bool
	}{
		{
			name: "equal lengths",
			ev:   Event{E: []float64{150, 50}, Px: []float64{3, 0}, Py: []float64{4, 0}},
		},
		{
			name: "empty event",
			ev:   Event{},
		},
		{
			name:    "px shorter",
			ev:      Event{E: []float64{150, 50}, Px: []float64{3}, Py: []float64{4, 0}},
			wantErr: true,
		},
		{
			name:    "py longer",
			ev:      Event{E: []float64{150}, Px: []float64{3}, Py: []float64{4, 0}},
			wantErr: true,
		},
		{
			name:    "missing energy column",
			ev:      Event{Px: []float64{3}, Py: []float64{4}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ev.Validate(0)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateErrorDetails(t *testing.T) {
	ev := Event{E: []float64{1, 2, 3}, Px: []float64{1}, Py: []float64{1, 2}}
	err := ev.Validate(7)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var lenErr *LengthMismatchError
	if !errors.As(err, &lenErr) {
		t.Fatalf("expected *LengthMismatchError, got %T", err)
	}
	if lenErr.EventIndex != 7 {
		t.Errorf("EventIndex = %d, want 7", lenErr.EventIndex)
	}
	if lenErr.LenE != 3 || lenErr.LenPx != 1 || lenErr.LenPy != 2 {
		t.Errorf("lengths = (%d, %d, %d), want (3, 1, 2)", lenErr.LenE, lenErr.LenPx, lenErr.LenPy)
	}
}

func TestValidateAll(t *testing.T) {
	good := []Event{
		{E: []float64{150}, Px: []float64{1}, Py: []float64{0}},
		{},
	}
	if err := ValidateAll(good); err != nil {
		t.Fatalf("ValidateAll() on valid events: %v", err)
	}

	bad := append(good, Event{E: []float64{1, 2}, Px: []float64{1}, Py: []float64{1, 2}})
	err := ValidateAll(bad)
	if err == nil {
		t.Fatal("expected error for mismatched event")
	}
	var lenErr *LengthMismatchError
	if !errors.As(err, &lenErr) {
		t.Fatalf("expected *LengthMismatchError, got %T", err)
	}
	if lenErr.EventIndex != 2 {
		t.Errorf("EventIndex = %d, want 2", lenErr.EventIndex)
	}
}
