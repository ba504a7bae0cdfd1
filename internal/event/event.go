// Package event defines the columnar event value passed between pipeline
// stages. An event groups three equal-length numeric columns: energy,
// x-momentum, and y-momentum. One index into the columns is a candidate.
package event

import "fmt"

// Event is one record of a columnar dataset. The three columns must have
// equal length; events are read sequentially and never mutated.
type Event struct {
	// E holds per-candidate energy
	E []float64 `json:"e"`
	// Px holds per-candidate x-momentum
	Px []float64 `json:"px"`
	// Py holds per-candidate y-momentum
	Py []float64 `json:"py"`
}

// Len returns the number of candidates in the event.
// Only meaningful for events that pass Validate.
func (ev Event) Len() int {
	return len(ev.E)
}

// Validate checks the equal-length column invariant. The event index is
// recorded on the returned error for diagnostics; it does not affect the
// check itself.
func (ev Event) Validate(index int) error {
	if len(ev.E) != len(ev.Px) || len(ev.E) != len(ev.Py) {
		return &LengthMismatchError{
			EventIndex: index,
			LenE:       len(ev.E),
			LenPx:      len(ev.Px),
			LenPy:      len(ev.Py),
		}
	}
	return nil
}

// LengthMismatchError is returned when the three per-event columns differ
// in length.
type LengthMismatchError struct {
	// EventIndex is the zero-based index of the offending event
	EventIndex int
	// LenE, LenPx, LenPy are the observed column lengths
	LenE  int
	LenPx int
	LenPy int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("event %d: column length mismatch: e=%d px=%d py=%d",
		e.EventIndex, e.LenE, e.LenPx, e.LenPy)
}

// ValidateAll validates every event in the slice, returning the first
// length mismatch encountered.
func ValidateAll(events []Event) error {
	for i, ev := range events {
		if err := ev.Validate(i); err != nil {
			return err
		}
	}
	return nil
}
