// Package hist provides the fixed-range histogram accumulator used by
// histogram sinks. It wraps a go-hep hbook H1D (which plot rendering
// consumes directly) and keeps its own per-bin and outflow counters so
// callers get exact integer counts without digging into hbook internals.
package hist

import (
	"errors"
	"fmt"

	"go-hep.org/x/hep/hbook"
)

// Defaults for the accumulator configuration.
const (
	DefaultBins = 16
	DefaultMin  = 0.0
	DefaultMax  = 4.0
)

// Common errors for histogram configuration.
var (
	// ErrInvalidBins is returned when the bin count is not positive
	ErrInvalidBins = errors.New("bin count must be positive")
	// ErrInvalidRange is returned when min >= max
	ErrInvalidRange = errors.New("histogram range is empty: min must be less than max")
)

// Config describes a fixed-range histogram.
type Config struct {
	// Bins is the number of equal-width bins
	Bins int `json:"bins"`
	// Min is the inclusive lower edge of the range
	Min float64 `json:"min"`
	// Max is the exclusive upper edge of the range
	Max float64 `json:"max"`
}

// DefaultConfig returns the standard 16-bin [0,4) configuration.
func DefaultConfig() Config {
	return Config{Bins: DefaultBins, Min: DefaultMin, Max: DefaultMax}
}

// Histogram is a fixed-range accumulator. Bins are half-open [lo, hi):
// a value below Min increments the underflow counter, a value at or above
// Max increments the overflow counter. Not safe for concurrent use; the
// pipeline mutates it from a single execution goroutine.
type Histogram struct {
	cfg   Config
	width float64

	h1d *hbook.H1D

	counts  []int64
	entries int64
	under   int64
	over    int64
}

// New creates a histogram for the given configuration.
func New(cfg Config) (*Histogram, error) {
	if cfg.Bins <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBins, cfg.Bins)
	}
	if cfg.Min >= cfg.Max {
		return nil, fmt.Errorf("%w: [%v, %v)", ErrInvalidRange, cfg.Min, cfg.Max)
	}

	return &Histogram{
		cfg:    cfg,
		width:  (cfg.Max - cfg.Min) / float64(cfg.Bins),
		h1d:    hbook.NewH1D(cfg.Bins, cfg.Min, cfg.Max),
		counts: make([]int64, cfg.Bins),
	}, nil
}

// Fill adds a value with unit weight.
func (h *Histogram) Fill(v float64) {
	h.h1d.Fill(v, 1)

	idx := h.BinIndex(v)
	switch {
	case idx < 0:
		h.under++
	case idx >= h.cfg.Bins:
		h.over++
	default:
		h.counts[idx]++
		h.entries++
	}
}

// BinIndex returns the bin index for a value: -1 for underflow, Bins for
// overflow, otherwise the in-range index (0 at Min).
func (h *Histogram) BinIndex(v float64) int {
	if v < h.cfg.Min {
		return -1
	}
	if v >= h.cfg.Max {
		return h.cfg.Bins
	}
	idx := int((v - h.cfg.Min) / h.width)
	// Guard the upper edge against float rounding in the division.
	if idx >= h.cfg.Bins {
		idx = h.cfg.Bins - 1
	}
	return idx
}

// Config returns the histogram configuration.
func (h *Histogram) Config() Config { return h.cfg }

// Entries returns the number of in-range fills.
func (h *Histogram) Entries() int64 { return h.entries }

// Underflow returns the number of fills below Min.
func (h *Histogram) Underflow() int64 { return h.under }

// Overflow returns the number of fills at or above Max.
func (h *Histogram) Overflow() int64 { return h.over }

// Total returns the total number of fills including outflows.
func (h *Histogram) Total() int64 { return h.entries + h.under + h.over }

// Counts returns a copy of the per-bin contents.
func (h *Histogram) Counts() []int64 {
	out := make([]int64, len(h.counts))
	copy(out, h.counts)
	return out
}

// BinEdges returns the lower and upper edge of bin i.
func (h *Histogram) BinEdges(i int) (lo, hi float64) {
	lo = h.cfg.Min + float64(i)*h.width
	return lo, lo + h.width
}

// H1D exposes the underlying hbook histogram for plotting.
func (h *Histogram) H1D() *hbook.H1D { return h.h1d }
