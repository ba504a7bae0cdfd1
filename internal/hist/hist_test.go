package hist

import (
	"errors"
	"testing"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{name: "default config", cfg: DefaultConfig()},
		{name: "zero bins", cfg: Config{Bins: 0, Min: 0, Max: 4}, wantErr: ErrInvalidBins},
		{name: "negative bins", cfg: Config{Bins: -4, Min: 0, Max: 4}, wantErr: ErrInvalidBins},
		{name: "empty range", cfg: Config{Bins: 16, Min: 4, Max: 4}, wantErr: ErrInvalidRange},
		{name: "inverted range", cfg: Config{Bins: 16, Min: 4, Max: 0}, wantErr: ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("New() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBinIndex(t *testing.T) {
	h, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		value float64
		want  int
	}{
		{name: "value 1.0 lands in bin 4", value: 1.0, want: 4},
		{name: "lower edge", value: 0.0, want: 0},
		{name: "just inside first bin", value: 0.24, want: 0},
		{name: "second bin lower edge", value: 0.25, want: 1},
		{name: "last in-range value", value: 3.999, want: 15},
		{name: "upper edge overflows", value: 4.0, want: 16},
		{name: "above range overflows", value: 5.0, want: 16},
		{name: "below range underflows", value: -0.1, want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.BinIndex(tt.value); got != tt.want {
				t.Errorf("BinIndex(%v) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestFillCounters(t *testing.T) {
	h, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	for _, v := range []float64{1.0, 1.0, 0.1, 5.0, -1.0, 3.99} {
		h.Fill(v)
	}

	if got := h.Entries(); got != 4 {
		t.Errorf("Entries() = %d, want 4", got)
	}
	if got := h.Underflow(); got != 1 {
		t.Errorf("Underflow() = %d, want 1", got)
	}
	if got := h.Overflow(); got != 1 {
		t.Errorf("Overflow() = %d, want 1", got)
	}
	if got := h.Total(); got != 6 {
		t.Errorf("Total() = %d, want 6", got)
	}

	counts := h.Counts()
	if counts[4] != 2 {
		t.Errorf("counts[4] = %d, want 2", counts[4])
	}
	if counts[0] != 1 {
		t.Errorf("counts[0] = %d, want 1", counts[0])
	}
	if counts[15] != 1 {
		t.Errorf("counts[15] = %d, want 1", counts[15])
	}
}

func TestFillMatchesH1DSum(t *testing.T) {
	h, err := New(Config{Bins: 8, Min: 0, Max: 2})
	if err != nil {
		t.Fatal(err)
	}
	values := []float64{0.1, 0.5, 1.0, 1.99, 2.0, -0.5}
	for _, v := range values {
		h.Fill(v)
	}
	// hbook tracks every fill in its weighted sum; counters must agree.
	if got, want := h.H1D().SumW(), float64(h.Total()); got != want {
		t.Errorf("H1D().SumW() = %v, want %v", got, want)
	}
}

func TestBinEdges(t *testing.T) {
	h, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	lo, hi := h.BinEdges(4)
	if lo != 1.0 || hi != 1.25 {
		t.Errorf("BinEdges(4) = (%v, %v), want (1, 1.25)", lo, hi)
	}
}
