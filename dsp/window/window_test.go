package window

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-simgrid/internal/testutil"
)

func TestGenerateShapes(t *testing.T) {
	for _, typ := range []Type{TypeRectangular, TypeHann, TypeBlackman, TypeTukey, TypeKaiser} {
		t.Run(typ.String(), func(t *testing.T) {
			w, err := Generate(typ, 33)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			testutil.RequireFinite(t, w)
			for i := range w {
				if math.Abs(w[i]-w[len(w)-1-i]) > 1e-12 {
					t.Fatalf("not symmetric at %d: %v vs %v", i, w[i], w[len(w)-1-i])
				}
				if w[i] < -1e-15 || w[i] > 1+1e-12 {
					t.Fatalf("coefficient[%d] = %v outside [0, 1]", i, w[i])
				}
			}
			if math.Abs(w[16]-1) > 1e-12 {
				t.Fatalf("center = %v, want 1", w[16])
			}
		})
	}
}

func TestTukeyLimits(t *testing.T) {
	rect, _ := Generate(TypeTukey, 16, WithAlpha(0))
	testutil.RequireSliceNearlyEqual(t, rect, testutil.Ones(16), 0)

	tukey, _ := Generate(TypeTukey, 16, WithAlpha(1))
	hann, _ := Generate(TypeHann, 16)
	testutil.RequireSliceNearlyEqual(t, tukey, hann, 1e-12)
}

func TestKaiserZeroBetaIsRectangular(t *testing.T) {
	w, err := Generate(TypeKaiser, 9, WithAlpha(0))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, w, testutil.Ones(9), 1e-15)
}

func TestBesselI0(t *testing.T) {
	// Reference values from tables of I0.
	tests := []struct{ x, want float64 }{
		{0, 1},
		{1, 1.2660658777520082},
		{5, 27.239871823604442},
	}
	for _, tt := range tests {
		if got := besselI0(tt.x); math.Abs(got-tt.want) > 1e-12*tt.want {
			t.Fatalf("I0(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestPeriodicHann(t *testing.T) {
	w, _ := Generate(TypeHann, 4, WithPeriodic())
	testutil.RequireSliceNearlyEqual(t, w, []float64{0, 0.5, 1, 0.5}, 1e-15)
	if ms := MeanSquare(w); math.Abs(ms-0.375) > 1e-15 {
		t.Fatalf("MeanSquare = %v, want 0.375", ms)
	}
}

func TestParse(t *testing.T) {
	for _, s := range []string{"hann", "HANN", " hann "} {
		if typ, err := Parse(s); err != nil || typ != TypeHann {
			t.Fatalf("Parse(%q) = %v, %v", s, typ, err)
		}
	}
	if typ, err := Parse("none"); err != nil || typ != TypeRectangular {
		t.Fatalf("Parse(none) = %v, %v", typ, err)
	}
	if _, err := Parse("bartlett"); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("error = %v, want %v", err, ErrUnknownType)
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		n    int
		opts []Option
		want error
	}{
		{"zero length", TypeHann, 0, nil, ErrInvalidLength},
		{"unknown", Type(99), 4, nil, ErrUnknownType},
		{"tukey alpha", TypeTukey, 4, []Option{WithAlpha(2)}, ErrInvalidParameter},
		{"kaiser beta", TypeKaiser, 4, []Option{WithAlpha(-1)}, ErrInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Generate(tt.typ, tt.n, tt.opts...); !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
	if err := Apply(make([]float64, 3), make([]float64, 4)); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("error = %v, want %v", err, ErrLengthMismatch)
	}
}
