package fftnd

import (
	"math"
	"math/cmplx"
	"testing"
)

func naiveDFT(x []complex128) []complex128 {
	n := len(x)
	out := make([]complex128, n)
	for k := 0; k < n; k++ {
		var sum complex128
		for j := 0; j < n; j++ {
			phase := -2 * math.Pi * float64(j*k) / float64(n)
			sum += x[j] * cmplx.Exp(complex(0, phase))
		}
		out[k] = sum
	}
	return out
}

func requireClose(t *testing.T, got, want []complex128, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if cmplx.Abs(got[i]-want[i]) > eps {
			t.Fatalf("index %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAxisMatchesNaiveDFT(t *testing.T) {
	for _, n := range []int{1, 2, 6, 8, 9, 16} {
		x := make([]complex128, n)
		for i := range x {
			x[i] = complex(math.Sin(float64(i)*0.7)+0.1*float64(i), 0.3*math.Cos(float64(i)))
		}
		want := naiveDFT(x)

		got := append([]complex128(nil), x...)
		tr := New()
		if err := tr.Axis(got, []int{n}, 0, Forward); err != nil {
			t.Fatalf("n=%d: forward failed: %v", n, err)
		}
		requireClose(t, got, want, 1e-9)

		if err := tr.Axis(got, []int{n}, 0, Inverse); err != nil {
			t.Fatalf("n=%d: inverse failed: %v", n, err)
		}
		requireClose(t, got, x, 1e-9)
	}
}

func TestAxisTransformsOnlyRequestedAxis(t *testing.T) {
	shape := []int{3, 4}
	data := make([]complex128, 12)
	for i := range data {
		data[i] = complex(float64(i), 0)
	}

	tr := New()
	if err := tr.Axis(data, shape, 1, Forward); err != nil {
		t.Fatalf("forward failed: %v", err)
	}

	for row := 0; row < 3; row++ {
		line := make([]complex128, 4)
		for c := range line {
			line[c] = complex(float64(row*4+c), 0)
		}
		requireClose(t, data[row*4:row*4+4], naiveDFT(line), 1e-9)
	}
}

func TestAxisRejectsInvalidAxis(t *testing.T) {
	if err := New().Axis(make([]complex128, 4), []int{4}, 1, Forward); err == nil {
		t.Fatal("expected error for out-of-range axis")
	}
}

func TestShiftRoundTrip(t *testing.T) {
	for _, n := range []int{4, 5} {
		data := make([]complex128, n)
		for i := range data {
			data[i] = complex(float64(i), 0)
		}
		orig := append([]complex128(nil), data...)

		tr := New()
		tr.Shift(data, []int{n}, 0)
		// After fftshift the zero-frequency element sits at n/2.
		if data[n/2] != orig[0] {
			t.Fatalf("n=%d: shifted[%d] = %v, want %v", n, n/2, data[n/2], orig[0])
		}
		tr.Unshift(data, []int{n}, 0)
		requireClose(t, data, orig, 0)
	}
}

func TestShiftedFreq(t *testing.T) {
	got := ShiftedFreq(4, 0.5)
	want := []float64{-1, -0.5, 0, 0.5}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-15 {
			t.Fatalf("ShiftedFreq(4, 0.5) = %v, want %v", got, want)
		}
	}

	got = ShiftedFreq(5, 1)
	want = []float64{-0.4, -0.2, 0, 0.2, 0.4}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-15 {
			t.Fatalf("ShiftedFreq(5, 1) = %v, want %v", got, want)
		}
	}
}

func TestNextPowerOf2(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 17: 32, 64: 64}
	for in, want := range cases {
		if got := NextPowerOf2(in); got != want {
			t.Errorf("NextPowerOf2(%d) = %d, want %d", in, got, want)
		}
	}
}
