// Package fftnd applies one-dimensional FFTs along individual axes of dense
// row-major N-dimensional complex buffers.
//
// Power-of-two lengths are planned with algo-fft; every other length falls
// back to gonum's mixed-radix transform. Inverse transforms are normalized by
// 1/n on both backends, so Forward followed by Inverse is the identity.
package fftnd

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/cwbudde/algo-simgrid/internal/ndarray"
)

// ErrInvalidAxis is returned when an axis is outside the buffer rank.
var ErrInvalidAxis = errors.New("fftnd: invalid axis")

// Direction selects a forward or inverse transform.
type Direction int

const (
	// Forward maps coordinate samples to spectral coefficients.
	Forward Direction = iota
	// Inverse maps spectral coefficients back to coordinate samples.
	Inverse
)

type plan interface {
	forward(dst, src []complex128) error
	inverse(dst, src []complex128) error
}

type identityPlan struct{}

func (identityPlan) forward(dst, src []complex128) error { copy(dst, src); return nil }
func (identityPlan) inverse(dst, src []complex128) error { copy(dst, src); return nil }

type pow2Plan struct {
	p *algofft.Plan[complex128]
}

func (p pow2Plan) forward(dst, src []complex128) error { return p.p.Forward(dst, src) }
func (p pow2Plan) inverse(dst, src []complex128) error { return p.p.Inverse(dst, src) }

type mixedRadixPlan struct {
	p    *fourier.CmplxFFT
	norm complex128
}

func (p mixedRadixPlan) forward(dst, src []complex128) error {
	p.p.Coefficients(dst, src)
	return nil
}

// gonum's Sequence is unnormalized.
func (p mixedRadixPlan) inverse(dst, src []complex128) error {
	p.p.Sequence(dst, src)
	for i := range dst {
		dst[i] *= p.norm
	}
	return nil
}

// Transformer caches FFT plans by length. A Transformer is not safe for
// concurrent use; create one per goroutine.
type Transformer struct {
	plans map[int]plan
	line  []complex128
}

// New returns an empty Transformer.
func New() *Transformer {
	return &Transformer{plans: make(map[int]plan)}
}

func (t *Transformer) planFor(n int) (plan, error) {
	if p, ok := t.plans[n]; ok {
		return p, nil
	}

	var p plan
	switch {
	case n == 1:
		p = identityPlan{}
	case isPowerOf2(n):
		ap, err := algofft.NewPlan64(n)
		if err != nil {
			return nil, fmt.Errorf("fftnd: failed to create FFT plan of size %d: %w", n, err)
		}
		p = pow2Plan{p: ap}
	default:
		p = mixedRadixPlan{p: fourier.NewCmplxFFT(n), norm: complex(1/float64(n), 0)}
	}

	t.plans[n] = p
	return p, nil
}

// Axis transforms every line of data running along axis in place.
func (t *Transformer) Axis(data []complex128, shape []int, axis int, dir Direction) error {
	if axis < 0 || axis >= len(shape) {
		return fmt.Errorf("%w: %d (rank %d)", ErrInvalidAxis, axis, len(shape))
	}
	n := shape[axis]
	if n == 0 {
		return nil
	}

	p, err := t.planFor(n)
	if err != nil {
		return err
	}
	if cap(t.line) < n {
		t.line = make([]complex128, n)
	}
	line := t.line[:n]

	var runErr error
	ndarray.Lines(shape, axis, func(offset, stride int) {
		if runErr != nil {
			return
		}
		for k := range line {
			line[k] = data[offset+k*stride]
		}
		if dir == Forward {
			runErr = p.forward(line, line)
		} else {
			runErr = p.inverse(line, line)
		}
		for k := range line {
			data[offset+k*stride] = line[k]
		}
	})
	if runErr != nil {
		return fmt.Errorf("fftnd: axis %d transform failed: %w", axis, runErr)
	}
	return nil
}

// Shift moves the zero-frequency element of every line along axis to index
// n/2 (fftshift). Unshift undoes it (ifftshift).
func (t *Transformer) Shift(data []complex128, shape []int, axis int) {
	t.roll(data, shape, axis, shape[axis]/2)
}

// Unshift is the inverse of Shift.
func (t *Transformer) Unshift(data []complex128, shape []int, axis int) {
	t.roll(data, shape, axis, -(shape[axis] / 2))
}

func (t *Transformer) roll(data []complex128, shape []int, axis, shift int) {
	n := shape[axis]
	if n <= 1 || shift%n == 0 {
		return
	}
	shift = ((shift % n) + n) % n
	if cap(t.line) < n {
		t.line = make([]complex128, n)
	}
	line := t.line[:n]

	ndarray.Lines(shape, axis, func(offset, stride int) {
		for k := range line {
			line[(k+shift)%n] = data[offset+k*stride]
		}
		for k := range line {
			data[offset+k*stride] = line[k]
		}
	})
}

// ShiftedFreq returns the sample frequencies of an n-point transform with
// sample spacing d, ordered as Shift leaves them (most negative first).
// Frequencies are in cycles per unit of d.
func ShiftedFreq(n int, d float64) []float64 {
	out := make([]float64, n)
	for k := range out {
		out[k] = float64(k-n/2) / (d * float64(n))
	}
	return out
}

// NextPowerOf2 returns the smallest power of two >= n.
func NextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

func isPowerOf2(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
