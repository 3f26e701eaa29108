package conv

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-simgrid/internal/ndarray"
)

// Errors returned by convolution functions.
var (
	ErrEmptyInput     = errors.New("conv: empty input")
	ErrEmptyKernel    = errors.New("conv: empty kernel")
	ErrLengthMismatch = errors.New("conv: data length does not match shape")
	ErrRankMismatch   = errors.New("conv: input and kernel rank differ")
	ErrShapeMismatch  = errors.New("conv: kernel shape not broadcastable")
	ErrInvalidAxis    = errors.New("conv: invalid axis")
)

// Mode specifies the output mode for convolution.
type Mode int

const (
	// ModeFull returns the full convolution result with extent n+m-1 along
	// every convolved axis.
	ModeFull Mode = iota

	// ModeSame returns output with the same extent as the first input,
	// centered on the full result.
	ModeSame

	// ModeValid returns only the portion where the inputs fully overlap,
	// with extent max(n, m) - min(n, m) + 1.
	ModeValid
)

// directThreshold is the kernel cell count (over convolved axes) at or below
// which Convolve uses direct summation.
const directThreshold = 64

// Array is a dense row-major N-dimensional array of real values.
type Array struct {
	Data  []float64
	Shape []int
}

// NewArray returns a zero-filled Array with the given shape.
func NewArray(shape ...int) Array {
	return Array{
		Data:  make([]float64, ndarray.Size(shape)),
		Shape: append([]int(nil), shape...),
	}
}

// Len returns the number of elements described by the shape.
func (a Array) Len() int {
	return ndarray.Size(a.Shape)
}

// Direct performs direct linear convolution of a with kernel along axes.
// Both arrays must have the same rank. Along axes that are not convolved the
// kernel extent must be 1 (broadcast) or equal to the input extent
// (element-wise). A nil axes slice convolves along every axis.
//
// This is an O(N*M) algorithm suitable for small kernels.
func Direct(a, kernel Array, axes []int, mode Mode) (Array, error) {
	g, err := newGeometry(a, kernel, axes, mode)
	if err != nil {
		return Array{}, err
	}

	full := make([]float64, ndarray.Size(g.full))
	fStrides := ndarray.Strides(g.full)
	rank := len(a.Shape)

	kCoords := make([][]int, len(kernel.Data))
	for ki := range kernel.Data {
		kCoords[ki] = make([]int, rank)
		ndarray.Unravel(ki, kernel.Shape, kCoords[ki])
	}

	aCoord := make([]int, rank)
	for ai, v := range a.Data {
		if v == 0 {
			continue
		}
		ndarray.Unravel(ai, a.Shape, aCoord)

	kernelLoop:
		for ki, kv := range kernel.Data {
			kc := kCoords[ki]
			off := 0
			for d := 0; d < rank; d++ {
				if g.conv[d] {
					off += (aCoord[d] + kc[d]) * fStrides[d]
					continue
				}
				if kernel.Shape[d] != 1 && kc[d] != aCoord[d] {
					continue kernelLoop
				}
				off += aCoord[d] * fStrides[d]
			}
			full[off] += v * kv
		}
	}

	out := NewArray(g.out...)
	ndarray.Resize(out.Data, g.out, make([]int, rank), full, g.full, g.start, g.out)
	return out, nil
}

// Convolve performs linear convolution with automatic algorithm selection.
// Kernels with at most 64 cells along the convolved axes use direct
// summation; larger kernels use FFT multiplication.
func Convolve(a, kernel Array, axes []int, mode Mode) (Array, error) {
	g, err := newGeometry(a, kernel, axes, mode)
	if err != nil {
		return Array{}, err
	}

	cells := 1
	for d, c := range g.conv {
		if c {
			cells *= kernel.Shape[d]
		}
	}
	if cells <= directThreshold {
		return Direct(a, kernel, axes, mode)
	}
	return FFT(a, kernel, axes, mode)
}

// geometry describes the full-result and trimmed output extents.
type geometry struct {
	conv  []bool
	full  []int
	start []int
	out   []int
}

func newGeometry(a, kernel Array, axes []int, mode Mode) (geometry, error) {
	if len(a.Shape) == 0 || a.Len() == 0 {
		return geometry{}, ErrEmptyInput
	}
	if len(kernel.Shape) == 0 || kernel.Len() == 0 {
		return geometry{}, ErrEmptyKernel
	}
	if len(a.Data) != a.Len() {
		return geometry{}, fmt.Errorf("%w: input has %d values for shape %v", ErrLengthMismatch, len(a.Data), a.Shape)
	}
	if len(kernel.Data) != kernel.Len() {
		return geometry{}, fmt.Errorf("%w: kernel has %d values for shape %v", ErrLengthMismatch, len(kernel.Data), kernel.Shape)
	}
	rank := len(a.Shape)
	if len(kernel.Shape) != rank {
		return geometry{}, fmt.Errorf("%w: input %v, kernel %v", ErrRankMismatch, a.Shape, kernel.Shape)
	}

	conv := make([]bool, rank)
	if axes == nil {
		for d := range conv {
			conv[d] = true
		}
	}
	for _, ax := range axes {
		if ax < 0 || ax >= rank {
			return geometry{}, fmt.Errorf("%w: %d (rank %d)", ErrInvalidAxis, ax, rank)
		}
		if conv[ax] {
			return geometry{}, fmt.Errorf("%w: %d listed twice", ErrInvalidAxis, ax)
		}
		conv[ax] = true
	}

	g := geometry{
		conv:  conv,
		full:  make([]int, rank),
		start: make([]int, rank),
		out:   make([]int, rank),
	}
	for d := 0; d < rank; d++ {
		n, m := a.Shape[d], kernel.Shape[d]
		if !conv[d] {
			if m != 1 && m != n {
				return geometry{}, fmt.Errorf("%w: axis %d has input extent %d, kernel extent %d", ErrShapeMismatch, d, n, m)
			}
			g.full[d], g.out[d] = n, n
			continue
		}

		g.full[d] = n + m - 1
		switch mode {
		case ModeSame:
			g.start[d] = (m - 1) / 2
			g.out[d] = n
		case ModeValid:
			if n >= m {
				g.start[d] = m - 1
				g.out[d] = n - m + 1
			} else {
				g.start[d] = n - 1
				g.out[d] = m - n + 1
			}
		default:
			g.out[d] = g.full[d]
		}
	}
	return g, nil
}
