package grid

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-simgrid/internal/ndarray"
)

// MeshFunc evaluates a field on a mesh. It receives the cell centers of
// every axis and returns one value per cell in row-major order.
type MeshFunc func(centers [][]float64) []float64

// Pointwise adapts a function of a single position to a MeshFunc.
func Pointwise(f func(x []float64) float64) MeshFunc {
	return func(centers [][]float64) []float64 {
		shape := make([]int, len(centers))
		for d, c := range centers {
			shape[d] = len(c)
		}
		out := make([]float64, ndarray.Size(shape))
		coord := make([]int, len(shape))
		x := make([]float64, len(shape))
		for i := range out {
			ndarray.Unravel(i, shape, coord)
			for d, k := range coord {
				x[d] = centers[d][k]
			}
			out[i] = f(x)
		}
		return out
	}
}

// FromAxes builds a single-property grid whose cell centers are the given
// evenly spaced, increasing axis coordinates and fills it with fn.
func FromAxes(fn MeshFunc, axes [][]float64, opts ...Option) (*Grid, error) {
	if len(axes) == 0 {
		return nil, fmt.Errorf("%w: no axes", ErrDimensionMismatch)
	}
	nDims := len(axes)
	center := make([]float64, nDims)
	pixel := make([]float64, nDims)
	n := make([]int, nDims)
	for d, ax := range axes {
		step, err := uniformStep(ax)
		if err != nil {
			return nil, fmt.Errorf("axis %d: %w", d, err)
		}
		n[d] = len(ax)
		pixel[d] = step
		center[d] = (ax[0] + ax[len(ax)-1]) / 2
	}

	g, err := newGrid(1, center, pixel, n, applyOptions(opts))
	if err != nil {
		return nil, err
	}
	g.Init()
	centers := make([][]float64, nDims)
	for d := range centers {
		centers[d] = g.AxisCenters(d)
	}
	values := fn(centers)
	if len(values) != g.chans.cells {
		return nil, fmt.Errorf("%w: mesh function returned %d values for %d cells", ErrShapeMismatch, len(values), g.chans.cells)
	}
	setReal(g.chans.slots[0], values)
	return g, nil
}

// uniformStep returns the spacing of evenly spaced, strictly increasing
// coordinates. Steps are compared with a relative tolerance of 1e-5 and an
// absolute tolerance of 1e-8.
func uniformStep(axis []float64) (float64, error) {
	if len(axis) < 2 {
		return 0, fmt.Errorf("%w: need at least 2 coordinates, have %d", ErrNonUniformAxis, len(axis))
	}
	step := (axis[len(axis)-1] - axis[0]) / float64(len(axis)-1)
	if !(step > 0) || math.IsInf(step, 0) {
		return 0, fmt.Errorf("%w: coordinates must increase", ErrNonUniformAxis)
	}
	for i := 1; i < len(axis); i++ {
		d := axis[i] - axis[i-1]
		if math.Abs(d-step) > 1e-8+1e-5*math.Abs(step) {
			return 0, fmt.Errorf("%w: step %v at index %d, expected %v", ErrNonUniformAxis, d, i, step)
		}
	}
	return step, nil
}
