package grid

import (
	"fmt"

	"github.com/cwbudde/algo-simgrid/internal/ndarray"
)

// Weights is a dense row-major weight array that is broadcast against a grid
// buffer of shape (n_pixels..., n_properties).
type Weights struct {
	Values []float64
	Shape  []int
}

// NewWeights wraps values with the given shape.
func NewWeights(values []float64, shape ...int) (*Weights, error) {
	if len(shape) == 0 {
		shape = []int{len(values)}
	}
	if ndarray.Size(shape) != len(values) {
		return nil, fmt.Errorf("%w: %d weights for shape %v", ErrShapeMismatch, len(values), shape)
	}
	return &Weights{Values: values, Shape: append([]int(nil), shape...)}, nil
}

// weightView reads a Weights through broadcast strides over the buffer
// axes. A zero stride repeats the value along that axis.
type weightView struct {
	values  []float64
	strides []int
}

func uniformView(rank int) weightView {
	return weightView{values: []float64{1}, strides: make([]int, rank)}
}

// at returns the weight of cell coord (spatial pixel indices) and property p.
func (v weightView) at(coord []int, p int) float64 {
	off := 0
	for d, c := range coord {
		off += c * v.strides[d]
	}
	return v.values[off+p*v.strides[len(coord)]]
}

// broadcastTo resolves w against bufShape. Missing trailing axes are
// treated as extent 1; every other axis must match or be 1.
func (w *Weights) broadcastTo(bufShape []int) (weightView, error) {
	rank := len(bufShape)
	if w == nil {
		return uniformView(rank), nil
	}
	if ndarray.Size(w.Shape) != len(w.Values) {
		return weightView{}, fmt.Errorf("%w: %d weights for shape %v", ErrShapeMismatch, len(w.Values), w.Shape)
	}
	if len(w.Shape) > rank {
		return weightView{}, fmt.Errorf("%w: weights %v exceed buffer %v", ErrShapeMismatch, w.Shape, bufShape)
	}
	own := ndarray.Strides(w.Shape)
	view := weightView{values: w.Values, strides: make([]int, rank)}
	for d := range w.Shape {
		switch w.Shape[d] {
		case bufShape[d]:
			view.strides[d] = own[d]
		case 1:
		default:
			return weightView{}, fmt.Errorf("%w: weights %v do not broadcast against buffer %v", ErrShapeMismatch, w.Shape, bufShape)
		}
	}
	return view, nil
}

// alongAxis resolves w for collapsing axis. A 1-D array of length
// n_pixels[axis] varies along that axis only; otherwise w must broadcast
// against the spatial shape or the whole buffer.
func (w *Weights) alongAxis(axis int, bufShape []int) (weightView, error) {
	rank := len(bufShape)
	if w == nil {
		return uniformView(rank), nil
	}
	if len(w.Shape) == 1 && w.Shape[0] == bufShape[axis] && len(w.Values) == w.Shape[0] {
		view := weightView{values: w.Values, strides: make([]int, rank)}
		view.strides[axis] = 1
		return view, nil
	}
	if len(w.Shape) != rank-1 && len(w.Shape) != rank {
		return weightView{}, fmt.Errorf("%w: weights %v for axis %d of buffer %v", ErrShapeMismatch, w.Shape, axis, bufShape)
	}
	return w.broadcastTo(bufShape)
}
