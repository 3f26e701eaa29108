package grid

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-simgrid/internal/ndarray"
)

// BinMode selects how automatic radial bin edges are spaced.
type BinMode int

const (
	// BinLinear spaces edges evenly between the minimum and maximum radius.
	BinLinear BinMode = iota
	// BinLog spaces edges evenly in log radius, starting at the smallest
	// positive radius.
	BinLog
)

// DefaultNBins is the bin count used when neither edges nor a count is
// given.
const DefaultNBins = 10

// AverageOptions configures SphericalAverage.
type AverageOptions struct {
	// Axes lists the axes averaged over. They must share a space. Nil
	// selects every axis.
	Axes []int

	// Center is the origin of the radius per averaged axis. Nil selects the
	// grid's center point for coordinate-space axes and zero frequency for
	// spectral axes.
	Center []float64

	// Edges are explicit, strictly increasing bin edges. When set, NBins
	// and BinMode are ignored.
	Edges []float64

	// NBins is the number of automatic bins. Zero means DefaultNBins.
	NBins   int
	BinMode BinMode

	// Weights are broadcast against the buffer shape. Nil weights every
	// cell equally.
	Weights *Weights

	ReturnStd bool

	// UnbiasedStd applies the reliability-weights correction W - W2/W
	// instead of dividing by the total weight W.
	UnbiasedStd bool

	ReturnCount bool
}

// Binned is the result of a spherical average. Its arrays are row-major
// over Shape = (bins, retained axis pixels..., properties).
type Binned struct {
	// Edges holds the len(bins)+1 radial bin edges.
	Edges []float64

	// RetainedAxes lists the grid axes that were not averaged, and Axes
	// holds their cell-center coordinates in their current space.
	RetainedAxes []int
	Axes         [][]float64

	Shape []int

	// Mean is the weighted mean per bin. Bins without weight are NaN.
	Mean []complex128

	// Count is the number of cells per bin, set when requested.
	Count []int

	// Std is the weighted standard deviation of |x - mean|, set when
	// requested.
	Std []float64

	// Complex reports whether the source buffer was complex valued.
	Complex bool
}

// NBins returns the number of radial bins.
func (b *Binned) NBins() int { return len(b.Edges) - 1 }

// RealMean returns the real parts of Mean.
func (b *Binned) RealMean() []float64 {
	out := make([]float64, len(b.Mean))
	for i, v := range b.Mean {
		out[i] = real(v)
	}
	return out
}

// Index returns the flat offset of (bin, retained pixels..., property).
func (b *Binned) Index(coord ...int) int {
	return ndarray.Ravel(coord, ndarray.Strides(b.Shape))
}

// BinCenters returns the arithmetic midpoint of each bin.
func (b *Binned) BinCenters() []float64 {
	out := make([]float64, b.NBins())
	for i := range out {
		out[i] = (b.Edges[i] + b.Edges[i+1]) / 2
	}
	return out
}

// SphericalAverage bins cells by their Euclidean distance from the center
// over the averaged axes and returns the weighted mean per radial bin,
// retained-axis pixel and property. Cells outside [first edge, last edge)
// are ignored.
func (g *Grid) SphericalAverage(opts AverageOptions) (*Binned, error) {
	if err := g.requireActive(); err != nil {
		return nil, err
	}
	axes, err := g.checkAxes(opts.Axes)
	if err != nil {
		return nil, err
	}
	if len(axes) == 0 {
		return nil, fmt.Errorf("%w: no axes to average", ErrInvalidAxis)
	}
	space := g.space[axes[0]]
	for _, ax := range axes[1:] {
		if g.space[ax] != space {
			return nil, fmt.Errorf("%w: axes %v", ErrMixedSpace, axes)
		}
	}
	if opts.Edges != nil {
		if err := checkEdges(opts.Edges); err != nil {
			return nil, err
		}
	} else if opts.NBins < 0 {
		return nil, fmt.Errorf("%w: %d bins", ErrInvalidBins, opts.NBins)
	}

	center := opts.Center
	if center == nil {
		center = make([]float64, len(axes))
		if space == Coordinate {
			for k, ax := range axes {
				center[k] = g.center[ax]
			}
		}
	}
	if len(center) != len(axes) {
		return nil, fmt.Errorf("%w: %d center values for %d averaged axes", ErrDimensionMismatch, len(center), len(axes))
	}
	weights, err := opts.Weights.broadcastTo(g.Shape())
	if err != nil {
		return nil, err
	}

	coords := g.centers
	if space == Spectral {
		coords = g.freqCenters
	}
	cells := g.chans.cells
	radius := make([]float64, cells)
	coord := make([]int, g.nDims)
	for cell := 0; ; cell++ {
		r2 := 0.0
		for k, ax := range axes {
			x := coords[ax][coord[ax]] - center[k]
			r2 += x * x
		}
		radius[cell] = math.Sqrt(r2)
		if !ndarray.Next(coord, g.n) {
			break
		}
	}

	edges := opts.Edges
	if edges == nil {
		nBins := opts.NBins
		if nBins == 0 {
			nBins = DefaultNBins
		}
		if edges, err = autoEdges(radius, nBins, opts.BinMode); err != nil {
			return nil, err
		}
	} else {
		edges = append([]float64(nil), edges...)
	}
	nBins := len(edges) - 1

	averaged := make([]bool, g.nDims)
	for _, ax := range axes {
		averaged[ax] = true
	}
	b := &Binned{Edges: edges, Complex: g.complexValue}
	outShape := []int{nBins}
	for d := 0; d < g.nDims; d++ {
		if !averaged[d] {
			b.RetainedAxes = append(b.RetainedAxes, d)
			b.Axes = append(b.Axes, append([]float64(nil), coords[d]...))
			outShape = append(outShape, g.n[d])
		}
	}
	outShape = append(outShape, g.nProps)
	b.Shape = outShape
	outStrides := ndarray.Strides(outShape)
	size := ndarray.Size(outShape)

	// outBase maps a cell to its output offset for property 0, or -1.
	outBase := make([]int, cells)
	for i := range coord {
		coord[i] = 0
	}
	for cell := 0; ; cell++ {
		bin := sort.Search(len(edges), func(i int) bool { return edges[i] > radius[cell] }) - 1
		if bin < 0 || bin >= nBins {
			outBase[cell] = -1
		} else {
			off := bin * outStrides[0]
			for k, d := range b.RetainedAxes {
				off += coord[d] * outStrides[k+1]
			}
			outBase[cell] = off
		}
		if !ndarray.Next(coord, g.n) {
			break
		}
	}

	sumW := make([]float64, size)
	sumW2 := make([]float64, size)
	sumWX := make([]complex128, size)
	var count []int
	if opts.ReturnCount {
		count = make([]int, size)
	}
	g.eachBinnedCell(outBase, coord, func(cell, off int) {
		for p, slot := range g.chans.slots {
			w := weights.at(coord, p)
			sumW[off+p] += w
			sumW2[off+p] += w * w
			sumWX[off+p] += complex(w, 0) * slot[cell]
			if count != nil {
				count[off+p]++
			}
		}
	})

	b.Mean = make([]complex128, size)
	for i, w := range sumW {
		if w == 0 {
			b.Mean[i] = complex(math.NaN(), math.NaN())
			continue
		}
		b.Mean[i] = sumWX[i] / complex(w, 0)
	}
	b.Count = count

	if opts.ReturnStd {
		dev := make([]float64, size)
		g.eachBinnedCell(outBase, coord, func(cell, off int) {
			for p, slot := range g.chans.slots {
				d := slot[cell] - b.Mean[off+p]
				dev[off+p] += weights.at(coord, p) * (real(d)*real(d) + imag(d)*imag(d))
			}
		})
		b.Std = make([]float64, size)
		for i, w := range sumW {
			norm := w
			if opts.UnbiasedStd {
				norm = w - sumW2[i]/w
			}
			b.Std[i] = math.Sqrt(dev[i] / norm)
		}
	}
	return b, nil
}

// eachBinnedCell calls fn for every cell that falls in a bin, with coord
// holding its pixel coordinate.
func (g *Grid) eachBinnedCell(outBase, coord []int, fn func(cell, off int)) {
	for i := range coord {
		coord[i] = 0
	}
	for cell := 0; ; cell++ {
		if off := outBase[cell]; off >= 0 {
			fn(cell, off)
		}
		if !ndarray.Next(coord, g.n) {
			return
		}
	}
}

func checkEdges(edges []float64) error {
	if len(edges) < 2 {
		return fmt.Errorf("%w: need at least 2 edges, have %d", ErrInvalidBins, len(edges))
	}
	for i := 1; i < len(edges); i++ {
		if !(edges[i] > edges[i-1]) {
			return fmt.Errorf("%w: edges must be strictly increasing, edge %d is %v after %v", ErrInvalidBins, i, edges[i], edges[i-1])
		}
	}
	return nil
}

// autoEdges spans the radii with nBins bins. The upper edge is nudged up by
// one part in 1e10 of the range so the largest radius is binned.
func autoEdges(radius []float64, nBins int, mode BinMode) ([]float64, error) {
	lo, hi := floats.Min(radius), floats.Max(radius)
	if mode == BinLog {
		lo = math.Inf(1)
		for _, r := range radius {
			if r > 0 && r < lo {
				lo = r
			}
		}
		if math.IsInf(lo, 1) {
			return nil, fmt.Errorf("%w: logarithmic bins need a positive radius", ErrInvalidBins)
		}
	}
	span := hi - lo
	if span > 0 {
		hi += span / 1e10
	} else {
		hi = lo + math.Max(math.Abs(lo), 1)*1e-10
	}

	edges := make([]float64, nBins+1)
	if mode == BinLog {
		floats.LogSpan(edges, lo, hi)
	} else {
		floats.Span(edges, lo, hi)
	}
	// Pin the end points; exp(log(x)) need not round-trip.
	edges[0], edges[nBins] = lo, hi
	return edges, nil
}
