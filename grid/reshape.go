package grid

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-simgrid/internal/ndarray"
)

// Pad grows (positive amount) or shrinks (negative amount) each listed axis
// by amount cells on both sides. amounts holds one value per axis or a
// single value for all of them; nil axes pads every axis.
//
// In coordinate space the pixel size is kept and the side length changes.
// In spectral space the side length is kept and the pixel size changes, so
// the frequency resolution is preserved. Padded cells are zero.
func (g *Grid) Pad(axes []int, amounts []int) error {
	axes, err := g.checkAxes(axes)
	if err != nil {
		return err
	}
	switch {
	case len(amounts) == 1 && len(axes) != 1:
		v := amounts[0]
		amounts = make([]int, len(axes))
		for i := range amounts {
			amounts[i] = v
		}
	case len(amounts) != len(axes):
		return fmt.Errorf("%w: %d pad amounts for %d axes", ErrDimensionMismatch, len(amounts), len(axes))
	}

	newN := append([]int(nil), g.n...)
	srcStart := make([]int, g.nDims)
	dstStart := make([]int, g.nDims)
	count := append([]int(nil), g.n...)
	changed := false
	for i, ax := range axes {
		amt := amounts[i]
		if amt < 0 && g.n[ax] <= -2*amt {
			return fmt.Errorf("%w: cannot remove %d cells from each side of axis %d with %d cells", ErrInvalidArgument, -amt, ax, g.n[ax])
		}
		if amt == 0 {
			continue
		}
		changed = true
		newN[ax] = g.n[ax] + 2*amt
		if amt > 0 {
			dstStart[ax] = amt
		} else {
			srcStart[ax] = -amt
			count[ax] = newN[ax]
		}
	}
	if !changed {
		return nil
	}

	if g.chans != nil {
		g.chans.reshape(g.n, newN, srcStart, dstStart, count)
	}
	for _, ax := range axes {
		if newN[ax] == g.n[ax] {
			continue
		}
		if g.space[ax] == Spectral {
			g.pixel[ax] = g.side[ax] / float64(newN[ax])
		}
		g.n[ax] = newN[ax]
		g.side[ax] = g.pixel[ax] * float64(newN[ax])
		g.rebuildAxis(ax)
	}
	return nil
}

// Crop keeps the cells of axis whose centers lie in [lo, hi]. Infinite
// bounds leave that side open.
func (g *Grid) Crop(axis int, lo, hi float64) error {
	if axis < 0 || axis >= g.nDims {
		return fmt.Errorf("%w: %d (grid has %d dimensions)", ErrInvalidAxis, axis, g.nDims)
	}
	if err := g.requireSpace([]int{axis}, Coordinate); err != nil {
		return err
	}
	if math.IsNaN(lo) || math.IsNaN(hi) || hi <= lo {
		return fmt.Errorf("%w: crop limits [%v, %v]", ErrInvalidArgument, lo, hi)
	}

	first, last := -1, -1
	for k, c := range g.centers[axis] {
		if c >= lo && c <= hi {
			if first < 0 {
				first = k
			}
			last = k
		}
	}
	if first < 0 {
		return fmt.Errorf("%w: axis %d in [%v, %v]", ErrNoCells, axis, lo, hi)
	}
	keep := last - first + 1
	if keep == g.n[axis] {
		return nil
	}

	if g.chans != nil {
		newN := append([]int(nil), g.n...)
		newN[axis] = keep
		srcStart := make([]int, g.nDims)
		srcStart[axis] = first
		g.chans.reshape(g.n, newN, srcStart, make([]int, g.nDims), newN)
	}
	px := g.pixel[axis]
	low := g.edges[axis][first]
	g.n[axis] = keep
	g.side[axis] = px * float64(keep)
	g.center[axis] = low + g.side[axis]/2
	g.rebuildAxis(axis)
	return nil
}

// CollapseMode selects how collapsed cells are combined.
type CollapseMode int

const (
	// CollapseAverage divides the weighted sum by the summed weights.
	CollapseAverage CollapseMode = iota
	// CollapseSum returns the weighted sum.
	CollapseSum
)

// CollapseOptions configures Collapse. The zero value averages with
// uniform weights into a new grid.
type CollapseOptions struct {
	Mode CollapseMode

	// Weights holds one entry per collapsed axis, or is empty for uniform
	// weights. Each entry is a 1-D array along its axis, an array of the
	// spatial shape, or an array of the full buffer shape. Nil entries are
	// uniform. The product of all entries weights each cell.
	Weights []*Weights

	InPlace bool
}

// Collapse reduces the grid along axes by weighted sum or average. The
// collapsed axes are removed from the geometry. At least one axis must
// remain.
func (g *Grid) Collapse(axes []int, opts CollapseOptions) (*Grid, error) {
	if err := g.requireActive(); err != nil {
		return nil, err
	}
	if len(axes) == 0 {
		return nil, fmt.Errorf("%w: no axes to collapse", ErrInvalidAxis)
	}
	axes, err := g.checkAxes(axes)
	if err != nil {
		return nil, err
	}
	if len(axes) >= g.nDims {
		return nil, fmt.Errorf("%w: cannot collapse every axis", ErrInvalidAxis)
	}
	if len(opts.Weights) != 0 && len(opts.Weights) != len(axes) {
		return nil, fmt.Errorf("%w: %d weight arrays for %d collapsed axes", ErrDimensionMismatch, len(opts.Weights), len(axes))
	}

	bufShape := g.Shape()
	views := make([]weightView, 0, len(axes))
	for i, ax := range axes {
		var w *Weights
		if len(opts.Weights) != 0 {
			w = opts.Weights[i]
		}
		if w == nil {
			continue
		}
		v, err := w.alongAxis(ax, bufShape)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}

	collapsed := make([]bool, g.nDims)
	for _, ax := range axes {
		collapsed[ax] = true
	}
	var keepAxes []int
	var keepN []int
	for d := 0; d < g.nDims; d++ {
		if !collapsed[d] {
			keepAxes = append(keepAxes, d)
			keepN = append(keepN, g.n[d])
		}
	}
	keepStrides := ndarray.Strides(keepN)
	keepCells := ndarray.Size(keepN)

	sums := make([][]complex128, g.nProps)
	norms := make([][]float64, g.nProps)
	for p := range sums {
		sums[p] = make([]complex128, keepCells)
		norms[p] = make([]float64, keepCells)
	}

	coord := make([]int, g.nDims)
	for cell := 0; ; cell++ {
		out := 0
		for k, d := range keepAxes {
			out += coord[d] * keepStrides[k]
		}
		for p := 0; p < g.nProps; p++ {
			w := 1.0
			for _, v := range views {
				w *= v.at(coord, p)
			}
			sums[p][out] += complex(w, 0) * g.chans.slots[p][cell]
			norms[p][out] += w
		}
		if !ndarray.Next(coord, g.n) {
			break
		}
	}
	if opts.Mode == CollapseAverage {
		for p := range sums {
			for i, w := range norms[p] {
				if w == 0 {
					sums[p][i] = complex(math.NaN(), math.NaN())
					continue
				}
				sums[p][i] /= complex(w, 0)
			}
		}
	}

	target := g
	if !opts.InPlace {
		target = g.emptyLike(g.nProps)
		copy(target.gridUnits, g.gridUnits)
		target.power = g.power
		target.complexValue = g.complexValue
		target.nObjects = g.nObjects
	}
	pick := func(f []float64) []float64 {
		out := make([]float64, len(keepAxes))
		for k, d := range keepAxes {
			out[k] = f[d]
		}
		return out
	}
	space := make([]Space, len(keepAxes))
	units := make([]string, len(keepAxes))
	for k, d := range keepAxes {
		space[k] = g.space[d]
		units[k] = g.axUnits[d]
	}
	target.center = pick(g.center)
	target.pixel = pick(g.pixel)
	target.n = keepN
	target.side = sides(target.pixel, target.n)
	target.nDims = len(keepAxes)
	target.space = space
	target.axUnits = units
	target.chans = &channels{cells: keepCells, slots: sums}
	target.rebuildAxes()
	return target, nil
}
