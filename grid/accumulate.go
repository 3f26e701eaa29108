package grid

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-simgrid/internal/ndarray"
)

// Add scatter-adds catalog values into the existing property channels.
//
// positions holds one row of n_dimensions coordinates per object and values
// one row of n_properties values per object. A nil values slice adds a
// count of 1 per object and requires a single-property grid. Objects outside
// [center - side/2, center + side/2) on any axis are dropped silently; only
// placed objects count toward NObjects. The buffer is allocated on first
// use.
func (g *Grid) Add(positions, values [][]float64) error {
	return g.add(positions, values, false)
}

// AddChannels accumulates values into newly appended property channels, one
// per column of values. Existing channels are left untouched. A nil values
// slice appends a single count channel.
func (g *Grid) AddChannels(positions, values [][]float64) error {
	return g.add(positions, values, true)
}

func (g *Grid) add(positions, values [][]float64, newChannels bool) error {
	if err := g.requireNotPower("accumulate values"); err != nil {
		return err
	}
	if err := g.requireSpace(g.allAxes(), Coordinate); err != nil {
		return err
	}

	counts := values == nil
	width := g.nProps
	switch {
	case counts:
		width = 1
		if !newChannels && g.nProps != 1 {
			return fmt.Errorf("%w: counts need a single-property grid, have %d properties", ErrShapeMismatch, g.nProps)
		}
	case newChannels:
		if len(values) == 0 {
			return nil
		}
		width = len(values[0])
	}
	if !counts && len(values) != len(positions) {
		return fmt.Errorf("%w: %d value rows for %d positions", ErrShapeMismatch, len(values), len(positions))
	}
	for i, pos := range positions {
		if len(pos) != g.nDims {
			return fmt.Errorf("%w: object %d has %d coordinates, grid has %d dimensions", ErrDimensionMismatch, i, len(pos), g.nDims)
		}
		if !counts && len(values[i]) != width {
			return fmt.Errorf("%w: object %d has %d values, expected %d", ErrShapeMismatch, i, len(values[i]), width)
		}
	}

	g.Init()
	targets := g.chans.slots
	if newChannels {
		targets = make([][]complex128, width)
		for i := range targets {
			targets[i] = make([]complex128, g.chans.cells)
		}
	}

	strides := ndarray.Strides(g.n)
	placed := 0
objects:
	for i, pos := range positions {
		off := 0
		for d, x := range pos {
			f := math.Floor((x - g.center[d] + g.side[d]/2) / g.pixel[d])
			if !(f >= 0 && f < float64(g.n[d])) {
				continue objects
			}
			off += int(f) * strides[d]
		}
		if counts {
			targets[0][off]++
		} else {
			for k, v := range values[i] {
				targets[k][off] += complex(v, 0)
			}
		}
		placed++
	}

	if newChannels {
		g.chans.attach(targets...)
		g.nProps += width
		g.gridUnits = append(g.gridUnits, make([]string, width)...)
	}
	g.nObjects += placed
	return nil
}

// CatalogGeometry overrides the geometry FromCatalog derives from the
// objects. Nil fields are derived; PixelSize defaults to 1.
type CatalogGeometry struct {
	Center     []float64
	SideLength []float64
	PixelSize  []float64

	// Dimensions sets the dimensionality when there are no objects.
	Dimensions int
}

// catalogSideSlack widens derived side lengths so the maximum object falls
// inside the half-open grid interval.
const catalogSideSlack = 1.0000001

// FromCatalog builds a grid sized to a catalog and accumulates it.
//
// Without explicit geometry the center is the midpoint of the catalog range
// and the side length is the range times 1.0000001. Axes along which every
// object shares a coordinate are centered on it with side length 1.
func FromCatalog(positions, values [][]float64, geom CatalogGeometry, opts ...Option) (*Grid, error) {
	nDims := geom.Dimensions
	if len(positions) > 0 {
		if nDims != 0 && nDims != len(positions[0]) {
			return nil, fmt.Errorf("%w: positions have %d dimensions, requested %d", ErrDimensionMismatch, len(positions[0]), nDims)
		}
		nDims = len(positions[0])
	}
	if nDims <= 0 {
		return nil, fmt.Errorf("%w: cannot infer dimensions from an empty catalog", ErrInvalidArgument)
	}
	for i, pos := range positions {
		if len(pos) != nDims {
			return nil, fmt.Errorf("%w: object %d has %d coordinates, expected %d", ErrDimensionMismatch, i, len(pos), nDims)
		}
	}

	nProps := 1
	if len(values) > 0 {
		nProps = len(values[0])
	}

	center, side := geom.Center, geom.SideLength
	if center == nil || side == nil {
		if len(positions) == 0 {
			return nil, fmt.Errorf("%w: center and side length are required for an empty catalog", ErrInvalidArgument)
		}
		lo, hi := catalogRange(positions, nDims)
		if center == nil {
			center = make([]float64, nDims)
			for d := range center {
				center[d] = lo[d] + (hi[d]-lo[d])/2
			}
		}
		if side == nil {
			side = make([]float64, nDims)
			for d := range side {
				span := hi[d] - lo[d]
				if span == 0 {
					side[d] = 1
				} else {
					side[d] = span * catalogSideSlack
				}
			}
		}
	}
	pixel := geom.PixelSize
	if pixel == nil {
		pixel = []float64{1}
	}

	g, err := NewGrid(nProps, center, side, pixel, opts...)
	if err != nil {
		return nil, err
	}
	g.Init()
	if err := g.Add(positions, values); err != nil {
		return nil, err
	}
	return g, nil
}

func catalogRange(positions [][]float64, nDims int) (lo, hi []float64) {
	lo = append([]float64(nil), positions[0]...)
	hi = append([]float64(nil), positions[0]...)
	for _, pos := range positions[1:] {
		for d := 0; d < nDims; d++ {
			lo[d] = math.Min(lo[d], pos[d])
			hi[d] = math.Max(hi[d], pos[d])
		}
	}
	return lo, hi
}

// Sample returns the real buffer values of the listed properties at each
// position. Positions outside the grid yield NaN. A nil properties list
// samples every property.
func (g *Grid) Sample(positions [][]float64, properties []int) ([][]float64, error) {
	if err := g.requireActive(); err != nil {
		return nil, err
	}
	if err := g.requireSpace(g.allAxes(), Coordinate); err != nil {
		return nil, err
	}
	props, err := g.checkProperties(properties)
	if err != nil {
		return nil, err
	}

	strides := ndarray.Strides(g.n)
	out := make([][]float64, len(positions))
	for i, pos := range positions {
		if len(pos) != g.nDims {
			return nil, fmt.Errorf("%w: position %d has %d coordinates, grid has %d dimensions", ErrDimensionMismatch, i, len(pos), g.nDims)
		}
		row := make([]float64, len(props))
		off, inside := 0, true
		for d, x := range pos {
			f := math.Floor((x - g.center[d] + g.side[d]/2) / g.pixel[d])
			if !(f >= 0 && f < float64(g.n[d])) {
				inside = false
				break
			}
			off += int(f) * strides[d]
		}
		for k, p := range props {
			if inside {
				row[k] = real(g.chans.slots[p][off])
			} else {
				row[k] = math.NaN()
			}
		}
		out[i] = row
	}
	return out, nil
}

// SumProperties adds the listed property channels into one. A nil list sums
// every property. With inPlace the grid itself is reduced to the single
// summed channel; otherwise a new grid is returned and g is unchanged.
func (g *Grid) SumProperties(properties []int, inPlace bool) (*Grid, error) {
	if err := g.requireActive(); err != nil {
		return nil, err
	}
	props, err := g.checkProperties(properties)
	if err != nil {
		return nil, err
	}
	if len(props) == 0 {
		return nil, fmt.Errorf("%w: no properties to sum", ErrInvalidProperty)
	}

	sum := make([]complex128, g.chans.cells)
	for _, p := range props {
		for i, v := range g.chans.slots[p] {
			sum[i] += v
		}
	}
	unit := g.gridUnits[props[0]]

	target := g
	if !inPlace {
		target = g.emptyLike(1)
		copy(target.space, g.space)
		target.power = g.power
		target.complexValue = g.complexValue
		target.nObjects = g.nObjects
	}
	target.nProps = 1
	target.gridUnits = []string{unit}
	target.chans = &channels{cells: len(sum), slots: [][]complex128{sum}}
	return target, nil
}
