package grid

import (
	"fmt"

	"github.com/cwbudde/algo-simgrid/dsp/spectrum"
	"github.com/cwbudde/algo-simgrid/internal/ndarray"
)

// PowerOptions configures PowerSpectrum. The zero value computes the
// normalized auto power over every axis into a new grid.
type PowerOptions struct {
	// Cross is the second grid of a cross spectrum. Nil, or g itself,
	// computes the auto spectrum. A single-property grid is broadcast
	// against every property of the other.
	Cross *Grid

	// Axes lists the axes taken to spectral space; the rest are taken to
	// coordinate space. Nil selects every axis.
	Axes []int

	// InPlace overwrites the grid with the result instead of returning a
	// new one.
	InPlace bool

	// Unnormalized skips the pixel-size scaling of the transforms.
	Unnormalized bool
}

// PowerSpectrum returns Re(F_a * conj(F_b)) per cell and property, where F
// is the grid transformed to spectral space on opts.Axes and coordinate
// space on every other axis.
//
// Inputs are transformed as needed and restored to their original spaces
// afterwards, except g itself when opts.InPlace is set. The result is real,
// marked as a power spectrum and keeps the input units unchanged.
func (g *Grid) PowerSpectrum(opts PowerOptions) (*Grid, error) {
	if err := g.requireActive(); err != nil {
		return nil, err
	}
	if err := g.requireNotPower("compute a power spectrum"); err != nil {
		return nil, err
	}
	axes, err := g.checkAxes(opts.Axes)
	if err != nil {
		return nil, err
	}

	cross := opts.Cross
	if cross == g {
		cross = nil
	}
	nOut := g.nProps
	if cross != nil {
		if err := cross.requireActive(); err != nil {
			return nil, fmt.Errorf("grid: cross grid: %w", err)
		}
		if err := cross.requireNotPower("compute a power spectrum"); err != nil {
			return nil, fmt.Errorf("grid: cross grid: %w", err)
		}
		if cross.nDims != g.nDims {
			return nil, fmt.Errorf("%w: cross grid has %d dimensions, grid has %d", ErrDimensionMismatch, cross.nDims, g.nDims)
		}
		if !ndarray.Equal(cross.n, g.n) {
			return nil, fmt.Errorf("%w: cross grid has %v pixels, grid has %v", ErrShapeMismatch, cross.n, g.n)
		}
		switch {
		case cross.nProps == g.nProps:
		case g.nProps == 1:
			nOut = cross.nProps
		case cross.nProps == 1:
		default:
			return nil, fmt.Errorf("%w: cross grid has %d properties, grid has %d", ErrShapeMismatch, cross.nProps, g.nProps)
		}
	}

	normalize := !opts.Unnormalized
	toggled, err := g.transformTo(axes, Spectral, normalize)
	if err != nil {
		return nil, err
	}
	var crossToggled []int
	if cross != nil {
		if crossToggled, err = cross.transformTo(axes, Spectral, normalize); err != nil {
			g.revert(toggled, normalize)
			return nil, err
		}
	}

	cells := g.chans.cells
	out := make([][]complex128, nOut)
	row := make([]float64, cells)
	for p := range out {
		a := g.chans.slots[broadcastIndex(p, g.nProps)]
		if cross == nil {
			spectrum.PowerInto(row, a)
		} else {
			spectrum.CrossPowerInto(row, a, cross.chans.slots[broadcastIndex(p, cross.nProps)])
		}
		slot := make([]complex128, cells)
		for i, v := range row {
			slot[i] = complex(v, 0)
		}
		out[p] = slot
	}

	units := g.gridUnits
	if len(units) != nOut {
		units = make([]string, nOut)
		for i := range units {
			units[i] = g.gridUnits[0]
		}
	}

	if cross != nil && len(crossToggled) > 0 {
		if err := cross.Transform(crossToggled, normalize); err != nil {
			return nil, err
		}
	}

	var result *Grid
	if opts.InPlace {
		result = g
	} else {
		result = g.emptyLike(nOut)
		copy(result.space, g.space)
		result.nObjects = g.nObjects
		if len(toggled) > 0 {
			if err := g.Transform(toggled, normalize); err != nil {
				return nil, err
			}
		}
	}
	result.nProps = nOut
	result.gridUnits = append([]string(nil), units...)
	result.chans = &channels{cells: cells, slots: out}
	result.power = true
	result.complexValue = false
	return result, nil
}

// revert toggles back the axes a transformTo call moved. It is best effort:
// a failure here leaves the axes in the space the failed transform reached.
func (g *Grid) revert(toggled []int, normalize bool) {
	if len(toggled) > 0 {
		_ = g.Transform(toggled, normalize)
	}
}

// broadcastIndex maps an output property to a source property, repeating a
// single source.
func broadcastIndex(p, n int) int {
	if n == 1 {
		return 0
	}
	return p
}
