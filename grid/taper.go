package grid

import (
	"fmt"

	"github.com/cwbudde/algo-simgrid/dsp/window"
	"github.com/cwbudde/algo-simgrid/internal/ndarray"
)

// Taper apodizes the grid in place with the separable window t along each
// listed coordinate-space axis. A nil axes list tapers every axis.
//
// It returns the mean squared taper over the grid. Dividing a power
// spectrum of the tapered grid by it restores the amplitude of a
// statistically homogeneous field.
func (g *Grid) Taper(axes []int, t window.Type, opts ...window.Option) (float64, error) {
	if err := g.requireActive(); err != nil {
		return 0, err
	}
	if err := g.requireNotPower("taper"); err != nil {
		return 0, err
	}
	axes, err := g.checkAxes(axes)
	if err != nil {
		return 0, err
	}
	if err := g.requireSpace(axes, Coordinate); err != nil {
		return 0, err
	}

	// Generate every window before touching the buffer.
	coeffs := make([][]float64, len(axes))
	for i, ax := range axes {
		if coeffs[i], err = window.Generate(t, g.n[ax], opts...); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
	}

	// Build the separable taper as one real field, then scale each channel.
	last := len(g.n) - 1
	field := make([]float64, ndarray.Size(g.n))
	for i := range field {
		field[i] = 1
	}
	meanSq := 1.0
	for i, ax := range axes {
		w := coeffs[i]
		meanSq *= window.MeanSquare(w)
		if ax == last {
			for offset := 0; offset < len(field); offset += len(w) {
				if err := window.Apply(field[offset:offset+len(w)], w); err != nil {
					return 0, err
				}
			}
			continue
		}
		ndarray.Lines(g.n, ax, func(offset, stride int) {
			for j, c := range w {
				field[offset+j*stride] *= c
			}
		})
	}
	for _, ch := range g.chans.slots {
		for i, f := range field {
			ch[i] *= complex(f, 0)
		}
	}
	return meanSq, nil
}
