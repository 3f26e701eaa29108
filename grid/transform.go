package grid

import (
	"fmt"

	"github.com/cwbudde/algo-simgrid/internal/fftnd"
)

// Transform toggles each listed axis between coordinate and spectral space.
// A nil axes list transforms every axis.
//
// Coordinate axes are forward transformed and shifted so the zero frequency
// sits at index n/2; spectral axes are unshifted and inverse transformed.
// With normalize the forward result is multiplied by the pixel size and the
// inverse result divided by it, which approximates the continuous Fourier
// integral and makes a forward/inverse pair the identity.
func (g *Grid) Transform(axes []int, normalize bool) error {
	if err := g.requireActive(); err != nil {
		return err
	}
	if err := g.requireNotPower("transform"); err != nil {
		return err
	}
	axes, err := g.checkAxes(axes)
	if err != nil {
		return err
	}

	tr := fftnd.New()
	for _, ax := range axes {
		toSpectral := g.space[ax] == Coordinate
		for _, slot := range g.chans.slots {
			if toSpectral {
				if err := tr.Axis(slot, g.n, ax, fftnd.Forward); err != nil {
					return fmt.Errorf("grid: forward transform of axis %d: %w", ax, err)
				}
				tr.Shift(slot, g.n, ax)
			} else {
				tr.Unshift(slot, g.n, ax)
				if err := tr.Axis(slot, g.n, ax, fftnd.Inverse); err != nil {
					return fmt.Errorf("grid: inverse transform of axis %d: %w", ax, err)
				}
			}
		}
		if normalize {
			if toSpectral {
				g.chans.scale(g.pixel[ax])
			} else {
				g.chans.scale(1 / g.pixel[ax])
			}
		}
		if toSpectral {
			g.space[ax] = Spectral
		} else {
			g.space[ax] = Coordinate
		}
	}
	g.complexValue = true
	return nil
}

// transformTo moves the listed axes into space want and every other axis
// into the opposite space. It returns the axes it toggled so the caller can
// restore them.
func (g *Grid) transformTo(axes []int, want Space, normalize bool) ([]int, error) {
	listed := make([]bool, g.nDims)
	for _, ax := range axes {
		listed[ax] = true
	}
	var toggle []int
	for d := 0; d < g.nDims; d++ {
		if listed[d] != (g.space[d] == want) {
			toggle = append(toggle, d)
		}
	}
	if len(toggle) == 0 {
		return nil, nil
	}
	return toggle, g.Transform(toggle, normalize)
}
