package grid

import "fmt"

// Space identifies the representation an axis currently holds.
type Space uint8

const (
	// Coordinate means the axis indexes physical position.
	Coordinate Space = iota
	// Spectral means the axis indexes frequency.
	Spectral
)

func (s Space) String() string {
	switch s {
	case Coordinate:
		return "coordinate"
	case Spectral:
		return "spectral"
	default:
		return fmt.Sprintf("Space(%d)", uint8(s))
	}
}

// requireSpace fails unless every listed axis is in want.
func (g *Grid) requireSpace(axes []int, want Space) error {
	for _, ax := range axes {
		if g.space[ax] != want {
			if want == Coordinate {
				return fmt.Errorf("%w: axis %d", ErrSpectralSpace, ax)
			}
			return fmt.Errorf("grid: axis %d is in %s space, need %s", ax, g.space[ax], want)
		}
	}
	return nil
}

func (g *Grid) allAxes() []int {
	axes := make([]int, g.nDims)
	for i := range axes {
		axes[i] = i
	}
	return axes
}

// checkAxes validates axis indices; nil selects every axis.
func (g *Grid) checkAxes(axes []int) ([]int, error) {
	if axes == nil {
		return g.allAxes(), nil
	}
	seen := make([]bool, g.nDims)
	for _, ax := range axes {
		if ax < 0 || ax >= g.nDims {
			return nil, fmt.Errorf("%w: %d (grid has %d dimensions)", ErrInvalidAxis, ax, g.nDims)
		}
		if seen[ax] {
			return nil, fmt.Errorf("%w: %d listed twice", ErrInvalidAxis, ax)
		}
		seen[ax] = true
	}
	return append([]int(nil), axes...), nil
}

// checkProperties validates property indices; nil selects every property.
func (g *Grid) checkProperties(props []int) ([]int, error) {
	if props == nil {
		props = make([]int, g.nProps)
		for i := range props {
			props[i] = i
		}
		return props, nil
	}
	for _, p := range props {
		if p < 0 || p >= g.nProps {
			return nil, fmt.Errorf("%w: %d (grid has %d properties)", ErrInvalidProperty, p, g.nProps)
		}
	}
	return append([]int(nil), props...), nil
}
