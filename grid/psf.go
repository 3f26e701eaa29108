package grid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-simgrid/internal/ndarray"
)

// fwhmToSigma converts a Gaussian full width at half maximum to its
// standard deviation.
var fwhmToSigma = 1 / (2 * math.Sqrt(2*math.Ln2))

// Normalization selects how a point-spread function is scaled.
type Normalization int

const (
	// NormArea scales the kernel to sum to 1.
	NormArea Normalization = iota
	// NormPeak leaves the kernel peak at 1.
	NormPeak
)

// PSFConfig configures GaussianPSF and SpectralPSF.
type PSFConfig struct {
	// SideLength overrides the kernel extent, one value per axis or a single
	// value for all of them.
	SideLength []float64
	Norm       Normalization
}

// GaussianPSF returns a single-property grid centered on the origin holding
// an axis-aligned Gaussian with the given full width at half maximum per
// axis. The default side length is six times the FWHM.
func GaussianPSF(fwhm, pixelSize []float64, cfg PSFConfig, opts ...Option) (*Grid, error) {
	nDims := len(fwhm)
	if nDims == 0 {
		return nil, fmt.Errorf("%w: no FWHM values", ErrDimensionMismatch)
	}
	for i, w := range fwhm {
		if !(w > 0) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: FWHM %v on axis %d", ErrInvalidArgument, w, i)
		}
	}
	side := cfg.SideLength
	if side == nil {
		side = make([]float64, nDims)
		for i, w := range fwhm {
			side[i] = 6 * w
		}
	}

	g, err := NewGrid(1, make([]float64, nDims), side, pixelSize, opts...)
	if err != nil {
		return nil, err
	}
	g.Init()

	values := make([]float64, g.chans.cells)
	coord := make([]int, nDims)
	for cell := range values {
		ndarray.Unravel(cell, g.n, coord)
		e := 0.0
		for d, k := range coord {
			s := fwhm[d] * fwhmToSigma
			x := g.centers[d][k]
			e += x * x / (2 * s * s)
		}
		values[cell] = math.Exp(-e)
	}
	if cfg.Norm == NormArea {
		floats.Scale(1/floats.Sum(values), values)
	}
	setReal(g.chans.slots[0], values)
	return g, nil
}

// SpectralPSF returns a beam whose spatial width scales inversely with the
// spectral coordinate, as for a diffraction-limited instrument. fwhm0 is the
// spatial FWHM per spatial axis at spec0; specAxis holds the evenly spaced
// spectral cell centers, which form the last grid axis. The default spatial
// side length is three times the largest FWHM over the spectral axis. With
// NormArea every spectral plane sums to 1.
func SpectralPSF(specAxis []float64, spec0 float64, fwhm0, pixelSize []float64, cfg PSFConfig, opts ...Option) (*Grid, error) {
	nSpatial := len(fwhm0)
	if nSpatial == 0 {
		return nil, fmt.Errorf("%w: no spatial FWHM values", ErrDimensionMismatch)
	}
	if !(spec0 > 0) {
		return nil, fmt.Errorf("%w: reference spectral coordinate %v", ErrInvalidArgument, spec0)
	}
	specPixel, err := uniformStep(specAxis)
	if err != nil {
		return nil, fmt.Errorf("spectral axis: %w", err)
	}
	lo, hi := floats.Min(specAxis), floats.Max(specAxis)
	if !(lo > 0) {
		return nil, fmt.Errorf("%w: spectral coordinates must be positive", ErrInvalidArgument)
	}
	for i, w := range fwhm0 {
		if !(w > 0) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: FWHM %v on axis %d", ErrInvalidArgument, w, i)
		}
	}

	nDims := nSpatial + 1
	pixel, err := broadcastFloats("pixel size", pixelSize, nSpatial)
	if err != nil {
		return nil, err
	}
	side := cfg.SideLength
	if side == nil {
		side = make([]float64, nSpatial)
		for i, w := range fwhm0 {
			side[i] = 3 * w * spec0 / lo
		}
	} else if side, err = broadcastFloats("side length", side, nSpatial); err != nil {
		return nil, err
	}

	center := make([]float64, nDims)
	center[nSpatial] = lo + (hi-lo)/2
	g, err := NewGrid(1, center,
		append(side, (hi-lo)+specPixel),
		append(pixel, specPixel),
		opts...)
	if err != nil {
		return nil, err
	}
	g.Init()

	planeShape := g.n[:nSpatial]
	planeCells := ndarray.Size(planeShape)
	nSpec := g.n[nSpatial]
	values := make([]float64, g.chans.cells)
	plane := make([]float64, planeCells)
	coord := make([]int, nSpatial)
	for j := 0; j < nSpec && j < len(specAxis); j++ {
		scale := spec0 / specAxis[j]
		for cell := range plane {
			ndarray.Unravel(cell, planeShape, coord)
			e := 0.0
			for d, k := range coord {
				s := fwhm0[d] * fwhmToSigma * scale
				x := g.centers[d][k]
				e += x * x / (2 * s * s)
			}
			plane[cell] = math.Exp(-e)
		}
		if cfg.Norm == NormArea {
			floats.Scale(1/floats.Sum(plane), plane)
		}
		for cell, v := range plane {
			values[cell*nSpec+j] = v
		}
	}
	setReal(g.chans.slots[0], values)
	return g, nil
}

func setReal(dst []complex128, src []float64) {
	for i, v := range src {
		dst[i] = complex(v, 0)
	}
}
