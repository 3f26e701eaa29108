package grid

import (
	"fmt"
	"log"
	"math"

	"github.com/cwbudde/algo-simgrid/internal/fftnd"
	"github.com/cwbudde/algo-simgrid/internal/ndarray"
)

// pixelTolerance is the relative slack allowed when side/pixel is treated as
// an integer.
const pixelTolerance = 1e-9

// Grid is an N-dimensional regular grid with one buffer channel per property.
//
// The geometry invariant side_length = pixel_size * n_pixels holds on every
// axis at all times. Axis arrays are derived from the geometry and rebuilt
// whenever it changes.
type Grid struct {
	nDims  int
	nProps int

	center []float64
	side   []float64
	pixel  []float64
	n      []int

	edges        [][]float64
	centers      [][]float64
	freqEdges    [][]float64
	freqCenters  [][]float64
	space        []Space
	axUnits      []string
	gridUnits    []string
	chans        *channels
	complexValue bool
	power        bool
	nObjects     int

	logger *log.Logger
}

// NewGrid creates an inactive grid with nProperties channels centered on
// center. side and pixel hold one value per dimension or a single value that
// is broadcast.
//
// The pixel count per axis is ceil(side/pixel); when that does not divide
// evenly the side length grows to pixel*n_pixels and a warning is logged.
func NewGrid(nProperties int, center, side, pixel []float64, opts ...Option) (*Grid, error) {
	nDims := len(center)
	if nDims == 0 {
		return nil, fmt.Errorf("%w: center point has no dimensions", ErrDimensionMismatch)
	}
	side, err := broadcastFloats("side length", side, nDims)
	if err != nil {
		return nil, err
	}
	pixel, err = broadcastFloats("pixel size", pixel, nDims)
	if err != nil {
		return nil, err
	}

	cfg := applyOptions(opts)
	n := make([]int, nDims)
	adjusted := false
	for i := 0; i < nDims; i++ {
		if !isFinite(center[i]) {
			return nil, fmt.Errorf("%w: center point %v on axis %d", ErrInvalidArgument, center[i], i)
		}
		if !(side[i] > 0) || !(pixel[i] > 0) || math.IsInf(side[i], 0) || math.IsInf(pixel[i], 0) {
			return nil, fmt.Errorf("%w: side length %v and pixel size %v on axis %d must be positive", ErrInvalidArgument, side[i], pixel[i], i)
		}
		var exact bool
		n[i], exact = pixelCount(side[i], pixel[i])
		if !exact {
			adjusted = true
		}
	}
	if adjusted {
		cfg.logger.Printf("grid: side lengths %v are not an integer multiple of pixel sizes %v, adjusting side lengths to %v",
			side, pixel, sides(pixel, n))
	}
	return newGrid(nProperties, center, pixel, n, cfg)
}

// newGrid builds a grid from an already consistent geometry.
func newGrid(nProps int, center, pixel []float64, n []int, cfg config) (*Grid, error) {
	if nProps < 0 {
		return nil, fmt.Errorf("%w: %d properties", ErrInvalidArgument, nProps)
	}
	nDims := len(center)
	g := &Grid{
		nDims:  nDims,
		nProps: nProps,
		center: append([]float64(nil), center...),
		pixel:  append([]float64(nil), pixel...),
		n:      append([]int(nil), n...),
		space:  make([]Space, nDims),
		logger: cfg.logger,
	}
	g.side = sides(g.pixel, g.n)

	var err error
	if g.axUnits, err = broadcastUnits("axis", cfg.axUnits, nDims); err != nil {
		return nil, err
	}
	if g.gridUnits, err = broadcastUnits("grid", cfg.gridUnits, nProps); err != nil {
		return nil, err
	}
	g.rebuildAxes()
	return g, nil
}

// pixelCount returns the number of pixels needed to span side and whether
// side is an integer multiple of pixel.
func pixelCount(side, pixel float64) (int, bool) {
	ratio := side / pixel
	r := math.Round(ratio)
	if r >= 1 && math.Abs(ratio-r) <= pixelTolerance*r {
		return int(r), true
	}
	return int(math.Ceil(ratio)), false
}

func sides(pixel []float64, n []int) []float64 {
	out := make([]float64, len(n))
	for i := range n {
		out[i] = pixel[i] * float64(n[i])
	}
	return out
}

func broadcastFloats(name string, v []float64, nDims int) ([]float64, error) {
	switch len(v) {
	case nDims:
		return append([]float64(nil), v...), nil
	case 1:
		out := make([]float64, nDims)
		for i := range out {
			out[i] = v[0]
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s has %d values for %d dimensions", ErrDimensionMismatch, name, len(v), nDims)
	}
}

func broadcastUnits(name string, units []string, n int) ([]string, error) {
	switch {
	case units == nil:
		return make([]string, n), nil
	case len(units) == n:
		return append([]string(nil), units...), nil
	case len(units) == 1:
		out := make([]string, n)
		for i := range out {
			out[i] = units[0]
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %d %s units for %d entries", ErrDimensionMismatch, len(units), name, n)
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// rebuildAxes recomputes all per-axis coordinate arrays from the geometry.
func (g *Grid) rebuildAxes() {
	g.edges = make([][]float64, g.nDims)
	g.centers = make([][]float64, g.nDims)
	g.freqEdges = make([][]float64, g.nDims)
	g.freqCenters = make([][]float64, g.nDims)
	for i := 0; i < g.nDims; i++ {
		g.rebuildAxis(i)
	}
}

func (g *Grid) rebuildAxis(i int) {
	n, px := g.n[i], g.pixel[i]
	lo := g.center[i] - g.side[i]/2

	edges := make([]float64, n+1)
	for k := range edges {
		edges[k] = float64(k)*px + lo
	}
	centers := make([]float64, n)
	for k := range centers {
		centers[k] = edges[k] + px/2
	}

	freq := fftnd.ShiftedFreq(n, px)
	df := 1 / (float64(n) * px)
	freqEdges := make([]float64, n+1)
	for k, f := range freq {
		freqEdges[k] = f - df/2
	}
	freqEdges[n] = freq[n-1] + df/2

	g.edges[i] = edges
	g.centers[i] = centers
	g.freqEdges[i] = freqEdges
	g.freqCenters[i] = freq
}

// Init allocates a zero-filled buffer. It is a no-op on an active grid.
func (g *Grid) Init() {
	if g.chans != nil {
		return
	}
	g.chans = newChannels(ndarray.Size(g.n), g.nProps)
}

// NDimensions returns the number of spatial dimensions.
func (g *Grid) NDimensions() int { return g.nDims }

// NProperties returns the number of property channels.
func (g *Grid) NProperties() int { return g.nProps }

// CenterPoint returns the grid center per axis.
func (g *Grid) CenterPoint() []float64 { return append([]float64(nil), g.center...) }

// SideLength returns the grid extent per axis.
func (g *Grid) SideLength() []float64 { return append([]float64(nil), g.side...) }

// PixelSize returns the cell size per axis.
func (g *Grid) PixelSize() []float64 { return append([]float64(nil), g.pixel...) }

// NPixels returns the cell count per axis.
func (g *Grid) NPixels() []int { return append([]int(nil), g.n...) }

// Shape returns the buffer shape: NPixels followed by NProperties.
func (g *Grid) Shape() []int { return append(g.NPixels(), g.nProps) }

// Axis returns the n_pixels+1 cell edges of axis i in coordinate space.
// Like the other per-axis accessors it panics unless 0 <= i < NDimensions().
func (g *Grid) Axis(i int) []float64 {
	return append([]float64(nil), g.edges[i]...)
}

// AxisCenters returns the cell centers of axis i in coordinate space.
// i must be a valid axis index.
func (g *Grid) AxisCenters(i int) []float64 {
	return append([]float64(nil), g.centers[i]...)
}

// FourierAxis returns the n_pixels+1 frequency bin edges of axis i.
// i must be a valid axis index.
func (g *Grid) FourierAxis(i int) []float64 {
	return append([]float64(nil), g.freqEdges[i]...)
}

// FourierAxisCenters returns the zero-centered frequencies of axis i, in
// cycles per coordinate unit. i must be a valid axis index.
func (g *Grid) FourierAxisCenters(i int) []float64 {
	return append([]float64(nil), g.freqCenters[i]...)
}

// Space reports whether axis i currently holds coordinate or spectral data.
// i must be a valid axis index.
func (g *Grid) Space(i int) Space { return g.space[i] }

// FourierSpace returns one flag per axis, true where the axis is spectral.
func (g *Grid) FourierSpace() []bool {
	out := make([]bool, g.nDims)
	for i, s := range g.space {
		out[i] = s == Spectral
	}
	return out
}

// IsPowerSpectrum reports whether the buffer holds a power spectrum.
func (g *Grid) IsPowerSpectrum() bool { return g.power }

// IsComplex reports whether the buffer may hold non-zero imaginary parts.
func (g *Grid) IsComplex() bool { return g.complexValue }

// NObjects returns the number of catalog objects accumulated so far.
func (g *Grid) NObjects() int { return g.nObjects }

// Active reports whether the buffer has been allocated.
func (g *Grid) Active() bool { return g.chans != nil }

// AxisUnits returns the unit label per dimension.
func (g *Grid) AxisUnits() []string { return append([]string(nil), g.axUnits...) }

// GridUnits returns the unit label per property.
func (g *Grid) GridUnits() []string { return append([]string(nil), g.gridUnits...) }

// FourierAxisUnits returns the unit label per dimension in spectral space.
func (g *Grid) FourierAxisUnits() []string {
	out := make([]string, g.nDims)
	for i, u := range g.axUnits {
		if u != "" {
			out[i] = u + "^-1"
		}
	}
	return out
}

// Channel returns the live buffer of property p in row-major cell order.
// Writes through the returned slice modify the grid.
func (g *Grid) Channel(p int) ([]complex128, error) {
	if g.chans == nil {
		return nil, ErrNotActive
	}
	if p < 0 || p >= g.nProps {
		return nil, fmt.Errorf("%w: %d (grid has %d properties)", ErrInvalidProperty, p, g.nProps)
	}
	return g.chans.slots[p], nil
}

// Values returns a copy of the real part of property p.
func (g *Grid) Values(p int) ([]float64, error) {
	ch, err := g.Channel(p)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(ch))
	for i, v := range ch {
		out[i] = real(v)
	}
	return out, nil
}

// Index returns the row-major cell index of the given pixel coordinate.
func (g *Grid) Index(coord ...int) (int, error) {
	if len(coord) != g.nDims {
		return 0, fmt.Errorf("%w: %d coordinates for %d dimensions", ErrDimensionMismatch, len(coord), g.nDims)
	}
	for i, c := range coord {
		if c < 0 || c >= g.n[i] {
			return 0, fmt.Errorf("%w: pixel %d out of range on axis %d", ErrInvalidArgument, c, i)
		}
	}
	return ndarray.Ravel(coord, ndarray.Strides(g.n)), nil
}

// Copy returns a deep copy restricted to the listed properties, in the given
// order. A nil list copies every property.
func (g *Grid) Copy(properties []int) (*Grid, error) {
	props, err := g.checkProperties(properties)
	if err != nil {
		return nil, err
	}
	out := g.emptyLike(len(props))
	for i, p := range props {
		out.gridUnits[i] = g.gridUnits[p]
	}
	copy(out.space, g.space)
	out.power = g.power
	out.complexValue = g.complexValue
	out.nObjects = g.nObjects
	if g.chans != nil {
		out.chans = g.chans.subset(props)
	}
	return out, nil
}

// CopyAxes returns an inactive grid with the same geometry and axis units,
// nProperties channels and every axis in coordinate space.
func (g *Grid) CopyAxes(nProperties int) (*Grid, error) {
	if nProperties < 0 {
		return nil, fmt.Errorf("%w: %d properties", ErrInvalidArgument, nProperties)
	}
	return g.emptyLike(nProperties), nil
}

func (g *Grid) emptyLike(nProps int) *Grid {
	out := &Grid{
		nDims:     g.nDims,
		nProps:    nProps,
		center:    append([]float64(nil), g.center...),
		side:      append([]float64(nil), g.side...),
		pixel:     append([]float64(nil), g.pixel...),
		n:         append([]int(nil), g.n...),
		space:     make([]Space, g.nDims),
		axUnits:   append([]string(nil), g.axUnits...),
		gridUnits: make([]string, nProps),
		logger:    g.logger,
	}
	out.rebuildAxes()
	return out
}

func (g *Grid) requireActive() error {
	if g.chans == nil {
		return ErrNotActive
	}
	return nil
}

func (g *Grid) requireNotPower(op string) error {
	if g.power {
		return fmt.Errorf("%w: cannot %s", ErrPowerSpectrum, op)
	}
	return nil
}

func (g *Grid) String() string {
	state := "inactive"
	if g.chans != nil {
		state = "active"
	}
	if g.power {
		state += " power spectrum"
	}
	return fmt.Sprintf("Grid(%d-D %v pixels of %v, %d properties, %s)", g.nDims, g.n, g.pixel, g.nProps, state)
}
