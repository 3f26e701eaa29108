package grid

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-simgrid/dsp/conv"
	"github.com/cwbudde/algo-simgrid/internal/ndarray"
)

// Kernel is a real-valued convolution kernel such as a point-spread
// function. *Grid implements Kernel.
type Kernel interface {
	NDimensions() int
	NProperties() int
	NPixels() []int
	PixelSize() []float64
	Values(property int) ([]float64, error)
}

// KernelArray is a Kernel backed by plain slices.
type KernelArray struct {
	// Shape is the kernel extent per dimension.
	Shape []int
	// Pixel is the cell size per dimension; nil means unknown.
	Pixel []float64
	// Channels holds one row-major array per property.
	Channels [][]float64
}

// NDimensions returns the number of kernel axes.
func (k KernelArray) NDimensions() int { return len(k.Shape) }

// NProperties returns the number of kernel channels.
func (k KernelArray) NProperties() int { return len(k.Channels) }

// NPixels returns a copy of the kernel shape.
func (k KernelArray) NPixels() []int { return append([]int(nil), k.Shape...) }

// PixelSize returns a copy of the kernel cell sizes, nil when unknown.
func (k KernelArray) PixelSize() []float64 { return append([]float64(nil), k.Pixel...) }

// Values returns channel p without copying it.
func (k KernelArray) Values(p int) ([]float64, error) {
	if p < 0 || p >= len(k.Channels) {
		return nil, fmt.Errorf("%w: kernel property %d", ErrInvalidProperty, p)
	}
	return k.Channels[p], nil
}

// ConvolveOptions configures Convolve. The zero value convolves in place
// along the leading kernel dimensions without padding.
type ConvolveOptions struct {
	// Axes lists the grid axes convolved with the kernel. Nil selects the
	// first kernel.NDimensions() axes.
	Axes []int

	// Pad holds cells of zero padding added to each side of every convolved
	// axis before convolving and removed afterwards, one value per axis or
	// a single value for all of them.
	Pad []int

	// Copy convolves a copy and leaves the grid unchanged.
	Copy bool
}

// Convolve convolves each property channel with the kernel along the
// requested axes, keeping the grid shape ("same" mode).
//
// A kernel with fewer dimensions than the grid gains trailing extent-1
// axes. Along axes that are not convolved, a kernel axis of extent 1 is
// broadcast and an axis matching the grid extent is applied element-wise.
// The kernel needs one property or exactly as many as the grid. A kernel
// sampled at a different pixel size is used as is and a warning is logged.
func (g *Grid) Convolve(kernel Kernel, opts ConvolveOptions) (*Grid, error) {
	if err := g.requireActive(); err != nil {
		return nil, err
	}
	if err := g.requireNotPower("convolve"); err != nil {
		return nil, err
	}
	if kernel == nil {
		return nil, fmt.Errorf("%w: nil kernel", ErrInvalidArgument)
	}
	kDims := kernel.NDimensions()
	if kDims == 0 || kDims > g.nDims {
		return nil, fmt.Errorf("%w: kernel has %d dimensions, grid has %d", ErrDimensionMismatch, kDims, g.nDims)
	}
	kProps := kernel.NProperties()
	if kProps != 1 && kProps != g.nProps {
		return nil, fmt.Errorf("%w: kernel has %d properties, grid has %d", ErrShapeMismatch, kProps, g.nProps)
	}

	axes := opts.Axes
	if axes == nil {
		axes = make([]int, kDims)
		for i := range axes {
			axes[i] = i
		}
	}
	axes, err := g.checkAxes(axes)
	if err != nil {
		return nil, err
	}
	if err := g.requireSpace(axes, Coordinate); err != nil {
		return nil, err
	}

	pad := opts.Pad
	switch {
	case len(pad) == 0:
		pad = make([]int, len(axes))
	case len(pad) == 1 && len(axes) != 1:
		v := pad[0]
		pad = make([]int, len(axes))
		for i := range pad {
			pad[i] = v
		}
	case len(pad) != len(axes):
		return nil, fmt.Errorf("%w: %d pad amounts for %d axes", ErrDimensionMismatch, len(pad), len(axes))
	}
	for _, p := range pad {
		if p < 0 {
			return nil, fmt.Errorf("%w: negative padding %d", ErrInvalidArgument, p)
		}
	}

	kShape := make([]int, g.nDims)
	copy(kShape, kernel.NPixels())
	for d := kDims; d < g.nDims; d++ {
		kShape[d] = 1
	}
	convolved := make([]bool, g.nDims)
	for _, ax := range axes {
		convolved[ax] = true
	}
	for d := 0; d < g.nDims; d++ {
		if !convolved[d] && kShape[d] != 1 && kShape[d] != g.n[d] {
			return nil, fmt.Errorf("%w: kernel extent %d on unconvolved axis %d with %d cells", ErrShapeMismatch, kShape[d], d, g.n[d])
		}
	}

	kValues := make([][]float64, kProps)
	for p := range kValues {
		if kValues[p], err = kernel.Values(p); err != nil {
			return nil, fmt.Errorf("grid: kernel values: %w", err)
		}
		if len(kValues[p]) != ndarray.Size(kShape) {
			return nil, fmt.Errorf("%w: kernel property %d has %d values for shape %v", ErrShapeMismatch, p, len(kValues[p]), kShape)
		}
	}
	if kg, ok := kernel.(*Grid); ok {
		if err := kg.requireSpace(kg.allAxes(), Coordinate); err != nil {
			return nil, fmt.Errorf("grid: kernel: %w", err)
		}
	}

	kPixel := kernel.PixelSize()
	for d := 0; d < kDims && d < len(kPixel); d++ {
		if convolved[d] && math.Abs(kPixel[d]-g.pixel[d]) > 1e-6*g.pixel[d] {
			g.logger.Printf("grid: kernel pixel sizes %v differ from grid pixel sizes %v", kPixel, g.pixel)
			break
		}
	}

	target := g
	if opts.Copy {
		if target, err = g.Copy(nil); err != nil {
			return nil, err
		}
	}
	if err := target.Pad(axes, pad); err != nil {
		return nil, err
	}

	if err := target.convolveChannels(kValues, kShape, axes); err != nil {
		return nil, err
	}

	unpad := make([]int, len(pad))
	for i, p := range pad {
		unpad[i] = -p
	}
	if err := target.Pad(axes, unpad); err != nil {
		return nil, err
	}
	return target, nil
}

func (g *Grid) convolveChannels(kValues [][]float64, kShape, axes []int) error {
	cells := g.chans.cells
	re := make([]float64, cells)
	var im []float64
	if g.complexValue {
		im = make([]float64, cells)
	}

	for p, slot := range g.chans.slots {
		kernel := conv.Array{Data: kValues[0], Shape: kShape}
		if len(kValues) > 1 {
			kernel.Data = kValues[p]
		}

		for i, v := range slot {
			re[i] = real(v)
			if im != nil {
				im[i] = imag(v)
			}
		}
		outRe, err := conv.Convolve(conv.Array{Data: re, Shape: g.n}, kernel, axes, conv.ModeSame)
		if err != nil {
			return fmt.Errorf("grid: convolve property %d: %w", p, err)
		}
		if im == nil {
			for i, v := range outRe.Data {
				slot[i] = complex(v, 0)
			}
			continue
		}
		outIm, err := conv.Convolve(conv.Array{Data: im, Shape: g.n}, kernel, axes, conv.ModeSame)
		if err != nil {
			return fmt.Errorf("grid: convolve property %d: %w", p, err)
		}
		for i := range slot {
			slot[i] = complex(outRe.Data[i], outIm.Data[i])
		}
	}
	return nil
}
