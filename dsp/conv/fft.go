package conv

import (
	"fmt"

	"github.com/cwbudde/algo-simgrid/internal/fftnd"
	"github.com/cwbudde/algo-simgrid/internal/ndarray"
)

// FFT performs linear convolution of a with kernel along axes using FFT
// multiplication. Shapes follow the same rules as [Direct].
//
// Convolved axes are zero-padded to the next power of two of n+m-1, so the
// transient working set is two complex buffers of that padded size.
func FFT(a, kernel Array, axes []int, mode Mode) (Array, error) {
	g, err := newGeometry(a, kernel, axes, mode)
	if err != nil {
		return Array{}, err
	}
	rank := len(a.Shape)

	fftShape := make([]int, rank)
	for d := 0; d < rank; d++ {
		if g.conv[d] {
			fftShape[d] = fftnd.NextPowerOf2(g.full[d])
		} else {
			fftShape[d] = a.Shape[d]
		}
	}
	size := ndarray.Size(fftShape)
	strides := ndarray.Strides(fftShape)

	signal := make([]complex128, size)
	coord := make([]int, rank)
	for i, v := range a.Data {
		ndarray.Unravel(i, a.Shape, coord)
		signal[ndarray.Ravel(coord, strides)] = complex(v, 0)
	}

	// The kernel is replicated along non-convolved axes where it broadcasts.
	region := make([]int, rank)
	kStrides := ndarray.Strides(kernel.Shape)
	kCoord := make([]int, rank)
	for d := 0; d < rank; d++ {
		if g.conv[d] {
			region[d] = kernel.Shape[d]
		} else {
			region[d] = a.Shape[d]
		}
	}
	kern := make([]complex128, size)
	for i := range coord {
		coord[i] = 0
	}
	for {
		for d := 0; d < rank; d++ {
			if kernel.Shape[d] == 1 {
				kCoord[d] = 0
			} else {
				kCoord[d] = coord[d]
			}
		}
		kern[ndarray.Ravel(coord, strides)] = complex(kernel.Data[ndarray.Ravel(kCoord, kStrides)], 0)
		if !ndarray.Next(coord, region) {
			break
		}
	}

	tr := fftnd.New()
	for d := 0; d < rank; d++ {
		if !g.conv[d] {
			continue
		}
		if err := tr.Axis(signal, fftShape, d, fftnd.Forward); err != nil {
			return Array{}, fmt.Errorf("conv: forward FFT failed: %w", err)
		}
		if err := tr.Axis(kern, fftShape, d, fftnd.Forward); err != nil {
			return Array{}, fmt.Errorf("conv: forward FFT failed: %w", err)
		}
	}

	for i := range signal {
		signal[i] *= kern[i]
	}

	for d := 0; d < rank; d++ {
		if !g.conv[d] {
			continue
		}
		if err := tr.Axis(signal, fftShape, d, fftnd.Inverse); err != nil {
			return Array{}, fmt.Errorf("conv: inverse FFT failed: %w", err)
		}
	}

	out := NewArray(g.out...)
	for i := range coord {
		coord[i] = 0
	}
	src := make([]int, rank)
	for i := range out.Data {
		ndarray.Unravel(i, g.out, coord)
		for d := 0; d < rank; d++ {
			src[d] = coord[d] + g.start[d]
		}
		out.Data[i] = real(signal[ndarray.Ravel(src, strides)])
	}
	return out, nil
}
