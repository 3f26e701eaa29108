// Package ndarray provides shape and stride arithmetic for dense row-major
// N-dimensional buffers stored as flat slices.
package ndarray

// Size returns the number of elements described by shape.
// An empty shape describes a scalar and has size 1.
func Size(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}

// Strides returns row-major element strides for shape.
func Strides(shape []int) []int {
	strides := make([]int, len(shape))
	step := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = step
		step *= shape[i]
	}
	return strides
}

// Unravel writes the multi-index of flat offset idx into coord.
// coord must have len(shape) elements.
func Unravel(idx int, shape, coord []int) {
	for i := len(shape) - 1; i >= 0; i-- {
		coord[i] = idx % shape[i]
		idx /= shape[i]
	}
}

// Ravel returns the flat offset of coord using strides.
func Ravel(coord, strides []int) int {
	off := 0
	for i, c := range coord {
		off += c * strides[i]
	}
	return off
}

// Lines calls fn once for every 1-D line running along axis. offset is the
// flat position of the first element and stride the distance between
// consecutive elements of the line; the line has shape[axis] elements.
func Lines(shape []int, axis int, fn func(offset, stride int)) {
	n := shape[axis]
	inner := 1
	for _, s := range shape[axis+1:] {
		inner *= s
	}
	outer := 1
	for _, s := range shape[:axis] {
		outer *= s
	}
	for o := 0; o < outer; o++ {
		base := o * n * inner
		for i := 0; i < inner; i++ {
			fn(base+i, inner)
		}
	}
}

// Next advances coord to the next row-major multi-index within shape and
// reports false once every index has been visited.
func Next(coord, shape []int) bool {
	for i := len(shape) - 1; i >= 0; i-- {
		coord[i]++
		if coord[i] < shape[i] {
			return true
		}
		coord[i] = 0
	}
	return false
}

// Equal reports whether two shapes are identical.
func Equal(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Resize copies the region shared by src (shape srcShape) and dst (shape
// dstShape) where the source is offset by srcStart and the destination by
// dstStart along every axis. Cells of dst outside the copied region are left
// untouched. The copied extent along axis i is count[i].
func Resize[T any](dst []T, dstShape, dstStart []int, src []T, srcShape, srcStart, count []int) {
	if Size(count) == 0 {
		return
	}
	dStrides := Strides(dstShape)
	sStrides := Strides(srcShape)
	coord := make([]int, len(count))
	last := len(count) - 1
	run := count[last]
	for {
		d, s := 0, 0
		for i := 0; i < last; i++ {
			d += (coord[i] + dstStart[i]) * dStrides[i]
			s += (coord[i] + srcStart[i]) * sStrides[i]
		}
		d += dstStart[last] * dStrides[last]
		s += srcStart[last] * sStrides[last]
		copy(dst[d:d+run], src[s:s+run])
		if !Next(coord[:last], count[:last]) {
			return
		}
	}
}
