package spectrum

import (
	"errors"
	"sync"

	"github.com/cwbudde/algo-vecmath"
)

// ErrLengthMismatch is returned when paired inputs differ in length.
var ErrLengthMismatch = errors.New("spectrum: length mismatch")

// scratchBuf holds pooled scratch memory for complex-to-real unpacking.
type scratchBuf struct {
	data []float64
}

var scratchPool = sync.Pool{
	New: func() any { return &scratchBuf{} },
}

// getScratch returns k float64 slices of length n backed by one pooled buffer.
func getScratch(n, k int) ([][]float64, *scratchBuf) {
	buf := scratchPool.Get().(*scratchBuf)
	need := k * n
	if cap(buf.data) < need {
		buf.data = make([]float64, need)
	} else {
		buf.data = buf.data[:need]
	}
	parts := make([][]float64, k)
	for i := range parts {
		parts[i] = buf.data[i*n : (i+1)*n]
	}
	return parts, buf
}

func putScratch(buf *scratchBuf) {
	scratchPool.Put(buf)
}

// Power returns |X[k]|^2 for each complex spectrum bin.
//
// Scratch buffers are pooled internally, so in steady state this allocates
// only the output slice.
func Power(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}
	out := make([]float64, len(in))
	PowerInto(out, in)
	return out
}

// PowerInto writes |X[k]|^2 into dst, which must have len(in) elements.
func PowerInto(dst []float64, in []complex128) {
	parts, buf := getScratch(len(in), 2)
	re, im := parts[0], parts[1]
	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}
	vecmath.Power(dst, re, im)
	putScratch(buf)
}

// CrossPower returns Re(A[k] * conj(B[k])) for each pair of bins.
func CrossPower(a, b []complex128) ([]float64, error) {
	if len(a) != len(b) {
		return nil, ErrLengthMismatch
	}
	if len(a) == 0 {
		return nil, nil
	}
	out := make([]float64, len(a))
	CrossPowerInto(out, a, b)
	return out, nil
}

// CrossPowerInto writes Re(A[k] * conj(B[k])) into dst. All slices must have
// the same length.
func CrossPowerInto(dst []float64, a, b []complex128) {
	n := len(a)
	parts, buf := getScratch(n, 5)
	ar, ai, br, bi, tmp := parts[0], parts[1], parts[2], parts[3], parts[4]
	for i := range a {
		ar[i], ai[i] = real(a[i]), imag(a[i])
		br[i], bi[i] = real(b[i]), imag(b[i])
	}

	// Re(a conj(b)) = ar*br + ai*bi
	vecmath.MulBlock(dst, ar, br)
	vecmath.MulBlock(tmp, ai, bi)
	for i := range dst {
		dst[i] += tmp[i]
	}
	putScratch(buf)
}
