// Package conv provides N-dimensional linear convolution of real arrays
// along a chosen subset of axes.
//
// The package offers two strategies:
//
//   - Direct convolution: O(N*M) summation, best for small kernels (<= 64 cells)
//   - FFT convolution: zero-padded FFT multiplication, efficient for larger kernels
//
// # Usage
//
//	out, err := conv.Convolve(signal, kernel, nil, conv.ModeSame) // Auto-selects algorithm
//	out, err := conv.Direct(signal, kernel, []int{0}, conv.ModeFull)
//	out, err := conv.FFT(signal, kernel, []int{0, 1}, conv.ModeValid)
//
// Inputs and kernels always share a rank. Along axes that are not convolved,
// a kernel extent of 1 broadcasts the kernel across the input, while an
// extent equal to the input's pairs kernel and input slices element-wise.
//
// # Output modes
//
// [ModeFull] keeps n+m-1 cells per convolved axis, [ModeSame] keeps n cells
// starting at (m-1)/2, and [ModeValid] keeps only full-overlap cells.
package conv
