// Package spectrum provides power estimates over complex spectral bins.
//
// The package does not implement FFT itself. It operates on coefficients
// produced elsewhere (for example a grid transformed along its spectral axes)
// and reduces them to real auto- or cross-power values using SIMD kernels
// from algo-vecmath where available.
package spectrum
