// Package window generates the one-dimensional tapers used to apodize grid
// edges before spectral analysis.
//
// A taper multiplies the field, so it also scales its power. MeanSquare
// returns that scale for a single axis; separable tapers multiply the
// per-axis factors.
package window
