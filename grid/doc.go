// Package grid bins point catalogs onto regular N-dimensional grids and
// analyses them in coordinate and spectral (Fourier) space.
//
// A [Grid] holds its geometry (center, side length and pixel size per axis),
// a per-axis [Space] flag, and a buffer of shape
// (n_pixels[0], ..., n_pixels[d-1], n_properties) stored as one slot per
// property channel.
//
// # Typical flow
//
//	g, err := grid.FromCatalog(positions, values, grid.CatalogGeometry{PixelSize: []float64{2}})
//	beam, err := grid.GaussianPSF([]float64{4, 4, 4}, []float64{2}, grid.PSFConfig{})
//	_, err = g.Convolve(beam, grid.ConvolveOptions{Pad: []int{6}})
//	ps, err := g.PowerSpectrum(grid.PowerOptions{})
//	binned, err := ps.SphericalAverage(grid.AverageOptions{NBins: 12, ReturnCount: true})
//	err = ps.Save("ps.grid", grid.SaveOptions{Compress: true})
//
// # Space tracking
//
// [Grid.Transform] toggles each requested axis between coordinate and
// spectral space. Accumulation and cropping require coordinate space,
// spherical averages require all averaged axes to share a space, and
// [Grid.PowerSpectrum] transforms whatever it needs and restores the input
// afterwards. A power spectrum is terminal: it can be averaged, padded,
// copied and saved, but never transformed, convolved or accumulated into.
//
// # Concurrency and memory
//
// A Grid is not safe for concurrent mutation. Independent grids may be
// processed in parallel (see package pipeline). Buffers are complex128, so a
// grid needs 16 bytes per cell and property; convolution transiently holds
// roughly two to three times the padded buffer.
package grid
