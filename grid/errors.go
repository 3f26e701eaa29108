package grid

import "errors"

// Errors returned by grid operations. Returned errors wrap one of these with
// the offending axis, shape or property; test with errors.Is.
var (
	// ErrDimensionMismatch reports inputs whose dimensionality disagrees with
	// the grid (positions, per-axis parameters, kernels, cross grids).
	ErrDimensionMismatch = errors.New("grid: dimension mismatch")

	// ErrShapeMismatch reports arrays that cannot be broadcast against the
	// grid buffer.
	ErrShapeMismatch = errors.New("grid: shape mismatch")

	// ErrSpectralSpace reports an operation that needs coordinate space on
	// an axis currently in spectral space.
	ErrSpectralSpace = errors.New("grid: axis is in spectral space")

	// ErrMixedSpace reports averaged axes split between coordinate and
	// spectral space.
	ErrMixedSpace = errors.New("grid: axes are split between coordinate and spectral space")

	// ErrInvalidAxis reports an axis index outside [0, n_dimensions).
	ErrInvalidAxis = errors.New("grid: invalid axis")

	// ErrInvalidProperty reports a property index outside [0, n_properties).
	ErrInvalidProperty = errors.New("grid: invalid property")

	// ErrPowerSpectrum reports an operation that is not allowed once a grid
	// holds a power spectrum.
	ErrPowerSpectrum = errors.New("grid: grid is a power spectrum")

	// ErrNotActive reports an operation that needs a populated buffer.
	ErrNotActive = errors.New("grid: buffer not initialized")

	// ErrArchiveExists reports a save onto an existing path without
	// permission to overwrite.
	ErrArchiveExists = errors.New("grid: archive already exists")

	// ErrInvalidArchive reports an archive that cannot be decoded into a
	// consistent grid.
	ErrInvalidArchive = errors.New("grid: invalid archive")

	// ErrInvalidBins reports unusable radial bin edges or counts.
	ErrInvalidBins = errors.New("grid: invalid bins")

	// ErrNoCells reports a crop range that contains no cell centers.
	ErrNoCells = errors.New("grid: no cells within limits")

	// ErrNonUniformAxis reports axis coordinates that are not evenly spaced.
	ErrNonUniformAxis = errors.New("grid: axis spacing is not uniform")

	// ErrInvalidArgument reports any other unusable argument.
	ErrInvalidArgument = errors.New("grid: invalid argument")
)
