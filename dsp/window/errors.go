package window

import "errors"

var (
	// ErrInvalidLength is returned for non-positive taper lengths.
	ErrInvalidLength = errors.New("window: length must be positive")
	// ErrUnknownType is returned for unsupported taper types.
	ErrUnknownType = errors.New("window: unknown type")
	// ErrInvalidParameter is returned for out-of-range shape parameters.
	ErrInvalidParameter = errors.New("window: invalid parameter")
	// ErrLengthMismatch is returned when samples and coefficients differ in length.
	ErrLengthMismatch = errors.New("window: length mismatch")
)
