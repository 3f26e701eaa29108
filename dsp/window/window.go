package window

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a taper function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeBlackman
	TypeTukey
	TypeKaiser
)

var typeNames = map[Type]string{
	TypeRectangular: "rectangular",
	TypeHann:        "hann",
	TypeBlackman:    "blackman",
	TypeTukey:       "tukey",
	TypeKaiser:      "kaiser",
}

// String returns the lower-case name of t.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Parse returns the Type named s, ignoring case. "none" is an alias for
// rectangular.
func Parse(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "none" || s == "" {
		return TypeRectangular, nil
	}
	for t, name := range typeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Option configures taper generation.
type Option func(*config)

type config struct {
	alpha    float64
	periodic bool
}

// WithAlpha sets the shape parameter: the tapered fraction for Tukey
// (default 0.5) and beta for Kaiser (default 8.6).
func WithAlpha(v float64) Option {
	return func(c *config) {
		c.alpha = v
	}
}

// WithPeriodic selects the periodic form, which drops the last sample of the
// symmetric window of length n+1.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

var (
	hannCoeffs     = []float64{0.5, -0.5}
	blackmanCoeffs = []float64{0.42, -0.5, 0.08}
)

func defaultAlpha(t Type) float64 {
	switch t {
	case TypeTukey:
		return 0.5
	case TypeKaiser:
		return 8.6
	default:
		return 0
	}
}

// Generate returns the coefficients of a length-n taper.
func Generate(t Type, n int, opts ...Option) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, n)
	}
	if _, ok := typeNames[t]; !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownType, t)
	}

	cfg := config{alpha: defaultAlpha(t)}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	switch {
	case t == TypeTukey && (cfg.alpha < 0 || cfg.alpha > 1):
		return nil, fmt.Errorf("%w: tukey alpha must be in [0,1], got %g", ErrInvalidParameter, cfg.alpha)
	case t == TypeKaiser && cfg.alpha < 0:
		return nil, fmt.Errorf("%w: kaiser beta must be >= 0, got %g", ErrInvalidParameter, cfg.alpha)
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = at(t, position(i, n, cfg.periodic), cfg.alpha)
	}
	return out, nil
}

// Apply multiplies buf in place by coeffs.
func Apply(buf, coeffs []float64) error {
	if len(buf) != len(coeffs) {
		return fmt.Errorf("%w: %d samples, %d coefficients", ErrLengthMismatch, len(buf), len(coeffs))
	}
	vecmath.MulBlockInPlace(buf, coeffs)
	return nil
}

// MeanSquare returns the mean of the squared coefficients, the factor by
// which tapering scales the power of white noise.
func MeanSquare(coeffs []float64) float64 {
	if len(coeffs) == 0 {
		return 0
	}
	var sum float64
	for _, c := range coeffs {
		sum += c * c
	}
	return sum / float64(len(coeffs))
}

// position maps sample i of n onto [0, 1].
func position(i, n int, periodic bool) float64 {
	if n == 1 {
		return 0.5
	}
	den := float64(n - 1)
	if periodic {
		den = float64(n)
	}
	return float64(i) / den
}

func at(t Type, x, alpha float64) float64 {
	switch t {
	case TypeHann:
		return cosineSum(x, hannCoeffs)
	case TypeBlackman:
		return cosineSum(x, blackmanCoeffs)
	case TypeTukey:
		return tukeyAt(x, alpha)
	case TypeKaiser:
		return kaiserAt(x, alpha)
	default:
		return 1
	}
}

func cosineSum(x float64, coeffs []float64) float64 {
	var sum float64
	for k, c := range coeffs {
		sum += c * math.Cos(2*math.Pi*float64(k)*x)
	}
	return sum
}

func tukeyAt(x, alpha float64) float64 {
	if alpha == 0 {
		return 1
	}
	edge := math.Min(x, 1-x)
	if edge >= alpha/2 {
		return 1
	}
	return 0.5 * (1 - math.Cos(2*math.Pi*edge/alpha))
}

func kaiserAt(x, beta float64) float64 {
	r := 2*x - 1
	return besselI0(beta*math.Sqrt(math.Max(0, 1-r*r))) / besselI0(beta)
}

// besselI0 sums the power series of the modified Bessel function I0 until
// the terms stop contributing.
func besselI0(x float64) float64 {
	q := x * x / 4
	sum, term := 1.0, 1.0
	for k := 1; k < 500; k++ {
		term *= q / float64(k*k)
		sum += term
		if term < sum*1e-17 {
			break
		}
	}
	return sum
}
