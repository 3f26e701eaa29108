package testutil

import (
	"math/rand"
)

// DeterministicNoise generates uniform noise in [-amplitude, amplitude) with a
// fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DeterministicCatalog draws n positions uniformly inside the box
// [lo, hi) in every one of dims dimensions, plus one value per object drawn
// uniformly from [0, 1). The same seed always yields the same catalog.
func DeterministicCatalog(seed int64, n, dims int, lo, hi float64) (positions, values [][]float64) {
	rng := rand.New(rand.NewSource(seed))
	positions = make([][]float64, n)
	values = make([][]float64, n)
	for i := range positions {
		p := make([]float64, dims)
		for d := range p {
			p[d] = lo + rng.Float64()*(hi-lo)
		}
		positions[i] = p
		values[i] = []float64{rng.Float64()}
	}
	return positions, values
}

// Ones returns a slice of length n filled with 1.0.
func Ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}
