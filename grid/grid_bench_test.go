package grid

import (
	"fmt"
	"testing"

	"github.com/cwbudde/algo-simgrid/internal/testutil"
)

func BenchmarkAdd(b *testing.B) {
	for _, n := range []int{1000, 100000} {
		positions, values := testutil.DeterministicCatalog(1, n, 3, -32, 32)
		b.Run(fmt.Sprintf("objects=%d", n), func(b *testing.B) {
			g, err := NewGrid(1, []float64{0, 0, 0}, []float64{64}, []float64{1}, quietLogger())
			if err != nil {
				b.Fatalf("NewGrid: %v", err)
			}
			g.Init()
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = g.Add(positions, values)
			}
		})
	}
}

func benchGrid(b *testing.B, side float64) *Grid {
	b.Helper()
	positions, values := testutil.DeterministicCatalog(2, 20000, 3, -side/2, side/2)
	g, err := FromCatalog(positions, values, CatalogGeometry{
		Center:     []float64{0, 0, 0},
		SideLength: []float64{side},
	}, quietLogger())
	if err != nil {
		b.Fatalf("FromCatalog: %v", err)
	}
	return g
}

// Benchmark power spectra of cubes with power-of-two and mixed-radix sides.
func BenchmarkPowerSpectrum(b *testing.B) {
	for _, side := range []float64{32, 48, 64} {
		g := benchGrid(b, side)
		b.Run(fmt.Sprintf("side=%g", side), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, _ = g.PowerSpectrum(PowerOptions{})
			}
		})
	}
}

func BenchmarkSphericalAverage(b *testing.B) {
	g := benchGrid(b, 64)
	ps, err := g.PowerSpectrum(PowerOptions{})
	if err != nil {
		b.Fatalf("PowerSpectrum: %v", err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ps.SphericalAverage(AverageOptions{NBins: 20, BinMode: BinLog, ReturnStd: true})
	}
}

func BenchmarkConvolveGaussian(b *testing.B) {
	g := benchGrid(b, 32)
	beam, err := GaussianPSF([]float64{3, 3, 3}, []float64{1}, PSFConfig{}, quietLogger())
	if err != nil {
		b.Fatalf("GaussianPSF: %v", err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = g.Convolve(beam, ConvolveOptions{Pad: []int{9}, Copy: true})
	}
}
