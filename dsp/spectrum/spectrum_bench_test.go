package spectrum

import "testing"

func BenchmarkPowerInto(b *testing.B) {
	sizes := []struct {
		name string
		size int
	}{
		{"1K", 1024},
		{"32K", 32768},
		{"1M", 1 << 20},
	}

	for _, testCase := range sizes {
		b.Run(testCase.name, func(b *testing.B) {
			in := make([]complex128, testCase.size)
			for i := range in {
				in[i] = complex(float64(i)/10.0, float64(testCase.size-i)/10.0)
			}
			dst := make([]float64, testCase.size)

			b.SetBytes(int64(testCase.size * 16))
			b.ResetTimer()

			for range b.N {
				PowerInto(dst, in)
			}
		})
	}
}

func BenchmarkCrossPowerInto(b *testing.B) {
	sizes := []struct {
		name string
		size int
	}{
		{"1K", 1024},
		{"32K", 32768},
		{"1M", 1 << 20},
	}

	for _, testCase := range sizes {
		b.Run(testCase.name, func(b *testing.B) {
			x := make([]complex128, testCase.size)
			y := make([]complex128, testCase.size)
			for i := range x {
				x[i] = complex(float64(i)/10.0, 1)
				y[i] = complex(1, float64(testCase.size-i)/10.0)
			}
			dst := make([]float64, testCase.size)

			b.SetBytes(int64(testCase.size * 32))
			b.ResetTimer()

			for range b.N {
				CrossPowerInto(dst, x, y)
			}
		})
	}
}
