package grid

import (
	"bytes"
	"errors"
	"log"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cwbudde/algo-simgrid/internal/testutil"
)

func TestConvolvePointSource(t *testing.T) {
	g := mustGrid(t, 1, []float64{0}, []float64{5}, []float64{1})
	if err := g.Add([][]float64{{0}}, [][]float64{{1}}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	kernel := KernelArray{Shape: []int{3}, Pixel: []float64{1}, Channels: [][]float64{{0.25, 0.5, 0.25}}}

	out, err := g.Convolve(kernel, ConvolveOptions{})
	if err != nil {
		t.Fatalf("Convolve: %v", err)
	}
	if out != g {
		t.Fatal("default convolution should be in place")
	}
	got, _ := g.Values(0)
	testutil.RequireSliceNearlyEqual(t, got, []float64{0, 0.25, 0.5, 0.25, 0}, 1e-15)
}

func TestConvolveIdentityKernel(t *testing.T) {
	g := filledGrid(t, 2, []float64{0, 0, 0}, []float64{4, 5, 3}, []float64{1})
	orig, _ := g.Copy(nil)

	if _, err := g.Convolve(KernelArray{Shape: []int{1, 1}, Channels: [][]float64{{1}}}, ConvolveOptions{Pad: []int{2}}); err != nil {
		t.Fatalf("Convolve: %v", err)
	}
	requireSameGrid(t, orig, g)
}

func TestConvolveGaussianConservesSum(t *testing.T) {
	g := mustGrid(t, 1, []float64{0, 0}, []float64{16}, []float64{1})
	if err := g.Add([][]float64{{0.5, 0.5}, {-1.5, 0.5}}, [][]float64{{1}, {2}}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	beam, err := GaussianPSF([]float64{2, 2}, []float64{1}, PSFConfig{}, quietLogger())
	if err != nil {
		t.Fatalf("GaussianPSF: %v", err)
	}

	copied, err := g.Convolve(beam, ConvolveOptions{Pad: []int{6}, Copy: true})
	if err != nil {
		t.Fatalf("Convolve: %v", err)
	}
	if diff := cmp.Diff([]int{16, 16}, copied.NPixels()); diff != "" {
		t.Fatalf("padding not removed (-want +got):\n%s", diff)
	}

	got, _ := copied.Values(0)
	var sum float64
	for _, v := range got {
		sum += v
	}
	if math.Abs(sum-3) > 1e-9 {
		t.Fatalf("sum after convolution = %v, want 3", sum)
	}

	orig, _ := g.Values(0)
	var peak float64
	for _, v := range orig {
		peak = math.Max(peak, v)
	}
	if peak != 2 {
		t.Fatalf("copy mode modified the source grid, peak = %v", peak)
	}
}

func TestConvolvePerPropertyKernel(t *testing.T) {
	g := mustGrid(t, 2, []float64{0}, []float64{3}, []float64{1})
	if err := g.Add([][]float64{{0}}, [][]float64{{1, 1}}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	kernel := KernelArray{
		Shape:    []int{3},
		Channels: [][]float64{{1, 0, 0}, {0, 0, 1}},
	}
	if _, err := g.Convolve(kernel, ConvolveOptions{}); err != nil {
		t.Fatalf("Convolve: %v", err)
	}
	p0, _ := g.Values(0)
	p1, _ := g.Values(1)
	testutil.RequireSliceNearlyEqual(t, p0, []float64{1, 0, 0}, 1e-15)
	testutil.RequireSliceNearlyEqual(t, p1, []float64{0, 0, 1}, 1e-15)
}

func TestConvolveComplexGrid(t *testing.T) {
	g := filledGrid(t, 1, []float64{0, 0}, []float64{5, 4}, []float64{1})
	if err := g.Transform([]int{1}, true); err != nil {
		t.Fatalf("Transform: %v", err)
	}
	before, _ := g.Channel(0)
	before = append([]complex128(nil), before...)

	box := KernelArray{Shape: []int{3, 1}, Channels: [][]float64{{1, 1, 1}}}
	if _, err := g.Convolve(box, ConvolveOptions{Axes: []int{0}}); err != nil {
		t.Fatalf("Convolve: %v", err)
	}

	want := make([]complex128, len(before))
	for i := 0; i < 5; i++ {
		for j := 0; j < 4; j++ {
			for di := -1; di <= 1; di++ {
				if k := i + di; k >= 0 && k < 5 {
					want[i*4+j] += before[k*4+j]
				}
			}
		}
	}
	got, _ := g.Channel(0)
	testutil.RequireComplexNearlyEqual(t, got, want, 1e-12)
}

func TestConvolveWarnsOnPixelMismatch(t *testing.T) {
	var buf bytes.Buffer
	g, err := NewGrid(1, []float64{0}, []float64{4}, []float64{1}, WithLogger(log.New(&buf, "", 0)))
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	g.Init()
	kernel := KernelArray{Shape: []int{1}, Pixel: []float64{0.5}, Channels: [][]float64{{1}}}
	if _, err := g.Convolve(kernel, ConvolveOptions{}); err != nil {
		t.Fatalf("Convolve: %v", err)
	}
	if !strings.Contains(buf.String(), "kernel pixel sizes") {
		t.Fatalf("expected pixel size warning, got %q", buf.String())
	}
}

func TestConvolveErrors(t *testing.T) {
	g := filledGrid(t, 2, []float64{0, 0}, []float64{4}, []float64{1})
	spectral := filledGrid(t, 1, []float64{0, 0}, []float64{4}, []float64{1})
	if err := spectral.Transform([]int{0}, true); err != nil {
		t.Fatalf("Transform: %v", err)
	}
	unit := KernelArray{Shape: []int{1}, Channels: [][]float64{{1}}}

	tests := []struct {
		name   string
		grid   *Grid
		kernel Kernel
		opts   ConvolveOptions
		want   error
	}{
		{"nil kernel", g, nil, ConvolveOptions{}, ErrInvalidArgument},
		{"kernel dimensions", g, KernelArray{Shape: []int{1, 1, 1}, Channels: [][]float64{{1}}}, ConvolveOptions{}, ErrDimensionMismatch},
		{"kernel properties", g, KernelArray{Shape: []int{1}, Channels: [][]float64{{1}, {1}, {1}}}, ConvolveOptions{}, ErrShapeMismatch},
		{"kernel length", g, KernelArray{Shape: []int{2}, Channels: [][]float64{{1}}}, ConvolveOptions{}, ErrShapeMismatch},
		{"unconvolved extent", g, KernelArray{Shape: []int{1, 3}, Channels: [][]float64{{1, 1, 1}}}, ConvolveOptions{Axes: []int{0}}, ErrShapeMismatch},
		{"spectral axis", spectral, unit, ConvolveOptions{}, ErrSpectralSpace},
		{"pad count", g, unit, ConvolveOptions{Axes: []int{0, 1}, Pad: []int{1, 2, 3}}, ErrDimensionMismatch},
		{"negative pad", g, unit, ConvolveOptions{Pad: []int{-1}}, ErrInvalidArgument},
		{"axis", g, unit, ConvolveOptions{Axes: []int{4}}, ErrInvalidAxis},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.grid.Convolve(tt.kernel, tt.opts); !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if diff := cmp.Diff([]int{4, 4}, tt.grid.NPixels()); diff != "" {
				t.Fatalf("failed convolution changed the grid (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGridAsKernel(t *testing.T) {
	g := filledGrid(t, 1, []float64{0, 0}, []float64{6}, []float64{1})
	kernel, err := FromAxes(Pointwise(func(x []float64) float64 {
		if x[0] == 0 && x[1] == 0 {
			return 1
		}
		return 0
	}), [][]float64{{-1, 0, 1}, {-1, 0, 1}}, quietLogger())
	if err != nil {
		t.Fatalf("FromAxes: %v", err)
	}
	orig, _ := g.Copy(nil)
	if _, err := g.Convolve(kernel, ConvolveOptions{}); err != nil {
		t.Fatalf("Convolve: %v", err)
	}
	got, _ := g.Channel(0)
	want, _ := orig.Channel(0)
	testutil.RequireComplexNearlyEqual(t, got, want, 1e-15)
}

func TestKernelArrayAccessors(t *testing.T) {
	k := KernelArray{
		Shape:    []int{2, 3},
		Pixel:    []float64{0.5, 1},
		Channels: [][]float64{{1, 2, 3, 4, 5, 6}, {0, 0, 0, 0, 0, 1}},
	}
	if k.NDimensions() != 2 || k.NProperties() != 2 {
		t.Fatalf("NDimensions %d NProperties %d, want 2 2", k.NDimensions(), k.NProperties())
	}

	shape := k.NPixels()
	shape[0] = 9
	if diff := cmp.Diff([]int{2, 3}, k.NPixels()); diff != "" {
		t.Fatalf("NPixels not a copy (-want +got):\n%s", diff)
	}
	pixel := k.PixelSize()
	pixel[0] = 9
	if diff := cmp.Diff([]float64{0.5, 1}, k.PixelSize()); diff != "" {
		t.Fatalf("PixelSize not a copy (-want +got):\n%s", diff)
	}
	if (KernelArray{Shape: []int{1}}).PixelSize() != nil {
		t.Fatalf("PixelSize of unknown pixel is not nil")
	}

	v, err := k.Values(1)
	if err != nil {
		t.Fatalf("Values: %v", err)
	}
	if diff := cmp.Diff([]float64{0, 0, 0, 0, 0, 1}, v); diff != "" {
		t.Fatalf("Values mismatch (-want +got):\n%s", diff)
	}
	for _, p := range []int{-1, 2} {
		if _, err := k.Values(p); !errors.Is(err, ErrInvalidProperty) {
			t.Fatalf("Values(%d) error = %v, want %v", p, err, ErrInvalidProperty)
		}
	}
}
