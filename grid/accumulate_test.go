package grid

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/cwbudde/algo-simgrid/internal/testutil"
)

func TestAddHalfOpenBounds(t *testing.T) {
	g := mustGrid(t, 1, []float64{0}, []float64{10}, []float64{1})

	positions := [][]float64{{-4.9}, {0.1}, {4.99}, {5.0}, {-5.0}, {-5.01}, {math.NaN()}}
	values := [][]float64{{1}, {1}, {1}, {1}, {1}, {1}, {1}}
	if err := g.Add(positions, values); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, _ := g.Values(0)
	want := []float64{2, 0, 0, 0, 0, 1, 0, 0, 0, 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("buffer mismatch (-want +got):\n%s", diff)
	}
	if g.NObjects() != 4 {
		t.Fatalf("NObjects = %d, want 4", g.NObjects())
	}
}

func TestAddConservesInRangeSum(t *testing.T) {
	g := mustGrid(t, 2, []float64{0, 0, 0}, []float64{8}, []float64{1})
	positions, vals := testutil.DeterministicCatalog(7, 500, 3, -6, 6)
	values := make([][]float64, len(vals))
	for i, v := range vals {
		values[i] = []float64{v[0], 2 * v[0]}
	}
	if err := g.Add(positions, values); err != nil {
		t.Fatalf("Add: %v", err)
	}

	var want float64
	var inside int
	for i, pos := range positions {
		in := true
		for _, x := range pos {
			if x < -4 || x >= 4 {
				in = false
			}
		}
		if in {
			want += values[i][0]
			inside++
		}
	}

	for p, scale := range []float64{1, 2} {
		got, _ := g.Values(p)
		var sum float64
		for _, v := range got {
			sum += v
		}
		if math.Abs(sum-scale*want) > 1e-9 {
			t.Errorf("property %d: sum %v, want %v", p, sum, scale*want)
		}
	}
	if g.NObjects() != inside {
		t.Fatalf("NObjects = %d, want %d", g.NObjects(), inside)
	}
}

func TestAddCounts(t *testing.T) {
	g := mustGrid(t, 1, []float64{0, 0}, []float64{2}, []float64{1})
	if err := g.Add([][]float64{{-0.5, -0.5}, {-0.5, -0.5}, {0.5, -0.5}}, nil); err != nil {
		t.Fatalf("Add: %v", err)
	}
	got, _ := g.Values(0)
	if diff := cmp.Diff([]float64{2, 0, 1, 0}, got); diff != "" {
		t.Fatalf("counts mismatch (-want +got):\n%s", diff)
	}

	multi := mustGrid(t, 2, []float64{0}, []float64{2}, []float64{1})
	if err := multi.Add([][]float64{{0}}, nil); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("error = %v, want %v", err, ErrShapeMismatch)
	}
}

func TestAddChannels(t *testing.T) {
	g := mustGrid(t, 1, []float64{0}, []float64{4}, []float64{1}, WithGridUnits("K"))
	if err := g.Add([][]float64{{-1.5}}, [][]float64{{3}}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := g.AddChannels([][]float64{{0.5}, {1.5}}, [][]float64{{1, 10}, {2, 20}}); err != nil {
		t.Fatalf("AddChannels: %v", err)
	}
	if g.NProperties() != 3 {
		t.Fatalf("NProperties = %d, want 3", g.NProperties())
	}
	if diff := cmp.Diff([]string{"K", "", ""}, g.GridUnits()); diff != "" {
		t.Fatalf("units mismatch (-want +got):\n%s", diff)
	}

	want := [][]float64{
		{3, 0, 0, 0},
		{0, 0, 1, 2},
		{0, 0, 10, 20},
	}
	for p, w := range want {
		got, _ := g.Values(p)
		if diff := cmp.Diff(w, got); diff != "" {
			t.Errorf("property %d mismatch (-want +got):\n%s", p, diff)
		}
	}

	if err := g.AddChannels([][]float64{{0}}, [][]float64{}); err != nil {
		t.Fatalf("empty AddChannels: %v", err)
	}
	if g.NProperties() != 3 {
		t.Fatalf("empty AddChannels changed NProperties to %d", g.NProperties())
	}
}

func TestAddErrors(t *testing.T) {
	g := mustGrid(t, 1, []float64{0, 0}, []float64{4}, []float64{1})

	if err := g.Add([][]float64{{0}}, [][]float64{{1}}); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("error = %v, want %v", err, ErrDimensionMismatch)
	}
	if err := g.Add([][]float64{{0, 0}}, [][]float64{{1, 2}}); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("error = %v, want %v", err, ErrShapeMismatch)
	}
	if err := g.Add([][]float64{{0, 0}}, [][]float64{{1}, {2}}); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("error = %v, want %v", err, ErrShapeMismatch)
	}

	g.Init()
	if err := g.Transform([]int{1}, true); err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if err := g.Add([][]float64{{0, 0}}, [][]float64{{1}}); !errors.Is(err, ErrSpectralSpace) {
		t.Fatalf("error = %v, want %v", err, ErrSpectralSpace)
	}
}

func TestFromCatalog(t *testing.T) {
	positions := [][]float64{{0, 5}, {10, 5}, {4, 5}}
	values := [][]float64{{1}, {2}, {3}}

	g, err := FromCatalog(positions, values, CatalogGeometry{PixelSize: []float64{1}}, quietLogger())
	if err != nil {
		t.Fatalf("FromCatalog: %v", err)
	}
	if diff := cmp.Diff([]float64{5, 5}, g.CenterPoint(), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatalf("center mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{11, 1}, g.NPixels()); diff != "" {
		t.Fatalf("NPixels mismatch (-want +got):\n%s", diff)
	}
	if g.NObjects() != 3 {
		t.Fatalf("NObjects = %d, want all 3 objects", g.NObjects())
	}
	got, _ := g.Values(0)
	var sum float64
	for _, v := range got {
		sum += v
	}
	if sum != 6 {
		t.Fatalf("sum = %v, want 6", sum)
	}
}

func TestFromCatalogEmpty(t *testing.T) {
	if _, err := FromCatalog(nil, nil, CatalogGeometry{}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("error = %v, want %v", err, ErrInvalidArgument)
	}

	g, err := FromCatalog(nil, nil, CatalogGeometry{
		Dimensions: 2,
		Center:     []float64{0, 0},
		SideLength: []float64{4},
		PixelSize:  []float64{1},
	}, quietLogger())
	if err != nil {
		t.Fatalf("FromCatalog: %v", err)
	}
	if !g.Active() || g.NObjects() != 0 {
		t.Fatalf("active=%v objects=%d", g.Active(), g.NObjects())
	}
}

func TestSample(t *testing.T) {
	g := mustGrid(t, 2, []float64{0}, []float64{4}, []float64{1})
	if err := g.Add([][]float64{{-1.5}, {0.5}}, [][]float64{{1, 10}, {2, 20}}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, err := g.Sample([][]float64{{-1.2}, {0.9}, {7}}, []int{1})
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if got[0][0] != 10 || got[1][0] != 20 || !math.IsNaN(got[2][0]) {
		t.Fatalf("Sample = %v, want [[10] [20] [NaN]]", got)
	}
}

func TestSumProperties(t *testing.T) {
	g := mustGrid(t, 3, []float64{0}, []float64{2}, []float64{1})
	if err := g.Add([][]float64{{-0.5}, {0.5}}, [][]float64{{1, 2, 4}, {8, 16, 32}}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	sum, err := g.SumProperties([]int{0, 2}, false)
	if err != nil {
		t.Fatalf("SumProperties: %v", err)
	}
	got, _ := sum.Values(0)
	if diff := cmp.Diff([]float64{5, 40}, got); diff != "" {
		t.Fatalf("sum mismatch (-want +got):\n%s", diff)
	}
	if g.NProperties() != 3 {
		t.Fatalf("copy mode modified the grid")
	}

	if _, err := g.SumProperties(nil, true); err != nil {
		t.Fatalf("SumProperties in place: %v", err)
	}
	got, _ = g.Values(0)
	if g.NProperties() != 1 || got[0] != 7 || got[1] != 56 {
		t.Fatalf("in-place sum = %v with %d properties", got, g.NProperties())
	}
}
