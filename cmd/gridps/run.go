package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-simgrid/dsp/window"
	"github.com/cwbudde/algo-simgrid/grid"
	"github.com/cwbudde/algo-simgrid/pipeline"
	"github.com/cwbudde/algo-simgrid/store"
)

// lognormalSigma is the log-space spread of simulated object values.
const lognormalSigma = 0.5

// Run simulates cfg.Realizations catalogs and writes their mean binned power
// spectrum to out. Failed realizations are logged to errOut and left out of
// the mean; Run fails only when none succeed.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if err := cfg.validate(); err != nil {
		return err
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	logger := log.New(errOut, "", 0)

	edges, err := binEdges(cfg, logger)
	if err != nil {
		return err
	}
	if cfg.OutDir != "" {
		if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	units := make([]int, cfg.Realizations)
	for i := range units {
		units[i] = i
	}
	start := time.Now()
	outcomes := pipeline.Run(ctx, units, cfg.Workers, func(ctx context.Context, i int) (*grid.Binned, error) {
		return realize(ctx, cfg, edges, i, logger)
	})
	for _, o := range outcomes {
		if o.Err != nil {
			logger.Printf("gridps: realization %d failed: %v", o.Index, o.Err)
		}
	}
	spectra := pipeline.Values(outcomes)
	if len(spectra) == 0 {
		return fmt.Errorf("all realizations failed: %w", pipeline.Err(outcomes))
	}
	logger.Printf("gridps: %d of %d realizations in %s", len(spectra), len(outcomes), time.Since(start).Round(time.Millisecond))

	if cfg.Ledger != "" {
		runID, err := record(ctx, cfg.Ledger, outcomes)
		if err != nil {
			return err
		}
		logger.Printf("gridps: recorded run %s in %s", runID, cfg.Ledger)
	}
	return printTable(out, edges, spectra)
}

// binEdges spans the non-zero Fourier modes of the configured box with
// logarithmic bins, from the fundamental mode to the grid corner.
func binEdges(cfg Config, logger *log.Logger) ([]float64, error) {
	ref, err := grid.NewGrid(1, make([]float64, cfg.Dimensions), []float64{cfg.SideLength}, []float64{cfg.PixelSize}, grid.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	kMin := math.Inf(1)
	var kMax2 float64
	for d, side := range ref.SideLength() {
		kMin = math.Min(kMin, 1/side)
		freq := ref.FourierAxisCenters(d)
		kMax2 += math.Max(freq[0]*freq[0], freq[len(freq)-1]*freq[len(freq)-1])
	}
	kMax := math.Sqrt(kMax2)
	if !(kMax > kMin) {
		return nil, errors.New("grid has no non-zero Fourier modes to bin")
	}

	edges := make([]float64, cfg.Bins+1)
	floats.LogSpan(edges, kMin, kMax)
	edges[0] = kMin * (1 - 1e-9)
	edges[cfg.Bins] = kMax * (1 + 1e-9)
	return edges, nil
}

func realize(ctx context.Context, cfg Config, edges []float64, i int, logger *log.Logger) (*grid.Binned, error) {
	positions, values := catalog(cfg, i)
	geom := grid.CatalogGeometry{
		Center:     make([]float64, cfg.Dimensions),
		SideLength: []float64{cfg.SideLength},
		PixelSize:  []float64{cfg.PixelSize},
	}
	g, err := grid.FromCatalog(positions, values, geom,
		grid.WithLogger(logger), grid.WithAxisUnits("Mpc"), grid.WithGridUnits("Jy"))
	if err != nil {
		return nil, fmt.Errorf("grid catalog: %w", err)
	}

	if cfg.BeamFWHM > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fwhm := make([]float64, cfg.Dimensions)
		for d := range fwhm {
			fwhm[d] = cfg.BeamFWHM
		}
		beam, err := grid.GaussianPSF(fwhm, []float64{cfg.PixelSize}, grid.PSFConfig{}, grid.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("build beam: %w", err)
		}
		pad := int(math.Ceil(3 * cfg.BeamFWHM / cfg.PixelSize))
		if _, err := g.Convolve(beam, grid.ConvolveOptions{Pad: []int{pad}}); err != nil {
			return nil, fmt.Errorf("convolve beam: %w", err)
		}
	}

	// Config validation has already accepted the name.
	taper, _ := window.Parse(cfg.Taper)
	meanSq := 1.0
	if taper != window.TypeRectangular {
		if meanSq, err = g.Taper(nil, taper); err != nil {
			return nil, fmt.Errorf("taper: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ps, err := g.PowerSpectrum(grid.PowerOptions{InPlace: true})
	if err != nil {
		return nil, fmt.Errorf("power spectrum: %w", err)
	}
	if cfg.OutDir != "" {
		path := filepath.Join(cfg.OutDir, fmt.Sprintf("realization-%03d.grid", i))
		if err := ps.Save(path, grid.SaveOptions{Compress: cfg.Compress}); err != nil {
			return nil, fmt.Errorf("save spectrum: %w", err)
		}
	}
	b, err := ps.SphericalAverage(grid.AverageOptions{Edges: edges, ReturnCount: true})
	if err != nil {
		return nil, err
	}
	for j := range b.Mean {
		b.Mean[j] /= complex(meanSq, 0)
	}
	return b, nil
}

// catalog draws realization i: uniform positions over the box and
// log-normal values.
func catalog(cfg Config, i int) (positions, values [][]float64) {
	rng := rand.New(rand.NewPCG(cfg.Seed, uint64(i)))
	half := cfg.SideLength / 2
	positions = make([][]float64, cfg.Objects)
	values = make([][]float64, cfg.Objects)
	for j := range positions {
		p := make([]float64, cfg.Dimensions)
		for d := range p {
			p[d] = (2*rng.Float64() - 1) * half
		}
		positions[j] = p
		values[j] = []float64{math.Exp(lognormalSigma * rng.NormFloat64())}
	}
	return positions, values
}

// record stores the successful realizations under a fresh run id.
func record(ctx context.Context, path string, outcomes []pipeline.Outcome[*grid.Binned]) (string, error) {
	s, err := store.Open(path)
	if err != nil {
		return "", err
	}
	defer s.Close()

	runID := store.NewRunID()
	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		if err := s.RecordBinned(ctx, runID, realizationUnit(o.Index), o.Value, 0); err != nil {
			return "", err
		}
	}
	return runID, nil
}

func realizationUnit(i int) string {
	return fmt.Sprintf("realization-%03d", i)
}

func printTable(out io.Writer, edges []float64, spectra []*grid.Binned) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Bin\tk low\tk high\tP(k)\tStd\tCells\n"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := fmt.Fprintf(tw, "---\t-----\t------\t----\t---\t-----\n"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for bin := 0; bin < len(edges)-1; bin++ {
		var power []float64
		cells := 0
		for _, b := range spectra {
			// Single-property spectra, so the bin is the flat index.
			if v := real(b.Mean[bin]); !math.IsNaN(v) {
				power = append(power, v)
			}
			cells += b.Count[bin]
		}
		mean, std := math.NaN(), math.NaN()
		if len(power) > 0 {
			mean, std = stat.MeanStdDev(power, nil)
		}
		if _, err := fmt.Fprintf(tw, "%d\t%.4g\t%.4g\t%.6g\t%.3g\t%d\n", bin, edges[bin], edges[bin+1], mean, std, cells); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	return tw.Flush()
}
