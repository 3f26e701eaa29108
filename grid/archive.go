package grid

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/cwbudde/algo-simgrid/internal/ndarray"
)

// archiveFormat tags grid archives so foreign CBOR files are rejected.
const archiveFormat = "simgrid/v1"

// zstdMagic prefixes every zstd frame.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// archive is the on-disk record. Buffers are stored as separate real and
// imaginary arrays per property; the imaginary arrays are omitted for real
// grids.
type archive struct {
	Format          string      `cbor:"format"`
	NDimensions     int         `cbor:"n_dimensions"`
	NProperties     int         `cbor:"n_properties"`
	CenterPoint     []float64   `cbor:"center_point"`
	SideLength      []float64   `cbor:"side_length"`
	PixelSize       []float64   `cbor:"pixel_size"`
	NPixels         []int       `cbor:"n_pixels"`
	AxisUnits       []string    `cbor:"axunits"`
	GridUnits       []string    `cbor:"gridunits"`
	FourierSpace    []bool      `cbor:"fourier_space"`
	IsPowerSpectrum bool        `cbor:"is_power_spectrum"`
	IsComplex       bool        `cbor:"is_complex"`
	GridActive      bool        `cbor:"grid_active"`
	NObjects        int         `cbor:"n_objects"`
	GridReal        [][]float64 `cbor:"grid_real,omitempty"`
	GridImag        [][]float64 `cbor:"grid_imag,omitempty"`
}

// SaveOptions configures Save. The zero value writes an uncompressed
// archive and refuses to replace an existing file.
type SaveOptions struct {
	// Compress wraps the archive in a zstd stream.
	Compress bool
	// Overwrite replaces an existing file at the path.
	Overwrite bool
}

// Save writes the grid to path. The archive is written to a temporary file
// in the same directory and moved into place, so a failed save never leaves
// a partial archive at path.
func (g *Grid) Save(path string, opts SaveOptions) error {
	if !opts.Overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrArchiveExists, path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("grid: save: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("grid: save: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := g.encode(tmp, opts.Compress); err != nil {
		tmp.Close()
		return fmt.Errorf("grid: save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("grid: save: %w", err)
	}

	if opts.Overwrite {
		if err := os.Rename(tmpName, path); err != nil {
			return fmt.Errorf("grid: save: %w", err)
		}
		return nil
	}
	if err := os.Link(tmpName, path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrArchiveExists, path)
		}
		return fmt.Errorf("grid: save: %w", err)
	}
	return nil
}

func (g *Grid) encode(w io.Writer, compress bool) error {
	bw := bufio.NewWriter(w)
	var out io.Writer = bw
	var zw *zstd.Encoder
	if compress {
		var err error
		if zw, err = zstd.NewWriter(bw); err != nil {
			return err
		}
		out = zw
	}
	if err := cbor.NewEncoder(out).Encode(g.record()); err != nil {
		if zw != nil {
			zw.Close()
		}
		return err
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (g *Grid) record() archive {
	rec := archive{
		Format:          archiveFormat,
		NDimensions:     g.nDims,
		NProperties:     g.nProps,
		CenterPoint:     g.center,
		SideLength:      g.side,
		PixelSize:       g.pixel,
		NPixels:         g.n,
		AxisUnits:       g.axUnits,
		GridUnits:       g.gridUnits,
		FourierSpace:    g.FourierSpace(),
		IsPowerSpectrum: g.power,
		IsComplex:       g.complexValue,
		GridActive:      g.chans != nil,
		NObjects:        g.nObjects,
	}
	if g.chans == nil {
		return rec
	}
	rec.GridReal = make([][]float64, g.nProps)
	if g.complexValue {
		rec.GridImag = make([][]float64, g.nProps)
	}
	for p, slot := range g.chans.slots {
		re := make([]float64, len(slot))
		for i, v := range slot {
			re[i] = real(v)
		}
		rec.GridReal[p] = re
		if g.complexValue {
			im := make([]float64, len(slot))
			for i, v := range slot {
				im[i] = imag(v)
			}
			rec.GridImag[p] = im
		}
	}
	return rec
}

// Load reads a grid written by Save. Compressed and uncompressed archives
// are detected automatically. The geometry is restored exactly as stored.
func Load(path string, opts ...Option) (*Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("grid: load: %w", err)
	}
	if bytes.HasPrefix(data, zstdMagic) {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("grid: load: %w", err)
		}
		data, err = dec.DecodeAll(data, nil)
		dec.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArchive, path, err)
		}
	}

	var rec archive
	if err := cbor.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArchive, path, err)
	}
	g, err := fromRecord(rec, applyOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArchive, path, err)
	}
	return g, nil
}

func fromRecord(rec archive, cfg config) (*Grid, error) {
	if rec.Format != archiveFormat {
		return nil, fmt.Errorf("unknown format %q", rec.Format)
	}
	d := rec.NDimensions
	if d <= 0 || len(rec.CenterPoint) != d || len(rec.SideLength) != d || len(rec.PixelSize) != d ||
		len(rec.NPixels) != d || len(rec.FourierSpace) != d || len(rec.AxisUnits) != d {
		return nil, errors.New("per-axis fields disagree with n_dimensions")
	}
	if rec.NProperties < 0 || len(rec.GridUnits) != rec.NProperties {
		return nil, errors.New("grid units disagree with n_properties")
	}
	for i, n := range rec.NPixels {
		if n <= 0 || !(rec.PixelSize[i] > 0) {
			return nil, fmt.Errorf("axis %d has %d pixels of size %v", i, n, rec.PixelSize[i])
		}
	}

	cfg.axUnits = rec.AxisUnits
	cfg.gridUnits = rec.GridUnits
	g, err := newGrid(rec.NProperties, rec.CenterPoint, rec.PixelSize, rec.NPixels, cfg)
	if err != nil {
		return nil, err
	}
	copy(g.side, rec.SideLength)
	g.rebuildAxes()
	for i, f := range rec.FourierSpace {
		if f {
			g.space[i] = Spectral
		}
	}
	g.power = rec.IsPowerSpectrum
	g.complexValue = rec.IsComplex
	g.nObjects = rec.NObjects
	if !rec.GridActive {
		return g, nil
	}

	cells := ndarray.Size(g.n)
	if len(rec.GridReal) != rec.NProperties || (rec.GridImag != nil && len(rec.GridImag) != rec.NProperties) {
		return nil, errors.New("buffer disagrees with n_properties")
	}
	g.chans = &channels{cells: cells, slots: make([][]complex128, rec.NProperties)}
	for p, re := range rec.GridReal {
		if len(re) != cells {
			return nil, fmt.Errorf("property %d has %d values for %d cells", p, len(re), cells)
		}
		var im []float64
		if rec.GridImag != nil {
			if im = rec.GridImag[p]; len(im) != cells {
				return nil, fmt.Errorf("property %d has %d imaginary values for %d cells", p, len(im), cells)
			}
		}
		slot := make([]complex128, cells)
		for i, v := range re {
			if im != nil {
				slot[i] = complex(v, im[i])
			} else {
				slot[i] = complex(v, 0)
			}
		}
		g.chans.slots[p] = slot
	}
	return g, nil
}
