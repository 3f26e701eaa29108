package main

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/cwbudde/algo-simgrid/dsp/window"
)

// Config holds gridps configuration.
type Config struct {
	Realizations int           `env:"GRIDPS_REALIZATIONS" envDefault:"4"`
	Objects      int           `env:"GRIDPS_OBJECTS"      envDefault:"5000"`
	Dimensions   int           `env:"GRIDPS_DIMENSIONS"   envDefault:"3"`
	SideLength   float64       `env:"GRIDPS_SIDE"         envDefault:"128"`
	PixelSize    float64       `env:"GRIDPS_PIXEL"        envDefault:"4"`
	BeamFWHM     float64       `env:"GRIDPS_BEAM_FWHM"`
	Taper        string        `env:"GRIDPS_TAPER"        envDefault:"none"`
	Bins         int           `env:"GRIDPS_BINS"         envDefault:"12"`
	Seed         uint64        `env:"GRIDPS_SEED"         envDefault:"1"`
	Workers      int           `env:"GRIDPS_WORKERS"`
	OutDir       string        `env:"GRIDPS_OUT_DIR"`
	Compress     bool          `env:"GRIDPS_COMPRESS"     envDefault:"true"`
	Ledger       string        `env:"GRIDPS_LEDGER"`
	Timeout      time.Duration `env:"GRIDPS_TIMEOUT"      envDefault:"10m"`
}

// ParseConfig reads the environment, then flags, into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.IntVar(&cfg.Realizations, "realizations", cfg.Realizations, "number of independent realizations")
	fs.IntVar(&cfg.Objects, "objects", cfg.Objects, "objects per realization")
	fs.IntVar(&cfg.Dimensions, "dimensions", cfg.Dimensions, "grid dimensionality")
	fs.Float64Var(&cfg.SideLength, "side", cfg.SideLength, "box side length")
	fs.Float64Var(&cfg.PixelSize, "pixel", cfg.PixelSize, "pixel size")
	fs.Float64Var(&cfg.BeamFWHM, "beam-fwhm", cfg.BeamFWHM, "Gaussian beam FWHM, 0 disables smoothing")
	fs.StringVar(&cfg.Taper, "taper", cfg.Taper, "edge taper before the power spectrum: none, hann, blackman, tukey, kaiser")
	fs.IntVar(&cfg.Bins, "bins", cfg.Bins, "number of logarithmic k bins")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent realizations, 0 uses GOMAXPROCS")
	fs.StringVar(&cfg.OutDir, "out", cfg.OutDir, "directory for power spectrum archives")
	fs.BoolVar(&cfg.Compress, "compress", cfg.Compress, "zstd-compress archives")
	fs.StringVar(&cfg.Ledger, "ledger", cfg.Ledger, "SQLite ledger recording binned spectra")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall time limit")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if c.Realizations < 1 {
		errs = append(errs, fmt.Errorf("realizations must be positive, got %d", c.Realizations))
	}
	if c.Objects < 1 {
		errs = append(errs, fmt.Errorf("objects must be positive, got %d", c.Objects))
	}
	if c.Dimensions < 1 {
		errs = append(errs, fmt.Errorf("dimensions must be positive, got %d", c.Dimensions))
	}
	if !(c.SideLength > 0) || !(c.PixelSize > 0) {
		errs = append(errs, fmt.Errorf("side %g and pixel %g must be positive", c.SideLength, c.PixelSize))
	}
	if c.BeamFWHM < 0 {
		errs = append(errs, fmt.Errorf("beam FWHM must not be negative, got %g", c.BeamFWHM))
	}
	if _, err := window.Parse(c.Taper); err != nil {
		errs = append(errs, err)
	}
	if c.Bins < 1 {
		errs = append(errs, fmt.Errorf("bins must be positive, got %d", c.Bins))
	}
	return errors.Join(errs...)
}
