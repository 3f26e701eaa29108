// Command gridps estimates the mean power spectrum of simulated catalogs.
//
// Each realization draws uniformly placed objects with log-normal values,
// grids them, optionally smooths the grid with a Gaussian beam, and
// spherically averages its power spectrum into logarithmic bins. The
// realizations run concurrently and the mean spectrum is printed as a table.
//
// Usage:
//
//	gridps [flags]
//
// Every flag can also be set through a GRIDPS_* environment variable; flags
// take precedence.
//
// Examples:
//
//	gridps
//	gridps -realizations 16 -objects 50000 -side 256 -pixel 4
//	gridps -beam-fwhm 6 -out spectra/ -ledger runs.db
//	gridps -taper tukey -dimensions 2
//	GRIDPS_DIMENSIONS=2 gridps -bins 20
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: gridps [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Estimates the mean spherically averaged power spectrum of simulated catalogs.\n")
		fmt.Fprintf(os.Stderr, "Flags override the matching GRIDPS_* environment variables.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  gridps -realizations 16 -objects 50000\n")
		fmt.Fprintf(os.Stderr, "  gridps -beam-fwhm 6 -out spectra/ -ledger runs.db\n")
		fmt.Fprintf(os.Stderr, "  GRIDPS_DIMENSIONS=2 gridps -bins 20\n")
	}

	cfg, err := ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
