// Package store keeps a SQLite ledger of binned power spectra so runs can be
// compared after the fact.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/cwbudde/algo-simgrid/grid"
)

// Errors returned by the store.
var (
	ErrNotConfigured = errors.New("store: not configured")
	ErrInvalidInput  = errors.New("store: invalid input")
)

const schema = `
CREATE TABLE IF NOT EXISTS spectra (
	run_id     TEXT    NOT NULL,
	unit       TEXT    NOT NULL,
	property   INTEGER NOT NULL,
	bin        INTEGER NOT NULL,
	k_low      REAL    NOT NULL,
	k_high     REAL    NOT NULL,
	power      REAL,
	n_cells    INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (run_id, unit, property, bin)
);
CREATE INDEX IF NOT EXISTS idx_spectra_run ON spectra (run_id);
`

// Store persists binned spectra in SQLite.
type Store struct {
	db *sql.DB
}

// Row is one radial bin of a stored spectrum. Power is NaN for bins that
// held no cells.
type Row struct {
	Unit     string
	Property int
	Bin      int
	KLow     float64
	KHigh    float64
	Power    float64
	NCells   int
}

// NewRunID returns a fresh identifier for a pipeline run.
func NewRunID() string {
	return uuid.NewString()
}

// Open opens or creates the ledger at path. ":memory:" opens a private
// in-memory ledger.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: storage path is required", ErrInvalidInput)
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection keeps in-memory ledgers shared and serializes
	// writers.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordBinned stores one property of a fully averaged spectrum under
// (runID, unit). Averages that retain grid axes are rejected. Recording the
// same run and unit again replaces the earlier rows.
func (s *Store) RecordBinned(ctx context.Context, runID, unit string, b *grid.Binned, property int) error {
	if s == nil || s.db == nil {
		return ErrNotConfigured
	}
	if strings.TrimSpace(runID) == "" || strings.TrimSpace(unit) == "" {
		return fmt.Errorf("%w: run id and unit are required", ErrInvalidInput)
	}
	if b == nil || len(b.Shape) != 2 {
		return fmt.Errorf("%w: need a fully averaged spectrum", ErrInvalidInput)
	}
	nBins, nProps := b.Shape[0], b.Shape[1]
	if property < 0 || property >= nProps {
		return fmt.Errorf("%w: property %d of %d", ErrInvalidInput, property, nProps)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO spectra (
			run_id, unit, property, bin, k_low, k_high, power, n_cells, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UnixNano()
	for bin := 0; bin < nBins; bin++ {
		i := bin*nProps + property
		power := sql.NullFloat64{Float64: real(b.Mean[i]), Valid: !math.IsNaN(real(b.Mean[i]))}
		cells := 0
		if b.Count != nil {
			cells = b.Count[i]
		}
		if _, err := stmt.ExecContext(ctx, runID, unit, property, bin,
			b.Edges[bin], b.Edges[bin+1], power, cells, now); err != nil {
			return fmt.Errorf("insert bin %d: %w", bin, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Spectrum returns the stored rows of (runID, unit) ordered by property and
// bin.
func (s *Store) Spectrum(ctx context.Context, runID, unit string) ([]Row, error) {
	if s == nil || s.db == nil {
		return nil, ErrNotConfigured
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT unit, property, bin, k_low, k_high, power, n_cells
		FROM spectra
		WHERE run_id = ? AND unit = ?
		ORDER BY property, bin`, runID, unit)
	if err != nil {
		return nil, fmt.Errorf("query spectra: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var power sql.NullFloat64
		if err := rows.Scan(&r.Unit, &r.Property, &r.Bin, &r.KLow, &r.KHigh, &power, &r.NCells); err != nil {
			return nil, fmt.Errorf("scan spectrum: %w", err)
		}
		r.Power = math.NaN()
		if power.Valid {
			r.Power = power.Float64
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Units lists the units recorded under runID.
func (s *Store) Units(ctx context.Context, runID string) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, ErrNotConfigured
	}
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT unit FROM spectra WHERE run_id = ? ORDER BY unit`, runID)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()

	var units []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}
