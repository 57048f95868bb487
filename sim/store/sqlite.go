// Package store persists finished runs and their spike trains in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/lifnet-sim/lifnet/sim"
	"github.com/lifnet-sim/lifnet/sim/report"
)

// Run describes one stored simulation.
type Run struct {
	ID        string
	Seed      int64
	Steps     int64
	Neurons   int
	Spikes    int
	Params    sim.Params
	CreatedAt time.Time
}

// SpikeStore stores runs and spikes in a SQLite database.
type SpikeStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	seed INTEGER NOT NULL,
	steps INTEGER NOT NULL,
	neurons INTEGER NOT NULL,
	spikes INTEGER NOT NULL,
	params_yaml TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS spikes (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	neuron INTEGER NOT NULL,
	step INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_spikes_run ON spikes(run_id, neuron, step);
`

// Open opens (creating if needed) the database at path. ":memory:" is accepted.
func Open(ctx context.Context, path string) (*SpikeStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite works best with a single writer; it also keeps :memory: on one connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SpikeStore{db: db}, nil
}

// Close closes the database.
func (s *SpikeStore) Close() error {
	return s.db.Close()
}

// SaveRun stores net's parameters and every recorded spike in one transaction
// and returns the new run.
func (s *SpikeStore) SaveRun(ctx context.Context, net *sim.Network) (Run, error) {
	records := report.Records(net.Neurons())
	run := Run{
		ID:        uuid.New().String(),
		Seed:      int64(net.Key()),
		Steps:     net.Clock(),
		Neurons:   net.Size(),
		Spikes:    len(records),
		Params:    net.Params(),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	paramsYAML, err := yaml.Marshal(run.Params)
	if err != nil {
		return Run{}, fmt.Errorf("failed to marshal params: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, seed, steps, neurons, spikes, params_yaml, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Seed, run.Steps, run.Neurons, run.Spikes, string(paramsYAML), run.CreatedAt.Unix(),
	); err != nil {
		return Run{}, fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO spikes (run_id, neuron, step) VALUES (?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("failed to prepare spike insert: %w", err)
	}
	defer stmt.Close()
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, run.ID, r.Neuron, r.Step); err != nil {
			return Run{}, fmt.Errorf("failed to insert spike of neuron %d: %w", r.Neuron, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("failed to commit run: %w", err)
	}
	return run, nil
}

// Spikes returns the spikes of a run ordered by neuron, then step.
func (s *SpikeStore) Spikes(ctx context.Context, runID string) ([]report.SpikeRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT neuron, step FROM spikes WHERE run_id = ? ORDER BY neuron, step`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query spikes: %w", err)
	}
	defer rows.Close()

	var records []report.SpikeRecord
	for rows.Next() {
		var r report.SpikeRecord
		if err := rows.Scan(&r.Neuron, &r.Step); err != nil {
			return nil, fmt.Errorf("failed to scan spike: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate spikes: %w", err)
	}
	return records, nil
}

// Runs lists stored runs, oldest first.
func (s *SpikeStore) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, seed, steps, neurons, spikes, params_yaml, created_at FROM runs ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r          Run
			paramsYAML string
			created    int64
		)
		if err := rows.Scan(&r.ID, &r.Seed, &r.Steps, &r.Neurons, &r.Spikes, &paramsYAML, &created); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if err := yaml.Unmarshal([]byte(paramsYAML), &r.Params); err != nil {
			return nil, fmt.Errorf("failed to parse params of run %s: %w", r.ID, err)
		}
		r.CreatedAt = time.Unix(created, 0).UTC()
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}
