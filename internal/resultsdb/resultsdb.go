// Package resultsdb persists analysis runs to a SQLite database: per-group
// circular summaries with their plot intervals, per-chamber shifts, and the
// fitted regression. Downstream renderers read from here instead of
// recomputing the pipeline.
package resultsdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/antlab/forageshift/internal/analysis"
	"github.com/antlab/forageshift/internal/circstat"
	"github.com/antlab/forageshift/internal/types"
)

// Store is a handle to the results database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a results database at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			started_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS summaries (
			run_id TEXT NOT NULL REFERENCES runs(id),
			site TEXT NOT NULL,
			species TEXT NOT NULL,
			chamber TEXT NOT NULL,
			season TEXT NOT NULL,
			mean_hour REAL NOT NULL,
			median_hour REAL NOT NULL,
			q05 REAL NOT NULL,
			q25 REAL NOT NULL,
			q75 REAL NOT NULL,
			q95 REAL NOT NULL,
			n INTEGER NOT NULL,
			mean_undefined INTEGER NOT NULL,
			seg1_start REAL NOT NULL,
			seg1_end REAL NOT NULL,
			seg2_start REAL,
			seg2_end REAL
		)`,
		`CREATE TABLE IF NOT EXISTS shifts (
			run_id TEXT NOT NULL REFERENCES runs(id),
			site TEXT NOT NULL,
			species TEXT NOT NULL,
			chamber TEXT NOT NULL,
			season TEXT NOT NULL,
			delta_c REAL NOT NULL,
			shift_hours REAL NOT NULL,
			n INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS regressions (
			run_id TEXT PRIMARY KEY REFERENCES runs(id),
			c_intercept REAL NOT NULL,
			c_rank REAL NOT NULL,
			c_ctmax REAL NOT NULL,
			c_delta REAL NOT NULL,
			r_squared REAL NOT NULL,
			adj_r_squared REAL NOT NULL,
			mae REAL NOT NULL,
			rmse REAL NOT NULL,
			aic REAL NOT NULL,
			bic REAL NOT NULL,
			sample_count INTEGER NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// SaveRun stores one complete analysis run atomically. A nil regression is
// allowed; runs over sparse data may not produce a usable fit.
func (s *Store) SaveRun(ctx context.Context, run types.Run, summaries []analysis.GroupSummary, shifts []analysis.ShiftRecord, reg *analysis.RegressionResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, label, started_at) VALUES (?, ?, ?)`,
		run.ID, run.Label, run.StartedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	sumStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO summaries (run_id, site, species, chamber, season,
			mean_hour, median_hour, q05, q25, q75, q95, n, mean_undefined,
			seg1_start, seg1_end, seg2_start, seg2_end)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare summary insert: %w", err)
	}
	defer sumStmt.Close()

	for _, gs := range summaries {
		var seg2Start, seg2End sql.NullFloat64
		if gs.Interval.Second != nil {
			seg2Start = sql.NullFloat64{Float64: gs.Interval.Second.Start, Valid: true}
			seg2End = sql.NullFloat64{Float64: gs.Interval.Second.End, Valid: true}
		}
		_, err = sumStmt.ExecContext(ctx,
			run.ID, string(gs.Key.Site), gs.Key.Species, gs.Key.Chamber, string(gs.Key.Season),
			gs.Summary.MeanHour, gs.Summary.MedianHour,
			gs.Summary.Q05, gs.Summary.Q25, gs.Summary.Q75, gs.Summary.Q95,
			gs.Summary.N, gs.Summary.MeanUndefined,
			gs.Interval.First.Start, gs.Interval.First.End, seg2Start, seg2End)
		if err != nil {
			return fmt.Errorf("failed to insert summary: %w", err)
		}
	}

	shiftStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO shifts (run_id, site, species, chamber, season, delta_c, shift_hours, n)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare shift insert: %w", err)
	}
	defer shiftStmt.Close()

	for _, sh := range shifts {
		_, err = shiftStmt.ExecContext(ctx,
			run.ID, string(sh.Key.Site), sh.Key.Species, sh.Key.Chamber, string(sh.Key.Season),
			sh.DeltaC, sh.ShiftHours, sh.N)
		if err != nil {
			return fmt.Errorf("failed to insert shift: %w", err)
		}
	}

	if reg != nil {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO regressions (run_id, c_intercept, c_rank, c_ctmax, c_delta,
				r_squared, adj_r_squared, mae, rmse, aic, bic, sample_count)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			reg.Coefficients[0], reg.Coefficients[1], reg.Coefficients[2], reg.Coefficients[3],
			reg.RSquared, reg.AdjustedRSquared, reg.MeanAbsoluteError,
			reg.RootMeanSquaredError, reg.AIC, reg.BIC, reg.SampleCount)
		if err != nil {
			return fmt.Errorf("failed to insert regression: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LatestRunID returns the id of the most recently started run.
func (s *Store) LatestRunID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM runs ORDER BY started_at DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("no runs stored")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query latest run: %w", err)
	}
	return id, nil
}

// Summaries loads the stored group summaries for a run.
func (s *Store) Summaries(ctx context.Context, runID string) ([]analysis.GroupSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT site, species, chamber, season,
			mean_hour, median_hour, q05, q25, q75, q95, n, mean_undefined,
			seg1_start, seg1_end, seg2_start, seg2_end
		 FROM summaries WHERE run_id = ?
		 ORDER BY site, species, season, chamber`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()

	var out []analysis.GroupSummary
	for rows.Next() {
		var (
			gs                 analysis.GroupSummary
			site, season       string
			seg2Start, seg2End sql.NullFloat64
		)
		err := rows.Scan(&site, &gs.Key.Species, &gs.Key.Chamber, &season,
			&gs.Summary.MeanHour, &gs.Summary.MedianHour,
			&gs.Summary.Q05, &gs.Summary.Q25, &gs.Summary.Q75, &gs.Summary.Q95,
			&gs.Summary.N, &gs.Summary.MeanUndefined,
			&gs.Interval.First.Start, &gs.Interval.First.End, &seg2Start, &seg2End)
		if err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		gs.Key.Site = types.Site(site)
		gs.Key.Season = types.Season(season)
		if seg2Start.Valid && seg2End.Valid {
			gs.Interval.Second = &circstat.Segment{Start: seg2Start.Float64, End: seg2End.Float64}
		}
		out = append(out, gs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating summary rows: %w", err)
	}
	return out, nil
}

// Shifts loads the stored shift records for a run.
func (s *Store) Shifts(ctx context.Context, runID string) ([]analysis.ShiftRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT site, species, chamber, season, delta_c, shift_hours, n
		 FROM shifts WHERE run_id = ?
		 ORDER BY site, species, season, chamber`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var out []analysis.ShiftRecord
	for rows.Next() {
		var (
			sh           analysis.ShiftRecord
			site, season string
		)
		err := rows.Scan(&site, &sh.Key.Species, &sh.Key.Chamber, &season,
			&sh.DeltaC, &sh.ShiftHours, &sh.N)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift row: %w", err)
		}
		sh.Key.Site = types.Site(site)
		sh.Key.Season = types.Season(season)
		out = append(out, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shift rows: %w", err)
	}
	return out, nil
}

// LatestRegression loads the regression of the most recent run that has one.
func (s *Store) LatestRegression(ctx context.Context) (*analysis.RegressionResult, string, error) {
	var (
		reg   analysis.RegressionResult
		runID string
		c     [4]float64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT r.run_id, r.c_intercept, r.c_rank, r.c_ctmax, r.c_delta,
			r.r_squared, r.adj_r_squared, r.mae, r.rmse, r.aic, r.bic, r.sample_count
		 FROM regressions r
		 JOIN runs ON runs.id = r.run_id
		 ORDER BY runs.started_at DESC LIMIT 1`).
		Scan(&runID, &c[0], &c[1], &c[2], &c[3],
			&reg.RSquared, &reg.AdjustedRSquared, &reg.MeanAbsoluteError,
			&reg.RootMeanSquaredError, &reg.AIC, &reg.BIC, &reg.SampleCount)
	if err == sql.ErrNoRows {
		return nil, "", fmt.Errorf("no regression stored")
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to query regression: %w", err)
	}
	reg.Coefficients = c[:]
	return &reg, runID, nil
}

// StartedAt is a convenience accessor for a run's start time.
func (s *Store) StartedAt(ctx context.Context, runID string) (time.Time, error) {
	var t time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT started_at FROM runs WHERE id = ?`, runID).Scan(&t)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query run start: %w", err)
	}
	return t, nil
}
