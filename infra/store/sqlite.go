// Package store persists finished planning runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/pumpplan/core/model"
	"github.com/kilianp07/pumpplan/core/plan"
)

// ErrNotFound is returned when no run matches the requested ID.
var ErrNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS plan_runs (
    run_id TEXT PRIMARY KEY,
    year INTEGER NOT NULL,
    target INTEGER NOT NULL,
    status TEXT NOT NULL,
    failed_pass TEXT,
    error TEXT,
    started_at INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    final_production INTEGER NOT NULL,
    total_cost REAL NOT NULL,
    summary TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS plan_cells (
    run_id TEXT NOT NULL,
    day INTEGER NOT NULL,
    hour INTEGER NOT NULL,
    side TEXT NOT NULL,
    date INTEGER NOT NULL,
    band TEXT NOT NULL,
    pumps INTEGER NOT NULL,
    production INTEGER NOT NULL,
    specific_energy REAL NOT NULL,
    tariff_cost REAL NOT NULL,
    cost REAL NOT NULL,
    shutdown INTEGER NOT NULL,
    PRIMARY KEY(run_id, day, hour, side)
);
CREATE INDEX IF NOT EXISTS plan_runs_year ON plan_runs(year);`

// RunRecord is a stored run without its grid.
type RunRecord struct {
	ID              string        `json:"run_id"`
	Year            int           `json:"year"`
	Target          int           `json:"target"`
	Status          plan.Status   `json:"status"`
	FailedPass      plan.Pass     `json:"failed_pass,omitempty"`
	Error           string        `json:"error,omitempty"`
	StartedAt       time.Time     `json:"started_at"`
	Duration        time.Duration `json:"duration"`
	FinalProduction int           `json:"final_production"`
	TotalCost       float64       `json:"total_cost"`
	Summary         plan.Summary  `json:"summary"`
}

// CellRecord is one facility-hour of a stored grid.
type CellRecord struct {
	Date           time.Time `json:"date"`
	Day            int       `json:"day"`
	Hour           int       `json:"hour"`
	Side           string    `json:"side"`
	Band           string    `json:"band"`
	Pumps          int       `json:"pump_count"`
	Production     int       `json:"production_amount"`
	SpecificEnergy float64   `json:"specific_energy"`
	TariffCost     float64   `json:"tariff_cost"`
	Cost           float64   `json:"production_cost"`
	Shutdown       bool      `json:"shutdown"`
}

// SQLiteStore persists runs and their grids in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures schema.
// ":memory:" gives a private in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// Each connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// SaveRun stores the run summary and every facility-hour of its grid. Saving
// the same run twice replaces the first copy.
func (s *SQLiteStore) SaveRun(ctx context.Context, res *plan.Result) error {
	summary, err := json.Marshal(res.Summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM plan_cells WHERE run_id = ?`, res.RunID); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO plan_runs
        (run_id, year, target, status, failed_pass, error, started_at, duration_ms, final_production, total_cost, summary)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID, res.Year, res.Target, string(res.Summary.Status), string(res.Summary.FailedPass), res.Summary.Error,
		res.StartedAt.UnixNano(), res.Summary.Duration.Milliseconds(), res.Summary.FinalProduction, res.Summary.TotalCost,
		string(summary))
	if err != nil {
		return err
	}
	if res.Grid != nil {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO plan_cells
            (run_id, day, hour, side, date, band, pumps, production, specific_energy, tariff_cost, cost, shutdown)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()
		for d := 0; d < res.Grid.Days(); d++ {
			for _, c := range res.Grid.Row(d) {
				for _, side := range model.Sides {
					f := c.Facility(side)
					if _, err := stmt.ExecContext(ctx, res.RunID, c.Day, c.Hour, side.String(), c.Date.Unix(), c.Band.String(),
						f.Pumps, f.Production, f.SpecificEnergy, f.TariffCost, f.Cost, f.Shutdown); err != nil {
						return err
					}
				}
			}
		}
	}
	return tx.Commit()
}

// ListRuns returns stored runs newest first. A zero year lists every year.
func (s *SQLiteStore) ListRuns(ctx context.Context, year int) ([]RunRecord, error) {
	q := `SELECT run_id, year, target, status, failed_pass, error, started_at, duration_ms, final_production, total_cost, summary
        FROM plan_runs`
	var args []any
	if year != 0 {
		q += ` WHERE year = ?`
		args = append(args, year)
	}
	q += ` ORDER BY started_at DESC`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// GetRun returns the run with the given ID or ErrNotFound.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT run_id, year, target, status, failed_pass, error, started_at, duration_ms,
        final_production, total_cost, summary FROM plan_runs WHERE run_id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, ErrNotFound
	}
	return r, err
}

// Cells returns the stored facility-hours of days [from, to) of a run in
// day, hour, side order. A negative to means up to the last day.
func (s *SQLiteStore) Cells(ctx context.Context, id string, from, to int) ([]CellRecord, error) {
	if _, err := s.GetRun(ctx, id); err != nil {
		return nil, err
	}
	if to < 0 {
		to = int(^uint32(0) >> 1)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT day, hour, side, date, band, pumps, production, specific_energy, tariff_cost, cost, shutdown
        FROM plan_cells WHERE run_id = ? AND day >= ? AND day < ? ORDER BY day, hour, side`, id, from, to)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []CellRecord
	for rows.Next() {
		var c CellRecord
		var ts int64
		if err := rows.Scan(&c.Day, &c.Hour, &c.Side, &ts, &c.Band, &c.Pumps, &c.Production,
			&c.SpecificEnergy, &c.TariffCost, &c.Cost, &c.Shutdown); err != nil {
			return nil, err
		}
		c.Date = time.Unix(ts, 0).UTC()
		res = append(res, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (RunRecord, error) {
	var r RunRecord
	var status, failed, summary string
	var errText sql.NullString
	var started, durMS int64
	if err := sc.Scan(&r.ID, &r.Year, &r.Target, &status, &failed, &errText, &started, &durMS,
		&r.FinalProduction, &r.TotalCost, &summary); err != nil {
		return RunRecord{}, err
	}
	r.Status = plan.Status(status)
	r.FailedPass = plan.Pass(failed)
	r.Error = errText.String
	r.StartedAt = time.Unix(0, started).UTC()
	r.Duration = time.Duration(durMS) * time.Millisecond
	if err := json.Unmarshal([]byte(summary), &r.Summary); err != nil {
		return RunRecord{}, fmt.Errorf("decode summary of run %s: %w", r.ID, err)
	}
	return r, nil
}
