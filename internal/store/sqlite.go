// Package store persists analysis runs, geocode results, and model metrics
// to SQLite. Persistence is opt-in; the pipeline itself is purely in-memory.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/gradientworks/amesgeo/internal/dataset"
)

// Store wraps a SQLite database.
type Store struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &Store{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	seed       INTEGER NOT NULL,
	params     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS geocode_results (
	run_id   TEXT NOT NULL REFERENCES runs(id),
	key      TEXT NOT NULL,
	name     TEXT NOT NULL,
	matched  INTEGER NOT NULL,
	lat      REAL,
	lng      REAL,
	easting  REAL,
	northing REAL,
	quality  TEXT,
	PRIMARY KEY (run_id, key)
);

CREATE TABLE IF NOT EXISTS model_metrics (
	run_id       TEXT NOT NULL REFERENCES runs(id),
	variant      TEXT NOT NULL,
	cv_rmse      TEXT NOT NULL,
	holdout_rmse REAL NOT NULL,
	rounds       INTEGER NOT NULL,
	PRIMARY KEY (run_id, variant)
);

CREATE INDEX IF NOT EXISTS idx_geocode_results_run ON geocode_results(run_id);
CREATE INDEX IF NOT EXISTS idx_model_metrics_run ON model_metrics(run_id);
`

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Run is one saved analysis run.
type Run struct {
	ID        string
	Seed      int64
	Params    string // JSON
	CreatedAt time.Time
}

// CreateRun inserts a run row and returns it. Params are stored as JSON.
func (s *Store) CreateRun(ctx context.Context, seed int64, params any) (*Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal params")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, seed, params, created_at) VALUES (?, ?, ?, ?)`,
		id, seed, string(paramsJSON), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &Run{ID: id, Seed: seed, Params: string(paramsJSON), CreatedAt: now}, nil
}

// SaveGeocodeResult persists one neighborhood's geocode outcome for a run.
// Unlocated neighborhoods are stored with matched=0 and NULL geometry.
func (s *Store) SaveGeocodeResult(ctx context.Context, runID string, n *dataset.Neighborhood) error {
	var lat, lng, easting, northing, quality any
	if n.Located {
		lat, lng = n.Lat, n.Lng
		easting, northing = n.Easting, n.Northing
		quality = n.Quality
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO geocode_results (run_id, key, name, matched, lat, lng, easting, northing, quality)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, key) DO UPDATE SET
			matched = EXCLUDED.matched,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			easting = EXCLUDED.easting,
			northing = EXCLUDED.northing,
			quality = EXCLUDED.quality`,
		runID, n.Key, n.Name, boolToInt(n.Located), lat, lng, easting, northing, quality,
	)
	return eris.Wrap(err, "sqlite: save geocode result")
}

// SaveModelMetrics persists one variant's evaluation for a run.
func (s *Store) SaveModelMetrics(ctx context.Context, runID, variant string, cvRMSE []float64, holdoutRMSE float64, rounds int) error {
	cvJSON, err := json.Marshal(cvRMSE)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal cv rmse")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO model_metrics (run_id, variant, cv_rmse, holdout_rmse, rounds)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (run_id, variant) DO UPDATE SET
			cv_rmse = EXCLUDED.cv_rmse,
			holdout_rmse = EXCLUDED.holdout_rmse,
			rounds = EXCLUDED.rounds`,
		runID, variant, string(cvJSON), holdoutRMSE, rounds,
	)
	return eris.Wrap(err, "sqlite: save model metrics")
}

// ListRuns returns saved runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, seed, params, created_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Seed, &r.Params, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

// ResolveRunID expands a run ID prefix (as printed by the runs list) to the
// full ID. Errors when the prefix matches no run or more than one.
func (s *Store) ResolveRunID(ctx context.Context, prefix string) (string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM runs WHERE id LIKE ? || '%' LIMIT 2`, prefix)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: resolve run id")
	}
	defer rows.Close() //nolint:errcheck

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", eris.Wrap(err, "sqlite: scan run id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", eris.Wrap(err, "sqlite: resolve run id")
	}

	switch len(ids) {
	case 1:
		return ids[0], nil
	case 0:
		return "", eris.Errorf("sqlite: no run matches %q", prefix)
	default:
		return "", eris.Errorf("sqlite: run id %q is ambiguous", prefix)
	}
}

// Metrics is one saved model evaluation.
type Metrics struct {
	Variant     string
	CVRMSE      []float64
	HoldoutRMSE float64
	Rounds      int
}

// MetricsForRun returns the saved evaluations for one run.
func (s *Store) MetricsForRun(ctx context.Context, runID string) ([]Metrics, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT variant, cv_rmse, holdout_rmse, rounds FROM model_metrics WHERE run_id = ? ORDER BY variant`,
		runID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: metrics for run")
	}
	defer rows.Close() //nolint:errcheck

	var out []Metrics
	for rows.Next() {
		var m Metrics
		var cvJSON string
		if err := rows.Scan(&m.Variant, &cvJSON, &m.HoldoutRMSE, &m.Rounds); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan metrics")
		}
		if err := json.Unmarshal([]byte(cvJSON), &m.CVRMSE); err != nil {
			return nil, eris.Wrap(err, "sqlite: parse cv rmse")
		}
		out = append(out, m)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate metrics")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
