// Package sqlite persists hazard results with an idempotent upsert keyed by
// location, hazard, scenario and year.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// Store implements domain.PersistenceSink.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the database at path and runs migrations.
// Use ":memory:" for a throwaway store.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite has a single writer; one connection also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	if path != ":memory:" {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set WAL mode: %w", err)
		}
	}

	s := &Store{db: db, logger: logger}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info("sqlite store opened", "path", path)
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS hazard_results (
			id              TEXT NOT NULL,
			location_key    TEXT NOT NULL,
			lat             REAL NOT NULL,
			lon             REAL NOT NULL,
			hazard          TEXT NOT NULL,
			scenario        TEXT NOT NULL,
			year            INTEGER NOT NULL,
			h_score         REAL,
			e_score         REAL,
			v_score         REAL,
			integrated_risk REAL,
			risk_level      TEXT,
			base_aal        REAL,
			final_aal       REAL,
			expected_loss   TEXT,
			data_source     TEXT,
			fallbacks       TEXT,
			provenance      TEXT,
			result_json     TEXT NOT NULL,
			computed_at     INTEGER NOT NULL,
			PRIMARY KEY (location_key, hazard, scenario, year)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_id ON hazard_results(id)`,
		`CREATE INDEX IF NOT EXISTS idx_results_risk ON hazard_results(scenario, year, integrated_risk)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

const upsertSQL = `INSERT INTO hazard_results
	(id, location_key, lat, lon, hazard, scenario, year,
	 h_score, e_score, v_score, integrated_risk, risk_level,
	 base_aal, final_aal, expected_loss,
	 data_source, fallbacks, provenance, result_json, computed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(location_key, hazard, scenario, year) DO UPDATE SET
		id = excluded.id,
		lat = excluded.lat,
		lon = excluded.lon,
		h_score = excluded.h_score,
		e_score = excluded.e_score,
		v_score = excluded.v_score,
		integrated_risk = excluded.integrated_risk,
		risk_level = excluded.risk_level,
		base_aal = excluded.base_aal,
		final_aal = excluded.final_aal,
		expected_loss = excluded.expected_loss,
		data_source = excluded.data_source,
		fallbacks = excluded.fallbacks,
		provenance = excluded.provenance,
		result_json = excluded.result_json,
		computed_at = excluded.computed_at`

// Upsert writes results in one transaction. Writing the same
// (location, hazard, scenario, year) again replaces the earlier row.
func (s *Store) Upsert(ctx context.Context, results []domain.HazardResult) error {
	if len(results) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i := range results {
		r := &results[i]
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal result %s: %w", r.ID, err)
		}
		var loss sql.NullString
		if r.AAL.ExpectedLoss != nil {
			loss = sql.NullString{String: r.AAL.ExpectedLoss.String(), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID, domain.LocationKey(r.Geo), r.Geo.Lat, r.Geo.Lon, string(r.Hazard), string(r.Scenario), r.Year,
			r.Risk.HScore, r.Risk.EScore, r.Risk.VScore, r.Risk.IntegratedRiskScore, string(r.Risk.RiskLevel),
			r.AAL.BaseAAL, r.AAL.FinalAAL, loss,
			string(r.DataSource), strings.Join(r.Fallbacks, ","), r.Provenance, string(payload), r.ComputedAt.Unix(),
		); err != nil {
			return fmt.Errorf("upsert result %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	s.logger.Debug("results persisted", "count", len(results))
	return nil
}

// Get returns the stored result for one key, or domain.ErrNotFound.
func (s *Store) Get(ctx context.Context, g domain.Geo, h domain.HazardType, sc domain.Scenario, year int) (domain.HazardResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT result_json FROM hazard_results
		 WHERE location_key = ? AND hazard = ? AND scenario = ? AND year = ?`,
		domain.LocationKey(g), string(h), string(sc), year,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.HazardResult{}, fmt.Errorf("result %s/%s: %w", domain.LocationKey(g), h, domain.ErrNotFound)
	}
	if err != nil {
		return domain.HazardResult{}, fmt.Errorf("query result: %w", err)
	}

	var r domain.HazardResult
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return domain.HazardResult{}, fmt.Errorf("decode result: %w", err)
	}
	return r, nil
}

// Count returns the number of stored rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM hazard_results`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count results: %w", err)
	}
	return n, nil
}

// CheckReadiness pings the database.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func firstLine(stmt string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(stmt), "\n")
	return line
}
