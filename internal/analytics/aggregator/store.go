// Package aggregator snapshots query analytics to PostgreSQL so the stats
// endpoint history survives restarts.
package aggregator

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ravindradesineni/Movie-recommendation/internal/analytics"
	"github.com/ravindradesineni/Movie-recommendation/pkg/postgres"
)

// Store persists aggregated query stats in PostgreSQL.
//
// It requires a `query_stats_snapshots` table, created by EnsureSchema:
//
//	CREATE TABLE query_stats_snapshots (
//	    id          BIGSERIAL PRIMARY KEY,
//	    fingerprint TEXT NOT NULL,
//	    data        JSONB NOT NULL,
//	    captured_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type Store struct {
	db          *postgres.Client
	fingerprint string
	logger      *slog.Logger
}

// NewStore returns a store tagging snapshots with the catalog fingerprint.
func NewStore(db *postgres.Client, fingerprint string) *Store {
	return &Store{
		db:          db,
		fingerprint: fingerprint,
		logger:      slog.Default().With("component", "analytics-store"),
	}
}

// EnsureSchema creates the snapshot table and its lookup index if they do
// not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.db.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS query_stats_snapshots (
	id          BIGSERIAL PRIMARY KEY,
	fingerprint TEXT NOT NULL,
	data        JSONB NOT NULL,
	captured_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`); err != nil {
			return fmt.Errorf("creating snapshot table: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS query_stats_snapshots_fp_idx
	ON query_stats_snapshots (fingerprint, captured_at DESC)`); err != nil {
			return fmt.Errorf("creating snapshot index: %w", err)
		}
		return nil
	})
}

// SaveSnapshot persists a stats snapshot to the database.
func (s *Store) SaveSnapshot(ctx context.Context, stats analytics.AggregatedStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshaling stats: %w", err)
	}

	_, err = s.db.DB.ExecContext(ctx,
		`INSERT INTO query_stats_snapshots (fingerprint, data, captured_at) VALUES ($1, $2, $3)`,
		s.fingerprint, data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving analytics snapshot: %w", err)
	}

	s.logger.Info("analytics snapshot saved",
		"total_queries", stats.TotalQueries,
		"cache_hits", stats.CacheHits,
	)
	return nil
}

// LatestSnapshot loads the most recent snapshot for this fingerprint.
// Returns nil, nil if there is none.
func (s *Store) LatestSnapshot(ctx context.Context) (*analytics.AggregatedStats, error) {
	var data []byte
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT data FROM query_stats_snapshots WHERE fingerprint = $1 ORDER BY captured_at DESC LIMIT 1`,
		s.fingerprint,
	).Scan(&data)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest snapshot: %w", err)
	}

	var stats analytics.AggregatedStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("unmarshaling snapshot: %w", err)
	}
	return &stats, nil
}

// ListSnapshots returns the last limit snapshots for this fingerprint,
// newest first.
func (s *Store) ListSnapshots(ctx context.Context, limit int) ([]analytics.AggregatedStats, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT data FROM query_stats_snapshots WHERE fingerprint = $1 ORDER BY captured_at DESC LIMIT $2`,
		s.fingerprint, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []analytics.AggregatedStats
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		var stats analytics.AggregatedStats
		if err := json.Unmarshal(data, &stats); err != nil {
			s.logger.Warn("skipping corrupt snapshot", "error", err)
			continue
		}
		snapshots = append(snapshots, stats)
	}

	return snapshots, rows.Err()
}

// StartPeriodicSave snapshots agg every interval and once more when ctx is
// cancelled.
func (s *Store) StartPeriodicSave(ctx context.Context, agg *analytics.Aggregator, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				stats := agg.Stats()
				if err := s.SaveSnapshot(ctx, stats); err != nil {
					s.logger.Error("periodic snapshot failed", "error", err)
				}
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				stats := agg.Stats()
				if err := s.SaveSnapshot(shutdownCtx, stats); err != nil {
					s.logger.Error("final snapshot failed", "error", err)
				}
				return
			}
		}
	}()
	s.logger.Info("periodic snapshot started", "interval", interval)
}
