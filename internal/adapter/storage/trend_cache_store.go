// internal/adapter/storage/trend_cache_store.go

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"marketlens/internal/domain/market"
)

// CachedReport is a stored sector report with its fetch time
type CachedReport struct {
	Report    market.SectorReport
	FetchedAt time.Time
}

// TrendCacheStore persists sector reports keyed by category and timeframe
type TrendCacheStore struct {
	db *pgxpool.Pool
}

// NewTrendCacheStore creates a new trend cache store
func NewTrendCacheStore(db *pgxpool.Pool) *TrendCacheStore {
	return &TrendCacheStore{
		db: db,
	}
}

// SaveReport upserts a sector report
func (s *TrendCacheStore) SaveReport(ctx context.Context, report market.SectorReport, fetchedAt time.Time) error {
	query := `
		INSERT INTO trend_cache (category, timeframe, report, origin, fetched_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (category, timeframe) DO UPDATE
		SET
			report = $3,
			origin = $4,
			fetched_at = $5
	`

	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("error marshaling report: %w", err)
	}

	_, err = s.db.Exec(
		ctx,
		query,
		report.Category,
		report.Timeframe,
		reportJSON,
		string(report.Origin),
		fetchedAt,
	)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// GetReport retrieves the cached report for category and timeframe
func (s *TrendCacheStore) GetReport(ctx context.Context, category, timeframe string) (*CachedReport, error) {
	query := `
		SELECT report, fetched_at
		FROM trend_cache
		WHERE category = $1 AND timeframe = $2
	`

	var reportJSON []byte
	var cached CachedReport

	err := s.db.QueryRow(ctx, query, category, timeframe).Scan(&reportJSON, &cached.FetchedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error querying cached report: %w", err)
	}

	if err := json.Unmarshal(reportJSON, &cached.Report); err != nil {
		return nil, fmt.Errorf("error unmarshaling report: %w", err)
	}

	return &cached, nil
}

// DeleteOlderThan removes reports fetched before cutoff and returns how many were removed
func (s *TrendCacheStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM trend_cache WHERE fetched_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("error deleting cached reports: %w", err)
	}
	return tag.RowsAffected(), nil
}
