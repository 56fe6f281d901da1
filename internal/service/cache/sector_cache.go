// internal/service/cache/sector_cache.go

package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"marketlens/internal/adapter/storage"
	"marketlens/internal/domain/market"
	"marketlens/internal/logger"
	"marketlens/internal/service/analytics"
)

// ReportStore persists sector reports
type ReportStore interface {
	GetReport(ctx context.Context, category, timeframe string) (*storage.CachedReport, error)
	SaveReport(ctx context.Context, report market.SectorReport, fetchedAt time.Time) error
}

// ReportSource builds fresh sector reports
type ReportSource interface {
	FetchSectorReport(ctx context.Context, category, timeframe string) market.SectorReport
}

// Config holds sector report cache configuration
type Config struct {
	TTL    time.Duration
	Logger *slog.Logger
	Now    func() time.Time
}

// SectorReports is a read-through cache over a report source. Store
// failures are logged and bypassed, so callers always get a report.
type SectorReports struct {
	source ReportSource
	store  ReportStore
	config Config
	logger *slog.Logger
}

// NewSectorReports creates a new sector report cache
func NewSectorReports(source ReportSource, store ReportStore, config Config) *SectorReports {
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.TTL <= 0 {
		config.TTL = 30 * time.Minute
	}

	return &SectorReports{
		source: source,
		store:  store,
		config: config,
		logger: logger.Component(config.Logger, "cache"),
	}
}

// FetchSectorReport returns a cached report younger than the TTL, or builds
// and stores a fresh one
func (c *SectorReports) FetchSectorReport(ctx context.Context, category, timeframe string) market.SectorReport {
	category = analytics.NormalizeCategory(category)
	timeframe = analytics.NormalizeTimeframe(timeframe)

	cached, err := c.store.GetReport(ctx, category, timeframe)
	switch {
	case err == nil && c.config.Now().Sub(cached.FetchedAt) < c.config.TTL:
		return cached.Report
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		c.logger.Warn("cache read failed", "category", category, "timeframe", timeframe, "error", err)
	}

	return c.Refresh(ctx, category, timeframe)
}

// Refresh builds a fresh report and stores it. Simulated reports are not
// stored so the next read retries the live source.
func (c *SectorReports) Refresh(ctx context.Context, category, timeframe string) market.SectorReport {
	report := c.source.FetchSectorReport(ctx, category, timeframe)
	if report.Origin != market.OriginLive {
		return report
	}

	if err := c.store.SaveReport(ctx, report, c.config.Now()); err != nil {
		c.logger.Warn("cache write failed", "category", report.Category, "timeframe", report.Timeframe, "error", err)
	}
	return report
}
