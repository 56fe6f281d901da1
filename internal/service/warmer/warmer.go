// internal/service/warmer/warmer.go

package warmer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"marketlens/internal/domain/market"
	"marketlens/internal/logger"
)

// ReportFunc builds a fresh sector report
type ReportFunc func(ctx context.Context, category, timeframe string) market.SectorReport

// MarqueeSource provides marquee snapshots
type MarqueeSource interface {
	FetchMarquee(ctx context.Context) []market.MarqueeQuote
}

// Publisher broadcasts refreshed data
type Publisher interface {
	PublishSectorReport(report market.SectorReport) error
	PublishMarquee(quotes []market.MarqueeQuote) error
}

// Config holds warmer configuration
type Config struct {
	Schedule   string
	Categories []string
	Timeframe  string
	// RunTimeout bounds a single refresh run
	RunTimeout time.Duration
	Logger     *slog.Logger
}

// Warmer periodically refreshes sector reports and the marquee, and
// publishes the results
type Warmer struct {
	reports   ReportFunc
	marquee   MarqueeSource
	publisher Publisher
	config    Config
	logger    *slog.Logger
	cron      *cron.Cron
	running   sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewWarmer creates a new warmer. publisher and marquee may be nil.
func NewWarmer(reports ReportFunc, marquee MarqueeSource, publisher Publisher, config Config) (*Warmer, error) {
	if reports == nil {
		return nil, fmt.Errorf("report function is required")
	}
	if config.RunTimeout <= 0 {
		config.RunTimeout = 2 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Warmer{
		reports:   reports,
		marquee:   marquee,
		publisher: publisher,
		config:    config,
		logger:    logger.Component(config.Logger, "warmer"),
		cron:      cron.New(),
		ctx:       ctx,
		cancel:    cancel,
	}

	if _, err := w.cron.AddFunc(config.Schedule, w.tick); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid warmer schedule %q: %w", config.Schedule, err)
	}

	return w, nil
}

// Start begins the schedule and runs one refresh in the background
func (w *Warmer) Start(ctx context.Context) error {
	w.cron.Start()
	go w.tick()

	w.logger.Info("warmer started", "schedule", w.config.Schedule, "categories", w.config.Categories)
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish
func (w *Warmer) Stop(ctx context.Context) error {
	w.cancel()
	done := w.cron.Stop()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// tick skips the run if the previous one is still in progress
func (w *Warmer) tick() {
	if !w.running.TryLock() {
		w.logger.Debug("previous refresh still running, skipping")
		return
	}
	defer w.running.Unlock()

	ctx, cancel := context.WithTimeout(w.ctx, w.config.RunTimeout)
	defer cancel()

	w.RunOnce(ctx)
}

// RunOnce refreshes every configured category and the marquee
func (w *Warmer) RunOnce(ctx context.Context) {
	for _, category := range w.config.Categories {
		if ctx.Err() != nil {
			return
		}

		report := w.reports(ctx, category, w.config.Timeframe)
		w.logger.Debug("refreshed sector report",
			"category", report.Category,
			"items", len(report.Items),
			"origin", report.Origin,
		)

		if w.publisher != nil {
			if err := w.publisher.PublishSectorReport(report); err != nil {
				w.logger.Warn("failed to publish sector report", "category", report.Category, "error", err)
			}
		}
	}

	if w.marquee == nil || ctx.Err() != nil {
		return
	}

	quotes := w.marquee.FetchMarquee(ctx)
	if w.publisher != nil && len(quotes) > 0 {
		if err := w.publisher.PublishMarquee(quotes); err != nil {
			w.logger.Warn("failed to publish marquee", "error", err)
		}
	}
}
