// cmd/api/main.go

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/nats-io/nats.go"

	"marketlens/internal/adapter/events"
	"marketlens/internal/adapter/quotes"
	"marketlens/internal/adapter/storage"
	"marketlens/internal/adapter/trends"
	"marketlens/internal/catalog"
	"marketlens/internal/config"
	"marketlens/internal/logger"
	"marketlens/internal/server"
	"marketlens/internal/service/analytics"
	"marketlens/internal/service/cache"
	"marketlens/internal/service/insight"
	marketService "marketlens/internal/service/market"
	"marketlens/internal/service/social"
	"marketlens/internal/service/sourcing"
	"marketlens/internal/service/warmer"
)

// cached sector reports older than this are pruned at startup
const cacheRetention = 7 * 24 * time.Hour

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger.Setup(cfg)
	log := slog.Default()

	cat, err := catalog.LoadFile(cfg.Market.CatalogPath)
	if err != nil {
		fatal("failed to load catalog", err)
	}

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Initialize dependencies
	db, err := initDatabase(ctx, cfg.Database)
	if err != nil {
		fatal("failed to initialize database", err)
	}
	defer db.Close()

	if err := storage.Migrate(ctx, db); err != nil {
		fatal("failed to migrate database", err)
	}

	// NATS is optional; without it nothing is published and the ticker
	// stream only sends snapshots
	var natsConn *nats.Conn
	if nc, err := events.Connect(cfg.NATS, log); err != nil {
		log.Warn("NATS unavailable, running without events", "error", err)
	} else {
		natsConn = nc
		defer natsConn.Drain()
	}

	// Live data sources
	trendsClient := trends.NewClient(trends.Config{
		BaseURL:  cfg.Market.TrendsBaseURL,
		Language: cfg.Market.Language,
		TZOffset: cfg.Market.TZOffset,
		Timeout:  cfg.Market.Timeout,
	})
	quotesClient := quotes.NewClient(quotes.Config{
		BaseURL: cfg.Market.QuotesBaseURL,
		Timeout: cfg.Market.Timeout,
	})

	// Initialize storage adapters
	supplierStore := storage.NewSupplierStore(db)
	trendCacheStore := storage.NewTrendCacheStore(db)

	// Initialize services
	provider := marketService.NewProvider(trendsClient, quotesClient, marketService.Config{
		Mode:    cfg.Market.Mode,
		Catalog: cat,
		Region:  cfg.Market.Region,
		Logger:  log,
	})
	engine := analytics.NewEngine(trendsClient, analytics.Config{
		Mode:    cfg.Market.Mode,
		Catalog: cat,
		Logger:  log,
	})
	estimator := social.NewEstimator(trendsClient, social.Config{
		Mode:    cfg.Market.Mode,
		Catalog: cat,
		Logger:  log,
	})
	matcher := sourcing.NewMatcher(supplierStore, log)
	analyzer := insight.NewAnalyzer(provider, estimator, matcher)

	services := server.Services{
		Market:    provider,
		Sectors:   engine,
		Buzz:      estimator,
		Matcher:   matcher,
		Analyzer:  analyzer,
		Suppliers: supplierStore,
		Logger:    log,
	}

	// Sector reports go through the cache when enabled
	refresh := engine.FetchSectorReport
	if cfg.Cache.Enabled {
		if n, err := trendCacheStore.DeleteOlderThan(ctx, time.Now().Add(-cacheRetention)); err != nil {
			log.Warn("failed to prune sector report cache", "error", err)
		} else if n > 0 {
			log.Info("pruned sector report cache", "removed", n)
		}

		sectorCache := cache.NewSectorReports(engine, trendCacheStore, cache.Config{
			TTL:    cfg.Cache.TTL,
			Logger: log,
		})
		services.Sectors = sectorCache
		refresh = sectorCache.Refresh
	}

	var publisher *events.Publisher
	if natsConn != nil {
		publisher = events.NewPublisher(natsConn, cfg.NATS.SubjectPrefix)
		services.Events = natsConn
		services.EventsSubject = publisher.AllSubjects()
	}

	// Start the warmer
	var marketWarmer *warmer.Warmer
	if cfg.Warmer.Enabled {
		var pub warmer.Publisher
		if publisher != nil {
			pub = publisher
		}

		marketWarmer, err = warmer.NewWarmer(refresh, provider, pub, warmer.Config{
			Schedule:   cfg.Warmer.Schedule,
			Categories: cfg.Warmer.Categories,
			Timeframe:  cfg.Warmer.Timeframe,
			Logger:     log,
		})
		if err != nil {
			fatal("failed to create warmer", err)
		}
		if err := marketWarmer.Start(ctx); err != nil {
			fatal("failed to start warmer", err)
		}
	}

	// Initialize HTTP server
	httpServer := server.NewServer(cfg.Server, services)

	// Start HTTP server
	go func() {
		log.Info("starting HTTP server",
			"host", cfg.Server.Host,
			"port", cfg.Server.Port,
			"mode", cfg.Market.Mode,
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fatal("HTTP server error", err)
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	log.Info("shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Shutdown HTTP server
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	// Stop warmer
	if marketWarmer != nil {
		if err := marketWarmer.Stop(shutdownCtx); err != nil {
			log.Error("warmer shutdown error", "error", err)
		}
	}

	log.Info("shutdown complete")
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}
