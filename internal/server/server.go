// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"marketlens/internal/config"
	"marketlens/internal/server/handlers"
)

// Services are the components exposed over HTTP
type Services struct {
	Market   handlers.MarketData
	Sectors  handlers.SectorReports
	Buzz     handlers.SocialBuzz
	Matcher  handlers.SupplierMatcher
	Analyzer handlers.KeywordAnalyzer

	// Suppliers may be nil when no store is configured
	Suppliers handlers.SupplierLookup

	// Events may be nil when NATS is unavailable
	Events        handlers.Subscriber
	EventsSubject string

	Logger *slog.Logger
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(cfg config.ServerConfig, svc Services) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	marketHandler := handlers.NewMarketHandler(svc.Market, svc.Sectors, svc.Buzz)
	supplierHandler := handlers.NewSupplierHandler(svc.Matcher, svc.Suppliers, svc.Analyzer)

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		// API version
		r.Route("/v1", func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			// Market signals API
			r.Route("/market", func(r chi.Router) {
				r.Get("/trend", marketHandler.GetTrend)
				r.Get("/finance", marketHandler.GetFinance)
				r.Get("/marquee", marketHandler.GetMarquee)
				r.Get("/trending", marketHandler.GetTrendingSearches)
				r.Get("/sectors/{category}", marketHandler.GetSectorReport)
				r.Get("/buzz", marketHandler.GetSocialBuzz)
			})

			// Suppliers API
			r.Route("/suppliers", func(r chi.Router) {
				r.Post("/rank", supplierHandler.RankSuppliers)
				r.Get("/match", supplierHandler.MatchSuppliers)
				r.Get("/{id}", supplierHandler.GetSupplier)
			})

			r.Get("/analysis", supplierHandler.GetAnalysis)
		})
	})

	// WebSocket endpoint for the live ticker
	router.Get("/ws/marquee", handlers.MarqueeWebSocketHandler(svc.Events, svc.EventsSubject, svc.Market, svc.Logger))

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
