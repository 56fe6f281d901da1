// internal/server/handlers/market.go

package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"marketlens/internal/domain/market"
)

// MarketData serves trend, finance, marquee and trending-search signals
type MarketData interface {
	FetchMarketTrend(ctx context.Context, keyword string) market.TrendSeries
	FetchFinancialIndicator(ctx context.Context, keyword string) market.FinancialSummary
	FetchMarquee(ctx context.Context) []market.MarqueeQuote
	FetchTrendingSearches(ctx context.Context) []string
}

// SectorReports serves ranked sector reports
type SectorReports interface {
	FetchSectorReport(ctx context.Context, category, timeframe string) market.SectorReport
}

// SocialBuzz serves buzz estimates
type SocialBuzz interface {
	FetchSocialBuzz(ctx context.Context, keyword string) market.BuzzReport
}

// MarketHandler handles market signal HTTP requests
type MarketHandler struct {
	market  MarketData
	sectors SectorReports
	buzz    SocialBuzz
}

// NewMarketHandler creates a new market handler
func NewMarketHandler(market MarketData, sectors SectorReports, buzz SocialBuzz) *MarketHandler {
	return &MarketHandler{
		market:  market,
		sectors: sectors,
		buzz:    buzz,
	}
}

// GetTrend returns twelve months of interest for ?keyword=
func (h *MarketHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	keyword, ok := requireKeyword(w, r)
	if !ok {
		return
	}

	respondWithJSON(w, http.StatusOK, h.market.FetchMarketTrend(r.Context(), keyword))
}

// GetFinance returns the financial indicator for ?keyword=, defaulting to global
func (h *MarketHandler) GetFinance(w http.ResponseWriter, r *http.Request) {
	keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))
	respondWithJSON(w, http.StatusOK, h.market.FetchFinancialIndicator(r.Context(), keyword))
}

// GetMarquee returns the dashboard ticker
func (h *MarketHandler) GetMarquee(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.market.FetchMarquee(r.Context()))
}

// GetTrendingSearches returns today's top searches
func (h *MarketHandler) GetTrendingSearches(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.market.FetchTrendingSearches(r.Context()))
}

// GetSectorReport returns the ranked report for {category} over ?timeframe=
func (h *MarketHandler) GetSectorReport(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	timeframe := r.URL.Query().Get("timeframe")

	respondWithJSON(w, http.StatusOK, h.sectors.FetchSectorReport(r.Context(), category, timeframe))
}

// GetSocialBuzz returns the buzz estimate for ?keyword=
func (h *MarketHandler) GetSocialBuzz(w http.ResponseWriter, r *http.Request) {
	keyword, ok := requireKeyword(w, r)
	if !ok {
		return
	}

	respondWithJSON(w, http.StatusOK, h.buzz.FetchSocialBuzz(r.Context(), keyword))
}

func requireKeyword(w http.ResponseWriter, r *http.Request) (string, bool) {
	keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))
	if keyword == "" {
		respondWithError(w, http.StatusBadRequest, "Missing keyword", nil)
		return "", false
	}
	return keyword, true
}
