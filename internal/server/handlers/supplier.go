// internal/server/handlers/supplier.go

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"marketlens/internal/domain/supplier"
	"marketlens/internal/service/insight"
	"marketlens/internal/service/ranking"
	"marketlens/internal/service/sourcing"
)

// SupplierMatcher selects candidate suppliers for a keyword
type SupplierMatcher interface {
	Match(ctx context.Context, keyword string) (sourcing.Match, error)
}

// SupplierLookup reads single suppliers
type SupplierLookup interface {
	GetSupplier(ctx context.Context, id int64) (*supplier.Supplier, error)
}

// KeywordAnalyzer builds a full keyword analysis
type KeywordAnalyzer interface {
	Analyze(ctx context.Context, keyword string, preference int) (*insight.Analysis, error)
}

// SupplierHandler handles supplier ranking and sourcing requests
type SupplierHandler struct {
	matcher  SupplierMatcher
	lookup   SupplierLookup
	analyzer KeywordAnalyzer
}

// NewSupplierHandler creates a new supplier handler. lookup may be nil when
// no store is configured.
func NewSupplierHandler(matcher SupplierMatcher, lookup SupplierLookup, analyzer KeywordAnalyzer) *SupplierHandler {
	return &SupplierHandler{
		matcher:  matcher,
		lookup:   lookup,
		analyzer: analyzer,
	}
}

// RankRequest is the body of a ranking request
type RankRequest struct {
	Suppliers  []supplier.Supplier `json:"suppliers"`
	Preference *int                `json:"preference,omitempty"`
}

// RankResponse is the result of a ranking request
type RankResponse struct {
	Preference int                       `json:"preference"`
	Suppliers  []supplier.RankedSupplier `json:"suppliers"`
	Comparison ranking.ComparisonStats   `json:"comparison"`
}

// RankSuppliers ranks the posted suppliers under the requested preference
func (h *SupplierHandler) RankSuppliers(w http.ResponseWriter, r *http.Request) {
	var req RankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	preference := ranking.DefaultPreference
	if req.Preference != nil {
		preference = *req.Preference
	}

	ranked := ranking.RankSuppliers(req.Suppliers, preference)
	respondWithJSON(w, http.StatusOK, RankResponse{
		Preference: ranking.ClampPreference(preference),
		Suppliers:  ranked,
		Comparison: ranking.Summarize(ranked),
	})
}

// MatchSuppliers returns candidate suppliers for ?keyword=
func (h *SupplierHandler) MatchSuppliers(w http.ResponseWriter, r *http.Request) {
	keyword, ok := requireKeyword(w, r)
	if !ok {
		return
	}

	match, err := h.matcher.Match(r.Context(), keyword)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to match suppliers", err)
		return
	}

	respondWithJSON(w, http.StatusOK, match)
}

// GetSupplier returns a single supplier by ID
func (h *SupplierHandler) GetSupplier(w http.ResponseWriter, r *http.Request) {
	if h.lookup == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Supplier store unavailable", nil)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid supplier ID", err)
		return
	}

	s, err := h.lookup.GetSupplier(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Supplier not found", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to get supplier", err)
		return
	}

	respondWithJSON(w, http.StatusOK, s)
}

// GetAnalysis returns the full analysis for ?keyword= under ?preference=
func (h *SupplierHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))
	if keyword == "" {
		respondWithError(w, http.StatusBadRequest, "Missing keyword", nil)
		return
	}

	preference, err := queryInt(r, "preference", ranking.DefaultPreference)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid preference", err)
		return
	}

	analysis, err := h.analyzer.Analyze(r.Context(), keyword, preference)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to analyze keyword", err)
		return
	}

	respondWithJSON(w, http.StatusOK, analysis)
}
