// internal/service/insight/analyzer.go

package insight

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"marketlens/internal/domain/market"
	"marketlens/internal/domain/supplier"
	"marketlens/internal/service/ranking"
	"marketlens/internal/service/sourcing"
)

// MarketData provides the trend and finance signals of an analysis
type MarketData interface {
	FetchMarketTrend(ctx context.Context, keyword string) market.TrendSeries
	FetchFinancialIndicator(ctx context.Context, keyword string) market.FinancialSummary
}

// BuzzSource provides the social signal of an analysis
type BuzzSource interface {
	FetchSocialBuzz(ctx context.Context, keyword string) market.BuzzReport
}

// SupplierMatcher selects candidate suppliers for a keyword
type SupplierMatcher interface {
	Match(ctx context.Context, keyword string) (sourcing.Match, error)
}

// Analysis is the full market picture for one business keyword
type Analysis struct {
	ID          string                    `json:"id"`
	Keyword     string                    `json:"keyword"`
	Preference  int                       `json:"preference"`
	Trend       market.TrendSeries        `json:"trend"`
	Finance     market.FinancialSummary   `json:"finance"`
	Buzz        market.BuzzReport         `json:"social"`
	Suppliers   []supplier.RankedSupplier `json:"suppliers"`
	AIMatched   bool                      `json:"ai_matched"`
	Comparison  ranking.ComparisonStats   `json:"comparison"`
	GeneratedAt time.Time                 `json:"generated_at"`
}

// Analyzer gathers every signal for a keyword and ranks its suppliers
type Analyzer struct {
	market  MarketData
	buzz    BuzzSource
	matcher SupplierMatcher
	now     func() time.Time
}

// NewAnalyzer creates a new analyzer
func NewAnalyzer(market MarketData, buzz BuzzSource, matcher SupplierMatcher) *Analyzer {
	return &Analyzer{
		market:  market,
		buzz:    buzz,
		matcher: matcher,
		now:     time.Now,
	}
}

// Analyze fetches the signals concurrently and ranks the matched suppliers
// under preference. Only a supplier lookup failure is returned as an error.
func (a *Analyzer) Analyze(ctx context.Context, keyword string, preference int) (*Analysis, error) {
	analysis := &Analysis{
		ID:         uuid.NewString(),
		Keyword:    keyword,
		Preference: ranking.ClampPreference(preference),
	}

	var match sourcing.Match
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		analysis.Trend = a.market.FetchMarketTrend(gctx, keyword)
		return nil
	})
	g.Go(func() error {
		analysis.Finance = a.market.FetchFinancialIndicator(gctx, keyword)
		return nil
	})
	g.Go(func() error {
		analysis.Buzz = a.buzz.FetchSocialBuzz(gctx, keyword)
		return nil
	})
	g.Go(func() error {
		var err error
		match, err = a.matcher.Match(gctx, keyword)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("error analyzing %q: %w", keyword, err)
	}

	analysis.Suppliers = ranking.RankSuppliers(match.Suppliers, preference)
	analysis.AIMatched = match.AIMatched
	analysis.Comparison = ranking.Summarize(analysis.Suppliers)
	analysis.GeneratedAt = a.now().UTC()

	return analysis, nil
}
