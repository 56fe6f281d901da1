// internal/service/market/provider.go

package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"marketlens/internal/catalog"
	domain "marketlens/internal/domain/market"
	"marketlens/internal/logger"
	"marketlens/internal/seed"
)

const (
	trendTimeframe  = "today 12-m"
	financePeriod   = "1mo"
	marqueePeriod   = "5d"
	trendPoints     = 12
	trendSpacing    = 30
	historyDays     = 30
	trendingLimit   = 5
	defaultKeyword  = "global"
	stableThreshold = 0.0001
)

// ErrEmptySeries is returned by live producers that got no usable samples
var ErrEmptySeries = errors.New("empty series")

// Config holds market data provider configuration
type Config struct {
	Mode    domain.Mode
	Catalog *catalog.Catalog
	Region  string
	Logger  *slog.Logger
	Now     func() time.Time
}

// Provider fetches trend and financial signals with simulated fallbacks.
// It is safe for concurrent use.
type Provider struct {
	interest domain.InterestSource
	quotes   domain.QuoteSource
	config   Config
	logger   *slog.Logger
}

// NewProvider creates a new market data provider. Either source may be nil,
// in which case the matching operations always simulate.
func NewProvider(interest domain.InterestSource, quotes domain.QuoteSource, config Config) *Provider {
	if config.Catalog == nil {
		config.Catalog = catalog.Default()
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Mode == "" {
		config.Mode = domain.ModeLive
	}

	return &Provider{
		interest: interest,
		quotes:   quotes,
		config:   config,
		logger:   logger.Component(config.Logger, "market"),
	}
}

// Mode returns the mode the provider was built with
func (p *Provider) Mode() domain.Mode {
	return p.config.Mode
}

// FetchMarketTrend returns twelve months of search interest for keyword
func (p *Provider) FetchMarketTrend(ctx context.Context, keyword string) domain.TrendSeries {
	producer := domain.Producer[domain.TrendSeries]{
		Fallback: func(error) domain.TrendSeries {
			return p.simulateTrend(keyword)
		},
	}
	if p.interest != nil {
		producer.Live = func(ctx context.Context) (domain.TrendSeries, error) {
			return p.liveTrend(ctx, keyword)
		}
	}

	return domain.Resolve(ctx, p.config.Mode, producer, p.warn("market_trend", keyword))
}

func (p *Provider) liveTrend(ctx context.Context, keyword string) (domain.TrendSeries, error) {
	frame, err := p.interest.InterestOverTime(ctx, []string{keyword}, trendTimeframe)
	if err != nil {
		return domain.TrendSeries{}, fmt.Errorf("error fetching interest for %q: %w", keyword, err)
	}

	values, ok := frame.Series(keyword)
	if frame.Empty() || !ok {
		return domain.TrendSeries{}, ErrEmptySeries
	}

	points := make([]domain.TrendPoint, 0, len(values))
	for i, v := range values {
		if i >= len(frame.Dates) {
			break
		}
		points = append(points, domain.TrendPoint{
			Date:  frame.Dates[i].Format(time.DateOnly),
			Value: v,
		})
	}

	return domain.TrendSeries{Keyword: keyword, Points: points, Origin: domain.OriginLive}, nil
}

// simulateTrend builds twelve monthly points ending thirty days ago
func (p *Provider) simulateTrend(keyword string) domain.TrendSeries {
	r := seed.New(keyword)
	now := p.config.Now()

	points := make([]domain.TrendPoint, 0, trendPoints)
	for i := trendPoints; i >= 1; i-- {
		points = append(points, domain.TrendPoint{
			Date:  now.AddDate(0, 0, -i*trendSpacing).Format(time.DateOnly),
			Value: seed.Between(r, 40, 95),
		})
	}

	return domain.TrendSeries{Keyword: keyword, Points: points, Origin: domain.OriginSimulated}
}

// FetchFinancialIndicator returns about one month of closes for the proxy
// ticker of keyword. An empty keyword means "global".
func (p *Provider) FetchFinancialIndicator(ctx context.Context, keyword string) domain.FinancialSummary {
	if keyword == "" {
		keyword = defaultKeyword
	}
	ticker := p.config.Catalog.TickerFor(keyword)

	producer := domain.Producer[domain.FinancialSummary]{
		Fallback: func(error) domain.FinancialSummary {
			return p.simulateFinance(keyword)
		},
	}
	if p.quotes != nil {
		producer.Live = func(ctx context.Context) (domain.FinancialSummary, error) {
			closes, err := p.quotes.DailyCloses(ctx, ticker, financePeriod)
			if err != nil {
				return domain.FinancialSummary{}, fmt.Errorf("error fetching closes for %s: %w", ticker, err)
			}
			if len(closes) == 0 {
				return domain.FinancialSummary{}, ErrEmptySeries
			}
			return summarizeCloses(ticker, closes), nil
		}
	}

	return domain.Resolve(ctx, p.config.Mode, producer, p.warn("financial_indicator", keyword))
}

func summarizeCloses(ticker string, closes []domain.PricePoint) domain.FinancialSummary {
	history := make([]domain.PricePoint, len(closes))
	for i, c := range closes {
		history[i] = domain.PricePoint{Date: c.Date, Close: round(c.Close, 2)}
	}

	start := closes[0].Close
	end := closes[len(closes)-1].Close

	return summary(ticker, history, start, end, domain.OriginLive)
}

// simulateFinance walks a seeded price for 31 days with a slight upward bias
func (p *Provider) simulateFinance(keyword string) domain.FinancialSummary {
	r := seed.New(keyword)
	now := p.config.Now()

	price := float64(50+r.IntN(150)) + r.Float64()
	volatility := r.Float64() * 2

	history := make([]domain.PricePoint, 0, historyDays+1)
	for i := historyDays; i >= 0; i-- {
		price += (r.Float64() - 0.45) * volatility
		history = append(history, domain.PricePoint{
			Date:  now.AddDate(0, 0, -i).Format(time.DateOnly),
			Close: round(price, 2),
		})
	}

	// the walk is measured from the first rounded close to the exact final price
	return summary(p.config.Catalog.SimulatedTicker, history, history[0].Close, price, domain.OriginSimulated)
}

func summary(ticker string, history []domain.PricePoint, start, end float64, origin domain.Origin) domain.FinancialSummary {
	base := start
	if base == 0 {
		base = 1
	}
	change := (end - start) / base * 100

	trend := domain.DirectionDown
	if change > 0 {
		trend = domain.DirectionUp
	}

	return domain.FinancialSummary{
		Ticker:        ticker,
		CurrentPrice:  round(end, 2),
		Trend:         trend,
		ChangePercent: round(math.Abs(change), 2),
		History:       history,
		Origin:        origin,
	}
}

// FetchMarquee returns the latest move of each marquee symbol. Symbols that
// fail are skipped; simulated mode returns an empty list.
func (p *Provider) FetchMarquee(ctx context.Context) []domain.MarqueeQuote {
	producer := domain.Producer[[]domain.MarqueeQuote]{
		Fallback: func(error) []domain.MarqueeQuote {
			return []domain.MarqueeQuote{}
		},
	}
	if p.quotes != nil {
		producer.Live = p.liveMarquee
	}

	return domain.Resolve(ctx, p.config.Mode, producer, p.warn("marquee", ""))
}

func (p *Provider) liveMarquee(ctx context.Context) ([]domain.MarqueeQuote, error) {
	quotes := make([]domain.MarqueeQuote, 0, len(p.config.Catalog.Marquee))
	for _, sym := range p.config.Catalog.Marquee {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		closes, err := p.quotes.DailyCloses(ctx, sym.Symbol, marqueePeriod)
		if err != nil || len(closes) == 0 {
			p.logger.Debug("skipping marquee symbol", "symbol", sym.Symbol, "error", err)
			continue
		}

		quotes = append(quotes, marqueeQuote(sym, closes))
	}
	return quotes, nil
}

func marqueeQuote(sym catalog.MarqueeSymbol, closes []domain.PricePoint) domain.MarqueeQuote {
	current := closes[len(closes)-1].Close
	prev := current
	if len(closes) >= 2 {
		prev = closes[len(closes)-2].Close
	}

	var change float64
	if prev != 0 {
		change = (current - prev) / prev * 100
	}

	neutral := math.Abs(change) < stableThreshold
	label := fmt.Sprintf("%+.2f%%", change)
	if neutral {
		label = "STABLE"
	}

	return domain.MarqueeQuote{
		Label:   sym.Label,
		Symbol:  sym.Symbol,
		Price:   humanize.FormatFloat("#,###.##", current),
		Change:  label,
		Up:      change > 0,
		Neutral: neutral,
	}
}

// FetchTrendingSearches returns up to five of today's top searches
func (p *Provider) FetchTrendingSearches(ctx context.Context) []string {
	producer := domain.Producer[[]string]{
		Fallback: func(error) []string {
			return append([]string(nil), p.config.Catalog.TrendingFallback...)
		},
	}
	if p.interest != nil {
		producer.Live = func(ctx context.Context) ([]string, error) {
			titles, err := p.interest.TrendingSearches(ctx, p.config.Region)
			if err != nil {
				return nil, fmt.Errorf("error fetching trending searches: %w", err)
			}
			if len(titles) == 0 {
				return nil, ErrEmptySeries
			}
			if len(titles) > trendingLimit {
				titles = titles[:trendingLimit]
			}
			return titles, nil
		}
	}

	return domain.Resolve(ctx, p.config.Mode, producer, p.warn("trending_searches", ""))
}

func (p *Provider) warn(operation, keyword string) func(error) {
	return func(err error) {
		p.logger.Warn("live source failed, using simulated data",
			"operation", operation,
			"keyword", keyword,
			"error", err,
		)
	}
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
