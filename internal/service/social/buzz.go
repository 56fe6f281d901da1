// internal/service/social/buzz.go

package social

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"marketlens/internal/catalog"
	"marketlens/internal/domain/market"
	"marketlens/internal/logger"
	"marketlens/internal/seed"
)

const (
	buzzTimeframe = "now 7-d"
	productCount  = 3
	productOffset = 5
	minScore      = 60
	maxScore      = 99
	highDemand    = 80
)

// Config holds social buzz estimator configuration
type Config struct {
	Mode    market.Mode
	Catalog *catalog.Catalog
	Logger  *slog.Logger
}

// Estimator derives a buzz score and trending product ideas from a week of
// search interest
type Estimator struct {
	interest market.InterestSource
	config   Config
	logger   *slog.Logger
}

// NewEstimator creates a new social buzz estimator
func NewEstimator(interest market.InterestSource, config Config) *Estimator {
	if config.Catalog == nil {
		config.Catalog = catalog.Default()
	}
	if config.Mode == "" {
		config.Mode = market.ModeLive
	}

	return &Estimator{
		interest: interest,
		config:   config,
		logger:   logger.Component(config.Logger, "social"),
	}
}

// FetchSocialBuzz estimates how much attention keyword is getting. The score
// is always within [60, 99].
func (e *Estimator) FetchSocialBuzz(ctx context.Context, keyword string) market.BuzzReport {
	producer := market.Producer[market.BuzzReport]{
		Fallback:  func(error) market.BuzzReport { return e.fallback(keyword) },
		Simulated: func() market.BuzzReport { return e.simulated(keyword) },
	}
	if e.interest != nil {
		producer.Live = func(ctx context.Context) (market.BuzzReport, error) {
			return e.live(ctx, keyword)
		}
	}

	return market.Resolve(ctx, e.config.Mode, producer, func(err error) {
		e.logger.Warn("live source failed, using simulated data", "keyword", keyword, "error", err)
	})
}

// simulated is the lightweight report used when live calls are disabled
func (e *Estimator) simulated(keyword string) market.BuzzReport {
	r := seed.New(keyword)

	products := make([]market.TrendingProduct, 0, len(e.config.Catalog.Buzz.SimulatedProducts))
	for _, name := range e.config.Catalog.Buzz.SimulatedProducts {
		products = append(products, market.TrendingProduct{Name: name})
	}

	return market.BuzzReport{
		Keyword:          keyword,
		Score:            seededScore(r),
		TrendingProducts: products,
		Origin:           market.OriginSimulated,
	}
}

func (e *Estimator) live(ctx context.Context, keyword string) (market.BuzzReport, error) {
	frame, err := e.interest.InterestOverTime(ctx, []string{keyword}, buzzTimeframe)
	if err != nil {
		return market.BuzzReport{}, fmt.Errorf("error fetching buzz interest for %q: %w", keyword, err)
	}

	var score int
	if values, ok := frame.Series(keyword); ok && !frame.Empty() {
		score = peakScore(values)
	} else {
		score = seededScore(seed.New(keyword))
	}

	label := "Rising Interest"
	if score > highDemand {
		label = "High Demand"
	}

	return market.BuzzReport{
		Keyword:          keyword,
		Score:            score,
		Platforms:        slices.Clone(e.config.Catalog.Buzz.Platforms),
		TrendingProducts: e.products(seed.FromValue(seed.Sum(keyword)+productOffset), keyword),
		SentimentLabel:   label,
		Origin:           market.OriginLive,
	}, nil
}

// fallback draws the score and products from one stream
func (e *Estimator) fallback(keyword string) market.BuzzReport {
	r := seed.New(keyword)
	score := seededScore(r)

	return market.BuzzReport{
		Keyword:          keyword,
		Score:            score,
		Platforms:        slices.Clone(e.config.Catalog.Buzz.FallbackPlatforms),
		TrendingProducts: e.products(r, keyword),
		SentimentLabel:   "Stable",
		Origin:           market.OriginSimulated,
	}
}

func (e *Estimator) products(r *rand.Rand, keyword string) []market.TrendingProduct {
	buzz := e.config.Catalog.Buzz
	// a Caser must not be shared between goroutines
	name := cases.Title(language.English).String(keyword)

	products := make([]market.TrendingProduct, 0, productCount)
	for range productCount {
		prefix := seed.Choice(r, buzz.Prefixes)
		suffix := seed.Choice(r, buzz.Suffixes)
		products = append(products, market.TrendingProduct{
			Name:   fmt.Sprintf("%s %s %s", prefix, name, suffix),
			Growth: seed.Between(r, 12, 85),
		})
	}
	return products
}

// peakScore scales the peak-to-average ratio so a flat week scores 60
func peakScore(values []int) int {
	var sum, peak int
	for _, v := range values {
		sum += v
		peak = max(peak, v)
	}

	avg := float64(sum) / float64(len(values))
	if avg <= 0 {
		avg = 1
	}

	score := int(float64(peak) / avg * 60)
	return min(max(score, minScore), maxScore)
}

func seededScore(r *rand.Rand) int {
	return seed.Between(r, 65, 98)
}
