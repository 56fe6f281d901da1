// internal/service/analytics/engine.go

package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"marketlens/internal/catalog"
	"marketlens/internal/domain/market"
	"marketlens/internal/logger"
	"marketlens/internal/seed"
)

// CategoryAll selects the cross-sector macro view
const CategoryAll = "all"

// DefaultTimeframe is used when no timeframe is given
const DefaultTimeframe = "today 1-m"

const window = 7

// ErrMissingSeries is returned when a live frame lacks a requested keyword
var ErrMissingSeries = errors.New("keyword missing from interest frame")

var timeframeAliases = map[string]string{
	"7d":  "now 7-d",
	"30d": "today 1-m",
	"90d": "today 3-m",
	"12m": "today 12-m",
}

// Config holds trend analytics configuration
type Config struct {
	Mode    market.Mode
	Catalog *catalog.Catalog
	Logger  *slog.Logger
}

// Engine builds ranked sector reports from batched search interest
type Engine struct {
	interest market.InterestSource
	config   Config
	logger   *slog.Logger
}

// NewEngine creates a new trend analytics engine
func NewEngine(interest market.InterestSource, config Config) *Engine {
	if config.Catalog == nil {
		config.Catalog = catalog.Default()
	}
	if config.Mode == "" {
		config.Mode = market.ModeLive
	}

	return &Engine{
		interest: interest,
		config:   config,
		logger:   logger.Component(config.Logger, "analytics"),
	}
}

// NormalizeCategory lower-cases category and maps empty input to CategoryAll
func NormalizeCategory(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return CategoryAll
	}
	return category
}

// NormalizeTimeframe expands short aliases such as "7d" and defaults empty
// input to one month. Anything else is passed through unchanged.
func NormalizeTimeframe(timeframe string) string {
	timeframe = strings.TrimSpace(timeframe)
	if timeframe == "" {
		return DefaultTimeframe
	}
	if tf, ok := timeframeAliases[strings.ToLower(timeframe)]; ok {
		return tf
	}
	return timeframe
}

// FetchSectorReport returns the sector's keywords ranked by growth. Items are
// sorted by growth, highest first, with ranks 1..N.
func (e *Engine) FetchSectorReport(ctx context.Context, category, timeframe string) market.SectorReport {
	category = NormalizeCategory(category)
	timeframe = NormalizeTimeframe(timeframe)

	producer := market.Producer[market.SectorReport]{
		Fallback: func(error) market.SectorReport {
			return e.simulate(category, timeframe)
		},
	}
	if e.interest != nil {
		producer.Live = func(ctx context.Context) (market.SectorReport, error) {
			return e.live(ctx, category, timeframe)
		}
	}

	report := market.Resolve(ctx, e.config.Mode, producer, func(err error) {
		e.logger.Warn("live source failed, using simulated data",
			"category", category,
			"timeframe", timeframe,
			"error", err,
		)
	})
	rankItems(report.Items)
	return report
}

// Keywords returns the keywords queried live for category
func (e *Engine) Keywords(category string) []string {
	cat := e.config.Catalog

	if category == CategoryAll {
		kws := append([]string(nil), cat.MacroKeywords...)
		for _, s := range cat.Sectors {
			kws = append(kws, s.Keywords[0])
		}
		return kws
	}
	if s, ok := cat.Sector(category); ok {
		return append([]string(nil), s.Keywords...)
	}
	return append([]string(nil), cat.DefaultKeywords...)
}

func (e *Engine) live(ctx context.Context, category, timeframe string) (market.SectorReport, error) {
	keywords := e.Keywords(category)

	frame, err := e.interest.InterestOverTime(ctx, keywords, timeframe)
	if err != nil {
		return market.SectorReport{}, fmt.Errorf("error fetching sector interest: %w", err)
	}
	if frame.Empty() {
		return market.SectorReport{}, fmt.Errorf("empty interest frame for %s", category)
	}

	items := make([]market.SectorTrendItem, 0, len(keywords))
	for _, kw := range keywords {
		values, ok := frame.Series(kw)
		if !ok {
			return market.SectorReport{}, fmt.Errorf("%w: %s", ErrMissingSeries, kw)
		}
		items = append(items, liveItem(kw, values))
	}

	return market.SectorReport{
		Category:  category,
		Timeframe: timeframe,
		Items:     items,
		Origin:    market.OriginLive,
	}, nil
}

func liveItem(keyword string, values []int) market.SectorTrendItem {
	head := values[:min(window, len(values))]
	tail := values[max(0, len(values)-window):]

	start := mean(head)
	end := mean(tail)
	base := start
	if base <= 0 {
		base = 1
	}
	growth := round((end-start)/base*100, 1)

	return market.SectorTrendItem{
		Keyword:   keyword,
		Volume:    humanize.Comma(int64(mean(values)*2000 + 1000)),
		Growth:    growth,
		Sentiment: liveSentiment(growth),
	}
}

func liveSentiment(growth float64) market.Sentiment {
	switch {
	case growth > 30:
		return market.SentimentExploding
	case growth > 5:
		return market.SentimentRising
	case growth < -5:
		return market.SentimentVolatile
	default:
		return market.SentimentStable
	}
}

func (e *Engine) simulate(category, timeframe string) market.SectorReport {
	report := market.SectorReport{
		Category:  category,
		Timeframe: timeframe,
		Origin:    market.OriginSimulated,
	}

	if category == CategoryAll {
		for _, m := range e.config.Catalog.MacroFallback {
			report.Items = append(report.Items, market.SectorTrendItem{
				Keyword:   m.Keyword,
				Volume:    humanize.Comma(m.Volume),
				Growth:    m.Growth,
				Sentiment: market.Sentiment(m.Sentiment),
			})
		}
		return report
	}

	for _, word := range e.simulatedKeywords(category) {
		// each keyword draws from its own stream so reports differ per category
		r := seed.New(category + word)
		growth := r.IntN(150) - 10
		volume := int64(r.IntN(140)+10) * 1000

		report.Items = append(report.Items, market.SectorTrendItem{
			Keyword:   word,
			Volume:    humanize.Comma(volume),
			Growth:    float64(growth),
			Sentiment: simulatedSentiment(growth),
		})
	}
	return report
}

func (e *Engine) simulatedKeywords(category string) []string {
	cat := e.config.Catalog
	if s, ok := cat.Sector(category); ok {
		return s.Keywords[:min(cat.SimulatedSectorSize, len(s.Keywords))]
	}
	return cat.SimulatedDefaultKeywords
}

func simulatedSentiment(growth int) market.Sentiment {
	switch {
	case growth > 40:
		return market.SentimentExploding
	case growth > 0:
		return market.SentimentRising
	case growth > -10:
		return market.SentimentStable
	default:
		return market.SentimentVolatile
	}
}

// rankItems sorts by growth, highest first, keeping input order on ties,
// then numbers the items from 1
func rankItems(items []market.SectorTrendItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Growth > items[j].Growth
	})
	for i := range items {
		items[i].Rank = i + 1
	}
}

func mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum int
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
