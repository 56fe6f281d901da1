// internal/domain/market/source.go

package market

import (
	"context"
	"time"
)

// InterestFrame holds interest-over-time samples for one or more keywords.
// Values[k][i] is the interest of keyword k at Dates[i].
type InterestFrame struct {
	Dates  []time.Time
	Values map[string][]int
}

// Empty reports whether the frame carries no samples
func (f InterestFrame) Empty() bool {
	return len(f.Dates) == 0 || len(f.Values) == 0
}

// Series returns the samples for keyword and whether it was present
func (f InterestFrame) Series(keyword string) ([]int, bool) {
	v, ok := f.Values[keyword]
	return v, ok && len(v) > 0
}

// InterestSource defines a live search-interest data source
type InterestSource interface {
	// InterestOverTime returns interest for all keywords over the timeframe in one call
	InterestOverTime(ctx context.Context, keywords []string, timeframe string) (InterestFrame, error)

	// TrendingSearches returns today's top searches for a region
	TrendingSearches(ctx context.Context, region string) ([]string, error)
}

// QuoteSource defines a live financial quotes data source
type QuoteSource interface {
	// DailyCloses returns daily closing prices for ticker over a range such as "1mo" or "5d"
	DailyCloses(ctx context.Context, ticker string, period string) ([]PricePoint, error)
}
