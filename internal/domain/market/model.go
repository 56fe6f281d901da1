package market

import (
	"fmt"
	"strings"
)

// Mode selects whether providers may call live data sources
type Mode string

const (
	// ModeLive attempts the live source first and simulates on failure
	ModeLive Mode = "live"
	// ModeSimulated never calls a live source
	ModeSimulated Mode = "simulated"
)

// ParseMode converts a configuration string into a Mode
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeLive:
		return ModeLive, nil
	case ModeSimulated, "cloud", "sim":
		return ModeSimulated, nil
	default:
		return "", fmt.Errorf("unknown market mode %q", s)
	}
}

// Origin records which producer built a result
type Origin string

const (
	OriginLive      Origin = "live"
	OriginSimulated Origin = "simulated"
)

// Sentiment classifies a sector keyword by growth
type Sentiment string

const (
	SentimentExploding Sentiment = "Exploding"
	SentimentRising    Sentiment = "Rising"
	SentimentStable    Sentiment = "Stable"
	SentimentVolatile  Sentiment = "Volatile"
)

// Direction is the net movement of a price series
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// TrendPoint is one sample of search interest
type TrendPoint struct {
	Date  string `json:"date"`
	Value int    `json:"value"`
}

// TrendSeries is an ordered interest-over-time series for one keyword
type TrendSeries struct {
	Keyword string       `json:"keyword"`
	Points  []TrendPoint `json:"points"`
	Origin  Origin       `json:"origin"`
}

// PricePoint is one daily closing price
type PricePoint struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

// FinancialSummary describes a proxy ticker over roughly one month
type FinancialSummary struct {
	Ticker        string       `json:"ticker"`
	CurrentPrice  float64      `json:"current_price"`
	Trend         Direction    `json:"trend"`
	ChangePercent float64      `json:"change_percent"`
	History       []PricePoint `json:"history"`
	Origin        Origin       `json:"origin"`
}

// SectorTrendItem is one ranked keyword in a sector report
type SectorTrendItem struct {
	Keyword   string    `json:"keyword"`
	Volume    string    `json:"volume"`
	Growth    float64   `json:"growth"`
	Sentiment Sentiment `json:"sentiment"`
	Rank      int       `json:"rank"`
}

// SectorReport is a set of items sorted by growth, ranks renumbered 1..N
type SectorReport struct {
	Category  string            `json:"category"`
	Timeframe string            `json:"timeframe"`
	Items     []SectorTrendItem `json:"items"`
	Origin    Origin            `json:"origin"`
}

// TrendingProduct is a suggested product name with a growth percentage.
// Growth is zero for the fixed product set used in simulated mode.
type TrendingProduct struct {
	Name   string `json:"name"`
	Growth int    `json:"growth,omitempty"`
}

// BuzzReport is the social engagement estimate for a keyword
type BuzzReport struct {
	Keyword          string            `json:"keyword"`
	Score            int               `json:"buzz_score"`
	Platforms        []string          `json:"platforms,omitempty"`
	TrendingProducts []TrendingProduct `json:"trending_products"`
	SentimentLabel   string            `json:"sentiment_label,omitempty"`
	Origin           Origin            `json:"origin"`
}

// MarqueeQuote is one entry of the dashboard ticker
type MarqueeQuote struct {
	Label   string `json:"label"`
	Symbol  string `json:"symbol"`
	Price   string `json:"price"`
	Change  string `json:"change"`
	Up      bool   `json:"up"`
	Neutral bool   `json:"neutral"`
}
