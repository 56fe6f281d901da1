// internal/adapter/quotes/yahoo.go

package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"marketlens/internal/domain/market"
)

// ErrNoData is returned when the chart API has no closes for a ticker
var ErrNoData = errors.New("no price data")

// Config holds Yahoo Finance client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client handles interactions with the Yahoo Finance chart API
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// NewClient creates a new Yahoo Finance client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://query1.finance.yahoo.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		BaseURL: cfg.BaseURL,
	}
}

// DailyCloses fetches daily closing prices for ticker over period (e.g. "1mo", "5d").
// Sessions without a close are skipped.
func (c *Client) DailyCloses(ctx context.Context, ticker string, period string) ([]market.PricePoint, error) {
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	if period == "" {
		period = "1mo"
	}

	params := url.Values{}
	params.Set("range", period)
	params.Set("interval", "1d")
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.BaseURL, url.PathEscape(ticker), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "marketlens/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to quotes API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quotes API returned status code %d for %s", resp.StatusCode, ticker)
	}

	var chart chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, fmt.Errorf("failed to decode quotes response: %w", err)
	}

	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("quotes API error for %s: %s", ticker, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, ErrNoData
	}

	result := chart.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close

	var points []market.PricePoint
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		points = append(points, market.PricePoint{
			Date:  time.Unix(ts, 0).UTC().Format(time.DateOnly),
			Close: *closes[i],
		})
	}

	if len(points) == 0 {
		return nil, ErrNoData
	}
	return points, nil
}
