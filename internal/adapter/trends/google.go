// internal/adapter/trends/google.go

package trends

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"marketlens/internal/domain/market"
)

var (
	// ErrEmptyResponse is returned when the service answered without data
	ErrEmptyResponse = errors.New("empty trends data")
	// ErrRateLimited is returned on HTTP 429
	ErrRateLimited = errors.New("trends service rate limited")
)

const userAgent = "marketlens/1.0"

// Config holds Google Trends client configuration
type Config struct {
	BaseURL  string
	Language string
	// TZOffset is the timezone offset in minutes, as the explore API expects
	TZOffset int
	Timeout  time.Duration
}

// Client talks to the unofficial Google Trends JSON API
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	Language   string
	TZOffset   int
}

// NewClient creates a new Google Trends client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://trends.google.com"
	}
	if cfg.Language == "" {
		cfg.Language = "en-US"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		BaseURL:  cfg.BaseURL,
		Language: cfg.Language,
		TZOffset: cfg.TZOffset,
	}
}

type comparisonItem struct {
	Keyword string `json:"keyword"`
	Time    string `json:"time"`
	Geo     string `json:"geo"`
}

type exploreRequest struct {
	ComparisonItem []comparisonItem `json:"comparisonItem"`
	Category       int              `json:"category"`
	Property       string           `json:"property"`
}

type widget struct {
	ID      string          `json:"id"`
	Token   string          `json:"token"`
	Request json.RawMessage `json:"request"`
}

type exploreResponse struct {
	Widgets []widget `json:"widgets"`
}

type multilineResponse struct {
	Default struct {
		TimelineData []struct {
			Time  string `json:"time"`
			Value []int  `json:"value"`
		} `json:"timelineData"`
	} `json:"default"`
}

// InterestOverTime fetches interest for all keywords over timeframe in one batch
func (c *Client) InterestOverTime(ctx context.Context, keywords []string, timeframe string) (market.InterestFrame, error) {
	if len(keywords) == 0 {
		return market.InterestFrame{}, fmt.Errorf("at least one keyword is required")
	}

	w, err := c.timeseriesWidget(ctx, keywords, timeframe)
	if err != nil {
		return market.InterestFrame{}, err
	}

	params := c.baseParams()
	params.Set("req", string(w.Request))
	params.Set("token", w.Token)

	body, err := c.get(ctx, "/trends/api/widgetdata/multiline", params)
	if err != nil {
		return market.InterestFrame{}, err
	}

	var resp multilineResponse
	if err := json.Unmarshal(stripGuard(body), &resp); err != nil {
		return market.InterestFrame{}, fmt.Errorf("failed to decode interest response: %w", err)
	}

	timeline := resp.Default.TimelineData
	if len(timeline) == 0 {
		return market.InterestFrame{}, ErrEmptyResponse
	}

	frame := market.InterestFrame{
		Dates:  make([]time.Time, 0, len(timeline)),
		Values: make(map[string][]int, len(keywords)),
	}
	for _, point := range timeline {
		secs, err := strconv.ParseInt(point.Time, 10, 64)
		if err != nil {
			return market.InterestFrame{}, fmt.Errorf("invalid timeline timestamp %q: %w", point.Time, err)
		}
		if len(point.Value) < len(keywords) {
			return market.InterestFrame{}, fmt.Errorf("timeline point has %d values for %d keywords", len(point.Value), len(keywords))
		}

		frame.Dates = append(frame.Dates, time.Unix(secs, 0).UTC())
		for i, kw := range keywords {
			frame.Values[kw] = append(frame.Values[kw], point.Value[i])
		}
	}

	return frame, nil
}

// timeseriesWidget runs the explore call and returns the TIMESERIES widget
func (c *Client) timeseriesWidget(ctx context.Context, keywords []string, timeframe string) (*widget, error) {
	req := exploreRequest{Property: ""}
	for _, kw := range keywords {
		req.ComparisonItem = append(req.ComparisonItem, comparisonItem{Keyword: kw, Time: timeframe})
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode explore request: %w", err)
	}

	params := c.baseParams()
	params.Set("req", string(payload))

	body, err := c.get(ctx, "/trends/api/explore", params)
	if err != nil {
		return nil, err
	}

	var resp exploreResponse
	if err := json.Unmarshal(stripGuard(body), &resp); err != nil {
		return nil, fmt.Errorf("failed to decode explore response: %w", err)
	}

	for i := range resp.Widgets {
		if resp.Widgets[i].ID == "TIMESERIES" {
			return &resp.Widgets[i], nil
		}
	}
	return nil, fmt.Errorf("explore response has no TIMESERIES widget: %w", ErrEmptyResponse)
}

type rssFeed struct {
	Channel struct {
		Items []struct {
			Title string `xml:"title"`
		} `xml:"item"`
	} `xml:"channel"`
}

// TrendingSearches fetches today's trending searches for a region code such as "US"
func (c *Client) TrendingSearches(ctx context.Context, region string) ([]string, error) {
	if region == "" {
		region = "US"
	}

	params := url.Values{}
	params.Set("geo", region)

	body, err := c.get(ctx, "/trending/rss", params)
	if err != nil {
		return nil, err
	}

	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("failed to decode trending feed: %w", err)
	}

	var titles []string
	for _, item := range feed.Channel.Items {
		if item.Title != "" {
			titles = append(titles, item.Title)
		}
	}
	if len(titles) == 0 {
		return nil, ErrEmptyResponse
	}
	return titles, nil
}

func (c *Client) baseParams() url.Values {
	params := url.Values{}
	params.Set("hl", c.Language)
	params.Set("tz", strconv.Itoa(c.TZOffset))
	return params
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	endpoint := c.BaseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to trends API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trends API returned status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read trends response: %w", err)
	}
	return body, nil
}

// stripGuard removes the anti-JSON-hijacking prefix Google puts before payloads
func stripGuard(body []byte) []byte {
	if i := bytes.IndexByte(body, '{'); i >= 0 {
		return body[i:]
	}
	return body
}
