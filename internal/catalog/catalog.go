// internal/catalog/catalog.go

// Package catalog holds the static reference data shared by the market data,
// sector analytics and buzz services: the keyword to ticker table, sector
// keyword lists, the curated macro fallback and marquee symbols.
package catalog

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultYAML []byte

// TickerRule maps a keyword fragment to a proxy ticker
type TickerRule struct {
	Keyword string `yaml:"keyword"`
	Ticker  string `yaml:"ticker"`
}

// Sector is a named list of representative keywords
type Sector struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// MacroItem is one row of the curated "all markets" fallback
type MacroItem struct {
	Keyword   string  `yaml:"keyword"`
	Volume    int64   `yaml:"volume"`
	Growth    float64 `yaml:"growth"`
	Sentiment string  `yaml:"sentiment"`
}

// MarqueeSymbol is one ticker shown on the dashboard marquee
type MarqueeSymbol struct {
	Label  string `yaml:"label"`
	Symbol string `yaml:"symbol"`
}

// Buzz holds the vocabulary for social buzz reports
type Buzz struct {
	Platforms         []string `yaml:"platforms"`
	FallbackPlatforms []string `yaml:"fallback_platforms"`
	SimulatedProducts []string `yaml:"simulated_products"`
	Prefixes          []string `yaml:"prefixes"`
	Suffixes          []string `yaml:"suffixes"`
}

// Catalog is the full reference data set
type Catalog struct {
	Tickers                  []TickerRule    `yaml:"tickers"`
	DefaultTicker            string          `yaml:"default_ticker"`
	SimulatedTicker          string          `yaml:"simulated_ticker"`
	Sectors                  []Sector        `yaml:"sectors"`
	MacroKeywords            []string        `yaml:"macro_keywords"`
	DefaultKeywords          []string        `yaml:"default_keywords"`
	SimulatedDefaultKeywords []string        `yaml:"simulated_default_keywords"`
	SimulatedSectorSize      int             `yaml:"simulated_sector_size"`
	MacroFallback            []MacroItem     `yaml:"macro_fallback"`
	Marquee                  []MarqueeSymbol `yaml:"marquee"`
	TrendingFallback         []string        `yaml:"trending_fallback"`
	Buzz                     Buzz            `yaml:"buzz"`
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the embedded catalog. It panics if the embedded file is
// malformed, which can only happen at build time.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultYAML)
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded catalog.yaml: %v", err))
		}
		defaultCat = c
	})
	return defaultCat
}

// Load reads a catalog from r
func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading catalog: %w", err)
	}
	return Parse(data)
}

// LoadFile reads a catalog from path, or returns the embedded one when path is empty
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening catalog: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Parse decodes and validates catalog YAML
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("error decoding catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if c.DefaultTicker == "" {
		return fmt.Errorf("catalog: default_ticker is required")
	}
	if len(c.Sectors) == 0 {
		return fmt.Errorf("catalog: at least one sector is required")
	}
	for _, s := range c.Sectors {
		if len(s.Keywords) == 0 {
			return fmt.Errorf("catalog: sector %q has no keywords", s.Name)
		}
	}
	if len(c.Buzz.Prefixes) == 0 || len(c.Buzz.Suffixes) == 0 {
		return fmt.Errorf("catalog: buzz prefixes and suffixes are required")
	}
	if c.SimulatedSectorSize <= 0 {
		c.SimulatedSectorSize = 10
	}
	return nil
}

// TickerFor returns the ticker of the first rule whose keyword is contained
// in keyword, ignoring case, or the default ticker
func (c *Catalog) TickerFor(keyword string) string {
	lower := strings.ToLower(keyword)
	for _, rule := range c.Tickers {
		if strings.Contains(lower, rule.Keyword) {
			return rule.Ticker
		}
	}
	return c.DefaultTicker
}

// Sector looks up a sector by name
func (c *Catalog) Sector(name string) (Sector, bool) {
	for _, s := range c.Sectors {
		if s.Name == name {
			return s, true
		}
	}
	return Sector{}, false
}

// SectorNames lists the known sector names in catalog order
func (c *Catalog) SectorNames() []string {
	names := make([]string, len(c.Sectors))
	for i, s := range c.Sectors {
		names[i] = s.Name
	}
	return names
}
