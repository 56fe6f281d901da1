// internal/service/sourcing/matcher.go

package sourcing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"marketlens/internal/domain/supplier"
	"marketlens/internal/logger"
	"marketlens/internal/seed"
)

const (
	minSample = 3
	maxSample = 5
)

// Match is the set of suppliers considered for a keyword
type Match struct {
	Keyword   string              `json:"keyword"`
	Suppliers []supplier.Supplier `json:"suppliers"`
	// AIMatched is set when no product matched and the suppliers were
	// picked by the keyword-seeded sample instead
	AIMatched bool `json:"ai_matched"`
}

// Matcher finds candidate suppliers for a business keyword
type Matcher struct {
	repo   supplier.Repository
	logger *slog.Logger
}

// NewMatcher creates a new supplier matcher
func NewMatcher(repo supplier.Repository, log *slog.Logger) *Matcher {
	return &Matcher{
		repo:   repo,
		logger: logger.Component(log, "sourcing"),
	}
}

// Match returns suppliers of products matching keyword. When nothing
// matches, three to five suppliers are sampled with a generator seeded by
// keyword, so the same keyword always gets the same partners.
func (m *Matcher) Match(ctx context.Context, keyword string) (Match, error) {
	keyword = strings.TrimSpace(keyword)
	result := Match{Keyword: keyword, Suppliers: []supplier.Supplier{}}

	if keyword != "" {
		matched, err := m.repo.FindByProductKeyword(ctx, keyword)
		if err != nil {
			return Match{}, fmt.Errorf("failed to match suppliers: %w", err)
		}
		if len(matched) > 0 {
			result.Suppliers = matched
			return result, nil
		}
	}

	all, err := m.repo.ListAll(ctx)
	if err != nil {
		return Match{}, fmt.Errorf("failed to list suppliers: %w", err)
	}

	result.Suppliers = Sample(all, keyword)
	result.AIMatched = true

	m.logger.Debug("no product match, sampled suppliers",
		"keyword", keyword,
		"sampled", len(result.Suppliers),
		"available", len(all),
	)
	return result, nil
}

// Sample picks min(len(all), 3..5) suppliers without replacement using a
// generator seeded by keyword. all is not modified.
func Sample(all []supplier.Supplier, keyword string) []supplier.Supplier {
	if len(all) == 0 {
		return []supplier.Supplier{}
	}

	r := seed.New(keyword)
	size := min(len(all), seed.Between(r, minSample, maxSample))

	pool := make([]supplier.Supplier, len(all))
	copy(pool, all)

	// partial Fisher-Yates: the first size slots become the sample
	for i := 0; i < size; i++ {
		j := i + r.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:size]
}
