package ranking

import (
	"marketlens/internal/domain/supplier"
)

// GroupStats aggregates landed-cost components for one group of suppliers
type GroupStats struct {
	AvgShipping float64 `json:"avg_shipping"`
	AvgTax      float64 `json:"avg_tax"`
	Count       int     `json:"count"`
}

// ComparisonStats contrasts local and international suppliers
type ComparisonStats struct {
	Local         GroupStats `json:"local"`
	International GroupStats `json:"intl"`
}

// Summarize splits ranked suppliers by IsLocal and averages their raw
// shipping and tax values. An empty group reports zeros.
func Summarize(ranked []supplier.RankedSupplier) ComparisonStats {
	var local, intl []supplier.RankedSupplier
	for _, r := range ranked {
		if r.IsLocal {
			local = append(local, r)
		} else {
			intl = append(intl, r)
		}
	}

	return ComparisonStats{
		Local:         groupStats(local),
		International: groupStats(intl),
	}
}

func groupStats(group []supplier.RankedSupplier) GroupStats {
	if len(group) == 0 {
		return GroupStats{}
	}

	var shipping, tax float64
	for _, r := range group {
		shipping += r.ShippingRaw
		tax += r.TaxRaw
	}

	n := float64(len(group))
	return GroupStats{
		AvgShipping: shipping / n,
		AvgTax:      tax / n,
		Count:       len(group),
	}
}
