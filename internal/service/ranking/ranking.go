// internal/service/ranking/ranking.go

package ranking

import (
	"sort"

	"github.com/shopspring/decimal"

	"marketlens/internal/domain/supplier"
)

// DefaultPreference balances price and quality equally
const DefaultPreference = 50

const (
	ratingWeight  = 15.0
	qualityWeight = 20.0
	costWeight    = 0.1
)

// RankSuppliers scores every supplier and returns them sorted by score,
// highest first. preference runs from 0 (price only) to 100 (quality only);
// values outside that range are clamped. Suppliers with equal scores keep
// their input order.
func RankSuppliers(suppliers []supplier.Supplier, preference int) []supplier.RankedSupplier {
	preference = ClampPreference(preference)
	qualityW := float64(preference) / 100.0
	priceW := 1.0 - qualityW

	ranked := make([]supplier.RankedSupplier, 0, len(suppliers))
	for _, s := range suppliers {
		totalCost := s.ShippingCost + s.Taxes

		score := s.Rating*ratingWeight +
			float64(s.Quality.Score())*qualityWeight*qualityW -
			totalCost*costWeight*priceW

		ranked = append(ranked, supplier.RankedSupplier{
			Supplier:    s,
			Score:       round(score, 2),
			TotalCost:   totalCost,
			IsLocal:     s.IsLocal(),
			ShippingRaw: s.ShippingCost,
			TaxRaw:      s.Taxes,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked
}

// ClampPreference limits p to the 0..100 preference scale
func ClampPreference(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
