package supplier

import (
	"context"
	"strings"
)

// Quality is the product quality tier a supplier advertises
type Quality string

const (
	QualityHigh   Quality = "High"
	QualityMedium Quality = "Medium"
	QualityLow    Quality = "Low"
)

// Score maps the tier onto the 3-point ordinal scale. Tiers outside the
// closed set (e.g. "Premium", "Variable") fall into the Low bucket.
func (q Quality) Score() int {
	switch q {
	case QualityHigh:
		return 3
	case QualityMedium:
		return 2
	default:
		return 1
	}
}

// Supplier is a candidate supplier as stored by the repository
type Supplier struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Location     string  `json:"location"`
	ContactInfo  string  `json:"contact_info"`
	Quality      Quality `json:"product_quality"`
	Rating       float64 `json:"rating"`
	ShippingCost float64 `json:"shipping_cost"`
	Taxes        float64 `json:"taxes"`
}

// IsLocal reports whether the location contains the exact token "Local"
func (s Supplier) IsLocal() bool {
	return strings.Contains(s.Location, "Local")
}

// Product is an item offered by a supplier
type Product struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	BasePrice  float64 `json:"base_price"`
	SupplierID int64   `json:"supplier_id"`
}

// RankedSupplier is a supplier scored by one ranking call
type RankedSupplier struct {
	Supplier    Supplier `json:"supplier"`
	Score       float64  `json:"score"`
	TotalCost   float64  `json:"total_cost"`
	IsLocal     bool     `json:"is_local"`
	ShippingRaw float64  `json:"shipping_raw"`
	TaxRaw      float64  `json:"tax_raw"`
}

// Repository is the read-only supplier/product store
type Repository interface {
	// FindByProductKeyword returns suppliers offering a product whose name or
	// category contains keyword, case-insensitively
	FindByProductKeyword(ctx context.Context, keyword string) ([]Supplier, error)

	// ListAll returns every supplier ordered by ID
	ListAll(ctx context.Context) ([]Supplier, error)
}
