// internal/adapter/storage/supplier_store.go

package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"marketlens/internal/domain/supplier"
)

const supplierColumns = `
	s.id, s.name, s.location, s.contact_info, s.product_quality,
	s.rating, s.shipping_cost, s.taxes
`

// SupplierStore implements supplier.Repository on PostgreSQL
type SupplierStore struct {
	db *pgxpool.Pool
}

// NewSupplierStore creates a new supplier store
func NewSupplierStore(db *pgxpool.Pool) *SupplierStore {
	return &SupplierStore{
		db: db,
	}
}

// FindByProductKeyword returns the distinct suppliers of products whose name
// or category contains keyword, ignoring case
func (s *SupplierStore) FindByProductKeyword(ctx context.Context, keyword string) ([]supplier.Supplier, error) {
	query := `
		SELECT` + supplierColumns + `
		FROM suppliers s
		WHERE s.id IN (
			SELECT p.supplier_id
			FROM products p
			WHERE p.name ILIKE $1 OR p.category ILIKE $1
		)
		ORDER BY s.id
	`

	rows, err := s.db.Query(ctx, query, likePattern(keyword))
	if err != nil {
		return nil, fmt.Errorf("error querying suppliers by product: %w", err)
	}
	defer rows.Close()

	return scanSuppliers(rows)
}

// ListAll returns every supplier ordered by ID
func (s *SupplierStore) ListAll(ctx context.Context) ([]supplier.Supplier, error) {
	query := `SELECT` + supplierColumns + `FROM suppliers s ORDER BY s.id`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying suppliers: %w", err)
	}
	defer rows.Close()

	return scanSuppliers(rows)
}

// GetSupplier retrieves a supplier by ID
func (s *SupplierStore) GetSupplier(ctx context.Context, id int64) (*supplier.Supplier, error) {
	query := `SELECT` + supplierColumns + `FROM suppliers s WHERE s.id = $1`

	sup, err := scanSupplier(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error querying supplier: %w", err)
	}

	return &sup, nil
}

func scanSuppliers(rows pgx.Rows) ([]supplier.Supplier, error) {
	var suppliers []supplier.Supplier
	for rows.Next() {
		sup, err := scanSupplier(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning supplier: %w", err)
		}
		suppliers = append(suppliers, sup)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating suppliers: %w", err)
	}

	return suppliers, nil
}

func scanSupplier(row pgx.Row) (supplier.Supplier, error) {
	var sup supplier.Supplier
	var quality string
	var contact *string

	err := row.Scan(
		&sup.ID,
		&sup.Name,
		&sup.Location,
		&contact,
		&quality,
		&sup.Rating,
		&sup.ShippingCost,
		&sup.Taxes,
	)
	if err != nil {
		return supplier.Supplier{}, err
	}

	sup.Quality = supplier.Quality(quality)
	if contact != nil {
		sup.ContactInfo = *contact
	}
	return sup, nil
}

// likePattern wraps keyword in wildcards, escaping LIKE metacharacters
func likePattern(keyword string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(keyword) + "%"
}
