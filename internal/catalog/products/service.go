package products

import (
	"context"
	"errors"
	"fmt"
)

// Service owns product catalog rules.
type Service struct {
	repo Repository
}

// NewService constructs Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create adds a product. Qty starts equal to OpeningQty; after creation only
// the stock ledger may touch it.
func (s *Service) Create(ctx context.Context, req CreateProductRequest) (Product, error) {
	if req.Name == "" || req.UOM == "" {
		return Product{}, errors.New("products: name and unit of measure required")
	}
	p := Product{
		Name:           req.Name,
		Barcode:        req.Barcode,
		UOM:            req.UOM,
		OpeningQty:     req.OpeningQty,
		Qty:            req.OpeningQty,
		BatchNumber:    req.BatchNumber,
		ExpirationDate: req.ExpirationDate,
	}
	id, err := s.repo.Create(ctx, p)
	if err != nil {
		return Product{}, fmt.Errorf("products: create: %w", err)
	}
	p.ID = id
	return p, nil
}

// Get fetches one product.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, errors.New("products: invalid product id")
	}
	return s.repo.Get(ctx, id)
}

// List returns all products.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

// BulkImport inserts tabular rows. Rows missing a required field are skipped
// with a reason; a bad row never fails the batch.
func (s *Service) BulkImport(ctx context.Context, rows []ImportRow) (ImportResult, error) {
	var result ImportResult
	for i, row := range rows {
		if row.Name == "" {
			result.Skipped = append(result.Skipped, SkippedRow{Index: i, Reason: "missing product_name"})
			continue
		}
		if row.UOM == "" {
			result.Skipped = append(result.Skipped, SkippedRow{Index: i, Reason: "missing unit_of_measure"})
			continue
		}
		if row.OpeningQty < 0 {
			result.Skipped = append(result.Skipped, SkippedRow{Index: i, Reason: "negative opening_qty"})
			continue
		}
		p := Product{
			Name:           row.Name,
			UOM:            row.UOM,
			OpeningQty:     row.OpeningQty,
			Qty:            row.OpeningQty,
			ExpirationDate: row.ExpirationDate,
		}
		if row.Barcode != "" {
			barcode := row.Barcode
			p.Barcode = &barcode
		}
		if row.BatchNumber != "" {
			batch := row.BatchNumber
			p.BatchNumber = &batch
		}
		if _, err := s.repo.Create(ctx, p); err != nil {
			result.Skipped = append(result.Skipped, SkippedRow{Index: i, Reason: err.Error()})
			continue
		}
		result.Inserted++
	}
	return result, nil
}
