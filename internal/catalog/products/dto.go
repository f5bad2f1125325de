package products

import "time"

type CreateProductRequest struct {
	Name           string     `json:"product_name" validate:"required,max=255"`
	Barcode        *string    `json:"barcode,omitempty" validate:"omitempty,max=64"`
	UOM            string     `json:"unit_of_measure" validate:"required,max=32"`
	OpeningQty     float64    `json:"opening_qty" validate:"gte=0"`
	BatchNumber    *string    `json:"batch_number,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}

// ImportRow is one tabular row from the bulk import boundary. The caller has
// already parsed whatever file format carried it.
type ImportRow struct {
	Name           string     `json:"product_name"`
	Barcode        string     `json:"barcode"`
	UOM            string     `json:"unit_of_measure"`
	OpeningQty     float64    `json:"opening_qty"`
	BatchNumber    string     `json:"batch_number"`
	ExpirationDate *time.Time `json:"expiration_date"`
}

// SkippedRow records why an import row was dropped.
type SkippedRow struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// ImportResult summarises a bulk import batch.
type ImportResult struct {
	Inserted int          `json:"inserted"`
	Skipped  []SkippedRow `json:"skipped,omitempty"`
}
