package products

import "time"

// Product is a catalog entry. OpeningQty is the immutable baseline captured
// at creation; Qty is the live running balance owned by the stock ledger.
type Product struct {
	ID             int64      `json:"product_id"`
	Name           string     `json:"product_name"`
	Barcode        *string    `json:"barcode,omitempty"`
	UOM            string     `json:"unit_of_measure"`
	OpeningQty     float64    `json:"opening_qty"`
	Qty            float64    `json:"qty"`
	BatchNumber    *string    `json:"batch_number,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
