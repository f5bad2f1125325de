package grn

import "time"

type UploadLine struct {
	ProductID   int64      `json:"product_id" validate:"required,gt=0"`
	OrderedQty  float64    `json:"quantity_ordered" validate:"required,gt=0"`
	BatchNumber *string    `json:"batch_number,omitempty"`
	ExpiryDate  *time.Time `json:"expiration_date,omitempty"`
	Remarks     *string    `json:"remarks,omitempty"`
}

type UploadRequest struct {
	GRNID string       `json:"grn_id"`
	Items []UploadLine `json:"items" validate:"required,min=1,dive"`
}

type VerifyLine struct {
	ItemID      int64   `json:"item_id" validate:"required,gt=0"`
	VerifiedQty float64 `json:"verified_quantity" validate:"gte=0"`
}

type VerifyRequest struct {
	Items []VerifyLine `json:"items" validate:"required,min=1,dive"`
}
