package grn

import (
	"errors"
	"time"
)

// Item is one line of a goods received note batch. OrderedQty comes from the
// supplier document at upload; VerifiedQty and Discrepancy are filled when the
// warehouse verifies the batch.
type Item struct {
	ID          int64      `json:"id"`
	GRNID       string     `json:"grn_id"`
	ProductID   int64      `json:"product_id"`
	ProductName string     `json:"product_name"`
	OrderedQty  float64    `json:"quantity_ordered"`
	ReceivedQty float64    `json:"quantity_received"`
	VerifiedQty *float64   `json:"verified_quantity,omitempty"`
	Discrepancy *float64   `json:"discrepancy,omitempty"`
	BatchNumber *string    `json:"batch_number,omitempty"`
	ExpiryDate  *time.Time `json:"expiration_date,omitempty"`
	Remarks     *string    `json:"remarks,omitempty"`
	UploadedBy  string     `json:"uploaded_by"`
	CreatedAt   time.Time  `json:"created_at"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
	VerifiedBy  *string    `json:"verified_by,omitempty"`
}

// Verified reports whether the item has gone through verification.
func (i Item) Verified() bool {
	return i.VerifiedAt != nil
}

// BatchSummary aggregates one GRN batch for history listings.
type BatchSummary struct {
	GRNID         string     `json:"grn_id"`
	ItemCount     int        `json:"item_count"`
	TotalOrdered  float64    `json:"total_ordered"`
	TotalVerified float64    `json:"total_verified"`
	Discrepancy   float64    `json:"total_discrepancy"`
	UploadedBy    string     `json:"uploaded_by"`
	CreatedAt     time.Time  `json:"created_at"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
}

var (
	// ErrEmptyBatch indicates an upload with no lines.
	ErrEmptyBatch = errors.New("grn: batch requires at least one line")
	// ErrAlreadyVerified indicates a line that has already been verified.
	// Verification applies stock receipts, so running it twice would double
	// the received quantities.
	ErrAlreadyVerified = errors.New("grn: line already verified")
	// ErrUnknownItem indicates a verification naming an item outside the batch.
	ErrUnknownItem = errors.New("grn: line item does not belong to batch")
)
