package stock

import (
	"errors"
	"time"
)

// MovementType enumerates the audit tags for routine stock movements.
type MovementType string

const (
	// MovementIn marks a quantity increase sourced from a GRN receipt.
	MovementIn MovementType = "IN"
	// MovementOut marks a quantity decrease sourced from order loading.
	MovementOut MovementType = "OUT"
)

// AdjustmentType classifies a manual correction.
type AdjustmentType string

const (
	AdjustmentIncrease AdjustmentType = "Increase"
	AdjustmentDecrease AdjustmentType = "Decrease"
)

// Movement is an append-only audit entry for a routine stock event.
// Quantity is always a positive magnitude; the direction lives in Type.
type Movement struct {
	ID        int64
	ProductID int64
	Type      MovementType
	Quantity  float64
	Reference string
	Remarks   string
	CreatedAt time.Time
}

// Adjustment is an append-only audit entry for a manual correction.
// Quantity is the positive magnitude of the change; PreviousQty and NewQty
// record the absolute levels around it.
type Adjustment struct {
	ID          int64
	ProductID   int64
	Type        AdjustmentType
	Quantity    float64
	Reason      string
	AdjustedBy  string
	PreviousQty float64
	NewQty      float64
	CreatedAt   time.Time
}

// ProductStock is the live stock view of a product.
type ProductStock struct {
	ProductID  int64
	Name       string
	Unit       string
	OpeningQty float64
	Qty        float64
}

// ReceiptInput describes a GRN-sourced increase.
type ReceiptInput struct {
	ProductID int64
	Qty       float64
	GRNID     string
	Remarks   string
	Actor     string
}

// ConsumptionInput describes an order-loading decrease.
type ConsumptionInput struct {
	ProductID int64
	Qty       float64
	OrderNo   string
	Remarks   string
	Actor     string
}

// AdjustmentInput describes a manual correction to an absolute quantity.
type AdjustmentInput struct {
	ProductID int64
	NewQty    float64
	Reason    string
	Actor     string
}

// ErrInvalidQuantity indicates a non-positive movement quantity.
var ErrInvalidQuantity = errors.New("stock: quantity must be positive")

// ErrNoChange indicates an adjustment whose target equals the current level.
var ErrNoChange = errors.New("stock: adjustment would not change quantity")

// ErrProductNotFound indicates the product row is missing.
var ErrProductNotFound = errors.New("stock: product not found")
