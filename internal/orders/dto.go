package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateOrderItemRequest struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Quantity  float64         `json:"quantity_ordered" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type CreateOrderRequest struct {
	OrderNo      *string                  `json:"order_id,omitempty"`
	CustomerID   int64                    `json:"customer_id" validate:"required,gt=0"`
	OrderDate    *time.Time               `json:"order_date,omitempty"`
	PaymentTerms *string                  `json:"payment_terms,omitempty"`
	TotalAmount  *decimal.Decimal         `json:"total_amount,omitempty"`
	Items        []CreateOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type StatusUpdateRequest struct {
	Status  string `json:"status" validate:"required"`
	Remarks string `json:"remarks"`
}

type ItemLoadRequest struct {
	ItemID         int64   `json:"item_id" validate:"required,gt=0"`
	LoadedQuantity float64 `json:"loaded_quantity" validate:"gte=0"`
	Remarks        string  `json:"loading_remarks"`
}

type LoadingUpdateRequest struct {
	Status  string            `json:"status" validate:"required"`
	Remarks string            `json:"remarks"`
	Items   []ItemLoadRequest `json:"items" validate:"dive"`
}
