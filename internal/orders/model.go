package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the header of a sales order. The three status fields are
// independent columns; their gating is enforced by the service.
type Order struct {
	ID              int64           `json:"id"`
	OrderNo         string          `json:"order_id"`
	CustomerID      int64           `json:"customer_id"`
	Salesperson     string          `json:"salesperson_name"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	OrderDate       time.Time       `json:"order_date"`
	PaymentTerms    *string         `json:"payment_terms,omitempty"`
	AccountsStatus  AccountsStatus  `json:"accounts_approval_status"`
	AccountsRemarks *string         `json:"accounts_remarks,omitempty"`
	DirectorStatus  DirectorStatus  `json:"director_approval_status"`
	DirectorRemarks *string         `json:"director_remarks,omitempty"`
	LoadingStatus   LoadingStatus   `json:"loading_status"`
	LoadingRemarks  *string         `json:"loading_remarks,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	Items           []OrderItem     `json:"items"`
}

// OrderItem is one line of an order. ProductName is snapshotted at order
// time and stays fixed across later product renames.
type OrderItem struct {
	ID              int64           `json:"id"`
	OrderNo         string          `json:"order_id"`
	ProductID       int64           `json:"product_id"`
	ProductName     string          `json:"product_name"`
	QuantityOrdered float64         `json:"quantity_ordered"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	LoadedQuantity  *float64        `json:"loaded_quantity,omitempty"`
	LoadingRemarks  *string         `json:"loading_remarks,omitempty"`
}

// OrderWithCustomer joins the order with its customer's display name.
type OrderWithCustomer struct {
	Order
	CustomerName string `json:"customer_name"`
}

// Variance returns loaded minus ordered quantity for a line, zero when the
// line has not been loaded.
func (i OrderItem) Variance() float64 {
	if i.LoadedQuantity == nil {
		return 0
	}
	return *i.LoadedQuantity - i.QuantityOrdered
}
