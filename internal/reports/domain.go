package reports

// DashboardCounts are the per-stage queue sizes shown on every dashboard.
type DashboardCounts struct {
	PendingAccounts int `json:"pending_accounts"`
	PendingDirector int `json:"pending_director"`
	PendingLoading  int `json:"pending_loading"`
}

// StockLevel projects one product's baseline against its live quantity.
type StockLevel struct {
	ProductID  int64   `json:"product_id"`
	Name       string  `json:"product_name"`
	Unit       string  `json:"unit_of_measure"`
	OpeningQty float64 `json:"opening_qty"`
	CurrentQty float64 `json:"current_qty"`
	Difference float64 `json:"difference"`
}

// StatusBand aggregates orders sharing one status value.
type StatusBand struct {
	Status string  `json:"status"`
	Count  int     `json:"count"`
	Value  float64 `json:"total_value"`
}

// OrderSummary groups order counts and totals by each approval dimension.
type OrderSummary struct {
	TotalOrders int          `json:"total_orders"`
	TotalValue  float64      `json:"total_value"`
	ByAccounts  []StatusBand `json:"by_accounts_status"`
	ByDirector  []StatusBand `json:"by_director_status"`
	ByLoading   []StatusBand `json:"by_loading_status"`
}
