package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/salesdesk/salesdesk/internal/catalog/products"
	"github.com/salesdesk/salesdesk/internal/shared"
	"github.com/salesdesk/salesdesk/internal/stock"
)

// CatalogPort resolves products for name snapshotting at order time.
type CatalogPort interface {
	Get(ctx context.Context, id int64) (products.Product, error)
}

// StockPort posts the warehouse consumption that follows a loaded order.
type StockPort interface {
	ApplyLoadingConsumption(ctx context.Context, input stock.ConsumptionInput) (stock.Movement, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// DashboardPort drops cached queue counts after a transition changes them.
type DashboardPort interface {
	InvalidateDashboard(ctx context.Context)
}

// Service owns order creation and the three-stage approval ledger. Stage
// guards live here: callers cannot advance a stage its predecessor has not
// cleared unless the ungated compatibility switch is on.
type Service struct {
	repo      Repository
	catalog   CatalogPort
	stock     StockPort
	audit     AuditPort
	dashboard DashboardPort
	ungated   bool
}

// NewService builds Service. dashboard may be nil when no count cache is
// running. ungated disables cross-stage guards for installations migrating
// history recorded without them.
func NewService(repo Repository, catalog CatalogPort, stockPort StockPort, audit AuditPort, dashboard DashboardPort, ungated bool) *Service {
	return &Service{repo: repo, catalog: catalog, stock: stockPort, audit: audit, dashboard: dashboard, ungated: ungated}
}

// Create records a new order with its line items in one transaction. Line
// totals are computed from unit price and quantity; a caller-supplied total
// must match their sum exactly.
func (s *Service) Create(ctx context.Context, actor shared.Actor, req CreateOrderRequest) (*Order, error) {
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	orderNo := "ORD-" + uuid.NewString()
	if req.OrderNo != nil && *req.OrderNo != "" {
		orderNo = *req.OrderNo
	}
	orderDate := time.Now()
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}

	items := make([]OrderItem, 0, len(req.Items))
	sum := decimal.Zero
	for _, line := range req.Items {
		product, err := s.catalog.Get(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("orders: resolve product %d: %w", line.ProductID, err)
		}
		lineTotal := line.UnitPrice.Mul(decimal.NewFromFloat(line.Quantity))
		sum = sum.Add(lineTotal)
		items = append(items, OrderItem{
			OrderNo:         orderNo,
			ProductID:       product.ID,
			ProductName:     product.Name,
			QuantityOrdered: line.Quantity,
			UnitPrice:       line.UnitPrice,
			TotalPrice:      lineTotal,
		})
	}
	if req.TotalAmount != nil && !req.TotalAmount.Equal(sum) {
		return nil, ErrTotalMismatch
	}

	order := Order{
		OrderNo:        orderNo,
		CustomerID:     req.CustomerID,
		Salesperson:    actor.Username,
		TotalAmount:    sum,
		OrderDate:      orderDate,
		PaymentTerms:   req.PaymentTerms,
		AccountsStatus: AccountsPending,
		DirectorStatus: DirectorPending,
		LoadingStatus:  LoadingPending,
		Items:          items,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		id, err := tx.Insert(ctx, order)
		if err != nil {
			return err
		}
		order.ID = id
		for i := range order.Items {
			itemID, err := tx.InsertItem(ctx, order.Items[i])
			if err != nil {
				return err
			}
			order.Items[i].ID = itemID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "order:create", orderNo, map[string]any{
		"customer_id": req.CustomerID,
		"total":       sum.String(),
		"items":       len(items),
	})
	s.invalidateDashboard(ctx)
	return &order, nil
}

// Get returns one order with its items.
func (s *Service) Get(ctx context.Context, orderNo string) (*Order, error) {
	return s.repo.GetByNumber(ctx, orderNo)
}

// SetAccountsStatus records the accounts review verdict.
func (s *Service) SetAccountsStatus(ctx context.Context, actor shared.Actor, orderNo string, req StatusUpdateRequest) error {
	if err := shared.Validate(req); err != nil {
		return err
	}
	status := AccountsStatus(req.Status)
	if !ValidAccountsStatus(status) {
		return ErrUnknownStatus
	}
	if _, err := s.repo.GetByNumber(ctx, orderNo); err != nil {
		return err
	}
	if err := s.repo.SetAccountsStatus(ctx, orderNo, status, req.Remarks); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "order:accounts_status", orderNo, map[string]any{
		"status": string(status),
	})
	s.invalidateDashboard(ctx)
	return nil
}

// SetDirectorStatus records the director verdict. The stage is closed until
// accounts has recommended the order.
func (s *Service) SetDirectorStatus(ctx context.Context, actor shared.Actor, orderNo string, req StatusUpdateRequest) error {
	if err := shared.Validate(req); err != nil {
		return err
	}
	status := DirectorStatus(req.Status)
	if !ValidDirectorStatus(status) {
		return ErrUnknownStatus
	}
	order, err := s.repo.GetByNumber(ctx, orderNo)
	if err != nil {
		return err
	}
	if !s.ungated && !DirectorStageOpen(order.AccountsStatus) {
		return ErrStageNotReady
	}
	if err := s.repo.SetDirectorStatus(ctx, orderNo, status, req.Remarks); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "order:director_status", orderNo, map[string]any{
		"status": string(status),
	})
	s.invalidateDashboard(ctx)
	return nil
}

// UpdateLoading records per-line loaded quantities and the loading verdict,
// then posts an OUT stock movement for every loaded line. The stage is
// closed until the director has approved the order and closes again once the
// warehouse has settled it, so consumption can never post twice.
func (s *Service) UpdateLoading(ctx context.Context, actor shared.Actor, orderNo string, req LoadingUpdateRequest) error {
	if err := shared.Validate(req); err != nil {
		return err
	}
	status := LoadingStatus(req.Status)
	if !ValidLoadingStatus(status) {
		return ErrUnknownStatus
	}
	order, err := s.repo.GetByNumber(ctx, orderNo)
	if err != nil {
		return err
	}
	if !s.ungated && !LoadingStageOpen(order.DirectorStatus) {
		return ErrStageNotReady
	}
	if !s.ungated && order.LoadingStatus != LoadingPending {
		return ErrLoadingSettled
	}

	lines := make(map[int64]OrderItem, len(order.Items))
	for _, item := range order.Items {
		lines[item.ID] = item
	}
	for _, load := range req.Items {
		if _, ok := lines[load.ItemID]; !ok {
			return ErrUnknownItem
		}
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		for _, load := range req.Items {
			if err := tx.SetItemLoading(ctx, load.ItemID, load.LoadedQuantity, load.Remarks); err != nil {
				return err
			}
		}
		return tx.SetLoadingStatus(ctx, orderNo, status, req.Remarks)
	})
	if err != nil {
		return err
	}

	if status == LoadingLoaded {
		for _, load := range req.Items {
			if load.LoadedQuantity <= 0 {
				continue
			}
			line := lines[load.ItemID]
			_, err := s.stock.ApplyLoadingConsumption(ctx, stock.ConsumptionInput{
				ProductID: line.ProductID,
				Qty:       load.LoadedQuantity,
				OrderNo:   orderNo,
				Actor:     actor.Username,
			})
			if err != nil {
				return fmt.Errorf("orders: consume stock for item %d: %w", load.ItemID, err)
			}
		}
	}
	s.recordAudit(ctx, actor, "order:loading_status", orderNo, map[string]any{
		"status": string(status),
		"items":  len(req.Items),
	})
	s.invalidateDashboard(ctx)
	return nil
}

// ListAll returns every order, newest first.
func (s *Service) ListAll(ctx context.Context) ([]OrderWithCustomer, error) {
	return s.repo.List(ctx, ListFilter{})
}

// ByAccountsStatus returns orders filtered on the accounts stage.
func (s *Service) ByAccountsStatus(ctx context.Context, status AccountsStatus) ([]OrderWithCustomer, error) {
	if !ValidAccountsStatus(status) {
		return nil, ErrUnknownStatus
	}
	return s.repo.List(ctx, ListFilter{AccountsStatus: &status})
}

// PendingAccounts returns orders awaiting the accounts review.
func (s *Service) PendingAccounts(ctx context.Context) ([]OrderWithCustomer, error) {
	status := AccountsPending
	return s.repo.List(ctx, ListFilter{AccountsStatus: &status})
}

// DirectorQueue returns orders recommended by accounts and still awaiting
// the director's verdict.
func (s *Service) DirectorQueue(ctx context.Context) ([]OrderWithCustomer, error) {
	accounts := AccountsRecommend
	director := DirectorPending
	return s.repo.List(ctx, ListFilter{AccountsStatus: &accounts, DirectorStatus: &director})
}

// AwaitingLoading returns director-approved orders not yet handled by the
// warehouse.
func (s *Service) AwaitingLoading(ctx context.Context) ([]OrderWithCustomer, error) {
	director := DirectorApproved
	return s.repo.List(ctx, ListFilter{DirectorStatus: &director, LoadingStatus: []LoadingStatus{LoadingPending}})
}

// LoadingHistory returns orders the warehouse has already settled.
func (s *Service) LoadingHistory(ctx context.Context) ([]OrderWithCustomer, error) {
	return s.repo.List(ctx, ListFilter{LoadingStatus: []LoadingStatus{LoadingLoaded, LoadingCancelled}})
}

func (s *Service) invalidateDashboard(ctx context.Context) {
	if s.dashboard != nil {
		s.dashboard.InvalidateDashboard(ctx)
	}
}

func (s *Service) recordAudit(ctx context.Context, actor shared.Actor, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Actor:    actor.Username,
		Action:   action,
		Entity:   "order",
		EntityID: entityID,
		Meta:     meta,
	})
}
