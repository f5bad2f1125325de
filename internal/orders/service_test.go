package orders

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/salesdesk/salesdesk/internal/catalog/products"
	"github.com/salesdesk/salesdesk/internal/shared"
	"github.com/salesdesk/salesdesk/internal/stock"
)

type fakeOrderRepo struct {
	orders    map[string]*Order
	customers map[int64]string
	nextID    int64
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:    make(map[string]*Order),
		customers: map[int64]string{1: "Acme Traders"},
		nextID:    1,
	}
}

func (r *fakeOrderRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, r)
}

func (r *fakeOrderRepo) Insert(ctx context.Context, o Order) (int64, error) {
	if _, exists := r.orders[o.OrderNo]; exists {
		return 0, shared.ErrConflict
	}
	o.ID = r.nextID
	r.nextID++
	o.Items = nil
	r.orders[o.OrderNo] = &o
	return o.ID, nil
}

func (r *fakeOrderRepo) InsertItem(ctx context.Context, item OrderItem) (int64, error) {
	o, ok := r.orders[item.OrderNo]
	if !ok {
		return 0, shared.ErrNotFound
	}
	item.ID = r.nextID
	r.nextID++
	o.Items = append(o.Items, item)
	return item.ID, nil
}

func (r *fakeOrderRepo) GetByNumber(ctx context.Context, orderNo string) (*Order, error) {
	o, ok := r.orders[orderNo]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *o
	copied.Items = append([]OrderItem(nil), o.Items...)
	return &copied, nil
}

func (r *fakeOrderRepo) SetAccountsStatus(ctx context.Context, orderNo string, status AccountsStatus, remarks string) error {
	o, ok := r.orders[orderNo]
	if !ok {
		return shared.ErrNotFound
	}
	o.AccountsStatus = status
	if remarks != "" {
		o.AccountsRemarks = &remarks
	}
	return nil
}

func (r *fakeOrderRepo) SetDirectorStatus(ctx context.Context, orderNo string, status DirectorStatus, remarks string) error {
	o, ok := r.orders[orderNo]
	if !ok {
		return shared.ErrNotFound
	}
	o.DirectorStatus = status
	if remarks != "" {
		o.DirectorRemarks = &remarks
	}
	return nil
}

func (r *fakeOrderRepo) SetLoadingStatus(ctx context.Context, orderNo string, status LoadingStatus, remarks string) error {
	o, ok := r.orders[orderNo]
	if !ok {
		return shared.ErrNotFound
	}
	o.LoadingStatus = status
	if remarks != "" {
		o.LoadingRemarks = &remarks
	}
	return nil
}

func (r *fakeOrderRepo) SetItemLoading(ctx context.Context, itemID int64, loadedQty float64, remarks string) error {
	for _, o := range r.orders {
		for i := range o.Items {
			if o.Items[i].ID == itemID {
				qty := loadedQty
				o.Items[i].LoadedQuantity = &qty
				if remarks != "" {
					o.Items[i].LoadingRemarks = &remarks
				}
				return nil
			}
		}
	}
	return shared.ErrNotFound
}

func (r *fakeOrderRepo) List(ctx context.Context, filter ListFilter) ([]OrderWithCustomer, error) {
	var out []OrderWithCustomer
	for _, o := range r.orders {
		if filter.AccountsStatus != nil && o.AccountsStatus != *filter.AccountsStatus {
			continue
		}
		if filter.DirectorStatus != nil && o.DirectorStatus != *filter.DirectorStatus {
			continue
		}
		if len(filter.LoadingStatus) > 0 {
			match := false
			for _, s := range filter.LoadingStatus {
				if o.LoadingStatus == s {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		copied := *o
		copied.Items = append([]OrderItem(nil), o.Items...)
		out = append(out, OrderWithCustomer{Order: copied, CustomerName: r.customers[o.CustomerID]})
	}
	return out, nil
}

type fakeCatalog struct {
	products map[int64]products.Product
}

func (c *fakeCatalog) Get(ctx context.Context, id int64) (products.Product, error) {
	p, ok := c.products[id]
	if !ok {
		return products.Product{}, shared.ErrNotFound
	}
	return p, nil
}

type fakeStock struct {
	consumed []stock.ConsumptionInput
}

func (s *fakeStock) ApplyLoadingConsumption(ctx context.Context, input stock.ConsumptionInput) (stock.Movement, error) {
	s.consumed = append(s.consumed, input)
	return stock.Movement{ProductID: input.ProductID, Type: stock.MovementOut, Quantity: input.Qty, Reference: input.OrderNo}, nil
}

type fakeAudit struct {
	logs []shared.AuditLog
}

func (a *fakeAudit) Record(ctx context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

type fakeDashboard struct {
	invalidations int
}

func (d *fakeDashboard) InvalidateDashboard(ctx context.Context) {
	d.invalidations++
}

func newTestService(ungated bool) (*Service, *fakeOrderRepo, *fakeStock, *fakeAudit) {
	svc, repo, stockPort, audit, _ := newTestServiceWithDashboard(ungated)
	return svc, repo, stockPort, audit
}

func newTestServiceWithDashboard(ungated bool) (*Service, *fakeOrderRepo, *fakeStock, *fakeAudit, *fakeDashboard) {
	repo := newFakeOrderRepo()
	catalog := &fakeCatalog{products: map[int64]products.Product{
		1: {ID: 1, Name: "Widget", UOM: "pcs", OpeningQty: 10, Qty: 10},
		2: {ID: 2, Name: "Gadget", UOM: "pcs", OpeningQty: 100, Qty: 100},
	}}
	stockPort := &fakeStock{}
	audit := &fakeAudit{}
	dashboard := &fakeDashboard{}
	return NewService(repo, catalog, stockPort, audit, dashboard, ungated), repo, stockPort, audit, dashboard
}

var (
	sales     = shared.Actor{UserID: 1, Username: "sam", Role: shared.RoleSales}
	accounts  = shared.Actor{UserID: 2, Username: "alice", Role: shared.RoleAccounts}
	director  = shared.Actor{UserID: 3, Username: "dora", Role: shared.RoleDirector}
	warehouse = shared.Actor{UserID: 4, Username: "wanda", Role: shared.RoleLoading}
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreateComputesTotalsAndSnapshotsNames(t *testing.T) {
	svc, _, _, audit := newTestService(false)

	order, err := svc.Create(context.Background(), sales, CreateOrderRequest{
		CustomerID: 1,
		Items: []CreateOrderItemRequest{
			{ProductID: 1, Quantity: 10, UnitPrice: price("5.00")},
		},
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(order.OrderNo, "ORD-"))
	require.True(t, order.TotalAmount.Equal(price("50.00")))
	require.Equal(t, "sam", order.Salesperson)
	require.Equal(t, AccountsPending, order.AccountsStatus)
	require.Equal(t, DirectorPending, order.DirectorStatus)
	require.Equal(t, LoadingPending, order.LoadingStatus)
	require.Len(t, order.Items, 1)
	require.Equal(t, "Widget", order.Items[0].ProductName)
	require.True(t, order.Items[0].TotalPrice.Equal(price("50.00")))
	require.Len(t, audit.logs, 1)
}

func TestCreateRejectsMismatchedTotal(t *testing.T) {
	svc, repo, _, _ := newTestService(false)

	wrong := price("49.99")
	_, err := svc.Create(context.Background(), sales, CreateOrderRequest{
		CustomerID:  1,
		TotalAmount: &wrong,
		Items: []CreateOrderItemRequest{
			{ProductID: 1, Quantity: 10, UnitPrice: price("5.00")},
		},
	})
	require.ErrorIs(t, err, ErrTotalMismatch)
	require.Empty(t, repo.orders)
}

func TestCreateRejectsUnknownProduct(t *testing.T) {
	svc, repo, _, _ := newTestService(false)

	_, err := svc.Create(context.Background(), sales, CreateOrderRequest{
		CustomerID: 1,
		Items: []CreateOrderItemRequest{
			{ProductID: 99, Quantity: 1, UnitPrice: price("1.00")},
		},
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.Empty(t, repo.orders)
}

func TestDirectorStageClosedUntilAccountsRecommends(t *testing.T) {
	svc, _, _, _ := newTestService(false)
	ctx := context.Background()

	order, err := svc.Create(ctx, sales, CreateOrderRequest{
		CustomerID: 1,
		Items:      []CreateOrderItemRequest{{ProductID: 1, Quantity: 10, UnitPrice: price("5.00")}},
	})
	require.NoError(t, err)

	err = svc.SetDirectorStatus(ctx, director, order.OrderNo, StatusUpdateRequest{Status: string(DirectorApproved)})
	require.ErrorIs(t, err, ErrStageNotReady)

	require.NoError(t, svc.SetAccountsStatus(ctx, accounts, order.OrderNo, StatusUpdateRequest{Status: string(AccountsRecommend)}))
	require.NoError(t, svc.SetDirectorStatus(ctx, director, order.OrderNo, StatusUpdateRequest{Status: string(DirectorApproved)}))
}

func TestUngatedModeSkipsStageGuards(t *testing.T) {
	svc, _, _, _ := newTestService(true)
	ctx := context.Background()

	order, err := svc.Create(ctx, sales, CreateOrderRequest{
		CustomerID: 1,
		Items:      []CreateOrderItemRequest{{ProductID: 1, Quantity: 10, UnitPrice: price("5.00")}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.SetDirectorStatus(ctx, director, order.OrderNo, StatusUpdateRequest{Status: string(DirectorApproved)}))
}

func TestApprovalFlowThroughLoading(t *testing.T) {
	svc, repo, stockPort, _ := newTestService(false)
	ctx := context.Background()

	order, err := svc.Create(ctx, sales, CreateOrderRequest{
		CustomerID: 1,
		Items:      []CreateOrderItemRequest{{ProductID: 1, Quantity: 10, UnitPrice: price("5.00")}},
	})
	require.NoError(t, err)

	queued, err := svc.PendingAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, queued, 1)

	require.NoError(t, svc.SetAccountsStatus(ctx, accounts, order.OrderNo, StatusUpdateRequest{Status: string(AccountsRecommend)}))

	queued, err = svc.DirectorQueue(ctx)
	require.NoError(t, err)
	require.Len(t, queued, 1)
	require.Equal(t, "Acme Traders", queued[0].CustomerName)

	require.NoError(t, svc.SetDirectorStatus(ctx, director, order.OrderNo, StatusUpdateRequest{Status: string(DirectorApproved)}))

	queued, err = svc.AwaitingLoading(ctx)
	require.NoError(t, err)
	require.Len(t, queued, 1)

	itemID := queued[0].Items[0].ID
	err = svc.UpdateLoading(ctx, warehouse, order.OrderNo, LoadingUpdateRequest{
		Status: string(LoadingLoaded),
		Items:  []ItemLoadRequest{{ItemID: itemID, LoadedQuantity: 8}},
	})
	require.NoError(t, err)

	require.Len(t, stockPort.consumed, 1)
	require.Equal(t, int64(1), stockPort.consumed[0].ProductID)
	require.Equal(t, 8.0, stockPort.consumed[0].Qty)
	require.Equal(t, order.OrderNo, stockPort.consumed[0].OrderNo)

	loaded, err := svc.Get(ctx, order.OrderNo)
	require.NoError(t, err)
	require.Equal(t, LoadingLoaded, loaded.LoadingStatus)
	require.Equal(t, -2.0, loaded.Items[0].Variance())

	history, err := svc.LoadingHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)

	queued, err = svc.AwaitingLoading(ctx)
	require.NoError(t, err)
	require.Empty(t, queued)

	stored, ok := repo.orders[order.OrderNo]
	require.True(t, ok)
	require.Equal(t, LoadingLoaded, stored.LoadingStatus)
}

func TestLoadingClosedUntilDirectorApproves(t *testing.T) {
	svc, _, stockPort, _ := newTestService(false)
	ctx := context.Background()

	order, err := svc.Create(ctx, sales, CreateOrderRequest{
		CustomerID: 1,
		Items:      []CreateOrderItemRequest{{ProductID: 1, Quantity: 10, UnitPrice: price("5.00")}},
	})
	require.NoError(t, err)

	err = svc.UpdateLoading(ctx, warehouse, order.OrderNo, LoadingUpdateRequest{Status: string(LoadingLoaded)})
	require.ErrorIs(t, err, ErrStageNotReady)
	require.Empty(t, stockPort.consumed)
}

func TestLoadingCancelledConsumesNothing(t *testing.T) {
	svc, _, stockPort, _ := newTestService(false)
	ctx := context.Background()

	order, err := svc.Create(ctx, sales, CreateOrderRequest{
		CustomerID: 1,
		Items:      []CreateOrderItemRequest{{ProductID: 1, Quantity: 10, UnitPrice: price("5.00")}},
	})
	require.NoError(t, err)
	require.NoError(t, svc.SetAccountsStatus(ctx, accounts, order.OrderNo, StatusUpdateRequest{Status: string(AccountsRecommend)}))
	require.NoError(t, svc.SetDirectorStatus(ctx, director, order.OrderNo, StatusUpdateRequest{Status: string(DirectorApproved)}))

	err = svc.UpdateLoading(ctx, warehouse, order.OrderNo, LoadingUpdateRequest{Status: string(LoadingCancelled), Remarks: "customer withdrew"})
	require.NoError(t, err)
	require.Empty(t, stockPort.consumed)
}

func TestLoadingRejectsForeignItem(t *testing.T) {
	svc, _, _, _ := newTestService(false)
	ctx := context.Background()

	order, err := svc.Create(ctx, sales, CreateOrderRequest{
		CustomerID: 1,
		Items:      []CreateOrderItemRequest{{ProductID: 1, Quantity: 10, UnitPrice: price("5.00")}},
	})
	require.NoError(t, err)
	require.NoError(t, svc.SetAccountsStatus(ctx, accounts, order.OrderNo, StatusUpdateRequest{Status: string(AccountsRecommend)}))
	require.NoError(t, svc.SetDirectorStatus(ctx, director, order.OrderNo, StatusUpdateRequest{Status: string(DirectorApproved)}))

	err = svc.UpdateLoading(ctx, warehouse, order.OrderNo, LoadingUpdateRequest{
		Status: string(LoadingLoaded),
		Items:  []ItemLoadRequest{{ItemID: 9999, LoadedQuantity: 1}},
	})
	require.ErrorIs(t, err, ErrUnknownItem)
}

func TestStatusUpdateRejectsUnknownValue(t *testing.T) {
	svc, _, _, _ := newTestService(false)
	ctx := context.Background()

	order, err := svc.Create(ctx, sales, CreateOrderRequest{
		CustomerID: 1,
		Items:      []CreateOrderItemRequest{{ProductID: 1, Quantity: 10, UnitPrice: price("5.00")}},
	})
	require.NoError(t, err)

	err = svc.SetAccountsStatus(ctx, accounts, order.OrderNo, StatusUpdateRequest{Status: "Maybe"})
	require.ErrorIs(t, err, ErrUnknownStatus)
}

func TestByAccountsStatusFilters(t *testing.T) {
	svc, _, _, _ := newTestService(false)
	ctx := context.Background()

	order, err := svc.Create(ctx, sales, CreateOrderRequest{
		CustomerID: 1,
		Items:      []CreateOrderItemRequest{{ProductID: 1, Quantity: 1, UnitPrice: price("5.00")}},
	})
	require.NoError(t, err)
	require.NoError(t, svc.SetAccountsStatus(ctx, accounts, order.OrderNo, StatusUpdateRequest{Status: string(AccountsDoNotRecommend)}))

	declined, err := svc.ByAccountsStatus(ctx, AccountsDoNotRecommend)
	require.NoError(t, err)
	require.Len(t, declined, 1)

	pending, err := svc.ByAccountsStatus(ctx, AccountsPending)
	require.NoError(t, err)
	require.Empty(t, pending)

	_, err = svc.ByAccountsStatus(ctx, AccountsStatus("Maybe"))
	require.ErrorIs(t, err, ErrUnknownStatus)
}

func TestLoadingSettlesOnce(t *testing.T) {
	svc, _, stockPort, _ := newTestService(false)
	ctx := context.Background()

	order, err := svc.Create(ctx, sales, CreateOrderRequest{
		CustomerID: 1,
		Items:      []CreateOrderItemRequest{{ProductID: 1, Quantity: 10, UnitPrice: price("5.00")}},
	})
	require.NoError(t, err)
	require.NoError(t, svc.SetAccountsStatus(ctx, accounts, order.OrderNo, StatusUpdateRequest{Status: string(AccountsRecommend)}))
	require.NoError(t, svc.SetDirectorStatus(ctx, director, order.OrderNo, StatusUpdateRequest{Status: string(DirectorApproved)}))

	loaded, err := svc.Get(ctx, order.OrderNo)
	require.NoError(t, err)
	itemID := loaded.Items[0].ID

	err = svc.UpdateLoading(ctx, warehouse, order.OrderNo, LoadingUpdateRequest{
		Status: string(LoadingLoaded),
		Items:  []ItemLoadRequest{{ItemID: itemID, LoadedQuantity: 8}},
	})
	require.NoError(t, err)
	require.Len(t, stockPort.consumed, 1)

	err = svc.UpdateLoading(ctx, warehouse, order.OrderNo, LoadingUpdateRequest{
		Status: string(LoadingLoaded),
		Items:  []ItemLoadRequest{{ItemID: itemID, LoadedQuantity: 8}},
	})
	require.ErrorIs(t, err, ErrLoadingSettled)
	require.Len(t, stockPort.consumed, 1)
}

func TestTransitionsInvalidateDashboardCounts(t *testing.T) {
	svc, _, _, _, dashboard := newTestServiceWithDashboard(false)
	ctx := context.Background()

	order, err := svc.Create(ctx, sales, CreateOrderRequest{
		CustomerID: 1,
		Items:      []CreateOrderItemRequest{{ProductID: 1, Quantity: 10, UnitPrice: price("5.00")}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, dashboard.invalidations)

	require.NoError(t, svc.SetAccountsStatus(ctx, accounts, order.OrderNo, StatusUpdateRequest{Status: string(AccountsRecommend)}))
	require.NoError(t, svc.SetDirectorStatus(ctx, director, order.OrderNo, StatusUpdateRequest{Status: string(DirectorApproved)}))
	require.Equal(t, 3, dashboard.invalidations)

	loaded, err := svc.Get(ctx, order.OrderNo)
	require.NoError(t, err)
	require.NoError(t, svc.UpdateLoading(ctx, warehouse, order.OrderNo, LoadingUpdateRequest{
		Status: string(LoadingLoaded),
		Items:  []ItemLoadRequest{{ItemID: loaded.Items[0].ID, LoadedQuantity: 10}},
	}))
	require.Equal(t, 4, dashboard.invalidations)

	// A rejected transition leaves the cache alone.
	err = svc.SetDirectorStatus(ctx, director, order.OrderNo, StatusUpdateRequest{Status: "Shipped"})
	require.ErrorIs(t, err, ErrUnknownStatus)
	require.Equal(t, 4, dashboard.invalidations)
}

func TestServiceRunsWithoutDashboardCache(t *testing.T) {
	repo := newFakeOrderRepo()
	catalog := &fakeCatalog{products: map[int64]products.Product{
		1: {ID: 1, Name: "Widget", UOM: "pcs", OpeningQty: 10, Qty: 10},
	}}
	svc := NewService(repo, catalog, &fakeStock{}, &fakeAudit{}, nil, false)

	_, err := svc.Create(context.Background(), sales, CreateOrderRequest{
		CustomerID: 1,
		Items:      []CreateOrderItemRequest{{ProductID: 1, Quantity: 1, UnitPrice: price("5.00")}},
	})
	require.NoError(t, err)
}
