package grn

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/salesdesk/salesdesk/internal/catalog/products"
	"github.com/salesdesk/salesdesk/internal/shared"
	"github.com/salesdesk/salesdesk/internal/stock"
)

type fakeGRNRepo struct {
	items  []Item
	nextID int64
}

func (r *fakeGRNRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, r)
}

func (r *fakeGRNRepo) Insert(ctx context.Context, item Item) (int64, error) {
	r.nextID++
	item.ID = r.nextID
	item.CreatedAt = time.Now()
	r.items = append(r.items, item)
	return item.ID, nil
}

func (r *fakeGRNRepo) ItemsByBatch(ctx context.Context, grnID string) ([]Item, error) {
	var out []Item
	for _, item := range r.items {
		if item.GRNID == grnID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeGRNRepo) MarkVerified(ctx context.Context, itemID int64, verifiedQty, discrepancy float64, verifiedBy string, at time.Time) error {
	for i := range r.items {
		if r.items[i].ID == itemID {
			qty := verifiedQty
			disc := discrepancy
			by := verifiedBy
			when := at
			r.items[i].ReceivedQty = verifiedQty
			r.items[i].VerifiedQty = &qty
			r.items[i].Discrepancy = &disc
			r.items[i].VerifiedBy = &by
			r.items[i].VerifiedAt = &when
			return nil
		}
	}
	return shared.ErrNotFound
}

func (r *fakeGRNRepo) ListBatches(ctx context.Context) ([]BatchSummary, error) {
	byBatch := make(map[string]*BatchSummary)
	var order []string
	for _, item := range r.items {
		summary, ok := byBatch[item.GRNID]
		if !ok {
			summary = &BatchSummary{GRNID: item.GRNID, UploadedBy: item.UploadedBy, CreatedAt: item.CreatedAt}
			byBatch[item.GRNID] = summary
			order = append(order, item.GRNID)
		}
		summary.ItemCount++
		summary.TotalOrdered += item.OrderedQty
		if item.VerifiedQty != nil {
			summary.TotalVerified += *item.VerifiedQty
		}
		if item.Discrepancy != nil {
			summary.Discrepancy += *item.Discrepancy
		}
	}
	out := make([]BatchSummary, 0, len(order))
	for _, id := range order {
		out = append(out, *byBatch[id])
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
	receipts []stock.ReceiptInput
}

func (s *fakeStock) ApplyReceipt(ctx context.Context, input stock.ReceiptInput) (stock.Movement, error) {
	s.receipts = append(s.receipts, input)
	return stock.Movement{ProductID: input.ProductID, Type: stock.MovementIn, Quantity: input.Qty, Reference: input.GRNID}, nil
}

func newTestService() (*Service, *fakeGRNRepo, *fakeStock) {
	repo := &fakeGRNRepo{}
	catalog := &fakeCatalog{products: map[int64]products.Product{
		1: {ID: 1, Name: "Widget", UOM: "pcs"},
		2: {ID: 2, Name: "Gadget", UOM: "pcs"},
	}}
	stockPort := &fakeStock{}
	return NewService(repo, catalog, stockPort, nil), repo, stockPort
}

var (
	uploader = shared.Actor{UserID: 2, Username: "alice", Role: shared.RoleAccounts}
	verifier = shared.Actor{UserID: 4, Username: "wanda", Role: shared.RoleLoading}
)

func TestUploadCreatesUnverifiedItems(t *testing.T) {
	svc, _, stockPort := newTestService()

	items, err := svc.Upload(context.Background(), uploader, UploadRequest{
		GRNID: "GRN-42",
		Items: []UploadLine{
			{ProductID: 1, OrderedQty: 20},
			{ProductID: 2, OrderedQty: 5},
		},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "Widget", items[0].ProductName)
	require.Equal(t, 0.0, items[0].ReceivedQty)
	require.False(t, items[0].Verified())
	require.Equal(t, "alice", items[0].UploadedBy)
	require.Empty(t, stockPort.receipts)
}

func TestUploadGeneratesBatchIDWhenMissing(t *testing.T) {
	svc, _, _ := newTestService()

	items, err := svc.Upload(context.Background(), uploader, UploadRequest{
		Items: []UploadLine{{ProductID: 1, OrderedQty: 1}},
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(items[0].GRNID, "GRN-"))
}

func TestUploadRejectsUnknownProduct(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.Upload(context.Background(), uploader, UploadRequest{
		GRNID: "GRN-42",
		Items: []UploadLine{{ProductID: 99, OrderedQty: 1}},
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.Empty(t, repo.items)
}

func TestVerifyRecordsDiscrepancyAndReceivesStock(t *testing.T) {
	svc, _, stockPort := newTestService()
	ctx := context.Background()

	uploaded, err := svc.Upload(ctx, uploader, UploadRequest{
		GRNID: "GRN-42",
		Items: []UploadLine{
			{ProductID: 1, OrderedQty: 20},
			{ProductID: 2, OrderedQty: 5},
		},
	})
	require.NoError(t, err)

	verified, err := svc.Verify(ctx, verifier, "GRN-42", VerifyRequest{
		Items: []VerifyLine{
			{ItemID: uploaded[0].ID, VerifiedQty: 18},
			{ItemID: uploaded[1].ID, VerifiedQty: 5},
		},
	})
	require.NoError(t, err)
	require.Equal(t, -2.0, *verified[0].Discrepancy)
	require.Equal(t, 0.0, *verified[1].Discrepancy)
	require.Equal(t, "wanda", *verified[0].VerifiedBy)

	// A zero discrepancy line still posts its receipt.
	require.Len(t, stockPort.receipts, 2)
	require.Equal(t, 18.0, stockPort.receipts[0].Qty)
	require.Equal(t, "GRN-42", stockPort.receipts[0].GRNID)
	require.Equal(t, 5.0, stockPort.receipts[1].Qty)
}

func TestVerifyTwiceIsRejected(t *testing.T) {
	svc, _, stockPort := newTestService()
	ctx := context.Background()

	uploaded, err := svc.Upload(ctx, uploader, UploadRequest{
		GRNID: "GRN-42",
		Items: []UploadLine{{ProductID: 1, OrderedQty: 20}},
	})
	require.NoError(t, err)

	req := VerifyRequest{Items: []VerifyLine{{ItemID: uploaded[0].ID, VerifiedQty: 20}}}
	_, err = svc.Verify(ctx, verifier, "GRN-42", req)
	require.NoError(t, err)

	_, err = svc.Verify(ctx, verifier, "GRN-42", req)
	require.ErrorIs(t, err, ErrAlreadyVerified)

	// The receipt posted exactly once; re-verification cannot double stock.
	require.Len(t, stockPort.receipts, 1)
}

func TestVerifyUnknownBatch(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Verify(context.Background(), verifier, "GRN-nope", VerifyRequest{
		Items: []VerifyLine{{ItemID: 1, VerifiedQty: 1}},
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestVerifyRejectsForeignItem(t *testing.T) {
	svc, _, stockPort := newTestService()
	ctx := context.Background()

	_, err := svc.Upload(ctx, uploader, UploadRequest{
		GRNID: "GRN-42",
		Items: []UploadLine{{ProductID: 1, OrderedQty: 20}},
	})
	require.NoError(t, err)

	_, err = svc.Verify(ctx, verifier, "GRN-42", VerifyRequest{
		Items: []VerifyLine{{ItemID: 9999, VerifiedQty: 1}},
	})
	require.ErrorIs(t, err, ErrUnknownItem)
	require.Empty(t, stockPort.receipts)
}

func TestHistorySummarisesBatches(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	uploaded, err := svc.Upload(ctx, uploader, UploadRequest{
		GRNID: "GRN-42",
		Items: []UploadLine{
			{ProductID: 1, OrderedQty: 20},
			{ProductID: 2, OrderedQty: 5},
		},
	})
	require.NoError(t, err)
	_, err = svc.Verify(ctx, verifier, "GRN-42", VerifyRequest{
		Items: []VerifyLine{
			{ItemID: uploaded[0].ID, VerifiedQty: 18},
			{ItemID: uploaded[1].ID, VerifiedQty: 5},
		},
	})
	require.NoError(t, err)

	history, err := svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, 2, history[0].ItemCount)
	require.Equal(t, 25.0, history[0].TotalOrdered)
	require.Equal(t, 23.0, history[0].TotalVerified)
	require.Equal(t, -2.0, history[0].Discrepancy)
}

func TestVerifySubsetLeavesRemainingLinesOpen(t *testing.T) {
	svc, _, stockPort := newTestService()
	ctx := context.Background()

	uploaded, err := svc.Upload(ctx, uploader, UploadRequest{
		GRNID: "GRN-42",
		Items: []UploadLine{
			{ProductID: 1, OrderedQty: 20},
			{ProductID: 2, OrderedQty: 5},
		},
	})
	require.NoError(t, err)

	_, err = svc.Verify(ctx, verifier, "GRN-42", VerifyRequest{
		Items: []VerifyLine{{ItemID: uploaded[0].ID, VerifiedQty: 20}},
	})
	require.NoError(t, err)
	require.Len(t, stockPort.receipts, 1)

	// The untouched line is still open and verifies on a later pass.
	verified, err := svc.Verify(ctx, verifier, "GRN-42", VerifyRequest{
		Items: []VerifyLine{{ItemID: uploaded[1].ID, VerifiedQty: 5}},
	})
	require.NoError(t, err)
	require.Len(t, stockPort.receipts, 2)
	require.Equal(t, 5.0, stockPort.receipts[1].Qty)
	require.True(t, verified[1].Verified())

	// The settled line stays settled.
	_, err = svc.Verify(ctx, verifier, "GRN-42", VerifyRequest{
		Items: []VerifyLine{{ItemID: uploaded[0].ID, VerifiedQty: 20}},
	})
	require.ErrorIs(t, err, ErrAlreadyVerified)
	require.Len(t, stockPort.receipts, 2)
}
