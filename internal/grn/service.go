package grn

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/salesdesk/salesdesk/internal/catalog/products"
	"github.com/salesdesk/salesdesk/internal/shared"
	"github.com/salesdesk/salesdesk/internal/stock"
)

// CatalogPort resolves products for name snapshotting at upload time.
type CatalogPort interface {
	Get(ctx context.Context, id int64) (products.Product, error)
}

// StockPort posts the warehouse receipt that follows verification.
type StockPort interface {
	ApplyReceipt(ctx context.Context, input stock.ReceiptInput) (stock.Movement, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service runs the two-phase GRN reconciliation: upload records the supplier
// document, verification settles received quantities and posts the stock
// receipts. A batch verifies at most once.
type Service struct {
	repo    Repository
	catalog CatalogPort
	stock   StockPort
	audit   AuditPort
}

// NewService builds Service.
func NewService(repo Repository, catalog CatalogPort, stockPort StockPort, audit AuditPort) *Service {
	return &Service{repo: repo, catalog: catalog, stock: stockPort, audit: audit}
}

// Upload records a new GRN batch. Lines are stored unverified with a zero
// received quantity until the warehouse verifies them.
func (s *Service) Upload(ctx context.Context, actor shared.Actor, req UploadRequest) ([]Item, error) {
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyBatch
	}
	grnID := req.GRNID
	if grnID == "" {
		grnID = "GRN-" + uuid.NewString()
	}
	items := make([]Item, 0, len(req.Items))
	for _, line := range req.Items {
		product, err := s.catalog.Get(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("grn: resolve product %d: %w", line.ProductID, err)
		}
		items = append(items, Item{
			GRNID:       grnID,
			ProductID:   product.ID,
			ProductName: product.Name,
			OrderedQty:  line.OrderedQty,
			BatchNumber: line.BatchNumber,
			ExpiryDate:  line.ExpiryDate,
			Remarks:     line.Remarks,
			UploadedBy:  actor.Username,
		})
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		for i := range items {
			id, err := tx.Insert(ctx, items[i])
			if err != nil {
				return err
			}
			items[i].ID = id
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "grn:upload", grnID, map[string]any{"items": len(items)})
	return items, nil
}

// Verify settles batch lines: each named line gets its verified quantity and
// the discrepancy against the supplier document, and every verified line with
// a positive quantity is received into stock. A line verifies at most once:
// naming an already verified line is rejected, otherwise its receipt would
// post twice. Lines left out of a partial verification stay open for a later
// pass.
func (s *Service) Verify(ctx context.Context, actor shared.Actor, grnID string, req VerifyRequest) ([]Item, error) {
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	items, err := s.repo.ItemsByBatch(ctx, grnID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, shared.ErrNotFound
	}
	byID := make(map[int64]*Item, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}
	for _, line := range req.Items {
		item, ok := byID[line.ItemID]
		if !ok {
			return nil, ErrUnknownItem
		}
		if item.Verified() {
			return nil, ErrAlreadyVerified
		}
	}

	now := time.Now()
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		for _, line := range req.Items {
			item := byID[line.ItemID]
			discrepancy := line.VerifiedQty - item.OrderedQty
			if err := tx.MarkVerified(ctx, line.ItemID, line.VerifiedQty, discrepancy, actor.Username, now); err != nil {
				return err
			}
			qty := line.VerifiedQty
			item.ReceivedQty = qty
			item.VerifiedQty = &qty
			item.Discrepancy = &discrepancy
			item.VerifiedAt = &now
			item.VerifiedBy = &actor.Username
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, line := range req.Items {
		if line.VerifiedQty <= 0 {
			continue
		}
		item := byID[line.ItemID]
		_, err := s.stock.ApplyReceipt(ctx, stock.ReceiptInput{
			ProductID: item.ProductID,
			Qty:       line.VerifiedQty,
			GRNID:     grnID,
			Actor:     actor.Username,
		})
		if err != nil {
			return nil, fmt.Errorf("grn: receive stock for item %d: %w", line.ItemID, err)
		}
	}
	s.recordAudit(ctx, actor, "grn:verify", grnID, map[string]any{"items": len(req.Items)})
	return items, nil
}

// Items returns the lines of one batch.
func (s *Service) Items(ctx context.Context, grnID string) ([]Item, error) {
	items, err := s.repo.ItemsByBatch(ctx, grnID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, shared.ErrNotFound
	}
	return items, nil
}

// History returns per-batch summaries, newest first.
func (s *Service) History(ctx context.Context) ([]BatchSummary, error) {
	return s.repo.ListBatches(ctx)
}

func (s *Service) recordAudit(ctx context.Context, actor shared.Actor, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Actor:    actor.Username,
		Action:   action,
		Entity:   "grn",
		EntityID: entityID,
		Meta:     meta,
	})
}
