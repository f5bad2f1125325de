package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/salesdesk/salesdesk/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetProductStock(ctx context.Context, productID int64) (ProductStock, error)
	ListMovements(ctx context.Context, productID int64) ([]Movement, error)
	ListAdjustments(ctx context.Context, productID int64) ([]Adjustment, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service owns the three sanctioned mutation paths of Product.qty and the
// derived movement ledger. Nothing else in the system writes that column.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// ApplyReceipt increases a product's quantity from a verified GRN line and
// logs an IN movement referencing the GRN batch.
func (s *Service) ApplyReceipt(ctx context.Context, input ReceiptInput) (Movement, error) {
	if input.ProductID == 0 {
		return Movement{}, ErrProductNotFound
	}
	if input.Qty <= 0 {
		return Movement{}, ErrInvalidQuantity
	}
	remarks := input.Remarks
	if remarks == "" {
		remarks = "GRN Verified Entry"
	}
	movement := Movement{
		ProductID: input.ProductID,
		Type:      MovementIn,
		Quantity:  input.Qty,
		Reference: input.GRNID,
		Remarks:   remarks,
	}
	if err := s.applyMovement(ctx, movement, input.Qty); err != nil {
		return Movement{}, err
	}
	s.recordAudit(ctx, input.Actor, "stock:receipt", input.ProductID, map[string]any{
		"qty": input.Qty,
		"grn": input.GRNID,
	})
	return movement, nil
}

// ApplyLoadingConsumption decreases a product's quantity after an order is
// loaded and logs an OUT movement referencing the order.
func (s *Service) ApplyLoadingConsumption(ctx context.Context, input ConsumptionInput) (Movement, error) {
	if input.ProductID == 0 {
		return Movement{}, ErrProductNotFound
	}
	if input.Qty <= 0 {
		return Movement{}, ErrInvalidQuantity
	}
	remarks := input.Remarks
	if remarks == "" {
		remarks = "Order loaded"
	}
	movement := Movement{
		ProductID: input.ProductID,
		Type:      MovementOut,
		Quantity:  input.Qty,
		Reference: input.OrderNo,
		Remarks:   remarks,
	}
	if err := s.applyMovement(ctx, movement, -input.Qty); err != nil {
		return Movement{}, err
	}
	s.recordAudit(ctx, input.Actor, "stock:consumption", input.ProductID, map[string]any{
		"qty":   input.Qty,
		"order": input.OrderNo,
	})
	return movement, nil
}

// ApplyAdjustment overwrites a product's quantity to an absolute target and
// logs the correction with its surrounding levels. A target equal to the
// current level is rejected and leaves no trace.
func (s *Service) ApplyAdjustment(ctx context.Context, input AdjustmentInput) (Adjustment, error) {
	if input.ProductID == 0 {
		return Adjustment{}, ErrProductNotFound
	}
	if input.NewQty < 0 {
		return Adjustment{}, ErrInvalidQuantity
	}
	var adjustment Adjustment
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetProductForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}
		delta := input.NewQty - current.Qty
		if delta == 0 {
			return ErrNoChange
		}
		adjType := AdjustmentIncrease
		magnitude := delta
		if delta < 0 {
			adjType = AdjustmentDecrease
			magnitude = -delta
		}
		adjustment = Adjustment{
			ProductID:   input.ProductID,
			Type:        adjType,
			Quantity:    magnitude,
			Reason:      input.Reason,
			AdjustedBy:  input.Actor,
			PreviousQty: current.Qty,
			NewQty:      input.NewQty,
		}
		if _, err := tx.InsertAdjustment(ctx, adjustment); err != nil {
			return fmt.Errorf("stock: insert adjustment: %w", err)
		}
		// Overwrite, not increment: the recorded new level wins even if the
		// row changed meanwhile (FOR UPDATE above makes that impossible here).
		return tx.SetProductQty(ctx, input.ProductID, input.NewQty)
	})
	if err != nil {
		return Adjustment{}, err
	}
	s.recordAudit(ctx, input.Actor, "stock:adjustment", input.ProductID, map[string]any{
		"type":     string(adjustment.Type),
		"previous": adjustment.PreviousQty,
		"new":      adjustment.NewQty,
		"reason":   input.Reason,
	})
	return adjustment, nil
}

// Ledger builds the product-wise movement ledger: movements and adjustments
// merged in timestamp order behind a synthetic opening entry.
func (s *Service) Ledger(ctx context.Context, productID int64) (*Ledger, error) {
	product, err := s.repo.GetProductStock(ctx, productID)
	if err != nil {
		return nil, err
	}
	movements, err := s.repo.ListMovements(ctx, productID)
	if err != nil {
		return nil, err
	}
	adjustments, err := s.repo.ListAdjustments(ctx, productID)
	if err != nil {
		return nil, err
	}
	return buildLedger(product, movements, adjustments), nil
}

// StockLevel returns the live stock view for one product.
func (s *Service) StockLevel(ctx context.Context, productID int64) (ProductStock, error) {
	return s.repo.GetProductStock(ctx, productID)
}

func (s *Service) applyMovement(ctx context.Context, movement Movement, delta float64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetProductForUpdate(ctx, movement.ProductID)
		if err != nil {
			return err
		}
		if _, err := tx.InsertMovement(ctx, movement); err != nil {
			return fmt.Errorf("stock: insert movement: %w", err)
		}
		return tx.SetProductQty(ctx, movement.ProductID, current.Qty+delta)
	})
}

func (s *Service) recordAudit(ctx context.Context, actor string, action string, productID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Actor:    actor,
		Action:   action,
		Entity:   "product",
		EntityID: fmt.Sprintf("%d", productID),
		Meta:     meta,
		At:       time.Now().UTC(),
	})
}
