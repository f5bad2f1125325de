package stock

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists stock data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations used by the service.
type TxRepository interface {
	GetProductForUpdate(ctx context.Context, productID int64) (ProductStock, error)
	SetProductQty(ctx context.Context, productID int64, qty float64) error
	InsertMovement(ctx context.Context, m Movement) (int64, error)
	InsertAdjustment(ctx context.Context, a Adjustment) (int64, error)
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("stock repository not initialised")
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txRepository{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// GetProductStock returns the live stock row for a product.
func (r *Repository) GetProductStock(ctx context.Context, productID int64) (ProductStock, error) {
	var ps ProductStock
	err := r.pool.QueryRow(ctx, `SELECT product_id, product_name, unit_of_measure, opening_qty, qty
FROM products WHERE product_id=$1`, productID).
		Scan(&ps.ProductID, &ps.Name, &ps.Unit, &ps.OpeningQty, &ps.Qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProductStock{}, ErrProductNotFound
		}
		return ProductStock{}, err
	}
	return ps, nil
}

// ListMovements returns all movements for a product in timestamp order.
func (r *Repository) ListMovements(ctx context.Context, productID int64) ([]Movement, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, product_id, movement_type, quantity, COALESCE(reference,''), COALESCE(remarks,''), created_at
FROM stock_movements WHERE product_id=$1 ORDER BY created_at ASC, id ASC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var movements []Movement
	for rows.Next() {
		var m Movement
		var mtype string
		if err := rows.Scan(&m.ID, &m.ProductID, &mtype, &m.Quantity, &m.Reference, &m.Remarks, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Type = MovementType(mtype)
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// ListAdjustments returns all adjustments for a product in timestamp order.
func (r *Repository) ListAdjustments(ctx context.Context, productID int64) ([]Adjustment, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, product_id, adjustment_type, quantity, reason, adjusted_by, previous_quantity, new_quantity, created_at
FROM stock_adjustments WHERE product_id=$1 ORDER BY created_at ASC, id ASC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var adjustments []Adjustment
	for rows.Next() {
		var a Adjustment
		var atype string
		if err := rows.Scan(&a.ID, &a.ProductID, &atype, &a.Quantity, &a.Reason, &a.AdjustedBy, &a.PreviousQty, &a.NewQty, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Type = AdjustmentType(atype)
		adjustments = append(adjustments, a)
	}
	return adjustments, rows.Err()
}

func (r *txRepository) GetProductForUpdate(ctx context.Context, productID int64) (ProductStock, error) {
	var ps ProductStock
	err := r.tx.QueryRow(ctx, `SELECT product_id, product_name, unit_of_measure, opening_qty, qty
FROM products WHERE product_id=$1 FOR UPDATE`, productID).
		Scan(&ps.ProductID, &ps.Name, &ps.Unit, &ps.OpeningQty, &ps.Qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProductStock{}, ErrProductNotFound
		}
		return ProductStock{}, err
	}
	return ps, nil
}

func (r *txRepository) SetProductQty(ctx context.Context, productID int64, qty float64) error {
	tag, err := r.tx.Exec(ctx, `UPDATE products SET qty=$1 WHERE product_id=$2`, qty, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *txRepository) InsertMovement(ctx context.Context, m Movement) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO stock_movements (product_id, movement_type, quantity, reference, remarks, created_at)
VALUES ($1,$2,$3,$4,$5,NOW()) RETURNING id`, m.ProductID, string(m.Type), m.Quantity, nullString(m.Reference), nullString(m.Remarks)).Scan(&id)
	return id, err
}

func (r *txRepository) InsertAdjustment(ctx context.Context, a Adjustment) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO stock_adjustments (product_id, adjustment_type, quantity, reason, adjusted_by, previous_quantity, new_quantity, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,NOW()) RETURNING id`, a.ProductID, string(a.Type), a.Quantity, a.Reason, a.AdjustedBy, a.PreviousQty, a.NewQty).Scan(&id)
	return id, err
}

func nullString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
