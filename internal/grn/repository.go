package grn

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salesdesk/salesdesk/internal/platform/db"
)

// Repository defines persistence for GRN batches.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Insert(ctx context.Context, item Item) (int64, error)
	ItemsByBatch(ctx context.Context, grnID string) ([]Item, error)
	MarkVerified(ctx context.Context, itemID int64, verifiedQty, discrepancy float64, verifiedBy string, at time.Time) error
	ListBatches(ctx context.Context) ([]BatchSummary, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{db: pool, pool: pool}
}

func (r *PGRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &PGRepository{db: tx, pool: r.pool})
	})
}

func (r *PGRepository) Insert(ctx context.Context, item Item) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO grn_items (grn_id, product_id, product_name, quantity_ordered, quantity_received,
batch_number, expiration_date, remarks, uploaded_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW()) RETURNING id`,
		item.GRNID, item.ProductID, item.ProductName, item.OrderedQty, item.ReceivedQty,
		item.BatchNumber, item.ExpiryDate, item.Remarks, item.UploadedBy).Scan(&id)
	return id, err
}

const itemColumns = `id, grn_id, product_id, product_name, quantity_ordered, quantity_received, verified_quantity,
discrepancy, batch_number, expiration_date, remarks, uploaded_by, created_at, verified_at, verified_by`

func (r *PGRepository) ItemsByBatch(ctx context.Context, grnID string) ([]Item, error) {
	rows, err := r.db.Query(ctx, `SELECT `+itemColumns+` FROM grn_items WHERE grn_id=$1 ORDER BY id ASC`, grnID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.GRNID, &item.ProductID, &item.ProductName, &item.OrderedQty,
			&item.ReceivedQty, &item.VerifiedQty, &item.Discrepancy, &item.BatchNumber, &item.ExpiryDate,
			&item.Remarks, &item.UploadedBy, &item.CreatedAt, &item.VerifiedAt, &item.VerifiedBy); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *PGRepository) MarkVerified(ctx context.Context, itemID int64, verifiedQty, discrepancy float64, verifiedBy string, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE grn_items SET quantity_received=$1, verified_quantity=$1, discrepancy=$2, verified_at=$3, verified_by=$4 WHERE id=$5`,
		verifiedQty, discrepancy, at, verifiedBy, itemID)
	return err
}

func (r *PGRepository) ListBatches(ctx context.Context) ([]BatchSummary, error) {
	rows, err := r.db.Query(ctx, `SELECT grn_id, COUNT(*), SUM(quantity_ordered), COALESCE(SUM(verified_quantity),0),
COALESCE(SUM(discrepancy),0), MIN(uploaded_by), MIN(created_at), MAX(verified_at)
FROM grn_items GROUP BY grn_id ORDER BY MIN(created_at) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var batches []BatchSummary
	for rows.Next() {
		var b BatchSummary
		if err := rows.Scan(&b.GRNID, &b.ItemCount, &b.TotalOrdered, &b.TotalVerified,
			&b.Discrepancy, &b.UploadedBy, &b.CreatedAt, &b.VerifiedAt); err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
