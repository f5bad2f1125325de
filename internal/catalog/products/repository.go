package products

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salesdesk/salesdesk/internal/shared"
)

// Repository defines product persistence.
type Repository interface {
	Create(ctx context.Context, p Product) (int64, error)
	Get(ctx context.Context, id int64) (Product, error)
	List(ctx context.Context) ([]Product, error)
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Create(ctx context.Context, p Product) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO products (product_name, barcode, unit_of_measure, opening_qty, qty, batch_number, expiration_date, created_at)
VALUES ($1,$2,$3,$4,$4,$5,$6,NOW()) RETURNING product_id`,
		p.Name, p.Barcode, p.UOM, p.OpeningQty, p.BatchNumber, p.ExpirationDate).Scan(&id)
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return 0, shared.ErrConflict
		}
		return 0, err
	}
	return id, nil
}

func (r *PGRepository) Get(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := r.pool.QueryRow(ctx, `SELECT product_id, product_name, barcode, unit_of_measure, opening_qty, qty, batch_number, expiration_date, created_at
FROM products WHERE product_id=$1`, id).
		Scan(&p.ID, &p.Name, &p.Barcode, &p.UOM, &p.OpeningQty, &p.Qty, &p.BatchNumber, &p.ExpirationDate, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *PGRepository) List(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT product_id, product_name, barcode, unit_of_measure, opening_qty, qty, batch_number, expiration_date, created_at
FROM products ORDER BY product_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Barcode, &p.UOM, &p.OpeningQty, &p.Qty, &p.BatchNumber, &p.ExpirationDate, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
