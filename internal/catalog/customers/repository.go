package customers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salesdesk/salesdesk/internal/shared"
)

// Repository defines customer persistence.
type Repository interface {
	Create(ctx context.Context, c Customer) (int64, error)
	Get(ctx context.Context, id int64) (Customer, error)
	List(ctx context.Context) ([]Customer, error)
	Exists(ctx context.Context, name, contact string) (bool, error)
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Create(ctx context.Context, c Customer) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO customers (customer_name, contact, address, contact_person_name, created_at)
VALUES ($1,$2,$3,$4,NOW()) RETURNING id`, c.Name, c.Contact, c.Address, c.ContactPerson).Scan(&id)
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return 0, shared.ErrConflict
		}
		return 0, err
	}
	return id, nil
}

func (r *PGRepository) Get(ctx context.Context, id int64) (Customer, error) {
	var c Customer
	err := r.pool.QueryRow(ctx, `SELECT id, customer_name, contact, address, contact_person_name, created_at
FROM customers WHERE id=$1`, id).Scan(&c.ID, &c.Name, &c.Contact, &c.Address, &c.ContactPerson, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, shared.ErrNotFound
		}
		return Customer{}, err
	}
	return c, nil
}

func (r *PGRepository) List(ctx context.Context) ([]Customer, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, customer_name, contact, address, contact_person_name, created_at
FROM customers ORDER BY customer_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Contact, &c.Address, &c.ContactPerson, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PGRepository) Exists(ctx context.Context, name, contact string) (bool, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers WHERE customer_name=$1 AND contact=$2`, name, contact).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ Repository = (*PGRepository)(nil)
