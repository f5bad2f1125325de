package reports

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines the read-only report queries.
type Repository interface {
	DashboardCounts(ctx context.Context) (DashboardCounts, error)
	StockLevels(ctx context.Context) ([]StockLevel, error)
	OrderSummary(ctx context.Context) (OrderSummary, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) DashboardCounts(ctx context.Context) (DashboardCounts, error) {
	var counts DashboardCounts
	err := r.pool.QueryRow(ctx, `SELECT
COUNT(*) FILTER (WHERE accounts_approval_status = 'Pending'),
COUNT(*) FILTER (WHERE accounts_approval_status = 'Recommend for Processing' AND director_approval_status = 'Pending'),
COUNT(*) FILTER (WHERE director_approval_status = 'Approved' AND loading_status = 'Pending Loading')
FROM orders`).Scan(&counts.PendingAccounts, &counts.PendingDirector, &counts.PendingLoading)
	return counts, err
}

func (r *PGRepository) StockLevels(ctx context.Context) ([]StockLevel, error) {
	rows, err := r.pool.Query(ctx, `SELECT product_id, product_name, unit_of_measure, opening_qty, qty
FROM products ORDER BY product_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var levels []StockLevel
	for rows.Next() {
		var l StockLevel
		if err := rows.Scan(&l.ProductID, &l.Name, &l.Unit, &l.OpeningQty, &l.CurrentQty); err != nil {
			return nil, err
		}
		l.Difference = l.CurrentQty - l.OpeningQty
		levels = append(levels, l)
	}
	return levels, rows.Err()
}

func (r *PGRepository) OrderSummary(ctx context.Context) (OrderSummary, error) {
	var summary OrderSummary
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*), COALESCE(SUM(total_amount),0) FROM orders`).
		Scan(&summary.TotalOrders, &summary.TotalValue)
	if err != nil {
		return OrderSummary{}, err
	}
	for _, dim := range []struct {
		column string
		target *[]StatusBand
	}{
		{"accounts_approval_status", &summary.ByAccounts},
		{"director_approval_status", &summary.ByDirector},
		{"loading_status", &summary.ByLoading},
	} {
		bands, err := r.statusBands(ctx, dim.column)
		if err != nil {
			return OrderSummary{}, err
		}
		*dim.target = bands
	}
	return summary, nil
}

func (r *PGRepository) statusBands(ctx context.Context, column string) ([]StatusBand, error) {
	// column is one of the three fixed status columns above, never user input.
	rows, err := r.pool.Query(ctx, `SELECT `+column+`, COUNT(*), COALESCE(SUM(total_amount),0)
FROM orders GROUP BY `+column+` ORDER BY `+column)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var bands []StatusBand
	for rows.Next() {
		var b StatusBand
		if err := rows.Scan(&b.Status, &b.Count, &b.Value); err != nil {
			return nil, err
		}
		bands = append(bands, b)
	}
	return bands, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
