package orders

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salesdesk/salesdesk/internal/platform/db"
	"github.com/salesdesk/salesdesk/internal/shared"
)

// Repository defines persistence for the order ledger.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Insert(ctx context.Context, o Order) (int64, error)
	InsertItem(ctx context.Context, item OrderItem) (int64, error)
	GetByNumber(ctx context.Context, orderNo string) (*Order, error)
	SetAccountsStatus(ctx context.Context, orderNo string, status AccountsStatus, remarks string) error
	SetDirectorStatus(ctx context.Context, orderNo string, status DirectorStatus, remarks string) error
	SetLoadingStatus(ctx context.Context, orderNo string, status LoadingStatus, remarks string) error
	SetItemLoading(ctx context.Context, itemID int64, loadedQty float64, remarks string) error
	List(ctx context.Context, filter ListFilter) ([]OrderWithCustomer, error)
}

// ListFilter narrows order queries. Nil fields are unconstrained.
type ListFilter struct {
	AccountsStatus *AccountsStatus
	DirectorStatus *DirectorStatus
	LoadingStatus  []LoadingStatus
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

// WithTx runs fn against a repository bound to one transaction, committing
// only if fn succeeds: the order header and its items persist together or
// not at all.
func (r *PGRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &PGRepository{db: tx, pool: r.pool})
	})
}

func (r *PGRepository) Insert(ctx context.Context, o Order) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO orders (order_id, customer_id, salesperson_name, total_amount, order_date, payment_terms,
accounts_approval_status, accounts_remarks, director_approval_status, director_remarks, loading_status, loading_remarks, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,NOW()) RETURNING id`,
		o.OrderNo, o.CustomerID, o.Salesperson, o.TotalAmount, o.OrderDate, o.PaymentTerms,
		string(o.AccountsStatus), o.AccountsRemarks, string(o.DirectorStatus), o.DirectorRemarks,
		string(o.LoadingStatus), o.LoadingRemarks).Scan(&id)
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return 0, shared.ErrConflict
		}
		return 0, err
	}
	return id, nil
}

func (r *PGRepository) InsertItem(ctx context.Context, item OrderItem) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO order_items (order_id, product_id, product_name, quantity_ordered, unit_price, total_price)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		item.OrderNo, item.ProductID, item.ProductName, item.QuantityOrdered, item.UnitPrice, item.TotalPrice).Scan(&id)
	return id, err
}

const orderColumns = `id, order_id, customer_id, salesperson_name, total_amount, order_date, payment_terms,
accounts_approval_status, accounts_remarks, director_approval_status, director_remarks, loading_status, loading_remarks, created_at`

func scanOrder(row pgx.Row, o *Order) error {
	var accounts, director, loading string
	err := row.Scan(&o.ID, &o.OrderNo, &o.CustomerID, &o.Salesperson, &o.TotalAmount, &o.OrderDate, &o.PaymentTerms,
		&accounts, &o.AccountsRemarks, &director, &o.DirectorRemarks, &loading, &o.LoadingRemarks, &o.CreatedAt)
	if err != nil {
		return err
	}
	o.AccountsStatus = AccountsStatus(accounts)
	o.DirectorStatus = DirectorStatus(director)
	o.LoadingStatus = LoadingStatus(loading)
	return nil
}

func (r *PGRepository) GetByNumber(ctx context.Context, orderNo string) (*Order, error) {
	var o Order
	err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_id=$1`, orderNo), &o)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	items, err := r.itemsFor(ctx, []string{o.OrderNo})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.OrderNo]
	return &o, nil
}

func (r *PGRepository) SetAccountsStatus(ctx context.Context, orderNo string, status AccountsStatus, remarks string) error {
	return r.updateStatus(ctx, `UPDATE orders SET accounts_approval_status=$1, accounts_remarks=$2 WHERE order_id=$3`, string(status), remarks, orderNo)
}

func (r *PGRepository) SetDirectorStatus(ctx context.Context, orderNo string, status DirectorStatus, remarks string) error {
	return r.updateStatus(ctx, `UPDATE orders SET director_approval_status=$1, director_remarks=$2 WHERE order_id=$3`, string(status), remarks, orderNo)
}

func (r *PGRepository) SetLoadingStatus(ctx context.Context, orderNo string, status LoadingStatus, remarks string) error {
	return r.updateStatus(ctx, `UPDATE orders SET loading_status=$1, loading_remarks=$2 WHERE order_id=$3`, string(status), remarks, orderNo)
}

func (r *PGRepository) updateStatus(ctx context.Context, query, status, remarks, orderNo string) error {
	var remarksArg any
	if remarks != "" {
		remarksArg = remarks
	}
	tag, err := r.db.Exec(ctx, query, status, remarksArg, orderNo)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) SetItemLoading(ctx context.Context, itemID int64, loadedQty float64, remarks string) error {
	var remarksArg any
	if remarks != "" {
		remarksArg = remarks
	}
	tag, err := r.db.Exec(ctx, `UPDATE order_items SET loaded_quantity=$1, loading_remarks=$2 WHERE id=$3`, loadedQty, remarksArg, itemID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]OrderWithCustomer, error) {
	query := `SELECT o.id, o.order_id, o.customer_id, o.salesperson_name, o.total_amount, o.order_date, o.payment_terms,
o.accounts_approval_status, o.accounts_remarks, o.director_approval_status, o.director_remarks, o.loading_status, o.loading_remarks, o.created_at,
c.customer_name
FROM orders o JOIN customers c ON o.customer_id = c.id`
	var conditions []string
	var args []interface{}
	if filter.AccountsStatus != nil {
		args = append(args, string(*filter.AccountsStatus))
		conditions = append(conditions, "o.accounts_approval_status = $"+strconv.Itoa(len(args)))
	}
	if filter.DirectorStatus != nil {
		args = append(args, string(*filter.DirectorStatus))
		conditions = append(conditions, "o.director_approval_status = $"+strconv.Itoa(len(args)))
	}
	if len(filter.LoadingStatus) > 0 {
		statuses := make([]string, 0, len(filter.LoadingStatus))
		for _, s := range filter.LoadingStatus {
			statuses = append(statuses, string(s))
		}
		args = append(args, statuses)
		conditions = append(conditions, "o.loading_status = ANY($"+strconv.Itoa(len(args))+")")
	}
	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY o.order_date DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []OrderWithCustomer
	var orderNos []string
	for rows.Next() {
		var o OrderWithCustomer
		var accounts, director, loading string
		err := rows.Scan(&o.ID, &o.OrderNo, &o.CustomerID, &o.Salesperson, &o.TotalAmount, &o.OrderDate, &o.PaymentTerms,
			&accounts, &o.AccountsRemarks, &director, &o.DirectorRemarks, &loading, &o.LoadingRemarks, &o.CreatedAt,
			&o.CustomerName)
		if err != nil {
			return nil, err
		}
		o.AccountsStatus = AccountsStatus(accounts)
		o.DirectorStatus = DirectorStatus(director)
		o.LoadingStatus = LoadingStatus(loading)
		list = append(list, o)
		orderNos = append(orderNos, o.OrderNo)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return list, nil
	}

	items, err := r.itemsFor(ctx, orderNos)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Items = items[list[i].OrderNo]
	}
	return list, nil
}

func (r *PGRepository) itemsFor(ctx context.Context, orderNos []string) (map[string][]OrderItem, error) {
	rows, err := r.db.Query(ctx, `SELECT id, order_id, product_id, product_name, quantity_ordered, unit_price, total_price, loaded_quantity, loading_remarks
FROM order_items WHERE order_id = ANY($1) ORDER BY id ASC`, orderNos)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make(map[string][]OrderItem)
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.OrderNo, &item.ProductID, &item.ProductName, &item.QuantityOrdered,
			&item.UnitPrice, &item.TotalPrice, &item.LoadedQuantity, &item.LoadingRemarks); err != nil {
			return nil, err
		}
		items[item.OrderNo] = append(items[item.OrderNo], item)
	}
	return items, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
