package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vibast-solutions/ms-go-order-payments/app/entity"
)

var (
	ErrOrderAlreadyExists = errors.New("order already exists")
	// ErrOrderConflict means the stored status no longer matches the status
	// the order was loaded with.
	ErrOrderConflict = errors.New("order was modified concurrently")
)

type OrderFilter struct {
	HasStatus bool
	Status    entity.OrderStatus
	Limit     int32
	Offset    int32
}

type OrderRepository struct {
	db DBTX
}

func NewOrderRepository(db DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Find(ctx context.Context, id string) (*entity.Order, error) {
	query := `
		SELECT id, amount, currency, customer_email, status, paid_at, created_at
		FROM orders
		WHERE id = ?
	`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return order, nil
}

// Save inserts an order that was never persisted. For a loaded order it
// writes status and paid_at only if the row still holds the status the
// order was loaded with.
func (r *OrderRepository) Save(ctx context.Context, order *entity.Order) error {
	storedStatus, persisted := order.StoredStatus()
	if !persisted {
		return r.insert(ctx, order)
	}
	if storedStatus == order.Status() {
		return nil
	}

	query := `
		UPDATE orders SET
			status = ?,
			paid_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		string(order.Status()),
		nullableTimeValue(order.PaidAt()),
		order.ID(),
		string(storedStatus),
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: order %s is no longer %s", ErrOrderConflict, order.ID(), storedStatus)
	}

	order.MarkStored()
	return nil
}

func (r *OrderRepository) insert(ctx context.Context, order *entity.Order) error {
	query := `
		INSERT INTO orders (id, amount, currency, customer_email, status, paid_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		order.ID(),
		order.Amount(),
		order.Currency(),
		order.CustomerEmail(),
		string(order.Status()),
		nullableTimeValue(order.PaidAt()),
		order.CreatedAt().UTC(),
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrOrderAlreadyExists
		}
		return err
	}

	order.MarkStored()
	return nil
}

func (r *OrderRepository) List(ctx context.Context, filter OrderFilter) ([]*entity.Order, error) {
	query := `
		SELECT id, amount, currency, customer_email, status, paid_at, created_at
		FROM orders
	`
	args := make([]interface{}, 0, 3)

	if filter.HasStatus {
		query += " WHERE status = ?"
		args = append(args, string(filter.Status))
	}

	query += " ORDER BY created_at DESC, id ASC LIMIT ? OFFSET ?"
	args = append(args, normalizeLimit(filter.Limit), filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*entity.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func scanOrder(scan rowScanner) (*entity.Order, error) {
	var state entity.OrderState
	var status string
	var paidAt sql.NullTime

	err := scan.Scan(
		&state.ID,
		&state.Amount,
		&state.Currency,
		&state.CustomerEmail,
		&status,
		&paidAt,
		&state.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	state.Status = entity.OrderStatus(status)
	state.PaidAt = timePtrFromNull(paidAt)
	state.CreatedAt = state.CreatedAt.UTC()

	return entity.RestoreOrder(state)
}
