package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vibast-solutions/ms-go-order-payments/app/entity"
)

var ErrPaymentAlreadyExists = errors.New("payment already exists")

// PaymentRepository is insert-only; payments are never updated.
type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Save(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (
			id, order_id, amount, currency, status,
			gateway_transaction_id, gateway_name, created_at, failure_reason
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		payment.ID(),
		payment.OrderID(),
		payment.Amount(),
		payment.Currency(),
		string(payment.Status()),
		payment.GatewayTransactionID(),
		payment.GatewayName(),
		payment.CreatedAt().UTC(),
		nullableStringValue(payment.FailureReason()),
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrPaymentAlreadyExists
		}
		return err
	}

	return nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*entity.Payment, error) {
	query := `
		SELECT id, order_id, amount, currency, status,
			gateway_transaction_id, gateway_name, created_at, failure_reason
		FROM payments
		WHERE id = ?
	`

	payment, err := scanPayment(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return payment, nil
}

func (r *PaymentRepository) ListByOrderID(ctx context.Context, orderID string) ([]*entity.Payment, error) {
	query := `
		SELECT id, order_id, amount, currency, status,
			gateway_transaction_id, gateway_name, created_at, failure_reason
		FROM payments
		WHERE order_id = ?
		ORDER BY created_at DESC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]*entity.Payment, 0)
	for rows.Next() {
		item, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}

func scanPayment(scan rowScanner) (*entity.Payment, error) {
	var state entity.PaymentState
	var status string
	var failureReason sql.NullString

	err := scan.Scan(
		&state.ID,
		&state.OrderID,
		&state.Amount,
		&state.Currency,
		&status,
		&state.GatewayTransactionID,
		&state.GatewayName,
		&state.CreatedAt,
		&failureReason,
	)
	if err != nil {
		return nil, err
	}

	state.Status = entity.PaymentStatus(status)
	state.CreatedAt = state.CreatedAt.UTC()
	state.FailureReason = stringPtrFromNull(failureReason)

	return entity.RestorePayment(state)
}
