package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var ErrPaymentNotFound = errors.New("payment not found")

type Repository interface {
	CreatePayment(ctx context.Context, p *Payment) error
	UpdatePayment(ctx context.Context, p *Payment) error
	GetPayment(ctx context.Context, id int64) (*Payment, error)
	ListByStatuses(ctx context.Context, statuses ...Status) ([]*Payment, error)
	SaveOperation(ctx context.Context, op *Operation) error
}

// Tables maps the logical tables to their configured names.
type Tables struct {
	Payments   string
	Operations string
}

func DefaultTables() Tables {
	return Tables{
		Payments:   "acquiring_payments",
		Operations: "acquiring_payment_operations",
	}
}

type repository struct {
	db         *sql.DB
	payments   string
	operations string
}

func NewRepository(db *sql.DB, tables Tables) Repository {
	defaults := DefaultTables()
	if tables.Payments == "" {
		tables.Payments = defaults.Payments
	}
	if tables.Operations == "" {
		tables.Operations = defaults.Operations
	}
	return &repository{
		db:         db,
		payments:   pq.QuoteIdentifier(tables.Payments),
		operations: pq.QuoteIdentifier(tables.Operations),
	}
}

const paymentColumns = `id, bank_order_id, order_number, amount, form_url, system, status_id, created_at, updated_at`

func (r *repository) CreatePayment(ctx context.Context, p *Payment) error {
	q := fmt.Sprintf(`
		INSERT INTO %s (bank_order_id, order_number, amount, form_url, system, status_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, r.payments)

	err := r.db.QueryRowContext(ctx, q,
		p.BankOrderID, p.OrderNumber, p.Amount, p.FormURL, string(p.System), int(p.StatusID),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *repository) UpdatePayment(ctx context.Context, p *Payment) error {
	q := fmt.Sprintf(`
		UPDATE %s SET bank_order_id = $1, form_url = $2, status_id = $3, updated_at = now()
		WHERE id = $4
	`, r.payments)

	res, err := r.db.ExecContext(ctx, q, p.BankOrderID, p.FormURL, int(p.StatusID), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update payment %d: %w", p.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *repository) GetPayment(ctx context.Context, id int64) (*Payment, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, paymentColumns, r.payments)

	p, err := scanPayment(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment %d: %w", id, err)
	}
	return p, nil
}

func (r *repository) ListByStatuses(ctx context.Context, statuses ...Status) ([]*Payment, error) {
	ids := make([]int64, len(statuses))
	for i, s := range statuses {
		ids[i] = int64(s)
	}

	q := fmt.Sprintf(`SELECT %s FROM %s WHERE status_id = ANY($1) ORDER BY id`, paymentColumns, r.payments)

	rows, err := r.db.QueryContext(ctx, q, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (r *repository) SaveOperation(ctx context.Context, op *Operation) error {
	q := fmt.Sprintf(`
		INSERT INTO %s (payment_id, type_id, request_json, response_json)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, r.operations)

	err := r.db.QueryRowContext(ctx, q,
		op.PaymentID, int(op.TypeID), nullableJSON(op.Request), nullableJSON(op.Response),
	).Scan(&op.ID, &op.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save operation for payment %d: %w", op.PaymentID, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPayment(s scanner) (*Payment, error) {
	var (
		p      Payment
		system string
		status int
	)
	err := s.Scan(
		&p.ID, &p.BankOrderID, &p.OrderNumber, &p.Amount, &p.FormURL,
		&system, &status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.System = System(system)
	p.StatusID = Status(status)
	return &p, nil
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
