package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	orderColumns = `id, user_id, items, shipping_address, payment_method, items_price, tax_price, shipping_price, total_price,
		stripe_session_id, payment_result, is_paid, paid_at, status, created_at, updated_at`

	insertOrderQuery = `
		INSERT INTO orders (id, user_id, items, shipping_address, payment_method, items_price, tax_price, shipping_price, total_price,
			stripe_session_id, is_paid, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), false, $11, $12, $12)
	`
	getOrderByIDQuery        = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	getOrderBySessionQuery   = `SELECT ` + orderColumns + ` FROM orders WHERE stripe_session_id = $1`
	listOrdersByUserQuery    = `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	attachSessionQuery       = `UPDATE orders SET stripe_session_id = $2, updated_at = now() WHERE id = $1 AND is_paid = false`
	markPaidConditionalQuery = `
		UPDATE orders
		SET is_paid = true, paid_at = $2, status = 'Paid', payment_result = $3, updated_at = $2
		WHERE id = $1 AND is_paid = false
		RETURNING ` + orderColumns
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, o Order) (Order, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return Order{}, err
	}
	addr, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return Order{}, err
	}
	_, err = r.db.ExecContext(ctx, insertOrderQuery,
		o.ID, o.UserID, items, addr, o.PaymentMethod,
		o.ItemsPrice, o.TaxPrice, o.ShippingPrice, o.TotalPrice,
		o.StripeSessionID, string(o.Status), o.CreatedAt)
	if err != nil {
		return Order{}, fmt.Errorf("insert order: %w", err)
	}
	return o, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Order, error) {
	return r.findOne(ctx, getOrderByIDQuery, id)
}

func (r *PostgresRepository) FindBySessionID(ctx context.Context, sessionID string) (Order, error) {
	return r.findOne(ctx, getOrderBySessionQuery, sessionID)
}

func (r *PostgresRepository) findOne(ctx context.Context, query, arg string) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	return o, err
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, listOrdersByUserQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *PostgresRepository) AttachSession(ctx context.Context, id, sessionID string) error {
	res, err := r.db.ExecContext(ctx, attachSessionQuery, id, sessionID)
	if err != nil {
		return fmt.Errorf("attach session: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	return ErrAlreadyPaid
}

// MarkPaid issues one UPDATE guarded by is_paid = false, so concurrent
// webhook replays cannot both apply.
func (r *PostgresRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time, payload json.RawMessage) (Order, bool, error) {
	var result any
	if len(payload) > 0 {
		result = []byte(payload)
	}
	o, err := scanOrder(r.db.QueryRowContext(ctx, markPaidConditionalQuery, id, paidAt, result))
	if err == nil {
		return o, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Order{}, false, fmt.Errorf("mark order paid: %w", err)
	}
	// nothing updated: either unknown or already paid
	existing, err := r.FindByID(ctx, id)
	if err != nil {
		return Order{}, false, err
	}
	return existing, false, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var (
		o             Order
		items, addr   []byte
		sessionID     sql.NullString
		paymentResult []byte
		paidAt        sql.NullTime
		status        string
	)
	err := row.Scan(&o.ID, &o.UserID, &items, &addr, &o.PaymentMethod,
		&o.ItemsPrice, &o.TaxPrice, &o.ShippingPrice, &o.TotalPrice,
		&sessionID, &paymentResult, &o.IsPaid, &paidAt, &status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return Order{}, fmt.Errorf("decode items of order %s: %w", o.ID, err)
	}
	if len(addr) > 0 {
		if err := json.Unmarshal(addr, &o.ShippingAddress); err != nil {
			return Order{}, fmt.Errorf("decode address of order %s: %w", o.ID, err)
		}
	}
	o.StripeSessionID = sessionID.String
	if len(paymentResult) > 0 {
		o.PaymentResult = json.RawMessage(paymentResult)
	}
	if paidAt.Valid {
		t := paidAt.Time
		o.PaidAt = &t
	}
	o.Status = Status(status)
	return o, nil
}
