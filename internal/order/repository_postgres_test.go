package order

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/storefront-backend/internal/apperr"
)

var orderCols = []string{"id", "user_id", "items", "shipping_address", "payment_method", "items_price", "tax_price",
	"shipping_price", "total_price", "stripe_session_id", "payment_result", "is_paid", "paid_at", "status", "created_at", "updated_at"}

func orderRow(rows *sqlmock.Rows, id string, paid bool, paidAt any) *sqlmock.Rows {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	status := "Pending"
	var result any
	if paid {
		status = "Paid"
		result = []byte(`{"id":"evt_1"}`)
	}
	return rows.AddRow(id, "u1", []byte(`[{"product":"p1","name":"Bowl","qty":2,"price":"100"}]`), []byte(`{"city":"Town"}`), "card",
		"200", "20", "10", "230", "cs_1", result, paid, paidAt, status, now, now)
}

func TestPostgresMarkPaid_Applies(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)

	paidAt := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`UPDATE orders\s+SET is_paid = true.*WHERE id = \$1 AND is_paid = false\s+RETURNING`).
		WithArgs("o1", paidAt, []byte(`{"id":"evt_1"}`)).
		WillReturnRows(orderRow(sqlmock.NewRows(orderCols), "o1", true, paidAt))

	o, applied, err := repo.MarkPaid(context.Background(), "o1", paidAt, json.RawMessage(`{"id":"evt_1"}`))
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, StatusPaid, o.Status)
	assert.Equal(t, paidAt, *o.PaidAt)
	assert.Equal(t, "Town", o.ShippingAddress.City)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 2, o.Items[0].Qty)
	assert.True(t, o.TotalPrice.Equal(dec("230")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMarkPaid_AlreadyPaid(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)

	earlier := time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`UPDATE orders`).WillReturnRows(sqlmock.NewRows(orderCols))
	mock.ExpectQuery(`FROM orders WHERE id = \$1`).WithArgs("o1").
		WillReturnRows(orderRow(sqlmock.NewRows(orderCols), "o1", true, earlier))

	o, applied, err := repo.MarkPaid(context.Background(), "o1", time.Now(), json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, earlier, *o.PaidAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMarkPaid_Unknown(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery(`UPDATE orders`).WillReturnRows(sqlmock.NewRows(orderCols))
	mock.ExpectQuery(`FROM orders WHERE id = \$1`).WithArgs("nope").WillReturnRows(sqlmock.NewRows(orderCols))

	_, _, err = repo.MarkPaid(context.Background(), "nope", time.Now(), nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateAndAttachSession(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)

	o := Order{ID: "o1", UserID: "u1", Items: []Item{{ProductID: "p1", Qty: 1, Price: dec("5")}},
		ItemsPrice: dec("5"), TotalPrice: dec("5"), Status: StatusPending, CreatedAt: time.Now()}
	mock.ExpectExec(`INSERT INTO orders`).
		WithArgs("o1", "u1", sqlmock.AnyArg(), sqlmock.AnyArg(), "", sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), "", "Pending", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE orders SET stripe_session_id = \$2`).WithArgs("o1", "cs_9").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE orders SET stripe_session_id = \$2`).WithArgs("o1", "cs_10").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`FROM orders WHERE id = \$1`).WithArgs("o1").
		WillReturnRows(orderRow(sqlmock.NewRows(orderCols), "o1", true, time.Now()))

	_, err = repo.Create(context.Background(), o)
	require.NoError(t, err)
	require.NoError(t, repo.AttachSession(context.Background(), "o1", "cs_9"))
	assert.ErrorIs(t, repo.AttachSession(context.Background(), "o1", "cs_10"), ErrAlreadyPaid)
	assert.NoError(t, mock.ExpectationsWereMet())
}
