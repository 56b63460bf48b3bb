package address

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/wichananm65/storefront-backend/internal/order"
)

var addressRowColumns = []string{"id", "user_id", "label", "phone", "address", "city", "postal_code", "country", "created_at", "updated_at"}

func sampleAddress() Address {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return Address{
		ID: "a1", UserID: "u1", Label: "Home", Phone: "555",
		ShippingAddress: order.ShippingAddress{Address: "1 Main", City: "Springfield", PostalCode: "49007", Country: "US"},
		CreatedAt:       at,
		UpdatedAt:       at,
	}
}

func TestPostgresRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)
	ctx := context.Background()
	a := sampleAddress()

	mock.ExpectExec(`INSERT INTO addresses`).
		WithArgs("a1", "u1", "Home", "555", "1 Main", "Springfield", "49007", "US", a.CreatedAt, a.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM addresses WHERE user_id = \$1 ORDER BY created_at, id`).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(addressRowColumns).
			AddRow("a1", "u1", "Home", "555", "1 Main", "Springfield", "49007", "US", a.CreatedAt, a.UpdatedAt))
	mock.ExpectQuery(`FROM addresses WHERE user_id = \$1 AND id = \$2`).WithArgs("u2", "a1").
		WillReturnRows(sqlmock.NewRows(addressRowColumns))
	mock.ExpectExec(`UPDATE addresses`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM addresses WHERE user_id = \$1 AND id = \$2`).WithArgs("u1", "a1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(ctx, a))
	list, err := repo.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Springfield", list[0].City)

	_, err = repo.Get(ctx, "u2", "a1")
	assert.ErrorIs(t, err, ErrNotFound)

	other := a
	other.UserID = "u2"
	assert.ErrorIs(t, repo.Update(ctx, other), ErrNotFound)
	require.NoError(t, repo.Delete(ctx, "u1", "a1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("get scoped by owner", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		raw, err := bson.Marshal(toDocument(sampleAddress()))
		require.NoError(mt, err)
		var doc bson.D
		require.NoError(mt, bson.Unmarshal(raw, &doc))
		ns := mt.DB.Name() + ".addresses"
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, doc),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
		)

		a, err := repo.Get(context.Background(), "u1", "a1")
		require.NoError(mt, err)
		assert.Equal(mt, "49007", a.PostalCode)

		_, err = repo.Get(context.Background(), "u2", "a1")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}})

		assert.ErrorIs(mt, repo.Delete(context.Background(), "u1", "a1"), ErrNotFound)
	})
}
