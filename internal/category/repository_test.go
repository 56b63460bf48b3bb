package category

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestPostgresRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT category, COUNT\(\*\) FROM products WHERE category <> '' GROUP BY category ORDER BY category LIMIT \$1`).
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"category", "count"}).AddRow("Beds", 2).AddRow("Toys", 5))

	got, err := NewPostgresRepository(db).List(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, []Category{{Name: "Beds", Count: 2}, {Name: "Toys", Count: 5}}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMongoRepository_List(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("aggregate", func(mt *mtest.T) {
		ns := mt.DB.Name() + ".products"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "Beds"}, {Key: "count", Value: int32(2)}},
			bson.D{{Key: "_id", Value: "Toys"}, {Key: "count", Value: int32(5)}},
		))

		got, err := NewMongoRepository(mt.DB).List(context.Background(), 10)
		require.NoError(mt, err)
		assert.Equal(mt, []Category{{Name: "Beds", Count: 2}, {Name: "Toys", Count: 5}}, got)
	})
}
