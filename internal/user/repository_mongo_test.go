package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mt.Run("get by email", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		ns := mt.DB.Name() + ".users"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "u1"},
			{Key: "name", Value: "Ann"},
			{Key: "email", Value: "ann@example.com"},
			{Key: "password", Value: "hash"},
			{Key: "isAdmin", Value: false},
			{Key: "cart", Value: bson.A{}},
			{Key: "createdAt", Value: created},
			{Key: "updatedAt", Value: created},
		}))

		u, err := repo.GetByEmail(context.Background(), "ANN@example.com")
		require.NoError(mt, err)
		assert.Equal(mt, "u1", u.ID)
		assert.True(mt, created.Equal(u.CreatedAt))
	})

	mt.Run("missing user", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".users", mtest.FirstBatch))

		_, err := repo.GetByID(context.Background(), "ghost")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("create and duplicate email", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		u := User{ID: "u1", Name: "Ann", Email: "ann@example.com", Password: "hash", CreatedAt: created, UpdatedAt: created}
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}),
		)

		require.NoError(mt, repo.Create(context.Background(), u))
		assert.ErrorIs(mt, repo.Create(context.Background(), u), ErrAlreadyExists)
	})
}
