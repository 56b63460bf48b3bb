package user

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "name", "email", "password", "is_admin", "created_at", "updated_at"}

func TestPostgresRepository_GetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, name, email, password, is_admin, created_at, updated_at FROM users WHERE email = \$1`).
		WithArgs("ann@example.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow("u1", "Ann", "ann@example.com", "hash", false, created, created))
	mock.ExpectQuery(`FROM users WHERE id = \$1`).WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	u, err := repo.GetByEmail(context.Background(), " Ann@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "hash", u.Password)

	_, err = repo.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)
	now := time.Now().UTC()
	u := User{ID: "u1", Name: "Ann", Email: "ann@example.com", Password: "hash", CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec(`INSERT INTO users \(id, name, email, password, is_admin, cart, created_at, updated_at\)`).
		WithArgs("u1", "Ann", "ann@example.com", "hash", false, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	require.NoError(t, repo.Create(context.Background(), u))
	assert.ErrorIs(t, repo.Create(context.Background(), u), ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
