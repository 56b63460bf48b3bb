package user

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wichananm65/storefront-backend/internal/apperr"
)

func newTestService(repo Repository) *Service {
	s := NewService(repo)
	s.cost = bcrypt.MinCost
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("u%d", n)
	}
	return s
}

func TestService_Register(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	s := newTestService(repo)
	ctx := context.Background()

	u, err := s.Register(ctx, " Ann ", "Ann@Example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "Ann", u.Name)
	assert.Equal(t, "ann@example.com", u.Email)
	assert.Empty(t, u.Password, "returned user must not carry the hash")

	stored, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret")))

	_, err = s.Register(ctx, "Ann again", "ANN@example.com", "other")
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestService_RegisterRequiresAllFields(t *testing.T) {
	s := newTestService(NewInMemoryRepository(nil))
	cases := []struct{ name, email, password string }{
		{"", "a@b.c", "pw"},
		{"Ann", " ", "pw"},
		{"Ann", "a@b.c", ""},
	}
	for _, tc := range cases {
		_, err := s.Register(context.Background(), tc.name, tc.email, tc.password)
		assert.ErrorIs(t, err, apperr.ErrValidation, "%+v", tc)
	}
}

func TestService_Authenticate(t *testing.T) {
	s := newTestService(NewInMemoryRepository(nil))
	ctx := context.Background()
	_, err := s.Register(ctx, "Ann", "ann@example.com", "secret")
	require.NoError(t, err)

	u, err := s.Authenticate(ctx, "ANN@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Empty(t, u.Password)

	_, err = s.Authenticate(ctx, "ann@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Authenticate(ctx, "nobody@example.com", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}

func TestService_GetByID(t *testing.T) {
	s := newTestService(NewInMemoryRepository([]User{{ID: "u9", Name: "Bo", Email: "bo@example.com", Password: "hash"}}))

	u, err := s.GetByID(context.Background(), "u9")
	require.NoError(t, err)
	assert.Equal(t, "Bo", u.Name)
	assert.Empty(t, u.Password)

	_, err = s.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
