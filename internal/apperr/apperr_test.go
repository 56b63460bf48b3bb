package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestIs_MatchesKind(t *testing.T) {
	err := fmt.Errorf("load order: %w", NotFound("order not found"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestStatusAndMessage(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{Validation("no order items"), fiber.StatusBadRequest, "no order items"},
		{New(KindAuthorization, "invalid credentials"), fiber.StatusUnauthorized, "invalid credentials"},
		{Forbidden("not your order"), fiber.StatusForbidden, "not your order"},
		{NotFound("order not found"), fiber.StatusNotFound, "order not found"},
		{New(KindConflict, "email already exists"), fiber.StatusConflict, "email already exists"},
		{Wrap(KindProcessor, errors.New("timeout"), "could not create payment session"), fiber.StatusBadGateway, "could not create payment session"},
		{errors.New("pq: connection refused"), fiber.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, Status(tc.err), tc.err.Error())
		assert.Equal(t, tc.msg, Message(tc.err))
	}
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := errors.New("card declined")
	err := Wrap(KindProcessor, cause, "payment failed")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "payment failed: card declined", err.Error())
}
