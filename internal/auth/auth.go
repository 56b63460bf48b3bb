// Package auth issues the JWTs handed out at login and reads the caller's
// identity back from requests that passed the JWT middleware.
package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/wichananm65/storefront-backend/internal/apperr"
)

// ErrUnauthorized is returned when a request carries no usable identity.
var ErrUnauthorized = apperr.New(apperr.KindAuthorization, "not authorized, token failed")

// Issuer signs HS256 tokens carrying the user_id claim.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *Issuer) IssueToken(userID, email string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     i.now().Add(i.ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, err, "failed to generate token")
	}
	return signed, nil
}

// Middleware verifies the bearer token and stores it in c.Locals("user").
// Requests for which skip returns true pass through unauthenticated.
func Middleware(secret string, skip func(c *fiber.Ctx) bool) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: []byte(secret),
		Filter:     skip,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return apperr.Respond(c, ErrUnauthorized)
		},
	})
}

// GetUserIDFromCtx extracts the user_id claim from the JWT token stored
// in the request locals by the middleware.
func GetUserIDFromCtx(c *fiber.Ctx) (string, error) {
	tok, ok := c.Locals("user").(*jwt.Token)
	if !ok || tok == nil {
		return "", ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrUnauthorized
	}
	id, ok := claims["user_id"].(string)
	if !ok || id == "" {
		return "", ErrUnauthorized
	}
	return id, nil
}
