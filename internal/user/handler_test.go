package user

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/golang-jwt/jwt/v4"

	"github.com/wichananm65/storefront-backend/internal/auth"
	"github.com/wichananm65/storefront-backend/internal/cart"
)

func makeAppWithUserHandler(uHandler *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := utils.CopyString(c.Get("X-User-ID")); v != "" {
			c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": v}})
		}
		return c.Next()
	})
	uHandler.RegisterPublicRoutes(app)
	uHandler.RegisterProtectedRoutes(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, userID, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var out map[string]any
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return res.StatusCode, out
}

func newTestHandler(carts *cart.Service) *Handler {
	s := newTestService(NewInMemoryRepository(nil))
	return NewHandler(s, auth.NewIssuer("test-secret", time.Hour), carts)
}

func TestRegisterLoginAndProfile(t *testing.T) {
	carts := cart.NewService(cart.NewInMemoryRepository(map[string][]cart.Item{}))
	app := makeAppWithUserHandler(newTestHandler(carts))

	code, body := doJSON(t, app, "POST", "/api/v1/users/register", "", `{"name":"Ann","email":"ann@example.com","password":"secret"}`)
	if code != fiber.StatusCreated {
		t.Fatalf("expected 201 for register, got %d %v", code, body)
	}
	if body["_id"] != "u1" || body["token"] == "" || body["password"] != nil {
		t.Fatalf("unexpected register body %v", body)
	}

	code, body = doJSON(t, app, "POST", "/api/v1/users/register", "", `{"name":"Ann","email":"ann@example.com","password":"secret"}`)
	if code != fiber.StatusConflict || body["message"] != "User already exists" {
		t.Fatalf("expected 409 for duplicate register, got %d %v", code, body)
	}

	code, body = doJSON(t, app, "POST", "/api/v1/users/login", "", `{"email":"ann@example.com","password":"nope"}`)
	if code != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", code)
	}

	code, body = doJSON(t, app, "POST", "/api/v1/users/login", "",
		`{"email":"ann@example.com","password":"secret","cart":[{"_id":"p1","name":"Bowl","qty":2,"price":"12.50"},{"_id":"p1","qty":1},{"_id":""}]}`)
	if code != fiber.StatusOK {
		t.Fatalf("expected 200 for login, got %d %v", code, body)
	}
	items, ok := body["cart"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("expected merged cart with one line, got %v", body["cart"])
	}
	if line := items[0].(map[string]any); line["productId"] != "p1" || line["qty"] != float64(3) {
		t.Fatalf("unexpected merged line %v", line)
	}

	code, body = doJSON(t, app, "GET", "/api/v1/users/profile", "u1", "")
	if code != fiber.StatusOK || body["email"] != "ann@example.com" || body["password"] != nil {
		t.Fatalf("unexpected profile %d %v", code, body)
	}

	code, _ = doJSON(t, app, "GET", "/api/v1/users/profile", "", "")
	if code != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", code)
	}
}

func TestRegisterValidation(t *testing.T) {
	carts := cart.NewService(cart.NewInMemoryRepository(nil))
	app := makeAppWithUserHandler(newTestHandler(carts))

	code, _ := doJSON(t, app, "POST", "/api/v1/users/register", "", `{"name":"Ann"}`)
	if code != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for missing fields, got %d", code)
	}
}
