package cart

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/golang-jwt/jwt/v4"
)

func makeAppWithCartHandler(cHandler *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := utils.CopyString(c.Get("X-User-ID")); v != "" {
			c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": v}})
		}
		return c.Next()
	})
	cHandler.RegisterProtectedRoutes(app)
	return app
}

func doCart(t *testing.T, app *fiber.App, method, userID, body string) (int, []Item) {
	t.Helper()
	req := httptest.NewRequest(method, "/api/v1/users/cart", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var items []Item
	if res.StatusCode == fiber.StatusOK {
		if err := json.NewDecoder(res.Body).Decode(&items); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return res.StatusCode, items
}

func TestCartRoutes(t *testing.T) {
	repo := NewInMemoryRepository(map[string][]Item{"42": {item("p1", 1)}})
	app := makeAppWithCartHandler(NewHandler(NewService(repo)))

	if code, _ := doCart(t, app, "GET", "", ""); code != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthenticated GET, got %d", code)
	}

	code, items := doCart(t, app, "GET", "42", "")
	if code != fiber.StatusOK || len(items) != 1 {
		t.Fatalf("unexpected GET result %d %+v", code, items)
	}

	code, items = doCart(t, app, "POST", "42", `{"cart":[{"productId":"p1","qty":2},{"_id":"p2","name":"Leash","price":"5.50"}]}`)
	if code != fiber.StatusOK {
		t.Fatalf("expected 200 for merge, got %d", code)
	}
	if len(items) != 2 || items[0].Qty != 3 || items[1].ProductID != "p2" || items[1].Qty != 1 {
		t.Fatalf("unexpected merged cart %+v", items)
	}

	code, items = doCart(t, app, "PUT", "42", `{"cart":[{"productId":"p9","qty":4,"price":1}]}`)
	if code != fiber.StatusOK || len(items) != 1 || items[0].ProductID != "p9" {
		t.Fatalf("unexpected replace result %d %+v", code, items)
	}

	if code, _ := doCart(t, app, "PUT", "42", `{"cart":[{"productId":"p9","qty":0}]}`); code != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for invalid qty, got %d", code)
	}

	code, items = doCart(t, app, "DELETE", "42", "")
	if code != fiber.StatusOK || len(items) != 0 {
		t.Fatalf("unexpected clear result %d %+v", code, items)
	}
}
