package product

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func newCatalogApp() *fiber.App {
	h := NewHandler(NewService(NewInMemoryRepository(DefaultCatalog())))
	app := fiber.New()
	h.RegisterPublicRoutes(app)
	return app
}

func TestGetProducts(t *testing.T) {
	app := newCatalogApp()

	req := httptest.NewRequest("GET", "/api/v1/products?category=Fashion&sort=priceAsc&pageSize=1&page=2", nil)
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", res.StatusCode)
	}
	var page struct {
		Products []struct {
			Name string `json:"name"`
		} `json:"products"`
		Page  int `json:"page"`
		Pages int `json:"pages"`
	}
	if err := json.NewDecoder(res.Body).Decode(&page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Page != 2 || page.Pages != 2 {
		t.Fatalf("unexpected paging %+v", page)
	}
	if len(page.Products) != 1 || page.Products[0].Name != "Women's Handbag" {
		t.Fatalf("unexpected products %+v", page.Products)
	}
}

func TestGetProducts_BadPrice(t *testing.T) {
	app := newCatalogApp()

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/products?min=abc", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 got %d", res.StatusCode)
	}
}

func TestGetProduct(t *testing.T) {
	app := newCatalogApp()
	id := DefaultCatalog()[2].ID

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/products/"+id, nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", res.StatusCode)
	}
	var p Product
	if err := json.NewDecoder(res.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.ID != id || p.Name != "Smartphone Cover" {
		t.Fatalf("unexpected product %+v", p)
	}

	res, err = app.Test(httptest.NewRequest("GET", "/api/v1/products/nope", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 got %d", res.StatusCode)
	}
	body, _ := io.ReadAll(res.Body)
	if string(body) != `{"message":"product not found"}` {
		t.Fatalf("unexpected body %s", body)
	}
}
