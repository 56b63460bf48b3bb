package product

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Prices are decimal so that order totals are exact.
type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Images      []string        `json:"images"`
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Image returns the first image or "" when the product has none.
func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

const (
	SortPriceAsc  = "priceAsc"
	SortPriceDesc = "priceDesc"
	SortNewest    = "newest"

	DefaultPageSize = 12
	maxPageSize     = 100

	// maxPage keeps offset within int range.
	maxPage = math.MaxInt / maxPageSize
)

// Query filters and pages the catalog. Zero values mean "no filter".
type Query struct {
	Search   string
	Category string
	Min      *decimal.Decimal
	Max      *decimal.Decimal
	Sort     string
	Page     int
	PageSize int
}

func (q Query) normalize() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Page > maxPage {
		q.Page = maxPage
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	if q.Sort != SortPriceAsc && q.Sort != SortPriceDesc {
		q.Sort = SortNewest
	}
	return q
}

func (q Query) offset() int {
	return (q.Page - 1) * q.PageSize
}

// Page is one page of List results.
type Page struct {
	Products []Product `json:"products"`
	Page     int       `json:"page"`
	Pages    int       `json:"pages"`
}

func pages(total, size int) int {
	if total == 0 {
		return 0
	}
	return (total + size - 1) / size
}

// fixtureID derives a stable id from the product name so reseeding is idempotent.
func fixtureID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("product:"+name)).String()
}

func fixture(name, desc, category, price, image string) Product {
	return Product{
		ID:          fixtureID(name),
		Name:        name,
		Description: desc,
		Price:       decimal.RequireFromString(price),
		Images:      []string{image},
		Category:    category,
		Stock:       10,
	}
}

// DefaultCatalog is the demo catalog loaded into an empty store at startup.
func DefaultCatalog() []Product {
	return []Product{
		fixture("Stylish Watch", "Premium wrist watch with leather strap", "Accessories", "1500", "https://m.media-amazon.com/images/I/71cVOgvystL._SX679_.jpg"),
		fixture("Wireless Earbuds", "High-quality sound and long battery life", "Electronics", "2000", "https://m.media-amazon.com/images/I/61CGHv6kmWL._SX679_.jpg"),
		fixture("Smartphone Cover", "Protective silicone case for smartphones", "Accessories", "500", "https://m.media-amazon.com/images/I/71c6XZcfgoL._SX679_.jpg"),
		fixture("Women's Handbag", "Elegant leather handbag for daily use", "Fashion", "2500", "https://m.media-amazon.com/images/I/81-infxoQ+L._SY695_.jpg"),
		fixture("Smart Digital Watch", "Feature-rich smartwatch with health tracking", "Electronics", "3500", "https://m.media-amazon.com/images/I/61ZjlBOp+rL._SX679_.jpg"),
		fixture("Wireless Bluetooth Earbuds", "True wireless earbuds with premium sound quality", "Electronics", "1800", "https://m.media-amazon.com/images/I/51SYeAPoDzL._SX679_.jpg"),
		fixture("Women's Summer Dress", "Comfortable and stylish summer dress", "Fashion", "1200", "https://m.media-amazon.com/images/I/71pWN8thvyL._SY879_.jpg"),
	}
}
