package wishlist

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wichananm65/storefront-backend/internal/apperr"
	"github.com/wichananm65/storefront-backend/internal/product"
)

// Catalog resolves wishlisted product ids to current products.
type Catalog interface {
	Lookup(ctx context.Context, ids []string) (map[string]product.Product, error)
}

// Item is a wishlist entry as returned to clients, with the product filled in.
type Item struct {
	ProductID string           `json:"productId"`
	AddedAt   time.Time        `json:"addedAt"`
	Product   *product.Product `json:"product,omitempty"`
}

type Service struct {
	repo    Repository
	catalog Catalog
	now     func() time.Time
	newID   func() string
}

func NewService(repo Repository, catalog Catalog) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

// Get returns the user's wishlist, creating an empty one on first access.
func (s *Service) Get(ctx context.Context, userID string) (Wishlist, error) {
	now := s.now()
	return s.repo.Ensure(ctx, Wishlist{
		ID:        s.newID(),
		UserID:    userID,
		Products:  []Entry{},
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// Add lists productID once. Adding a product that is already listed leaves
// the wishlist unchanged.
func (s *Service) Add(ctx context.Context, userID, productID string) (Wishlist, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return Wishlist{}, apperr.Validation("Product id is required")
	}
	if s.catalog != nil {
		found, err := s.catalog.Lookup(ctx, []string{productID})
		if err != nil {
			return Wishlist{}, err
		}
		if _, ok := found[productID]; !ok {
			return Wishlist{}, apperr.NotFound("Product not found")
		}
	}
	if _, err := s.Get(ctx, userID); err != nil {
		return Wishlist{}, err
	}
	return s.repo.AddProduct(ctx, userID, Entry{ProductID: productID, AddedAt: s.now()})
}

// Remove drops productID. It fails with ErrNotFound only when the user has
// no wishlist at all.
func (s *Service) Remove(ctx context.Context, userID, productID string) (Wishlist, error) {
	return s.repo.RemoveProduct(ctx, userID, strings.TrimSpace(productID), s.now())
}

// Items expands w for display. Entries whose product is no longer in the
// catalog are left out.
func (s *Service) Items(ctx context.Context, w Wishlist) ([]Item, error) {
	entries := Dedupe(w.Products)
	out := make([]Item, 0, len(entries))
	if s.catalog == nil {
		for _, e := range entries {
			out = append(out, Item{ProductID: e.ProductID, AddedAt: e.AddedAt})
		}
		return out, nil
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ProductID)
	}
	found, err := s.catalog.Lookup(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		p, ok := found[e.ProductID]
		if !ok {
			continue
		}
		out = append(out, Item{ProductID: e.ProductID, AddedAt: e.AddedAt, Product: &p})
	}
	return out, nil
}
