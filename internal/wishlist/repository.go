package wishlist

import (
	"context"
	"sync"
	"time"

	"github.com/wichananm65/storefront-backend/internal/apperr"
)

var ErrNotFound = apperr.NotFound("Wishlist not found")

// Repository stores one wishlist per user. Every method returns the
// wishlist as stored after the call, deduplicated.
type Repository interface {
	// Ensure inserts w unless the user already has a wishlist.
	Ensure(ctx context.Context, w Wishlist) (Wishlist, error)
	// AddProduct appends e unless the product is already listed.
	AddProduct(ctx context.Context, userID string, e Entry) (Wishlist, error)
	RemoveProduct(ctx context.Context, userID, productID string, now time.Time) (Wishlist, error)
}

type InMemoryRepository struct {
	mu    sync.Mutex
	lists map[string]Wishlist
}

func NewInMemoryRepository(seed []Wishlist) *InMemoryRepository {
	r := &InMemoryRepository{lists: make(map[string]Wishlist, len(seed))}
	for _, w := range seed {
		w.Products = Dedupe(w.Products)
		r.lists[w.UserID] = w
	}
	return r
}

func (r *InMemoryRepository) Ensure(_ context.Context, w Wishlist) (Wishlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.lists[w.UserID]; ok {
		return clone(existing), nil
	}
	w.Products = Dedupe(w.Products)
	r.lists[w.UserID] = w
	return clone(w), nil
}

func (r *InMemoryRepository) AddProduct(_ context.Context, userID string, e Entry) (Wishlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.lists[userID]
	if !ok {
		return Wishlist{}, ErrNotFound
	}
	if !w.contains(e.ProductID) {
		w.Products = Dedupe(append(clone(w).Products, e))
		w.UpdatedAt = e.AddedAt
		r.lists[userID] = w
	}
	return clone(w), nil
}

func (r *InMemoryRepository) RemoveProduct(_ context.Context, userID, productID string, now time.Time) (Wishlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.lists[userID]
	if !ok {
		return Wishlist{}, ErrNotFound
	}
	kept := make([]Entry, 0, len(w.Products))
	for _, e := range w.Products {
		if e.ProductID != productID {
			kept = append(kept, e)
		}
	}
	w.Products = kept
	w.UpdatedAt = now
	r.lists[userID] = w
	return clone(w), nil
}

func clone(w Wishlist) Wishlist {
	w.Products = append(make([]Entry, 0, len(w.Products)), w.Products...)
	return w
}
