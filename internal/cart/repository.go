package cart

import (
	"context"
	"sync"

	"github.com/wichananm65/storefront-backend/internal/apperr"
)

var ErrNotFound = apperr.NotFound("User not found")

// Repository stores the server-held cart on the user record.
type Repository interface {
	Get(ctx context.Context, userID string) ([]Item, error)
	Save(ctx context.Context, userID string, items []Item) error
}

// InMemoryRepository keeps carts keyed by user id. It is used by the
// memory store driver and the tests; unknown users have an empty cart.
type InMemoryRepository struct {
	mu    sync.RWMutex
	carts map[string][]Item
}

func NewInMemoryRepository(seed map[string][]Item) *InMemoryRepository {
	r := &InMemoryRepository{carts: make(map[string][]Item, len(seed))}
	for id, items := range seed {
		r.carts[id] = append([]Item(nil), items...)
	}
	return r
}

func (r *InMemoryRepository) Get(_ context.Context, userID string) ([]Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append(make([]Item, 0, len(r.carts[userID])), r.carts[userID]...), nil
}

func (r *InMemoryRepository) Save(_ context.Context, userID string, items []Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[userID] = append([]Item(nil), items...)
	return nil
}
