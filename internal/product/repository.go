package product

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wichananm65/storefront-backend/internal/apperr"
)

var ErrNotFound = apperr.NotFound("product not found")

type Repository interface {
	// List returns the requested page and the number of products matching q.
	List(ctx context.Context, q Query) ([]Product, int, error)
	GetByID(ctx context.Context, id string) (Product, error)
	// FindByIDs returns the products that exist among ids, keyed by id.
	FindByIDs(ctx context.Context, ids []string) (map[string]Product, error)
	// Seed inserts products whose id is not stored yet.
	Seed(ctx context.Context, products []Product) error
}

// InMemoryRepository backs the memory store driver and the tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Product
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	r := &InMemoryRepository{}
	_ = r.Seed(context.Background(), seed)
	return r
}

func (r *InMemoryRepository) List(_ context.Context, q Query) ([]Product, int, error) {
	q = q.normalize()
	r.mu.RLock()
	matched := make([]Product, 0, len(r.storage))
	for _, p := range r.storage {
		if matches(p, q) {
			matched = append(matched, p)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		switch q.Sort {
		case SortPriceAsc:
			return matched[i].Price.LessThan(matched[j].Price)
		case SortPriceDesc:
			return matched[i].Price.GreaterThan(matched[j].Price)
		default:
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
	})

	total := len(matched)
	start := q.offset()
	if start >= total {
		return []Product{}, total, nil
	}
	end := start + q.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func matches(p Product, q Query) bool {
	if q.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Search)) {
		return false
	}
	if q.Category != "" && p.Category != q.Category {
		return false
	}
	if q.Min != nil && p.Price.LessThan(*q.Min) {
		return false
	}
	if q.Max != nil && p.Price.GreaterThan(*q.Max) {
		return false
	}
	return true
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.storage {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) FindByIDs(_ context.Context, ids []string) (map[string]Product, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Product, len(ids))
	for _, p := range r.storage {
		if want[p.ID] {
			out[p.ID] = p
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Seed(_ context.Context, products []Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for i, p := range products {
		if r.exists(p.ID) {
			continue
		}
		if p.CreatedAt.IsZero() {
			// later fixtures sort as newer
			p.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		}
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = p.CreatedAt
		}
		r.storage = append(r.storage, p)
	}
	return nil
}

func (r *InMemoryRepository) exists(id string) bool {
	for _, p := range r.storage {
		if p.ID == id {
			return true
		}
	}
	return false
}
