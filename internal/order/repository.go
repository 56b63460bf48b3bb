package order

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/wichananm65/storefront-backend/internal/apperr"
)

var (
	ErrNotFound    = apperr.NotFound("Order not found")
	ErrAlreadyPaid = apperr.New(apperr.KindConflict, "order is already paid")
)

type Repository interface {
	Create(ctx context.Context, o Order) (Order, error)
	FindByID(ctx context.Context, id string) (Order, error)
	FindBySessionID(ctx context.Context, sessionID string) (Order, error)
	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	// AttachSession records the processor session id on an unpaid order.
	AttachSession(ctx context.Context, id, sessionID string) error
	// MarkPaid flips an unpaid order to Paid in one conditional write.
	// applied is false, with the stored order, when it was already paid.
	MarkPaid(ctx context.Context, id string, paidAt time.Time, payload json.RawMessage) (o Order, applied bool, err error)
}

// InMemoryRepository backs the memory store driver and the tests. The
// mutex makes MarkPaid's check and write a single step.
type InMemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]Order
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{orders: map[string]Order{}}
}

func (r *InMemoryRepository) Create(_ context.Context, o Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.ID]; ok {
		return Order{}, apperr.New(apperr.KindConflict, "order already exists")
	}
	r.orders[o.ID] = clone(o)
	return o, nil
}

func (r *InMemoryRepository) FindByID(_ context.Context, id string) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return clone(o), nil
}

func (r *InMemoryRepository) FindBySessionID(_ context.Context, sessionID string) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if sessionID != "" && o.StripeSessionID == sessionID {
			return clone(o), nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) ListByUser(_ context.Context, userID string) ([]Order, error) {
	r.mu.RLock()
	out := make([]Order, 0)
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, clone(o))
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *InMemoryRepository) AttachSession(_ context.Context, id, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	if o.IsPaid {
		return ErrAlreadyPaid
	}
	o.StripeSessionID = sessionID
	o.UpdatedAt = time.Now().UTC()
	r.orders[id] = o
	return nil
}

func (r *InMemoryRepository) MarkPaid(_ context.Context, id string, paidAt time.Time, payload json.RawMessage) (Order, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return Order{}, false, ErrNotFound
	}
	if o.IsPaid {
		return clone(o), false, nil
	}
	o.IsPaid = true
	o.PaidAt = &paidAt
	o.Status = StatusPaid
	o.PaymentResult = append(json.RawMessage(nil), payload...)
	o.UpdatedAt = paidAt
	r.orders[id] = o
	return clone(o), true, nil
}

func clone(o Order) Order {
	o.Items = append([]Item(nil), o.Items...)
	if o.PaymentResult != nil {
		o.PaymentResult = append(json.RawMessage(nil), o.PaymentResult...)
	}
	if o.PaidAt != nil {
		t := *o.PaidAt
		o.PaidAt = &t
	}
	return o
}
