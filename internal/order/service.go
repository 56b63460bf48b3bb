package order

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wichananm65/storefront-backend/internal/apperr"
	"github.com/wichananm65/storefront-backend/internal/events"
	"github.com/wichananm65/storefront-backend/internal/product"
)

// Catalog resolves product references to their current catalog entries.
type Catalog interface {
	Lookup(ctx context.Context, ids []string) (map[string]product.Product, error)
}

type Service struct {
	repo      Repository
	policy    Policy
	catalog   Catalog
	publisher events.Publisher
	log       *slog.Logger
	now       func() time.Time
	newID     func() string
}

type Option func(*Service)

// WithCatalog makes Create take names, prices and images from the catalog
// and reject products the catalog does not know.
func WithCatalog(c Catalog) Option {
	return func(s *Service) { s.catalog = c }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func NewService(repo Repository, policy Policy, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		policy:    policy,
		publisher: events.Nop{},
		log:       slog.Default(),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and prices d and persists it unpaid with the given status.
// Nothing is stored when validation fails.
func (s *Service) Create(ctx context.Context, userID string, d Draft, status Status) (Order, error) {
	if userID == "" {
		return Order{}, apperr.New(apperr.KindAuthorization, "not authorized")
	}
	if status != StatusPending && status != StatusConfirmed {
		return Order{}, apperr.Validation("orders start as Pending or Confirmed")
	}
	if err := ValidateItems(d.Items); err != nil {
		return Order{}, err
	}
	items, err := s.snapshot(ctx, d.Items)
	if err != nil {
		return Order{}, err
	}
	prices, err := s.policy.Price(items)
	if err != nil {
		return Order{}, err
	}

	now := s.now()
	o := Order{
		ID:              s.newID(),
		UserID:          userID,
		Items:           items,
		ShippingAddress: d.ShippingAddress,
		PaymentMethod:   d.PaymentMethod,
		ItemsPrice:      prices.Items,
		TaxPrice:        prices.Tax,
		ShippingPrice:   prices.Shipping,
		TotalPrice:      prices.Total,
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	created, err := s.repo.Create(ctx, o)
	if err != nil {
		return Order{}, err
	}
	s.publish(ctx, events.TopicOrderCreated, created)
	return created, nil
}

// snapshot copies catalog name, price and image onto items when a catalog is set.
func (s *Service) snapshot(ctx context.Context, items []Item) ([]Item, error) {
	out := append([]Item(nil), items...)
	if s.catalog == nil {
		return out, nil
	}
	found, err := s.catalog.Lookup(ctx, ProductIDs(items))
	if err != nil {
		return nil, err
	}
	for i, it := range out {
		p, ok := found[it.ProductID]
		if !ok {
			return nil, apperr.Validation("product " + it.ProductID + " not found")
		}
		out[i].Name = p.Name
		out[i].Price = p.Price
		if img := p.Image(); img != "" {
			out[i].Image = img
		}
	}
	return out, nil
}

// Get returns an order owned by userID.
func (s *Service) Get(ctx context.Context, userID, id string) (Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if o.UserID != userID {
		return Order{}, apperr.Forbidden("Not authorized to view this order")
	}
	return o, nil
}

func (s *Service) GetBySession(ctx context.Context, sessionID string) (Order, error) {
	if sessionID == "" {
		return Order{}, ErrNotFound
	}
	return s.repo.FindBySessionID(ctx, sessionID)
}

func (s *Service) ListMine(ctx context.Context, userID string) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) AttachSession(ctx context.Context, id, sessionID string) error {
	return s.repo.AttachSession(ctx, id, sessionID)
}

// MarkPaid records a successful payment. Repeated calls for the same order
// return applied == false and change nothing.
func (s *Service) MarkPaid(ctx context.Context, id string, payload json.RawMessage) (Order, bool, error) {
	o, applied, err := s.repo.MarkPaid(ctx, id, s.now(), payload)
	if err != nil {
		return Order{}, false, err
	}
	if applied {
		s.publish(ctx, events.TopicOrderPaid, o)
	}
	return o, applied, nil
}

type orderEvent struct {
	OrderID    string `json:"orderId"`
	UserID     string `json:"userId"`
	Status     Status `json:"status"`
	TotalPrice string `json:"totalPrice"`
	IsPaid     bool   `json:"isPaid"`
}

func (s *Service) publish(ctx context.Context, topic string, o Order) {
	ev := orderEvent{
		OrderID:    o.ID,
		UserID:     o.UserID,
		Status:     o.Status,
		TotalPrice: o.TotalPrice.StringFixed(2),
		IsPaid:     o.IsPaid,
	}
	if err := s.publisher.Publish(ctx, topic, o.ID, ev); err != nil {
		s.log.Warn("publish order event", "topic", topic, "order_id", o.ID, "error", err)
	}
}
