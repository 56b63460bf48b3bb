package address

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wichananm65/storefront-backend/internal/apperr"
	"github.com/wichananm65/storefront-backend/internal/order"
)

// Service manages a user's saved shipping addresses.
type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

func (s *Service) List(ctx context.Context, userID string) ([]Address, error) {
	return s.repo.List(ctx, userID)
}

func (s *Service) Add(ctx context.Context, userID string, in Input) (Address, error) {
	in = in.trimmed()
	if err := validate(in); err != nil {
		return Address{}, err
	}
	now := s.now()
	a := Address{ID: s.newID(), UserID: userID, CreatedAt: now, UpdatedAt: now}
	in.apply(&a)
	if err := s.repo.Create(ctx, a); err != nil {
		return Address{}, err
	}
	return a, nil
}

func (s *Service) Update(ctx context.Context, userID, id string, in Input) (Address, error) {
	in = in.trimmed()
	if err := validate(in); err != nil {
		return Address{}, err
	}
	a, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return Address{}, err
	}
	in.apply(&a)
	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Address{}, err
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

// Shipping returns the saved address id of userID in the shape stored on orders.
func (s *Service) Shipping(ctx context.Context, userID, id string) (order.ShippingAddress, error) {
	a, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return order.ShippingAddress{}, err
	}
	return a.ShippingAddress, nil
}

func validate(in Input) error {
	if in.Address == "" || in.City == "" {
		return apperr.Validation("address and city are required")
	}
	return nil
}
