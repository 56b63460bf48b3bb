package cart

import (
	"context"
	"fmt"

	"github.com/wichananm65/storefront-backend/internal/apperr"
)

// Service orchestrates cart operations.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, userID string) ([]Item, error) {
	return s.repo.Get(ctx, userID)
}

// Merge folds a client-held cart into the stored one and persists the result.
// It runs once per login. Load and save are separate steps, so two merges
// racing for the same user keep whichever saves last.
func (s *Service) Merge(ctx context.Context, userID string, client []Item) ([]Item, error) {
	server, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	merged := Merge(server, client)
	if err := s.repo.Save(ctx, userID, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// Replace overwrites the stored cart with items.
func (s *Service) Replace(ctx context.Context, userID string, items []Item) ([]Item, error) {
	for i, it := range items {
		switch {
		case it.ProductID == "":
			return nil, apperr.Validation(fmt.Sprintf("item %d: productId is required", i))
		case it.Qty <= 0:
			return nil, apperr.Validation(fmt.Sprintf("item %d: qty must be positive", i))
		case it.Qty > MaxQty:
			return nil, apperr.Validation(fmt.Sprintf("item %d: qty must not exceed %d", i, MaxQty))
		case it.Price.IsNegative():
			return nil, apperr.Validation(fmt.Sprintf("item %d: price must not be negative", i))
		}
	}
	// duplicates collapse into one entry
	items = Merge(nil, items)
	if err := s.repo.Save(ctx, userID, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.repo.Save(ctx, userID, []Item{})
}
