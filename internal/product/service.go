package product

import (
	"context"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, q Query) (Page, error) {
	q = q.normalize()
	products, total, err := s.repo.List(ctx, q)
	if err != nil {
		return Page{}, err
	}
	return Page{Products: products, Page: q.Page, Pages: pages(total, q.PageSize)}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Lookup returns the catalog entries for ids. Missing ids are absent from the map.
func (s *Service) Lookup(ctx context.Context, ids []string) (map[string]Product, error) {
	return s.repo.FindByIDs(ctx, ids)
}

// Seed loads products when the catalog is empty and reports whether it did.
func (s *Service) Seed(ctx context.Context, products []Product) (bool, error) {
	_, total, err := s.repo.List(ctx, Query{PageSize: 1})
	if err != nil {
		return false, err
	}
	if total > 0 {
		return false, nil
	}
	return true, s.repo.Seed(ctx, products)
}
