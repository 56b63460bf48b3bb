package category

import (
	"context"
	"sort"

	"github.com/wichananm65/storefront-backend/internal/product"
)

const scanPageSize = 100

type Repository interface {
	List(ctx context.Context, limit int) ([]Category, error)
}

// CatalogRepository derives categories by paging through a product
// repository. It backs the memory store driver.
type CatalogRepository struct {
	products product.Repository
}

func NewCatalogRepository(products product.Repository) *CatalogRepository {
	return &CatalogRepository{products: products}
}

func (r *CatalogRepository) List(ctx context.Context, limit int) ([]Category, error) {
	counts := make(map[string]int)
	for page := 1; ; page++ {
		items, total, err := r.products.List(ctx, product.Query{Page: page, PageSize: scanPageSize})
		if err != nil {
			return nil, err
		}
		for _, p := range items {
			if p.Category != "" {
				counts[p.Category]++
			}
		}
		if len(items) == 0 || page*scanPageSize >= total {
			break
		}
	}

	out := make([]Category, 0, len(counts))
	for name, n := range counts {
		out = append(out, Category{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
