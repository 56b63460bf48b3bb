package category

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/storefront-backend/internal/product"
)

func catalog(n int) product.Repository {
	items := make([]product.Product, 0, n)
	cats := []string{"Toys", "Food", "", "Beds"}
	for i := 0; i < n; i++ {
		items = append(items, product.Product{
			ID:       fmt.Sprintf("p%d", i),
			Name:     fmt.Sprintf("Item %d", i),
			Price:    decimal.NewFromInt(int64(i + 1)),
			Category: cats[i%len(cats)],
		})
	}
	return product.NewInMemoryRepository(items)
}

func TestService_ListFromCatalog(t *testing.T) {
	s := NewService(NewCatalogRepository(catalog(250)))

	got, err := s.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []Category{
		{Name: "Beds", Count: 62},
		{Name: "Food", Count: 63},
		{Name: "Toys", Count: 63},
	}, got)

	got, err = s.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []Category{{Name: "Beds", Count: 62}}, got)
}

func TestService_ListEmptyCatalog(t *testing.T) {
	s := NewService(NewCatalogRepository(product.NewInMemoryRepository(nil)))
	got, err := s.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
