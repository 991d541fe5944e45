package services

import (
	"context"
	"testing"

	"github.com/SigNoz/storefront-go-app/internal/catalog"
	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visibleIDs(s *ProductService) []int64 {
	var out []int64
	for _, p := range s.Visible() {
		out = append(out, p.ID)
	}
	return out
}

func TestProductServiceStartsUnfiltered(t *testing.T) {
	s := NewProductService(catalog.Default(), testMetrics(t))
	assert.Len(t, s.Visible(), len(s.Products()))

	term, category := s.Filters()
	assert.Empty(t, term)
	assert.Equal(t, catalog.AllCategories, category)
}

func TestProductServiceRecomputesEagerly(t *testing.T) {
	s := NewProductService(catalog.Default(), testMetrics(t))

	s.SetCategory("Vitamins")
	assert.Equal(t, []int64{2, 5}, visibleIDs(s))

	s.SetSearchTerm("vitamin")
	assert.Equal(t, []int64{2}, visibleIDs(s))

	s.SetCategory("Analgesics")
	assert.Empty(t, visibleIDs(s))

	s.SetCategory("")
	assert.Equal(t, []int64{2}, visibleIDs(s))

	s.SetCatalog(catalog.NewStatic([]models.Product{
		{ID: 10, Name: "Vitamin C", Category: "Vitamins"},
		{ID: 11, Name: "Zinc", Category: "Supplements"},
	}))
	assert.Equal(t, []int64{10}, visibleIDs(s))
}

func TestGetProduct(t *testing.T) {
	s := NewProductService(catalog.Default(), testMetrics(t))

	p, err := s.GetProduct(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Omeprazole 20mg", p.Name)

	_, err = s.GetProduct(context.Background(), 404)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestLookupDoesNotCountViews(t *testing.T) {
	m, reader := recordingMetrics(t)
	s := NewProductService(catalog.Default(), m)

	p, ok := s.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, int64(1), p.ID)
	_, ok = s.Lookup(404)
	assert.False(t, ok)

	viewed, _ := int64Metric(t, reader, "products_viewed_total")
	assert.Zero(t, viewed)

	_, err := s.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	viewed, _ = int64Metric(t, reader, "products_viewed_total")
	assert.Equal(t, int64(1), viewed)
}
