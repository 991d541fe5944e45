package catalog

import (
	"testing"

	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProducts() []models.Product {
	return []models.Product{
		{ID: 1, Name: "Vitamin X", Category: "A", Description: "daily boost", Price: decimal.RequireFromString("10")},
		{ID: 2, Name: "Pain Away", Category: "B", Description: "fast relief", Price: decimal.RequireFromString("5"),
			Potency: &models.Potency{MedicalUse: "Migraine attacks"}},
		{ID: 3, Name: "Sleep Well", Category: "A", Description: "contains VITAMIN b6", Price: decimal.RequireFromString("7")},
	}
}

func ids(products []models.Product) []int64 {
	out := make([]int64, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestFilterConjunction(t *testing.T) {
	products := testProducts()

	assert.Empty(t, Filter(products, "vitamin", "B"))
	assert.Equal(t, []int64{1, 3}, ids(Filter(products, "vitamin", "A")))
	assert.Equal(t, []int64{1, 3}, ids(Filter(products, "vitamin", AllCategories)))
}

func TestFilterEmptyTermKeepsCatalogOrder(t *testing.T) {
	assert.Equal(t, []int64{1, 2, 3}, ids(Filter(testProducts(), "", AllCategories)))
	assert.Equal(t, []int64{2}, ids(Filter(testProducts(), "", "B")))
}

func TestFilterMatchesMedicalUse(t *testing.T) {
	assert.Equal(t, []int64{2}, ids(Filter(testProducts(), "MIGRAINE", AllCategories)))
}

func TestFilterCategoryIsCaseSensitive(t *testing.T) {
	assert.Empty(t, Filter(testProducts(), "", "a"))
}

func TestDefaultCatalog(t *testing.T) {
	products := Default().Products()
	require.Len(t, products, 6)

	seen := map[int64]bool{}
	for _, p := range products {
		assert.False(t, seen[p.ID], "duplicate id %d", p.ID)
		seen[p.ID] = true
		assert.Contains(t, Categories, p.Category)
		assert.True(t, p.Price.GreaterThanOrEqual(decimal.Zero))
		assert.GreaterOrEqual(t, p.Rating, 0.0)
		assert.LessOrEqual(t, p.Rating, 5.0)
	}
}

func TestProductsReturnsCopies(t *testing.T) {
	provider := Default()
	first := provider.Products()
	first[0].Name = "changed"
	first[0].Potency.Effects[0] = "changed"

	again := provider.Products()
	assert.Equal(t, "Paracetamol 500mg", again[0].Name)
	assert.Equal(t, "analgesic", again[0].Potency.Effects[0])
}

func TestFind(t *testing.T) {
	p, ok := Find(testProducts(), 2)
	require.True(t, ok)
	assert.Equal(t, "Pain Away", p.Name)

	_, ok = Find(testProducts(), 42)
	assert.False(t, ok)
}
