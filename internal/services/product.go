package services

import (
	"context"
	"errors"
	"sync"

	"github.com/SigNoz/storefront-go-app/internal/catalog"
	"github.com/SigNoz/storefront-go-app/internal/metrics"
	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrProductNotFound is returned for ids outside the catalog
var ErrProductNotFound = errors.New("product not found")

// ProductService holds the catalog and the browse filters. The visible list
// is recomputed as soon as the catalog, search term or category changes.
type ProductService struct {
	mu       sync.RWMutex
	metrics  *metrics.AppMetrics
	products []models.Product
	term     string
	category string
	visible  []models.Product
}

// NewProductService creates a product service over the provider's catalog
func NewProductService(provider catalog.Provider, metrics *metrics.AppMetrics) *ProductService {
	s := &ProductService{
		metrics:  metrics,
		products: provider.Products(),
		category: catalog.AllCategories,
	}
	s.refilter()
	return s
}

// refilter recomputes the visible list. Callers hold the write lock.
func (s *ProductService) refilter() {
	s.visible = catalog.Filter(s.products, s.term, s.category)
}

// Products returns the full catalog
func (s *ProductService) Products() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Product(nil), s.products...)
}

// Visible returns the products passing the current filters
func (s *ProductService) Visible() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Product(nil), s.visible...)
}

// Filters returns the current search term and category
func (s *ProductService) Filters() (term, category string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.term, s.category
}

// SetSearchTerm changes the search term
func (s *ProductService) SetSearchTerm(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.term = term
	s.refilter()
}

// SetCategory changes the selected category. An empty category selects all.
func (s *ProductService) SetCategory(category string) {
	if category == "" {
		category = catalog.AllCategories
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.category = category
	s.refilter()
}

// SetCatalog replaces the catalog
func (s *ProductService) SetCatalog(provider catalog.Provider) {
	products := provider.Products()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = products
	s.refilter()
}

// Lookup returns a product by ID without counting a view
func (s *ProductService) Lookup(id int64) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := catalog.Find(s.products, id)
	if !ok {
		return models.Product{}, false
	}
	return p.Clone(), true
}

// GetProduct returns a product by ID and records a product view
func (s *ProductService) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	p, ok := s.Lookup(id)
	if !ok {
		return models.Product{}, ErrProductNotFound
	}

	viewAttrs := s.metrics.WithServiceName([]attribute.KeyValue{
		attribute.Int64("product_id", id),
		attribute.String("product_category", p.Category),
	})
	s.metrics.ProductsViewed.Add(ctx, 1, metric.WithAttributes(viewAttrs...))
	log.Debug().Int64("product_id", id).Str("product_category", p.Category).Msg("product viewed")

	return p, nil
}
