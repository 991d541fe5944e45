package services

import (
	"context"

	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AddToCart adds one unit of product, merging with an existing line
func (s *Store) AddToCart(ctx context.Context, product models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cart {
		if s.cart[i].ID == product.ID {
			s.cart[i].Quantity++
			s.cartChanged(ctx)
			return
		}
	}

	s.cart = append(s.cart, models.CartItem{Product: product.Clone(), Quantity: 1})
	s.cartChanged(ctx)
}

// UpdateQuantity sets the quantity of a cart line. A quantity of zero or less
// removes the line. Unknown product ids are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cart {
		if s.cart[i].ID != productID {
			continue
		}
		if quantity <= 0 {
			s.cart = append(s.cart[:i:i], s.cart[i+1:]...)
		} else {
			s.cart[i].Quantity = quantity
		}
		s.cartChanged(ctx)
		return
	}
}

// CartTotal returns the sum of price times quantity over the cart
func (s *Store) CartTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cartTotal(s.cart)
}

// Cart returns a copy of the cart lines
func (s *Store) Cart() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneItems(s.cart)
}

// CartCount returns the number of units in the cart
func (s *Store) CartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cartUnits(s.cart)
}

// CartSummary returns the cart with its total and unit count
func (s *Store) CartSummary() models.CartResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CartResponse{
		Items: models.CloneItems(s.cart),
		Total: cartTotal(s.cart),
		Count: cartUnits(s.cart),
	}
}

func cartTotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func cartUnits(items []models.CartItem) int {
	units := 0
	for _, item := range items {
		units += item.Quantity
	}
	return units
}

// cartChanged mirrors the cart and refreshes the cart gauge. Callers hold mu.
func (s *Store) cartChanged(ctx context.Context) {
	s.persist(ctx, s.keys.Cart, s.cart)

	units := cartUnits(s.cart)
	s.metrics.CartItemsCount.Record(ctx, int64(units), metric.WithAttributes(s.metrics.WithServiceName([]attribute.KeyValue{})...))
	s.logger.Debug().Int("lines", len(s.cart)).Int("units", units).Msg("cart updated")
}
