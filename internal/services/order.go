package services

import (
	"context"

	"github.com/SigNoz/storefront-go-app/internal/models"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Checkout turns the cart into a pending order paid with paymentMethod.
// The order is prepended to the history, the cart is emptied and the view
// moves to the order history. It returns ErrEmptyCart or ErrNotLoggedIn,
// with no state change, when the cart is empty or nobody is signed in.
func (s *Store) Checkout(ctx context.Context, paymentMethod string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.cart) == 0 {
		s.checkoutRejected(ctx, ErrEmptyCart)
		return nil, ErrEmptyCart
	}
	if s.user == nil {
		s.checkoutRejected(ctx, ErrNotLoggedIn)
		return nil, ErrNotLoggedIn
	}

	order := models.Order{
		ID:            s.nextID(),
		Date:          s.now().UTC().Format(models.DateLayout),
		Total:         cartTotal(s.cart),
		Status:        models.OrderStatusPending,
		Items:         models.CloneItems(s.cart),
		PaymentMethod: paymentMethod,
	}

	s.orders = append([]models.Order{order}, s.orders...)
	s.cart = []models.CartItem{}
	s.view = models.ViewOrders

	s.persist(ctx, s.keys.Orders, s.orders)
	s.cartChanged(ctx)

	attrs := metric.WithAttributes(s.metrics.WithServiceName([]attribute.KeyValue{
		attribute.String("order_status", string(order.Status)),
		attribute.String("payment_method", paymentMethod),
	})...)
	s.metrics.OrdersCreated.Add(ctx, 1, attrs)
	s.metrics.RevenueTotal.Add(ctx, order.Total.InexactFloat64(), attrs)

	s.logger.Info().
		Int64("order_id", order.ID).
		Str("total", order.Total.StringFixed(2)).
		Str("payment_method", paymentMethod).
		Int("items", len(order.Items)).
		Msg("order created")

	out := order.Clone()
	return &out, nil
}

func (s *Store) checkoutRejected(ctx context.Context, reason error) {
	s.metrics.CheckoutsRejected.Add(ctx, 1, metric.WithAttributes(s.metrics.WithServiceName([]attribute.KeyValue{
		attribute.String("reason", reason.Error()),
	})...))
	s.logger.Debug().Str("reason", reason.Error()).Msg("checkout ignored")
}

// Orders returns a copy of the order history, most recent first
func (s *Store) Orders() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Order, len(s.orders))
	for i, o := range s.orders {
		out[i] = o.Clone()
	}
	return out
}
