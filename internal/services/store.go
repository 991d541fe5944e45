package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/SigNoz/storefront-go-app/internal/metrics"
	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/SigNoz/storefront-go-app/internal/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Rejections reported when an operation's precondition is not met. State is
// left untouched in every case.
var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrNotLoggedIn        = errors.New("no user is logged in")
	ErrMissingCredentials = errors.New("email and password are required")
)

// Keys names the storage key of each persisted collection
type Keys struct {
	User   string
	Cart   string
	Orders string
}

// KeysWithPrefix returns the collection keys under prefix
func KeysWithPrefix(prefix string) Keys {
	return Keys{
		User:   prefix + "user",
		Cart:   prefix + "cart",
		Orders: prefix + "orders",
	}
}

// Store owns one storefront session: the signed-in user, the cart, the
// order history and the current view. Every mutation is mirrored to
// storage; storage failures are logged and never surface to callers.
type Store struct {
	mu sync.Mutex

	kv      storage.Storage
	metrics *metrics.AppMetrics
	logger  zerolog.Logger
	keys    Keys
	timeout time.Duration
	now     func() time.Time
	lastID  int64

	user   *models.User
	cart   []models.CartItem
	orders []models.Order
	view   models.View
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger used for persistence warnings
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithClock replaces time.Now for ids and order dates
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithKeys overrides the storage keys
func WithKeys(keys Keys) Option {
	return func(s *Store) { s.keys = keys }
}

// WithTimeout bounds every storage call
func WithTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

// NewStore creates a store and hydrates it from kv
func NewStore(ctx context.Context, kv storage.Storage, m *metrics.AppMetrics, opts ...Option) *Store {
	s := &Store{
		kv:      kv,
		metrics: m,
		logger:  log.Logger,
		keys:    KeysWithPrefix("mydrugs_"),
		timeout: 2 * time.Second,
		now:     time.Now,
		cart:    []models.CartItem{},
		orders:  []models.Order{},
		view:    models.ViewHome,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.hydrate(ctx)
	return s
}

// hydrate restores each collection independently; a failed key falls back
// to its default without affecting the others
func (s *Store) hydrate(ctx context.Context) {
	var user *models.User
	if s.load(ctx, s.keys.User, &user) && user != nil {
		s.user = user
	}

	var cart []models.CartItem
	if s.load(ctx, s.keys.Cart, &cart) {
		s.cart = normalizeCart(cart)
	}

	var orders []models.Order
	if s.load(ctx, s.keys.Orders, &orders) && orders != nil {
		s.orders = s.validOrders(orders)
		for _, o := range s.orders {
			if o.ID > s.lastID {
				s.lastID = o.ID
			}
		}
	}

	if s.user != nil {
		s.lastID = max(s.lastID, s.user.ID)
		s.recordActiveUsers(ctx, 1)
	}

	s.logger.Info().
		Bool("logged_in", s.user != nil).
		Int("cart_items", len(s.cart)).
		Int("orders", len(s.orders)).
		Msg("session hydrated")
}

func (s *Store) load(ctx context.Context, key string, dst any) bool {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return false
	}
	if err == nil {
		err = json.Unmarshal([]byte(raw), dst)
		if err != nil {
			err = fmt.Errorf("malformed value: %w", err)
		}
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to hydrate collection, using default")
		s.metrics.HydrationFailures.Add(ctx, 1, metric.WithAttributes(s.metrics.WithServiceName([]attribute.KeyValue{
			attribute.String("storage.key", key),
		})...))
		return false
	}
	return true
}

// validOrders drops hydrated orders carrying an unknown status
func (s *Store) validOrders(orders []models.Order) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if !o.Status.Valid() {
			s.logger.Warn().Int64("order_id", o.ID).Str("status", string(o.Status)).Msg("dropping order with unknown status")
			continue
		}
		out = append(out, o)
	}
	return out
}

// normalizeCart drops non-positive quantities and merges repeated products
func normalizeCart(items []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, 0, len(items))
	index := make(map[int64]int, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if i, ok := index[item.ID]; ok {
			out[i].Quantity += item.Quantity
			continue
		}
		index[item.ID] = len(out)
		out = append(out, item)
	}
	return out
}

func (s *Store) persist(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to encode collection, write dropped")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.kv.Set(ctx, key, string(raw)); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to persist collection, write dropped")
	}
}

func (s *Store) remove(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.kv.Remove(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to remove collection, write dropped")
	}
}

// nextID returns a millisecond timestamp that is strictly greater than any
// id handed out or hydrated before
func (s *Store) nextID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// CurrentView returns the screen the session is on
func (s *Store) CurrentView() models.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Navigate switches the current view. Unknown views are ignored.
func (s *Store) Navigate(view models.View) bool {
	if !view.Valid() {
		return false
	}
	s.mu.Lock()
	s.view = view
	s.mu.Unlock()
	return true
}
