package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SigNoz/storefront-go-app/internal/catalog"
	"github.com/SigNoz/storefront-go-app/internal/metrics"
	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/SigNoz/storefront-go-app/internal/services"
	"github.com/SigNoz/storefront-go-app/internal/storage"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	m, err := metrics.NewNoop("storefront-test")
	require.NoError(t, err)
	return newRouterWithMetrics(t, m)
}

func newRouterWithMetrics(t *testing.T, m *metrics.AppMetrics) *mux.Router {
	t.Helper()
	store := services.NewStore(context.Background(), storage.NewMemory(), m, services.WithLogger(zerolog.Nop()))
	app := NewApp(m, store, services.NewProductService(catalog.Default(), m))

	r := mux.NewRouter()
	app.SetupRoutes(r)
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestListProductsWithQuery(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/api/v1/products?q=vitamin&category=Vitamins", "")
	require.Equal(t, http.StatusOK, rec.Code)
	products := decode[[]models.Product](t, rec)
	require.Len(t, products, 1)
	assert.Equal(t, int64(2), products[0].ID)

	rec = do(t, r, http.MethodGet, "/api/v1/products?q=vitamin&category=Analgesics", "")
	assert.Empty(t, decode[[]models.Product](t, rec))
}

func TestBrowseFilterState(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPut, "/api/v1/products/filter", `{"q":"","category":"Vitamins"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Product](t, rec), 2)

	rec = do(t, r, http.MethodGet, "/api/v1/products", "")
	assert.Len(t, decode[[]models.Product](t, rec), 2)
}

func TestGetProduct(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/api/v1/products/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Paracetamol 500mg", decode[models.Product](t, rec).Name)

	rec = do(t, r, http.MethodGet, "/api/v1/view", "")
	assert.JSONEq(t, `{"view":"product"}`, rec.Body.String())

	rec = do(t, r, http.MethodGet, "/api/v1/products/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartFlow(t *testing.T) {
	r := newTestRouter(t)

	do(t, r, http.MethodPost, "/api/v1/cart/add", `{"product_id":1}`)
	rec := do(t, r, http.MethodPost, "/api/v1/cart/add", `{"product_id":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decode[models.CartResponse](t, rec)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, "25.98", cart.Total.StringFixed(2))

	rec = do(t, r, http.MethodPost, "/api/v1/cart/update", `{"product_id":1,"quantity":0}`)
	cart = decode[models.CartResponse](t, rec)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.Total.IsZero())

	rec = do(t, r, http.MethodPost, "/api/v1/cart/add", `{"product_id":404}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/v1/cart/add", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutIgnoredWithoutUser(t *testing.T) {
	r := newTestRouter(t)
	do(t, r, http.MethodPost, "/api/v1/cart/add", `{"product_id":1}`)

	rec := do(t, r, http.MethodPost, "/api/v1/checkout", `{"payment_method":"Bitcoin"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[ignoredResponse](t, rec)
	assert.Equal(t, "ignored", resp.Status)
	assert.Equal(t, services.ErrNotLoggedIn.Error(), resp.Reason)

	rec = do(t, r, http.MethodGet, "/api/v1/orders", "")
	assert.Empty(t, decode[[]models.Order](t, rec))
}

func TestCheckoutFlow(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/api/v1/session/register", `{"email":"ana@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ana", decode[models.User](t, rec).Name)

	rec = do(t, r, http.MethodPost, "/api/v1/checkout", `{"payment_method":"Bitcoin"}`)
	assert.Equal(t, services.ErrEmptyCart.Error(), decode[ignoredResponse](t, rec).Reason)

	do(t, r, http.MethodPost, "/api/v1/cart/add", `{"product_id":3}`)

	rec = do(t, r, http.MethodPost, "/api/v1/checkout", `{"payment_method":"Dogecoin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/v1/checkout", `{"payment_method":"Ethereum"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	order := decode[models.Order](t, rec)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, "18.50", order.Total.StringFixed(2))

	rec = do(t, r, http.MethodGet, "/api/v1/view", "")
	assert.JSONEq(t, `{"view":"orders"}`, rec.Body.String())

	rec = do(t, r, http.MethodGet, "/api/v1/orders", "")
	orders := decode[[]models.Order](t, rec)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)

	rec = do(t, r, http.MethodGet, "/api/v1/cart", "")
	assert.Empty(t, decode[models.CartResponse](t, rec).Items)
}

func TestSessionLifecycle(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/api/v1/session/login", `{"email":"","password":"pw"}`)
	assert.Equal(t, "ignored", decode[ignoredResponse](t, rec).Status)

	rec = do(t, r, http.MethodGet, "/api/v1/session", "")
	assert.JSONEq(t, `{"isLoggedIn":false}`, rec.Body.String())

	do(t, r, http.MethodPost, "/api/v1/session/login", `{"email":"bob@example.com","password":"pw"}`)
	rec = do(t, r, http.MethodGet, "/api/v1/session", "")
	user := decode[models.User](t, rec)
	assert.Equal(t, "bob", user.Name)
	assert.True(t, user.IsLoggedIn)

	do(t, r, http.MethodPost, "/api/v1/session/logout", "")
	rec = do(t, r, http.MethodGet, "/api/v1/session", "")
	assert.JSONEq(t, `{"isLoggedIn":false}`, rec.Body.String())
}

func TestNavigate(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPut, "/api/v1/view", `{"view":"cart"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodPut, "/api/v1/view", `{"view":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/v1/view", "")
	assert.JSONEq(t, `{"view":"cart"}`, rec.Body.String())
}

func TestStaticLists(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/api/v1/categories", "")
	assert.Equal(t, catalog.Categories, decode[[]string](t, rec))

	rec = do(t, r, http.MethodGet, "/api/v1/payment-methods", "")
	assert.Equal(t, models.PaymentMethods, decode[[]string](t, rec))
}

func TestAddToCartDoesNotCountProductView(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	m, err := metrics.NewAppMetrics(provider.Meter("storefront-test"), "storefront-test")
	require.NoError(t, err)
	r := newRouterWithMetrics(t, m)

	viewed := func() int64 {
		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(context.Background(), &rm))
		var total int64
		for _, sm := range rm.ScopeMetrics {
			for _, metric := range sm.Metrics {
				if sum, ok := metric.Data.(metricdata.Sum[int64]); ok && metric.Name == "products_viewed_total" {
					for _, dp := range sum.DataPoints {
						total += dp.Value
					}
				}
			}
		}
		return total
	}

	do(t, r, http.MethodPost, "/api/v1/cart/add", `{"product_id":1}`)
	do(t, r, http.MethodPost, "/api/v1/cart/add", `{"product_id":1}`)
	assert.Zero(t, viewed())

	do(t, r, http.MethodGet, "/api/v1/products/1", "")
	assert.Equal(t, int64(1), viewed())
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/api/v1/checkout", "/api/v1/cart/add", "/api/v1/view", "/api/v1/products/1"} {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"), path)
	}

	rec := do(t, r, http.MethodOptions, "/api/v1/orders", "")
	assert.Empty(t, rec.Body.String())
}
