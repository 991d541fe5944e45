package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/SigNoz/storefront-go-app/internal/catalog"
	"github.com/SigNoz/storefront-go-app/internal/metrics"
	"github.com/SigNoz/storefront-go-app/internal/middleware"
	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/SigNoz/storefront-go-app/internal/services"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// App holds application dependencies
type App struct {
	metrics        *metrics.AppMetrics
	store          *services.Store
	productService *services.ProductService
}

// NewApp creates a new application instance
func NewApp(m *metrics.AppMetrics, store *services.Store, ps *services.ProductService) *App {
	return &App{
		metrics:        m,
		store:          store,
		productService: ps,
	}
}

// ignoredResponse reports an operation whose precondition was not met
type ignoredResponse struct {
	Status string      `json:"status"`
	Reason string      `json:"reason"`
	View   models.View `json:"view"`
}

// SetupRoutes configures the HTTP routes
func (a *App) SetupRoutes(r *mux.Router) {
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.CORSMiddleware)
	r.Use(middleware.ErrorHandlerMiddleware)
	r.Use(middleware.MetricsMiddleware(a.metrics))

	// OPTIONS is routed everywhere so CORS preflights reach the middleware
	api := r.PathPrefix("/api/v1").Subrouter()

	// Products
	api.HandleFunc("/products", a.ListProductsHandler).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/products/filter", a.SetFilterHandler).Methods(http.MethodPut, http.MethodOptions)
	api.HandleFunc("/products/{id:[0-9]+}", a.GetProductHandler).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/categories", a.ListCategoriesHandler).Methods(http.MethodGet, http.MethodOptions)

	// Cart
	api.HandleFunc("/cart", a.GetCartHandler).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/cart/add", a.AddToCartHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/cart/update", a.UpdateQuantityHandler).Methods(http.MethodPost, http.MethodOptions)

	// Checkout and orders
	api.HandleFunc("/payment-methods", a.ListPaymentMethodsHandler).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/checkout", a.CheckoutHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/orders", a.ListOrdersHandler).Methods(http.MethodGet, http.MethodOptions)

	// Session
	api.HandleFunc("/session", a.GetSessionHandler).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/session/login", a.LoginHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/session/register", a.RegisterHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/session/logout", a.LogoutHandler).Methods(http.MethodPost, http.MethodOptions)

	// View
	api.HandleFunc("/view", a.GetViewHandler).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/view", a.NavigateHandler).Methods(http.MethodPut, http.MethodOptions)

	// Health
	r.HandleFunc("/health", a.HealthHandler).Methods(http.MethodGet, http.MethodOptions)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to encode response")
	}
}

func (a *App) writeIgnored(w http.ResponseWriter, reason error) {
	writeJSON(w, http.StatusOK, ignoredResponse{
		Status: "ignored",
		Reason: reason.Error(),
		View:   a.store.CurrentView(),
	})
}

// HealthHandler handles health check requests
func (a *App) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ListProductsHandler handles GET /api/v1/products. Query parameters q and
// category filter statelessly; without them the browse filters apply.
func (a *App) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !query.Has("q") && !query.Has("category") {
		writeJSON(w, http.StatusOK, a.productService.Visible())
		return
	}

	category := query.Get("category")
	if category == "" {
		category = catalog.AllCategories
	}
	writeJSON(w, http.StatusOK, catalog.Filter(a.productService.Products(), query.Get("q"), category))
}

// SetFilterHandler handles PUT /api/v1/products/filter
func (a *App) SetFilterHandler(w http.ResponseWriter, r *http.Request) {
	var req models.FilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	a.productService.SetSearchTerm(req.SearchTerm)
	a.productService.SetCategory(req.Category)
	writeJSON(w, http.StatusOK, a.productService.Visible())
}

// GetProductHandler handles GET /api/v1/products/{id}
func (a *App) GetProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	product, err := a.productService.GetProduct(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	a.store.Navigate(models.ViewProduct)
	writeJSON(w, http.StatusOK, product)
}

// ListCategoriesHandler handles GET /api/v1/categories
func (a *App) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.Categories)
}

// GetCartHandler handles GET /api/v1/cart
func (a *App) GetCartHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.store.CartSummary())
}

// AddToCartHandler handles POST /api/v1/cart/add
func (a *App) AddToCartHandler(w http.ResponseWriter, r *http.Request) {
	var req models.AddToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	product, ok := a.productService.Lookup(req.ProductID)
	if !ok {
		http.Error(w, services.ErrProductNotFound.Error(), http.StatusNotFound)
		return
	}

	a.store.AddToCart(r.Context(), product)
	writeJSON(w, http.StatusOK, a.store.CartSummary())
}

// UpdateQuantityHandler handles POST /api/v1/cart/update
func (a *App) UpdateQuantityHandler(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	a.store.UpdateQuantity(r.Context(), req.ProductID, req.Quantity)
	writeJSON(w, http.StatusOK, a.store.CartSummary())
}

// ListPaymentMethodsHandler handles GET /api/v1/payment-methods
func (a *App) ListPaymentMethodsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.PaymentMethods)
}

// CheckoutHandler handles POST /api/v1/checkout
func (a *App) CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !models.IsPaymentMethod(req.PaymentMethod) {
		http.Error(w, "Unsupported payment method", http.StatusBadRequest)
		return
	}

	order, err := a.store.Checkout(r.Context(), req.PaymentMethod)
	if errors.Is(err, services.ErrEmptyCart) || errors.Is(err, services.ErrNotLoggedIn) {
		a.writeIgnored(w, err)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// ListOrdersHandler handles GET /api/v1/orders
func (a *App) ListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.store.Orders())
}

// GetSessionHandler handles GET /api/v1/session
func (a *App) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	user := a.store.User()
	if user == nil {
		writeJSON(w, http.StatusOK, map[string]bool{"isLoggedIn": false})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// LoginHandler handles POST /api/v1/session/login
func (a *App) LoginHandler(w http.ResponseWriter, r *http.Request) {
	a.signIn(w, r, a.store.Login)
}

// RegisterHandler handles POST /api/v1/session/register
func (a *App) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	a.signIn(w, r, a.store.Register)
}

func (a *App) signIn(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, email, password string) (*models.User, error)) {
	var req models.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := fn(r.Context(), req.Email, req.Password)
	if errors.Is(err, services.ErrMissingCredentials) {
		a.writeIgnored(w, err)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// LogoutHandler handles POST /api/v1/session/logout
func (a *App) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	a.store.Logout(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// GetViewHandler handles GET /api/v1/view
func (a *App) GetViewHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.NavigateRequest{View: a.store.CurrentView()})
}

// NavigateHandler handles PUT /api/v1/view
func (a *App) NavigateHandler(w http.ResponseWriter, r *http.Request) {
	var req models.NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !a.store.Navigate(req.View) {
		http.Error(w, "Unknown view", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, req)
}
