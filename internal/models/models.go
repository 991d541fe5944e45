package models

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Persisted records carry prices and totals as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Potency holds the optional pharmacological attributes some catalog entries carry
type Potency struct {
	Strength   string   `json:"strength,omitempty"`
	Effects    []string `json:"effects,omitempty"`
	MedicalUse string   `json:"medicalUse,omitempty"`
	Usage      string   `json:"usage,omitempty"`
}

// Product represents a product in the catalog
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Rating      float64         `json:"rating"`
	InStock     bool            `json:"inStock"`
	Image       string          `json:"image"`
	Potency     *Potency        `json:"potency,omitempty"`
}

// Clone returns a copy of p that shares no memory with it
func (p Product) Clone() Product {
	if p.Potency != nil {
		pot := *p.Potency
		pot.Effects = append([]string(nil), p.Potency.Effects...)
		p.Potency = &pot
	}
	return p
}

// CartItem represents a product in the cart with its quantity
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// Subtotal returns price times quantity
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Clone returns a deep copy of the item
func (i CartItem) Clone() CartItem {
	return CartItem{Product: i.Product.Clone(), Quantity: i.Quantity}
}

// CloneItems deep-copies a slice of cart items
func CloneItems(items []CartItem) []CartItem {
	out := make([]CartItem, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}

// User represents the signed-in session
type User struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	IsLoggedIn bool   `json:"isLoggedIn"`
}

// OrderStatus is the fulfilment state of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
)

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

// DateLayout is the calendar-date format orders are stamped with
const DateLayout = "2006-01-02"

// Order represents a completed checkout
type Order struct {
	ID            int64           `json:"id"`
	Date          string          `json:"date"`
	Total         decimal.Decimal `json:"total"`
	Status        OrderStatus     `json:"status"`
	Items         []CartItem      `json:"items"`
	PaymentMethod string          `json:"paymentMethod"`
}

// Clone returns a deep copy of the order
func (o Order) Clone() Order {
	o.Items = CloneItems(o.Items)
	return o
}

// Payment options offered at checkout
const (
	PaymentBitcoin    = "Bitcoin"
	PaymentEthereum   = "Ethereum"
	PaymentCreditCard = "Credit Card"
)

// PaymentMethods lists the checkout payment options in display order
var PaymentMethods = []string{PaymentBitcoin, PaymentEthereum, PaymentCreditCard}

// IsPaymentMethod reports whether method is one of PaymentMethods
func IsPaymentMethod(method string) bool {
	for _, m := range PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}

// View is the screen the storefront is showing
type View string

const (
	ViewHome     View = "home"
	ViewLogin    View = "login"
	ViewRegister View = "register"
	ViewCart     View = "cart"
	ViewOrders   View = "orders"
	ViewProduct  View = "product"
)

// Valid reports whether v is a known view
func (v View) Valid() bool {
	switch v {
	case ViewHome, ViewLogin, ViewRegister, ViewCart, ViewOrders, ViewProduct:
		return true
	}
	return false
}

// CartResponse represents the cart with its derived figures
type CartResponse struct {
	Items []CartItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// AddToCartRequest represents a request to add an item to the cart
type AddToCartRequest struct {
	ProductID int64 `json:"product_id"`
}

// UpdateQuantityRequest represents a request to set an item's quantity
type UpdateQuantityRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// CheckoutRequest represents a request to place an order
type CheckoutRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// CredentialsRequest represents a login or registration form
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// FilterRequest represents a change to the browse filters
type FilterRequest struct {
	SearchTerm string `json:"q"`
	Category   string `json:"category"`
}

// NavigateRequest represents a view switch
type NavigateRequest struct {
	View View `json:"view"`
}
