package catalog

import (
	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/shopspring/decimal"
)

// AllCategories is the category selection that matches every product
const AllCategories = "All"

// Categories lists the browse categories, sentinel first
var Categories = []string{AllCategories, "Analgesics", "Vitamins", "Digestives", "Supplements"}

// Provider supplies the fixed product list loaded at startup
type Provider interface {
	Products() []models.Product
}

// Static is a Provider over an in-memory product list
type Static struct {
	products []models.Product
}

// NewStatic creates a provider that serves copies of products
func NewStatic(products []models.Product) *Static {
	return &Static{products: cloneProducts(products)}
}

// Default returns the storefront seed catalog
func Default() *Static {
	return NewStatic(seed)
}

// Products returns a copy of the catalog in catalog order
func (s *Static) Products() []models.Product {
	return cloneProducts(s.products)
}

// Find returns the product with the given id
func Find(products []models.Product, id int64) (models.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

func cloneProducts(products []models.Product) []models.Product {
	out := make([]models.Product, len(products))
	for i, p := range products {
		out[i] = p.Clone()
	}
	return out
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var seed = []models.Product{
	{
		ID:          1,
		Name:        "Paracetamol 500mg",
		Price:       price("12.99"),
		Category:    "Analgesics",
		Description: "Effective relief for pain and fever",
		Rating:      4.8,
		InStock:     true,
		Image:       "https://images.unsplash.com/photo-1584308666744-24d5c474f2ae?w=400&h=300&fit=crop",
		Potency: &models.Potency{
			Strength:   "500mg",
			Effects:    []string{"analgesic", "antipyretic"},
			MedicalUse: "Mild to moderate pain and fever",
			Usage:      "1 tablet every 6 hours, max 4 per day",
		},
	},
	{
		ID:          2,
		Name:        "Vitamin D3 2000IU",
		Price:       price("29.99"),
		Category:    "Vitamins",
		Description: "Strengthens bones and the immune system",
		Rating:      4.9,
		InStock:     true,
		Image:       "https://images.unsplash.com/photo-1559757148-5c350d0d3c56?w=400&h=300&fit=crop",
		Potency: &models.Potency{
			Strength:   "2000IU",
			Effects:    []string{"bone health", "immunity"},
			MedicalUse: "Vitamin D deficiency",
			Usage:      "1 capsule daily with a meal",
		},
	},
	{
		ID:          3,
		Name:        "Omeprazole 20mg",
		Price:       price("18.50"),
		Category:    "Digestives",
		Description: "Advanced gastric protection",
		Rating:      4.7,
		InStock:     true,
		Image:       "https://images.unsplash.com/photo-1471864190281-a93a3070b6de?w=400&h=300&fit=crop",
		Potency: &models.Potency{
			Strength:   "20mg",
			Effects:    []string{"acid reduction"},
			MedicalUse: "Gastric reflux and ulcers",
			Usage:      "1 capsule before breakfast",
		},
	},
	{
		ID:          4,
		Name:        "Dipyrone 500mg",
		Price:       price("8.99"),
		Category:    "Analgesics",
		Description: "Potent analgesic and antipyretic",
		Rating:      4.6,
		InStock:     false,
		Image:       "https://images.unsplash.com/photo-1576671081837-49000212a370?w=400&h=300&fit=crop",
	},
	{
		ID:          5,
		Name:        "B Complex",
		Price:       price("24.99"),
		Category:    "Vitamins",
		Description: "Energy and vitality for every day",
		Rating:      4.8,
		InStock:     true,
		Image:       "https://images.unsplash.com/photo-1550572017-edd951aa8ca6?w=400&h=300&fit=crop",
	},
	{
		ID:          6,
		Name:        "Premium Probiotics",
		Price:       price("45.99"),
		Category:    "Supplements",
		Description: "Gut health and immunity",
		Rating:      4.9,
		InStock:     true,
		Image:       "https://images.unsplash.com/photo-1607619056574-7b8d3ee536b2?w=400&h=300&fit=crop",
	},
}
