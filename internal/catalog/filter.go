package catalog

import (
	"strings"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

// Filter returns the products matching both the search term and the category,
// in catalog order. An empty term matches everything, as does AllCategories.
func Filter(products []models.Product, term, category string) []models.Product {
	needle := strings.ToLower(term)
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if needle != "" && !matchesTerm(p, needle) {
			continue
		}
		if category != AllCategories && p.Category != category {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesTerm(p models.Product, needle string) bool {
	if strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) {
		return true
	}
	return p.Potency != nil && strings.Contains(strings.ToLower(p.Potency.MedicalUse), needle)
}
