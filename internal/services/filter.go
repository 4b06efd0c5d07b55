package services

import "storefront-catalog-api/internal/models"

// ApplyFilters returns the products that satisfy every active predicate, in
// input order. With no active predicate the input slice is returned as is.
func ApplyFilters(products []models.Product, set models.FilterPredicateSet) []models.Product {
	set = set.Normalize()
	if set.IsZero() {
		return products
	}

	filtered := make([]models.Product, 0, len(products))
	for _, product := range products {
		if matches(product, set) {
			filtered = append(filtered, product)
		}
	}
	return filtered
}

// Matches evaluates a single product against the predicate set.
func Matches(product models.Product, set models.FilterPredicateSet) bool {
	return matches(product, set.Normalize())
}

func matches(product models.Product, set models.FilterPredicateSet) bool {
	// Price range
	if set.PriceMin.Set && product.Price < set.PriceMin.Value {
		return false
	}
	if set.PriceMax.Set && product.Price > set.PriceMax.Value {
		return false
	}

	// A missing reference never matches a specific id.
	if set.Category != "" && product.CategoryID() != set.Category {
		return false
	}
	if set.Brand != "" && product.BrandID() != set.Brand {
		return false
	}

	if !set.Stock.Admits(product.Stock) {
		return false
	}
	if set.Featured && !product.IsFeatured {
		return false
	}
	if set.Discount && !product.HasDiscount() {
		return false
	}
	return true
}
