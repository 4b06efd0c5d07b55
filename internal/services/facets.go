package services

import (
	"sort"

	"storefront-catalog-api/internal/models"
)

// BuildFacets summarizes the filter options present in products.
func BuildFacets(products []models.Product) *models.Facets {
	facets := &models.Facets{
		Categories:   []models.FacetOption{},
		Brands:       []models.FacetOption{},
		Availability: &models.AvailabilityData{},
	}
	categories := make(map[string]*models.FacetOption)
	brands := make(map[string]*models.FacetOption)

	for i, p := range products {
		if i == 0 {
			facets.PriceRange = &models.PriceRangeData{Min: p.Price, Max: p.Price}
		} else {
			if p.Price < facets.PriceRange.Min {
				facets.PriceRange.Min = p.Price
			}
			if p.Price > facets.PriceRange.Max {
				facets.PriceRange.Max = p.Price
			}
		}

		if p.Stock > 0 {
			facets.Availability.InStock++
		} else {
			facets.Availability.OutOfStock++
		}
		if models.StockLow.Admits(p.Stock) {
			facets.Availability.LowStock++
		}

		countRef(categories, p.Category)
		countRef(brands, p.Brand)
	}

	facets.Categories = sortedOptions(categories)
	facets.Brands = sortedOptions(brands)
	return facets
}

func countRef(into map[string]*models.FacetOption, ref *models.Ref) {
	if ref == nil {
		return
	}
	opt, ok := into[ref.ID]
	if !ok {
		opt = &models.FacetOption{ID: ref.ID, Name: ref.Name}
		into[ref.ID] = opt
	}
	opt.Count++
}

func sortedOptions(in map[string]*models.FacetOption) []models.FacetOption {
	out := make([]models.FacetOption, 0, len(in))
	for _, opt := range in {
		out = append(out, *opt)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}
