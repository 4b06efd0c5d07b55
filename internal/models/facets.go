package models

// Facets describes the filter options available in a raw collection.
type Facets struct {
	Categories   []FacetOption     `json:"categories"`
	Brands       []FacetOption     `json:"brands"`
	PriceRange   *PriceRangeData   `json:"priceRange,omitempty"`
	Availability *AvailabilityData `json:"availability"`
}

type FacetOption struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type PriceRangeData struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type AvailabilityData struct {
	InStock    int `json:"inStock"`
	OutOfStock int `json:"outOfStock"`
	LowStock   int `json:"lowStock"`
}
