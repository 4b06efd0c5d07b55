// Package urlstate converts between the catalog page's URL query string and
// its typed state. Parse never fails: unknown or malformed parameters fall
// back to their zero value.
package urlstate

import (
	"net/url"
	"strconv"
	"strings"

	"storefront-catalog-api/internal/models"
	"storefront-catalog-api/pkg/utils"
)

// Query parameter names.
const (
	ParamQuery    = "q"
	ParamSort     = "sort"
	ParamPriceMin = "priceMin"
	ParamPriceMax = "priceMax"
	ParamCategory = "category"
	ParamBrand    = "brand"
	ParamStock    = "stock"
	ParamFeatured = "featured"
	ParamDiscount = "discount"
	ParamPage     = "page"
)

// State is the catalog page state mirrored in the URL.
type State struct {
	Query   string                    `json:"query,omitempty"`
	Sort    models.SortKey            `json:"sort"`
	Filters models.FilterPredicateSet `json:"filters"`
	Page    int                       `json:"page"`
}

// Default is the state of a URL without parameters.
func Default() State {
	return State{Sort: models.DefaultSort, Page: 1}
}

// Normalize applies the same rules Parse applies.
func (s State) Normalize() State {
	s.Query = strings.TrimSpace(s.Query)
	s.Sort = s.Sort.OrDefault()
	if !s.Sort.Valid() {
		s.Sort, _ = models.ParseSortKey(string(s.Sort))
	}
	s.Filters = s.Filters.Normalize()
	if s.Page < 1 {
		s.Page = 1
	}
	return s
}

func (s State) Mode() models.Mode {
	return models.ModeOf(s.Query)
}

// Parse reads a State from query parameters.
func Parse(values url.Values) State {
	s := Default()
	s.Query = strings.TrimSpace(values.Get(ParamQuery))

	if raw := values.Get(ParamSort); raw != "" {
		s.Sort, _ = models.ParseSortKey(raw)
	}

	if v, ok := utils.ParseNumber(values.Get(ParamPriceMin)); ok {
		s.Filters.PriceMin = models.Bound(v)
	}
	if v, ok := utils.ParseNumber(values.Get(ParamPriceMax)); ok {
		s.Filters.PriceMax = models.Bound(v)
	}
	s.Filters.Category = strings.TrimSpace(values.Get(ParamCategory))
	s.Filters.Brand = strings.TrimSpace(values.Get(ParamBrand))
	s.Filters.Stock, _ = models.ParseStockStatus(values.Get(ParamStock))
	s.Filters.Featured = parseFlag(values.Get(ParamFeatured))
	s.Filters.Discount = parseFlag(values.Get(ParamDiscount))

	if raw := values.Get(ParamPage); raw != "" {
		if page, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && page > 0 {
			s.Page = page
		}
	}

	return s.Normalize()
}

// ParseQuery parses a raw query string, with or without a leading '?'.
// A malformed string yields whatever pairs could be decoded.
func ParseQuery(raw string) State {
	values, _ := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	return Parse(values)
}

func parseFlag(raw string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && v
}

// Values serializes every non-zero field. Zero fields are omitted.
func (s State) Values() url.Values {
	s = s.Normalize()
	values := url.Values{}

	if s.Query != "" {
		values.Set(ParamQuery, s.Query)
	}
	if s.Sort != models.DefaultSort {
		values.Set(ParamSort, string(s.Sort))
	}

	f := s.Filters
	if f.PriceMin.Set {
		values.Set(ParamPriceMin, utils.FormatNumber(f.PriceMin.Value))
	}
	if f.PriceMax.Set {
		values.Set(ParamPriceMax, utils.FormatNumber(f.PriceMax.Value))
	}
	if f.Category != "" {
		values.Set(ParamCategory, f.Category)
	}
	if f.Brand != "" {
		values.Set(ParamBrand, f.Brand)
	}
	if f.Stock != models.StockAll {
		values.Set(ParamStock, string(f.Stock))
	}
	if f.Featured {
		values.Set(ParamFeatured, "true")
	}
	if f.Discount {
		values.Set(ParamDiscount, "true")
	}
	if s.Page > 1 {
		values.Set(ParamPage, strconv.Itoa(s.Page))
	}
	return values
}

// Encode returns the canonical query string (keys sorted, no leading '?').
func (s State) Encode() string {
	return s.Values().Encode()
}

// Merge rewrites the catalog parameters of base with s, keeping any
// parameters the catalog does not own.
func (s State) Merge(base url.Values) url.Values {
	out := url.Values{}
	for key, vals := range base {
		if !owned(key) {
			out[key] = append([]string(nil), vals...)
		}
	}
	for key, vals := range s.Values() {
		out[key] = vals
	}
	return out
}

func owned(key string) bool {
	switch key {
	case ParamQuery, ParamSort, ParamPriceMin, ParamPriceMax, ParamCategory,
		ParamBrand, ParamStock, ParamFeatured, ParamDiscount, ParamPage:
		return true
	}
	return false
}
