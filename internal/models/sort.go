package models

import "strings"

// SortKey is the remote orderBy token.
type SortKey string

const (
	SortCreatedDesc SortKey = "CREATED_DESC"
	SortCreatedAsc  SortKey = "CREATED_ASC"
	SortPriceAsc    SortKey = "PRICE_ASC"
	SortPriceDesc   SortKey = "PRICE_DESC"
	SortNameAsc     SortKey = "NAME_ASC"
	SortNameDesc    SortKey = "NAME_DESC"

	DefaultSort = SortCreatedDesc
)

var sortKeys = map[string]SortKey{
	"created_desc": SortCreatedDesc,
	"createddesc":  SortCreatedDesc,
	"created_asc":  SortCreatedAsc,
	"createdasc":   SortCreatedAsc,
	"price_asc":    SortPriceAsc,
	"priceasc":     SortPriceAsc,
	"price_desc":   SortPriceDesc,
	"pricedesc":    SortPriceDesc,
	"name_asc":     SortNameAsc,
	"nameasc":      SortNameAsc,
	"name_desc":    SortNameDesc,
	"namedesc":     SortNameDesc,
}

// ParseSortKey accepts the GraphQL token or its camelCase name in any case.
// Unknown input yields DefaultSort with ok=false.
func ParseSortKey(s string) (SortKey, bool) {
	key, ok := sortKeys[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return DefaultSort, false
	}
	return key, true
}

// OrDefault maps the empty key to DefaultSort.
func (k SortKey) OrDefault() SortKey {
	if k == "" {
		return DefaultSort
	}
	return k
}

// Valid reports whether k is one of the canonical orderBy tokens.
func (k SortKey) Valid() bool {
	switch k {
	case SortCreatedDesc, SortCreatedAsc, SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc:
		return true
	}
	return false
}

// Mode selects which fetch adapter supplies the raw collection.
type Mode string

const (
	ModeListing Mode = "listing"
	ModeSearch  Mode = "search"
)

// ModeOf derives the mode from a search query.
func ModeOf(query string) Mode {
	if strings.TrimSpace(query) != "" {
		return ModeSearch
	}
	return ModeListing
}
