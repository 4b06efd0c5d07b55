package models

// PageWindow is derived from (currentPage, itemsPerPage, totalCount).
type PageWindow struct {
	CurrentPage  int `json:"currentPage"`
	ItemsPerPage int `json:"itemsPerPage"`
	TotalCount   int `json:"totalCount"`
	TotalPages   int `json:"totalPages"`
	StartItem    int `json:"startItem"`
	EndItem      int `json:"endItem"`
}

// FilterScope tells the UI what the client-side filters were applied to.
type FilterScope string

const (
	ScopeWindow FilterScope = "window"
	ScopePage   FilterScope = "page"
)

// CatalogView is everything the presentation layer needs for one render.
type CatalogView struct {
	DisplayedProducts  []Product          `json:"displayedProducts"`
	Loading            bool               `json:"loading"`
	Error              *ErrorResponse     `json:"error,omitempty"`
	TotalFilteredCount int                `json:"totalFilteredCount"`
	StartItem          int                `json:"startItem"`
	EndItem            int                `json:"endItem"`
	TotalPages         int                `json:"totalPages"`
	CurrentPage        int                `json:"currentPage"`
	PageNumbers        []int              `json:"pageNumbers"`
	Mode               Mode               `json:"mode"`
	FilterScope        FilterScope        `json:"filterScope"`
	PageMatchCount     int                `json:"pageMatchCount"`
	HiddenCount        int                `json:"hiddenCount"`
	Truncated          bool               `json:"truncated"`
	HasActiveFilters   bool               `json:"hasActiveFilters"`
	ActiveFilterCount  int                `json:"activeFilterCount"`
	Query              string             `json:"query,omitempty"`
	Sort               SortKey            `json:"sort"`
	Filters            FilterPredicateSet `json:"filters"`
	CanonicalQuery     string             `json:"canonicalQuery"`
	Facets             *Facets            `json:"facets,omitempty"`
	Duration           string             `json:"duration,omitempty"`
}

// Empty reports the "no results" state: a successful fetch with no matches.
func (v *CatalogView) Empty() bool {
	return !v.Loading && v.Error == nil && len(v.DisplayedProducts) == 0
}
