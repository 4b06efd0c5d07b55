package models

import (
	"fmt"
	"strings"
)

// FetchRequest identifies one remote page. Two requests with the same Key
// return the same raw collection.
type FetchRequest struct {
	Mode      Mode            `json:"mode"`
	Query     string          `json:"query,omitempty"`
	First     int             `json:"first"`
	Offset    int             `json:"offset"`
	OrderBy   SortKey         `json:"orderBy"`
	Condition ServerCondition `json:"condition"`
}

// Key is a stable string form of the request, used for caching and for
// deciding whether a state change needs a new fetch.
func (r FetchRequest) Key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:q=%s:first=%d:offset=%d:order=%s", r.Mode, r.Query, r.First, r.Offset, r.OrderBy.OrDefault())
	if r.Condition.CategoryID != "" {
		fmt.Fprintf(&b, ":cat=%s", r.Condition.CategoryID)
	}
	if r.Condition.BrandID != "" {
		fmt.Fprintf(&b, ":brand=%s", r.Condition.BrandID)
	}
	if r.Condition.IsFeatured {
		b.WriteString(":featured")
	}
	return b.String()
}

// ProductPage is one page returned by the remote API.
type ProductPage struct {
	Nodes           []RawProduct `json:"nodes"`
	TotalCount      int          `json:"totalCount"`
	HasNextPage     bool         `json:"hasNextPage"`
	HasPreviousPage bool         `json:"hasPreviousPage"`
}
