package store

import (
	"fmt"

	"storefront-catalog-api/internal/models"
)

type ActionType string

const (
	ActionFilterChange ActionType = "applyFilterChange"
	ActionSortChange   ActionType = "applySortChange"
	ActionSearchSubmit ActionType = "applySearchSubmit"
	ActionClearFilters ActionType = "clearAllFilters"
	ActionGoToPage     ActionType = "goToPage"
)

// Action is a named store action in serializable form.
type Action struct {
	Type       ActionType                 `json:"action"`
	Filters    *models.FilterPredicateSet `json:"filters,omitempty"`
	Sort       string                     `json:"sort,omitempty"`
	Search     string                     `json:"search"`
	Page       int                        `json:"page,omitempty"`
	TotalPages int                        `json:"totalPages,omitempty"`
}

// Dispatch runs a. An out-of-range page returns the unchanged state with
// models.ErrPageOutOfRange.
func (s *Store) Dispatch(a Action) (Change, error) {
	switch a.Type {
	case ActionFilterChange:
		var filters models.FilterPredicateSet
		if a.Filters != nil {
			filters = *a.Filters
		}
		return s.ApplyFilterChange(filters), nil
	case ActionSortChange:
		key, ok := models.ParseSortKey(a.Sort)
		if !ok && a.Sort != "" {
			return s.unchanged(), fmt.Errorf("%w: unknown sort %q", models.ErrInvalidAction, a.Sort)
		}
		return s.ApplySortChange(key), nil
	case ActionSearchSubmit:
		return s.ApplySearchSubmit(a.Search), nil
	case ActionClearFilters:
		return s.ClearAllFilters(), nil
	case ActionGoToPage:
		change, ok := s.GoToPage(a.Page, a.TotalPages)
		if !ok {
			return change, fmt.Errorf("%w: %d of %d", models.ErrPageOutOfRange, a.Page, a.TotalPages)
		}
		return change, nil
	default:
		return s.unchanged(), fmt.Errorf("%w: %q", models.ErrInvalidAction, a.Type)
	}
}
