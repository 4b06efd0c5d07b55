// Package store holds the catalog page state and is the only writer of the
// page URL. Each action computes the complete next state, serializes it once
// and hands the query string to the History.
package store

import (
	"strings"
	"sync"

	"storefront-catalog-api/internal/models"
	"storefront-catalog-api/internal/urlstate"
)

// HistoryMode says how a URL write interacts with browser history.
type HistoryMode string

const (
	HistoryNone    HistoryMode = ""
	HistoryReplace HistoryMode = "replace"
	HistoryPush    HistoryMode = "push"
)

// History receives URL writes.
type History interface {
	Replace(query string)
	Push(query string)
}

// Change describes the effect of one action.
type Change struct {
	Prev        urlstate.State `json:"-"`
	Next        urlstate.State `json:"-"`
	Query       string         `json:"query"`
	History     HistoryMode    `json:"history"`
	Changed     bool           `json:"changed"`
	ModeChanged bool           `json:"modeChanged"`
}

type Store struct {
	mu      sync.RWMutex
	state   urlstate.State
	history History
}

// New creates a store from the state parsed on mount. h may be nil.
func New(initial urlstate.State, h History) *Store {
	return &Store{state: initial.Normalize(), history: h}
}

// FromQuery is New over a raw query string.
func FromQuery(raw string, h History) *Store {
	return New(urlstate.ParseQuery(raw), h)
}

func (s *Store) State() urlstate.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) Mode() models.Mode {
	return s.State().Mode()
}

// ApplyFilterChange replaces the predicate set and resets to page 1.
func (s *Store) ApplyFilterChange(filters models.FilterPredicateSet) Change {
	return s.update(HistoryReplace, func(st *urlstate.State) {
		st.Filters = filters
		st.Page = 1
	})
}

// ApplySortChange sets the sort key and resets to page 1.
func (s *Store) ApplySortChange(key models.SortKey) Change {
	return s.update(HistoryReplace, func(st *urlstate.State) {
		st.Sort = key
		st.Page = 1
	})
}

// ApplySearchSubmit enters search mode for a non-empty query and returns to
// listing mode for an empty one. The page resets to 1 either way.
func (s *Store) ApplySearchSubmit(query string) Change {
	return s.update(HistoryPush, func(st *urlstate.State) {
		st.Query = strings.TrimSpace(query)
		st.Page = 1
	})
}

// ClearAllFilters resets filters, query, sort and page.
func (s *Store) ClearAllFilters() Change {
	return s.update(HistoryReplace, func(st *urlstate.State) {
		*st = urlstate.Default()
	})
}

// GoToPage moves to page n. It is a no-op returning ok=false when n is
// outside [1, totalPages].
func (s *Store) GoToPage(n, totalPages int) (Change, bool) {
	if n < 1 || n > totalPages {
		return s.unchanged(), false
	}
	return s.update(HistoryPush, func(st *urlstate.State) {
		st.Page = n
	}), true
}

// ClampPage pulls the current page back inside [1, totalPages] after the
// result count changed.
func (s *Store) ClampPage(totalPages int) Change {
	if totalPages < 1 {
		totalPages = 1
	}
	return s.update(HistoryReplace, func(st *urlstate.State) {
		if st.Page > totalPages {
			st.Page = totalPages
		}
	})
}

// Restore resynchronizes from a URL the user navigated to (back/forward or
// reload). It never writes to History.
func (s *Store) Restore(raw string) Change {
	return s.update(HistoryNone, func(st *urlstate.State) {
		*st = urlstate.ParseQuery(raw)
	})
}

func (s *Store) unchanged() Change {
	st := s.State()
	return Change{Prev: st, Next: st, Query: st.Encode()}
}

func (s *Store) update(mode HistoryMode, mutate func(*urlstate.State)) Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	next := prev
	mutate(&next)
	next = next.Normalize()
	s.state = next

	change := Change{
		Prev:        prev,
		Next:        next,
		Query:       next.Encode(),
		Changed:     prev != next,
		ModeChanged: prev.Mode() != next.Mode(),
	}
	if !change.Changed {
		return change
	}
	change.History = mode

	// Written under the lock so History sees writes in state order.
	if s.history != nil {
		switch mode {
		case HistoryReplace:
			s.history.Replace(change.Query)
		case HistoryPush:
			s.history.Push(change.Query)
		}
	}
	return change
}
