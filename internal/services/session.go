package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"storefront-catalog-api/internal/models"
	"storefront-catalog-api/internal/sources"
	"storefront-catalog-api/internal/store"
	"storefront-catalog-api/internal/urlstate"
)

// Session is one open catalog page. Every action goes through its Store;
// a state whose fetch key differs from the current raw collection replaces
// that collection, cancels the in-flight fetch and shows a loading view
// until the new response arrives. Responses carrying an old token are
// dropped.
type Session struct {
	catalog *CatalogService
	store   *store.Store
	perPage int
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	token      uint64
	state      urlstate.State
	req        models.FetchRequest
	key        string
	page       *models.ProductPage
	err        error
	view       *models.CatalogView
	totalPages int
	inflight   context.CancelFunc
	done       chan struct{}
	closed     bool
}

// NewSession creates a session writing its URL to h. Call Mount before
// any action.
func NewSession(catalog *CatalogService, h store.History, perPage int, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	perPage = catalog.PerPage(perPage)
	state := urlstate.Default()
	return &Session{
		catalog:    catalog,
		store:      store.New(state, h),
		perPage:    perPage,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		state:      state,
		view:       catalog.LoadingView(state, perPage),
		totalPages: 1,
	}
}

// Mount loads the state in query. It is also the entry point for
// back/forward navigation and never writes history.
func (s *Session) Mount(query string) store.Change {
	change := s.store.Restore(query)
	s.refresh(true)
	return change
}

func (s *Session) ApplyFilterChange(filters models.FilterPredicateSet) store.Change {
	change := s.store.ApplyFilterChange(filters)
	s.refresh(false)
	return change
}

func (s *Session) ApplySortChange(key models.SortKey) store.Change {
	change := s.store.ApplySortChange(key)
	s.refresh(false)
	return change
}

func (s *Session) ApplySearchSubmit(query string) store.Change {
	change := s.store.ApplySearchSubmit(query)
	s.refresh(false)
	return change
}

func (s *Session) ClearAllFilters() store.Change {
	change := s.store.ClearAllFilters()
	s.refresh(false)
	return change
}

// GoToPage is a no-op returning false outside [1, totalPages] of the last
// loaded view.
func (s *Session) GoToPage(n int) (store.Change, bool) {
	s.mu.Lock()
	totalPages := s.totalPages
	s.mu.Unlock()

	change, ok := s.store.GoToPage(n, totalPages)
	if ok {
		s.refresh(false)
	}
	return change, ok
}

// Retry re-issues the failed fetch with identical parameters. It returns
// false when the current view is not an error.
func (s *Session) Retry() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.err == nil || s.inflight != nil {
		return false
	}

	req := s.req
	fetch := func(ctx context.Context) (*models.ProductPage, error) {
		return s.catalog.fetch(ctx, req)
	}
	if fe, ok := sources.AsFetchError(s.err); ok && fe.Retryable() {
		fetch = fe.Retry
	}
	s.startLocked(fetch)
	return true
}

// View returns a copy of the current view.
func (s *Session) View() *models.CatalogView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := *s.view
	return &v
}

// State returns the store's current state.
func (s *Session) State() urlstate.State {
	return s.store.State()
}

// Wait blocks until no fetch is in flight or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	for {
		s.mu.Lock()
		done := s.done
		s.mu.Unlock()
		if done == nil {
			return nil
		}
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close cancels any in-flight fetch. Late responses are discarded.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.token++
	if s.inflight != nil {
		s.inflight()
		s.inflight = nil
	}
	s.cancel()
}

// refresh brings the view in line with the store. force refetches even when
// the fetch key is unchanged.
func (s *Session) refresh(force bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	state := s.store.State()
	if state.Mode() != s.state.Mode() {
		s.totalPages = 1
	}
	s.state = state

	req := s.catalog.Plan(state, s.perPage)
	key := req.Key()

	if !force && key == s.key {
		switch {
		case s.page != nil:
			s.applyLocked()
			return
		case s.inflight != nil:
			// The pending response is assembled against the latest state.
			s.view = s.catalog.LoadingView(state, s.perPage)
			return
		}
	}

	s.req = req
	s.key = key
	s.startLocked(func(ctx context.Context) (*models.ProductPage, error) {
		return s.catalog.fetch(ctx, req)
	})
}

// startLocked drops the raw collection and launches fetch under a new token.
func (s *Session) startLocked(fetch func(context.Context) (*models.ProductPage, error)) {
	if s.inflight != nil {
		s.inflight()
	}
	s.token++
	token := s.token
	s.page = nil
	s.err = nil
	s.view = s.catalog.LoadingView(s.state, s.perPage)

	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan struct{})
	s.inflight = cancel
	s.done = done

	go s.run(ctx, token, fetch, done)
}

func (s *Session) run(ctx context.Context, token uint64, fetch func(context.Context) (*models.ProductPage, error), done chan struct{}) {
	page, err := fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	defer close(done)

	if token != s.token {
		if s.done == done {
			s.done = nil
		}
		s.catalog.telemetry.StaleResponse()
		s.logger.Debug("stale catalog response dropped",
			zap.Uint64("token", token),
			zap.Uint64("current", s.token),
		)
		return
	}

	s.inflight()
	s.inflight = nil
	s.done = nil

	if err != nil {
		s.err = err
		s.view = s.catalog.ErrorView(s.state, s.perPage, err)
		return
	}
	s.page = page
	s.applyLocked()
}

// applyLocked assembles the view from the raw collection. When the page
// number fell past the last page it is clamped; in search mode that moves
// the fetch offset, so a new fetch starts.
func (s *Session) applyLocked() {
	view := s.catalog.Assemble(s.state, s.perPage, s.page)
	s.totalPages = view.TotalPages

	if view.CurrentPage != s.state.Page {
		s.store.ClampPage(view.TotalPages)
		s.state = s.store.State()
		if s.state.Mode() == models.ModeSearch {
			req := s.catalog.Plan(s.state, s.perPage)
			s.req = req
			s.key = req.Key()
			s.startLocked(func(ctx context.Context) (*models.ProductPage, error) {
				return s.catalog.fetch(ctx, req)
			})
			return
		}
		view = s.catalog.Assemble(s.state, s.perPage, s.page)
	}
	s.view = view
}
