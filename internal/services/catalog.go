package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"storefront-catalog-api/internal/models"
	"storefront-catalog-api/internal/sources"
	"storefront-catalog-api/internal/store"
	"storefront-catalog-api/internal/urlstate"
)

const (
	DefaultListingWindow = 200
	DefaultPerPage       = 12
	MaxPerPage           = 100
)

// Telemetry receives pipeline measurements. *metrics.Metrics implements it.
type Telemetry interface {
	ObserveFetch(mode models.Mode, d time.Duration)
	HiddenRecords(n int)
	StaleResponse()
}

type nopTelemetry struct{}

func (nopTelemetry) ObserveFetch(models.Mode, time.Duration) {}
func (nopTelemetry) HiddenRecords(int)                       {}
func (nopTelemetry) StaleResponse()                          {}

type CatalogOptions struct {
	ListingWindow int
	PerPage       int
}

// CatalogService turns a URL state into a CatalogView: it picks the adapter
// for the mode, fetches, drops malformed records, filters and paginates.
type CatalogService struct {
	adapters       sources.Adapters
	listingWindow  int
	defaultPerPage int
	telemetry      Telemetry
	logger         *zap.Logger
}

func NewCatalogService(adapters sources.Adapters, opts CatalogOptions, telemetry Telemetry, logger *zap.Logger) *CatalogService {
	if opts.ListingWindow <= 0 {
		opts.ListingWindow = DefaultListingWindow
	}
	if opts.PerPage <= 0 {
		opts.PerPage = DefaultPerPage
	}
	if telemetry == nil {
		telemetry = nopTelemetry{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		adapters:       adapters,
		listingWindow:  opts.ListingWindow,
		defaultPerPage: opts.PerPage,
		telemetry:      telemetry,
		logger:         logger,
	}
}

// PerPage clamps a requested page size to [1, MaxPerPage]; zero or negative
// means the configured default.
func (s *CatalogService) PerPage(n int) int {
	if n <= 0 {
		return s.defaultPerPage
	}
	if n > MaxPerPage {
		return MaxPerPage
	}
	return n
}

// Plan builds the remote request for state. Listing mode fetches one window
// from offset 0 with the equality filters pushed down; search mode fetches
// exactly the current page.
func (s *CatalogService) Plan(state urlstate.State, perPage int) models.FetchRequest {
	state = state.Normalize()
	perPage = s.PerPage(perPage)

	if state.Mode() == models.ModeSearch {
		return models.FetchRequest{
			Mode:    models.ModeSearch,
			Query:   state.Query,
			First:   perPage,
			Offset:  Offset(state.Page, perPage),
			OrderBy: state.Sort,
		}
	}
	return models.FetchRequest{
		Mode:      models.ModeListing,
		First:     s.listingWindow,
		Offset:    0,
		OrderBy:   state.Sort,
		Condition: state.Filters.Condition(),
	}
}

// Browse fetches and assembles the view for state. On a fetch failure the
// returned view still carries the filter metadata, with Error set, and the
// error is a *sources.FetchError.
func (s *CatalogService) Browse(ctx context.Context, state urlstate.State, perPage int) (*models.CatalogView, error) {
	startTime := time.Now()
	state = state.Normalize()
	perPage = s.PerPage(perPage)

	req := s.Plan(state, perPage)
	page, err := s.fetch(ctx, req)
	if err != nil {
		return s.ErrorView(state, perPage, err), err
	}

	view := s.Assemble(state, perPage, page)

	// Search pages are fetched by offset, so a clamped page needs its own fetch.
	if state.Mode() == models.ModeSearch && view.CurrentPage != state.Page {
		s.logger.Debug("search page out of range, refetching",
			zap.Int("requested", state.Page),
			zap.Int("clamped", view.CurrentPage),
		)
		state.Page = view.CurrentPage
		page, err = s.fetch(ctx, s.Plan(state, perPage))
		if err != nil {
			return s.ErrorView(state, perPage, err), err
		}
		view = s.Assemble(state, perPage, page)
	}

	view.Duration = time.Since(startTime).String()
	return view, nil
}

func (s *CatalogService) fetch(ctx context.Context, req models.FetchRequest) (*models.ProductPage, error) {
	src := s.adapters.Select(req.Mode)
	if src == nil {
		return nil, models.ErrNoSource
	}

	start := time.Now()
	page, err := src.Fetch(ctx, req)
	s.telemetry.ObserveFetch(req.Mode, time.Since(start))
	if err != nil {
		return nil, err
	}
	if page == nil {
		page = &models.ProductPage{Nodes: []models.RawProduct{}}
	}
	return page, nil
}

// Assemble derives the view for state from one fetched page. It is pure
// apart from telemetry.
func (s *CatalogService) Assemble(state urlstate.State, perPage int, page *models.ProductPage) *models.CatalogView {
	state = state.Normalize()
	perPage = s.PerPage(perPage)

	products, hidden := SanitizeProducts(page.Nodes)
	if hidden > 0 {
		s.telemetry.HiddenRecords(hidden)
		s.logger.Info("malformed products hidden",
			zap.String("mode", string(state.Mode())),
			zap.Int("hidden", hidden),
		)
	}
	filtered := ApplyFilters(products, state.Filters)

	view := newView(state)
	view.HiddenCount = hidden
	view.Facets = BuildFacets(products)

	var window models.PageWindow
	if state.Mode() == models.ModeSearch {
		// Filters only see the fetched page; the server total drives paging.
		window = ComputeWindow(state.Page, perPage, page.TotalCount)
		view.FilterScope = models.ScopePage
		view.DisplayedProducts = filtered
		view.PageMatchCount = len(filtered)
	} else {
		window = ComputeWindow(state.Page, perPage, len(filtered))
		view.FilterScope = models.ScopeWindow
		view.DisplayedProducts = Slice(filtered, window)
		view.PageMatchCount = len(view.DisplayedProducts)
		view.Truncated = page.HasNextPage
	}

	applyWindow(view, window)
	state.Page = window.CurrentPage
	view.CanonicalQuery = state.Encode()
	return view
}

// ErrorView is the view shown while the list area reports err. Filters, sort
// and query stay available so the rest of the page remains usable.
func (s *CatalogService) ErrorView(state urlstate.State, perPage int, err error) *models.CatalogView {
	state = state.Normalize()
	view := newView(state)
	if state.Mode() == models.ModeSearch {
		view.FilterScope = models.ScopePage
	} else {
		view.FilterScope = models.ScopeWindow
	}
	applyWindow(view, ComputeWindow(state.Page, s.PerPage(perPage), 0))
	view.CanonicalQuery = state.Encode()
	view.Error = ErrorResponse(err, view.CanonicalQuery)
	return view
}

// LoadingView is the placeholder for state while its fetch is in flight. It
// never carries products.
func (s *CatalogService) LoadingView(state urlstate.State, perPage int) *models.CatalogView {
	state = state.Normalize()
	view := newView(state)
	view.Loading = true
	applyWindow(view, ComputeWindow(state.Page, s.PerPage(perPage), 0))
	view.CanonicalQuery = state.Encode()
	return view
}

// Navigate applies one action to state without fetching, returning the next
// canonical query and how it must be written to history.
func (s *CatalogService) Navigate(state urlstate.State, action store.Action) (*store.Change, error) {
	change, err := store.New(state, nil).Dispatch(action)
	return &change, err
}

func newView(state urlstate.State) *models.CatalogView {
	return &models.CatalogView{
		DisplayedProducts: []models.Product{},
		Mode:              state.Mode(),
		Query:             state.Query,
		Sort:              state.Sort,
		Filters:           state.Filters,
		HasActiveFilters:  !state.Filters.IsZero(),
		ActiveFilterCount: state.Filters.ActiveCount(),
	}
}

func applyWindow(view *models.CatalogView, w models.PageWindow) {
	view.TotalFilteredCount = w.TotalCount
	view.StartItem = w.StartItem
	view.EndItem = w.EndItem
	view.TotalPages = w.TotalPages
	view.CurrentPage = w.CurrentPage
	view.PageNumbers = PageNumbers(w.CurrentPage, w.TotalPages)
}

// ErrorResponse renders err in the uniform error shape. retryQuery is the
// canonical query string that re-runs the identical fetch.
func ErrorResponse(err error, retryQuery string) *models.ErrorResponse {
	resp := &models.ErrorResponse{
		Error:   "fetch_failed",
		Code:    http.StatusBadGateway,
		Message: "We couldn't load products. Please try again.",
		Details: err.Error(),
		Retry:   "/catalog",
	}
	if retryQuery != "" {
		resp.Retry += "?" + retryQuery
	}

	if fe, ok := sources.AsFetchError(err); ok {
		resp.Error = string(fe.Kind) + "_error"
		resp.Message = fe.Message
		if fe.Err != nil {
			resp.Details = fe.Err.Error()
		}
		if fe.Kind == sources.KindTimeout {
			resp.Code = http.StatusGatewayTimeout
		}
		if !fe.Retryable() {
			resp.Retry = ""
		}
	}
	if errors.Is(err, models.ErrNoSource) {
		resp.Error = "no_source"
		resp.Code = http.StatusServiceUnavailable
		resp.Retry = ""
	}
	return resp
}
