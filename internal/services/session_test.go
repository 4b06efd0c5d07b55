package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront-catalog-api/internal/models"
	"storefront-catalog-api/internal/sources"
	"storefront-catalog-api/internal/store"
)

// recordingSource records requests and delegates to respond.
type recordingSource struct {
	mu       sync.Mutex
	requests []models.FetchRequest
	respond  func(ctx context.Context, req models.FetchRequest) (*models.ProductPage, error)
}

func (r *recordingSource) Fetch(ctx context.Context, req models.FetchRequest) (*models.ProductPage, error) {
	r.mu.Lock()
	r.requests = append(r.requests, req)
	r.mu.Unlock()
	return r.respond(ctx, req)
}

func (r *recordingSource) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

func (r *recordingSource) last() models.FetchRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[len(r.requests)-1]
}

func immediate(page *models.ProductPage) *recordingSource {
	return &recordingSource{respond: func(context.Context, models.FetchRequest) (*models.ProductPage, error) {
		return page, nil
	}}
}

func newSession(t *testing.T, listing, search sources.Source, tel Telemetry, query string) (*Session, *store.MemoryHistory) {
	t.Helper()
	h := store.NewMemoryHistory(query)
	s := NewSession(newCatalog(listing, search, tel), h, 10, zap.NewNop())
	t.Cleanup(s.Close)
	s.Mount(query)
	return s, h
}

func wait(t *testing.T, s *Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))
}

func TestSession_MountLoadsListing(t *testing.T) {
	s, _ := newSession(t, immediate(rawPage(5, "l")), nil, nil, "")
	wait(t, s)

	view := s.View()
	assert.False(t, view.Loading)
	assert.Equal(t, models.ModeListing, view.Mode)
	assert.Len(t, view.DisplayedProducts, 5)
}

func TestSession_SearchSubmitNeverShowsListingResults(t *testing.T) {
	release := make(chan struct{})
	search := &recordingSource{respond: func(ctx context.Context, req models.FetchRequest) (*models.ProductPage, error) {
		select {
		case <-release:
			return rawPage(3, "s"), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}}
	s, h := newSession(t, immediate(rawPage(5, "l")), search, nil, "")
	wait(t, s)
	require.Len(t, s.View().DisplayedProducts, 5)

	change := s.ApplySearchSubmit("iphone")
	assert.True(t, change.ModeChanged)
	assert.Equal(t, "q=iphone", h.Current())

	view := s.View()
	assert.True(t, view.Loading)
	assert.Equal(t, models.ModeSearch, view.Mode)
	assert.Empty(t, view.DisplayedProducts)

	close(release)
	wait(t, s)

	view = s.View()
	assert.False(t, view.Loading)
	assert.Equal(t, []string{"s1", "s2", "s3"}, ids(view.DisplayedProducts))
}

func TestSession_LatestRequestWins(t *testing.T) {
	slow := make(chan struct{})
	search := &recordingSource{respond: func(ctx context.Context, req models.FetchRequest) (*models.ProductPage, error) {
		if req.Query == "first" {
			<-slow // ignores cancellation, like a response already on the wire
			return rawPage(2, "old"), nil
		}
		return rawPage(4, "new"), nil
	}}
	tel := &countingTelemetry{}
	s, _ := newSession(t, nil, search, tel, "q=first")

	s.ApplySearchSubmit("second")
	wait(t, s)
	close(slow)

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&tel.stale) == 1 }, time.Second, 5*time.Millisecond)
	view := s.View()
	assert.Equal(t, "second", view.Query)
	assert.Equal(t, []string{"new1", "new2", "new3", "new4"}, ids(view.DisplayedProducts))
}

func TestSession_ClientOnlyFilterReusesCollection(t *testing.T) {
	listing := immediate(rawPage(12, "l"))
	s, h := newSession(t, listing, nil, nil, "")
	wait(t, s)

	s.ApplyFilterChange(models.FilterPredicateSet{Stock: models.StockOut})

	view := s.View()
	assert.False(t, view.Loading)
	assert.Equal(t, 1, listing.count())
	assert.Equal(t, []string{"l1"}, ids(view.DisplayedProducts))
	assert.Equal(t, "stock=outOfStock", h.Current())

	s.ApplyFilterChange(models.FilterPredicateSet{Category: "c1"})
	wait(t, s)
	assert.Equal(t, 2, listing.count())
	assert.Equal(t, "c1", listing.last().Condition.CategoryID)
}

func TestSession_GoToPageRefetchesSearch(t *testing.T) {
	search := &recordingSource{respond: func(_ context.Context, req models.FetchRequest) (*models.ProductPage, error) {
		page := rawPage(10, "s")
		page.TotalCount = 50
		return page, nil
	}}
	s, h := newSession(t, nil, search, nil, "q=tv")
	wait(t, s)

	_, ok := s.GoToPage(3)
	require.True(t, ok)
	wait(t, s)

	assert.Equal(t, 20, search.last().Offset)
	assert.Equal(t, 3, s.View().CurrentPage)
	assert.Equal(t, 2, h.Len())

	_, ok = s.GoToPage(9)
	assert.False(t, ok)
	assert.Equal(t, 2, search.count())
}

func TestSession_ClampsPageAfterLoad(t *testing.T) {
	s, h := newSession(t, immediate(rawPage(5, "l")), nil, nil, "page=4")
	wait(t, s)

	assert.Equal(t, 1, s.View().CurrentPage)
	assert.Equal(t, 1, s.State().Page)
	require.NotEmpty(t, h.Writes())
	assert.Equal(t, store.Entry{Mode: store.HistoryReplace, Query: ""}, h.Writes()[0])
}

func TestSession_Retry(t *testing.T) {
	var calls int32
	search := &recordingSource{respond: func(context.Context, models.FetchRequest) (*models.ProductPage, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, errors.New("boom")
		}
		return rawPage(2, "ok"), nil
	}}
	s, _ := newSession(t, nil, search, nil, "q=x&page=1")
	wait(t, s)

	view := s.View()
	require.NotNil(t, view.Error)
	assert.Empty(t, view.DisplayedProducts)

	require.True(t, s.Retry())
	wait(t, s)

	view = s.View()
	assert.Nil(t, view.Error)
	assert.Len(t, view.DisplayedProducts, 2)
	assert.Equal(t, search.requests[0], search.requests[1])
	assert.False(t, s.Retry())
}

func TestSession_CloseDropsInflight(t *testing.T) {
	tel := &countingTelemetry{}
	listing := &recordingSource{respond: func(ctx context.Context, _ models.FetchRequest) (*models.ProductPage, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	s, _ := newSession(t, listing, nil, tel, "")

	s.Close()
	wait(t, s)

	assert.True(t, s.View().Loading)
	assert.Equal(t, int32(1), atomic.LoadInt32(&tel.stale))
	s.ApplySortChange(models.SortNameAsc)
	assert.Equal(t, 1, listing.count())
}
