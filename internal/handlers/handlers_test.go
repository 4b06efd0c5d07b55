package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront-catalog-api/internal/middleware"
	"storefront-catalog-api/internal/models"
	"storefront-catalog-api/internal/services"
	"storefront-catalog-api/internal/sources"
	"storefront-catalog-api/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeCache struct {
	keys    []string
	flushed bool
}

func (f *fakeCache) IsAvailable() bool { return true }
func (f *fakeCache) GetStats(context.Context) map[string]interface{} {
	return map[string]interface{}{"status": "connected", "keys": len(f.keys)}
}
func (f *fakeCache) GetAllKeys(context.Context) []string { return f.keys }
func (f *fakeCache) GetKeyTTL(context.Context, string) time.Duration {
	return time.Minute
}
func (f *fakeCache) FlushCache(context.Context) error {
	f.flushed = true
	f.keys = nil
	return nil
}

func listingPage(n int) *models.ProductPage {
	nodes := make([]models.RawProduct, n)
	for i := range nodes {
		nodes[i] = models.RawProduct{
			ID:       fmt.Sprintf("p%d", i+1),
			Name:     fmt.Sprintf("Product %d", i+1),
			Price:    json.RawMessage(fmt.Sprint(100 * (i + 1))),
			Stock:    5,
			Category: &models.Ref{ID: "c1", Name: "Phones"},
		}
	}
	return &models.ProductPage{Nodes: nodes, TotalCount: n}
}

func newTestRouter(listing, search sources.Source, deps RouterDeps) *gin.Engine {
	deps.Catalog = services.NewCatalogService(
		sources.Adapters{Listing: listing, Search: search},
		services.CatalogOptions{ListingWindow: 200, PerPage: 12},
		nil,
		zap.NewNop(),
	)
	deps.Logger = zap.NewNop()
	return NewRouter(deps)
}

func do(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestBrowse(t *testing.T) {
	var seen models.FetchRequest
	listing := sources.SourceFunc(func(_ context.Context, req models.FetchRequest) (*models.ProductPage, error) {
		seen = req
		return listingPage(12), nil
	})
	r := newTestRouter(listing, nil, RouterDeps{})

	rec := do(r, http.MethodGet, "/catalog?category=c1&page=2&limit=5&utm_source=mail", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var view models.CatalogView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "c1", seen.Condition.CategoryID)
	assert.Equal(t, 12, view.TotalFilteredCount)
	assert.Equal(t, 3, view.TotalPages)
	assert.Equal(t, 6, view.StartItem)
	assert.Equal(t, 10, view.EndItem)
	assert.Len(t, view.DisplayedProducts, 5)
	assert.Equal(t, "category=c1&limit=5&page=2&utm_source=mail", view.CanonicalQuery)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestBrowse_FetchErrorKeepsView(t *testing.T) {
	listing := sources.SourceFunc(func(context.Context, models.FetchRequest) (*models.ProductPage, error) {
		return nil, errors.New("upstream down")
	})
	r := newTestRouter(listing, nil, RouterDeps{})

	rec := do(r, http.MethodGet, "/catalog?stock=lowStock&utm_source=mail", "")

	require.Equal(t, http.StatusBadGateway, rec.Code)
	var view models.CatalogView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.NotNil(t, view.Error)
	assert.Equal(t, "/catalog?stock=lowStock&utm_source=mail", view.Error.Retry)
	assert.Equal(t, models.StockLow, view.Filters.Stock)
	assert.Empty(t, view.DisplayedProducts)
}

func TestNavigate(t *testing.T) {
	r := newTestRouter(nil, nil, RouterDeps{})

	rec := do(r, http.MethodPost, "/catalog/navigate",
		`{"query":"category=c1&page=3","action":"applySearchSubmit","search":" iphone "}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var change store.Change
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &change))
	assert.Equal(t, "category=c1&q=iphone", change.Query)
	assert.Equal(t, store.HistoryPush, change.History)
	assert.True(t, change.Changed)
	assert.True(t, change.ModeChanged)
}

func TestNavigate_FilterChange(t *testing.T) {
	r := newTestRouter(nil, nil, RouterDeps{})

	rec := do(r, http.MethodPost, "/catalog/navigate",
		`{"query":"page=2","action":"applyFilterChange","filters":{"priceMin":900,"priceMax":100,"featured":true}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var change store.Change
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &change))
	assert.Equal(t, "featured=true&priceMax=900&priceMin=100", change.Query)
	assert.Equal(t, store.HistoryReplace, change.History)
}

func TestNavigate_PageOutOfRangeIsNoop(t *testing.T) {
	r := newTestRouter(nil, nil, RouterDeps{})

	rec := do(r, http.MethodPost, "/catalog/navigate",
		`{"query":"q=tv","action":"goToPage","page":8,"totalPages":3}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var change store.Change
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &change))
	assert.False(t, change.Changed)
	assert.Equal(t, "q=tv", change.Query)
}

func TestNavigate_BadRequests(t *testing.T) {
	r := newTestRouter(nil, nil, RouterDeps{})

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/catalog/navigate", `{not json`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/catalog/navigate", `{"action":"reload"}`).Code)
}

func TestSystemEndpoints_WithoutCache(t *testing.T) {
	r := newTestRouter(nil, nil, RouterDeps{})

	rec := do(r, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "redis unavailable")

	assert.Equal(t, http.StatusServiceUnavailable, do(r, http.MethodGet, "/cache/stats", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(r, http.MethodDelete, "/cache/flush", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/rate-limit/status", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/info", "").Code)
}

func TestSystemEndpoints_WithCache(t *testing.T) {
	cache := &fakeCache{keys: []string{"listing:q=:first=200"}}
	r := newTestRouter(nil, nil, RouterDeps{Cache: cache})

	rec := do(r, http.MethodGet, "/cache/debug", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_keys":1`)

	rec = do(r, http.MethodDelete, "/cache/flush", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, cache.flushed)
}

func TestRateLimit(t *testing.T) {
	limiter := middleware.NewIPRateLimiter(0.001, 1)
	r := newTestRouter(nil, nil, RouterDeps{Limiter: limiter})

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/rate-limit/status", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodGet, "/rate-limit/status", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/health", "").Code)
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})
	r := newTestRouter(nil, nil, RouterDeps{Metrics: metrics})

	rec := do(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics", rec.Body.String())
}
