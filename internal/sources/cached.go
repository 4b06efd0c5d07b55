package sources

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"storefront-catalog-api/internal/models"
)

// PageCache stores remote pages by request key. A miss returns (nil, nil).
type PageCache interface {
	GetPage(ctx context.Context, key string) (*models.ProductPage, error)
	SetPage(ctx context.Context, key string, page *models.ProductPage) error
}

// Recorder receives cache and fetch outcomes. pkg/metrics implements it.
type Recorder interface {
	CacheHit(mode models.Mode)
	CacheMiss(mode models.Mode)
	FetchFailed(mode models.Mode, kind string)
}

// CachedSource serves pages from a PageCache and collapses concurrent
// identical fetches into one call to the wrapped source.
type CachedSource struct {
	next     Source
	cache    PageCache
	recorder Recorder
	logger   *zap.Logger
	group    singleflight.Group
}

// NewCachedSource wraps next. cache and recorder may be nil.
func NewCachedSource(next Source, cache PageCache, recorder Recorder, logger *zap.Logger) *CachedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{next: next, cache: cache, recorder: recorder, logger: logger}
}

func (c *CachedSource) Fetch(ctx context.Context, req models.FetchRequest) (*models.ProductPage, error) {
	key := req.Key()

	if c.cache != nil {
		page, err := c.cache.GetPage(ctx, key)
		if err != nil {
			c.logger.Debug("page cache read failed", zap.String("key", key), zap.Error(err))
		}
		if page != nil {
			c.logger.Debug("page cache hit", zap.String("key", key))
			if c.recorder != nil {
				c.recorder.CacheHit(req.Mode)
			}
			return page, nil
		}
		if c.recorder != nil {
			c.recorder.CacheMiss(req.Mode)
		}
	}

	// The shared call must not die with whichever caller started it.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		page, err := c.next.Fetch(shared, req)
		if err != nil {
			return nil, err
		}
		if page == nil {
			page = &models.ProductPage{Nodes: []models.RawProduct{}}
		}
		if c.cache != nil {
			if err := c.cache.SetPage(shared, key, page); err != nil {
				c.logger.Debug("page cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
		return page, nil
	})

	select {
	case <-ctx.Done():
		return nil, newFetchError(c, req, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			if fe, ok := AsFetchError(res.Err); ok && c.recorder != nil {
				c.recorder.FetchFailed(req.Mode, string(fe.Kind))
			}
			return nil, c.rebind(req, res.Err)
		}
		return res.Val.(*models.ProductPage), nil
	}
}

// rebind points the error's retry at the cached source so retries share
// de-duplication. Shared errors are copied, never mutated.
func (c *CachedSource) rebind(req models.FetchRequest, err error) error {
	fe, ok := AsFetchError(err)
	if !ok {
		return newFetchError(c, req, err)
	}
	cp := *fe
	cp.source = c
	cp.Request = req
	return &cp
}
