// Package sources holds the two fetch adapters over the remote catalog API:
// the listing adapter for browsing and the search adapter for free-text
// queries. Both return a models.ProductPage or a *FetchError.
package sources

import (
	"context"
	"time"

	"go.uber.org/zap"

	"storefront-catalog-api/internal/models"
)

// Source fetches one page of raw products.
type Source interface {
	Fetch(ctx context.Context, req models.FetchRequest) (*models.ProductPage, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, req models.FetchRequest) (*models.ProductPage, error)

func (f SourceFunc) Fetch(ctx context.Context, req models.FetchRequest) (*models.ProductPage, error) {
	return f(ctx, req)
}

// Executor runs a GraphQL document. *Client implements it.
type Executor interface {
	Do(ctx context.Context, document string, variables map[string]any, out any) error
}

// Adapters pairs the listing and search adapters; Select picks by mode.
type Adapters struct {
	Listing Source
	Search  Source
}

// Select returns exactly one adapter for mode.
func (a Adapters) Select(mode models.Mode) Source {
	if mode == models.ModeSearch {
		return a.Search
	}
	return a.Listing
}

type productConnection struct {
	Nodes      []models.RawProduct `json:"nodes"`
	TotalCount int                 `json:"totalCount"`
	PageInfo   struct {
		HasNextPage     bool `json:"hasNextPage"`
		HasPreviousPage bool `json:"hasPreviousPage"`
	} `json:"pageInfo"`
}

func (c productConnection) page() *models.ProductPage {
	nodes := c.Nodes
	if nodes == nil {
		nodes = make([]models.RawProduct, 0)
	}
	return &models.ProductPage{
		Nodes:           nodes,
		TotalCount:      c.TotalCount,
		HasNextPage:     c.PageInfo.HasNextPage,
		HasPreviousPage: c.PageInfo.HasPreviousPage,
	}
}

// adapter is the shared body of the listing and search adapters.
type adapter struct {
	mode     models.Mode
	exec     Executor
	timeout  time.Duration
	logger   *zap.Logger
	document string
	field    string
	vars     func(req models.FetchRequest) map[string]any
	self     Source
}

func (a *adapter) fetch(ctx context.Context, req models.FetchRequest) (*models.ProductPage, error) {
	req.Mode = a.mode
	req.OrderBy = req.OrderBy.OrDefault()

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	var data map[string]productConnection
	if err := a.exec.Do(ctx, a.document, a.vars(req), &data); err != nil {
		fe := newFetchError(a.self, req, err)
		a.logger.Warn("product fetch failed",
			zap.String("mode", string(a.mode)),
			zap.String("key", req.Key()),
			zap.String("kind", string(fe.Kind)),
			zap.Error(err),
		)
		return nil, fe
	}

	conn, ok := data[a.field]
	if !ok {
		return nil, &FetchError{
			Kind:    KindDecode,
			Message: messages[KindDecode],
			Request: req,
			Err:     errMissingField(a.field),
			source:  a.self,
		}
	}
	page := conn.page()
	a.logger.Debug("product fetch completed",
		zap.String("mode", string(a.mode)),
		zap.String("key", req.Key()),
		zap.Int("nodes", len(page.Nodes)),
		zap.Int("total", page.TotalCount),
		zap.Duration("took", time.Since(start)),
	)
	return page, nil
}

type errMissingField string

func (e errMissingField) Error() string {
	return "response is missing field " + string(e)
}
