package sources

import (
	"context"
	"time"

	"go.uber.org/zap"

	"storefront-catalog-api/internal/models"
)

const searchDocument = `query SearchProducts($query: String!, $first: Int!, $offset: Int!, $orderBy: [ProductsOrderBy!]) {
  searchProducts(query: $query, first: $first, offset: $offset, orderBy: $orderBy) {
    nodes {
      id
      name
      price
      originalPrice
      stock
      isFeatured
      image
      createdAt
      category { id name }
      brand { id name }
    }
    totalCount
    pageInfo { hasNextPage hasPreviousPage }
  }
}`

// SearchAdapter calls the searchProducts query.
type SearchAdapter struct {
	adapter
}

func NewSearchAdapter(exec Executor, timeout time.Duration, logger *zap.Logger) *SearchAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SearchAdapter{adapter{
		mode:     models.ModeSearch,
		exec:     exec,
		timeout:  timeout,
		logger:   logger,
		document: searchDocument,
		field:    "searchProducts",
		vars:     searchVariables,
	}}
	s.self = s
	return s
}

func (s *SearchAdapter) Fetch(ctx context.Context, req models.FetchRequest) (*models.ProductPage, error) {
	return s.fetch(ctx, req)
}

func searchVariables(req models.FetchRequest) map[string]any {
	return map[string]any{
		"query":   req.Query,
		"first":   req.First,
		"offset":  req.Offset,
		"orderBy": []string{string(req.OrderBy)},
	}
}
