package sources

import (
	"context"
	"time"

	"go.uber.org/zap"

	"storefront-catalog-api/internal/models"
)

const productsDocument = `query Products($first: Int!, $offset: Int!, $orderBy: [ProductsOrderBy!], $condition: ProductCondition) {
  products(first: $first, offset: $offset, orderBy: $orderBy, condition: $condition) {
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

// ListingAdapter calls the products query.
type ListingAdapter struct {
	adapter
}

func NewListingAdapter(exec Executor, timeout time.Duration, logger *zap.Logger) *ListingAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &ListingAdapter{adapter{
		mode:     models.ModeListing,
		exec:     exec,
		timeout:  timeout,
		logger:   logger,
		document: productsDocument,
		field:    "products",
		vars:     listingVariables,
	}}
	l.self = l
	return l
}

func (l *ListingAdapter) Fetch(ctx context.Context, req models.FetchRequest) (*models.ProductPage, error) {
	return l.fetch(ctx, req)
}

func listingVariables(req models.FetchRequest) map[string]any {
	vars := map[string]any{
		"first":   req.First,
		"offset":  req.Offset,
		"orderBy": []string{string(req.OrderBy)},
	}
	if !req.Condition.IsZero() {
		vars["condition"] = req.Condition
	}
	return vars
}
