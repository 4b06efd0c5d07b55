package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-catalog-api/internal/middleware"
	"storefront-catalog-api/internal/models"
	"storefront-catalog-api/internal/services"
	"storefront-catalog-api/internal/store"
	"storefront-catalog-api/internal/urlstate"
)

type CatalogHandler struct {
	catalog *services.CatalogService
	logger  *zap.Logger
}

func NewCatalogHandler(catalog *services.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// Browse serves GET /catalog. A failed fetch still returns the view, with
// its error, under a 502 or 504.
func (h *CatalogHandler) Browse(c *gin.Context) {
	state := urlstate.Parse(c.Request.URL.Query())

	limit := 0
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil {
			limit = n
		}
	}

	view, err := h.catalog.Browse(c.Request.Context(), state, limit)
	keepForeignParams(view, c.Request.URL.Query())
	if err != nil {
		h.logger.Warn("catalog browse failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("query", state.Encode()),
			zap.Error(err),
		)
		_ = c.Error(err)
		c.JSON(view.Error.Code, view)
		return
	}
	c.JSON(http.StatusOK, view)
}

// keepForeignParams carries query parameters the catalog does not own (limit,
// tracking tags) into the canonical and retry URLs.
func keepForeignParams(view *models.CatalogView, query url.Values) {
	if view == nil {
		return
	}
	view.CanonicalQuery = urlstate.ParseQuery(view.CanonicalQuery).Merge(query).Encode()
	if view.Error != nil && view.Error.Retry != "" {
		view.Error.Retry = "/catalog"
		if view.CanonicalQuery != "" {
			view.Error.Retry += "?" + view.CanonicalQuery
		}
	}
}

type navigateRequest struct {
	Query string `json:"query"`
	store.Action
}

// Navigate serves POST /catalog/navigate: it applies one action to the
// given query string and returns the next one with its history mode.
func (h *CatalogHandler) Navigate(c *gin.Context) {
	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Code:    http.StatusBadRequest,
			Message: "Request body must be a catalog action",
			Details: err.Error(),
		})
		return
	}

	change, err := h.catalog.Navigate(urlstate.ParseQuery(req.Query), req.Action)
	switch {
	case errors.Is(err, models.ErrPageOutOfRange):
		// Out-of-range pages are a no-op, not a failure.
		c.JSON(http.StatusOK, change)
	case err != nil:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_action",
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	default:
		c.JSON(http.StatusOK, change)
	}
}
