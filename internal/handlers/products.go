package handlers

import (
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/smartstore/backend/internal/events"
	"github.com/smartstore/backend/internal/logging"
	"github.com/smartstore/backend/internal/models"
	"github.com/smartstore/backend/internal/search"
	"github.com/smartstore/backend/internal/store"
)

type ProductHandler struct {
	Store    *store.Store
	Producer *events.Producer

	// ES is optional; when configured, catalog mutations are mirrored into
	// the search index, best-effort.
	ES      *elasticsearch.Client
	ESIndex string
}

func (h *ProductHandler) indexProduct(c echo.Context, prod *models.Product) {
	if h.ES == nil {
		return
	}
	ctx := c.Request().Context()
	if err := search.IndexProduct(ctx, h.ES, h.ESIndex, prod); err != nil {
		logging.FromContext(ctx).Error("product indexing failed", "sku", prod.SKU, "error", err)
	}
}

// ListProducts is the public catalog search: case-insensitive substring match
// over name and description, bounded result count.
func (h *ProductHandler) ListProducts(c echo.Context) error {
	q := c.QueryParam("q")

	lim := 20
	if v := c.QueryParam("limit"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			lim = n
		}
	}

	items, err := h.Store.SearchProducts(c.Request().Context(), q, lim)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	prod, err := h.Store.GetProductBySKU(c.Request().Context(), c.Param("sku"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, prod)
}

type createProductRequest struct {
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	PriceCents  int64  `json:"price_cents"`
	Stock       int    `json:"stock"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	CategoryID  *uint  `json:"category_id"`
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.SKU == "" || req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "sku and name are required")
	}
	if req.PriceCents < 0 || req.Stock < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "price_cents and stock must be non-negative")
	}

	prod := models.Product{
		SKU:         req.SKU,
		Name:        req.Name,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
	}
	if err := h.Store.CreateProduct(c.Request().Context(), &prod); err != nil {
		return httpError(err)
	}

	h.indexProduct(c, &prod)
	h.Producer.Publish(c.Request().Context(), events.TopicProductEvents, prod.SKU, map[string]any{
		"type": "product_created",
		"sku":  prod.SKU,
		"name": prod.Name,
	})

	return c.JSON(http.StatusCreated, prod)
}

func (h *ProductHandler) PatchProduct(c echo.Context) error {
	var patch store.ProductPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	prod, err := h.Store.PatchProduct(c.Request().Context(), c.Param("sku"), patch)
	if err != nil {
		return httpError(err)
	}

	h.indexProduct(c, prod)
	h.Producer.Publish(c.Request().Context(), events.TopicProductEvents, prod.SKU, map[string]any{
		"type": "product_updated",
		"sku":  prod.SKU,
	})

	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	sku := c.Param("sku")
	if err := h.Store.DeleteProduct(c.Request().Context(), sku); err != nil {
		return httpError(err)
	}

	if h.ES != nil {
		ctx := c.Request().Context()
		if err := search.DeleteProduct(ctx, h.ES, h.ESIndex, sku); err != nil {
			logging.FromContext(ctx).Error("product unindexing failed", "sku", sku, "error", err)
		}
	}
	h.Producer.Publish(c.Request().Context(), events.TopicProductEvents, sku, map[string]any{
		"type": "product_deleted",
		"sku":  sku,
	})

	return c.NoContent(http.StatusNoContent)
}
