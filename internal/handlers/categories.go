package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smartstore/backend/internal/store"
)

type CategoryHandler struct {
	Store *store.Store
}

func (h *CategoryHandler) ListCategories(c echo.Context) error {
	cats, err := h.Store.ListCategories(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, cats)
}

type createCategoryRequest struct {
	Name string `json:"name"`
}

func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req createCategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	cat, err := h.Store.CreateCategory(c.Request().Context(), req.Name)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, cat)
}
