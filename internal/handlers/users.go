package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smartstore/backend/internal/store"
)

type UserHandler struct {
	Store *store.Store
}

func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.Store.ListUsers(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	if err := h.Store.DeleteUser(c.Request().Context(), c.Param("username")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
