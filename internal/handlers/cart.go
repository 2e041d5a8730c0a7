package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/smartstore/backend/internal/events"
	mwauth "github.com/smartstore/backend/internal/middleware/auth"
	"github.com/smartstore/backend/internal/store"
)

type CartHandler struct {
	Store    *store.Store
	Producer *events.Producer
}

func (h *CartHandler) GetCart(c echo.Context) error {
	user := mwauth.CurrentUser(c)

	items, err := h.Store.GetCartItems(c.Request().Context(), user.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

type addCartRequest struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	user := mwauth.CurrentUser(c)

	var req addCartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	item, err := h.Store.AddToCart(c.Request().Context(), user.ID, req.SKU, req.Quantity)
	if err != nil {
		return httpError(err)
	}

	h.Producer.Publish(c.Request().Context(), events.TopicCartEvents, user.Username, map[string]any{
		"type":     "cart_item_added",
		"user_id":  user.ID,
		"sku":      item.SKU,
		"quantity": item.Quantity,
	})

	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	user := mwauth.CurrentUser(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid cart item id")
	}

	if err := h.Store.RemoveCartItem(c.Request().Context(), user.ID, uint(id)); err != nil {
		return httpError(err)
	}

	h.Producer.Publish(c.Request().Context(), events.TopicCartEvents, user.Username, map[string]any{
		"type":    "cart_item_removed",
		"user_id": user.ID,
		"item_id": id,
	})

	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	user := mwauth.CurrentUser(c)

	if err := h.Store.ClearCart(c.Request().Context(), user.ID); err != nil {
		return httpError(err)
	}

	h.Producer.Publish(c.Request().Context(), events.TopicCartEvents, user.Username, map[string]any{
		"type":    "cart_cleared",
		"user_id": user.ID,
	})

	return c.NoContent(http.StatusNoContent)
}
