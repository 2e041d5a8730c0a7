package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smartstore/backend/internal/events"
	"github.com/smartstore/backend/internal/logging"
	mwauth "github.com/smartstore/backend/internal/middleware/auth"
	"github.com/smartstore/backend/internal/store"
)

type OrderHandler struct {
	Store    *store.Store
	Producer *events.Producer
}

// PlaceOrder converts the caller's cart into an order. The cart is cleared
// after the order transaction commits; a clear failure leaves the order in
// place and is only logged.
func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	user := mwauth.CurrentUser(c)
	ctx := c.Request().Context()

	order, err := h.Store.PlaceOrder(ctx, user.ID)
	if err != nil {
		return httpError(err)
	}

	if err := h.Store.ClearCart(ctx, user.ID); err != nil {
		logging.FromContext(ctx).Error("cart clear after order failed",
			"user_id", user.ID, "order_id", order.ID, "error", err)
	}

	h.Producer.Publish(ctx, events.TopicOrderEvents, user.Username, map[string]any{
		"type":        "order_placed",
		"user_id":     user.ID,
		"order_id":    order.ID,
		"total_cents": order.TotalCents,
	})

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ListMyOrders(c echo.Context) error {
	user := mwauth.CurrentUser(c)

	orders, err := h.Store.GetOrdersByUser(c.Request().Context(), user.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) ListAllOrders(c echo.Context) error {
	orders, err := h.Store.ListAllOrders(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, orders)
}
