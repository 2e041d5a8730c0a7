package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/smartstore/backend/internal/chat"
	"github.com/smartstore/backend/internal/llm"
	"github.com/smartstore/backend/internal/logging"
	mwauth "github.com/smartstore/backend/internal/middleware/auth"
	"github.com/smartstore/backend/internal/models"
	"github.com/smartstore/backend/internal/store"
)

type ChatHandler struct {
	Bridge *chat.Bridge
	Store  *store.Store
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type chatRequest struct {
	Text string `json:"text"`
}

// Chat is the single-turn REST endpoint; history lives only for this request.
func (h *ChatHandler) Chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text is required")
	}

	result, _, err := h.Bridge.Turn(c.Request().Context(), nil, req.Text, mwauth.CurrentToken(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

type wsReply struct {
	Reply   string            `json:"reply"`
	Actions []chat.Action     `json:"actions"`
	Cart    []models.CartItem `json:"cart"`
}

// ChatWS runs the multi-turn WebSocket loop. The message list is reused for
// the lifetime of the connection and each turn is additionally persisted to
// the user's conversation record. A client disconnect during the receive
// wait ends the loop cleanly; any other failure produces one error frame
// before the connection closes.
func (h *ChatHandler) ChatWS(c echo.Context) error {
	user := mwauth.CurrentUser(c)
	callerToken := mwauth.CurrentToken(c)

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx := c.Request().Context()
	log := logging.FromContext(ctx)

	conv, err := h.Store.CreateConversation(ctx, user.ID, uuid.NewString())
	if err != nil {
		log.Error("conversation create failed", "error", err)
		_ = conn.WriteJSON(echo.Map{"error": "internal server error"})
		return nil
	}

	var history []llm.Message
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			// Normal client disconnect; nothing in flight to abort because
			// the read wait is the only suspension point between turns.
			return nil
		}
		text := string(data)
		if text == "" {
			continue
		}

		result, updated, err := h.Bridge.Turn(ctx, history, text, callerToken)
		if err != nil {
			log.Error("chat turn failed", "error", err)
			_ = conn.WriteJSON(echo.Map{"error": "chat turn failed"})
			return nil
		}
		history = updated

		h.persistTurn(ctx, conv.ID, text, result.Reply)

		cart, err := h.Store.GetCartItems(ctx, user.ID)
		if err != nil {
			log.Error("cart read failed", "error", err)
			cart = nil
		}

		if err := conn.WriteJSON(wsReply{Reply: result.Reply, Actions: result.Actions, Cart: cart}); err != nil {
			return nil
		}
	}
}

func (h *ChatHandler) persistTurn(ctx context.Context, convID uint, userText, botReply string) {
	log := logging.FromContext(ctx)
	if _, err := h.Store.AddMessage(ctx, convID, models.SenderUser, userText); err != nil {
		log.Error("message persist failed", "sender", models.SenderUser, "error", err)
	}
	if _, err := h.Store.AddMessage(ctx, convID, models.SenderBot, botReply); err != nil {
		log.Error("message persist failed", "sender", models.SenderBot, "error", err)
	}
}
