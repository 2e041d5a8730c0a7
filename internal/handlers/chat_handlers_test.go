package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/smartstore/backend/internal/chat"
	"github.com/smartstore/backend/internal/llm"
	mwauth "github.com/smartstore/backend/internal/middleware/auth"
	"github.com/smartstore/backend/internal/models"
	"github.com/smartstore/backend/internal/tools"
)

type modelStep struct {
	completion *llm.Completion
	err        error
}

// scriptedModel replays canned completions in order.
type scriptedModel struct {
	steps []modelStep
	calls int
}

func (m *scriptedModel) Complete(_ context.Context, _ []llm.Message, _ []llm.Tool) (*llm.Completion, error) {
	step := m.steps[m.calls]
	m.calls++
	return step.completion, step.err
}

func mountChat(env *testEnv, model chat.Completer) *httptest.Server {
	registry := tools.NewRegistry(env.Store, env.Tokens)
	h := &ChatHandler{Bridge: chat.NewBridge(model, registry), Store: env.Store}
	login := mwauth.RequireLogin(env.Tokens, env.Store)
	env.E.POST("/api/chat", h.Chat, login)
	env.E.GET("/api/chat", h.ChatWS, login)
	return httptest.NewServer(env.E)
}

func bearer(t *testing.T, env *testEnv, username string) string {
	t.Helper()
	tok, err := env.Tokens.Issue(username)
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestChatRESTReply(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("alice", false)
	srv := mountChat(env, &scriptedModel{steps: []modelStep{
		{completion: &llm.Completion{Content: "hello there"}},
	}})
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/chat", strings.NewReader(`{"text":"hi"}`))
	require.NoError(t, err)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Authorization", bearer(t, env, "alice"))

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result chat.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.Equal(t, "hello there", result.Reply)
	require.Empty(t, result.Actions)

	// single-turn REST path leaves no conversation behind
	var convCount int64
	env.DB.Model(&models.Conversation{}).Count(&convCount)
	require.Zero(t, convCount)
}

func TestChatRESTEmptyText(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("alice", false)
	srv := mountChat(env, &scriptedModel{})
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/chat", strings.NewReader(`{"text":""}`))
	require.NoError(t, err)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Authorization", bearer(t, env, "alice"))

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatRESTRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	srv := mountChat(env, &scriptedModel{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/chat", "application/json", strings.NewReader(`{"text":"hi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func dialChat(t *testing.T, srv *httptest.Server, authHeader string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/chat"
	conn, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Authorization": {authHeader}})
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	return conn
}

func TestChatWSToolTurn(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("alice", false)
	env.createProduct("LAMP-1", "Desk Lamp", 2500, 5)

	args := fmt.Sprintf(`{"user_id":%d,"sku":"LAMP-1","qty":1}`, user.ID)
	srv := mountChat(env, &scriptedModel{steps: []modelStep{
		{completion: &llm.Completion{
			FinishReason: llm.FinishToolCalls,
			ToolCalls: []llm.ToolCall{{
				ID:       "call_1",
				Type:     "function",
				Function: llm.FunctionCall{Name: "add_to_cart", Arguments: args},
			}},
		}},
		{completion: &llm.Completion{Content: "Added the lamp to your cart."}},
		{completion: &llm.Completion{Content: "Anything else?"}},
	}})
	defer srv.Close()

	conn := dialChat(t, srv, bearer(t, env, "alice"))
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("add a desk lamp to my cart")))

	var frame wsReply
	require.NoError(t, conn.ReadJSON(&frame))
	require.Equal(t, "Added the lamp to your cart.", frame.Reply)
	require.Len(t, frame.Actions, 1)
	require.Equal(t, "add_to_cart", frame.Actions[0].Tool)
	require.Len(t, frame.Cart, 1)
	require.Equal(t, "LAMP-1", frame.Cart[0].SKU)

	// turn persisted: one conversation, user message then bot reply
	var conv models.Conversation
	require.NoError(t, env.DB.Where("user_id = ?", user.ID).First(&conv).Error)
	require.NotEmpty(t, conv.SessionID)

	msgs, err := env.Store.GetMessages(t.Context(), conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, models.SenderUser, msgs[0].Sender)
	require.Equal(t, "add a desk lamp to my cart", msgs[0].Content)
	require.Equal(t, models.SenderBot, msgs[1].Sender)
	require.Equal(t, "Added the lamp to your cart.", msgs[1].Content)

	// same connection keeps going: second turn appends to the same conversation
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("thanks")))
	require.NoError(t, conn.ReadJSON(&frame))
	require.Equal(t, "Anything else?", frame.Reply)

	msgs, err = env.Store.GetMessages(t.Context(), conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 4)

	var convCount int64
	env.DB.Model(&models.Conversation{}).Count(&convCount)
	require.EqualValues(t, 1, convCount)
}

func TestChatWSErrorFrameThenClose(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("alice", false)
	srv := mountChat(env, &scriptedModel{steps: []modelStep{
		{err: fmt.Errorf("model unreachable")},
	}})
	defer srv.Close()

	conn := dialChat(t, srv, bearer(t, env, "alice"))
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("hi")))

	var frame map[string]string
	require.NoError(t, conn.ReadJSON(&frame))
	require.Equal(t, "chat turn failed", frame["error"])

	// one error frame is all the client gets; the connection is closed
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
}

func TestChatWSRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	srv := mountChat(env, &scriptedModel{})
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/chat"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
