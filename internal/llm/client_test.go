package llm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/smartstore/backend/internal/apperr"
)

func TestCompleteToolCallRoundTrip(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		resp := map[string]any{
			"choices": []map[string]any{{
				"finish_reason": "tool_calls",
				"message": map[string]any{
					"role": "assistant",
					"tool_calls": []map[string]any{{
						"id":   "call_1",
						"type": "function",
						"function": map[string]any{
							"name":      "search_products",
							"arguments": `{"q":"lamp"}`,
						},
					}},
				},
			}},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL+"/v1/", "gpt-4o-mini", time.Second)

	out, err := client.Complete(t.Context(),
		[]Message{{Role: "user", Content: "find me a lamp"}},
		[]Tool{{Type: "function", Function: Function{Name: "search_products"}}},
	)
	require.NoError(t, err)
	require.Equal(t, FinishToolCalls, out.FinishReason)
	require.Len(t, out.ToolCalls, 1)
	require.Equal(t, "search_products", out.ToolCalls[0].Function.Name)
	require.JSONEq(t, `{"q":"lamp"}`, out.ToolCalls[0].Function.Arguments)

	require.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 1)
	require.Len(t, got.Tools, 1)
}

func TestCompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "model overloaded", "type": "server_error"},
		})
	}))
	defer srv.Close()

	client := NewClient("", srv.URL, "gpt-4o-mini", time.Second)
	_, err := client.Complete(t.Context(), []Message{{Role: "user", Content: "hi"}}, nil)
	require.True(t, apperr.Is(err, apperr.KindInternal))
}

func TestCompleteHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient("", srv.URL, "gpt-4o-mini", time.Second)
	_, err := client.Complete(t.Context(), []Message{{Role: "user", Content: "hi"}}, nil)
	require.True(t, apperr.Is(err, apperr.KindInternal))
}

func TestCompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client := NewClient("", srv.URL, "gpt-4o-mini", time.Second)
	_, err := client.Complete(t.Context(), []Message{{Role: "user", Content: "hi"}}, nil)
	require.True(t, apperr.Is(err, apperr.KindInternal))
}

func TestCompleteTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient("", srv.URL, "gpt-4o-mini", 20*time.Millisecond)
	_, err := client.Complete(t.Context(), []Message{{Role: "user", Content: "hi"}}, nil)
	require.Error(t, err)
	require.True(t, apperr.Is(err, apperr.KindInternal))
}
