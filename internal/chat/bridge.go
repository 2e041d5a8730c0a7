package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/smartstore/backend/internal/apperr"
	"github.com/smartstore/backend/internal/llm"
	"github.com/smartstore/backend/internal/logging"
	"github.com/smartstore/backend/internal/tools"
)

// Completer is the outbound model dependency; satisfied by *llm.Client and by
// test fakes.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message, tools []llm.Tool) (*llm.Completion, error)
}

// Action records one executed tool invocation for the API response.
type Action struct {
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments"`
}

// Result is the outcome of one turn.
type Result struct {
	Reply   string   `json:"reply"`
	Actions []Action `json:"actions"`
}

// Bridge drives one user message through the two-step tool-calling exchange:
// first completion with tool schemas, at most one tool execution, second
// completion for the final reply.
type Bridge struct {
	Model    Completer
	Registry *tools.Registry
}

func NewBridge(model Completer, registry *tools.Registry) *Bridge {
	return &Bridge{Model: model, Registry: registry}
}

func (b *Bridge) definitions() []llm.Tool {
	defs := b.Registry.Definitions()
	out := make([]llm.Tool, len(defs))
	for i, d := range defs {
		out[i] = llm.Tool{
			Type: "function",
			Function: llm.Function{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.Parameters,
			},
		}
	}
	return out
}

// Turn runs one exchange. history is the in-memory message list reused across
// turns within a connection; the returned slice is the updated history.
// callerToken is the end user's own bearer token, threaded into admin-gated
// tool calls regardless of anything the model produced.
func (b *Bridge) Turn(ctx context.Context, history []llm.Message, text, callerToken string) (*Result, []llm.Message, error) {
	messages := append(history, llm.Message{Role: "user", Content: text})

	first, err := b.Model.Complete(ctx, messages, b.definitions())
	if err != nil {
		return nil, history, err
	}

	if len(first.ToolCalls) == 0 {
		messages = append(messages, llm.Message{Role: "assistant", Content: first.Content})
		return &Result{Reply: first.Content, Actions: []Action{}}, messages, nil
	}

	// Only the first nominated tool call is serviced; the single-call limit
	// is deliberate, extra calls in the same response are dropped.
	call := first.ToolCalls[0]
	args := json.RawMessage(call.Function.Arguments)
	if len(args) > 0 && !json.Valid(args) {
		return nil, history, apperr.Newf(apperr.KindValidation,
			"malformed tool call: arguments for %s are not valid JSON", call.Function.Name)
	}

	result, execErr := b.Registry.Execute(ctx, call.Function.Name, args, callerToken)
	if execErr != nil {
		// Tool failures feed back into the conversation as a structured
		// error value so the model can phrase the explanation; they never
		// abort the turn.
		logging.FromContext(ctx).Warn("tool execution failed",
			"tool", call.Function.Name, "error", execErr)
		result = map[string]string{"error": apperr.PublicMessage(execErr)}
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, history, fmt.Errorf("marshal tool result: %w", err)
	}

	messages = append(messages,
		llm.Message{Role: "assistant", Content: first.Content, ToolCalls: []llm.ToolCall{call}},
		llm.Message{
			Role:       "tool",
			ToolCallID: call.ID,
			Name:       call.Function.Name,
			Content:    string(payload),
		},
	)

	second, err := b.Model.Complete(ctx, messages, nil)
	if err != nil {
		return nil, history, err
	}
	messages = append(messages, llm.Message{Role: "assistant", Content: second.Content})

	return &Result{
		Reply: second.Content,
		Actions: []Action{{
			Tool:      call.Function.Name,
			Arguments: args,
		}},
	}, messages, nil
}
