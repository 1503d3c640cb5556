package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aria-assistant/aria/pkg/llm"
	"github.com/aria-assistant/aria/pkg/types"
)

// ResolutionType discriminates the outcome of one resolver round trip.
type ResolutionType string

const (
	TypeToolCall       ResolutionType = "tool_call"
	TypeDirectResponse ResolutionType = "direct_response"
	TypeError          ResolutionType = "error"
)

// Resolution is the classified meaning of one user utterance: a named action
// with arguments, a direct answer, or a failed classification. It is created
// once per round trip and never mutated.
type Resolution struct {
	Type      ResolutionType
	Tool      string
	Arguments map[string]any
	Content   string
	Err       string
}

// Resolver sends user text to the LLM with the assistant tool schemas and
// parses the outcome. It holds no state between calls; conversation context
// is supplied by the caller.
type Resolver struct {
	gateway *llm.Gateway
	log     *slog.Logger
}

func NewResolver(gateway *llm.Gateway, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{gateway: gateway, log: log}
}

// Resolve classifies one user utterance. Model and transport failures are
// converted into an error Resolution, never returned as a Go error and never
// retried.
func (r *Resolver) Resolve(ctx context.Context, text string, history []types.Message) *Resolution {
	messages := make([]types.Message, 0, len(history)+2)
	messages = append(messages, types.Message{Role: "system", Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, types.Message{Role: "user", Content: text})

	resp, err := r.gateway.Chat(ctx, &llm.ChatRequest{
		Messages: messages,
		Tools:    assistantTools(),
	})
	if err != nil {
		r.log.Error("llm processing error", "error", err)
		return &Resolution{Type: TypeError, Err: err.Error()}
	}

	if len(resp.ToolCalls) > 0 {
		// Policy: only the first proposed action executes per request.
		call := resp.ToolCalls[0]

		var args map[string]any
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			r.log.Error("malformed tool arguments", "tool", call.Name, "error", err)
			return &Resolution{
				Type: TypeError,
				Err:  fmt.Sprintf("malformed tool arguments for %s: %v", call.Name, err),
			}
		}

		r.log.Info("tool called", "tool", call.Name, "arguments", call.Arguments)
		return &Resolution{
			Type:      TypeToolCall,
			Tool:      call.Name,
			Arguments: args,
		}
	}

	return &Resolution{
		Type:    TypeDirectResponse,
		Content: resp.Content,
	}
}
