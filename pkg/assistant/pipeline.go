package assistant

import (
	"context"
	"log/slog"

	"github.com/aria-assistant/aria/pkg/intent"
	"github.com/aria-assistant/aria/pkg/types"
)

// CommandResponse is the sole externally observable output of one command:
// the resolver's discriminant merged with the dispatched action's result.
// ExecutionResult is present if and only if Type is "tool_call" and a tool
// was named.
type CommandResponse struct {
	Type            string              `json:"type"`
	Tool            string              `json:"tool,omitempty"`
	Arguments       map[string]any      `json:"arguments,omitempty"`
	Content         string              `json:"content,omitempty"`
	Error           string              `json:"error,omitempty"`
	ExecutionResult *types.ActionResult `json:"execution_result,omitempty"`
}

// Pipeline runs the full command path: resolve the intent, execute it if it
// names a tool, and merge both outcomes. Both transports (single-shot HTTP
// and the WebSocket channel) share one Pipeline.
type Pipeline struct {
	resolver   *intent.Resolver
	dispatcher *Dispatcher
	log        *slog.Logger
}

func NewPipeline(resolver *intent.Resolver, dispatcher *Dispatcher, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{resolver: resolver, dispatcher: dispatcher, log: log}
}

// Process handles one user command. Every failure is folded into the
// response; Process itself never fails.
func (p *Pipeline) Process(ctx context.Context, text string, history []types.Message) *CommandResponse {
	res := p.resolver.Resolve(ctx, text, history)

	switch res.Type {
	case intent.TypeToolCall:
		resp := &CommandResponse{
			Type:      string(res.Type),
			Tool:      res.Tool,
			Arguments: res.Arguments,
		}
		if res.Tool != "" {
			result := p.dispatcher.Dispatch(ctx, res.Tool, res.Arguments)
			resp.ExecutionResult = &result
		}
		return resp

	case intent.TypeDirectResponse:
		return &CommandResponse{
			Type:    string(res.Type),
			Content: res.Content,
		}

	default:
		return &CommandResponse{
			Type:  string(intent.TypeError),
			Error: res.Err,
		}
	}
}
