package llm

import (
	"context"

	"github.com/aria-assistant/aria/pkg/config"
	"github.com/aria-assistant/aria/pkg/types"
)

// ChatRequest is the gateway-level request; model and sampling options come
// from configuration.
type ChatRequest struct {
	Messages []types.Message
	Tools    []types.Tool
}

type ChatResponse struct {
	Model     string
	Content   string
	ToolCalls []types.ToolCall
	Usage     types.Usage
}

// Gateway wraps a Provider with the configured model, temperature and token
// budget so callers only supply messages and tools.
type Gateway struct {
	provider Provider
	options  config.ProviderOptions
}

func NewGateway(provider Provider, opts config.ProviderOptions) *Gateway {
	if opts.Temperature == 0 {
		opts.Temperature = 0.7 // Default if not set
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 500
	}
	return &Gateway{
		provider: provider,
		options:  opts,
	}
}

func (g *Gateway) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	provReq := &ProviderRequest{
		Model:       g.options.Model,
		Messages:    req.Messages,
		Tools:       req.Tools,
		MaxTokens:   g.options.MaxTokens,
		Temperature: g.options.Temperature,
	}

	resp, err := g.provider.Call(ctx, provReq)
	if err != nil {
		return nil, err
	}

	return &ChatResponse{
		Model:     resp.Model,
		Content:   resp.Content,
		ToolCalls: resp.ToolCalls,
		Usage:     resp.Usage,
	}, nil
}
