package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/aria-assistant/aria/pkg/llm"
	"github.com/aria-assistant/aria/pkg/types"
)

// Provider returns scripted responses for tests: either plain content, a
// sequence of tool calls, or an error.
type Provider struct {
	ResponseContent string
	ToolCalls       []types.ToolCall
	Err             error

	// LastRequest records the most recent request for assertions.
	LastRequest *llm.ProviderRequest
}

func New(response string) *Provider {
	return &Provider{
		ResponseContent: response,
	}
}

func (p *Provider) ID() string {
	return "mock"
}

func (p *Provider) Call(ctx context.Context, req *llm.ProviderRequest) (*llm.ProviderResponse, error) {
	p.LastRequest = req
	if p.Err != nil {
		return nil, p.Err
	}

	content := p.ResponseContent
	if content == "" && len(p.ToolCalls) == 0 {
		lastMsg := req.Messages[len(req.Messages)-1]
		content = fmt.Sprintf("Mock response to: %s", lastMsg.Content)
	}

	return &llm.ProviderResponse{
		ID:        fmt.Sprintf("mock-%d", time.Now().UnixNano()),
		Model:     "mock-model",
		Content:   content,
		ToolCalls: p.ToolCalls,
	}, nil
}
