package llm

import (
	"context"

	"github.com/aria-assistant/aria/pkg/types"
)

// Provider defines the interface for an LLM provider (e.g., Groq, OpenAI, Gemini)
type Provider interface {
	// ID returns the unique identifier of the provider
	ID() string

	// Call executes a synchronous chat request
	Call(ctx context.Context, req *ProviderRequest) (*ProviderResponse, error)
}

type ProviderRequest struct {
	Model       string
	Messages    []types.Message
	Tools       []types.Tool
	MaxTokens   int
	Temperature float64
}

type ProviderResponse struct {
	ID        string
	Model     string
	Content   string
	ToolCalls []types.ToolCall
	Usage     types.Usage
}
