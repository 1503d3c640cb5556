package factory

import (
	"context"
	"fmt"

	"github.com/aria-assistant/aria/pkg/config"
	"github.com/aria-assistant/aria/pkg/llm"
	"github.com/aria-assistant/aria/pkg/llm/gemini"
	"github.com/aria-assistant/aria/pkg/llm/openai"
)

// NewProvider creates an LLM provider based on configuration.
// It returns the provider together with the resolved provider id.
func NewProvider(ctx context.Context, cfg *config.Config) (llm.Provider, string, error) {
	providerID, opts, err := cfg.GetActiveProvider()
	if err != nil {
		return nil, "", err
	}

	switch providerID {
	case "gemini":
		p, err := gemini.New(ctx, gemini.Config{
			APIKey:    opts.APIKey,
			ProjectID: opts.ProjectID,
			Location:  opts.Location,
		})
		if err != nil {
			return nil, "", err
		}
		return p, providerID, nil
	case "openai", "groq":
		return openai.New(openai.Config{
			ID:      providerID,
			APIKey:  opts.APIKey,
			BaseURL: opts.BaseURL,
		}), providerID, nil
	default:
		return nil, "", fmt.Errorf("unknown provider: %s", providerID)
	}
}
