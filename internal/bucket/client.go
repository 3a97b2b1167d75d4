// Package bucket classifies scraped bonus products into shopping buckets,
// preferring an LLM and degrading to keyword rules.
package bucket

import (
	"context"
	"fmt"

	"bonuskar/internal/config"
)

// LLMClient is the completion surface the generator needs.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// NewClient builds the configured LLM client. Returns nil without error
// when no API key is configured; callers then use the keyword fallback.
func NewClient(cfg *config.Config) (LLMClient, error) {
	if cfg.LLM.APIKey == "" {
		return nil, nil
	}

	switch cfg.LLM.Provider {
	case "anthropic", "":
		return NewAnthropicClient(AnthropicConfig{
			APIKey:    cfg.LLM.APIKey,
			Model:     cfg.LLM.Model,
			MaxTokens: cfg.LLM.MaxTokens,
			Timeout:   cfg.GetLLMTimeout(),
		}), nil
	case "gemini":
		return NewGeminiClient(cfg.LLM.APIKey, cfg.LLM.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}
