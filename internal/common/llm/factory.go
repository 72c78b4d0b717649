package llm

import (
	"context"
	"fmt"
	"time"

	"review-responder/internal/common/logger"
)

// Config selects the provider and model tier.
type Config struct {
	Provider       string
	Model          string
	APIKey         string
	BaseURL        string
	Timeout        time.Duration
	MaxTokens      int
	MaxRetries     int
	RetryBaseDelay time.Duration
}

// NewCompleter builds the configured provider behind a Client and, when
// MaxRetries is positive, a retry decorator.
func NewCompleter(ctx context.Context, cfg Config, log logger.Logger) (Completer, error) {
	var provider Provider
	switch cfg.Provider {
	case "", "openai":
		provider = NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Timeout)
	case "gemini":
		p, err := NewGeminiProvider(ctx, cfg.APIKey)
		if err != nil {
			return nil, err
		}
		provider = p
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}

	log.Info("Completion client configured", map[string]interface{}{
		"provider":   provider.Name(),
		"model":      cfg.Model,
		"timeout":    cfg.Timeout.String(),
		"maxRetries": cfg.MaxRetries,
	})

	client := NewClient(provider, cfg.Model, cfg.MaxTokens, cfg.Timeout, log)
	return WithRetry(client, provider.Name(), cfg.MaxRetries, cfg.RetryBaseDelay, log), nil
}
