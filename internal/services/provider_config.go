package services

import (
	"context"
	"log"

	"github.com/foxxcyber/nutri-scan/internal/config"
)

// NewCompleterFromConfig builds the configured provider wrapped in the
// timeout, retry and rate limit policy
func NewCompleterFromConfig(ctx context.Context, cfg *config.Config) (*PolicyCompleter, error) {
	var provider Completer
	switch cfg.LLMProvider {
	case "gemini":
		gemini, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		provider = gemini
	default:
		if cfg.OpenRouterAPIKey == "" {
			log.Println("Warning: OPENROUTER_API_KEY not set, provider calls will fail")
		}
		provider = NewOpenRouterClient(OpenRouterConfig{
			APIKey:   cfg.OpenRouterAPIKey,
			URL:      cfg.OpenRouterURL,
			Model:    cfg.OpenRouterModel,
			SiteURL:  cfg.SiteURL,
			SiteName: cfg.SiteName,
		})
	}

	return NewPolicyCompleter(provider, ProviderPolicy{
		Timeout:       cfg.ProviderTimeout,
		MaxRetries:    cfg.ProviderMaxRetries,
		Backoff:       cfg.ProviderBackoff,
		RatePerMinute: cfg.ProviderRatePerMinute,
	}), nil
}
