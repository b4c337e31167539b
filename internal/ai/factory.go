package ai

import (
	"context"
	"fmt"

	"github.com/vcscsvcscs/healthscope/internal/config"
	"go.uber.org/zap"
)

// NewGenerator builds the Generator selected by cfg.Provider
func NewGenerator(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (Generator, error) {
	switch cfg.Provider {
	case config.ProviderGemini, "":
		return NewGeminiClient(ctx, GeminiConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.Endpoint,
		}, logger)
	case config.ProviderOpenAI:
		return NewOpenAIClient(OpenAIConfig{
			APIKey:   cfg.APIKey,
			Model:    cfg.Model,
			Endpoint: cfg.Endpoint,
		}, logger)
	case config.ProviderAzure:
		return NewOpenAIClient(OpenAIConfig{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			Endpoint:   cfg.Endpoint,
			Azure:      true,
			APIVersion: cfg.APIVersion,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
