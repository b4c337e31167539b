package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/vcscsvcscs/healthscope/internal/config"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured
const DefaultGeminiModel = config.DefaultGeminiModel

// GeminiConfig configures a GeminiClient
type GeminiConfig struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini API endpoint
	BaseURL string
}

// GeminiClient generates text with the Gemini API
type GeminiClient struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewGeminiClient creates a Gemini-backed Generator
func NewGeminiClient(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  cfg.Model,
		logger: logger,
	}, nil
}

// Generate sends a single GenerateContent request
func (c *GeminiClient) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	var config *genai.GenerateContentConfig
	if opts.ExpectJSON {
		config = &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generate content failed: %w", err)
	}

	if resp.UsageMetadata != nil {
		c.logger.Debug("Gemini token usage",
			zap.String("model", c.model),
			zap.Int32("prompt_tokens", resp.UsageMetadata.PromptTokenCount),
			zap.Int32("completion_tokens", resp.UsageMetadata.CandidatesTokenCount),
			zap.Int32("total_tokens", resp.UsageMetadata.TotalTokenCount),
		)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String(), nil
}

// Model returns the configured model identifier
func (c *GeminiClient) Model() string {
	return c.model
}
