package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

// DefaultAzureAPIVersion is the Azure OpenAI API version used when none is configured
const DefaultAzureAPIVersion = "2024-08-01-preview"

// OpenAIConfig configures an OpenAIClient.
// When Azure is set, Endpoint is the Azure resource endpoint and Model the deployment name.
type OpenAIConfig struct {
	APIKey     string
	Model      string
	Endpoint   string
	Azure      bool
	APIVersion string
}

// OpenAIClient generates text with the OpenAI chat completions API (OpenAI or Azure OpenAI)
type OpenAIClient struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIClient creates an OpenAI-backed Generator. SDK retries are disabled.
func NewOpenAIClient(cfg OpenAIConfig, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" || cfg.Model == "" {
		return nil, fmt.Errorf("apiKey and model are required")
	}

	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if cfg.Azure {
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("endpoint is required for azure openai")
		}
		apiVersion := cfg.APIVersion
		if apiVersion == "" {
			apiVersion = DefaultAzureAPIVersion
		}
		opts = append(opts,
			azure.WithEndpoint(cfg.Endpoint, apiVersion),
			azure.WithAPIKey(cfg.APIKey),
		)
	} else {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
		if cfg.Endpoint != "" {
			opts = append(opts, option.WithBaseURL(cfg.Endpoint))
		}
	}

	client := openai.NewClient(opts...)

	return &OpenAIClient{
		client: &client,
		model:  cfg.Model,
		logger: logger,
	}, nil
}

// Generate performs a single chat completion request
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	requestStart := time.Now()

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	// json_object mode can only produce an object
	if opts.ExpectJSON && !opts.JSONArray {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	c.logger.Debug("OpenAI token usage",
		zap.String("model", c.model),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
		zap.Int64("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("request_time", time.Since(requestStart)),
	)

	return resp.Choices[0].Message.Content, nil
}

// Model returns the configured model or deployment name
func (c *OpenAIClient) Model() string {
	return c.model
}
