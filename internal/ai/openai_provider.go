package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"skillmatch/internal/config"
	appErrors "skillmatch/internal/errors"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// OpenAIProvider implements Provider for OpenAI and OpenAI-compatible
// chat completion endpoints
type OpenAIProvider struct {
	client            *openai.Client
	config            *config.OperationAIConfig
	generateBreaker   *Breaker[*Completion]
	modelBreaker      *Breaker[*ModelInfo]
	retry             *retryer
	modelCheckTimeout time.Duration
	logger            *appErrors.Logger
}

var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates an OpenAI provider for a specific operation.
// A non-empty BaseURL points the client at a compatible endpoint.
func NewOpenAIProvider(cfg *config.OperationAIConfig, operationType string, logger *appErrors.Logger) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, appErrors.NewConfigError(appErrors.ErrCodeMissingAPIKey,
			"OpenAI API key is required", nil)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &OpenAIProvider{
		client:            openai.NewClientWithConfig(clientConfig),
		config:            cfg,
		generateBreaker:   NewGenerateBreaker(operationType, cfg, logger),
		modelBreaker:      NewModelBreaker(operationType, cfg, logger),
		retry:             newRetryer(derefInt(cfg.MaxRetries), logger),
		modelCheckTimeout: defaultModelCheckTimeout,
		logger:            logger,
	}, nil
}

// SetModelCheckTimeout overrides the timeout used by GetModelInfo
func (o *OpenAIProvider) SetModelCheckTimeout(d time.Duration) {
	if d > 0 {
		o.modelCheckTimeout = d
	}
}

// Generate sends the prompt as a single user message
func (o *OpenAIProvider) Generate(ctx context.Context, prompt string) (*Completion, error) {
	tracer := otel.Tracer("skillmatch.ai.openai")
	ctx, span := tracer.Start(ctx, "openai.generate")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", config.ProviderOpenAI),
		attribute.String("ai.model", o.config.Model),
		attribute.Int("input.prompt_length", len(prompt)),
	)

	request := openai.ChatCompletionRequest{
		Model: o.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}
	if o.config.Temperature != nil && *o.config.Temperature > 0 {
		request.Temperature = *o.config.Temperature
		span.SetAttributes(attribute.Float64("ai.temperature", float64(request.Temperature)))
	}

	completion, err := o.generateBreaker.Execute(func() (*Completion, error) {
		return withRetry(ctx, o.retry, "generate", func() (*Completion, error) {
			resp, err := o.client.CreateChatCompletion(ctx, request)
			if err != nil {
				return nil, err
			}
			if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
				return nil, fmt.Errorf("empty response from model %s", o.config.Model)
			}
			return &Completion{
				Text: resp.Choices[0].Message.Content,
				Usage: &TokenUsage{
					InputTokens:  int64(resp.Usage.PromptTokens),
					OutputTokens: int64(resp.Usage.CompletionTokens),
					TotalTokens:  int64(resp.Usage.TotalTokens),
				},
			}, nil
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return nil, appErrors.NewAIError(appErrors.ErrCodeAIServiceFailed, "OpenAI request failed", err)
	}

	span.SetAttributes(
		attribute.Int64("ai.tokens.input", completion.Usage.InputTokens),
		attribute.Int64("ai.tokens.output", completion.Usage.OutputTokens),
		attribute.Int64("ai.tokens.total", completion.Usage.TotalTokens),
		attribute.Int("output.length", len(completion.Text)),
		attribute.Bool("success", true),
	)
	return completion, nil
}

// GetModelInfo looks the configured model up in the endpoint's model list
func (o *OpenAIProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	checkCtx, cancel := context.WithTimeout(ctx, o.modelCheckTimeout)
	defer cancel()

	info, err := o.modelBreaker.Execute(func() (*ModelInfo, error) {
		model, err := o.client.GetModel(checkCtx, o.config.Model)
		if err != nil {
			return nil, err
		}
		return &ModelInfo{
			Name:        o.config.Model,
			Provider:    config.ProviderOpenAI,
			DisplayName: model.ID,
			Version:     model.OwnedBy,
			Available:   true,
		}, nil
	})
	if err != nil {
		o.logger.Warn("Model availability check failed",
			"model", o.config.Model,
			"provider", config.ProviderOpenAI,
			"error", err.Error())
		return &ModelInfo{
			Name:     o.config.Model,
			Provider: config.ProviderOpenAI,
			Error:    fmt.Sprintf("Failed to get model info: %v", err),
		}
	}
	return info
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (o *OpenAIProvider) GetCircuitBreakerStats() map[string]any {
	return breakerStats(o.generateBreaker, o.modelBreaker)
}

// Close implements Provider
func (o *OpenAIProvider) Close() error {
	return nil
}
