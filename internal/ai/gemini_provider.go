package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"skillmatch/internal/config"
	appErrors "skillmatch/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"
)

// defaultModelCheckTimeout bounds GetModelInfo when no timeout is configured
const defaultModelCheckTimeout = 10 * time.Second

// GeminiProvider implements Provider for Google Gemini
type GeminiProvider struct {
	client            *genai.Client
	config            *config.OperationAIConfig
	generateBreaker   *Breaker[*Completion]
	modelBreaker      *Breaker[*ModelInfo]
	retry             *retryer
	modelCheckTimeout time.Duration
	logger            *appErrors.Logger
}

var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini provider instance for a specific operation
func NewGeminiProvider(cfg *config.OperationAIConfig, operationType string, logger *appErrors.Logger) (*GeminiProvider, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, appErrors.NewAIError(appErrors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	return &GeminiProvider{
		client:            client,
		config:            cfg,
		generateBreaker:   NewGenerateBreaker(operationType, cfg, logger),
		modelBreaker:      NewModelBreaker(operationType, cfg, logger),
		retry:             newRetryer(derefInt(cfg.MaxRetries), logger),
		modelCheckTimeout: defaultModelCheckTimeout,
		logger:            logger,
	}, nil
}

// SetModelCheckTimeout overrides the timeout used by GetModelInfo
func (g *GeminiProvider) SetModelCheckTimeout(d time.Duration) {
	if d > 0 {
		g.modelCheckTimeout = d
	}
}

// Generate submits the prompt and returns the response text unchanged
func (g *GeminiProvider) Generate(ctx context.Context, prompt string) (*Completion, error) {
	tracer := otel.Tracer("skillmatch.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini.generate")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", config.ProviderGemini),
		attribute.String("ai.model", g.config.Model),
		attribute.Int("input.prompt_length", len(prompt)),
	)

	genaiConfig := &genai.GenerateContentConfig{}
	if g.config.Temperature != nil && *g.config.Temperature > 0 {
		genaiConfig.Temperature = g.config.Temperature
		span.SetAttributes(attribute.Float64("ai.temperature", float64(*g.config.Temperature)))
	}

	completion, err := g.generateBreaker.Execute(func() (*Completion, error) {
		return withRetry(ctx, g.retry, "generate", func() (*Completion, error) {
			result, err := g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(prompt), genaiConfig)
			if err != nil {
				return nil, err
			}
			text := result.Text()
			if strings.TrimSpace(text) == "" {
				return nil, fmt.Errorf("empty response from model %s", g.config.Model)
			}
			return &Completion{Text: text, Usage: extractGeminiTokenUsage(result)}, nil
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return nil, appErrors.NewAIError(appErrors.ErrCodeAIServiceFailed, "Gemini request failed", err)
	}

	if usage := completion.Usage; usage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", usage.InputTokens),
			attribute.Int64("ai.tokens.output", usage.OutputTokens),
			attribute.Int64("ai.tokens.total", usage.TotalTokens),
		)
	}
	span.SetAttributes(
		attribute.Int("output.length", len(completion.Text)),
		attribute.Bool("success", true),
	)
	return completion, nil
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	checkCtx, cancel := context.WithTimeout(ctx, g.modelCheckTimeout)
	defer cancel()

	info, err := g.modelBreaker.Execute(func() (*ModelInfo, error) {
		model, err := g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
		if err != nil {
			return nil, err
		}
		return &ModelInfo{
			Name:        g.config.Model,
			Provider:    config.ProviderGemini,
			DisplayName: model.DisplayName,
			Version:     model.Version,
			Available:   true,
		}, nil
	})
	if err != nil {
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"provider", config.ProviderGemini,
			"error", err.Error())
		return &ModelInfo{
			Name:     g.config.Model,
			Provider: config.ProviderGemini,
			Error:    fmt.Sprintf("Failed to get model info: %v", err),
		}
	}

	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"display_name", info.DisplayName,
		"version", info.Version)
	return info
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	return breakerStats(g.generateBreaker, g.modelBreaker)
}

// Close implements Provider. The genai client holds no resources in
// single-shot mode.
func (g *GeminiProvider) Close() error {
	return nil
}

// extractGeminiTokenUsage extracts token usage information from a Gemini API response
func extractGeminiTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
