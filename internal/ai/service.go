package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"skillmatch/internal/config"
	"skillmatch/internal/errors"
	"skillmatch/internal/types"

	"golang.org/x/sync/errgroup"
)

// Tracker instruments a single provider call. fn reports the token usage
// of the call it wraps.
type Tracker func(ctx context.Context, operation string, fn func(context.Context) (*TokenUsage, error)) error

// Service generates improvement suggestions for missing skills
type Service struct {
	provider Provider
	config   *config.OperationAIConfig
	logger   *errors.Logger
	tracker  Tracker

	// set when no provider could be configured; every suggestion fails with it
	unavailable error
}

// NewService creates the suggestion service for the configured provider.
// A missing API key is not an error: the service is returned in a degraded
// state where every suggestion reports AI_NOT_CONFIGURED.
func NewService(cfg *config.OperationAIConfig, logger *errors.Logger) (*Service, error) {
	logger.Debug("Initializing AI service",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"timeout", derefDuration(cfg.Timeout),
		"max_retries", derefInt(cfg.MaxRetries),
		"concurrency", cfg.Concurrency)

	if cfg.APIKey == "" {
		logger.Warn("No AI API key configured, suggestions are disabled",
			"provider", cfg.Provider)
		return &Service{
			config: cfg,
			logger: logger,
			unavailable: errors.NewConfigError(errors.ErrCodeAINotConfigured,
				"AI suggestions are not configured (no API key)", nil),
		}, nil
	}

	var provider Provider
	var err error

	switch cfg.Provider {
	case config.ProviderGemini:
		provider, err = NewGeminiProvider(cfg, "suggest", logger)
	case config.ProviderOpenAI:
		provider, err = NewOpenAIProvider(cfg, "suggest", logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}

	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"Failed to create AI provider", err)
	}

	return NewServiceWithProvider(provider, cfg, logger), nil
}

// NewServiceWithProvider wires an already constructed provider
func NewServiceWithProvider(provider Provider, cfg *config.OperationAIConfig, logger *errors.Logger) *Service {
	return &Service{
		provider: provider,
		config:   cfg,
		logger:   logger,
	}
}

// SetTracker installs call instrumentation
func (s *Service) SetTracker(t Tracker) {
	s.tracker = t
}

// Configured reports whether suggestions can be generated at all
func (s *Service) Configured() bool {
	return s.provider != nil
}

// Suggest generates the suggestion for one skill. Failures are reported in
// the returned Suggestion rather than as an error.
func (s *Service) Suggest(ctx context.Context, skill string) types.Suggestion {
	suggestion := types.Suggestion{Skill: skill}

	if s.provider == nil {
		suggestion.Error = s.unavailable.Error()
		return suggestion
	}

	callCtx := ctx
	if timeout := derefDuration(s.config.Timeout); timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	prompt := BuildPrompt(s.config.PromptTemplate, skill)

	var completion *Completion
	err := s.track(callCtx, "suggest", func(ctx context.Context) (*TokenUsage, error) {
		var err error
		completion, err = s.provider.Generate(ctx, prompt)
		if err != nil {
			return nil, err
		}
		return completion.Usage, nil
	})
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			err = errors.NewAIError(errors.ErrCodeAITimeout,
				fmt.Sprintf("Suggestion for %q timed out", skill), err)
		}
		s.logger.LogError(err, "Suggestion generation failed", "skill", skill)
		suggestion.Error = err.Error()
		return suggestion
	}

	suggestion.Text = completion.Text
	return suggestion
}

// SuggestAll generates suggestions for every skill, keeping input order.
// One skill failing never stops the others. With concurrency above one the
// calls run in parallel, bounded by the configured limit.
func (s *Service) SuggestAll(ctx context.Context, skills []string) []types.Suggestion {
	results := make([]types.Suggestion, len(skills))
	if len(skills) == 0 {
		return results
	}

	limit := max(s.config.Concurrency, 1)
	if limit == 1 {
		for i, skill := range skills {
			results[i] = s.Suggest(ctx, skill)
		}
		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, skill := range skills {
		g.Go(func() error {
			results[i] = s.Suggest(gctx, skill)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// GetModelInfo returns information about the AI model for health checks
func (s *Service) GetModelInfo(ctx context.Context) *ModelInfo {
	if s.provider == nil {
		return &ModelInfo{
			Name:     s.config.Model,
			Provider: s.config.Provider,
			Error:    s.unavailable.Error(),
		}
	}
	return s.provider.GetModelInfo(ctx)
}

// GetCircuitBreakerStats returns the provider's breaker stats, if any
func (s *Service) GetCircuitBreakerStats() map[string]any {
	if reporter, ok := s.provider.(StatsReporter); ok {
		return reporter.GetCircuitBreakerStats()
	}
	return map[string]any{"enabled": false}
}

// Close releases the provider
func (s *Service) Close() error {
	if s.provider == nil {
		return nil
	}
	return s.provider.Close()
}

func (s *Service) track(ctx context.Context, operation string, fn func(context.Context) (*TokenUsage, error)) error {
	if s.tracker == nil {
		_, err := fn(ctx)
		return err
	}
	return s.tracker(ctx, operation, fn)
}

func derefDuration(p *time.Duration) time.Duration {
	if p == nil {
		return 0
	}
	return *p
}
