package ai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"skillmatch/internal/config"
	appErrors "skillmatch/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper functions to create pointers for test values
func timePtr(d time.Duration) *time.Duration { return &d }
func intPtr(i int) *int                      { return &i }
func float32Ptr(f float32) *float32          { return &f }

var testLogger = appErrors.NewLoggerTo(io.Discard, slog.LevelDebug)

// fakeProvider answers from a fixed table and fails for skills listed in fail
type fakeProvider struct {
	mu      sync.Mutex
	prompts []string
	fail    map[string]error
	delay   time.Duration

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string) (*Completion, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		current := f.maxInFlight.Load()
		if n <= current || f.maxInFlight.CompareAndSwap(current, n) {
			break
		}
	}

	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	skill := skillFromPrompt(prompt)
	if err, ok := f.fail[skill]; ok {
		return nil, err
	}
	return &Completion{
		Text:  "Advice for " + skill,
		Usage: &TokenUsage{InputTokens: 10, OutputTokens: 20, TotalTokens: 30},
	}, nil
}

func (f *fakeProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	return &ModelInfo{Name: "fake-model", Provider: "fake", Available: true}
}

func (f *fakeProvider) Close() error { return nil }

// skillFromPrompt reads the skill back out of the default template
func skillFromPrompt(prompt string) string {
	first, _, _ := strings.Cut(prompt, "\n")
	return strings.TrimPrefix(first, "Skill: ")
}

func suggestConfig(concurrency int) *config.OperationAIConfig {
	return &config.OperationAIConfig{
		Provider:    config.ProviderGemini,
		Model:       "gemini-2.5-flash",
		Timeout:     timePtr(5 * time.Second),
		APIKey:      "test-key",
		MaxRetries:  intPtr(0),
		Temperature: float32Ptr(0.4),
		Concurrency: concurrency,
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      3,
			Interval:         time.Minute,
			Timeout:          time.Minute,
			MinRequests:      3,
			FailureThreshold: 0.6,
		},
	}
}

func TestSuggestUsesDefaultPrompt(t *testing.T) {
	provider := &fakeProvider{}
	service := NewServiceWithProvider(provider, suggestConfig(1), testLogger)

	suggestion := service.Suggest(context.Background(), "airflow")

	assert.Equal(t, "airflow", suggestion.Skill)
	assert.Equal(t, "Advice for airflow", suggestion.Text)
	assert.False(t, suggestion.Failed())
	require.Len(t, provider.prompts, 1)
	assert.Equal(t, BuildPrompt("", "airflow"), provider.prompts[0])
	assert.True(t, strings.HasPrefix(provider.prompts[0], "Skill: airflow\nGenerate improvement suggestions:"))
}

func TestSuggestCustomTemplate(t *testing.T) {
	provider := &fakeProvider{}
	cfg := suggestConfig(1)
	cfg.PromptTemplate = "Skill: %s\nOne line only, 100%% honest."
	service := NewServiceWithProvider(provider, cfg, testLogger)

	service.Suggest(context.Background(), "dbt")

	require.Len(t, provider.prompts, 1)
	assert.Equal(t, "Skill: dbt\nOne line only, 100% honest.", provider.prompts[0])
}

func TestSuggestAllIsolatesFailures(t *testing.T) {
	for _, concurrency := range []int{1, 3} {
		provider := &fakeProvider{
			fail: map[string]error{"spark": errors.New("quota exceeded")},
		}
		service := NewServiceWithProvider(provider, suggestConfig(concurrency), testLogger)

		suggestions := service.SuggestAll(context.Background(), []string{"airflow", "spark", "kafka"})

		require.Len(t, suggestions, 3, "concurrency %d", concurrency)
		assert.Equal(t, "airflow", suggestions[0].Skill)
		assert.Equal(t, "Advice for airflow", suggestions[0].Text)

		assert.Equal(t, "spark", suggestions[1].Skill)
		assert.True(t, suggestions[1].Failed())
		assert.Contains(t, suggestions[1].Error, "quota exceeded")
		assert.True(t, strings.HasPrefix(suggestions[1].Body(), "Error for spark: "))

		assert.Equal(t, "kafka", suggestions[2].Skill)
		assert.Equal(t, "Advice for kafka", suggestions[2].Text)
		assert.Len(t, provider.prompts, 3, "every skill is attempted")
	}
}

func TestSuggestAllSequentialByDefault(t *testing.T) {
	provider := &fakeProvider{delay: 5 * time.Millisecond}
	service := NewServiceWithProvider(provider, suggestConfig(1), testLogger)

	service.SuggestAll(context.Background(), []string{"a", "b", "c", "d"})

	assert.Equal(t, int32(1), provider.maxInFlight.Load())
	assert.Equal(t, []string{"a", "b", "c", "d"}, promptSkills(provider.prompts))
}

func TestSuggestAllBoundedConcurrency(t *testing.T) {
	provider := &fakeProvider{delay: 20 * time.Millisecond}
	service := NewServiceWithProvider(provider, suggestConfig(2), testLogger)

	skills := []string{"a", "b", "c", "d", "e", "f"}
	suggestions := service.SuggestAll(context.Background(), skills)

	assert.LessOrEqual(t, provider.maxInFlight.Load(), int32(2))
	for i, skill := range skills {
		assert.Equal(t, skill, suggestions[i].Skill, "order is preserved")
		assert.Equal(t, "Advice for "+skill, suggestions[i].Text)
	}
}

func TestSuggestAllEmpty(t *testing.T) {
	service := NewServiceWithProvider(&fakeProvider{}, suggestConfig(1), testLogger)
	assert.Empty(t, service.SuggestAll(context.Background(), nil))
}

func TestSuggestTimeout(t *testing.T) {
	provider := &fakeProvider{delay: time.Second}
	cfg := suggestConfig(1)
	cfg.Timeout = timePtr(10 * time.Millisecond)
	service := NewServiceWithProvider(provider, cfg, testLogger)

	suggestion := service.Suggest(context.Background(), "terraform")

	assert.True(t, suggestion.Failed())
	assert.Contains(t, suggestion.Error, appErrors.ErrCodeAITimeout)
}

func TestSuggestTracker(t *testing.T) {
	var operations []string
	var usage *TokenUsage

	service := NewServiceWithProvider(&fakeProvider{}, suggestConfig(1), testLogger)
	service.SetTracker(func(ctx context.Context, operation string, fn func(context.Context) (*TokenUsage, error)) error {
		operations = append(operations, operation)
		var err error
		usage, err = fn(ctx)
		return err
	})

	suggestion := service.Suggest(context.Background(), "go")

	assert.False(t, suggestion.Failed())
	assert.Equal(t, []string{"suggest"}, operations)
	require.NotNil(t, usage)
	assert.Equal(t, int64(30), usage.TotalTokens)
}

func TestNewServiceWithoutKey(t *testing.T) {
	cfg := suggestConfig(1)
	cfg.APIKey = ""

	service, err := NewService(cfg, testLogger)
	require.NoError(t, err, "a missing key degrades suggestions instead of failing startup")
	assert.False(t, service.Configured())

	suggestions := service.SuggestAll(context.Background(), []string{"python", "sql"})
	require.Len(t, suggestions, 2)
	for _, s := range suggestions {
		assert.True(t, s.Failed())
		assert.Contains(t, s.Error, appErrors.ErrCodeAINotConfigured)
	}

	info := service.GetModelInfo(context.Background())
	assert.False(t, info.Available)
	assert.NotEmpty(t, info.Error)
	assert.Equal(t, map[string]any{"enabled": false}, service.GetCircuitBreakerStats())
	assert.NoError(t, service.Close())
}

func TestNewServiceProviders(t *testing.T) {
	tests := []struct {
		provider string
		model    string
	}{
		{config.ProviderGemini, "gemini-2.5-flash"},
		{config.ProviderOpenAI, "gpt-4o-mini"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := suggestConfig(1)
			cfg.Provider = tt.provider
			cfg.Model = tt.model

			service, err := NewService(cfg, testLogger)
			require.NoError(t, err)
			assert.True(t, service.Configured())

			stats := service.GetCircuitBreakerStats()
			aiStats, ok := stats["ai_operations"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "AI-suggest", aiStats["name"])
			modelStats, ok := stats["model_operations"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "AI-Model-suggest", modelStats["name"])
			assert.Equal(t, true, stats["overall_healthy"])
		})
	}
}

func TestNewServiceUnsupportedProvider(t *testing.T) {
	cfg := suggestConfig(1)
	cfg.Provider = "claude"

	_, err := NewService(cfg, testLogger)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeInvalidConfig))
}

func TestBuildPrompt(t *testing.T) {
	assert.Equal(t, "Explain rust.", BuildPrompt("Explain %s.", "rust"))
	assert.Contains(t, BuildPrompt("", "rust"), "Three free learning links (real URLs)")
}

func promptSkills(prompts []string) []string {
	skills := make([]string, len(prompts))
	for i, p := range prompts {
		skills[i] = skillFromPrompt(p)
	}
	return skills
}
