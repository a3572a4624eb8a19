package ai

import (
	"context"
)

// Provider is a text-generation backend: one prompt in, one text blob out.
// Callers may ignore the token usage if they do not track it.
type Provider interface {
	Generate(ctx context.Context, prompt string) (*Completion, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// Completion is the raw text returned for a prompt
type Completion struct {
	Text  string
	Usage *TokenUsage
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	Provider    string `json:"provider"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// StatsReporter is implemented by providers that guard their calls with
// circuit breakers
type StatsReporter interface {
	GetCircuitBreakerStats() map[string]any
}
