package ai

import (
	"fmt"

	"skillmatch/internal/config"
	"skillmatch/internal/errors"

	"github.com/sony/gobreaker/v2"
)

// Breaker guards one kind of provider call with the circuit breaker pattern.
// A nil *Breaker is valid and runs calls unguarded.
type Breaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// NewGenerateBreaker creates the breaker around text generation calls for an
// operation. It trips on the configured failure ratio.
func NewGenerateBreaker(operationType string, cfg *config.OperationAIConfig, logger *errors.Logger) *Breaker[*Completion] {
	if !cfg.CircuitBreaker.Enabled {
		return nil
	}

	return newBreaker[*Completion](fmt.Sprintf("AI-%s", operationType), operationType, cfg,
		func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.CircuitBreaker.MinRequests &&
				failureRatio >= cfg.CircuitBreaker.FailureThreshold
		}, logger)
}

// NewModelBreaker creates the breaker around model availability checks
func NewModelBreaker(operationType string, cfg *config.OperationAIConfig, logger *errors.Logger) *Breaker[*ModelInfo] {
	if !cfg.CircuitBreaker.Enabled {
		return nil
	}

	return newBreaker[*ModelInfo](fmt.Sprintf("AI-Model-%s", operationType), operationType, cfg,
		func(counts gobreaker.Counts) bool {
			// Model info is less critical, so use more lenient settings
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.8
		}, logger)
}

func newBreaker[T any](name, operationType string, cfg *config.OperationAIConfig, readyToTrip func(gobreaker.Counts) bool, logger *errors.Logger) *Breaker[T] {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.CircuitBreaker.MaxRequests,
		Interval:    cfg.CircuitBreaker.Interval,
		Timeout:     cfg.CircuitBreaker.Timeout,
		ReadyToTrip: readyToTrip,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if logger == nil {
				return
			}
			logger.Info("Circuit breaker state changed",
				"name", name,
				"operation_type", operationType,
				"from", from.String(),
				"to", to.String(),
				"max_requests", cfg.CircuitBreaker.MaxRequests,
				"failure_threshold", cfg.CircuitBreaker.FailureThreshold)
		},
	}

	return &Breaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

// Execute runs fn with circuit breaker protection
func (b *Breaker[T]) Execute(fn func() (T, error)) (T, error) {
	if b == nil || b.cb == nil {
		return fn()
	}
	return b.cb.Execute(fn)
}

// GetStats returns circuit breaker statistics
func (b *Breaker[T]) GetStats() map[string]any {
	if b == nil || b.cb == nil {
		return map[string]any{
			"enabled": false,
		}
	}

	return map[string]any{
		"name":    b.cb.Name(),
		"state":   b.cb.State().String(),
		"counts":  b.cb.Counts(),
		"enabled": true,
	}
}

// IsHealthy returns true if the circuit breaker is in closed state
func (b *Breaker[T]) IsHealthy() bool {
	if b == nil || b.cb == nil {
		return true
	}
	return b.cb.State() == gobreaker.StateClosed
}

// breakerStats merges the stats of a provider's two breakers
func breakerStats(generate *Breaker[*Completion], model *Breaker[*ModelInfo]) map[string]any {
	return map[string]any{
		"ai_operations":    generate.GetStats(),
		"model_operations": model.GetStats(),
		"overall_healthy":  generate.IsHealthy() && model.IsHealthy(),
	}
}
