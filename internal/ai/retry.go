package ai

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"time"

	appErrors "skillmatch/internal/errors"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"
)

const maxBackoff = 30 * time.Second

// retryer runs provider calls with exponential backoff between attempts
type retryer struct {
	maxRetries int
	logger     *appErrors.Logger
	// sleep waits for d or until ctx is done; replaced in tests
	sleep func(ctx context.Context, d time.Duration) error
}

func newRetryer(maxRetries int, logger *appErrors.Logger) *retryer {
	return &retryer{
		maxRetries: max(maxRetries, 0),
		logger:     logger,
		sleep:      sleepContext,
	}
}

// withRetry executes fn until it succeeds, returns a non-retryable error, or
// the attempts run out
func withRetry[T any](ctx context.Context, r *retryer, operation string, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			r.logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", r.maxRetries,
				"error", lastErr.Error())

			if err := r.sleep(ctx, backoffFor(attempt)); err != nil {
				return zero, err
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				r.logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"successful_attempt", attempt+1)
			}
			return result, nil
		}

		lastErr = err

		if !isRetryableError(err) {
			r.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	r.logger.LogError(lastErr, "AI operation failed after all retry attempts",
		"operation", operation,
		"total_attempts", r.maxRetries+1)

	return zero, fmt.Errorf("operation '%s' failed: %w", operation, lastErr)
}

// backoffFor returns 2^(attempt-1) seconds plus up to 10% jitter, capped at 30s
func backoffFor(attempt int) time.Duration {
	baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
	if baseDelay <= 0 || baseDelay > maxBackoff {
		return maxBackoff
	}

	var jitter time.Duration
	if jitterMax := int64(float64(baseDelay) * 0.1); jitterMax > 0 {
		if n, err := rand.Int(rand.Reader, big.NewInt(jitterMax)); err == nil {
			jitter = time.Duration(n.Int64())
		}
	}
	return min(baseDelay+jitter, maxBackoff)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Timeouts, refused connections and resets
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var googleErr *googleapi.Error
	if errors.As(err, &googleErr) {
		return isRetryableStatus(googleErr.Code)
	}

	var openaiErr *openai.APIError
	if errors.As(err, &openaiErr) {
		return isRetryableStatus(openaiErr.HTTPStatusCode)
	}

	var requestErr *openai.RequestError
	if errors.As(err, &requestErr) {
		return isRetryableStatus(requestErr.HTTPStatusCode)
	}

	return false
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
