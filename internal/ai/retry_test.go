package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("bad prompt"), false},
		{"network error", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, true},
		{"google 429", &googleapi.Error{Code: 429}, true},
		{"google 503 wrapped", fmt.Errorf("call: %w", &googleapi.Error{Code: 503}), true},
		{"google 400", &googleapi.Error{Code: 400}, false},
		{"google 403", &googleapi.Error{Code: 403}, false},
		{"openai 500", &openai.APIError{HTTPStatusCode: 500, Message: "server error"}, true},
		{"openai 401", &openai.APIError{HTTPStatusCode: 401, Message: "invalid key"}, false},
		{"openai request 502", &openai.RequestError{HTTPStatusCode: 502, Err: errors.New("bad gateway")}, true},
		{"openai request 404", &openai.RequestError{HTTPStatusCode: 404, Err: errors.New("not found")}, false},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", fmt.Errorf("call: %w", context.DeadlineExceeded), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isRetryableError(tt.err))
		})
	}
}

func TestBackoffFor(t *testing.T) {
	tests := []struct {
		attempt int
		min     time.Duration
		max     time.Duration
	}{
		{1, time.Second, 1100 * time.Millisecond},
		{2, 2 * time.Second, 2200 * time.Millisecond},
		{3, 4 * time.Second, 4400 * time.Millisecond},
		{6, 30 * time.Second, 30 * time.Second},
		{10, 30 * time.Second, 30 * time.Second},
	}

	for _, tt := range tests {
		got := backoffFor(tt.attempt)
		assert.GreaterOrEqual(t, got, tt.min, "attempt %d", tt.attempt)
		assert.LessOrEqual(t, got, tt.max, "attempt %d", tt.attempt)
	}
}

// instantRetryer records requested delays instead of sleeping
func instantRetryer(maxRetries int, delays *[]time.Duration) *retryer {
	r := newRetryer(maxRetries, testLogger)
	r.sleep = func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return ctx.Err()
	}
	return r
}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds after transient failures", func(t *testing.T) {
		var delays []time.Duration
		attempts := 0
		got, err := withRetry(ctx, instantRetryer(3, &delays), "generate", func() (string, error) {
			attempts++
			if attempts < 3 {
				return "", &googleapi.Error{Code: 503}
			}
			return "done", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "done", got)
		assert.Equal(t, 3, attempts)
		assert.Len(t, delays, 2)
	})

	t.Run("stops on non-retryable error", func(t *testing.T) {
		var delays []time.Duration
		attempts := 0
		_, err := withRetry(ctx, instantRetryer(3, &delays), "generate", func() (string, error) {
			attempts++
			return "", &openai.APIError{HTTPStatusCode: 401, Message: "invalid key"}
		})
		require.Error(t, err)
		assert.Equal(t, 1, attempts)
		assert.Empty(t, delays)

		var apiErr *openai.APIError
		assert.ErrorAs(t, err, &apiErr)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		var delays []time.Duration
		attempts := 0
		_, err := withRetry(ctx, instantRetryer(2, &delays), "generate", func() (string, error) {
			attempts++
			return "", &googleapi.Error{Code: 429}
		})
		require.Error(t, err)
		assert.Equal(t, 3, attempts)
		assert.Contains(t, err.Error(), "operation 'generate' failed")
	})

	t.Run("cancelled context aborts the wait", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		var delays []time.Duration
		attempts := 0
		_, err := withRetry(cancelled, instantRetryer(3, &delays), "generate", func() (string, error) {
			attempts++
			return "", &googleapi.Error{Code: 500}
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, attempts)
	})
}
