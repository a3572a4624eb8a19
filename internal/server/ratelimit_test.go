package server

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterPerClient(t *testing.T) {
	rl := NewRateLimiter(60, 2, nil)
	defer rl.Close()

	assert.True(t, rl.Allow("ip:a"))
	assert.True(t, rl.Allow("ip:a"))
	assert.False(t, rl.Allow("ip:a"), "burst exhausted")
	assert.True(t, rl.Allow("ip:b"))

	stats := rl.GetStats()
	assert.Equal(t, 2, stats["active_limiters"])
	assert.InDelta(t, 60.0, stats["rate_per_minute"], 0.001)
	assert.Equal(t, 2, stats["burst_capacity"])
}

func TestRateLimiterReserveWait(t *testing.T) {
	rl := NewRateLimiter(6, 1, nil)
	defer rl.Close()

	ok, wait := rl.Reserve("ip:a")
	assert.True(t, ok)
	assert.Zero(t, wait)

	ok, wait = rl.Reserve("ip:a")
	assert.False(t, ok)
	assert.InDelta(t, 10*time.Second, wait, float64(time.Second), "six per minute refills every ten seconds")

	// A rejected reservation is returned, so the wait does not grow
	_, again := rl.Reserve("ip:a")
	assert.LessOrEqual(t, again, wait+time.Second)
}

func TestRateLimiterSweep(t *testing.T) {
	rl := NewRateLimiter(60, 1, nil)
	defer rl.Close()

	start := time.Now()
	rl.now = func() time.Time { return start }
	rl.Allow("ip:old")

	rl.now = func() time.Time { return start.Add(time.Hour) }
	rl.Allow("ip:new")
	rl.sweep(clientIdleTTL)

	assert.Equal(t, 1, rl.GetStats()["active_limiters"])
	rl.Close()
	assert.NotPanics(t, rl.Close)
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, "1", retryAfterSeconds(0))
	assert.Equal(t, "1", retryAfterSeconds(200*time.Millisecond))
	assert.Equal(t, "10", retryAfterSeconds(9500*time.Millisecond))
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		remote   string
		expected string
	}{
		{"remote addr", nil, "192.0.2.1:1234", "192.0.2.1"},
		{"forwarded for", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "10.0.0.2:80", "203.0.113.5"},
		{"forwarded for skips junk", map[string]string{"X-Forwarded-For": "unknown, 203.0.113.9"}, "10.0.0.2:80", "203.0.113.9"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.4"}, "10.0.0.2:80", "198.51.100.4"},
		{"invalid real ip", map[string]string{"X-Real-IP": "nope"}, "10.0.0.2:80", "10.0.0.2"},
		{"remote without port", nil, "192.0.2.8", "192.0.2.8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, getClientIP(req))
		})
	}
}
