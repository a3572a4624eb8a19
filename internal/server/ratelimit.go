package server

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"skillmatch/internal/errors"

	"golang.org/x/time/rate"
)

const (
	clientIdleTTL   = 10 * time.Minute
	clientSweepTick = 10 * time.Minute
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client key and forgets clients
// that have been idle for clientIdleTTL
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int
	now     func() time.Time
	done    chan struct{}
	once    sync.Once
	logger  *errors.Logger
}

// NewRateLimiter allows requestsPerMin per client with bursts of up to
// burstCapacity. Close stops the background sweep.
func NewRateLimiter(requestsPerMin int, burstCapacity int, logger *errors.Logger) *RateLimiter {
	if burstCapacity < 1 {
		burstCapacity = 1
	}
	rl := &RateLimiter{
		clients: make(map[string]*client),
		limit:   rate.Limit(float64(requestsPerMin) / 60.0),
		burst:   burstCapacity,
		now:     time.Now,
		done:    make(chan struct{}),
		logger:  logger,
	}
	go rl.sweepLoop()
	return rl
}

// Reserve takes a token for key. When none is available it returns false
// and how long the client should wait.
func (rl *RateLimiter) Reserve(key string) (bool, time.Duration) {
	rl.mu.Lock()
	c, ok := rl.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = c
	}
	now := rl.now()
	c.lastSeen = now
	rl.mu.Unlock()

	r := c.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Minute
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Allow reports whether key may proceed now
func (rl *RateLimiter) Allow(key string) bool {
	ok, _ := rl.Reserve(key)
	return ok
}

// GetStats reports the limiter settings and the number of tracked clients
func (rl *RateLimiter) GetStats() map[string]any {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return map[string]any{
		"active_limiters": len(rl.clients),
		"rate_per_second": float64(rl.limit),
		"rate_per_minute": float64(rl.limit) * 60.0,
		"burst_capacity":  rl.burst,
	}
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(clientSweepTick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep(clientIdleTTL)
		case <-rl.done:
			return
		}
	}
}

// sweep drops clients not seen within ttl
func (rl *RateLimiter) sweep(ttl time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-ttl)
	removed := 0
	for key, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, key)
			removed++
		}
	}

	if rl.logger != nil && removed > 0 {
		rl.logger.Debug("Evicted idle rate limit clients",
			"removed", removed,
			"remaining", len(rl.clients))
	}
}

// Close stops the sweep goroutine. It is safe to call more than once.
func (rl *RateLimiter) Close() {
	rl.once.Do(func() { close(rl.done) })
}

// rateLimitMiddleware rejects clients that exceed their per-IP budget
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	if s.RateLimit == nil || !s.RateLimit.Enabled || s.RateLimiter == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := "ip:" + getClientIP(r)
		ok, wait := s.RateLimiter.Reserve(key)
		if !ok {
			s.requestLogger(r).Info("Rate limit exceeded",
				"key", key,
				"endpoint", r.URL.Path,
				"retry_after", wait.String())
			s.rateLimitHit(r.Context(), r.URL.Path)
			w.Header().Set("Retry-After", retryAfterSeconds(wait))
			writeErrorResponse(w, "Rate limit exceeded", "", "Too many requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// retryAfterSeconds rounds wait up to whole seconds, at least one
func retryAfterSeconds(wait time.Duration) string {
	secs := int(math.Ceil(wait.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// getClientIP prefers the first valid X-Forwarded-For entry, then X-Real-IP,
// then the connection address
func getClientIP(r *http.Request) string {
	for entry := range strings.SplitSeq(r.Header.Get("X-Forwarded-For"), ",") {
		if ip := net.ParseIP(strings.TrimSpace(entry)); ip != nil {
			return ip.String()
		}
	}

	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
