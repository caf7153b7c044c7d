// Package gateway provides edge concerns for the API, currently a Redis
// backed rate limiter for the expensive trigger endpoints.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiter throttles clients with a fixed one-minute window in Redis.
// When Redis is unreachable the limiter fails open: an analysis trigger is
// never blocked by a broken cache.
type RateLimiter struct {
	redis  *redis.Client
	logger *zap.Logger
	config RateLimitConfig
}

// RateLimitConfig configures the rate limiter.
type RateLimitConfig struct {
	Enabled           bool           `yaml:"enabled"`
	RequestsPerMinute int            `yaml:"requests_per_minute"`
	Endpoints         map[string]int `yaml:"endpoints"` // "METHOD:path" -> per-minute limit
	IncludeHeaders    bool           `yaml:"include_headers"`
}

// RateLimitResult is the outcome of one limit check.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int
	Limit      int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// DefaultEndpointLimits throttles the endpoints that fan out to external
// APIs or mutate shared state.
func DefaultEndpointLimits() map[string]int {
	return map[string]int{
		"POST:/api/analyze":       6,
		"GET:/api/analyze/stream": 6,
		"POST:/api/cctv/trigger":  30,
	}
}

// NewRateLimiter creates a rate limiter.
func NewRateLimiter(redisClient *redis.Client, cfg RateLimitConfig, logger *zap.Logger) *RateLimiter {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	if cfg.Endpoints == nil {
		cfg.Endpoints = DefaultEndpointLimits()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		redis:  redisClient,
		logger: logger,
		config: cfg,
	}
}

// windowScript counts one request and arms the window expiry on first hit.
var windowScript = redis.NewScript(`
	local current = redis.call('INCR', KEYS[1])
	if current == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	return current
`)

// Check counts one request for the client/endpoint pair and reports whether
// it fits the window.
func (rl *RateLimiter) Check(ctx context.Context, clientID, method, path string) (*RateLimitResult, error) {
	limit := rl.config.RequestsPerMinute
	if v, ok := rl.config.Endpoints[method+":"+path]; ok {
		limit = v
	}

	key := fmt.Sprintf("argus:ratelimit:%s:%s:%s:minute", clientID, method, path)
	count, err := windowScript.Run(ctx, rl.redis, []string{key}, 60000).Int()
	if err != nil {
		rl.logger.Warn("rate limit check failed, allowing request", zap.Error(err))
		return &RateLimitResult{Allowed: true, Limit: limit}, nil
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	ttl, _ := rl.redis.TTL(ctx, key).Result()
	result := &RateLimitResult{
		Allowed:   count <= limit,
		Remaining: remaining,
		Limit:     limit,
		ResetAt:   time.Now().Add(ttl),
	}
	if !result.Allowed {
		result.RetryAfter = ttl
	}
	return result, nil
}

// Middleware returns the throttling HTTP middleware. A nil limiter or a
// disabled config yields a pass-through.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rl == nil || !rl.config.Enabled || rl.redis == nil {
				next.ServeHTTP(w, r)
				return
			}

			result, err := rl.Check(r.Context(), clientIP(r), r.Method, r.URL.Path)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			if rl.config.IncludeHeaders {
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
			}

			if !result.Allowed {
				retry := int(result.RetryAfter.Seconds())
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprintf(w, `{"success":false,"error":"rate limit exceeded","retry_after":%d}`, retry)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
