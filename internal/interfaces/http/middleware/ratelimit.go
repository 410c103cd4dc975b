package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cosmichub/synastry/internal/infrastructure/database/redis"
	"github.com/cosmichub/synastry/internal/infrastructure/monitoring/logging"
)

// RateLimiter is the contract for rate limiting implementations.
type RateLimiter interface {
	// Allow reports whether a request with the given key is allowed,
	// along with the current limit state.
	Allow(ctx context.Context, key string) (bool, RateLimitInfo)
}

// RateLimitInfo is the limit state for one key.
type RateLimitInfo struct {
	// Limit is the maximum number of requests per window.
	Limit int
	// Remaining is the number of requests left in the current window.
	Remaining int
	// ResetAt is when the window resets.
	ResetAt time.Time
}

// RateLimitConfig holds configuration for the rate limit middleware.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained request rate.
	RequestsPerSecond float64
	// BurstSize is the maximum burst above the sustained rate.
	BurstSize int
	// KeyFunc extracts the limit key from a request.  Defaults to the
	// client IP.
	KeyFunc func(r *http.Request) string
	// SkipPaths bypass rate limiting.
	SkipPaths []string
	// CleanupInterval is how often stale in-memory buckets are removed.
	CleanupInterval time.Duration
}

// DefaultRateLimitConfig returns the default rate limit configuration.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 20,
		BurstSize:         40,
		KeyFunc:           clientIPKeyFunc,
		SkipPaths:         []string{"/healthz", "/readyz", "/metrics"},
		CleanupInterval:   5 * time.Minute,
	}
}

// clientIPKeyFunc extracts the client IP as the limit key.
func clientIPKeyFunc(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

// --- Token bucket limiter (in-memory) ---

type tokenBucket struct {
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
}

// TokenBucketLimiter implements RateLimiter with per-key token buckets.
// Suitable for single-instance deployments; multi-instance deployments
// should use the Redis limiter so limits apply cluster-wide.
type TokenBucketLimiter struct {
	rate            float64
	burstSize       int
	buckets         map[string]*tokenBucket
	mu              sync.RWMutex
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
}

// NewTokenBucketLimiter creates an in-memory token bucket limiter.
func NewTokenBucketLimiter(rate float64, burstSize int, cleanupInterval time.Duration) *TokenBucketLimiter {
	l := &TokenBucketLimiter{
		rate:            rate,
		burstSize:       burstSize,
		buckets:         make(map[string]*tokenBucket),
		cleanupInterval: cleanupInterval,
		stopCleanup:     make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go l.cleanupLoop()
	}
	return l
}

// Allow checks the token bucket for key.
func (l *TokenBucketLimiter) Allow(_ context.Context, key string) (bool, RateLimitInfo) {
	now := time.Now()

	l.mu.RLock()
	bucket, exists := l.buckets[key]
	l.mu.RUnlock()

	if !exists {
		l.mu.Lock()
		bucket, exists = l.buckets[key]
		if !exists {
			bucket = &tokenBucket{tokens: float64(l.burstSize), lastRefill: now}
			l.buckets[key] = bucket
		}
		l.mu.Unlock()
	}

	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	elapsed := now.Sub(bucket.lastRefill).Seconds()
	bucket.tokens += elapsed * l.rate
	if bucket.tokens > float64(l.burstSize) {
		bucket.tokens = float64(l.burstSize)
	}
	bucket.lastRefill = now

	info := RateLimitInfo{
		Limit:   l.burstSize,
		ResetAt: now.Add(time.Duration(float64(time.Second) / l.rate)),
	}

	if bucket.tokens >= 1.0 {
		bucket.tokens -= 1.0
		info.Remaining = int(bucket.tokens)
		return true, info
	}
	info.Remaining = 0
	return false, info
}

func (l *TokenBucketLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopCleanup:
			return
		}
	}
}

// cleanup removes buckets idle for longer than the cleanup interval.
func (l *TokenBucketLimiter) cleanup() {
	threshold := time.Now().Add(-l.cleanupInterval)

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, bucket := range l.buckets {
		bucket.mu.Lock()
		if bucket.lastRefill.Before(threshold) && bucket.tokens >= float64(l.burstSize)-1 {
			delete(l.buckets, key)
		}
		bucket.mu.Unlock()
	}
}

// Stop stops the background cleanup goroutine.
func (l *TokenBucketLimiter) Stop() {
	close(l.stopCleanup)
}

// BucketCount returns the number of active buckets.
func (l *TokenBucketLimiter) BucketCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buckets)
}

// --- Redis fixed-window limiter ---

// RedisLimiter implements RateLimiter with a fixed window counter in the
// shared cache, so the limit holds across API instances.  Fails open: if
// the cache is unreachable the request is allowed.
type RedisLimiter struct {
	cache  redis.Cache
	limit  int
	window time.Duration
	logger logging.Logger
}

// NewRedisLimiter creates a cache-backed fixed-window limiter allowing
// limit requests per window per key.
func NewRedisLimiter(cache redis.Cache, limit int, window time.Duration, logger logging.Logger) *RedisLimiter {
	return &RedisLimiter{cache: cache, limit: limit, window: window, logger: logger}
}

// Allow increments the window counter for key and checks it against the
// limit.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, RateLimitInfo) {
	cacheKey := "ratelimit:" + key

	count, err := l.cache.Incr(ctx, cacheKey)
	if err != nil {
		l.logger.Warn("rate limit counter unavailable, allowing request", logging.Err(err))
		return true, RateLimitInfo{Limit: l.limit, Remaining: l.limit, ResetAt: time.Now().Add(l.window)}
	}
	if count == 1 {
		if err := l.cache.Expire(ctx, cacheKey, l.window); err != nil {
			l.logger.Warn("failed to set rate limit window expiry", logging.Err(err))
		}
	}

	resetAt := time.Now().Add(l.window)
	if ttl, err := l.cache.TTL(ctx, cacheKey); err == nil && ttl > 0 {
		resetAt = time.Now().Add(ttl)
	}

	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	info := RateLimitInfo{Limit: l.limit, Remaining: remaining, ResetAt: resetAt}
	return count <= int64(l.limit), info
}

// --- Middleware ---

// RateLimit returns middleware that enforces the given limiter.
func RateLimit(limiter RateLimiter, config RateLimitConfig) func(http.Handler) http.Handler {
	skipSet := make(map[string]bool, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skipSet[p] = true
	}

	keyFunc := config.KeyFunc
	if keyFunc == nil {
		keyFunc = clientIPKeyFunc
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipSet[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			allowed, info := limiter.Allow(r.Context(), keyFunc(r))

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetAt.Unix(), 10))

			if !allowed {
				retryAfter := time.Until(info.ResetAt).Seconds()
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter)))
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"code":"COMMON_007","message":"rate limit exceeded, please retry later"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware wraps RateLimit for router configuration.
type RateLimitMiddleware struct {
	handler func(http.Handler) http.Handler
}

// NewRateLimitMiddleware creates a rate limit middleware.
func NewRateLimitMiddleware(limiter RateLimiter, config RateLimitConfig) *RateLimitMiddleware {
	return &RateLimitMiddleware{handler: RateLimit(limiter, config)}
}

// Handler returns the middleware handler function.
func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return m.handler(next)
}
