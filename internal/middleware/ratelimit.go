// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
)

// RateLimitConfig describes one bucket family. Limits are enforced in
// Redis. When Redis errors, FailOpen switches to an in-process token
// bucket; otherwise the request is rejected with 503.
type RateLimitConfig struct {
	Limit    redis_rate.Limit
	KeyFunc  func(*http.Request) string
	FailOpen bool
}

type RateLimiter struct {
	limiter  *redis_rate.Limiter
	fallback *localLimiter
	config   RateLimitConfig
}

func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP
	}

	return &RateLimiter{
		limiter:  redis_rate.NewLimiter(rdb),
		fallback: newLocalLimiter(),
		config:   cfg,
	}
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.config.KeyFunc(r)

		res, err := rl.limiter.Allow(r.Context(), key, rl.config.Limit)
		if err != nil {
			if !rl.config.FailOpen {
				slog.Error("rate limiter unavailable", "error", err, "key", key)
				core.JSONError(w, core.NewAppError(
					err,
					"rate limiter unavailable",
					http.StatusServiceUnavailable,
					core.CategoryInternal,
				))
				return
			}
			slog.Warn("rate limiter error, using local bucket",
				"error", err,
				"key", key,
			)
			res = rl.fallback.allow(key, rl.config.Limit)
		}

		setRateLimitHeaders(w, res, rl.config.Limit)

		if res.Allowed == 0 {
			slog.Debug("rate limit exceeded",
				"key", key,
				"request_id", GetRequestID(r.Context()),
			)
			writeRateLimitExceeded(w, res)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// KeyByIP keys on the client address. Behind a proxy the last
// X-Forwarded-For hop is the one our own proxy appended.
func KeyByIP(r *http.Request) string {
	return "ratelimit:ip:" + clientIP(r)
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		if ip := strings.TrimSpace(hops[len(hops)-1]); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// KeyByUser buckets authenticated callers by account and anonymous ones
// by address.
func KeyByUser(r *http.Request) string {
	if userID := GetUserID(r.Context()); userID != "" {
		return "ratelimit:user:" + userID
	}
	return KeyByIP(r)
}

// KeyByIPAndEndpoint buckets unauthenticated lifecycle calls such as
// registration and password reset per client address and route.
func KeyByIPAndEndpoint(r *http.Request) string {
	return fmt.Sprintf(
		"%s:endpoint:%s",
		KeyByIP(r),
		normalizeEndpoint(r.URL.Path),
	)
}

func normalizeEndpoint(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	normalized := make([]string, 0, len(parts))

	for _, part := range parts {
		if core.ValidID(part) || isNumeric(part) {
			normalized = append(normalized, "{id}")
		} else {
			normalized = append(normalized, part)
		}
	}

	return "/" + strings.Join(normalized, "/")
}

func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

func setRateLimitHeaders(
	w http.ResponseWriter,
	res *redis_rate.Result,
	limit redis_rate.Limit,
) {
	h := w.Header()

	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(
		time.Now().Add(res.ResetAfter).Unix(), 10))

	windowSecs := int(limit.Period.Seconds())
	h.Set("RateLimit-Policy", fmt.Sprintf(`%d;w=%d`, limit.Rate, windowSecs))
	h.Set(
		"RateLimit",
		fmt.Sprintf(`%d;t=%d`, res.Remaining, int(res.ResetAfter.Seconds())),
	)
}

func writeRateLimitExceeded(w http.ResponseWriter, res *redis_rate.Result) {
	retryAfter := int(res.RetryAfter.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	core.JSONError(w, core.TooManyRequestsError(retryAfter))
}

const (
	sweepInterval = 5 * time.Minute
	bucketIdleTTL = 10 * time.Minute
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// localLimiter is the in-process stand-in used while Redis is failing.
// Buckets are per instance, so limits loosen across replicas.
type localLimiter struct {
	buckets sync.Map
}

func newLocalLimiter() *localLimiter {
	l := &localLimiter{}
	go l.sweep()
	return l
}

func (l *localLimiter) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-bucketIdleTTL).Unix()
		l.buckets.Range(func(key, value any) bool {
			if b, ok := value.(*bucket); ok && b.lastSeen.Load() < cutoff {
				l.buckets.Delete(key)
			}
			return true
		})
	}
}

func (l *localLimiter) bucketFor(key string, limit redis_rate.Limit) *bucket {
	if v, ok := l.buckets.Load(key); ok {
		return v.(*bucket) //nolint:forcetypeassert // only *bucket is stored
	}

	perSecond := rate.Limit(float64(limit.Rate) / limit.Period.Seconds())
	v, _ := l.buckets.LoadOrStore(key, &bucket{
		limiter: rate.NewLimiter(perSecond, limit.Burst),
	})
	return v.(*bucket) //nolint:forcetypeassert // only *bucket is stored
}

func (l *localLimiter) allow(key string, limit redis_rate.Limit) *redis_rate.Result {
	b := l.bucketFor(key, limit)
	b.lastSeen.Store(time.Now().Unix())

	interval := limit.Period / time.Duration(max(limit.Rate, 1))
	res := &redis_rate.Result{
		Limit:      limit,
		Remaining:  max(int(b.limiter.Tokens()), 0),
		RetryAfter: -1,
		ResetAfter: interval,
	}

	if b.limiter.Allow() {
		res.Allowed = 1
		res.Remaining = max(int(b.limiter.Tokens()), 0)
	} else {
		res.RetryAfter = interval
	}

	return res
}

func PerMinute(rate, burst int) redis_rate.Limit {
	return PerWindow(rate, burst, time.Minute)
}

func PerWindow(rate, burst int, window time.Duration) redis_rate.Limit {
	return redis_rate.Limit{
		Rate:   rate,
		Burst:  burst,
		Period: window,
	}
}
