// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/carterperez-dev/doubtspace/internal/core"
)

type RateLimitConfig struct {
	Limit redis_rate.Limit
	// Scope namespaces the keys so several limiters can share one Redis.
	Scope   string
	KeyFunc func(*http.Request) string
	// Skip exempts requests, typically health checks.
	Skip func(*http.Request) bool
}

type RateLimiter struct {
	redis  *redis_rate.Limiter
	local  *bucketSet
	config RateLimitConfig
}

// NewRateLimiter counts in Redis and falls back to per-key token buckets in
// this process while Redis is unreachable. A nil client means local only.
func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP
	}
	if cfg.Scope == "" {
		cfg.Scope = "global"
	}

	rl := &RateLimiter{local: newBucketSet(), config: cfg}
	if rdb != nil {
		rl.redis = redis_rate.NewLimiter(rdb)
	}
	return rl
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.config.Skip != nil && rl.config.Skip(r) {
			next.ServeHTTP(w, r)
			return
		}

		key := "ratelimit:" + rl.config.Scope + ":" + rl.config.KeyFunc(r)
		res := rl.allow(r.Context(), key)

		writeLimitHeaders(w.Header(), rl.config.Limit, res)
		if res.Allowed > 0 {
			next.ServeHTTP(w, r)
			return
		}

		wait := max(int(math.Ceil(res.RetryAfter.Seconds())), 1)
		w.Header().Set("Retry-After", strconv.Itoa(wait))
		core.Error(w, http.StatusTooManyRequests, "RATE_LIMITED",
			fmt.Sprintf("too many requests, retry in %ds", wait))
	})
}

// allow never fails: a Redis error means this process counts alone until
// Redis answers again.
func (rl *RateLimiter) allow(ctx context.Context, key string) *redis_rate.Result {
	if rl.redis != nil {
		res, err := rl.redis.Allow(ctx, key, rl.config.Limit)
		if err == nil {
			return res
		}
		slog.DebugContext(ctx, "rate limiter using local buckets", "scope", rl.config.Scope, "error", err)
	}
	return rl.local.take(key, rl.config.Limit, time.Now())
}

// ClientIP trusts the last X-Forwarded-For hop, since that is the one the
// fronting proxy appended.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		return strings.TrimSpace(hops[len(hops)-1])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func KeyByIP(r *http.Request) string {
	return "ip:" + ClientIP(r)
}

// KeyByUser must run after Authenticator; anonymous requests fall back to
// the address.
func KeyByUser(r *http.Request) string {
	if userID := GetUserID(r.Context()); userID != "" {
		return "user:" + userID
	}
	return KeyByIP(r)
}

// IsHealthCheck matches the liveness and readiness endpoints.
func IsHealthCheck(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/livez", "/readyz":
		return true
	}
	return false
}

func writeLimitHeaders(h http.Header, limit redis_rate.Limit, res *redis_rate.Result) {
	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(res.ResetAfter).Unix(), 10))
	h.Set("RateLimit-Policy", fmt.Sprintf("%d;w=%d", limit.Rate, int(limit.Period.Seconds())))
	h.Set("RateLimit", fmt.Sprintf("%d;t=%d", res.Remaining, int(res.ResetAfter.Seconds())))
}

const bucketIdle = 10 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// bucketSet holds one token bucket per key. Idle buckets are swept on use
// rather than by a background goroutine.
type bucketSet struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func newBucketSet() *bucketSet {
	return &bucketSet{buckets: make(map[string]*bucket), lastSweep: time.Now()}
}

func (s *bucketSet) take(key string, limit redis_rate.Limit, now time.Time) *redis_rate.Result {
	every := limit.Period / time.Duration(max(limit.Rate, 1))

	s.mu.Lock()
	if now.Sub(s.lastSweep) > bucketIdle {
		for k, b := range s.buckets {
			if now.Sub(b.lastSeen) > bucketIdle {
				delete(s.buckets, k)
			}
		}
		s.lastSweep = now
	}
	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Every(every), limit.Burst)}
		s.buckets[key] = b
	}
	b.lastSeen = now
	allowed := b.limiter.AllowN(now, 1)
	remaining := max(int(b.limiter.TokensAt(now)), 0)
	s.mu.Unlock()

	res := &redis_rate.Result{
		Limit:      limit,
		Remaining:  remaining,
		RetryAfter: -1,
		ResetAfter: every,
	}
	if allowed {
		res.Allowed = 1
	} else {
		res.RetryAfter = every
	}
	return res
}

// PerWindow allows rate requests per window with the given burst.
func PerWindow(rate, burst int, window time.Duration) redis_rate.Limit {
	return redis_rate.Limit{Rate: rate, Burst: burst, Period: window}
}

func PerMinute(rate, burst int) redis_rate.Limit {
	return PerWindow(rate, burst, time.Minute)
}
