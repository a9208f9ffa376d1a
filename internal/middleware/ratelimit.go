// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/agenciasuportapoio350-spec/part2/internal/core"
)

const defaultTier = "free"

type RateLimitConfig struct {
	Limit redis_rate.Limit
	// LimitFunc picks a per-request limit and tier label. It overrides
	// Limit when set.
	LimitFunc  func(*http.Request) (redis_rate.Limit, string)
	KeyFunc    func(*http.Request) string
	FailOpen   bool
	BypassFunc func(*http.Request) bool
}

// RateLimiter counts requests in Redis and falls back to in-process
// token buckets while Redis is unreachable.
type RateLimiter struct {
	limiter  *redis_rate.Limiter
	fallback *localLimiter
	config   RateLimitConfig
}

func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP
	}
	if cfg.LimitFunc == nil {
		limit := cfg.Limit
		cfg.LimitFunc = func(*http.Request) (redis_rate.Limit, string) {
			return limit, ""
		}
	}

	return &RateLimiter{
		limiter:  redis_rate.NewLimiter(rdb),
		fallback: newLocalLimiter(),
		config:   cfg,
	}
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.config.BypassFunc != nil && rl.config.BypassFunc(r) {
			next.ServeHTTP(w, r)
			return
		}

		limit, tier := rl.config.LimitFunc(r)
		key := rl.config.KeyFunc(r)

		res, err := rl.allow(r.Context(), key, limit)
		if err != nil {
			if rl.config.FailOpen {
				slog.Warn("rate limiter unavailable, failing open",
					"error", err, "key", key)
				next.ServeHTTP(w, r)
				return
			}
			core.JSONError(w, core.StoreUnavailableError())
			return
		}

		if tier != "" {
			w.Header().Set("X-RateLimit-Tier", tier)
		}
		setRateLimitHeaders(w, res, limit)

		if res.Allowed == 0 {
			writeRateLimitExceeded(w, res)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(
	ctx context.Context,
	key string,
	limit redis_rate.Limit,
) (*redis_rate.Result, error) {
	res, err := rl.limiter.Allow(ctx, key, limit)
	if err == nil {
		return res, nil
	}
	return rl.fallback.allow(key, limit), nil
}

func KeyByIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return "ratelimit:ip:" + ip
}

func KeyByUser(r *http.Request) string {
	if userID := GetUserID(r.Context()); userID != "" {
		return "ratelimit:user:" + userID
	}
	return KeyByIP(r)
}

// SkipHealthChecks exempts probe endpoints from the global limit.
func SkipHealthChecks(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/livez", "/readyz":
		return true
	}
	return false
}

func setRateLimitHeaders(
	w http.ResponseWriter,
	res *redis_rate.Result,
	limit redis_rate.Limit,
) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset",
		strconv.FormatInt(time.Now().Add(res.ResetAfter).Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, res *redis_rate.Result) {
	retryAfter := max(int(res.RetryAfter.Seconds()), 1)
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

	core.JSONError(w, core.NewAppError(
		nil,
		fmt.Sprintf("rate limit exceeded, retry after %d seconds", retryAfter),
		http.StatusTooManyRequests,
		"RATE_LIMITED",
	))
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type localLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

const bucketTTL = 10 * time.Minute

func newLocalLimiter() *localLimiter {
	return &localLimiter{buckets: make(map[string]*bucket), lastSweep: time.Now()}
}

func (l *localLimiter) allow(key string, limit redis_rate.Limit) *redis_rate.Result {
	perSecond := float64(limit.Rate) / limit.Period.Seconds()
	interval := time.Duration(float64(time.Second) / perSecond)
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > bucketTTL {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > bucketTTL {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(perSecond), limit.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	res := &redis_rate.Result{
		Limit:      limit,
		RetryAfter: -1,
		ResetAfter: interval,
	}
	if b.limiter.AllowN(now, 1) {
		res.Allowed = 1
	} else {
		res.RetryAfter = interval
	}
	res.Remaining = max(int(b.limiter.TokensAt(now)), 0)
	return res
}

type TierConfig struct {
	RequestsPerMinute int
	BurstSize         int
}

// DefaultTiers keys per-user limits by subscription plan.
var DefaultTiers = map[string]TierConfig{
	"free":       {RequestsPerMinute: 60, BurstSize: 10},
	"starter":    {RequestsPerMinute: 240, BurstSize: 40},
	"pro":        {RequestsPerMinute: 600, BurstSize: 100},
	"enterprise": {RequestsPerMinute: 6000, BurstSize: 1000},
}

// TieredRateLimiter limits authenticated callers per user according to
// the plan on their acting context. Unknown plans get the free tier.
func TieredRateLimiter(
	rdb *redis.Client,
	tiers map[string]TierConfig,
) func(http.Handler) http.Handler {
	rl := NewRateLimiter(rdb, RateLimitConfig{
		KeyFunc: KeyByUser,
		LimitFunc: func(r *http.Request) (redis_rate.Limit, string) {
			tier := strings.ToLower(GetUserPlan(r.Context()))
			cfg, ok := tiers[tier]
			if !ok {
				tier = defaultTier
				cfg = tiers[defaultTier]
			}
			return PerMinute(cfg.RequestsPerMinute, cfg.BurstSize), tier
		},
	})
	return rl.Handler
}

func PerMinute(rate, burst int) redis_rate.Limit {
	return redis_rate.Limit{
		Rate:   rate,
		Burst:  burst,
		Period: time.Minute,
	}
}
