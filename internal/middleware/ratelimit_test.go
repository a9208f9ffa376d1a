// AngelaMos | 2026
// ratelimit_test.go

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRateLimiterFallsBackToLocalBuckets(t *testing.T) {
	rl := NewRateLimiter(unreachableRedis(t), RateLimitConfig{
		Limit:      PerMinute(1, 2),
		BypassFunc: SkipHealthChecks,
	})
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
		req.RemoteAddr = "192.0.2.1:4000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("codes = %v, want %v", codes, want)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	req.RemoteAddr = "192.0.2.1:4000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("health check was limited: %d", rec.Code)
	}
}

func TestTieredRateLimiterUsesPlan(t *testing.T) {
	tiers := map[string]TierConfig{
		"free": {RequestsPerMinute: 1, BurstSize: 1},
		"pro":  {RequestsPerMinute: 60, BurstSize: 5},
	}
	h := TieredRateLimiter(unreachableRedis(t), tiers)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	send := func(actx *ActingContext) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		req = req.WithContext(WithActingContext(req.Context(), actx))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	free := &ActingContext{UserID: "free-user", Plan: "free"}
	if rec := send(free); rec.Code != http.StatusOK {
		t.Fatalf("first free request = %d", rec.Code)
	}
	if rec := send(free); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second free request = %d, want 429", rec.Code)
	}

	pro := &ActingContext{UserID: "pro-user", Plan: "pro"}
	for i := range 3 {
		rec := send(pro)
		if rec.Code != http.StatusOK {
			t.Fatalf("pro request %d = %d", i, rec.Code)
		}
		if rec.Header().Get("X-RateLimit-Tier") != "pro" {
			t.Errorf("tier header = %q", rec.Header().Get("X-RateLimit-Tier"))
		}
	}
}
