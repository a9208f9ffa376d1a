// AngelaMos | 2026
// middleware_test.go

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/agenciasuportapoio350-spec/part2/internal/config"
)

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "abc-123" || rec.Header().Get(RequestIDHeader) != "abc-123" {
		t.Errorf("incoming id not propagated: ctx=%q header=%q", seen, rec.Header().Get(RequestIDHeader))
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 65))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if len(seen) != 36 {
		t.Errorf("oversized id should be replaced by a uuid, got %q", seen)
	}
}

func TestSecurityHeaders(t *testing.T) {
	for _, production := range []bool{false, true} {
		h := SecurityHeaders(production)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Error("missing nosniff")
		}
		hsts := rec.Header().Get("Strict-Transport-Security") != ""
		if hsts != production {
			t.Errorf("production=%v hsts=%v", production, hsts)
		}
	}
}

func TestCORS(t *testing.T) {
	cfg := config.CORSConfig{
		AllowedOrigins:   []string{"http://app.test"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	h := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/leads", nil)
		req.Header.Set("Origin", "http://app.test")
		req.Header.Set("Access-Control-Request-Method", "POST")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", rec.Code)
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "http://app.test" {
			t.Errorf("allow origin = %q", rec.Header().Get("Access-Control-Allow-Origin"))
		}
		if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
			t.Error("credentials header missing")
		}
	})

	t.Run("preflight from unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/leads", nil)
		req.Header.Set("Origin", "http://evil.test")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("simple request from unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
		req.Header.Set("Origin", "http://evil.test")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK || rec.Header().Get("Access-Control-Allow-Origin") != "" {
			t.Errorf("unexpected cors grant: %d %q", rec.Code, rec.Header().Get("Access-Control-Allow-Origin"))
		}
	})
}

func TestKeyByUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:5555"

	if got := KeyByUser(req); got != "ratelimit:ip:10.0.0.7" {
		t.Errorf("anonymous key = %q", got)
	}

	req = req.WithContext(WithActingContext(req.Context(), &ActingContext{UserID: "u-9"}))
	if got := KeyByUser(req); got != "ratelimit:user:u-9" {
		t.Errorf("user key = %q", got)
	}
}

func TestSkipHealthChecks(t *testing.T) {
	for path, want := range map[string]bool{
		"/healthz":   true,
		"/readyz":    true,
		"/api/leads": false,
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if got := SkipHealthChecks(req); got != want {
			t.Errorf("SkipHealthChecks(%s) = %v, want %v", path, got, want)
		}
	}
}
