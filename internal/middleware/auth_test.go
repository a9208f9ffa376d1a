// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/agenciasuportapoio350-spec/part2/internal/core"
)

type stubResolver struct {
	actx *ActingContext
	err  error
	got  string
}

func (s *stubResolver) Authenticate(_ context.Context, token string) (*ActingContext, error) {
	s.got = token
	return s.actx, s.err
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	actx := GetActingContext(r.Context())
	if actx == nil {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	_, _ = w.Write([]byte(actx.UserID))
}

func TestAuthenticator(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		resolver *stubResolver
		status   int
		code     string
	}{
		{
			name:     "missing header",
			resolver: &stubResolver{},
			status:   http.StatusUnauthorized,
			code:     "UNAUTHORIZED",
		},
		{
			name:     "wrong scheme",
			header:   "Basic abc",
			resolver: &stubResolver{},
			status:   http.StatusUnauthorized,
			code:     "UNAUTHORIZED",
		},
		{
			name:     "expired",
			header:   "Bearer tok",
			resolver: &stubResolver{err: core.ErrTokenExpired},
			status:   http.StatusUnauthorized,
			code:     "TOKEN_EXPIRED",
		},
		{
			name:     "blocked",
			header:   "Bearer tok",
			resolver: &stubResolver{err: core.Deny(core.ReasonBlocked)},
			status:   http.StatusForbidden,
			code:     core.ReasonBlocked,
		},
		{
			name:     "unclassified failure",
			header:   "Bearer tok",
			resolver: &stubResolver{err: context.DeadlineExceeded},
			status:   http.StatusUnauthorized,
			code:     "TOKEN_INVALID",
		},
		{
			name:     "ok",
			header:   "bearer  tok ",
			resolver: &stubResolver{actx: &ActingContext{UserID: "u-1", Role: "USER"}},
			status:   http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Authenticator(tt.resolver)(http.HandlerFunc(echoUser))

			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body)
			}
			if tt.code != "" && !strings.Contains(rec.Body.String(), `"code":"`+tt.code+`"`) {
				t.Errorf("body %s missing code %q", rec.Body, tt.code)
			}
			if tt.status == http.StatusOK {
				if tt.resolver.got != "tok" {
					t.Errorf("resolver got token %q, want tok", tt.resolver.got)
				}
				if rec.Body.String() != "u-1" {
					t.Errorf("handler saw user %q", rec.Body)
				}
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name   string
		actx   *ActingContext
		guard  func(http.Handler) http.Handler
		status int
	}{
		{"anonymous", nil, RequireSuperAdmin, http.StatusUnauthorized},
		{"user on super admin route", &ActingContext{Role: "USER"}, RequireSuperAdmin, http.StatusForbidden},
		{"admin on super admin route", &ActingContext{Role: roleAdmin}, RequireSuperAdmin, http.StatusForbidden},
		{"super admin", &ActingContext{Role: roleSuperAdmin}, RequireSuperAdmin, http.StatusNoContent},
		{"admin on admin route", &ActingContext{Role: roleAdmin}, RequireAdminOrSuper, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := tt.guard(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
			if tt.actx != nil {
				req = req.WithContext(WithActingContext(req.Context(), tt.actx))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status == http.StatusForbidden &&
				!strings.Contains(rec.Body.String(), core.ReasonInsufficientRole) {
				t.Errorf("body %s missing reason", rec.Body)
			}
		})
	}
}
