// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/agenciasuportapoio350-spec/part2/internal/core"
)

const (
	ActingContextKey contextKey = "acting_context"
)

const (
	roleAdmin      = "ADMIN"
	roleSuperAdmin = "SUPER_ADMIN"

	StatusBlocked = "blocked"
)

// Resolver turns a bearer token into the caller's live identity.
type Resolver interface {
	Authenticate(ctx context.Context, token string) (*ActingContext, error)
}

// ActingContext is the identity a request acts as, re-read from the
// credential store on every request.
type ActingContext struct {
	UserID          string
	Name            string
	Email           string
	Role            string
	Status          string
	Plan            string
	CreatedAt       time.Time
	IsImpersonating bool
	OriginalUserID  string
}

func (a *ActingContext) HasRole(roles ...string) bool {
	return slices.Contains(roles, a.Role)
}

// CheckRole fails with Forbidden(insufficient_role) unless actx holds one
// of roles.
func CheckRole(actx *ActingContext, roles ...string) error {
	if actx == nil {
		return core.ErrUnauthorized
	}
	if !actx.HasRole(roles...) {
		return core.Deny(core.ReasonInsufficientRole)
	}
	return nil
}

func Authenticator(resolver Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("missing authorization token"),
				)
				return
			}

			actx, err := resolver.Authenticate(r.Context(), token)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			recordIdentity(r.Context(), actx)
			next.ServeHTTP(w, r.WithContext(WithActingContext(r.Context(), actx)))
		})
	}
}

func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actx := GetActingContext(r.Context())

			if actx == nil {
				core.JSONError(
					w,
					core.UnauthorizedError("authentication required"),
				)
				return
			}

			if err := CheckRole(actx, roles...); err != nil {
				core.WriteError(w, err, "")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireSuperAdmin(next http.Handler) http.Handler {
	return RequireRole(roleSuperAdmin)(next)
}

func RequireAdminOrSuper(next http.Handler) http.Handler {
	return RequireRole(roleAdmin, roleSuperAdmin)(next)
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	if appErr := core.ClassifyError(err, "user"); appErr != nil {
		core.JSONError(w, appErr)
		return
	}
	core.JSONError(w, core.TokenInvalidError())
}

func WithActingContext(ctx context.Context, actx *ActingContext) context.Context {
	return context.WithValue(ctx, ActingContextKey, actx)
}

func GetActingContext(ctx context.Context) *ActingContext {
	if actx, ok := ctx.Value(ActingContextKey).(*ActingContext); ok {
		return actx
	}
	return nil
}

func GetUserID(ctx context.Context) string {
	if actx := GetActingContext(ctx); actx != nil {
		return actx.UserID
	}
	return ""
}

func GetUserRole(ctx context.Context) string {
	if actx := GetActingContext(ctx); actx != nil {
		return actx.Role
	}
	return ""
}

func GetUserPlan(ctx context.Context) string {
	if actx := GetActingContext(ctx); actx != nil {
		return actx.Plan
	}
	return ""
}

func IsAuthenticated(ctx context.Context) bool {
	return GetUserID(ctx) != ""
}
