// AngelaMos | 2026
// guard.go

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/agenciasuportapoio350-spec/part2/internal/core"
	"github.com/agenciasuportapoio350-spec/part2/internal/middleware"
)

// Guard resolves bearer tokens to the live user they act as. Nothing is
// cached: role and status come from the store on every call, so a block
// or demotion applies to the very next request.
type Guard struct {
	tokens *JWTManager
	users  UserProvider
}

func NewGuard(tokens *JWTManager, users UserProvider) *Guard {
	return &Guard{tokens: tokens, users: users}
}

func (g *Guard) Authenticate(
	ctx context.Context,
	token string,
) (*middleware.ActingContext, error) {
	claims, err := g.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("authenticate: missing subject: %w", core.ErrUnauthorized)
	}

	user, err := g.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if user.Status == middleware.StatusBlocked {
		return nil, core.Deny(core.ReasonBlocked)
	}

	return &middleware.ActingContext{
		UserID:          user.ID,
		Name:            user.Name,
		Email:           user.Email,
		Role:            user.Role,
		Status:          user.Status,
		Plan:            user.Plan,
		CreatedAt:       user.CreatedAt,
		IsImpersonating: claims.IsImpersonation(),
		OriginalUserID:  claims.OriginalUserID,
	}, nil
}

var _ middleware.Resolver = (*Guard)(nil)
