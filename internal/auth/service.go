// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/agenciasuportapoio350-spec/part2/internal/core"
	"github.com/agenciasuportapoio350-spec/part2/internal/middleware"
)

var (
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", core.ErrUnauthorized)
	ErrUnknownUser        = fmt.Errorf("unknown user: %w", core.ErrUnauthorized)
)

// UserInfo is the slice of a user record the auth layer needs.
type UserInfo struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Status       string
	Plan         string
	CreatedAt    time.Time
}

type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	LastLoginAt  time.Time
}

type UserProvider interface {
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Register(ctx context.Context, u NewUser) (*UserInfo, error)
	RecordLogin(ctx context.Context, id string, at time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type Service struct {
	tokens *JWTManager
	users  UserProvider
	hasher core.PasswordHasher
	logger *slog.Logger
	now    func() time.Time
}

func NewService(
	tokens *JWTManager,
	users UserProvider,
	hasher core.PasswordHasher,
	logger *slog.Logger,
) *Service {
	return &Service{
		tokens: tokens,
		users:  users,
		hasher: hasher,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("register: %w", core.ErrDuplicateKey)
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Register(ctx, NewUser{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: passwordHash,
		LastLoginAt:  s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)

	return s.tokenResponse(user)
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // equalize timing for unknown emails
			_, _, _ = s.hasher.Verify(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := s.hasher.Verify(req.Password, &user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}

	if user.Status == middleware.StatusBlocked {
		return nil, core.Deny(core.ReasonBlocked)
	}

	if newHash != "" {
		if err := s.users.UpdatePassword(ctx, user.ID, newHash); err != nil {
			s.logger.Warn("password rehash failed",
				"user_id", user.ID, "error", err)
		}
	}

	if err := s.users.RecordLogin(ctx, user.ID, s.now().UTC()); err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}

	return s.tokenResponse(user)
}

// Me describes the caller, including whether the session is an
// impersonation and by whom.
func (s *Service) Me(actx *middleware.ActingContext) (*MeResponse, error) {
	if actx == nil {
		return nil, core.ErrUnauthorized
	}

	resp := &MeResponse{
		ID:              actx.UserID,
		Name:            actx.Name,
		Email:           actx.Email,
		Role:            actx.Role,
		Status:          actx.Status,
		Plan:            actx.Plan,
		CreatedAt:       actx.CreatedAt,
		IsImpersonating: actx.IsImpersonating,
	}
	if actx.IsImpersonating {
		original := actx.OriginalUserID
		resp.OriginalUserID = &original
	}

	return resp, nil
}

func (s *Service) tokenResponse(user *UserInfo) (*TokenResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, "")
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokens.TTL() / time.Second),
		ExpiresAt:   expiresAt,
		User: UserResponse{
			ID:        user.ID,
			Name:      user.Name,
			Email:     user.Email,
			Role:      user.Role,
			Status:    user.Status,
			CreatedAt: user.CreatedAt,
		},
	}, nil
}
