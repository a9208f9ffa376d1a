// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agenciasuportapoio350-spec/part2/internal/auth"
	"github.com/agenciasuportapoio350-spec/part2/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) EmailExists(
	ctx context.Context,
	email string,
) (bool, error) {
	return s.repo.ExistsByEmail(ctx, email, "")
}

// Register creates a self-service account: USER on the free plan.
func (s *Service) Register(
	ctx context.Context,
	nu auth.NewUser,
) (*auth.UserInfo, error) {
	lastLogin := nu.LastLoginAt
	user := &User{
		ID:           uuid.New().String(),
		Name:         nu.Name,
		Email:        strings.ToLower(nu.Email),
		PasswordHash: nu.PasswordHash,
		Role:         RoleUser,
		Status:       StatusActive,
		Plan:         PlanFree,
		PlanStatus:   PlanStatusActive,
		LastLoginAt:  &lastLogin,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) RecordLogin(
	ctx context.Context,
	id string,
	at time.Time,
) error {
	_, err := s.repo.Update(ctx, id, Patch{LastLoginAt: &at})
	return err
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	_, err := s.repo.Update(ctx, id, Patch{PasswordHash: &passwordHash})
	return err
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

func (s *Service) UpdateMe(
	ctx context.Context,
	userID string,
	req UpdateMeRequest,
) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, core.Invalid("name is required")
	}

	return s.repo.Update(ctx, userID, Patch{Name: &name})
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Status:       u.Status,
		Plan:         u.Plan,
		CreatedAt:    u.CreatedAt,
	}
}

var _ auth.UserProvider = (*Service)(nil)
