// AngelaMos | 2026
// bootstrap.go

package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/agenciasuportapoio350-spec/part2/internal/config"
	"github.com/agenciasuportapoio350-spec/part2/internal/core"
	"github.com/agenciasuportapoio350-spec/part2/internal/user"
)

// EnsureSuperAdmin creates the configured super admin when no user holds
// that email. It reports whether a user was created and is safe to run on
// every start, including from several instances at once.
func EnsureSuperAdmin(
	ctx context.Context,
	users user.Repository,
	hasher core.PasswordHasher,
	cfg config.BootstrapConfig,
	logger *slog.Logger,
) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(cfg.SuperAdminEmail))

	_, err := users.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return false, fmt.Errorf("look up super admin: %w", err)
	}

	passwordHash, err := hasher.Hash(cfg.SuperAdminPassword)
	if err != nil {
		return false, fmt.Errorf("hash super admin password: %w", err)
	}

	name := cfg.SuperAdminName
	if name == "" {
		name = "Super Admin"
	}

	err = users.Create(ctx, &user.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         user.RoleSuperAdmin,
		Status:       user.StatusActive,
		Plan:         user.PlanEnterprise,
		PlanStatus:   user.PlanStatusActive,
	})
	if errors.Is(err, core.ErrDuplicateKey) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create super admin: %w", err)
	}

	logger.Info("super admin created", "email", email)
	return true, nil
}
