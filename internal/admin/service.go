// AngelaMos | 2026
// service.go

package admin

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/agenciasuportapoio350-spec/part2/internal/audit"
	"github.com/agenciasuportapoio350-spec/part2/internal/auth"
	"github.com/agenciasuportapoio350-spec/part2/internal/client"
	"github.com/agenciasuportapoio350-spec/part2/internal/core"
	"github.com/agenciasuportapoio350-spec/part2/internal/middleware"
	"github.com/agenciasuportapoio350-spec/part2/internal/user"
)

const (
	minPasswordLength = 6
	defaultEventLimit = 10
	maxEventLimit     = 100
)

type ClientReader interface {
	OwnedRecords
	Recent(ctx context.Context, limit int) ([]client.Client, error)
}

type PaymentReader interface {
	OwnedRecords
	SumPaidByUser(ctx context.Context, userID string) (float64, error)
}

// Readers serve the read-only console views outside any transaction.
type Readers struct {
	Users    user.Repository
	Audit    audit.Repository
	Leads    OwnedRecords
	Clients  ClientReader
	Tasks    OwnedRecords
	Payments PaymentReader
}

type Deps struct {
	UnitOfWork UnitOfWork
	Readers    Readers
	Tokens     *auth.JWTManager
	Hasher     core.PasswordHasher
	Notifier   audit.Notifier
	Logger     *slog.Logger
}

// Service runs privileged account mutations. Each one persists its
// change and exactly one audit entry in a single unit of work.
type Service struct {
	uow      UnitOfWork
	read     Readers
	tokens   *auth.JWTManager
	hasher   core.PasswordHasher
	notifier audit.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(deps Deps) *Service {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = audit.NewNopNotifier()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		uow:      deps.UnitOfWork,
		read:     deps.Readers,
		tokens:   deps.Tokens,
		hasher:   deps.Hasher,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

func actorOf(actx *middleware.ActingContext) audit.Actor {
	return audit.Actor{ID: actx.UserID, Email: actx.Email}
}

func statusAction(status string) string {
	switch status {
	case user.StatusBlocked:
		return audit.ActionBlockUser
	case user.StatusPaused:
		return audit.ActionPauseUser
	default:
		return audit.ActionUnblockUser
	}
}

func (s *Service) SetStatus(
	ctx context.Context,
	actor *middleware.ActingContext,
	targetID, status string,
) (*user.User, error) {
	ctx, span := core.StartSpan(ctx, "admin.set_status",
		attribute.String("actor.id", actor.UserID),
		attribute.String("target.id", targetID),
	)
	defer span.End()

	if !user.ValidStatus(status) {
		return nil, core.Invalid("invalid status %q", status)
	}

	var updated *user.User
	var entry *audit.Entry

	err := s.uow.Do(ctx, func(repos Repositories) error {
		target, err := repos.Users.GetByID(ctx, targetID)
		if err != nil {
			return err
		}

		if target.IsSuperAdmin() && status == user.StatusBlocked {
			return core.Deny(core.ReasonCannotBlockSuperAdmin)
		}

		updated, err = repos.Users.Update(ctx, targetID, user.Patch{Status: &status})
		if err != nil {
			return err
		}

		entry, err = repos.Audit.Record(ctx, actorOf(actor),
			statusAction(status), target.ID, target.Email,
			audit.Details{"old_status": target.Status, "new_status": status})
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "set status", err)
	}

	s.committed(ctx, entry)
	return updated, nil
}

func (s *Service) SetRole(
	ctx context.Context,
	actor *middleware.ActingContext,
	targetID, role string,
) (*user.User, error) {
	ctx, span := core.StartSpan(ctx, "admin.set_role",
		attribute.String("actor.id", actor.UserID),
		attribute.String("target.id", targetID),
	)
	defer span.End()

	if !user.ValidRole(role) {
		return nil, core.Invalid("invalid role %q", role)
	}

	var updated *user.User
	var entry *audit.Entry

	err := s.uow.Do(ctx, func(repos Repositories) error {
		superAdmins, err := repos.Users.LockSuperAdmins(ctx)
		if err != nil {
			return err
		}

		target, err := repos.Users.GetByID(ctx, targetID)
		if err != nil {
			return err
		}

		if target.IsSuperAdmin() && role != user.RoleSuperAdmin && superAdmins <= 1 {
			return core.Deny(core.ReasonLastSuperAdmin)
		}

		updated, err = repos.Users.Update(ctx, targetID, user.Patch{Role: &role})
		if err != nil {
			return err
		}

		entry, err = repos.Audit.Record(ctx, actorOf(actor),
			audit.ActionChangeRole, target.ID, target.Email,
			audit.Details{"old_role": target.Role, "new_role": role})
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "set role", err)
	}

	s.committed(ctx, entry)
	return updated, nil
}

type PlanChange struct {
	Plan          string
	PlanValue     float64
	PlanStatus    string
	PlanExpiresAt *time.Time
}

func (s *Service) SetPlan(
	ctx context.Context,
	actor *middleware.ActingContext,
	targetID string,
	change PlanChange,
) (*user.User, error) {
	ctx, span := core.StartSpan(ctx, "admin.set_plan",
		attribute.String("actor.id", actor.UserID),
		attribute.String("target.id", targetID),
	)
	defer span.End()

	if !user.ValidPlan(change.Plan) {
		return nil, core.Invalid("invalid plan %q", change.Plan)
	}
	if !user.ValidPlanStatus(change.PlanStatus) {
		return nil, core.Invalid("invalid plan status %q", change.PlanStatus)
	}
	if change.PlanValue < 0 {
		return nil, core.Invalid("plan value must not be negative")
	}

	patch := user.Patch{
		Plan:          &change.Plan,
		PlanValue:     &change.PlanValue,
		PlanStatus:    &change.PlanStatus,
		PlanExpiresAt: change.PlanExpiresAt,
	}
	if change.PlanStatus == user.PlanStatusActive {
		paidAt := s.now().UTC()
		patch.LastPaymentAt = &paidAt
	}

	var updated *user.User
	var entry *audit.Entry

	err := s.uow.Do(ctx, func(repos Repositories) error {
		target, err := repos.Users.GetByID(ctx, targetID)
		if err != nil {
			return err
		}

		updated, err = repos.Users.Update(ctx, targetID, patch)
		if err != nil {
			return err
		}

		entry, err = repos.Audit.Record(ctx, actorOf(actor),
			audit.ActionChangePlan, target.ID, target.Email,
			audit.Details{
				"old_plan":    target.Plan,
				"new_plan":    change.Plan,
				"plan_value":  change.PlanValue,
				"plan_status": change.PlanStatus,
			})
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "set plan", err)
	}

	s.committed(ctx, entry)
	return updated, nil
}

// Impersonate issues a token that acts as the target while remembering
// the administrator for the way back.
func (s *Service) Impersonate(
	ctx context.Context,
	actor *middleware.ActingContext,
	targetID string,
) (*SessionResponse, error) {
	ctx, span := core.StartSpan(ctx, "admin.impersonate",
		attribute.String("actor.id", actor.UserID),
		attribute.String("target.id", targetID),
	)
	defer span.End()

	var resp *SessionResponse
	var entry *audit.Entry

	err := s.uow.Do(ctx, func(repos Repositories) error {
		target, err := repos.Users.GetByID(ctx, targetID)
		if err != nil {
			return err
		}

		if target.IsSuperAdmin() {
			return core.Deny(core.ReasonCannotImpersonateSuperAdmin)
		}

		token, expiresAt, err := s.tokens.Issue(target.ID, actor.UserID)
		if err != nil {
			return err
		}

		entry, err = repos.Audit.Record(ctx, actorOf(actor),
			audit.ActionImpersonate, target.ID, target.Email, audit.Details{})
		if err != nil {
			return err
		}

		resp = sessionResponse(target, token, expiresAt)
		resp.IsImpersonating = true
		resp.OriginalUserID = actor.UserID
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "impersonate", err)
	}

	core.AddSpanEvent(ctx, "impersonation.started",
		attribute.String("admin.id", actor.UserID),
		attribute.String("target.id", targetID),
	)
	s.committed(ctx, entry)
	return resp, nil
}

// ExitImpersonate ends an impersonation session with a plain token for
// the original administrator.
func (s *Service) ExitImpersonate(
	ctx context.Context,
	actx *middleware.ActingContext,
) (*SessionResponse, error) {
	if actx == nil {
		return nil, core.ErrUnauthorized
	}
	if !actx.IsImpersonating || actx.OriginalUserID == "" {
		return nil, core.Deny(core.ReasonNotImpersonating)
	}

	original, err := s.read.Users.GetByID(ctx, actx.OriginalUserID)
	if err != nil {
		return nil, fmt.Errorf("exit impersonation: %w", err)
	}

	token, expiresAt, err := s.tokens.Issue(original.ID, "")
	if err != nil {
		return nil, fmt.Errorf("exit impersonation: %w", err)
	}

	core.AddSpanEvent(ctx, "impersonation.ended",
		attribute.String("admin.id", original.ID),
		attribute.String("target.id", actx.UserID),
	)
	s.logger.Info("impersonation ended",
		"admin_id", original.ID, "target_id", actx.UserID)

	return sessionResponse(original, token, expiresAt), nil
}

type NewUserInput struct {
	Name      string
	Email     string
	Password  string
	Role      string
	Plan      string
	PlanValue float64
}

func (s *Service) CreateUser(
	ctx context.Context,
	actor *middleware.ActingContext,
	in NewUserInput,
) (*user.User, error) {
	ctx, span := core.StartSpan(ctx, "admin.create_user",
		attribute.String("actor.id", actor.UserID),
	)
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Role = cmp.Or(in.Role, user.RoleUser)
	in.Plan = cmp.Or(in.Plan, user.PlanFree)

	switch {
	case in.Name == "":
		return nil, core.Invalid("name is required")
	case in.Email == "":
		return nil, core.Invalid("email is required")
	case !user.ValidRole(in.Role):
		return nil, core.Invalid("invalid role %q", in.Role)
	case !user.ValidPlan(in.Plan):
		return nil, core.Invalid("invalid plan %q", in.Plan)
	case in.PlanValue < 0:
		return nil, core.Invalid("plan value must not be negative")
	case len(in.Password) < minPasswordLength:
		return nil, core.Invalid("password must be at least %d characters", minPasswordLength)
	}

	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created := &user.User{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: passwordHash,
		Role:         in.Role,
		Status:       user.StatusActive,
		Plan:         in.Plan,
		PlanValue:    in.PlanValue,
		PlanStatus:   user.PlanStatusActive,
	}

	var entry *audit.Entry

	err = s.uow.Do(ctx, func(repos Repositories) error {
		exists, err := repos.Users.ExistsByEmail(ctx, created.Email, "")
		if err != nil {
			return err
		}
		if exists {
			return core.ErrDuplicateKey
		}

		if err := repos.Users.Create(ctx, created); err != nil {
			return err
		}

		entry, err = repos.Audit.Record(ctx, actorOf(actor),
			audit.ActionCreateUser, created.ID, created.Email,
			audit.Details{"role": created.Role, "plan": created.Plan})
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "create user", err)
	}

	s.committed(ctx, entry)
	return created, nil
}

type ProfileChange struct {
	Name  *string
	Email *string
}

func (s *Service) UpdateProfile(
	ctx context.Context,
	actor *middleware.ActingContext,
	targetID string,
	change ProfileChange,
) (*user.User, error) {
	ctx, span := core.StartSpan(ctx, "admin.update_profile",
		attribute.String("actor.id", actor.UserID),
		attribute.String("target.id", targetID),
	)
	defer span.End()

	var updated *user.User
	var entry *audit.Entry

	err := s.uow.Do(ctx, func(repos Repositories) error {
		target, err := repos.Users.GetByID(ctx, targetID)
		if err != nil {
			return err
		}

		var patch user.Patch
		details := audit.Details{}

		if change.Name != nil {
			name := strings.TrimSpace(*change.Name)
			if name == "" {
				return core.Invalid("name must not be empty")
			}
			details["old_name"] = target.Name
			details["new_name"] = name
			patch.Name = &name
		}

		if change.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*change.Email))
			if email == "" {
				return core.Invalid("email must not be empty")
			}
			exists, err := repos.Users.ExistsByEmail(ctx, email, targetID)
			if err != nil {
				return err
			}
			if exists {
				return core.ErrDuplicateKey
			}
			details["old_email"] = target.Email
			details["new_email"] = email
			patch.Email = &email
		}

		updated, err = repos.Users.Update(ctx, targetID, patch)
		if err != nil {
			return err
		}

		entry, err = repos.Audit.Record(ctx, actorOf(actor),
			audit.ActionUpdateProfile, target.ID, target.Email, details)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "update profile", err)
	}

	s.committed(ctx, entry)
	return updated, nil
}

func (s *Service) ResetPassword(
	ctx context.Context,
	actor *middleware.ActingContext,
	targetID, newPassword string,
) error {
	ctx, span := core.StartSpan(ctx, "admin.reset_password",
		attribute.String("actor.id", actor.UserID),
		attribute.String("target.id", targetID),
	)
	defer span.End()

	if len(newPassword) < minPasswordLength {
		return core.Invalid("password must be at least %d characters", minPasswordLength)
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	var entry *audit.Entry

	err = s.uow.Do(ctx, func(repos Repositories) error {
		target, err := repos.Users.GetByID(ctx, targetID)
		if err != nil {
			return err
		}

		if _, err := repos.Users.Update(ctx, targetID, user.Patch{PasswordHash: &passwordHash}); err != nil {
			return err
		}

		entry, err = repos.Audit.Record(ctx, actorOf(actor),
			audit.ActionResetPassword, target.ID, target.Email, audit.Details{})
		return err
	})
	if err != nil {
		return s.fail(ctx, "reset password", err)
	}

	s.committed(ctx, entry)
	return nil
}

// DeleteUser removes the user and every record they own. The sole
// remaining SUPER_ADMIN cannot be deleted.
func (s *Service) DeleteUser(
	ctx context.Context,
	actor *middleware.ActingContext,
	targetID string,
) error {
	ctx, span := core.StartSpan(ctx, "admin.delete_user",
		attribute.String("actor.id", actor.UserID),
		attribute.String("target.id", targetID),
	)
	defer span.End()

	var entry *audit.Entry

	err := s.uow.Do(ctx, func(repos Repositories) error {
		superAdmins, err := repos.Users.LockSuperAdmins(ctx)
		if err != nil {
			return err
		}

		target, err := repos.Users.GetByID(ctx, targetID)
		if err != nil {
			return err
		}

		if target.IsSuperAdmin() && superAdmins <= 1 {
			return core.Deny(core.ReasonLastSuperAdmin)
		}

		for _, owned := range repos.Owned {
			if _, err := owned.DeleteByUser(ctx, targetID); err != nil {
				return err
			}
		}

		if err := repos.Users.Delete(ctx, targetID); err != nil {
			return err
		}

		entry, err = repos.Audit.Record(ctx, actorOf(actor),
			audit.ActionDeleteUser, target.ID, target.Email,
			audit.Details{"name": target.Name})
		return err
	})
	if err != nil {
		return s.fail(ctx, "delete user", err)
	}

	s.committed(ctx, entry)
	return nil
}

func (s *Service) Check(actx *middleware.ActingContext) CheckResponse {
	return CheckResponse{
		IsAdmin:      actx.HasRole(user.RoleAdmin, user.RoleSuperAdmin),
		IsSuperAdmin: actx.HasRole(user.RoleSuperAdmin),
		Role:         actx.Role,
	}
}

func (s *Service) ListUsers(
	ctx context.Context,
	params user.ListUsersParams,
) ([]user.User, int, error) {
	users, total, err := s.read.Users.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func (s *Service) GetUserDetail(
	ctx context.Context,
	id string,
) (*UserDetailResponse, error) {
	u, err := s.read.Users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	var stats UserStats
	if stats.ClientsCount, err = s.read.Clients.CountByUser(ctx, id); err != nil {
		return nil, fmt.Errorf("count clients: %w", err)
	}
	if stats.LeadsCount, err = s.read.Leads.CountByUser(ctx, id); err != nil {
		return nil, fmt.Errorf("count leads: %w", err)
	}
	if stats.TasksCount, err = s.read.Tasks.CountByUser(ctx, id); err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}
	if stats.PaymentsTotal, err = s.read.Payments.SumPaidByUser(ctx, id); err != nil {
		return nil, fmt.Errorf("sum payments: %w", err)
	}

	return &UserDetailResponse{
		UserResponse: user.ToUserResponse(u),
		Stats:        stats,
	}, nil
}

func (s *Service) Stats(ctx context.Context) (*StatsResponse, error) {
	agg, err := s.read.Users.Aggregate(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregate users: %w", err)
	}

	byPlan := make(map[string]int, len(user.Plans))
	for _, plan := range user.Plans {
		byPlan[plan] = agg.ByPlan[plan]
	}

	resp := &StatsResponse{
		TotalUsers:   agg.Total,
		ActiveUsers:  agg.Active,
		BlockedUsers: agg.Blocked,
		UsersByPlan:  byPlan,
		MRR:          agg.MRR,
		OverdueCount: agg.OverdueCount,
	}

	if resp.TotalClients, err = s.read.Clients.CountAll(ctx); err != nil {
		return nil, fmt.Errorf("count clients: %w", err)
	}
	if resp.TotalLeads, err = s.read.Leads.CountAll(ctx); err != nil {
		return nil, fmt.Errorf("count leads: %w", err)
	}
	if resp.TotalTasks, err = s.read.Tasks.CountAll(ctx); err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}

	return resp, nil
}

// Events merges the newest users, clients and audit entries into one
// feed, newest first.
func (s *Service) Events(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = defaultEventLimit
	}
	limit = min(limit, maxEventLimit)

	users, err := s.read.Users.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent users: %w", err)
	}
	clients, err := s.read.Clients.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent clients: %w", err)
	}
	entries, err := s.read.Audit.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent audit entries: %w", err)
	}

	events := make([]Event, 0, len(users)+len(clients)+len(entries))
	for _, u := range users {
		events = append(events, Event{
			Type:      EventNewUser,
			Message:   "New user: " + u.Name,
			Email:     u.Email,
			Timestamp: u.CreatedAt,
		})
	}
	for _, c := range clients {
		events = append(events, Event{
			Type:      EventNewClient,
			Message:   "New client: " + c.Name,
			Timestamp: c.CreatedAt,
		})
	}
	for _, e := range entries {
		events = append(events, Event{
			Type:      EventAudit,
			Message:   e.Action + ": " + e.TargetEmail,
			Actor:     e.ActorEmail,
			Timestamp: e.CreatedAt,
		})
	}

	slices.SortStableFunc(events, func(a, b Event) int {
		return b.Timestamp.Compare(a.Timestamp)
	})

	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (s *Service) fail(ctx context.Context, op string, err error) error {
	core.SetSpanError(ctx, err)
	return fmt.Errorf("%s: %w", op, err)
}

// committed runs after the transaction holding entry has been committed.
func (s *Service) committed(ctx context.Context, entry *audit.Entry) {
	if entry == nil {
		return
	}

	s.logger.Info("privileged action",
		"action", entry.Action,
		"actor_id", entry.ActorID,
		"target_id", entry.TargetID,
	)

	if err := s.notifier.Publish(ctx, *entry); err != nil {
		s.logger.Warn("publish audit entry failed",
			"audit_id", entry.ID, "error", err)
	}
}

func sessionResponse(u *user.User, token string, expiresAt time.Time) *SessionResponse {
	return &SessionResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User: SessionUser{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			Role:      u.Role,
			Status:    u.Status,
			CreatedAt: u.CreatedAt,
		},
	}
}
