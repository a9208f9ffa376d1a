// AngelaMos | 2026
// service_test.go

package admin_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/agenciasuportapoio350-spec/part2/internal/admin"
	"github.com/agenciasuportapoio350-spec/part2/internal/audit"
	"github.com/agenciasuportapoio350-spec/part2/internal/auth"
	"github.com/agenciasuportapoio350-spec/part2/internal/client"
	"github.com/agenciasuportapoio350-spec/part2/internal/config"
	"github.com/agenciasuportapoio350-spec/part2/internal/core"
	"github.com/agenciasuportapoio350-spec/part2/internal/lead"
	"github.com/agenciasuportapoio350-spec/part2/internal/memstore"
	"github.com/agenciasuportapoio350-spec/part2/internal/middleware"
	"github.com/agenciasuportapoio350-spec/part2/internal/payment"
	"github.com/agenciasuportapoio350-spec/part2/internal/task"
	"github.com/agenciasuportapoio350-spec/part2/internal/user"
)

var fastHasher = core.Argon2Hasher{Params: core.Argon2Params{
	Memory: 1024, Time: 1, Threads: 1, KeyLen: 32, SaltLen: 16,
}}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type recordingNotifier struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (n *recordingNotifier) Publish(_ context.Context, e audit.Entry) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.entries = append(n.entries, e)
	return nil
}

func (n *recordingNotifier) Close() error { return nil }

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.entries)
}

type env struct {
	ctx      context.Context
	store    *memstore.Store
	tokens   *auth.JWTManager
	notifier *recordingNotifier
	svc      *admin.Service
	super    *user.User
	actor    *middleware.ActingContext
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()

	created, err := admin.EnsureSuperAdmin(ctx, store.Users(), fastHasher, config.BootstrapConfig{
		SuperAdminName:     "Root",
		SuperAdminEmail:    "root@rankflow.test",
		SuperAdminPassword: "rootpass",
	}, discard)
	if err != nil || !created {
		t.Fatalf("EnsureSuperAdmin = %v, %v", created, err)
	}
	super, err := store.Users().GetByEmail(ctx, "root@rankflow.test")
	if err != nil {
		t.Fatal(err)
	}

	tokens, err := auth.NewJWTManager(config.JWTConfig{
		Secret:     strings.Repeat("s", 32),
		Expiration: time.Hour,
	})
	if err != nil {
		t.Fatal(err)
	}

	notifier := &recordingNotifier{}
	svc := admin.NewService(admin.Deps{
		UnitOfWork: store.UnitOfWork(),
		Readers:    store.Readers(),
		Tokens:     tokens,
		Hasher:     fastHasher,
		Notifier:   notifier,
		Logger:     discard,
	})

	return &env{
		ctx:      ctx,
		store:    store,
		tokens:   tokens,
		notifier: notifier,
		svc:      svc,
		super:    super,
		actor: &middleware.ActingContext{
			UserID: super.ID,
			Email:  super.Email,
			Role:   user.RoleSuperAdmin,
			Status: user.StatusActive,
		},
	}
}

func (e *env) addUser(t *testing.T, email, role string) *user.User {
	t.Helper()
	u := &user.User{
		ID:         uuid.New().String(),
		Name:       "Member " + email,
		Email:      email,
		Role:       role,
		Status:     user.StatusActive,
		Plan:       user.PlanFree,
		PlanStatus: user.PlanStatusActive,
	}
	if err := e.store.Users().Create(e.ctx, u); err != nil {
		t.Fatal(err)
	}
	return u
}

func (e *env) auditActions(t *testing.T) []string {
	t.Helper()
	entries, _, err := e.store.Audit().List(e.ctx, audit.ListParams{Page: 1, PageSize: 200})
	if err != nil {
		t.Fatal(err)
	}
	actions := make([]string, 0, len(entries))
	for _, entry := range entries {
		actions = append(actions, entry.Action)
	}
	return actions
}

func (e *env) status(t *testing.T, id string) string {
	t.Helper()
	u, err := e.store.Users().GetByID(e.ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	return u.Status
}

func TestSetStatus(t *testing.T) {
	e := newEnv(t)
	member := e.addUser(t, "member@rankflow.test", user.RoleUser)

	_, err := e.svc.SetStatus(e.ctx, e.actor, e.super.ID, user.StatusBlocked)
	if core.DenialReason(err) != core.ReasonCannotBlockSuperAdmin {
		t.Fatalf("blocking super admin = %v", err)
	}
	if got := e.auditActions(t); len(got) != 0 {
		t.Fatalf("denied action was audited: %v", got)
	}

	updated, err := e.svc.SetStatus(e.ctx, e.actor, member.ID, user.StatusBlocked)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if updated.Status != user.StatusBlocked {
		t.Errorf("status = %q", updated.Status)
	}

	if _, err := e.svc.SetStatus(e.ctx, e.actor, member.ID, "frozen"); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("invalid status = %v", err)
	}

	if _, err := e.svc.SetStatus(e.ctx, e.actor, e.super.ID, user.StatusPaused); err != nil {
		t.Errorf("pausing a super admin should be allowed: %v", err)
	}

	got := e.auditActions(t)
	want := []string{audit.ActionPauseUser, audit.ActionBlockUser}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("audit = %v, want %v", got, want)
	}
	if e.notifier.count() != 2 {
		t.Errorf("notifier saw %d entries, want 2", e.notifier.count())
	}
}

func TestLastSuperAdminIsProtected(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.SetRole(e.ctx, e.actor, e.super.ID, user.RoleAdmin)
	if core.DenialReason(err) != core.ReasonLastSuperAdmin {
		t.Fatalf("demoting last super admin = %v", err)
	}

	err = e.svc.DeleteUser(e.ctx, e.actor, e.super.ID)
	if core.DenialReason(err) != core.ReasonLastSuperAdmin {
		t.Fatalf("deleting last super admin = %v", err)
	}

	second := e.addUser(t, "second@rankflow.test", user.RoleUser)
	if _, err := e.svc.SetRole(e.ctx, e.actor, second.ID, user.RoleSuperAdmin); err != nil {
		t.Fatalf("promote: %v", err)
	}

	demoted, err := e.svc.SetRole(e.ctx, e.actor, e.super.ID, user.RoleAdmin)
	if err != nil {
		t.Fatalf("demote with a second super admin: %v", err)
	}
	if demoted.Role != user.RoleAdmin {
		t.Errorf("role = %q", demoted.Role)
	}

	err = e.svc.DeleteUser(e.ctx, e.actor, second.ID)
	if core.DenialReason(err) != core.ReasonLastSuperAdmin {
		t.Fatalf("deleting the remaining super admin = %v", err)
	}

	got := e.auditActions(t)
	if len(got) != 2 {
		t.Errorf("audit = %v, want two change_role entries", got)
	}
}

func TestImpersonation(t *testing.T) {
	e := newEnv(t)
	member := e.addUser(t, "member@rankflow.test", user.RoleUser)

	_, err := e.svc.Impersonate(e.ctx, e.actor, e.super.ID)
	if core.DenialReason(err) != core.ReasonCannotImpersonateSuperAdmin {
		t.Fatalf("impersonating super admin = %v", err)
	}

	session, err := e.svc.Impersonate(e.ctx, e.actor, member.ID)
	if err != nil {
		t.Fatalf("Impersonate: %v", err)
	}
	if !session.IsImpersonating || session.User.ID != member.ID {
		t.Fatalf("session = %+v", session)
	}

	claims, err := e.tokens.Validate(session.AccessToken)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != member.ID || claims.OriginalUserID != e.super.ID {
		t.Fatalf("claims = %+v", claims)
	}

	if _, err := e.svc.ExitImpersonate(e.ctx, e.actor); core.DenialReason(err) != core.ReasonNotImpersonating {
		t.Fatalf("exit without impersonation = %v", err)
	}

	back, err := e.svc.ExitImpersonate(e.ctx, &middleware.ActingContext{
		UserID:          member.ID,
		Role:            user.RoleUser,
		IsImpersonating: true,
		OriginalUserID:  e.super.ID,
	})
	if err != nil {
		t.Fatalf("ExitImpersonate: %v", err)
	}
	if back.User.ID != e.super.ID || back.IsImpersonating {
		t.Fatalf("exit session = %+v", back)
	}
	backClaims, err := e.tokens.Validate(back.AccessToken)
	if err != nil || backClaims.IsImpersonation() {
		t.Fatalf("exit token claims = %+v, %v", backClaims, err)
	}

	got := e.auditActions(t)
	if len(got) != 1 || got[0] != audit.ActionImpersonate {
		t.Errorf("audit = %v, want one impersonate entry", got)
	}
}

func seedRecords(t *testing.T, e *env, owner string) {
	t.Helper()
	for _, name := range []string{"Bakery", "Garage"} {
		if err := e.store.Leads().Create(e.ctx, &lead.Lead{
			ID: uuid.New().String(), UserID: owner, Name: name, Stage: lead.StageNew,
		}); err != nil {
			t.Fatal(err)
		}
	}
	clientID := uuid.New().String()
	if err := e.store.Clients().Create(e.ctx, &client.Client{
		ID: clientID, UserID: owner, Name: "Salon", Checklist: client.DefaultChecklist(),
	}); err != nil {
		t.Fatal(err)
	}
	if err := e.store.Tasks().Create(e.ctx, &task.Task{
		ID: uuid.New().String(), UserID: owner, Title: "Call", TaskType: task.TypeOther,
		DueDate: time.Now().Add(time.Hour), ClientID: &clientID,
	}); err != nil {
		t.Fatal(err)
	}
	if err := e.store.Payments().Create(e.ctx, &payment.Payment{
		ID: uuid.New().String(), UserID: owner, ClientID: clientID, Description: "Setup",
		Amount: 500, PaymentType: payment.TypeOneTime, DueDate: time.Now(), Paid: true,
	}); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	e := newEnv(t)
	member := e.addUser(t, "member@rankflow.test", user.RoleUser)
	bystander := e.addUser(t, "other@rankflow.test", user.RoleUser)
	seedRecords(t, e, member.ID)
	seedRecords(t, e, bystander.ID)

	detail, err := e.svc.GetUserDetail(e.ctx, member.ID)
	if err != nil {
		t.Fatal(err)
	}
	if detail.Stats.LeadsCount != 2 || detail.Stats.PaymentsTotal != 500 {
		t.Fatalf("stats before delete = %+v", detail.Stats)
	}

	if err := e.svc.DeleteUser(e.ctx, e.actor, member.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	if _, err := e.store.Users().GetByID(e.ctx, member.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("user still present: %v", err)
	}
	for name, repo := range map[string]admin.OwnedRecords{
		"leads":    e.store.Leads(),
		"clients":  e.store.Clients(),
		"tasks":    e.store.Tasks(),
		"payments": e.store.Payments(),
	} {
		n, err := repo.CountByUser(e.ctx, member.ID)
		if err != nil || n != 0 {
			t.Errorf("%s left behind: %d, %v", name, n, err)
		}
		if n, _ := repo.CountByUser(e.ctx, bystander.ID); n == 0 {
			t.Errorf("%s of another user were purged", name)
		}
	}

	got := e.auditActions(t)
	if len(got) != 1 || got[0] != audit.ActionDeleteUser {
		t.Errorf("audit = %v", got)
	}

	if err := e.svc.DeleteUser(e.ctx, e.actor, member.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second delete = %v, want not found", err)
	}
}

func TestAuditFailureRollsBack(t *testing.T) {
	e := newEnv(t)
	member := e.addUser(t, "member@rankflow.test", user.RoleUser)
	seedRecords(t, e, member.ID)

	e.store.FailAudit(errors.New("disk full"))

	_, err := e.svc.SetStatus(e.ctx, e.actor, member.ID, user.StatusBlocked)
	if !errors.Is(err, core.ErrStoreUnavailable) {
		t.Fatalf("SetStatus = %v, want store unavailable", err)
	}
	if got := e.status(t, member.ID); got != user.StatusActive {
		t.Errorf("status changed despite failed audit: %q", got)
	}

	if err := e.svc.DeleteUser(e.ctx, e.actor, member.ID); !errors.Is(err, core.ErrStoreUnavailable) {
		t.Fatalf("DeleteUser = %v", err)
	}
	if n, _ := e.store.Leads().CountByUser(e.ctx, member.ID); n != 2 {
		t.Errorf("leads after failed delete = %d, want 2", n)
	}

	if _, err := e.svc.Impersonate(e.ctx, e.actor, member.ID); !errors.Is(err, core.ErrStoreUnavailable) {
		t.Errorf("Impersonate = %v, want store unavailable", err)
	}

	if e.notifier.count() != 0 {
		t.Errorf("rolled back entries were published: %d", e.notifier.count())
	}

	e.store.FailAudit(nil)
	if _, err := e.svc.SetStatus(e.ctx, e.actor, member.ID, user.StatusBlocked); err != nil {
		t.Fatalf("after recovery: %v", err)
	}
	if got := e.auditActions(t); len(got) != 1 {
		t.Errorf("audit = %v, want exactly one entry", got)
	}
}

func TestCreateUserAndProfile(t *testing.T) {
	e := newEnv(t)

	created, err := e.svc.CreateUser(e.ctx, e.actor, admin.NewUserInput{
		Name: "Bia", Email: " Bia@RankFlow.test ", Password: "secret123",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if created.Email != "bia@rankflow.test" || created.Role != user.RoleUser || created.Plan != user.PlanFree {
		t.Fatalf("created = %+v", created)
	}

	_, err = e.svc.CreateUser(e.ctx, e.actor, admin.NewUserInput{
		Name: "Bia 2", Email: "bia@rankflow.test", Password: "secret123",
	})
	if !errors.Is(err, core.ErrDuplicateKey) {
		t.Fatalf("duplicate CreateUser = %v", err)
	}

	_, err = e.svc.CreateUser(e.ctx, e.actor, admin.NewUserInput{
		Name: "Short", Email: "short@rankflow.test", Password: "123",
	})
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("short password = %v", err)
	}

	taken := e.super.Email
	_, err = e.svc.UpdateProfile(e.ctx, e.actor, created.ID, admin.ProfileChange{Email: &taken})
	if !errors.Is(err, core.ErrDuplicateKey) {
		t.Fatalf("profile email clash = %v", err)
	}

	name := "Beatriz"
	updated, err := e.svc.UpdateProfile(e.ctx, e.actor, created.ID, admin.ProfileChange{Name: &name})
	if err != nil || updated.Name != "Beatriz" {
		t.Fatalf("UpdateProfile = %+v, %v", updated, err)
	}

	if err := e.svc.ResetPassword(e.ctx, e.actor, created.ID, "brand-new-pass"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	stored, err := e.store.Users().GetByID(e.ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if ok, _, _ := fastHasher.Verify("brand-new-pass", &stored.PasswordHash); !ok {
		t.Error("reset password does not verify")
	}

	got := e.auditActions(t)
	want := []string{audit.ActionResetPassword, audit.ActionUpdateProfile, audit.ActionCreateUser}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("audit = %v, want %v", got, want)
	}
}

func TestSetPlan(t *testing.T) {
	e := newEnv(t)
	member := e.addUser(t, "member@rankflow.test", user.RoleUser)

	updated, err := e.svc.SetPlan(e.ctx, e.actor, member.ID, admin.PlanChange{
		Plan: user.PlanPro, PlanValue: 197, PlanStatus: user.PlanStatusActive,
	})
	if err != nil {
		t.Fatalf("SetPlan: %v", err)
	}
	if updated.Plan != user.PlanPro || updated.LastPaymentAt == nil {
		t.Fatalf("updated = %+v", updated)
	}

	_, err = e.svc.SetPlan(e.ctx, e.actor, member.ID, admin.PlanChange{
		Plan: "platinum", PlanStatus: user.PlanStatusActive,
	})
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("invalid plan = %v", err)
	}

	stats, err := e.svc.Stats(e.ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalUsers != 2 || stats.UsersByPlan[user.PlanPro] != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestEnsureSuperAdminIsIdempotent(t *testing.T) {
	e := newEnv(t)

	created, err := admin.EnsureSuperAdmin(e.ctx, e.store.Users(), fastHasher, config.BootstrapConfig{
		SuperAdminEmail:    "ROOT@rankflow.test",
		SuperAdminPassword: "whatever",
	}, discard)
	if err != nil || created {
		t.Fatalf("second EnsureSuperAdmin = %v, %v", created, err)
	}

	n, err := e.store.Users().CountByRole(e.ctx, user.RoleSuperAdmin)
	if err != nil || n != 1 {
		t.Fatalf("super admins = %d, %v", n, err)
	}
}

func TestEventsNewestFirst(t *testing.T) {
	e := newEnv(t)
	member := e.addUser(t, "member@rankflow.test", user.RoleUser)
	if _, err := e.svc.SetStatus(e.ctx, e.actor, member.ID, user.StatusBlocked); err != nil {
		t.Fatal(err)
	}

	events, err := e.svc.Events(e.ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 3 {
		t.Fatalf("events = %+v", events)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp.After(events[i-1].Timestamp) {
			t.Fatalf("events out of order: %+v", events)
		}
	}
}
