// AngelaMos | 2026
// postgres_test.go

package admin_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/agenciasuportapoio350-spec/part2/internal/admin"
	"github.com/agenciasuportapoio350-spec/part2/internal/audit"
	"github.com/agenciasuportapoio350-spec/part2/internal/auth"
	"github.com/agenciasuportapoio350-spec/part2/internal/client"
	"github.com/agenciasuportapoio350-spec/part2/internal/config"
	"github.com/agenciasuportapoio350-spec/part2/internal/core"
	"github.com/agenciasuportapoio350-spec/part2/internal/lead"
	"github.com/agenciasuportapoio350-spec/part2/internal/middleware"
	"github.com/agenciasuportapoio350-spec/part2/internal/payment"
	"github.com/agenciasuportapoio350-spec/part2/internal/task"
	"github.com/agenciasuportapoio350-spec/part2/internal/user"
)

// setupPostgres connects to DATABASE_URL, applies the schema and empties
// every table. Tests are skipped when no database is configured.
func setupPostgres(t *testing.T) *core.Database {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := core.NewDatabase(ctx, config.DatabaseConfig{
		URL:          url,
		MaxOpenConns: 10,
		MaxIdleConns: 5,
	})
	if err != nil {
		t.Skipf("connect to test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := db.DB.ExecContext(ctx,
		`TRUNCATE users, audit_logs, leads, clients, tasks, payments`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return db
}

type failingAudit struct {
	audit.Repository
}

func (failingAudit) Insert(context.Context, *audit.Entry) error {
	return errors.New("audit table unavailable")
}

func postgresService(t *testing.T, db *core.Database, failAudit bool) *admin.Service {
	t.Helper()

	tokens, err := auth.NewJWTManager(config.JWTConfig{
		Secret:     strings.Repeat("s", 32),
		Expiration: time.Hour,
	})
	if err != nil {
		t.Fatal(err)
	}

	uow := admin.NewTxUnitOfWork(db.DB, func(tx core.DBTX) admin.Repositories {
		var auditRepo audit.Repository = audit.NewRepository(tx)
		if failAudit {
			auditRepo = failingAudit{auditRepo}
		}
		return admin.Repositories{
			Users: user.NewRepository(tx),
			Audit: audit.NewRecorder(auditRepo),
			Owned: []admin.OwnedRecords{
				lead.NewRepository(tx),
				client.NewRepository(tx),
				task.NewRepository(tx),
				payment.NewRepository(tx),
			},
		}
	})

	return admin.NewService(admin.Deps{
		UnitOfWork: uow,
		Readers: admin.Readers{
			Users:    user.NewRepository(db.DB),
			Audit:    audit.NewRepository(db.DB),
			Leads:    lead.NewRepository(db.DB),
			Clients:  client.NewRepository(db.DB),
			Tasks:    task.NewRepository(db.DB),
			Payments: payment.NewRepository(db.DB),
		},
		Tokens:   tokens,
		Hasher:   fastHasher,
		Notifier: &recordingNotifier{},
		Logger:   discard,
	})
}

func createUser(t *testing.T, repo user.Repository, email, role string) *user.User {
	t.Helper()
	u := &user.User{
		ID:         uuid.New().String(),
		Name:       email,
		Email:      email,
		Role:       role,
		Status:     user.StatusActive,
		Plan:       user.PlanFree,
		PlanStatus: user.PlanStatusActive,
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("create %s: %v", email, err)
	}
	return u
}

func acting(u *user.User) *middleware.ActingContext {
	return &middleware.ActingContext{UserID: u.ID, Email: u.Email, Role: u.Role, Status: u.Status}
}

func TestPostgresConcurrentDemotionsKeepOneSuperAdmin(t *testing.T) {
	db := setupPostgres(t)
	users := user.NewRepository(db.DB)
	svc := postgresService(t, db, false)

	a := createUser(t, users, "a@rankflow.test", user.RoleSuperAdmin)
	b := createUser(t, users, "b@rankflow.test", user.RoleSuperAdmin)

	start := make(chan struct{})
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, pair := range [][2]*user.User{{a, b}, {b, a}} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, errs[i] = svc.SetRole(context.Background(), acting(pair[0]), pair[1].ID, user.RoleUser)
		}()
	}
	close(start)
	wg.Wait()

	var denied, succeeded int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case core.DenialReason(err) == core.ReasonLastSuperAdmin:
			denied++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || denied != 1 {
		t.Fatalf("succeeded=%d denied=%d, want 1 and 1", succeeded, denied)
	}

	count, err := users.CountByRole(context.Background(), user.RoleSuperAdmin)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("super admins = %d, want 1", count)
	}
}

func TestPostgresLockSuperAdmins(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	users := user.NewRepository(db.DB)

	createUser(t, users, "s1@rankflow.test", user.RoleSuperAdmin)
	createUser(t, users, "s2@rankflow.test", user.RoleSuperAdmin)
	createUser(t, users, "plain@rankflow.test", user.RoleUser)

	err := core.InTx(ctx, db.DB, func(tx *sqlx.Tx) error {
		n, err := user.NewRepository(tx).LockSuperAdmins(ctx)
		if err != nil {
			return err
		}
		if n != 2 {
			t.Errorf("locked %d super admins, want 2", n)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}
}

func TestPostgresEmailUniqueIgnoresCase(t *testing.T) {
	db := setupPostgres(t)
	users := user.NewRepository(db.DB)

	createUser(t, users, "Dup@RankFlow.test", user.RoleUser)

	err := users.Create(context.Background(), &user.User{
		ID:         uuid.New().String(),
		Name:       "Dup",
		Email:      "dup@rankflow.TEST",
		Role:       user.RoleUser,
		Status:     user.StatusActive,
		Plan:       user.PlanFree,
		PlanStatus: user.PlanStatusActive,
	})
	if !errors.Is(err, core.ErrDuplicateKey) {
		t.Fatalf("Create(duplicate) = %v, want ErrDuplicateKey", err)
	}
}

func TestPostgresAuditFailureRollsBack(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	users := user.NewRepository(db.DB)

	super := createUser(t, users, "root@rankflow.test", user.RoleSuperAdmin)
	target := createUser(t, users, "target@rankflow.test", user.RoleUser)

	_, err := postgresService(t, db, true).SetStatus(ctx, acting(super), target.ID, user.StatusBlocked)
	if !errors.Is(err, core.ErrStoreUnavailable) {
		t.Fatalf("SetStatus = %v, want ErrStoreUnavailable", err)
	}

	got, err := users.GetByID(ctx, target.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != user.StatusActive {
		t.Fatalf("status = %q after failed audit, want active", got.Status)
	}

	if _, err := postgresService(t, db, false).SetStatus(ctx, acting(super), target.ID, user.StatusBlocked); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	entries, total, err := audit.NewRepository(db.DB).List(ctx, audit.ListParams{Action: audit.ActionBlockUser})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || entries[0].TargetID != target.ID {
		t.Fatalf("audit entries = %d %+v, want one block_user for the target", total, entries)
	}
}
