// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenciasuportapoio350-spec/part2/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, id string, patch Patch) (*User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	CountByRole(ctx context.Context, role string) (int, error)
	LockSuperAdmins(ctx context.Context) (int, error)
	Aggregate(ctx context.Context) (*Aggregate, error)
	Recent(ctx context.Context, limit int) ([]User, error)
}

const userColumns = `id, name, email, password_hash, role, status, plan,
	plan_value, plan_status, plan_expires_at, last_payment_at, last_login_at,
	created_at, updated_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, role, status, plan,
		                   plan_value, plan_status, plan_expires_at, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Status,
		user.Plan,
		user.PlanValue,
		user.PlanStatus,
		user.PlanExpiresAt,
		user.LastLoginAt,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return core.StoreError("create user", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, core.StoreError("get user", err)
	}

	return &user, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`

	var user User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, core.StoreError("get user by email", err)
	}

	return &user, nil
}

func (r *repository) Update(
	ctx context.Context,
	id string,
	patch Patch,
) (*User, error) {
	if patch.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	var sets []string
	args := []any{id}

	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.Email != nil {
		set("email", *patch.Email)
	}
	if patch.PasswordHash != nil {
		set("password_hash", *patch.PasswordHash)
	}
	if patch.Role != nil {
		set("role", *patch.Role)
	}
	if patch.Status != nil {
		set("status", *patch.Status)
	}
	if patch.Plan != nil {
		set("plan", *patch.Plan)
	}
	if patch.PlanValue != nil {
		set("plan_value", *patch.PlanValue)
	}
	if patch.PlanStatus != nil {
		set("plan_status", *patch.PlanStatus)
	}
	if patch.PlanExpiresAt != nil {
		set("plan_expires_at", *patch.PlanExpiresAt)
	}
	if patch.LastPaymentAt != nil {
		set("last_payment_at", *patch.LastPaymentAt)
	}
	if patch.LastLoginAt != nil {
		set("last_login_at", *patch.LastLoginAt)
	}

	query := fmt.Sprintf(`
		UPDATE users
		SET %s, updated_at = NOW()
		WHERE id = $1
		RETURNING %s`,
		strings.Join(sets, ", "), userColumns)

	var user User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		return nil, core.StoreError("update user", err)
	}

	return &user, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return core.StoreError("delete user", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return core.StoreError("delete user", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete user: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()

	conditions := []string{"TRUE"}
	var args []any
	argIdx := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(email ILIKE $%d OR name ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, params.Status)
		argIdx++
	}

	if params.Plan != "" {
		conditions = append(conditions, fmt.Sprintf("plan = $%d", argIdx))
		args = append(args, params.Plan)
		argIdx++
	}

	if params.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argIdx))
		args = append(args, params.Role)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM users WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, core.StoreError("count users", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		userColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, core.StoreError("list users", err)
	}

	return users, total, nil
}

func (r *repository) ExistsByEmail(
	ctx context.Context,
	email, excludeID string,
) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM users
			WHERE LOWER(email) = LOWER($1) AND id <> $2
		)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email, excludeID); err != nil {
		return false, core.StoreError("check email exists", err)
	}

	return exists, nil
}

func (r *repository) CountByRole(ctx context.Context, role string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM users WHERE role = $1`, role)
	if err != nil {
		return 0, core.StoreError("count users by role", err)
	}
	return count, nil
}

// LockSuperAdmins row-locks every SUPER_ADMIN for the rest of the
// enclosing transaction and returns how many there are. Concurrent
// demotions and deletes serialize on these locks.
func (r *repository) LockSuperAdmins(ctx context.Context) (int, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids,
		`SELECT id FROM users WHERE role = $1 ORDER BY id FOR UPDATE`,
		RoleSuperAdmin)
	if err != nil {
		return 0, core.StoreError("lock super admins", err)
	}
	return len(ids), nil
}

func (r *repository) Aggregate(ctx context.Context) (*Aggregate, error) {
	query := `
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE status = 'active') AS active,
		       COUNT(*) FILTER (WHERE status = 'blocked') AS blocked,
		       COALESCE(SUM(plan_value) FILTER (
		           WHERE plan_status = 'active' AND plan_value > 0), 0) AS mrr,
		       COUNT(*) FILTER (WHERE plan_status = 'overdue') AS overdue_count
		FROM users`

	var agg Aggregate
	if err := r.db.GetContext(ctx, &agg, query); err != nil {
		return nil, core.StoreError("aggregate users", err)
	}

	var rows []struct {
		Plan  string `db:"plan"`
		Count int    `db:"count"`
	}
	err := r.db.SelectContext(ctx, &rows,
		`SELECT plan, COUNT(*) AS count FROM users GROUP BY plan`)
	if err != nil {
		return nil, core.StoreError("count users by plan", err)
	}

	agg.ByPlan = make(map[string]int, len(rows))
	for _, row := range rows {
		agg.ByPlan[row.Plan] = row.Count
	}

	return &agg, nil
}

func (r *repository) Recent(ctx context.Context, limit int) ([]User, error) {
	query := `SELECT ` + userColumns + `
		FROM users ORDER BY created_at DESC LIMIT $1`

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, limit); err != nil {
		return nil, core.StoreError("recent users", err)
	}
	return users, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
