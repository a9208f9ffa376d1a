// AngelaMos | 2026
// repository.go

package task

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenciasuportapoio350-spec/part2/internal/core"
)

type Repository interface {
	Create(ctx context.Context, t *Task) error
	GetForUser(ctx context.Context, id, userID string) (*Task, error)
	List(ctx context.Context, userID string, filter Filter) ([]Task, error)
	Count(ctx context.Context, userID string, filter Filter) (int, error)
	Update(ctx context.Context, id, userID string, patch Patch) (*Task, error)
	Delete(ctx context.Context, id, userID string) error
	DeleteByClient(ctx context.Context, clientID, userID string) (int64, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	CountAll(ctx context.Context) (int, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

const taskColumns = `id, user_id, title, description, task_type, due_date,
	completed, client_id, client_name, lead_id, lead_name, created_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, t *Task) error {
	query := `
		INSERT INTO tasks (id, user_id, title, description, task_type, due_date,
		                   completed, client_id, client_name, lead_id, lead_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`

	err := r.db.QueryRowxContext(ctx, query,
		t.ID, t.UserID, t.Title, t.Description, t.TaskType, t.DueDate,
		t.Completed, t.ClientID, t.ClientName, t.LeadID, t.LeadName,
	).Scan(&t.CreatedAt)
	if err != nil {
		return core.StoreError("create task", err)
	}
	return nil
}

func (r *repository) GetForUser(ctx context.Context, id, userID string) (*Task, error) {
	var t Task
	err := r.db.GetContext(ctx, &t,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return nil, core.StoreError("get task", err)
	}
	return &t, nil
}

func whereFilter(userID string, f Filter) (string, []any) {
	conditions := []string{"user_id = $1"}
	args := []any{userID}

	if f.OpenOnly {
		conditions = append(conditions, "completed = FALSE")
	}
	if f.DueBefore != nil {
		args = append(args, *f.DueBefore)
		conditions = append(conditions, fmt.Sprintf("due_date < $%d", len(args)))
	}
	if f.TaskType != "" {
		args = append(args, f.TaskType)
		conditions = append(conditions, fmt.Sprintf("task_type = $%d", len(args)))
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

func (r *repository) List(ctx context.Context, userID string, filter Filter) ([]Task, error) {
	where, args := whereFilter(userID, filter)

	var tasks []Task
	err := r.db.SelectContext(ctx, &tasks,
		`SELECT `+taskColumns+` FROM tasks `+where+` ORDER BY due_date ASC`,
		args...)
	if err != nil {
		return nil, core.StoreError("list tasks", err)
	}
	return tasks, nil
}

func (r *repository) Count(ctx context.Context, userID string, filter Filter) (int, error) {
	where, args := whereFilter(userID, filter)

	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM tasks `+where, args...); err != nil {
		return 0, core.StoreError("count tasks", err)
	}
	return n, nil
}

func (r *repository) Update(
	ctx context.Context,
	id, userID string,
	patch Patch,
) (*Task, error) {
	if patch.IsEmpty() {
		return r.GetForUser(ctx, id, userID)
	}

	sets := []string{}
	args := []any{id, userID}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.TaskType != nil {
		add("task_type", *patch.TaskType)
	}
	if patch.DueDate != nil {
		add("due_date", *patch.DueDate)
	}
	if patch.Completed != nil {
		add("completed", *patch.Completed)
	}

	query := `UPDATE tasks SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 AND user_id = $2 RETURNING ` + taskColumns

	var t Task
	if err := r.db.GetContext(ctx, &t, query, args...); err != nil {
		return nil, core.StoreError("update task", err)
	}
	return &t, nil
}

func (r *repository) Delete(ctx context.Context, id, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return core.StoreError("delete task", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return core.StoreError("delete task", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete task: %w", core.ErrNotFound)
	}
	return nil
}

func (r *repository) DeleteByClient(
	ctx context.Context,
	clientID, userID string,
) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE client_id = $1 AND user_id = $2`, clientID, userID)
	if err != nil {
		return 0, core.StoreError("delete client tasks", err)
	}
	return result.RowsAffected()
}

func (r *repository) CountByUser(ctx context.Context, userID string) (int, error) {
	return r.Count(ctx, userID, Filter{})
}

func (r *repository) CountAll(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM tasks`); err != nil {
		return 0, core.StoreError("count tasks", err)
	}
	return n, nil
}

func (r *repository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = $1`, userID)
	if err != nil {
		return 0, core.StoreError("delete tasks", err)
	}
	return result.RowsAffected()
}
