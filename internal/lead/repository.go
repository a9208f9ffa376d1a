// AngelaMos | 2026
// repository.go

package lead

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenciasuportapoio350-spec/part2/internal/core"
)

type Repository interface {
	Create(ctx context.Context, l *Lead) error
	GetForUser(ctx context.Context, id, userID string) (*Lead, error)
	ListByUser(ctx context.Context, userID string) ([]Lead, error)
	Update(ctx context.Context, id, userID string, patch Patch) (*Lead, error)
	Delete(ctx context.Context, id, userID string) error
	NameOf(ctx context.Context, id, userID string) (string, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	CountAll(ctx context.Context) (int, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

const leadColumns = `id, user_id, name, email, phone, company, stage,
	contract_value, next_contact, reminder, notes, created_at, updated_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, l *Lead) error {
	query := `
		INSERT INTO leads (id, user_id, name, email, phone, company, stage,
		                   contract_value, next_contact, reminder, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		l.ID, l.UserID, l.Name, l.Email, l.Phone, l.Company, l.Stage,
		l.ContractValue, l.NextContact, l.Reminder, l.Notes,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return core.StoreError("create lead", err)
	}
	return nil
}

func (r *repository) GetForUser(ctx context.Context, id, userID string) (*Lead, error) {
	var l Lead
	err := r.db.GetContext(ctx, &l,
		`SELECT `+leadColumns+` FROM leads WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return nil, core.StoreError("get lead", err)
	}
	return &l, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]Lead, error) {
	var leads []Lead
	err := r.db.SelectContext(ctx, &leads,
		`SELECT `+leadColumns+` FROM leads WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, core.StoreError("list leads", err)
	}
	return leads, nil
}

func (r *repository) Update(
	ctx context.Context,
	id, userID string,
	patch Patch,
) (*Lead, error) {
	if patch.IsEmpty() {
		return r.GetForUser(ctx, id, userID)
	}

	sets := []string{"updated_at = NOW()"}
	args := []any{id, userID}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.Company != nil {
		add("company", *patch.Company)
	}
	if patch.Stage != nil {
		add("stage", *patch.Stage)
	}
	if patch.ContractValue != nil {
		add("contract_value", *patch.ContractValue)
	}
	if patch.NextContact != nil {
		add("next_contact", *patch.NextContact)
	}
	if patch.Reminder != nil {
		add("reminder", *patch.Reminder)
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}

	query := `UPDATE leads SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 AND user_id = $2 RETURNING ` + leadColumns

	var l Lead
	if err := r.db.GetContext(ctx, &l, query, args...); err != nil {
		return nil, core.StoreError("update lead", err)
	}
	return &l, nil
}

func (r *repository) Delete(ctx context.Context, id, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM leads WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return core.StoreError("delete lead", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return core.StoreError("delete lead", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete lead: %w", core.ErrNotFound)
	}
	return nil
}

func (r *repository) NameOf(ctx context.Context, id, userID string) (string, error) {
	var name string
	err := r.db.GetContext(ctx, &name,
		`SELECT name FROM leads WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return "", core.StoreError("lead name", err)
	}
	return name, nil
}

func (r *repository) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM leads WHERE user_id = $1`, userID); err != nil {
		return 0, core.StoreError("count leads", err)
	}
	return n, nil
}

func (r *repository) CountAll(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM leads`); err != nil {
		return 0, core.StoreError("count leads", err)
	}
	return n, nil
}

func (r *repository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM leads WHERE user_id = $1`, userID)
	if err != nil {
		return 0, core.StoreError("delete leads", err)
	}
	return result.RowsAffected()
}
