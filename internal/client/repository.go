// AngelaMos | 2026
// repository.go

package client

import (
	"context"
	"fmt"

	"github.com/agenciasuportapoio350-spec/part2/internal/core"
)

// Repository scopes every lookup and mutation to the owning user.
type Repository interface {
	Create(ctx context.Context, c *Client) error
	GetForUser(ctx context.Context, id, userID string) (*Client, error)
	ListByUser(ctx context.Context, userID string) ([]Client, error)
	UpdateChecklist(ctx context.Context, id, userID string, checklist Checklist) error
	Delete(ctx context.Context, id, userID string) error
	NameOf(ctx context.Context, id, userID string) (string, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	CountAll(ctx context.Context) (int, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	Recent(ctx context.Context, limit int) ([]Client, error)
}

const clientColumns = `id, user_id, name, email, phone, company, contract_value,
	notes, checklist, created_at, updated_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c *Client) error {
	query := `
		INSERT INTO clients (id, user_id, name, email, phone, company,
		                     contract_value, notes, checklist)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		c.ID, c.UserID, c.Name, c.Email, c.Phone, c.Company,
		c.ContractValue, c.Notes, c.Checklist,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return core.StoreError("create client", err)
	}
	return nil
}

func (r *repository) GetForUser(
	ctx context.Context,
	id, userID string,
) (*Client, error) {
	var c Client
	err := r.db.GetContext(ctx, &c,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return nil, core.StoreError("get client", err)
	}
	return &c, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]Client, error) {
	var clients []Client
	err := r.db.SelectContext(ctx, &clients,
		`SELECT `+clientColumns+` FROM clients WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, core.StoreError("list clients", err)
	}
	return clients, nil
}

func (r *repository) UpdateChecklist(
	ctx context.Context,
	id, userID string,
	checklist Checklist,
) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE clients SET checklist = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2`,
		id, userID, checklist)
	return expectRow("update checklist", result, err)
}

func (r *repository) Delete(ctx context.Context, id, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM clients WHERE id = $1 AND user_id = $2`, id, userID)
	return expectRow("delete client", result, err)
}

func (r *repository) NameOf(ctx context.Context, id, userID string) (string, error) {
	var name string
	err := r.db.GetContext(ctx, &name,
		`SELECT name FROM clients WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return "", core.StoreError("client name", err)
	}
	return name, nil
}

func (r *repository) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM clients WHERE user_id = $1`, userID); err != nil {
		return 0, core.StoreError("count clients", err)
	}
	return n, nil
}

func (r *repository) CountAll(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM clients`); err != nil {
		return 0, core.StoreError("count clients", err)
	}
	return n, nil
}

func (r *repository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM clients WHERE user_id = $1`, userID)
	if err != nil {
		return 0, core.StoreError("delete clients", err)
	}
	return result.RowsAffected()
}

func (r *repository) Recent(ctx context.Context, limit int) ([]Client, error) {
	var clients []Client
	err := r.db.SelectContext(ctx, &clients,
		`SELECT `+clientColumns+` FROM clients ORDER BY created_at DESC LIMIT $1`,
		limit)
	if err != nil {
		return nil, core.StoreError("recent clients", err)
	}
	return clients, nil
}

type rowsResult interface {
	RowsAffected() (int64, error)
}

func expectRow(op string, result rowsResult, err error) error {
	if err != nil {
		return core.StoreError(op, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return core.StoreError(op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return nil
}
