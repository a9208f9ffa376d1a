// AngelaMos | 2026
// repository.go

package audit

import (
	"context"

	"github.com/agenciasuportapoio350-spec/part2/internal/core"
)

// Repository only appends and reads; entries are never updated or deleted.
type Repository interface {
	Insert(ctx context.Context, entry *Entry) error
	List(ctx context.Context, params ListParams) ([]Entry, int, error)
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, entry *Entry) error {
	query := `
		INSERT INTO audit_logs (id, actor_id, actor_email, action,
		                        target_id, target_email, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.ActorID,
		entry.ActorEmail,
		entry.Action,
		entry.TargetID,
		entry.TargetEmail,
		entry.Details,
		entry.CreatedAt,
	)
	if err != nil {
		return core.StoreError("insert audit entry", err)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Entry, int, error) {
	params.Normalize()

	var total int
	err := r.db.GetContext(ctx, &total, `
		SELECT COUNT(*) FROM audit_logs
		WHERE ($1 = '' OR action = $1)`, params.Action)
	if err != nil {
		return nil, 0, core.StoreError("count audit entries", err)
	}

	var entries []Entry
	err = r.db.SelectContext(ctx, &entries, `
		SELECT id, actor_id, actor_email, action, target_id, target_email,
		       details, created_at
		FROM audit_logs
		WHERE ($1 = '' OR action = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		params.Action, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, core.StoreError("list audit entries", err)
	}

	return entries, total, nil
}

func (r *repository) Recent(ctx context.Context, limit int) ([]Entry, error) {
	var entries []Entry
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id, actor_id, actor_email, action, target_id, target_email,
		       details, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, core.StoreError("recent audit entries", err)
	}
	return entries, nil
}
