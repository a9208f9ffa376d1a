// AngelaMos | 2026
// repository.go

package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agenciasuportapoio350-spec/part2/internal/core"
)

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	ListByUser(ctx context.Context, userID string) ([]Payment, error)
	Update(ctx context.Context, id, userID string, patch Patch) (*Payment, error)
	Delete(ctx context.Context, id, userID string) error
	DeleteByClient(ctx context.Context, clientID, userID string) (int64, error)
	SumPaidByUser(ctx context.Context, userID string) (float64, error)
	TotalsDueBetween(ctx context.Context, userID string, from, to time.Time) (MonthTotals, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	CountAll(ctx context.Context) (int, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

const paymentColumns = `id, user_id, client_id, client_name, description,
	amount, payment_type, due_date, paid, created_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Payment) error {
	query := `
		INSERT INTO payments (id, user_id, client_id, client_name, description,
		                      amount, payment_type, due_date, paid)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	err := r.db.QueryRowxContext(ctx, query,
		p.ID, p.UserID, p.ClientID, p.ClientName, p.Description,
		p.Amount, p.PaymentType, p.DueDate, p.Paid,
	).Scan(&p.CreatedAt)
	if err != nil {
		return core.StoreError("create payment", err)
	}
	return nil
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]Payment, error) {
	var payments []Payment
	err := r.db.SelectContext(ctx, &payments,
		`SELECT `+paymentColumns+` FROM payments WHERE user_id = $1 ORDER BY due_date ASC`,
		userID)
	if err != nil {
		return nil, core.StoreError("list payments", err)
	}
	return payments, nil
}

func (r *repository) Update(
	ctx context.Context,
	id, userID string,
	patch Patch,
) (*Payment, error) {
	if patch.IsEmpty() {
		var p Payment
		err := r.db.GetContext(ctx, &p,
			`SELECT `+paymentColumns+` FROM payments WHERE id = $1 AND user_id = $2`,
			id, userID)
		if err != nil {
			return nil, core.StoreError("get payment", err)
		}
		return &p, nil
	}

	sets := []string{}
	args := []any{id, userID}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Amount != nil {
		add("amount", *patch.Amount)
	}
	if patch.PaymentType != nil {
		add("payment_type", *patch.PaymentType)
	}
	if patch.DueDate != nil {
		add("due_date", *patch.DueDate)
	}
	if patch.Paid != nil {
		add("paid", *patch.Paid)
	}

	query := `UPDATE payments SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 AND user_id = $2 RETURNING ` + paymentColumns

	var p Payment
	if err := r.db.GetContext(ctx, &p, query, args...); err != nil {
		return nil, core.StoreError("update payment", err)
	}
	return &p, nil
}

func (r *repository) Delete(ctx context.Context, id, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM payments WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return core.StoreError("delete payment", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return core.StoreError("delete payment", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete payment: %w", core.ErrNotFound)
	}
	return nil
}

func (r *repository) DeleteByClient(
	ctx context.Context,
	clientID, userID string,
) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM payments WHERE client_id = $1 AND user_id = $2`, clientID, userID)
	if err != nil {
		return 0, core.StoreError("delete client payments", err)
	}
	return result.RowsAffected()
}

func (r *repository) SumPaidByUser(ctx context.Context, userID string) (float64, error) {
	var total float64
	err := r.db.GetContext(ctx, &total,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE user_id = $1 AND paid`,
		userID)
	if err != nil {
		return 0, core.StoreError("sum payments", err)
	}
	return total, nil
}

func (r *repository) TotalsDueBetween(
	ctx context.Context,
	userID string,
	from, to time.Time,
) (MonthTotals, error) {
	var totals MonthTotals
	err := r.db.GetContext(ctx, &totals, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE paid), 0)     AS paid,
			COALESCE(SUM(amount) FILTER (WHERE NOT paid), 0) AS pending
		FROM payments
		WHERE user_id = $1 AND due_date >= $2 AND due_date < $3`,
		userID, from, to)
	if err != nil {
		return MonthTotals{}, core.StoreError("payment totals", err)
	}
	return totals, nil
}

func (r *repository) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM payments WHERE user_id = $1`, userID); err != nil {
		return 0, core.StoreError("count payments", err)
	}
	return n, nil
}

func (r *repository) CountAll(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM payments`); err != nil {
		return 0, core.StoreError("count payments", err)
	}
	return n, nil
}

func (r *repository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE user_id = $1`, userID)
	if err != nil {
		return 0, core.StoreError("delete payments", err)
	}
	return result.RowsAffected()
}
