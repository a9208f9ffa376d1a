// AngelaMos | 2026
// uow.go

package admin

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/agenciasuportapoio350-spec/part2/internal/audit"
	"github.com/agenciasuportapoio350-spec/part2/internal/core"
	"github.com/agenciasuportapoio350-spec/part2/internal/user"
)

// OwnedRecords is a per-tenant collection (leads, clients, tasks,
// payments) that is counted for the console and purged with its owner.
type OwnedRecords interface {
	CountByUser(ctx context.Context, userID string) (int, error)
	CountAll(ctx context.Context) (int, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// Repositories are the stores one privileged mutation may touch. Within a
// UnitOfWork they share a transaction, so the audit entry commits or
// rolls back together with the change it records.
type Repositories struct {
	Users user.Repository
	Audit *audit.Recorder
	// Owned is purged in order before the owning user row is removed.
	Owned []OwnedRecords
}

type UnitOfWork interface {
	Do(ctx context.Context, fn func(repos Repositories) error) error
}

// RepoFactory binds repositories to a transaction handle.
type RepoFactory func(db core.DBTX) Repositories

type TxUnitOfWork struct {
	db    *sqlx.DB
	build RepoFactory
}

func NewTxUnitOfWork(db *sqlx.DB, build RepoFactory) *TxUnitOfWork {
	return &TxUnitOfWork{db: db, build: build}
}

func (u *TxUnitOfWork) Do(
	ctx context.Context,
	fn func(repos Repositories) error,
) error {
	return core.InTx(ctx, u.db, func(tx *sqlx.Tx) error {
		return fn(u.build(tx))
	})
}
