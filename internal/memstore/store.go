// AngelaMos | 2026
// store.go

// Package memstore keeps every repository in process memory. Units of
// work snapshot the whole store and restore it when the work fails, so
// rollback behaves as it does against Postgres.
package memstore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/agenciasuportapoio350-spec/part2/internal/admin"
	"github.com/agenciasuportapoio350-spec/part2/internal/audit"
	"github.com/agenciasuportapoio350-spec/part2/internal/client"
	"github.com/agenciasuportapoio350-spec/part2/internal/core"
	"github.com/agenciasuportapoio350-spec/part2/internal/lead"
	"github.com/agenciasuportapoio350-spec/part2/internal/payment"
	"github.com/agenciasuportapoio350-spec/part2/internal/task"
	"github.com/agenciasuportapoio350-spec/part2/internal/user"
)

type state struct {
	users    map[string]user.User
	audit    []audit.Entry
	leads    map[string]lead.Lead
	clients  map[string]client.Client
	tasks    map[string]task.Task
	payments map[string]payment.Payment
}

func (s state) clone() state {
	return state{
		users:    maps.Clone(s.users),
		audit:    slices.Clone(s.audit),
		leads:    maps.Clone(s.leads),
		clients:  maps.Clone(s.clients),
		tasks:    maps.Clone(s.tasks),
		payments: maps.Clone(s.payments),
	}
}

type Store struct {
	mu        sync.Mutex
	work      sync.Mutex
	data      state
	last      time.Time
	auditFail error
}

func New() *Store {
	return &Store{
		data: state{
			users:    make(map[string]user.User),
			leads:    make(map[string]lead.Lead),
			clients:  make(map[string]client.Client),
			tasks:    make(map[string]task.Task),
			payments: make(map[string]payment.Payment),
		},
	}
}

// FailAudit makes every later audit insert return err. Pass nil to heal.
func (s *Store) FailAudit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auditFail = err
}

// stamp returns a strictly increasing timestamp so creation order is
// stable when sorting. Callers hold s.mu.
func (s *Store) stamp() time.Time {
	now := time.Now().UTC()
	if !now.After(s.last) {
		now = s.last.Add(time.Microsecond)
	}
	s.last = now
	return now
}

func (s *Store) Users() user.Repository { return &users{s: s} }
func (s *Store) Audit() audit.Repository { return &auditLog{s: s} }
func (s *Store) Leads() lead.Repository { return &leads{s: s} }
func (s *Store) Clients() client.Repository { return &clients{s: s} }
func (s *Store) Tasks() task.Repository { return &tasks{s: s} }
func (s *Store) Payments() payment.Repository { return &payments{s: s} }
func (s *Store) UnitOfWork() admin.UnitOfWork { return &unitOfWork{s: s} }

func (s *Store) Repositories() admin.Repositories {
	return admin.Repositories{
		Users: s.Users(),
		Audit: audit.NewRecorder(s.Audit()),
		Owned: []admin.OwnedRecords{s.Leads(), s.Clients(), s.Tasks(), s.Payments()},
	}
}

func (s *Store) Readers() admin.Readers {
	return admin.Readers{
		Users:    s.Users(),
		Audit:    s.Audit(),
		Leads:    s.Leads(),
		Clients:  s.Clients(),
		Tasks:    s.Tasks(),
		Payments: s.Payments(),
	}
}

type unitOfWork struct {
	s *Store
}

func (u *unitOfWork) Do(ctx context.Context, fn func(admin.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	u.s.work.Lock()
	defer u.s.work.Unlock()

	u.s.mu.Lock()
	snapshot := u.s.data.clone()
	u.s.mu.Unlock()

	if err := fn(u.s.Repositories()); err != nil {
		u.s.mu.Lock()
		u.s.data = snapshot
		u.s.mu.Unlock()
		return err
	}
	return nil
}

func notFound(op string) error {
	return fmt.Errorf("%s: %w", op, core.ErrNotFound)
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

func newestFirst[T any](items []T, createdAt func(T) time.Time) {
	slices.SortFunc(items, func(a, b T) int {
		return createdAt(b).Compare(createdAt(a))
	})
}
