// AngelaMos | 2026
// audit.go

package memstore

import (
	"context"
	"maps"

	"github.com/agenciasuportapoio350-spec/part2/internal/audit"
)

type auditLog struct {
	s *Store
}

func (r *auditLog) Insert(_ context.Context, entry *audit.Entry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.auditFail != nil {
		return r.s.auditFail
	}

	stored := *entry
	stored.Details = maps.Clone(entry.Details)
	r.s.data.audit = append(r.s.data.audit, stored)
	return nil
}

// newest walks the log from the latest append backwards.
func (r *auditLog) newest(action string) []audit.Entry {
	out := make([]audit.Entry, 0, len(r.s.data.audit))
	for i := len(r.s.data.audit) - 1; i >= 0; i-- {
		e := r.s.data.audit[i]
		if action == "" || e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

func (r *auditLog) List(_ context.Context, params audit.ListParams) ([]audit.Entry, int, error) {
	params.Normalize()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	matched := r.newest(params.Action)
	return page(matched, params.Offset(), params.PageSize), len(matched), nil
}

func (r *auditLog) Recent(_ context.Context, limit int) ([]audit.Entry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return page(r.newest(""), 0, limit), nil
}
