// AngelaMos | 2026
// users.go

package memstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agenciasuportapoio350-spec/part2/internal/core"
	"github.com/agenciasuportapoio350-spec/part2/internal/user"
)

type users struct {
	s *Store
}

func (r *users) emailTaken(email, excludeID string) bool {
	for _, u := range r.s.data.users {
		if u.ID != excludeID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (r *users) Create(_ context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.emailTaken(u.Email, "") {
		return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
	}

	u.CreatedAt = r.s.stamp()
	u.UpdatedAt = u.CreatedAt
	r.s.data.users[u.ID] = *u
	return nil
}

func (r *users) GetByID(_ context.Context, id string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.data.users[id]
	if !ok {
		return nil, notFound("get user")
	}
	return &u, nil
}

func (r *users) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.data.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, notFound("get user by email")
}

func (r *users) Update(_ context.Context, id string, patch user.Patch) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.data.users[id]
	if !ok {
		return nil, notFound("update user")
	}
	if patch.Email != nil && r.emailTaken(*patch.Email, id) {
		return nil, fmt.Errorf("update user: %w", core.ErrDuplicateKey)
	}

	if !patch.IsEmpty() {
		patch.Apply(&u)
		u.UpdatedAt = r.s.stamp()
		r.s.data.users[id] = u
	}
	return &u, nil
}

func (r *users) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.users[id]; !ok {
		return notFound("delete user")
	}
	delete(r.s.data.users, id)
	return nil
}

func (r *users) sorted() []user.User {
	out := make([]user.User, 0, len(r.s.data.users))
	for _, u := range r.s.data.users {
		out = append(out, u)
	}
	newestFirst(out, func(u user.User) time.Time { return u.CreatedAt })
	return out
}

func (r *users) List(_ context.Context, params user.ListUsersParams) ([]user.User, int, error) {
	params.Normalize()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	search := strings.ToLower(params.Search)

	var matched []user.User
	for _, u := range r.sorted() {
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Email), search) &&
			!strings.Contains(strings.ToLower(u.Name), search) {
			continue
		}
		if params.Status != "" && u.Status != params.Status {
			continue
		}
		if params.Plan != "" && u.Plan != params.Plan {
			continue
		}
		if params.Role != "" && u.Role != params.Role {
			continue
		}
		matched = append(matched, u)
	}

	return page(matched, params.Offset(), params.PageSize), len(matched), nil
}

func (r *users) ExistsByEmail(_ context.Context, email, excludeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.emailTaken(email, excludeID), nil
}

func (r *users) CountByRole(_ context.Context, role string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for _, u := range r.s.data.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// LockSuperAdmins only counts; units of work already run one at a time.
func (r *users) LockSuperAdmins(ctx context.Context) (int, error) {
	return r.CountByRole(ctx, user.RoleSuperAdmin)
}

func (r *users) Aggregate(_ context.Context) (*user.Aggregate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	agg := &user.Aggregate{ByPlan: make(map[string]int)}
	for _, u := range r.s.data.users {
		agg.Total++
		agg.ByPlan[u.Plan]++

		switch u.Status {
		case user.StatusActive:
			agg.Active++
		case user.StatusBlocked:
			agg.Blocked++
		}

		switch u.PlanStatus {
		case user.PlanStatusActive:
			if u.PlanValue > 0 {
				agg.MRR += u.PlanValue
			}
		case user.PlanStatusOverdue:
			agg.OverdueCount++
		}
	}
	return agg, nil
}

func (r *users) Recent(_ context.Context, limit int) ([]user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return page(r.sorted(), 0, limit), nil
}
