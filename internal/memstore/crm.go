// AngelaMos | 2026
// crm.go

package memstore

import (
	"context"
	"slices"
	"time"

	"github.com/agenciasuportapoio350-spec/part2/internal/client"
	"github.com/agenciasuportapoio350-spec/part2/internal/lead"
	"github.com/agenciasuportapoio350-spec/part2/internal/payment"
	"github.com/agenciasuportapoio350-spec/part2/internal/task"
)

func countWhere[T any](m map[string]T, keep func(T) bool) int {
	n := 0
	for _, v := range m {
		if keep(v) {
			n++
		}
	}
	return n
}

func deleteWhere[T any](m map[string]T, drop func(T) bool) int64 {
	var n int64
	for id, v := range m {
		if drop(v) {
			delete(m, id)
			n++
		}
	}
	return n
}

func collect[T any](m map[string]T, keep func(T) bool) []T {
	out := []T{}
	for _, v := range m {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

type leads struct {
	s *Store
}

func (r *leads) Create(_ context.Context, l *lead.Lead) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l.CreatedAt = r.s.stamp()
	l.UpdatedAt = l.CreatedAt
	r.s.data.leads[l.ID] = *l
	return nil
}

func (r *leads) GetForUser(_ context.Context, id, userID string) (*lead.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.data.leads[id]
	if !ok || l.UserID != userID {
		return nil, notFound("get lead")
	}
	return &l, nil
}

func (r *leads) ListByUser(_ context.Context, userID string) ([]lead.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := collect(r.s.data.leads, func(l lead.Lead) bool { return l.UserID == userID })
	newestFirst(out, func(l lead.Lead) time.Time { return l.CreatedAt })
	return out, nil
}

func (r *leads) Update(_ context.Context, id, userID string, patch lead.Patch) (*lead.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.data.leads[id]
	if !ok || l.UserID != userID {
		return nil, notFound("update lead")
	}
	if !patch.IsEmpty() {
		patch.Apply(&l)
		l.UpdatedAt = r.s.stamp()
		r.s.data.leads[id] = l
	}
	return &l, nil
}

func (r *leads) Delete(_ context.Context, id, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.data.leads[id]
	if !ok || l.UserID != userID {
		return notFound("delete lead")
	}
	delete(r.s.data.leads, id)
	return nil
}

func (r *leads) NameOf(ctx context.Context, id, userID string) (string, error) {
	l, err := r.GetForUser(ctx, id, userID)
	if err != nil {
		return "", err
	}
	return l.Name, nil
}

func (r *leads) CountByUser(_ context.Context, userID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return countWhere(r.s.data.leads, func(l lead.Lead) bool { return l.UserID == userID }), nil
}

func (r *leads) CountAll(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return len(r.s.data.leads), nil
}

func (r *leads) DeleteByUser(_ context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return deleteWhere(r.s.data.leads, func(l lead.Lead) bool { return l.UserID == userID }), nil
}

type clients struct {
	s *Store
}

func (r *clients) Create(_ context.Context, c *client.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c.CreatedAt = r.s.stamp()
	c.UpdatedAt = c.CreatedAt
	stored := *c
	stored.Checklist = slices.Clone(c.Checklist)
	r.s.data.clients[c.ID] = stored
	return nil
}

func (r *clients) get(id, userID string) (client.Client, bool) {
	c, ok := r.s.data.clients[id]
	if !ok || c.UserID != userID {
		return client.Client{}, false
	}
	c.Checklist = slices.Clone(c.Checklist)
	return c, true
}

func (r *clients) GetForUser(_ context.Context, id, userID string) (*client.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.get(id, userID)
	if !ok {
		return nil, notFound("get client")
	}
	return &c, nil
}

func (r *clients) ListByUser(_ context.Context, userID string) ([]client.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := collect(r.s.data.clients, func(c client.Client) bool { return c.UserID == userID })
	newestFirst(out, func(c client.Client) time.Time { return c.CreatedAt })
	return out, nil
}

func (r *clients) UpdateChecklist(
	_ context.Context,
	id, userID string,
	checklist client.Checklist,
) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.get(id, userID)
	if !ok {
		return notFound("update checklist")
	}
	c.Checklist = slices.Clone(checklist)
	c.UpdatedAt = r.s.stamp()
	r.s.data.clients[id] = c
	return nil
}

func (r *clients) Delete(_ context.Context, id, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.get(id, userID); !ok {
		return notFound("delete client")
	}
	delete(r.s.data.clients, id)
	return nil
}

func (r *clients) NameOf(_ context.Context, id, userID string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.get(id, userID)
	if !ok {
		return "", notFound("client name")
	}
	return c.Name, nil
}

func (r *clients) CountByUser(_ context.Context, userID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return countWhere(r.s.data.clients, func(c client.Client) bool { return c.UserID == userID }), nil
}

func (r *clients) CountAll(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return len(r.s.data.clients), nil
}

func (r *clients) DeleteByUser(_ context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return deleteWhere(r.s.data.clients, func(c client.Client) bool { return c.UserID == userID }), nil
}

func (r *clients) Recent(_ context.Context, limit int) ([]client.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := collect(r.s.data.clients, func(client.Client) bool { return true })
	newestFirst(out, func(c client.Client) time.Time { return c.CreatedAt })
	return page(out, 0, limit), nil
}

type tasks struct {
	s *Store
}

func (r *tasks) Create(_ context.Context, t *task.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t.CreatedAt = r.s.stamp()
	r.s.data.tasks[t.ID] = *t
	return nil
}

func (r *tasks) GetForUser(_ context.Context, id, userID string) (*task.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.data.tasks[id]
	if !ok || t.UserID != userID {
		return nil, notFound("get task")
	}
	return &t, nil
}

func (r *tasks) matching(userID string, filter task.Filter) []task.Task {
	return collect(r.s.data.tasks, func(t task.Task) bool {
		return t.UserID == userID && filter.Matches(t)
	})
}

func (r *tasks) List(_ context.Context, userID string, filter task.Filter) ([]task.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := r.matching(userID, filter)
	slices.SortFunc(out, func(a, b task.Task) int { return a.DueDate.Compare(b.DueDate) })
	return out, nil
}

func (r *tasks) Count(_ context.Context, userID string, filter task.Filter) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return len(r.matching(userID, filter)), nil
}

func (r *tasks) Update(_ context.Context, id, userID string, patch task.Patch) (*task.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.data.tasks[id]
	if !ok || t.UserID != userID {
		return nil, notFound("update task")
	}
	patch.Apply(&t)
	r.s.data.tasks[id] = t
	return &t, nil
}

func (r *tasks) Delete(_ context.Context, id, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.data.tasks[id]
	if !ok || t.UserID != userID {
		return notFound("delete task")
	}
	delete(r.s.data.tasks, id)
	return nil
}

func (r *tasks) DeleteByClient(_ context.Context, clientID, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return deleteWhere(r.s.data.tasks, func(t task.Task) bool {
		return t.UserID == userID && t.ClientID != nil && *t.ClientID == clientID
	}), nil
}

func (r *tasks) CountByUser(ctx context.Context, userID string) (int, error) {
	return r.Count(ctx, userID, task.Filter{})
}

func (r *tasks) CountAll(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return len(r.s.data.tasks), nil
}

func (r *tasks) DeleteByUser(_ context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return deleteWhere(r.s.data.tasks, func(t task.Task) bool { return t.UserID == userID }), nil
}

type payments struct {
	s *Store
}

func (r *payments) Create(_ context.Context, p *payment.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p.CreatedAt = r.s.stamp()
	r.s.data.payments[p.ID] = *p
	return nil
}

func (r *payments) ListByUser(_ context.Context, userID string) ([]payment.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := collect(r.s.data.payments, func(p payment.Payment) bool { return p.UserID == userID })
	slices.SortFunc(out, func(a, b payment.Payment) int { return a.DueDate.Compare(b.DueDate) })
	return out, nil
}

func (r *payments) Update(
	_ context.Context,
	id, userID string,
	patch payment.Patch,
) (*payment.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.data.payments[id]
	if !ok || p.UserID != userID {
		return nil, notFound("update payment")
	}
	patch.Apply(&p)
	r.s.data.payments[id] = p
	return &p, nil
}

func (r *payments) Delete(_ context.Context, id, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.data.payments[id]
	if !ok || p.UserID != userID {
		return notFound("delete payment")
	}
	delete(r.s.data.payments, id)
	return nil
}

func (r *payments) DeleteByClient(_ context.Context, clientID, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return deleteWhere(r.s.data.payments, func(p payment.Payment) bool {
		return p.UserID == userID && p.ClientID == clientID
	}), nil
}

func (r *payments) SumPaidByUser(_ context.Context, userID string) (float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var total float64
	for _, p := range r.s.data.payments {
		if p.UserID == userID && p.Paid {
			total += p.Amount
		}
	}
	return total, nil
}

func (r *payments) TotalsDueBetween(
	_ context.Context,
	userID string,
	from, to time.Time,
) (payment.MonthTotals, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var totals payment.MonthTotals
	for _, p := range r.s.data.payments {
		if p.UserID != userID || p.DueDate.Before(from) || !p.DueDate.Before(to) {
			continue
		}
		if p.Paid {
			totals.Paid += p.Amount
		} else {
			totals.Pending += p.Amount
		}
	}
	return totals, nil
}

func (r *payments) CountByUser(_ context.Context, userID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return countWhere(r.s.data.payments, func(p payment.Payment) bool { return p.UserID == userID }), nil
}

func (r *payments) CountAll(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return len(r.s.data.payments), nil
}

func (r *payments) DeleteByUser(_ context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return deleteWhere(r.s.data.payments, func(p payment.Payment) bool { return p.UserID == userID }), nil
}
