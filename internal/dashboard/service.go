// AngelaMos | 2026
// service.go

package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/agenciasuportapoio350-spec/part2/internal/lead"
	"github.com/agenciasuportapoio350-spec/part2/internal/payment"
	"github.com/agenciasuportapoio350-spec/part2/internal/task"
)

type LeadLister interface {
	ListByUser(ctx context.Context, userID string) ([]lead.Lead, error)
}

type ClientCounter interface {
	CountByUser(ctx context.Context, userID string) (int, error)
}

type TaskCounter interface {
	Count(ctx context.Context, userID string, filter task.Filter) (int, error)
}

type PaymentTotaler interface {
	TotalsDueBetween(ctx context.Context, userID string, from, to time.Time) (payment.MonthTotals, error)
}

type Stats struct {
	LeadsTotal         int            `json:"leads_total"`
	LeadsByStage       map[string]int `json:"leads_by_stage"`
	TotalPipelineValue float64        `json:"total_pipeline_value"`
	ClientsCount       int            `json:"clients_count"`
	TasksToday         int            `json:"tasks_today"`
	TasksPending       int            `json:"tasks_pending"`
	MonthlyRevenue     float64        `json:"monthly_revenue"`
	PendingRevenue     float64        `json:"pending_revenue"`
}

type Service struct {
	leads    LeadLister
	clients  ClientCounter
	tasks    TaskCounter
	payments PaymentTotaler
	now      func() time.Time
}

func NewService(
	leads LeadLister,
	clients ClientCounter,
	tasks TaskCounter,
	payments PaymentTotaler,
) *Service {
	return &Service{
		leads:    leads,
		clients:  clients,
		tasks:    tasks,
		payments: payments,
		now:      time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Stats summarizes the caller's pipeline, workload and revenue for the
// current UTC month.
func (s *Service) Stats(ctx context.Context, userID string) (*Stats, error) {
	now := s.now().UTC()

	leads, err := s.leads.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}

	stats := &Stats{
		LeadsTotal:   len(leads),
		LeadsByStage: make(map[string]int),
	}
	for _, l := range leads {
		stats.LeadsByStage[l.Stage]++
		if l.InPipeline() {
			stats.TotalPipelineValue += l.ContractValue
		}
	}

	if stats.ClientsCount, err = s.clients.CountByUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("count clients: %w", err)
	}

	if stats.TasksToday, err = s.tasks.Count(
		ctx, userID, task.FilterFor(task.FilterToday, now),
	); err != nil {
		return nil, fmt.Errorf("count tasks due today: %w", err)
	}

	if stats.TasksPending, err = s.tasks.Count(
		ctx, userID, task.FilterFor(task.FilterPending, now),
	); err != nil {
		return nil, fmt.Errorf("count pending tasks: %w", err)
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	totals, err := s.payments.TotalsDueBetween(
		ctx, userID, monthStart, monthStart.AddDate(0, 1, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("payment totals: %w", err)
	}
	stats.MonthlyRevenue = totals.Paid
	stats.PendingRevenue = totals.Pending

	return stats, nil
}
