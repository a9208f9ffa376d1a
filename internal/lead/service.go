// AngelaMos | 2026
// service.go

package lead

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/agenciasuportapoio350-spec/part2/internal/client"
	"github.com/agenciasuportapoio350-spec/part2/internal/core"
	"github.com/agenciasuportapoio350-spec/part2/internal/task"
)

type ClientCreator interface {
	Create(ctx context.Context, c *client.Client) error
}

type TaskCreator interface {
	Create(ctx context.Context, t *task.Task) error
}

type Service struct {
	repo    Repository
	clients ClientCreator
	tasks   TaskCreator
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(
	repo Repository,
	clients ClientCreator,
	tasks TaskCreator,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:    repo,
		clients: clients,
		tasks:   tasks,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *Service) List(ctx context.Context, userID string) ([]Lead, error) {
	leads, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if leads == nil {
		leads = []Lead{}
	}
	return leads, nil
}

func (s *Service) Create(ctx context.Context, userID string, req CreateLeadRequest) (*Lead, error) {
	stage := cmp.Or(req.Stage, StageNew)
	if !ValidStage(stage) {
		return nil, core.Invalid("invalid stage %q", stage)
	}

	l := &Lead{
		ID:            uuid.New().String(),
		UserID:        userID,
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Company:       req.Company,
		Stage:         stage,
		ContractValue: req.ContractValue,
		NextContact:   req.NextContact,
		Reminder:      req.Reminder,
		Notes:         req.Notes,
	}

	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) Update(ctx context.Context, id, userID string, patch Patch) (*Lead, error) {
	if patch.Stage != nil && !ValidStage(*patch.Stage) {
		return nil, core.Invalid("invalid stage %q", *patch.Stage)
	}
	return s.repo.Update(ctx, id, userID, patch)
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	return s.repo.Delete(ctx, id, userID)
}

// Convert turns a lead into a client with the onboarding checklist, seeds
// the client's monthly routine and marks the lead won.
func (s *Service) Convert(ctx context.Context, id, userID string) (*client.Client, error) {
	l, err := s.repo.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	c := &client.Client{
		ID:            uuid.New().String(),
		UserID:        userID,
		Name:          l.Name,
		Email:         l.Email,
		Phone:         l.Phone,
		Company:       l.Company,
		ContractValue: l.ContractValue,
		Notes:         l.Notes,
		Checklist:     client.DefaultChecklist(),
	}
	if err := s.clients.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create client from lead: %w", err)
	}

	for _, t := range task.MonthlyRoutine(userID, c.ID, c.Name, s.now()) {
		if err := s.tasks.Create(ctx, &t); err != nil {
			return nil, fmt.Errorf("seed client tasks: %w", err)
		}
	}

	won := StageWon
	if _, err := s.repo.Update(ctx, id, userID, Patch{Stage: &won}); err != nil {
		return nil, fmt.Errorf("mark lead won: %w", err)
	}

	s.logger.Info("lead converted",
		"lead_id", id,
		"client_id", c.ID,
		"user_id", userID,
	)

	return c, nil
}

// WithClock replaces the time source used to schedule converted tasks.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}
