// AngelaMos | 2026
// service.go

package task

import (
	"cmp"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/agenciasuportapoio350-spec/part2/internal/core"
)

// NameLookup resolves the display name of a record the caller owns.
type NameLookup interface {
	NameOf(ctx context.Context, id, userID string) (string, error)
}

type Service struct {
	repo    Repository
	clients NameLookup
	leads   NameLookup
	now     func() time.Time
}

func NewService(repo Repository, clients, leads NameLookup) *Service {
	return &Service{repo: repo, clients: clients, leads: leads, now: time.Now}
}

func (s *Service) List(ctx context.Context, userID, filter string) ([]Task, error) {
	tasks, err := s.repo.List(ctx, userID, FilterFor(filter, s.now()))
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, nil
}

func (s *Service) Create(ctx context.Context, userID string, req CreateTaskRequest) (*Task, error) {
	taskType := cmp.Or(req.TaskType, TypeOther)
	if !ValidType(taskType) {
		return nil, core.Invalid("invalid task type %q", taskType)
	}

	t := &Task{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		TaskType:    taskType,
		DueDate:     req.DueDate,
		ClientID:    req.ClientID,
		LeadID:      req.LeadID,
	}

	var err error
	if t.ClientName, err = s.resolve(ctx, s.clients, req.ClientID, userID); err != nil {
		return nil, err
	}
	if t.LeadName, err = s.resolve(ctx, s.leads, req.LeadID, userID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// resolve returns nil when the referenced record is missing or not owned.
func (s *Service) resolve(
	ctx context.Context,
	lookup NameLookup,
	id *string,
	userID string,
) (*string, error) {
	if lookup == nil || id == nil || *id == "" {
		return nil, nil
	}

	name, err := lookup.NameOf(ctx, *id, userID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &name, nil
}

func (s *Service) Update(ctx context.Context, id, userID string, patch Patch) (*Task, error) {
	if patch.TaskType != nil && !ValidType(*patch.TaskType) {
		return nil, core.Invalid("invalid task type %q", *patch.TaskType)
	}
	return s.repo.Update(ctx, id, userID, patch)
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	return s.repo.Delete(ctx, id, userID)
}

// WithClock replaces the time source used to resolve listing filters.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}
