// AngelaMos | 2026
// service.go

package client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/agenciasuportapoio350-spec/part2/internal/core"
)

// Dependent owns records that hang off a client and must go with it.
type Dependent interface {
	DeleteByClient(ctx context.Context, clientID, userID string) (int64, error)
}

type Service struct {
	repo       Repository
	dependents []Dependent
	logger     *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger, dependents ...Dependent) *Service {
	return &Service{repo: repo, dependents: dependents, logger: logger}
}

func (s *Service) List(ctx context.Context, userID string) ([]Client, error) {
	clients, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if clients == nil {
		clients = []Client{}
	}
	return clients, nil
}

func (s *Service) Get(ctx context.Context, id, userID string) (*Client, error) {
	return s.repo.GetForUser(ctx, id, userID)
}

func (s *Service) Create(
	ctx context.Context,
	userID string,
	req CreateClientRequest,
) (*Client, error) {
	c := &Client{
		ID:            uuid.New().String(),
		UserID:        userID,
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Company:       req.Company,
		ContractValue: req.ContractValue,
		Notes:         req.Notes,
		Checklist:     DefaultChecklist(),
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ToggleChecklistItem(
	ctx context.Context,
	id, userID, itemID string,
) (*Client, error) {
	c, err := s.repo.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if !c.Checklist.Toggle(itemID) {
		return nil, fmt.Errorf("checklist item %s: %w", itemID, core.ErrNotFound)
	}

	if err := s.repo.UpdateChecklist(ctx, id, userID, c.Checklist); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes the client and then its tasks and payments.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}

	for _, dep := range s.dependents {
		if _, err := dep.DeleteByClient(ctx, id, userID); err != nil {
			s.logger.Warn("client dependents not removed",
				"client_id", id,
				"error", err,
			)
			return err
		}
	}
	return nil
}
