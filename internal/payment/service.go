// AngelaMos | 2026
// service.go

package payment

import (
	"cmp"
	"context"

	"github.com/google/uuid"

	"github.com/agenciasuportapoio350-spec/part2/internal/core"
)

// ClientLookup resolves a client the caller owns to its name.
type ClientLookup interface {
	NameOf(ctx context.Context, id, userID string) (string, error)
}

type Service struct {
	repo    Repository
	clients ClientLookup
}

func NewService(repo Repository, clients ClientLookup) *Service {
	return &Service{repo: repo, clients: clients}
}

func (s *Service) List(ctx context.Context, userID string) ([]Payment, error) {
	payments, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if payments == nil {
		payments = []Payment{}
	}
	return payments, nil
}

// Create records a payment against one of the caller's clients. A client
// owned by someone else is reported as not found.
func (s *Service) Create(
	ctx context.Context,
	userID string,
	req CreatePaymentRequest,
) (*Payment, error) {
	paymentType := cmp.Or(req.PaymentType, TypeOneTime)
	if !ValidType(paymentType) {
		return nil, core.Invalid("invalid payment type %q", paymentType)
	}
	if req.Amount < 0 {
		return nil, core.Invalid("amount must not be negative")
	}

	clientName, err := s.clients.NameOf(ctx, req.ClientID, userID)
	if err != nil {
		return nil, err
	}

	p := &Payment{
		ID:          uuid.New().String(),
		UserID:      userID,
		ClientID:    req.ClientID,
		ClientName:  &clientName,
		Description: req.Description,
		Amount:      req.Amount,
		PaymentType: paymentType,
		DueDate:     req.DueDate,
		Paid:        req.Paid,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id, userID string, patch Patch) (*Payment, error) {
	if patch.PaymentType != nil && !ValidType(*patch.PaymentType) {
		return nil, core.Invalid("invalid payment type %q", *patch.PaymentType)
	}
	if patch.Amount != nil && *patch.Amount < 0 {
		return nil, core.Invalid("amount must not be negative")
	}
	return s.repo.Update(ctx, id, userID, patch)
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	return s.repo.Delete(ctx, id, userID)
}
