package payment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/worklink-dev/worklink/internal/apperr"
	"github.com/worklink-dev/worklink/internal/authz"
)

// Assignments is the slice of the assignment store the service needs to
// authorize manual payment creation.
type Assignments interface {
	// Participants returns (ownerID, acceptedUserID) of the assignment.
	Participants(ctx context.Context, id string) (string, string, bool, error)
}

type Service struct {
	store       Store
	assignments Assignments
	now         func() time.Time
}

func NewService(store Store, assignments Assignments) *Service {
	return &Service{
		store:       store,
		assignments: assignments,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateInput carries the fields of a manual milestone payment.
type CreateInput struct {
	AssignmentID string
	Amount       int64
	Currency     string
	Method       string
}

// Create records a manual payment from the posting owner to the worker.
func (s *Service) Create(ctx context.Context, actor authz.Actor, in CreateInput) (Payment, error) {
	if in.Amount <= 0 {
		return Payment{}, apperr.Invalid("payment amount must be positive")
	}
	owner, worker, ok, err := s.assignments.Participants(ctx, in.AssignmentID)
	if err != nil {
		return Payment{}, apperr.Dependency("load assignment", err)
	}
	if !ok {
		return Payment{}, apperr.NotFound("assignment not found")
	}
	if actor.UserID != owner && !actor.IsAdmin {
		return Payment{}, apperr.Forbidden("only the posting owner can create payments")
	}

	now := s.now()
	p := Payment{
		ID:           uuid.NewString(),
		AssignmentID: in.AssignmentID,
		PayerID:      owner,
		PayeeID:      worker,
		Amount:       in.Amount,
		Currency:     in.Currency,
		Status:       StatusPending,
		Method:       in.Method,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	if err := s.store.Create(ctx, p); err != nil {
		return Payment{}, apperr.Dependency("create payment", err)
	}
	return p, nil
}

// Get returns a payment to its payer or an admin.
func (s *Service) Get(ctx context.Context, actor authz.Actor, id string) (Payment, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return Payment{}, err
	}
	if !authz.CanPayment(actor, authz.ActionRead, authz.PaymentSnapshot{PayerID: p.PayerID}) {
		return Payment{}, apperr.Forbidden("not allowed to view this payment")
	}
	return p, nil
}

// UpdateStatus drives the payment state machine. Completed stamps paid_at.
func (s *Service) UpdateStatus(ctx context.Context, actor authz.Actor, id string, to Status) (Payment, error) {
	if !validStatus(to) {
		return Payment{}, apperr.Invalidf("unknown payment status %q", to)
	}
	p, err := s.load(ctx, id)
	if err != nil {
		return Payment{}, err
	}
	if !authz.CanPayment(actor, authz.ActionStatus, authz.PaymentSnapshot{PayerID: p.PayerID}) {
		return Payment{}, apperr.Forbidden("only the payer can update this payment")
	}
	if !canTransition(p.Status, to, actor.IsAdmin) {
		return Payment{}, apperr.Conflictf("cannot transition payment from %s to %s", p.Status, to)
	}

	now := s.now()
	var paidAt *time.Time
	if to == StatusCompleted && p.PaidAt == nil {
		paidAt = &now
	}
	updated, err := s.store.UpdateStatus(ctx, id, p.Status, to, paidAt, now)
	if err != nil {
		return Payment{}, apperr.Dependency("update payment status", err)
	}
	if !updated {
		return Payment{}, apperr.Conflict("payment status changed concurrently")
	}
	p.Status = to
	p.UpdatedAt = now
	if paidAt != nil {
		p.PaidAt = paidAt
	}
	return p, nil
}

// Delete removes a payment record. Payers may only delete pending payments;
// admins may delete any.
func (s *Service) Delete(ctx context.Context, actor authz.Actor, id string) error {
	p, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CanPayment(actor, authz.ActionDelete, authz.PaymentSnapshot{PayerID: p.PayerID}) {
		return apperr.Forbidden("only the payer can delete this payment")
	}
	if p.Status != StatusPending && !actor.IsAdmin {
		return apperr.Conflict("only pending payments can be deleted")
	}
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return apperr.Dependency("delete payment", err)
	}
	if !deleted {
		return apperr.Conflict("payment changed concurrently")
	}
	return nil
}

// ListByAssignment returns an assignment's payments to its participants.
func (s *Service) ListByAssignment(ctx context.Context, actor authz.Actor, assignmentID string) ([]Payment, error) {
	owner, worker, ok, err := s.assignments.Participants(ctx, assignmentID)
	if err != nil {
		return nil, apperr.Dependency("load assignment", err)
	}
	if !ok {
		return nil, apperr.NotFound("assignment not found")
	}
	if actor.UserID != owner && actor.UserID != worker && !actor.IsAdmin {
		return nil, apperr.Forbidden("not allowed to view these payments")
	}
	out, err := s.store.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, apperr.Dependency("list payments", err)
	}
	return out, nil
}

// ListMine returns payments where the actor is the payer.
func (s *Service) ListMine(ctx context.Context, actor authz.Actor) ([]Payment, error) {
	if actor.UserID == "" {
		return nil, apperr.Forbidden("authentication required")
	}
	out, err := s.store.ListByPayer(ctx, actor.UserID)
	if err != nil {
		return nil, apperr.Dependency("list payments", err)
	}
	return out, nil
}

func (s *Service) load(ctx context.Context, id string) (Payment, error) {
	p, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return Payment{}, apperr.Dependency("load payment", err)
	}
	if !ok {
		return Payment{}, apperr.NotFound("payment not found")
	}
	return p, nil
}
