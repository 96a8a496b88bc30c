package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worklink-dev/worklink/internal/apperr"
	"github.com/worklink-dev/worklink/internal/authz"
)

type fakeAssignments struct{}

func (fakeAssignments) Participants(_ context.Context, id string) (string, string, bool, error) {
	if id == "assignment-1" {
		return "owner", "worker", true, nil
	}
	return "", "", false, nil
}

func newService() *Service {
	svc := NewService(NewMemoryStore(), fakeAssignments{})
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestCreatePayment(t *testing.T) {
	owner := authz.Actor{UserID: "owner"}

	t.Run("owner creates a pending payment", func(t *testing.T) {
		svc := newService()
		p, err := svc.Create(context.Background(), owner, CreateInput{AssignmentID: "assignment-1", Amount: 5000})
		require.NoError(t, err)
		assert.Equal(t, StatusPending, p.Status)
		assert.Equal(t, "owner", p.PayerID)
		assert.Equal(t, "worker", p.PayeeID)
		assert.Equal(t, DefaultCurrency, p.Currency)
	})

	t.Run("worker cannot create payments", func(t *testing.T) {
		svc := newService()
		_, err := svc.Create(context.Background(), authz.Actor{UserID: "worker"}, CreateInput{AssignmentID: "assignment-1", Amount: 100})
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})

	t.Run("non-positive amount is invalid", func(t *testing.T) {
		svc := newService()
		_, err := svc.Create(context.Background(), owner, CreateInput{AssignmentID: "assignment-1", Amount: 0})
		assert.True(t, apperr.IsKind(err, apperr.KindInvalid))
	})

	t.Run("missing assignment is not found", func(t *testing.T) {
		svc := newService()
		_, err := svc.Create(context.Background(), owner, CreateInput{AssignmentID: "nope", Amount: 100})
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestPaymentStatus(t *testing.T) {
	owner := authz.Actor{UserID: "owner"}

	create := func(t *testing.T, svc *Service) Payment {
		t.Helper()
		p, err := svc.Create(context.Background(), owner, CreateInput{AssignmentID: "assignment-1", Amount: 5000})
		require.NoError(t, err)
		return p
	}

	t.Run("completed stamps paid_at", func(t *testing.T) {
		svc := newService()
		p := create(t, svc)
		got, err := svc.UpdateStatus(context.Background(), owner, p.ID, StatusProcessing)
		require.NoError(t, err)
		assert.Nil(t, got.PaidAt)
		got, err = svc.UpdateStatus(context.Background(), owner, p.ID, StatusCompleted)
		require.NoError(t, err)
		require.NotNil(t, got.PaidAt)
		assert.Equal(t, svc.now(), *got.PaidAt)
	})

	t.Run("terminal status is immutable for the payer", func(t *testing.T) {
		svc := newService()
		p := create(t, svc)
		_, err := svc.UpdateStatus(context.Background(), owner, p.ID, StatusCancelled)
		require.NoError(t, err)
		_, err = svc.UpdateStatus(context.Background(), owner, p.ID, StatusPending)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})

	t.Run("admin can revert terminal status", func(t *testing.T) {
		svc := newService()
		p := create(t, svc)
		_, err := svc.UpdateStatus(context.Background(), owner, p.ID, StatusCompleted)
		require.NoError(t, err)
		got, err := svc.UpdateStatus(context.Background(), authz.Actor{UserID: "a", IsAdmin: true}, p.ID, StatusRefunded)
		require.NoError(t, err)
		assert.Equal(t, StatusRefunded, got.Status)
	})

	t.Run("payee cannot update status", func(t *testing.T) {
		svc := newService()
		p := create(t, svc)
		_, err := svc.UpdateStatus(context.Background(), authz.Actor{UserID: "worker"}, p.ID, StatusCompleted)
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})
}

func TestDeletePayment(t *testing.T) {
	owner := authz.Actor{UserID: "owner"}

	t.Run("payer deletes a pending payment", func(t *testing.T) {
		svc := newService()
		p, err := svc.Create(context.Background(), owner, CreateInput{AssignmentID: "assignment-1", Amount: 100})
		require.NoError(t, err)
		require.NoError(t, svc.Delete(context.Background(), owner, p.ID))
		_, err = svc.Get(context.Background(), owner, p.ID)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})

	t.Run("payer cannot delete a processed payment", func(t *testing.T) {
		svc := newService()
		p, err := svc.Create(context.Background(), owner, CreateInput{AssignmentID: "assignment-1", Amount: 100})
		require.NoError(t, err)
		_, err = svc.UpdateStatus(context.Background(), owner, p.ID, StatusProcessing)
		require.NoError(t, err)
		err = svc.Delete(context.Background(), owner, p.ID)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))

		// Admin still can.
		assert.NoError(t, svc.Delete(context.Background(), authz.Actor{UserID: "a", IsAdmin: true}, p.ID))
	})
}

func TestListPayments(t *testing.T) {
	svc := newService()
	owner := authz.Actor{UserID: "owner"}
	_, err := svc.Create(context.Background(), owner, CreateInput{AssignmentID: "assignment-1", Amount: 100})
	require.NoError(t, err)

	t.Run("participants can list by assignment", func(t *testing.T) {
		got, err := svc.ListByAssignment(context.Background(), authz.Actor{UserID: "worker"}, "assignment-1")
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("strangers cannot", func(t *testing.T) {
		_, err := svc.ListByAssignment(context.Background(), authz.Actor{UserID: "nosy"}, "assignment-1")
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})

	t.Run("payer lists own payments", func(t *testing.T) {
		got, err := svc.ListMine(context.Background(), owner)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}
