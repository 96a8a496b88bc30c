package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostingRead(t *testing.T) {
	owner := Actor{UserID: "owner"}
	stranger := Actor{UserID: "someone"}
	admin := Actor{UserID: "root", IsAdmin: true}

	public := PostingSnapshot{OwnerID: "owner", IsPublic: true}
	private := PostingSnapshot{OwnerID: "owner", IsPublic: false}
	deleted := PostingSnapshot{OwnerID: "owner", IsPublic: true, Deleted: true}

	assert.True(t, CanPosting(stranger, ActionRead, public))
	assert.False(t, CanPosting(stranger, ActionRead, private))
	assert.False(t, CanPosting(stranger, ActionRead, deleted))
	assert.True(t, CanPosting(owner, ActionRead, private))
	assert.True(t, CanPosting(admin, ActionRead, deleted))
}

func TestPostingWriteOwnerOnly(t *testing.T) {
	s := PostingSnapshot{OwnerID: "owner"}
	for _, act := range []Action{ActionWrite, ActionDelete, ActionStatus, ActionMediaWrite, ActionCategories} {
		assert.True(t, CanPosting(Actor{UserID: "owner"}, act, s), string(act))
		assert.True(t, CanPosting(Actor{UserID: "x", IsAdmin: true}, act, s), string(act))
		assert.False(t, CanPosting(Actor{UserID: "x"}, act, s), string(act))
	}
}

func TestApplicationRules(t *testing.T) {
	s := ApplicationSnapshot{ApplicantID: "worker", PostingOwnerID: "owner"}

	assert.True(t, CanApplication(Actor{UserID: "worker"}, ActionRead, s))
	assert.True(t, CanApplication(Actor{UserID: "owner"}, ActionRead, s))
	assert.False(t, CanApplication(Actor{UserID: "x"}, ActionRead, s))

	// Owners cannot apply to their own posting.
	assert.False(t, CanApplication(Actor{UserID: "owner"}, ActionCreate, s))
	assert.True(t, CanApplication(Actor{UserID: "x"}, ActionCreate, s))
	assert.False(t, CanApplication(Actor{}, ActionCreate, s))

	assert.True(t, CanApplication(Actor{UserID: "worker"}, ActionWithdraw, s))
	assert.False(t, CanApplication(Actor{UserID: "owner"}, ActionWithdraw, s))
	assert.True(t, CanApplication(Actor{UserID: "owner"}, ActionStatus, s))
	assert.False(t, CanApplication(Actor{UserID: "worker"}, ActionStatus, s))
}

func TestAssignmentAndPaymentRules(t *testing.T) {
	as := AssignmentSnapshot{OwnerID: "owner", AcceptedUserID: "worker"}
	assert.True(t, CanAssignment(Actor{UserID: "worker"}, ActionRead, as))
	assert.False(t, CanAssignment(Actor{UserID: "worker"}, ActionWrite, as))
	assert.True(t, CanAssignment(Actor{UserID: "owner"}, ActionDelete, as))

	ps := PaymentSnapshot{PayerID: "owner"}
	assert.True(t, CanPayment(Actor{UserID: "owner"}, ActionStatus, ps))
	assert.False(t, CanPayment(Actor{UserID: "worker"}, ActionRead, ps))
	assert.True(t, CanPayment(Actor{IsAdmin: true}, ActionDelete, ps))
}

func TestCommentRules(t *testing.T) {
	s := CommentSnapshot{AuthorID: "author", PostingOwnerID: "owner"}
	assert.True(t, CanComment(Actor{UserID: "author"}, ActionWrite, s))
	assert.False(t, CanComment(Actor{UserID: "owner"}, ActionWrite, s))
	assert.True(t, CanComment(Actor{UserID: "owner"}, ActionDelete, s))
	assert.False(t, CanComment(Actor{UserID: "x"}, ActionDelete, s))
}

func TestUnknownActionDenied(t *testing.T) {
	assert.False(t, CanPosting(Actor{IsAdmin: true}, Action("frobnicate"), PostingSnapshot{}))
}
