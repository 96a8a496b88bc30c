package authz

// Actor is the authenticated caller as the identity layer sees it.
type Actor struct {
	UserID  string
	IsAdmin bool
}

// Action names a permission check. The tables below are keyed per entity.
type Action string

const (
	ActionRead       Action = "read"
	ActionWrite      Action = "write"
	ActionDelete     Action = "delete"
	ActionStatus     Action = "status"
	ActionMediaWrite Action = "media_write"
	ActionCategories Action = "categories"
	ActionWithdraw   Action = "withdraw"
	ActionCreate     Action = "create"
)

// Snapshots carry only the identity-relevant fields of a loaded resource.
// State-dependent rules (valid transitions, terminal statuses) live in the
// lifecycle services; these tables answer "who", not "when".

type PostingSnapshot struct {
	OwnerID  string
	IsPublic bool
	Deleted  bool
}

type ApplicationSnapshot struct {
	ApplicantID    string
	PostingOwnerID string
}

type AssignmentSnapshot struct {
	OwnerID        string
	AcceptedUserID string
}

type PaymentSnapshot struct {
	PayerID string
}

type CommentSnapshot struct {
	AuthorID       string
	PostingOwnerID string
}

var postingRules = map[Action]func(a Actor, s PostingSnapshot) bool{
	ActionRead: func(a Actor, s PostingSnapshot) bool {
		if s.IsPublic && !s.Deleted {
			return true
		}
		return a.IsAdmin || a.UserID == s.OwnerID
	},
	ActionWrite:      postingOwner,
	ActionDelete:     postingOwner,
	ActionStatus:     postingOwner,
	ActionMediaWrite: postingOwner,
	ActionCategories: postingOwner,
}

func postingOwner(a Actor, s PostingSnapshot) bool {
	return a.IsAdmin || a.UserID == s.OwnerID
}

var applicationRules = map[Action]func(a Actor, s ApplicationSnapshot) bool{
	ActionRead: func(a Actor, s ApplicationSnapshot) bool {
		return a.IsAdmin || a.UserID == s.ApplicantID || a.UserID == s.PostingOwnerID
	},
	ActionCreate: func(a Actor, s ApplicationSnapshot) bool {
		return a.UserID != "" && a.UserID != s.PostingOwnerID
	},
	ActionWithdraw: func(a Actor, s ApplicationSnapshot) bool {
		return a.IsAdmin || a.UserID == s.ApplicantID
	},
	ActionStatus: func(a Actor, s ApplicationSnapshot) bool {
		return a.IsAdmin || a.UserID == s.PostingOwnerID
	},
}

var assignmentRules = map[Action]func(a Actor, s AssignmentSnapshot) bool{
	ActionRead: func(a Actor, s AssignmentSnapshot) bool {
		return a.IsAdmin || a.UserID == s.OwnerID || a.UserID == s.AcceptedUserID
	},
	ActionWrite: func(a Actor, s AssignmentSnapshot) bool {
		return a.IsAdmin || a.UserID == s.OwnerID
	},
	ActionDelete: func(a Actor, s AssignmentSnapshot) bool {
		return a.IsAdmin || a.UserID == s.OwnerID
	},
}

var paymentRules = map[Action]func(a Actor, s PaymentSnapshot) bool{
	ActionRead:   paymentPayer,
	ActionStatus: paymentPayer,
	ActionDelete: paymentPayer,
}

func paymentPayer(a Actor, s PaymentSnapshot) bool {
	return a.IsAdmin || a.UserID == s.PayerID
}

var commentRules = map[Action]func(a Actor, s CommentSnapshot) bool{
	ActionWrite: func(a Actor, s CommentSnapshot) bool {
		return a.IsAdmin || a.UserID == s.AuthorID
	},
	ActionDelete: func(a Actor, s CommentSnapshot) bool {
		return a.IsAdmin || a.UserID == s.AuthorID || a.UserID == s.PostingOwnerID
	},
}

// CanPosting reports whether the actor may perform act on the posting.
func CanPosting(a Actor, act Action, s PostingSnapshot) bool {
	rule, ok := postingRules[act]
	return ok && rule(a, s)
}

func CanApplication(a Actor, act Action, s ApplicationSnapshot) bool {
	rule, ok := applicationRules[act]
	return ok && rule(a, s)
}

func CanAssignment(a Actor, act Action, s AssignmentSnapshot) bool {
	rule, ok := assignmentRules[act]
	return ok && rule(a, s)
}

func CanPayment(a Actor, act Action, s PaymentSnapshot) bool {
	rule, ok := paymentRules[act]
	return ok && rule(a, s)
}

func CanComment(a Actor, act Action, s CommentSnapshot) bool {
	rule, ok := commentRules[act]
	return ok && rule(a, s)
}
