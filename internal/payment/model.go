// Package payment records payment intents against assignments. No money
// moves here; external gateways are out of scope.
package payment

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusRefunded   Status = "refunded"
	StatusCancelled  Status = "cancelled"
)

// DefaultCurrency is used when the posting carries no currency.
const DefaultCurrency = "USD"

type Payment struct {
	ID                string     `json:"id"`
	AssignmentID      string     `json:"assignment_id"`
	PayerID           string     `json:"payer_id"`
	PayeeID           string     `json:"payee_id"`
	Amount            int64      `json:"amount"`
	Currency          string     `json:"currency"`
	Status            Status     `json:"status"`
	Method            string     `json:"method,omitempty"`
	TransactionID     string     `json:"transaction_id,omitempty"`
	ExternalReference string     `json:"external_reference,omitempty"`
	PaidAt            *time.Time `json:"paid_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCompleted, StatusFailed, StatusRefunded, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusFailed, StatusCancelled},
	StatusFailed:     {StatusProcessing, StatusCancelled},
}

// terminal statuses are immutable to non-admins.
func isTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusRefunded || s == StatusCancelled
}

// canTransition reports whether the move is allowed for the actor class.
// Admins may also revert out of a terminal status.
func canTransition(from, to Status, admin bool) bool {
	if from == to {
		return false
	}
	if isTerminal(from) {
		return admin
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func validStatus(s Status) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusRefunded, StatusCancelled:
		return true
	}
	return false
}
