package posting

import (
	"time"

	"github.com/worklink-dev/worklink/internal/apperr"
)

// Status is the posting lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusClosed    Status = "closed"
	StatusCancelled Status = "cancelled"
)

// PaymentType describes how a posting pays.
type PaymentType string

const (
	PaymentFixed      PaymentType = "fixed"
	PaymentHourly     PaymentType = "hourly"
	PaymentNegotiable PaymentType = "negotiable"
)

// Location is an optional posting location. Lat and lng always travel
// together.
type Location struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Address  string  `json:"address,omitempty"`
	Timezone string  `json:"timezone,omitempty"`
}

// Posting is a job posting.
type Posting struct {
	ID               string      `json:"id"`
	OwnerID          string      `json:"owner_id"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Status           Status      `json:"status"`
	PaymentAmount    int64       `json:"payment_amount"`
	PaymentCurrency  string      `json:"payment_currency,omitempty"`
	PaymentType      PaymentType `json:"payment_type"`
	MaxApplicants    int         `json:"max_applicants"`
	MaxAssignees     int         `json:"max_assignees"`
	Location         *Location   `json:"location,omitempty"`
	StartAt          *time.Time  `json:"start_at,omitempty"`
	EndAt            *time.Time  `json:"end_at,omitempty"`
	EstimatedMinutes int         `json:"estimated_minutes,omitempty"`
	IsPublic         bool        `json:"is_public"`
	PublishAt        *time.Time  `json:"publish_at,omitempty"`
	ExpiresAt        *time.Time  `json:"expires_at,omitempty"`
	Categories       []string    `json:"categories,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
	DeletedAt        *time.Time  `json:"-"`
}

// Patch is an explicit partial update: only non-nil fields are applied.
type Patch struct {
	Title            *string      `json:"title"`
	Description      *string      `json:"description"`
	PaymentAmount    *int64       `json:"payment_amount"`
	PaymentCurrency  *string      `json:"payment_currency"`
	PaymentType      *PaymentType `json:"payment_type"`
	MaxApplicants    *int         `json:"max_applicants"`
	MaxAssignees     *int         `json:"max_assignees"`
	Location         *Location    `json:"location"`
	StartAt          *time.Time   `json:"start_at"`
	EndAt            *time.Time   `json:"end_at"`
	EstimatedMinutes *int         `json:"estimated_minutes"`
	IsPublic         *bool        `json:"is_public"`
	ExpiresAt        *time.Time   `json:"expires_at"`
	Categories       *[]string    `json:"categories"`
}

func (p *Posting) apply(patch Patch) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.PaymentAmount != nil {
		p.PaymentAmount = *patch.PaymentAmount
	}
	if patch.PaymentCurrency != nil {
		p.PaymentCurrency = *patch.PaymentCurrency
	}
	if patch.PaymentType != nil {
		p.PaymentType = *patch.PaymentType
	}
	if patch.MaxApplicants != nil {
		p.MaxApplicants = *patch.MaxApplicants
	}
	if patch.MaxAssignees != nil {
		p.MaxAssignees = *patch.MaxAssignees
	}
	if patch.Location != nil {
		p.Location = patch.Location
	}
	if patch.StartAt != nil {
		p.StartAt = patch.StartAt
	}
	if patch.EndAt != nil {
		p.EndAt = patch.EndAt
	}
	if patch.EstimatedMinutes != nil {
		p.EstimatedMinutes = *patch.EstimatedMinutes
	}
	if patch.IsPublic != nil {
		p.IsPublic = *patch.IsPublic
	}
	if patch.ExpiresAt != nil {
		p.ExpiresAt = patch.ExpiresAt
	}
	if patch.Categories != nil {
		p.Categories = *patch.Categories
	}
}

// validate enforces the posting invariants at create and update time.
func validate(p Posting) error {
	if p.Title == "" {
		return apperr.Invalid("title is required")
	}
	if p.MaxApplicants < 1 {
		return apperr.Invalid("max_applicants must be at least 1")
	}
	if p.MaxAssignees < 1 {
		return apperr.Invalid("max_assignees must be at least 1")
	}
	if p.MaxAssignees > p.MaxApplicants {
		return apperr.Invalid("max_assignees must not exceed max_applicants")
	}
	if p.PaymentAmount < 0 {
		return apperr.Invalid("payment_amount must not be negative")
	}
	switch p.PaymentType {
	case PaymentFixed, PaymentHourly, PaymentNegotiable:
	default:
		return apperr.Invalidf("unknown payment_type %q", p.PaymentType)
	}
	if p.EndAt != nil {
		if p.StartAt == nil {
			return apperr.Invalid("end_at requires start_at")
		}
		if !p.EndAt.After(*p.StartAt) {
			return apperr.Invalid("end_at must be after start_at")
		}
		if p.EstimatedMinutes > 0 {
			limit := p.StartAt.Add(time.Duration(p.EstimatedMinutes) * time.Minute)
			if p.EndAt.After(limit) {
				return apperr.Invalid("end_at must not exceed start_at plus estimated duration")
			}
		}
	}
	if p.Status == StatusPublished && (p.StartAt == nil || p.PublishAt == nil) {
		return apperr.Invalid("a published posting needs start_at and publish_at")
	}
	return nil
}

// statusTransitions is the posting state machine.
var statusTransitions = map[Status][]Status{
	StatusDraft:     {StatusPublished},
	StatusPublished: {StatusClosed, StatusCancelled},
	StatusClosed:    {StatusPublished},
	StatusCancelled: {},
}

func canTransition(from, to Status) bool {
	for _, t := range statusTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}
