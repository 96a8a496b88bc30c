package schedule

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/worklink-dev/worklink/internal/apperr"
)

// Rule is a recurrence rule for a posting schedule.
type Rule string

const (
	RuleDaily   Rule = "DAILY"
	RuleWeekly  Rule = "WEEKLY"
	RuleMonthly Rule = "MONTHLY"
	RuleYearly  Rule = "YEARLY"
	RuleCron    Rule = "CRON"
)

// Schedule describes when a posting recurs. It only carries timestamps; no
// executor runs here.
type Schedule struct {
	ID             string     `json:"id"`
	PostingID      string     `json:"posting_id"`
	Rule           Rule       `json:"rule"`
	CronExpression string     `json:"cron_expression,omitempty"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	NextRunAt      *time.Time `json:"next_run_at,omitempty"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Standard 5-field cron: minute hour dom month dow.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Validate checks the recurrence fields.
func Validate(s Schedule) error {
	switch s.Rule {
	case RuleDaily, RuleWeekly, RuleMonthly, RuleYearly:
		if s.CronExpression != "" {
			return apperr.Invalid("cron_expression is only valid with the CRON rule")
		}
	case RuleCron:
		if s.CronExpression == "" {
			return apperr.Invalid("cron_expression is required for the CRON rule")
		}
		if _, err := cronParser.Parse(s.CronExpression); err != nil {
			return apperr.Invalidf("invalid cron expression: %v", err)
		}
	default:
		return apperr.Invalidf("unknown recurrence rule %q", s.Rule)
	}
	if s.EndDate != nil && s.EndDate.Before(s.StartDate) {
		return apperr.Invalid("end_date must not be before start_date")
	}
	return nil
}

// NextRun computes the first activation strictly after ref. ok is false when
// the schedule has no further runs before its end date.
func NextRun(s Schedule, ref time.Time) (next time.Time, ok bool, err error) {
	if err := Validate(s); err != nil {
		return time.Time{}, false, err
	}

	switch s.Rule {
	case RuleCron:
		sched, perr := cronParser.Parse(s.CronExpression)
		if perr != nil {
			return time.Time{}, false, apperr.Invalidf("invalid cron expression: %v", perr)
		}
		from := ref
		if from.Before(s.StartDate) {
			from = s.StartDate.Add(-time.Second)
		}
		next = sched.Next(from)
	default:
		next = s.StartDate
		for !next.After(ref) {
			next = advance(next, s.Rule)
		}
	}

	if s.EndDate != nil && next.After(*s.EndDate) {
		return time.Time{}, false, nil
	}
	return next, true, nil
}

func advance(t time.Time, r Rule) time.Time {
	switch r {
	case RuleDaily:
		return t.AddDate(0, 0, 1)
	case RuleWeekly:
		return t.AddDate(0, 0, 7)
	case RuleMonthly:
		return t.AddDate(0, 1, 0)
	default: // RuleYearly
		return t.AddDate(1, 0, 0)
	}
}
