package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worklink-dev/worklink/internal/apperr"
	"github.com/worklink-dev/worklink/internal/authz"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestValidate(t *testing.T) {
	start := date(2026, 3, 1)

	assert.NoError(t, Validate(Schedule{Rule: RuleDaily, StartDate: start}))
	assert.NoError(t, Validate(Schedule{Rule: RuleCron, CronExpression: "0 9 * * 1", StartDate: start}))

	err := Validate(Schedule{Rule: RuleCron, StartDate: start})
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))

	err = Validate(Schedule{Rule: RuleDaily, CronExpression: "0 9 * * 1", StartDate: start})
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))

	err = Validate(Schedule{Rule: RuleCron, CronExpression: "not a cron", StartDate: start})
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))

	end := start.AddDate(0, 0, -1)
	err = Validate(Schedule{Rule: RuleWeekly, StartDate: start, EndDate: &end})
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))

	err = Validate(Schedule{Rule: Rule("HOURLY"), StartDate: start})
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
}

func TestNextRunFixedRules(t *testing.T) {
	start := date(2026, 3, 1)

	cases := []struct {
		rule Rule
		ref  time.Time
		want time.Time
	}{
		{RuleDaily, date(2026, 2, 20), start},          // before start: first run is start
		{RuleDaily, start, start.AddDate(0, 0, 1)},     // ref on a run: strictly after
		{RuleWeekly, start, start.AddDate(0, 0, 7)},
		{RuleMonthly, start, date(2026, 4, 1)},
		{RuleYearly, start, date(2027, 3, 1)},
		{RuleDaily, date(2026, 3, 10).Add(5 * time.Hour), date(2026, 3, 11)},
	}
	for _, tc := range cases {
		next, ok, err := NextRun(Schedule{Rule: tc.rule, StartDate: start}, tc.ref)
		require.NoError(t, err, string(tc.rule))
		require.True(t, ok)
		assert.Equal(t, tc.want, next, string(tc.rule))
	}
}

func TestNextRunCron(t *testing.T) {
	start := date(2026, 3, 1) // a Sunday
	s := Schedule{Rule: RuleCron, CronExpression: "30 9 * * 1", StartDate: start}

	next, ok, err := NextRun(s, date(2026, 2, 1))
	require.NoError(t, err)
	require.True(t, ok)
	// First activation is the Monday 09:30 on or after start.
	assert.True(t, next.After(start))
	assert.Equal(t, time.Monday, next.Weekday())
	assert.Equal(t, 9, next.Hour())
	assert.Equal(t, 30, next.Minute())
	assert.True(t, next.Sub(start) < 8*24*time.Hour)
}

func TestNextRunRespectsEndDate(t *testing.T) {
	start := date(2026, 3, 1)
	end := date(2026, 3, 3)
	s := Schedule{Rule: RuleDaily, StartDate: start, EndDate: &end}

	_, ok, err := NextRun(s, date(2026, 3, 3))
	require.NoError(t, err)
	assert.False(t, ok, "no runs remain past end_date")
}

// memStore is a test double for Store.
type memStore struct {
	mu   sync.Mutex
	rows map[string]Schedule
}

func newMemStore() *memStore { return &memStore{rows: make(map[string]Schedule)} }

func (m *memStore) Upsert(_ context.Context, s Schedule) (Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[s.PostingID] = s
	return s, nil
}

func (m *memStore) GetByPosting(_ context.Context, postingID string) (Schedule, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[postingID]
	return s, ok, nil
}

func (m *memStore) DeleteByPosting(_ context.Context, postingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, postingID)
	return nil
}

type fakePostings map[string]string // posting id -> owner id

func (f fakePostings) OwnerOf(_ context.Context, id string) (string, bool, error) {
	owner, ok := f[id]
	return owner, ok, nil
}

func TestServiceUpsert(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := NewService(store, fakePostings{"p1": "owner"})
	svc.now = func() time.Time { return date(2026, 3, 1) }

	owner := authz.Actor{UserID: "owner"}

	t.Run("owner upserts", func(t *testing.T) {
		got, err := svc.Upsert(ctx, owner, "p1", Input{Rule: RuleWeekly})
		require.NoError(t, err)
		assert.Equal(t, date(2026, 3, 1), got.StartDate, "start_date defaults to today")
		require.NotNil(t, got.NextRunAt)
		assert.Equal(t, date(2026, 3, 8), *got.NextRunAt)
		assert.True(t, got.IsActive)
	})

	t.Run("stranger forbidden", func(t *testing.T) {
		_, err := svc.Upsert(ctx, authz.Actor{UserID: "x"}, "p1", Input{Rule: RuleDaily})
		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	})

	t.Run("missing posting", func(t *testing.T) {
		_, err := svc.Upsert(ctx, owner, "nope", Input{Rule: RuleDaily})
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("invalid rule rejected before write", func(t *testing.T) {
		_, err := svc.Upsert(ctx, owner, "p1", Input{Rule: RuleCron})
		assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
	})

	t.Run("get returns saved schedule", func(t *testing.T) {
		got, err := svc.Get(ctx, owner, "p1")
		require.NoError(t, err)
		assert.Equal(t, RuleWeekly, got.Rule)
	})
}
