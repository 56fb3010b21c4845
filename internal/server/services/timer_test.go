package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/countdown/internal/common"
	"github.com/dmitrijs2005/countdown/internal/logging"
	"github.com/dmitrijs2005/countdown/internal/server/models"
	"github.com/dmitrijs2005/countdown/internal/server/objectstore"
	"github.com/dmitrijs2005/countdown/internal/server/repositories/timers"
)

// -------- test fakes --------

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeTimersRepo struct {
	timers.Repository
	getErr     error
	appendErr  error
	replaceErr error
	appended   []models.Timer
}

func (f *fakeTimersRepo) Get(ctx context.Context, id string) (*models.Timer, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	t := models.NewTimer(id, "x", 1, time.Now())
	return &t, nil
}

func (f *fakeTimersRepo) Append(ctx context.Context, timer models.Timer) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, timer)
	return nil
}

func (f *fakeTimersRepo) Replace(ctx context.Context, id string, timer models.Timer) error {
	return f.replaceErr
}

// -------- helpers --------

var t0 = time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*TimerService, *fakeClock, *objectstore.MemoryStore) {
	t.Helper()
	clock := &fakeClock{now: t0}
	mem := objectstore.NewMemoryStore()
	repo := timers.NewDocumentRepository(mem, common.TimersDocumentKey, timers.Options{ConditionalWrites: true}, logging.Discard())
	return NewTimerService(repo, logging.Discard(), WithClock(clock.Now)), clock, mem
}

func list(t *testing.T, s *TimerService) []models.Timer {
	t.Helper()
	all, err := s.List(context.Background())
	require.NoError(t, err)
	return all
}

// -------- tests --------

func TestCreate_EndDateIsStartPlusDays(t *testing.T) {
	s, _, _ := newService(t)
	ctx := context.Background()

	for i, days := range []int{0, 1, 7, 365, 4999, 5000} {
		timer, err := s.Create(ctx, "", strings.Repeat("n", i+1), days)
		require.NoError(t, err)
		assert.Equal(t, time.Duration(days)*24*time.Hour, timer.EndDate.Sub(timer.StartDate))
		assert.Equal(t, timer.StartDate, timer.CreatedAt)
		assert.Nil(t, timer.UpdatedAt)
	}
	assert.Len(t, list(t, s), 6)
}

func TestCreate_NameBoundaries(t *testing.T) {
	s, _, _ := newService(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "a", "x", 1)
	require.NoError(t, err)

	_, err = s.Create(ctx, "b", strings.Repeat("x", 100), 1)
	require.NoError(t, err)

	_, err = s.Create(ctx, "c", strings.Repeat("ж", 100), 1)
	require.NoError(t, err, "length counts characters, not bytes")
}

func TestCreate_InvalidInputLeavesCollectionUnchanged(t *testing.T) {
	tests := []struct {
		name  string
		label string
		days  int
	}{
		{name: "negative days", label: "Launch", days: -1},
		{name: "too many days", label: "Launch", days: 5001},
		{name: "empty name", label: "", days: 10},
		{name: "blank name", label: "   ", days: 10},
		{name: "long name", label: strings.Repeat("x", 101), days: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, mem := newService(t)
			_, err := s.Create(context.Background(), "t1", "Existing", 1)
			require.NoError(t, err)
			before := list(t, s)

			_, err = s.Create(context.Background(), "t2", tt.label, tt.days)
			require.ErrorIs(t, err, common.ErrValidation)
			assert.Equal(t, before, list(t, s))

			obj, err := mem.Fetch(context.Background(), common.TimersDocumentKey)
			require.NoError(t, err)
			assert.Equal(t, "1", obj.Version, "validation errors never reach storage")
		})
	}
}

func TestCreate_AssignsIDWhenMissing(t *testing.T) {
	repo := &fakeTimersRepo{}
	s := NewTimerService(repo, logging.Discard(), WithIDGenerator(func() string { return "generated" }))

	timer, err := s.Create(context.Background(), "", "Launch", 3)
	require.NoError(t, err)
	assert.Equal(t, "generated", timer.ID)
	require.Len(t, repo.appended, 1)
	assert.Equal(t, "generated", repo.appended[0].ID)
}

func TestCreate_DefaultIDIsUUID(t *testing.T) {
	s := NewTimerService(&fakeTimersRepo{}, logging.Discard())

	timer, err := s.Create(context.Background(), "", "Launch", 3)
	require.NoError(t, err)
	assert.Len(t, timer.ID, 36)
}

func TestCreate_StorageFailureIsSurfaced(t *testing.T) {
	repo := &fakeTimersRepo{appendErr: common.ErrStoreUnavailable}
	s := NewTimerService(repo, logging.Discard())

	_, err := s.Create(context.Background(), "t1", "Launch", 3)
	require.ErrorIs(t, err, common.ErrStoreUnavailable)
}

func TestReset_UnknownIDLeavesCollectionUnchanged(t *testing.T) {
	s, _, _ := newService(t)
	_, err := s.Create(context.Background(), "t1", "Launch", 10)
	require.NoError(t, err)
	before := list(t, s)

	_, err = s.Reset(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, before, list(t, s))
}

func TestReset_EmptyID(t *testing.T) {
	s, _, _ := newService(t)

	_, err := s.Reset(context.Background(), "")
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestReset_PreservesOtherFieldsAndRecords(t *testing.T) {
	s, clock, _ := newService(t)
	ctx := context.Background()

	a, err := s.Create(ctx, "a", "A", 3)
	require.NoError(t, err)
	b, err := s.Create(ctx, "b", "B", 10)
	require.NoError(t, err)
	c, err := s.Create(ctx, "c", "C", 20)
	require.NoError(t, err)

	clock.Advance(36 * time.Hour)
	reset, err := s.Reset(ctx, "b")
	require.NoError(t, err)

	assert.Equal(t, b.Days, reset.Days)
	assert.Equal(t, b.CreatedAt, reset.CreatedAt)
	assert.Equal(t, b.Name, reset.Name)
	assert.Equal(t, clock.now, reset.StartDate)
	assert.Equal(t, clock.now.Add(10*24*time.Hour), reset.EndDate)
	require.NotNil(t, reset.UpdatedAt)
	assert.Equal(t, clock.now, *reset.UpdatedAt)

	assert.Equal(t, []models.Timer{*a, *reset, *c}, list(t, s))
}

func TestReset_ExpiredTimerRunsAgain(t *testing.T) {
	s, clock, _ := newService(t)
	ctx := context.Background()

	timer, err := s.Create(ctx, "t1", "Sprint", 1)
	require.NoError(t, err)

	clock.Advance(48 * time.Hour)
	assert.Equal(t, models.StateExpired, timer.State(clock.now))

	reset, err := s.Reset(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, models.StateRunning, reset.State(clock.now))
}

func TestReset_StorageFailures(t *testing.T) {
	t.Run("read", func(t *testing.T) {
		s := NewTimerService(&fakeTimersRepo{getErr: common.ErrStoreUnavailable}, logging.Discard())
		_, err := s.Reset(context.Background(), "t1")
		require.ErrorIs(t, err, common.ErrStoreUnavailable)
	})

	t.Run("write", func(t *testing.T) {
		s := NewTimerService(&fakeTimersRepo{replaceErr: common.ErrVersionConflict}, logging.Discard())
		_, err := s.Reset(context.Background(), "t1")
		require.ErrorIs(t, err, common.ErrVersionConflict)
	})
}

func TestLaunchScenario(t *testing.T) {
	s, clock, _ := newService(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "t1", "Launch", 10)
	require.NoError(t, err)
	assert.Equal(t, t0, created.StartDate)
	assert.Equal(t, t0.Add(10*24*time.Hour), created.EndDate)

	clock.Advance(5 * 24 * time.Hour)
	reset, err := s.Reset(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, t0.Add(5*24*time.Hour), reset.StartDate)
	assert.Equal(t, t0.Add(15*24*time.Hour), reset.EndDate)
	assert.Equal(t, 10, reset.Days)
}

func TestList_IsIdempotent(t *testing.T) {
	s, _, _ := newService(t)
	_, err := s.Create(context.Background(), "t1", "Launch", 10)
	require.NoError(t, err)

	assert.Equal(t, list(t, s), list(t, s))
}

func TestList_UninitializedStoreIsEmpty(t *testing.T) {
	s, _, _ := newService(t)

	all, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestInitialize(t *testing.T) {
	s, _, mem := newService(t)

	require.NoError(t, s.Initialize(context.Background()))

	_, err := mem.Fetch(context.Background(), common.TimersDocumentKey)
	require.NoError(t, err)
}

func TestValidateTimerInput(t *testing.T) {
	assert.NoError(t, ValidateTimerInput("ok", 0))
	assert.NoError(t, ValidateTimerInput("ok", 5000))
	assert.True(t, errors.Is(ValidateTimerInput("ok", 5001), common.ErrValidation))
	assert.True(t, errors.Is(ValidateTimerInput("", 1), common.ErrValidation))
}
