package recovery

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reveille/internal/clock"
	"reveille/internal/core"
	"reveille/internal/scheduler"
	"reveille/internal/storage"
	"reveille/internal/storage/memory"
	"reveille/internal/timer"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

var start = time.Date(2024, time.January, 2, 6, 0, 0, 0, time.UTC)

type harness struct {
	store *storage.AlarmStore
	clock *clock.MockClock
}

func newHarness() *harness {
	return &harness{
		store: storage.NewAlarmStore(memory.New(), time.UTC),
		clock: clock.NewMock(start),
	}
}

// boot simulates a fresh process: a new timer and scheduler over the same store
func (h *harness) boot() (*scheduler.Scheduler, *timer.ManualTimer) {
	tm := timer.NewManualTimer()
	tm.SetHandler(func(ctx context.Context, f timer.Fired) {})
	return scheduler.NewScheduler(h.store, tm, timer.NewStaticAuthorizer(true), h.clock, testLogger()), tm
}

func TestJob_RoundTripBeforeTrigger(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	sched, _ := h.boot()
	rec, err := sched.Schedule(ctx, core.AlarmDefinition{ID: 1, Message: "m", DurationMinutes: 3}, 600)
	require.NoError(t, err)

	// process dies; restart 4 minutes later
	h.clock.Advance(4 * time.Minute)
	sched, tm := h.boot()

	report, err := NewJob(h.store, sched, h.clock, testLogger()).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Report{Rearmed: 1}, report)

	armed, ok := tm.Armed(1)
	require.True(t, ok)
	assert.Equal(t, rec.TriggerAt, armed)

	stored, err := h.store.GetAlarm(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Definition.DurationMinutes)
}

func TestJob_ElapsedRecordLeftUntouched(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	sched, _ := h.boot()
	rec, err := sched.Schedule(ctx, core.AlarmDefinition{ID: 1}, 60)
	require.NoError(t, err)

	h.clock.Advance(2 * time.Minute)
	sched, tm := h.boot()

	report, err := NewJob(h.store, sched, h.clock, testLogger()).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Report{Skipped: 1}, report)
	assert.Empty(t, tm.ArmedIDs())

	stored, err := h.store.GetAlarm(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, rec.TriggerAt, stored.TriggerAt)
}

func TestJob_RecurringKeepsSchedule(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	sched, _ := h.boot()
	_, err := sched.ScheduleRecurring(ctx, core.AlarmDefinition{
		ID:       2,
		Schedule: &core.WeeklySchedule{Hour: 7, Minute: 0, Weekdays: []int{core.Tuesday}},
	})
	require.NoError(t, err)

	sched, tm := h.boot()
	_, err = NewJob(h.store, sched, h.clock, testLogger()).Run(ctx)
	require.NoError(t, err)

	armed, ok := tm.Armed(2)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.January, 2, 7, 0, 0, 0, time.UTC), armed)

	stored, err := h.store.GetAlarm(ctx, 2)
	require.NoError(t, err)
	assert.True(t, stored.Definition.IsRecurring())
}

type flakyScheduler struct {
	failID int
	calls  []int
}

func (s *flakyScheduler) Schedule(ctx context.Context, def core.AlarmDefinition, delaySeconds int) (*core.PersistedAlarmRecord, error) {
	s.calls = append(s.calls, def.ID)
	if def.ID == s.failID {
		return nil, core.ErrPermissionDenied
	}
	return &core.PersistedAlarmRecord{Definition: def}, nil
}

func TestJob_FailureDoesNotStopScan(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	for _, id := range []int{1, 2, 3} {
		require.NoError(t, h.store.SaveAlarm(ctx, &core.PersistedAlarmRecord{
			Definition: core.AlarmDefinition{ID: id, DurationMinutes: 1},
			TriggerAt:  start.Add(time.Duration(id) * time.Hour),
			Active:     true,
		}))
	}

	sched := &flakyScheduler{failID: 2}
	report, err := NewJob(h.store, sched, h.clock, testLogger()).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, Report{Rearmed: 2, Failed: 1}, report)
	assert.Equal(t, []int{1, 2, 3}, sched.calls)
}

type brokenStorage struct{}

func (brokenStorage) LoadAlarms(ctx context.Context) ([]*core.PersistedAlarmRecord, map[int]error, error) {
	return nil, nil, errors.New("corrupt database")
}

func TestJob_StorageError(t *testing.T) {
	_, err := NewJob(brokenStorage{}, &flakyScheduler{}, clock.NewMock(start), testLogger()).Run(context.Background())
	assert.Error(t, err)
}

func TestJob_UnreadableRecordDoesNotBlockOthers(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	sched, _ := h.boot()
	rec, err := sched.Schedule(ctx, core.AlarmDefinition{ID: 1}, 3600)
	require.NoError(t, err)

	kv := memory.New()
	h.store = storage.NewAlarmStore(kv, time.UTC)
	require.NoError(t, h.store.SaveAlarm(ctx, rec))
	require.NoError(t, kv.SetMany(ctx, map[string]string{"alarm_9_time": "garbage"}))

	sched, tm := h.boot()
	report, err := NewJob(h.store, sched, h.clock, testLogger()).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Report{Rearmed: 1, Failed: 1}, report)

	armed, ok := tm.Armed(1)
	require.True(t, ok)
	assert.Equal(t, rec.TriggerAt, armed)
}
