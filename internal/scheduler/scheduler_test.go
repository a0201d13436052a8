package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reveille/internal/clock"
	"reveille/internal/core"
	"reveille/internal/timer"
)

// Mock implementations

type mockStorage struct {
	mu      sync.Mutex
	records map[int]*core.PersistedAlarmRecord
	saveErr error
	deleted []int
}

func newMockStorage() *mockStorage {
	return &mockStorage{records: make(map[int]*core.PersistedAlarmRecord)}
}

func (m *mockStorage) SaveAlarm(ctx context.Context, rec *core.PersistedAlarmRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := *rec
	m.records[rec.Definition.ID] = &cp
	return nil
}

func (m *mockStorage) DeleteAlarm(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockStorage) get(id int) (*core.PersistedAlarmRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	return rec, ok
}

type fixture struct {
	scheduler  *Scheduler
	storage    *mockStorage
	timer      *timer.ManualTimer
	authorizer *timer.StaticAuthorizer
	clock      *clock.MockClock
}

// 2024-01-02 is a Tuesday
var tuesdayMorning = time.Date(2024, time.January, 2, 8, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	f := &fixture{
		storage:    newMockStorage(),
		timer:      timer.NewManualTimer(),
		authorizer: timer.NewStaticAuthorizer(true),
		clock:      clock.NewMock(tuesdayMorning),
	}
	f.timer.SetHandler(func(ctx context.Context, fired timer.Fired) {})
	f.scheduler = NewScheduler(f.storage, f.timer, f.authorizer, f.clock, logger)
	return f
}

func TestScheduler_ScheduleOneShot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.scheduler.Schedule(ctx, core.AlarmDefinition{ID: 7}, 90)
	require.NoError(t, err)

	want := tuesdayMorning.Add(90 * time.Second)
	assert.Equal(t, want, rec.TriggerAt)
	assert.True(t, rec.Active)
	assert.Equal(t, core.DefaultMessage, rec.Definition.Message)
	assert.Equal(t, core.DefaultGameType, rec.Definition.GameType)
	assert.Equal(t, core.DefaultDurationMinutes, rec.Definition.DurationMinutes)

	armed, ok := f.timer.Armed(7)
	require.True(t, ok)
	assert.Equal(t, want, armed)

	stored, ok := f.storage.get(7)
	require.True(t, ok)
	assert.Equal(t, want, stored.TriggerAt)
}

func TestScheduler_RescheduleReplaces(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.scheduler.Schedule(ctx, core.AlarmDefinition{ID: 1, Message: "first"}, 60)
	require.NoError(t, err)
	_, err = f.scheduler.Schedule(ctx, core.AlarmDefinition{ID: 1, Message: "second"}, 120)
	require.NoError(t, err)

	assert.Equal(t, []int{1}, f.timer.ArmedIDs())
	armed, _ := f.timer.Armed(1)
	assert.Equal(t, tuesdayMorning.Add(120*time.Second), armed)

	stored, _ := f.storage.get(1)
	assert.Equal(t, "second", stored.Definition.Message)
}

func TestScheduler_ScheduleRecurring(t *testing.T) {
	f := newFixture(t)

	rec, err := f.scheduler.ScheduleRecurring(context.Background(), core.AlarmDefinition{
		ID:       3,
		Schedule: &core.WeeklySchedule{Hour: 7, Minute: 30, Weekdays: []int{core.Wednesday, core.Monday, core.Monday}},
	})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, time.January, 3, 7, 30, 0, 0, time.UTC), rec.TriggerAt)
	assert.Equal(t, []int{core.Monday, core.Wednesday}, rec.Definition.Schedule.Weekdays)

	stored, ok := f.storage.get(3)
	require.True(t, ok)
	assert.True(t, stored.Definition.IsRecurring())
}

func TestScheduler_ScheduleRecurringEmptyDays(t *testing.T) {
	f := newFixture(t)

	rec, err := f.scheduler.ScheduleRecurring(context.Background(), core.AlarmDefinition{
		ID:       3,
		Schedule: &core.WeeklySchedule{Hour: 7, Minute: 30},
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 3, 7, 30, 0, 0, time.UTC), rec.TriggerAt)
	assert.False(t, rec.Definition.IsRecurring())
}

func TestScheduler_PermissionDenied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.scheduler.Schedule(ctx, core.AlarmDefinition{ID: 1}, 60)
	require.NoError(t, err)

	f.authorizer.SetAllowed(false)
	assert.False(t, f.scheduler.CanScheduleExact(ctx))

	_, err = f.scheduler.Schedule(ctx, core.AlarmDefinition{ID: 1, Message: "replacement"}, 10)
	assert.ErrorIs(t, err, core.ErrPermissionDenied)

	_, err = f.scheduler.ScheduleRecurring(ctx, core.AlarmDefinition{ID: 2, Schedule: &core.WeeklySchedule{Hour: 1}})
	assert.ErrorIs(t, err, core.ErrPermissionDenied)

	// nothing was cancelled or written
	armed, ok := f.timer.Armed(1)
	require.True(t, ok)
	assert.Equal(t, tuesdayMorning.Add(60*time.Second), armed)
	stored, _ := f.storage.get(1)
	assert.Equal(t, core.DefaultMessage, stored.Definition.Message)
	_, ok = f.storage.get(2)
	assert.False(t, ok)
}

func TestScheduler_ValidationErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.scheduler.Schedule(ctx, core.AlarmDefinition{ID: -1}, 10)
	assert.ErrorIs(t, err, core.ErrInvalidAlarmID)

	_, err = f.scheduler.Schedule(ctx, core.AlarmDefinition{ID: 1}, -5)
	assert.ErrorIs(t, err, core.ErrInvalidDelay)

	_, err = f.scheduler.ScheduleRecurring(ctx, core.AlarmDefinition{ID: 1})
	assert.ErrorIs(t, err, core.ErrMissingSchedule)

	_, err = f.scheduler.ScheduleRecurring(ctx, core.AlarmDefinition{ID: 1, Schedule: &core.WeeklySchedule{Hour: 25}})
	assert.ErrorIs(t, err, core.ErrInvalidHour)

	assert.Empty(t, f.timer.ArmedIDs())
}

func TestScheduler_PersistFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.storage.saveErr = errors.New("disk full")

	_, err := f.scheduler.Schedule(context.Background(), core.AlarmDefinition{ID: 5}, 30)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	_, ok := f.timer.Armed(5)
	assert.False(t, ok)
}

func TestScheduler_CancelIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.scheduler.Schedule(ctx, core.AlarmDefinition{ID: 9}, 30)
	require.NoError(t, err)

	require.NoError(t, f.scheduler.Cancel(ctx, 9))
	require.NoError(t, f.scheduler.Cancel(ctx, 9))

	_, ok := f.timer.Armed(9)
	assert.False(t, ok)
	_, ok = f.storage.get(9)
	assert.False(t, ok)
	assert.Equal(t, []int{9, 9}, f.storage.deleted)
}

func TestScheduler_ConcurrentScheduleSameID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(delay int) {
			defer wg.Done()
			_, _ = f.scheduler.Schedule(ctx, core.AlarmDefinition{ID: 1}, delay)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, []int{1}, f.timer.ArmedIDs())
}
