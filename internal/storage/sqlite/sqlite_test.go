package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reveille/internal/core"
	"reveille/internal/storage"
)

func setupTestDB(t *testing.T) *SQLiteStorage {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	s, err := New(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestSQLiteStorage_KV(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	err := s.SetMany(ctx, map[string]string{
		"alarm_1_time":  "1000",
		"alarm_1_game":  "math",
		"alarm_12_time": "2000",
		"alarmXtime":    "other",
	})
	require.NoError(t, err)

	value, ok, err := s.Get(ctx, "alarm_1_game")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "math", value)

	// Upsert overwrites
	require.NoError(t, s.SetMany(ctx, map[string]string{"alarm_1_game": "piano_tiles"}))
	value, _, err = s.Get(ctx, "alarm_1_game")
	require.NoError(t, err)
	assert.Equal(t, "piano_tiles", value)

	// Prefix underscores are literal, not wildcards
	pairs, err := s.Scan(ctx, "alarm_1_")
	require.NoError(t, err)
	assert.Len(t, pairs, 2)
	assert.NotContains(t, pairs, "alarm_12_time")

	pairs, err = s.Scan(ctx, "alarm_")
	require.NoError(t, err)
	assert.Len(t, pairs, 3)

	require.NoError(t, s.Delete(ctx, "alarm_1_time", "alarm_1_game", "missing"))
	_, ok, err = s.Get(ctx, "alarm_1_time")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStorage_SurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := New(dbPath)
	require.NoError(t, err)

	store := storage.NewAlarmStore(s, time.UTC)
	trigger := time.Date(2024, time.January, 3, 7, 30, 0, 0, time.UTC)
	err = store.SaveAlarm(ctx, &core.PersistedAlarmRecord{
		Definition: core.AlarmDefinition{
			ID: 42, Message: "Wake up", GameType: "math", DurationMinutes: 2,
			Schedule: &core.WeeklySchedule{Hour: 7, Minute: 30, Weekdays: []int{core.Monday, core.Wednesday}},
		},
		TriggerAt: trigger,
		Active:    true,
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := New(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	rec, err := storage.NewAlarmStore(reopened, time.UTC).GetAlarm(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, trigger, rec.TriggerAt)
	assert.Equal(t, "Wake up", rec.Definition.Message)
	require.NotNil(t, rec.Definition.Schedule)
	assert.Equal(t, []int{core.Monday, core.Wednesday}, rec.Definition.Schedule.Weekdays)
}
