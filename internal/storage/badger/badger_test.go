package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reveille/internal/core"
	"reveille/internal/storage"
)

func TestBadgerStorage_InMemoryKV(t *testing.T) {
	s, err := Open(InMemoryConfig())
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.SetMany(ctx, map[string]string{
		"alarm_1_time": "10",
		"alarm_1_game": "math",
		"alarm_2_time": "20",
	}))

	value, ok, err := s.Get(ctx, "alarm_2_time")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "20", value)

	_, ok, err = s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	pairs, err := s.Scan(ctx, "alarm_1_")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"alarm_1_time": "10", "alarm_1_game": "math"}, pairs)

	require.NoError(t, s.Delete(ctx, "alarm_1_time", "alarm_1_game"))
	pairs, err = s.Scan(ctx, "alarm_")
	require.NoError(t, err)
	assert.Len(t, pairs, 1)
}

func TestBadgerStorage_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	cfg := DefaultConfig(dir)
	cfg.GCInterval = time.Hour

	s, err := Open(cfg)
	require.NoError(t, err)

	store := storage.NewAlarmStore(s, time.UTC)
	until := time.Date(2024, time.January, 1, 8, 3, 0, 0, time.UTC)
	require.NoError(t, store.SetGlobalSuppressUntil(ctx, until))
	require.NoError(t, store.Close())

	reopened, err := Open(cfg)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := storage.NewAlarmStore(reopened, time.UTC).GlobalSuppressUntil(ctx)
	require.NoError(t, err)
	assert.Equal(t, until, got)

	_, err = storage.NewAlarmStore(reopened, time.UTC).GetAlarm(ctx, 1)
	assert.ErrorIs(t, err, core.ErrAlarmNotFound)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}
