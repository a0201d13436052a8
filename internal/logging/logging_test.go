package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reveille/internal/core"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestNewLogger_JSONTimestampKey(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Format: "json", Level: slog.LevelInfo, Output: &buf})

	logger.Info("hello", "alarm_id", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Contains(t, entry, "timestamp")
	assert.NotContains(t, entry, "time")
	assert.Equal(t, "reveille", entry["service"])
	assert.EqualValues(t, 3, entry["alarm_id"])
}

// stubService embeds the interface so only the exercised methods need bodies
type stubService struct {
	core.AlarmService
	cancelErr error
}

func (s *stubService) Cancel(ctx context.Context, alarmID int) error {
	return s.cancelErr
}

func (s *stubService) Schedule(ctx context.Context, def core.AlarmDefinition, delaySeconds int) (*core.PersistedAlarmRecord, error) {
	return &core.PersistedAlarmRecord{Definition: def}, nil
}

func TestAlarmServiceLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Format: "text", Level: slog.LevelInfo, Output: &buf})
	stub := &stubService{cancelErr: errors.New("boom")}
	svc := NewAlarmServiceLogger(stub, logger)

	rec, err := svc.Schedule(context.Background(), core.AlarmDefinition{ID: 5}, 30)
	require.NoError(t, err)
	assert.Equal(t, 5, rec.Definition.ID)

	err = svc.Cancel(context.Background(), 5)
	assert.EqualError(t, err, "boom")

	out := buf.String()
	assert.True(t, strings.Contains(out, "Schedule called"))
	assert.True(t, strings.Contains(out, "Schedule completed"))
	assert.True(t, strings.Contains(out, "Cancel failed"))
	assert.True(t, strings.Contains(out, "error=boom"))
}
