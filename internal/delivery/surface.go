package delivery

import (
	"context"
	"log/slog"
	"time"

	"reveille/internal/core"
)

// LogSurface is a Surface for headless hosts; it only logs the request
type LogSurface struct {
	logger *slog.Logger
}

// NewLogSurface creates a LogSurface
func NewLogSurface(logger *slog.Logger) *LogSurface {
	return &LogSurface{logger: logger.With("component", "surface-log")}
}

// ShowAlarm logs the alarm the user would be shown
func (s *LogSurface) ShowAlarm(ctx context.Context, def core.AlarmDefinition, firedAt time.Time) error {
	s.logger.Warn("ALARM_SURFACE",
		"alarm_id", def.ID,
		"message", def.Message,
		"game_type", def.GameType,
		"duration_minutes", def.DurationMinutes,
		"fired_at", firedAt)
	return nil
}

var _ Surface = (*LogSurface)(nil)
