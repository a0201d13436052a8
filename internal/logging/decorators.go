package logging

import (
	"context"
	"log/slog"
	"time"

	"reveille/internal/core"
)

// AlarmServiceLogger wraps an AlarmService and logs all method calls
type AlarmServiceLogger struct {
	service core.AlarmService
	logger  *slog.Logger
}

// NewAlarmServiceLogger creates a new logging decorator for AlarmService
func NewAlarmServiceLogger(service core.AlarmService, logger *slog.Logger) core.AlarmService {
	return &AlarmServiceLogger{
		service: service,
		logger:  logger.With("interface", "AlarmService"),
	}
}

// observe logs the call, runs fn and logs its outcome with the elapsed time
func (l *AlarmServiceLogger) observe(method string, fn func() error, attrs ...any) error {
	start := time.Now()
	l.logger.Info(method+" called", attrs...)

	err := fn()
	attrs = append(attrs, "duration", time.Since(start))

	if err != nil {
		l.logger.Error(method+" failed", append(attrs, "error", err)...)
		return err
	}
	l.logger.Info(method+" completed", attrs...)
	return nil
}

func (l *AlarmServiceLogger) Schedule(ctx context.Context, def core.AlarmDefinition, delaySeconds int) (*core.PersistedAlarmRecord, error) {
	var rec *core.PersistedAlarmRecord
	err := l.observe("Schedule", func() (err error) {
		rec, err = l.service.Schedule(ctx, def, delaySeconds)
		return err
	}, "alarm_id", def.ID, "delay_seconds", delaySeconds, "game_type", def.GameType)
	return rec, err
}

func (l *AlarmServiceLogger) ScheduleRecurring(ctx context.Context, def core.AlarmDefinition) (*core.PersistedAlarmRecord, error) {
	attrs := []any{"alarm_id", def.ID}
	if def.Schedule != nil {
		attrs = append(attrs, "hour", def.Schedule.Hour, "minute", def.Schedule.Minute, "weekdays", def.Schedule.Weekdays)
	}

	var rec *core.PersistedAlarmRecord
	err := l.observe("ScheduleRecurring", func() (err error) {
		rec, err = l.service.ScheduleRecurring(ctx, def)
		return err
	}, attrs...)
	return rec, err
}

func (l *AlarmServiceLogger) Cancel(ctx context.Context, alarmID int) error {
	return l.observe("Cancel", func() error {
		return l.service.Cancel(ctx, alarmID)
	}, "alarm_id", alarmID)
}

func (l *AlarmServiceLogger) GetAlarm(ctx context.Context, alarmID int) (*core.PersistedAlarmRecord, error) {
	// Read path: no call logging, only failures
	rec, err := l.service.GetAlarm(ctx, alarmID)
	if err != nil {
		l.logger.Debug("GetAlarm failed", "alarm_id", alarmID, "error", err)
	}
	return rec, err
}

func (l *AlarmServiceLogger) ListAlarms(ctx context.Context) ([]*core.PersistedAlarmRecord, error) {
	records, err := l.service.ListAlarms(ctx)
	if err != nil {
		l.logger.Error("ListAlarms failed", "error", err)
	}
	return records, err
}

func (l *AlarmServiceLogger) IsExactSchedulingAllowed(ctx context.Context) bool {
	return l.service.IsExactSchedulingAllowed(ctx)
}

func (l *AlarmServiceLogger) StartRinging(ctx context.Context) error {
	return l.observe("StartRinging", func() error {
		return l.service.StartRinging(ctx)
	})
}

func (l *AlarmServiceLogger) PauseRinging(ctx context.Context) error {
	return l.observe("PauseRinging", func() error {
		return l.service.PauseRinging(ctx)
	})
}

func (l *AlarmServiceLogger) ResumeRinging(ctx context.Context) error {
	return l.observe("ResumeRinging", func() error {
		return l.service.ResumeRinging(ctx)
	})
}

func (l *AlarmServiceLogger) StopRinging(ctx context.Context, alarmID int) error {
	return l.observe("StopRinging", func() error {
		return l.service.StopRinging(ctx, alarmID)
	}, "alarm_id", alarmID)
}

func (l *AlarmServiceLogger) RingingStatus(ctx context.Context) core.RingingStatus {
	return l.service.RingingStatus(ctx)
}

func (l *AlarmServiceLogger) Acknowledge(ctx context.Context, alarmID int, suppressSeconds *int) error {
	attrs := []any{"alarm_id", alarmID}
	if suppressSeconds != nil {
		attrs = append(attrs, "suppress_seconds", *suppressSeconds)
	}
	return l.observe("Acknowledge", func() error {
		return l.service.Acknowledge(ctx, alarmID, suppressSeconds)
	}, attrs...)
}

func (l *AlarmServiceLogger) Snooze(ctx context.Context, alarmID int) error {
	return l.observe("Snooze", func() error {
		return l.service.Snooze(ctx, alarmID)
	}, "alarm_id", alarmID)
}

func (l *AlarmServiceLogger) Accept(ctx context.Context, alarmID int) error {
	return l.observe("Accept", func() error {
		return l.service.Accept(ctx, alarmID)
	}, "alarm_id", alarmID)
}
