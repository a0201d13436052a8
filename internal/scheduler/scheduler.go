package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"reveille/internal/clock"
	"reveille/internal/core"
	"reveille/internal/metrics"
	"reveille/internal/timer"
)

// Storage interface for scheduler operations
type Storage interface {
	SaveAlarm(ctx context.Context, rec *core.PersistedAlarmRecord) error
	DeleteAlarm(ctx context.Context, id int) error
}

// Scheduler arms alarms on the timer port and persists them
type Scheduler struct {
	storage    Storage
	timer      timer.Port
	authorizer timer.Authorizer
	clock      clock.Clock
	logger     *slog.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(storage Storage, port timer.Port, authorizer timer.Authorizer, clk clock.Clock, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		storage:    storage,
		timer:      port,
		authorizer: authorizer,
		clock:      clk,
		logger:     logger.With("component", "scheduler"),
	}
}

// CanScheduleExact reports whether exact wake-ups are currently permitted
func (s *Scheduler) CanScheduleExact(ctx context.Context) bool {
	return s.authorizer.CanScheduleExact(ctx)
}

// Schedule arms a one-shot alarm delaySeconds from now, replacing any alarm
// with the same ID
func (s *Scheduler) Schedule(ctx context.Context, def core.AlarmDefinition, delaySeconds int) (*core.PersistedAlarmRecord, error) {
	if !s.authorizer.CanScheduleExact(ctx) {
		s.logger.Warn("exact scheduling not permitted", "alarm_id", def.ID)
		metrics.ScheduleTotal.WithLabelValues("one_shot", metrics.ResultDenied).Inc()
		return nil, core.ErrPermissionDenied
	}

	def.ApplyDefaults()
	if err := def.Validate(); err != nil {
		metrics.ScheduleTotal.WithLabelValues("one_shot", metrics.ResultError).Inc()
		return nil, err
	}
	if delaySeconds < 0 {
		metrics.ScheduleTotal.WithLabelValues("one_shot", metrics.ResultError).Inc()
		return nil, core.ErrInvalidDelay
	}

	triggerAt := s.clock.Now().Add(time.Duration(delaySeconds) * time.Second)

	rec, err := s.arm(ctx, def, triggerAt)
	if err != nil {
		metrics.ScheduleTotal.WithLabelValues("one_shot", metrics.ResultError).Inc()
		return nil, err
	}

	metrics.ScheduleTotal.WithLabelValues("one_shot", metrics.ResultOK).Inc()
	s.logger.Info("Alarm scheduled",
		"alarm_id", def.ID,
		"delay_seconds", delaySeconds,
		"trigger_at", triggerAt)
	return rec, nil
}

// ScheduleRecurring arms the next occurrence of a weekly schedule. An empty
// weekday set arms a one-shot at the next hour:minute.
func (s *Scheduler) ScheduleRecurring(ctx context.Context, def core.AlarmDefinition) (*core.PersistedAlarmRecord, error) {
	if !s.authorizer.CanScheduleExact(ctx) {
		s.logger.Warn("exact scheduling not permitted", "alarm_id", def.ID)
		metrics.ScheduleTotal.WithLabelValues("recurring", metrics.ResultDenied).Inc()
		return nil, core.ErrPermissionDenied
	}

	def.ApplyDefaults()
	if def.Schedule == nil {
		metrics.ScheduleTotal.WithLabelValues("recurring", metrics.ResultError).Inc()
		return nil, core.ErrMissingSchedule
	}
	if err := def.Validate(); err != nil {
		metrics.ScheduleTotal.WithLabelValues("recurring", metrics.ResultError).Inc()
		return nil, err
	}
	def = def.Clone()
	def.Schedule.Weekdays = def.Schedule.NormalizedWeekdays()

	triggerAt, err := core.NextOccurrence(s.clock.Now(), def)
	if err != nil {
		metrics.ScheduleTotal.WithLabelValues("recurring", metrics.ResultError).Inc()
		return nil, err
	}

	rec, err := s.arm(ctx, def, triggerAt)
	if err != nil {
		metrics.ScheduleTotal.WithLabelValues("recurring", metrics.ResultError).Inc()
		return nil, err
	}

	metrics.ScheduleTotal.WithLabelValues("recurring", metrics.ResultOK).Inc()
	s.logger.Info("Recurring alarm scheduled",
		"alarm_id", def.ID,
		"hour", def.Schedule.Hour,
		"minute", def.Schedule.Minute,
		"weekdays", def.Schedule.Weekdays,
		"trigger_at", triggerAt)
	return rec, nil
}

// Cancel disarms and forgets an alarm. Cancelling an unknown ID is a no-op.
func (s *Scheduler) Cancel(ctx context.Context, alarmID int) error {
	armed := s.timer.Cancel(alarmID)
	metrics.CancelTotal.WithLabelValues(strconv.FormatBool(armed)).Inc()
	if !armed {
		s.logger.Warn("No armed timer to cancel", "alarm_id", alarmID)
	}

	if err := s.storage.DeleteAlarm(ctx, alarmID); err != nil {
		s.logger.Error("Failed to delete alarm record", "alarm_id", alarmID, "error", err)
		return err
	}

	s.logger.Info("Alarm cancelled", "alarm_id", alarmID)
	return nil
}

// arm replaces the armed timer for def.ID and overwrites its record. A failed
// write disarms the new timer so no alarm is left armed without a record.
func (s *Scheduler) arm(ctx context.Context, def core.AlarmDefinition, triggerAt time.Time) (*core.PersistedAlarmRecord, error) {
	s.timer.Cancel(def.ID)

	if err := s.timer.Register(ctx, def.ID, triggerAt, def); err != nil {
		return nil, fmt.Errorf("register timer for alarm %d: %w", def.ID, err)
	}

	rec := &core.PersistedAlarmRecord{
		Definition: def,
		TriggerAt:  triggerAt,
		Active:     true,
	}
	if err := s.storage.SaveAlarm(ctx, rec); err != nil {
		s.timer.Cancel(def.ID)
		s.logger.Error("Failed to persist alarm, timer rolled back", "alarm_id", def.ID, "error", err)
		return nil, fmt.Errorf("persist alarm %d: %w", def.ID, err)
	}

	return rec, nil
}
