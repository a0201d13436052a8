// Package engine implements core.AlarmService on top of the scheduler, the
// alarm store and the ringing session.
package engine

import (
	"context"
	"log/slog"
	"time"

	"reveille/internal/clock"
	"reveille/internal/core"
	"reveille/internal/events"
)

const (
	// DefaultSnoozeSeconds is how far a snooze pushes the alarm
	DefaultSnoozeSeconds = 60
	// DefaultSuppressSeconds is the acknowledge window when none is given
	DefaultSuppressSeconds = 180
)

// Scheduler arms and disarms alarms
type Scheduler interface {
	Schedule(ctx context.Context, def core.AlarmDefinition, delaySeconds int) (*core.PersistedAlarmRecord, error)
	ScheduleRecurring(ctx context.Context, def core.AlarmDefinition) (*core.PersistedAlarmRecord, error)
	Cancel(ctx context.Context, alarmID int) error
	CanScheduleExact(ctx context.Context) bool
}

// Storage reads alarm records and writes suppression windows
type Storage interface {
	GetAlarm(ctx context.Context, id int) (*core.PersistedAlarmRecord, error)
	ListAlarms(ctx context.Context) ([]*core.PersistedAlarmRecord, error)
	SetAlarmSuppressUntil(ctx context.Context, id int, until time.Time) error
	SetGlobalSuppressUntil(ctx context.Context, until time.Time) error
}

// Session is the ringing session the engine drives
type Session interface {
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Stop(ctx context.Context) error
	Current() (core.AlarmDefinition, bool)
	Status() core.RingingStatus
}

// Options tunes engine behaviour
type Options struct {
	SnoozeSeconds   int
	SuppressSeconds int
}

// Engine services every inbound call of the UI bridge
type Engine struct {
	scheduler Scheduler
	storage   Storage
	session   Session
	publisher events.Publisher
	clock     clock.Clock
	opts      Options
	logger    *slog.Logger
}

// New creates an engine
func New(scheduler Scheduler, storage Storage, session Session, publisher events.Publisher, clk clock.Clock, opts Options, logger *slog.Logger) *Engine {
	if opts.SnoozeSeconds <= 0 {
		opts.SnoozeSeconds = DefaultSnoozeSeconds
	}
	if opts.SuppressSeconds <= 0 {
		opts.SuppressSeconds = DefaultSuppressSeconds
	}
	return &Engine{
		scheduler: scheduler,
		storage:   storage,
		session:   session,
		publisher: publisher,
		clock:     clk,
		opts:      opts,
		logger:    logger.With("component", "engine"),
	}
}

// Schedule arms a one-shot alarm
func (e *Engine) Schedule(ctx context.Context, def core.AlarmDefinition, delaySeconds int) (*core.PersistedAlarmRecord, error) {
	return e.scheduler.Schedule(ctx, def, delaySeconds)
}

// ScheduleRecurring arms a weekly alarm
func (e *Engine) ScheduleRecurring(ctx context.Context, def core.AlarmDefinition) (*core.PersistedAlarmRecord, error) {
	return e.scheduler.ScheduleRecurring(ctx, def)
}

// Cancel disarms and deletes an alarm
func (e *Engine) Cancel(ctx context.Context, alarmID int) error {
	return e.scheduler.Cancel(ctx, alarmID)
}

// GetAlarm returns a stored alarm
func (e *Engine) GetAlarm(ctx context.Context, alarmID int) (*core.PersistedAlarmRecord, error) {
	return e.storage.GetAlarm(ctx, alarmID)
}

// ListAlarms returns every stored alarm
func (e *Engine) ListAlarms(ctx context.Context) ([]*core.PersistedAlarmRecord, error) {
	return e.storage.ListAlarms(ctx)
}

// IsExactSchedulingAllowed reports whether exact wake-ups are permitted
func (e *Engine) IsExactSchedulingAllowed(ctx context.Context) bool {
	return e.scheduler.CanScheduleExact(ctx)
}

// StartRinging resumes a session once the alarm UI is visible
func (e *Engine) StartRinging(ctx context.Context) error {
	return e.session.Resume(ctx)
}

// PauseRinging silences the session while the UI is hidden
func (e *Engine) PauseRinging(ctx context.Context) error {
	return e.session.Pause(ctx)
}

// ResumeRinging resumes a paused session
func (e *Engine) ResumeRinging(ctx context.Context) error {
	return e.session.Resume(ctx)
}

// StopRinging stops the session. alarmID 0 stops whatever rings; another ID
// that is not ringing is ignored.
func (e *Engine) StopRinging(ctx context.Context, alarmID int) error {
	_, err := e.stopMatching(ctx, alarmID)
	return err
}

// RingingStatus returns the session view
func (e *Engine) RingingStatus(ctx context.Context) core.RingingStatus {
	return e.session.Status()
}

// Acknowledge suppresses further deliveries for suppressSeconds (the
// configured default when nil) and stops the session. alarmID 0 writes the
// global window.
func (e *Engine) Acknowledge(ctx context.Context, alarmID int, suppressSeconds *int) error {
	seconds := e.opts.SuppressSeconds
	if suppressSeconds != nil {
		if *suppressSeconds < 0 {
			return core.ErrInvalidDelay
		}
		seconds = *suppressSeconds
	}
	now := e.clock.Now()
	until := now.Add(time.Duration(seconds) * time.Second)

	var err error
	if alarmID > 0 {
		err = e.storage.SetAlarmSuppressUntil(ctx, alarmID, until)
	} else {
		err = e.storage.SetGlobalSuppressUntil(ctx, until)
	}
	if err != nil {
		return err
	}
	e.logger.Info("Alarm acknowledged", "alarm_id", alarmID, "suppressed_until", until)

	def, err := e.stopMatching(ctx, alarmID)
	if err != nil {
		return err
	}
	e.publisher.Publish(core.NewEvent(core.EventRingingAcknowledged, def, now))
	return nil
}

// Snooze stops the session and re-arms the ringing alarm as a one-shot
func (e *Engine) Snooze(ctx context.Context, alarmID int) error {
	def, ok := e.session.Current()
	if !ok || (alarmID > 0 && def.ID != alarmID) {
		rec, err := e.storage.GetAlarm(ctx, alarmID)
		if err != nil {
			return err
		}
		def = rec.Definition
	}

	if _, err := e.stopMatching(ctx, def.ID); err != nil {
		return err
	}

	rec, err := e.scheduler.Schedule(ctx, def, e.opts.SnoozeSeconds)
	if err != nil {
		return err
	}

	e.logger.Info("Alarm snoozed", "alarm_id", def.ID, "trigger_at", rec.TriggerAt)
	e.publisher.Publish(core.NewEvent(core.EventRingingSnoozed, def, e.clock.Now()))
	return nil
}

// Accept stops the session after the user answered the alarm surface
func (e *Engine) Accept(ctx context.Context, alarmID int) error {
	def, err := e.stopMatching(ctx, alarmID)
	if err != nil {
		return err
	}
	e.publisher.Publish(core.NewEvent(core.EventRingingAcknowledged, def, e.clock.Now()))
	return nil
}

// stopMatching stops the session when it rings alarmID (or anything, for 0)
// and returns the definition the caller acted on
func (e *Engine) stopMatching(ctx context.Context, alarmID int) (core.AlarmDefinition, error) {
	current, ok := e.session.Current()
	if ok && alarmID > 0 && current.ID != alarmID {
		e.logger.Info("Stop ignored, a different alarm is ringing", "alarm_id", alarmID, "ringing_id", current.ID)
		return core.AlarmDefinition{ID: alarmID}, nil
	}

	if err := e.session.Stop(ctx); err != nil {
		return core.AlarmDefinition{}, err
	}

	if !ok {
		return core.AlarmDefinition{ID: alarmID}, nil
	}
	return current, nil
}

var _ core.AlarmService = (*Engine)(nil)
