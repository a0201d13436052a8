// Package delivery handles fired alarm timers: suppression, ringing,
// the alert surface and recurrence re-arm.
package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"reveille/internal/clock"
	"reveille/internal/core"
	"reveille/internal/events"
	"reveille/internal/metrics"
	"reveille/internal/timer"
)

// Outcome describes what a delivery did
type Outcome string

const (
	OutcomeSuppressed Outcome = "suppressed"
	OutcomeDelivered  Outcome = "delivered"
)

// SuppressionReader reads the suppression windows
type SuppressionReader interface {
	AlarmSuppressUntil(ctx context.Context, id int) (time.Time, error)
	GlobalSuppressUntil(ctx context.Context) (time.Time, error)
}

// Ringer starts the ringing session
type Ringer interface {
	Start(ctx context.Context, def core.AlarmDefinition) error
}

// Rescheduler re-arms recurring alarms
type Rescheduler interface {
	ScheduleRecurring(ctx context.Context, def core.AlarmDefinition) (*core.PersistedAlarmRecord, error)
}

// Surface shows the user-facing alarm response surface
type Surface interface {
	ShowAlarm(ctx context.Context, def core.AlarmDefinition, firedAt time.Time) error
}

// Handler processes fired timers
type Handler struct {
	suppression SuppressionReader
	ringer      Ringer
	rescheduler Rescheduler
	surfaces    []Surface
	publisher   events.Publisher
	clock       clock.Clock
	logger      *slog.Logger
}

// NewHandler creates a delivery handler
func NewHandler(suppression SuppressionReader, ringer Ringer, rescheduler Rescheduler, publisher events.Publisher, clk clock.Clock, logger *slog.Logger, surfaces ...Surface) *Handler {
	return &Handler{
		suppression: suppression,
		ringer:      ringer,
		rescheduler: rescheduler,
		surfaces:    surfaces,
		publisher:   publisher,
		clock:       clk,
		logger:      logger.With("component", "delivery"),
	}
}

// OnFired adapts Handle to timer.Handler
func (h *Handler) OnFired(ctx context.Context, fired timer.Fired) {
	h.Handle(ctx, fired)
}

// Handle delivers one fired timer
func (h *Handler) Handle(ctx context.Context, fired timer.Fired) Outcome {
	now := h.clock.Now()
	def := fired.Payload
	def.ID = fired.AlarmID

	metrics.DeliveryLateness.Observe(now.Sub(fired.TriggerAt).Seconds())

	if until, suppressed := h.suppressed(ctx, def.ID, now); suppressed {
		metrics.DeliveryTotal.WithLabelValues(string(OutcomeSuppressed)).Inc()
		h.logger.Info("Delivery suppressed",
			"alarm_id", def.ID,
			"suppressed_until", until,
			"reason", core.ErrDeliverySuppressed)
		return OutcomeSuppressed
	}

	h.logger.Info("Alarm fired",
		"alarm_id", def.ID,
		"message", def.Message,
		"game_type", def.GameType,
		"trigger_at", fired.TriggerAt)

	if err := h.startRinging(ctx, def); err != nil {
		h.logger.Error("Failed to start ringing", "alarm_id", def.ID, "error", err)
	} else {
		h.publisher.Publish(core.NewEvent(core.EventRingingStarted, def, now))
	}

	for _, surface := range h.surfaces {
		if err := h.showSurface(ctx, surface, def, now); err != nil {
			h.logger.Error("Failed to show alarm surface", "alarm_id", def.ID, "error", err)
		}
	}

	if def.IsRecurring() {
		h.rearm(ctx, def)
	}

	metrics.DeliveryTotal.WithLabelValues(string(OutcomeDelivered)).Inc()
	return OutcomeDelivered
}

// suppressed reports whether now falls in the per-alarm or global window.
// Read failures are logged and treated as not suppressed.
func (h *Handler) suppressed(ctx context.Context, id int, now time.Time) (time.Time, bool) {
	perAlarm, err := h.suppression.AlarmSuppressUntil(ctx, id)
	if err != nil {
		h.logger.Warn("Failed to read alarm suppression window", "alarm_id", id, "error", err)
	} else if now.Before(perAlarm) {
		return perAlarm, true
	}

	global, err := h.suppression.GlobalSuppressUntil(ctx)
	if err != nil {
		h.logger.Warn("Failed to read global suppression window", "error", err)
	} else if now.Before(global) {
		return global, true
	}

	return time.Time{}, false
}

func (h *Handler) startRinging(ctx context.Context, def core.AlarmDefinition) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ringer panic: %v", r)
		}
	}()
	return h.ringer.Start(ctx, def)
}

func (h *Handler) showSurface(ctx context.Context, surface Surface, def core.AlarmDefinition, firedAt time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("surface panic: %v", r)
		}
	}()
	return surface.ShowAlarm(ctx, def, firedAt)
}

func (h *Handler) rearm(ctx context.Context, def core.AlarmDefinition) {
	rec, err := h.rescheduler.ScheduleRecurring(ctx, def)
	if err != nil {
		h.logger.Error("Failed to re-arm recurring alarm", "alarm_id", def.ID, "error", err)
		return
	}
	h.logger.Info("Recurring alarm re-armed", "alarm_id", def.ID, "next_trigger_at", rec.TriggerAt)
}
