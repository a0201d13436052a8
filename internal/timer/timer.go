// Package timer arms exact single-shot wake events keyed by alarm ID.
package timer

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"reveille/internal/core"
)

// ErrNoHandler is returned by Register before a handler is attached
var ErrNoHandler = errors.New("timer has no fire handler")

// Fired is delivered to the handler when an armed timer elapses
type Fired struct {
	AlarmID   int
	TriggerAt time.Time
	Payload   core.AlarmDefinition
}

// Handler receives fired timers
type Handler func(ctx context.Context, fired Fired)

// Port is the exact-timer facility alarms are armed on. At most one timer is
// armed per alarm ID; registering an armed ID replaces its timer.
type Port interface {
	Register(ctx context.Context, alarmID int, at time.Time, payload core.AlarmDefinition) error
	// Cancel disarms the timer for alarmID and reports whether one was armed
	Cancel(alarmID int) bool
	// Armed returns the instant the timer for alarmID fires at
	Armed(alarmID int) (time.Time, bool)
	SetHandler(h Handler)
}

// Authorizer answers whether exact wake-ups may be scheduled
type Authorizer interface {
	CanScheduleExact(ctx context.Context) bool
}

// StaticAuthorizer is an Authorizer toggled by configuration or at runtime
type StaticAuthorizer struct {
	allowed atomic.Bool
}

// NewStaticAuthorizer creates an authorizer with an initial answer
func NewStaticAuthorizer(allowed bool) *StaticAuthorizer {
	a := &StaticAuthorizer{}
	a.allowed.Store(allowed)
	return a
}

// CanScheduleExact reports the current answer
func (a *StaticAuthorizer) CanScheduleExact(ctx context.Context) bool {
	return a.allowed.Load()
}

// SetAllowed changes the answer
func (a *StaticAuthorizer) SetAllowed(allowed bool) {
	a.allowed.Store(allowed)
}

var _ Authorizer = (*StaticAuthorizer)(nil)
