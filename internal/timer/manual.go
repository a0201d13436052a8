package timer

import (
	"context"
	"sort"
	"sync"
	"time"

	"reveille/internal/core"
)

// ManualTimer is a Port that only fires when told to. It backs tests and
// hosts that drive wake-ups from an external scheduler.
type ManualTimer struct {
	mu      sync.Mutex
	armed   map[int]entry
	handler Handler
}

// NewManualTimer creates an empty ManualTimer
func NewManualTimer() *ManualTimer {
	return &ManualTimer{armed: make(map[int]entry)}
}

// SetHandler attaches the fire handler
func (m *ManualTimer) SetHandler(h Handler) {
	m.mu.Lock()
	m.handler = h
	m.mu.Unlock()
}

// Register arms a timer, replacing any armed for the same ID
func (m *ManualTimer) Register(ctx context.Context, alarmID int, at time.Time, payload core.AlarmDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handler == nil {
		return ErrNoHandler
	}
	m.armed[alarmID] = entry{alarmID: alarmID, triggerAt: at, payload: payload.Clone()}
	return nil
}

// Cancel disarms a timer
func (m *ManualTimer) Cancel(alarmID int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.armed[alarmID]
	delete(m.armed, alarmID)
	return ok
}

// Armed returns the instant the timer for alarmID fires at
func (m *ManualTimer) Armed(alarmID int) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.armed[alarmID]
	return e.triggerAt, ok
}

// ArmedIDs returns every armed alarm ID in ascending order
func (m *ManualTimer) ArmedIDs() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int, 0, len(m.armed))
	for id := range m.armed {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Fire disarms and fires the timer for alarmID; false when none is armed
func (m *ManualTimer) Fire(ctx context.Context, alarmID int) bool {
	m.mu.Lock()
	e, ok := m.armed[alarmID]
	delete(m.armed, alarmID)
	handler := m.handler
	m.mu.Unlock()

	if !ok || handler == nil {
		return false
	}
	handler(ctx, Fired{AlarmID: e.alarmID, TriggerAt: e.triggerAt, Payload: e.payload})
	return true
}

// FireDue fires every timer due at or before now and returns how many fired
func (m *ManualTimer) FireDue(ctx context.Context, now time.Time) int {
	m.mu.Lock()
	var due []int
	for id, e := range m.armed {
		if !e.triggerAt.After(now) {
			due = append(due, id)
		}
	}
	m.mu.Unlock()

	sort.Ints(due)
	fired := 0
	for _, id := range due {
		if m.Fire(ctx, id) {
			fired++
		}
	}
	return fired
}

var _ Port = (*ManualTimer)(nil)
