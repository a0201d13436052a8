package timer

import (
	"container/heap"
	"context"
	"log/slog"
	"sync"
	"time"

	"reveille/internal/clock"
	"reveille/internal/core"
)

// DefaultMaxSleep caps a single wait so wall-clock steps and host suspend
// are noticed within a minute
const DefaultMaxSleep = 60 * time.Second

// HeapTimer is an in-process Port backed by a min-heap and one goroutine
type HeapTimer struct {
	clock    clock.Clock
	logger   *slog.Logger
	maxSleep time.Duration

	mu      sync.Mutex
	entries entryHeap
	seq     uint64
	handler Handler

	wake chan struct{}
}

// NewHeapTimer creates a HeapTimer. Call Run to start firing.
func NewHeapTimer(clk clock.Clock, maxSleep time.Duration, logger *slog.Logger) *HeapTimer {
	if maxSleep <= 0 {
		maxSleep = DefaultMaxSleep
	}
	return &HeapTimer{
		clock:    clk,
		logger:   logger.With("component", "timer"),
		maxSleep: maxSleep,
		wake:     make(chan struct{}, 1),
	}
}

// SetHandler attaches the fire handler
func (t *HeapTimer) SetHandler(h Handler) {
	t.mu.Lock()
	t.handler = h
	t.mu.Unlock()
}

// Register arms a timer for alarmID, replacing any armed one
func (t *HeapTimer) Register(ctx context.Context, alarmID int, at time.Time, payload core.AlarmDefinition) error {
	t.mu.Lock()
	if t.handler == nil {
		t.mu.Unlock()
		return ErrNoHandler
	}
	t.entries.removeByID(alarmID)
	t.seq++
	heap.Push(&t.entries, entry{alarmID: alarmID, triggerAt: at, payload: payload.Clone(), seq: t.seq})
	t.mu.Unlock()

	t.logger.Debug("timer armed", "alarm_id", alarmID, "trigger_at", at)
	t.notify()
	return nil
}

// Cancel disarms the timer for alarmID
func (t *HeapTimer) Cancel(alarmID int) bool {
	t.mu.Lock()
	_, found := t.entries.removeByID(alarmID)
	t.mu.Unlock()

	if found {
		t.notify()
	}
	return found
}

// Armed returns the trigger instant of the timer for alarmID
func (t *HeapTimer) Armed(alarmID int) (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries.find(alarmID)
	return e.triggerAt, ok
}

// Len returns the number of armed timers
func (t *HeapTimer) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entries.Len()
}

// Run fires due timers until ctx is cancelled. Handlers run on this
// goroutine with the heap unlocked, so they may re-register their own ID.
func (t *HeapTimer) Run(ctx context.Context) error {
	t.logger.Info("timer loop started", "max_sleep", t.maxSleep)

	timer := time.NewTimer(t.nextWait())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("timer loop stopped")
			return nil

		case <-t.wake:

		case <-timer.C:
			t.fireDue(ctx)
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(t.nextWait())
	}
}

// fireDue pops every entry whose instant has arrived and hands it to the handler
func (t *HeapTimer) fireDue(ctx context.Context) {
	for {
		t.mu.Lock()
		if t.entries.Len() == 0 || t.entries[0].triggerAt.After(t.clock.Now()) {
			t.mu.Unlock()
			return
		}
		e := heap.Pop(&t.entries).(entry)
		handler := t.handler
		t.mu.Unlock()

		if handler == nil {
			t.logger.Warn("timer fired without handler", "alarm_id", e.alarmID)
			continue
		}
		t.logger.Info("timer fired", "alarm_id", e.alarmID, "trigger_at", e.triggerAt)
		handler(ctx, Fired{AlarmID: e.alarmID, TriggerAt: e.triggerAt, Payload: e.payload})
	}
}

// nextWait returns how long to sleep before the earliest entry is due
func (t *HeapTimer) nextWait() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.entries.Len() == 0 {
		return t.maxSleep
	}
	wait := t.entries[0].triggerAt.Sub(t.clock.Now())
	if wait > t.maxSleep {
		wait = t.maxSleep
	}
	if wait < 0 {
		wait = 0
	}
	return wait
}

func (t *HeapTimer) notify() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

var _ Port = (*HeapTimer)(nil)
