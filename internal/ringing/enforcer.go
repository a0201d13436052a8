package ringing

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"reveille/internal/clock"
	"reveille/internal/metrics"
)

// DefaultEnforceInterval is how often the enforcer re-reads the volume
const DefaultEnforceInterval = 250 * time.Millisecond

// VolumeEnforcer pins the output volume to a target while running
type VolumeEnforcer struct {
	output   AudioOutput
	clock    clock.Clock
	interval time.Duration
	logger   *slog.Logger

	running     atomic.Bool
	target      atomic.Int64
	corrections atomic.Int64

	mu       sync.Mutex
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewVolumeEnforcer creates a stopped enforcer
func NewVolumeEnforcer(output AudioOutput, clk clock.Clock, interval time.Duration, logger *slog.Logger) *VolumeEnforcer {
	if interval <= 0 {
		interval = DefaultEnforceInterval
	}
	return &VolumeEnforcer{
		output:   output,
		clock:    clk,
		interval: interval,
		logger:   logger.With("component", "volume-enforcer"),
	}
}

// Start begins enforcing target. No-op while already running.
func (e *VolumeEnforcer) Start(target int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.target.Store(int64(target))
	if !e.running.CompareAndSwap(false, true) {
		return
	}

	e.stopChan = make(chan struct{})
	e.wg.Add(1)
	go e.loop(e.stopChan)

	e.logger.Debug("volume enforcement started", "target", target, "interval", e.interval)
}

// Stop ends enforcement and waits for the loop to exit. Safe to call
// repeatedly and from any goroutine.
func (e *VolumeEnforcer) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running.CompareAndSwap(true, false) {
		return
	}
	close(e.stopChan)
	e.wg.Wait()

	e.logger.Debug("volume enforcement stopped")
}

// Running reports whether the loop is active
func (e *VolumeEnforcer) Running() bool {
	return e.running.Load()
}

// Corrections returns how many times the volume was forced back
func (e *VolumeEnforcer) Corrections() int64 {
	return e.corrections.Load()
}

func (e *VolumeEnforcer) loop(stop <-chan struct{}) {
	defer e.wg.Done()

	ticker := e.clock.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// the flag, not only the channel, decides whether this tick acts
			if !e.running.Load() {
				return
			}
			e.enforce()
		}
	}
}

func (e *VolumeEnforcer) enforce() {
	target := int(e.target.Load())

	current, err := e.output.Volume()
	if err != nil {
		e.logger.Warn("failed to read volume", "error", err)
		return
	}
	if current == target {
		return
	}

	if err := e.output.SetVolume(target); err != nil {
		e.logger.Warn("failed to restore volume", "current", current, "target", target, "error", err)
		return
	}
	e.corrections.Add(1)
	metrics.VolumeCorrections.Inc()
	e.logger.Info("volume restored", "from", current, "to", target)
}
