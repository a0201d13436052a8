// Package ringing drives the audible part of an alarm: audio focus, a looping
// alert sound, the pinned output volume and the ongoing notification.
package ringing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"reveille/internal/core"
	"reveille/internal/metrics"
)

// State is a ringing session state
type State string

const (
	StateIdle    State = "idle"
	StateRinging State = "ringing"
	StatePaused  State = "paused"
	StateStopped State = "stopped"
)

// Session owns the audio resources of the alarm currently ringing.
// All transitions are serialised.
type Session struct {
	platform Platform
	enforcer *VolumeEnforcer
	logger   *slog.Logger

	mu             sync.Mutex
	state          State
	alarm          *core.AlarmDefinition
	player         Player
	originalVolume int
	volumeCaptured bool
	targetVolume   int
	focusHeld      bool
}

// NewSession creates an idle session
func NewSession(platform Platform, enforcer *VolumeEnforcer, logger *slog.Logger) *Session {
	return &Session{
		platform: platform,
		enforcer: enforcer,
		logger:   logger.With("component", "ringing"),
		state:    StateIdle,
	}
}

// Start begins ringing for def. While ringing the audio is left as is and the
// session is re-attached to def; while paused it re-enters ringing with def as
// its context. When no alert sound can be opened the context is kept, the
// state stays idle and the returned error wraps core.ErrAudioInit.
func (s *Session) Start(ctx context.Context, def core.AlarmDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateStopped {
		s.reset()
	}

	s.attach(def)

	if s.state == StateRinging {
		s.logger.Info("already ringing, attached to newer alarm", "alarm_id", def.ID)
		return nil
	}
	return s.ring()
}

// Pause silences a ringing session and keeps its player. No-op outside ringing.
func (s *Session) Pause(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRinging {
		s.logger.Debug("pause ignored", "state", s.state)
		return nil
	}

	s.enforcer.Stop()
	if s.player != nil {
		if err := s.player.Pause(); err != nil {
			s.logger.Warn("failed to pause player", "error", err)
		}
	}

	s.transition(StatePaused)
	return nil
}

// Resume re-enters ringing from paused, or from idle when a context is held
// (a delivery whose audio failed to start). No-op while ringing.
func (s *Session) Resume(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.state == StateRinging:
		return nil
	case s.alarm == nil:
		return core.ErrNoActiveSession
	}

	return s.ring()
}

// Stop releases every resource, restores the captured volume and clears the
// context. Safe from any goroutine; no-op once stopped.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateStopped {
		return nil
	}

	s.enforcer.Stop()

	if s.player != nil {
		if err := s.player.Release(); err != nil {
			s.logger.Warn("failed to release player", "error", err)
		}
		s.player = nil
	}

	if s.focusHeld {
		if err := s.platform.AbandonFocus(); err != nil {
			s.logger.Warn("failed to abandon audio focus", "error", err)
		}
		s.focusHeld = false
	}

	if s.volumeCaptured {
		if err := s.platform.SetVolume(s.originalVolume); err != nil {
			s.logger.Warn("failed to restore volume", "volume", s.originalVolume, "error", err)
		}
	}

	if s.alarm != nil {
		if err := s.platform.CancelNotification(s.alarm.ID); err != nil {
			s.logger.Warn("failed to cancel notification", "alarm_id", s.alarm.ID, "error", err)
		}
	}

	s.reset()
	s.transition(StateStopped)
	return nil
}

// Current returns a copy of the alarm the session is attached to
func (s *Session) Current() (core.AlarmDefinition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.alarm == nil {
		return core.AlarmDefinition{}, false
	}
	return s.alarm.Clone(), true
}

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status returns a read-only view of the session
func (s *Session) Status() core.RingingStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := core.RingingStatus{
		State:          string(s.state),
		OriginalVolume: -1,
		TargetVolume:   s.targetVolume,
		Enforcing:      s.enforcer.Running(),
		FocusHeld:      s.focusHeld,
	}
	if s.volumeCaptured {
		status.OriginalVolume = s.originalVolume
	}
	if s.alarm != nil {
		alarm := s.alarm.Clone()
		status.Alarm = &alarm
	}
	return status
}

// attach makes def the session context and moves the notification to it;
// caller holds s.mu
func (s *Session) attach(def core.AlarmDefinition) {
	if s.alarm != nil && s.alarm.ID != def.ID {
		if err := s.platform.CancelNotification(s.alarm.ID); err != nil {
			s.logger.Warn("failed to cancel notification", "alarm_id", s.alarm.ID, "error", err)
		}
	}
	alarm := def.Clone()
	s.alarm = &alarm

	if err := s.platform.ShowNotification(alarm); err != nil {
		s.logger.Warn("failed to show notification", "alarm_id", alarm.ID, "error", err)
	}
}

// ring acquires focus, pins the volume and plays; caller holds s.mu
func (s *Session) ring() error {
	if err := s.platform.RequestFocus(); err != nil {
		s.logger.Warn("audio focus not granted, ringing anyway", "error", fmt.Errorf("%w: %v", core.ErrFocusDenied, err))
	} else {
		s.focusHeld = true
	}

	if !s.volumeCaptured {
		if v, err := s.platform.Volume(); err != nil {
			s.logger.Warn("failed to read volume", "error", err)
		} else {
			s.originalVolume = v
			s.volumeCaptured = true
		}
	}

	targetKnown := false
	if maxVolume, err := s.platform.MaxVolume(); err != nil {
		s.logger.Warn("failed to read max volume", "error", err)
	} else {
		s.targetVolume = maxVolume
		targetKnown = true
		if err := s.platform.SetVolume(maxVolume); err != nil {
			s.logger.Warn("failed to raise volume", "error", err)
		}
	}

	if s.player != nil {
		if err := s.player.Resume(); err != nil {
			s.logger.Warn("failed to resume player, reopening", "error", err)
			if err := s.player.Release(); err != nil {
				s.logger.Warn("failed to release player", "error", err)
			}
			s.player = nil
		}
	}
	if s.player == nil {
		player, err := s.openPlayer()
		if err != nil {
			s.logger.Error("no alert sound could be started, alarm is silent", "alarm_id", s.alarm.ID, "error", err)
			if s.state != StateIdle {
				s.transition(StateIdle)
			}
			return err
		}
		s.player = player
	}

	if targetKnown {
		s.enforcer.Start(s.targetVolume)
	}

	s.transition(StateRinging)
	return nil
}

// openPlayer tries each candidate sound until one opens and starts
func (s *Session) openPlayer() (Player, error) {
	var errs []error
	for _, sound := range SoundCandidates {
		player, err := s.platform.OpenPlayer(sound)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sound, err))
			continue
		}
		if err := player.Start(); err != nil {
			if relErr := player.Release(); relErr != nil {
				s.logger.Warn("failed to release player", "sound", sound, "error", relErr)
			}
			errs = append(errs, fmt.Errorf("%s: %w", sound, err))
			continue
		}
		s.logger.Debug("alert sound started", "sound", sound)
		return player, nil
	}
	return nil, fmt.Errorf("%w: %w", core.ErrAudioInit, errors.Join(errs...))
}

// reset clears session context for a fresh start; caller holds s.mu
func (s *Session) reset() {
	s.alarm = nil
	s.player = nil
	s.originalVolume = 0
	s.volumeCaptured = false
	s.targetVolume = 0
	s.focusHeld = false
	if s.state == StateStopped {
		s.state = StateIdle
	}
}

func (s *Session) transition(to State) {
	from := s.state
	s.state = to
	metrics.RingingTransitions.WithLabelValues(string(to)).Inc()
	s.logger.Info("ringing state changed", "from", from, "to", to)
}
