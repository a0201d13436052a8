package ringing

import (
	"log/slog"
	"sync"

	"reveille/internal/core"
)

// DefaultStubMaxVolume is the simulated stream maximum
const DefaultStubMaxVolume = 15

// StubPlatform implements Platform for hosts without an audio backend.
// It keeps a simulated stream volume and logs every action.
type StubPlatform struct {
	mu        sync.Mutex
	volume    int
	maxVolume int
	focusHeld bool
	logger    *slog.Logger
}

// NewStubPlatform creates a stub platform with the simulated volume at initial
func NewStubPlatform(initial int, logger *slog.Logger) *StubPlatform {
	return &StubPlatform{
		volume:    initial,
		maxVolume: DefaultStubMaxVolume,
		logger:    logger.With("component", "platform-stub"),
	}
}

// Volume returns the simulated stream volume
func (p *StubPlatform) Volume() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume, nil
}

// MaxVolume returns the simulated stream maximum
func (p *StubPlatform) MaxVolume() (int, error) {
	return p.maxVolume, nil
}

// SetVolume sets the simulated stream volume
func (p *StubPlatform) SetVolume(v int) error {
	p.mu.Lock()
	p.volume = v
	p.mu.Unlock()
	p.logger.Debug("SET_VOLUME", "volume", v)
	return nil
}

// RequestFocus always grants focus
func (p *StubPlatform) RequestFocus() error {
	p.mu.Lock()
	p.focusHeld = true
	p.mu.Unlock()
	p.logger.Debug("REQUEST_FOCUS")
	return nil
}

// AbandonFocus releases focus
func (p *StubPlatform) AbandonFocus() error {
	p.mu.Lock()
	p.focusHeld = false
	p.mu.Unlock()
	p.logger.Debug("ABANDON_FOCUS")
	return nil
}

// OpenPlayer returns a player that logs its lifecycle
func (p *StubPlatform) OpenPlayer(sound Sound) (Player, error) {
	return &stubPlayer{sound: sound, logger: p.logger}, nil
}

// ShowNotification logs the notification
func (p *StubPlatform) ShowNotification(def core.AlarmDefinition) error {
	p.logger.Info("ALARM_NOTIFICATION",
		"action", "show",
		"alarm_id", def.ID,
		"message", def.Message,
		"game_type", def.GameType)
	return nil
}

// CancelNotification logs the cancellation
func (p *StubPlatform) CancelNotification(alarmID int) error {
	p.logger.Info("ALARM_NOTIFICATION", "action", "cancel", "alarm_id", alarmID)
	return nil
}

type stubPlayer struct {
	sound  Sound
	logger *slog.Logger
}

func (s *stubPlayer) Start() error {
	s.logger.Info("PLAYER", "action", "start", "sound", s.sound)
	return nil
}

func (s *stubPlayer) Pause() error {
	s.logger.Info("PLAYER", "action", "pause", "sound", s.sound)
	return nil
}

func (s *stubPlayer) Resume() error {
	s.logger.Info("PLAYER", "action", "resume", "sound", s.sound)
	return nil
}

func (s *stubPlayer) Release() error {
	s.logger.Info("PLAYER", "action", "release", "sound", s.sound)
	return nil
}

// Ensure StubPlatform implements Platform
var _ Platform = (*StubPlatform)(nil)
