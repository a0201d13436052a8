//go:build darwin

package ringing

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"reveille/internal/core"
)

// darwinSounds maps sound candidates to bundled system sounds
var darwinSounds = map[Sound]string{
	SoundAlarm:        "/System/Library/Sounds/Sosumi.aiff",
	SoundRingtone:     "/System/Library/Sounds/Glass.aiff",
	SoundNotification: "/System/Library/Sounds/Ping.aiff",
}

// DarwinPlatform implements Platform for macOS using osascript and afplay
type DarwinPlatform struct {
	mu        sync.Mutex
	focusHeld bool
	logger    *slog.Logger
}

// NewDarwinPlatform creates a new macOS platform implementation
func NewDarwinPlatform(logger *slog.Logger) *DarwinPlatform {
	return &DarwinPlatform{
		logger: logger.With("component", "platform-darwin"),
	}
}

// NewPlatform creates the platform implementation for the current host
func NewPlatform(logger *slog.Logger) Platform {
	return NewDarwinPlatform(logger)
}

func osascript(script string) (string, error) {
	out, err := exec.Command("osascript", "-e", script).Output()
	if err != nil {
		return "", fmt.Errorf("osascript: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Volume returns the system output volume (0-100)
func (p *DarwinPlatform) Volume() (int, error) {
	out, err := osascript("output volume of (get volume settings)")
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(out)
	if err != nil {
		return 0, fmt.Errorf("unexpected volume %q: %w", out, err)
	}
	return v, nil
}

// MaxVolume returns the output volume ceiling
func (p *DarwinPlatform) MaxVolume() (int, error) {
	return 100, nil
}

// SetVolume sets the system output volume
func (p *DarwinPlatform) SetVolume(v int) error {
	_, err := osascript(fmt.Sprintf("set volume output volume %d", v))
	return err
}

// RequestFocus is always granted; macOS has no audio focus arbitration
func (p *DarwinPlatform) RequestFocus() error {
	p.mu.Lock()
	p.focusHeld = true
	p.mu.Unlock()
	return nil
}

// AbandonFocus releases focus
func (p *DarwinPlatform) AbandonFocus() error {
	p.mu.Lock()
	p.focusHeld = false
	p.mu.Unlock()
	return nil
}

// OpenPlayer returns a player looping the system sound mapped to sound
func (p *DarwinPlatform) OpenPlayer(sound Sound) (Player, error) {
	path, ok := darwinSounds[sound]
	if !ok {
		return nil, fmt.Errorf("no system sound for %q", sound)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	if _, err := exec.LookPath("afplay"); err != nil {
		return nil, err
	}
	return &afplayPlayer{path: path, logger: p.logger}, nil
}

// ShowNotification posts a notification center banner
func (p *DarwinPlatform) ShowNotification(def core.AlarmDefinition) error {
	script := fmt.Sprintf("display notification %s with title \"Reveille\"", strconv.Quote(def.Message))
	_, err := osascript(script)
	return err
}

// CancelNotification is a no-op; banners dismiss themselves
func (p *DarwinPlatform) CancelNotification(alarmID int) error {
	p.logger.Debug("ALARM_NOTIFICATION", "action", "cancel", "alarm_id", alarmID)
	return nil
}

// afplayPlayer loops afplay until paused or released
type afplayPlayer struct {
	path   string
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func (a *afplayPlayer) Start() error  { return a.play() }
func (a *afplayPlayer) Resume() error { return a.play() }
func (a *afplayPlayer) Pause() error  { return a.halt() }

func (a *afplayPlayer) Release() error { return a.halt() }

func (a *afplayPlayer) play() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	a.cancel, a.done = cancel, done

	go func() {
		defer close(done)
		for ctx.Err() == nil {
			if err := exec.CommandContext(ctx, "afplay", a.path).Run(); err != nil && ctx.Err() == nil {
				a.logger.Error("afplay failed", "path", a.path, "error", err)
				return
			}
		}
	}()
	return nil
}

func (a *afplayPlayer) halt() error {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	return nil
}

// Ensure DarwinPlatform implements Platform
var _ Platform = (*DarwinPlatform)(nil)
