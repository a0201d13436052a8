package ringing

import "reveille/internal/core"

// Sound names a system-provided alert sound
type Sound string

const (
	SoundAlarm        Sound = "alarm"
	SoundRingtone     Sound = "ringtone"
	SoundNotification Sound = "notification"
)

// SoundCandidates is the order sounds are tried in until one opens
var SoundCandidates = []Sound{SoundAlarm, SoundRingtone, SoundNotification}

// Player is a looping audio-render resource
type Player interface {
	Start() error
	Pause() error
	Resume() error
	// Release stops playback and frees the resource
	Release() error
}

// AudioOutput controls the alarm output stream volume
type AudioOutput interface {
	Volume() (int, error)
	MaxVolume() (int, error)
	SetVolume(v int) error
}

// Platform abstracts the host audio, focus and notification facilities
// a ringing session drives.
type Platform interface {
	AudioOutput

	// RequestFocus asks for transient audio focus; a denial wraps core.ErrFocusDenied
	RequestFocus() error
	AbandonFocus() error

	// OpenPlayer prepares a looping player for sound
	OpenPlayer(sound Sound) (Player, error)

	// ShowNotification posts the ongoing "alarm ringing" notification
	ShowNotification(def core.AlarmDefinition) error
	CancelNotification(alarmID int) error
}
