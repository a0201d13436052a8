package core

import (
	"errors"
	"sort"
	"time"
)

const (
	// DefaultMessage is shown when an alarm carries no message
	DefaultMessage = "Alarm!"
	// DefaultGameType selects the ringing experience when none is given
	DefaultGameType = "piano_tiles"
	// DefaultDurationMinutes is the ringing budget when none is given
	DefaultDurationMinutes = 1
)

// Weekday numbers use the caller-facing convention: 1=Monday .. 7=Sunday
const (
	Monday    = 1
	Tuesday   = 2
	Wednesday = 3
	Thursday  = 4
	Friday    = 5
	Saturday  = 6
	Sunday    = 7
)

// WeeklySchedule is the wall-clock part of a repeat-capable alarm
type WeeklySchedule struct {
	Hour     int   // 0-23
	Minute   int   // 0-59
	Weekdays []int // 1=Monday..7=Sunday; empty means fire once
}

// AlarmDefinition is the user-facing configuration of a single alarm
type AlarmDefinition struct {
	ID              int
	Message         string
	GameType        string // selects which ringing experience to run
	DurationMinutes int    // ringing budget
	Schedule        *WeeklySchedule
}

// PersistedAlarmRecord is the durable projection of an alarm plus its next trigger instant
type PersistedAlarmRecord struct {
	Definition AlarmDefinition
	TriggerAt  time.Time
	Active     bool
}

// Validation errors
var (
	ErrInvalidAlarmID  = errors.New("alarm ID must be non-negative")
	ErrInvalidHour     = errors.New("hour must be between 0 and 23")
	ErrInvalidMinute   = errors.New("minute must be between 0 and 59")
	ErrInvalidWeekday  = errors.New("weekday must be between 1 (Monday) and 7 (Sunday)")
	ErrInvalidDelay    = errors.New("delay must not be negative")
	ErrInvalidDuration = errors.New("duration must be positive")
	ErrMissingSchedule = errors.New("recurring alarm requires hour and minute")
)

// Lookup errors
var (
	ErrAlarmNotFound   = errors.New("alarm not found")
	ErrNoActiveSession = errors.New("no ringing session")
	ErrSessionMismatch = errors.New("ringing session belongs to a different alarm")
)

// ApplyDefaults fills empty attributes with their defaults
func (d *AlarmDefinition) ApplyDefaults() {
	if d.Message == "" {
		d.Message = DefaultMessage
	}
	if d.GameType == "" {
		d.GameType = DefaultGameType
	}
	if d.DurationMinutes == 0 {
		d.DurationMinutes = DefaultDurationMinutes
	}
}

// Validate validates an AlarmDefinition
func (d *AlarmDefinition) Validate() error {
	if d.ID < 0 {
		return ErrInvalidAlarmID
	}
	if d.DurationMinutes <= 0 {
		return ErrInvalidDuration
	}
	if d.Schedule != nil {
		return d.Schedule.Validate()
	}
	return nil
}

// IsRecurring reports whether the alarm re-arms itself after firing
func (d *AlarmDefinition) IsRecurring() bool {
	return d.Schedule != nil && len(d.Schedule.Weekdays) > 0
}

// Clone returns a deep copy so payloads never share weekday slices
func (d AlarmDefinition) Clone() AlarmDefinition {
	if d.Schedule != nil {
		s := *d.Schedule
		s.Weekdays = append([]int(nil), d.Schedule.Weekdays...)
		d.Schedule = &s
	}
	return d
}

// Validate validates a WeeklySchedule
func (s *WeeklySchedule) Validate() error {
	if s.Hour < 0 || s.Hour > 23 {
		return ErrInvalidHour
	}
	if s.Minute < 0 || s.Minute > 59 {
		return ErrInvalidMinute
	}
	for _, day := range s.Weekdays {
		if day < Monday || day > Sunday {
			return ErrInvalidWeekday
		}
	}
	return nil
}

// NormalizedWeekdays returns the weekday set sorted and de-duplicated
func (s *WeeklySchedule) NormalizedWeekdays() []int {
	seen := make(map[int]bool, len(s.Weekdays))
	days := make([]int, 0, len(s.Weekdays))
	for _, day := range s.Weekdays {
		if seen[day] {
			continue
		}
		seen[day] = true
		days = append(days, day)
	}
	sort.Ints(days)
	return days
}

// WeekdayOf converts a time to the 1=Monday..7=Sunday convention
func WeekdayOf(t time.Time) int {
	if t.Weekday() == time.Sunday {
		return Sunday
	}
	return int(t.Weekday())
}
