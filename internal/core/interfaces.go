package core

import (
	"context"
	"time"
)

// EventType identifies an outbound lifecycle notification
type EventType string

const (
	EventRingingStarted      EventType = "ringing.started"
	EventRingingAcknowledged EventType = "ringing.acknowledged"
	EventRingingSnoozed      EventType = "ringing.snoozed"
)

// Event is a fire-and-forget notification toward the UI bridge
type Event struct {
	Type     EventType `json:"type"`
	AlarmID  int       `json:"alarm_id"`
	Message  string    `json:"message"`
	GameType string    `json:"game_type"`
	At       time.Time `json:"at"`
}

// NewEvent builds an event carrying an alarm's identity payload
func NewEvent(eventType EventType, def AlarmDefinition, at time.Time) Event {
	return Event{
		Type:     eventType,
		AlarmID:  def.ID,
		Message:  def.Message,
		GameType: def.GameType,
		At:       at,
	}
}

// RingingStatus is a read-only view of the ringing session
type RingingStatus struct {
	State          string           `json:"state"`
	Alarm          *AlarmDefinition `json:"alarm,omitempty"`
	OriginalVolume int              `json:"original_volume"`
	TargetVolume   int              `json:"target_volume"`
	Enforcing      bool             `json:"enforcing"`
	FocusHeld      bool             `json:"focus_held"`
}

// AlarmService defines every inbound call the UI bridge can make
type AlarmService interface {
	Schedule(ctx context.Context, def AlarmDefinition, delaySeconds int) (*PersistedAlarmRecord, error)
	ScheduleRecurring(ctx context.Context, def AlarmDefinition) (*PersistedAlarmRecord, error)
	Cancel(ctx context.Context, alarmID int) error
	GetAlarm(ctx context.Context, alarmID int) (*PersistedAlarmRecord, error)
	ListAlarms(ctx context.Context) ([]*PersistedAlarmRecord, error)
	IsExactSchedulingAllowed(ctx context.Context) bool

	StartRinging(ctx context.Context) error
	PauseRinging(ctx context.Context) error
	ResumeRinging(ctx context.Context) error
	StopRinging(ctx context.Context, alarmID int) error
	RingingStatus(ctx context.Context) RingingStatus

	// Acknowledge suppresses repeats of alarmID (0 = every alarm) for
	// suppressSeconds; nil applies the default window
	Acknowledge(ctx context.Context, alarmID int, suppressSeconds *int) error
	Snooze(ctx context.Context, alarmID int) error
	Accept(ctx context.Context, alarmID int) error
}
