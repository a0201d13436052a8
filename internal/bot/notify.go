package bot

import (
	"context"
	"time"

	"reveille/internal/core"
)

// Name identifies the bot as an event sink
func (b *Bot) Name() string { return "telegram" }

// Deliver posts a lifecycle event to every configured chat. Ringing-started
// is skipped because ShowAlarm already posted the alert with its buttons.
func (b *Bot) Deliver(ctx context.Context, ev core.Event) error {
	if ev.Type == core.EventRingingStarted {
		return nil
	}
	return b.broadcast(FormatEvent(ev, b.config.Location), nil)
}

// ShowAlarm posts the ringing alert with dismiss and snooze buttons
func (b *Bot) ShowAlarm(ctx context.Context, def core.AlarmDefinition, firedAt time.Time) error {
	keyboard := BuildAlarmButtons(def.ID)
	return b.broadcast(FormatRinging(def, firedAt, b.config.Location), &keyboard)
}
