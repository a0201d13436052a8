package bot

import (
	"context"
	"fmt"
)

// handleStart handles the /start and /help commands
func (b *Bot) handleStart(chatID int64) error {
	text := `👋 *Reveille alarm bridge*

*Available Commands:*

⏰ /alarms - List scheduled alarms
✅ /ack <id> - Dismiss a ringing alarm
😴 /snooze <id> - Snooze a ringing alarm
🔕 /stop - Stop whatever is ringing`

	keyboard := BuildQuickActionsButtons()
	return b.sendMessage(chatID, text, &keyboard)
}

// handleAlarms handles the /alarms command
func (b *Bot) handleAlarms(ctx context.Context, chatID int64) error {
	keyboard := BuildQuickActionsButtons()

	records, err := b.service.ListAlarms(ctx)
	if err != nil {
		return b.sendMessage(chatID, FormatError(err), &keyboard)
	}

	return b.sendMessage(chatID, FormatAlarms(records, b.config.Location), &keyboard)
}

// handleAck dismisses an alarm with the default suppression window
func (b *Bot) handleAck(ctx context.Context, chatID int64, alarmID int) error {
	if err := b.service.Acknowledge(ctx, alarmID, nil); err != nil {
		return b.sendMessage(chatID, FormatError(err), nil)
	}
	return b.sendMessage(chatID, fmt.Sprintf("✅ Alarm `%d` dismissed.", alarmID), nil)
}

// handleSnooze snoozes an alarm
func (b *Bot) handleSnooze(ctx context.Context, chatID int64, alarmID int) error {
	if err := b.service.Snooze(ctx, alarmID); err != nil {
		return b.sendMessage(chatID, FormatError(err), nil)
	}
	return b.sendMessage(chatID, fmt.Sprintf("😴 Alarm `%d` snoozed.", alarmID), nil)
}

// handleStop stops whatever is ringing
func (b *Bot) handleStop(ctx context.Context, chatID int64) error {
	if err := b.service.StopRinging(ctx, 0); err != nil {
		return b.sendMessage(chatID, FormatError(err), nil)
	}
	return b.sendMessage(chatID, "🔕 Ringing stopped.", nil)
}
