package bot

import (
	"encoding/json"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback actions
const (
	ActionAck    = "ack"
	ActionSnooze = "snooze"
	ActionStop   = "stop"
)

// CallbackData represents the data embedded in callback buttons.
// Telegram limits it to 64 bytes so keys stay short.
type CallbackData struct {
	Action  string `json:"a"`
	AlarmID int    `json:"id,omitempty"`
}

// MarshalCallback converts CallbackData to JSON string
func MarshalCallback(data CallbackData) string {
	b, err := json.Marshal(data)
	if err != nil {
		// Should never happen with simple structs
		return ""
	}
	return string(b)
}

// UnmarshalCallback parses callback data from JSON string
func UnmarshalCallback(data string) (*CallbackData, error) {
	var cb CallbackData
	if err := json.Unmarshal([]byte(data), &cb); err != nil {
		return nil, fmt.Errorf("failed to unmarshal callback: %w", err)
	}
	return &cb, nil
}

// BuildAlarmButtons creates the dismiss/snooze row attached to a ringing alarm
func BuildAlarmButtons(alarmID int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Dismiss", MarshalCallback(CallbackData{Action: ActionAck, AlarmID: alarmID})),
			tgbotapi.NewInlineKeyboardButtonData("😴 Snooze", MarshalCallback(CallbackData{Action: ActionSnooze, AlarmID: alarmID})),
		),
	)
}

// BuildQuickActionsButtons creates compact action buttons for attaching to responses
func BuildQuickActionsButtons() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏰ Alarms", "/alarms"),
			tgbotapi.NewInlineKeyboardButtonData("🔕 Stop", "/stop"),
		),
	)
}
