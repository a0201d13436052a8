package bot

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"reveille/internal/core"
)

var weekdayNames = map[int]string{
	core.Monday:    "Mon",
	core.Tuesday:   "Tue",
	core.Wednesday: "Wed",
	core.Thursday:  "Thu",
	core.Friday:    "Fri",
	core.Saturday:  "Sat",
	core.Sunday:    "Sun",
}

// formatTime formats a time in loc when one is set
func formatTime(t time.Time, loc *time.Location, layout string) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(layout)
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

// FormatWeekdays renders a weekday set such as "Mon, Wed"
func FormatWeekdays(days []int) string {
	names := make([]string, 0, len(days))
	for _, d := range days {
		if name, ok := weekdayNames[d]; ok {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

// FormatAlarms formats the alarm list
func FormatAlarms(records []*core.PersistedAlarmRecord, loc *time.Location) string {
	var sb strings.Builder

	sb.WriteString("⏰ *Alarms*\n\n")

	if len(records) == 0 {
		sb.WriteString("No alarms scheduled.\n")
		return sb.String()
	}

	for _, rec := range records {
		def := rec.Definition
		status := "🟢"
		if !rec.Active {
			status = "⚪"
		}
		sb.WriteString(fmt.Sprintf("%s *%s*\n", status, escape(def.Message)))
		sb.WriteString(fmt.Sprintf("   ID: `%d`\n", def.ID))
		sb.WriteString(fmt.Sprintf("   Next: %s\n", formatTime(rec.TriggerAt, loc, "Mon 02 Jan 15:04")))
		if def.IsRecurring() {
			sb.WriteString(fmt.Sprintf("   Repeats: %s at %02d:%02d\n",
				FormatWeekdays(def.Schedule.Weekdays), def.Schedule.Hour, def.Schedule.Minute))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatRinging formats the alert shown when an alarm fires
func FormatRinging(def core.AlarmDefinition, firedAt time.Time, loc *time.Location) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("🔔 *%s*\n\n", escape(def.Message)))
	sb.WriteString(fmt.Sprintf("Rang at %s\n", formatTime(firedAt, loc, "15:04")))
	sb.WriteString(fmt.Sprintf("Game: `%s`, %d min\n", def.GameType, def.DurationMinutes))
	sb.WriteString(fmt.Sprintf("ID: `%d`", def.ID))

	return sb.String()
}

// FormatEvent formats a lifecycle notification
func FormatEvent(ev core.Event, loc *time.Location) string {
	at := formatTime(ev.At, loc, "15:04")
	switch ev.Type {
	case core.EventRingingStarted:
		return fmt.Sprintf("🔔 *%s* is ringing (%s)", escape(ev.Message), at)
	case core.EventRingingAcknowledged:
		return fmt.Sprintf("✅ Alarm `%d` dismissed at %s", ev.AlarmID, at)
	case core.EventRingingSnoozed:
		return fmt.Sprintf("😴 Alarm `%d` snoozed at %s", ev.AlarmID, at)
	default:
		return fmt.Sprintf("ℹ️ %s for alarm `%d`", escape(string(ev.Type)), ev.AlarmID)
	}
}

// FormatError formats an error message
func FormatError(err error) string {
	return fmt.Sprintf("❌ *Error*\n\n%s", escape(err.Error()))
}
