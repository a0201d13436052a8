package storage

import (
	"fmt"
	"strconv"
	"strings"
)

// KeyPrefix starts every alarm key
const KeyPrefix = "alarm_"

// GlobalSuppressKey holds the suppression window applied to every alarm
const GlobalSuppressKey = "alarm_suppress_until"

// Per-alarm key suffixes
const (
	fieldTime          = "time"
	fieldMessage       = "message"
	fieldGame          = "game"
	fieldDuration      = "duration"
	fieldActive        = "active"
	fieldHour          = "hour"
	fieldMinute        = "minute"
	fieldDays          = "days"
	fieldSuppressUntil = "suppress_until"
)

// recordFields are the keys written and removed together for a record
var recordFields = []string{
	fieldTime, fieldMessage, fieldGame, fieldDuration, fieldActive,
	fieldHour, fieldMinute, fieldDays,
}

// alarmKey builds alarm_{id}_{field}
func alarmKey(id int, field string) string {
	return fmt.Sprintf("%s%d_%s", KeyPrefix, id, field)
}

// parseAlarmKey splits alarm_{id}_{field}; ok is false for foreign keys
// such as the global suppression key
func parseAlarmKey(key string) (id int, field string, ok bool) {
	rest, found := strings.CutPrefix(key, KeyPrefix)
	if !found {
		return 0, "", false
	}
	idPart, field, found := strings.Cut(rest, "_")
	if !found {
		return 0, "", false
	}
	id, err := strconv.Atoi(idPart)
	if err != nil || id < 0 {
		return 0, "", false
	}
	return id, field, true
}

func formatDays(days []int) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

func parseDays(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	days := make([]int, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("parse weekday %q: %w", p, err)
		}
		days = append(days, d)
	}
	return days, nil
}
