package core

import (
	"fmt"
	"time"
)

// ResolveTrigger returns the next absolute instant strictly after now at
// hour:minute:00.000 in now's location.
//
// With an empty weekday set the result is today at hour:minute, or tomorrow
// when that instant is not after now. With weekdays the earliest matching day
// is chosen; a same-day candidate whose time has passed counts as 7 days out.
func ResolveTrigger(now time.Time, hour, minute int, weekdays []int) (time.Time, error) {
	if hour < 0 || hour > 23 {
		return time.Time{}, ErrInvalidHour
	}
	if minute < 0 || minute > 59 {
		return time.Time{}, ErrInvalidMinute
	}

	loc := now.Location()
	year, month, day := now.Date()
	today := time.Date(year, month, day, hour, minute, 0, 0, loc)

	if len(weekdays) == 0 {
		if !today.After(now) {
			return time.Date(year, month, day+1, hour, minute, 0, 0, loc), nil
		}
		return today, nil
	}

	todayNumber := WeekdayOf(now)
	best := -1
	for _, candidate := range weekdays {
		if candidate < Monday || candidate > Sunday {
			continue
		}

		daysDiff := (candidate - todayNumber + 7) % 7
		if daysDiff == 0 && !today.After(now) {
			daysDiff = 7
		}

		if best < 0 || daysDiff < best {
			best = daysDiff
		}
	}

	if best < 0 {
		return time.Time{}, fmt.Errorf("%w: weekdays %v", ErrResolution, weekdays)
	}

	return time.Date(year, month, day+best, hour, minute, 0, 0, loc), nil
}

// NextOccurrence resolves the next trigger instant for a definition's weekly schedule
func NextOccurrence(now time.Time, def AlarmDefinition) (time.Time, error) {
	if def.Schedule == nil {
		return time.Time{}, ErrMissingSchedule
	}
	return ResolveTrigger(now, def.Schedule.Hour, def.Schedule.Minute, def.Schedule.Weekdays)
}
