package core

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-01-01 is a Monday
func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.January, day, hour, minute, 0, 0, time.UTC)
}

func TestResolveTrigger_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		hour     int
		minute   int
		weekdays []int
		want     time.Time
	}{
		{
			name:     "monday or wednesday from tuesday morning",
			now:      at(2, 8, 0),
			hour:     7,
			minute:   30,
			weekdays: []int{Monday, Wednesday},
			want:     at(3, 7, 30),
		},
		{
			name:     "same weekday already passed rolls a full week",
			now:      at(2, 7, 31),
			hour:     7,
			minute:   30,
			weekdays: []int{Tuesday},
			want:     at(9, 7, 30),
		},
		{
			name:     "same weekday still ahead fires today",
			now:      at(2, 7, 29),
			hour:     7,
			minute:   30,
			weekdays: []int{Tuesday},
			want:     at(2, 7, 30),
		},
		{
			name:     "sunday maps to seven",
			now:      at(7, 6, 0),
			hour:     9,
			minute:   0,
			weekdays: []int{Sunday},
			want:     at(7, 9, 0),
		},
		{
			name:     "one-shot later today",
			now:      at(2, 6, 0),
			hour:     6,
			minute:   1,
			weekdays: nil,
			want:     at(2, 6, 1),
		},
		{
			name:     "one-shot exactly now pushes to tomorrow",
			now:      at(2, 6, 0),
			hour:     6,
			minute:   0,
			weekdays: nil,
			want:     at(3, 6, 0),
		},
		{
			name:     "weekday exactly now counts as next week",
			now:      at(2, 6, 0),
			hour:     6,
			minute:   0,
			weekdays: []int{Tuesday},
			want:     at(9, 6, 0),
		},
		{
			name:     "end of month wraps",
			now:      time.Date(2024, time.January, 31, 23, 0, 0, 0, time.UTC),
			hour:     7,
			minute:   0,
			weekdays: []int{Friday},
			want:     time.Date(2024, time.February, 2, 7, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveTrigger(tt.now, tt.hour, tt.minute, tt.weekdays)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveTrigger_OneShotProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 2000; i++ {
		now := base.Add(time.Duration(rng.Int63n(int64(60 * 24 * time.Hour))))
		hour := rng.Intn(24)
		minute := rng.Intn(60)

		got, err := ResolveTrigger(now, hour, minute, nil)
		require.NoError(t, err)

		assert.True(t, got.After(now), "trigger %v must be after %v", got, now)
		assert.Equal(t, hour, got.Hour())
		assert.Equal(t, minute, got.Minute())
		assert.Zero(t, got.Second())
		assert.Zero(t, got.Nanosecond())
		assert.Less(t, got.Sub(now), 24*time.Hour+time.Second)
	}
}

// naiveNext walks forward day by day to find the earliest qualifying instant
func naiveNext(now time.Time, hour, minute int, weekdays []int) time.Time {
	wanted := make(map[int]bool)
	for _, d := range weekdays {
		wanted[d] = true
	}
	y, m, d := now.Date()
	for offset := 0; offset <= 7; offset++ {
		candidate := time.Date(y, m, d+offset, hour, minute, 0, 0, now.Location())
		if candidate.After(now) && wanted[WeekdayOf(candidate)] {
			return candidate
		}
	}
	return time.Time{}
}

func TestResolveTrigger_WeekdayProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	base := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 2000; i++ {
		now := base.Add(time.Duration(rng.Int63n(int64(90 * 24 * time.Hour))))
		hour := rng.Intn(24)
		minute := rng.Intn(60)

		var weekdays []int
		for day := Monday; day <= Sunday; day++ {
			if rng.Intn(3) == 0 {
				weekdays = append(weekdays, day)
			}
		}
		if len(weekdays) == 0 {
			weekdays = []int{1 + rng.Intn(7)}
		}

		got, err := ResolveTrigger(now, hour, minute, weekdays)
		require.NoError(t, err)

		assert.Equal(t, naiveNext(now, hour, minute, weekdays), got, "now=%v days=%v", now, weekdays)
		assert.True(t, got.After(now))
		assert.Contains(t, weekdays, WeekdayOf(got))
		assert.LessOrEqual(t, got.Sub(now), 7*24*time.Hour)
	}
}

func TestResolveTrigger_Errors(t *testing.T) {
	now := at(2, 8, 0)

	_, err := ResolveTrigger(now, 24, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidHour)

	_, err = ResolveTrigger(now, 7, 60, nil)
	assert.ErrorIs(t, err, ErrInvalidMinute)

	_, err = ResolveTrigger(now, 7, 30, []int{0, 8})
	assert.ErrorIs(t, err, ErrResolution)
}

func TestResolveTrigger_KeepsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	now := time.Date(2024, time.January, 2, 23, 30, 0, 0, loc)

	got, err := ResolveTrigger(now, 6, 0, nil)
	require.NoError(t, err)

	assert.Equal(t, loc, got.Location())
	assert.Equal(t, time.Date(2024, time.January, 3, 6, 0, 0, 0, loc), got)
}

func TestNextOccurrence(t *testing.T) {
	def := AlarmDefinition{
		ID:       5,
		Schedule: &WeeklySchedule{Hour: 7, Minute: 30, Weekdays: []int{Monday, Wednesday}},
	}

	got, err := NextOccurrence(at(2, 8, 0), def)
	require.NoError(t, err)
	assert.Equal(t, at(3, 7, 30), got)

	_, err = NextOccurrence(at(2, 8, 0), AlarmDefinition{ID: 5})
	assert.ErrorIs(t, err, ErrMissingSchedule)
}
