package storage

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"reveille/internal/core"
)

// AlarmStore maps alarm records and suppression windows onto a KV backend
type AlarmStore struct {
	kv       KV
	timezone *time.Location
}

// NewAlarmStore creates an AlarmStore; loaded instants are expressed in timezone
func NewAlarmStore(kv KV, timezone *time.Location) *AlarmStore {
	if timezone == nil {
		timezone = time.UTC
	}
	return &AlarmStore{kv: kv, timezone: timezone}
}

// SaveAlarm overwrites the record for rec.Definition.ID
func (s *AlarmStore) SaveAlarm(ctx context.Context, rec *core.PersistedAlarmRecord) error {
	def := rec.Definition
	id := def.ID

	// every field is written so an overwrite never leaves stale schedule keys
	values := map[string]string{
		alarmKey(id, fieldTime):     strconv.FormatInt(rec.TriggerAt.UnixMilli(), 10),
		alarmKey(id, fieldMessage):  def.Message,
		alarmKey(id, fieldGame):     def.GameType,
		alarmKey(id, fieldDuration): strconv.Itoa(def.DurationMinutes),
		alarmKey(id, fieldActive):   strconv.FormatBool(rec.Active),
		alarmKey(id, fieldHour):     "",
		alarmKey(id, fieldMinute):   "",
		alarmKey(id, fieldDays):     "",
	}
	if def.Schedule != nil {
		values[alarmKey(id, fieldHour)] = strconv.Itoa(def.Schedule.Hour)
		values[alarmKey(id, fieldMinute)] = strconv.Itoa(def.Schedule.Minute)
		values[alarmKey(id, fieldDays)] = formatDays(def.Schedule.NormalizedWeekdays())
	}

	if err := s.kv.SetMany(ctx, values); err != nil {
		return fmt.Errorf("save alarm %d: %w", id, err)
	}
	return nil
}

// DeleteAlarm removes the record for id. Suppression windows are kept.
func (s *AlarmStore) DeleteAlarm(ctx context.Context, id int) error {
	keys := make([]string, 0, len(recordFields))
	for _, field := range recordFields {
		keys = append(keys, alarmKey(id, field))
	}
	if err := s.kv.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("delete alarm %d: %w", id, err)
	}
	return nil
}

// GetAlarm loads the record for id
func (s *AlarmStore) GetAlarm(ctx context.Context, id int) (*core.PersistedAlarmRecord, error) {
	pairs, err := s.kv.Scan(ctx, fmt.Sprintf("%s%d_", KeyPrefix, id))
	if err != nil {
		return nil, fmt.Errorf("load alarm %d: %w", id, err)
	}

	fields := make(map[string]string, len(pairs))
	for key, value := range pairs {
		if keyID, field, ok := parseAlarmKey(key); ok && keyID == id {
			fields[field] = value
		}
	}

	rec, err := s.decode(id, fields)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, core.ErrAlarmNotFound
	}
	return rec, nil
}

// ListAlarms loads every stored record ordered by trigger instant. Records
// that fail to decode are left out.
func (s *AlarmStore) ListAlarms(ctx context.Context) ([]*core.PersistedAlarmRecord, error) {
	records, _, err := s.LoadAlarms(ctx)
	return records, err
}

// LoadAlarms is ListAlarms that also reports the decode error of every
// unreadable record by alarm ID. The error return is reserved for the backend.
func (s *AlarmStore) LoadAlarms(ctx context.Context) ([]*core.PersistedAlarmRecord, map[int]error, error) {
	pairs, err := s.kv.Scan(ctx, KeyPrefix)
	if err != nil {
		return nil, nil, fmt.Errorf("scan alarms: %w", err)
	}

	grouped := make(map[int]map[string]string)
	for key, value := range pairs {
		id, field, ok := parseAlarmKey(key)
		if !ok {
			continue
		}
		if grouped[id] == nil {
			grouped[id] = make(map[string]string)
		}
		grouped[id][field] = value
	}

	records := make([]*core.PersistedAlarmRecord, 0, len(grouped))
	var corrupt map[int]error
	for id, fields := range grouped {
		rec, err := s.decode(id, fields)
		if err != nil {
			if corrupt == nil {
				corrupt = make(map[int]error)
			}
			corrupt[id] = err
			continue
		}
		if rec != nil {
			records = append(records, rec)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].TriggerAt.Equal(records[j].TriggerAt) {
			return records[i].TriggerAt.Before(records[j].TriggerAt)
		}
		return records[i].Definition.ID < records[j].Definition.ID
	})

	return records, corrupt, nil
}

// SetAlarmSuppressUntil suppresses deliveries of one alarm until the given instant
func (s *AlarmStore) SetAlarmSuppressUntil(ctx context.Context, id int, until time.Time) error {
	return s.setInstant(ctx, alarmKey(id, fieldSuppressUntil), until)
}

// SetGlobalSuppressUntil suppresses deliveries of every alarm until the given instant
func (s *AlarmStore) SetGlobalSuppressUntil(ctx context.Context, until time.Time) error {
	return s.setInstant(ctx, GlobalSuppressKey, until)
}

// AlarmSuppressUntil returns the per-alarm window; zero when none is stored
func (s *AlarmStore) AlarmSuppressUntil(ctx context.Context, id int) (time.Time, error) {
	return s.getInstant(ctx, alarmKey(id, fieldSuppressUntil))
}

// GlobalSuppressUntil returns the global window; zero when none is stored
func (s *AlarmStore) GlobalSuppressUntil(ctx context.Context) (time.Time, error) {
	return s.getInstant(ctx, GlobalSuppressKey)
}

// Close closes the underlying backend
func (s *AlarmStore) Close() error {
	return s.kv.Close()
}

func (s *AlarmStore) setInstant(ctx context.Context, key string, at time.Time) error {
	if err := s.kv.SetMany(ctx, map[string]string{key: strconv.FormatInt(at.UnixMilli(), 10)}); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *AlarmStore) getInstant(ctx context.Context, key string) (time.Time, error) {
	value, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok || value == "" {
		return time.Time{}, nil
	}
	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s: %w", key, err)
	}
	return time.UnixMilli(ms).In(s.timezone), nil
}

// decode builds a record from its fields; nil when no trigger instant is stored
func (s *AlarmStore) decode(id int, fields map[string]string) (*core.PersistedAlarmRecord, error) {
	raw, ok := fields[fieldTime]
	if !ok {
		return nil, nil
	}

	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("alarm %d: parse trigger time: %w", id, err)
	}

	def := core.AlarmDefinition{
		ID:       id,
		Message:  fields[fieldMessage],
		GameType: fields[fieldGame],
	}
	if v := fields[fieldDuration]; v != "" {
		if def.DurationMinutes, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("alarm %d: parse duration: %w", id, err)
		}
	}

	if v := fields[fieldHour]; v != "" {
		schedule := &core.WeeklySchedule{}
		if schedule.Hour, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("alarm %d: parse hour: %w", id, err)
		}
		if schedule.Minute, err = strconv.Atoi(fields[fieldMinute]); err != nil {
			return nil, fmt.Errorf("alarm %d: parse minute: %w", id, err)
		}
		if schedule.Weekdays, err = parseDays(fields[fieldDays]); err != nil {
			return nil, fmt.Errorf("alarm %d: %w", id, err)
		}
		def.Schedule = schedule
	}
	def.ApplyDefaults()

	active := true
	if v := fields[fieldActive]; v != "" {
		if active, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("alarm %d: parse active flag: %w", id, err)
		}
	}

	return &core.PersistedAlarmRecord{
		Definition: def,
		TriggerAt:  time.UnixMilli(ms).In(s.timezone),
		Active:     active,
	}, nil
}
