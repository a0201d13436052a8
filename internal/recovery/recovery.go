// Package recovery re-arms persisted alarms when the daemon starts.
package recovery

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"reveille/internal/clock"
	"reveille/internal/core"
	"reveille/internal/metrics"
)

// Storage lists persisted alarm records along with the IDs that failed to decode
type Storage interface {
	LoadAlarms(ctx context.Context) ([]*core.PersistedAlarmRecord, map[int]error, error)
}

// Scheduler re-arms a one-shot delay
type Scheduler interface {
	Schedule(ctx context.Context, def core.AlarmDefinition, delaySeconds int) (*core.PersistedAlarmRecord, error)
}

// Report summarises one recovery run
type Report struct {
	Rearmed int
	Skipped int
	Failed  int
}

// Job re-registers every still-future alarm
type Job struct {
	storage   Storage
	scheduler Scheduler
	clock     clock.Clock
	logger    *slog.Logger
}

// NewJob creates a recovery job
func NewJob(storage Storage, scheduler Scheduler, clk clock.Clock, logger *slog.Logger) *Job {
	return &Job{
		storage:   storage,
		scheduler: scheduler,
		clock:     clk,
		logger:    logger.With("component", "recovery"),
	}
}

// Run scans the store once. Elapsed and inactive records are left untouched;
// a failure on one record does not stop the scan.
func (j *Job) Run(ctx context.Context) (Report, error) {
	var report Report

	records, corrupt, err := j.storage.LoadAlarms(ctx)
	if err != nil {
		return report, fmt.Errorf("list persisted alarms: %w", err)
	}

	for id, decodeErr := range corrupt {
		report.Failed++
		metrics.RecoveryTotal.WithLabelValues("failed").Inc()
		j.logger.Error("Unreadable alarm record", "alarm_id", id, "error", decodeErr)
	}

	now := j.clock.Now()
	for _, rec := range records {
		id := rec.Definition.ID

		if !rec.Active || !rec.TriggerAt.After(now) {
			report.Skipped++
			metrics.RecoveryTotal.WithLabelValues("skipped").Inc()
			j.logger.Debug("Skipping alarm", "alarm_id", id, "active", rec.Active, "trigger_at", rec.TriggerAt)
			continue
		}

		delay := int(math.Ceil(rec.TriggerAt.Sub(now).Seconds()))
		if _, err := j.scheduler.Schedule(ctx, rec.Definition, delay); err != nil {
			report.Failed++
			metrics.RecoveryTotal.WithLabelValues("failed").Inc()
			j.logger.Error("Failed to re-arm alarm", "alarm_id", id, "error", err)
			continue
		}

		report.Rearmed++
		metrics.RecoveryTotal.WithLabelValues("rearmed").Inc()
		j.logger.Info("Alarm re-armed", "alarm_id", id, "delay_seconds", delay)
	}

	j.logger.Info("Recovery completed",
		"rearmed", report.Rearmed,
		"skipped", report.Skipped,
		"failed", report.Failed)
	return report, nil
}
