// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values
const (
	ResultOK     = "ok"
	ResultDenied = "denied"
	ResultError  = "error"
)

var (
	// ScheduleTotal counts schedule calls by kind (one_shot, recurring) and result
	ScheduleTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reveille_schedule_total",
		Help: "Total alarm schedule calls by kind and result",
	}, []string{"kind", "result"})

	// CancelTotal counts cancel calls by whether a timer was armed
	CancelTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reveille_cancel_total",
		Help: "Total alarm cancel calls by whether a timer was armed",
	}, []string{"armed"})

	// DeliveryTotal counts fired timers by outcome (delivered, suppressed)
	DeliveryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reveille_delivery_total",
		Help: "Total fired alarm deliveries by outcome",
	}, []string{"outcome"})

	// DeliveryLateness tracks how far after its trigger instant an alarm was handled
	DeliveryLateness = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "reveille_delivery_lateness_seconds",
		Help:    "Delay between trigger instant and delivery handling",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~80s
	})

	// RingingTransitions counts ringing session transitions by target state
	RingingTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reveille_ringing_transitions_total",
		Help: "Total ringing session transitions by target state",
	}, []string{"state"})

	// VolumeCorrections counts volume restorations by the enforcer
	VolumeCorrections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reveille_volume_corrections_total",
		Help: "Total times the alarm stream volume was restored to its target",
	})

	// RecoveryTotal counts boot recovery decisions by result (rearmed, skipped, failed)
	RecoveryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reveille_recovery_total",
		Help: "Total persisted alarms processed at boot by result",
	}, []string{"result"})

	// EventsPublished counts outbound notifications by type
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reveille_events_published_total",
		Help: "Total outbound notifications by event type",
	}, []string{"type"})

	// EventsDropped counts notifications a slow subscriber missed
	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reveille_events_dropped_total",
		Help: "Total notifications dropped for slow stream subscribers",
	})
)
