package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 跳转结果
const (
	OutcomeTarget   = "target"
	OutcomeInvalid  = "invalid"
	OutcomeInactive = "inactive"
)

// 后台追踪失败阶段
const (
	StageEvent     = "event"
	StageScanCount = "scan_count"
	StageStats     = "stats"
	StagePanic     = "panic"
)

var (
	Redirects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qr_redirects_total",
			Help: "Total number of /track redirects by outcome",
		},
		[]string{"outcome"},
	)

	ScanEventsEnqueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scan_events_enqueued_total",
			Help: "Scan events handed to the background tracker",
		},
	)

	ScanEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scan_events_dropped_total",
			Help: "Scan events dropped because the tracker queue was full or stopped",
		},
	)

	ScanEventsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scan_events_recorded_total",
			Help: "Scan events persisted to the event log",
		},
	)

	TrackFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scan_track_failures_total",
			Help: "Background tracking failures by stage",
		},
		[]string{"stage"},
	)

	TrackDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scan_track_duration_seconds",
			Help:    "Time spent persisting one scan event and its aggregates",
			Buckets: prometheus.DefBuckets,
		},
	)

	TrackerQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scan_tracker_queue_depth",
			Help: "Scan events waiting in tracker queues",
		},
	)
)
