package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)
)

// Cultivation metrics
var (
	BreakthroughAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cultivation_breakthrough_attempts_total",
			Help: "Breakthrough attempts by outcome",
		},
		[]string{"outcome"},
	)

	CraftAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crafting_attempts_total",
			Help: "Craft and fusion attempts by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	FarmsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cultivation_farms_total",
			Help: "Completed farm actions",
		},
	)

	ActivityExpGranted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cultivation_activity_exp_granted_total",
			Help: "EXP granted through activity accrual",
		},
	)

	PurchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "economy_purchases_total",
			Help: "Completed shop purchases by item",
		},
		[]string{"item"},
	)
)

// Event metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Events published to the bus by type",
		},
		[]string{"type"},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_handler_errors_total",
			Help: "Event handler errors by type",
		},
		[]string{"type"},
	)
)

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
