package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	SubmissionsAccepted *prometheus.CounterVec
	SubmissionsRejected *prometheus.CounterVec
	PersistenceFailures *prometheus.CounterVec
	EntriesSynced       prometheus.Counter
	RankingDuration     prometheus.Histogram
	SlackNotifSent      prometheus.Counter
	SlackNotifFailed    prometheus.Counter
	StartupTimeSeconds  prometheus.Gauge
}

// Submission kinds used as the "kind" label.
const (
	KindHourly   = "hourly"
	KindBigCatch = "big_catch"
)

// Rejection reasons used as the "reason" label.
const (
	ReasonValidation    = "validation"
	ReasonUnauthorized  = "unauthorized"
	ReasonUnknownTarget = "unknown_competitor"
	ReasonPersistence   = "persistence"
)
