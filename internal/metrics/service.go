package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		SubmissionsAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catchboard_submissions_accepted_total",
			Help: "The total number of entry submissions written to the store.",
		}, []string{"kind"}),
		SubmissionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catchboard_submissions_rejected_total",
			Help: "The total number of entry submissions rejected, by reason.",
		}, []string{"kind", "reason"}),
		PersistenceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catchboard_persistence_failures_total",
			Help: "The total number of entry writes that exhausted their retries.",
		}, []string{"kind"}),
		EntriesSynced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catchboard_entries_synced_total",
			Help: "The total number of offline entries promoted on reconnection.",
		}),
		RankingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "catchboard_ranking_duration_seconds",
			Help:    "The duration of a full ranking computation.",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catchboard_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catchboard_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catchboard_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.SubmissionsAccepted,
		s.SubmissionsRejected,
		s.PersistenceFailures,
		s.EntriesSynced,
		s.RankingDuration,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncSubmissionAccepted(kind string) {
	s.SubmissionsAccepted.WithLabelValues(kind).Inc()
}

func (s *Service) IncSubmissionRejected(kind, reason string) {
	s.SubmissionsRejected.WithLabelValues(kind, reason).Inc()
}

func (s *Service) IncPersistenceFailure(kind string) {
	s.PersistenceFailures.WithLabelValues(kind).Inc()
}

func (s *Service) AddEntriesSynced(n int) {
	s.EntriesSynced.Add(float64(n))
}

func (s *Service) ObserveRankingDuration(seconds float64) {
	s.RankingDuration.Observe(seconds)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
