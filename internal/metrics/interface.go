package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncSubmissionAccepted(kind string)
	IncSubmissionRejected(kind, reason string)
	IncPersistenceFailure(kind string)
	AddEntriesSynced(n int)
	ObserveRankingDuration(seconds float64)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}
