package metrics

import "sync"

var _ Metrics = (*Mock)(nil)

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	accepted            map[string]int
	rejected            map[string]int
	persistenceFailures map[string]int
	entriesSynced       int
	rankingDurations    []float64
	slackNotifSent      int
	slackNotifFailed    int
	startupTime         float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		accepted:            make(map[string]int),
		rejected:            make(map[string]int),
		persistenceFailures: make(map[string]int),
		rankingDurations:    make([]float64, 0),
	}
}

func (m *Mock) IncSubmissionAccepted(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accepted[kind]++
}

func (m *Mock) IncSubmissionRejected(kind, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected[kind+"/"+reason]++
}

func (m *Mock) IncPersistenceFailure(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persistenceFailures[kind]++
}

func (m *Mock) AddEntriesSynced(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entriesSynced += n
}

func (m *Mock) ObserveRankingDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rankingDurations = append(m.rankingDurations, seconds)
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// Accepted returns how many submissions of kind were accepted.
func (m *Mock) Accepted(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accepted[kind]
}

// Rejected returns how many submissions of kind were rejected for reason.
func (m *Mock) Rejected(kind, reason string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rejected[kind+"/"+reason]
}

// PersistenceFailures returns how many writes of kind exhausted their retries.
func (m *Mock) PersistenceFailures(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persistenceFailures[kind]
}

// EntriesSynced returns the total passed to AddEntriesSynced.
func (m *Mock) EntriesSynced() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entriesSynced
}

// RankingComputations returns how many ranking durations were observed.
func (m *Mock) RankingComputations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rankingDurations)
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
