package submission

import (
	"errors"
	"time"

	"github.com/mauv0809/catchboard/internal/entry"
	"github.com/mauv0809/catchboard/internal/metrics"
	"github.com/mauv0809/catchboard/internal/pubsub"
)

// ErrPersistence is returned when an entry could not be written after all
// retries. The entry is left in the error state.
var ErrPersistence = errors.New("entry could not be persisted")

// Service validates write intents and applies them to the store through the
// entry state machine.
type Service struct {
	store   Store
	pubsub  pubsub.PubSubClient
	metrics metrics.Metrics
	retry   RetryConfig
	now     func() time.Time
}

// RetryConfig controls how version conflicts and store failures are retried.
type RetryConfig struct {
	MaxRetries uint64
	BaseDelay  time.Duration
}

// DefaultRetryConfig is used when no retry settings are configured.
var DefaultRetryConfig = RetryConfig{MaxRetries: 3, BaseDelay: 50 * time.Millisecond}

// HourlyIntent is a request to record the catch of one competitor for one hour.
type HourlyIntent struct {
	CompetitorID string     `json:"competitorId"`
	Hour         int        `json:"hour"`
	FishCount    int        `json:"fishCount"`
	TotalWeight  int        `json:"totalWeight"`
	Role         entry.Role `json:"role"`
	Offline      bool       `json:"offline"`
	RequestID    string     `json:"requestId,omitempty"`
}

// BigCatchIntent is a request to record a competitor's biggest fish.
type BigCatchIntent struct {
	CompetitorID string     `json:"competitorId"`
	BiggestCatch int        `json:"biggestCatch"`
	Role         entry.Role `json:"role"`
	Offline      bool       `json:"offline"`
	RequestID    string     `json:"requestId,omitempty"`
}

// SyncIntent promotes offline entries once connectivity is back. Empty
// fields match everything.
type SyncIntent struct {
	Role          entry.Role `json:"role,omitempty"`
	CompetitorIDs []string   `json:"competitorIds,omitempty"`
}

// HourlyResult is the outcome of an hourly submission.
type HourlyResult struct {
	Entry    entry.HourlyEntry `json:"entry"`
	Replayed bool              `json:"replayed"`
	DryRun   bool              `json:"dryRun"`
}

// BigCatchResult is the outcome of a big-catch submission.
type BigCatchResult struct {
	Entry    entry.BigCatchEntry `json:"entry"`
	Replayed bool                `json:"replayed"`
	DryRun   bool                `json:"dryRun"`
}

// SyncResult reports how many entries were promoted.
type SyncResult struct {
	Synced int  `json:"synced"`
	DryRun bool `json:"dryRun"`
}
