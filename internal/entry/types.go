package entry

import "time"

// Status is the lifecycle state of an hourly or big-catch entry.
type Status string

const (
	StatusEmpty        Status = "empty"
	StatusInProgress   Status = "in_progress"
	StatusLockedJudge  Status = "locked_judge"
	StatusLockedAdmin  Status = "locked_admin"
	StatusOfflineJudge Status = "offline_judge"
	StatusOfflineAdmin Status = "offline_admin"
	StatusError        Status = "error"
)

// Role identifies who submitted an entry.
type Role string

const (
	RoleJudge Role = "judge"
	RoleAdmin Role = "admin"
)

// HourlyEntry is the catch report of one competitor for one hour.
// There is at most one per (CompetitorID, Hour).
type HourlyEntry struct {
	CompetitorID string    `json:"competitorId" msgpack:"competitor_id"`
	Hour         int       `json:"hour" msgpack:"hour"`
	FishCount    int       `json:"fishCount" msgpack:"fish_count"`
	TotalWeight  int       `json:"totalWeight" msgpack:"total_weight"`
	Status       Status    `json:"status" msgpack:"status"`
	Timestamp    time.Time `json:"timestamp" msgpack:"timestamp"`
	Source       Role      `json:"source" msgpack:"source"`
	Version      int64     `json:"version" msgpack:"version"`
	RequestID    string    `json:"requestId,omitempty" msgpack:"request_id"`
}

// BigCatchEntry is the single biggest fish reported for a competitor.
type BigCatchEntry struct {
	CompetitorID string    `json:"competitorId" msgpack:"competitor_id"`
	BiggestCatch int       `json:"biggestCatch" msgpack:"biggest_catch"`
	Status       Status    `json:"status" msgpack:"status"`
	Timestamp    time.Time `json:"timestamp" msgpack:"timestamp"`
	Source       Role      `json:"source" msgpack:"source"`
	Version      int64     `json:"version" msgpack:"version"`
	RequestID    string    `json:"requestId,omitempty" msgpack:"request_id"`
}

// Counted reports whether the entry contributes to scoring.
func (e HourlyEntry) Counted() bool {
	return e.Status.Validated()
}

// Counted reports whether the entry contributes to scoring.
func (e BigCatchEntry) Counted() bool {
	return e.Status.Validated()
}
