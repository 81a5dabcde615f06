package store

import (
	"database/sql"
	"errors"
	"sync"

	"github.com/mauv0809/catchboard/internal/entry"
)

var (
	// ErrNotFound is returned when a competitor or entry does not exist.
	ErrNotFound = errors.New("not found")
	// ErrVersionConflict is returned when a write was based on a stale version.
	ErrVersionConflict = errors.New("entry was modified concurrently")
	// ErrRosterConflict is returned when an upsert would leave two
	// competitors with the same id or in the same box.
	ErrRosterConflict = errors.New("roster conflict")
)

// store handles all database operations for the competition.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// SyncFilter narrows which offline entries are promoted on reconnection.
// A zero Role matches both judge and admin entries; an empty CompetitorIDs
// matches every competitor.
type SyncFilter struct {
	Role          entry.Role
	CompetitorIDs []string
}

// offlineStatuses returns the offline statuses covered by the filter.
func (f SyncFilter) offlineStatuses() []entry.Status {
	switch f.Role {
	case entry.RoleJudge:
		return []entry.Status{entry.StatusOfflineJudge}
	case entry.RoleAdmin:
		return []entry.Status{entry.StatusOfflineAdmin}
	}
	return []entry.Status{entry.StatusOfflineJudge, entry.StatusOfflineAdmin}
}

func (f SyncFilter) matches(competitorID string) bool {
	if len(f.CompetitorIDs) == 0 {
		return true
	}
	for _, id := range f.CompetitorIDs {
		if id == competitorID {
			return true
		}
	}
	return false
}
