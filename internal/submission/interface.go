package submission

import (
	"context"

	"github.com/mauv0809/catchboard/internal/competition"
	"github.com/mauv0809/catchboard/internal/entry"
	"github.com/mauv0809/catchboard/internal/scoring"
	"github.com/mauv0809/catchboard/internal/store"
)

// Store defines the database operations required by the submission service.
type Store interface {
	GetCompetitor(ctx context.Context, id string) (competition.Competitor, error)
	GetHourlyEntry(ctx context.Context, competitorID string, hour int) (entry.HourlyEntry, error)
	PutHourlyEntry(ctx context.Context, e entry.HourlyEntry, expectedVersion int64) (entry.HourlyEntry, error)
	MarkHourlyError(ctx context.Context, e entry.HourlyEntry, expectedVersion int64) error
	GetBigCatchEntry(ctx context.Context, competitorID string) (entry.BigCatchEntry, error)
	PutBigCatchEntry(ctx context.Context, e entry.BigCatchEntry, expectedVersion int64) (entry.BigCatchEntry, error)
	MarkBigCatchError(ctx context.Context, e entry.BigCatchEntry, expectedVersion int64) error
	SyncOffline(ctx context.Context, filter store.SyncFilter) (int, error)
	Snapshot(ctx context.Context) (scoring.Snapshot, error)
}
