package store

import (
	"context"

	"github.com/mauv0809/catchboard/internal/competition"
	"github.com/mauv0809/catchboard/internal/entry"
	"github.com/mauv0809/catchboard/internal/scoring"
)

// Store persists the roster and every hourly and big-catch entry.
type Store interface {
	UpsertCompetitors(ctx context.Context, competitors []competition.Competitor) error
	GetCompetitors(ctx context.Context) ([]competition.Competitor, error)
	GetCompetitor(ctx context.Context, id string) (competition.Competitor, error)

	GetHourlyEntry(ctx context.Context, competitorID string, hour int) (entry.HourlyEntry, error)
	PutHourlyEntry(ctx context.Context, e entry.HourlyEntry, expectedVersion int64) (entry.HourlyEntry, error)
	MarkHourlyError(ctx context.Context, e entry.HourlyEntry, expectedVersion int64) error

	GetBigCatchEntry(ctx context.Context, competitorID string) (entry.BigCatchEntry, error)
	PutBigCatchEntry(ctx context.Context, e entry.BigCatchEntry, expectedVersion int64) (entry.BigCatchEntry, error)
	MarkBigCatchError(ctx context.Context, e entry.BigCatchEntry, expectedVersion int64) error

	SyncOffline(ctx context.Context, filter SyncFilter) (int, error)
	Snapshot(ctx context.Context) (scoring.Snapshot, error)

	ClearEntries(ctx context.Context) error
	Clear(ctx context.Context) error
}
