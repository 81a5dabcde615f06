package store_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/mauv0809/catchboard/internal/competition"
	"github.com/mauv0809/catchboard/internal/database"
	"github.com/mauv0809/catchboard/internal/entry"
	"github.com/mauv0809/catchboard/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database seeded with two competitors.
func setupTestDB(t *testing.T) (store.Store, *sql.DB) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)

	s := store.New(db)
	err = s.UpsertCompetitors(context.Background(), []competition.Competitor{
		{ID: "c1", Sector: competition.SectorA, BoxNumber: 1, Name: "Alice"},
		{ID: "c2", Sector: competition.SectorB, BoxNumber: 3, Name: "Bruno"},
	})
	require.NoError(t, err)
	return s, db
}

func hourlyEntry(id string, hour, fish, weight int, status entry.Status) entry.HourlyEntry {
	return entry.HourlyEntry{
		CompetitorID: id,
		Hour:         hour,
		FishCount:    fish,
		TotalWeight:  weight,
		Status:       status,
		Source:       entry.RoleJudge,
		Timestamp:    time.Date(2026, 6, 14, 9, 0, 0, 0, time.UTC),
	}
}

func TestCompetitors(t *testing.T) {
	s, _ := setupTestDB(t)
	ctx := context.Background()

	competitors, err := s.GetCompetitors(ctx)
	require.NoError(t, err)
	require.Len(t, competitors, 2)
	assert.Equal(t, "A01", competitors[0].BoxCode())

	err = s.UpsertCompetitors(ctx, []competition.Competitor{{ID: "c1", Sector: competition.SectorA, BoxNumber: 2, Name: "Alice"}})
	require.NoError(t, err)

	c, err := s.GetCompetitor(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, c.BoxNumber)

	_, err = s.GetCompetitor(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpsertCompetitors_Conflicts(t *testing.T) {
	s, _ := setupTestDB(t)
	ctx := context.Background()

	_, err := s.PutHourlyEntry(ctx, hourlyEntry("c1", 1, 2, 400, entry.StatusLockedJudge), 0)
	require.NoError(t, err)

	t.Run("box taken by a stored competitor", func(t *testing.T) {
		err := s.UpsertCompetitors(ctx, []competition.Competitor{{ID: "c3", Sector: competition.SectorA, BoxNumber: 1, Name: "Chloe"}})
		assert.ErrorIs(t, err, store.ErrRosterConflict)

		_, err = s.GetCompetitor(ctx, "c3")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("boxes exchanged in one upsert", func(t *testing.T) {
		err := s.UpsertCompetitors(ctx, []competition.Competitor{
			{ID: "c1", Sector: competition.SectorB, BoxNumber: 3, Name: "Alice"},
			{ID: "c2", Sector: competition.SectorA, BoxNumber: 1, Name: "Bruno"},
		})
		require.NoError(t, err)

		competitors, err := s.GetCompetitors(ctx)
		require.NoError(t, err)
		require.Len(t, competitors, 2)
		assert.Equal(t, "c2", competitors[0].ID)
		assert.Equal(t, "A01", competitors[0].BoxCode())
		assert.Equal(t, "c1", competitors[1].ID)
		assert.Equal(t, "B03", competitors[1].BoxCode())

		e, err := s.GetHourlyEntry(ctx, "c1", 1)
		require.NoError(t, err)
		assert.Equal(t, 400, e.TotalWeight, "entries follow their competitor")
	})

	t.Run("duplicate box within the upsert", func(t *testing.T) {
		err := s.UpsertCompetitors(ctx, []competition.Competitor{
			{ID: "c4", Sector: competition.SectorC, BoxNumber: 5},
			{ID: "c5", Sector: competition.SectorC, BoxNumber: 5},
		})
		assert.ErrorIs(t, err, store.ErrRosterConflict)

		competitors, err := s.GetCompetitors(ctx)
		require.NoError(t, err)
		assert.Len(t, competitors, 2)
	})
}

func TestPutHourlyEntry_VersionCheck(t *testing.T) {
	s, _ := setupTestDB(t)
	ctx := context.Background()

	_, err := s.GetHourlyEntry(ctx, "c1", 1)
	assert.ErrorIs(t, err, store.ErrNotFound)

	written, err := s.PutHourlyEntry(ctx, hourlyEntry("c1", 1, 2, 500, entry.StatusLockedJudge), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), written.Version)

	_, err = s.PutHourlyEntry(ctx, hourlyEntry("c1", 1, 3, 700, entry.StatusLockedJudge), 0)
	assert.ErrorIs(t, err, store.ErrVersionConflict, "a second first-write must conflict")

	updated := hourlyEntry("c1", 1, 3, 700, entry.StatusLockedAdmin)
	updated.Source = entry.RoleAdmin
	written, err = s.PutHourlyEntry(ctx, updated, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), written.Version)

	_, err = s.PutHourlyEntry(ctx, updated, 1)
	assert.ErrorIs(t, err, store.ErrVersionConflict, "a stale version must conflict")

	stored, err := s.GetHourlyEntry(ctx, "c1", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.FishCount)
	assert.Equal(t, 700, stored.TotalWeight)
	assert.Equal(t, entry.StatusLockedAdmin, stored.Status)
	assert.Equal(t, entry.RoleAdmin, stored.Source)
	assert.True(t, updated.Timestamp.Equal(stored.Timestamp))
}

func TestPutBigCatchEntry_VersionCheck(t *testing.T) {
	s, _ := setupTestDB(t)
	ctx := context.Background()

	e := entry.BigCatchEntry{CompetitorID: "c2", BiggestCatch: 900, Status: entry.StatusLockedJudge, Source: entry.RoleJudge, Timestamp: time.Now()}
	written, err := s.PutBigCatchEntry(ctx, e, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), written.Version)

	_, err = s.PutBigCatchEntry(ctx, e, 0)
	assert.ErrorIs(t, err, store.ErrVersionConflict)

	e.BiggestCatch = 1200
	_, err = s.PutBigCatchEntry(ctx, e, 1)
	require.NoError(t, err)

	stored, err := s.GetBigCatchEntry(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, 1200, stored.BiggestCatch)
	assert.Equal(t, int64(2), stored.Version)
}

func TestMarkError(t *testing.T) {
	s, _ := setupTestDB(t)
	ctx := context.Background()

	_, err := s.PutHourlyEntry(ctx, hourlyEntry("c1", 2, 1, 300, entry.StatusLockedJudge), 0)
	require.NoError(t, err)
	require.NoError(t, s.MarkHourlyError(ctx, hourlyEntry("c1", 2, 4, 900, entry.StatusLockedJudge), 1))

	stored, err := s.GetHourlyEntry(ctx, "c1", 2)
	require.NoError(t, err)
	assert.Equal(t, entry.StatusError, stored.Status)
	assert.Equal(t, 4, stored.FishCount)
	assert.Equal(t, int64(2), stored.Version)

	require.NoError(t, s.MarkBigCatchError(ctx, entry.BigCatchEntry{CompetitorID: "c2", BiggestCatch: 10, Source: entry.RoleAdmin, Timestamp: time.Now()}, 0))
	big, err := s.GetBigCatchEntry(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, entry.StatusError, big.Status)
	assert.Equal(t, int64(1), big.Version)
}

func TestMarkError_StaleVersion(t *testing.T) {
	s, _ := setupTestDB(t)
	ctx := context.Background()

	admin := hourlyEntry("c1", 3, 2, 500, entry.StatusLockedAdmin)
	admin.Source = entry.RoleAdmin
	_, err := s.PutHourlyEntry(ctx, admin, 0)
	require.NoError(t, err)

	err = s.MarkHourlyError(ctx, hourlyEntry("c1", 3, 9, 9999, entry.StatusLockedJudge), 0)
	assert.ErrorIs(t, err, store.ErrVersionConflict, "an absent entry was read but one now exists")
	err = s.MarkHourlyError(ctx, hourlyEntry("c1", 3, 9, 9999, entry.StatusLockedJudge), 4)
	assert.ErrorIs(t, err, store.ErrVersionConflict)

	stored, err := s.GetHourlyEntry(ctx, "c1", 3)
	require.NoError(t, err)
	assert.Equal(t, entry.StatusLockedAdmin, stored.Status)
	assert.Equal(t, entry.RoleAdmin, stored.Source)
	assert.Equal(t, 500, stored.TotalWeight)

	big := entry.BigCatchEntry{CompetitorID: "c2", BiggestCatch: 700, Status: entry.StatusLockedAdmin, Source: entry.RoleAdmin, Timestamp: time.Now()}
	_, err = s.PutBigCatchEntry(ctx, big, 0)
	require.NoError(t, err)
	err = s.MarkBigCatchError(ctx, entry.BigCatchEntry{CompetitorID: "c2", BiggestCatch: 9000, Source: entry.RoleJudge, Timestamp: time.Now()}, 0)
	assert.ErrorIs(t, err, store.ErrVersionConflict)

	storedBig, err := s.GetBigCatchEntry(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, 700, storedBig.BiggestCatch)
	assert.Equal(t, int64(1), storedBig.Version)
}

func TestSyncOffline(t *testing.T) {
	s, _ := setupTestDB(t)
	ctx := context.Background()

	_, err := s.PutHourlyEntry(ctx, hourlyEntry("c1", 1, 2, 400, entry.StatusOfflineJudge), 0)
	require.NoError(t, err)
	admin := hourlyEntry("c2", 1, 1, 100, entry.StatusOfflineAdmin)
	admin.Source = entry.RoleAdmin
	_, err = s.PutHourlyEntry(ctx, admin, 0)
	require.NoError(t, err)
	_, err = s.PutBigCatchEntry(ctx, entry.BigCatchEntry{CompetitorID: "c1", BiggestCatch: 300, Status: entry.StatusOfflineJudge, Source: entry.RoleJudge, Timestamp: time.Now()}, 0)
	require.NoError(t, err)
	_, err = s.PutHourlyEntry(ctx, hourlyEntry("c1", 2, 0, 0, entry.StatusInProgress), 0)
	require.NoError(t, err)

	n, err := s.SyncOffline(ctx, store.SyncFilter{Role: entry.RoleJudge})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	e, err := s.GetHourlyEntry(ctx, "c1", 1)
	require.NoError(t, err)
	assert.Equal(t, entry.StatusLockedJudge, e.Status)
	assert.Equal(t, int64(2), e.Version)

	e, err = s.GetHourlyEntry(ctx, "c2", 1)
	require.NoError(t, err)
	assert.Equal(t, entry.StatusOfflineAdmin, e.Status, "admin entries are untouched by a judge sync")

	e, err = s.GetHourlyEntry(ctx, "c1", 2)
	require.NoError(t, err)
	assert.Equal(t, entry.StatusInProgress, e.Status)

	n, err = s.SyncOffline(ctx, store.SyncFilter{CompetitorIDs: []string{"c1"}})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.SyncOffline(ctx, store.SyncFilter{CompetitorIDs: []string{"c2"}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSnapshotAndClear(t *testing.T) {
	s, _ := setupTestDB(t)
	ctx := context.Background()

	_, err := s.PutHourlyEntry(ctx, hourlyEntry("c1", 1, 2, 400, entry.StatusLockedJudge), 0)
	require.NoError(t, err)
	_, err = s.PutBigCatchEntry(ctx, entry.BigCatchEntry{CompetitorID: "c1", BiggestCatch: 300, Status: entry.StatusLockedJudge, Source: entry.RoleJudge, Timestamp: time.Now()}, 0)
	require.NoError(t, err)

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Competitors, 2)
	assert.Len(t, snap.Hourly, 1)
	assert.Len(t, snap.BigCatches, 1)

	require.NoError(t, s.ClearEntries(ctx))
	snap, err = s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Competitors, 2)
	assert.Empty(t, snap.Hourly)
	assert.Empty(t, snap.BigCatches)

	require.NoError(t, s.Clear(ctx))
	snap, err = s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Competitors)
}
