package store

import (
	"context"
	"sort"
	"sync"

	"github.com/mauv0809/catchboard/internal/competition"
	"github.com/mauv0809/catchboard/internal/entry"
	"github.com/mauv0809/catchboard/internal/scoring"
)

type hourlyKey struct {
	competitorID string
	hour         int
}

// MockStore is an in-memory implementation of the Store interface for
// testing. It honours version checks like the real store. Any Func field that
// is set replaces the in-memory behaviour. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	competitors map[string]competition.Competitor
	hourly      map[hourlyKey]entry.HourlyEntry
	bigCatches  map[string]entry.BigCatchEntry

	// Spies for method calls
	GetHourlyEntryFunc   func(competitorID string, hour int) (entry.HourlyEntry, error)
	GetBigCatchEntryFunc func(competitorID string) (entry.BigCatchEntry, error)
	PutHourlyEntryFunc   func(e entry.HourlyEntry, expectedVersion int64) (entry.HourlyEntry, error)
	PutBigCatchEntryFunc func(e entry.BigCatchEntry, expectedVersion int64) (entry.BigCatchEntry, error)
	SnapshotFunc         func() (scoring.Snapshot, error)
	SyncOfflineFunc      func(filter SyncFilter) (int, error)

	// Call records
	PutHourlyEntryCalls []struct {
		Entry           entry.HourlyEntry
		ExpectedVersion int64
	}
	PutBigCatchEntryCalls []struct {
		Entry           entry.BigCatchEntry
		ExpectedVersion int64
	}
	MarkHourlyErrorCalls []struct {
		Entry           entry.HourlyEntry
		ExpectedVersion int64
	}
	MarkBigCatchErrorCalls []struct {
		Entry           entry.BigCatchEntry
		ExpectedVersion int64
	}
	SyncOfflineCalls  []SyncFilter
	ClearEntriesCalls int
	ClearCalls        int
}

// NewMock creates a new, empty mock instance.
func NewMock() *MockStore {
	return &MockStore{
		competitors: make(map[string]competition.Competitor),
		hourly:      make(map[hourlyKey]entry.HourlyEntry),
		bigCatches:  make(map[string]entry.BigCatchEntry),
	}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutHourlyEntryCalls = nil
	m.PutBigCatchEntryCalls = nil
	m.MarkHourlyErrorCalls = nil
	m.MarkBigCatchErrorCalls = nil
	m.SyncOfflineCalls = nil
	m.ClearEntriesCalls = 0
	m.ClearCalls = 0
}

func (m *MockStore) UpsertCompetitors(ctx context.Context, competitors []competition.Competitor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing := m.sortedCompetitors()
	if _, err := checkMergedRoster(existing, competitors); err != nil {
		return err
	}
	for _, c := range competitors {
		m.competitors[c.ID] = c
	}
	return nil
}

func (m *MockStore) GetCompetitors(ctx context.Context) ([]competition.Competitor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedCompetitors(), nil
}

func (m *MockStore) GetCompetitor(ctx context.Context, id string) (competition.Competitor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.competitors[id]
	if !ok {
		return competition.Competitor{}, ErrNotFound
	}
	return c, nil
}

func (m *MockStore) GetHourlyEntry(ctx context.Context, competitorID string, hour int) (entry.HourlyEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return entry.HourlyEntry{}, err
	}
	if m.GetHourlyEntryFunc != nil {
		return m.GetHourlyEntryFunc(competitorID, hour)
	}
	e, ok := m.hourly[hourlyKey{competitorID, hour}]
	if !ok {
		return entry.HourlyEntry{}, ErrNotFound
	}
	return e, nil
}

func (m *MockStore) PutHourlyEntry(ctx context.Context, e entry.HourlyEntry, expectedVersion int64) (entry.HourlyEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutHourlyEntryCalls = append(m.PutHourlyEntryCalls, struct {
		Entry           entry.HourlyEntry
		ExpectedVersion int64
	}{e, expectedVersion})
	if err := ctx.Err(); err != nil {
		return entry.HourlyEntry{}, err
	}
	if m.PutHourlyEntryFunc != nil {
		return m.PutHourlyEntryFunc(e, expectedVersion)
	}
	key := hourlyKey{e.CompetitorID, e.Hour}
	if m.hourly[key].Version != expectedVersion {
		return entry.HourlyEntry{}, ErrVersionConflict
	}
	e.Version = expectedVersion + 1
	m.hourly[key] = e
	return e, nil
}

func (m *MockStore) MarkHourlyError(ctx context.Context, e entry.HourlyEntry, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MarkHourlyErrorCalls = append(m.MarkHourlyErrorCalls, struct {
		Entry           entry.HourlyEntry
		ExpectedVersion int64
	}{e, expectedVersion})
	key := hourlyKey{e.CompetitorID, e.Hour}
	if m.hourly[key].Version != expectedVersion {
		return ErrVersionConflict
	}
	e.Status = entry.StatusError
	e.Version = expectedVersion + 1
	m.hourly[key] = e
	return nil
}

func (m *MockStore) GetBigCatchEntry(ctx context.Context, competitorID string) (entry.BigCatchEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return entry.BigCatchEntry{}, err
	}
	if m.GetBigCatchEntryFunc != nil {
		return m.GetBigCatchEntryFunc(competitorID)
	}
	e, ok := m.bigCatches[competitorID]
	if !ok {
		return entry.BigCatchEntry{}, ErrNotFound
	}
	return e, nil
}

func (m *MockStore) PutBigCatchEntry(ctx context.Context, e entry.BigCatchEntry, expectedVersion int64) (entry.BigCatchEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutBigCatchEntryCalls = append(m.PutBigCatchEntryCalls, struct {
		Entry           entry.BigCatchEntry
		ExpectedVersion int64
	}{e, expectedVersion})
	if err := ctx.Err(); err != nil {
		return entry.BigCatchEntry{}, err
	}
	if m.PutBigCatchEntryFunc != nil {
		return m.PutBigCatchEntryFunc(e, expectedVersion)
	}
	if m.bigCatches[e.CompetitorID].Version != expectedVersion {
		return entry.BigCatchEntry{}, ErrVersionConflict
	}
	e.Version = expectedVersion + 1
	m.bigCatches[e.CompetitorID] = e
	return e, nil
}

func (m *MockStore) MarkBigCatchError(ctx context.Context, e entry.BigCatchEntry, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MarkBigCatchErrorCalls = append(m.MarkBigCatchErrorCalls, struct {
		Entry           entry.BigCatchEntry
		ExpectedVersion int64
	}{e, expectedVersion})
	if m.bigCatches[e.CompetitorID].Version != expectedVersion {
		return ErrVersionConflict
	}
	e.Status = entry.StatusError
	e.Version = expectedVersion + 1
	m.bigCatches[e.CompetitorID] = e
	return nil
}

func (m *MockStore) SyncOffline(ctx context.Context, filter SyncFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SyncOfflineCalls = append(m.SyncOfflineCalls, filter)
	if m.SyncOfflineFunc != nil {
		return m.SyncOfflineFunc(filter)
	}

	wanted := make(map[entry.Status]bool)
	for _, s := range filter.offlineStatuses() {
		wanted[s] = true
	}
	synced := 0
	for key, e := range m.hourly {
		if !wanted[e.Status] || !filter.matches(e.CompetitorID) {
			continue
		}
		e.Status, _ = entry.Reconnect(e.Status)
		e.Version++
		m.hourly[key] = e
		synced++
	}
	for id, e := range m.bigCatches {
		if !wanted[e.Status] || !filter.matches(id) {
			continue
		}
		e.Status, _ = entry.Reconnect(e.Status)
		e.Version++
		m.bigCatches[id] = e
		synced++
	}
	return synced, nil
}

func (m *MockStore) Snapshot(ctx context.Context) (scoring.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SnapshotFunc != nil {
		return m.SnapshotFunc()
	}
	snap := scoring.Snapshot{Competitors: m.sortedCompetitors()}
	for _, e := range m.hourly {
		snap.Hourly = append(snap.Hourly, e)
	}
	for _, e := range m.bigCatches {
		snap.BigCatches = append(snap.BigCatches, e)
	}
	return snap, nil
}

func (m *MockStore) ClearEntries(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearEntriesCalls++
	m.hourly = make(map[hourlyKey]entry.HourlyEntry)
	m.bigCatches = make(map[string]entry.BigCatchEntry)
	return nil
}

func (m *MockStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
	m.competitors = make(map[string]competition.Competitor)
	m.hourly = make(map[hourlyKey]entry.HourlyEntry)
	m.bigCatches = make(map[string]entry.BigCatchEntry)
	return nil
}

func (m *MockStore) sortedCompetitors() []competition.Competitor {
	competitors := make([]competition.Competitor, 0, len(m.competitors))
	for _, c := range m.competitors {
		competitors = append(competitors, c)
	}
	sort.Slice(competitors, func(i, j int) bool {
		if competitors[i].Sector != competitors[j].Sector {
			return competitors[i].Sector < competitors[j].Sector
		}
		return competitors[i].BoxNumber < competitors[j].BoxNumber
	})
	return competitors
}
