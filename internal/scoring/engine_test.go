package scoring

import (
	"testing"
	"time"

	"github.com/mauv0809/catchboard/internal/competition"
	"github.com/mauv0809/catchboard/internal/entry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullField(t *testing.T) Snapshot {
	t.Helper()
	roster := competition.GenerateRoster(nil, "")
	snap := Snapshot{Competitors: roster}
	for i, c := range roster {
		fish := i%competition.SectorSize + 1
		snap.Hourly = append(snap.Hourly, hourly(c.ID, 1+i%competition.Hours, fish, fish*100, entry.StatusLockedJudge))
		snap.BigCatches = append(snap.BigCatches, bigCatch(c.ID, 100+i, entry.StatusLockedJudge))
	}
	return snap
}

func TestComputeRankings_FullField(t *testing.T) {
	board := ComputeRankings(fullField(t))

	require.Len(t, board.General, competition.RosterSize)
	require.Len(t, board.Sectors, competition.SectorCount)
	assert.Empty(t, board.Issues)

	for i, s := range board.General {
		assert.Equal(t, GeneralRank(i+1), s.GeneralRank)
		assert.True(t, s.GeneralRank.Ranked())
	}
	last := board.General[len(board.General)-1]
	assert.Equal(t, 120, last.GeneralRank.Display(), "the 120th ranked competitor legitimately holds rank 120")
	assert.False(t, last.Unranked)

	for _, sector := range board.Sectors {
		require.Len(t, sector.Scores, competition.SectorSize)
		for i, s := range sector.Scores {
			assert.Equal(t, i+1, s.SectorRank)
			assert.Equal(t, sector.Sector, s.Sector)
			general, ok := board.Score(s.ID)
			require.True(t, ok)
			assert.Equal(t, general.GeneralRank, s.GeneralRank)
		}
		assert.Equal(t, competition.SectorSize, sector.Totals.Competitors)
	}
	assert.Equal(t, competition.RosterSize, board.Totals.Competitors)
	assert.Equal(t, 100+competition.RosterSize-1, board.Totals.BiggestCatch)

	podium := board.Podium(3)
	require.Len(t, podium, 3)
	assert.Equal(t, board.General[0].ID, podium[0].ID)
}

func TestComputeRankings_Idempotent(t *testing.T) {
	snap := fullField(t)
	first := ComputeRankings(snap)
	second := ComputeRankings(snap)
	assert.Equal(t, first, second)
}

func TestComputeRankings_UnrankedSentinel(t *testing.T) {
	snap := Snapshot{Competitors: []competition.Competitor{
		competitor("a1", competition.SectorA, 1),
		competitor("a2", competition.SectorA, 2),
		competitor("b1", competition.SectorB, 1),
	}}
	snap.Hourly = []entry.HourlyEntry{
		hourly("a1", 1, 2, 300, entry.StatusLockedJudge),
		hourly("a2", 1, 1, 150, entry.StatusInProgress),
		hourly("b1", 2, 1, 100, entry.StatusError),
	}
	board := ComputeRankings(snap)

	require.Len(t, board.General, 3)
	assert.Equal(t, "a1", board.General[0].ID)
	assert.Equal(t, GeneralRank(1), board.General[0].GeneralRank)
	for _, s := range board.General[1:] {
		assert.True(t, s.SectorCoefficient.IsZero())
		assert.Equal(t, Unranked, s.GeneralRank)
		assert.Equal(t, 120, s.GeneralRank.Display())
	}
	assert.True(t, hasIssue(board, IssueEmptySector))
}

func TestComputeRankings_DuplicateBox(t *testing.T) {
	snap := Snapshot{
		Competitors: []competition.Competitor{
			competitor("a1", competition.SectorA, 3),
			competitor("a2", competition.SectorA, 3),
			competitor("b1", competition.SectorB, 3),
		},
		Hourly: []entry.HourlyEntry{
			hourly("a1", 1, 1, 200, entry.StatusLockedJudge),
			hourly("a2", 1, 5, 900, entry.StatusLockedJudge),
		},
	}

	board := ComputeRankings(snap)

	var found *Issue
	for i, issue := range board.Issues {
		if issue.Kind == IssueDuplicateCompetitor {
			found = &board.Issues[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "a2", found.CompetitorID)
	assert.Equal(t, competition.SectorA, found.Sector)
	assert.Contains(t, found.Detail, "A03")
	assert.Contains(t, found.Detail, "a1")

	require.Len(t, board.General, 2, "the second competitor in box A03 is left out")
	for _, score := range board.General {
		assert.NotEqual(t, "a2", score.ID)
	}
	assert.True(t, hasIssue(board, IssueOrphanEntry), "entries of the excluded competitor are reported")
}

func TestComputeRankings_BadInput(t *testing.T) {
	snap := Snapshot{
		Competitors: []competition.Competitor{
			competitor("a1", competition.SectorA, 1),
			competitor("a1", competition.SectorA, 2),
			competitor("z1", "Z", 1),
		},
		Hourly: []entry.HourlyEntry{
			hourly("ghost", 1, 4, 400, entry.StatusLockedJudge),
			hourly("a1", 9, 4, 400, entry.StatusLockedJudge),
			hourly("a1", 2, 1, 100, entry.Status("approved")),
			hourly("a1", 1, 1, 100, entry.StatusLockedJudge),
		},
		BigCatches: []entry.BigCatchEntry{bigCatch("ghost", 900, entry.StatusLockedJudge)},
	}
	newerEntry := hourly("a1", 1, 2, 250, entry.StatusLockedAdmin)
	newerEntry.Timestamp = newerEntry.Timestamp.Add(10 * time.Minute)
	snap.Hourly = append(snap.Hourly, newerEntry)

	board := ComputeRankings(snap)

	for _, kind := range []IssueKind{IssueOrphanEntry, IssueInvalidHour, IssueUnknownStatus, IssueDuplicateEntry, IssueDuplicateCompetitor, IssueInvalidCompetitor, IssueEmptySector} {
		assert.True(t, hasIssue(board, kind), kind)
	}
	require.Len(t, board.General, 1)
	score := board.General[0]
	assert.Equal(t, "a1", score.ID)
	assert.Equal(t, 2, score.FishCount, "latest duplicate wins")
	assert.Equal(t, 350, score.Points)
	assert.Equal(t, 0, score.BiggestCatch)
}

func TestComputeRankings_EmptySnapshot(t *testing.T) {
	board := ComputeRankings(Snapshot{})

	assert.Empty(t, board.General)
	require.Len(t, board.Sectors, competition.SectorCount)
	for _, sector := range board.Sectors {
		assert.Empty(t, sector.Scores)
		assert.Equal(t, Totals{}, sector.Totals)
	}
	assert.Equal(t, Totals{}, board.Totals)
	assert.Len(t, board.Issues, competition.SectorCount)
	assert.Empty(t, board.Podium(3))
}
