package scoring

import (
	"fmt"
	"slices"
	"time"

	"github.com/mauv0809/catchboard/internal/competition"
	"github.com/mauv0809/catchboard/internal/entry"
)

type hourKey struct {
	competitorID string
	hour         int
}

// ComputeRankings runs the whole pipeline over a snapshot: aggregation,
// sector ranking, general ranking and totals. It never fails; bad records
// are excluded and reported in Board.Issues so that a board can always be
// rendered.
func ComputeRankings(snap Snapshot) *Board {
	board := &Board{
		General: []CompetitorScore{},
		Sectors: make([]SectorRanking, 0, len(competition.Sectors)),
	}

	competitors := make(map[string]competition.Competitor, len(snap.Competitors))
	boxes := make(map[string]string, len(snap.Competitors))
	bySector := make(map[competition.Sector][]competition.Competitor)
	for _, c := range snap.Competitors {
		if err := c.Validate(); err != nil {
			board.addIssue(Issue{Kind: IssueInvalidCompetitor, CompetitorID: c.ID, Sector: c.Sector, Detail: err.Error()})
			continue
		}
		if _, ok := competitors[c.ID]; ok {
			board.addIssue(Issue{Kind: IssueDuplicateCompetitor, CompetitorID: c.ID, Sector: c.Sector, Detail: "competitor listed more than once, first kept"})
			continue
		}
		if other, ok := boxes[c.BoxCode()]; ok {
			board.addIssue(Issue{Kind: IssueDuplicateCompetitor, CompetitorID: c.ID, Sector: c.Sector, Detail: fmt.Sprintf("box %s already assigned to %s, first kept", c.BoxCode(), other)})
			continue
		}
		boxes[c.BoxCode()] = c.ID
		competitors[c.ID] = c
		bySector[c.Sector] = append(bySector[c.Sector], c)
	}

	hourly := make(map[hourKey]entry.HourlyEntry, len(snap.Hourly))
	for _, e := range snap.Hourly {
		if _, ok := competitors[e.CompetitorID]; !ok {
			board.addIssue(Issue{Kind: IssueOrphanEntry, CompetitorID: e.CompetitorID, Hour: e.Hour, Detail: "hourly entry for unknown competitor"})
			continue
		}
		if e.Hour < 1 || e.Hour > competition.Hours {
			board.addIssue(Issue{Kind: IssueInvalidHour, CompetitorID: e.CompetitorID, Hour: e.Hour, Detail: fmt.Sprintf("hour %d outside 1..%d", e.Hour, competition.Hours)})
			continue
		}
		if !e.Status.Known() {
			board.addIssue(Issue{Kind: IssueUnknownStatus, CompetitorID: e.CompetitorID, Hour: e.Hour, Detail: fmt.Sprintf("status %q ignored", e.Status)})
			continue
		}
		key := hourKey{e.CompetitorID, e.Hour}
		if prev, ok := hourly[key]; ok {
			board.addIssue(Issue{Kind: IssueDuplicateEntry, CompetitorID: e.CompetitorID, Hour: e.Hour, Detail: "duplicate hourly entry, latest kept"})
			if !newerHourly(e, prev) {
				continue
			}
		}
		hourly[key] = e
	}

	bigCatches := make(map[string]entry.BigCatchEntry, len(snap.BigCatches))
	for _, e := range snap.BigCatches {
		if _, ok := competitors[e.CompetitorID]; !ok {
			board.addIssue(Issue{Kind: IssueOrphanEntry, CompetitorID: e.CompetitorID, Detail: "big catch entry for unknown competitor"})
			continue
		}
		if !e.Status.Known() {
			board.addIssue(Issue{Kind: IssueUnknownStatus, CompetitorID: e.CompetitorID, Detail: fmt.Sprintf("status %q ignored", e.Status)})
			continue
		}
		if prev, ok := bigCatches[e.CompetitorID]; ok {
			board.addIssue(Issue{Kind: IssueDuplicateEntry, CompetitorID: e.CompetitorID, Detail: "duplicate big catch entry, latest kept"})
			if !newer(e.Timestamp, e.Version, prev.Timestamp, prev.Version) {
				continue
			}
		}
		bigCatches[e.CompetitorID] = e
	}

	rankedSectors := make([][]CompetitorScore, 0, len(competition.Sectors))
	for _, sector := range competition.Sectors {
		members := bySector[sector]
		if len(members) == 0 {
			board.addIssue(Issue{Kind: IssueEmptySector, Sector: sector, Detail: "sector has no competitors"})
		}
		scores := make([]CompetitorScore, 0, len(members))
		for _, c := range members {
			var entries []entry.HourlyEntry
			for hour := 1; hour <= competition.Hours; hour++ {
				if e, ok := hourly[hourKey{c.ID, hour}]; ok {
					entries = append(entries, e)
				}
			}
			var big *entry.BigCatchEntry
			if e, ok := bigCatches[c.ID]; ok {
				big = &e
			}
			scores = append(scores, Aggregate(c, entries, big))
		}
		rankedSectors = append(rankedSectors, RankSector(scores))
	}

	if general := RankGeneral(rankedSectors); len(general) > 0 {
		board.General = general
	}

	ranks := make(map[string]CompetitorScore, len(board.General))
	for _, s := range board.General {
		ranks[s.ID] = s
	}
	for i, sector := range competition.Sectors {
		scores := rankedSectors[i]
		for j := range scores {
			scores[j].GeneralRank = ranks[scores[j].ID].GeneralRank
			scores[j].Unranked = ranks[scores[j].ID].Unranked
		}
		board.Sectors = append(board.Sectors, SectorRanking{
			Sector: sector,
			Scores: scores,
			Totals: ComputeTotals(scores),
		})
	}
	board.Totals = ComputeTotals(board.General)
	return board
}

func (b *Board) addIssue(issue Issue) {
	b.Issues = append(b.Issues, issue)
}

func newerHourly(a, b entry.HourlyEntry) bool {
	return newer(a.Timestamp, a.Version, b.Timestamp, b.Version)
}

// newer decides duplicate keys: the later timestamp wins, then the higher
// version. Exact ties keep the entry seen first.
func newer(aTime time.Time, aVersion int64, bTime time.Time, bVersion int64) bool {
	if c := aTime.Compare(bTime); c != 0 {
		return c > 0
	}
	return aVersion > bVersion
}

// Podium returns the first n ranked competitors of the general ranking.
func (b *Board) Podium(n int) []CompetitorScore {
	ranked := slices.DeleteFunc(slices.Clone(b.General), func(s CompetitorScore) bool {
		return !s.GeneralRank.Ranked()
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
