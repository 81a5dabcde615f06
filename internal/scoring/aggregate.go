package scoring

import (
	"time"

	"github.com/mauv0809/catchboard/internal/competition"
	"github.com/mauv0809/catchboard/internal/entry"
)

// Aggregate reduces a competitor's entries into a score. hourly holds at
// most one entry per hour; entries that are not validated, or whose hour is
// outside the contest, are ignored. bigCatch may be nil.
func Aggregate(c competition.Competitor, hourly []entry.HourlyEntry, bigCatch *entry.BigCatchEntry) CompetitorScore {
	score := CompetitorScore{
		Competitor: c,
		BoxCode:    c.BoxCode(),
	}

	byHour := make(map[int]entry.HourlyEntry, len(hourly))
	for _, e := range hourly {
		byHour[e.Hour] = e
	}

	var last time.Time
	for hour := 1; hour <= competition.Hours; hour++ {
		e, ok := byHour[hour]
		if !ok || !e.Counted() {
			continue
		}
		score.FishCount += e.FishCount
		score.TotalWeight += e.TotalWeight
		if e.Timestamp.After(last) {
			last = e.Timestamp
		}
	}
	if !last.IsZero() {
		score.LastValidEntry = &last
	}

	if bigCatch != nil && bigCatch.Counted() {
		score.BiggestCatch = bigCatch.BiggestCatch
	}
	score.Points = Points(score.FishCount, score.TotalWeight)
	return score
}

// Points is the score formula: a fixed bonus per fish plus the total weight.
func Points(fishCount, totalWeight int) int {
	return fishCount*competition.PointsPerFish + totalWeight
}
