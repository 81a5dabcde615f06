package scoring

import (
	"slices"

	"github.com/shopspring/decimal"
)

// RankSector orders one sector's scores, assigns sector ranks 1..N and
// computes each competitor's sector coefficient. The input is not modified.
func RankSector(scores []CompetitorScore) []CompetitorScore {
	ranked := slices.Clone(scores)
	slices.SortStableFunc(ranked, compareSector)

	sectorFish := 0
	for _, s := range ranked {
		sectorFish += s.FishCount
	}

	for i := range ranked {
		ranked[i].SectorRank = i + 1
		ranked[i].SectorCoefficient = Coefficient(ranked[i].Points, ranked[i].FishCount, sectorFish)
	}
	return ranked
}

// Coefficient normalizes points by the competitor's share of the sector's
// catches: points * fishCount / sectorFishCount, or 0 for a sector without
// catches.
func Coefficient(points, fishCount, sectorFishCount int) decimal.Decimal {
	if sectorFishCount <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(points) * int64(fishCount)).
		Div(decimal.NewFromInt(int64(sectorFishCount)))
}

// RankGeneral merges independently ranked sectors into the general ranking
// with the place-group algorithm: all sector winners are compared against
// each other first, then all runners-up, and so on. Competitors with a zero
// coefficient are moved after everyone else and left Unranked.
func RankGeneral(sectors [][]CompetitorScore) []CompetitorScore {
	byPlace := make(map[int][]CompetitorScore)
	maxPlace := 0
	for _, sector := range sectors {
		for _, s := range sector {
			byPlace[s.SectorRank] = append(byPlace[s.SectorRank], s)
			if s.SectorRank > maxPlace {
				maxPlace = s.SectorRank
			}
		}
	}

	var sequence []CompetitorScore
	for place := 1; place <= maxPlace; place++ {
		group := byPlace[place]
		slices.SortStableFunc(group, comparePlaceGroup)
		sequence = append(sequence, group...)
	}

	var nonZero, zero []CompetitorScore
	for _, s := range sequence {
		if s.SectorCoefficient.Sign() > 0 {
			nonZero = append(nonZero, s)
		} else {
			zero = append(zero, s)
		}
	}

	for i := range nonZero {
		nonZero[i].GeneralRank = GeneralRank(i + 1)
		nonZero[i].Unranked = false
	}
	for i := range zero {
		zero[i].GeneralRank = Unranked
		zero[i].Unranked = true
	}
	return append(nonZero, zero...)
}

// ComputeTotals sums a group of scores. An empty group yields zero totals.
func ComputeTotals(scores []CompetitorScore) Totals {
	totals := Totals{Competitors: len(scores)}
	for _, s := range scores {
		totals.FishCount += s.FishCount
		totals.TotalWeight += s.TotalWeight
		totals.Points += s.Points
		totals.BiggestCatch = max(totals.BiggestCatch, s.BiggestCatch)
	}
	return totals
}
