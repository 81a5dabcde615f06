package scoring

import (
	"cmp"
	"time"
)

// Every ranking in the engine goes through these comparators so that the
// sector order and the place-group order never disagree on ties.

// compareLastValid orders earlier entries first; competitors without a
// validated entry sort last.
func compareLastValid(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}

// compareSector is the canonical sector order:
// points desc, biggest catch desc, earliest last entry, box number asc.
func compareSector(a, b CompetitorScore) int {
	if c := cmp.Compare(b.Points, a.Points); c != 0 {
		return c
	}
	if c := cmp.Compare(b.BiggestCatch, a.BiggestCatch); c != 0 {
		return c
	}
	if c := compareLastValid(a.LastValidEntry, b.LastValidEntry); c != 0 {
		return c
	}
	if c := cmp.Compare(a.BoxNumber, b.BoxNumber); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// comparePlaceGroup orders competitors sharing a sector rank:
// coefficient desc, biggest catch desc, points desc, earliest last entry,
// then sector order.
func comparePlaceGroup(a, b CompetitorScore) int {
	if c := b.SectorCoefficient.Cmp(a.SectorCoefficient); c != 0 {
		return c
	}
	if c := cmp.Compare(b.BiggestCatch, a.BiggestCatch); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Points, a.Points); c != 0 {
		return c
	}
	if c := compareLastValid(a.LastValidEntry, b.LastValidEntry); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Sector.Index(), b.Sector.Index()); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
