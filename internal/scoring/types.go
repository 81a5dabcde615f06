package scoring

import (
	"strconv"
	"time"

	"github.com/mauv0809/catchboard/internal/competition"
	"github.com/mauv0809/catchboard/internal/entry"
	"github.com/shopspring/decimal"
)

// Snapshot is the immutable input of one ranking computation.
type Snapshot struct {
	Competitors []competition.Competitor
	Hourly      []entry.HourlyEntry
	BigCatches  []entry.BigCatchEntry
}

// UnrankedDisplay is the value an unranked competitor shows in the general
// ranking column. It is the size of a full field, kept as a display
// convention for published result sheets.
const UnrankedDisplay = competition.RosterSize

// GeneralRank is a competitor's position in the cross-sector ranking.
// The zero value is Unranked.
type GeneralRank int

// Unranked marks a competitor with no qualifying catches.
const Unranked GeneralRank = 0

// Ranked reports whether r is a real position.
func (r GeneralRank) Ranked() bool {
	return r > 0
}

// Display returns the position, or UnrankedDisplay for unranked competitors.
func (r GeneralRank) Display() int {
	if !r.Ranked() {
		return UnrankedDisplay
	}
	return int(r)
}

func (r GeneralRank) String() string {
	if !r.Ranked() {
		return "unranked"
	}
	return strconv.Itoa(int(r))
}

// MarshalJSON encodes the display value so result sheets keep their
// historical numeric column.
func (r GeneralRank) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(r.Display())), nil
}

// CompetitorScore is the projection of a competitor's validated entries.
// It is rebuilt on every computation and never stored.
type CompetitorScore struct {
	competition.Competitor
	BoxCode           string          `json:"boxCode"`
	FishCount         int             `json:"nbPrisesGlobal"`
	TotalWeight       int             `json:"poidsTotal"`
	BiggestCatch      int             `json:"grossePrise"`
	Points            int             `json:"points"`
	SectorCoefficient decimal.Decimal `json:"coefficientSecteur"`
	SectorRank        int             `json:"classementSecteur"`
	GeneralRank       GeneralRank     `json:"classementGeneral"`
	Unranked          bool            `json:"unranked"`
	LastValidEntry    *time.Time      `json:"lastValidEntry,omitempty"`
}

// Totals are the summary figures of a group of competitors.
type Totals struct {
	Competitors  int `json:"competitors"`
	FishCount    int `json:"nbPrisesGlobal"`
	TotalWeight  int `json:"poidsTotal"`
	Points       int `json:"points"`
	BiggestCatch int `json:"grossePrise"`
}

// SectorRanking is one sector's ordered scores and totals.
type SectorRanking struct {
	Sector competition.Sector `json:"sector"`
	Scores []CompetitorScore  `json:"scores"`
	Totals Totals             `json:"totals"`
}

// IssueKind classifies input problems the engine skipped over.
type IssueKind string

const (
	IssueOrphanEntry         IssueKind = "orphan_entry"
	IssueDuplicateEntry      IssueKind = "duplicate_entry"
	IssueInvalidHour         IssueKind = "invalid_hour"
	IssueUnknownStatus       IssueKind = "unknown_status"
	IssueInvalidCompetitor   IssueKind = "invalid_competitor"
	IssueDuplicateCompetitor IssueKind = "duplicate_competitor"
	IssueEmptySector         IssueKind = "empty_sector"
)

// Issue describes one excluded or suspicious piece of input.
type Issue struct {
	Kind         IssueKind          `json:"kind"`
	CompetitorID string             `json:"competitorId,omitempty"`
	Sector       competition.Sector `json:"sector,omitempty"`
	Hour         int                `json:"hour,omitempty"`
	Detail       string             `json:"detail"`
}

// Board is the complete output of a ranking computation.
type Board struct {
	General []CompetitorScore `json:"general"`
	Sectors []SectorRanking   `json:"sectors"`
	Totals  Totals            `json:"totals"`
	Issues  []Issue           `json:"issues,omitempty"`
}

// Sector returns the ranking of one sector.
func (b *Board) Sector(sector competition.Sector) (SectorRanking, bool) {
	for _, s := range b.Sectors {
		if s.Sector == sector {
			return s, true
		}
	}
	return SectorRanking{}, false
}

// Score returns the score of one competitor.
func (b *Board) Score(competitorID string) (CompetitorScore, bool) {
	for _, s := range b.General {
		if s.ID == competitorID {
			return s, true
		}
	}
	return CompetitorScore{}, false
}
