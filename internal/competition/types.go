package competition

import "fmt"

const (
	// SectorCount is the number of sectors in the competition.
	SectorCount = 6
	// SectorSize is the number of boxes in a full sector.
	SectorSize = 20
	// RosterSize is the number of competitors in a full field.
	RosterSize = SectorCount * SectorSize
	// Hours is the number of timed hours a competitor reports catches for.
	Hours = 7
	// PointsPerFish is the bonus each caught fish adds on top of its weight.
	PointsPerFish = 50
)

// Sector identifies one of the independent competition zones.
type Sector string

const (
	SectorA Sector = "A"
	SectorB Sector = "B"
	SectorC Sector = "C"
	SectorD Sector = "D"
	SectorE Sector = "E"
	SectorF Sector = "F"
)

// Sectors lists every sector in display order.
var Sectors = []Sector{SectorA, SectorB, SectorC, SectorD, SectorE, SectorF}

// Competitor is a registered participant. It is created once at setup and
// only changed by administrative edits.
type Competitor struct {
	ID        string `json:"id"`
	Sector    Sector `json:"sector"`
	BoxNumber int    `json:"boxNumber"`
	Name      string `json:"name"`
	Team      string `json:"team"`
}

// BoxCode returns the display code of the competitor's station, e.g. "A07".
func (c Competitor) BoxCode() string {
	return BoxCode(c.Sector, c.BoxNumber)
}

// BoxCode renders a station code as <Sector><2-digit number>.
func BoxCode(sector Sector, box int) string {
	return fmt.Sprintf("%s%02d", sector, box)
}
