package competition

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ParseSector accepts a sector letter in any case, surrounding spaces ignored.
func ParseSector(s string) (Sector, error) {
	sector := Sector(strings.ToUpper(strings.TrimSpace(s)))
	if !sector.Valid() {
		return "", fmt.Errorf("unknown sector %q", s)
	}
	return sector, nil
}

// Valid reports whether s is one of the competition sectors.
func (s Sector) Valid() bool {
	for _, known := range Sectors {
		if s == known {
			return true
		}
	}
	return false
}

// Index returns the position of s in Sectors, or -1.
func (s Sector) Index() int {
	for i, known := range Sectors {
		if s == known {
			return i
		}
	}
	return -1
}

// Validate checks the identity fields of a single competitor.
func (c Competitor) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return errors.New("competitor id is required")
	}
	if !c.Sector.Valid() {
		return fmt.Errorf("competitor %s: unknown sector %q", c.ID, c.Sector)
	}
	if c.BoxNumber < 1 || c.BoxNumber > SectorSize {
		return fmt.Errorf("competitor %s: box number %d out of range 1..%d", c.ID, c.BoxNumber, SectorSize)
	}
	return nil
}

// ValidateRoster checks every competitor and the uniqueness of ids and
// boxes within a sector. All problems are returned joined.
func ValidateRoster(competitors []Competitor) error {
	var errs []error
	ids := make(map[string]bool, len(competitors))
	boxes := make(map[string]string, len(competitors))

	for _, c := range competitors {
		if err := c.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if ids[c.ID] {
			errs = append(errs, fmt.Errorf("duplicate competitor id %s", c.ID))
		}
		ids[c.ID] = true

		code := c.BoxCode()
		if other, ok := boxes[code]; ok {
			errs = append(errs, fmt.Errorf("box %s assigned to both %s and %s", code, other, c.ID))
		}
		boxes[code] = c.ID
	}
	return errors.Join(errs...)
}

// GenerateRoster builds a full field, filling boxes sector by sector.
// Missing names are replaced by the box code.
func GenerateRoster(names []string, team string) []Competitor {
	competitors := make([]Competitor, 0, RosterSize)
	i := 0
	for _, sector := range Sectors {
		for box := 1; box <= SectorSize; box++ {
			name := BoxCode(sector, box)
			if i < len(names) && names[i] != "" {
				name = names[i]
			}
			competitors = append(competitors, Competitor{
				ID:        uuid.New().String(),
				Sector:    sector,
				BoxNumber: box,
				Name:      name,
				Team:      team,
			})
			i++
		}
	}
	return competitors
}
