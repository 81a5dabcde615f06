package main

import (
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// scoreRow mirrors the score fields the server publishes.
type scoreRow struct {
	BoxCode           string `json:"boxCode"`
	Name              string `json:"name"`
	FishCount         int    `json:"nbPrisesGlobal"`
	TotalWeight       int    `json:"poidsTotal"`
	BiggestCatch      int    `json:"grossePrise"`
	Points            int    `json:"points"`
	SectorCoefficient string `json:"coefficientSecteur"`
	SectorRank        int    `json:"classementSecteur"`
	GeneralRank       int    `json:"classementGeneral"`
	Unranked          bool   `json:"unranked"`
}

type totalsRow struct {
	Competitors  int `json:"competitors"`
	FishCount    int `json:"nbPrisesGlobal"`
	TotalWeight  int `json:"poidsTotal"`
	Points       int `json:"points"`
	BiggestCatch int `json:"grossePrise"`
}

type sectorResponse struct {
	Sector string     `json:"sector"`
	Scores []scoreRow `json:"scores"`
	Totals totalsRow  `json:"totals"`
}

type boardResponse struct {
	General []scoreRow `json:"general"`
	Totals  totalsRow  `json:"totals"`
}

func renderGeneral(board boardResponse) {
	color.Cyan("\n=== General Ranking ===")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Rank", "Box", "Name", "Coefficient", "Points", "Fish", "Weight (g)", "Big catch (g)"})
	for _, s := range board.General {
		rank := strconv.Itoa(s.GeneralRank)
		if s.Unranked {
			rank += " (unranked)"
		}
		table.Append([]string{
			rank,
			s.BoxCode,
			s.Name,
			s.SectorCoefficient,
			strconv.Itoa(s.Points),
			strconv.Itoa(s.FishCount),
			strconv.Itoa(s.TotalWeight),
			strconv.Itoa(s.BiggestCatch),
		})
	}
	table.Render()
	printTotals(board.Totals)
}

func renderSector(ranking sectorResponse) {
	color.Cyan("\n=== Sector %s ===", ranking.Sector)
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Rank", "Box", "Name", "Points", "Fish", "Weight (g)", "Big catch (g)", "General"})
	for _, s := range ranking.Scores {
		table.Append([]string{
			strconv.Itoa(s.SectorRank),
			s.BoxCode,
			s.Name,
			strconv.Itoa(s.Points),
			strconv.Itoa(s.FishCount),
			strconv.Itoa(s.TotalWeight),
			strconv.Itoa(s.BiggestCatch),
			strconv.Itoa(s.GeneralRank),
		})
	}
	table.Render()
	printTotals(ranking.Totals)
}

func printTotals(t totalsRow) {
	color.Yellow("%d competitors | %d fish | %d g | %d pts | biggest catch %d g",
		t.Competitors, t.FishCount, t.TotalWeight, t.Points, t.BiggestCatch)
}
