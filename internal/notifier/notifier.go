package notifier

import (
	"context"

	"github.com/mauv0809/catchboard/internal/competition"
	"github.com/mauv0809/catchboard/internal/scoring"
)

// Notifier defines a high-level interface for announcing competition results.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// Podium and sector leaders of the general ranking
	SendRanking(ctx context.Context, board *scoring.Board, dryRun bool) error
	// Full ranking of a single sector
	SendSectorRanking(ctx context.Context, board *scoring.Board, sector competition.Sector, dryRun bool) error
	// A competitor's standing after one of their entries was validated
	SendScoreUpdate(ctx context.Context, score scoring.CompetitorScore, dryRun bool) error

	// For formatting responses for slash commands
	FormatRankingResponse(board *scoring.Board) (any, error)
	FormatSectorRankingResponse(board *scoring.Board, sector competition.Sector) (any, error)
}
