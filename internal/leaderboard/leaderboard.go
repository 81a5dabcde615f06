package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/catchboard/internal/competition"
	"github.com/mauv0809/catchboard/internal/metrics"
	"github.com/mauv0809/catchboard/internal/notifier"
	"github.com/mauv0809/catchboard/internal/pubsub"
	"github.com/mauv0809/catchboard/internal/scoring"
)

// ErrNotifierDisabled is returned when publishing without a configured notifier.
var ErrNotifierDisabled = errors.New("no notifier configured")

// Store is the read side the leaderboard needs.
type Store interface {
	Snapshot(ctx context.Context) (scoring.Snapshot, error)
}

// Service computes rankings from the current store contents and announces them.
type Service struct {
	store    Store
	notifier notifier.Notifier
	metrics  metrics.Metrics
}

// New creates a leaderboard Service. notifier may be nil, in which case
// publishing returns ErrNotifierDisabled.
func New(store Store, notifier notifier.Notifier, metrics metrics.Metrics) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		metrics:  metrics,
	}
}

// Board takes a snapshot of the store and ranks it.
func (s *Service) Board(ctx context.Context) (*scoring.Board, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	start := time.Now()
	board := scoring.ComputeRankings(snap)
	s.metrics.ObserveRankingDuration(time.Since(start).Seconds())

	for _, issue := range board.Issues {
		log.Debug("Ranking input issue", "kind", issue.Kind, "competitorID", issue.CompetitorID, "detail", issue.Detail)
	}
	log.Debug("Computed rankings", "competitors", len(board.General), "issues", len(board.Issues))
	return board, nil
}

// Publish announces the general ranking.
func (s *Service) Publish(ctx context.Context, dryRun bool) (*scoring.Board, error) {
	if s.notifier == nil {
		return nil, ErrNotifierDisabled
	}
	board, err := s.Board(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.notifier.SendRanking(ctx, board, dryRun); err != nil {
		return nil, err
	}
	return board, nil
}

// PublishSector announces the ranking of one sector.
func (s *Service) PublishSector(ctx context.Context, sector competition.Sector, dryRun bool) (*scoring.Board, error) {
	if s.notifier == nil {
		return nil, ErrNotifierDisabled
	}
	board, err := s.Board(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.notifier.SendSectorRanking(ctx, board, sector, dryRun); err != nil {
		return nil, err
	}
	return board, nil
}

// HandleEntrySubmitted reacts to a stored entry. Only validated entries can
// move a competitor on the board, so anything else is ignored. It reports
// whether an update was announced.
func (s *Service) HandleEntrySubmitted(ctx context.Context, event pubsub.EntrySubmittedEvent, dryRun bool) (bool, error) {
	if !event.Status.Validated() {
		log.Debug("Ignoring entry that does not count yet", "competitorID", event.CompetitorID, "status", event.Status)
		return false, nil
	}
	if s.notifier == nil {
		log.Debug("Notifier disabled, skipping score update", "competitorID", event.CompetitorID)
		return false, nil
	}

	board, err := s.Board(ctx)
	if err != nil {
		return false, err
	}
	score, ok := board.Score(event.CompetitorID)
	if !ok {
		log.Warn("Entry event for a competitor missing from the board", "competitorID", event.CompetitorID)
		return false, nil
	}
	if err := s.notifier.SendScoreUpdate(ctx, score, dryRun); err != nil {
		return false, err
	}
	return true, nil
}
