package notifier

import (
	"context"
	"sync"

	"github.com/mauv0809/catchboard/internal/competition"
	"github.com/mauv0809/catchboard/internal/scoring"
)

var _ Notifier = (*Mock)(nil)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for method calls
	SendRankingFunc func(board *scoring.Board, dryRun bool) error

	// Call records
	SendRankingCalls []struct {
		Board  *scoring.Board
		DryRun bool
	}
	SendSectorRankingCalls []struct {
		Board  *scoring.Board
		Sector competition.Sector
		DryRun bool
	}
	SendScoreUpdateCalls []scoring.CompetitorScore
	FormatRankingCalls   int
	FormatSectorCalls    []competition.Sector
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendRankingCalls = nil
	m.SendSectorRankingCalls = nil
	m.SendScoreUpdateCalls = nil
	m.FormatRankingCalls = 0
	m.FormatSectorCalls = nil
}

func (m *Mock) SendRanking(ctx context.Context, board *scoring.Board, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendRankingCalls = append(m.SendRankingCalls, struct {
		Board  *scoring.Board
		DryRun bool
	}{board, dryRun})
	if m.SendRankingFunc != nil {
		return m.SendRankingFunc(board, dryRun)
	}
	return nil
}

func (m *Mock) SendSectorRanking(ctx context.Context, board *scoring.Board, sector competition.Sector, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendSectorRankingCalls = append(m.SendSectorRankingCalls, struct {
		Board  *scoring.Board
		Sector competition.Sector
		DryRun bool
	}{board, sector, dryRun})
	return nil
}

func (m *Mock) SendScoreUpdate(ctx context.Context, score scoring.CompetitorScore, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendScoreUpdateCalls = append(m.SendScoreUpdateCalls, score)
	return nil
}

func (m *Mock) FormatRankingResponse(board *scoring.Board) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FormatRankingCalls++
	return map[string]string{"text": "ranking"}, nil
}

func (m *Mock) FormatSectorRankingResponse(board *scoring.Board, sector competition.Sector) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FormatSectorCalls = append(m.FormatSectorCalls, sector)
	return map[string]string{"text": "sector " + string(sector)}, nil
}
