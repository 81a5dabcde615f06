package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/catchboard/internal/competition"
	"github.com/mauv0809/catchboard/internal/metrics"
	"github.com/mauv0809/catchboard/internal/notifier"
	"github.com/mauv0809/catchboard/internal/scoring"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

const podiumSize = 3

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       slack.New(token),
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(ctx context.Context, message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-channel", "dry-run-ts", nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendRanking(ctx context.Context, board *scoring.Board, dryRun bool) error {
	_, _, err := s.sendMessage(ctx, formatRanking(board), dryRun)
	return err
}

func (s *Notifier) SendSectorRanking(ctx context.Context, board *scoring.Board, sector competition.Sector, dryRun bool) error {
	_, _, err := s.sendMessage(ctx, formatSectorRanking(board, sector), dryRun)
	return err
}

func (s *Notifier) SendScoreUpdate(ctx context.Context, score scoring.CompetitorScore, dryRun bool) error {
	_, _, err := s.sendMessage(ctx, formatScoreUpdate(score), dryRun)
	return err
}

// FormatRankingResponse formats the general ranking for a slash command response.
func (s *Notifier) FormatRankingResponse(board *scoring.Board) (any, error) {
	return formatRanking(board), nil
}

// FormatSectorRankingResponse formats one sector's ranking for a slash command response.
func (s *Notifier) FormatSectorRankingResponse(board *scoring.Board, sector competition.Sector) (any, error) {
	return formatSectorRanking(board, sector), nil
}

func medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return ""
}

func displayName(score scoring.CompetitorScore) string {
	if score.Name == "" || score.Name == score.BoxCode {
		return score.BoxCode
	}
	return fmt.Sprintf("%s %s", score.BoxCode, score.Name)
}

// formatRanking creates the general ranking message: the podium followed by
// the leader of every sector.
func formatRanking(board *scoring.Board) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏆 General Ranking 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	podium := board.Podium(podiumSize)
	if len(podium) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No validated catches yet.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for _, score := range podium {
		rank := int(score.GeneralRank)
		text := fmt.Sprintf("%d. %s *%s*\n> *Coefficient*: %s | *Points*: %d | *Big catch*: %d g",
			rank,
			medal(rank),
			displayName(score),
			score.SectorCoefficient.StringFixed(3),
			score.Points,
			score.BiggestCatch,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil))
	}

	blocks = append(blocks, slack.NewDividerBlock())
	leaders := "*Sector leaders*"
	for _, sector := range board.Sectors {
		if len(sector.Scores) == 0 || sector.Scores[0].Points == 0 {
			leaders += fmt.Sprintf("\n> *%s*: no catches", sector.Sector)
			continue
		}
		leader := sector.Scores[0]
		leaders += fmt.Sprintf("\n> *%s*: %s, %d pts", sector.Sector, displayName(leader), leader.Points)
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", leaders, false, false), nil, nil))

	totals := fmt.Sprintf("%d fish | %d g | biggest catch %d g", board.Totals.FishCount, board.Totals.TotalWeight, board.Totals.BiggestCatch)
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("mrkdwn", totals, false, false)))

	return slack.NewBlockMessage(blocks...)
}

// formatSectorRanking creates a message listing every competitor of a sector.
func formatSectorRanking(board *scoring.Board, sector competition.Sector) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🎣 Sector %s 🎣", sector), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	ranking, ok := board.Sector(sector)
	if !ok || len(ranking.Scores) == 0 {
		text := fmt.Sprintf("Sorry, sector *%s* has no competitors.", sector)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for _, score := range ranking.Scores {
		text := fmt.Sprintf("%d. %s %s\n> %d pts | %d fish | %d g | big catch %d g | general %s",
			score.SectorRank,
			medal(score.SectorRank),
			displayName(score),
			score.Points,
			score.FishCount,
			score.TotalWeight,
			score.BiggestCatch,
			score.GeneralRank,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil))
	}

	totals := fmt.Sprintf("Sector totals: %d fish | %d g | %d pts", ranking.Totals.FishCount, ranking.Totals.TotalWeight, ranking.Totals.Points)
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("mrkdwn", totals, false, false)))

	return slack.NewBlockMessage(blocks...)
}

// formatScoreUpdate creates a short message about one competitor's standing.
func formatScoreUpdate(score scoring.CompetitorScore) slack.Message {
	general := "unranked"
	if score.GeneralRank.Ranked() {
		general = fmt.Sprintf("#%d overall", score.GeneralRank)
	}
	text := fmt.Sprintf("🐟 *%s* now has *%d pts* (%d fish, %d g). Sector %s rank %d, %s.",
		displayName(score),
		score.Points,
		score.FishCount,
		score.TotalWeight,
		score.Sector,
		score.SectorRank,
		general,
	)
	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
	)
}
