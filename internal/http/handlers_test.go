package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/mauv0809/catchboard/internal/competition"
	"github.com/mauv0809/catchboard/internal/config"
	"github.com/mauv0809/catchboard/internal/database"
	"github.com/mauv0809/catchboard/internal/entry"
	"github.com/mauv0809/catchboard/internal/leaderboard"
	"github.com/mauv0809/catchboard/internal/metrics"
	"github.com/mauv0809/catchboard/internal/notifier"
	"github.com/mauv0809/catchboard/internal/pubsub"
	"github.com/mauv0809/catchboard/internal/store"
	"github.com/mauv0809/catchboard/internal/submission"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

const testSlackSigningSecret = "test-signing-secret"

type testServer struct {
	*Server
	store    store.Store
	notifier *notifier.Mock
	pubsub   *pubsub.MockPubSubClient
}

// setupTestServer initializes a server backed by an in-memory database and
// seeded with competitors in sectors A and B.
func setupTestServer(t *testing.T, slackSigningSecret string) *testServer {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(dbTeardown)

	entryStore := store.New(db)
	require.NoError(t, entryStore.UpsertCompetitors(context.Background(), []competition.Competitor{
		{ID: "a1", Sector: competition.SectorA, BoxNumber: 1, Name: "Alice"},
		{ID: "a2", Sector: competition.SectorA, BoxNumber: 2, Name: "Arthur"},
		{ID: "b1", Sector: competition.SectorB, BoxNumber: 1, Name: "Bruno"},
	}))

	cfg := config.Config{Slack: config.SlackConfig{SigningSecret: slackSigningSecret}}
	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	mockPubSub := pubsub.NewMock()
	mockNotifier := notifier.NewMock()

	submissions := submission.New(entryStore, mockPubSub, metricsSvc, submission.RetryConfig{MaxRetries: 1, BaseDelay: time.Millisecond})
	board := leaderboard.New(entryStore, mockNotifier, metricsSvc)
	server := NewServer(entryStore, submissions, board, mockNotifier, metricsSvc, metricsHandler, cfg, mockPubSub)

	return &testServer{Server: server, store: entryStore, notifier: mockNotifier, pubsub: mockPubSub}
}

func doJSON(t *testing.T, s http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	return rr
}

// createSlackCommandRequest creates a request suitable for testing Slack slash
// commands, including the signature and timestamp headers.
func createSlackCommandRequest(t *testing.T, targetURL string, form url.Values, signingSecret string) *http.Request {
	t.Helper()

	body := form.Encode()
	req := httptest.NewRequest(http.MethodPost, targetURL, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	timestamp := time.Now().Unix()
	req.Header.Set("X-Slack-Request-Timestamp", strconv.FormatInt(timestamp, 10))

	baseString := fmt.Sprintf("v0:%d:%s", timestamp, body)
	h := hmac.New(sha256.New, []byte(signingSecret))
	h.Write([]byte(baseString))
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(h.Sum(nil)))
	return req
}

func TestHealthCheckHandler(t *testing.T) {
	server := setupTestServer(t, "")

	rr := doJSON(t, server, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK!", rr.Body.String())
}

func TestCompetitorsHandlers(t *testing.T) {
	server := setupTestServer(t, "")

	rr := doJSON(t, server, http.MethodGet, "/competitors", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var competitors []competition.Competitor
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &competitors))
	assert.Len(t, competitors, 3)

	rr = doJSON(t, server, http.MethodPost, "/competitors", []competition.Competitor{
		{ID: "c1", Sector: competition.SectorC, BoxNumber: 4},
	})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, server, http.MethodPost, "/competitors", []competition.Competitor{
		{ID: "x1", Sector: competition.SectorC, BoxNumber: 5},
		{ID: "x2", Sector: competition.SectorC, BoxNumber: 5},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "C05")

	rr = doJSON(t, server, http.MethodPost, "/competitors", []competition.Competitor{
		{ID: "c2", Sector: competition.SectorA, BoxNumber: 2, Name: "Camille"},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code, "box A02 already belongs to a2")
	assert.Contains(t, rr.Body.String(), "A02")

	rr = doJSON(t, server, http.MethodPost, "/competitors", []competition.Competitor{
		{ID: "a1", Sector: competition.SectorA, BoxNumber: 2, Name: "Alice"},
		{ID: "a2", Sector: competition.SectorA, BoxNumber: 1, Name: "Arthur"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	competitorsAfter, err := server.store.GetCompetitors(context.Background())
	require.NoError(t, err)
	assert.Len(t, competitorsAfter, 4)
	a1, err := server.store.GetCompetitor(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "A02", a1.BoxCode())
}

func TestSubmitHourlyHandler(t *testing.T) {
	server := setupTestServer(t, "")

	t.Run("accepts a valid judge entry", func(t *testing.T) {
		rr := doJSON(t, server, http.MethodPost, "/entries/hourly", submission.HourlyIntent{
			CompetitorID: "a1", Hour: 1, FishCount: 2, TotalWeight: 300, Role: entry.RoleJudge,
		})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var res submission.HourlyResult
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
		assert.Equal(t, entry.StatusLockedJudge, res.Entry.Status)
		assert.Len(t, server.pubsub.Sent(pubsub.EventEntrySubmitted), 1)
	})

	t.Run("rejects weight without fish", func(t *testing.T) {
		rr := doJSON(t, server, http.MethodPost, "/entries/hourly", submission.HourlyIntent{
			CompetitorID: "a1", Hour: 2, TotalWeight: 300, Role: entry.RoleJudge,
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), `"field":"totalWeight"`)
	})

	t.Run("forbids a judge overwriting a locked entry", func(t *testing.T) {
		rr := doJSON(t, server, http.MethodPost, "/entries/hourly", submission.HourlyIntent{
			CompetitorID: "a1", Hour: 1, FishCount: 5, TotalWeight: 900, Role: entry.RoleJudge,
		})
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("reports unknown competitors", func(t *testing.T) {
		rr := doJSON(t, server, http.MethodPost, "/entries/hourly", submission.HourlyIntent{
			CompetitorID: "ghost", Hour: 1, Role: entry.RoleJudge,
		})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("dry run does not write", func(t *testing.T) {
		rr := doJSON(t, server, http.MethodPost, "/entries/hourly?dry_run=true", submission.HourlyIntent{
			CompetitorID: "b1", Hour: 1, FishCount: 1, TotalWeight: 100, Role: entry.RoleAdmin,
		})
		require.Equal(t, http.StatusOK, rr.Code)
		_, err := server.store.GetHourlyEntry(context.Background(), "b1", 1)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("begin edit reports the lock", func(t *testing.T) {
		rr := doJSON(t, server, http.MethodPost, "/entries/hourly/begin", beginEditRequest{CompetitorID: "a1", Hour: 1, Role: "judge"})
		assert.Equal(t, http.StatusForbidden, rr.Code)

		rr = doJSON(t, server, http.MethodPost, "/entries/hourly/begin", beginEditRequest{CompetitorID: "a1", Hour: 1, Role: "admin"})
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "in_progress")
	})
}

func TestOfflineSyncAndRankings(t *testing.T) {
	server := setupTestServer(t, "")

	rr := doJSON(t, server, http.MethodPost, "/entries/hourly", submission.HourlyIntent{
		CompetitorID: "b1", Hour: 1, FishCount: 3, TotalWeight: 600, Role: entry.RoleJudge, Offline: true,
	})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = doJSON(t, server, http.MethodPost, "/entries/big-catch", submission.BigCatchIntent{
		CompetitorID: "b1", BiggestCatch: 400, Role: entry.RoleJudge,
	})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, server, http.MethodPost, "/entries/sync", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var synced submission.SyncResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &synced))
	assert.Equal(t, 1, synced.Synced)

	rr = doJSON(t, server, http.MethodGet, "/rankings", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var board struct {
		General []struct {
			ID                string `json:"id"`
			Points            int    `json:"points"`
			ClassementGeneral int    `json:"classementGeneral"`
			Unranked          bool   `json:"unranked"`
		} `json:"general"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &board))
	require.Len(t, board.General, 3)
	assert.Equal(t, "b1", board.General[0].ID)
	assert.Equal(t, 750, board.General[0].Points)
	assert.Equal(t, 1, board.General[0].ClassementGeneral)
	assert.True(t, board.General[2].Unranked)
	assert.Equal(t, 120, board.General[2].ClassementGeneral)

	rr = doJSON(t, server, http.MethodGet, "/rankings/sector?sector=b", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"coefficientSecteur":"750"`)

	rr = doJSON(t, server, http.MethodGet, "/rankings/sector?sector=Z", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, server, http.MethodGet, "/totals", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var totals totalsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &totals))
	assert.Equal(t, 3, totals.Totals.FishCount)
	assert.Equal(t, 400, totals.Totals.BiggestCatch)
	assert.Equal(t, 0, totals.Sectors["A"].Points)
}

func TestPublishRankingsHandler(t *testing.T) {
	server := setupTestServer(t, "")

	rr := doJSON(t, server, http.MethodPost, "/rankings/publish?dry_run=true", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, server.notifier.SendRankingCalls, 1)
	assert.True(t, server.notifier.SendRankingCalls[0].DryRun)

	rr = doJSON(t, server, http.MethodPost, "/rankings/publish?sector=A", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, server.notifier.SendSectorRankingCalls, 1)
	assert.Equal(t, competition.SectorA, server.notifier.SendSectorRankingCalls[0].Sector)
}

func TestEntrySubmittedHandler(t *testing.T) {
	server := setupTestServer(t, "")
	rr := doJSON(t, server, http.MethodPost, "/entries/hourly", submission.HourlyIntent{
		CompetitorID: "a2", Hour: 4, FishCount: 1, TotalWeight: 200, Role: entry.RoleAdmin,
	})
	require.Equal(t, http.StatusOK, rr.Code)

	data, err := msgpack.Marshal(pubsub.EntrySubmittedEvent{CompetitorID: "a2", Hour: 4, Status: entry.StatusLockedAdmin})
	require.NoError(t, err)
	push := map[string]any{
		"subscription": "projects/test/subscriptions/entry-submitted",
		"message":      map[string]string{"data": base64.StdEncoding.EncodeToString(data)},
	}

	rr = doJSON(t, server, http.MethodPost, "/pubsub/entry-submitted", push)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, server.notifier.SendScoreUpdateCalls, 1)
	assert.Equal(t, 250, server.notifier.SendScoreUpdateCalls[0].Points)

	rr = doJSON(t, server, http.MethodPost, "/pubsub/entry-submitted", map[string]any{
		"message": map[string]string{"data": "not base64!"},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestClassementCommandHandler(t *testing.T) {
	server := setupTestServer(t, testSlackSigningSecret)

	t.Run("general ranking", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/classement", url.Values{"text": {""}}, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, 1, server.notifier.FormatRankingCalls)
	})

	t.Run("sector ranking", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/classement", url.Values{"text": {" b "}}, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, []competition.Sector{competition.SectorB}, server.notifier.FormatSectorCalls)
	})

	t.Run("unknown sector", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/classement", url.Values{"text": {"Q"}}, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "ephemeral")
	})

	t.Run("bad signature", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/classement", url.Values{"text": {""}}, "wrong-secret")
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestClearStoreHandler(t *testing.T) {
	server := setupTestServer(t, "")
	ctx := context.Background()
	rr := doJSON(t, server, http.MethodPost, "/entries/big-catch", submission.BigCatchIntent{CompetitorID: "a1", BiggestCatch: 500, Role: entry.RoleJudge})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, server, http.MethodPost, "/clear?scope=entries", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	snap, err := server.store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.BigCatches)
	assert.Len(t, snap.Competitors, 3)

	rr = doJSON(t, server, http.MethodPost, "/clear?scope=everything", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, server, http.MethodPost, "/clear", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, server, http.MethodGet, "/rankings", nil)
	require.Equal(t, http.StatusOK, rr.Code, "an empty store still yields a board")
}

func TestMetricsEndpoint(t *testing.T) {
	server := setupTestServer(t, "")
	rr := doJSON(t, server, http.MethodPost, "/entries/hourly", submission.HourlyIntent{CompetitorID: "a1", Hour: 1, FishCount: 1, TotalWeight: 50, Role: entry.RoleJudge})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, server, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `catchboard_submissions_accepted_total{kind="hourly"} 1`)
}
