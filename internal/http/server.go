package http

import (
	"net/http"

	"github.com/mauv0809/catchboard/internal/config"
	"github.com/mauv0809/catchboard/internal/leaderboard"
	"github.com/mauv0809/catchboard/internal/metrics"
	"github.com/mauv0809/catchboard/internal/notifier"
	"github.com/mauv0809/catchboard/internal/pubsub"
	"github.com/mauv0809/catchboard/internal/store"
	"github.com/mauv0809/catchboard/internal/submission"
)

// NewServer wires the API routes. notifier may be nil when Slack is not
// configured.
func NewServer(store store.Store, submissions *submission.Service, leaderboard *leaderboard.Service, notifier notifier.Notifier, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Submissions:    submissions,
		Leaderboard:    leaderboard,
		Notifier:       notifier,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	slackVerified := slackVerificationMiddleware(s.Cfg.Slack.SigningSecret)

	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("GET /competitors", Chain(s.ListCompetitorsHandler(), paramsMiddleware))
	s.Router.Handle("POST /competitors", Chain(s.UpsertCompetitorsHandler(), paramsMiddleware))
	s.Router.Handle("POST /entries/hourly", Chain(s.SubmitHourlyHandler(), paramsMiddleware))
	s.Router.Handle("POST /entries/hourly/begin", Chain(s.BeginHourlyEditHandler(), paramsMiddleware))
	s.Router.Handle("POST /entries/big-catch", Chain(s.SubmitBigCatchHandler(), paramsMiddleware))
	s.Router.Handle("POST /entries/sync", Chain(s.SyncOfflineHandler(), paramsMiddleware))
	s.Router.Handle("GET /rankings", Chain(s.RankingsHandler(), paramsMiddleware))
	s.Router.Handle("GET /rankings/sector", Chain(s.SectorRankingHandler(), paramsMiddleware))
	s.Router.Handle("GET /totals", Chain(s.TotalsHandler(), paramsMiddleware))
	s.Router.Handle("POST /rankings/publish", Chain(s.PublishRankingsHandler(), paramsMiddleware))
	s.Router.Handle("POST /pubsub/entry-submitted", Chain(s.EntrySubmittedHandler(), paramsMiddleware))
	s.Router.Handle("POST /slack/command/classement", Chain(s.ClassementCommandHandler(), paramsMiddleware, slackVerified))
	s.Router.Handle("POST /clear", Chain(s.ClearStoreHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
