package http

import (
	"net/http"

	"github.com/mauv0809/catchboard/internal/config"
	"github.com/mauv0809/catchboard/internal/leaderboard"
	"github.com/mauv0809/catchboard/internal/metrics"
	"github.com/mauv0809/catchboard/internal/notifier"
	"github.com/mauv0809/catchboard/internal/pubsub"
	"github.com/mauv0809/catchboard/internal/scoring"
	"github.com/mauv0809/catchboard/internal/store"
	"github.com/mauv0809/catchboard/internal/submission"
)

type Server struct {
	Store          store.Store
	Submissions    *submission.Service
	Leaderboard    *leaderboard.Service
	Notifier       notifier.Notifier
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}

// errorResponse is the JSON body of every failed API call.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// beginEditRequest asks whether an hourly entry may be edited.
type beginEditRequest struct {
	CompetitorID string `json:"competitorId"`
	Hour         int    `json:"hour"`
	Role         string `json:"role"`
}

// totalsResponse holds competition-wide and per-sector totals.
type totalsResponse struct {
	Totals  scoring.Totals            `json:"totals"`
	Sectors map[string]scoring.Totals `json:"sectors"`
}
