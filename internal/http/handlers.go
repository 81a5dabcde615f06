package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/catchboard/internal/competition"
	"github.com/mauv0809/catchboard/internal/entry"
	"github.com/mauv0809/catchboard/internal/leaderboard"
	"github.com/mauv0809/catchboard/internal/pubsub"
	"github.com/mauv0809/catchboard/internal/scoring"
	"github.com/mauv0809/catchboard/internal/store"
	"github.com/mauv0809/catchboard/internal/submission"
	"github.com/slack-go/slack"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ListCompetitorsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		competitors, err := s.Store.GetCompetitors(r.Context())
		if err != nil {
			log.Error("Failed to get competitors", "error", err)
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, competitors)
	}
}

// UpsertCompetitorsHandler replaces or extends the roster. The posted roster
// must be consistent on its own: unique ids and unique boxes per sector.
func (s *Server) UpsertCompetitorsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var competitors []competition.Competitor
		if err := json.NewDecoder(r.Body).Decode(&competitors); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}
		if err := competition.ValidateRoster(competitors); err != nil {
			log.Warn("Rejected roster", "error", err)
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would have upserted competitors", "count", len(competitors))
			writeJSON(w, http.StatusOK, map[string]any{"upserted": len(competitors), "dryRun": true})
			return
		}
		if err := s.Store.UpsertCompetitors(r.Context(), competitors); err != nil {
			if errors.Is(err, store.ErrRosterConflict) {
				log.Warn("Rejected roster", "error", err)
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
				return
			}
			log.Error("Failed to upsert competitors", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "failed to save competitors"})
			return
		}
		log.Info("Upserted competitors", "count", len(competitors))
		writeJSON(w, http.StatusOK, map[string]any{"upserted": len(competitors)})
	}
}

func (s *Server) SubmitHourlyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var intent submission.HourlyIntent
		if err := json.NewDecoder(r.Body).Decode(&intent); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}
		result, err := s.Submissions.SubmitHourly(r.Context(), intent, isDryRunFromContext(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) BeginHourlyEditHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req beginEditRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}
		status, err := s.Submissions.BeginHourlyEdit(r.Context(), req.CompetitorID, req.Hour, entry.Role(req.Role))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]entry.Status{"status": status})
	}
}

func (s *Server) SubmitBigCatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var intent submission.BigCatchIntent
		if err := json.NewDecoder(r.Body).Decode(&intent); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}
		result, err := s.Submissions.SubmitBigCatch(r.Context(), intent, isDryRunFromContext(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// SyncOfflineHandler promotes offline entries. An empty body syncs everything.
func (s *Server) SyncOfflineHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var intent submission.SyncIntent
		if err := json.NewDecoder(r.Body).Decode(&intent); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}
		result, err := s.Submissions.SyncOffline(r.Context(), intent, isDryRunFromContext(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) RankingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, err := s.Leaderboard.Board(r.Context())
		if err != nil {
			log.Error("Failed to compute rankings", "error", err)
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, board)
	}
}

func (s *Server) SectorRankingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sector, err := competition.ParseSector(r.URL.Query().Get("sector"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: "sector"})
			return
		}
		board, err := s.Leaderboard.Board(r.Context())
		if err != nil {
			log.Error("Failed to compute rankings", "error", err)
			writeError(w, err)
			return
		}
		ranking, _ := board.Sector(sector)
		writeJSON(w, http.StatusOK, ranking)
	}
}

func (s *Server) TotalsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, err := s.Leaderboard.Board(r.Context())
		if err != nil {
			log.Error("Failed to compute rankings", "error", err)
			writeError(w, err)
			return
		}
		resp := totalsResponse{Totals: board.Totals, Sectors: make(map[string]scoring.Totals, len(board.Sectors))}
		for _, sector := range board.Sectors {
			resp.Sectors[string(sector.Sector)] = sector.Totals
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// PublishRankingsHandler posts the general ranking, or one sector's ranking
// when ?sector= is given, to Slack.
func (s *Server) PublishRankingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isDryRun := isDryRunFromContext(r)
		var err error
		if raw := r.URL.Query().Get("sector"); raw != "" {
			sector, parseErr := competition.ParseSector(raw)
			if parseErr != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: parseErr.Error(), Field: "sector"})
				return
			}
			_, err = s.Leaderboard.PublishSector(r.Context(), sector, isDryRun)
		} else {
			_, err = s.Leaderboard.Publish(r.Context(), isDryRun)
		}
		if err != nil {
			log.Error("Failed to publish rankings", "error", err)
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Rankings published.")
	}
}

// EntrySubmittedHandler is the Pub/Sub push endpoint for entry-submitted
// events.
func (s *Server) EntrySubmittedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received entry submitted message", "body", string(bodyBytes))

		var pubsubMsg struct {
			Subscription string `json:"subscription"`
			Message      struct {
				Data string `json:"data"` // base64-encoded MessagePack payload
			} `json:"message"`
		}
		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		var event pubsub.EntrySubmittedEvent
		if err := s.pubsub.ProcessMessage(rawData, &event); err != nil {
			http.Error(w, "Invalid message payload", http.StatusBadRequest)
			return
		}
		if _, err := s.Leaderboard.HandleEntrySubmitted(r.Context(), event, isDryRunFromContext(r)); err != nil {
			// A non-2xx response makes Pub/Sub redeliver the message.
			log.Error("Failed to handle entry submitted event", "error", err, "competitorID", event.CompetitorID)
			http.Error(w, "Failed to handle event", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

// ClassementCommandHandler returns a handler for the /classement Slack
// command. "/classement" shows the general ranking, "/classement B" the
// ranking of sector B.
func (s *Server) ClassementCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		if s.Notifier == nil {
			http.Error(w, "Slack is not configured", http.StatusServiceUnavailable)
			return
		}
		text := strings.TrimSpace(r.FormValue("text"))
		log.Info("Received classement command", "text", text)

		board, err := s.Leaderboard.Board(r.Context())
		if err != nil {
			log.Error("Failed to compute rankings", "error", err)
			http.Error(w, "Failed to compute rankings", http.StatusInternalServerError)
			return
		}

		var msg any
		if text == "" {
			msg, err = s.Notifier.FormatRankingResponse(board)
		} else {
			sector, parseErr := competition.ParseSector(text)
			if parseErr != nil {
				respondWithSlackMsg(w, slack.Message{Msg: slack.Msg{
					ResponseType: slack.ResponseTypeEphemeral,
					Text:         fmt.Sprintf("Unknown sector %q. Use one of A to F.", text),
				}})
				return
			}
			msg, err = s.Notifier.FormatSectorRankingResponse(board, sector)
		}
		if err != nil {
			http.Error(w, "Failed to format ranking", http.StatusInternalServerError)
			log.Error("Failed to format ranking", "error", err)
			return
		}

		respondWithSlackMsg(w, msg)
	}
}

// ClearStoreHandler wipes all data, or only the entries with ?scope=entries.
func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope := r.URL.Query().Get("scope")
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would have cleared store", "scope", scope)
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, "Dry run, nothing cleared.")
			return
		}

		var err error
		switch scope {
		case "entries":
			log.Info("Received request to clear all entries")
			err = s.Store.ClearEntries(r.Context())
		case "":
			log.Info("Received request to clear entire store")
			err = s.Store.Clear(r.Context())
		default:
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("unknown scope %q", scope), Field: "scope"})
			return
		}
		if err != nil {
			log.Error("Failed to clear store", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "failed to clear store"})
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Store cleared!")
		log.Info("Store cleared successfully", "scope", scope)
	}
}

// respondWithSlackMsg writes a formatted Slack message as the command response.
func respondWithSlackMsg(w http.ResponseWriter, msg any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var verr *entry.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Field: verr.Field})
	case errors.Is(err, entry.ErrNotAuthorized):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, submission.ErrPersistence), errors.Is(err, leaderboard.ErrNotifierDisabled):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
