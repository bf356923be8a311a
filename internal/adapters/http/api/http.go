// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	service "github.com/okian/handicap/internal/app"
	"github.com/okian/handicap/internal/adapters/repository"
	"github.com/okian/handicap/pkg/metrics"
)

// defaultMaxLimit caps leaderboard requests when no limit is configured.
const defaultMaxLimit = 100

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RoundDependencies
	PlayerDependencies
	LeaderboardDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	roundsHandler      *RoundsHandler
	playerHandler      *PlayerHandler
	leaderboardHandler *LeaderboardHandler
}

// NewServer creates a new API server with all handlers. maxLimit bounds the
// leaderboard size a client may ask for.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	if maxLimit < 1 {
		maxLimit = defaultMaxLimit
	}
	v := validator.New()
	return &Server{
		healthHandler:      NewHealthHandler(metrics.GetRegistry()),
		statsHandler:       NewStatsHandler(statsProvider),
		roundsHandler:      NewRoundsHandler(deps, v),
		playerHandler:      NewPlayerHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /rounds", MetricsMiddleware(s.roundsHandler.HandlePostRound, "rounds"))
	mux.HandleFunc("POST /scorecards", MetricsMiddleware(s.roundsHandler.HandlePostScorecard, "scorecards"))
	mux.HandleFunc("GET /handicap/{player}", MetricsMiddleware(s.playerHandler.HandleGetHandicap, "handicap"))
	mux.HandleFunc("GET /history/{player}", MetricsMiddleware(s.playerHandler.HandleGetHistory, "history"))
	mux.HandleFunc("DELETE /history/{player}/{round}", MetricsMiddleware(s.playerHandler.HandleDeleteRound, "history_delete"))
	mux.HandleFunc("GET /profile/{player}", MetricsMiddleware(s.playerHandler.HandleGetProfile, "profile"))
	mux.HandleFunc("GET /leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("GET /courses/{course}/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetCourseLeaderboard, "course_leaderboard"))
}

type submitResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
	RoundID   string `json:"round_id"`
	PlayerID  string `json:"player_id"`
}

func newSubmitResponse(res service.SubmitResult) submitResponse {
	return submitResponse{
		Status:    res.Status,
		Duplicate: res.Status == service.StatusDuplicate,
		RoundID:   res.RoundID,
		PlayerID:  res.PlayerID,
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service and store failures to a status and code.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRound),
		errors.Is(err, service.ErrInvalidLimit),
		errors.Is(err, service.ErrInvalidHoles):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrRoundNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
