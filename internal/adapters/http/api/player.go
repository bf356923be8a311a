package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/handicap/internal/domain/types"
)

// PlayerDependencies defines the per-player read and delete operations.
type PlayerDependencies interface {
	CourseHandicap(ctx context.Context, playerID string, slope float64) (types.Handicap, error)
	History(ctx context.Context, playerID string) (types.History, error)
	PlayerProfile(ctx context.Context, playerID string) (types.Profile, error)
	DeleteRound(ctx context.Context, playerID, roundID string) error
}

// PlayerHandler serves per-player endpoints.
type PlayerHandler struct {
	deps PlayerDependencies
}

// NewPlayerHandler creates a new player handler.
func NewPlayerHandler(deps PlayerDependencies) *PlayerHandler {
	return &PlayerHandler{deps: deps}
}

// HandleGetHandicap handles GET /handicap/{player}?slope=N requests.
func (h *PlayerHandler) HandleGetHandicap(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_handicap"
	player, ok := pathValue(w, r, op, "player")
	if !ok {
		return
	}
	var slope float64
	if s := r.URL.Query().Get("slope"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		slope = v
	}

	out, err := h.deps.CourseHandicap(r.Context(), player, slope)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGetHistory handles GET /history/{player} requests.
func (h *PlayerHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_history"
	player, ok := pathValue(w, r, op, "player")
	if !ok {
		return
	}
	out, err := h.deps.History(r.Context(), player)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleDeleteRound handles DELETE /history/{player}/{round} requests.
func (h *PlayerHandler) HandleDeleteRound(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_round"
	player, ok := pathValue(w, r, op, "player")
	if !ok {
		return
	}
	round, ok := pathValue(w, r, op, "round")
	if !ok {
		return
	}
	if err := h.deps.DeleteRound(r.Context(), player, round); err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetProfile handles GET /profile/{player} requests.
func (h *PlayerHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_profile"
	player, ok := pathValue(w, r, op, "player")
	if !ok {
		return
	}
	out, err := h.deps.PlayerProfile(r.Context(), player)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// pathValue reads a non-blank path parameter, answering 400 when it is missing.
func pathValue(w http.ResponseWriter, r *http.Request, op, name string) (string, bool) {
	v := strings.TrimSpace(r.PathValue(name))
	if v == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return "", false
	}
	return v, true
}
