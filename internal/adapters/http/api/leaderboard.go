package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/handicap/internal/domain/types"
)

// LeaderboardDependencies defines the interface for leaderboard operations.
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, limit int) ([]types.Entry, error)
	CourseLeaderboard(ctx context.Context, course string, holes int) ([]types.CourseEntry, error)
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps     LeaderboardDependencies
	maxLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetLeaderboard handles GET /leaderboard?limit=N requests.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	limitStr := r.URL.Query().Get("limit")
	n, err := strconv.Atoi(limitStr)
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	entries, err := h.deps.Leaderboard(r.Context(), n)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleGetCourseLeaderboard handles GET /courses/{course}/leaderboard?holes=9|18
// requests. holes defaults to 18.
func (h *LeaderboardHandler) HandleGetCourseLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_course_leaderboard"
	course, ok := pathValue(w, r, op, "course")
	if !ok {
		return
	}
	holes := 18
	if s := r.URL.Query().Get("holes"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		holes = v
	}
	entries, err := h.deps.CourseLeaderboard(r.Context(), course, holes)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if entries == nil {
		entries = []types.CourseEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
