package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	service "github.com/okian/handicap/internal/app"
	"github.com/okian/handicap/internal/domain/model"
)

const maxBodyBytes = 1 << 20

// RoundDependencies defines the interface for round submission.
type RoundDependencies interface {
	SubmitRound(ctx context.Context, r model.Round) (service.SubmitResult, error)
	SubmitScorecard(ctx context.Context, card model.Scorecard) ([]service.SubmitResult, error)
}

// roundRequest mirrors the body of POST /rounds.
type roundRequest struct {
	ID       string   `json:"id"`
	PlayerID string   `json:"player_id" validate:"required"`
	Course   string   `json:"course"`
	AGS      *float64 `json:"ags" validate:"required"`
	CR       *float64 `json:"cr" validate:"required"`
	Slope    *float64 `json:"slope" validate:"required"`
	PCC      float64  `json:"pcc"`
	Holes    int      `json:"holes" validate:"required,min=1"`
	TS       string   `json:"ts" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

func (req roundRequest) round() model.Round {
	r := model.Round{
		ID:                 req.ID,
		PlayerID:           req.PlayerID,
		Course:             req.Course,
		AdjustedGrossScore: *req.AGS,
		CourseRating:       *req.CR,
		SlopeRating:        *req.Slope,
		PCC:                req.PCC,
		HolesPlayed:        req.Holes,
	}
	if req.TS != "" {
		r.TS, _ = time.Parse(time.RFC3339, req.TS)
	}
	return r
}

// scorecardRequest mirrors the body of POST /scorecards.
type scorecardRequest struct {
	ID     string                     `json:"id"`
	TS     string                     `json:"ts" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Course string                     `json:"course"`
	Holes  int                        `json:"holes" validate:"required,min=1"`
	Par    []model.Strokes            `json:"par"`
	Scores map[string][]model.Strokes `json:"scores" validate:"required,min=1"`
	CR     *float64                   `json:"cr"`
	Slope  *float64                   `json:"slope"`
	PCC    *float64                   `json:"pcc"`
}

func (req scorecardRequest) scorecard() model.Scorecard {
	c := model.Scorecard{
		ID:           req.ID,
		Course:       req.Course,
		Holes:        req.Holes,
		Par:          req.Par,
		Scores:       req.Scores,
		CourseRating: req.CR,
		SlopeRating:  req.Slope,
		PCC:          req.PCC,
	}
	if req.TS != "" {
		c.TS, _ = time.Parse(time.RFC3339, req.TS)
	}
	return c
}

type scorecardResponse struct {
	Rounds []submitResponse `json:"rounds"`
}

// RoundsHandler handles round and scorecard submissions.
type RoundsHandler struct {
	deps     RoundDependencies
	validate *validator.Validate
}

// NewRoundsHandler creates a new rounds handler.
func NewRoundsHandler(deps RoundDependencies, v *validator.Validate) *RoundsHandler {
	if v == nil {
		v = validator.New()
	}
	return &RoundsHandler{deps: deps, validate: v}
}

// HandlePostRound handles POST /rounds requests.
func (h *RoundsHandler) HandlePostRound(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_round"
	var req roundRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.SubmitRound(r.Context(), req.round())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	status := http.StatusAccepted
	if res.Status == service.StatusDuplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, newSubmitResponse(res))
}

// HandlePostScorecard handles POST /scorecards requests.
func (h *RoundsHandler) HandlePostScorecard(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_scorecard"
	var req scorecardRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	results, err := h.deps.SubmitScorecard(r.Context(), req.scorecard())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	out := scorecardResponse{Rounds: make([]submitResponse, len(results))}
	for i, res := range results {
		out.Rounds[i] = newSubmitResponse(res)
	}
	writeJSON(w, http.StatusAccepted, out)
}

func (h *RoundsHandler) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return h.validate.Struct(dst)
}
