package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/handicap/internal/domain/model"
)

// JSONParser reads either a saved scorecard history (a JSON array of cards)
// or a single player's export of the form {"rounds":[{id,ags,cr,slope}]}.
type JSONParser struct {
	cfg config
}

// exportFile is the single-player export. Settings are accepted and ignored.
type exportFile struct {
	Rounds   []exportRound   `json:"rounds"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

// exportRound holds the fields of one exported round. Numbers may arrive as
// strings.
type exportRound struct {
	ID     string          `json:"id"`
	Player string          `json:"player"`
	Course string          `json:"course"`
	AGS    json.RawMessage `json:"ags"`
	CR     json.RawMessage `json:"cr"`
	Slope  json.RawMessage `json:"slope"`
	PCC    json.RawMessage `json:"pcc"`
	Holes  int             `json:"holes"`
	TS     *time.Time      `json:"ts"`
}

// rating decodes a score or rating. A missing, null or non-numeric value is
// NaN so the round is rejected instead of scored against a made-up zero.
func rating(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return math.NaN()
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return math.NaN()
		}
		raw = []byte(strings.TrimSpace(s))
	}
	v, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Parse implements Parser.
func (p *JSONParser) Parse(data []byte) ([]model.Round, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if data[0] == '[' {
		return p.parseHistory(data)
	}
	return p.parseExport(data)
}

func (p *JSONParser) parseHistory(data []byte) ([]model.Round, error) {
	var cards []model.Scorecard
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("decode scorecard history: %w", err)
	}
	var rounds []model.Round
	for i := range cards {
		card := cards[i]
		if card.Holes <= 0 {
			card.Holes = len(card.Par)
		}
		if card.ID == "" {
			card.ID = uuid.NewString()
		}
		rounds = append(rounds, card.Rounds()...)
	}
	if len(rounds) == 0 {
		return nil, ErrEmpty
	}
	return rounds, nil
}

func (p *JSONParser) parseExport(data []byte) ([]model.Round, error) {
	var file exportFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode round export: %w", err)
	}
	if len(file.Rounds) == 0 {
		return nil, ErrEmpty
	}
	rounds := make([]model.Round, 0, len(file.Rounds))
	for _, er := range file.Rounds {
		r := model.Round{
			ID:                 er.ID,
			PlayerID:           er.Player,
			Course:             er.Course,
			AdjustedGrossScore: rating(er.AGS),
			CourseRating:       rating(er.CR),
			SlopeRating:        rating(er.Slope),
			PCC:                rating(er.PCC),
			HolesPlayed:        er.Holes,
		}
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if r.PlayerID == "" {
			r.PlayerID = p.cfg.player
		}
		if math.IsNaN(r.PCC) {
			r.PCC = 0
		}
		if r.HolesPlayed <= 0 {
			r.HolesPlayed = p.cfg.holes
		}
		if er.TS != nil {
			r.TS = *er.TS
		}
		rounds = append(rounds, r)
	}
	return rounds, nil
}
