package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/handicap/internal/domain/model"
)

// Table columns. Header names match case-insensitively.
const (
	colPlayer = "player"
	colTS     = "ts"
	colCourse = "course"
	colHoles  = "holes"
	colAGS    = "ags"
	colCR     = "cr"
	colSlope  = "slope"
	colPCC    = "pcc"
	colID     = "id"
)

var requiredColumns = []string{colPlayer, colAGS, colCR, colSlope}

// tsLayouts are tried in order for the ts column.
var tsLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// parseTable converts a header row plus data rows into rounds. Blank rows are
// skipped; bad numbers fail the whole table with the offending line.
func parseTable(rows [][]string, cfg config) ([]model.Round, error) {
	header := -1
	for i, row := range rows {
		if !blank(row) {
			header = i
			break
		}
	}
	if header < 0 {
		return nil, ErrEmpty
	}

	cols := make(map[string]int)
	for i, name := range rows[header] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}

	var rounds []model.Round
	for i := header + 1; i < len(rows); i++ {
		row := rows[i]
		if blank(row) {
			continue
		}
		r, err := parseRow(row, cols, cfg)
		if err != nil {
			return nil, fmt.Errorf("%w at line %d: %w", ErrInvalidRow, i+1, err)
		}
		rounds = append(rounds, r)
	}
	if len(rounds) == 0 {
		return nil, ErrEmpty
	}
	return rounds, nil
}

func parseRow(row []string, cols map[string]int, cfg config) (model.Round, error) {
	cell := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	number := func(name string, fallback *float64) (float64, error) {
		s := cell(name)
		if s == "" {
			if fallback == nil {
				return 0, fmt.Errorf("%s: value is required", name)
			}
			return *fallback, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %q is not a number", name, s)
		}
		return v, nil
	}

	r := model.Round{
		ID:       cell(colID),
		PlayerID: cell(colPlayer),
		Course:   cell(colCourse),
	}
	if r.PlayerID == "" {
		r.PlayerID = cfg.player
	}
	slope, zero, holesDefault := float64(model.DefaultSlope), 0.0, float64(cfg.holes)
	var err error
	if r.AdjustedGrossScore, err = number(colAGS, nil); err != nil {
		return r, err
	}
	if r.CourseRating, err = number(colCR, nil); err != nil {
		return r, err
	}
	if r.SlopeRating, err = number(colSlope, &slope); err != nil {
		return r, err
	}
	if r.PCC, err = number(colPCC, &zero); err != nil {
		return r, err
	}
	holes, err := number(colHoles, &holesDefault)
	if err != nil {
		return r, err
	}
	r.HolesPlayed = int(holes)

	if s := cell(colTS); s != "" {
		ts, err := parseTS(s)
		if err != nil {
			return r, err
		}
		r.TS = ts
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return r, nil
}

func parseTS(s string) (time.Time, error) {
	for _, layout := range tsLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("ts: %q is not a date", s)
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
