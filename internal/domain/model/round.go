// Package model contains domain models passed between layers.
package model

import "time"

// Round is one played round for one player. Hole-level capping happens
// before a round reaches this type, so AdjustedGrossScore is already final.
type Round struct {
	ID                 string    // unique id for idempotency
	PlayerID           string    // player the round belongs to
	Course             string    // course name, informational
	AdjustedGrossScore float64   // total strokes after capping
	CourseRating       float64   // expected scratch score for the tees
	SlopeRating        float64   // difficulty scaling, must be > 0
	PCC                float64   // playing conditions adjustment, usually 0
	HolesPlayed        int       // 9 or 18 typically
	TS                 time.Time // when the round was played
}
