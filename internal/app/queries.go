package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/handicap/internal/domain/handicap"
	"github.com/okian/handicap/internal/domain/model"
	"github.com/okian/handicap/internal/domain/types"
	"github.com/okian/handicap/pkg/metrics"
)

// HandicapIndex computes a player's current index from stored history.
func (s *Service) HandicapIndex(ctx context.Context, playerID string) (handicap.Index, error) {
	rounds, err := s.history(ctx, playerID)
	if err != nil {
		return handicap.Index{}, err
	}
	idx, _ := evaluate(rounds)
	return idx, nil
}

// CourseHandicap computes a player's index and converts it for a set of tees.
// A zero slope selects the configured default. Any other slope that is not a
// finite positive number leaves the course handicap empty.
func (s *Service) CourseHandicap(ctx context.Context, playerID string, slope float64) (types.Handicap, error) {
	if slope == 0 {
		slope = s.defaultSlope()
	}

	idx, err := s.HandicapIndex(ctx, playerID)
	if err != nil {
		return types.Handicap{}, err
	}

	out := types.Handicap{
		PlayerID:    playerID,
		Index:       idx,
		Provisional: idx.HasValue() && !idx.Established,
	}
	// NaN and Inf have no JSON form
	if !math.IsNaN(slope) && !math.IsInf(slope, 0) {
		out.TargetSlope = slope
	}
	if ch, ok := handicap.CourseHandicap(idx, slope); ok {
		out.CourseHandicap = &ch
	}
	return out, nil
}

// History returns a player's rounds with their differentials, marking the
// windowed rounds and the differentials that fed the index.
func (s *Service) History(ctx context.Context, playerID string) (types.History, error) {
	rounds, err := s.history(ctx, playerID)
	if err != nil {
		return types.History{}, err
	}
	idx, scored := evaluate(rounds)

	entries := make([]types.RoundEntry, len(scored))
	for i, sc := range scored {
		entries[i] = roundEntry(sc)
	}
	return types.History{PlayerID: playerID, Index: idx, Rounds: entries}, nil
}

// Leaderboard ranks players by index, lowest first. Established indexes rank
// ahead of provisional ones and players without an index come last. Indexes
// are recomputed from history on every call.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]types.Entry, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	store, err := s.currentStore()
	if err != nil {
		return nil, err
	}

	players := store.Players(ctx)
	entries := make([]types.Entry, len(players))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())
	for i, p := range players {
		g.Go(func() error {
			rounds, err := store.History(gctx, p)
			if err != nil {
				// deleted since Players was read
				entries[i] = types.Entry{PlayerID: p}
				return nil //nolint:nilerr // a vanished player is ranked last
			}
			idx, _ := evaluate(rounds)
			entries[i] = types.Entry{
				PlayerID:    p,
				Index:       idx.Value,
				Established: idx.Established,
				Rounds:      len(rounds),
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entryLess(entries[i], entries[j])
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// PlayerProfile summarises a player's best gross scores and groups their
// rounds by course.
func (s *Service) PlayerProfile(ctx context.Context, playerID string) (types.Profile, error) {
	rounds, err := s.history(ctx, playerID)
	if err != nil {
		return types.Profile{}, err
	}
	idx, scored := evaluate(rounds)

	p := types.Profile{
		PlayerID: playerID,
		Index:    idx,
		Rounds:   len(rounds),
		Courses:  make(map[string][]types.RoundEntry),
	}
	for _, sc := range scored {
		r := sc.Round
		switch r.HolesPlayed {
		case 9:
			p.Best9 = lowest(p.Best9, r.AdjustedGrossScore)
		case 18:
			p.Best18 = lowest(p.Best18, r.AdjustedGrossScore)
		}
		course := r.Course
		if course == "" {
			course = "unknown"
		}
		p.Courses[course] = append(p.Courses[course], roundEntry(sc))
	}
	return p, nil
}

// CourseLeaderboard lists each player's best gross score at one course for
// 9 or 18 hole rounds. Course names match case-insensitively. Ties are
// ordered by player id.
func (s *Service) CourseLeaderboard(ctx context.Context, course string, holes int) ([]types.CourseEntry, error) {
	if holes != 9 && holes != 18 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidHoles, holes)
	}
	store, err := s.currentStore()
	if err != nil {
		return nil, err
	}

	var entries []types.CourseEntry
	for _, p := range store.Players(ctx) {
		rounds, err := store.History(ctx, p)
		if err != nil {
			continue
		}
		var best *model.Round
		for i := range rounds {
			r := &rounds[i]
			if r.HolesPlayed != holes || !strings.EqualFold(strings.TrimSpace(r.Course), strings.TrimSpace(course)) {
				continue
			}
			if best == nil || r.AdjustedGrossScore < best.AdjustedGrossScore {
				best = r
			}
		}
		if best != nil {
			entries = append(entries, types.CourseEntry{
				PlayerID: p,
				Gross:    best.AdjustedGrossScore,
				RoundID:  best.ID,
				TS:       best.TS,
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Gross != entries[j].Gross {
			return entries[i].Gross < entries[j].Gross
		}
		return entries[i].PlayerID < entries[j].PlayerID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (s *Service) currentStore() (storeReader, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

func (s *Service) history(ctx context.Context, playerID string) ([]model.Round, error) {
	store, err := s.currentStore()
	if err != nil {
		return nil, err
	}
	rounds, err := store.History(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("history for %s: %w", playerID, err)
	}
	return rounds, nil
}

func (s *Service) defaultSlope() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaultTargetSlope
}

func (s *Service) concurrency() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.leaderboardConcurrency
}

// storeReader is the read side of repository.Store used by queries.
type storeReader interface {
	History(ctx context.Context, playerID string) ([]model.Round, error)
	Players(ctx context.Context) []string
}

// evaluate runs the index computation and records its outcome.
func evaluate(rounds []model.Round) (handicap.Index, []handicap.Scored) {
	start := time.Now()
	idx, scored := handicap.Evaluate(rounds)

	outcome := metrics.OutcomeNone
	switch {
	case idx.HasValue() && idx.Established:
		outcome = metrics.OutcomeEstablished
	case idx.HasValue():
		outcome = metrics.OutcomeProvisional
	}
	metrics.RecordIndexComputation(outcome, float64(time.Since(start).Microseconds())/1000)
	return idx, scored
}

func entryLess(a, b types.Entry) bool {
	if (a.Index != nil) != (b.Index != nil) {
		return a.Index != nil
	}
	if a.Index != nil {
		if a.Established != b.Established {
			return a.Established
		}
		if *a.Index != *b.Index {
			return *a.Index < *b.Index
		}
	}
	return a.PlayerID < b.PlayerID
}

func roundEntry(sc handicap.Scored) types.RoundEntry {
	r := sc.Round
	return types.RoundEntry{
		ID:                 r.ID,
		Course:             r.Course,
		TS:                 r.TS,
		HolesPlayed:        r.HolesPlayed,
		AdjustedGrossScore: r.AdjustedGrossScore,
		CourseRating:       r.CourseRating,
		SlopeRating:        r.SlopeRating,
		PCC:                r.PCC,
		Differential:       sc.Differential,
		InWindow:           sc.InWindow,
		Used:               sc.Used,
	}
}

func lowest(current *float64, v float64) *float64 {
	if current == nil || v < *current {
		return &v
	}
	return current
}
