package matching

import (
	"context"

	"chessmatch/internal/board"
	"chessmatch/internal/game"
)

// Candidate is one scored row returned by QueryCandidates
type Candidate struct {
	PositionID string
	GameID     string
	MoveNumber int
	Score      float64
}

// Store is the read contract the engine needs from the position corpus.
//
// QueryCandidates applies the plan's prefilters to at most candidateCap rows,
// scores them and returns at most resultCap candidates by descending score.
// GetPosition and GetGame return ErrNotFound for unknown ids. The batch
// getters omit unknown ids from the returned map.
type Store interface {
	QueryCandidates(ctx context.Context, plan Plan, candidateCap, resultCap int) ([]Candidate, error)
	GetPosition(ctx context.Context, id string) (*board.Position, error)
	GetGame(ctx context.Context, id string) (*game.Game, error)
	GetPositions(ctx context.Context, ids []string) (map[string]*board.Position, error)
	GetGames(ctx context.Context, ids []string) (map[string]*game.Game, error)
}
