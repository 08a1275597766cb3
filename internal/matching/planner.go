package matching

import (
	"chessmatch/internal/board"
)

// featurePolicy describes how one piece kind is filtered and scored
type featurePolicy struct {
	prefilter Op
	score     ScoreKind
	// emit decides, for a given reference, whether the predicate and the
	// scoring expression are produced
	emit func(ref *board.Position, f Feature) (prefilter, score bool)
}

var policies = [board.NumPieceKinds]featurePolicy{
	board.Pawn:   {prefilter: OpMaskIntersects, score: ScoreJaccard, emit: emitPawn},
	board.Knight: {prefilter: OpSetIntersects, score: ScoreOverlap, emit: emitSet},
	board.Bishop: {prefilter: OpSetIntersects, score: ScoreOverlap, emit: emitSet},
	board.Rook:   {prefilter: OpSetIntersects, score: ScoreOverlap, emit: emitSet},
	board.Queen:  {prefilter: OpSetIntersects, score: ScoreOverlap, emit: emitSet},
	board.King:   {prefilter: OpSquareEquals, score: ScoreEquality, emit: emitKing},
}

// A zero pawn mask is still scored; filtering on it would reject every row.
func emitPawn(ref *board.Position, f Feature) (bool, bool) {
	return ref.Pieces(f.Color, board.Pawn) != 0, true
}

func emitKing(ref *board.Position, f Feature) (bool, bool) {
	known := ref.KingSquare(f.Color).Valid()
	return known, known
}

func emitSet(ref *board.Position, f Feature) (bool, bool) {
	nonEmpty := ref.Pieces(f.Color, f.Kind) != 0
	return nonEmpty, nonEmpty
}

// BuildPlan turns a reference position and request into prefilters and
// scoring expressions. The two rating predicates are always present.
// ref must be non-nil.
func BuildPlan(ref *board.Position, req Request) Plan {
	plan := Plan{
		Prefilters: []Predicate{
			{Op: OpRatingBetween, Feature: Feature{Color: board.ColorWhite}, Min: req.MinElo, Max: req.MaxElo},
			{Op: OpRatingBetween, Feature: Feature{Color: board.ColorBlack}, Min: req.MinElo, Max: req.MaxElo},
		},
		Limit: req.Limit,
	}

	for _, f := range req.Features() {
		pol := policies[f.Kind]
		withPrefilter, withScore := pol.emit(ref, f)
		refSet := ref.Pieces(f.Color, f.Kind)
		square := board.NoSquare
		if f.Kind == board.King {
			square = ref.KingSquare(f.Color)
		}

		if withPrefilter {
			plan.Prefilters = append(plan.Prefilters, Predicate{
				Op:      pol.prefilter,
				Feature: f,
				Ref:     refSet,
				Square:  square,
			})
		}
		if withScore {
			plan.Scores = append(plan.Scores, Score{
				Kind:    pol.score,
				Feature: f,
				Ref:     refSet,
				Square:  square,
			})
		}
	}

	return plan
}
