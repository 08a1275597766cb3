package matching

import (
	"chessmatch/internal/board"
	"chessmatch/internal/game"
)

// Op is a prefilter operator
type Op int

const (
	// OpMaskIntersects: candidate pawn mask AND reference mask is non-zero
	OpMaskIntersects Op = iota
	// OpSquareEquals: candidate king square equals the reference square
	OpSquareEquals
	// OpSetIntersects: candidate square set shares a square with the reference set
	OpSetIntersects
	// OpRatingBetween: the side's game rating lies in [Min, Max]
	OpRatingBetween
)

// Predicate is one prefilter condition. Rating predicates use only
// Feature.Color, Min and Max.
type Predicate struct {
	Op      Op
	Feature Feature
	Ref     board.Bitboard
	Square  board.Square
	Min     int
	Max     int
}

// Matches evaluates the predicate against a candidate row
func (p Predicate) Matches(pos *board.Position, g *game.Game) bool {
	switch p.Op {
	case OpMaskIntersects, OpSetIntersects:
		return pos.Pieces(p.Feature.Color, p.Feature.Kind)&p.Ref != 0
	case OpSquareEquals:
		return pos.KingSquare(p.Feature.Color) == p.Square
	case OpRatingBetween:
		elo := g.WhiteElo
		if p.Feature.Color == board.ColorBlack {
			elo = g.BlackElo
		}
		return elo >= p.Min && elo <= p.Max
	}
	return false
}

// ScoreKind selects the similarity measure of a scoring expression
type ScoreKind int

const (
	// ScoreJaccard: popcount(AND) / popcount(OR), 0 when OR is empty
	ScoreJaccard ScoreKind = iota
	// ScoreEquality: 1 when the king squares match, else 0
	ScoreEquality
	// ScoreOverlap: |candidate ∩ reference| / max(|reference|, 1)
	ScoreOverlap
)

// Score is one per-feature scoring expression with values in [0, 1]
type Score struct {
	Kind    ScoreKind
	Feature Feature
	Ref     board.Bitboard
	Square  board.Square
}

// Evaluate computes the expression for a candidate position
func (s Score) Evaluate(pos *board.Position) float64 {
	switch s.Kind {
	case ScoreJaccard:
		cand := pos.Pieces(s.Feature.Color, s.Feature.Kind)
		union := (cand | s.Ref).Count()
		if union == 0 {
			return 0
		}
		return float64((cand & s.Ref).Count()) / float64(union)
	case ScoreEquality:
		if pos.KingSquare(s.Feature.Color) == s.Square {
			return 1
		}
		return 0
	case ScoreOverlap:
		cand := pos.Pieces(s.Feature.Color, s.Feature.Kind)
		return float64((cand & s.Ref).Count()) / float64(max(s.Ref.Count(), 1))
	}
	return 0
}

// Plan is the executable form of a similarity query. It holds data only,
// stores render it into their own query language.
type Plan struct {
	Prefilters []Predicate
	Scores     []Score
	Limit      int
}

// Matches reports whether a candidate passes every prefilter
func (p Plan) Matches(pos *board.Position, g *game.Game) bool {
	for _, pred := range p.Prefilters {
		if !pred.Matches(pos, g) {
			return false
		}
	}
	return true
}

// Score is the mean of all scoring expressions, 0 when there are none
func (p Plan) Score(pos *board.Position) float64 {
	if len(p.Scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range p.Scores {
		sum += s.Evaluate(pos)
	}
	return sum / float64(len(p.Scores))
}
