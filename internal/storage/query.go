package storage

import (
	"fmt"
	"strings"

	"chessmatch/internal/board"
	"chessmatch/internal/matching"
)

// Dialect renders the backend specific parts of a similarity query.
// Each method binds its reference values through q.
type Dialect interface {
	Placeholder(n int) string
	MaskIntersects(q *Query, col string, ref board.Bitboard) string
	SetIntersects(q *Query, col string, ref board.Bitboard) string
	Jaccard(q *Query, col string, ref board.Bitboard) string
	Overlap(q *Query, col string, ref board.Bitboard) string
}

// Query accumulates SQL arguments for a dialect
type Query struct {
	dialect Dialect
	Args    []any
}

// Bind appends v and returns its placeholder
func (q *Query) Bind(v any) string {
	q.Args = append(q.Args, v)
	return q.dialect.Placeholder(len(q.Args))
}

// FeatureColumn names the positions column holding f
func FeatureColumn(f matching.Feature) string {
	side := f.Color.String()
	switch f.Kind {
	case board.King:
		return side + "_king"
	case board.Pawn:
		return side + "_pawns"
	default:
		return side + "_" + f.Kind.String() + "s"
	}
}

func ratingColumn(c board.Color) string {
	return c.String() + "_elo"
}

// BuildCandidateQuery renders a plan into the two stage query: at most
// candidateCap prefiltered rows, then the resultCap best by mean score
func BuildCandidateQuery(d Dialect, plan matching.Plan, candidateCap, resultCap int) (string, []any) {
	q := &Query{dialect: d}

	where := make([]string, 0, len(plan.Prefilters))
	for _, pred := range plan.Prefilters {
		where = append(where, renderPredicate(q, pred))
	}
	if len(where) == 0 {
		where = append(where, "1=1")
	}
	capArg := q.Bind(candidateCap)

	scores := make([]string, 0, len(plan.Scores))
	for _, s := range plan.Scores {
		scores = append(scores, renderScore(q, s))
	}
	score := "0.0"
	if len(scores) > 0 {
		score = fmt.Sprintf("(%s) / %d.0", strings.Join(scores, " + "), len(scores))
	}
	limitArg := q.Bind(resultCap)

	sql := fmt.Sprintf(`WITH filtered_positions AS (
	SELECT p.id FROM positions p
	JOIN games g ON g.id = p.game_id
	WHERE %s
	LIMIT %s
)
SELECT p.id, p.game_id, p.move_number, %s AS similarity_score
FROM positions p
JOIN filtered_positions f ON p.id = f.id
ORDER BY similarity_score DESC
LIMIT %s`, strings.Join(where, "\n\tAND "), capArg, score, limitArg)

	return sql, q.Args
}

func renderPredicate(q *Query, pred matching.Predicate) string {
	switch pred.Op {
	case matching.OpMaskIntersects:
		return q.dialect.MaskIntersects(q, "p."+FeatureColumn(pred.Feature), pred.Ref)
	case matching.OpSetIntersects:
		return q.dialect.SetIntersects(q, "p."+FeatureColumn(pred.Feature), pred.Ref)
	case matching.OpSquareEquals:
		return fmt.Sprintf("p.%s = %s", FeatureColumn(pred.Feature), q.Bind(int(pred.Square)))
	case matching.OpRatingBetween:
		col := "g." + ratingColumn(pred.Feature.Color)
		return fmt.Sprintf("%s BETWEEN %s AND %s", col, q.Bind(pred.Min), q.Bind(pred.Max))
	}
	return "1=0"
}

func renderScore(q *Query, s matching.Score) string {
	col := "p." + FeatureColumn(s.Feature)
	switch s.Kind {
	case matching.ScoreJaccard:
		return q.dialect.Jaccard(q, col, s.Ref)
	case matching.ScoreEquality:
		return fmt.Sprintf("CASE WHEN %s = %s THEN 1.0 ELSE 0.0 END", col, q.Bind(int(s.Square)))
	case matching.ScoreOverlap:
		return q.dialect.Overlap(q, col, s.Ref)
	}
	return "0.0"
}

// SQLite stores every square set as a 64-bit mask
type sqliteDialect struct{}

// SQLiteDialect renders queries for the SQLite schema
var SQLiteDialect Dialect = sqliteDialect{}

func (sqliteDialect) Placeholder(int) string { return "?" }

func (sqliteDialect) MaskIntersects(q *Query, col string, ref board.Bitboard) string {
	return fmt.Sprintf("(%s & %s) != 0", col, q.Bind(int64(ref)))
}

func (d sqliteDialect) SetIntersects(q *Query, col string, ref board.Bitboard) string {
	return d.MaskIntersects(q, col, ref)
}

func (sqliteDialect) Jaccard(q *Query, col string, ref board.Bitboard) string {
	m := int64(ref)
	return fmt.Sprintf("CASE WHEN bit_count(%s | %s) = 0 THEN 0.0 ELSE CAST(bit_count(%s & %s) AS REAL) / bit_count(%s | %s) END",
		col, q.Bind(m), col, q.Bind(m), col, q.Bind(m))
}

func (sqliteDialect) Overlap(q *Query, col string, ref board.Bitboard) string {
	return fmt.Sprintf("CAST(bit_count(%s & %s) AS REAL) / %s",
		col, q.Bind(int64(ref)), q.Bind(float64(max(ref.Count(), 1))))
}
