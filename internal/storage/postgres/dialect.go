package postgres

import (
	"fmt"

	"chessmatch/internal/board"
	"chessmatch/internal/storage"
)

// Pawns are BIGINT masks, the other piece sets are INTEGER[] square lists
// so they can use GIN indexes and the && operator.
// bit_count(bigint) is defined by the schema.
type dialect struct{}

// Dialect renders similarity queries for the PostgreSQL schema
var Dialect storage.Dialect = dialect{}

func (dialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (dialect) MaskIntersects(q *storage.Query, col string, ref board.Bitboard) string {
	return fmt.Sprintf("(%s & %s::bigint) != 0", col, q.Bind(int64(ref)))
}

func (dialect) SetIntersects(q *storage.Query, col string, ref board.Bitboard) string {
	return fmt.Sprintf("%s && %s::integer[]", col, q.Bind(squareList(ref)))
}

func (dialect) Jaccard(q *storage.Query, col string, ref board.Bitboard) string {
	m := int64(ref)
	return fmt.Sprintf("CASE WHEN bit_count(%s | %s::bigint) = 0 THEN 0.0 ELSE CAST(bit_count(%s & %s::bigint) AS DOUBLE PRECISION) / bit_count(%s | %s::bigint) END",
		col, q.Bind(m), col, q.Bind(m), col, q.Bind(m))
}

func (dialect) Overlap(q *storage.Query, col string, ref board.Bitboard) string {
	return fmt.Sprintf("CAST(cardinality(ARRAY(SELECT unnest(%s) INTERSECT SELECT unnest(%s::integer[]))) AS DOUBLE PRECISION) / %s::double precision",
		col, q.Bind(squareList(ref)), q.Bind(float64(max(ref.Count(), 1))))
}

func squareList(b board.Bitboard) []int32 {
	squares := b.Squares()
	out := make([]int32, len(squares))
	for i, sq := range squares {
		out[i] = int32(sq)
	}
	return out
}

func bitboardOf(squares []int32) board.Bitboard {
	var b board.Bitboard
	for _, sq := range squares {
		b = b.With(board.Square(sq))
	}
	return b
}
