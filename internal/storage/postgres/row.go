package postgres

import (
	"chessmatch/internal/board"
)

// positionRow is the PostgreSQL shape of a position, NULL squares scan into nil
type positionRow struct {
	ID             string
	GameID         string
	MoveNumber     int
	WhiteKing      *int16
	BlackKing      *int16
	WhiteQueens    []int32
	WhiteRooks     []int32
	WhiteBishops   []int32
	WhiteKnights   []int32
	BlackQueens    []int32
	BlackRooks     []int32
	BlackBishops   []int32
	BlackKnights   []int32
	WhitePawns     int64
	BlackPawns     int64
	SideToMove     string
	CastlingRights int16
	EnPassant      *int16
	HalfMoveClock  int
	FullMoveNumber int
	FEN            string
}

func nullSquare(sq board.Square) *int16 {
	if !sq.Valid() {
		return nil
	}
	v := int16(sq)
	return &v
}

func squareOf(v *int16) board.Square {
	if v == nil || *v < 0 || *v > 63 {
		return board.NoSquare
	}
	return board.Square(*v)
}

func newPositionRow(p *board.Position) positionRow {
	return positionRow{
		ID:             p.ID,
		GameID:         p.GameID,
		MoveNumber:     p.MoveNumber,
		WhiteKing:      nullSquare(p.WhiteKing),
		BlackKing:      nullSquare(p.BlackKing),
		WhiteQueens:    squareList(p.WhiteQueens),
		WhiteRooks:     squareList(p.WhiteRooks),
		WhiteBishops:   squareList(p.WhiteBishops),
		WhiteKnights:   squareList(p.WhiteKnights),
		BlackQueens:    squareList(p.BlackQueens),
		BlackRooks:     squareList(p.BlackRooks),
		BlackBishops:   squareList(p.BlackBishops),
		BlackKnights:   squareList(p.BlackKnights),
		WhitePawns:     int64(p.WhitePawns),
		BlackPawns:     int64(p.BlackPawns),
		SideToMove:     string(p.SideToMove),
		CastlingRights: int16(p.Castling),
		EnPassant:      nullSquare(p.EnPassant),
		HalfMoveClock:  p.HalfMoveClock,
		FullMoveNumber: p.FullMoveNumber,
		FEN:            p.FEN,
	}
}

func (r *positionRow) toPosition() *board.Position {
	side := board.ColorWhite
	if r.SideToMove == string(board.ColorBlack) {
		side = board.ColorBlack
	}
	return &board.Position{
		ID:             r.ID,
		GameID:         r.GameID,
		MoveNumber:     r.MoveNumber,
		WhiteKing:      squareOf(r.WhiteKing),
		BlackKing:      squareOf(r.BlackKing),
		WhiteQueens:    bitboardOf(r.WhiteQueens),
		WhiteRooks:     bitboardOf(r.WhiteRooks),
		WhiteBishops:   bitboardOf(r.WhiteBishops),
		WhiteKnights:   bitboardOf(r.WhiteKnights),
		BlackQueens:    bitboardOf(r.BlackQueens),
		BlackRooks:     bitboardOf(r.BlackRooks),
		BlackBishops:   bitboardOf(r.BlackBishops),
		BlackKnights:   bitboardOf(r.BlackKnights),
		WhitePawns:     board.Bitboard(r.WhitePawns),
		BlackPawns:     board.Bitboard(r.BlackPawns),
		SideToMove:     side,
		Castling:       board.Castling(r.CastlingRights),
		EnPassant:      squareOf(r.EnPassant),
		HalfMoveClock:  r.HalfMoveClock,
		FullMoveNumber: r.FullMoveNumber,
		FEN:            r.FEN,
	}
}

func (r *positionRow) scanArgs() []any {
	return []any{
		&r.ID, &r.GameID, &r.MoveNumber, &r.WhiteKing, &r.BlackKing,
		&r.WhiteQueens, &r.WhiteRooks, &r.WhiteBishops, &r.WhiteKnights,
		&r.BlackQueens, &r.BlackRooks, &r.BlackBishops, &r.BlackKnights,
		&r.WhitePawns, &r.BlackPawns, &r.SideToMove, &r.CastlingRights, &r.EnPassant,
		&r.HalfMoveClock, &r.FullMoveNumber, &r.FEN,
	}
}

func (r positionRow) values() []any {
	return []any{
		r.ID, r.GameID, r.MoveNumber, r.WhiteKing, r.BlackKing,
		r.WhiteQueens, r.WhiteRooks, r.WhiteBishops, r.WhiteKnights,
		r.BlackQueens, r.BlackRooks, r.BlackBishops, r.BlackKnights,
		r.WhitePawns, r.BlackPawns, r.SideToMove, r.CastlingRights, r.EnPassant,
		r.HalfMoveClock, r.FullMoveNumber, r.FEN,
	}
}
