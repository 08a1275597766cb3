package storage

import (
	"database/sql"

	"chessmatch/internal/board"
	"chessmatch/internal/game"
)

// GameRecord represents a row in the games table
type GameRecord struct {
	ID          string `db:"id"`
	Result      string `db:"result"`
	WhiteElo    int    `db:"white_elo"`
	BlackElo    int    `db:"black_elo"`
	GameType    string `db:"game_type"`
	Date        string `db:"date"`
	WhiteName   string `db:"white_name"`
	BlackName   string `db:"black_name"`
	ECO         string `db:"eco"`
	TimeControl string `db:"time_control"`
	Site        string `db:"site"`
	Opening     string `db:"opening"`
	PGN         string `db:"pgn"`
}

// PositionRecord represents a row in the positions table. Square sets
// are stored as 64-bit masks, absent squares as NULL.
type PositionRecord struct {
	ID             string        `db:"id"`
	GameID         string        `db:"game_id"`
	MoveNumber     int           `db:"move_number"`
	WhiteKing      sql.NullInt64 `db:"white_king"`
	BlackKing      sql.NullInt64 `db:"black_king"`
	WhiteQueens    int64         `db:"white_queens"`
	WhiteRooks     int64         `db:"white_rooks"`
	WhiteBishops   int64         `db:"white_bishops"`
	WhiteKnights   int64         `db:"white_knights"`
	BlackQueens    int64         `db:"black_queens"`
	BlackRooks     int64         `db:"black_rooks"`
	BlackBishops   int64         `db:"black_bishops"`
	BlackKnights   int64         `db:"black_knights"`
	WhitePawns     int64         `db:"white_pawns"`
	BlackPawns     int64         `db:"black_pawns"`
	SideToMove     string        `db:"side_to_move"`
	CastlingRights int           `db:"castling_rights"`
	EnPassant      sql.NullInt64 `db:"en_passant"`
	HalfMoveClock  int           `db:"half_move_clock"`
	FullMoveNumber int           `db:"full_move_number"`
	FEN            string        `db:"fen"`
}

const gameColumns = `id, result, white_elo, black_elo, game_type, date,
	white_name, black_name, eco, time_control, site, opening, pgn`

const positionColumns = `id, game_id, move_number, white_king, black_king,
	white_queens, white_rooks, white_bishops, white_knights,
	black_queens, black_rooks, black_bishops, black_knights,
	white_pawns, black_pawns, side_to_move, castling_rights, en_passant,
	half_move_clock, full_move_number, fen`

func newGameRecord(g *game.Game) GameRecord {
	return GameRecord{
		ID:          g.ID,
		Result:      g.Result,
		WhiteElo:    g.WhiteElo,
		BlackElo:    g.BlackElo,
		GameType:    g.GameType,
		Date:        g.Date,
		WhiteName:   g.WhiteName,
		BlackName:   g.BlackName,
		ECO:         g.ECO,
		TimeControl: g.TimeControl,
		Site:        g.Site,
		Opening:     g.Opening,
		PGN:         g.PGN,
	}
}

func (r GameRecord) toGame() *game.Game {
	return &game.Game{
		ID:          r.ID,
		Result:      r.Result,
		WhiteElo:    r.WhiteElo,
		BlackElo:    r.BlackElo,
		GameType:    r.GameType,
		Date:        r.Date,
		WhiteName:   r.WhiteName,
		BlackName:   r.BlackName,
		ECO:         r.ECO,
		TimeControl: r.TimeControl,
		Site:        r.Site,
		Opening:     r.Opening,
		PGN:         r.PGN,
	}
}

func (r *GameRecord) scanArgs() []any {
	return []any{
		&r.ID, &r.Result, &r.WhiteElo, &r.BlackElo, &r.GameType, &r.Date,
		&r.WhiteName, &r.BlackName, &r.ECO, &r.TimeControl, &r.Site, &r.Opening, &r.PGN,
	}
}

func (r GameRecord) values() []any {
	return []any{
		r.ID, r.Result, r.WhiteElo, r.BlackElo, r.GameType, r.Date,
		r.WhiteName, r.BlackName, r.ECO, r.TimeControl, r.Site, r.Opening, r.PGN,
	}
}

func nullSquare(sq board.Square) sql.NullInt64 {
	if !sq.Valid() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(sq), Valid: true}
}

func squareOf(n sql.NullInt64) board.Square {
	if !n.Valid || n.Int64 < 0 || n.Int64 > 63 {
		return board.NoSquare
	}
	return board.Square(n.Int64)
}

func newPositionRecord(p *board.Position) PositionRecord {
	return PositionRecord{
		ID:             p.ID,
		GameID:         p.GameID,
		MoveNumber:     p.MoveNumber,
		WhiteKing:      nullSquare(p.WhiteKing),
		BlackKing:      nullSquare(p.BlackKing),
		WhiteQueens:    int64(p.WhiteQueens),
		WhiteRooks:     int64(p.WhiteRooks),
		WhiteBishops:   int64(p.WhiteBishops),
		WhiteKnights:   int64(p.WhiteKnights),
		BlackQueens:    int64(p.BlackQueens),
		BlackRooks:     int64(p.BlackRooks),
		BlackBishops:   int64(p.BlackBishops),
		BlackKnights:   int64(p.BlackKnights),
		WhitePawns:     int64(p.WhitePawns),
		BlackPawns:     int64(p.BlackPawns),
		SideToMove:     string(p.SideToMove),
		CastlingRights: int(p.Castling),
		EnPassant:      nullSquare(p.EnPassant),
		HalfMoveClock:  p.HalfMoveClock,
		FullMoveNumber: p.FullMoveNumber,
		FEN:            p.FEN,
	}
}

func (r PositionRecord) toPosition() *board.Position {
	p := &board.Position{
		ID:             r.ID,
		GameID:         r.GameID,
		MoveNumber:     r.MoveNumber,
		WhiteKing:      squareOf(r.WhiteKing),
		BlackKing:      squareOf(r.BlackKing),
		WhiteQueens:    board.Bitboard(r.WhiteQueens),
		WhiteRooks:     board.Bitboard(r.WhiteRooks),
		WhiteBishops:   board.Bitboard(r.WhiteBishops),
		WhiteKnights:   board.Bitboard(r.WhiteKnights),
		BlackQueens:    board.Bitboard(r.BlackQueens),
		BlackRooks:     board.Bitboard(r.BlackRooks),
		BlackBishops:   board.Bitboard(r.BlackBishops),
		BlackKnights:   board.Bitboard(r.BlackKnights),
		WhitePawns:     board.Bitboard(r.WhitePawns),
		BlackPawns:     board.Bitboard(r.BlackPawns),
		SideToMove:     board.ColorWhite,
		Castling:       board.Castling(r.CastlingRights),
		EnPassant:      squareOf(r.EnPassant),
		HalfMoveClock:  r.HalfMoveClock,
		FullMoveNumber: r.FullMoveNumber,
		FEN:            r.FEN,
	}
	if r.SideToMove == string(board.ColorBlack) {
		p.SideToMove = board.ColorBlack
	}
	return p
}

func (r *PositionRecord) scanArgs() []any {
	return []any{
		&r.ID, &r.GameID, &r.MoveNumber, &r.WhiteKing, &r.BlackKing,
		&r.WhiteQueens, &r.WhiteRooks, &r.WhiteBishops, &r.WhiteKnights,
		&r.BlackQueens, &r.BlackRooks, &r.BlackBishops, &r.BlackKnights,
		&r.WhitePawns, &r.BlackPawns, &r.SideToMove, &r.CastlingRights, &r.EnPassant,
		&r.HalfMoveClock, &r.FullMoveNumber, &r.FEN,
	}
}

func (r PositionRecord) values() []any {
	return []any{
		r.ID, r.GameID, r.MoveNumber, r.WhiteKing, r.BlackKing,
		r.WhiteQueens, r.WhiteRooks, r.WhiteBishops, r.WhiteKnights,
		r.BlackQueens, r.BlackRooks, r.BlackBishops, r.BlackKnights,
		r.WhitePawns, r.BlackPawns, r.SideToMove, r.CastlingRights, r.EnPassant,
		r.HalfMoveClock, r.FullMoveNumber, r.FEN,
	}
}
