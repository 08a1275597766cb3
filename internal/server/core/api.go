package core

import (
	"chessmatch/internal/board"
	"chessmatch/internal/game"
	"chessmatch/internal/matching"
)

// Request types

type SimilarRequest struct {
	FEN     string        `json:"fen" validate:"required,max=100"`
	Request SearchRequest `json:"request"`
}

// SearchRequest mirrors matching.Request, zero or nil fields take the server defaults
type SearchRequest struct {
	Color          string   `json:"color" validate:"required,oneof=white black WHITE BLACK w b"`
	SelectedPieces []string `json:"selectedPieces" validate:"omitempty,max=6,dive,oneof=pawn knight bishop rook queen king PAWN KNIGHT BISHOP ROOK QUEEN KING"`
	Limit          int      `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
	MinElo         *int     `json:"minElo,omitempty" validate:"omitempty,min=0,max=4000"`
	MaxElo         *int     `json:"maxElo,omitempty" validate:"omitempty,min=0,max=4000"`
}

type DecodeRequest struct {
	FEN string `json:"fen" validate:"required,max=100"`
}

// Response types

type PositionResponse struct {
	PositionID      string `json:"positionId,omitempty"`
	GameID          string `json:"gameId,omitempty"`
	MoveNumber      int    `json:"moveNumber"`
	SideToMove      string `json:"sideToMove"`
	CastlingRights  int    `json:"castlingRights"`
	EnPassantSquare *int   `json:"enPassantSquare"` // null when no capture is possible
	HalfmoveClock   int    `json:"halfmoveClock"`
	FullmoveNumber  int    `json:"fullmoveNumber"`
	FEN             string `json:"fen"`

	WhitePawns   int64 `json:"whitePawns"`
	WhiteKnights []int `json:"whiteKnights"`
	WhiteBishops []int `json:"whiteBishops"`
	WhiteRooks   []int `json:"whiteRooks"`
	WhiteQueens  []int `json:"whiteQueens"`
	WhiteKing    *int  `json:"whiteKing"`
	BlackPawns   int64 `json:"blackPawns"`
	BlackKnights []int `json:"blackKnights"`
	BlackBishops []int `json:"blackBishops"`
	BlackRooks   []int `json:"blackRooks"`
	BlackQueens  []int `json:"blackQueens"`
	BlackKing    *int  `json:"blackKing"`

	Board string `json:"board,omitempty"` // ASCII representation
}

type GameResponse struct {
	GameID      string `json:"gameId"`
	Result      string `json:"result"`
	WhiteElo    int    `json:"whiteElo"`
	BlackElo    int    `json:"blackElo"`
	GameType    string `json:"gameType,omitempty"`
	Date        string `json:"date,omitempty"`
	WhiteName   string `json:"whiteName,omitempty"`
	BlackName   string `json:"blackName,omitempty"`
	ECO         string `json:"eco,omitempty"`
	TimeControl string `json:"timeControl,omitempty"`
	Opening     string `json:"opening,omitempty"`
	Site        string `json:"site,omitempty"`
	PGN         string `json:"pgn,omitempty"`
}

type SimilarityResult struct {
	PositionID      string            `json:"positionId"`
	GameID          string            `json:"gameId"`
	MoveNumber      int               `json:"moveNumber"`
	SimilarityScore float64           `json:"similarityScore"`
	Position        *PositionResponse `json:"position,omitempty"`
	Game            *GameResponse     `json:"game,omitempty"`
}

type SimilarResponse struct {
	Results    []SimilarityResult `json:"results"`
	Count      int                `json:"count"`
	Candidates int                `json:"candidates"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Time    int64  `json:"time"`
	Storage string `json:"storage"`
}

// NewPositionResponse converts a position, including its ASCII board
func NewPositionResponse(p *board.Position) *PositionResponse {
	return &PositionResponse{
		PositionID:      p.ID,
		GameID:          p.GameID,
		MoveNumber:      p.MoveNumber,
		SideToMove:      string(p.SideToMove),
		CastlingRights:  int(p.Castling),
		EnPassantSquare: optionalSquare(p.EnPassant),
		HalfmoveClock:   p.HalfMoveClock,
		FullmoveNumber:  p.FullMoveNumber,
		FEN:             p.FEN,
		WhitePawns:      int64(p.WhitePawns),
		WhiteKnights:    squareList(p.WhiteKnights),
		WhiteBishops:    squareList(p.WhiteBishops),
		WhiteRooks:      squareList(p.WhiteRooks),
		WhiteQueens:     squareList(p.WhiteQueens),
		WhiteKing:       optionalSquare(p.WhiteKing),
		BlackPawns:      int64(p.BlackPawns),
		BlackKnights:    squareList(p.BlackKnights),
		BlackBishops:    squareList(p.BlackBishops),
		BlackRooks:      squareList(p.BlackRooks),
		BlackQueens:     squareList(p.BlackQueens),
		BlackKing:       optionalSquare(p.BlackKing),
		Board:           p.ToASCII(),
	}
}

func NewGameResponse(g *game.Game) *GameResponse {
	return &GameResponse{
		GameID:      g.ID,
		Result:      g.Result,
		WhiteElo:    g.WhiteElo,
		BlackElo:    g.BlackElo,
		GameType:    g.GameType,
		Date:        g.Date,
		WhiteName:   g.WhiteName,
		BlackName:   g.BlackName,
		ECO:         g.ECO,
		TimeControl: g.TimeControl,
		Opening:     g.Opening,
		Site:        g.Site,
		PGN:         g.PGN,
	}
}

// NewSimilarResponse converts an engine report; results are never null in JSON
func NewSimilarResponse(report *matching.Report) SimilarResponse {
	results := make([]SimilarityResult, 0, len(report.Results))
	for _, r := range report.Results {
		res := SimilarityResult{
			PositionID:      r.PositionID,
			GameID:          r.GameID,
			MoveNumber:      r.MoveNumber,
			SimilarityScore: r.Score,
		}
		if r.Position != nil {
			res.Position = NewPositionResponse(r.Position)
		}
		if r.Game != nil {
			res.Game = NewGameResponse(r.Game)
		}
		results = append(results, res)
	}
	return SimilarResponse{
		Results:    results,
		Count:      len(results),
		Candidates: report.Candidates,
	}
}

func optionalSquare(sq board.Square) *int {
	if !sq.Valid() {
		return nil
	}
	v := int(sq)
	return &v
}

func squareList(b board.Bitboard) []int {
	squares := b.Squares()
	out := make([]int, len(squares))
	for i, sq := range squares {
		out[i] = int(sq)
	}
	return out
}
