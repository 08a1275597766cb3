package api

// Request types

type SearchRequest struct {
	Color          string   `json:"color"`
	SelectedPieces []string `json:"selectedPieces,omitempty"`
	Limit          int      `json:"limit,omitempty"`
	MinElo         *int     `json:"minElo,omitempty"`
	MaxElo         *int     `json:"maxElo,omitempty"`
}

type SimilarRequest struct {
	FEN     string        `json:"fen"`
	Request SearchRequest `json:"request"`
}

type DecodeRequest struct {
	FEN string `json:"fen"`
}

// Response types

type PositionResponse struct {
	PositionID      string `json:"positionId,omitempty"`
	GameID          string `json:"gameId,omitempty"`
	MoveNumber      int    `json:"moveNumber"`
	SideToMove      string `json:"sideToMove"`
	CastlingRights  int    `json:"castlingRights"`
	EnPassantSquare *int   `json:"enPassantSquare"`
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

	Board string `json:"board,omitempty"`
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
	Storage string `json:"storage,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
