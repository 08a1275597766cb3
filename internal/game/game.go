// Package game holds match metadata for positions in the corpus
package game

// Game is a recorded match. Positions refer back to it by ID.
type Game struct {
	ID          string
	Result      string
	WhiteElo    int
	BlackElo    int
	GameType    string
	Date        string
	WhiteName   string
	BlackName   string
	ECO         string
	TimeControl string
	Site        string
	Opening     string
	PGN         string
}

// RatedWithin reports whether both players' ratings lie in [minElo, maxElo]
func (g *Game) RatedWithin(minElo, maxElo int) bool {
	return g.WhiteElo >= minElo && g.WhiteElo <= maxElo &&
		g.BlackElo >= minElo && g.BlackElo <= maxElo
}
