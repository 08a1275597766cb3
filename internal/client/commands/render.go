package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"chessmatch/internal/client/api"
	"chessmatch/internal/client/display"
)

// renderResults writes ranked search hits as a table
func renderResults(w io.Writer, resp *api.SimilarResponse) {
	if len(resp.Results) == 0 {
		fmt.Fprintf(w, "%sNo similar positions found%s (%d candidates)\n", display.Yellow, display.Reset, resp.Candidates)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tScore\tGame\tMove\tWhite\tBlack\tECO\tPosition")
	for i, r := range resp.Results {
		white, black, eco := "-", "-", ""
		if g := r.Game; g != nil {
			white = fmt.Sprintf("%s (%d)", display.NameOr(g.WhiteName), g.WhiteElo)
			black = fmt.Sprintf("%s (%d)", display.NameOr(g.BlackName), g.BlackElo)
			eco = g.ECO
		}
		fmt.Fprintf(tw, "%d\t%s%.3f%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			i+1, display.Green, r.SimilarityScore, display.Reset,
			r.GameID, r.MoveNumber, white, black, eco, r.PositionID)
	}
	tw.Flush()

	fmt.Fprintf(w, "%s%d result(s) from %d candidate(s)%s\n", display.Cyan, resp.Count, resp.Candidates, display.Reset)
}

// renderPosition writes a position summary followed by its board
func renderPosition(w io.Writer, p *api.PositionResponse) {
	if p.PositionID != "" {
		fmt.Fprintf(w, "%sPosition:%s %s (game %s, move %d)\n", display.Cyan, display.Reset, p.PositionID, p.GameID, p.MoveNumber)
	}
	fmt.Fprintf(w, "%sFEN:%s %s\n", display.Cyan, display.Reset, p.FEN)
	fmt.Fprintf(w, "To move: %s  Castling: %s  En passant: %s  Clocks: %d/%d\n",
		display.ColorForSide(p.SideToMove), display.CastlingString(p.CastlingRights),
		display.SquareName(p.EnPassantSquare), p.HalfmoveClock, p.FullmoveNumber)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tWhite\tBlack")
	fmt.Fprintf(tw, "King\t%s\t%s\n", display.SquareName(p.WhiteKing), display.SquareName(p.BlackKing))
	fmt.Fprintf(tw, "Queens\t%s\t%s\n", display.SquareList(p.WhiteQueens), display.SquareList(p.BlackQueens))
	fmt.Fprintf(tw, "Rooks\t%s\t%s\n", display.SquareList(p.WhiteRooks), display.SquareList(p.BlackRooks))
	fmt.Fprintf(tw, "Bishops\t%s\t%s\n", display.SquareList(p.WhiteBishops), display.SquareList(p.BlackBishops))
	fmt.Fprintf(tw, "Knights\t%s\t%s\n", display.SquareList(p.WhiteKnights), display.SquareList(p.BlackKnights))
	fmt.Fprintf(tw, "Pawns\t%s\t%s\n", display.SquareList(display.MaskSquares(p.WhitePawns)), display.SquareList(display.MaskSquares(p.BlackPawns)))
	tw.Flush()

	if p.Board != "" {
		fmt.Fprintln(w)
		display.RenderBoard(w, p.Board)
	}
}

// renderGame writes game metadata
func renderGame(w io.Writer, g *api.GameResponse) {
	fmt.Fprintf(w, "%sGame:%s %s\n", display.Cyan, display.Reset, g.GameID)
	fmt.Fprintf(w, "  White:  %s (%d)\n", display.NameOr(g.WhiteName), g.WhiteElo)
	fmt.Fprintf(w, "  Black:  %s (%d)\n", display.NameOr(g.BlackName), g.BlackElo)
	fmt.Fprintf(w, "  Result: %s\n", g.Result)

	optional := []struct{ label, value string }{
		{"Date", g.Date},
		{"Type", g.GameType},
		{"Time", g.TimeControl},
		{"ECO", g.ECO},
		{"Opening", g.Opening},
		{"Site", g.Site},
	}
	for _, f := range optional {
		if f.value != "" {
			fmt.Fprintf(w, "  %-7s %s\n", f.label+":", f.value)
		}
	}
}
