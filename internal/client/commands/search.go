package commands

import (
	"fmt"
	"strconv"
	"strings"

	"chessmatch/internal/client/display"
)

var pieceNames = map[string]bool{
	"pawn": true, "knight": true, "bishop": true,
	"rook": true, "queen": true, "king": true,
}

func (r *Registry) registerSearchCommands() {
	r.Register(&Command{
		Name:        "search",
		ShortName:   "s",
		Description: "Find positions similar to a FEN",
		Usage:       "search <fen>",
		Handler:     r.searchHandler,
	})

	r.Register(&Command{
		Name:        "decode",
		ShortName:   "d",
		Description: "Decode a FEN without searching",
		Usage:       "decode <fen>",
		Handler:     r.decodeHandler,
	})

	r.Register(&Command{
		Name:        "position",
		ShortName:   "p",
		Description: "Show a stored position",
		Usage:       "position <positionId|rank>",
		Handler:     r.positionHandler,
	})

	r.Register(&Command{
		Name:        "game",
		ShortName:   "g",
		Description: "Show game metadata",
		Usage:       "game <gameId>",
		Handler:     r.gameHandler,
	})

	r.Register(&Command{
		Name:        "color",
		ShortName:   "c",
		Description: "Set the side whose pieces are compared",
		Usage:       "color [white|black]",
		Handler:     r.colorHandler,
	})

	r.Register(&Command{
		Name:        "pieces",
		ShortName:   "k",
		Description: "Set the piece kinds to compare",
		Usage:       "pieces [pawn,knight,bishop,rook,queen,king|none]",
		Handler:     r.piecesHandler,
	})

	r.Register(&Command{
		Name:        "limit",
		ShortName:   "l",
		Description: "Set the result limit, 0 for server default",
		Usage:       "limit [n]",
		Handler:     r.limitHandler,
	})

	r.Register(&Command{
		Name:        "elo",
		ShortName:   "e",
		Description: "Set the rating band both players must fall in",
		Usage:       "elo [<min> <max>|default]",
		Handler:     r.eloHandler,
	})
}

func (r *Registry) searchHandler(s Session, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: search <fen>")
	}

	resp, err := s.GetClient().FindSimilar(s.SearchRequest(strings.Join(args, " ")))
	if err != nil {
		return err
	}

	ids := make([]string, len(resp.Results))
	for i, res := range resp.Results {
		ids[i] = res.PositionID
	}
	s.SetLastResults(ids)

	renderResults(r.out, resp)
	if len(ids) > 0 {
		fmt.Fprintf(r.out, "Use 'position <rank>' to inspect a result\n")
	}
	return nil
}

func (r *Registry) decodeHandler(s Session, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: decode <fen>")
	}

	pos, err := s.GetClient().DecodePosition(strings.Join(args, " "))
	if err != nil {
		return err
	}

	renderPosition(r.out, pos)
	return nil
}

func (r *Registry) positionHandler(s Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: position <positionId|rank>")
	}

	id := args[0]
	// Small numbers address the last result set
	if rank, err := strconv.Atoi(id); err == nil {
		last := s.GetLastResults()
		if rank < 1 || rank > len(last) {
			return fmt.Errorf("rank %d out of range, last search returned %d result(s)", rank, len(last))
		}
		id = last[rank-1]
	}

	pos, err := s.GetClient().GetPosition(id)
	if err != nil {
		return err
	}

	renderPosition(r.out, pos)
	return nil
}

func (r *Registry) gameHandler(s Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: game <gameId>")
	}

	g, err := s.GetClient().GetGame(args[0])
	if err != nil {
		return err
	}

	renderGame(r.out, g)
	return nil
}

func (r *Registry) colorHandler(s Session, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "Color: %s\n", s.GetColor())
		return nil
	}

	switch c := strings.ToLower(args[0]); c {
	case "white", "w":
		s.SetColor("white")
	case "black", "b":
		s.SetColor("black")
	default:
		return fmt.Errorf("invalid color: %s (use white or black)", args[0])
	}

	fmt.Fprintf(r.out, "%sColor set to: %s%s\n", display.Cyan, s.GetColor(), display.Reset)
	return nil
}

func (r *Registry) piecesHandler(s Session, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "Pieces: %s\n", piecesLabel(s.GetPieces()))
		return nil
	}

	var pieces []string
	if !(len(args) == 1 && strings.EqualFold(args[0], "none")) {
		seen := make(map[string]bool)
		for _, arg := range args {
			for _, name := range strings.Split(arg, ",") {
				name = strings.ToLower(strings.TrimSpace(name))
				if name == "" || seen[name] {
					continue
				}
				if !pieceNames[name] {
					return fmt.Errorf("unknown piece: %s", name)
				}
				seen[name] = true
				pieces = append(pieces, name)
			}
		}
	}

	s.SetPieces(pieces)
	fmt.Fprintf(r.out, "%sPieces set to: %s%s\n", display.Cyan, piecesLabel(pieces), display.Reset)
	return nil
}

func (r *Registry) limitHandler(s Session, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "Limit: %s\n", limitLabel(s.GetLimit()))
		return nil
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return fmt.Errorf("invalid limit: %s", args[0])
	}

	s.SetLimit(n)
	fmt.Fprintf(r.out, "%sLimit set to: %s%s\n", display.Cyan, limitLabel(n), display.Reset)
	return nil
}

func (r *Registry) eloHandler(s Session, args []string) error {
	switch {
	case len(args) == 0:
		minElo, maxElo := s.GetEloBand()
		fmt.Fprintf(r.out, "Elo band: %s\n", eloLabel(minElo, maxElo))
		return nil
	case len(args) == 1 && strings.EqualFold(args[0], "default"):
		s.SetEloBand(nil, nil)
	case len(args) == 2:
		minElo, err1 := strconv.Atoi(args[0])
		maxElo, err2 := strconv.Atoi(args[1])
		if err1 != nil || err2 != nil {
			return fmt.Errorf("elo bounds must be integers")
		}
		if minElo > maxElo {
			return fmt.Errorf("min elo %d exceeds max elo %d", minElo, maxElo)
		}
		s.SetEloBand(&minElo, &maxElo)
	default:
		return fmt.Errorf("usage: elo [<min> <max>|default]")
	}

	minElo, maxElo := s.GetEloBand()
	fmt.Fprintf(r.out, "%sElo band set to: %s%s\n", display.Cyan, eloLabel(minElo, maxElo), display.Reset)
	return nil
}

func piecesLabel(pieces []string) string {
	if len(pieces) == 0 {
		return "none"
	}
	return strings.Join(pieces, ",")
}

func limitLabel(n int) string {
	if n == 0 {
		return "server default"
	}
	return strconv.Itoa(n)
}

func eloLabel(minElo, maxElo *int) string {
	if minElo == nil && maxElo == nil {
		return "server default"
	}
	lo, hi := "default", "default"
	if minElo != nil {
		lo = strconv.Itoa(*minElo)
	}
	if maxElo != nil {
		hi = strconv.Itoa(*maxElo)
	}
	return lo + "-" + hi
}
