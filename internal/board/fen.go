package board

import (
	"fmt"
	"strconv"
	"strings"
)

// MalformedInputError reports notation that cannot be decoded into a Position
type MalformedInputError struct {
	Input  string
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("invalid FEN %q: %s", e.Input, e.Reason)
}

func malformed(input, format string, args ...any) error {
	return &MalformedInputError{Input: input, Reason: fmt.Sprintf(format, args...)}
}

// Decode parses a six field FEN string into a Position.
// The last rank group of the placement maps to rank 1 (squares 0-7).
func Decode(fen string) (Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 6 {
		return Position{}, malformed(fen, "expected 6 fields, got %d", len(parts))
	}

	p := NewPosition()
	p.FEN = fen

	// Parse board
	ranks := strings.Split(parts[0], "/")
	if len(ranks) != 8 {
		return Position{}, malformed(fen, "expected 8 ranks, got %d", len(ranks))
	}

	for i, group := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(group); j++ {
			ch := group[j]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}

			color := ColorBlack
			lower := ch
			if ch >= 'A' && ch <= 'Z' {
				color = ColorWhite
				lower = ch + ('a' - 'A')
			}
			kind, ok := kindFromLetter(lower)
			if !ok {
				return Position{}, malformed(fen, "unknown piece %q in rank %d", ch, rank+1)
			}
			if file >= 8 {
				return Position{}, malformed(fen, "too many pieces in rank %d", rank+1)
			}
			if kind == King && p.KingSquare(color).Valid() {
				return Position{}, malformed(fen, "second %s king", color)
			}
			p.place(color, kind, NewSquare(file, rank))
			file++
		}
		if file != 8 {
			return Position{}, malformed(fen, "rank %d has %d files", rank+1, file)
		}
	}

	switch parts[1] {
	case "w":
		p.SideToMove = ColorWhite
	case "b":
		p.SideToMove = ColorBlack
	default:
		return Position{}, malformed(fen, "active color must be 'w' or 'b'")
	}

	for _, ch := range parts[2] {
		switch ch {
		case 'K':
			p.Castling |= CastleWhiteKing
		case 'Q':
			p.Castling |= CastleWhiteQueen
		case 'k':
			p.Castling |= CastleBlackKing
		case 'q':
			p.Castling |= CastleBlackQueen
		}
	}

	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return Position{}, malformed(fen, "en passant: %v", err.(*MalformedInputError).Reason)
		}
		p.EnPassant = sq
	}

	var err error
	if p.HalfMoveClock, err = parseCounter(parts[4]); err != nil {
		return Position{}, malformed(fen, "halfmove clock %q", parts[4])
	}
	if p.FullMoveNumber, err = parseCounter(parts[5]); err != nil {
		return Position{}, malformed(fen, "fullmove number %q", parts[5])
	}

	return p, nil
}

func parseCounter(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative counter %d", n)
	}
	return n, nil
}
