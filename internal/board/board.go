// Package board holds the canonical position encoding used by the matcher
// and the FEN codec that produces it.
package board

import (
	"fmt"
	"math/bits"
	"strings"
)

const (
	StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
)

// Color identifies a side
type Color byte

const (
	ColorWhite Color = 'w'
	ColorBlack Color = 'b'
)

// Colors lists both sides in a fixed order
var Colors = [...]Color{ColorWhite, ColorBlack}

func (c Color) String() string {
	switch c {
	case ColorWhite:
		return "white"
	case ColorBlack:
		return "black"
	default:
		return fmt.Sprintf("Color(%d)", byte(c))
	}
}

// Valid reports whether c is one of the two sides
func (c Color) Valid() bool {
	return c == ColorWhite || c == ColorBlack
}

// ParseColor accepts "white"/"black" or the FEN letters "w"/"b", case-insensitive
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return ColorWhite, nil
	case "black", "b":
		return ColorBlack, nil
	default:
		return 0, fmt.Errorf("unknown color: %q", s)
	}
}

// PieceKind is the closed set of piece kinds
type PieceKind uint8

const (
	Pawn PieceKind = iota
	Knight
	Bishop
	Rook
	Queen
	King

	NumPieceKinds = 6
)

var pieceKindNames = [NumPieceKinds]string{"pawn", "knight", "bishop", "rook", "queen", "king"}

// PieceKinds lists every kind in enum order
var PieceKinds = [NumPieceKinds]PieceKind{Pawn, Knight, Bishop, Rook, Queen, King}

func (k PieceKind) String() string {
	if k < NumPieceKinds {
		return pieceKindNames[k]
	}
	return fmt.Sprintf("PieceKind(%d)", uint8(k))
}

// ParsePieceKind accepts the lowercase kind name or its FEN letter
func ParsePieceKind(s string) (PieceKind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range pieceKindNames {
		if name == n {
			return PieceKind(i), nil
		}
	}
	if len(name) == 1 {
		if k, ok := kindFromLetter(name[0]); ok {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown piece kind: %q", s)
}

func kindFromLetter(ch byte) (PieceKind, bool) {
	switch ch {
	case 'p':
		return Pawn, true
	case 'n':
		return Knight, true
	case 'b':
		return Bishop, true
	case 'r':
		return Rook, true
	case 'q':
		return Queen, true
	case 'k':
		return King, true
	}
	return 0, false
}

func (k PieceKind) letter(c Color) byte {
	l := "pnbrqk"[k]
	if c == ColorWhite {
		l -= 'a' - 'A'
	}
	return l
}

// Bitboard is a 64-bit square set, bit i set iff square i is a member
type Bitboard uint64

// NewBitboard builds a set from the given squares, ignoring NoSquare
func NewBitboard(squares ...Square) Bitboard {
	var b Bitboard
	for _, sq := range squares {
		b = b.With(sq)
	}
	return b
}

// With returns b plus sq
func (b Bitboard) With(sq Square) Bitboard {
	if !sq.Valid() {
		return b
	}
	return b | 1<<uint(sq)
}

// Has reports whether sq is in the set
func (b Bitboard) Has(sq Square) bool {
	return sq.Valid() && b&(1<<uint(sq)) != 0
}

// Count returns the population count
func (b Bitboard) Count() int {
	return bits.OnesCount64(uint64(b))
}

// Squares lists members in ascending square order
func (b Bitboard) Squares() []Square {
	out := make([]Square, 0, b.Count())
	for v := uint64(b); v != 0; v &= v - 1 {
		out = append(out, Square(bits.TrailingZeros64(v)))
	}
	return out
}

// Castling is the 4-bit castling rights field
type Castling uint8

const (
	CastleWhiteKing Castling = 1 << iota
	CastleWhiteQueen
	CastleBlackKing
	CastleBlackQueen
)

func (c Castling) String() string {
	if c == 0 {
		return "-"
	}
	var sb strings.Builder
	for i, flag := range []Castling{CastleWhiteKing, CastleWhiteQueen, CastleBlackKing, CastleBlackQueen} {
		if c&flag != 0 {
			sb.WriteByte("KQkq"[i])
		}
	}
	return sb.String()
}

// Position is the canonical encoding of one board state.
// King squares are NoSquare when the side has no king on the board.
type Position struct {
	ID         string
	GameID     string
	MoveNumber int

	WhiteKing Square
	BlackKing Square

	WhiteQueens  Bitboard
	WhiteRooks   Bitboard
	WhiteBishops Bitboard
	WhiteKnights Bitboard
	BlackQueens  Bitboard
	BlackRooks   Bitboard
	BlackBishops Bitboard
	BlackKnights Bitboard

	WhitePawns Bitboard
	BlackPawns Bitboard

	SideToMove     Color
	Castling       Castling
	EnPassant      Square
	HalfMoveClock  int
	FullMoveNumber int

	FEN string
}

// NewPosition returns an empty position with both kings absent
func NewPosition() Position {
	return Position{
		WhiteKing:  NoSquare,
		BlackKing:  NoSquare,
		EnPassant:  NoSquare,
		SideToMove: ColorWhite,
	}
}

// KingSquare returns the king square for c, NoSquare if absent
func (p *Position) KingSquare(c Color) Square {
	if c == ColorBlack {
		return p.BlackKing
	}
	return p.WhiteKing
}

// Pieces returns the square set of kind k for side c.
// Kings are reported as a one-square set.
func (p *Position) Pieces(c Color, k PieceKind) Bitboard {
	if k == King {
		return NewBitboard(p.KingSquare(c))
	}
	if ptr := p.field(c, k); ptr != nil {
		return *ptr
	}
	return 0
}

func (p *Position) field(c Color, k PieceKind) *Bitboard {
	white := c == ColorWhite
	switch k {
	case Pawn:
		if white {
			return &p.WhitePawns
		}
		return &p.BlackPawns
	case Knight:
		if white {
			return &p.WhiteKnights
		}
		return &p.BlackKnights
	case Bishop:
		if white {
			return &p.WhiteBishops
		}
		return &p.BlackBishops
	case Rook:
		if white {
			return &p.WhiteRooks
		}
		return &p.BlackRooks
	case Queen:
		if white {
			return &p.WhiteQueens
		}
		return &p.BlackQueens
	}
	return nil
}

// place puts a piece on sq. Decode rejects a second king before it gets here.
func (p *Position) place(c Color, k PieceKind, sq Square) {
	if k == King {
		if c == ColorWhite {
			p.WhiteKing = sq
		} else {
			p.BlackKing = sq
		}
		return
	}
	f := p.field(c, k)
	*f = f.With(sq)
}

// PieceCount counts every piece of both sides, pawns included
func (p *Position) PieceCount() int {
	n := 0
	for _, c := range Colors {
		for _, k := range PieceKinds {
			n += p.Pieces(c, k).Count()
		}
	}
	return n
}

// PieceAt returns the FEN letter on sq, or 0 if the square is empty
func (p *Position) PieceAt(sq Square) byte {
	for _, c := range Colors {
		for _, k := range PieceKinds {
			if p.Pieces(c, k).Has(sq) {
				return k.letter(c)
			}
		}
	}
	return 0
}

// ToASCII creates an ASCII representation of the board
func (p *Position) ToASCII() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")

	for r := 7; r >= 0; r-- {
		sb.WriteString(fmt.Sprintf("%d ", r+1))
		for f := 0; f < 8; f++ {
			piece := p.PieceAt(NewSquare(f, r))
			if piece == 0 {
				sb.WriteString(". ")
			} else {
				sb.WriteString(fmt.Sprintf("%c ", piece))
			}
		}
		sb.WriteString(fmt.Sprintf(" %d\n", r+1))
	}
	sb.WriteString("  a b c d e f g h")

	return sb.String()
}
