package board

// Square is a board cell index, rank*8+file with a1=0 and h8=63
type Square int8

// NoSquare marks an absent king or en passant target
const NoSquare Square = -1

// NewSquare builds a square from zero-based file and rank
func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

func (s Square) File() int { return int(s) % 8 }

func (s Square) Rank() int { return int(s) / 8 }

// Valid reports whether s lies in [0,63]
func (s Square) Valid() bool {
	return s >= 0 && s < 64
}

// String returns the algebraic name, "-" for NoSquare
func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}

// ParseSquare decodes a two character algebraic token such as "e3"
func ParseSquare(token string) (Square, error) {
	if len(token) != 2 {
		return NoSquare, malformed(token, "square must be exactly 2 characters")
	}
	file := int(token[0]) - 'a'
	rank := int(token[1]) - '1'
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare, malformed(token, "square out of range")
	}
	return NewSquare(file, rank), nil
}
