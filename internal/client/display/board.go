package display

import (
	"fmt"
	"io"
	"strings"
)

// RenderBoard writes an ASCII board with colored pieces
func RenderBoard(w io.Writer, asciiBoard string) {
	lines := strings.Split(asciiBoard, "\n")

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		// First and last lines carry the file letters
		isFileLine := i == 0 || i == len(lines)-1

		for _, char := range line {
			switch {
			case char >= 'a' && char <= 'h' && isFileLine:
				fmt.Fprintf(w, "%s%c%s", Cyan, char, Reset)
			case char >= 'A' && char <= 'Z':
				// White pieces
				fmt.Fprintf(w, "%s%c%s", Blue, char, Reset)
			case char >= 'a' && char <= 'z':
				// Black pieces
				fmt.Fprintf(w, "%s%c%s", Red, char, Reset)
			case char >= '1' && char <= '8':
				fmt.Fprintf(w, "%s%c%s", Cyan, char, Reset)
			default:
				fmt.Fprintf(w, "%c", char)
			}
		}
		fmt.Fprintln(w)
	}
}

// ColorForSide returns a colored side name for "w" or "b"
func ColorForSide(side string) string {
	if side == "w" {
		return Blue + "White" + Reset
	}
	return Red + "Black" + Reset
}

// SquareName converts a square index to algebraic notation, "-" when absent
func SquareName(sq *int) string {
	if sq == nil || *sq < 0 || *sq > 63 {
		return "-"
	}
	return fmt.Sprintf("%c%d", 'a'+*sq%8, *sq/8+1)
}

// SquareList renders square indexes as algebraic names
func SquareList(squares []int) string {
	if len(squares) == 0 {
		return "-"
	}
	names := make([]string, len(squares))
	for i := range squares {
		names[i] = SquareName(&squares[i])
	}
	return strings.Join(names, " ")
}

// MaskSquares expands a 64-bit pawn mask into square indexes
func MaskSquares(mask int64) []int {
	var squares []int
	for sq := 0; sq < 64; sq++ {
		if uint64(mask)&(1<<uint(sq)) != 0 {
			squares = append(squares, sq)
		}
	}
	return squares
}
