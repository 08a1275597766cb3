package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// PrettyPrintJSON prints formatted JSON
func PrettyPrintJSON(w io.Writer, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "%sError formatting JSON: %s%s\n", Red, err.Error(), Reset)
		return
	}
	fmt.Fprintln(w, string(data))
}

// CastlingString renders castling bits (K=1 Q=2 k=4 q=8) in FEN form
func CastlingString(rights int) string {
	var sb strings.Builder
	for i, letter := range "KQkq" {
		if rights&(1<<uint(i)) != 0 {
			sb.WriteRune(letter)
		}
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

// NameOr returns name, or "?" when unknown
func NameOr(name string) string {
	if name == "" {
		return "?"
	}
	return name
}
