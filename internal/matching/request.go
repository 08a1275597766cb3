package matching

import (
	"strings"

	"chessmatch/internal/board"
)

const (
	DefaultLimit  = 20
	DefaultMinElo = 500
	DefaultMaxElo = 2500
)

// Feature is one color-qualified piece kind
type Feature struct {
	Color board.Color
	Kind  board.PieceKind
}

// Key returns the tag form, e.g. "whiteKnight"
func (f Feature) Key() string {
	name := f.Kind.String()
	return f.Color.String() + strings.ToUpper(name[:1]) + name[1:]
}

func (f Feature) String() string {
	return f.Key()
}

// Request carries the query parameters of one similarity search
type Request struct {
	Color  board.Color
	Pieces []board.PieceKind
	Limit  int
	MinElo int
	MaxElo int
}

// NewRequest returns a request with the default limit and rating band
func NewRequest(color board.Color, pieces ...board.PieceKind) Request {
	return Request{
		Color:  color,
		Pieces: pieces,
		Limit:  DefaultLimit,
		MinElo: DefaultMinElo,
		MaxElo: DefaultMaxElo,
	}
}

// Validate checks the limit, rating band and color
func (r Request) Validate() error {
	if !r.Color.Valid() {
		return &InvalidRequestError{Field: "color", Reason: "must be white or black"}
	}
	if r.Limit < 1 {
		return &InvalidRequestError{Field: "limit", Reason: "must be at least 1"}
	}
	if r.MinElo > r.MaxElo {
		return &InvalidRequestError{Field: "minElo", Reason: "must not exceed maxElo"}
	}
	return nil
}

// Features derives the selected features for the request color.
// Duplicate selections collapse and the order follows board.PieceKinds.
func (r Request) Features() []Feature {
	var selected [board.NumPieceKinds]bool
	for _, k := range r.Pieces {
		if k < board.NumPieceKinds {
			selected[k] = true
		}
	}

	features := make([]Feature, 0, len(r.Pieces))
	for _, k := range board.PieceKinds {
		if selected[k] {
			features = append(features, Feature{Color: r.Color, Kind: k})
		}
	}
	return features
}

// FeatureKeys returns the tag form of Features
func (r Request) FeatureKeys() []string {
	features := r.Features()
	keys := make([]string, len(features))
	for i, f := range features {
		keys[i] = f.Key()
	}
	return keys
}
