// Package session holds the REPL state shared by client commands
package session

import (
	"chessmatch/internal/client/api"
)

// Session carries connection settings, search defaults and the last result set
type Session struct {
	APIBaseURL string
	Client     *api.Client
	Verbose    bool

	// Search parameters applied to every search command
	Color  string
	Pieces []string
	Limit  int
	MinElo *int
	MaxElo *int

	// Position ids of the last search, addressable by rank
	LastResults []string
}

// New returns a session pointed at baseURL with white, no pieces and server defaults
func New(baseURL string) *Session {
	return &Session{
		APIBaseURL: baseURL,
		Client:     api.New(baseURL),
		Color:      "white",
	}
}

func (s *Session) GetAPIBaseURL() string       { return s.APIBaseURL }
func (s *Session) GetClient() *api.Client      { return s.Client }
func (s *Session) IsVerbose() bool             { return s.Verbose }
func (s *Session) GetColor() string            { return s.Color }
func (s *Session) SetColor(c string)           { s.Color = c }
func (s *Session) GetPieces() []string         { return s.Pieces }
func (s *Session) SetPieces(p []string)        { s.Pieces = p }
func (s *Session) GetLimit() int               { return s.Limit }
func (s *Session) SetLimit(n int)              { s.Limit = n }
func (s *Session) GetLastResults() []string    { return s.LastResults }
func (s *Session) SetLastResults(ids []string) { s.LastResults = ids }

// SetAPIBaseURL points the session and its client at u
func (s *Session) SetAPIBaseURL(u string) {
	s.APIBaseURL = u
	s.Client.SetBaseURL(u)
}

// GetEloBand returns the configured bounds, nil meaning server default
func (s *Session) GetEloBand() (*int, *int) { return s.MinElo, s.MaxElo }

func (s *Session) SetEloBand(minElo, maxElo *int) {
	s.MinElo, s.MaxElo = minElo, maxElo
}

// SearchRequest builds the request body for fen from the session settings
func (s *Session) SearchRequest(fen string) *api.SimilarRequest {
	return &api.SimilarRequest{
		FEN: fen,
		Request: api.SearchRequest{
			Color:          s.Color,
			SelectedPieces: s.Pieces,
			Limit:          s.Limit,
			MinElo:         s.MinElo,
			MaxElo:         s.MaxElo,
		},
	}
}
