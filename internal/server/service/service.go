package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"chessmatch/internal/board"
	"chessmatch/internal/game"
	"chessmatch/internal/matching"
	"chessmatch/internal/server/core"
	"chessmatch/internal/storage"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Store is the position store the service runs on
type Store interface {
	matching.Store
	IsHealthy() bool
	Close() error
}

// SearchRecorder is implemented by stores that keep a search log
type SearchRecorder interface {
	RecordSearch(record storage.SearchRecord) error
}

// Config carries engine bounds, request defaults and cache sizing
type Config struct {
	Engine         matching.Config
	DefaultLimit   int
	MaxLimit       int
	DefaultMinElo  int
	DefaultMaxElo  int
	CacheEntries   int
	RecordSearches bool
}

// Service coordinates decoding, matching and storage lookups
type Service struct {
	store    Store
	engine   *matching.Engine
	cfg      Config
	fenCache *lru.Cache[string, board.Position] // nil when disabled
	recorder SearchRecorder                     // nil when not recording
}

// New creates a service over store
func New(store Store, cfg Config) (*Service, error) {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = matching.DefaultLimit
	}
	if cfg.MaxLimit < cfg.DefaultLimit {
		cfg.MaxLimit = cfg.DefaultLimit
	}
	if cfg.DefaultMinElo == 0 && cfg.DefaultMaxElo == 0 {
		cfg.DefaultMinElo = matching.DefaultMinElo
		cfg.DefaultMaxElo = matching.DefaultMaxElo
	}

	s := &Service{
		store:  store,
		engine: matching.NewEngine(store, cfg.Engine),
		cfg:    cfg,
	}

	if cfg.CacheEntries > 0 {
		cache, err := lru.New[string, board.Position](cfg.CacheEntries)
		if err != nil {
			return nil, fmt.Errorf("failed to create FEN cache: %w", err)
		}
		s.fenCache = cache
	}

	if cfg.RecordSearches {
		if r, ok := store.(SearchRecorder); ok {
			s.recorder = r
		}
	}

	return s, nil
}

// NewRequest returns a request carrying the configured defaults
func (s *Service) NewRequest(color board.Color, pieces ...board.PieceKind) matching.Request {
	return matching.Request{
		Color:  color,
		Pieces: pieces,
		Limit:  s.cfg.DefaultLimit,
		MinElo: s.cfg.DefaultMinElo,
		MaxElo: s.cfg.DefaultMaxElo,
	}
}

// MaxLimit is the largest result limit a caller may ask for
func (s *Service) MaxLimit() int {
	return s.cfg.MaxLimit
}

// DecodePosition decodes a FEN string, serving repeats from the cache
func (s *Service) DecodePosition(fen string) (board.Position, error) {
	fen = strings.TrimSpace(fen)
	if s.fenCache != nil {
		if p, ok := s.fenCache.Get(fen); ok {
			return p, nil
		}
	}

	p, err := board.Decode(fen)
	if err != nil {
		return board.Position{}, err
	}

	if s.fenCache != nil {
		s.fenCache.Add(fen, p)
	}
	return p, nil
}

// FindSimilarByFEN decodes fen and searches for similar positions. A
// malformed FEN fails before the store is touched.
func (s *Service) FindSimilarByFEN(ctx context.Context, fen string, req matching.Request) (*matching.Report, error) {
	ref, err := s.DecodePosition(fen)
	if err != nil {
		return nil, err
	}

	if req.Limit > s.cfg.MaxLimit {
		return nil, &matching.InvalidRequestError{Field: "limit", Reason: fmt.Sprintf("must be at most %d", s.cfg.MaxLimit)}
	}

	start := time.Now()
	report, err := s.engine.Search(ctx, &ref, req)
	if err != nil {
		return nil, err
	}

	s.recordSearch(ref.FEN, req, report, time.Since(start))
	return report, nil
}

func (s *Service) recordSearch(fen string, req matching.Request, report *matching.Report, elapsed time.Duration) {
	if s.recorder == nil {
		return
	}

	err := s.recorder.RecordSearch(storage.SearchRecord{
		FEN:         fen,
		Color:       string(req.Color),
		Features:    strings.Join(req.FeatureKeys(), ","),
		Limit:       req.Limit,
		MinElo:      req.MinElo,
		MaxElo:      req.MaxElo,
		Candidates:  report.Candidates,
		Results:     len(report.Results),
		DurationMS:  elapsed.Milliseconds(),
		SearchedUTC: time.Now().UTC(),
	})
	if err != nil {
		log.Printf("Failed to record search: %v", err)
	}
}

// GetPosition returns a stored position
func (s *Service) GetPosition(ctx context.Context, id string) (*board.Position, error) {
	p, err := s.store.GetPosition(ctx, id)
	if err != nil {
		return nil, lookupError("get position", err)
	}
	return p, nil
}

// GetGame returns a stored game
func (s *Service) GetGame(ctx context.Context, id string) (*game.Game, error) {
	g, err := s.store.GetGame(ctx, id)
	if err != nil {
		return nil, lookupError("get game", err)
	}
	return g, nil
}

// lookupError reports read failures as store outages, not-found and
// cancellation pass through
func lookupError(op string, err error) error {
	if errors.Is(err, matching.ErrNotFound) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &matching.StoreUnavailableError{Op: op, Err: err}
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() core.Health {
	if s.store == nil {
		return core.HealthDisabled
	}
	if s.store.IsHealthy() {
		return core.HealthOK
	}
	return core.HealthDegraded
}

// Shutdown closes the store, waiting at most timeout
func (s *Service) Shutdown(timeout time.Duration) error {
	var errs []error

	if s.fenCache != nil {
		s.fenCache.Purge()
	}

	if s.store != nil {
		done := make(chan error, 1)
		go func() { done <- s.store.Close() }()

		select {
		case err := <-done:
			if err != nil {
				errs = append(errs, fmt.Errorf("storage: %w", err))
			}
		case <-time.After(timeout):
			errs = append(errs, errors.New("storage: shutdown timeout exceeded"))
		}
	}

	return errors.Join(errs...)
}
