package matching

import (
	"context"
	"errors"
	"log"
	"sort"

	"chessmatch/internal/board"
	"chessmatch/internal/game"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultCandidateCap    = 50000
	DefaultOverfetchFactor = 10
)

// Config bounds the work done per query
type Config struct {
	CandidateCap    int
	OverfetchFactor int
}

// Result is one ranked hit with its hydrated records
type Result struct {
	PositionID string
	GameID     string
	MoveNumber int
	Score      float64
	Position   *board.Position
	Game       *game.Game
}

// Report is the outcome of one search
type Report struct {
	Results    []Result
	Candidates int // raw hits before dedup
	Dropped    int // hits lost to missing rows
}

// Engine plans, executes, ranks and enriches similarity queries.
// It holds no per-query state and is safe for concurrent use.
type Engine struct {
	store Store
	cfg   Config
}

// NewEngine creates an engine over store, zero config values take the defaults
func NewEngine(store Store, cfg Config) *Engine {
	if cfg.CandidateCap <= 0 {
		cfg.CandidateCap = DefaultCandidateCap
	}
	if cfg.OverfetchFactor <= 0 {
		cfg.OverfetchFactor = DefaultOverfetchFactor
	}
	return &Engine{store: store, cfg: cfg}
}

// FindSimilar returns positions similar to ref, at most one per game,
// ordered by descending score
func (e *Engine) FindSimilar(ctx context.Context, ref *board.Position, req Request) ([]Result, error) {
	report, err := e.Search(ctx, ref, req)
	if err != nil {
		return nil, err
	}
	return report.Results, nil
}

// Search is FindSimilar with hit accounting
func (e *Engine) Search(ctx context.Context, ref *board.Position, req Request) (*Report, error) {
	if ref == nil {
		return nil, &InvalidRequestError{Field: "reference", Reason: "position is required"}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	plan := BuildPlan(ref, req)

	hits, err := e.Execute(ctx, plan)
	if err != nil {
		return nil, err
	}

	ranked := Dedup(hits, req.Limit)

	results, err := e.Enrich(ctx, ranked)
	if err != nil {
		return nil, err
	}

	return &Report{
		Results:    results,
		Candidates: len(hits),
		Dropped:    len(ranked) - len(results),
	}, nil
}

// Execute runs the plan against the store with the configured candidate cap
// and a result window of limit times the overfetch factor
func (e *Engine) Execute(ctx context.Context, plan Plan) ([]Candidate, error) {
	resultCap := plan.Limit * e.cfg.OverfetchFactor
	hits, err := e.store.QueryCandidates(ctx, plan, e.cfg.CandidateCap, resultCap)
	if err != nil {
		return nil, storeError("query candidates", err)
	}
	return hits, nil
}

// Dedup keeps the best hit per game in descending score order and stops
// after limit games. No backfill happens when fewer games are present.
func Dedup(hits []Candidate, limit int) []Candidate {
	if limit <= 0 || len(hits) == 0 {
		return nil
	}

	sorted := make([]Candidate, len(hits))
	copy(sorted, hits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	seen := make(map[string]struct{}, limit)
	out := make([]Candidate, 0, min(limit, len(sorted)))
	for _, h := range sorted {
		if _, dup := seen[h.GameID]; dup {
			continue
		}
		seen[h.GameID] = struct{}{}
		out = append(out, h)
		if len(out) == limit {
			break
		}
	}
	return out
}

// Enrich attaches the full position and game to each hit, keeping order.
// Hits whose rows are missing are logged and dropped.
func (e *Engine) Enrich(ctx context.Context, hits []Candidate) ([]Result, error) {
	if len(hits) == 0 {
		return []Result{}, nil
	}

	positionIDs := make([]string, 0, len(hits))
	gameIDs := make([]string, 0, len(hits))
	for _, h := range hits {
		positionIDs = append(positionIDs, h.PositionID)
		gameIDs = append(gameIDs, h.GameID)
	}

	var (
		positions map[string]*board.Position
		games     map[string]*game.Game
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		positions, err = e.store.GetPositions(gctx, positionIDs)
		return err
	})
	g.Go(func() error {
		var err error
		games, err = e.store.GetGames(gctx, gameIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeError("enrich", err)
	}

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		pos, ok := positions[h.PositionID]
		if !ok {
			log.Printf("Dropping result: %v", &DataIntegrityError{PositionID: h.PositionID, GameID: h.GameID, Missing: "position"})
			continue
		}
		gm, ok := games[h.GameID]
		if !ok {
			log.Printf("Dropping result: %v", &DataIntegrityError{PositionID: h.PositionID, GameID: h.GameID, Missing: "game"})
			continue
		}
		results = append(results, Result{
			PositionID: h.PositionID,
			GameID:     h.GameID,
			MoveNumber: h.MoveNumber,
			Score:      h.Score,
			Position:   pos,
			Game:       gm,
		})
	}

	return results, nil
}

// storeError wraps store failures, cancellation passes through unchanged
func storeError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &StoreUnavailableError{Op: op, Err: err}
}
