// Package memory provides an in-process position store that evaluates
// similarity plans with a linear scan. It backs tests and small corpora.
package memory

import (
	"container/heap"
	"context"
	"fmt"
	"sync"

	"chessmatch/internal/board"
	"chessmatch/internal/game"
	"chessmatch/internal/matching"

	"github.com/google/uuid"
)

// Store keeps games and positions in insertion order
type Store struct {
	mu        sync.RWMutex
	games     map[string]*game.Game
	positions []*board.Position
	byID      map[string]*board.Position
}

// New creates an empty store
func New() *Store {
	return &Store{
		games: make(map[string]*game.Game),
		byID:  make(map[string]*board.Position),
	}
}

// SaveGame stores a game and its positions as one unit.
// Missing ids are generated and positions are linked to the game.
func (s *Store) SaveGame(ctx context.Context, g *game.Game, positions []*board.Position) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if _, exists := s.games[g.ID]; exists {
		return fmt.Errorf("game already exists: %s", g.ID)
	}
	for _, p := range positions {
		if p.ID != "" {
			if _, exists := s.byID[p.ID]; exists {
				return fmt.Errorf("position already exists: %s", p.ID)
			}
		}
	}

	gc := *g
	s.games[g.ID] = &gc
	for _, p := range positions {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		p.GameID = g.ID
		pc := *p
		s.positions = append(s.positions, &pc)
		s.byID[p.ID] = &pc
	}
	return nil
}

// Count returns the number of stored positions
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.positions)
}

// IsHealthy always reports true
func (s *Store) IsHealthy() bool {
	return true
}

// Close is a no-op, the corpus lives only as long as the process
func (s *Store) Close() error {
	return nil
}

// QueryCandidates scans positions in insertion order, keeps the first
// candidateCap that pass the prefilters and returns the resultCap best
func (s *Store) QueryCandidates(ctx context.Context, plan matching.Plan, candidateCap, resultCap int) ([]matching.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if resultCap <= 0 {
		return []matching.Candidate{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	h := &candidateHeap{}
	heap.Init(h)

	admitted := 0
	for _, p := range s.positions {
		if admitted >= candidateCap {
			break
		}
		g, ok := s.games[p.GameID]
		if !ok || !plan.Matches(p, g) {
			continue
		}

		item := rankedCandidate{
			Candidate: matching.Candidate{
				PositionID: p.ID,
				GameID:     p.GameID,
				MoveNumber: p.MoveNumber,
				Score:      plan.Score(p),
			},
			seq: admitted,
		}
		admitted++

		if h.Len() < resultCap {
			heap.Push(h, item)
		} else if h.less(h.items[0], item) {
			heap.Pop(h)
			heap.Push(h, item)
		}
	}

	results := make([]matching.Candidate, h.Len())
	for i := len(results) - 1; i >= 0; i-- {
		results[i] = heap.Pop(h).(rankedCandidate).Candidate
	}
	return results, nil
}

// GetPosition returns a copy of the position with the given id
func (s *Store) GetPosition(ctx context.Context, id string) (*board.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, matching.ErrNotFound
	}
	pc := *p
	return &pc, nil
}

// GetGame returns a copy of the game with the given id
func (s *Store) GetGame(ctx context.Context, id string) (*game.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[id]
	if !ok {
		return nil, matching.ErrNotFound
	}
	gc := *g
	return &gc, nil
}

// GetPositions returns the known positions among ids
func (s *Store) GetPositions(ctx context.Context, ids []string) (map[string]*board.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*board.Position, len(ids))
	for _, id := range ids {
		if p, ok := s.byID[id]; ok {
			pc := *p
			out[id] = &pc
		}
	}
	return out, nil
}

// GetGames returns the known games among ids
func (s *Store) GetGames(ctx context.Context, ids []string) (map[string]*game.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*game.Game, len(ids))
	for _, id := range ids {
		if g, ok := s.games[id]; ok {
			gc := *g
			out[id] = &gc
		}
	}
	return out, nil
}

type rankedCandidate struct {
	matching.Candidate
	seq int
}

// candidateHeap is a min-heap on score; among equal scores the later
// admitted candidate is smaller so earlier rows win ties
type candidateHeap struct {
	items []rankedCandidate
}

func (h *candidateHeap) less(a, b rankedCandidate) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.seq > b.seq
}

func (h *candidateHeap) Len() int           { return len(h.items) }
func (h *candidateHeap) Less(i, j int) bool { return h.less(h.items[i], h.items[j]) }
func (h *candidateHeap) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *candidateHeap) Push(x any) {
	h.items = append(h.items, x.(rankedCandidate))
}

func (h *candidateHeap) Pop() any {
	old := h.items
	n := len(old)
	x := old[n-1]
	h.items = old[:n-1]
	return x
}
