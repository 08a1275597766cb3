package matching_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"chessmatch/internal/board"
	"chessmatch/internal/game"
	"chessmatch/internal/matching"
	"chessmatch/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const singlePawnFEN = "8/8/8/4P3/8/8/8/4K3 w - - 0 1"

// seedCorpus loads games whose positions move a white pawn around e5
func seedCorpus(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.New()
	ctx := context.Background()

	corpus := []struct {
		elo  int
		fens []string
	}{
		{1500, []string{singlePawnFEN, "8/8/8/3PP3/8/8/8/4K3 w - - 0 2"}},
		{1600, []string{"8/8/8/3PP3/8/8/8/4K3 w - - 0 1", "8/8/8/2PPP3/8/8/8/4K3 w - - 0 2"}},
		{1700, []string{"8/8/8/8/4P3/8/8/4K3 w - - 0 1"}},
		{1800, []string{"8/8/8/4PP2/8/8/8/4K3 w - - 0 1"}},
		{2600, []string{singlePawnFEN}},
	}

	for i, c := range corpus {
		g := &game.Game{
			ID:        fmt.Sprintf("game-%d", i),
			WhiteElo:  c.elo,
			BlackElo:  c.elo,
			WhiteName: fmt.Sprintf("white-%d", i),
		}
		var positions []*board.Position
		for ply, fen := range c.fens {
			p, err := board.Decode(fen)
			require.NoError(t, err)
			p.ID = fmt.Sprintf("pos-%d-%d", i, ply)
			p.MoveNumber = ply + 1
			positions = append(positions, &p)
		}
		require.NoError(t, store.SaveGame(ctx, g, positions))
	}
	return store
}

func TestFindSimilarSinglePawn(t *testing.T) {
	store := seedCorpus(t)
	engine := matching.NewEngine(store, matching.Config{})

	ref, err := board.Decode(singlePawnFEN)
	require.NoError(t, err)

	req := matching.NewRequest(board.ColorWhite, board.Pawn)
	req.Limit = 5

	results, err := engine.FindSimilar(context.Background(), &ref, req)
	require.NoError(t, err)

	// game-2 has no pawn on e5 and game-4 is outside the rating band
	require.Len(t, results, 3)
	assert.Equal(t, "pos-0-0", results[0].PositionID)
	assert.Equal(t, 1.0, results[0].Score)
	assert.Equal(t, "pos-1-0", results[1].PositionID)
	assert.InDelta(t, 0.5, results[1].Score, 1e-9)
	assert.Equal(t, "pos-3-0", results[2].PositionID)
	assert.InDelta(t, 0.5, results[2].Score, 1e-9)

	seen := map[string]bool{}
	for i, r := range results {
		assert.False(t, seen[r.GameID])
		seen[r.GameID] = true
		require.NotNil(t, r.Position)
		require.NotNil(t, r.Game)
		assert.Equal(t, r.GameID, r.Game.ID)
		assert.Equal(t, r.PositionID, r.Position.ID)
		if i > 0 {
			assert.GreaterOrEqual(t, results[i-1].Score, r.Score)
		}
	}
}

func TestFindSimilarEmptySelection(t *testing.T) {
	store := seedCorpus(t)
	engine := matching.NewEngine(store, matching.Config{})

	ref, err := board.Decode(singlePawnFEN)
	require.NoError(t, err)

	results, err := engine.FindSimilar(context.Background(), &ref, matching.NewRequest(board.ColorWhite))
	require.NoError(t, err)

	require.Len(t, results, 4)
	for _, r := range results {
		assert.Equal(t, 0.0, r.Score)
	}
}

func TestFindSimilarRatingBandExcludesAll(t *testing.T) {
	store := seedCorpus(t)
	engine := matching.NewEngine(store, matching.Config{})

	ref, err := board.Decode(singlePawnFEN)
	require.NoError(t, err)

	req := matching.NewRequest(board.ColorWhite, board.Pawn)
	req.MinElo, req.MaxElo = 3000, 3500

	results, err := engine.FindSimilar(context.Background(), &ref, req)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindSimilarInvalidRequest(t *testing.T) {
	engine := matching.NewEngine(memory.New(), matching.Config{})
	ref := board.NewPosition()

	req := matching.NewRequest(board.ColorWhite)
	req.Limit = 0

	_, err := engine.FindSimilar(context.Background(), &ref, req)
	var ierr *matching.InvalidRequestError
	assert.ErrorAs(t, err, &ierr)
}

func TestFindSimilarWithoutReference(t *testing.T) {
	spy := &spyStore{Store: seedCorpus(t)}
	engine := matching.NewEngine(spy, matching.Config{})

	req := matching.NewRequest(board.ColorWhite, board.Pawn, board.King)
	_, err := engine.FindSimilar(context.Background(), nil, req)
	var ierr *matching.InvalidRequestError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "reference", ierr.Field)
	assert.Zero(t, spy.resultCap, "store must not be queried")
}

func TestCandidateCapAndOverfetch(t *testing.T) {
	store := seedCorpus(t)
	spy := &spyStore{Store: store}
	engine := matching.NewEngine(spy, matching.Config{CandidateCap: 2, OverfetchFactor: 3})

	ref, err := board.Decode(singlePawnFEN)
	require.NoError(t, err)

	req := matching.NewRequest(board.ColorWhite)
	req.Limit = 4

	report, err := engine.Search(context.Background(), &ref, req)
	require.NoError(t, err)

	assert.Equal(t, 2, spy.candidateCap)
	assert.Equal(t, 12, spy.resultCap)
	// the first two admitted rows both belong to game-0
	assert.Equal(t, 2, report.Candidates)
	assert.Len(t, report.Results, 1)
}

func TestEnrichDropsMissingRows(t *testing.T) {
	store := seedCorpus(t)
	engine := matching.NewEngine(store, matching.Config{})

	hits := []matching.Candidate{
		{PositionID: "pos-1-0", GameID: "game-1", Score: 0.9},
		{PositionID: "ghost", GameID: "game-0", Score: 0.8},
		{PositionID: "pos-3-0", GameID: "game-9", Score: 0.7},
		{PositionID: "pos-0-0", GameID: "game-0", Score: 0.6},
	}

	results, err := engine.Enrich(context.Background(), hits)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "pos-1-0", results[0].PositionID)
	assert.Equal(t, "pos-0-0", results[1].PositionID)
}

func TestStoreFailuresSurface(t *testing.T) {
	boom := errors.New("connection refused")
	ref, err := board.Decode(singlePawnFEN)
	require.NoError(t, err)

	t.Run("query", func(t *testing.T) {
		engine := matching.NewEngine(&spyStore{Store: memory.New(), queryErr: boom}, matching.Config{})
		_, err := engine.FindSimilar(context.Background(), &ref, matching.NewRequest(board.ColorWhite))
		var serr *matching.StoreUnavailableError
		require.ErrorAs(t, err, &serr)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("enrich", func(t *testing.T) {
		engine := matching.NewEngine(&spyStore{Store: seedCorpus(t), batchErr: boom}, matching.Config{})
		_, err := engine.FindSimilar(context.Background(), &ref, matching.NewRequest(board.ColorWhite))
		var serr *matching.StoreUnavailableError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "enrich", serr.Op)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		engine := matching.NewEngine(seedCorpus(t), matching.Config{})
		_, err := engine.FindSimilar(ctx, &ref, matching.NewRequest(board.ColorWhite))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

type spyStore struct {
	*memory.Store
	queryErr     error
	batchErr     error
	candidateCap int
	resultCap    int
}

func (s *spyStore) QueryCandidates(ctx context.Context, plan matching.Plan, candidateCap, resultCap int) ([]matching.Candidate, error) {
	s.candidateCap, s.resultCap = candidateCap, resultCap
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.Store.QueryCandidates(ctx, plan, candidateCap, resultCap)
}

func (s *spyStore) GetGames(ctx context.Context, ids []string) (map[string]*game.Game, error) {
	if s.batchErr != nil {
		return nil, s.batchErr
	}
	return s.Store.GetGames(ctx, ids)
}
