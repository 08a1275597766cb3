package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"chessmatch/internal/board"
	"chessmatch/internal/game"
	"chessmatch/internal/matching"
	"chessmatch/internal/server/core"
	"chessmatch/internal/storage"
	"chessmatch/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const singlePawnFEN = "8/8/8/4P3/8/8/8/4K3 w - - 0 1"

// countingStore records store traffic and optionally captures search logs
type countingStore struct {
	*memory.Store
	queries  atomic.Int32
	healthy  atomic.Bool
	recorded []storage.SearchRecord
}

func newCountingStore() *countingStore {
	s := &countingStore{Store: memory.New()}
	s.healthy.Store(true)
	return s
}

func (s *countingStore) QueryCandidates(ctx context.Context, plan matching.Plan, candidateCap, resultCap int) ([]matching.Candidate, error) {
	s.queries.Add(1)
	return s.Store.QueryCandidates(ctx, plan, candidateCap, resultCap)
}

func (s *countingStore) IsHealthy() bool { return s.healthy.Load() }

func (s *countingStore) RecordSearch(r storage.SearchRecord) error {
	s.recorded = append(s.recorded, r)
	return nil
}

func seed(t *testing.T, s *countingStore) {
	t.Helper()
	for i, fen := range []string{singlePawnFEN, board.StartingFEN, "8/8/8/3PP3/8/8/8/4K3 w - - 0 1"} {
		p, err := board.Decode(fen)
		require.NoError(t, err)
		g := &game.Game{WhiteElo: 1500 + i, BlackElo: 1500}
		require.NoError(t, s.SaveGame(context.Background(), g, []*board.Position{&p}))
	}
}

func TestFindSimilarByFEN(t *testing.T) {
	store := newCountingStore()
	seed(t, store)

	svc, err := New(store, Config{CacheEntries: 8, RecordSearches: true})
	require.NoError(t, err)

	req := svc.NewRequest(board.ColorWhite, board.Pawn)
	req.Limit = 5

	report, err := svc.FindSimilarByFEN(context.Background(), singlePawnFEN, req)
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	assert.Equal(t, 1.0, report.Results[0].Score)
	assert.Equal(t, 0.5, report.Results[1].Score)

	require.Len(t, store.recorded, 1)
	assert.Equal(t, "whitePawn", store.recorded[0].Features)
	assert.Equal(t, 2, store.recorded[0].Results)
	assert.Equal(t, singlePawnFEN, store.recorded[0].FEN)
}

func TestMalformedFENNeverReachesStore(t *testing.T) {
	store := newCountingStore()
	svc, err := New(store, Config{})
	require.NoError(t, err)

	_, err = svc.FindSimilarByFEN(context.Background(), "invalid fen string", svc.NewRequest(board.ColorWhite))

	var malformed *board.MalformedInputError
	assert.ErrorAs(t, err, &malformed)
	assert.Zero(t, store.queries.Load())
}

func TestLimitAboveMaximum(t *testing.T) {
	store := newCountingStore()
	svc, err := New(store, Config{DefaultLimit: 10, MaxLimit: 50})
	require.NoError(t, err)

	req := svc.NewRequest(board.ColorBlack)
	assert.Equal(t, 10, req.Limit)
	req.Limit = 51

	_, err = svc.FindSimilarByFEN(context.Background(), board.StartingFEN, req)
	var invalid *matching.InvalidRequestError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "limit", invalid.Field)
	assert.Zero(t, store.queries.Load())
}

func TestNewRequestDefaults(t *testing.T) {
	svc, err := New(newCountingStore(), Config{})
	require.NoError(t, err)

	req := svc.NewRequest(board.ColorWhite, board.Knight)
	assert.Equal(t, matching.DefaultLimit, req.Limit)
	assert.Equal(t, matching.DefaultMinElo, req.MinElo)
	assert.Equal(t, matching.DefaultMaxElo, req.MaxElo)
	assert.Equal(t, matching.DefaultLimit, svc.MaxLimit())
}

func TestDecodePositionCache(t *testing.T) {
	svc, err := New(newCountingStore(), Config{CacheEntries: 2})
	require.NoError(t, err)

	first, err := svc.DecodePosition(board.StartingFEN)
	require.NoError(t, err)
	assert.Equal(t, 1, svc.fenCache.Len())

	second, err := svc.DecodePosition("  " + board.StartingFEN + " ")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, svc.fenCache.Len())

	_, err = svc.DecodePosition("not a fen")
	assert.Error(t, err)
	assert.Equal(t, 1, svc.fenCache.Len(), "failures are not cached")
}

func TestDecodeWithoutCache(t *testing.T) {
	svc, err := New(newCountingStore(), Config{})
	require.NoError(t, err)
	assert.Nil(t, svc.fenCache)

	p, err := svc.DecodePosition(singlePawnFEN)
	require.NoError(t, err)
	assert.Equal(t, 2, p.PieceCount())
}

func TestGetStorageHealth(t *testing.T) {
	store := newCountingStore()
	svc, err := New(store, Config{})
	require.NoError(t, err)

	assert.Equal(t, core.HealthOK, svc.GetStorageHealth())
	store.healthy.Store(false)
	assert.Equal(t, core.HealthDegraded, svc.GetStorageHealth())
	assert.Equal(t, "degraded", svc.GetStorageHealth().String())
}

func TestGetters(t *testing.T) {
	store := newCountingStore()
	seed(t, store)
	svc, err := New(store, Config{})
	require.NoError(t, err)

	_, err = svc.GetPosition(context.Background(), "missing")
	assert.True(t, errors.Is(err, matching.ErrNotFound))
	_, err = svc.GetGame(context.Background(), "missing")
	assert.True(t, errors.Is(err, matching.ErrNotFound))
}

// brokenStore fails single-row reads as a dropped connection would
type brokenStore struct {
	*countingStore
	err error
}

func (s brokenStore) GetPosition(context.Context, string) (*board.Position, error) {
	return nil, s.err
}

func (s brokenStore) GetGame(context.Context, string) (*game.Game, error) {
	return nil, s.err
}

func TestGettersReportStoreFailures(t *testing.T) {
	boom := errors.New("database is locked")
	svc, err := New(brokenStore{countingStore: newCountingStore(), err: boom}, Config{})
	require.NoError(t, err)

	_, err = svc.GetPosition(context.Background(), "p1")
	var serr *matching.StoreUnavailableError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "get position", serr.Op)
	assert.ErrorIs(t, err, boom)

	_, err = svc.GetGame(context.Background(), "g1")
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "get game", serr.Op)

	cancelled := brokenStore{countingStore: newCountingStore(), err: context.Canceled}
	svc, err = New(cancelled, Config{})
	require.NoError(t, err)
	_, err = svc.GetGame(context.Background(), "g1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.As(err, &serr))
}

func TestShutdown(t *testing.T) {
	svc, err := New(newCountingStore(), Config{CacheEntries: 4})
	require.NoError(t, err)
	assert.NoError(t, svc.Shutdown(time.Second))
}
