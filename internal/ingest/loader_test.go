package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"chessmatch/internal/board"
	"chessmatch/internal/game"
	"chessmatch/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRecord = `{"gameMetadata":{"gameId":"g1","result":"1-0","whiteElo":1850,"blackElo":1790,"eco":"C20","whiteName":"alice","blackName":"bob"},"positions":[{"moveNumber":0,"fen":"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},{"moveNumber":1,"fen":"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"}]}`

func TestParseRecord(t *testing.T) {
	g, positions, err := ParseRecord([]byte(sampleRecord))
	require.NoError(t, err)

	assert.Equal(t, "g1", g.ID)
	assert.Equal(t, 1850, g.WhiteElo)
	assert.Equal(t, "alice", g.WhiteName)
	require.Len(t, positions, 2)
	assert.Equal(t, 1, positions[1].MoveNumber)
	assert.Equal(t, board.Square(20), positions[1].EnPassant)
	assert.Empty(t, positions[0].ID)
}

func TestParseRecordErrors(t *testing.T) {
	_, _, err := ParseRecord([]byte(`{"positions":[]}`))
	assert.Error(t, err)

	_, _, err = ParseRecord([]byte(`not json`))
	assert.Error(t, err)

	_, _, err = ParseRecord([]byte(`{"gameMetadata":{},"positions":[{"moveNumber":0,"fen":"8/8/8 w - - 0 1"}]}`))
	var malformed *board.MalformedInputError
	assert.ErrorAs(t, err, &malformed)
}

func TestLoadJSONL(t *testing.T) {
	store := memory.New()
	input := strings.Join([]string{
		sampleRecord,
		"",
		`{"gameMetadata":`,
		`{"gameMetadata":{"whiteElo":1500,"blackElo":1500},"positions":[{"moveNumber":0,"fen":"8/8/8/4P3/8/8/8/4K3 w - - 0 1"}]}`,
	}, "\n")

	stats, err := LoadJSONL(context.Background(), strings.NewReader(input), store)
	require.NoError(t, err)
	assert.Equal(t, Stats{Games: 2, Positions: 3, Skipped: 1}, stats)
	assert.Equal(t, 3, store.Count())

	g, err := store.GetGame(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, "C20", g.ECO)
}

type failingSaver struct{}

func (failingSaver) SaveGame(context.Context, *game.Game, []*board.Position) error {
	return errors.New("disk full")
}

func TestLoadJSONLStoreFailure(t *testing.T) {
	stats, err := LoadJSONL(context.Background(), strings.NewReader(sampleRecord), failingSaver{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
	assert.Zero(t, stats.Games)
}

func TestLoadJSONLCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadJSONL(ctx, strings.NewReader(sampleRecord), memory.New())
	assert.ErrorIs(t, err, context.Canceled)
}
