package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"chessmatch/internal/board"
	"chessmatch/internal/game"
	"chessmatch/internal/server/core"
	"chessmatch/internal/server/processor"
	"chessmatch/internal/server/service"
	"chessmatch/internal/storage/memory"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const singlePawnFEN = "8/8/8/4P3/8/8/8/4K3 w - - 0 1"

type fixture struct {
	app *fiber.App
	pos *board.Position
	g   *game.Game
}

func setupApp(t *testing.T, opts Options) fixture {
	t.Helper()

	store := memory.New()
	ctx := context.Background()

	g := &game.Game{ID: "lichess_abc123", Result: "1-0", WhiteElo: 1800, BlackElo: 1750, ECO: "C20"}
	p, err := board.Decode(singlePawnFEN)
	require.NoError(t, err)
	require.NoError(t, store.SaveGame(ctx, g, []*board.Position{&p}))

	other, err := board.Decode("8/8/8/3PP3/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err)
	require.NoError(t, store.SaveGame(ctx, &game.Game{ID: "lichess_def456", WhiteElo: 1600, BlackElo: 1650}, []*board.Position{&other}))

	svc, err := service.New(store, service.Config{MaxLimit: 100, CacheEntries: 16})
	require.NoError(t, err)
	proc := processor.New(svc, 2, 16)
	t.Cleanup(func() { proc.Close() })

	if opts.RateLimit == 0 {
		opts.RateLimit = 1000
	}
	return fixture{app: NewFiberApp(proc, svc, opts), pos: &p, g: g}
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decodeError(t *testing.T, data []byte) core.ErrorResponse {
	t.Helper()
	var e core.ErrorResponse
	require.NoError(t, json.Unmarshal(data, &e))
	return e
}

func TestHealth(t *testing.T) {
	f := setupApp(t, Options{})

	status, data := doJSON(t, f.app, "GET", "/health", "")
	require.Equal(t, fiber.StatusOK, status)

	var health core.HealthResponse
	require.NoError(t, json.Unmarshal(data, &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "ok", health.Storage)
}

func TestFindSimilarEndpoint(t *testing.T) {
	f := setupApp(t, Options{})

	body := `{"fen":"` + singlePawnFEN + `","request":{"color":"white","selectedPieces":["pawn"],"limit":5}}`
	status, data := doJSON(t, f.app, "POST", "/api/v1/positions/similar", body)
	require.Equal(t, fiber.StatusOK, status, string(data))

	var resp core.SimilarResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, f.pos.ID, resp.Results[0].PositionID)
	assert.Equal(t, "lichess_abc123", resp.Results[0].GameID)
	assert.Equal(t, 1.0, resp.Results[0].SimilarityScore)
	assert.Equal(t, 0.5, resp.Results[1].SimilarityScore)
	require.NotNil(t, resp.Results[0].Game)
	assert.Equal(t, "C20", resp.Results[0].Game.ECO)
	require.NotNil(t, resp.Results[0].Position)
	assert.Equal(t, singlePawnFEN, resp.Results[0].Position.FEN)
}

func TestFindSimilarEmptySelection(t *testing.T) {
	f := setupApp(t, Options{})

	body := `{"fen":"` + singlePawnFEN + `","request":{"color":"white"}}`
	status, data := doJSON(t, f.app, "POST", "/api/v1/positions/similar", body)
	require.Equal(t, fiber.StatusOK, status)

	var resp core.SimilarResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	require.Equal(t, 2, resp.Count)
	for _, r := range resp.Results {
		assert.Zero(t, r.SimilarityScore)
	}
}

func TestFindSimilarRejections(t *testing.T) {
	f := setupApp(t, Options{})

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed json", `{"fen":`, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"missing fen", `{"request":{"color":"white"}}`, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"missing color", `{"fen":"` + singlePawnFEN + `","request":{}}`, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"bad piece", `{"fen":"` + singlePawnFEN + `","request":{"color":"white","selectedPieces":["dragon"]}}`, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"limit too large", `{"fen":"` + singlePawnFEN + `","request":{"color":"white","limit":500}}`, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"malformed fen", `{"fen":"invalid fen string","request":{"color":"white"}}`, fiber.StatusBadRequest, core.ErrInvalidFEN},
		{"inverted band", `{"fen":"` + singlePawnFEN + `","request":{"color":"black","minElo":2000,"maxElo":1000}}`, fiber.StatusBadRequest, core.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, data := doJSON(t, f.app, "POST", "/api/v1/positions/similar", tt.body)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, decodeError(t, data).Code)
		})
	}
}

func TestContentType(t *testing.T) {
	f := setupApp(t, Options{})

	req := httptest.NewRequest("POST", "/api/v1/positions/decode", strings.NewReader("fen=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestDecodeEndpoint(t *testing.T) {
	f := setupApp(t, Options{})

	status, data := doJSON(t, f.app, "POST", "/api/v1/positions/decode", `{"fen":"`+board.StartingFEN+`"}`)
	require.Equal(t, fiber.StatusOK, status)

	var pos core.PositionResponse
	require.NoError(t, json.Unmarshal(data, &pos))
	assert.Equal(t, int64(0xFF00), pos.WhitePawns)
	assert.Equal(t, []int{0, 7}, pos.WhiteRooks)
	assert.Equal(t, []int{59}, pos.BlackQueens)
	assert.Nil(t, pos.EnPassantSquare)
	assert.Equal(t, 15, pos.CastlingRights)

	status, data = doJSON(t, f.app, "POST", "/api/v1/positions/decode", `{"fen":"8/8/8 w - - 0"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, core.ErrInvalidFEN, decodeError(t, data).Code)
}

func TestGetPositionEndpoint(t *testing.T) {
	f := setupApp(t, Options{})

	status, data := doJSON(t, f.app, "GET", "/api/v1/positions/"+f.pos.ID, "")
	require.Equal(t, fiber.StatusOK, status)
	var pos core.PositionResponse
	require.NoError(t, json.Unmarshal(data, &pos))
	assert.Equal(t, f.g.ID, pos.GameID)

	status, _ = doJSON(t, f.app, "GET", "/api/v1/positions/not-a-uuid", "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, data = doJSON(t, f.app, "GET", "/api/v1/positions/00000000-0000-4000-8000-000000000000", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, core.ErrNotFound, decodeError(t, data).Code)
}

func TestGetGameEndpoint(t *testing.T) {
	f := setupApp(t, Options{})

	status, data := doJSON(t, f.app, "GET", "/api/v1/games/lichess_abc123", "")
	require.Equal(t, fiber.StatusOK, status)
	var g core.GameResponse
	require.NoError(t, json.Unmarshal(data, &g))
	assert.Equal(t, 1800, g.WhiteElo)
	assert.Equal(t, "1-0", g.Result)

	status, _ = doJSON(t, f.app, "GET", "/api/v1/games/bad%20id", "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doJSON(t, f.app, "GET", "/api/v1/games/unknown", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestRateLimit(t *testing.T) {
	f := setupApp(t, Options{RateLimit: 1})

	status, _ := doJSON(t, f.app, "GET", "/api/v1/games/lichess_abc123", "")
	require.Equal(t, fiber.StatusOK, status)

	status, data := doJSON(t, f.app, "GET", "/api/v1/games/lichess_abc123", "")
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	assert.Equal(t, core.ErrRateLimitExceeded, decodeError(t, data).Code)

	// Health is outside the limited group
	status, _ = doJSON(t, f.app, "GET", "/health", "")
	assert.Equal(t, fiber.StatusOK, status)
}

func TestUnknownRoute(t *testing.T) {
	f := setupApp(t, Options{})

	status, data := doJSON(t, f.app, "GET", "/api/v1/nothing", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, core.ErrNotFound, decodeError(t, data).Code)
}
