package commands

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chessmatch/internal/board"
	"chessmatch/internal/client/display"
	"chessmatch/internal/client/session"
	"chessmatch/internal/game"
	serverhttp "chessmatch/internal/server/http"
	"chessmatch/internal/server/processor"
	"chessmatch/internal/server/service"
	"chessmatch/internal/storage/memory"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const singlePawnFEN = "8/8/8/4P3/8/8/8/4K3 w - - 0 1"

// fiberTransport serves client requests from an in-process fiber app
type fiberTransport struct {
	app *fiber.App
}

func (t fiberTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// fiber's test helper wants a server-style request
	r := httptest.NewRequest(req.Method, req.URL.RequestURI(), req.Body)
	r.Header = req.Header.Clone()
	r.ContentLength = req.ContentLength
	return t.app.Test(r, -1)
}

func setupREPL(t *testing.T) (*Registry, *session.Session, *bytes.Buffer) {
	t.Helper()
	display.DisableColors()

	store := memory.New()
	ctx := context.Background()
	for i, fen := range []string{singlePawnFEN, "8/8/8/3PP3/8/8/8/4K3 w - - 0 1"} {
		p, err := board.Decode(fen)
		require.NoError(t, err)
		g := &game.Game{ID: []string{"game-a", "game-b"}[i], WhiteElo: 1600, BlackElo: 1650, WhiteName: "alice", Result: "1-0"}
		require.NoError(t, store.SaveGame(ctx, g, []*board.Position{&p}))
	}

	svc, err := service.New(store, service.Config{MaxLimit: 50})
	require.NoError(t, err)
	proc := processor.New(svc, 1, 4)
	t.Cleanup(func() { proc.Close() })
	app := serverhttp.NewFiberApp(proc, svc, serverhttp.Options{RateLimit: 1000})

	s := session.New("http://chessmatch.test")
	s.Client.HTTPClient = &http.Client{Transport: fiberTransport{app: app}}
	s.Client.Out = io.Discard

	var out bytes.Buffer
	return NewRegistryWithOutput(s, &out), s, &out
}

func TestSettingsCommands(t *testing.T) {
	r, s, out := setupREPL(t)

	r.Execute("color black")
	assert.Equal(t, "black", s.Color)
	r.Execute("c w")
	assert.Equal(t, "white", s.Color)
	r.Execute("color green")
	assert.Contains(t, out.String(), "invalid color")

	r.Execute("pieces pawn,knight pawn")
	assert.Equal(t, []string{"pawn", "knight"}, s.Pieces)
	r.Execute("pieces dragon")
	assert.Contains(t, out.String(), "unknown piece: dragon")
	assert.Equal(t, []string{"pawn", "knight"}, s.Pieces)
	r.Execute("pieces none")
	assert.Empty(t, s.Pieces)

	r.Execute("limit 5")
	assert.Equal(t, 5, s.Limit)
	r.Execute("limit -1")
	assert.Equal(t, 5, s.Limit)

	r.Execute("elo 1200 1800")
	require.NotNil(t, s.MinElo)
	assert.Equal(t, 1200, *s.MinElo)
	assert.Equal(t, 1800, *s.MaxElo)
	r.Execute("elo 1800 1200")
	assert.Contains(t, out.String(), "exceeds")
	r.Execute("elo default")
	assert.Nil(t, s.MinElo)

	req := s.SearchRequest(singlePawnFEN)
	assert.Equal(t, "white", req.Request.Color)
	assert.Equal(t, 5, req.Request.Limit)
}

func TestSearchAndInspect(t *testing.T) {
	r, s, out := setupREPL(t)

	r.Execute("pieces pawn")
	out.Reset()
	r.Execute("search " + singlePawnFEN)
	require.Len(t, s.LastResults, 2)
	assert.Contains(t, out.String(), "1.000")
	assert.Contains(t, out.String(), "game-a")
	assert.Contains(t, out.String(), "2 result(s)")

	out.Reset()
	r.Execute("position 1")
	assert.Contains(t, out.String(), s.LastResults[0])
	assert.Contains(t, out.String(), "Pawns")
	assert.Contains(t, out.String(), "e5")

	out.Reset()
	r.Execute("position 9")
	assert.Contains(t, out.String(), "out of range")

	out.Reset()
	r.Execute("game game-b")
	assert.Contains(t, out.String(), "alice (1600)")
}

func TestSearchErrorsReported(t *testing.T) {
	r, _, out := setupREPL(t)

	r.Execute("search not a fen")
	assert.Contains(t, out.String(), "INVALID_FEN")

	out.Reset()
	r.Execute("game missing-game")
	assert.Contains(t, out.String(), "404")
}

func TestDecodeAndHealth(t *testing.T) {
	r, _, out := setupREPL(t)

	r.Execute("decode " + board.StartingFEN)
	text := out.String()
	assert.Contains(t, text, "Castling: KQkq")
	assert.Contains(t, text, "En passant: -")
	assert.Contains(t, text, "a2 b2 c2 d2 e2 f2 g2 h2")

	out.Reset()
	r.Execute("health")
	assert.Contains(t, out.String(), "Storage: ok")
}

func TestHelpAndUnknown(t *testing.T) {
	r, s, out := setupREPL(t)

	r.Execute("help")
	for _, name := range []string{"search", "decode", "position", "game", "color", "pieces", "limit", "elo", "health", "url"} {
		assert.Contains(t, out.String(), name)
	}

	out.Reset()
	r.Execute("help search")
	assert.Contains(t, out.String(), "Usage: search <fen>")

	out.Reset()
	r.Execute("bogus")
	assert.Contains(t, out.String(), "Unknown command")

	r.Execute("url localhost:9999")
	assert.Equal(t, "http://localhost:9999", s.APIBaseURL)
	assert.Equal(t, "http://localhost:9999", s.Client.BaseURL)
	assert.True(t, strings.HasPrefix(s.GetAPIBaseURL(), "http://"))
}
