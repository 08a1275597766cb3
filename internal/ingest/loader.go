// Package ingest loads game records with their positions into a store
package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"chessmatch/internal/board"
	"chessmatch/internal/game"
)

// Lines longer than this are rejected by the scanner
const maxLineSize = 4 << 20

// Saver persists a game and its positions as one unit
type Saver interface {
	SaveGame(ctx context.Context, g *game.Game, positions []*board.Position) error
}

// GameMetadata is the wire form of a game header
type GameMetadata struct {
	GameID      string `json:"gameId"`
	Result      string `json:"result"`
	WhiteElo    int    `json:"whiteElo"`
	BlackElo    int    `json:"blackElo"`
	GameType    string `json:"gameType"`
	Date        string `json:"date"`
	WhiteName   string `json:"whiteName"`
	BlackName   string `json:"blackName"`
	ECO         string `json:"eco"`
	TimeControl string `json:"timeControl"`
	Opening     string `json:"opening"`
	Site        string `json:"site"`
	PGN         string `json:"pgn"`
}

// PositionRecord is one ply of a game
type PositionRecord struct {
	MoveNumber int    `json:"moveNumber"`
	FEN        string `json:"fen"`
}

// GameRecord is one line of a load file
type GameRecord struct {
	GameMetadata *GameMetadata    `json:"gameMetadata"`
	Positions    []PositionRecord `json:"positions"`
}

// Stats summarizes a load run
type Stats struct {
	Games     int
	Positions int
	Skipped   int
}

// ParseRecord decodes a single JSON game record and every FEN it carries
func ParseRecord(data []byte) (*game.Game, []*board.Position, error) {
	var rec GameRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, nil, fmt.Errorf("invalid game record: %w", err)
	}
	if rec.GameMetadata == nil {
		return nil, nil, fmt.Errorf("game record has no gameMetadata")
	}

	m := rec.GameMetadata
	g := &game.Game{
		ID:          m.GameID,
		Result:      m.Result,
		WhiteElo:    m.WhiteElo,
		BlackElo:    m.BlackElo,
		GameType:    m.GameType,
		Date:        m.Date,
		WhiteName:   m.WhiteName,
		BlackName:   m.BlackName,
		ECO:         m.ECO,
		TimeControl: m.TimeControl,
		Opening:     m.Opening,
		Site:        m.Site,
		PGN:         m.PGN,
	}

	positions := make([]*board.Position, 0, len(rec.Positions))
	for i, pr := range rec.Positions {
		p, err := board.Decode(pr.FEN)
		if err != nil {
			return nil, nil, fmt.Errorf("position %d: %w", i, err)
		}
		p.MoveNumber = pr.MoveNumber
		positions = append(positions, &p)
	}

	return g, positions, nil
}

// LoadJSONL reads newline-delimited game records from r and saves each one.
// Malformed records are logged and skipped; a store failure aborts the load.
func LoadJSONL(ctx context.Context, r io.Reader, saver Saver) (Stats, error) {
	var stats Stats

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		g, positions, err := ParseRecord([]byte(text))
		if err != nil {
			log.Printf("Skipping line %d: %v", line, err)
			stats.Skipped++
			continue
		}

		if err := saver.SaveGame(ctx, g, positions); err != nil {
			return stats, fmt.Errorf("line %d: failed to save game: %w", line, err)
		}
		stats.Games++
		stats.Positions += len(positions)
	}

	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("failed to read input: %w", err)
	}
	return stats, nil
}
