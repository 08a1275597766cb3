package storage

import (
	"context"
	"database/sql"
	"fmt"

	"chessmatch/internal/board"
	"chessmatch/internal/game"
	"chessmatch/internal/matching"

	"github.com/google/uuid"
)

// SaveGame writes a game and all of its positions in one transaction so
// no position is visible before its game. Missing ids are generated.
func (s *Store) SaveGame(ctx context.Context, g *game.Game, positions []*board.Position) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	for _, p := range positions {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		p.GameID = g.ID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	gameQuery := `INSERT INTO games (` + gameColumns + `) VALUES (` + placeholders(13) + `)`
	if _, err := tx.ExecContext(ctx, gameQuery, newGameRecord(g).values()...); err != nil {
		return fmt.Errorf("failed to insert game %s: %w", g.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO positions (`+positionColumns+`) VALUES (`+placeholders(21)+`)`)
	if err != nil {
		return fmt.Errorf("failed to prepare position insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range positions {
		if _, err := stmt.ExecContext(ctx, newPositionRecord(p).values()...); err != nil {
			return fmt.Errorf("failed to insert position %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// GetGame retrieves one game by id
func (s *Store) GetGame(ctx context.Context, id string) (*game.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = ?`

	var r GameRecord
	err := s.db.QueryRowContext(ctx, query, id).Scan(r.scanArgs()...)
	if err == sql.ErrNoRows {
		return nil, matching.ErrNotFound
	}
	if err != nil {
		return nil, s.track(fmt.Errorf("query failed: %w", err))
	}

	s.track(nil)
	return r.toGame(), nil
}

// GetGames retrieves the games among ids, unknown ids are omitted
func (s *Store) GetGames(ctx context.Context, ids []string) (map[string]*game.Game, error) {
	out := make(map[string]*game.Game, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query := `SELECT ` + gameColumns + ` FROM games WHERE id IN (` + placeholders(len(ids)) + `)`

	rows, err := s.db.QueryContext(ctx, query, stringArgs(ids)...)
	if err != nil {
		return nil, s.track(fmt.Errorf("query failed: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var r GameRecord
		if err := rows.Scan(r.scanArgs()...); err != nil {
			return nil, s.track(fmt.Errorf("scan failed: %w", err))
		}
		out[r.ID] = r.toGame()
	}

	if err := rows.Err(); err != nil {
		return nil, s.track(fmt.Errorf("rows iteration failed: %w", err))
	}

	s.track(nil)
	return out, nil
}

// GameFilter narrows QueryGames; empty or "*" string fields match everything
// and zero rating bounds are ignored
type GameFilter struct {
	GameID string
	Player string
	MinElo int
	MaxElo int
}

// QueryGames retrieves games with optional filtering
func (s *Store) QueryGames(ctx context.Context, filter GameFilter) ([]GameRecord, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE 1=1`

	var args []interface{}

	if filter.GameID != "" && filter.GameID != "*" {
		query += " AND id = ?"
		args = append(args, filter.GameID)
	}

	if filter.Player != "" && filter.Player != "*" {
		query += " AND (white_name = ? OR black_name = ?)"
		args = append(args, filter.Player, filter.Player)
	}

	if filter.MinElo > 0 {
		query += " AND white_elo >= ? AND black_elo >= ?"
		args = append(args, filter.MinElo, filter.MinElo)
	}
	if filter.MaxElo > 0 {
		query += " AND white_elo <= ? AND black_elo <= ?"
		args = append(args, filter.MaxElo, filter.MaxElo)
	}

	query += " ORDER BY date DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var games []GameRecord
	for rows.Next() {
		var g GameRecord
		if err := rows.Scan(g.scanArgs()...); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return games, nil
}

// CountPositions returns the number of stored positions
func (s *Store) CountPositions(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM positions").Scan(&n); err != nil {
		return 0, fmt.Errorf("query failed: %w", err)
	}
	return n, nil
}
