// Package postgres implements the position store on PostgreSQL through a
// pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"chessmatch/internal/board"
	"chessmatch/internal/game"
	"chessmatch/internal/matching"
	"chessmatch/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store serves matcher reads and corpus loads from a pgx pool
type Store struct {
	pool         *pgxpool.Pool
	healthStatus atomic.Bool
}

var _ matching.Store = (*Store)(nil)

// Open connects a pool and verifies it with a ping
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}

	s := &Store{pool: pool}
	s.healthStatus.Store(true)
	return s, nil
}

// InitDB creates the schema if missing
func (s *Store) InitDB(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// IsHealthy returns the current health status
func (s *Store) IsHealthy() bool {
	return s.healthStatus.Load()
}

// Close releases all pooled connections
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) track(err error) error {
	if err == nil {
		if !s.healthStatus.Swap(true) {
			log.Printf("Postgres store recovered")
		}
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if s.healthStatus.Swap(false) {
		log.Printf("Postgres store degraded: %v", err)
	}
	return err
}

// QueryCandidates runs the plan as a single read
func (s *Store) QueryCandidates(ctx context.Context, plan matching.Plan, candidateCap, resultCap int) ([]matching.Candidate, error) {
	query, args := storage.BuildCandidateQuery(Dialect, plan, candidateCap, resultCap)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, s.track(fmt.Errorf("query failed: %w", err))
	}

	candidates, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (matching.Candidate, error) {
		var c matching.Candidate
		err := row.Scan(&c.PositionID, &c.GameID, &c.MoveNumber, &c.Score)
		return c, err
	})
	if err != nil {
		return nil, s.track(fmt.Errorf("scan failed: %w", err))
	}

	s.track(nil)
	return candidates, nil
}

// SaveGame inserts a game and its positions in one transaction
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

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		batch.Queue(`INSERT INTO games (`+gameColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
			g.ID, g.Result, g.WhiteElo, g.BlackElo, g.GameType, g.Date,
			g.WhiteName, g.BlackName, g.ECO, g.TimeControl, g.Site, g.Opening, g.PGN)

		for _, p := range positions {
			batch.Queue(`INSERT INTO positions (`+positionColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`,
				newPositionRow(p).values()...)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert game %s: %w", g.ID, err)
		}
		return nil
	})
}

// GetPosition retrieves one position by id
func (s *Store) GetPosition(ctx context.Context, id string) (*board.Position, error) {
	var r positionRow
	err := s.pool.QueryRow(ctx, `SELECT `+positionColumns+` FROM positions WHERE id = $1`, id).Scan(r.scanArgs()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, matching.ErrNotFound
	}
	if err != nil {
		return nil, s.track(fmt.Errorf("query failed: %w", err))
	}
	s.track(nil)
	return r.toPosition(), nil
}

// GetPositions retrieves the positions among ids, unknown ids are omitted
func (s *Store) GetPositions(ctx context.Context, ids []string) (map[string]*board.Position, error) {
	out := make(map[string]*board.Position, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := s.pool.Query(ctx, `SELECT `+positionColumns+` FROM positions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, s.track(fmt.Errorf("query failed: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var r positionRow
		if err := rows.Scan(r.scanArgs()...); err != nil {
			return nil, s.track(fmt.Errorf("scan failed: %w", err))
		}
		out[r.ID] = r.toPosition()
	}
	if err := rows.Err(); err != nil {
		return nil, s.track(fmt.Errorf("rows iteration failed: %w", err))
	}

	s.track(nil)
	return out, nil
}

// GetGame retrieves one game by id
func (s *Store) GetGame(ctx context.Context, id string) (*game.Game, error) {
	var g game.Game
	err := s.pool.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id).Scan(gameScanArgs(&g)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, matching.ErrNotFound
	}
	if err != nil {
		return nil, s.track(fmt.Errorf("query failed: %w", err))
	}
	s.track(nil)
	return &g, nil
}

// GetGames retrieves the games among ids, unknown ids are omitted
func (s *Store) GetGames(ctx context.Context, ids []string) (map[string]*game.Game, error) {
	out := make(map[string]*game.Game, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := s.pool.Query(ctx, `SELECT `+gameColumns+` FROM games WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, s.track(fmt.Errorf("query failed: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		g := &game.Game{}
		if err := rows.Scan(gameScanArgs(g)...); err != nil {
			return nil, s.track(fmt.Errorf("scan failed: %w", err))
		}
		out[g.ID] = g
	}
	if err := rows.Err(); err != nil {
		return nil, s.track(fmt.Errorf("rows iteration failed: %w", err))
	}

	s.track(nil)
	return out, nil
}

func gameScanArgs(g *game.Game) []any {
	return []any{
		&g.ID, &g.Result, &g.WhiteElo, &g.BlackElo, &g.GameType, &g.Date,
		&g.WhiteName, &g.BlackName, &g.ECO, &g.TimeControl, &g.Site, &g.Opening, &g.PGN,
	}
}
