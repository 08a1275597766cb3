package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"chessmatch/internal/board"
	"chessmatch/internal/matching"
)

// QueryCandidates runs the plan as a single read
func (s *Store) QueryCandidates(ctx context.Context, plan matching.Plan, candidateCap, resultCap int) ([]matching.Candidate, error) {
	query, args := BuildCandidateQuery(SQLiteDialect, plan, candidateCap, resultCap)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.track(fmt.Errorf("query failed: %w", err))
	}
	defer rows.Close()

	candidates := make([]matching.Candidate, 0, resultCap)
	for rows.Next() {
		var c matching.Candidate
		if err := rows.Scan(&c.PositionID, &c.GameID, &c.MoveNumber, &c.Score); err != nil {
			return nil, s.track(fmt.Errorf("scan failed: %w", err))
		}
		candidates = append(candidates, c)
	}

	if err := rows.Err(); err != nil {
		return nil, s.track(fmt.Errorf("rows iteration failed: %w", err))
	}

	s.track(nil)
	return candidates, nil
}

// GetPosition retrieves one position by id
func (s *Store) GetPosition(ctx context.Context, id string) (*board.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM positions WHERE id = ?`

	var r PositionRecord
	err := s.db.QueryRowContext(ctx, query, id).Scan(r.scanArgs()...)
	if err == sql.ErrNoRows {
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

	query := `SELECT ` + positionColumns + ` FROM positions WHERE id IN (` + placeholders(len(ids)) + `)`

	rows, err := s.db.QueryContext(ctx, query, stringArgs(ids)...)
	if err != nil {
		return nil, s.track(fmt.Errorf("query failed: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var r PositionRecord
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

// GamePositions lists the positions of one game in move order
func (s *Store) GamePositions(ctx context.Context, gameID string) ([]*board.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM positions WHERE game_id = ? ORDER BY move_number`

	rows, err := s.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, s.track(fmt.Errorf("query failed: %w", err))
	}
	defer rows.Close()

	var positions []*board.Position
	for rows.Next() {
		var r PositionRecord
		if err := rows.Scan(r.scanArgs()...); err != nil {
			return nil, s.track(fmt.Errorf("scan failed: %w", err))
		}
		positions = append(positions, r.toPosition())
	}

	if err := rows.Err(); err != nil {
		return nil, s.track(fmt.Errorf("rows iteration failed: %w", err))
	}

	return positions, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func stringArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
