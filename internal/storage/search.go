package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"
)

// SearchRecord represents a row in the search_log table
type SearchRecord struct {
	ID          int64     `db:"id"`
	FEN         string    `db:"fen"`
	Color       string    `db:"color"`
	Features    string    `db:"features"`
	Limit       int       `db:"result_limit"`
	MinElo      int       `db:"min_elo"`
	MaxElo      int       `db:"max_elo"`
	Candidates  int       `db:"candidates"`
	Results     int       `db:"results"`
	DurationMS  int64     `db:"duration_ms"`
	SearchedUTC time.Time `db:"searched_at_utc"`
}

// RecordSearch asynchronously appends a search to the log
func (s *Store) RecordSearch(record SearchRecord) error {
	if !s.healthStatus.Load() {
		return nil // Silently drop if degraded
	}

	select {
	case s.writeChan <- func(tx *sql.Tx) error {
		query := `INSERT INTO search_log (
			fen, color, features, result_limit, min_elo, max_elo,
			candidates, results, duration_ms, searched_at_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			record.FEN, record.Color, record.Features, record.Limit, record.MinElo, record.MaxElo,
			record.Candidates, record.Results, record.DurationMS, record.SearchedUTC,
		)
		return err
	}:
		return nil
	default:
		// Channel full, drop write
		log.Printf("Storage write queue full, dropping search record")
		return nil
	}
}

// QuerySearches returns the most recent logged searches, newest first
func (s *Store) QuerySearches(ctx context.Context, limit int) ([]SearchRecord, error) {
	query := `SELECT
		id, fen, color, features, result_limit, min_elo, max_elo,
		candidates, results, duration_ms, searched_at_utc
	FROM search_log ORDER BY searched_at_utc DESC, id DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var records []SearchRecord
	for rows.Next() {
		var r SearchRecord
		err := rows.Scan(
			&r.ID, &r.FEN, &r.Color, &r.Features, &r.Limit, &r.MinElo, &r.MaxElo,
			&r.Candidates, &r.Results, &r.DurationMS, &r.SearchedUTC,
		)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return records, nil
}
