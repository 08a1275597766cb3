package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

const (
	// CurrentSchemaVersion tracks the database schema version
	CurrentSchemaVersion = "1.2.0"
)

// Migration represents a database schema migration
type Migration struct {
	Version string
	Up      string
	Down    string
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		Up:      migrationV1Up,
		Down:    migrationV1Down,
	},
	{
		Version: "1.1.0",
		Up:      migrationV11Up,
		Down:    migrationV11Down,
	},
	{
		Version: "1.2.0",
		Up:      migrationV12Up,
		Down:    migrationV12Down,
	},
}

const migrationV1Up = `
CREATE TABLE IF NOT EXISTS schema_version (
	version TEXT PRIMARY KEY,
	applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS games (
	id TEXT PRIMARY KEY,
	result TEXT NOT NULL DEFAULT '',
	white_elo INTEGER NOT NULL,
	black_elo INTEGER NOT NULL,
	game_type TEXT NOT NULL DEFAULT '',
	date TEXT NOT NULL DEFAULT '',
	white_name TEXT NOT NULL DEFAULT '',
	black_name TEXT NOT NULL DEFAULT '',
	eco TEXT NOT NULL DEFAULT '',
	time_control TEXT NOT NULL DEFAULT '',
	site TEXT NOT NULL DEFAULT '',
	opening TEXT NOT NULL DEFAULT '',
	pgn TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS positions (
	id TEXT PRIMARY KEY,
	game_id TEXT NOT NULL,
	move_number INTEGER NOT NULL,
	white_king INTEGER CHECK(white_king BETWEEN 0 AND 63),
	black_king INTEGER CHECK(black_king BETWEEN 0 AND 63),
	white_queens INTEGER NOT NULL DEFAULT 0,
	white_rooks INTEGER NOT NULL DEFAULT 0,
	white_bishops INTEGER NOT NULL DEFAULT 0,
	white_knights INTEGER NOT NULL DEFAULT 0,
	black_queens INTEGER NOT NULL DEFAULT 0,
	black_rooks INTEGER NOT NULL DEFAULT 0,
	black_bishops INTEGER NOT NULL DEFAULT 0,
	black_knights INTEGER NOT NULL DEFAULT 0,
	white_pawns INTEGER NOT NULL DEFAULT 0,
	black_pawns INTEGER NOT NULL DEFAULT 0,
	side_to_move TEXT NOT NULL CHECK(side_to_move IN ('w', 'b')),
	castling_rights INTEGER NOT NULL DEFAULT 0 CHECK(castling_rights BETWEEN 0 AND 15),
	en_passant INTEGER CHECK(en_passant BETWEEN 0 AND 63),
	half_move_clock INTEGER NOT NULL DEFAULT 0,
	full_move_number INTEGER NOT NULL DEFAULT 1,
	fen TEXT NOT NULL,
	FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_positions_game_id ON positions(game_id);
CREATE INDEX IF NOT EXISTS idx_games_white_elo ON games(white_elo);
CREATE INDEX IF NOT EXISTS idx_games_black_elo ON games(black_elo);
`

const migrationV1Down = `
DROP TABLE IF EXISTS positions;
DROP TABLE IF EXISTS games;
DROP TABLE IF EXISTS schema_version;
`

// King squares are equality prefilters, pawn masks are scanned most often
const migrationV11Up = `
CREATE INDEX IF NOT EXISTS idx_positions_white_king ON positions(white_king);
CREATE INDEX IF NOT EXISTS idx_positions_black_king ON positions(black_king);
CREATE INDEX IF NOT EXISTS idx_positions_white_pawns ON positions(white_pawns);
CREATE INDEX IF NOT EXISTS idx_positions_black_pawns ON positions(black_pawns);
`

const migrationV11Down = `
DROP INDEX IF EXISTS idx_positions_black_pawns;
DROP INDEX IF EXISTS idx_positions_white_pawns;
DROP INDEX IF EXISTS idx_positions_black_king;
DROP INDEX IF EXISTS idx_positions_white_king;
`

const migrationV12Up = `
CREATE TABLE IF NOT EXISTS search_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	fen TEXT NOT NULL,
	color TEXT NOT NULL CHECK(color IN ('w', 'b')),
	features TEXT NOT NULL DEFAULT '',
	result_limit INTEGER NOT NULL,
	min_elo INTEGER NOT NULL,
	max_elo INTEGER NOT NULL,
	candidates INTEGER NOT NULL DEFAULT 0,
	results INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	searched_at_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_search_log_searched_at ON search_log(searched_at_utc);
`

const migrationV12Down = `
DROP TABLE IF EXISTS search_log;
`

// ApplyMigrations runs all pending migrations
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	currentVersion, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, migration := range AllMigrations {
		migrationVersion, err := semver.NewVersion(migration.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", migration.Version, err)
		}

		// Skip if already applied
		if !currentVersion.LessThan(migrationVersion) {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		if _, err := tx.ExecContext(ctx, migration.Up); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
		}

		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", migration.Version, err)
		}

		currentVersion = migrationVersion
	}

	return nil
}

// SchemaVersion returns the highest applied migration, 0.0.0 on a fresh database
func SchemaVersion(ctx context.Context, db *sql.DB) (*semver.Version, error) {
	var tableName string
	err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableName)
	if err == sql.ErrNoRows {
		return semver.MustParse("0.0.0"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check schema_version table: %w", err)
	}

	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_version")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_version: %w", err)
	}
	defer rows.Close()

	current := semver.MustParse("0.0.0")
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		v, err := semver.NewVersion(s)
		if err != nil {
			return nil, fmt.Errorf("invalid schema version %s: %w", s, err)
		}
		if current.LessThan(v) {
			current = v
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return current, nil
}

// RollbackMigration rolls back the most recent migration
func RollbackMigration(ctx context.Context, db *sql.DB) error {
	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	var migration *Migration
	for i := range AllMigrations {
		if semver.MustParse(AllMigrations[i].Version).Equal(current) {
			migration = &AllMigrations[i]
			break
		}
	}
	if migration == nil {
		return fmt.Errorf("no migration to roll back at version %s", current)
	}

	if _, err := db.ExecContext(ctx, migration.Down); err != nil {
		return fmt.Errorf("failed to rollback migration %s: %w", migration.Version, err)
	}

	// The first migration drops schema_version itself
	if migration.Version != AllMigrations[0].Version {
		if _, err := db.ExecContext(ctx, "DELETE FROM schema_version WHERE version = ?", migration.Version); err != nil {
			return fmt.Errorf("failed to remove migration record %s: %w", migration.Version, err)
		}
	}

	return nil
}
