package postgres

const schemaVersion = "1.2.0"

// schema mirrors the SQLite migrations in one idempotent script. Piece sets
// get GIN indexes for the && prefilter.
const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
	version TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ DEFAULT now()
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
	game_id TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	move_number INTEGER NOT NULL,
	white_king SMALLINT CHECK (white_king BETWEEN 0 AND 63),
	black_king SMALLINT CHECK (black_king BETWEEN 0 AND 63),
	white_queens INTEGER[] NOT NULL DEFAULT '{}',
	white_rooks INTEGER[] NOT NULL DEFAULT '{}',
	white_bishops INTEGER[] NOT NULL DEFAULT '{}',
	white_knights INTEGER[] NOT NULL DEFAULT '{}',
	black_queens INTEGER[] NOT NULL DEFAULT '{}',
	black_rooks INTEGER[] NOT NULL DEFAULT '{}',
	black_bishops INTEGER[] NOT NULL DEFAULT '{}',
	black_knights INTEGER[] NOT NULL DEFAULT '{}',
	white_pawns BIGINT NOT NULL DEFAULT 0,
	black_pawns BIGINT NOT NULL DEFAULT 0,
	side_to_move CHAR(1) NOT NULL CHECK (side_to_move IN ('w', 'b')),
	castling_rights SMALLINT NOT NULL DEFAULT 0 CHECK (castling_rights BETWEEN 0 AND 15),
	en_passant SMALLINT CHECK (en_passant BETWEEN 0 AND 63),
	half_move_clock INTEGER NOT NULL DEFAULT 0,
	full_move_number INTEGER NOT NULL DEFAULT 1,
	fen TEXT NOT NULL
);

CREATE OR REPLACE FUNCTION bit_count(v BIGINT) RETURNS INTEGER
	LANGUAGE sql IMMUTABLE STRICT PARALLEL SAFE
	AS $$ SELECT length(replace(v::bit(64)::text, '0', '')) $$;

CREATE INDEX IF NOT EXISTS idx_positions_game_id ON positions(game_id);
CREATE INDEX IF NOT EXISTS idx_games_white_elo ON games(white_elo);
CREATE INDEX IF NOT EXISTS idx_games_black_elo ON games(black_elo);
CREATE INDEX IF NOT EXISTS idx_positions_white_king ON positions(white_king);
CREATE INDEX IF NOT EXISTS idx_positions_black_king ON positions(black_king);
CREATE INDEX IF NOT EXISTS idx_positions_white_queens ON positions USING GIN (white_queens);
CREATE INDEX IF NOT EXISTS idx_positions_white_rooks ON positions USING GIN (white_rooks);
CREATE INDEX IF NOT EXISTS idx_positions_white_bishops ON positions USING GIN (white_bishops);
CREATE INDEX IF NOT EXISTS idx_positions_white_knights ON positions USING GIN (white_knights);
CREATE INDEX IF NOT EXISTS idx_positions_black_queens ON positions USING GIN (black_queens);
CREATE INDEX IF NOT EXISTS idx_positions_black_rooks ON positions USING GIN (black_rooks);
CREATE INDEX IF NOT EXISTS idx_positions_black_bishops ON positions USING GIN (black_bishops);
CREATE INDEX IF NOT EXISTS idx_positions_black_knights ON positions USING GIN (black_knights);

INSERT INTO schema_version (version) VALUES ('` + schemaVersion + `') ON CONFLICT DO NOTHING;
`

const gameColumns = `id, result, white_elo, black_elo, game_type, date,
	white_name, black_name, eco, time_control, site, opening, pgn`

const positionColumns = `id, game_id, move_number, white_king, black_king,
	white_queens, white_rooks, white_bishops, white_knights,
	black_queens, black_rooks, black_bishops, black_knights,
	white_pawns, black_pawns, side_to_move, castling_rights, en_passant,
	half_move_clock, full_move_number, fen`
