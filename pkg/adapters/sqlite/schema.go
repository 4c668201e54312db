package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the version written by this package.
const SchemaVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS journeys (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS states (
	journey_id  TEXT    NOT NULL REFERENCES journeys(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	name        TEXT    NOT NULL,
	description TEXT    NOT NULL DEFAULT '',
	dwell_days  REAL    NOT NULL,
	PRIMARY KEY (journey_id, position)
);

CREATE TABLE IF NOT EXISTS transitions (
	journey_id    TEXT    NOT NULL REFERENCES journeys(id) ON DELETE CASCADE,
	position      INTEGER NOT NULL,
	from_state    TEXT    NOT NULL,
	to_state      TEXT    NOT NULL,
	trigger_name  TEXT    NOT NULL DEFAULT '',
	probability   REAL    NOT NULL,
	channel       TEXT    NOT NULL DEFAULT '',
	content_brief TEXT    NOT NULL DEFAULT '',
	PRIMARY KEY (journey_id, position)
);

CREATE INDEX IF NOT EXISTS idx_transitions_channel ON transitions(channel);
`

// InitSchema creates the tables on a fresh database and rejects databases
// written by a newer version.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	var current sql.NullInt64
	if err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	switch {
	case !current.Valid:
		if _, err := db.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, SchemaVersion); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
	case current.Int64 > SchemaVersion:
		return fmt.Errorf("database schema version %d is newer than supported version %d", current.Int64, SchemaVersion)
	}
	return nil
}
