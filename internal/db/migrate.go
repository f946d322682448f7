package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS initiatives (
		id               TEXT PRIMARY KEY,
		title            TEXT NOT NULL,
		status           TEXT NOT NULL DEFAULT 'planned'
		                 CHECK(status IN ('planned','in_progress','at_risk','done','deleted')),
		priority         TEXT NOT NULL DEFAULT 'medium',
		estimated_effort REAL NOT NULL DEFAULT 0,
		actual_effort    REAL NOT NULL DEFAULT 0,
		due_date         TEXT,
		owner_id         TEXT NOT NULL DEFAULT '',
		classification   TEXT NOT NULL DEFAULT 'Unclassified',
		risk_note        TEXT NOT NULL DEFAULT '',
		pushback_count   INTEGER NOT NULL DEFAULT 0,
		created_at       TEXT NOT NULL,
		last_updated     TEXT NOT NULL,
		deleted_at       TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id               TEXT PRIMARY KEY,
		initiative_id    TEXT NOT NULL REFERENCES initiatives(id) ON DELETE CASCADE,
		title            TEXT NOT NULL,
		status           TEXT NOT NULL DEFAULT 'open' CHECK(status IN ('open','done')),
		estimated_effort REAL NOT NULL DEFAULT 0,
		actual_effort    REAL NOT NULL DEFAULT 0,
		tags             TEXT NOT NULL DEFAULT '',
		created_at       TEXT NOT NULL,
		last_updated     TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tasks_initiative ON tasks(initiative_id)`,

	`CREATE TABLE IF NOT EXISTS change_entries (
		id            TEXT PRIMARY KEY,
		initiative_id TEXT NOT NULL REFERENCES initiatives(id) ON DELETE CASCADE,
		task_id       TEXT NOT NULL DEFAULT '',
		field         TEXT NOT NULL,
		old_value     TEXT NOT NULL DEFAULT '',
		new_value     TEXT NOT NULL DEFAULT '',
		actor_id      TEXT NOT NULL,
		at            TEXT NOT NULL,
		source_id     TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE INDEX IF NOT EXISTS idx_change_entries_initiative ON change_entries(initiative_id)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id            TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL,
		kind          TEXT NOT NULL,
		initiative_id TEXT NOT NULL DEFAULT '',
		field         TEXT NOT NULL DEFAULT '',
		message       TEXT NOT NULL,
		created_at    TEXT NOT NULL,
		read_at       TEXT
	)`,

	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id)`,

	`CREATE TABLE IF NOT EXISTS users (
		id   TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		team TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'viewer' CHECK(role IN ('admin','editor','viewer'))
	)`,
}
