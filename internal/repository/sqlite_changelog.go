package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avelara/beacon/internal/domain"
)

// SQLiteChangeLogRepo implements ChangeLogRepo using a SQLite database.
// Change entries are append-only: there is no update or delete path.
type SQLiteChangeLogRepo struct {
	db *sql.DB
}

// NewSQLiteChangeLogRepo creates a new SQLiteChangeLogRepo.
func NewSQLiteChangeLogRepo(db *sql.DB) *SQLiteChangeLogRepo {
	return &SQLiteChangeLogRepo{db: db}
}

func (r *SQLiteChangeLogRepo) Append(ctx context.Context, e domain.ChangeEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO change_entries (id, initiative_id, task_id, field, old_value, new_value, actor_id, at, source_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.InitiativeID, e.TaskID, string(e.Field), e.OldValue, e.NewValue,
		e.ActorID, e.At.Format(time.RFC3339), e.SourceID,
	)
	if err != nil {
		return fmt.Errorf("appending change entry: %w", err)
	}
	return nil
}

func (r *SQLiteChangeLogRepo) ListByInitiative(ctx context.Context, initiativeID string) ([]domain.ChangeEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, initiative_id, task_id, field, old_value, new_value, actor_id, at, source_id
		FROM change_entries WHERE initiative_id = ? ORDER BY at, id`, initiativeID)
	if err != nil {
		return nil, fmt.Errorf("listing change entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.ChangeEntry
	for rows.Next() {
		e, err := scanChangeEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating change entries: %w", err)
	}
	return entries, nil
}

func scanChangeEntry(rows *sql.Rows) (domain.ChangeEntry, error) {
	var e domain.ChangeEntry
	var fieldStr, atStr string
	if err := rows.Scan(&e.ID, &e.InitiativeID, &e.TaskID, &fieldStr,
		&e.OldValue, &e.NewValue, &e.ActorID, &atStr, &e.SourceID); err != nil {
		return e, fmt.Errorf("scanning change entry: %w", err)
	}
	e.Field = domain.Field(fieldStr)
	var err error
	if e.At, err = time.Parse(time.RFC3339, atStr); err != nil {
		return e, fmt.Errorf("parsing change entry timestamp: %w", err)
	}
	return e, nil
}
