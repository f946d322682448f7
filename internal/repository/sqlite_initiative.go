package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/avelara/beacon/internal/domain"
)

// initiativeColumns is the canonical SELECT column list for initiatives.
const initiativeColumns = `id, title, status, priority, estimated_effort, actual_effort,
		due_date, owner_id, classification, risk_note, pushback_count,
		created_at, last_updated, deleted_at`

// SQLiteInitiativeRepo implements InitiativeRepo using a SQLite database.
type SQLiteInitiativeRepo struct {
	db *sql.DB
}

// NewSQLiteInitiativeRepo creates a new SQLiteInitiativeRepo.
func NewSQLiteInitiativeRepo(db *sql.DB) *SQLiteInitiativeRepo {
	return &SQLiteInitiativeRepo{db: db}
}

// Upsert writes the full record, replacing any existing row with the same
// identifier, and synchronizes its task rows.
func (r *SQLiteInitiativeRepo) Upsert(ctx context.Context, in *domain.Initiative) error {
	query := `INSERT INTO initiatives (id, title, status, priority, estimated_effort, actual_effort,
		due_date, owner_id, classification, risk_note, pushback_count, created_at, last_updated, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			status = excluded.status,
			priority = excluded.priority,
			estimated_effort = excluded.estimated_effort,
			actual_effort = excluded.actual_effort,
			due_date = excluded.due_date,
			owner_id = excluded.owner_id,
			classification = excluded.classification,
			risk_note = excluded.risk_note,
			pushback_count = excluded.pushback_count,
			last_updated = excluded.last_updated,
			deleted_at = excluded.deleted_at`
	_, err := r.db.ExecContext(ctx, query,
		in.ID,
		in.Title,
		string(in.Status),
		string(in.Priority),
		in.EstimatedEffort,
		in.ActualEffort,
		nullableTimeToString(in.DueDate, dateLayout),
		in.OwnerID,
		in.Classification,
		in.RiskNote,
		in.PushbackCount,
		in.CreatedAt.Format(time.RFC3339),
		in.LastUpdated.Format(time.RFC3339),
		nullableTimeToString(in.DeletedAt, time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting initiative: %w", err)
	}
	return r.syncTasks(ctx, in)
}

// syncTasks replaces the stored task rows with the record's current tasks.
func (r *SQLiteInitiativeRepo) syncTasks(ctx context.Context, in *domain.Initiative) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE initiative_id = ?`, in.ID); err != nil {
		return fmt.Errorf("clearing tasks: %w", err)
	}
	for _, t := range in.Tasks {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO tasks (id, initiative_id, title, status, estimated_effort, actual_effort, tags, created_at, last_updated)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, in.ID, t.Title, string(t.Status), t.EstimatedEffort, t.ActualEffort,
			strings.Join(t.Tags, ","),
			t.CreatedAt.Format(time.RFC3339), t.LastUpdated.Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("inserting task %s: %w", t.ID, err)
		}
	}
	return nil
}

func (r *SQLiteInitiativeRepo) GetByID(ctx context.Context, id string) (*domain.Initiative, error) {
	query := `SELECT ` + initiativeColumns + ` FROM initiatives WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	in, err := r.scanInitiative(row)
	if err != nil {
		return nil, err
	}
	if err := r.attachChildren(ctx, map[string]*domain.Initiative{in.ID: in}); err != nil {
		return nil, err
	}
	return in, nil
}

// List returns all initiatives with their tasks and change history attached,
// ordered by creation time.
func (r *SQLiteInitiativeRepo) List(ctx context.Context, includeDeleted bool) ([]*domain.Initiative, error) {
	query := `SELECT ` + initiativeColumns + ` FROM initiatives ORDER BY created_at, id`
	if !includeDeleted {
		query = `SELECT ` + initiativeColumns + ` FROM initiatives WHERE status != 'deleted' ORDER BY created_at, id`
	}
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing initiatives: %w", err)
	}
	defer rows.Close()

	var items []*domain.Initiative
	byID := make(map[string]*domain.Initiative)
	for rows.Next() {
		in, err := r.scanInitiativeRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, in)
		byID[in.ID] = in
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating initiatives: %w", err)
	}
	if err := r.attachChildren(ctx, byID); err != nil {
		return nil, err
	}
	return items, nil
}

// SoftDelete marks the row deleted and returns the deletion timestamp.
func (r *SQLiteInitiativeRepo) SoftDelete(ctx context.Context, id string, at time.Time) (time.Time, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE initiatives SET status = 'deleted', deleted_at = ?, last_updated = ? WHERE id = ?`,
		at.Format(time.RFC3339), at.Format(time.RFC3339), id)
	if err != nil {
		return time.Time{}, fmt.Errorf("soft deleting initiative: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return time.Time{}, fmt.Errorf("initiative %s: %w", id, ErrNotFound)
	}
	return at, nil
}

// Restore clears a soft delete, returning the row to planned status.
func (r *SQLiteInitiativeRepo) Restore(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE initiatives SET status = 'planned', deleted_at = NULL, last_updated = ? WHERE id = ? AND status = 'deleted'`,
		at.Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("restoring initiative: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("initiative %s: %w", id, ErrNotFound)
	}
	return nil
}

// attachChildren loads tasks and change history for the given records.
func (r *SQLiteInitiativeRepo) attachChildren(ctx context.Context, byID map[string]*domain.Initiative) error {
	if len(byID) == 0 {
		return nil
	}

	taskRows, err := r.db.QueryContext(ctx,
		`SELECT id, initiative_id, title, status, estimated_effort, actual_effort, tags, created_at, last_updated
		FROM tasks ORDER BY created_at, id`)
	if err != nil {
		return fmt.Errorf("listing tasks: %w", err)
	}
	defer taskRows.Close()
	for taskRows.Next() {
		var t domain.Task
		var statusStr, tagsStr, createdStr, updatedStr string
		if err := taskRows.Scan(&t.ID, &t.InitiativeID, &t.Title, &statusStr,
			&t.EstimatedEffort, &t.ActualEffort, &tagsStr, &createdStr, &updatedStr); err != nil {
			return fmt.Errorf("scanning task: %w", err)
		}
		t.Status = domain.TaskStatus(statusStr)
		if tagsStr != "" {
			t.Tags = strings.Split(tagsStr, ",")
		}
		if t.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
			return fmt.Errorf("parsing task created_at: %w", err)
		}
		if t.LastUpdated, err = time.Parse(time.RFC3339, updatedStr); err != nil {
			return fmt.Errorf("parsing task last_updated: %w", err)
		}
		if in, ok := byID[t.InitiativeID]; ok {
			in.Tasks = append(in.Tasks, t)
		}
	}
	if err := taskRows.Err(); err != nil {
		return fmt.Errorf("iterating tasks: %w", err)
	}

	entryRows, err := r.db.QueryContext(ctx,
		`SELECT id, initiative_id, task_id, field, old_value, new_value, actor_id, at, source_id
		FROM change_entries ORDER BY at, id`)
	if err != nil {
		return fmt.Errorf("listing change entries: %w", err)
	}
	defer entryRows.Close()
	for entryRows.Next() {
		e, err := scanChangeEntry(entryRows)
		if err != nil {
			return err
		}
		if in, ok := byID[e.InitiativeID]; ok {
			in.History = append(in.History, e)
		}
	}
	if err := entryRows.Err(); err != nil {
		return fmt.Errorf("iterating change entries: %w", err)
	}
	return nil
}

func (r *SQLiteInitiativeRepo) scanInitiative(row *sql.Row) (*domain.Initiative, error) {
	var in domain.Initiative
	var statusStr, priorityStr string
	var dueDateStr, deletedAtStr sql.NullString
	var createdStr, updatedStr string

	err := row.Scan(
		&in.ID, &in.Title, &statusStr, &priorityStr, &in.EstimatedEffort, &in.ActualEffort,
		&dueDateStr, &in.OwnerID, &in.Classification, &in.RiskNote, &in.PushbackCount,
		&createdStr, &updatedStr, &deletedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("initiative: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning initiative: %w", err)
	}
	return populateInitiative(&in, statusStr, priorityStr, dueDateStr, deletedAtStr, createdStr, updatedStr)
}

func (r *SQLiteInitiativeRepo) scanInitiativeRow(rows *sql.Rows) (*domain.Initiative, error) {
	var in domain.Initiative
	var statusStr, priorityStr string
	var dueDateStr, deletedAtStr sql.NullString
	var createdStr, updatedStr string

	err := rows.Scan(
		&in.ID, &in.Title, &statusStr, &priorityStr, &in.EstimatedEffort, &in.ActualEffort,
		&dueDateStr, &in.OwnerID, &in.Classification, &in.RiskNote, &in.PushbackCount,
		&createdStr, &updatedStr, &deletedAtStr,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning initiative row: %w", err)
	}
	return populateInitiative(&in, statusStr, priorityStr, dueDateStr, deletedAtStr, createdStr, updatedStr)
}

func populateInitiative(
	in *domain.Initiative,
	statusStr, priorityStr string,
	dueDateStr, deletedAtStr sql.NullString,
	createdStr, updatedStr string,
) (*domain.Initiative, error) {
	in.Status = domain.InitiativeStatus(statusStr)
	in.Priority = domain.Priority(priorityStr)
	in.DueDate = parseNullableTime(dueDateStr, dateLayout)
	in.DeletedAt = parseNullableTime(deletedAtStr, time.RFC3339)

	var parseErr error
	in.CreatedAt, parseErr = time.Parse(time.RFC3339, createdStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	in.LastUpdated, parseErr = time.Parse(time.RFC3339, updatedStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing last_updated: %w", parseErr)
	}
	return in, nil
}
