package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avelara/beacon/internal/domain"
)

// SQLiteNotificationRepo implements NotificationRepo using a SQLite database.
type SQLiteNotificationRepo struct {
	db *sql.DB
}

// NewSQLiteNotificationRepo creates a new SQLiteNotificationRepo.
func NewSQLiteNotificationRepo(db *sql.DB) *SQLiteNotificationRepo {
	return &SQLiteNotificationRepo{db: db}
}

func (r *SQLiteNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, kind, initiative_id, field, message, created_at, read_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, string(n.Kind), n.InitiativeID, string(n.Field), n.Message,
		n.CreatedAt.Format(time.RFC3339), nullableTimeToString(n.ReadAt, time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

func (r *SQLiteNotificationRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, kind, initiative_id, field, message, created_at, read_at
		FROM notifications WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var notes []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		var kindStr, fieldStr, createdStr string
		var readStr sql.NullString
		if err := rows.Scan(&n.ID, &n.UserID, &kindStr, &n.InitiativeID, &fieldStr,
			&n.Message, &createdStr, &readStr); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		n.Kind = domain.NotificationKind(kindStr)
		n.Field = domain.Field(fieldStr)
		n.ReadAt = parseNullableTime(readStr, time.RFC3339)
		if n.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
			return nil, fmt.Errorf("parsing notification created_at: %w", err)
		}
		notes = append(notes, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notifications: %w", err)
	}
	return notes, nil
}

func (r *SQLiteNotificationRepo) MarkRead(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read_at = ? WHERE id = ? AND read_at IS NULL`,
		at.Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteNotificationRepo) MarkAllRead(ctx context.Context, userID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read_at = ? WHERE user_id = ? AND read_at IS NULL`,
		at.Format(time.RFC3339), userID)
	if err != nil {
		return fmt.Errorf("marking all notifications read: %w", err)
	}
	return nil
}

func (r *SQLiteNotificationRepo) ClearAll(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("clearing notifications: %w", err)
	}
	return nil
}
