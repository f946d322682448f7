package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avelara/beacon/internal/domain"
)

// SQLiteUserRepo implements UserRepo using a SQLite database.
type SQLiteUserRepo struct {
	db *sql.DB
}

// NewSQLiteUserRepo creates a new SQLiteUserRepo.
func NewSQLiteUserRepo(db *sql.DB) *SQLiteUserRepo {
	return &SQLiteUserRepo{db: db}
}

func (r *SQLiteUserRepo) Upsert(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, team, role) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, team = excluded.team, role = excluded.role`,
		u.ID, u.Name, u.Team, string(u.Role))
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}

func (r *SQLiteUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	var roleStr string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, team, role FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Name, &u.Team, &roleStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	u.Role = domain.Role(roleStr)
	return &u, nil
}

func (r *SQLiteUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, team, role FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		var u domain.User
		var roleStr string
		if err := rows.Scan(&u.ID, &u.Name, &u.Team, &roleStr); err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		u.Role = domain.Role(roleStr)
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return users, nil
}
