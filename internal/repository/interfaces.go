package repository

import (
	"context"
	"errors"
	"time"

	"github.com/avelara/beacon/internal/domain"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

type InitiativeRepo interface {
	Upsert(ctx context.Context, in *domain.Initiative) error
	GetByID(ctx context.Context, id string) (*domain.Initiative, error)
	List(ctx context.Context, includeDeleted bool) ([]*domain.Initiative, error)
	SoftDelete(ctx context.Context, id string, at time.Time) (time.Time, error)
	Restore(ctx context.Context, id string, at time.Time) error
}

type ChangeLogRepo interface {
	Append(ctx context.Context, e domain.ChangeEntry) error
	ListByInitiative(ctx context.Context, initiativeID string) ([]domain.ChangeEntry, error)
}

type NotificationRepo interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, id string, at time.Time) error
	MarkAllRead(ctx context.Context, userID string, at time.Time) error
	ClearAll(ctx context.Context, userID string) error
}

type UserRepo interface {
	Upsert(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}
