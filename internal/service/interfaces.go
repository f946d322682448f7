package service

import (
	"context"
	"errors"
	"time"

	"github.com/avelara/beacon/internal/domain"
)

// ErrPermissionDenied is returned when the acting user's role does not
// allow the requested mutation.
var ErrPermissionDenied = errors.New("permission denied")

type InitiativeService interface {
	Create(ctx context.Context, actorID string, in *domain.Initiative) error
	Get(ctx context.Context, id string) (*domain.Initiative, error)
	List(ctx context.Context, includeDeleted bool) ([]*domain.Initiative, error)
	EditField(ctx context.Context, actorID, id string, field domain.Field, value string) (*domain.Initiative, error)
	Delete(ctx context.Context, actorID, id string) error
	Restore(ctx context.Context, actorID, id string) error
	AddComment(ctx context.Context, actorID, id, body string) (*domain.Comment, error)
	ReviewEffort(ctx context.Context, id string) (domain.ValidationFlag, error)
	History(ctx context.Context, id string) ([]domain.ChangeEntry, error)

	// Remote ingestion, wired to the realtime bus.
	ApplyRemoteUpdate(in *domain.Initiative)
	ApplyRemoteCreate(in *domain.Initiative)
}

type NotificationService interface {
	Create(ctx context.Context, userID string, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) error
	ClearAll(ctx context.Context, userID string) error
}

type WorkflowService interface {
	List(ctx context.Context) []*domain.Workflow
	Get(ctx context.Context, id string) (*domain.Workflow, error)
	SetEnabled(ctx context.Context, id string, enabled bool) error
}

type UserService interface {
	Upsert(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}

// PermissionChecker is consulted before every mutation.
type PermissionChecker interface {
	CanEdit(ctx context.Context, userID string) bool
	CanDelete(ctx context.Context, userID string) bool
}

// Persistence is the slice of the sync layer the services drive.
type Persistence interface {
	QueueSync(in *domain.Initiative)
	SoftDelete(ctx context.Context, id string, at time.Time) (time.Time, error)
	Restore(ctx context.Context, id string, at time.Time) error
}
