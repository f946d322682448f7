package service

import (
	"context"
	"time"

	"github.com/avelara/beacon/internal/domain"
	"github.com/avelara/beacon/internal/repository"
	"github.com/google/uuid"
)

// notificationBroadcaster pushes freshly created notifications to
// connected clients.
type notificationBroadcaster interface {
	BroadcastNotification(n *domain.Notification)
}

type notificationService struct {
	notes repository.NotificationRepo
	bus   notificationBroadcaster
	now   func() time.Time
}

func NewNotificationService(notes repository.NotificationRepo, bus notificationBroadcaster) NotificationService {
	return &notificationService{
		notes: notes,
		bus:   bus,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *notificationService) Create(ctx context.Context, userID string, n *domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.UserID == "" {
		n.UserID = userID
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}
	if err := s.notes.Create(ctx, n); err != nil {
		return err
	}
	if s.bus != nil {
		s.bus.BroadcastNotification(n)
	}
	return nil
}

func (s *notificationService) ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error) {
	return s.notes.ListByUser(ctx, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, id string) error {
	return s.notes.MarkRead(ctx, id, s.now())
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.notes.MarkAllRead(ctx, userID, s.now())
}

func (s *notificationService) ClearAll(ctx context.Context, userID string) error {
	return s.notes.ClearAll(ctx, userID)
}
