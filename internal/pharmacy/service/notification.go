package service

import (
	"context"
	"time"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/repository"
	"github.com/pharmacare/pharmacare-backend/pkg/actor"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
)

// NotificationStore persists notifications
type NotificationStore interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, page repository.Page) ([]domain.Notification, int64, error)
	MarkRead(ctx context.Context, id, userID string, at time.Time) error
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotificationService delivers in-app notifications to users
type NotificationService struct {
	notifications NotificationStore
	logger        *logger.Logger
	now           func() time.Time
}

// NewNotificationService creates a new notification service
func NewNotificationService(notifications NotificationStore, log *logger.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		logger:        log.WithComponent("notifications"),
		now:           utcNow,
	}
}

// Notify stores a notification for userID. Failures are logged; a missed
// notification never fails the action that caused it.
func (s *NotificationService) Notify(ctx context.Context, userID string, typ domain.NotificationType, title, message, entityType, entityID string) {
	if s == nil || userID == "" || userID == actor.SystemID {
		return
	}
	n := &domain.Notification{
		UserID:     userID,
		Type:       typ,
		Title:      title,
		Message:    message,
		EntityType: entityType,
		EntityID:   strPtr(entityID),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		s.logger.Error().Err(err).
			Str("user_id", userID).
			Str("type", string(typ)).
			Msg("failed to create notification")
	}
}

// ListMine lists the current user's notifications
func (s *NotificationService) ListMine(ctx context.Context, unreadOnly bool, params ListParams) ([]domain.Notification, int64, error) {
	return s.notifications.ListByUser(ctx, actor.IDFromContext(ctx), unreadOnly, params.page())
}

// MarkRead marks one of the current user's notifications read
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	return s.notifications.MarkRead(ctx, id, actor.IDFromContext(ctx), s.now())
}

// MarkAllRead marks all of the current user's notifications read
func (s *NotificationService) MarkAllRead(ctx context.Context) (int64, error) {
	return s.notifications.MarkAllRead(ctx, actor.IDFromContext(ctx), s.now())
}

// Cleanup deletes notifications read more than retention ago
func (s *NotificationService) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	n, err := s.notifications.DeleteReadBefore(ctx, s.now().Add(-retention))
	if err != nil {
		return 0, err
	}
	s.logger.Info().Int64("deleted", n).Msg("read notifications cleaned up")
	return n, nil
}
