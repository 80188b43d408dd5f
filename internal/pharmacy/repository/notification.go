package repository

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/pkg/database"
)

var notificationColumns = []string{
	"id", "user_id", "type", "title", "message", "entity_type", "entity_id", "is_read", "read_at", "created_at",
}

// NotificationRepository handles notification persistence
type NotificationRepository struct {
	db *database.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	query := `
		INSERT INTO notifications (id, user_id, type, title, message, entity_type, entity_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := r.db.Ext(ctx).QueryRowxContext(ctx, query,
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.EntityType, n.EntityID,
	).Scan(&n.CreatedAt)
	return database.MapError(err, "notification", "create")
}

// GetByID gets a notification by ID
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	return getOne[domain.Notification](ctx, r.db.Ext(ctx), "notifications", notificationColumns, id, "notification")
}

// ListByUser lists a user's notifications, newest first
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, page Page) ([]domain.Notification, int64, error) {
	base := psql.Select().From("notifications").Where(squirrel.Eq{"user_id": userID})
	if unreadOnly {
		base = base.Where(squirrel.Eq{"is_read": false})
	}
	items, total, err := selectPage[domain.Notification](ctx, r.db.Ext(ctx), base, notificationColumns, "created_at DESC", page)
	if err != nil {
		return nil, 0, database.MapError(err, "notification", "list")
	}
	return items, total, nil
}

// MarkRead marks one of userID's notifications read. A second call keeps the first read_at.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string, at time.Time) error {
	query := `
		UPDATE notifications SET is_read = TRUE, read_at = COALESCE(read_at, $3)
		WHERE id = $1 AND user_id = $2
	`
	return database.MapError(affected(r.db.Ext(ctx).ExecContext(ctx, query, id, userID, at)), "notification", "mark read")
}

// MarkAllRead marks every unread notification of userID read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	query := `UPDATE notifications SET is_read = TRUE, read_at = $2 WHERE user_id = $1 AND is_read = FALSE`
	n, err := rowCount(r.db.Ext(ctx).ExecContext(ctx, query, userID, at))
	return n, database.MapError(err, "notification", "mark all read")
}

// DeleteReadBefore removes notifications read before cutoff.
func (r *NotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM notifications WHERE is_read = TRUE AND read_at < $1`
	n, err := rowCount(r.db.Ext(ctx).ExecContext(ctx, query, cutoff))
	return n, database.MapError(err, "notification", "cleanup")
}
