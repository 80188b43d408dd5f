package domain

import "time"

// NotificationType names what a Notification is about.
type NotificationType string

const (
	NotificationRestockApproved      NotificationType = "RESTOCK_APPROVED"
	NotificationRestockRejected      NotificationType = "RESTOCK_REJECTED"
	NotificationRestockFulfilled     NotificationType = "RESTOCK_FULFILLED"
	NotificationPrescriptionApproved NotificationType = "PRESCRIPTION_APPROVED"
	NotificationPrescriptionRejected NotificationType = "PRESCRIPTION_REJECTED"
)

// Notification is a message for one user.
type Notification struct {
	ID         string           `db:"id" json:"id"`
	UserID     string           `db:"user_id" json:"user_id"`
	Type       NotificationType `db:"type" json:"type"`
	Title      string           `db:"title" json:"title"`
	Message    string           `db:"message" json:"message"`
	EntityType string           `db:"entity_type" json:"entity_type"`
	EntityID   *string          `db:"entity_id" json:"entity_id,omitempty"`
	IsRead     bool             `db:"is_read" json:"is_read"`
	ReadAt     *time.Time       `db:"read_at" json:"read_at,omitempty"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
}

// MarkRead flags the notification as read. Calling it again keeps the first ReadAt.
func (n *Notification) MarkRead(now time.Time) {
	if n.IsRead {
		return
	}
	n.IsRead = true
	n.ReadAt = &now
}
