package domain

import (
	"time"

	"github.com/pharmacare/pharmacare-backend/pkg/errors"
)

// AlertType classifies an Alert.
type AlertType string

const (
	AlertLowStock        AlertType = "LOW_STOCK"
	AlertOutOfStock      AlertType = "OUT_OF_STOCK"
	AlertExpiryWarning   AlertType = "EXPIRY_WARNING"
	AlertExpiryCritical  AlertType = "EXPIRY_CRITICAL"
	AlertReorder         AlertType = "REORDER"
	AlertTransferRequest AlertType = "TRANSFER_REQUEST"
	AlertSystem          AlertType = "SYSTEM_ALERT"
	AlertDataIssue       AlertType = "DATA_ISSUE"
)

// Valid reports whether t is a known alert type.
func (t AlertType) Valid() bool {
	switch t {
	case AlertLowStock, AlertOutOfStock, AlertExpiryWarning, AlertExpiryCritical,
		AlertReorder, AlertTransferRequest, AlertSystem, AlertDataIssue:
		return true
	}
	return false
}

// AlertStatus is the lifecycle state of an Alert.
type AlertStatus string

const (
	AlertActive   AlertStatus = "ACTIVE"
	AlertResolved AlertStatus = "RESOLVED"
	AlertReopened AlertStatus = "REOPENED"
	AlertIgnored  AlertStatus = "IGNORED"
	AlertExpired  AlertStatus = "EXPIRED"
)

// Alert flags a condition that staff should look at.
//
// Resolved is true exactly when Status is RESOLVED, and then ResolvedBy
// and ResolvedAt are set.
type Alert struct {
	ID          string      `db:"id" json:"id"`
	ProductID   *string     `db:"product_id" json:"product_id,omitempty"`
	BranchID    *string     `db:"branch_id" json:"branch_id,omitempty"`
	AlertType   AlertType   `db:"alert_type" json:"alert_type"`
	Message     string      `db:"message" json:"message"`
	TriggeredBy *string     `db:"triggered_by" json:"triggered_by,omitempty"`
	Resolved    bool        `db:"resolved" json:"resolved"`
	ResolvedBy  *string     `db:"resolved_by" json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time  `db:"resolved_at" json:"resolved_at,omitempty"`
	Status      AlertStatus `db:"status" json:"status"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

// Resolve closes an unresolved alert.
func (a *Alert) Resolve(actorID string, now time.Time) error {
	if a.Resolved {
		return errors.IllegalState("alert is already resolved")
	}
	a.Resolved = true
	a.ResolvedBy = &actorID
	a.ResolvedAt = &now
	a.Status = AlertResolved
	return nil
}

// Reopen returns a resolved alert to the open set.
func (a *Alert) Reopen() error {
	if !a.Resolved {
		return errors.IllegalState("only resolved alerts can be reopened")
	}
	a.Resolved = false
	a.ResolvedBy = nil
	a.ResolvedAt = nil
	a.Status = AlertReopened
	return nil
}

// Ignore silences an unresolved alert without resolving it.
func (a *Alert) Ignore() error {
	if a.Resolved {
		return errors.IllegalState("resolved alerts cannot be ignored")
	}
	if a.Status == AlertIgnored {
		return errors.IllegalState("alert is already ignored")
	}
	a.Status = AlertIgnored
	return nil
}

// IsCritical is true for out-of-stock and critical-expiry alerts.
func (a *Alert) IsCritical() bool {
	return a.AlertType == AlertOutOfStock || a.AlertType == AlertExpiryCritical
}

// RequiresImmediateAttention widens IsCritical with low stock and transfer requests.
func (a *Alert) RequiresImmediateAttention() bool {
	return a.IsCritical() || a.AlertType == AlertLowStock || a.AlertType == AlertTransferRequest
}
