package domain

import (
	"fmt"
	"time"

	"github.com/pharmacare/pharmacare-backend/pkg/errors"
)

// RestockStatus is the lifecycle state of a RestockRequest.
type RestockStatus string

const (
	RestockPending   RestockStatus = "PENDING"
	RestockApproved  RestockStatus = "APPROVED"
	RestockRejected  RestockStatus = "REJECTED"
	RestockFulfilled RestockStatus = "FULFILLED"
	RestockCancelled RestockStatus = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s RestockStatus) Valid() bool {
	switch s {
	case RestockPending, RestockApproved, RestockRejected, RestockFulfilled, RestockCancelled:
		return true
	}
	return false
}

// RestockRequest asks for more stock of a product at a branch.
//
// ApprovedBy and ApprovedAt are set exactly when Status is APPROVED,
// REJECTED or FULFILLED; for a rejection they record the rejector.
type RestockRequest struct {
	ID          string        `db:"id" json:"id"`
	ProductID   string        `db:"product_id" json:"product_id"`
	BranchID    string        `db:"branch_id" json:"branch_id"`
	RequestedBy string        `db:"requested_by" json:"requested_by"`
	Quantity    int           `db:"quantity" json:"quantity"`
	Status      RestockStatus `db:"status" json:"status"`
	SupplierID  *string       `db:"supplier_id" json:"supplier_id,omitempty"`
	Notes       string        `db:"notes" json:"notes"`
	ApprovedBy  *string       `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt  *time.Time    `db:"approved_at" json:"approved_at,omitempty"`
	FulfilledAt *time.Time    `db:"fulfilled_at" json:"fulfilled_at,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

func (r *RestockRequest) requireStatus(want RestockStatus, action string) error {
	if r.Status != want {
		return errors.IllegalState(fmt.Sprintf("cannot %s restock request in status %s", action, r.Status))
	}
	return nil
}

// Approve moves a PENDING request to APPROVED.
func (r *RestockRequest) Approve(actorID string, now time.Time) error {
	if err := r.requireStatus(RestockPending, "approve"); err != nil {
		return err
	}
	r.Status = RestockApproved
	r.ApprovedBy = &actorID
	r.ApprovedAt = &now
	r.UpdatedAt = now
	return nil
}

// Reject moves a PENDING request to REJECTED, recording the rejector.
func (r *RestockRequest) Reject(actorID string, now time.Time) error {
	if err := r.requireStatus(RestockPending, "reject"); err != nil {
		return err
	}
	r.Status = RestockRejected
	r.ApprovedBy = &actorID
	r.ApprovedAt = &now
	r.UpdatedAt = now
	return nil
}

// Fulfill moves an APPROVED request to FULFILLED.
func (r *RestockRequest) Fulfill(now time.Time) error {
	if err := r.requireStatus(RestockApproved, "fulfill"); err != nil {
		return err
	}
	r.Status = RestockFulfilled
	r.FulfilledAt = &now
	r.UpdatedAt = now
	return nil
}

// Cancel withdraws a PENDING request.
func (r *RestockRequest) Cancel(now time.Time) error {
	if err := r.requireStatus(RestockPending, "cancel"); err != nil {
		return err
	}
	r.Status = RestockCancelled
	r.UpdatedAt = now
	return nil
}
