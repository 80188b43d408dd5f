package domain

import (
	"fmt"
	"time"

	"github.com/pharmacare/pharmacare-backend/pkg/errors"
)

// PrescriptionStatus is the review state of a Prescription.
type PrescriptionStatus string

const (
	PrescriptionPending   PrescriptionStatus = "PENDING"
	PrescriptionApproved  PrescriptionStatus = "APPROVED"
	PrescriptionRejected  PrescriptionStatus = "REJECTED"
	PrescriptionExpired   PrescriptionStatus = "EXPIRED"
	PrescriptionFulfilled PrescriptionStatus = "FULFILLED"
)

// Valid reports whether s is a known status.
func (s PrescriptionStatus) Valid() bool {
	switch s {
	case PrescriptionPending, PrescriptionApproved, PrescriptionRejected, PrescriptionExpired, PrescriptionFulfilled:
		return true
	}
	return false
}

// Prescription is a doctor's prescription uploaded for review.
type Prescription struct {
	ID               string             `db:"id" json:"id"`
	UserID           string             `db:"user_id" json:"user_id"`
	DoctorName       string             `db:"doctor_name" json:"doctor_name"`
	DoctorContact    string             `db:"doctor_contact" json:"doctor_contact"`
	PrescriptionDate time.Time          `db:"prescription_date" json:"prescription_date"`
	Status           PrescriptionStatus `db:"status" json:"status"`
	Notes            string             `db:"notes" json:"notes"`
	DocumentURL      string             `db:"document_url" json:"document_url,omitempty"`
	ApprovedBy       *string            `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt       *time.Time         `db:"approved_at" json:"approved_at,omitempty"`
	CreatedAt        time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `db:"updated_at" json:"updated_at"`
}

func (p *Prescription) review(to PrescriptionStatus, actorID string, now time.Time) error {
	if p.Status != PrescriptionPending {
		return errors.IllegalState(fmt.Sprintf("cannot review prescription in status %s", p.Status))
	}
	p.Status = to
	p.ApprovedBy = &actorID
	p.ApprovedAt = &now
	p.UpdatedAt = now
	return nil
}

// Approve moves a PENDING prescription to APPROVED.
func (p *Prescription) Approve(actorID string, now time.Time) error {
	return p.review(PrescriptionApproved, actorID, now)
}

// Reject moves a PENDING prescription to REJECTED, recording the reviewer.
func (p *Prescription) Reject(actorID string, now time.Time) error {
	return p.review(PrescriptionRejected, actorID, now)
}

// Fulfill marks an APPROVED prescription as dispensed.
func (p *Prescription) Fulfill(now time.Time) error {
	if p.Status != PrescriptionApproved {
		return errors.IllegalState(fmt.Sprintf("cannot fulfill prescription in status %s", p.Status))
	}
	p.Status = PrescriptionFulfilled
	p.UpdatedAt = now
	return nil
}

// Dispensable reports whether an order may be placed against the prescription.
func (p *Prescription) Dispensable() bool {
	return p.Status == PrescriptionApproved
}
