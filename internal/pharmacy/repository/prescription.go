package repository

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/pkg/database"
)

var prescriptionColumns = []string{
	"id", "user_id", "doctor_name", "doctor_contact", "prescription_date", "status", "notes",
	"document_url", "approved_by", "approved_at", "created_at", "updated_at",
}

// PrescriptionFilter narrows a prescription listing. Zero values are ignored.
type PrescriptionFilter struct {
	UserID string
	Status domain.PrescriptionStatus
}

// PrescriptionRepository handles prescription persistence
type PrescriptionRepository struct {
	db *database.DB
}

// NewPrescriptionRepository creates a new prescription repository
func NewPrescriptionRepository(db *database.DB) *PrescriptionRepository {
	return &PrescriptionRepository{db: db}
}

// Create inserts a prescription
func (r *PrescriptionRepository) Create(ctx context.Context, p *domain.Prescription) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	query := `
		INSERT INTO prescriptions (id, user_id, doctor_name, doctor_contact, prescription_date, status, notes, document_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.Ext(ctx).QueryRowxContext(ctx, query,
		p.ID, p.UserID, p.DoctorName, p.DoctorContact, p.PrescriptionDate, p.Status, p.Notes, p.DocumentURL,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return database.MapError(err, "prescription", "create")
}

// GetByID gets a prescription by ID
func (r *PrescriptionRepository) GetByID(ctx context.Context, id string) (*domain.Prescription, error) {
	return getOne[domain.Prescription](ctx, r.db.Ext(ctx), "prescriptions", prescriptionColumns, id, "prescription")
}

// List lists prescriptions, newest first
func (r *PrescriptionRepository) List(ctx context.Context, filter PrescriptionFilter, page Page) ([]domain.Prescription, int64, error) {
	base := psql.Select().From("prescriptions")
	if filter.UserID != "" {
		base = base.Where(squirrel.Eq{"user_id": filter.UserID})
	}
	if filter.Status != "" {
		base = base.Where(squirrel.Eq{"status": filter.Status})
	}
	items, total, err := selectPage[domain.Prescription](ctx, r.db.Ext(ctx), base, prescriptionColumns, "created_at DESC", page)
	if err != nil {
		return nil, 0, database.MapError(err, "prescription", "list")
	}
	return items, total, nil
}

// ListByUser lists the prescriptions a user uploaded
func (r *PrescriptionRepository) ListByUser(ctx context.Context, userID string, page Page) ([]domain.Prescription, int64, error) {
	return r.List(ctx, PrescriptionFilter{UserID: userID}, page)
}

// ListByStatus lists prescriptions in one status
func (r *PrescriptionRepository) ListByStatus(ctx context.Context, status domain.PrescriptionStatus, page Page) ([]domain.Prescription, int64, error) {
	return r.List(ctx, PrescriptionFilter{Status: status}, page)
}

// UpdateDetails edits the doctor and note fields of a prescription still under review.
// It returns false when the prescription has left PENDING.
func (r *PrescriptionRepository) UpdateDetails(ctx context.Context, p *domain.Prescription) (bool, error) {
	query := `
		UPDATE prescriptions SET
			doctor_name = $2, doctor_contact = $3, prescription_date = $4, notes = $5, updated_at = NOW()
		WHERE id = $1 AND status = 'PENDING'
	`
	ok, err := conditional(r.db.Ext(ctx).ExecContext(ctx, query,
		p.ID, p.DoctorName, p.DoctorContact, p.PrescriptionDate, p.Notes,
	))
	return ok, database.MapError(err, "prescription", "update")
}

// UpdateTransition writes a review or fulfilment while the stored status still equals from.
func (r *PrescriptionRepository) UpdateTransition(ctx context.Context, p *domain.Prescription, from domain.PrescriptionStatus) (bool, error) {
	query := `
		UPDATE prescriptions SET status = $3, approved_by = $4, approved_at = $5, updated_at = $6
		WHERE id = $1 AND status = $2
	`
	ok, err := conditional(r.db.Ext(ctx).ExecContext(ctx, query,
		p.ID, from, p.Status, p.ApprovedBy, p.ApprovedAt, p.UpdatedAt,
	))
	return ok, database.MapError(err, "prescription", "update")
}

// SetDocumentURL stores the uploaded scan location
func (r *PrescriptionRepository) SetDocumentURL(ctx context.Context, id, url string) error {
	query := `UPDATE prescriptions SET document_url = $2, updated_at = NOW() WHERE id = $1`
	return database.MapError(affected(r.db.Ext(ctx).ExecContext(ctx, query, id, url)), "prescription", "set document")
}
