package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/events"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/repository"
	"github.com/pharmacare/pharmacare-backend/pkg/actor"
	"github.com/pharmacare/pharmacare-backend/pkg/errors"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
)

const prescriptionDocumentPrefix = "prescriptions"

var documentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// PrescriptionStore persists prescriptions
type PrescriptionStore interface {
	Create(ctx context.Context, p *domain.Prescription) error
	GetByID(ctx context.Context, id string) (*domain.Prescription, error)
	List(ctx context.Context, filter repository.PrescriptionFilter, page repository.Page) ([]domain.Prescription, int64, error)
	UpdateDetails(ctx context.Context, p *domain.Prescription) (bool, error)
	UpdateTransition(ctx context.Context, p *domain.Prescription, from domain.PrescriptionStatus) (bool, error)
	SetDocumentURL(ctx context.Context, id, url string) error
}

// PrescriptionInput carries the editable prescription fields
type PrescriptionInput struct {
	UserID           string    `json:"user_id" validate:"omitempty,uuid"`
	DoctorName       string    `json:"doctor_name" validate:"required,max=255"`
	DoctorContact    string    `json:"doctor_contact" validate:"max=255"`
	PrescriptionDate time.Time `json:"prescription_date" validate:"required"`
	Notes            string    `json:"notes" validate:"max=2000"`
}

// PrescriptionService manages prescription review
type PrescriptionService struct {
	prescriptions PrescriptionStore
	files         FileStore
	notifications *NotificationService
	publisher     *events.Publisher
	logger        *logger.Logger
	now           func() time.Time
}

// NewPrescriptionService creates a new prescription service
func NewPrescriptionService(
	prescriptions PrescriptionStore,
	files FileStore,
	notifications *NotificationService,
	publisher *events.Publisher,
	log *logger.Logger,
) *PrescriptionService {
	return &PrescriptionService{
		prescriptions: prescriptions,
		files:         files,
		notifications: notifications,
		publisher:     publisher,
		logger:        log.WithComponent("prescriptions"),
		now:           utcNow,
	}
}

// Create files a PENDING prescription. Without a user id it belongs to the
// current user.
func (s *PrescriptionService) Create(ctx context.Context, in PrescriptionInput) (*domain.Prescription, error) {
	if in.PrescriptionDate.After(s.now()) {
		return nil, errors.ValidationField("prescription_date", "must not be in the future")
	}
	userID := in.UserID
	if userID == "" {
		userID = actor.IDFromContext(ctx)
	}

	p := &domain.Prescription{
		UserID:           userID,
		DoctorName:       in.DoctorName,
		DoctorContact:    in.DoctorContact,
		PrescriptionDate: in.PrescriptionDate,
		Status:           domain.PrescriptionPending,
		Notes:            in.Notes,
	}
	if err := s.prescriptions.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info().Str("prescription_id", p.ID).Str("user_id", p.UserID).Msg("prescription submitted")
	return p, nil
}

// Get gets a prescription by ID
func (s *PrescriptionService) Get(ctx context.Context, id string) (*domain.Prescription, error) {
	return s.prescriptions.GetByID(ctx, id)
}

// List lists prescriptions
func (s *PrescriptionService) List(ctx context.Context, filter repository.PrescriptionFilter, params ListParams) ([]domain.Prescription, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, errors.ValidationField("status", fmt.Sprintf("unknown status %q", filter.Status))
	}
	return s.prescriptions.List(ctx, filter, params.page())
}

// Update edits a prescription that is still PENDING
func (s *PrescriptionService) Update(ctx context.Context, id string, in PrescriptionInput) (*domain.Prescription, error) {
	p, err := s.prescriptions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != domain.PrescriptionPending {
		return nil, errors.IllegalState(fmt.Sprintf("cannot edit prescription in status %s", p.Status))
	}
	if in.PrescriptionDate.After(s.now()) {
		return nil, errors.ValidationField("prescription_date", "must not be in the future")
	}

	p.DoctorName = in.DoctorName
	p.DoctorContact = in.DoctorContact
	p.PrescriptionDate = in.PrescriptionDate
	p.Notes = in.Notes

	ok, err := s.prescriptions.UpdateDetails(ctx, p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.IllegalState("prescription was reviewed by another request")
	}
	return s.prescriptions.GetByID(ctx, id)
}

// Approve approves a PENDING prescription as the current user
func (s *PrescriptionService) Approve(ctx context.Context, id string) (*domain.Prescription, error) {
	actorID := actor.IDFromContext(ctx)
	return s.review(ctx, id, func(p *domain.Prescription) error { return p.Approve(actorID, s.now()) },
		domain.NotificationPrescriptionApproved, "Prescription approved")
}

// Reject rejects a PENDING prescription as the current user
func (s *PrescriptionService) Reject(ctx context.Context, id string) (*domain.Prescription, error) {
	actorID := actor.IDFromContext(ctx)
	return s.review(ctx, id, func(p *domain.Prescription) error { return p.Reject(actorID, s.now()) },
		domain.NotificationPrescriptionRejected, "Prescription rejected")
}

func (s *PrescriptionService) review(ctx context.Context, id string, apply func(*domain.Prescription) error, typ domain.NotificationType, title string) (*domain.Prescription, error) {
	p, err := s.prescriptions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(p); err != nil {
		return nil, err
	}

	ok, err := s.prescriptions.UpdateTransition(ctx, p, domain.PrescriptionPending)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.IllegalState("prescription was reviewed by another request")
	}

	reviewerID := actor.IDFromContext(ctx)
	s.logger.Info().
		Str("prescription_id", p.ID).
		Str("status", string(p.Status)).
		Str("actor_id", reviewerID).
		Msg("prescription reviewed")
	s.publisher.PrescriptionReviewed(ctx, p, reviewerID)
	s.notifications.Notify(ctx, p.UserID, typ, title,
		fmt.Sprintf("Your prescription from %s was %s.", p.DoctorName, lowerStatus(string(p.Status))),
		"prescription", p.ID)
	return p, nil
}

// Fulfill marks an APPROVED prescription dispensed. It joins the caller's
// transaction.
func (s *PrescriptionService) Fulfill(ctx context.Context, id string) (*domain.Prescription, error) {
	p, err := s.prescriptions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.Fulfill(s.now()); err != nil {
		return nil, err
	}
	ok, err := s.prescriptions.UpdateTransition(ctx, p, domain.PrescriptionApproved)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.IllegalState("prescription was changed by another request")
	}
	return p, nil
}

// UploadDocument stores a scan of the prescription and records its URL
func (s *PrescriptionService) UploadDocument(ctx context.Context, id string, file Upload) (*domain.Prescription, error) {
	if !documentTypes[file.ContentType] {
		return nil, errors.ValidationField("file", "must be a PDF, JPEG or PNG document")
	}
	if _, err := s.prescriptions.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if s.files == nil {
		return nil, errUploadsDisabled
	}
	url, err := s.files.Upload(ctx, prescriptionDocumentPrefix+"/"+id, file.Filename, file.ContentType, file.Body)
	if err != nil {
		return nil, err
	}
	if err := s.prescriptions.SetDocumentURL(ctx, id, url); err != nil {
		return nil, err
	}
	s.logger.Info().Str("prescription_id", id).Msg("prescription document uploaded")
	return s.prescriptions.GetByID(ctx, id)
}
