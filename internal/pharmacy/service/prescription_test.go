package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/pkg/messaging"
	"github.com/pharmacare/pharmacare-backend/pkg/testutil"
)

func TestPrescriptionService_Create(t *testing.T) {
	h := newHarness()
	patient := uuid.New().String()

	p, err := h.prescriptionSvc.Create(asUser(patient), PrescriptionInput{
		DoctorName:       "Dr. Okafor",
		PrescriptionDate: testutil.FixedNow.AddDate(0, 0, -2),
	})
	require.NoError(t, err)
	assert.Equal(t, patient, p.UserID)
	assert.Equal(t, domain.PrescriptionPending, p.Status)

	_, err = h.prescriptionSvc.Create(asUser(patient), PrescriptionInput{
		DoctorName:       "Dr. Okafor",
		PrescriptionDate: testutil.FixedNow.AddDate(0, 0, 1),
	})
	requireAppError(t, err, "VALIDATION_ERROR")
}

func TestPrescriptionService_Review(t *testing.T) {
	f := testutil.NewFixtureFactory()
	pharmacist := uuid.New().String()

	t.Run("approve notifies the patient", func(t *testing.T) {
		h := newHarness()
		patient := uuid.New().String()
		rx := f.Prescription(domain.PrescriptionPending, patient)
		h.prescriptions.byID[rx.ID] = rx

		got, err := h.prescriptionSvc.Approve(asUser(pharmacist), rx.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.PrescriptionApproved, got.Status)
		assert.Equal(t, pharmacist, *got.ApprovedBy)

		h.pub.AssertEventPublished(t, messaging.EventPrescriptionApproved)
		require.Len(t, h.notifications.items, 1)
		assert.Equal(t, patient, h.notifications.items[0].UserID)
		assert.Contains(t, h.notifications.items[0].Message, "approved")
	})

	t.Run("reject after approval is illegal", func(t *testing.T) {
		h := newHarness()
		rx := f.Prescription(domain.PrescriptionApproved, uuid.New().String())
		h.prescriptions.byID[rx.ID] = rx

		_, err := h.prescriptionSvc.Reject(asUser(pharmacist), rx.ID)
		requireAppError(t, err, "ILLEGAL_STATE")
		assert.Empty(t, h.notifications.items)
	})

	t.Run("edits are only allowed while pending", func(t *testing.T) {
		h := newHarness()
		rx := f.Prescription(domain.PrescriptionRejected, uuid.New().String())
		h.prescriptions.byID[rx.ID] = rx

		_, err := h.prescriptionSvc.Update(asUser(pharmacist), rx.ID, PrescriptionInput{
			DoctorName:       "Dr. New",
			PrescriptionDate: testutil.FixedNow,
		})
		requireAppError(t, err, "ILLEGAL_STATE")
	})
}

func TestPrescriptionService_UploadDocument(t *testing.T) {
	f := testutil.NewFixtureFactory()
	h := newHarness()
	files := &fakeFiles{}
	h.prescriptionSvc.files = files
	rx := f.Prescription(domain.PrescriptionPending, uuid.New().String())
	h.prescriptions.byID[rx.ID] = rx

	got, err := h.prescriptionSvc.UploadDocument(context.Background(), rx.ID, Upload{
		Filename:    "scan.pdf",
		ContentType: "application/pdf",
		Body:        strings.NewReader("%PDF"),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://files.test/prescriptions/"+rx.ID+"/scan.pdf", got.DocumentURL)

	_, err = h.prescriptionSvc.UploadDocument(context.Background(), rx.ID, Upload{
		Filename:    "scan.gif",
		ContentType: "image/gif",
		Body:        strings.NewReader(""),
	})
	requireAppError(t, err, "VALIDATION_ERROR")
}
