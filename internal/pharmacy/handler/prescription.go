package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/repository"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/service"
	"github.com/pharmacare/pharmacare-backend/pkg/httputil"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
)

// PrescriptionHandler handles prescription endpoints
type PrescriptionHandler struct {
	service *service.PrescriptionService
	logger  *logger.Logger
}

// NewPrescriptionHandler creates a new prescription handler
func NewPrescriptionHandler(svc *service.PrescriptionService, log *logger.Logger) *PrescriptionHandler {
	return &PrescriptionHandler{
		service: svc,
		logger:  log,
	}
}

// List lists prescriptions
func (h *PrescriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	filter := repository.PrescriptionFilter{
		UserID: r.URL.Query().Get("user_id"),
		Status: domain.PrescriptionStatus(r.URL.Query().Get("status")),
	}
	items, total, err := h.service.List(r.Context(), filter, params)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	list(w, params, items, total)
}

// Get gets a prescription by ID
func (h *PrescriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	byID(w, r, h.service.Get)
}

// Create records a prescription
func (h *PrescriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.PrescriptionInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	p, err := h.service.Create(r.Context(), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.Created(w, p)
}

// Update edits a pending prescription
func (h *PrescriptionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.PrescriptionInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	p, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, p)
}

// Approve approves a pending prescription
func (h *PrescriptionHandler) Approve(w http.ResponseWriter, r *http.Request) {
	byID(w, r, h.service.Approve)
}

// Reject rejects a pending prescription
func (h *PrescriptionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	byID(w, r, h.service.Reject)
}

// UploadDocument stores a scan of the prescription from a multipart "file" field
func (h *PrescriptionHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	upload, done, err := readUpload(w, r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	defer done()

	p, err := h.service.UploadDocument(r.Context(), id, upload)
	if err != nil {
		h.logger.Error().Err(err).Str("prescription_id", id).Msg("failed to upload prescription document")
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, p)
}
