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

// RestockHandler handles restock request endpoints
type RestockHandler struct {
	service *service.RestockService
	logger  *logger.Logger
}

// NewRestockHandler creates a new restock handler
func NewRestockHandler(svc *service.RestockService, log *logger.Logger) *RestockHandler {
	return &RestockHandler{
		service: svc,
		logger:  log,
	}
}

// List lists restock requests
func (h *RestockHandler) List(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	q := r.URL.Query()
	filter := repository.RestockFilter{
		Status:      domain.RestockStatus(q.Get("status")),
		BranchID:    q.Get("branch_id"),
		ProductID:   q.Get("product_id"),
		RequestedBy: q.Get("requested_by"),
	}
	items, total, err := h.service.List(r.Context(), filter, params)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	list(w, params, items, total)
}

// Get gets a restock request by ID
func (h *RestockHandler) Get(w http.ResponseWriter, r *http.Request) {
	req, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, req)
}

// Create files a restock request for the current user
func (h *RestockHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CreateRestockInput
	if err := httputil.DecodeAndValidate(r, &in); err != nil {
		httputil.Error(w, r, err)
		return
	}
	req, err := h.service.Create(r.Context(), in)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.Created(w, req)
}

// Approve approves a pending request
func (h *RestockHandler) Approve(w http.ResponseWriter, r *http.Request) {
	byID(w, r, h.service.Approve)
}

// Reject rejects a pending request
func (h *RestockHandler) Reject(w http.ResponseWriter, r *http.Request) {
	byID(w, r, h.service.Reject)
}

// Fulfill receives an approved request into inventory
func (h *RestockHandler) Fulfill(w http.ResponseWriter, r *http.Request) {
	byID(w, r, h.service.Fulfill)
}

// Cancel withdraws a pending request
func (h *RestockHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	byID(w, r, h.service.Cancel)
}

// BulkApprove approves every listed request or none of them
func (h *RestockHandler) BulkApprove(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	approved, err := h.service.BulkApprove(r.Context(), req.IDs)
	if err != nil {
		h.logger.Warn().Err(err).Int("count", len(req.IDs)).Msg("bulk restock approval failed")
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, approved)
}
