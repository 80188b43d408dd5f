package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/service"
	"github.com/pharmacare/pharmacare-backend/pkg/errors"
	"github.com/pharmacare/pharmacare-backend/pkg/httputil"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
)

// InteractionHandler handles drug interaction endpoints
type InteractionHandler struct {
	service *service.InteractionService
	logger  *logger.Logger
}

// NewInteractionHandler creates a new drug interaction handler
func NewInteractionHandler(svc *service.InteractionService, log *logger.Logger) *InteractionHandler {
	return &InteractionHandler{
		service: svc,
		logger:  log,
	}
}

type checkInteractionsRequest struct {
	ProductIDs []string `json:"product_ids" validate:"required,min=2,dive,uuid"`
}

// List lists drug interactions
func (h *InteractionHandler) List(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	items, total, err := h.service.List(r.Context(), params)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	list(w, params, items, total)
}

// Get gets a drug interaction by ID
func (h *InteractionHandler) Get(w http.ResponseWriter, r *http.Request) {
	byID(w, r, h.service.Get)
}

// Create records an interaction between two products
func (h *InteractionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateInteractionInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	d, err := h.service.Create(r.Context(), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.Created(w, d)
}

// Delete deletes a drug interaction
func (h *InteractionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.NoContent(w)
}

// Between looks up the interaction between ?a= and ?b=, in either order
func (h *InteractionHandler) Between(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	details := map[string]string{}
	for _, key := range []string{"a", "b"} {
		if q.Get(key) == "" {
			details[key] = "this field is required"
		} else if _, err := uuid.Parse(q.Get(key)); err != nil {
			details[key] = "must be a valid UUID"
		}
	}
	if len(details) > 0 {
		httputil.Error(w, r, errors.Validation(details))
		return
	}
	d, err := h.service.Between(r.Context(), q.Get("a"), q.Get("b"))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, d)
}

// Check lists every known interaction among a set of products
func (h *InteractionHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req checkInteractionsRequest
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	found, err := h.service.CheckInteractions(r.Context(), req.ProductIDs)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, found)
}
