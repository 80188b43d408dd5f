package handler

import (
	"net/http"
	"time"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/repository"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/service"
	"github.com/pharmacare/pharmacare-backend/pkg/errors"
	"github.com/pharmacare/pharmacare-backend/pkg/httputil"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
)

const defaultCleanupDays = 90

// AlertHandler handles alert endpoints
type AlertHandler struct {
	service *service.AlertService
	logger  *logger.Logger
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(svc *service.AlertService, log *logger.Logger) *AlertHandler {
	return &AlertHandler{
		service: svc,
		logger:  log,
	}
}

// List lists alerts
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	resolved, err := queryBoolPtr(r, "resolved")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	q := r.URL.Query()
	filter := repository.AlertFilter{
		Type:      domain.AlertType(q.Get("type")),
		Status:    domain.AlertStatus(q.Get("status")),
		BranchID:  q.Get("branch_id"),
		ProductID: q.Get("product_id"),
		Resolved:  resolved,
	}
	items, total, err := h.service.List(r.Context(), filter, params)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	list(w, params, items, total)
}

// Get gets an alert by ID
func (h *AlertHandler) Get(w http.ResponseWriter, r *http.Request) {
	byID(w, r, h.service.Get)
}

// Create raises an alert by hand
func (h *AlertHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateAlertInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	a, err := h.service.Create(r.Context(), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.Created(w, a)
}

// Resolve resolves an alert
func (h *AlertHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	byID(w, r, h.service.Resolve)
}

// Reopen reopens a resolved alert
func (h *AlertHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	byID(w, r, h.service.Reopen)
}

// Ignore dismisses an alert without resolving it
func (h *AlertHandler) Ignore(w http.ResponseWriter, r *http.Request) {
	byID(w, r, h.service.Ignore)
}

// BulkResolve resolves every listed alert or none of them
func (h *AlertHandler) BulkResolve(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	n, err := h.service.BulkResolve(r.Context(), req.IDs)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, map[string]int64{"resolved": n})
}

// CleanupResolved deletes alerts resolved more than ?older_than_days= ago
func (h *AlertHandler) CleanupResolved(w http.ResponseWriter, r *http.Request) {
	days, err := httputil.QueryInt(r, "older_than_days", defaultCleanupDays)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	if days < 0 {
		httputil.Error(w, r, errors.ValidationField("older_than_days", "must not be negative"))
		return
	}

	n, err := h.service.CleanupResolved(r.Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	h.logger.Info().Int64("deleted", n).Int("older_than_days", days).Msg("resolved alerts cleaned up")
	httputil.OK(w, map[string]int64{"deleted": n})
}
