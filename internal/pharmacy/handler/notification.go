package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/service"
	"github.com/pharmacare/pharmacare-backend/pkg/httputil"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
)

// NotificationHandler handles the current user's notifications
type NotificationHandler struct {
	service *service.NotificationService
	logger  *logger.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(svc *service.NotificationService, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: svc,
		logger:  log,
	}
}

// List lists the caller's notifications, ?unread=true for unread only
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	items, total, err := h.service.ListMine(r.Context(), httputil.QueryBool(r, "unread"), params)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	list(w, params, items, total)
}

// MarkRead marks one notification read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.NoContent(w)
}

// MarkAllRead marks every notification of the caller read
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.MarkAllRead(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, map[string]int64{"updated": n})
}
