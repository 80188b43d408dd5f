package handler

import (
	"net/http"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/repository"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/service"
	"github.com/pharmacare/pharmacare-backend/pkg/httputil"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	service *service.OrderService
	logger  *logger.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(svc *service.OrderService, log *logger.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		logger:  log,
	}
}

// List lists orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	q := r.URL.Query()
	filter := repository.OrderFilter{
		CustomerID: q.Get("customer_id"),
		BranchID:   q.Get("branch_id"),
		Status:     domain.OrderStatus(q.Get("status")),
	}
	items, total, err := h.service.List(r.Context(), filter, params)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	list(w, params, items, total)
}

// Get gets an order with its items
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	byID(w, r, h.service.Get)
}

// Create places an order, taking its items out of branch stock
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateOrderInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	res, err := h.service.Create(r.Context(), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	if len(res.Warnings) > 0 {
		h.logger.Info().Str("order_id", res.ID).Strs("warnings", res.Warnings).Msg("order placed with interaction warnings")
	}
	httputil.Created(w, res)
}

// Confirm confirms a pending order
func (h *OrderHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	byID(w, r, h.service.Confirm)
}

// Complete completes a confirmed order
func (h *OrderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	byID(w, r, h.service.Complete)
}

// Cancel cancels an order and returns its items to stock
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	byID(w, r, h.service.Cancel)
}
