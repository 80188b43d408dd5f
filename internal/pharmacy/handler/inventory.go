package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/repository"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/service"
	"github.com/pharmacare/pharmacare-backend/pkg/httputil"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
)

const defaultExpiringDays = 30

// InventoryHandler handles per-branch stock and stock receipt endpoints
type InventoryHandler struct {
	service *service.InventoryService
	logger  *logger.Logger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(svc *service.InventoryService, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{
		service: svc,
		logger:  log,
	}
}

// List lists inventory rows
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	filter := repository.InventoryFilter{
		BranchID:     r.URL.Query().Get("branch_id"),
		ProductID:    r.URL.Query().Get("product_id"),
		LowStockOnly: httputil.QueryBool(r, "low_stock"),
	}
	items, total, err := h.service.List(r.Context(), filter, params)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	list(w, params, items, total)
}

// ListLowStock lists rows at or below their minimum
func (h *InventoryHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	items, total, err := h.service.ListLowStock(r.Context(), r.URL.Query().Get("branch_id"), params)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	list(w, params, items, total)
}

// Get gets an inventory row by ID
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, inv)
}

// Create registers a product at a branch
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateInventoryInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	inv, err := h.service.Create(r.Context(), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.Created(w, inv)
}

// Update changes the stock thresholds of a row
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateInventoryInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	inv, err := h.service.UpdateLevels(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, inv)
}

// Adjust applies a manual stock correction
func (h *InventoryHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req service.AdjustStockInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	inv, err := h.service.AdjustStock(r.Context(), id, req)
	if err != nil {
		h.logger.Warn().Err(err).Str("inventory_id", id).Int("delta", req.Delta).Msg("stock adjustment refused")
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, inv)
}

// ============================================================================
// STOCK RECEIPTS
// ============================================================================

// ListStocks lists stock receipts
func (h *InventoryHandler) ListStocks(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	filter := repository.StockFilter{
		ProductID: r.URL.Query().Get("product_id"),
		BranchID:  r.URL.Query().Get("branch_id"),
	}
	items, total, err := h.service.ListStocks(r.Context(), filter, params)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	list(w, params, items, total)
}

// GetStock gets a stock receipt by ID
func (h *InventoryHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.GetStock(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, s)
}

// ReceiveStock records a delivery and adds it to inventory
func (h *InventoryHandler) ReceiveStock(w http.ResponseWriter, r *http.Request) {
	var req service.ReceiveStockInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	s, err := h.service.ReceiveStock(r.Context(), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.Created(w, s)
}

// ListExpiring lists batches expiring within ?days= (default 30)
func (h *InventoryHandler) ListExpiring(w http.ResponseWriter, r *http.Request) {
	days, err := httputil.QueryInt(r, "days", defaultExpiringDays)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	items, err := h.service.ListExpiring(r.Context(), days)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, items)
}
