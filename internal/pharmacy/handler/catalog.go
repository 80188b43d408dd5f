package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/service"
	"github.com/pharmacare/pharmacare-backend/pkg/httputil"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
)

// CatalogHandler handles category, supplier and branch endpoints
type CatalogHandler struct {
	service *service.CatalogService
	logger  *logger.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(svc *service.CatalogService, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: svc,
		logger:  log,
	}
}

// ============================================================================
// CATEGORIES
// ============================================================================

// ListCategories lists categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	items, total, err := h.service.ListCategories(r.Context(), params)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	list(w, params, items, total)
}

// GetCategory gets a category by ID
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, c)
}

// CreateCategory creates a category
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req service.CategoryInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	c, err := h.service.CreateCategory(r.Context(), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.Created(w, c)
}

// UpdateCategory updates a category
func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req service.CategoryInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	c, err := h.service.UpdateCategory(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, c)
}

// DeleteCategory deletes a category
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.NoContent(w)
}

// ============================================================================
// SUPPLIERS
// ============================================================================

// ListSuppliers lists suppliers
func (h *CatalogHandler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	items, total, err := h.service.ListSuppliers(r.Context(), params)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	list(w, params, items, total)
}

// GetSupplier gets a supplier by ID
func (h *CatalogHandler) GetSupplier(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.GetSupplier(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, s)
}

// CreateSupplier creates a supplier
func (h *CatalogHandler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req service.SupplierInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	s, err := h.service.CreateSupplier(r.Context(), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.Created(w, s)
}

// UpdateSupplier updates a supplier
func (h *CatalogHandler) UpdateSupplier(w http.ResponseWriter, r *http.Request) {
	var req service.SupplierInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	s, err := h.service.UpdateSupplier(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, s)
}

// DeleteSupplier deletes a supplier
func (h *CatalogHandler) DeleteSupplier(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSupplier(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.NoContent(w)
}

// ============================================================================
// BRANCHES
// ============================================================================

// ListBranches lists branches, optionally only the active ones
func (h *CatalogHandler) ListBranches(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	items, total, err := h.service.ListBranches(r.Context(), httputil.QueryBool(r, "active"), params)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	list(w, params, items, total)
}

// GetBranch gets a branch by ID
func (h *CatalogHandler) GetBranch(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.GetBranch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, b)
}

// CreateBranch creates a branch
func (h *CatalogHandler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	var req service.BranchInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	b, err := h.service.CreateBranch(r.Context(), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.Created(w, b)
}

// UpdateBranch updates a branch
func (h *CatalogHandler) UpdateBranch(w http.ResponseWriter, r *http.Request) {
	var req service.BranchInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	b, err := h.service.UpdateBranch(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, b)
}

// DeleteBranch deletes a branch
func (h *CatalogHandler) DeleteBranch(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteBranch(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.NoContent(w)
}
