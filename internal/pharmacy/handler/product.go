package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/repository"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/service"
	"github.com/pharmacare/pharmacare-backend/pkg/httputil"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
)

// ProductHandler handles product, substitute and product interaction endpoints
type ProductHandler struct {
	products     *service.ProductService
	alternatives *service.AlternativeService
	interactions *service.InteractionService
	logger       *logger.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(products *service.ProductService, alternatives *service.AlternativeService, interactions *service.InteractionService, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		products:     products,
		alternatives: alternatives,
		interactions: interactions,
		logger:       log,
	}
}

// List lists products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	rx, err := queryBoolPtr(r, "requires_prescription")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	lowStockAt, err := httputil.QueryInt(r, "low_stock_at", 0)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	filter := repository.ProductFilter{
		CategoryID:           r.URL.Query().Get("category_id"),
		SupplierID:           r.URL.Query().Get("supplier_id"),
		LowStockAt:           lowStockAt,
		RequiresPrescription: rx,
	}
	products, total, err := h.products.List(r.Context(), filter, params)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	list(w, params, products, total)
}

// Get gets a product by ID
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, p)
}

// Create creates a product
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.ProductInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	p, err := h.products.Create(r.Context(), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.Created(w, p)
}

// Update updates a product
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.ProductInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	p, err := h.products.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, p)
}

// Delete deletes a product
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.NoContent(w)
}

// UploadImage stores a product image from a multipart "file" field
func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	upload, done, err := readUpload(w, r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	defer done()

	p, err := h.products.UploadImage(r.Context(), id, upload)
	if err != nil {
		h.logger.Error().Err(err).Str("product_id", id).Msg("failed to upload product image")
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, p)
}

// ListAlternatives lists the substitutes of a product
func (h *ProductHandler) ListAlternatives(w http.ResponseWriter, r *http.Request) {
	alts, err := h.alternatives.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, alts)
}

// RecommendedAlternatives lists in-stock substitutes, best stocked first
func (h *ProductHandler) RecommendedAlternatives(w http.ResponseWriter, r *http.Request) {
	alts, err := h.alternatives.Recommended(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, alts)
}

// AddAlternative lists another product as a substitute
func (h *ProductHandler) AddAlternative(w http.ResponseWriter, r *http.Request) {
	var req service.CreateAlternativeInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	alt, err := h.alternatives.Add(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.Created(w, alt)
}

// RemoveAlternative removes a substitute
func (h *ProductHandler) RemoveAlternative(w http.ResponseWriter, r *http.Request) {
	if err := h.alternatives.Remove(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "altId")); err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.NoContent(w)
}

// ListInteractions lists the known interactions of a product
func (h *ProductHandler) ListInteractions(w http.ResponseWriter, r *http.Request) {
	found, err := h.interactions.ForProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, found)
}
