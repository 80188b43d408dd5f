package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/repository"
	"github.com/pharmacare/pharmacare-backend/pkg/actor"
	"github.com/pharmacare/pharmacare-backend/pkg/errors"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
)

const productImagePrefix = "products"

func productCacheKey(id string) string {
	return "product:" + id
}

// ProductInput carries the editable product fields
type ProductInput struct {
	Name                 string          `json:"name" validate:"required,max=255"`
	SKU                  string          `json:"sku" validate:"required,max=100"`
	Description          string          `json:"description" validate:"max=2000"`
	CategoryID           string          `json:"category_id" validate:"omitempty,uuid"`
	SupplierID           string          `json:"supplier_id" validate:"omitempty,uuid"`
	Price                decimal.Decimal `json:"price" validate:"money"`
	RequiresPrescription bool            `json:"requires_prescription"`
	Manufacturer         string          `json:"manufacturer" validate:"max=255"`
	DosageForm           string          `json:"dosage_form" validate:"max=100"`
	Strength             string          `json:"strength" validate:"max=100"`
}

// ProductService manages the product catalogue
type ProductService struct {
	products   ProductStore
	categories CategoryStore
	suppliers  SupplierStore
	files      FileStore
	views      *ProductViews
	logger     *logger.Logger
}

// NewProductService creates a new product service
func NewProductService(
	products ProductStore,
	categories CategoryStore,
	suppliers SupplierStore,
	files FileStore,
	views *ProductViews,
	log *logger.Logger,
) *ProductService {
	return &ProductService{
		products:   products,
		categories: categories,
		suppliers:  suppliers,
		files:      files,
		views:      views,
		logger:     log.WithComponent("products"),
	}
}

func (s *ProductService) apply(ctx context.Context, p *domain.Product, in ProductInput) error {
	if in.Price.IsNegative() {
		return errors.ValidationField("price", "must not be negative")
	}
	if in.CategoryID != "" {
		if _, err := s.categories.GetByID(ctx, in.CategoryID); err != nil {
			return err
		}
	}
	if in.SupplierID != "" {
		if _, err := s.suppliers.GetByID(ctx, in.SupplierID); err != nil {
			return err
		}
	}

	p.Name = strings.TrimSpace(in.Name)
	p.SKU = strings.TrimSpace(in.SKU)
	p.Description = in.Description
	p.CategoryID = strPtr(in.CategoryID)
	p.SupplierID = strPtr(in.SupplierID)
	p.Price = in.Price
	p.RequiresPrescription = in.RequiresPrescription
	p.Manufacturer = in.Manufacturer
	p.DosageForm = in.DosageForm
	p.Strength = in.Strength
	return nil
}

// Create creates a product. Stock starts at zero and only moves through inventory.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	p := &domain.Product{}
	if err := s.apply(ctx, p, in); err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info().Str("product_id", p.ID).Str("sku", p.SKU).Str("actor_id", actor.IDFromContext(ctx)).Msg("product created")
	return p, nil
}

// Get gets a product, served from cache when possible
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.views.product(ctx, id, func(ctx context.Context) (*domain.Product, error) {
		return s.products.GetByID(ctx, id)
	})
}

// List lists products matching filter
func (s *ProductService) List(ctx context.Context, filter repository.ProductFilter, params ListParams) ([]domain.Product, int64, error) {
	if filter.Search == "" {
		filter.Search = params.Search
	}
	return s.products.List(ctx, filter, params.page())
}

// Update replaces the editable fields of a product
func (s *ProductService) Update(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, p, in); err != nil {
		return nil, err
	}
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	s.views.Changed(ctx, id)
	return p, nil
}

// Delete deletes a product
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.views.Changed(ctx, id)
	s.logger.Info().Str("product_id", id).Str("actor_id", actor.IDFromContext(ctx)).Msg("product deleted")
	return nil
}

// UploadImage stores a product image and records its URL
func (s *ProductService) UploadImage(ctx context.Context, id string, file Upload) (*domain.Product, error) {
	if !strings.HasPrefix(file.ContentType, "image/") {
		return nil, errors.ValidationField("file", "must be an image")
	}
	if _, err := s.products.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if s.files == nil {
		return nil, errUploadsDisabled
	}
	url, err := s.files.Upload(ctx, productImagePrefix+"/"+id, file.Filename, file.ContentType, file.Body)
	if err != nil {
		return nil, err
	}
	if err := s.products.SetImageURL(ctx, id, url); err != nil {
		return nil, err
	}
	s.views.Changed(ctx, id)
	return s.products.GetByID(ctx, id)
}
