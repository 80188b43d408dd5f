package service

import (
	"context"
	"strings"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
)

// CategoryInput carries the editable category fields
type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=2000"`
}

// SupplierInput carries the editable supplier fields
type SupplierInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	ContactName string `json:"contact_name" validate:"max=255"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone" validate:"max=50"`
	Address     string `json:"address" validate:"max=500"`
}

// BranchInput carries the editable branch fields
type BranchInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	Address  string `json:"address" validate:"required,max=500"`
	Phone    string `json:"phone" validate:"max=50"`
	IsActive *bool  `json:"is_active"`
}

// CatalogService manages categories, suppliers and branches
type CatalogService struct {
	categories CategoryStore
	suppliers  SupplierStore
	branches   BranchStore
	logger     *logger.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(categories CategoryStore, suppliers SupplierStore, branches BranchStore, log *logger.Logger) *CatalogService {
	return &CatalogService{
		categories: categories,
		suppliers:  suppliers,
		branches:   branches,
		logger:     log.WithComponent("catalog"),
	}
}

// Category operations

// CreateCategory creates a category
func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	c := &domain.Category{Name: strings.TrimSpace(in.Name), Description: in.Description}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetCategory gets a category by ID
func (s *CatalogService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	return s.categories.GetByID(ctx, id)
}

// ListCategories lists categories
func (s *CatalogService) ListCategories(ctx context.Context, params ListParams) ([]domain.Category, int64, error) {
	return s.categories.List(ctx, params.Search, params.page())
}

// UpdateCategory updates a category
func (s *CatalogService) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*domain.Category, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(in.Name)
	c.Description = in.Description
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCategory deletes a category
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	return s.categories.Delete(ctx, id)
}

// Supplier operations

// CreateSupplier creates a supplier
func (s *CatalogService) CreateSupplier(ctx context.Context, in SupplierInput) (*domain.Supplier, error) {
	sup := &domain.Supplier{}
	applySupplier(sup, in)
	if err := s.suppliers.Create(ctx, sup); err != nil {
		return nil, err
	}
	return sup, nil
}

// GetSupplier gets a supplier by ID
func (s *CatalogService) GetSupplier(ctx context.Context, id string) (*domain.Supplier, error) {
	return s.suppliers.GetByID(ctx, id)
}

// ListSuppliers lists suppliers
func (s *CatalogService) ListSuppliers(ctx context.Context, params ListParams) ([]domain.Supplier, int64, error) {
	return s.suppliers.List(ctx, params.Search, params.page())
}

// UpdateSupplier updates a supplier
func (s *CatalogService) UpdateSupplier(ctx context.Context, id string, in SupplierInput) (*domain.Supplier, error) {
	sup, err := s.suppliers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applySupplier(sup, in)
	if err := s.suppliers.Update(ctx, sup); err != nil {
		return nil, err
	}
	return sup, nil
}

// DeleteSupplier deletes a supplier
func (s *CatalogService) DeleteSupplier(ctx context.Context, id string) error {
	return s.suppliers.Delete(ctx, id)
}

func applySupplier(sup *domain.Supplier, in SupplierInput) {
	sup.Name = strings.TrimSpace(in.Name)
	sup.ContactName = in.ContactName
	sup.Email = strings.ToLower(strings.TrimSpace(in.Email))
	sup.Phone = in.Phone
	sup.Address = in.Address
}

// Branch operations

// CreateBranch creates a branch. New branches are active unless told otherwise.
func (s *CatalogService) CreateBranch(ctx context.Context, in BranchInput) (*domain.Branch, error) {
	b := &domain.Branch{IsActive: true}
	applyBranch(b, in)
	if err := s.branches.Create(ctx, b); err != nil {
		return nil, err
	}
	s.logger.Info().Str("branch_id", b.ID).Str("name", b.Name).Msg("branch created")
	return b, nil
}

// GetBranch gets a branch by ID
func (s *CatalogService) GetBranch(ctx context.Context, id string) (*domain.Branch, error) {
	return s.branches.GetByID(ctx, id)
}

// ListBranches lists branches
func (s *CatalogService) ListBranches(ctx context.Context, activeOnly bool, params ListParams) ([]domain.Branch, int64, error) {
	return s.branches.List(ctx, params.Search, activeOnly, params.page())
}

// UpdateBranch updates a branch
func (s *CatalogService) UpdateBranch(ctx context.Context, id string, in BranchInput) (*domain.Branch, error) {
	b, err := s.branches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyBranch(b, in)
	if err := s.branches.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// DeleteBranch deletes a branch
func (s *CatalogService) DeleteBranch(ctx context.Context, id string) error {
	return s.branches.Delete(ctx, id)
}

func applyBranch(b *domain.Branch, in BranchInput) {
	b.Name = strings.TrimSpace(in.Name)
	b.Address = in.Address
	b.Phone = in.Phone
	if in.IsActive != nil {
		b.IsActive = *in.IsActive
	}
}
