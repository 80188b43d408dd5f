package service

import (
	"context"
	"time"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/repository"
)

// ProductStore persists products
type ProductStore interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	List(ctx context.Context, filter repository.ProductFilter, page repository.Page) ([]domain.Product, int64, error)
	Update(ctx context.Context, p *domain.Product) error
	AdjustStockQuantity(ctx context.Context, id string, delta int) error
	SetImageURL(ctx context.Context, id, url string) error
	Delete(ctx context.Context, id string) error
}

// CategoryStore persists categories
type CategoryStore interface {
	Create(ctx context.Context, c *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context, search string, page repository.Page) ([]domain.Category, int64, error)
	Update(ctx context.Context, c *domain.Category) error
	Delete(ctx context.Context, id string) error
}

// SupplierStore persists suppliers
type SupplierStore interface {
	Create(ctx context.Context, s *domain.Supplier) error
	GetByID(ctx context.Context, id string) (*domain.Supplier, error)
	List(ctx context.Context, search string, page repository.Page) ([]domain.Supplier, int64, error)
	Update(ctx context.Context, s *domain.Supplier) error
	Delete(ctx context.Context, id string) error
}

// BranchStore persists branches
type BranchStore interface {
	Create(ctx context.Context, b *domain.Branch) error
	GetByID(ctx context.Context, id string) (*domain.Branch, error)
	List(ctx context.Context, search string, activeOnly bool, page repository.Page) ([]domain.Branch, int64, error)
	Update(ctx context.Context, b *domain.Branch) error
	Delete(ctx context.Context, id string) error
}

// InventoryStore persists per-branch stock
type InventoryStore interface {
	Create(ctx context.Context, inv *domain.Inventory) error
	GetByID(ctx context.Context, id string) (*domain.Inventory, error)
	LockByProductAndBranch(ctx context.Context, productID, branchID string) (*domain.Inventory, error)
	List(ctx context.Context, filter repository.InventoryFilter, page repository.Page) ([]domain.Inventory, int64, error)
	ListNeedingRestock(ctx context.Context) ([]domain.Inventory, error)
	SaveStock(ctx context.Context, inv *domain.Inventory) error
	UpdateLevels(ctx context.Context, inv *domain.Inventory) error
	SetExpiryAlert(ctx context.Context, productID, branchID string, on bool) error
	ClearExpiryAlerts(ctx context.Context) error
}

// StockStore persists stock receipts
type StockStore interface {
	Create(ctx context.Context, s *domain.Stock) error
	GetByID(ctx context.Context, id string) (*domain.Stock, error)
	List(ctx context.Context, filter repository.StockFilter, page repository.Page) ([]domain.Stock, int64, error)
	ListExpiringBetween(ctx context.Context, from, to time.Time) ([]domain.Stock, error)
	ListExpiringInStock(ctx context.Context, cutoff time.Time) ([]domain.Stock, error)
}
