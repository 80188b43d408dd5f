package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/events"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/repository"
	"github.com/pharmacare/pharmacare-backend/pkg/actor"
	"github.com/pharmacare/pharmacare-backend/pkg/errors"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
)

// CreateInventoryInput registers a product at a branch
type CreateInventoryInput struct {
	ProductID         string `json:"product_id" validate:"required,uuid"`
	BranchID          string `json:"branch_id" validate:"required,uuid"`
	StockLevel        int    `json:"stock_level" validate:"gte=0"`
	MinimumStockLevel *int   `json:"minimum_stock_level" validate:"omitempty,gte=0"`
	MaximumStockLevel *int   `json:"maximum_stock_level" validate:"omitempty,gte=0"`
}

// UpdateInventoryInput changes the restock thresholds
type UpdateInventoryInput struct {
	MinimumStockLevel *int `json:"minimum_stock_level" validate:"omitempty,gte=0"`
	MaximumStockLevel *int `json:"maximum_stock_level" validate:"omitempty,gte=0"`
}

// AdjustStockInput is a manual stock correction
type AdjustStockInput struct {
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"required,max=500"`
}

// ReceiveStockInput records a delivered batch
type ReceiveStockInput struct {
	ProductID   string     `json:"product_id" validate:"required,uuid"`
	BranchID    string     `json:"branch_id" validate:"required,uuid"`
	SupplierID  string     `json:"supplier_id" validate:"omitempty,uuid"`
	Quantity    int        `json:"quantity" validate:"required,gt=0"`
	UnitCost    string     `json:"unit_cost" validate:"required,money"`
	BatchNumber string     `json:"batch_number" validate:"max=100"`
	ExpiryDate  *time.Time `json:"expiry_date"`
}

// InventoryService manages branch stock levels and stock receipts
type InventoryService struct {
	tx        Transactor
	inventory InventoryStore
	stocks    StockStore
	products  ProductStore
	branches  BranchStore
	suppliers SupplierStore
	alerts    *AlertService
	views     *ProductViews
	publisher *events.Publisher
	logger    *logger.Logger
	now       func() time.Time
}

// NewInventoryService creates a new inventory service
func NewInventoryService(
	tx Transactor,
	inventory InventoryStore,
	stocks StockStore,
	products ProductStore,
	branches BranchStore,
	suppliers SupplierStore,
	alerts *AlertService,
	views *ProductViews,
	publisher *events.Publisher,
	log *logger.Logger,
) *InventoryService {
	return &InventoryService{
		tx:        tx,
		inventory: inventory,
		stocks:    stocks,
		products:  products,
		branches:  branches,
		suppliers: suppliers,
		alerts:    alerts,
		views:     views,
		publisher: publisher,
		logger:    log.WithComponent("inventory"),
		now:       utcNow,
	}
}

// Create registers a product at a branch
func (s *InventoryService) Create(ctx context.Context, in CreateInventoryInput) (*domain.Inventory, error) {
	if _, err := s.products.GetByID(ctx, in.ProductID); err != nil {
		return nil, err
	}
	if _, err := s.branches.GetByID(ctx, in.BranchID); err != nil {
		return nil, err
	}

	inv := &domain.Inventory{
		ProductID:         in.ProductID,
		BranchID:          in.BranchID,
		StockLevel:        in.StockLevel,
		MinimumStockLevel: in.MinimumStockLevel,
		MaximumStockLevel: in.MaximumStockLevel,
	}
	if err := inv.ValidateLevels(); err != nil {
		return nil, err
	}
	inv.LowStockAlert = inv.NeedsRestocking()

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.inventory.Create(ctx, inv); err != nil {
			return err
		}
		if inv.StockLevel == 0 {
			return nil
		}
		return s.products.AdjustStockQuantity(ctx, inv.ProductID, inv.StockLevel)
	})
	if err != nil {
		return nil, err
	}
	s.views.Changed(ctx, inv.ProductID)
	return inv, nil
}

// Get gets an inventory row by ID
func (s *InventoryService) Get(ctx context.Context, id string) (*domain.Inventory, error) {
	return s.inventory.GetByID(ctx, id)
}

// List lists inventory rows
func (s *InventoryService) List(ctx context.Context, filter repository.InventoryFilter, params ListParams) ([]domain.Inventory, int64, error) {
	return s.inventory.List(ctx, filter, params.page())
}

// ListLowStock lists rows at or below their minimum, optionally for one branch
func (s *InventoryService) ListLowStock(ctx context.Context, branchID string, params ListParams) ([]domain.Inventory, int64, error) {
	return s.inventory.List(ctx, repository.InventoryFilter{BranchID: branchID, LowStockOnly: true}, params.page())
}

// UpdateLevels changes the minimum and maximum stock levels
func (s *InventoryService) UpdateLevels(ctx context.Context, id string, in UpdateInventoryInput) (*domain.Inventory, error) {
	inv, err := s.inventory.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.MinimumStockLevel = in.MinimumStockLevel
	inv.MaximumStockLevel = in.MaximumStockLevel
	if err := inv.ValidateLevels(); err != nil {
		return nil, err
	}
	inv.LowStockAlert = inv.NeedsRestocking()

	if err := s.inventory.UpdateLevels(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// AdjustStock applies a manual correction to an inventory row and raises
// LOW_STOCK or OUT_OF_STOCK alerts when the new level calls for one.
func (s *InventoryService) AdjustStock(ctx context.Context, id string, in AdjustStockInput) (*domain.Inventory, error) {
	if in.Delta == 0 {
		return nil, errors.ValidationField("delta", "must not be zero")
	}
	current, err := s.inventory.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var inv *domain.Inventory
	var raised []*domain.Alert
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		inv, raised, err = s.applyChange(ctx, current.ProductID, current.BranchID, in.Delta, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterChange(ctx, inv, in.Delta, in.Reason, raised)
	return inv, nil
}

// AddStock adds quantity of a product to a branch, creating the inventory row
// if the branch never stocked it. It joins the caller's transaction, so
// events are left to the caller.
func (s *InventoryService) AddStock(ctx context.Context, productID, branchID string, quantity int) (*domain.Inventory, []*domain.Alert, error) {
	if quantity <= 0 {
		return nil, nil, errors.ValidationField("quantity", "must be greater than 0")
	}
	return s.applyChange(ctx, productID, branchID, quantity, true)
}

// RemoveStock takes quantity of a product out of a branch, failing with
// Validation when the branch does not hold enough.
func (s *InventoryService) RemoveStock(ctx context.Context, productID, branchID string, quantity int) (*domain.Inventory, []*domain.Alert, error) {
	if quantity <= 0 {
		return nil, nil, errors.ValidationField("quantity", "must be greater than 0")
	}
	return s.applyChange(ctx, productID, branchID, -quantity, false)
}

// applyChange must run inside a transaction: it locks the row, applies the
// change, keeps the product's chain-wide counter in step and raises alerts.
func (s *InventoryService) applyChange(ctx context.Context, productID, branchID string, delta int, createMissing bool) (*domain.Inventory, []*domain.Alert, error) {
	inv, err := s.inventory.LockByProductAndBranch(ctx, productID, branchID)
	if err != nil {
		if !errors.IsNotFound(err) || !createMissing {
			return nil, nil, err
		}
		inv = &domain.Inventory{ProductID: productID, BranchID: branchID}
		if err := s.inventory.Create(ctx, inv); err != nil {
			return nil, nil, err
		}
	}

	if err := inv.ApplyStockChange(delta, s.now()); err != nil {
		return nil, nil, err
	}
	if err := s.inventory.SaveStock(ctx, inv); err != nil {
		return nil, nil, err
	}
	if err := s.products.AdjustStockQuantity(ctx, productID, delta); err != nil {
		return nil, nil, err
	}

	raised, err := s.raiseStockAlerts(ctx, inv)
	if err != nil {
		return nil, nil, err
	}
	return inv, raised, nil
}

func (s *InventoryService) raiseStockAlerts(ctx context.Context, inv *domain.Inventory) ([]*domain.Alert, error) {
	alertType, message, ok := stockAlert(inv)
	if !ok {
		return nil, nil
	}

	productID, branchID := inv.ProductID, inv.BranchID
	a, err := s.alerts.raise(ctx, alertType, &productID, &branchID, message)
	if err != nil || a == nil {
		return nil, err
	}
	return []*domain.Alert{a}, nil
}

// stockAlert picks the alert an inventory row needs, if any.
func stockAlert(inv *domain.Inventory) (domain.AlertType, string, bool) {
	switch {
	case inv.IsOutOfStock():
		return domain.AlertOutOfStock,
			fmt.Sprintf("product %s is out of stock at branch %s", inv.ProductID, inv.BranchID), true
	case inv.NeedsRestocking():
		return domain.AlertLowStock,
			fmt.Sprintf("product %s is low on stock at branch %s (%d/%d)",
				inv.ProductID, inv.BranchID, inv.StockLevel, *inv.MinimumStockLevel), true
	default:
		return "", "", false
	}
}

// afterChange runs once the transaction has committed.
func (s *InventoryService) afterChange(ctx context.Context, inv *domain.Inventory, delta int, reason string, raised []*domain.Alert) {
	actorID := actor.IDFromContext(ctx)
	s.logger.Info().
		Str("inventory_id", inv.ID).
		Int("delta", delta).
		Int("stock_level", inv.StockLevel).
		Str("actor_id", actorID).
		Msg("stock adjusted")

	s.views.Changed(ctx, inv.ProductID)
	s.publisher.StockAdjusted(ctx, inv, delta, reason, actorID)
	for _, a := range raised {
		s.publisher.AlertRaised(ctx, a)
	}
}

// ReceiveStock records a delivered batch and adds it to branch inventory
func (s *InventoryService) ReceiveStock(ctx context.Context, in ReceiveStockInput) (*domain.Stock, error) {
	unitCost, err := decimal.NewFromString(in.UnitCost)
	if err != nil || unitCost.IsNegative() {
		return nil, errors.ValidationField("unit_cost", "must be a non-negative decimal")
	}
	if _, err := s.products.GetByID(ctx, in.ProductID); err != nil {
		return nil, err
	}
	if _, err := s.branches.GetByID(ctx, in.BranchID); err != nil {
		return nil, err
	}
	if in.SupplierID != "" {
		if _, err := s.suppliers.GetByID(ctx, in.SupplierID); err != nil {
			return nil, err
		}
	}

	stock := &domain.Stock{
		ProductID:   in.ProductID,
		BranchID:    in.BranchID,
		SupplierID:  strPtr(in.SupplierID),
		Quantity:    in.Quantity,
		UnitCost:    unitCost,
		BatchNumber: in.BatchNumber,
		ExpiryDate:  in.ExpiryDate,
		ReceivedAt:  s.now(),
	}

	var inv *domain.Inventory
	var raised []*domain.Alert
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.stocks.Create(ctx, stock); err != nil {
			return err
		}
		var err error
		inv, raised, err = s.AddStock(ctx, in.ProductID, in.BranchID, in.Quantity)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterChange(ctx, inv, in.Quantity, "stock received: batch "+stock.BatchNumber, raised)
	return stock, nil
}

// GetStock gets a stock receipt by ID
func (s *InventoryService) GetStock(ctx context.Context, id string) (*domain.Stock, error) {
	return s.stocks.GetByID(ctx, id)
}

// ListStocks lists stock receipts
func (s *InventoryService) ListStocks(ctx context.Context, filter repository.StockFilter, params ListParams) ([]domain.Stock, int64, error) {
	return s.stocks.List(ctx, filter, params.page())
}

// ListExpiring lists batches expiring within the next days days
func (s *InventoryService) ListExpiring(ctx context.Context, days int) ([]domain.Stock, error) {
	if days < 0 {
		return nil, errors.ValidationField("days", "must not be negative")
	}
	now := s.now()
	return s.stocks.ListExpiringBetween(ctx, now, now.AddDate(0, 0, days))
}
