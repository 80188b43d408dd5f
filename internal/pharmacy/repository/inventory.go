package repository

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/pkg/database"
)

var inventoryColumns = []string{
	"id", "product_id", "branch_id", "stock_level", "minimum_stock_level", "maximum_stock_level",
	"last_restocked", "last_updated", "expiry_alert", "low_stock_alert",
}

// InventoryFilter narrows an inventory listing. Zero values are ignored.
type InventoryFilter struct {
	BranchID     string
	ProductID    string
	LowStockOnly bool
}

// InventoryRepository handles per-branch stock persistence
type InventoryRepository struct {
	db *database.DB
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *database.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// Create inserts an inventory row
func (r *InventoryRepository) Create(ctx context.Context, inv *domain.Inventory) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory (
			id, product_id, branch_id, stock_level, minimum_stock_level, maximum_stock_level,
			last_restocked, expiry_alert, low_stock_alert
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING last_updated
	`
	err := r.db.Ext(ctx).QueryRowxContext(ctx, query,
		inv.ID, inv.ProductID, inv.BranchID, inv.StockLevel, inv.MinimumStockLevel, inv.MaximumStockLevel,
		inv.LastRestocked, inv.ExpiryAlert, inv.LowStockAlert,
	).Scan(&inv.LastUpdated)
	return database.MapError(err, "inventory", "create")
}

// GetByID gets an inventory row by ID
func (r *InventoryRepository) GetByID(ctx context.Context, id string) (*domain.Inventory, error) {
	return getOne[domain.Inventory](ctx, r.db.Ext(ctx), "inventory", inventoryColumns, id, "inventory")
}

// GetByProductAndBranch gets the row for one product at one branch
func (r *InventoryRepository) GetByProductAndBranch(ctx context.Context, productID, branchID string) (*domain.Inventory, error) {
	return r.getByPair(ctx, productID, branchID, false)
}

// LockByProductAndBranch is GetByProductAndBranch with a row lock held until
// the enclosing transaction ends.
func (r *InventoryRepository) LockByProductAndBranch(ctx context.Context, productID, branchID string) (*domain.Inventory, error) {
	return r.getByPair(ctx, productID, branchID, true)
}

func (r *InventoryRepository) getByPair(ctx context.Context, productID, branchID string, lock bool) (*domain.Inventory, error) {
	qb := psql.Select(inventoryColumns...).From("inventory").
		Where(squirrel.Eq{"product_id": productID, "branch_id": branchID})
	if lock {
		qb = qb.Suffix("FOR UPDATE")
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, err
	}

	var inv domain.Inventory
	if err := sqlx.GetContext(ctx, r.db.Ext(ctx), &inv, query, args...); err != nil {
		return nil, database.MapError(err, "inventory", "get")
	}
	return &inv, nil
}

// List lists inventory rows matching filter
func (r *InventoryRepository) List(ctx context.Context, filter InventoryFilter, page Page) ([]domain.Inventory, int64, error) {
	base := psql.Select().From("inventory")
	if filter.BranchID != "" {
		base = base.Where(squirrel.Eq{"branch_id": filter.BranchID})
	}
	if filter.ProductID != "" {
		base = base.Where(squirrel.Eq{"product_id": filter.ProductID})
	}
	if filter.LowStockOnly {
		base = base.Where("minimum_stock_level IS NOT NULL AND stock_level <= minimum_stock_level")
	}

	items, total, err := selectPage[domain.Inventory](ctx, r.db.Ext(ctx), base, inventoryColumns, "last_updated DESC", page)
	if err != nil {
		return nil, 0, database.MapError(err, "inventory", "list")
	}
	return items, total, nil
}

// ListByBranch lists every inventory row of a branch
func (r *InventoryRepository) ListByBranch(ctx context.Context, branchID string, page Page) ([]domain.Inventory, int64, error) {
	return r.List(ctx, InventoryFilter{BranchID: branchID}, page)
}

// ListNeedingRestock returns all rows at or below their minimum level.
func (r *InventoryRepository) ListNeedingRestock(ctx context.Context) ([]domain.Inventory, error) {
	qb := psql.Select(inventoryColumns...).From("inventory").
		Where("minimum_stock_level IS NOT NULL AND stock_level <= minimum_stock_level").
		OrderBy("branch_id", "product_id")
	items, err := selectAll[domain.Inventory](ctx, r.db.Ext(ctx), qb)
	if err != nil {
		return nil, database.MapError(err, "inventory", "list")
	}
	return items, nil
}

// SaveStock persists the stock fields produced by Inventory.ApplyStockChange.
func (r *InventoryRepository) SaveStock(ctx context.Context, inv *domain.Inventory) error {
	query := `
		UPDATE inventory SET
			stock_level = $2, last_restocked = $3, last_updated = $4, low_stock_alert = $5
		WHERE id = $1
	`
	return database.MapError(affected(r.db.Ext(ctx).ExecContext(ctx, query,
		inv.ID, inv.StockLevel, inv.LastRestocked, inv.LastUpdated, inv.LowStockAlert,
	)), "inventory", "save")
}

// UpdateLevels persists new minimum and maximum levels and the refreshed low-stock flag.
func (r *InventoryRepository) UpdateLevels(ctx context.Context, inv *domain.Inventory) error {
	query := `
		UPDATE inventory SET
			minimum_stock_level = $2, maximum_stock_level = $3, low_stock_alert = $4, last_updated = NOW()
		WHERE id = $1
		RETURNING last_updated
	`
	err := r.db.Ext(ctx).QueryRowxContext(ctx, query,
		inv.ID, inv.MinimumStockLevel, inv.MaximumStockLevel, inv.LowStockAlert,
	).Scan(&inv.LastUpdated)
	return database.MapError(err, "inventory", "update")
}

// SetExpiryAlert flags or clears the expiry alert of a product at a branch.
func (r *InventoryRepository) SetExpiryAlert(ctx context.Context, productID, branchID string, on bool) error {
	query := `UPDATE inventory SET expiry_alert = $3 WHERE product_id = $1 AND branch_id = $2`
	_, err := r.db.Ext(ctx).ExecContext(ctx, query, productID, branchID, on)
	return database.MapError(err, "inventory", "set expiry alert")
}

// ClearExpiryAlerts resets every expiry flag before a scan sets them again.
func (r *InventoryRepository) ClearExpiryAlerts(ctx context.Context) error {
	_, err := r.db.Ext(ctx).ExecContext(ctx, `UPDATE inventory SET expiry_alert = FALSE WHERE expiry_alert`)
	return database.MapError(err, "inventory", "clear expiry alerts")
}

// Delete deletes an inventory row
func (r *InventoryRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM inventory WHERE id = $1`
	return database.MapError(affected(r.db.Ext(ctx).ExecContext(ctx, query, id)), "inventory", "delete")
}

var stockColumns = []string{
	"id", "product_id", "branch_id", "supplier_id", "quantity", "unit_cost", "batch_number",
	"expiry_date", "received_at", "created_at",
}

// StockFilter narrows a stock receipt listing. Zero values are ignored.
type StockFilter struct {
	ProductID string
	BranchID  string
}

// StockRepository handles stock receipt persistence
type StockRepository struct {
	db *database.DB
}

// NewStockRepository creates a new stock repository
func NewStockRepository(db *database.DB) *StockRepository {
	return &StockRepository{db: db}
}

// Create records a received batch
func (r *StockRepository) Create(ctx context.Context, s *domain.Stock) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.ReceivedAt.IsZero() {
		s.ReceivedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO stocks (id, product_id, branch_id, supplier_id, quantity, unit_cost, batch_number, expiry_date, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	err := r.db.Ext(ctx).QueryRowxContext(ctx, query,
		s.ID, s.ProductID, s.BranchID, s.SupplierID, s.Quantity, s.UnitCost, s.BatchNumber, s.ExpiryDate, s.ReceivedAt,
	).Scan(&s.CreatedAt)
	return database.MapError(err, "stock", "create")
}

// GetByID gets a stock receipt by ID
func (r *StockRepository) GetByID(ctx context.Context, id string) (*domain.Stock, error) {
	return getOne[domain.Stock](ctx, r.db.Ext(ctx), "stocks", stockColumns, id, "stock")
}

// List lists stock receipts, newest first
func (r *StockRepository) List(ctx context.Context, filter StockFilter, page Page) ([]domain.Stock, int64, error) {
	base := psql.Select().From("stocks")
	if filter.ProductID != "" {
		base = base.Where(squirrel.Eq{"product_id": filter.ProductID})
	}
	if filter.BranchID != "" {
		base = base.Where(squirrel.Eq{"branch_id": filter.BranchID})
	}
	items, total, err := selectPage[domain.Stock](ctx, r.db.Ext(ctx), base, stockColumns, "received_at DESC", page)
	if err != nil {
		return nil, 0, database.MapError(err, "stock", "list")
	}
	return items, total, nil
}

// ListByProduct lists every receipt of a product
func (r *StockRepository) ListByProduct(ctx context.Context, productID string, page Page) ([]domain.Stock, int64, error) {
	return r.List(ctx, StockFilter{ProductID: productID}, page)
}

// ListExpiringBetween returns batches expiring in [from, to], soonest first.
func (r *StockRepository) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]domain.Stock, error) {
	qb := psql.Select(stockColumns...).From("stocks").
		Where(squirrel.GtOrEq{"expiry_date": from}).
		Where(squirrel.LtOrEq{"expiry_date": to}).
		OrderBy("expiry_date ASC")
	items, err := selectAll[domain.Stock](ctx, r.db.Ext(ctx), qb)
	if err != nil {
		return nil, database.MapError(err, "stock", "list")
	}
	return items, nil
}

// ListExpiringInStock returns batches with an expiry date on or before
// cutoff whose branch still holds the product, soonest first.
func (r *StockRepository) ListExpiringInStock(ctx context.Context, cutoff time.Time) ([]domain.Stock, error) {
	cols := make([]string, len(stockColumns))
	for i, c := range stockColumns {
		cols[i] = "s." + c
	}
	qb := psql.Select(cols...).From("stocks s").
		Join("inventory i ON i.product_id = s.product_id AND i.branch_id = s.branch_id").
		Where("s.expiry_date IS NOT NULL").
		Where(squirrel.LtOrEq{"s.expiry_date": cutoff}).
		Where(squirrel.Gt{"i.stock_level": 0}).
		OrderBy("s.expiry_date ASC")
	items, err := selectAll[domain.Stock](ctx, r.db.Ext(ctx), qb)
	if err != nil {
		return nil, database.MapError(err, "stock", "list")
	}
	return items, nil
}
