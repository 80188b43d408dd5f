package repository

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/pkg/database"
)

var productColumns = []string{
	"id", "name", "sku", "description", "category_id", "supplier_id", "price", "stock_quantity",
	"requires_prescription", "manufacturer", "dosage_form", "strength", "image_url",
	"created_at", "updated_at",
}

// ProductFilter narrows a product listing. Zero values are ignored;
// LowStockAt > 0 keeps products whose stock_quantity is at or below it.
type ProductFilter struct {
	CategoryID           string
	SupplierID           string
	Search               string
	LowStockAt           int
	RequiresPrescription *bool
}

// ProductRepository handles product persistence
type ProductRepository struct {
	db *database.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *database.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a product
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	query := `
		INSERT INTO products (
			id, name, sku, description, category_id, supplier_id, price, stock_quantity,
			requires_prescription, manufacturer, dosage_form, strength, image_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`
	err := r.db.Ext(ctx).QueryRowxContext(ctx, query,
		p.ID, p.Name, p.SKU, p.Description, p.CategoryID, p.SupplierID, p.Price, p.StockQuantity,
		p.RequiresPrescription, p.Manufacturer, p.DosageForm, p.Strength, p.ImageURL,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return database.MapError(err, "product", "create")
}

// GetByID gets a product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.getBy(ctx, "id", id)
}

// GetBySKU gets a product by SKU
func (r *ProductRepository) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return r.getBy(ctx, "sku", sku)
}

func (r *ProductRepository) getBy(ctx context.Context, column, value string) (*domain.Product, error) {
	query, args, err := psql.Select(productColumns...).From("products").
		Where(squirrel.Eq{column: value}).ToSql()
	if err != nil {
		return nil, err
	}

	var p domain.Product
	if err := sqlx.GetContext(ctx, r.db.Ext(ctx), &p, query, args...); err != nil {
		return nil, database.MapError(err, "product", "get")
	}
	return &p, nil
}

// GetByIDs returns the products among ids that exist, in no particular order.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}
	qb := psql.Select(productColumns...).From("products").Where("id = ANY(?)", pq.Array(ids))
	products, err := selectAll[domain.Product](ctx, r.db.Ext(ctx), qb)
	if err != nil {
		return nil, database.MapError(err, "product", "list")
	}
	return products, nil
}

// List lists products matching filter
func (r *ProductRepository) List(ctx context.Context, filter ProductFilter, page Page) ([]domain.Product, int64, error) {
	base := psql.Select().From("products")
	if filter.CategoryID != "" {
		base = base.Where(squirrel.Eq{"category_id": filter.CategoryID})
	}
	if filter.SupplierID != "" {
		base = base.Where(squirrel.Eq{"supplier_id": filter.SupplierID})
	}
	if filter.Search != "" {
		base = base.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.LowStockAt > 0 {
		base = base.Where(squirrel.LtOrEq{"stock_quantity": filter.LowStockAt})
	}
	if filter.RequiresPrescription != nil {
		base = base.Where(squirrel.Eq{"requires_prescription": *filter.RequiresPrescription})
	}

	products, total, err := selectPage[domain.Product](ctx, r.db.Ext(ctx), base, productColumns, "name ASC", page)
	if err != nil {
		return nil, 0, database.MapError(err, "product", "list")
	}
	return products, total, nil
}

// ListByCategory lists products of a category
func (r *ProductRepository) ListByCategory(ctx context.Context, categoryID string, page Page) ([]domain.Product, int64, error) {
	return r.List(ctx, ProductFilter{CategoryID: categoryID}, page)
}

// ListBySupplier lists products of a supplier
func (r *ProductRepository) ListBySupplier(ctx context.Context, supplierID string, page Page) ([]domain.Product, int64, error) {
	return r.List(ctx, ProductFilter{SupplierID: supplierID}, page)
}

// ListLowStock lists products whose chain-wide stock is at or below threshold
func (r *ProductRepository) ListLowStock(ctx context.Context, threshold int, page Page) ([]domain.Product, int64, error) {
	if threshold < 1 {
		threshold = 1
	}
	return r.List(ctx, ProductFilter{LowStockAt: threshold}, page)
}

// Search lists products whose name contains term, case-insensitively
func (r *ProductRepository) Search(ctx context.Context, term string, page Page) ([]domain.Product, int64, error) {
	return r.List(ctx, ProductFilter{Search: term}, page)
}

// Update updates the editable product fields
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	query := `
		UPDATE products SET
			name = $2, sku = $3, description = $4, category_id = $5, supplier_id = $6, price = $7,
			requires_prescription = $8, manufacturer = $9, dosage_form = $10, strength = $11,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.Ext(ctx).QueryRowxContext(ctx, query,
		p.ID, p.Name, p.SKU, p.Description, p.CategoryID, p.SupplierID, p.Price,
		p.RequiresPrescription, p.Manufacturer, p.DosageForm, p.Strength,
	).Scan(&p.UpdatedAt)
	return database.MapError(err, "product", "update")
}

// AdjustStockQuantity adds delta to the chain-wide stock counter.
func (r *ProductRepository) AdjustStockQuantity(ctx context.Context, id string, delta int) error {
	query := `UPDATE products SET stock_quantity = GREATEST(stock_quantity + $2, 0), updated_at = NOW() WHERE id = $1`
	return database.MapError(affected(r.db.Ext(ctx).ExecContext(ctx, query, id, delta)), "product", "adjust stock")
}

// SetImageURL stores the uploaded image location
func (r *ProductRepository) SetImageURL(ctx context.Context, id, url string) error {
	query := `UPDATE products SET image_url = $2, updated_at = NOW() WHERE id = $1`
	return database.MapError(affected(r.db.Ext(ctx).ExecContext(ctx, query, id, url)), "product", "set image")
}

// Delete deletes a product
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM products WHERE id = $1`
	return database.MapError(affected(r.db.Ext(ctx).ExecContext(ctx, query, id)), "product", "delete")
}
