package repository

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/pkg/database"
)

// AlternativeRepository handles product alternative persistence
type AlternativeRepository struct {
	db *database.DB
}

// NewAlternativeRepository creates a new product alternative repository
func NewAlternativeRepository(db *database.DB) *AlternativeRepository {
	return &AlternativeRepository{db: db}
}

// Create inserts an alternative link
func (r *AlternativeRepository) Create(ctx context.Context, a *domain.ProductAlternative) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	query := `
		INSERT INTO product_alternatives (id, product_id, alternative_product_id, reason)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err := r.db.Ext(ctx).QueryRowxContext(ctx, query,
		a.ID, a.ProductID, a.AlternativeProductID, a.Reason,
	).Scan(&a.CreatedAt)
	return database.MapError(err, "product alternative", "create")
}

// Exists reports whether altID is already listed as an alternative of productID.
func (r *AlternativeRepository) Exists(ctx context.Context, productID, altID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM product_alternatives WHERE product_id = $1 AND alternative_product_id = $2)`
	var exists bool
	if err := sqlx.GetContext(ctx, r.db.Ext(ctx), &exists, query, productID, altID); err != nil {
		return false, database.MapError(err, "product alternative", "exists")
	}
	return exists, nil
}

// ListDetailedByProduct returns every alternative of productID joined with
// both products, in creation order.
func (r *AlternativeRepository) ListDetailedByProduct(ctx context.Context, productID string) ([]domain.AlternativeDetail, error) {
	qb := psql.Select(
		"pa.id", "pa.product_id", "pa.alternative_product_id", "pa.reason", "pa.created_at",
		"p.price AS product_price",
		"p.category_id AS product_category_id",
		"alt.name AS alternative_name",
		"alt.sku AS alternative_sku",
		"alt.price AS alternative_price",
		"alt.category_id AS alternative_category_id",
		"alt.stock_quantity AS alternative_stock_quantity",
	).
		From("product_alternatives pa").
		Join("products p ON p.id = pa.product_id").
		Join("products alt ON alt.id = pa.alternative_product_id").
		Where(squirrel.Eq{"pa.product_id": productID}).
		OrderBy("pa.created_at ASC")

	items, err := selectAll[domain.AlternativeDetail](ctx, r.db.Ext(ctx), qb)
	if err != nil {
		return nil, database.MapError(err, "product alternative", "list")
	}
	return items, nil
}

// Delete removes alternative id from productID's list
func (r *AlternativeRepository) Delete(ctx context.Context, productID, id string) error {
	query := `DELETE FROM product_alternatives WHERE id = $1 AND product_id = $2`
	return database.MapError(affected(r.db.Ext(ctx).ExecContext(ctx, query, id, productID)), "product alternative", "delete")
}

// ListProductIDsByAlternative returns the products that list altID as one of
// their alternatives.
func (r *AlternativeRepository) ListProductIDsByAlternative(ctx context.Context, altID string) ([]string, error) {
	query := `SELECT product_id FROM product_alternatives WHERE alternative_product_id = $1 ORDER BY product_id`
	var ids []string
	if err := sqlx.SelectContext(ctx, r.db.Ext(ctx), &ids, query, altID); err != nil {
		return nil, database.MapError(err, "product alternative", "list")
	}
	return ids, nil
}
