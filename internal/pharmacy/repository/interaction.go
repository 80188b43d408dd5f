package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/pkg/database"
)

var interactionColumns = []string{"id", "product_a_id", "product_b_id", "severity", "description", "created_at"}

// pairPredicate matches a row whichever way round the pair was stored.
const pairPredicate = "((product_a_id = ? AND product_b_id = ?) OR (product_a_id = ? AND product_b_id = ?))"

// InteractionRepository handles drug interaction persistence
type InteractionRepository struct {
	db *database.DB
}

// NewInteractionRepository creates a new drug interaction repository
func NewInteractionRepository(db *database.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// Create inserts an interaction. A row for the same pair in either order
// violates drug_interactions_pair_key.
func (r *InteractionRepository) Create(ctx context.Context, d *domain.DrugInteraction) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	query := `
		INSERT INTO drug_interactions (id, product_a_id, product_b_id, severity, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.db.Ext(ctx).QueryRowxContext(ctx, query,
		d.ID, d.ProductAID, d.ProductBID, d.Severity, d.Description,
	).Scan(&d.CreatedAt)
	return database.MapError(err, "drug interaction", "create")
}

// GetByID gets an interaction by ID
func (r *InteractionRepository) GetByID(ctx context.Context, id string) (*domain.DrugInteraction, error) {
	return getOne[domain.DrugInteraction](ctx, r.db.Ext(ctx), "drug_interactions", interactionColumns, id, "drug interaction")
}

// List lists interactions, newest first
func (r *InteractionRepository) List(ctx context.Context, page Page) ([]domain.DrugInteraction, int64, error) {
	items, total, err := selectPage[domain.DrugInteraction](ctx, r.db.Ext(ctx),
		psql.Select().From("drug_interactions"), interactionColumns, "created_at DESC", page)
	if err != nil {
		return nil, 0, database.MapError(err, "drug interaction", "list")
	}
	return items, total, nil
}

// FindBetween returns the interaction between x and y in either order.
func (r *InteractionRepository) FindBetween(ctx context.Context, x, y string) (*domain.DrugInteraction, error) {
	query, args, err := psql.Select(interactionColumns...).From("drug_interactions").
		Where(pairPredicate, x, y, y, x).ToSql()
	if err != nil {
		return nil, err
	}

	var d domain.DrugInteraction
	if err := sqlx.GetContext(ctx, r.db.Ext(ctx), &d, query, args...); err != nil {
		return nil, database.MapError(err, "drug interaction", "get")
	}
	return &d, nil
}

// ExistsBetween uses the same symmetric predicate as FindBetween.
func (r *InteractionRepository) ExistsBetween(ctx context.Context, x, y string) (bool, error) {
	query, args, err := psql.Select("1").From("drug_interactions").
		Where(pairPredicate, x, y, y, x).
		Prefix("SELECT EXISTS (").
		Suffix(")").
		ToSql()
	if err != nil {
		return false, err
	}

	var exists bool
	if err := sqlx.GetContext(ctx, r.db.Ext(ctx), &exists, query, args...); err != nil {
		return false, database.MapError(err, "drug interaction", "exists")
	}
	return exists, nil
}

// ListForProduct lists every interaction a product takes part in
func (r *InteractionRepository) ListForProduct(ctx context.Context, productID string) ([]domain.DrugInteraction, error) {
	qb := psql.Select(interactionColumns...).From("drug_interactions").
		Where("(product_a_id = ? OR product_b_id = ?)", productID, productID).
		OrderBy("created_at DESC")
	items, err := selectAll[domain.DrugInteraction](ctx, r.db.Ext(ctx), qb)
	if err != nil {
		return nil, database.MapError(err, "drug interaction", "list")
	}
	return items, nil
}

// ListAmong returns interactions whose both products are in ids.
func (r *InteractionRepository) ListAmong(ctx context.Context, ids []string) ([]domain.DrugInteraction, error) {
	if len(ids) < 2 {
		return []domain.DrugInteraction{}, nil
	}
	arr := pq.Array(ids)
	qb := psql.Select(interactionColumns...).From("drug_interactions").
		Where("product_a_id = ANY(?) AND product_b_id = ANY(?)", arr, arr)
	items, err := selectAll[domain.DrugInteraction](ctx, r.db.Ext(ctx), qb)
	if err != nil {
		return nil, database.MapError(err, "drug interaction", "list")
	}
	return items, nil
}

// Delete deletes an interaction
func (r *InteractionRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM drug_interactions WHERE id = $1`
	return database.MapError(affected(r.db.Ext(ctx).ExecContext(ctx, query, id)), "drug interaction", "delete")
}
