package repository

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/pkg/database"
)

var (
	categoryColumns = []string{"id", "name", "description", "created_at", "updated_at"}
	supplierColumns = []string{"id", "name", "contact_name", "email", "phone", "address", "created_at", "updated_at"}
	branchColumns   = []string{"id", "name", "address", "phone", "is_active", "created_at", "updated_at"}
)

func getOne[T any](ctx context.Context, q sqlx.QueryerContext, table string, columns []string, id, resource string) (*T, error) {
	query, args, err := psql.Select(columns...).From(table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	var v T
	if err := sqlx.GetContext(ctx, q, &v, query, args...); err != nil {
		return nil, database.MapError(err, resource, "get")
	}
	return &v, nil
}

func nameSearch(base squirrel.SelectBuilder, search string) squirrel.SelectBuilder {
	if search == "" {
		return base
	}
	return base.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
}

// CategoryRepository handles category persistence
type CategoryRepository struct {
	db *database.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *database.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a category
func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	query := `INSERT INTO categories (id, name, description) VALUES ($1, $2, $3) RETURNING created_at, updated_at`
	err := r.db.Ext(ctx).QueryRowxContext(ctx, query, c.ID, c.Name, c.Description).Scan(&c.CreatedAt, &c.UpdatedAt)
	return database.MapError(err, "category", "create")
}

// GetByID gets a category by ID
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	return getOne[domain.Category](ctx, r.db.Ext(ctx), "categories", categoryColumns, id, "category")
}

// List lists categories, optionally filtered by name
func (r *CategoryRepository) List(ctx context.Context, search string, page Page) ([]domain.Category, int64, error) {
	base := nameSearch(psql.Select().From("categories"), search)
	items, total, err := selectPage[domain.Category](ctx, r.db.Ext(ctx), base, categoryColumns, "name ASC", page)
	if err != nil {
		return nil, 0, database.MapError(err, "category", "list")
	}
	return items, total, nil
}

// Update updates a category
func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	query := `UPDATE categories SET name = $2, description = $3, updated_at = NOW() WHERE id = $1 RETURNING updated_at`
	err := r.db.Ext(ctx).QueryRowxContext(ctx, query, c.ID, c.Name, c.Description).Scan(&c.UpdatedAt)
	return database.MapError(err, "category", "update")
}

// Delete deletes a category; its products keep existing without one.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM categories WHERE id = $1`
	return database.MapError(affected(r.db.Ext(ctx).ExecContext(ctx, query, id)), "category", "delete")
}

// SupplierRepository handles supplier persistence
type SupplierRepository struct {
	db *database.DB
}

// NewSupplierRepository creates a new supplier repository
func NewSupplierRepository(db *database.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

// Create inserts a supplier
func (r *SupplierRepository) Create(ctx context.Context, s *domain.Supplier) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	query := `
		INSERT INTO suppliers (id, name, contact_name, email, phone, address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := r.db.Ext(ctx).QueryRowxContext(ctx, query,
		s.ID, s.Name, s.ContactName, s.Email, s.Phone, s.Address,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	return database.MapError(err, "supplier", "create")
}

// GetByID gets a supplier by ID
func (r *SupplierRepository) GetByID(ctx context.Context, id string) (*domain.Supplier, error) {
	return getOne[domain.Supplier](ctx, r.db.Ext(ctx), "suppliers", supplierColumns, id, "supplier")
}

// List lists suppliers, optionally filtered by name
func (r *SupplierRepository) List(ctx context.Context, search string, page Page) ([]domain.Supplier, int64, error) {
	base := nameSearch(psql.Select().From("suppliers"), search)
	items, total, err := selectPage[domain.Supplier](ctx, r.db.Ext(ctx), base, supplierColumns, "name ASC", page)
	if err != nil {
		return nil, 0, database.MapError(err, "supplier", "list")
	}
	return items, total, nil
}

// Update updates a supplier
func (r *SupplierRepository) Update(ctx context.Context, s *domain.Supplier) error {
	query := `
		UPDATE suppliers SET name = $2, contact_name = $3, email = $4, phone = $5, address = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.Ext(ctx).QueryRowxContext(ctx, query,
		s.ID, s.Name, s.ContactName, s.Email, s.Phone, s.Address,
	).Scan(&s.UpdatedAt)
	return database.MapError(err, "supplier", "update")
}

// Delete deletes a supplier
func (r *SupplierRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM suppliers WHERE id = $1`
	return database.MapError(affected(r.db.Ext(ctx).ExecContext(ctx, query, id)), "supplier", "delete")
}

// BranchRepository handles branch persistence
type BranchRepository struct {
	db *database.DB
}

// NewBranchRepository creates a new branch repository
func NewBranchRepository(db *database.DB) *BranchRepository {
	return &BranchRepository{db: db}
}

// Create inserts a branch
func (r *BranchRepository) Create(ctx context.Context, b *domain.Branch) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	query := `
		INSERT INTO branches (id, name, address, phone, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := r.db.Ext(ctx).QueryRowxContext(ctx, query,
		b.ID, b.Name, b.Address, b.Phone, b.IsActive,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	return database.MapError(err, "branch", "create")
}

// GetByID gets a branch by ID
func (r *BranchRepository) GetByID(ctx context.Context, id string) (*domain.Branch, error) {
	return getOne[domain.Branch](ctx, r.db.Ext(ctx), "branches", branchColumns, id, "branch")
}

// List lists branches; activeOnly hides closed branches.
func (r *BranchRepository) List(ctx context.Context, search string, activeOnly bool, page Page) ([]domain.Branch, int64, error) {
	base := nameSearch(psql.Select().From("branches"), search)
	if activeOnly {
		base = base.Where(squirrel.Eq{"is_active": true})
	}
	items, total, err := selectPage[domain.Branch](ctx, r.db.Ext(ctx), base, branchColumns, "name ASC", page)
	if err != nil {
		return nil, 0, database.MapError(err, "branch", "list")
	}
	return items, total, nil
}

// Update updates a branch
func (r *BranchRepository) Update(ctx context.Context, b *domain.Branch) error {
	query := `
		UPDATE branches SET name = $2, address = $3, phone = $4, is_active = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.Ext(ctx).QueryRowxContext(ctx, query,
		b.ID, b.Name, b.Address, b.Phone, b.IsActive,
	).Scan(&b.UpdatedAt)
	return database.MapError(err, "branch", "update")
}

// Delete deletes a branch
func (r *BranchRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM branches WHERE id = $1`
	return database.MapError(affected(r.db.Ext(ctx).ExecContext(ctx, query, id)), "branch", "delete")
}
