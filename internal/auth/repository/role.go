package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pharmacare/pharmacare-backend/internal/auth/domain"
	"github.com/pharmacare/pharmacare-backend/pkg/database"
)

const roleColumns = `id, name, description, permissions, created_at, updated_at`

// RoleRepository handles role persistence
type RoleRepository struct {
	db *database.DB
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *database.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// Create inserts a role
func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) error {
	if role.ID == "" {
		role.ID = uuid.New().String()
	}
	query := `
		INSERT INTO roles (id, name, description, permissions)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	err := r.db.Ext(ctx).QueryRowxContext(ctx, query,
		role.ID, role.Name, role.Description, role.Permissions,
	).Scan(&role.CreatedAt, &role.UpdatedAt)
	return database.MapError(err, "role", "create")
}

// GetByID gets a role by ID
func (r *RoleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	var role domain.Role
	query := `SELECT ` + roleColumns + ` FROM roles WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.db.Ext(ctx), &role, query, id); err != nil {
		return nil, database.MapError(err, "role", "get")
	}
	return &role, nil
}

// GetByName gets a role by name
func (r *RoleRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	var role domain.Role
	query := `SELECT ` + roleColumns + ` FROM roles WHERE name = $1`
	if err := sqlx.GetContext(ctx, r.db.Ext(ctx), &role, query, name); err != nil {
		return nil, database.MapError(err, "role", "get")
	}
	return &role, nil
}

// List lists all roles by name
func (r *RoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	roles := []domain.Role{}
	query := `SELECT ` + roleColumns + ` FROM roles ORDER BY name`
	if err := sqlx.SelectContext(ctx, r.db.Ext(ctx), &roles, query); err != nil {
		return nil, database.MapError(err, "role", "list")
	}
	return roles, nil
}

// Update updates a role
func (r *RoleRepository) Update(ctx context.Context, role *domain.Role) error {
	query := `
		UPDATE roles SET name = $2, description = $3, permissions = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.Ext(ctx).QueryRowxContext(ctx, query,
		role.ID, role.Name, role.Description, role.Permissions,
	).Scan(&role.UpdatedAt)
	return database.MapError(err, "role", "update")
}

// CountUsers counts the users holding a role
func (r *RoleRepository) CountUsers(ctx context.Context, id string) (int64, error) {
	var n int64
	if err := sqlx.GetContext(ctx, r.db.Ext(ctx), &n, `SELECT COUNT(*) FROM users WHERE role_id = $1`, id); err != nil {
		return 0, database.MapError(err, "role", "count")
	}
	return n, nil
}

// Delete deletes a role
func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.Ext(ctx).ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return database.MapError(err, "role", "delete")
	}
	return database.MapError(requireRow(res), "role", "delete")
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
