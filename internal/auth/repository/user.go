// Package repository persists users, roles and sessions in PostgreSQL.
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pharmacare/pharmacare-backend/internal/auth/domain"
	"github.com/pharmacare/pharmacare-backend/pkg/database"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var userColumns = []string{
	"u.id", "u.username", "u.email", "u.password_hash", "u.first_name", "u.last_name",
	"u.role_id", "r.name AS role_name", "r.permissions", "u.is_active", "u.last_login_at",
	"u.created_at", "u.updated_at",
}

// UserFilter narrows a user listing.
type UserFilter struct {
	Search string
	RoleID string
	Active *bool
}

// UserRepository handles user persistence
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

func selectUsers() squirrel.SelectBuilder {
	return psql.Select().From("users u").Join("roles r ON r.id = u.role_id")
}

func (r *UserRepository) getWhere(ctx context.Context, pred interface{}) (*domain.User, error) {
	query, args, err := selectUsers().Columns(userColumns...).Where(pred).ToSql()
	if err != nil {
		return nil, err
	}
	var u domain.User
	if err := sqlx.GetContext(ctx, r.db.Ext(ctx), &u, query, args...); err != nil {
		return nil, database.MapError(err, "user", "get")
	}
	return &u, nil
}

// Create inserts a user
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	query := `
		INSERT INTO users (id, username, email, password_hash, first_name, last_name, role_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.Ext(ctx).QueryRowxContext(ctx, query,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.RoleID, u.IsActive,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	return database.MapError(err, "user", "create")
}

// GetByID gets a user with their role
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getWhere(ctx, squirrel.Eq{"u.id": id})
}

// GetByUsername gets a user by username, case-insensitively
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getWhere(ctx, squirrel.Expr("LOWER(u.username) = LOWER(?)", username))
}

// GetByEmail gets a user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getWhere(ctx, squirrel.Expr("LOWER(u.email) = LOWER(?)", email))
}

// List lists users ordered by username
func (r *UserRepository) List(ctx context.Context, filter UserFilter, page, perPage int) ([]domain.User, int64, error) {
	base := selectUsers()
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		base = base.Where(squirrel.Or{
			squirrel.Expr("LOWER(u.username) LIKE ?", like),
			squirrel.Expr("LOWER(u.email) LIKE ?", like),
			squirrel.Expr("LOWER(u.first_name || ' ' || u.last_name) LIKE ?", like),
		})
	}
	if filter.RoleID != "" {
		base = base.Where(squirrel.Eq{"u.role_id": filter.RoleID})
	}
	if filter.Active != nil {
		base = base.Where(squirrel.Eq{"u.is_active": *filter.Active})
	}

	countSQL, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var total int64
	if err := sqlx.GetContext(ctx, r.db.Ext(ctx), &total, countSQL, countArgs...); err != nil {
		return nil, 0, database.MapError(err, "user", "list")
	}

	query, args, err := base.Columns(userColumns...).
		OrderBy("u.username ASC").
		Limit(uint64(perPage)).
		Offset(uint64((page - 1) * perPage)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list query: %w", err)
	}
	users := []domain.User{}
	if err := sqlx.SelectContext(ctx, r.db.Ext(ctx), &users, query, args...); err != nil {
		return nil, 0, database.MapError(err, "user", "list")
	}
	return users, total, nil
}

// Update writes the editable fields and the password hash
func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users
		SET email = $2, password_hash = $3, first_name = $4, last_name = $5, role_id = $6, is_active = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.Ext(ctx).QueryRowxContext(ctx, query,
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.RoleID, u.IsActive,
	).Scan(&u.UpdatedAt)
	return database.MapError(err, "user", "update")
}

// UpdateLastLogin stamps a successful login
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string) error {
	_, err := r.db.Ext(ctx).ExecContext(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, id)
	return database.MapError(err, "user", "update")
}

// Delete deletes a user
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.Ext(ctx).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return database.MapError(err, "user", "delete")
	}
	return database.MapError(requireRow(res), "user", "delete")
}
