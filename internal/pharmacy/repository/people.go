package repository

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/pkg/database"
)

var (
	employeeColumns = []string{
		"id", "user_id", "branch_id", "first_name", "last_name", "email", "phone", "position",
		"hire_date", "is_active", "created_at", "updated_at",
	}
	customerColumns = []string{
		"id", "first_name", "last_name", "email", "phone", "date_of_birth", "address",
		"created_at", "updated_at",
	}
)

func personSearch(base squirrel.SelectBuilder, search string) squirrel.SelectBuilder {
	if search == "" {
		return base
	}
	like := "%" + strings.ToLower(search) + "%"
	return base.Where(squirrel.Or{
		squirrel.Expr("LOWER(first_name || ' ' || last_name) LIKE ?", like),
		squirrel.Expr("LOWER(COALESCE(email, '')) LIKE ?", like),
	})
}

// EmployeeRepository handles employee persistence
type EmployeeRepository struct {
	db *database.DB
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db *database.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create inserts an employee
func (r *EmployeeRepository) Create(ctx context.Context, e *domain.Employee) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `
		INSERT INTO employees (id, user_id, branch_id, first_name, last_name, email, phone, position, hire_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	err := r.db.Ext(ctx).QueryRowxContext(ctx, query,
		e.ID, e.UserID, e.BranchID, e.FirstName, e.LastName, e.Email, e.Phone, e.Position, e.HireDate, e.IsActive,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	return database.MapError(err, "employee", "create")
}

// GetByID gets an employee by ID
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	return getOne[domain.Employee](ctx, r.db.Ext(ctx), "employees", employeeColumns, id, "employee")
}

// List lists employees, optionally for one branch
func (r *EmployeeRepository) List(ctx context.Context, branchID, search string, page Page) ([]domain.Employee, int64, error) {
	base := personSearch(psql.Select().From("employees"), search)
	if branchID != "" {
		base = base.Where(squirrel.Eq{"branch_id": branchID})
	}
	items, total, err := selectPage[domain.Employee](ctx, r.db.Ext(ctx), base, employeeColumns, "last_name ASC, first_name ASC", page)
	if err != nil {
		return nil, 0, database.MapError(err, "employee", "list")
	}
	return items, total, nil
}

// Update updates an employee
func (r *EmployeeRepository) Update(ctx context.Context, e *domain.Employee) error {
	query := `
		UPDATE employees SET
			user_id = $2, branch_id = $3, first_name = $4, last_name = $5, email = $6, phone = $7,
			position = $8, hire_date = $9, is_active = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.Ext(ctx).QueryRowxContext(ctx, query,
		e.ID, e.UserID, e.BranchID, e.FirstName, e.LastName, e.Email, e.Phone, e.Position, e.HireDate, e.IsActive,
	).Scan(&e.UpdatedAt)
	return database.MapError(err, "employee", "update")
}

// Delete deletes an employee
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM employees WHERE id = $1`
	return database.MapError(affected(r.db.Ext(ctx).ExecContext(ctx, query, id)), "employee", "delete")
}

// CustomerRepository handles customer persistence
type CustomerRepository struct {
	db *database.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *database.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// Create inserts a customer
func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	query := `
		INSERT INTO customers (id, first_name, last_name, email, phone, date_of_birth, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := r.db.Ext(ctx).QueryRowxContext(ctx, query,
		c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.DateOfBirth, c.Address,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	return database.MapError(err, "customer", "create")
}

// GetByID gets a customer by ID
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	return getOne[domain.Customer](ctx, r.db.Ext(ctx), "customers", customerColumns, id, "customer")
}

// List lists customers matching search on name or email
func (r *CustomerRepository) List(ctx context.Context, search string, page Page) ([]domain.Customer, int64, error) {
	base := personSearch(psql.Select().From("customers"), search)
	items, total, err := selectPage[domain.Customer](ctx, r.db.Ext(ctx), base, customerColumns, "last_name ASC, first_name ASC", page)
	if err != nil {
		return nil, 0, database.MapError(err, "customer", "list")
	}
	return items, total, nil
}

// Update updates a customer
func (r *CustomerRepository) Update(ctx context.Context, c *domain.Customer) error {
	query := `
		UPDATE customers SET
			first_name = $2, last_name = $3, email = $4, phone = $5, date_of_birth = $6, address = $7,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.Ext(ctx).QueryRowxContext(ctx, query,
		c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.DateOfBirth, c.Address,
	).Scan(&c.UpdatedAt)
	return database.MapError(err, "customer", "update")
}

// Delete deletes a customer
func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM customers WHERE id = $1`
	return database.MapError(affected(r.db.Ext(ctx).ExecContext(ctx, query, id)), "customer", "delete")
}
