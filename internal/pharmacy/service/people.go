package service

import (
	"context"
	"strings"
	"time"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/repository"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
)

// EmployeeStore persists employees
type EmployeeStore interface {
	Create(ctx context.Context, e *domain.Employee) error
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	List(ctx context.Context, branchID, search string, page repository.Page) ([]domain.Employee, int64, error)
	Update(ctx context.Context, e *domain.Employee) error
	Delete(ctx context.Context, id string) error
}

// CustomerStore persists customers
type CustomerStore interface {
	Create(ctx context.Context, c *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	List(ctx context.Context, search string, page repository.Page) ([]domain.Customer, int64, error)
	Update(ctx context.Context, c *domain.Customer) error
	Delete(ctx context.Context, id string) error
}

// EmployeeInput carries the editable employee fields
type EmployeeInput struct {
	UserID    string     `json:"user_id" validate:"omitempty,uuid"`
	BranchID  string     `json:"branch_id" validate:"omitempty,uuid"`
	FirstName string     `json:"first_name" validate:"required,max=100"`
	LastName  string     `json:"last_name" validate:"required,max=100"`
	Email     string     `json:"email" validate:"required,email"`
	Phone     string     `json:"phone" validate:"max=50"`
	Position  string     `json:"position" validate:"max=100"`
	HireDate  *time.Time `json:"hire_date"`
	IsActive  *bool      `json:"is_active"`
}

// CustomerInput carries the editable customer fields
type CustomerInput struct {
	FirstName   string     `json:"first_name" validate:"required,max=100"`
	LastName    string     `json:"last_name" validate:"required,max=100"`
	Email       string     `json:"email" validate:"omitempty,email"`
	Phone       string     `json:"phone" validate:"max=50"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Address     string     `json:"address" validate:"max=500"`
}

// PeopleService manages employees and customers
type PeopleService struct {
	employees EmployeeStore
	customers CustomerStore
	branches  BranchStore
	logger    *logger.Logger
}

// NewPeopleService creates a new people service
func NewPeopleService(employees EmployeeStore, customers CustomerStore, branches BranchStore, log *logger.Logger) *PeopleService {
	return &PeopleService{
		employees: employees,
		customers: customers,
		branches:  branches,
		logger:    log.WithComponent("people"),
	}
}

// Employee operations

// CreateEmployee creates an employee
func (s *PeopleService) CreateEmployee(ctx context.Context, in EmployeeInput) (*domain.Employee, error) {
	e := &domain.Employee{IsActive: true}
	if err := s.applyEmployee(ctx, e, in); err != nil {
		return nil, err
	}
	if err := s.employees.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// GetEmployee gets an employee by ID
func (s *PeopleService) GetEmployee(ctx context.Context, id string) (*domain.Employee, error) {
	return s.employees.GetByID(ctx, id)
}

// ListEmployees lists employees, optionally of one branch
func (s *PeopleService) ListEmployees(ctx context.Context, branchID string, params ListParams) ([]domain.Employee, int64, error) {
	return s.employees.List(ctx, branchID, params.Search, params.page())
}

// UpdateEmployee updates an employee
func (s *PeopleService) UpdateEmployee(ctx context.Context, id string, in EmployeeInput) (*domain.Employee, error) {
	e, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyEmployee(ctx, e, in); err != nil {
		return nil, err
	}
	if err := s.employees.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteEmployee deletes an employee
func (s *PeopleService) DeleteEmployee(ctx context.Context, id string) error {
	return s.employees.Delete(ctx, id)
}

func (s *PeopleService) applyEmployee(ctx context.Context, e *domain.Employee, in EmployeeInput) error {
	if in.BranchID != "" {
		if _, err := s.branches.GetByID(ctx, in.BranchID); err != nil {
			return err
		}
	}
	e.UserID = strPtr(in.UserID)
	e.BranchID = strPtr(in.BranchID)
	e.FirstName = strings.TrimSpace(in.FirstName)
	e.LastName = strings.TrimSpace(in.LastName)
	e.Email = strings.ToLower(strings.TrimSpace(in.Email))
	e.Phone = in.Phone
	e.Position = in.Position
	e.HireDate = in.HireDate
	if in.IsActive != nil {
		e.IsActive = *in.IsActive
	}
	return nil
}

// Customer operations

// CreateCustomer creates a customer
func (s *PeopleService) CreateCustomer(ctx context.Context, in CustomerInput) (*domain.Customer, error) {
	c := &domain.Customer{}
	applyCustomer(c, in)
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetCustomer gets a customer by ID
func (s *PeopleService) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	return s.customers.GetByID(ctx, id)
}

// ListCustomers lists customers
func (s *PeopleService) ListCustomers(ctx context.Context, params ListParams) ([]domain.Customer, int64, error) {
	return s.customers.List(ctx, params.Search, params.page())
}

// UpdateCustomer updates a customer
func (s *PeopleService) UpdateCustomer(ctx context.Context, id string, in CustomerInput) (*domain.Customer, error) {
	c, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyCustomer(c, in)
	if err := s.customers.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCustomer deletes a customer
func (s *PeopleService) DeleteCustomer(ctx context.Context, id string) error {
	return s.customers.Delete(ctx, id)
}

func applyCustomer(c *domain.Customer, in CustomerInput) {
	c.FirstName = strings.TrimSpace(in.FirstName)
	c.LastName = strings.TrimSpace(in.LastName)
	c.Email = strPtr(strings.ToLower(strings.TrimSpace(in.Email)))
	c.Phone = in.Phone
	c.DateOfBirth = in.DateOfBirth
	c.Address = in.Address
}
