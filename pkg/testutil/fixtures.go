package testutil

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
)

// Seeded role ids from migration 000002.
const (
	RoleAdminID         = "5d1d0b9e-0a7c-4c55-9a55-1f3b2a000001"
	RolePharmacistID    = "5d1d0b9e-0a7c-4c55-9a55-1f3b2a000002"
	RoleBranchManagerID = "5d1d0b9e-0a7c-4c55-9a55-1f3b2a000003"
	RoleCashierID       = "5d1d0b9e-0a7c-4c55-9a55-1f3b2a000004"
)

// FixedNow is the clock used by fixtures and service tests.
var FixedNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

// UserFixture represents test user data
type UserFixture struct {
	ID           string
	Username     string
	Email        string
	Password     string
	PasswordHash string
	FirstName    string
	LastName     string
	RoleID       string
	IsActive     bool
}

// FixtureFactory creates test fixtures with sensible defaults
type FixtureFactory struct {
	sequence int
}

// NewFixtureFactory creates a new fixture factory
func NewFixtureFactory() *FixtureFactory {
	return &FixtureFactory{sequence: 0}
}

// nextSeq returns the next sequence number for unique values
func (f *FixtureFactory) nextSeq() int {
	f.sequence++
	return f.sequence
}

// User creates a user fixture with defaults
func (f *FixtureFactory) User(opts ...func(*UserFixture)) UserFixture {
	seq := f.nextSeq()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)

	user := UserFixture{
		ID:           uuid.New().String(),
		Username:     fmt.Sprintf("user%d", seq),
		Email:        fmt.Sprintf("user%d@test.pharmacare.dev", seq),
		Password:     "password123",
		PasswordHash: string(hash),
		FirstName:    fmt.Sprintf("Test%d", seq),
		LastName:     "User",
		RoleID:       RolePharmacistID,
		IsActive:     true,
	}

	for _, opt := range opts {
		opt(&user)
	}

	return user
}

// WithPassword sets the user password (hashed)
func WithPassword(password string) func(*UserFixture) {
	return func(u *UserFixture) {
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		u.Password = password
		u.PasswordHash = string(hash)
	}
}

// WithRoleID sets the user's role ID
func WithRoleID(roleID string) func(*UserFixture) {
	return func(u *UserFixture) {
		u.RoleID = roleID
	}
}

// Product creates a product fixture priced at price
func (f *FixtureFactory) Product(price string, opts ...func(*domain.Product)) domain.Product {
	seq := f.nextSeq()
	p := domain.Product{
		ID:            uuid.New().String(),
		Name:          fmt.Sprintf("Product %d", seq),
		SKU:           fmt.Sprintf("SKU-%04d", seq),
		Price:         decimal.RequireFromString(price),
		StockQuantity: 10,
		CreatedAt:     FixedNow,
		UpdatedAt:     FixedNow,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// Branch creates an active branch fixture
func (f *FixtureFactory) Branch() domain.Branch {
	seq := f.nextSeq()
	return domain.Branch{
		ID:        uuid.New().String(),
		Name:      fmt.Sprintf("Branch %d", seq),
		Address:   fmt.Sprintf("%d Main Street", seq),
		IsActive:  true,
		CreatedAt: FixedNow,
		UpdatedAt: FixedNow,
	}
}

// Inventory creates an inventory fixture; min < 0 leaves the minimum unset.
func (f *FixtureFactory) Inventory(productID, branchID string, level, min int) domain.Inventory {
	inv := domain.Inventory{
		ID:          uuid.New().String(),
		ProductID:   productID,
		BranchID:    branchID,
		StockLevel:  level,
		LastUpdated: FixedNow,
	}
	if min >= 0 {
		inv.MinimumStockLevel = &min
	}
	return inv
}

// RestockRequest creates a restock request in status
func (f *FixtureFactory) RestockRequest(status domain.RestockStatus, requestedBy string) domain.RestockRequest {
	r := domain.RestockRequest{
		ID:          uuid.New().String(),
		ProductID:   uuid.New().String(),
		BranchID:    uuid.New().String(),
		RequestedBy: requestedBy,
		Quantity:    20,
		Status:      status,
		CreatedAt:   FixedNow,
		UpdatedAt:   FixedNow,
	}
	if status == domain.RestockApproved || status == domain.RestockRejected || status == domain.RestockFulfilled {
		approver := uuid.New().String()
		at := FixedNow
		r.ApprovedBy = &approver
		r.ApprovedAt = &at
	}
	return r
}

// Prescription creates a prescription in status
func (f *FixtureFactory) Prescription(status domain.PrescriptionStatus, userID string) domain.Prescription {
	seq := f.nextSeq()
	p := domain.Prescription{
		ID:               uuid.New().String(),
		UserID:           userID,
		DoctorName:       fmt.Sprintf("Dr. Test %d", seq),
		PrescriptionDate: FixedNow.AddDate(0, 0, -1),
		Status:           status,
		CreatedAt:        FixedNow,
		UpdatedAt:        FixedNow,
	}
	if status != domain.PrescriptionPending {
		approver := uuid.New().String()
		at := FixedNow
		p.ApprovedBy = &approver
		p.ApprovedAt = &at
	}
	return p
}

// Alert creates an unresolved alert of alertType
func (f *FixtureFactory) Alert(alertType domain.AlertType) domain.Alert {
	productID := uuid.New().String()
	branchID := uuid.New().String()
	return domain.Alert{
		ID:        uuid.New().String(),
		ProductID: &productID,
		BranchID:  &branchID,
		AlertType: alertType,
		Message:   fmt.Sprintf("%s alert", alertType),
		Status:    domain.AlertActive,
		CreatedAt: FixedNow,
	}
}
