// Package domain holds the pharmacy entities and their transition rules.
// It has no persistence, HTTP or messaging dependencies.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable item.
type Product struct {
	ID                   string          `db:"id" json:"id"`
	Name                 string          `db:"name" json:"name"`
	SKU                  string          `db:"sku" json:"sku"`
	Description          string          `db:"description" json:"description"`
	CategoryID           *string         `db:"category_id" json:"category_id,omitempty"`
	SupplierID           *string         `db:"supplier_id" json:"supplier_id,omitempty"`
	Price                decimal.Decimal `db:"price" json:"price"`
	StockQuantity        int             `db:"stock_quantity" json:"stock_quantity"`
	RequiresPrescription bool            `db:"requires_prescription" json:"requires_prescription"`
	Manufacturer         string          `db:"manufacturer" json:"manufacturer"`
	DosageForm           string          `db:"dosage_form" json:"dosage_form"`
	Strength             string          `db:"strength" json:"strength"`
	ImageURL             string          `db:"image_url" json:"image_url,omitempty"`
	CreatedAt            time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at" json:"updated_at"`
}

// Category groups products.
type Category struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Supplier delivers stock.
type Supplier struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	ContactName string    `db:"contact_name" json:"contact_name"`
	Email       string    `db:"email" json:"email"`
	Phone       string    `db:"phone" json:"phone"`
	Address     string    `db:"address" json:"address"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Branch is a physical pharmacy location.
type Branch struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   string    `db:"address" json:"address"`
	Phone     string    `db:"phone" json:"phone"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Employee works at a branch and may have a user account.
type Employee struct {
	ID        string     `db:"id" json:"id"`
	UserID    *string    `db:"user_id" json:"user_id,omitempty"`
	BranchID  *string    `db:"branch_id" json:"branch_id,omitempty"`
	FirstName string     `db:"first_name" json:"first_name"`
	LastName  string     `db:"last_name" json:"last_name"`
	Email     string     `db:"email" json:"email"`
	Phone     string     `db:"phone" json:"phone"`
	Position  string     `db:"position" json:"position"`
	HireDate  *time.Time `db:"hire_date" json:"hire_date,omitempty"`
	IsActive  bool       `db:"is_active" json:"is_active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName returns first and last name joined.
func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// Customer buys products.
type Customer struct {
	ID          string     `db:"id" json:"id"`
	FirstName   string     `db:"first_name" json:"first_name"`
	LastName    string     `db:"last_name" json:"last_name"`
	Email       *string    `db:"email" json:"email,omitempty"`
	Phone       string     `db:"phone" json:"phone"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Address     string     `db:"address" json:"address"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}
