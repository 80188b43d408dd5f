package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmacare/pharmacare-backend/pkg/errors"
)

// Inventory is the stock of one product at one branch.
type Inventory struct {
	ID                string     `db:"id" json:"id"`
	ProductID         string     `db:"product_id" json:"product_id"`
	BranchID          string     `db:"branch_id" json:"branch_id"`
	StockLevel        int        `db:"stock_level" json:"stock_level"`
	MinimumStockLevel *int       `db:"minimum_stock_level" json:"minimum_stock_level,omitempty"`
	MaximumStockLevel *int       `db:"maximum_stock_level" json:"maximum_stock_level,omitempty"`
	LastRestocked     *time.Time `db:"last_restocked" json:"last_restocked,omitempty"`
	LastUpdated       time.Time  `db:"last_updated" json:"last_updated"`
	ExpiryAlert       bool       `db:"expiry_alert" json:"expiry_alert"`
	LowStockAlert     bool       `db:"low_stock_alert" json:"low_stock_alert"`
}

// NeedsRestocking is true when a minimum is set and stock is at or below it.
func (i *Inventory) NeedsRestocking() bool {
	return i.MinimumStockLevel != nil && i.StockLevel <= *i.MinimumStockLevel
}

// IsOverstocked is true when a maximum is set and stock exceeds it.
func (i *Inventory) IsOverstocked() bool {
	return i.MaximumStockLevel != nil && i.StockLevel > *i.MaximumStockLevel
}

// IsOutOfStock reports an empty shelf.
func (i *Inventory) IsOutOfStock() bool {
	return i.StockLevel <= 0
}

// UpdateStockLevel adds delta to the stock level. Positive deltas record a restock.
// It does not touch LowStockAlert; use ApplyStockChange on write paths.
func (i *Inventory) UpdateStockLevel(delta int, now time.Time) {
	i.StockLevel += delta
	if delta > 0 {
		i.LastRestocked = &now
	}
	i.LastUpdated = now
}

// ApplyStockChange updates the stock level and refreshes LowStockAlert.
// A change that would leave negative stock is rejected and leaves i unchanged.
func (i *Inventory) ApplyStockChange(delta int, now time.Time) error {
	if i.StockLevel+delta < 0 {
		return errors.ValidationField("quantity",
			fmt.Sprintf("insufficient stock: have %d, change %d", i.StockLevel, delta))
	}
	i.UpdateStockLevel(delta, now)
	i.LowStockAlert = i.NeedsRestocking()
	return nil
}

// ValidateLevels checks that minimum and maximum are non-negative and ordered.
func (i *Inventory) ValidateLevels() error {
	details := map[string]string{}
	if i.MinimumStockLevel != nil && *i.MinimumStockLevel < 0 {
		details["minimum_stock_level"] = "must not be negative"
	}
	if i.MaximumStockLevel != nil && *i.MaximumStockLevel < 0 {
		details["maximum_stock_level"] = "must not be negative"
	}
	if i.MinimumStockLevel != nil && i.MaximumStockLevel != nil && *i.MinimumStockLevel > *i.MaximumStockLevel {
		details["maximum_stock_level"] = "must be greater than or equal to minimum_stock_level"
	}
	if len(details) > 0 {
		return errors.Validation(details)
	}
	return nil
}

// Stock is a received batch of a product at a branch.
type Stock struct {
	ID          string          `db:"id" json:"id"`
	ProductID   string          `db:"product_id" json:"product_id"`
	BranchID    string          `db:"branch_id" json:"branch_id"`
	SupplierID  *string         `db:"supplier_id" json:"supplier_id,omitempty"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitCost    decimal.Decimal `db:"unit_cost" json:"unit_cost"`
	BatchNumber string          `db:"batch_number" json:"batch_number"`
	ExpiryDate  *time.Time      `db:"expiry_date" json:"expiry_date,omitempty"`
	ReceivedAt  time.Time       `db:"received_at" json:"received_at"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// DaysUntilExpiry counts whole days from now to the expiry date; negative once expired.
func (s *Stock) DaysUntilExpiry(now time.Time) int {
	if s.ExpiryDate == nil {
		return 0
	}
	return daysBetween(now, *s.ExpiryDate)
}

// ExpiryAlertType classifies a batch against the warning and critical windows.
// The second result is false when the batch needs no alert.
func (s *Stock) ExpiryAlertType(now time.Time, warningDays, criticalDays int) (AlertType, bool) {
	if s.ExpiryDate == nil {
		return "", false
	}
	days := s.DaysUntilExpiry(now)
	switch {
	case days <= criticalDays:
		return AlertExpiryCritical, true
	case days <= warningDays:
		return AlertExpiryWarning, true
	default:
		return "", false
	}
}

func daysBetween(from, to time.Time) int {
	fy, fm, fd := from.UTC().Date()
	ty, tm, td := to.UTC().Date()
	start := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	end := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}
