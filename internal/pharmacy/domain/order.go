package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmacare/pharmacare-backend/pkg/errors"
)

// OrderStatus is the lifecycle state of an Order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// Order is a sale at a branch.
type Order struct {
	ID             string          `db:"id" json:"id"`
	CustomerID     *string         `db:"customer_id" json:"customer_id,omitempty"`
	BranchID       string          `db:"branch_id" json:"branch_id"`
	PrescriptionID *string         `db:"prescription_id" json:"prescription_id,omitempty"`
	Status         OrderStatus     `db:"status" json:"status"`
	TotalAmount    decimal.Decimal `db:"total_amount" json:"total_amount"`
	Notes          string          `db:"notes" json:"notes"`
	CreatedBy      string          `db:"created_by" json:"created_by"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
	Items          []OrderItem     `db:"-" json:"items,omitempty"`
}

// OrderItem is one line of an Order.
type OrderItem struct {
	ID        string          `db:"id" json:"id"`
	OrderID   string          `db:"order_id" json:"order_id"`
	ProductID string          `db:"product_id" json:"product_id"`
	Quantity  int             `db:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
	LineTotal decimal.Decimal `db:"line_total" json:"line_total"`
}

// NewOrderItem prices a line at unitPrice.
func NewOrderItem(id, orderID, productID string, quantity int, unitPrice decimal.Decimal) OrderItem {
	return OrderItem{
		ID:        id,
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		LineTotal: unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// CalculateTotal sums line totals into TotalAmount.
func (o *Order) CalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal)
	}
	o.TotalAmount = total
	return total
}

func (o *Order) transition(to OrderStatus, now time.Time, from ...OrderStatus) error {
	for _, s := range from {
		if o.Status == s {
			o.Status = to
			o.UpdatedAt = now
			return nil
		}
	}
	return errors.IllegalState(fmt.Sprintf("cannot move order from %s to %s", o.Status, to))
}

// Confirm moves a PENDING order to CONFIRMED.
func (o *Order) Confirm(now time.Time) error {
	return o.transition(OrderConfirmed, now, OrderPending)
}

// Complete moves a CONFIRMED order to COMPLETED.
func (o *Order) Complete(now time.Time) error {
	return o.transition(OrderCompleted, now, OrderConfirmed)
}

// Cancel moves a PENDING or CONFIRMED order to CANCELLED.
func (o *Order) Cancel(now time.Time) error {
	return o.transition(OrderCancelled, now, OrderPending, OrderConfirmed)
}
