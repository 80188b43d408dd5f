package repository

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/pkg/database"
)

var (
	orderColumns = []string{
		"id", "customer_id", "branch_id", "prescription_id", "status", "total_amount", "notes",
		"created_by", "created_at", "updated_at",
	}
	orderItemColumns = []string{"id", "order_id", "product_id", "quantity", "unit_price", "line_total"}
)

// OrderFilter narrows an order listing. Zero values are ignored.
type OrderFilter struct {
	CustomerID string
	BranchID   string
	Status     domain.OrderStatus
}

// OrderRepository handles order and order item persistence
type OrderRepository struct {
	db *database.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *database.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts an order together with its items in one transaction.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}

	return r.db.InTx(ctx, func(ctx context.Context) error {
		query := `
			INSERT INTO orders (id, customer_id, branch_id, prescription_id, status, total_amount, notes, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING created_at, updated_at
		`
		err := r.db.Ext(ctx).QueryRowxContext(ctx, query,
			o.ID, o.CustomerID, o.BranchID, o.PrescriptionID, o.Status, o.TotalAmount, o.Notes, o.CreatedBy,
		).Scan(&o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return database.MapError(err, "order", "create")
		}

		if len(o.Items) == 0 {
			return nil
		}

		ib := psql.Insert("order_items").Columns(orderItemColumns...)
		for i := range o.Items {
			item := &o.Items[i]
			if item.ID == "" {
				item.ID = uuid.New().String()
			}
			item.OrderID = o.ID
			ib = ib.Values(item.ID, item.OrderID, item.ProductID, item.Quantity, item.UnitPrice, item.LineTotal)
		}
		itemSQL, args, err := ib.ToSql()
		if err != nil {
			return err
		}
		_, err = r.db.Ext(ctx).ExecContext(ctx, itemSQL, args...)
		return database.MapError(err, "order item", "create")
	})
}

// HasOpenForPrescription reports whether a non-cancelled order already uses
// the prescription.
func (r *OrderRepository) HasOpenForPrescription(ctx context.Context, prescriptionID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM orders WHERE prescription_id = $1 AND status <> $2)`
	var exists bool
	if err := sqlx.GetContext(ctx, r.db.Ext(ctx), &exists, query, prescriptionID, domain.OrderCancelled); err != nil {
		return false, database.MapError(err, "order", "exists")
	}
	return exists, nil
}

// GetByID gets an order with its items
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	o, err := getOne[domain.Order](ctx, r.db.Ext(ctx), "orders", orderColumns, id, "order")
	if err != nil {
		return nil, err
	}

	items, err := selectAll[domain.OrderItem](ctx, r.db.Ext(ctx),
		psql.Select(orderItemColumns...).From("order_items").Where(squirrel.Eq{"order_id": id}).OrderBy("id"))
	if err != nil {
		return nil, database.MapError(err, "order item", "list")
	}
	o.Items = items
	return o, nil
}

// List lists orders without items, newest first
func (r *OrderRepository) List(ctx context.Context, filter OrderFilter, page Page) ([]domain.Order, int64, error) {
	base := psql.Select().From("orders")
	if filter.CustomerID != "" {
		base = base.Where(squirrel.Eq{"customer_id": filter.CustomerID})
	}
	if filter.BranchID != "" {
		base = base.Where(squirrel.Eq{"branch_id": filter.BranchID})
	}
	if filter.Status != "" {
		base = base.Where(squirrel.Eq{"status": filter.Status})
	}
	items, total, err := selectPage[domain.Order](ctx, r.db.Ext(ctx), base, orderColumns, "created_at DESC", page)
	if err != nil {
		return nil, 0, database.MapError(err, "order", "list")
	}
	return items, total, nil
}

// ListByCustomer lists a customer's orders
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID string, page Page) ([]domain.Order, int64, error) {
	return r.List(ctx, OrderFilter{CustomerID: customerID}, page)
}

// ListByBranch lists a branch's orders
func (r *OrderRepository) ListByBranch(ctx context.Context, branchID string, page Page) ([]domain.Order, int64, error) {
	return r.List(ctx, OrderFilter{BranchID: branchID}, page)
}

// UpdateStatus moves an order to to while its stored status still equals from.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus, at time.Time) (bool, error) {
	query := `UPDATE orders SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	ok, err := conditional(r.db.Ext(ctx).ExecContext(ctx, query, id, from, to, at))
	return ok, database.MapError(err, "order", "update")
}
