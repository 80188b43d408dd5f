package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/events"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/repository"
	"github.com/pharmacare/pharmacare-backend/pkg/actor"
	"github.com/pharmacare/pharmacare-backend/pkg/errors"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
)

// OrderStore persists orders with their items
type OrderStore interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter repository.OrderFilter, page repository.Page) ([]domain.Order, int64, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus, at time.Time) (bool, error)
	HasOpenForPrescription(ctx context.Context, prescriptionID string) (bool, error)
}

// OrderItemInput is one line of a new order
type OrderItemInput struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderInput places an order at a branch
type CreateOrderInput struct {
	BranchID       string           `json:"branch_id" validate:"required,uuid"`
	CustomerID     string           `json:"customer_id" validate:"omitempty,uuid"`
	PrescriptionID string           `json:"prescription_id" validate:"omitempty,uuid"`
	Notes          string           `json:"notes" validate:"max=1000"`
	Items          []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// OrderResult is a placed order with any drug interaction warnings
type OrderResult struct {
	*domain.Order
	Warnings []string `json:"warnings,omitempty"`
}

// OrderService places and progresses customer orders
type OrderService struct {
	tx            Transactor
	orders        OrderStore
	products      ProductStore
	branches      BranchStore
	customers     CustomerStore
	prescriptions *PrescriptionService
	inventory     *InventoryService
	interactions  *InteractionService
	publisher     *events.Publisher
	logger        *logger.Logger
	now           func() time.Time
}

// NewOrderService creates a new order service
func NewOrderService(
	tx Transactor,
	orders OrderStore,
	products ProductStore,
	branches BranchStore,
	customers CustomerStore,
	prescriptions *PrescriptionService,
	inventory *InventoryService,
	interactions *InteractionService,
	publisher *events.Publisher,
	log *logger.Logger,
) *OrderService {
	return &OrderService{
		tx:            tx,
		orders:        orders,
		products:      products,
		branches:      branches,
		customers:     customers,
		prescriptions: prescriptions,
		inventory:     inventory,
		interactions:  interactions,
		publisher:     publisher,
		logger:        log.WithComponent("orders"),
		now:           utcNow,
	}
}

// Create places an order. Lines are priced from the current product price and
// taken out of branch inventory in the same transaction that stores the order.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*OrderResult, error) {
	if len(in.Items) == 0 {
		return nil, errors.ValidationField("items", "at least one item is required")
	}
	ids := make([]string, 0, len(in.Items))
	seen := make(map[string]bool, len(in.Items))
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, errors.ValidationField("items", "quantity must be greater than 0")
		}
		if seen[item.ProductID] {
			return nil, errors.ValidationField("items", fmt.Sprintf("product %s is listed twice", item.ProductID))
		}
		seen[item.ProductID] = true
		ids = append(ids, item.ProductID)
	}

	if _, err := s.branches.GetByID(ctx, in.BranchID); err != nil {
		return nil, err
	}
	if in.CustomerID != "" {
		if _, err := s.customers.GetByID(ctx, in.CustomerID); err != nil {
			return nil, err
		}
	}

	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	if missing := missingIDs(ids, products, func(p domain.Product) string { return p.ID }); len(missing) > 0 {
		return nil, errors.NotFound("product").WithDetails(map[string]string{"ids": strings.Join(missing, ",")})
	}

	if err := s.checkPrescription(ctx, in.PrescriptionID, products); err != nil {
		return nil, err
	}

	found, err := s.interactions.CheckInteractions(ctx, ids)
	if err != nil {
		return nil, err
	}

	o := &domain.Order{
		CustomerID:     strPtr(in.CustomerID),
		BranchID:       in.BranchID,
		PrescriptionID: strPtr(in.PrescriptionID),
		Status:         domain.OrderPending,
		Notes:          in.Notes,
		CreatedBy:      actor.IDFromContext(ctx),
	}
	for _, item := range in.Items {
		o.Items = append(o.Items, domain.NewOrderItem("", "", item.ProductID, item.Quantity, byID[item.ProductID].Price))
	}
	o.CalculateTotal()

	type change struct {
		inv    *domain.Inventory
		delta  int
		raised []*domain.Alert
	}
	var changes []change

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		// Inventory rows are locked in product id order.
		items := append([]domain.OrderItem(nil), o.Items...)
		sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
		for _, item := range items {
			inv, raised, err := s.inventory.RemoveStock(ctx, item.ProductID, o.BranchID, item.Quantity)
			if err != nil {
				return err
			}
			changes = append(changes, change{inv: inv, delta: -item.Quantity, raised: raised})
		}
		return s.orders.Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", o.ID).
		Str("total", o.TotalAmount.StringFixed(2)).
		Int("items", len(o.Items)).
		Str("actor_id", o.CreatedBy).
		Msg("order placed")
	s.publisher.OrderPlaced(ctx, o)
	for _, c := range changes {
		s.inventory.afterChange(ctx, c.inv, c.delta, "order "+o.ID, c.raised)
	}

	return &OrderResult{Order: o, Warnings: interactionWarnings(found)}, nil
}

func (s *OrderService) checkPrescription(ctx context.Context, prescriptionID string, products []domain.Product) error {
	needed := false
	for _, p := range products {
		if p.RequiresPrescription {
			needed = true
			break
		}
	}
	if prescriptionID == "" {
		if needed {
			return errors.ValidationField("prescription_id", "an approved prescription is required for prescription-only products")
		}
		return nil
	}

	rx, err := s.prescriptions.Get(ctx, prescriptionID)
	if err != nil {
		return err
	}
	if !rx.Dispensable() {
		return errors.IllegalState(fmt.Sprintf("prescription is %s, not APPROVED", rx.Status))
	}

	// One prescription is dispensed by one order. The partial unique index
	// on orders.prescription_id closes the race between two placements.
	open, err := s.orders.HasOpenForPrescription(ctx, prescriptionID)
	if err != nil {
		return err
	}
	if open {
		return errors.Conflict("prescription is already attached to an open order")
	}
	return nil
}

// Get gets an order with its items
func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// List lists orders
func (s *OrderService) List(ctx context.Context, filter repository.OrderFilter, params ListParams) ([]domain.Order, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, errors.ValidationField("status", fmt.Sprintf("unknown status %q", filter.Status))
	}
	return s.orders.List(ctx, filter, params.page())
}

// Confirm moves a PENDING order to CONFIRMED
func (s *OrderService) Confirm(ctx context.Context, id string) (*domain.Order, error) {
	return s.transition(ctx, id, (*domain.Order).Confirm, nil)
}

// Complete moves a CONFIRMED order to COMPLETED and marks its prescription
// dispensed.
func (s *OrderService) Complete(ctx context.Context, id string) (*domain.Order, error) {
	return s.transition(ctx, id, (*domain.Order).Complete, func(ctx context.Context, o *domain.Order) error {
		if o.PrescriptionID == nil {
			return nil
		}
		_, err := s.prescriptions.Fulfill(ctx, *o.PrescriptionID)
		return err
	})
}

// Cancel cancels a PENDING or CONFIRMED order and returns its items to
// branch inventory.
func (s *OrderService) Cancel(ctx context.Context, id string) (*domain.Order, error) {
	type change struct {
		inv    *domain.Inventory
		delta  int
		raised []*domain.Alert
	}
	var changes []change

	o, err := s.transition(ctx, id, (*domain.Order).Cancel, func(ctx context.Context, o *domain.Order) error {
		changes = changes[:0]
		items := append([]domain.OrderItem(nil), o.Items...)
		sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
		for _, item := range items {
			inv, raised, err := s.inventory.AddStock(ctx, item.ProductID, o.BranchID, item.Quantity)
			if err != nil {
				return err
			}
			changes = append(changes, change{inv: inv, delta: item.Quantity, raised: raised})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, c := range changes {
		s.inventory.afterChange(ctx, c.inv, c.delta, "order "+o.ID+" cancelled", c.raised)
	}
	return o, nil
}

func (s *OrderService) transition(ctx context.Context, id string, apply func(*domain.Order, time.Time) error, within func(context.Context, *domain.Order) error) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := o.Status
	if err := apply(o, s.now()); err != nil {
		return nil, err
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		ok, err := s.orders.UpdateStatus(ctx, o.ID, from, o.Status, o.UpdatedAt)
		if err != nil {
			return err
		}
		if !ok {
			return errors.IllegalState("order was changed by another request")
		}
		if within != nil {
			return within(ctx, o)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", o.ID).
		Str("status", string(o.Status)).
		Str("actor_id", actor.IDFromContext(ctx)).
		Msg("order updated")
	return o, nil
}
