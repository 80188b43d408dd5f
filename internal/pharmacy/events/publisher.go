// Package events turns pharmacy state changes into messages on the
// pharmacy.events exchange.
package events

import (
	"context"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
	"github.com/pharmacare/pharmacare-backend/pkg/messaging"
)

// Publisher publishes pharmacy domain events. A nil Publisher, or one built
// without a transport, drops events silently. Failures are logged and never
// returned to the caller.
type Publisher struct {
	publisher messaging.EventPublisher
	logger    *logger.Logger
}

// NewPublisher wraps an event transport
func NewPublisher(publisher messaging.EventPublisher, log *logger.Logger) *Publisher {
	return &Publisher{publisher: publisher, logger: log}
}

// NewRabbitPublisher creates a publisher bound to the pharmacy.events exchange
func NewRabbitPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*Publisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangePharmacyEvents, "pharmacy-api", log)
	if err != nil {
		return nil, err
	}
	return NewPublisher(publisher, log), nil
}

func (p *Publisher) publish(ctx context.Context, eventType, entityID string, data interface{}) {
	if p == nil || p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, eventType, data); err != nil {
		p.logger.Error().Err(err).
			Str("event_type", eventType).
			Str("entity_id", entityID).
			Msg("failed to publish event")
	}
}

// RestockTransitioned publishes the event matching the request's new status.
func (p *Publisher) RestockTransitioned(ctx context.Context, req *domain.RestockRequest, actorID string) {
	var eventType string
	switch req.Status {
	case domain.RestockPending:
		eventType = messaging.EventRestockRequested
	case domain.RestockApproved:
		eventType = messaging.EventRestockApproved
	case domain.RestockRejected:
		eventType = messaging.EventRestockRejected
	case domain.RestockFulfilled:
		eventType = messaging.EventRestockFulfilled
	case domain.RestockCancelled:
		eventType = messaging.EventRestockCancelled
	default:
		return
	}

	p.publish(ctx, eventType, req.ID, messaging.RestockTransitionEvent{
		RequestID:   req.ID,
		ProductID:   req.ProductID,
		BranchID:    req.BranchID,
		Quantity:    req.Quantity,
		Status:      string(req.Status),
		RequestedBy: req.RequestedBy,
		ActorID:     actorID,
	})
}

// PrescriptionReviewed publishes prescription.approved or prescription.rejected
func (p *Publisher) PrescriptionReviewed(ctx context.Context, rx *domain.Prescription, reviewerID string) {
	eventType := messaging.EventPrescriptionApproved
	if rx.Status == domain.PrescriptionRejected {
		eventType = messaging.EventPrescriptionRejected
	}
	p.publish(ctx, eventType, rx.ID, messaging.PrescriptionReviewedEvent{
		PrescriptionID: rx.ID,
		UserID:         rx.UserID,
		Status:         string(rx.Status),
		ReviewerID:     reviewerID,
	})
}

// AlertRaised publishes alert.raised
func (p *Publisher) AlertRaised(ctx context.Context, a *domain.Alert) {
	p.publish(ctx, messaging.EventAlertRaised, a.ID, alertEvent(a, ""))
}

// AlertResolved publishes alert.resolved
func (p *Publisher) AlertResolved(ctx context.Context, a *domain.Alert, actorID string) {
	p.publish(ctx, messaging.EventAlertResolved, a.ID, alertEvent(a, actorID))
}

func alertEvent(a *domain.Alert, actorID string) messaging.AlertEvent {
	return messaging.AlertEvent{
		AlertID:   a.ID,
		AlertType: string(a.AlertType),
		Status:    string(a.Status),
		Message:   a.Message,
		ProductID: deref(a.ProductID),
		BranchID:  deref(a.BranchID),
		Critical:  a.IsCritical(),
		ActorID:   actorID,
	}
}

// OrderPlaced publishes order.placed
func (p *Publisher) OrderPlaced(ctx context.Context, o *domain.Order) {
	p.publish(ctx, messaging.EventOrderPlaced, o.ID, messaging.OrderPlacedEvent{
		OrderID:     o.ID,
		BranchID:    o.BranchID,
		CustomerID:  deref(o.CustomerID),
		TotalAmount: o.TotalAmount.StringFixed(2),
		ItemCount:   len(o.Items),
	})
}

// StockAdjusted publishes stock.adjusted
func (p *Publisher) StockAdjusted(ctx context.Context, inv *domain.Inventory, delta int, reason, actorID string) {
	p.publish(ctx, messaging.EventStockAdjusted, inv.ID, messaging.StockAdjustedEvent{
		InventoryID: inv.ID,
		ProductID:   inv.ProductID,
		BranchID:    inv.BranchID,
		Adjustment:  delta,
		NewLevel:    inv.StockLevel,
		Reason:      reason,
		PerformedBy: actorID,
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
