package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExchangePharmacyEvents carries every domain event; routing key is the event type.
const ExchangePharmacyEvents = "pharmacy.events"

// Event types
const (
	EventRestockRequested = "restock.requested"
	EventRestockApproved  = "restock.approved"
	EventRestockRejected  = "restock.rejected"
	EventRestockFulfilled = "restock.fulfilled"
	EventRestockCancelled = "restock.cancelled"

	EventPrescriptionApproved = "prescription.approved"
	EventPrescriptionRejected = "prescription.rejected"

	EventAlertRaised   = "alert.raised"
	EventAlertResolved = "alert.resolved"

	EventOrderPlaced = "order.placed"

	EventStockAdjusted = "stock.adjusted"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// RestockTransitionEvent is published on every restock request status change
type RestockTransitionEvent struct {
	RequestID   string `json:"request_id"`
	ProductID   string `json:"product_id"`
	BranchID    string `json:"branch_id"`
	Quantity    int    `json:"quantity"`
	Status      string `json:"status"`
	RequestedBy string `json:"requested_by"`
	ActorID     string `json:"actor_id,omitempty"`
}

// PrescriptionReviewedEvent is published when a prescription is approved or rejected
type PrescriptionReviewedEvent struct {
	PrescriptionID string `json:"prescription_id"`
	UserID         string `json:"user_id"`
	Status         string `json:"status"`
	ReviewerID     string `json:"reviewer_id"`
}

// AlertEvent is published when an alert is raised or resolved
type AlertEvent struct {
	AlertID   string `json:"alert_id"`
	AlertType string `json:"alert_type"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	ProductID string `json:"product_id,omitempty"`
	BranchID  string `json:"branch_id,omitempty"`
	Critical  bool   `json:"critical"`
	ActorID   string `json:"actor_id,omitempty"`
}

// OrderPlacedEvent is published when an order is created
type OrderPlacedEvent struct {
	OrderID     string `json:"order_id"`
	BranchID    string `json:"branch_id"`
	CustomerID  string `json:"customer_id,omitempty"`
	TotalAmount string `json:"total_amount"`
	ItemCount   int    `json:"item_count"`
}

// StockAdjustedEvent is published when branch inventory changes
type StockAdjustedEvent struct {
	InventoryID string `json:"inventory_id"`
	ProductID   string `json:"product_id"`
	BranchID    string `json:"branch_id"`
	Adjustment  int    `json:"adjustment"`
	NewLevel    int    `json:"new_level"`
	Reason      string `json:"reason"`
	PerformedBy string `json:"performed_by"`
}
