package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/events"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/repository"
	"github.com/pharmacare/pharmacare-backend/pkg/actor"
	"github.com/pharmacare/pharmacare-backend/pkg/errors"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
)

// RestockStore persists restock requests
type RestockStore interface {
	Create(ctx context.Context, req *domain.RestockRequest) error
	GetByID(ctx context.Context, id string) (*domain.RestockRequest, error)
	List(ctx context.Context, filter repository.RestockFilter, page repository.Page) ([]domain.RestockRequest, int64, error)
	UpdateTransition(ctx context.Context, req *domain.RestockRequest, from domain.RestockStatus) (bool, error)
	LockForUpdate(ctx context.Context, ids []string) ([]domain.RestockRequest, error)
	BulkApprove(ctx context.Context, ids []string, actorID string, at time.Time) (int64, error)
}

// CreateRestockInput asks for more stock of a product at a branch
type CreateRestockInput struct {
	ProductID  string `json:"product_id" validate:"required,uuid"`
	BranchID   string `json:"branch_id" validate:"required,uuid"`
	Quantity   int    `json:"quantity" validate:"required,gt=0"`
	SupplierID string `json:"supplier_id" validate:"omitempty,uuid"`
	Notes      string `json:"notes" validate:"max=1000"`
}

// RestockService drives restock requests through review and fulfilment
type RestockService struct {
	tx            Transactor
	requests      RestockStore
	products      ProductStore
	branches      BranchStore
	suppliers     SupplierStore
	inventory     *InventoryService
	notifications *NotificationService
	publisher     *events.Publisher
	logger        *logger.Logger
	now           func() time.Time
}

// NewRestockService creates a new restock service
func NewRestockService(
	tx Transactor,
	requests RestockStore,
	products ProductStore,
	branches BranchStore,
	suppliers SupplierStore,
	inventory *InventoryService,
	notifications *NotificationService,
	publisher *events.Publisher,
	log *logger.Logger,
) *RestockService {
	return &RestockService{
		tx:            tx,
		requests:      requests,
		products:      products,
		branches:      branches,
		suppliers:     suppliers,
		inventory:     inventory,
		notifications: notifications,
		publisher:     publisher,
		logger:        log.WithComponent("restock"),
		now:           utcNow,
	}
}

// Create files a PENDING restock request as the current user
func (s *RestockService) Create(ctx context.Context, in CreateRestockInput) (*domain.RestockRequest, error) {
	if _, err := s.products.GetByID(ctx, in.ProductID); err != nil {
		return nil, err
	}
	if _, err := s.branches.GetByID(ctx, in.BranchID); err != nil {
		return nil, err
	}
	if in.SupplierID != "" {
		if _, err := s.suppliers.GetByID(ctx, in.SupplierID); err != nil {
			return nil, err
		}
	}

	req := &domain.RestockRequest{
		ProductID:   in.ProductID,
		BranchID:    in.BranchID,
		RequestedBy: actor.IDFromContext(ctx),
		Quantity:    in.Quantity,
		Status:      domain.RestockPending,
		SupplierID:  strPtr(in.SupplierID),
		Notes:       in.Notes,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info().Str("request_id", req.ID).Str("actor_id", req.RequestedBy).Msg("restock requested")
	s.publisher.RestockTransitioned(ctx, req, req.RequestedBy)
	return req, nil
}

// Get gets a restock request by ID
func (s *RestockService) Get(ctx context.Context, id string) (*domain.RestockRequest, error) {
	return s.requests.GetByID(ctx, id)
}

// List lists restock requests
func (s *RestockService) List(ctx context.Context, filter repository.RestockFilter, params ListParams) ([]domain.RestockRequest, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, errors.ValidationField("status", fmt.Sprintf("unknown status %q", filter.Status))
	}
	return s.requests.List(ctx, filter, params.page())
}

// Approve approves a PENDING request as the current user
func (s *RestockService) Approve(ctx context.Context, id string) (*domain.RestockRequest, error) {
	actorID := actor.IDFromContext(ctx)
	req, err := s.transition(ctx, id, domain.RestockPending, func(r *domain.RestockRequest) error {
		return r.Approve(actorID, s.now())
	})
	if err != nil {
		return nil, err
	}
	s.notifyRequester(ctx, req, domain.NotificationRestockApproved, "Restock request approved")
	return req, nil
}

// Reject rejects a PENDING request as the current user
func (s *RestockService) Reject(ctx context.Context, id string) (*domain.RestockRequest, error) {
	actorID := actor.IDFromContext(ctx)
	req, err := s.transition(ctx, id, domain.RestockPending, func(r *domain.RestockRequest) error {
		return r.Reject(actorID, s.now())
	})
	if err != nil {
		return nil, err
	}
	s.notifyRequester(ctx, req, domain.NotificationRestockRejected, "Restock request rejected")
	return req, nil
}

// Cancel withdraws a PENDING request
func (s *RestockService) Cancel(ctx context.Context, id string) (*domain.RestockRequest, error) {
	return s.transition(ctx, id, domain.RestockPending, func(r *domain.RestockRequest) error {
		return r.Cancel(s.now())
	})
}

// Fulfill marks an APPROVED request delivered and adds its quantity to the
// branch inventory in the same transaction.
func (s *RestockService) Fulfill(ctx context.Context, id string) (*domain.RestockRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := req.Fulfill(s.now()); err != nil {
		return nil, err
	}

	var inv *domain.Inventory
	var raised []*domain.Alert
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		ok, err := s.requests.UpdateTransition(ctx, req, domain.RestockApproved)
		if err != nil {
			return err
		}
		if !ok {
			return errors.IllegalState("restock request was changed by another request")
		}
		inv, raised, err = s.inventory.AddStock(ctx, req.ProductID, req.BranchID, req.Quantity)
		return err
	})
	if err != nil {
		return nil, err
	}

	actorID := actor.IDFromContext(ctx)
	s.logger.Info().Str("request_id", req.ID).Str("status", string(req.Status)).Str("actor_id", actorID).Msg("restock request updated")
	s.publisher.RestockTransitioned(ctx, req, actorID)
	s.inventory.afterChange(ctx, inv, req.Quantity, "restock request "+req.ID+" fulfilled", raised)
	s.notifyRequester(ctx, req, domain.NotificationRestockFulfilled, "Restock request fulfilled")
	return req, nil
}

// transition loads a request, applies a domain transition and writes it back
// only if the stored status is still from.
func (s *RestockService) transition(ctx context.Context, id string, from domain.RestockStatus, apply func(*domain.RestockRequest) error) (*domain.RestockRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(req); err != nil {
		return nil, err
	}

	ok, err := s.requests.UpdateTransition(ctx, req, from)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.IllegalState("restock request was changed by another request")
	}

	actorID := actor.IDFromContext(ctx)
	s.logger.Info().Str("request_id", req.ID).Str("status", string(req.Status)).Str("actor_id", actorID).Msg("restock request updated")
	s.publisher.RestockTransitioned(ctx, req, actorID)
	return req, nil
}

// BulkApprove approves all of ids or none of them. Missing ids fail with
// NotFound and requests that are not PENDING with IllegalState.
func (s *RestockService) BulkApprove(ctx context.Context, ids []string) ([]domain.RestockRequest, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, errors.ValidationField("ids", "at least one id is required")
	}

	actorID := actor.IDFromContext(ctx)
	at := s.now()
	var approved []domain.RestockRequest

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		locked, err := s.requests.LockForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		if missing := missingIDs(ids, locked, func(r domain.RestockRequest) string { return r.ID }); len(missing) > 0 {
			return errors.NotFound("restock request").WithDetails(map[string]string{"ids": strings.Join(missing, ",")})
		}

		var bad []string
		for _, r := range locked {
			if r.Status != domain.RestockPending {
				bad = append(bad, r.ID)
			}
		}
		if len(bad) > 0 {
			return errors.IllegalStateFor("only PENDING restock requests can be approved", bad)
		}

		n, err := s.requests.BulkApprove(ctx, ids, actorID, at)
		if err != nil {
			return err
		}
		if n != int64(len(ids)) {
			return errors.IllegalState("restock requests were changed by another request")
		}

		for i := range locked {
			if err := locked[i].Approve(actorID, at); err != nil {
				return err
			}
		}
		approved = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int("count", len(approved)).Str("actor_id", actorID).Msg("restock requests bulk approved")
	for i := range approved {
		req := &approved[i]
		s.publisher.RestockTransitioned(ctx, req, actorID)
		s.notifyRequester(ctx, req, domain.NotificationRestockApproved, "Restock request approved")
	}
	return approved, nil
}

func (s *RestockService) notifyRequester(ctx context.Context, req *domain.RestockRequest, typ domain.NotificationType, title string) {
	message := fmt.Sprintf("Your request for %d units is now %s.", req.Quantity, strings.ToLower(string(req.Status)))
	s.notifications.Notify(ctx, req.RequestedBy, typ, title, message, "restock_request", req.ID)
}
