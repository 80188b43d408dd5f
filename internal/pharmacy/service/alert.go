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

// AlertStore persists alerts
type AlertStore interface {
	Create(ctx context.Context, a *domain.Alert) error
	GetByID(ctx context.Context, id string) (*domain.Alert, error)
	List(ctx context.Context, filter repository.AlertFilter, page repository.Page) ([]domain.Alert, int64, error)
	ExistsActive(ctx context.Context, alertType domain.AlertType, productID, branchID *string) (bool, error)
	ResolvedSince(ctx context.Context, alertType domain.AlertType, productID, branchID *string, since time.Time) (bool, error)
	UpdateState(ctx context.Context, a *domain.Alert, from domain.AlertStatus) (bool, error)
	LockForUpdate(ctx context.Context, ids []string) ([]domain.Alert, error)
	BulkResolve(ctx context.Context, ids []string, actorID string, at time.Time) (int64, error)
	DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// CreateAlertInput is a manually raised alert
type CreateAlertInput struct {
	AlertType domain.AlertType `json:"alert_type" validate:"required"`
	Message   string           `json:"message" validate:"required,max=1000"`
	ProductID string           `json:"product_id" validate:"omitempty,uuid"`
	BranchID  string           `json:"branch_id" validate:"omitempty,uuid"`
}

// AlertService manages the alert lifecycle
type AlertService struct {
	tx        Transactor
	alerts    AlertStore
	publisher *events.Publisher
	logger    *logger.Logger
	now       func() time.Time
}

// NewAlertService creates a new alert service
func NewAlertService(tx Transactor, alerts AlertStore, publisher *events.Publisher, log *logger.Logger) *AlertService {
	return &AlertService{
		tx:        tx,
		alerts:    alerts,
		publisher: publisher,
		logger:    log.WithComponent("alerts"),
		now:       utcNow,
	}
}

// Create raises an alert on behalf of the current user
func (s *AlertService) Create(ctx context.Context, in CreateAlertInput) (*domain.Alert, error) {
	if !in.AlertType.Valid() {
		return nil, errors.ValidationField("alert_type", fmt.Sprintf("unknown alert type %q", in.AlertType))
	}
	triggeredBy := actor.IDFromContext(ctx)
	a := &domain.Alert{
		AlertType:   in.AlertType,
		Message:     in.Message,
		ProductID:   strPtr(in.ProductID),
		BranchID:    strPtr(in.BranchID),
		TriggeredBy: &triggeredBy,
		Status:      domain.AlertActive,
	}
	if err := s.alerts.Create(ctx, a); err != nil {
		return nil, err
	}
	s.logger.Info().Str("alert_id", a.ID).Str("alert_type", string(a.AlertType)).Msg("alert raised")
	s.publisher.AlertRaised(ctx, a)
	return a, nil
}

// Raise creates an alert unless an unresolved one of the same type already
// exists for the product and branch. It reports whether a new alert was made.
func (s *AlertService) Raise(ctx context.Context, alertType domain.AlertType, productID, branchID *string, message string) (bool, error) {
	a, err := s.raise(ctx, alertType, productID, branchID, message)
	if err != nil || a == nil {
		return false, err
	}
	s.publisher.AlertRaised(ctx, a)
	return true, nil
}

// raise is Raise without the event, for callers inside a transaction that
// publish after commit. It returns nil when an active alert already exists.
func (s *AlertService) raise(ctx context.Context, alertType domain.AlertType, productID, branchID *string, message string) (*domain.Alert, error) {
	exists, err := s.alerts.ExistsActive(ctx, alertType, productID, branchID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}

	systemID := actor.SystemID
	a := &domain.Alert{
		AlertType:   alertType,
		Message:     message,
		ProductID:   productID,
		BranchID:    branchID,
		TriggeredBy: &systemID,
		Status:      domain.AlertActive,
	}
	if err := s.alerts.Create(ctx, a); err != nil {
		return nil, err
	}
	s.logger.Info().Str("alert_id", a.ID).Str("alert_type", string(alertType)).Msg("alert raised")
	return a, nil
}

// ResolvedSince reports whether staff resolved a matching alert at or after since.
func (s *AlertService) ResolvedSince(ctx context.Context, alertType domain.AlertType, productID, branchID *string, since time.Time) (bool, error) {
	return s.alerts.ResolvedSince(ctx, alertType, productID, branchID, since)
}

// Get gets an alert by ID
func (s *AlertService) Get(ctx context.Context, id string) (*domain.Alert, error) {
	return s.alerts.GetByID(ctx, id)
}

// List lists alerts matching filter
func (s *AlertService) List(ctx context.Context, filter repository.AlertFilter, params ListParams) ([]domain.Alert, int64, error) {
	return s.alerts.List(ctx, filter, params.page())
}

// Resolve closes an alert as the current user
func (s *AlertService) Resolve(ctx context.Context, id string) (*domain.Alert, error) {
	actorID := actor.IDFromContext(ctx)
	a, err := s.transition(ctx, id, func(a *domain.Alert) error { return a.Resolve(actorID, s.now()) })
	if err != nil {
		return nil, err
	}
	s.publisher.AlertResolved(ctx, a, actorID)
	return a, nil
}

// Reopen returns a resolved alert to the open set
func (s *AlertService) Reopen(ctx context.Context, id string) (*domain.Alert, error) {
	return s.transition(ctx, id, (*domain.Alert).Reopen)
}

// Ignore silences an unresolved alert
func (s *AlertService) Ignore(ctx context.Context, id string) (*domain.Alert, error) {
	return s.transition(ctx, id, (*domain.Alert).Ignore)
}

func (s *AlertService) transition(ctx context.Context, id string, apply func(*domain.Alert) error) (*domain.Alert, error) {
	a, err := s.alerts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := a.Status
	if err := apply(a); err != nil {
		return nil, err
	}

	ok, err := s.alerts.UpdateState(ctx, a, from)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.IllegalState("alert was changed by another request")
	}

	s.logger.Info().
		Str("alert_id", a.ID).
		Str("status", string(a.Status)).
		Str("actor_id", actor.IDFromContext(ctx)).
		Msg("alert updated")
	return a, nil
}

// BulkResolve resolves all of ids or none of them. Missing ids fail with
// NotFound and already resolved ones with IllegalState.
func (s *AlertService) BulkResolve(ctx context.Context, ids []string) (int64, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, errors.ValidationField("ids", "at least one id is required")
	}

	actorID := actor.IDFromContext(ctx)
	at := s.now()
	var resolved []domain.Alert
	var n int64

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		locked, err := s.alerts.LockForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		if missing := missingIDs(ids, locked, func(a domain.Alert) string { return a.ID }); len(missing) > 0 {
			return errors.NotFound("alert").WithDetails(map[string]string{"ids": strings.Join(missing, ",")})
		}

		var bad []string
		for _, a := range locked {
			if a.Resolved {
				bad = append(bad, a.ID)
			}
		}
		if len(bad) > 0 {
			return errors.IllegalStateFor("some alerts are already resolved", bad)
		}

		n, err = s.alerts.BulkResolve(ctx, ids, actorID, at)
		if err != nil {
			return err
		}
		if n != int64(len(ids)) {
			return errors.IllegalState("alerts were changed by another request")
		}
		resolved = locked
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int64("count", n).Str("actor_id", actorID).Msg("alerts bulk resolved")
	for i := range resolved {
		a := &resolved[i]
		if err := a.Resolve(actorID, at); err == nil {
			s.publisher.AlertResolved(ctx, a, actorID)
		}
	}
	return n, nil
}

// CleanupResolved deletes alerts resolved more than olderThan ago
func (s *AlertService) CleanupResolved(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan < 0 {
		return 0, errors.ValidationField("older_than_days", "must not be negative")
	}
	n, err := s.alerts.DeleteResolvedBefore(ctx, s.now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	s.logger.Info().Int64("deleted", n).Msg("resolved alerts cleaned up")
	return n, nil
}

// uniqueIDs drops empty and repeated ids, keeping first-seen order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func missingIDs[T any](want []string, got []T, id func(T) string) []string {
	found := make(map[string]bool, len(got))
	for _, g := range got {
		found[id(g)] = true
	}
	var missing []string
	for _, w := range want {
		if !found[w] {
			missing = append(missing, w)
		}
	}
	sort.Strings(missing)
	return missing
}
