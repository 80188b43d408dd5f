package repository

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/pkg/database"
)

var alertColumns = []string{
	"id", "product_id", "branch_id", "alert_type", "message", "triggered_by", "resolved",
	"resolved_by", "resolved_at", "status", "created_at",
}

// AlertFilter narrows an alert listing. Zero values are ignored.
type AlertFilter struct {
	Type      domain.AlertType
	Status    domain.AlertStatus
	BranchID  string
	ProductID string
	Resolved  *bool
}

// AlertRepository handles alert persistence
type AlertRepository struct {
	db *database.DB
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(db *database.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create inserts an alert
func (r *AlertRepository) Create(ctx context.Context, a *domain.Alert) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	query := `
		INSERT INTO alerts (id, product_id, branch_id, alert_type, message, triggered_by, resolved, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	err := r.db.Ext(ctx).QueryRowxContext(ctx, query,
		a.ID, a.ProductID, a.BranchID, a.AlertType, a.Message, a.TriggeredBy, a.Resolved, a.Status,
	).Scan(&a.CreatedAt)
	return database.MapError(err, "alert", "create")
}

// GetByID gets an alert by ID
func (r *AlertRepository) GetByID(ctx context.Context, id string) (*domain.Alert, error) {
	return getOne[domain.Alert](ctx, r.db.Ext(ctx), "alerts", alertColumns, id, "alert")
}

// List lists alerts, newest first
func (r *AlertRepository) List(ctx context.Context, filter AlertFilter, page Page) ([]domain.Alert, int64, error) {
	base := psql.Select().From("alerts")
	if filter.Type != "" {
		base = base.Where(squirrel.Eq{"alert_type": filter.Type})
	}
	if filter.Status != "" {
		base = base.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.BranchID != "" {
		base = base.Where(squirrel.Eq{"branch_id": filter.BranchID})
	}
	if filter.ProductID != "" {
		base = base.Where(squirrel.Eq{"product_id": filter.ProductID})
	}
	if filter.Resolved != nil {
		base = base.Where(squirrel.Eq{"resolved": *filter.Resolved})
	}
	items, total, err := selectPage[domain.Alert](ctx, r.db.Ext(ctx), base, alertColumns, "created_at DESC", page)
	if err != nil {
		return nil, 0, database.MapError(err, "alert", "list")
	}
	return items, total, nil
}

// ListActive lists unresolved alerts
func (r *AlertRepository) ListActive(ctx context.Context, page Page) ([]domain.Alert, int64, error) {
	resolved := false
	return r.List(ctx, AlertFilter{Resolved: &resolved}, page)
}

// ListByBranch lists alerts of one branch
func (r *AlertRepository) ListByBranch(ctx context.Context, branchID string, page Page) ([]domain.Alert, int64, error) {
	return r.List(ctx, AlertFilter{BranchID: branchID}, page)
}

// ExistsActive reports whether an unresolved alert of alertType already exists
// for the product and branch. Nil refs match NULL columns.
func (r *AlertRepository) ExistsActive(ctx context.Context, alertType domain.AlertType, productID, branchID *string) (bool, error) {
	query, args, err := psql.Select("1").From("alerts").
		Where(squirrel.Eq{"alert_type": alertType, "resolved": false}).
		Where(squirrel.Eq{"product_id": productID}).
		Where(squirrel.Eq{"branch_id": branchID}).
		Prefix("SELECT EXISTS (").
		Suffix(")").
		ToSql()
	if err != nil {
		return false, err
	}

	var exists bool
	if err := sqlx.GetContext(ctx, r.db.Ext(ctx), &exists, query, args...); err != nil {
		return false, database.MapError(err, "alert", "exists")
	}
	return exists, nil
}

// ResolvedSince reports whether an alert of this type for the product and
// branch was resolved at or after since.
func (r *AlertRepository) ResolvedSince(ctx context.Context, alertType domain.AlertType, productID, branchID *string, since time.Time) (bool, error) {
	query, args, err := psql.Select("1").From("alerts").
		Where(squirrel.Eq{"alert_type": alertType, "resolved": true}).
		Where(squirrel.Eq{"product_id": productID}).
		Where(squirrel.Eq{"branch_id": branchID}).
		Where(squirrel.GtOrEq{"resolved_at": since}).
		Prefix("SELECT EXISTS (").
		Suffix(")").
		ToSql()
	if err != nil {
		return false, err
	}

	var exists bool
	if err := sqlx.GetContext(ctx, r.db.Ext(ctx), &exists, query, args...); err != nil {
		return false, database.MapError(err, "alert", "exists")
	}
	return exists, nil
}

// UpdateState writes a resolve, reopen or ignore computed in memory while
// the stored status still equals from.
func (r *AlertRepository) UpdateState(ctx context.Context, a *domain.Alert, from domain.AlertStatus) (bool, error) {
	query := `
		UPDATE alerts SET resolved = $3, resolved_by = $4, resolved_at = $5, status = $6
		WHERE id = $1 AND status = $2
	`
	ok, err := conditional(r.db.Ext(ctx).ExecContext(ctx, query,
		a.ID, from, a.Resolved, a.ResolvedBy, a.ResolvedAt, a.Status,
	))
	return ok, database.MapError(err, "alert", "update")
}

// LockForUpdate loads and locks the alerts with the given ids.
func (r *AlertRepository) LockForUpdate(ctx context.Context, ids []string) ([]domain.Alert, error) {
	qb := psql.Select(alertColumns...).From("alerts").
		Where("id = ANY(?)", pq.Array(ids)).
		OrderBy("id").
		Suffix("FOR UPDATE")
	items, err := selectAll[domain.Alert](ctx, r.db.Ext(ctx), qb)
	if err != nil {
		return nil, database.MapError(err, "alert", "lock")
	}
	return items, nil
}

// BulkResolve resolves every unresolved alert among ids in one statement.
func (r *AlertRepository) BulkResolve(ctx context.Context, ids []string, actorID string, at time.Time) (int64, error) {
	query := `
		UPDATE alerts SET resolved = TRUE, resolved_by = $2, resolved_at = $3, status = 'RESOLVED'
		WHERE id = ANY($1) AND resolved = FALSE
	`
	n, err := rowCount(r.db.Ext(ctx).ExecContext(ctx, query, pq.Array(ids), actorID, at))
	return n, database.MapError(err, "alert", "bulk resolve")
}

// DeleteResolvedBefore removes alerts resolved before cutoff and returns how many went.
func (r *AlertRepository) DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM alerts WHERE resolved = TRUE AND resolved_at < $1`
	n, err := rowCount(r.db.Ext(ctx).ExecContext(ctx, query, cutoff))
	return n, database.MapError(err, "alert", "cleanup")
}
