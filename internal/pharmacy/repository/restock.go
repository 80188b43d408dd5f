package repository

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/pkg/database"
)

var restockColumns = []string{
	"id", "product_id", "branch_id", "requested_by", "quantity", "status", "supplier_id", "notes",
	"approved_by", "approved_at", "fulfilled_at", "created_at", "updated_at",
}

// RestockFilter narrows a restock request listing. Zero values are ignored.
type RestockFilter struct {
	Status      domain.RestockStatus
	BranchID    string
	ProductID   string
	RequestedBy string
}

// RestockRepository handles restock request persistence
type RestockRepository struct {
	db *database.DB
}

// NewRestockRepository creates a new restock request repository
func NewRestockRepository(db *database.DB) *RestockRepository {
	return &RestockRepository{db: db}
}

// Create inserts a restock request
func (r *RestockRepository) Create(ctx context.Context, req *domain.RestockRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	query := `
		INSERT INTO restock_requests (id, product_id, branch_id, requested_by, quantity, status, supplier_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.Ext(ctx).QueryRowxContext(ctx, query,
		req.ID, req.ProductID, req.BranchID, req.RequestedBy, req.Quantity, req.Status, req.SupplierID, req.Notes,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	return database.MapError(err, "restock request", "create")
}

// GetByID gets a restock request by ID
func (r *RestockRepository) GetByID(ctx context.Context, id string) (*domain.RestockRequest, error) {
	return getOne[domain.RestockRequest](ctx, r.db.Ext(ctx), "restock_requests", restockColumns, id, "restock request")
}

// List lists restock requests, newest first
func (r *RestockRepository) List(ctx context.Context, filter RestockFilter, page Page) ([]domain.RestockRequest, int64, error) {
	base := psql.Select().From("restock_requests")
	if filter.Status != "" {
		base = base.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.BranchID != "" {
		base = base.Where(squirrel.Eq{"branch_id": filter.BranchID})
	}
	if filter.ProductID != "" {
		base = base.Where(squirrel.Eq{"product_id": filter.ProductID})
	}
	if filter.RequestedBy != "" {
		base = base.Where(squirrel.Eq{"requested_by": filter.RequestedBy})
	}
	items, total, err := selectPage[domain.RestockRequest](ctx, r.db.Ext(ctx), base, restockColumns, "created_at DESC", page)
	if err != nil {
		return nil, 0, database.MapError(err, "restock request", "list")
	}
	return items, total, nil
}

// ListByStatus lists restock requests in one status
func (r *RestockRepository) ListByStatus(ctx context.Context, status domain.RestockStatus, page Page) ([]domain.RestockRequest, int64, error) {
	return r.List(ctx, RestockFilter{Status: status}, page)
}

// ListByBranch lists restock requests of one branch
func (r *RestockRepository) ListByBranch(ctx context.Context, branchID string, page Page) ([]domain.RestockRequest, int64, error) {
	return r.List(ctx, RestockFilter{BranchID: branchID}, page)
}

// UpdateTransition writes a transition computed in memory, but only while the
// stored status still equals from. It returns false when another writer got
// there first.
func (r *RestockRepository) UpdateTransition(ctx context.Context, req *domain.RestockRequest, from domain.RestockStatus) (bool, error) {
	query := `
		UPDATE restock_requests SET
			status = $3, approved_by = $4, approved_at = $5, fulfilled_at = $6, updated_at = $7
		WHERE id = $1 AND status = $2
	`
	ok, err := conditional(r.db.Ext(ctx).ExecContext(ctx, query,
		req.ID, from, req.Status, req.ApprovedBy, req.ApprovedAt, req.FulfilledAt, req.UpdatedAt,
	))
	return ok, database.MapError(err, "restock request", "update")
}

// LockForUpdate loads the requests with the given ids and locks them until
// the enclosing transaction ends. Missing ids are simply absent from the result.
func (r *RestockRepository) LockForUpdate(ctx context.Context, ids []string) ([]domain.RestockRequest, error) {
	qb := psql.Select(restockColumns...).From("restock_requests").
		Where("id = ANY(?)", pq.Array(ids)).
		OrderBy("id").
		Suffix("FOR UPDATE")
	items, err := selectAll[domain.RestockRequest](ctx, r.db.Ext(ctx), qb)
	if err != nil {
		return nil, database.MapError(err, "restock request", "lock")
	}
	return items, nil
}

// BulkApprove approves every PENDING request among ids in one statement and
// returns the number of rows changed.
func (r *RestockRepository) BulkApprove(ctx context.Context, ids []string, actorID string, at time.Time) (int64, error) {
	query := `
		UPDATE restock_requests SET
			status = 'APPROVED', approved_by = $2, approved_at = $3, updated_at = $3
		WHERE id = ANY($1) AND status = 'PENDING'
	`
	n, err := rowCount(r.db.Ext(ctx).ExecContext(ctx, query, pq.Array(ids), actorID, at))
	return n, database.MapError(err, "restock request", "bulk approve")
}
