package repository_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/repository"
	"github.com/pharmacare/pharmacare-backend/pkg/testutil"
)

var restockCols = []string{
	"id", "product_id", "branch_id", "requested_by", "quantity", "status", "supplier_id", "notes",
	"approved_by", "approved_at", "fulfilled_at", "created_at", "updated_at",
}

func restockRows(reqs ...domain.RestockRequest) *sqlmock.Rows {
	rows := testutil.MockRows(restockCols...)
	for _, r := range reqs {
		rows.AddRow(r.ID, r.ProductID, r.BranchID, r.RequestedBy, r.Quantity, string(r.Status), r.SupplierID,
			r.Notes, r.ApprovedBy, r.ApprovedAt, r.FulfilledAt, r.CreatedAt, r.UpdatedAt)
	}
	return rows
}

func TestRestockRepository_UpdateTransition(t *testing.T) {
	fixtures := testutil.NewFixtureFactory()

	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{"row still pending", 1, true},
		{"concurrent writer won", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB := testutil.NewMockDB(t)
			defer mockDB.Close()
			repo := repository.NewRestockRepository(mockDB.Database())

			req := fixtures.RestockRequest(domain.RestockPending, "user-1")
			require.NoError(t, req.Approve("manager-1", testutil.FixedNow))

			mockDB.ExpectExec("UPDATE restock_requests SET status = $3, approved_by = $4, approved_at = $5, fulfilled_at = $6, updated_at = $7 WHERE id = $1 AND status = $2").
				WithArgs(req.ID, "PENDING", "APPROVED", "manager-1", testutil.AnyTime{}, nil, testutil.AnyTime{}).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			ok, err := repo.UpdateTransition(context.Background(), &req, domain.RestockPending)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			mockDB.ExpectationsWereMet(t)
		})
	}
}

func TestRestockRepository_LockForUpdate(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	repo := repository.NewRestockRepository(mockDB.Database())
	fixtures := testutil.NewFixtureFactory()

	a := fixtures.RestockRequest(domain.RestockPending, "user-1")
	b := fixtures.RestockRequest(domain.RestockRejected, "user-1")
	ids := []string{a.ID, b.ID}

	mockDB.ExpectQuery("FROM restock_requests WHERE id = ANY($1) ORDER BY id FOR UPDATE").
		WithArgs(pq.Array(ids)).
		WillReturnRows(restockRows(a, b))

	got, err := repo.LockForUpdate(context.Background(), ids)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.RestockRejected, got[1].Status)
	assert.NotNil(t, got[1].ApprovedBy)
	mockDB.ExpectationsWereMet(t)
}

func TestRestockRepository_BulkApproveOnlyTouchesPending(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	repo := repository.NewRestockRepository(mockDB.Database())

	ids := []string{"r-1", "r-2"}
	mockDB.ExpectExec("WHERE id = ANY($1) AND status = 'PENDING'").
		WithArgs(pq.Array(ids), "manager-1", testutil.AnyTime{}).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.BulkApprove(context.Background(), ids, "manager-1", testutil.FixedNow)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	mockDB.ExpectationsWereMet(t)
}

func TestRestockRepository_ListByStatus(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	repo := repository.NewRestockRepository(mockDB.Database())
	fixtures := testutil.NewFixtureFactory()

	mockDB.ExpectQuery("SELECT COUNT(*) FROM restock_requests WHERE status = $1").
		WithArgs("PENDING").
		WillReturnRows(testutil.CountRows(1))
	mockDB.ExpectQuery("FROM restock_requests WHERE status = $1 ORDER BY created_at DESC LIMIT 20 OFFSET 0").
		WithArgs("PENDING").
		WillReturnRows(restockRows(fixtures.RestockRequest(domain.RestockPending, "user-1")))

	items, total, err := repo.ListByStatus(context.Background(), domain.RestockPending, repository.NewPage(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, items, 1)
	mockDB.ExpectationsWereMet(t)
}
