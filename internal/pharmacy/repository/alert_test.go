package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/repository"
	"github.com/pharmacare/pharmacare-backend/pkg/testutil"
)

func TestAlertRepository_ExistsActive(t *testing.T) {
	productID := "p-1"

	t.Run("with product and branch", func(t *testing.T) {
		mockDB := testutil.NewMockDB(t)
		defer mockDB.Close()
		repo := repository.NewAlertRepository(mockDB.Database())
		branchID := "b-1"

		mockDB.ExpectQuery("SELECT EXISTS ( SELECT 1 FROM alerts WHERE alert_type = $1 AND resolved = $2 AND product_id = $3 AND branch_id = $4 )").
			WithArgs("LOW_STOCK", false, productID, branchID).
			WillReturnRows(testutil.ExistsRows(true))

		exists, err := repo.ExistsActive(context.Background(), domain.AlertLowStock, &productID, &branchID)
		require.NoError(t, err)
		assert.True(t, exists)
		mockDB.ExpectationsWereMet(t)
	})

	t.Run("nil branch matches NULL", func(t *testing.T) {
		mockDB := testutil.NewMockDB(t)
		defer mockDB.Close()
		repo := repository.NewAlertRepository(mockDB.Database())

		mockDB.ExpectQuery("AND product_id = $3 AND branch_id IS NULL )").
			WithArgs("EXPIRY_WARNING", false, productID).
			WillReturnRows(testutil.ExistsRows(false))

		exists, err := repo.ExistsActive(context.Background(), domain.AlertExpiryWarning, &productID, nil)
		require.NoError(t, err)
		assert.False(t, exists)
		mockDB.ExpectationsWereMet(t)
	})
}

func TestAlertRepository_ResolvedSince(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	repo := repository.NewAlertRepository(mockDB.Database())
	productID, branchID := "p-1", "b-1"
	since := testutil.FixedNow.AddDate(0, 0, -7)

	mockDB.ExpectQuery("SELECT EXISTS ( SELECT 1 FROM alerts WHERE alert_type = $1 AND resolved = $2 AND product_id = $3 AND branch_id = $4 AND resolved_at >= $5 )").
		WithArgs("EXPIRY_CRITICAL", true, productID, branchID, since).
		WillReturnRows(testutil.ExistsRows(true))

	resolved, err := repo.ResolvedSince(context.Background(), domain.AlertExpiryCritical, &productID, &branchID, since)
	require.NoError(t, err)
	assert.True(t, resolved)
	mockDB.ExpectationsWereMet(t)
}

func TestAlertRepository_UpdateStateIsConditional(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	repo := repository.NewAlertRepository(mockDB.Database())

	a := testutil.NewFixtureFactory().Alert(domain.AlertOutOfStock)
	require.NoError(t, a.Resolve("staff-1", testutil.FixedNow))

	mockDB.ExpectExec("UPDATE alerts SET resolved = $3, resolved_by = $4, resolved_at = $5, status = $6 WHERE id = $1 AND status = $2").
		WithArgs(a.ID, "ACTIVE", true, "staff-1", testutil.AnyTime{}, "RESOLVED").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.UpdateState(context.Background(), &a, domain.AlertActive)
	require.NoError(t, err)
	assert.False(t, ok)
	mockDB.ExpectationsWereMet(t)
}

func TestAlertRepository_DeleteResolvedBefore(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	repo := repository.NewAlertRepository(mockDB.Database())

	cutoff := testutil.FixedNow.Add(-90 * 24 * time.Hour)
	mockDB.ExpectExec("DELETE FROM alerts WHERE resolved = TRUE AND resolved_at < $1").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := repo.DeleteResolvedBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	mockDB.ExpectationsWereMet(t)
}
