package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/repository"
	"github.com/pharmacare/pharmacare-backend/pkg/testutil"
)

func newOrder() *domain.Order {
	o := &domain.Order{
		BranchID:  "b-1",
		Status:    domain.OrderPending,
		CreatedBy: "cashier-1",
	}
	o.Items = []domain.OrderItem{
		domain.NewOrderItem("", "", "p-1", 2, decimal.RequireFromString("4.50")),
		domain.NewOrderItem("", "", "p-2", 1, decimal.RequireFromString("10.00")),
	}
	o.CalculateTotal()
	return o
}

func TestOrderRepository_CreateWritesItemsInOneTransaction(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	repo := repository.NewOrderRepository(mockDB.Database())
	o := newOrder()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("INSERT INTO orders").
		WithArgs(testutil.AnyUUID{}, nil, "b-1", nil, "PENDING", "19", "", "cashier-1").
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(testutil.FixedNow, testutil.FixedNow))
	mockDB.ExpectExec("INSERT INTO order_items (id,order_id,product_id,quantity,unit_price,line_total) VALUES ($1,$2,$3,$4,$5,$6),($7,$8,$9,$10,$11,$12)").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mockDB.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), o))
	assert.NotEmpty(t, o.ID)
	for _, item := range o.Items {
		assert.Equal(t, o.ID, item.OrderID)
		assert.NotEmpty(t, item.ID)
	}
	mockDB.ExpectationsWereMet(t)
}

func TestOrderRepository_CreateRollsBackOnItemFailure(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	repo := repository.NewOrderRepository(mockDB.Database())

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("INSERT INTO orders").
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(testutil.FixedNow, testutil.FixedNow))
	mockDB.ExpectExec("INSERT INTO order_items").
		WillReturnError(errors.New("connection reset"))
	mockDB.ExpectRollback()

	err := repo.Create(context.Background(), newOrder())
	require.Error(t, err)
	mockDB.ExpectationsWereMet(t)
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	repo := repository.NewOrderRepository(mockDB.Database())

	mockDB.ExpectExec("UPDATE orders SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2").
		WithArgs("o-1", "CONFIRMED", "COMPLETED", testutil.AnyTime{}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.UpdateStatus(context.Background(), "o-1", domain.OrderConfirmed, domain.OrderCompleted, testutil.FixedNow)
	require.NoError(t, err)
	assert.True(t, ok)
	mockDB.ExpectationsWereMet(t)
}

func TestOrderRepository_HasOpenForPrescription(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	repo := repository.NewOrderRepository(mockDB.Database())

	mockDB.ExpectQuery("SELECT EXISTS (SELECT 1 FROM orders WHERE prescription_id = $1 AND status <> $2)").
		WithArgs("rx-1", "CANCELLED").
		WillReturnRows(testutil.ExistsRows(true))

	open, err := repo.HasOpenForPrescription(context.Background(), "rx-1")
	require.NoError(t, err)
	assert.True(t, open)
	mockDB.ExpectationsWereMet(t)
}
