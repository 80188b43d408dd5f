package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
	"github.com/pharmacare/pharmacare-backend/pkg/testutil"
)

func newTestScanner(h *harness) *AlertScanner {
	s := NewAlertScanner(h.tx, h.inventory, h.stocks, h.alertSvc, 90, 30, logger.Nop())
	s.now = fixedClock
	return s
}

func batch(id, productID, branchID string, daysLeft int) domain.Stock {
	expiry := testutil.FixedNow.AddDate(0, 0, daysLeft)
	return domain.Stock{
		ID:          id,
		ProductID:   productID,
		BranchID:    branchID,
		Quantity:    10,
		BatchNumber: "B-" + id,
		ExpiryDate:  &expiry,
	}
}

// ============================================================================
// EXPIRY
// ============================================================================

func TestAlertScanner_ScanExpiry(t *testing.T) {
	h := newHarness()
	h.stocks = newFakeStocks(
		batch("expired", "p1", "b1", -2),
		batch("critical", "p2", "b1", 12),
		batch("warning", "p3", "b1", 60),
		batch("fine", "p4", "b1", 200),
	)
	// A stale flag from an earlier scan must be cleared.
	h.inventory.expiryFlags[[2]string{"p4", "b1"}] = true
	scanner := newTestScanner(h)

	n, err := scanner.ScanExpiry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	assert.Len(t, h.alerts.ofType(domain.AlertExpiryCritical), 2)
	warnings := h.alerts.ofType(domain.AlertExpiryWarning)
	require.Len(t, warnings, 1)
	assert.Equal(t, "p3", *warnings[0].ProductID)
	assert.Contains(t, warnings[0].Message, "expires in 60 days")

	assert.Equal(t, 1, h.inventory.clearedFlags)
	assert.True(t, h.inventory.expiryFlags[[2]string{"p1", "b1"}])
	assert.True(t, h.inventory.expiryFlags[[2]string{"p3", "b1"}])
	assert.False(t, h.inventory.expiryFlags[[2]string{"p4", "b1"}])

	t.Run("a second scan raises nothing new", func(t *testing.T) {
		n, err := scanner.ScanExpiry(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Len(t, h.alerts.byID, 3)
	})
}

func TestAlertScanner_ScanExpiryFlagsInOneTransaction(t *testing.T) {
	h := newHarness()
	h.stocks = newFakeStocks(
		batch("a", "p1", "b1", 5),
		batch("b", "p1", "b1", 20),
		batch("c", "p2", "b2", 40),
	)
	scanner := newTestScanner(h)

	calls := h.tx.calls
	_, err := scanner.ScanExpiry(context.Background())
	require.NoError(t, err)

	assert.Equal(t, calls+1, h.tx.calls)
	assert.Equal(t, 1, h.inventory.clearedFlags)
	assert.True(t, h.inventory.expiryFlags[[2]string{"p1", "b1"}])
	assert.True(t, h.inventory.expiryFlags[[2]string{"p2", "b2"}])
}

func TestAlertScanner_ScanExpirySkipsHandledBatches(t *testing.T) {
	f := testutil.NewFixtureFactory()

	t.Run("branches without stock are skipped", func(t *testing.T) {
		h := newHarness()
		h.addInventory(f.Inventory("p1", "b1", 0, 5))
		h.addInventory(f.Inventory("p1", "b2", 4, 5))
		h.stocks = newFakeStocks(
			batch("gone", "p1", "b1", -10),
			batch("held", "p1", "b2", -10),
		)
		h.stocks.held = func(productID, branchID string) bool {
			inv, ok := h.inventory.find(productID, branchID)
			return ok && inv.StockLevel > 0
		}

		n, err := newTestScanner(h).ScanExpiry(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		alerts := h.alerts.ofType(domain.AlertExpiryCritical)
		require.Len(t, alerts, 1)
		assert.Equal(t, "b2", *alerts[0].BranchID)
		assert.False(t, h.inventory.expiryFlags[[2]string{"p1", "b1"}])
	})

	t.Run("resolved alerts stay resolved", func(t *testing.T) {
		h := newHarness()
		h.stocks = newFakeStocks(batch("x", "p1", "b1", -3))
		scanner := newTestScanner(h)

		n, err := scanner.ScanExpiry(context.Background())
		require.NoError(t, err)
		require.Equal(t, 1, n)

		raised := h.alerts.ofType(domain.AlertExpiryCritical)[0]
		require.NoError(t, raised.Resolve("pharmacist", testutil.FixedNow))
		h.alerts.byID[raised.ID] = raised

		for i := 0; i < 2; i++ {
			n, err = scanner.ScanExpiry(context.Background())
			require.NoError(t, err)
			assert.Zero(t, n)
		}
		assert.Len(t, h.alerts.byID, 1)
		// The inventory flag still reflects the expired batch.
		assert.True(t, h.inventory.expiryFlags[[2]string{"p1", "b1"}])
	})

	t.Run("a batch received after the resolution raises again", func(t *testing.T) {
		h := newHarness()
		old := f.Alert(domain.AlertExpiryWarning)
		productID, branchID := "p1", "b1"
		old.ProductID, old.BranchID = &productID, &branchID
		require.NoError(t, old.Resolve("pharmacist", testutil.FixedNow.AddDate(0, 0, -30)))
		h.alerts.byID[old.ID] = old

		fresh := batch("new", "p1", "b1", 60)
		fresh.ReceivedAt = testutil.FixedNow.AddDate(0, 0, -1)
		h.stocks = newFakeStocks(fresh)

		n, err := newTestScanner(h).ScanExpiry(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Len(t, h.alerts.ofType(domain.AlertExpiryWarning), 2)
	})
}

func TestExpiryMessage(t *testing.T) {
	assert.Equal(t, "batch B-x of product p expired 3 days ago",
		expiryMessage(batch("x", "p", "b", -3), testutil.FixedNow))
	assert.Equal(t, "batch B-x of product p expires in 0 days",
		expiryMessage(batch("x", "p", "b", 0), testutil.FixedNow))
}

// ============================================================================
// LOW STOCK
// ============================================================================

func TestAlertScanner_ScanLowStock(t *testing.T) {
	f := testutil.NewFixtureFactory()
	h := newHarness()
	low := h.addInventory(f.Inventory("p1", "b1", 3, 5))
	empty := h.addInventory(f.Inventory("p2", "b1", 0, 5))
	h.addInventory(f.Inventory("p3", "b1", 30, 5))
	scanner := newTestScanner(h)

	n, err := scanner.ScanLowStock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	lows := h.alerts.ofType(domain.AlertLowStock)
	require.Len(t, lows, 1)
	assert.Equal(t, low.ProductID, *lows[0].ProductID)
	outs := h.alerts.ofType(domain.AlertOutOfStock)
	require.Len(t, outs, 1)
	assert.Equal(t, empty.ProductID, *outs[0].ProductID)

	result, err := scanner.ScanAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ScanResult{}, result)
}

// ============================================================================
// SCHEDULER
// ============================================================================

func TestScheduler_RunCycle(t *testing.T) {
	f := testutil.NewFixtureFactory()
	h := newHarness()
	h.addInventory(f.Inventory("p1", "b1", 1, 5))

	resolved := f.Alert(domain.AlertReorder)
	require.NoError(t, resolved.Resolve("u", testutil.FixedNow.AddDate(0, 0, -120)))
	h.alerts.byID[resolved.ID] = resolved

	readAt := testutil.FixedNow.AddDate(0, 0, -60)
	h.notifications.items = []domain.Notification{{ID: "n1", UserID: "u", IsRead: true, ReadAt: &readAt}}

	sched := NewScheduler(newTestScanner(h), h.alertSvc, h.notificationSvc, RetentionPolicy{
		Alerts:        90 * 24 * time.Hour,
		Notifications: 30 * 24 * time.Hour,
	}, time.Hour, logger.Nop())
	var sessionsPurged bool
	sched.AddCleanup("sessions", func(ctx context.Context) (int64, error) {
		sessionsPurged = true
		return 2, nil
	})

	sched.RunCycle(context.Background())

	assert.True(t, sessionsPurged)
	assert.NotContains(t, h.alerts.byID, resolved.ID)
	assert.Len(t, h.alerts.ofType(domain.AlertLowStock), 1)
	assert.Empty(t, h.notifications.items)
}

func TestScheduler_StartStop(t *testing.T) {
	h := newHarness()
	sched := NewScheduler(newTestScanner(h), h.alertSvc, h.notificationSvc, RetentionPolicy{}, time.Hour, logger.Nop())

	sched.Start(context.Background())
	sched.Stop()

	assert.Equal(t, 1, h.inventory.clearedFlags)
}
