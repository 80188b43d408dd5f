package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
)

// ScanResult counts the alerts raised by one scan.
type ScanResult struct {
	ExpiryAlerts   int `json:"expiry_alerts"`
	LowStockAlerts int `json:"low_stock_alerts"`
}

// AlertScanner looks for expiring batches and under-stocked inventory and
// raises deduplicated alerts for them.
type AlertScanner struct {
	tx           Transactor
	inventory    InventoryStore
	stocks       StockStore
	alerts       *AlertService
	warningDays  int
	criticalDays int
	logger       *logger.Logger
	now          func() time.Time
}

// NewAlertScanner creates a new alert scanner
func NewAlertScanner(tx Transactor, inventory InventoryStore, stocks StockStore, alerts *AlertService, warningDays, criticalDays int, log *logger.Logger) *AlertScanner {
	return &AlertScanner{
		tx:           tx,
		inventory:    inventory,
		stocks:       stocks,
		alerts:       alerts,
		warningDays:  warningDays,
		criticalDays: criticalDays,
		logger:       log.WithComponent("alert_scanner"),
		now:          utcNow,
	}
}

// ScanAll runs every scan. A failing scan is logged and the others still run;
// the last error is returned.
func (s *AlertScanner) ScanAll(ctx context.Context) (ScanResult, error) {
	var result ScanResult
	var lastErr error

	n, err := s.ScanExpiry(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str("scanner", "expiry").Msg("alert scan failed")
		lastErr = err
	}
	result.ExpiryAlerts = n

	n, err = s.ScanLowStock(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str("scanner", "low_stock").Msg("alert scan failed")
		lastErr = err
	}
	result.LowStockAlerts = n

	return result, lastErr
}

type expiringBatch struct {
	domain.Stock
	alertType domain.AlertType
}

// ScanExpiry raises EXPIRY_CRITICAL or EXPIRY_WARNING alerts for batches
// inside the configured windows at branches that still hold the product, and
// flags the matching inventory rows. A batch whose alert staff resolved after
// it was received is not raised again.
func (s *AlertScanner) ScanExpiry(ctx context.Context) (int, error) {
	now := s.now()
	batches, err := s.stocks.ListExpiringInStock(ctx, now.AddDate(0, 0, s.warningDays))
	if err != nil {
		return 0, fmt.Errorf("scan expiry: list batches: %w", err)
	}

	var due []expiringBatch
	for _, b := range batches {
		if alertType, ok := b.ExpiryAlertType(now, s.warningDays, s.criticalDays); ok {
			due = append(due, expiringBatch{Stock: b, alertType: alertType})
		}
	}

	// Flags are rebuilt in one transaction so readers never see them half cleared.
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.inventory.ClearExpiryAlerts(ctx); err != nil {
			return fmt.Errorf("clear flags: %w", err)
		}
		flagged := make(map[[2]string]bool)
		for _, b := range due {
			pair := [2]string{b.ProductID, b.BranchID}
			if flagged[pair] {
				continue
			}
			if err := s.inventory.SetExpiryAlert(ctx, b.ProductID, b.BranchID, true); err != nil {
				return fmt.Errorf("flag stock %s: %w", b.ID, err)
			}
			flagged[pair] = true
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan expiry: %w", err)
	}

	raised := 0
	for _, b := range due {
		productID, branchID := b.ProductID, b.BranchID
		handled, err := s.alerts.ResolvedSince(ctx, b.alertType, &productID, &branchID, b.ReceivedAt)
		if err != nil {
			s.logger.Error().Err(err).Str("stock_id", b.ID).Msg("failed to check resolved expiry alerts")
			continue
		}
		if handled {
			continue
		}

		created, err := s.alerts.Raise(ctx, b.alertType, &productID, &branchID, expiryMessage(b.Stock, now))
		if err != nil {
			s.logger.Error().Err(err).Str("stock_id", b.ID).Msg("failed to raise expiry alert")
			continue
		}
		if created {
			raised++
		}
	}
	return raised, nil
}

func expiryMessage(b domain.Stock, now time.Time) string {
	days := b.DaysUntilExpiry(now)
	if days < 0 {
		return fmt.Sprintf("batch %s of product %s expired %d days ago", b.BatchNumber, b.ProductID, -days)
	}
	return fmt.Sprintf("batch %s of product %s expires in %d days", b.BatchNumber, b.ProductID, days)
}

// ScanLowStock raises LOW_STOCK or OUT_OF_STOCK alerts for rows at or below
// their minimum level.
func (s *AlertScanner) ScanLowStock(ctx context.Context) (int, error) {
	rows, err := s.inventory.ListNeedingRestock(ctx)
	if err != nil {
		return 0, fmt.Errorf("scan low stock: %w", err)
	}

	raised := 0
	for i := range rows {
		inv := &rows[i]
		alertType, message, ok := stockAlert(inv)
		if !ok {
			continue
		}

		productID, branchID := inv.ProductID, inv.BranchID
		created, err := s.alerts.Raise(ctx, alertType, &productID, &branchID, message)
		if err != nil {
			s.logger.Error().Err(err).Str("inventory_id", inv.ID).Msg("failed to raise stock alert")
			continue
		}
		if created {
			raised++
		}
	}
	return raised, nil
}
