package service

import (
	"context"
	"fmt"
	"time"

	"github.com/anr091/project-kapita/internal/models"
	"github.com/anr091/project-kapita/internal/store"
	"github.com/anr091/project-kapita/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerStore is the storage capability of the stock ledger.
type LedgerStore interface {
	CreateStockEntryTx(ctx context.Context, tx store.Tx, e *models.StockEntry) error
	GetStockEntry(ctx context.Context, productID string) (*models.StockEntry, error)
	GetStockEntries(ctx context.Context) ([]models.StockEntry, error)
	LockStockEntriesTx(ctx context.Context, tx store.Tx, productIDs []string) ([]models.StockEntry, error)
	ApplyStockReceiptTx(ctx context.Context, tx store.Tx, productID string, quantity int, valuationDelta decimal.Decimal, receivedAt time.Time) error
	ApplyStockShipmentTx(ctx context.Context, tx store.Tx, productID string, quantity int, valuationDelta decimal.Decimal) error
	SetStockValuationTx(ctx context.Context, tx store.Tx, productID string, valuation decimal.Decimal) error
	UpdateStockLocation(ctx context.Context, stockID, location string) error
	DeleteStockEntryTx(ctx context.Context, tx store.Tx, productID string) (*models.StockEntry, error)
}

// StockLedger maintains per-product quantity on hand and running valuation.
// Quantity must never go below zero; batch callers validate against one
// locked snapshot before any write.
type StockLedger struct {
	store  LedgerStore
	logger *zap.Logger
}

// NewStockLedger creates a new stock ledger
func NewStockLedger(store LedgerStore) *StockLedger {
	return &StockLedger{
		store:  store,
		logger: util.GetLogger(),
	}
}

// Snapshot locks and returns the ledger rows for a batch of products, keyed
// by product ID. Missing rows surface as a ValidationError since every
// product owns exactly one ledger row.
func (l *StockLedger) Snapshot(ctx context.Context, tx store.Tx, productIDs []string) (map[string]models.StockEntry, error) {
	entries, err := l.store.LockStockEntriesTx(ctx, tx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock stock entries: %w", err)
	}

	byProduct := make(map[string]models.StockEntry, len(entries))
	for _, e := range entries {
		byProduct[e.ProductID] = e
	}
	for _, id := range productIDs {
		if _, ok := byProduct[id]; !ok {
			return nil, &ValidationError{Field: "product_id", Reason: fmt.Sprintf("no stock entry for product %s", id)}
		}
	}
	return byProduct, nil
}

// Receive increments quantity on hand and valuation for one received line.
func (l *StockLedger) Receive(ctx context.Context, tx store.Tx, productID string, quantity int, unitBuyPrice decimal.Decimal, receivedAt time.Time) error {
	if quantity <= 0 {
		return &ValidationError{Field: "quantity", Reason: fmt.Sprintf("must be positive, got %d", quantity)}
	}

	valuationDelta := unitBuyPrice.Mul(decimal.NewFromInt(int64(quantity)))
	if err := l.store.ApplyStockReceiptTx(ctx, tx, productID, quantity, valuationDelta, receivedAt); err != nil {
		return fmt.Errorf("failed to apply receipt for %s: %w", productID, err)
	}
	return nil
}

// Ship decrements quantity on hand for one shipped line. available comes
// from the batch snapshot taken before any write. The valuation decrement is
// the line's own cost basis, quantity times the product's current buy price,
// keeping it symmetric with Receive.
func (l *StockLedger) Ship(ctx context.Context, tx store.Tx, productID string, quantity, available int, unitBuyPrice decimal.Decimal) error {
	if quantity <= 0 {
		return &ValidationError{Field: "quantity", Reason: fmt.Sprintf("must be positive, got %d", quantity)}
	}
	if quantity > available {
		return &InsufficientStockError{ProductID: productID, Available: available, Requested: quantity}
	}

	valuationDelta := unitBuyPrice.Mul(decimal.NewFromInt(int64(quantity)))
	if err := l.store.ApplyStockShipmentTx(ctx, tx, productID, quantity, valuationDelta); err != nil {
		return fmt.Errorf("failed to apply shipment for %s: %w", productID, err)
	}
	return nil
}

// AdjustLocation sets the storage location label on a ledger row
func (l *StockLedger) AdjustLocation(ctx context.Context, stockID, newLocation string) error {
	if newLocation == "" {
		return &ValidationError{Field: "location", Reason: "must not be empty"}
	}
	return l.store.UpdateStockLocation(ctx, stockID, newLocation)
}

// Remove deletes the ledger row for a product and returns the quantity it
// held so the caller can reconcile the aggregate counter.
func (l *StockLedger) Remove(ctx context.Context, tx store.Tx, productID string) (int, error) {
	entry, err := l.store.DeleteStockEntryTx(ctx, tx, productID)
	if err != nil {
		return 0, err
	}

	l.logger.Info("Removed stock entry",
		zap.String("product_id", productID),
		zap.Int("quantity", entry.Quantity))
	return entry.Quantity, nil
}

// Entry returns the ledger row for a product
func (l *StockLedger) Entry(ctx context.Context, productID string) (*models.StockEntry, error) {
	return l.store.GetStockEntry(ctx, productID)
}

// Entries returns every ledger row
func (l *StockLedger) Entries(ctx context.Context) ([]models.StockEntry, error) {
	return l.store.GetStockEntries(ctx)
}
