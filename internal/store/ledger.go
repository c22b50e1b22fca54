package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/anr091/project-kapita/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// CreateStockEntryTx inserts a zero-quantity ledger row for a new product
func (s *Store) CreateStockEntryTx(ctx context.Context, tx Tx, e *models.StockEntry) error {
	query := `
		INSERT INTO stock_entries (id, product_id, quantity, location, valuation)
		VALUES (:id, :product_id, :quantity, :location, :valuation)`

	_, err := sqlTx(tx).NamedExecContext(ctx, query, e)
	return err
}

// GetStockEntry retrieves the ledger row for a product
func (s *Store) GetStockEntry(ctx context.Context, productID string) (*models.StockEntry, error) {
	var entry models.StockEntry
	err := s.db.GetContext(ctx, &entry, "SELECT * FROM stock_entries WHERE product_id = $1", productID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("stock entry not found for product: %s", productID)
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetStockEntries retrieves all ledger rows
func (s *Store) GetStockEntries(ctx context.Context) ([]models.StockEntry, error) {
	var entries []models.StockEntry
	err := s.db.SelectContext(ctx, &entries, "SELECT * FROM stock_entries ORDER BY id")
	return entries, err
}

// LockStockEntriesTx fetches ledger rows for a set of products with row locks
// held for the rest of the transaction. Workflows validate the whole batch
// against this one snapshot before writing anything.
func (s *Store) LockStockEntriesTx(ctx context.Context, tx Tx, productIDs []string) ([]models.StockEntry, error) {
	if len(productIDs) == 0 {
		return []models.StockEntry{}, nil
	}

	query, args, err := sqlx.In(
		"SELECT * FROM stock_entries WHERE product_id IN (?) ORDER BY product_id FOR UPDATE", productIDs)
	if err != nil {
		return nil, err
	}
	query = sqlTx(tx).Rebind(query)

	var entries []models.StockEntry
	err = sqlTx(tx).SelectContext(ctx, &entries, query, args...)
	return entries, err
}

// ApplyStockReceiptTx increments quantity and valuation for a received line
// and stamps the acceptance date.
func (s *Store) ApplyStockReceiptTx(ctx context.Context, tx Tx, productID string, quantity int, valuationDelta decimal.Decimal, receivedAt time.Time) error {
	res, err := sqlTx(tx).ExecContext(ctx, `
		UPDATE stock_entries
		SET quantity = quantity + $1, valuation = valuation + $2,
			last_received = $3, updated_at = NOW()
		WHERE product_id = $4`,
		quantity, valuationDelta, receivedAt, productID)
	if err != nil {
		return err
	}
	return requireRow(res, productID)
}

// ApplyStockShipmentTx decrements quantity and valuation for a shipped line.
// The quantity guard backstops the pre-write snapshot check.
func (s *Store) ApplyStockShipmentTx(ctx context.Context, tx Tx, productID string, quantity int, valuationDelta decimal.Decimal) error {
	res, err := sqlTx(tx).ExecContext(ctx, `
		UPDATE stock_entries
		SET quantity = quantity - $1, valuation = valuation - $2, updated_at = NOW()
		WHERE product_id = $3 AND quantity >= $1`,
		quantity, valuationDelta, productID)
	if err != nil {
		return err
	}
	return requireRow(res, productID)
}

// SetStockValuationTx overwrites the valuation, used when a price change
// re-derives it from current quantity.
func (s *Store) SetStockValuationTx(ctx context.Context, tx Tx, productID string, valuation decimal.Decimal) error {
	res, err := sqlTx(tx).ExecContext(ctx,
		"UPDATE stock_entries SET valuation = $1, updated_at = NOW() WHERE product_id = $2",
		valuation, productID)
	if err != nil {
		return err
	}
	return requireRow(res, productID)
}

// UpdateStockLocation sets the storage location label for a ledger row
func (s *Store) UpdateStockLocation(ctx context.Context, stockID, location string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE stock_entries SET location = $1, updated_at = NOW() WHERE id = $2",
		location, stockID)
	if err != nil {
		return err
	}
	return requireRow(res, stockID)
}

// DeleteStockEntryTx removes the ledger row for a product and returns it, so
// the caller can reconcile the aggregate counter with the removed quantity.
func (s *Store) DeleteStockEntryTx(ctx context.Context, tx Tx, productID string) (*models.StockEntry, error) {
	var entry models.StockEntry
	err := sqlTx(tx).GetContext(ctx, &entry,
		"DELETE FROM stock_entries WHERE product_id = $1 RETURNING *", productID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("stock entry not found for product: %s", productID)
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// SumValuationsTx recomputes the total inventory value from every ledger row
func (s *Store) SumValuationsTx(ctx context.Context, tx Tx) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := sqlTx(tx).GetContext(ctx, &total, "SELECT COALESCE(SUM(valuation), 0) FROM stock_entries")
	return total, err
}

// SumValuations is the non-transactional variant used by the reconciler
func (s *Store) SumValuations(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.GetContext(ctx, &total, "SELECT COALESCE(SUM(valuation), 0) FROM stock_entries")
	return total, err
}

func requireRow(res sql.Result, id string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("no stock entry updated: %s", id)
	}
	return nil
}
