package store

import (
	"context"
	"database/sql"

	"github.com/anr091/project-kapita/internal/models"

	"github.com/shopspring/decimal"
)

// LatestCounterEntryTx fetches the most recent counter entry, locking it for
// the rest of the transaction so the read-then-update cycle is serialized at
// the storage layer as well.
func (s *Store) LatestCounterEntryTx(ctx context.Context, tx Tx) (*models.CounterEntry, error) {
	var entry models.CounterEntry
	err := sqlTx(tx).GetContext(ctx, &entry,
		"SELECT * FROM counter_entries ORDER BY id DESC LIMIT 1 FOR UPDATE")
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// LatestCounterEntry fetches the most recent counter entry without locking
func (s *Store) LatestCounterEntry(ctx context.Context) (*models.CounterEntry, error) {
	var entry models.CounterEntry
	err := s.db.GetContext(ctx, &entry,
		"SELECT * FROM counter_entries ORDER BY id DESC LIMIT 1")
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// InsertCounterEntryTx creates a new day bucket
func (s *Store) InsertCounterEntryTx(ctx context.Context, tx Tx, e *models.CounterEntry) error {
	query := `
		INSERT INTO counter_entries (id, bucket_date, total_items, total_price)
		VALUES (:id, :bucket_date, :total_items, :total_price)`

	_, err := sqlTx(tx).NamedExecContext(ctx, query, e)
	return err
}

// AdjustCounterEntryTx applies an item delta and overwrites the total price on
// an existing bucket. The predicate rejects any delta that would push
// total_items negative; applied is false in that case.
func (s *Store) AdjustCounterEntryTx(ctx context.Context, tx Tx, id string, delta int, totalPrice decimal.Decimal) (bool, error) {
	res, err := sqlTx(tx).ExecContext(ctx, `
		UPDATE counter_entries
		SET total_items = total_items + $1, total_price = $2
		WHERE id = $3 AND total_items + $1 >= 0`,
		delta, totalPrice, id)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// SetCounterTotalPrice overwrites the total price on a bucket, used by the
// drift reconciler outside any workflow transaction.
func (s *Store) SetCounterTotalPrice(ctx context.Context, id string, totalPrice decimal.Decimal) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE counter_entries SET total_price = $1 WHERE id = $2", totalPrice, id)
	return err
}

// ListCounterEntries returns the full counter series, oldest first
func (s *Store) ListCounterEntries(ctx context.Context) ([]models.CounterEntry, error) {
	var entries []models.CounterEntry
	err := s.db.SelectContext(ctx, &entries, "SELECT * FROM counter_entries ORDER BY id")
	return entries, err
}
