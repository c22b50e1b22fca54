package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Entity table per sequence kind, used to seed a counter from the highest
// identifier already on record.
var sequenceTables = map[string]string{
	"product":  "products",
	"stock":    "stock_entries",
	"arrival":  "arrival_reports",
	"shipment": "shipments",
	"supplier": "suppliers",
	"retail":   "retails",
	"role":     "roles",
	"counter":  "counter_entries",
}

// IncrementSequence bumps the counter row for a kind and returns the new
// value. found is false when the kind has never been seeded.
func (s *Store) IncrementSequence(ctx context.Context, kind string) (int64, bool, error) {
	var value int64
	err := s.db.GetContext(ctx, &value,
		"UPDATE sequence_counters SET last_value = last_value + 1 WHERE kind = $1 RETURNING last_value",
		kind)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return value, true, nil
}

// SeedSequence installs the starting value for a kind. Concurrent seeders
// race safely: the conflict branch keeps the highest value, and callers
// retry IncrementSequence afterwards.
func (s *Store) SeedSequence(ctx context.Context, kind string, lastValue int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sequence_counters (kind, last_value) VALUES ($1, $2)
		ON CONFLICT (kind) DO UPDATE
		SET last_value = GREATEST(sequence_counters.last_value, EXCLUDED.last_value)`,
		kind, lastValue)
	return err
}

// LastIdentifier returns the lexicographically highest identifier stored for
// a kind, or "" when no record of that kind exists.
func (s *Store) LastIdentifier(ctx context.Context, kind string) (string, error) {
	table, ok := sequenceTables[kind]
	if !ok {
		return "", fmt.Errorf("unknown sequence kind: %s", kind)
	}

	var id string
	err := s.db.GetContext(ctx, &id,
		fmt.Sprintf("SELECT id FROM %s ORDER BY id DESC LIMIT 1", table))
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}
