package store

import (
	"context"

	"github.com/anr091/project-kapita/internal/models"
)

// InsertAuditEntry appends one audit row. Runs outside workflow transactions
// so an audit failure never rolls back the mutation it traces.
func (s *Store) InsertAuditEntry(ctx context.Context, e *models.AuditEntry) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO audit_entries (actor_id, action, product_id, at)
		VALUES (:actor_id, :action, :product_id, :at)`, e)
	return err
}

// ListAuditEntries returns the audit trail, newest first
func (s *Store) ListAuditEntries(ctx context.Context) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	err := s.db.SelectContext(ctx, &entries,
		"SELECT * FROM audit_entries ORDER BY at DESC")
	return entries, err
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
