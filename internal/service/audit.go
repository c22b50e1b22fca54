package service

import (
	"context"
	"time"

	"github.com/anr091/project-kapita/internal/models"
	"github.com/anr091/project-kapita/internal/util"

	"go.uber.org/zap"
)

// AuditStore is the storage capability of the audit trail.
type AuditStore interface {
	InsertAuditEntry(ctx context.Context, e *models.AuditEntry) error
	ListAuditEntries(ctx context.Context) ([]models.AuditEntry, error)
}

// AuditTrail is the append-only log of product mutations. Writes are
// fire-and-forget: a failed append is logged and counted but never rolls
// back the operation it traces.
type AuditTrail struct {
	store  AuditStore
	logger *zap.Logger
}

// NewAuditTrail creates a new audit trail
func NewAuditTrail(store AuditStore) *AuditTrail {
	return &AuditTrail{
		store:  store,
		logger: util.GetLogger(),
	}
}

// Record appends one entry for a product mutation
func (a *AuditTrail) Record(ctx context.Context, actorID, action, productID string) {
	entry := &models.AuditEntry{
		ActorID:   actorID,
		Action:    action,
		ProductID: productID,
		At:        time.Now(),
	}

	if err := a.store.InsertAuditEntry(ctx, entry); err != nil {
		util.AuditWriteFailuresTotal.Inc()
		a.logger.Error("Failed to write audit entry",
			zap.String("actor_id", actorID),
			zap.String("action", action),
			zap.String("product_id", productID),
			zap.Error(err))
	}
}

// List returns the audit trail, newest first
func (a *AuditTrail) List(ctx context.Context) ([]models.AuditEntry, error) {
	return a.store.ListAuditEntries(ctx)
}
