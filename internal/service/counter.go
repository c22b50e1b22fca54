package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/anr091/project-kapita/internal/models"
	"github.com/anr091/project-kapita/internal/store"
	"github.com/anr091/project-kapita/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// counterDateLayout matches the day-bucket format stored on counter entries.
const counterDateLayout = "02-01-2006"

// CounterStore is the storage capability the aggregate counter needs.
type CounterStore interface {
	LatestCounterEntryTx(ctx context.Context, tx store.Tx) (*models.CounterEntry, error)
	InsertCounterEntryTx(ctx context.Context, tx store.Tx, e *models.CounterEntry) error
	AdjustCounterEntryTx(ctx context.Context, tx store.Tx, id string, delta int, totalPrice decimal.Decimal) (bool, error)
	SumValuationsTx(ctx context.Context, tx store.Tx) (decimal.Decimal, error)
	LatestCounterEntry(ctx context.Context) (*models.CounterEntry, error)
	ListCounterEntries(ctx context.Context) ([]models.CounterEntry, error)
	SumValuations(ctx context.Context) (decimal.Decimal, error)
	SetCounterTotalPrice(ctx context.Context, id string, totalPrice decimal.Decimal) error
}

// AggregateCounter maintains the daily rolling total of item count and
// inventory value. One entry is live per calendar day in the business
// timezone; the first mutation of a new day rolls the series forward seeded
// from the previous close.
//
// Every ledger-affecting transaction funnels through Adjust, so the
// read-then-write cycle is serialized with a process-wide mutex on top of the
// row lock the store takes. Total price is always recomputed from the ledger,
// never delta-accumulated.
type AggregateCounter struct {
	store     CounterStore
	allocator *SequenceAllocator
	loc       *time.Location
	logger    *zap.Logger

	mu sync.Mutex
}

// NewAggregateCounter creates a new aggregate counter
func NewAggregateCounter(store CounterStore, allocator *SequenceAllocator, loc *time.Location) *AggregateCounter {
	return &AggregateCounter{
		store:     store,
		allocator: allocator,
		loc:       loc,
		logger:    util.GetLogger(),
	}
}

// Today returns the current day bucket in the business timezone
func (c *AggregateCounter) Today() string {
	return time.Now().In(c.loc).Format(counterDateLayout)
}

// Adjust applies an item-count delta inside the caller's transaction.
// Positive deltas come from receiving, negative from shipping and deletion.
// An adjustment that would drive the running total below zero fails with
// ErrNegativeAggregate and aborts the whole triggering workflow.
func (c *AggregateCounter) Adjust(ctx context.Context, tx store.Tx, delta int) error {
	ctx, span := util.StartSpan(ctx, "AggregateCounter.Adjust")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	latest, err := c.store.LatestCounterEntryTx(ctx, tx)
	if err != nil {
		return fmt.Errorf("failed to read latest counter entry: %w", err)
	}

	totalPrice, err := c.store.SumValuationsTx(ctx, tx)
	if err != nil {
		return fmt.Errorf("failed to sum ledger valuations: %w", err)
	}

	today := c.Today()

	if latest == nil {
		if delta < 0 {
			return fmt.Errorf("%w: cannot seed series with %d", ErrNegativeAggregate, delta)
		}
		return c.insertBucket(ctx, tx, today, delta, totalPrice)
	}

	if latest.Date == today {
		applied, err := c.store.AdjustCounterEntryTx(ctx, tx, latest.ID, delta, totalPrice)
		if err != nil {
			return fmt.Errorf("failed to adjust counter entry %s: %w", latest.ID, err)
		}
		if !applied {
			return fmt.Errorf("%w: entry %s holds %d, delta %d",
				ErrNegativeAggregate, latest.ID, latest.TotalItems, delta)
		}
		return nil
	}

	seed := latest.TotalItems + delta
	if seed < 0 {
		return fmt.Errorf("%w: carrying %d into new day, delta %d",
			ErrNegativeAggregate, latest.TotalItems, delta)
	}

	util.CounterRolloversTotal.Inc()
	c.logger.Info("Rolling counter series forward",
		zap.String("from", latest.Date),
		zap.String("to", today),
		zap.Int("closing_total", latest.TotalItems))

	return c.insertBucket(ctx, tx, today, seed, totalPrice)
}

func (c *AggregateCounter) insertBucket(ctx context.Context, tx store.Tx, date string, totalItems int, totalPrice decimal.Decimal) error {
	id, err := c.allocator.NextID(ctx, KindCounter)
	if err != nil {
		return fmt.Errorf("failed to allocate counter id: %w", err)
	}

	entry := &models.CounterEntry{
		ID:         id,
		Date:       date,
		TotalItems: totalItems,
		TotalPrice: totalPrice,
	}
	if err := c.store.InsertCounterEntryTx(ctx, tx, entry); err != nil {
		return fmt.Errorf("failed to insert counter entry %s: %w", id, err)
	}
	return nil
}

// Latest returns the most recent counter entry, nil when the series is empty
func (c *AggregateCounter) Latest(ctx context.Context) (*models.CounterEntry, error) {
	return c.store.LatestCounterEntry(ctx)
}

// Series returns the full counter series, oldest first
func (c *AggregateCounter) Series(ctx context.Context) ([]models.CounterEntry, error) {
	return c.store.ListCounterEntries(ctx)
}

// Reconcile re-derives the live entry's total price from the ledger and
// overwrites it on drift. Run periodically by the reconcile worker.
func (c *AggregateCounter) Reconcile(ctx context.Context) error {
	latest, err := c.store.LatestCounterEntry(ctx)
	if err != nil {
		return fmt.Errorf("failed to read latest counter entry: %w", err)
	}
	if latest == nil {
		return nil
	}

	total, err := c.store.SumValuations(ctx)
	if err != nil {
		return fmt.Errorf("failed to sum ledger valuations: %w", err)
	}

	if total.Equal(latest.TotalPrice) {
		return nil
	}

	util.CounterDriftCorrectionsTotal.Inc()
	c.logger.Warn("Counter total price drifted, correcting",
		zap.String("entry_id", latest.ID),
		zap.String("stored", latest.TotalPrice.String()),
		zap.String("derived", total.String()))

	if err := c.store.SetCounterTotalPrice(ctx, latest.ID, total); err != nil {
		return fmt.Errorf("failed to correct counter entry %s: %w", latest.ID, err)
	}
	return nil
}
