package worker

import (
	"context"
	"log"
	"time"

	"github.com/anr091/project-kapita/internal/broker"
	"github.com/anr091/project-kapita/internal/models"
	"github.com/anr091/project-kapita/internal/service"
	"github.com/anr091/project-kapita/internal/util"
)

// ProcessedEventStore records which event IDs have already been applied.
type ProcessedEventStore interface {
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
}

// StockMirror is the Redis quantity mirror the worker maintains.
type StockMirror interface {
	SetStock(ctx context.Context, productID string, quantity int) error
	DeleteStock(ctx context.Context, productID string) error
}

// StockWorker consumes stock events and keeps the Redis quantity mirror in
// step with the ledger. Events carry the absolute post-transaction quantity
// and the mirror is overwritten, never delta-adjusted: the workflows write
// the same absolute value right after commit, so replaying the event on top
// of that write converges instead of double-applying the movement.
// Duplicate deliveries are skipped via the processed-events table.
type StockWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	processed    ProcessedEventStore
	cache        StockMirror
}

// NewStockWorker creates a new stock worker
func NewStockWorker(
	consumer *broker.Consumer,
	processed ProcessedEventStore,
	cache StockMirror,
) *StockWorker {
	w := &StockWorker{
		consumer:  consumer,
		processed: processed,
		cache:     cache,
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnStockReceived(w.handleStockReceived)
	eventHandler.OnStockShipped(w.handleStockShipped)
	eventHandler.OnProductCreated(w.handleProductCreated)
	eventHandler.OnProductDeleted(w.handleProductDeleted)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *StockWorker) Start(ctx context.Context) error {
	log.Println("Starting stock worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *StockWorker) Stop() error {
	log.Println("Stopping stock worker...")
	return w.consumer.Close()
}

func (w *StockWorker) handleStockReceived(ctx context.Context, event *models.StockReceivedEvent) error {
	return w.applyLines(ctx, event.EventID, event.EventType, event.Lines)
}

func (w *StockWorker) handleStockShipped(ctx context.Context, event *models.StockShippedEvent) error {
	return w.applyLines(ctx, event.EventID, event.EventType, event.Lines)
}

func (w *StockWorker) handleProductCreated(ctx context.Context, event *models.ProductCreatedEvent) error {
	done, err := w.alreadyProcessed(ctx, event.EventID)
	if err != nil || done {
		return err
	}
	if err := w.cache.SetStock(ctx, event.ProductID, 0); err != nil {
		return err
	}
	util.EventsProcessedTotal.WithLabelValues(event.EventType).Inc()
	return w.processed.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

func (w *StockWorker) handleProductDeleted(ctx context.Context, event *models.ProductDeletedEvent) error {
	done, err := w.alreadyProcessed(ctx, event.EventID)
	if err != nil || done {
		return err
	}
	if err := w.cache.DeleteStock(ctx, event.ProductID); err != nil {
		return err
	}
	util.EventsProcessedTotal.WithLabelValues(event.EventType).Inc()
	return w.processed.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

func (w *StockWorker) applyLines(ctx context.Context, eventID, eventType string, lines []models.StockLineData) error {
	done, err := w.alreadyProcessed(ctx, eventID)
	if err != nil || done {
		return err
	}

	for _, line := range lines {
		if err := w.cache.SetStock(ctx, line.ProductID, line.Quantity); err != nil {
			return err
		}
	}

	util.EventsProcessedTotal.WithLabelValues(eventType).Inc()
	return w.processed.MarkEventProcessed(ctx, eventID, eventType)
}

func (w *StockWorker) alreadyProcessed(ctx context.Context, eventID string) (bool, error) {
	done, err := w.processed.IsEventProcessed(ctx, eventID)
	if err != nil {
		return false, err
	}
	if done {
		log.Printf("Skipping already processed event: %s", eventID)
		util.EventsSkippedTotal.Inc()
		return true, nil
	}
	return false, nil
}

// ReconcileWorker periodically recomputes the aggregate counter's total price
// from the ledger and corrects drift.
type ReconcileWorker struct {
	counter  *service.AggregateCounter
	interval time.Duration
}

// NewReconcileWorker creates a new reconcile worker
func NewReconcileWorker(counter *service.AggregateCounter, interval time.Duration) *ReconcileWorker {
	return &ReconcileWorker{counter: counter, interval: interval}
}

// Start runs the reconcile loop until the context is cancelled
func (rw *ReconcileWorker) Start(ctx context.Context) error {
	log.Printf("Starting reconcile worker, interval=%s", rw.interval)

	ticker := time.NewTicker(rw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Reconcile worker context cancelled, stopping...")
			return ctx.Err()
		case <-ticker.C:
			if err := rw.counter.Reconcile(ctx); err != nil {
				log.Printf("Counter reconcile failed: %v", err)
			}
		}
	}
}
