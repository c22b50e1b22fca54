package service

import (
	"context"
	"fmt"
	"time"

	"github.com/anr091/project-kapita/internal/models"
	"github.com/anr091/project-kapita/internal/store"
	"github.com/anr091/project-kapita/internal/util"

	"go.uber.org/zap"
)

// ReceivingStore is the storage capability of the receiving workflow.
type ReceivingStore interface {
	BeginTx(ctx context.Context) (store.Tx, error)
	GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	GetSupplierByID(ctx context.Context, id string) (*models.Supplier, error)
	InsertArrivalTx(ctx context.Context, tx store.Tx, r *models.ArrivalReport) error
	InsertArrivalLineTx(ctx context.Context, tx store.Tx, l *models.ArrivalLine) error
	GetArrivalByID(ctx context.Context, id string) (*models.ArrivalReport, error)
	GetArrivals(ctx context.Context) ([]models.ArrivalReport, error)
	GetArrivalLines(ctx context.Context, arrivalID string) ([]models.ArrivalLine, error)
}

// ReceivingService turns an arrival report into ledger increments and one
// aggregate counter adjustment. The whole event runs in a single
// transaction: a failed line rolls back everything.
type ReceivingService struct {
	store     ReceivingStore
	ledger    *StockLedger
	counter   *AggregateCounter
	allocator *SequenceAllocator
	publisher StockEventPublisher
	cache     StockCache
	logger    *zap.Logger
}

// NewReceivingService creates a new receiving service
func NewReceivingService(
	store ReceivingStore,
	ledger *StockLedger,
	counter *AggregateCounter,
	allocator *SequenceAllocator,
	publisher StockEventPublisher,
	cache StockCache,
) *ReceivingService {
	return &ReceivingService{
		store:     store,
		ledger:    ledger,
		counter:   counter,
		allocator: allocator,
		publisher: publisher,
		cache:     cache,
		logger:    util.GetLogger(),
	}
}

// ReceiveLineRequest is one received line item
type ReceiveLineRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

// CreateArrivalRequest represents one receiving event
type CreateArrivalRequest struct {
	SupplierID string               `json:"supplier_id" binding:"required"`
	Lines      []ReceiveLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// CreateArrival validates the batch, increments the ledger per line with the
// product's current buy price snapshotted, persists the immutable arrival
// report, and credits the aggregate counter with the received total.
func (s *ReceivingService) CreateArrival(ctx context.Context, actorID string, req *CreateArrivalRequest) (*models.ArrivalReport, error) {
	ctx, span := util.StartSpan(ctx, "ReceivingService.CreateArrival")
	defer span.End()

	for i, line := range req.Lines {
		if line.Quantity <= 0 {
			util.ArrivalsRejectedTotal.WithLabelValues("invalid_quantity").Inc()
			return nil, &ValidationError{
				Field:  fmt.Sprintf("lines[%d].quantity", i),
				Reason: fmt.Sprintf("must be positive, got %d", line.Quantity),
			}
		}
	}

	// A product named on several lines contributes the sum of its lines to
	// the mirror quantity published after commit.
	productIDs, received := aggregateReceiveLines(req.Lines)

	products, err := s.lookupProducts(ctx, productIDs)
	if err != nil {
		util.ArrivalsRejectedTotal.WithLabelValues("unknown_product").Inc()
		return nil, err
	}

	if _, err := s.store.GetSupplierByID(ctx, req.SupplierID); err != nil {
		util.ArrivalsRejectedTotal.WithLabelValues("unknown_supplier").Inc()
		return nil, &ValidationError{Field: "supplier_id", Reason: err.Error()}
	}

	arrivalID, err := s.allocator.NextID(ctx, KindArrival)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate arrival id: %w", err)
	}

	now := time.Now()
	report := &models.ArrivalReport{
		ID:         arrivalID,
		SupplierID: req.SupplierID,
		ReceivedBy: actorID,
		ArrivedAt:  now,
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	snapshot, err := s.ledger.Snapshot(ctx, tx, productIDs)
	if err != nil {
		return nil, err
	}

	var totalQty int

	for _, line := range req.Lines {
		product := products[line.ProductID]
		subtotal := product.BuyPrice.Mul(decimalFromInt(line.Quantity))

		if err := s.ledger.Receive(ctx, tx, line.ProductID, line.Quantity, product.BuyPrice, now); err != nil {
			return nil, err
		}

		arrivalLine := &models.ArrivalLine{
			ArrivalID: arrivalID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			BuyPrice:  product.BuyPrice,
			Subtotal:  subtotal,
		}
		if err := s.store.InsertArrivalLineTx(ctx, tx, arrivalLine); err != nil {
			return nil, fmt.Errorf("failed to insert arrival line: %w", err)
		}

		report.TotalPrice = report.TotalPrice.Add(subtotal)
		totalQty += line.Quantity
	}

	eventLines := make([]models.StockLineData, 0, len(productIDs))
	for _, id := range productIDs {
		eventLines = append(eventLines, models.StockLineData{
			ProductID: id,
			Delta:     received[id],
			Quantity:  snapshot[id].Quantity + received[id],
		})
	}

	if err := s.store.InsertArrivalTx(ctx, tx, report); err != nil {
		return nil, fmt.Errorf("failed to insert arrival report: %w", err)
	}

	if err := s.counter.Adjust(ctx, tx, totalQty); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit arrival %s: %w", arrivalID, err)
	}

	util.ArrivalsCreatedTotal.Inc()
	util.ItemsReceivedTotal.Add(float64(totalQty))
	s.logger.Info("Arrival report created",
		zap.String("arrival_id", arrivalID),
		zap.String("supplier_id", req.SupplierID),
		zap.Int("total_quantity", totalQty),
		zap.String("total_price", report.TotalPrice.String()))

	s.syncAfterCommit(ctx, eventLines, &models.StockReceivedEvent{
		BaseEvent:  newBaseEvent(models.EventTypeStockReceived),
		ArrivalID:  arrivalID,
		SupplierID: req.SupplierID,
		TotalPrice: report.TotalPrice,
		Lines:      eventLines,
	})

	return report, nil
}

func (s *ReceivingService) syncAfterCommit(ctx context.Context, lines []models.StockLineData, event *models.StockReceivedEvent) {
	for _, line := range lines {
		if err := s.cache.SetStock(ctx, line.ProductID, line.Quantity); err != nil {
			s.logPartial("cache_sync", err)
		}
	}
	if err := s.publisher.PublishStockReceived(ctx, event); err != nil {
		s.logPartial("publish_stock_received", err)
	}
}

func (s *ReceivingService) logPartial(step string, err error) {
	perr := &PartialPersistenceError{Step: step, Err: err}
	util.PartialSyncFailuresTotal.WithLabelValues(step).Inc()
	s.logger.Warn("Post-commit step failed, needs reconciliation", zap.Error(perr))
}

func (s *ReceivingService) lookupProducts(ctx context.Context, ids []string) (map[string]*models.Product, error) {
	products, err := s.store.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, &ValidationError{Field: "product_id", Reason: fmt.Sprintf("unknown product %s", id)}
		}
	}
	return byID, nil
}

// Arrival returns one arrival report with its line items
func (s *ReceivingService) Arrival(ctx context.Context, arrivalID string) (*models.ArrivalReport, []models.ArrivalLine, error) {
	report, err := s.store.GetArrivalByID(ctx, arrivalID)
	if err != nil {
		return nil, nil, err
	}
	lines, err := s.store.GetArrivalLines(ctx, arrivalID)
	if err != nil {
		return nil, nil, err
	}
	return report, lines, nil
}

// Arrivals lists all arrival reports, newest first
func (s *ReceivingService) Arrivals(ctx context.Context) ([]models.ArrivalReport, error) {
	return s.store.GetArrivals(ctx)
}

// aggregateReceiveLines sums received quantities per product, keeping
// first-appearance order.
func aggregateReceiveLines(lines []ReceiveLineRequest) ([]string, map[string]int) {
	ids := make([]string, 0, len(lines))
	received := make(map[string]int, len(lines))
	for _, l := range lines {
		if _, seen := received[l.ProductID]; !seen {
			ids = append(ids, l.ProductID)
		}
		received[l.ProductID] += l.Quantity
	}
	return ids, received
}
