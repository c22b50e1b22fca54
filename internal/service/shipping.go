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

// ShippingStore is the storage capability of the shipping workflow.
type ShippingStore interface {
	BeginTx(ctx context.Context) (store.Tx, error)
	GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	GetRetailByID(ctx context.Context, id string) (*models.Retail, error)
	InsertShipmentTx(ctx context.Context, tx store.Tx, sh *models.Shipment) error
	InsertShipmentLineTx(ctx context.Context, tx store.Tx, l *models.ShipmentLine) error
	GetShipmentByID(ctx context.Context, id string) (*models.Shipment, error)
	GetShipments(ctx context.Context) ([]models.Shipment, error)
	GetShipmentLines(ctx context.Context, shipmentID string) ([]models.ShipmentLine, error)
}

// ShippingService turns a shipment request into a stock-sufficiency check,
// ledger decrements, and one aggregate counter adjustment. The batch is
// validated against a single locked snapshot before any write; one short
// line rejects the whole shipment.
type ShippingService struct {
	store     ShippingStore
	ledger    *StockLedger
	counter   *AggregateCounter
	allocator *SequenceAllocator
	publisher StockEventPublisher
	cache     StockCache
	logger    *zap.Logger
}

// NewShippingService creates a new shipping service
func NewShippingService(
	store ShippingStore,
	ledger *StockLedger,
	counter *AggregateCounter,
	allocator *SequenceAllocator,
	publisher StockEventPublisher,
	cache StockCache,
) *ShippingService {
	return &ShippingService{
		store:     store,
		ledger:    ledger,
		counter:   counter,
		allocator: allocator,
		publisher: publisher,
		cache:     cache,
		logger:    util.GetLogger(),
	}
}

// ShipLineRequest is one shipped line item
type ShipLineRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

// CreateShipmentRequest represents one shipping event
type CreateShipmentRequest struct {
	RetailID string            `json:"retail_id" binding:"required"`
	Lines    []ShipLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// CreateShipment validates stock sufficiency for every line against one
// consistent snapshot, decrements the ledger with sell prices snapshotted,
// persists the immutable shipment record with the retail address, and debits
// the aggregate counter.
func (s *ShippingService) CreateShipment(ctx context.Context, actorID string, req *CreateShipmentRequest) (*models.Shipment, error) {
	ctx, span := util.StartSpan(ctx, "ShippingService.CreateShipment")
	defer span.End()

	for i, line := range req.Lines {
		if line.Quantity <= 0 {
			util.ShipmentsRejectedTotal.WithLabelValues("invalid_quantity").Inc()
			return nil, &ValidationError{
				Field:  fmt.Sprintf("lines[%d].quantity", i),
				Reason: fmt.Sprintf("must be positive, got %d", line.Quantity),
			}
		}
	}

	// A product named on several lines is checked and decremented once
	// against the sum of its lines, so a split request cannot slip past
	// the per-product sufficiency check.
	productIDs, required := aggregateShipLines(req.Lines)

	// Advisory fast path: a cached quantity already short of the request
	// fails without opening a transaction. The locked snapshot below is
	// what actually decides.
	for _, id := range productIDs {
		cached, ok, err := s.cache.GetStock(ctx, id)
		if err != nil {
			s.logger.Warn("Stock cache read failed, skipping fast path",
				zap.String("product_id", id),
				zap.Error(err))
			break
		}
		if ok && cached < required[id] {
			util.ShipmentsRejectedTotal.WithLabelValues("insufficient_stock").Inc()
			return nil, &InsufficientStockError{
				ProductID: id,
				Available: cached,
				Requested: required[id],
			}
		}
	}

	products, err := s.lookupProducts(ctx, productIDs)
	if err != nil {
		util.ShipmentsRejectedTotal.WithLabelValues("unknown_product").Inc()
		return nil, err
	}

	retail, err := s.store.GetRetailByID(ctx, req.RetailID)
	if err != nil {
		util.ShipmentsRejectedTotal.WithLabelValues("unknown_retail").Inc()
		return nil, &ValidationError{Field: "retail_id", Reason: err.Error()}
	}

	shipmentID, err := s.allocator.NextID(ctx, KindShipment)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate shipment id: %w", err)
	}

	shipment := &models.Shipment{
		ID:            shipmentID,
		RetailID:      retail.ID,
		RetailName:    retail.Name,
		RetailAddress: retail.Address,
		CreatedBy:     actorID,
		ShippedAt:     time.Now(),
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

	// Whole-batch sufficiency check before the first write, against the
	// per-product aggregate.
	for _, id := range productIDs {
		available := snapshot[id].Quantity
		if required[id] > available {
			util.ShipmentsRejectedTotal.WithLabelValues("insufficient_stock").Inc()
			return nil, &InsufficientStockError{
				ProductID: id,
				Available: available,
				Requested: required[id],
			}
		}
	}

	for _, line := range req.Lines {
		product := products[line.ProductID]
		subtotal := product.SellPrice.Mul(decimalFromInt(line.Quantity))

		shipmentLine := &models.ShipmentLine{
			ShipmentID: shipmentID,
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			SellPrice:  product.SellPrice,
			Subtotal:   subtotal,
		}
		if err := s.store.InsertShipmentLineTx(ctx, tx, shipmentLine); err != nil {
			return nil, fmt.Errorf("failed to insert shipment line: %w", err)
		}

		shipment.TotalPrice = shipment.TotalPrice.Add(subtotal)
	}

	var totalQty int
	eventLines := make([]models.StockLineData, 0, len(productIDs))

	for _, id := range productIDs {
		if err := s.ledger.Ship(ctx, tx, id, required[id],
			snapshot[id].Quantity, products[id].BuyPrice); err != nil {
			return nil, err
		}
		totalQty += required[id]
		eventLines = append(eventLines, models.StockLineData{
			ProductID: id,
			Delta:     -required[id],
			Quantity:  snapshot[id].Quantity - required[id],
		})
	}

	if err := s.store.InsertShipmentTx(ctx, tx, shipment); err != nil {
		return nil, fmt.Errorf("failed to insert shipment: %w", err)
	}

	if err := s.counter.Adjust(ctx, tx, -totalQty); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit shipment %s: %w", shipmentID, err)
	}

	util.ShipmentsCreatedTotal.Inc()
	util.ItemsShippedTotal.Add(float64(totalQty))
	s.logger.Info("Shipment created",
		zap.String("shipment_id", shipmentID),
		zap.String("retail_id", retail.ID),
		zap.Int("total_quantity", totalQty),
		zap.String("total_price", shipment.TotalPrice.String()))

	s.syncAfterCommit(ctx, eventLines, &models.StockShippedEvent{
		BaseEvent:  newBaseEvent(models.EventTypeStockShipped),
		ShipmentID: shipmentID,
		RetailID:   retail.ID,
		TotalPrice: shipment.TotalPrice,
		Lines:      eventLines,
	})

	return shipment, nil
}

func (s *ShippingService) syncAfterCommit(ctx context.Context, lines []models.StockLineData, event *models.StockShippedEvent) {
	for _, line := range lines {
		if err := s.cache.SetStock(ctx, line.ProductID, line.Quantity); err != nil {
			s.logPartial("cache_sync", err)
		}
	}
	if err := s.publisher.PublishStockShipped(ctx, event); err != nil {
		s.logPartial("publish_stock_shipped", err)
	}
}

func (s *ShippingService) logPartial(step string, err error) {
	perr := &PartialPersistenceError{Step: step, Err: err}
	util.PartialSyncFailuresTotal.WithLabelValues(step).Inc()
	s.logger.Warn("Post-commit step failed, needs reconciliation", zap.Error(perr))
}

func (s *ShippingService) lookupProducts(ctx context.Context, ids []string) (map[string]*models.Product, error) {
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

// Shipment returns one shipment with its line items
func (s *ShippingService) Shipment(ctx context.Context, shipmentID string) (*models.Shipment, []models.ShipmentLine, error) {
	shipment, err := s.store.GetShipmentByID(ctx, shipmentID)
	if err != nil {
		return nil, nil, err
	}
	lines, err := s.store.GetShipmentLines(ctx, shipmentID)
	if err != nil {
		return nil, nil, err
	}
	return shipment, lines, nil
}

// Shipments lists all shipments, newest first
func (s *ShippingService) Shipments(ctx context.Context) ([]models.Shipment, error) {
	return s.store.GetShipments(ctx)
}

// aggregateShipLines sums requested quantities per product, keeping
// first-appearance order.
func aggregateShipLines(lines []ShipLineRequest) ([]string, map[string]int) {
	ids := make([]string, 0, len(lines))
	required := make(map[string]int, len(lines))
	for _, l := range lines {
		if _, seen := required[l.ProductID]; !seen {
			ids = append(ids, l.ProductID)
		}
		required[l.ProductID] += l.Quantity
	}
	return ids, required
}
