package service

import (
	"context"
	"fmt"
	"time"

	"github.com/anr091/project-kapita/internal/models"
	"github.com/anr091/project-kapita/internal/store"
	"github.com/anr091/project-kapita/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Fixed classification lookups. Codes come from the intake form.
var productCategories = map[string]string{
	"1": "Electronics",
	"2": "Apparels",
	"3": "Furnitures",
	"4": "Healths",
	"5": "Seasonals",
	"6": "Consumables",
}

var abcClasses = map[string]string{
	"1": "A",
	"2": "B",
	"3": "C",
}

// ProductStore is the storage capability of the product lifecycle.
type ProductStore interface {
	BeginTx(ctx context.Context) (store.Tx, error)
	CreateProductTx(ctx context.Context, tx store.Tx, p *models.Product) error
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	GetProducts(ctx context.Context) ([]models.Product, error)
	GetActiveProducts(ctx context.Context) ([]models.Product, error)
	UpdateProductTx(ctx context.Context, tx store.Tx, p *models.Product) error
	DeleteProductTx(ctx context.Context, tx store.Tx, id string) error
	CreateStockEntryTx(ctx context.Context, tx store.Tx, e *models.StockEntry) error
	SetStockValuationTx(ctx context.Context, tx store.Tx, productID string, valuation decimal.Decimal) error
}

// StockEventPublisher publishes domain events after a workflow commits.
type StockEventPublisher interface {
	PublishProductCreated(ctx context.Context, event *models.ProductCreatedEvent) error
	PublishProductUpdated(ctx context.Context, event *models.ProductUpdatedEvent) error
	PublishProductDeleted(ctx context.Context, event *models.ProductDeletedEvent) error
	PublishStockReceived(ctx context.Context, event *models.StockReceivedEvent) error
	PublishStockShipped(ctx context.Context, event *models.StockShippedEvent) error
}

// StockCache mirrors on-hand quantities for fast availability checks.
type StockCache interface {
	SetStock(ctx context.Context, productID string, quantity int) error
	DeleteStock(ctx context.Context, productID string) error
	GetStock(ctx context.Context, productID string) (int, bool, error)
}

// ProductService handles product lifecycle: create with a paired ledger row,
// update with valuation re-derivation, delete with counter reconciliation.
type ProductService struct {
	store     ProductStore
	ledger    *StockLedger
	counter   *AggregateCounter
	allocator *SequenceAllocator
	audit     *AuditTrail
	publisher StockEventPublisher
	cache     StockCache
	logger    *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(
	store ProductStore,
	ledger *StockLedger,
	counter *AggregateCounter,
	allocator *SequenceAllocator,
	audit *AuditTrail,
	publisher StockEventPublisher,
	cache StockCache,
) *ProductService {
	return &ProductService{
		store:     store,
		ledger:    ledger,
		counter:   counter,
		allocator: allocator,
		audit:     audit,
		publisher: publisher,
		cache:     cache,
		logger:    util.GetLogger(),
	}
}

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Barcode      string          `json:"barcode" binding:"required"`
	Name         string          `json:"name" binding:"required"`
	Description  string          `json:"description"`
	Brand        string          `json:"brand" binding:"required"`
	CategoryCode string          `json:"category_code" binding:"required"`
	ABCCode      string          `json:"abc_code" binding:"required"`
	SellUnit     string          `json:"sell_unit" binding:"required"`
	StorageUnit  string          `json:"storage_unit" binding:"required"`
	DimensionRef string          `json:"dimension_ref"`
	BuyPrice     decimal.Decimal `json:"buy_price"`
	SellPrice    decimal.Decimal `json:"sell_price"`
}

// UpdateProductRequest represents a full product update
type UpdateProductRequest struct {
	Barcode      string          `json:"barcode" binding:"required"`
	Name         string          `json:"name" binding:"required"`
	Description  string          `json:"description"`
	Brand        string          `json:"brand" binding:"required"`
	CategoryCode string          `json:"category_code" binding:"required"`
	ABCCode      string          `json:"abc_code" binding:"required"`
	SellUnit     string          `json:"sell_unit" binding:"required"`
	StorageUnit  string          `json:"storage_unit" binding:"required"`
	DimensionRef string          `json:"dimension_ref"`
	BuyPrice     decimal.Decimal `json:"buy_price"`
	SellPrice    decimal.Decimal `json:"sell_price"`
	Status       string          `json:"status" binding:"required,oneof=ACTIVE INACTIVE"`
}

// CreateProduct allocates product and ledger identifiers, derives the
// classification from the fixed lookups, and creates the product with a
// paired zero-quantity stock entry.
func (s *ProductService) CreateProduct(ctx context.Context, actorID string, req *CreateProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.CreateProduct")
	defer span.End()

	category, abc, err := deriveClassification(req.CategoryCode, req.ABCCode)
	if err != nil {
		return nil, err
	}
	if err := validatePrices(req.BuyPrice, req.SellPrice); err != nil {
		return nil, err
	}

	productID, err := s.allocator.NextID(ctx, KindProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate product id: %w", err)
	}
	stockID, err := s.allocator.NextID(ctx, KindStock)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate stock id: %w", err)
	}

	product := &models.Product{
		ID:           productID,
		Barcode:      req.Barcode,
		Name:         req.Name,
		Description:  req.Description,
		Brand:        req.Brand,
		Category:     category,
		ABCClass:     abc,
		SellUnit:     req.SellUnit,
		StorageUnit:  req.StorageUnit,
		DimensionRef: req.DimensionRef,
		BuyPrice:     req.BuyPrice,
		SellPrice:    req.SellPrice,
		Status:       models.ProductStatusActive,
		CreatedAt:    time.Now(),
	}

	entry := &models.StockEntry{
		ID:        stockID,
		ProductID: productID,
		Quantity:  0,
		Location:  "-",
		Valuation: decimal.Zero,
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.store.CreateProductTx(ctx, tx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	if err := s.store.CreateStockEntryTx(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("failed to create stock entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit product creation: %w", err)
	}

	util.ProductsCreatedTotal.Inc()
	s.logger.Info("Product created",
		zap.String("product_id", productID),
		zap.String("stock_id", stockID),
		zap.String("actor_id", actorID))

	s.audit.Record(ctx, actorID, models.AuditActionCreate, productID)

	if err := s.cache.SetStock(ctx, productID, 0); err != nil {
		s.logPartial("cache_init", err)
	}

	event := &models.ProductCreatedEvent{
		BaseEvent: newBaseEvent(models.EventTypeProductCreated),
		ProductID: productID,
		StockID:   stockID,
		ActorID:   actorID,
	}
	if err := s.publisher.PublishProductCreated(ctx, event); err != nil {
		s.logPartial("publish_product_created", err)
	}

	return product, nil
}

// UpdateProduct overwrites product attributes and re-derives the ledger
// valuation from current quantity times the new buy price. The counter's
// total price is refreshed with a zero-delta adjustment.
func (s *ProductService) UpdateProduct(ctx context.Context, actorID, productID string, req *UpdateProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.UpdateProduct")
	defer span.End()

	category, abc, err := deriveClassification(req.CategoryCode, req.ABCCode)
	if err != nil {
		return nil, err
	}
	if err := validatePrices(req.BuyPrice, req.SellPrice); err != nil {
		return nil, err
	}

	existing, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:           productID,
		Barcode:      req.Barcode,
		Name:         req.Name,
		Description:  req.Description,
		Brand:        req.Brand,
		Category:     category,
		ABCClass:     abc,
		SellUnit:     req.SellUnit,
		StorageUnit:  req.StorageUnit,
		DimensionRef: req.DimensionRef,
		BuyPrice:     req.BuyPrice,
		SellPrice:    req.SellPrice,
		Status:       req.Status,
		CreatedAt:    existing.CreatedAt,
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	snapshot, err := s.ledger.Snapshot(ctx, tx, []string{productID})
	if err != nil {
		return nil, err
	}
	entry := snapshot[productID]

	if err := s.store.UpdateProductTx(ctx, tx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	valuation := req.BuyPrice.Mul(decimal.NewFromInt(int64(entry.Quantity)))
	if err := s.store.SetStockValuationTx(ctx, tx, productID, valuation); err != nil {
		return nil, fmt.Errorf("failed to re-derive valuation: %w", err)
	}

	if err := s.counter.Adjust(ctx, tx, 0); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit product update: %w", err)
	}

	s.logger.Info("Product updated",
		zap.String("product_id", productID),
		zap.String("actor_id", actorID))

	s.audit.Record(ctx, actorID, models.AuditActionUpdate, productID)

	event := &models.ProductUpdatedEvent{
		BaseEvent: newBaseEvent(models.EventTypeProductUpdated),
		ProductID: productID,
		ActorID:   actorID,
	}
	if err := s.publisher.PublishProductUpdated(ctx, event); err != nil {
		s.logPartial("publish_product_updated", err)
	}

	return product, nil
}

// DeleteProduct removes a product and its ledger row, debiting the aggregate
// counter by the quantity the row held.
func (s *ProductService) DeleteProduct(ctx context.Context, actorID, productID string) error {
	ctx, span := util.StartSpan(ctx, "ProductService.DeleteProduct")
	defer span.End()

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	removedQty, err := s.ledger.Remove(ctx, tx, productID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteProductTx(ctx, tx, productID); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if err := s.counter.Adjust(ctx, tx, -removedQty); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit product deletion: %w", err)
	}

	s.logger.Info("Product deleted",
		zap.String("product_id", productID),
		zap.Int("removed_quantity", removedQty),
		zap.String("actor_id", actorID))

	s.audit.Record(ctx, actorID, models.AuditActionDelete, productID)

	if err := s.cache.DeleteStock(ctx, productID); err != nil {
		s.logPartial("cache_delete", err)
	}

	event := &models.ProductDeletedEvent{
		BaseEvent:       newBaseEvent(models.EventTypeProductDeleted),
		ProductID:       productID,
		RemovedQuantity: removedQty,
		ActorID:         actorID,
	}
	if err := s.publisher.PublishProductDeleted(ctx, event); err != nil {
		s.logPartial("publish_product_deleted", err)
	}

	return nil
}

// GetProduct returns a product with its ledger row
func (s *ProductService) GetProduct(ctx context.Context, productID string) (*models.Product, *models.StockEntry, error) {
	product, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	entry, err := s.ledger.Entry(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	return product, entry, nil
}

// ListProducts returns every catalog product
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.store.GetProducts(ctx)
}

// ListActiveProducts returns products not yet deactivated
func (s *ProductService) ListActiveProducts(ctx context.Context) ([]models.Product, error) {
	return s.store.GetActiveProducts(ctx)
}

func (s *ProductService) logPartial(step string, err error) {
	perr := &PartialPersistenceError{Step: step, Err: err}
	util.PartialSyncFailuresTotal.WithLabelValues(step).Inc()
	s.logger.Warn("Post-commit step failed, needs reconciliation", zap.Error(perr))
}

func deriveClassification(categoryCode, abcCode string) (string, string, error) {
	category, ok := productCategories[categoryCode]
	if !ok {
		return "", "", &ValidationError{Field: "category_code", Reason: fmt.Sprintf("unknown code %q", categoryCode)}
	}
	abc, ok := abcClasses[abcCode]
	if !ok {
		return "", "", &ValidationError{Field: "abc_code", Reason: fmt.Sprintf("unknown code %q", abcCode)}
	}
	return category, abc, nil
}

func validatePrices(buy, sell decimal.Decimal) error {
	if buy.IsNegative() {
		return &ValidationError{Field: "buy_price", Reason: "must not be negative"}
	}
	if sell.IsNegative() {
		return &ValidationError{Field: "sell_price", Reason: "must not be negative"}
	}
	return nil
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}
