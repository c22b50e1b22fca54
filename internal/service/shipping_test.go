package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/anr091/project-kapita/internal/models"
	"github.com/anr091/project-kapita/internal/service"
	"github.com/anr091/project-kapita/internal/service/mocks"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type shippingFixture struct {
	store     *mocks.MockStore
	publisher *mocks.MockEventPublisher
	cache     *mocks.MockStockCache
	counter   *service.AggregateCounter
	svc       *service.ShippingService
}

func newShippingFixture() *shippingFixture {
	mockStore := new(mocks.MockStore)
	publisher := new(mocks.MockEventPublisher)
	cache := new(mocks.MockStockCache)

	allocator := service.NewSequenceAllocator(mockStore)
	ledger := service.NewStockLedger(mockStore)
	counter := service.NewAggregateCounter(mockStore, allocator, time.UTC)

	return &shippingFixture{
		store:     mockStore,
		publisher: publisher,
		cache:     cache,
		counter:   counter,
		svc:       service.NewShippingService(mockStore, ledger, counter, allocator, publisher, cache),
	}
}

func TestCreateShipment(t *testing.T) {
	ctx := context.Background()

	t.Run("ships stock and debits the counter", func(t *testing.T) {
		f := newShippingFixture()
		tx := new(mocks.MockTx)

		product := models.Product{
			ID:        "PRD0001",
			BuyPrice:  decimal.NewFromInt(100),
			SellPrice: decimal.NewFromInt(150),
		}
		retail := &models.Retail{ID: "RET001", Name: "Corner Shop", Address: "12 High St"}
		entry := models.StockEntry{ID: "INV0001", ProductID: "PRD0001", Quantity: 10}

		f.cache.On("GetStock", mock.Anything, "PRD0001").Return(10, true, nil).Once()
		f.store.On("GetProductsByIDs", mock.Anything, []string{"PRD0001"}).
			Return([]models.Product{product}, nil).Once()
		f.store.On("GetRetailByID", mock.Anything, "RET001").Return(retail, nil).Once()
		f.store.On("IncrementSequence", mock.Anything, "shipment").Return(int64(3), true, nil).Once()
		f.store.On("BeginTx", mock.Anything).Return(tx, nil).Once()
		f.store.On("LockStockEntriesTx", mock.Anything, tx, []string{"PRD0001"}).
			Return([]models.StockEntry{entry}, nil).Once()
		f.store.On("ApplyStockShipmentTx", mock.Anything, tx, "PRD0001", 10,
			decimal.NewFromInt(1000)).Return(nil).Once()
		f.store.On("InsertShipmentLineTx", mock.Anything, tx, mock.MatchedBy(func(l *models.ShipmentLine) bool {
			return l.ShipmentID == "SHP00003" && l.Quantity == 10 &&
				l.SellPrice.Equal(decimal.NewFromInt(150)) &&
				l.Subtotal.Equal(decimal.NewFromInt(1500))
		})).Return(nil).Once()
		f.store.On("InsertShipmentTx", mock.Anything, tx, mock.MatchedBy(func(sh *models.Shipment) bool {
			return sh.ID == "SHP00003" && sh.RetailName == "Corner Shop" &&
				sh.RetailAddress == "12 High St" && sh.CreatedBy == "user-7" &&
				sh.TotalPrice.Equal(decimal.NewFromInt(1500))
		})).Return(nil).Once()

		liveBucket := &models.CounterEntry{
			ID:         "ITMCHRT000000002",
			Date:       f.counter.Today(),
			TotalItems: 10,
		}
		f.store.On("LatestCounterEntryTx", mock.Anything, tx).Return(liveBucket, nil).Once()
		f.store.On("SumValuationsTx", mock.Anything, tx).Return(decimal.Zero, nil).Once()
		f.store.On("AdjustCounterEntryTx", mock.Anything, tx, liveBucket.ID, -10, decimal.Zero).
			Return(true, nil).Once()

		tx.On("Commit").Return(nil).Once()
		tx.On("Rollback").Return(nil)

		f.cache.On("SetStock", mock.Anything, "PRD0001", 0).Return(nil).Once()
		f.publisher.On("PublishStockShipped", mock.Anything, mock.MatchedBy(func(e *models.StockShippedEvent) bool {
			return e.ShipmentID == "SHP00003" && len(e.Lines) == 1 &&
				e.Lines[0].Delta == -10 && e.Lines[0].Quantity == 0
		})).Return(nil).Once()

		shipment, err := f.svc.CreateShipment(ctx, "user-7", &service.CreateShipmentRequest{
			RetailID: "RET001",
			Lines:    []service.ShipLineRequest{{ProductID: "PRD0001", Quantity: 10}},
		})
		require.NoError(t, err)
		assert.Equal(t, "SHP00003", shipment.ID)
		assert.True(t, shipment.TotalPrice.Equal(decimal.NewFromInt(1500)))

		f.store.AssertExpectations(t)
		tx.AssertExpectations(t)
	})

	t.Run("cache fast path rejects without a transaction", func(t *testing.T) {
		f := newShippingFixture()

		f.cache.On("GetStock", mock.Anything, "PRD0001").Return(10, true, nil).Once()

		_, err := f.svc.CreateShipment(ctx, "user-7", &service.CreateShipmentRequest{
			RetailID: "RET001",
			Lines:    []service.ShipLineRequest{{ProductID: "PRD0001", Quantity: 15}},
		})

		var stockErr *service.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, 10, stockErr.Available)
		assert.Equal(t, 15, stockErr.Requested)
		f.store.AssertNotCalled(t, "BeginTx", mock.Anything)
	})

	t.Run("locked snapshot rejects a short batch before any write", func(t *testing.T) {
		f := newShippingFixture()
		tx := new(mocks.MockTx)

		product := models.Product{ID: "PRD0001", SellPrice: decimal.NewFromInt(150)}

		// Cache misses, so the decision falls to the locked snapshot.
		f.cache.On("GetStock", mock.Anything, "PRD0001").Return(0, false, nil).Once()
		f.store.On("GetProductsByIDs", mock.Anything, []string{"PRD0001"}).
			Return([]models.Product{product}, nil).Once()
		f.store.On("GetRetailByID", mock.Anything, "RET001").
			Return(&models.Retail{ID: "RET001"}, nil).Once()
		f.store.On("IncrementSequence", mock.Anything, "shipment").Return(int64(4), true, nil).Once()
		f.store.On("BeginTx", mock.Anything).Return(tx, nil).Once()
		f.store.On("LockStockEntriesTx", mock.Anything, tx, []string{"PRD0001"}).
			Return([]models.StockEntry{{ID: "INV0001", ProductID: "PRD0001", Quantity: 10}}, nil).Once()

		tx.On("Rollback").Return(nil).Once()

		_, err := f.svc.CreateShipment(ctx, "user-7", &service.CreateShipmentRequest{
			RetailID: "RET001",
			Lines:    []service.ShipLineRequest{{ProductID: "PRD0001", Quantity: 15}},
		})

		var stockErr *service.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		f.store.AssertNotCalled(t, "ApplyStockShipmentTx",
			mock.Anything, tx, "PRD0001", 15, mock.Anything)
		tx.AssertNotCalled(t, "Commit")
	})

	t.Run("one short line rejects the whole batch", func(t *testing.T) {
		f := newShippingFixture()
		tx := new(mocks.MockTx)

		products := []models.Product{
			{ID: "PRD0001", SellPrice: decimal.NewFromInt(10)},
			{ID: "PRD0002", SellPrice: decimal.NewFromInt(20)},
		}

		f.cache.On("GetStock", mock.Anything, "PRD0001").Return(0, false, nil).Once()
		f.cache.On("GetStock", mock.Anything, "PRD0002").Return(0, false, nil).Once()
		f.store.On("GetProductsByIDs", mock.Anything, []string{"PRD0001", "PRD0002"}).
			Return(products, nil).Once()
		f.store.On("GetRetailByID", mock.Anything, "RET001").
			Return(&models.Retail{ID: "RET001"}, nil).Once()
		f.store.On("IncrementSequence", mock.Anything, "shipment").Return(int64(5), true, nil).Once()
		f.store.On("BeginTx", mock.Anything).Return(tx, nil).Once()
		f.store.On("LockStockEntriesTx", mock.Anything, tx, []string{"PRD0001", "PRD0002"}).
			Return([]models.StockEntry{
				{ID: "INV0001", ProductID: "PRD0001", Quantity: 100},
				{ID: "INV0002", ProductID: "PRD0002", Quantity: 1},
			}, nil).Once()

		tx.On("Rollback").Return(nil).Once()

		_, err := f.svc.CreateShipment(ctx, "user-7", &service.CreateShipmentRequest{
			RetailID: "RET001",
			Lines: []service.ShipLineRequest{
				{ProductID: "PRD0001", Quantity: 5},
				{ProductID: "PRD0002", Quantity: 2},
			},
		})

		var stockErr *service.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, "PRD0002", stockErr.ProductID)
		// The sufficient line must not have been written either.
		f.store.AssertNotCalled(t, "ApplyStockShipmentTx",
			mock.Anything, tx, "PRD0001", 5, mock.Anything)
	})

	t.Run("lines naming the same product are summed before the sufficiency check", func(t *testing.T) {
		f := newShippingFixture()
		tx := new(mocks.MockTx)

		product := models.Product{ID: "PRD0001", SellPrice: decimal.NewFromInt(150)}

		f.cache.On("GetStock", mock.Anything, "PRD0001").Return(0, false, nil).Once()
		f.store.On("GetProductsByIDs", mock.Anything, []string{"PRD0001"}).
			Return([]models.Product{product}, nil).Once()
		f.store.On("GetRetailByID", mock.Anything, "RET001").
			Return(&models.Retail{ID: "RET001"}, nil).Once()
		f.store.On("IncrementSequence", mock.Anything, "shipment").Return(int64(6), true, nil).Once()
		f.store.On("BeginTx", mock.Anything).Return(tx, nil).Once()
		f.store.On("LockStockEntriesTx", mock.Anything, tx, []string{"PRD0001"}).
			Return([]models.StockEntry{{ID: "INV0001", ProductID: "PRD0001", Quantity: 10}}, nil).Once()

		tx.On("Rollback").Return(nil).Once()

		// 6+6 against 10 on hand must fail as one 12-unit request, not
		// pass as two independent 6-unit lines.
		_, err := f.svc.CreateShipment(ctx, "user-7", &service.CreateShipmentRequest{
			RetailID: "RET001",
			Lines: []service.ShipLineRequest{
				{ProductID: "PRD0001", Quantity: 6},
				{ProductID: "PRD0001", Quantity: 6},
			},
		})

		var stockErr *service.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, "PRD0001", stockErr.ProductID)
		assert.Equal(t, 10, stockErr.Available)
		assert.Equal(t, 12, stockErr.Requested)
		f.store.AssertNotCalled(t, "InsertShipmentLineTx", mock.Anything, mock.Anything, mock.Anything)
		f.store.AssertNotCalled(t, "ApplyStockShipmentTx",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		tx.AssertNotCalled(t, "Commit")
	})

	t.Run("a sufficient split request decrements the ledger once", func(t *testing.T) {
		f := newShippingFixture()
		tx := new(mocks.MockTx)

		product := models.Product{
			ID:        "PRD0001",
			BuyPrice:  decimal.NewFromInt(100),
			SellPrice: decimal.NewFromInt(150),
		}

		f.cache.On("GetStock", mock.Anything, "PRD0001").Return(10, true, nil).Once()
		f.store.On("GetProductsByIDs", mock.Anything, []string{"PRD0001"}).
			Return([]models.Product{product}, nil).Once()
		f.store.On("GetRetailByID", mock.Anything, "RET001").
			Return(&models.Retail{ID: "RET001"}, nil).Once()
		f.store.On("IncrementSequence", mock.Anything, "shipment").Return(int64(7), true, nil).Once()
		f.store.On("BeginTx", mock.Anything).Return(tx, nil).Once()
		f.store.On("LockStockEntriesTx", mock.Anything, tx, []string{"PRD0001"}).
			Return([]models.StockEntry{{ID: "INV0001", ProductID: "PRD0001", Quantity: 10}}, nil).Once()
		f.store.On("InsertShipmentLineTx", mock.Anything, tx, mock.MatchedBy(func(l *models.ShipmentLine) bool {
			return l.Quantity == 4 && l.Subtotal.Equal(decimal.NewFromInt(600))
		})).Return(nil).Twice()
		// One aggregate decrement of 8, not two of 4.
		f.store.On("ApplyStockShipmentTx", mock.Anything, tx, "PRD0001", 8,
			decimal.NewFromInt(800)).Return(nil).Once()
		f.store.On("InsertShipmentTx", mock.Anything, tx, mock.MatchedBy(func(sh *models.Shipment) bool {
			return sh.TotalPrice.Equal(decimal.NewFromInt(1200))
		})).Return(nil).Once()

		liveBucket := &models.CounterEntry{
			ID:         "ITMCHRT000000003",
			Date:       f.counter.Today(),
			TotalItems: 20,
		}
		f.store.On("LatestCounterEntryTx", mock.Anything, tx).Return(liveBucket, nil).Once()
		f.store.On("SumValuationsTx", mock.Anything, tx).Return(decimal.NewFromInt(200), nil).Once()
		f.store.On("AdjustCounterEntryTx", mock.Anything, tx, liveBucket.ID, -8,
			decimal.NewFromInt(200)).Return(true, nil).Once()

		tx.On("Commit").Return(nil).Once()
		tx.On("Rollback").Return(nil)

		f.cache.On("SetStock", mock.Anything, "PRD0001", 2).Return(nil).Once()
		f.publisher.On("PublishStockShipped", mock.Anything, mock.MatchedBy(func(e *models.StockShippedEvent) bool {
			return len(e.Lines) == 1 && e.Lines[0].ProductID == "PRD0001" &&
				e.Lines[0].Delta == -8 && e.Lines[0].Quantity == 2
		})).Return(nil).Once()

		shipment, err := f.svc.CreateShipment(ctx, "user-7", &service.CreateShipmentRequest{
			RetailID: "RET001",
			Lines: []service.ShipLineRequest{
				{ProductID: "PRD0001", Quantity: 4},
				{ProductID: "PRD0001", Quantity: 4},
			},
		})
		require.NoError(t, err)
		assert.True(t, shipment.TotalPrice.Equal(decimal.NewFromInt(1200)))

		f.store.AssertExpectations(t)
		f.cache.AssertExpectations(t)
		f.publisher.AssertExpectations(t)
	})

	t.Run("non-positive line quantity rejected", func(t *testing.T) {
		f := newShippingFixture()

		_, err := f.svc.CreateShipment(ctx, "user-7", &service.CreateShipmentRequest{
			RetailID: "RET001",
			Lines:    []service.ShipLineRequest{{ProductID: "PRD0001", Quantity: 0}},
		})

		var validationErr *service.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}
