package service_test

import (
	"context"
	"errors"
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

type receivingFixture struct {
	store     *mocks.MockStore
	publisher *mocks.MockEventPublisher
	cache     *mocks.MockStockCache
	counter   *service.AggregateCounter
	svc       *service.ReceivingService
}

func newReceivingFixture() *receivingFixture {
	mockStore := new(mocks.MockStore)
	publisher := new(mocks.MockEventPublisher)
	cache := new(mocks.MockStockCache)

	allocator := service.NewSequenceAllocator(mockStore)
	ledger := service.NewStockLedger(mockStore)
	counter := service.NewAggregateCounter(mockStore, allocator, time.UTC)

	return &receivingFixture{
		store:     mockStore,
		publisher: publisher,
		cache:     cache,
		counter:   counter,
		svc:       service.NewReceivingService(mockStore, ledger, counter, allocator, publisher, cache),
	}
}

func TestCreateArrival(t *testing.T) {
	ctx := context.Background()

	t.Run("receives quantities and credits the counter", func(t *testing.T) {
		f := newReceivingFixture()
		tx := new(mocks.MockTx)

		product := models.Product{ID: "PRD0001", BuyPrice: decimal.NewFromInt(100)}
		supplier := &models.Supplier{ID: "SUPP0001", Name: "Acme"}
		entry := models.StockEntry{ID: "INV0001", ProductID: "PRD0001", Quantity: 0}

		f.store.On("GetProductsByIDs", mock.Anything, []string{"PRD0001"}).
			Return([]models.Product{product}, nil).Once()
		f.store.On("GetSupplierByID", mock.Anything, "SUPP0001").Return(supplier, nil).Once()
		f.store.On("IncrementSequence", mock.Anything, "arrival").Return(int64(12), true, nil).Once()
		f.store.On("BeginTx", mock.Anything).Return(tx, nil).Once()
		f.store.On("LockStockEntriesTx", mock.Anything, tx, []string{"PRD0001"}).
			Return([]models.StockEntry{entry}, nil).Once()
		f.store.On("ApplyStockReceiptTx", mock.Anything, tx, "PRD0001", 10,
			decimal.NewFromInt(1000), mock.Anything).Return(nil).Once()
		f.store.On("InsertArrivalLineTx", mock.Anything, tx, mock.MatchedBy(func(l *models.ArrivalLine) bool {
			return l.ArrivalID == "ARIV00012" && l.Quantity == 10 &&
				l.BuyPrice.Equal(decimal.NewFromInt(100)) &&
				l.Subtotal.Equal(decimal.NewFromInt(1000))
		})).Return(nil).Once()
		f.store.On("InsertArrivalTx", mock.Anything, tx, mock.MatchedBy(func(r *models.ArrivalReport) bool {
			return r.ID == "ARIV00012" && r.ReceivedBy == "user-7" &&
				r.TotalPrice.Equal(decimal.NewFromInt(1000))
		})).Return(nil).Once()

		liveBucket := &models.CounterEntry{
			ID:         "ITMCHRT000000001",
			Date:       f.counter.Today(),
			TotalItems: 5,
		}
		f.store.On("LatestCounterEntryTx", mock.Anything, tx).Return(liveBucket, nil).Once()
		f.store.On("SumValuationsTx", mock.Anything, tx).Return(decimal.NewFromInt(1000), nil).Once()
		f.store.On("AdjustCounterEntryTx", mock.Anything, tx, liveBucket.ID, 10,
			decimal.NewFromInt(1000)).Return(true, nil).Once()

		tx.On("Commit").Return(nil).Once()
		tx.On("Rollback").Return(nil)

		f.cache.On("SetStock", mock.Anything, "PRD0001", 10).Return(nil).Once()
		f.publisher.On("PublishStockReceived", mock.Anything, mock.MatchedBy(func(e *models.StockReceivedEvent) bool {
			return e.ArrivalID == "ARIV00012" && len(e.Lines) == 1 &&
				e.Lines[0].Delta == 10 && e.Lines[0].Quantity == 10
		})).Return(nil).Once()

		report, err := f.svc.CreateArrival(ctx, "user-7", &service.CreateArrivalRequest{
			SupplierID: "SUPP0001",
			Lines:      []service.ReceiveLineRequest{{ProductID: "PRD0001", Quantity: 10}},
		})
		require.NoError(t, err)
		assert.Equal(t, "ARIV00012", report.ID)
		assert.True(t, report.TotalPrice.Equal(decimal.NewFromInt(1000)))

		f.store.AssertExpectations(t)
		f.cache.AssertExpectations(t)
		f.publisher.AssertExpectations(t)
		tx.AssertExpectations(t)
	})

	t.Run("lines naming the same product publish one summed mirror quantity", func(t *testing.T) {
		f := newReceivingFixture()
		tx := new(mocks.MockTx)

		product := models.Product{ID: "PRD0001", BuyPrice: decimal.NewFromInt(100)}

		f.store.On("GetProductsByIDs", mock.Anything, []string{"PRD0001"}).
			Return([]models.Product{product}, nil).Once()
		f.store.On("GetSupplierByID", mock.Anything, "SUPP0001").
			Return(&models.Supplier{ID: "SUPP0001"}, nil).Once()
		f.store.On("IncrementSequence", mock.Anything, "arrival").Return(int64(15), true, nil).Once()
		f.store.On("BeginTx", mock.Anything).Return(tx, nil).Once()
		f.store.On("LockStockEntriesTx", mock.Anything, tx, []string{"PRD0001"}).
			Return([]models.StockEntry{{ID: "INV0001", ProductID: "PRD0001", Quantity: 5}}, nil).Once()
		f.store.On("ApplyStockReceiptTx", mock.Anything, tx, "PRD0001", 4,
			decimal.NewFromInt(400), mock.Anything).Return(nil).Once()
		f.store.On("ApplyStockReceiptTx", mock.Anything, tx, "PRD0001", 6,
			decimal.NewFromInt(600), mock.Anything).Return(nil).Once()
		f.store.On("InsertArrivalLineTx", mock.Anything, tx, mock.Anything).Return(nil).Twice()
		f.store.On("InsertArrivalTx", mock.Anything, tx, mock.MatchedBy(func(r *models.ArrivalReport) bool {
			return r.TotalPrice.Equal(decimal.NewFromInt(1000))
		})).Return(nil).Once()

		liveBucket := &models.CounterEntry{
			ID:         "ITMCHRT000000001",
			Date:       f.counter.Today(),
			TotalItems: 5,
		}
		f.store.On("LatestCounterEntryTx", mock.Anything, tx).Return(liveBucket, nil).Once()
		f.store.On("SumValuationsTx", mock.Anything, tx).Return(decimal.NewFromInt(1500), nil).Once()
		f.store.On("AdjustCounterEntryTx", mock.Anything, tx, liveBucket.ID, 10,
			decimal.NewFromInt(1500)).Return(true, nil).Once()

		tx.On("Commit").Return(nil).Once()
		tx.On("Rollback").Return(nil)

		// 5 on hand + 4 + 6: the mirror must learn 15 once, not 9 then 11.
		f.cache.On("SetStock", mock.Anything, "PRD0001", 15).Return(nil).Once()
		f.publisher.On("PublishStockReceived", mock.Anything, mock.MatchedBy(func(e *models.StockReceivedEvent) bool {
			return len(e.Lines) == 1 && e.Lines[0].ProductID == "PRD0001" &&
				e.Lines[0].Delta == 10 && e.Lines[0].Quantity == 15
		})).Return(nil).Once()

		_, err := f.svc.CreateArrival(ctx, "user-7", &service.CreateArrivalRequest{
			SupplierID: "SUPP0001",
			Lines: []service.ReceiveLineRequest{
				{ProductID: "PRD0001", Quantity: 4},
				{ProductID: "PRD0001", Quantity: 6},
			},
		})
		require.NoError(t, err)

		f.store.AssertExpectations(t)
		f.cache.AssertExpectations(t)
		f.publisher.AssertExpectations(t)
	})

	t.Run("non-positive line quantity rejected before any read", func(t *testing.T) {
		f := newReceivingFixture()

		_, err := f.svc.CreateArrival(ctx, "user-7", &service.CreateArrivalRequest{
			SupplierID: "SUPP0001",
			Lines:      []service.ReceiveLineRequest{{ProductID: "PRD0001", Quantity: -2}},
		})

		var validationErr *service.ValidationError
		assert.ErrorAs(t, err, &validationErr)
		f.store.AssertNotCalled(t, "BeginTx", mock.Anything)
	})

	t.Run("unknown product rejects the whole batch", func(t *testing.T) {
		f := newReceivingFixture()

		f.store.On("GetProductsByIDs", mock.Anything, []string{"PRD0001", "PRD0099"}).
			Return([]models.Product{{ID: "PRD0001"}}, nil).Once()

		_, err := f.svc.CreateArrival(ctx, "user-7", &service.CreateArrivalRequest{
			SupplierID: "SUPP0001",
			Lines: []service.ReceiveLineRequest{
				{ProductID: "PRD0001", Quantity: 3},
				{ProductID: "PRD0099", Quantity: 4},
			},
		})

		var validationErr *service.ValidationError
		assert.ErrorAs(t, err, &validationErr)
		f.store.AssertNotCalled(t, "BeginTx", mock.Anything)
	})

	t.Run("unknown supplier rejected", func(t *testing.T) {
		f := newReceivingFixture()

		f.store.On("GetProductsByIDs", mock.Anything, []string{"PRD0001"}).
			Return([]models.Product{{ID: "PRD0001"}}, nil).Once()
		f.store.On("GetSupplierByID", mock.Anything, "SUPP0404").
			Return(nil, errors.New("supplier not found: SUPP0404")).Once()

		_, err := f.svc.CreateArrival(ctx, "user-7", &service.CreateArrivalRequest{
			SupplierID: "SUPP0404",
			Lines:      []service.ReceiveLineRequest{{ProductID: "PRD0001", Quantity: 3}},
		})

		var validationErr *service.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("failed line rolls back without commit", func(t *testing.T) {
		f := newReceivingFixture()
		tx := new(mocks.MockTx)

		product := models.Product{ID: "PRD0001", BuyPrice: decimal.NewFromInt(100)}

		f.store.On("GetProductsByIDs", mock.Anything, []string{"PRD0001"}).
			Return([]models.Product{product}, nil).Once()
		f.store.On("GetSupplierByID", mock.Anything, "SUPP0001").
			Return(&models.Supplier{ID: "SUPP0001"}, nil).Once()
		f.store.On("IncrementSequence", mock.Anything, "arrival").Return(int64(13), true, nil).Once()
		f.store.On("BeginTx", mock.Anything).Return(tx, nil).Once()
		f.store.On("LockStockEntriesTx", mock.Anything, tx, []string{"PRD0001"}).
			Return([]models.StockEntry{{ID: "INV0001", ProductID: "PRD0001"}}, nil).Once()
		f.store.On("ApplyStockReceiptTx", mock.Anything, tx, "PRD0001", 5,
			decimal.NewFromInt(500), mock.Anything).Return(errors.New("write failed")).Once()

		tx.On("Rollback").Return(nil).Once()

		_, err := f.svc.CreateArrival(ctx, "user-7", &service.CreateArrivalRequest{
			SupplierID: "SUPP0001",
			Lines:      []service.ReceiveLineRequest{{ProductID: "PRD0001", Quantity: 5}},
		})

		assert.Error(t, err)
		tx.AssertNotCalled(t, "Commit")
		tx.AssertExpectations(t)
	})

	t.Run("publish failure does not fail the committed arrival", func(t *testing.T) {
		f := newReceivingFixture()
		tx := new(mocks.MockTx)

		product := models.Product{ID: "PRD0001", BuyPrice: decimal.NewFromInt(50)}

		f.store.On("GetProductsByIDs", mock.Anything, []string{"PRD0001"}).
			Return([]models.Product{product}, nil).Once()
		f.store.On("GetSupplierByID", mock.Anything, "SUPP0001").
			Return(&models.Supplier{ID: "SUPP0001"}, nil).Once()
		f.store.On("IncrementSequence", mock.Anything, "arrival").Return(int64(14), true, nil).Once()
		f.store.On("BeginTx", mock.Anything).Return(tx, nil).Once()
		f.store.On("LockStockEntriesTx", mock.Anything, tx, []string{"PRD0001"}).
			Return([]models.StockEntry{{ID: "INV0001", ProductID: "PRD0001", Quantity: 2}}, nil).Once()
		f.store.On("ApplyStockReceiptTx", mock.Anything, tx, "PRD0001", 4,
			decimal.NewFromInt(200), mock.Anything).Return(nil).Once()
		f.store.On("InsertArrivalLineTx", mock.Anything, tx, mock.Anything).Return(nil).Once()
		f.store.On("InsertArrivalTx", mock.Anything, tx, mock.Anything).Return(nil).Once()
		f.store.On("LatestCounterEntryTx", mock.Anything, tx).Return(nil, nil).Once()
		f.store.On("SumValuationsTx", mock.Anything, tx).Return(decimal.NewFromInt(200), nil).Once()
		f.store.On("IncrementSequence", mock.Anything, "counter").Return(int64(1), true, nil).Once()
		f.store.On("InsertCounterEntryTx", mock.Anything, tx, mock.Anything).Return(nil).Once()

		tx.On("Commit").Return(nil).Once()
		tx.On("Rollback").Return(nil)

		f.cache.On("SetStock", mock.Anything, "PRD0001", 6).Return(errors.New("redis down")).Once()
		f.publisher.On("PublishStockReceived", mock.Anything, mock.Anything).
			Return(errors.New("kafka down")).Once()

		report, err := f.svc.CreateArrival(ctx, "user-7", &service.CreateArrivalRequest{
			SupplierID: "SUPP0001",
			Lines:      []service.ReceiveLineRequest{{ProductID: "PRD0001", Quantity: 4}},
		})
		require.NoError(t, err)
		assert.Equal(t, "ARIV00014", report.ID)
	})
}
