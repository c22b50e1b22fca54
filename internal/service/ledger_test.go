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

func TestLedgerSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("keys entries by product", func(t *testing.T) {
		mockStore := new(mocks.MockStore)
		ledger := service.NewStockLedger(mockStore)
		tx := new(mocks.MockTx)

		entries := []models.StockEntry{
			{ID: "INV0001", ProductID: "PRD0001", Quantity: 10},
			{ID: "INV0002", ProductID: "PRD0002", Quantity: 3},
		}
		mockStore.On("LockStockEntriesTx", ctx, tx, []string{"PRD0001", "PRD0002"}).
			Return(entries, nil).Once()

		snapshot, err := ledger.Snapshot(ctx, tx, []string{"PRD0001", "PRD0002"})
		require.NoError(t, err)
		assert.Equal(t, 10, snapshot["PRD0001"].Quantity)
		assert.Equal(t, 3, snapshot["PRD0002"].Quantity)
	})

	t.Run("missing ledger row rejected", func(t *testing.T) {
		mockStore := new(mocks.MockStore)
		ledger := service.NewStockLedger(mockStore)
		tx := new(mocks.MockTx)

		mockStore.On("LockStockEntriesTx", ctx, tx, []string{"PRD0001", "PRD0099"}).
			Return([]models.StockEntry{{ID: "INV0001", ProductID: "PRD0001"}}, nil).Once()

		_, err := ledger.Snapshot(ctx, tx, []string{"PRD0001", "PRD0099"})
		var validationErr *service.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestLedgerReceive(t *testing.T) {
	ctx := context.Background()
	receivedAt := time.Now()

	t.Run("valuation delta is quantity times buy price", func(t *testing.T) {
		mockStore := new(mocks.MockStore)
		ledger := service.NewStockLedger(mockStore)
		tx := new(mocks.MockTx)

		mockStore.On("ApplyStockReceiptTx", ctx, tx, "PRD0001", 10,
			decimal.NewFromInt(1000), receivedAt).Return(nil).Once()

		err := ledger.Receive(ctx, tx, "PRD0001", 10, decimal.NewFromInt(100), receivedAt)
		require.NoError(t, err)
		mockStore.AssertExpectations(t)
	})

	t.Run("non-positive quantity rejected", func(t *testing.T) {
		mockStore := new(mocks.MockStore)
		ledger := service.NewStockLedger(mockStore)
		tx := new(mocks.MockTx)

		err := ledger.Receive(ctx, tx, "PRD0001", 0, decimal.NewFromInt(100), receivedAt)
		var validationErr *service.ValidationError
		assert.ErrorAs(t, err, &validationErr)
		mockStore.AssertNotCalled(t, "ApplyStockReceiptTx",
			ctx, tx, "PRD0001", 0, mock.Anything, receivedAt)
	})
}

func TestLedgerShip(t *testing.T) {
	ctx := context.Background()

	t.Run("decrements with cost basis", func(t *testing.T) {
		mockStore := new(mocks.MockStore)
		ledger := service.NewStockLedger(mockStore)
		tx := new(mocks.MockTx)

		mockStore.On("ApplyStockShipmentTx", ctx, tx, "PRD0001", 10,
			decimal.NewFromInt(1000)).Return(nil).Once()

		err := ledger.Ship(ctx, tx, "PRD0001", 10, 10, decimal.NewFromInt(100))
		require.NoError(t, err)
		mockStore.AssertExpectations(t)
	})

	t.Run("requesting more than available rejected", func(t *testing.T) {
		mockStore := new(mocks.MockStore)
		ledger := service.NewStockLedger(mockStore)
		tx := new(mocks.MockTx)

		err := ledger.Ship(ctx, tx, "PRD0001", 15, 10, decimal.NewFromInt(100))

		var stockErr *service.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, "PRD0001", stockErr.ProductID)
		assert.Equal(t, 10, stockErr.Available)
		assert.Equal(t, 15, stockErr.Requested)
		mockStore.AssertNotCalled(t, "ApplyStockShipmentTx",
			ctx, tx, "PRD0001", 15, mock.Anything)
	})
}

func TestLedgerRemove(t *testing.T) {
	ctx := context.Background()

	mockStore := new(mocks.MockStore)
	ledger := service.NewStockLedger(mockStore)
	tx := new(mocks.MockTx)

	mockStore.On("DeleteStockEntryTx", ctx, tx, "PRD0001").
		Return(&models.StockEntry{ID: "INV0001", ProductID: "PRD0001", Quantity: 7}, nil).Once()

	removed, err := ledger.Remove(ctx, tx, "PRD0001")
	require.NoError(t, err)
	assert.Equal(t, 7, removed)
}

func TestLedgerAdjustLocation(t *testing.T) {
	ctx := context.Background()

	t.Run("updates label", func(t *testing.T) {
		mockStore := new(mocks.MockStore)
		ledger := service.NewStockLedger(mockStore)

		mockStore.On("UpdateStockLocation", ctx, "INV0001", "A-12").Return(nil).Once()

		err := ledger.AdjustLocation(ctx, "INV0001", "A-12")
		require.NoError(t, err)
	})

	t.Run("empty label rejected", func(t *testing.T) {
		mockStore := new(mocks.MockStore)
		ledger := service.NewStockLedger(mockStore)

		err := ledger.AdjustLocation(ctx, "INV0001", "")
		var validationErr *service.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}
