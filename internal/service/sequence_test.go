package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/anr091/project-kapita/internal/service"
	"github.com/anr091/project-kapita/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatID(t *testing.T) {
	assert.Equal(t, "PRD0001", service.FormatID(service.KindProduct, 1))
	assert.Equal(t, "INV0042", service.FormatID(service.KindStock, 42))
	assert.Equal(t, "ARIV00007", service.FormatID(service.KindArrival, 7))
	assert.Equal(t, "SHP00123", service.FormatID(service.KindShipment, 123))
	assert.Equal(t, "SUPP0009", service.FormatID(service.KindSupplier, 9))
	assert.Equal(t, "RET015", service.FormatID(service.KindRetail, 15))
	assert.Equal(t, "ITMCHRT000000001", service.FormatID(service.KindCounter, 1))
}

func TestFormatIDOverflowsPadding(t *testing.T) {
	// Values past the pad width keep growing instead of wrapping.
	assert.Equal(t, "PRD10000", service.FormatID(service.KindProduct, 10000))
}

func TestParseSuffix(t *testing.T) {
	t.Run("valid identifier", func(t *testing.T) {
		value, err := service.ParseSuffix(service.KindProduct, "PRD0037")
		require.NoError(t, err)
		assert.Equal(t, int64(37), value)
	})

	t.Run("missing prefix", func(t *testing.T) {
		_, err := service.ParseSuffix(service.KindProduct, "XYZ0037")
		assert.ErrorIs(t, err, service.ErrSequenceMalformed)
	})

	t.Run("non-numeric suffix", func(t *testing.T) {
		_, err := service.ParseSuffix(service.KindProduct, "PRDabcd")
		assert.ErrorIs(t, err, service.ErrSequenceMalformed)
	})

	t.Run("bare prefix", func(t *testing.T) {
		_, err := service.ParseSuffix(service.KindProduct, "PRD")
		assert.ErrorIs(t, err, service.ErrSequenceMalformed)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := service.ParseSuffix("warehouse", "WH0001")
		assert.Error(t, err)
	})
}

func TestNextID(t *testing.T) {
	ctx := context.Background()

	t.Run("seeded counter increments", func(t *testing.T) {
		mockStore := new(mocks.MockStore)
		allocator := service.NewSequenceAllocator(mockStore)

		mockStore.On("IncrementSequence", ctx, "product").Return(int64(8), true, nil).Once()

		id, err := allocator.NextID(ctx, service.KindProduct)
		require.NoError(t, err)
		assert.Equal(t, "PRD0008", id)
		mockStore.AssertExpectations(t)
	})

	t.Run("unseeded counter seeds from highest identifier", func(t *testing.T) {
		mockStore := new(mocks.MockStore)
		allocator := service.NewSequenceAllocator(mockStore)

		mockStore.On("IncrementSequence", ctx, "product").Return(int64(0), false, nil).Once()
		mockStore.On("LastIdentifier", ctx, "product").Return("PRD0007", nil).Once()
		mockStore.On("SeedSequence", ctx, "product", int64(7)).Return(nil).Once()
		mockStore.On("IncrementSequence", ctx, "product").Return(int64(8), true, nil).Once()

		id, err := allocator.NextID(ctx, service.KindProduct)
		require.NoError(t, err)
		assert.Equal(t, "PRD0008", id)
		mockStore.AssertExpectations(t)
	})

	t.Run("empty table seeds from zero", func(t *testing.T) {
		mockStore := new(mocks.MockStore)
		allocator := service.NewSequenceAllocator(mockStore)

		mockStore.On("IncrementSequence", ctx, "supplier").Return(int64(0), false, nil).Once()
		mockStore.On("LastIdentifier", ctx, "supplier").Return("", nil).Once()
		mockStore.On("SeedSequence", ctx, "supplier", int64(0)).Return(nil).Once()
		mockStore.On("IncrementSequence", ctx, "supplier").Return(int64(1), true, nil).Once()

		id, err := allocator.NextID(ctx, service.KindSupplier)
		require.NoError(t, err)
		assert.Equal(t, "SUPP0001", id)
		mockStore.AssertExpectations(t)
	})

	t.Run("malformed highest identifier fails allocation", func(t *testing.T) {
		mockStore := new(mocks.MockStore)
		allocator := service.NewSequenceAllocator(mockStore)

		mockStore.On("IncrementSequence", ctx, "product").Return(int64(0), false, nil).Once()
		mockStore.On("LastIdentifier", ctx, "product").Return("PRD00XY", nil).Once()

		_, err := allocator.NextID(ctx, service.KindProduct)
		assert.ErrorIs(t, err, service.ErrSequenceMalformed)
		mockStore.AssertNotCalled(t, "SeedSequence", ctx, "product", int64(0))
	})

	t.Run("unknown kind", func(t *testing.T) {
		mockStore := new(mocks.MockStore)
		allocator := service.NewSequenceAllocator(mockStore)

		_, err := allocator.NextID(ctx, "warehouse")
		assert.Error(t, err)
	})

	t.Run("storage error propagates", func(t *testing.T) {
		mockStore := new(mocks.MockStore)
		allocator := service.NewSequenceAllocator(mockStore)

		mockStore.On("IncrementSequence", ctx, "product").
			Return(int64(0), false, errors.New("connection reset")).Once()

		_, err := allocator.NextID(ctx, service.KindProduct)
		assert.Error(t, err)
	})
}
