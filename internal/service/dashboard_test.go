package service_test

import (
	"context"
	"testing"

	"github.com/anr091/project-kapita/internal/models"
	"github.com/anr091/project-kapita/internal/service"
	"github.com/anr091/project-kapita/internal/service/mocks"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("aggregates counts and latest counter bucket", func(t *testing.T) {
		mockStore := new(mocks.MockStore)
		svc := service.NewDashboardService(mockStore)

		mockStore.On("CountSuppliers", ctx).Return(3, nil).Once()
		mockStore.On("CountRetails", ctx).Return(5, nil).Once()
		mockStore.On("CountProducts", ctx).Return(42, nil).Once()
		mockStore.On("LatestCounterEntry", ctx).Return(&models.CounterEntry{
			TotalItems: 120,
			TotalPrice: decimal.NewFromInt(98000),
		}, nil).Once()

		summary, err := svc.Summary(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, summary.Suppliers)
		assert.Equal(t, 5, summary.Retails)
		assert.Equal(t, 42, summary.Products)
		assert.Equal(t, 120, summary.Items)
		assert.True(t, summary.TotalPrice.Equal(decimal.NewFromInt(98000)))
	})

	t.Run("empty counter series reads as zero", func(t *testing.T) {
		mockStore := new(mocks.MockStore)
		svc := service.NewDashboardService(mockStore)

		mockStore.On("CountSuppliers", ctx).Return(0, nil).Once()
		mockStore.On("CountRetails", ctx).Return(0, nil).Once()
		mockStore.On("CountProducts", ctx).Return(0, nil).Once()
		mockStore.On("LatestCounterEntry", ctx).Return(nil, nil).Once()

		summary, err := svc.Summary(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, summary.Items)
		assert.True(t, summary.TotalPrice.IsZero())
	})
}
