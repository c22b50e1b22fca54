package mocks

import (
	"context"

	"github.com/anr091/project-kapita/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockEventPublisher stands in for the Kafka publisher.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishProductCreated(ctx context.Context, event *models.ProductCreatedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishProductUpdated(ctx context.Context, event *models.ProductUpdatedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishProductDeleted(ctx context.Context, event *models.ProductDeletedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishStockReceived(ctx context.Context, event *models.StockReceivedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishStockShipped(ctx context.Context, event *models.StockShippedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockStockCache stands in for the Redis quantity mirror.
type MockStockCache struct {
	mock.Mock
}

func (m *MockStockCache) SetStock(ctx context.Context, productID string, quantity int) error {
	args := m.Called(ctx, productID, quantity)
	return args.Error(0)
}

func (m *MockStockCache) DeleteStock(ctx context.Context, productID string) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *MockStockCache) GetStock(ctx context.Context, productID string) (int, bool, error) {
	args := m.Called(ctx, productID)
	return args.Int(0), args.Bool(1), args.Error(2)
}
