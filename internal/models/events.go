package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeProductCreated = "PRODUCT_CREATED"
	EventTypeProductUpdated = "PRODUCT_UPDATED"
	EventTypeProductDeleted = "PRODUCT_DELETED"
	EventTypeStockReceived  = "STOCK_RECEIVED"
	EventTypeStockShipped   = "STOCK_SHIPPED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// ProductCreatedEvent published when a product and its ledger row are created
type ProductCreatedEvent struct {
	BaseEvent
	ProductID string `json:"product_id"`
	StockID   string `json:"stock_id"`
	ActorID   string `json:"actor_id"`
}

// ProductUpdatedEvent published when product attributes change
type ProductUpdatedEvent struct {
	BaseEvent
	ProductID string `json:"product_id"`
	ActorID   string `json:"actor_id"`
}

// ProductDeletedEvent published when a product and its ledger row are removed
type ProductDeletedEvent struct {
	BaseEvent
	ProductID       string `json:"product_id"`
	RemovedQuantity int    `json:"removed_quantity"`
	ActorID         string `json:"actor_id"`
}

// StockReceivedEvent published after an arrival report commits
type StockReceivedEvent struct {
	BaseEvent
	ArrivalID  string          `json:"arrival_id"`
	SupplierID string          `json:"supplier_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Lines      []StockLineData `json:"lines"`
}

// StockShippedEvent published after a shipment commits
type StockShippedEvent struct {
	BaseEvent
	ShipmentID string          `json:"shipment_id"`
	RetailID   string          `json:"retail_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Lines      []StockLineData `json:"lines"`
}

// StockLineData represents one affected product in a stock event. Quantity is
// the on-hand count after the transaction, so consumers can mirror it without
// replaying deltas.
type StockLineData struct {
	ProductID string `json:"product_id"`
	Delta     int    `json:"delta"`
	Quantity  int    `json:"quantity"`
}
