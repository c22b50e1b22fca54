package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog product
type Product struct {
	ID           string          `db:"id" json:"id"`
	Barcode      string          `db:"barcode" json:"barcode"`
	Name         string          `db:"name" json:"name"`
	Description  string          `db:"description" json:"description"`
	Brand        string          `db:"brand" json:"brand"`
	Category     string          `db:"category" json:"category"`
	ABCClass     string          `db:"abc_class" json:"abc_class"`
	SellUnit     string          `db:"sell_unit" json:"sell_unit"`
	StorageUnit  string          `db:"storage_unit" json:"storage_unit"`
	DimensionRef string          `db:"dimension_ref" json:"dimension_ref"`
	BuyPrice     decimal.Decimal `db:"buy_price" json:"buy_price"`
	SellPrice    decimal.Decimal `db:"sell_price" json:"sell_price"`
	Status       string          `db:"status" json:"status"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// Product statuses
const (
	ProductStatusActive   = "ACTIVE"
	ProductStatusInactive = "INACTIVE"
)

// StockEntry is the per-product ledger row: quantity on hand plus a running
// notional valuation. The valuation is incremented and decremented alongside
// quantity changes, not recomputed as quantity times price.
type StockEntry struct {
	ID           string          `db:"id" json:"id"`
	ProductID    string          `db:"product_id" json:"product_id"`
	Quantity     int             `db:"quantity" json:"quantity"`
	Location     string          `db:"location" json:"location"`
	LastReceived *time.Time      `db:"last_received" json:"last_received,omitempty"`
	Valuation    decimal.Decimal `db:"valuation" json:"valuation"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// CounterEntry is one day-bucket of the aggregate counter series. TotalItems
// is delta-accumulated; TotalPrice is recomputed from the ledger on every
// update.
type CounterEntry struct {
	ID         string          `db:"id" json:"id"`
	Date       string          `db:"bucket_date" json:"date"`
	TotalItems int             `db:"total_items" json:"total_items"`
	TotalPrice decimal.Decimal `db:"total_price" json:"total_price"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// ArrivalReport records one receiving event. Immutable after creation.
type ArrivalReport struct {
	ID         string          `db:"id" json:"id"`
	SupplierID string          `db:"supplier_id" json:"supplier_id"`
	ReceivedBy string          `db:"received_by" json:"received_by"`
	ArrivedAt  time.Time       `db:"arrived_at" json:"arrived_at"`
	TotalPrice decimal.Decimal `db:"total_price" json:"total_price"`
}

// ArrivalLine is a received line item owned by its ArrivalReport.
type ArrivalLine struct {
	ID        int64           `db:"id" json:"-"`
	ArrivalID string          `db:"arrival_id" json:"arrival_id"`
	ProductID string          `db:"product_id" json:"product_id"`
	Quantity  int             `db:"quantity" json:"quantity"`
	BuyPrice  decimal.Decimal `db:"buy_price" json:"buy_price"`
	Subtotal  decimal.Decimal `db:"subtotal" json:"subtotal"`
}

// Shipment records one shipping event to a retail destination. The retail
// name and address are snapshotted at creation time.
type Shipment struct {
	ID            string          `db:"id" json:"id"`
	RetailID      string          `db:"retail_id" json:"retail_id"`
	RetailName    string          `db:"retail_name" json:"retail_name"`
	RetailAddress string          `db:"retail_address" json:"retail_address"`
	CreatedBy     string          `db:"created_by" json:"created_by"`
	ShippedAt     time.Time       `db:"shipped_at" json:"shipped_at"`
	TotalPrice    decimal.Decimal `db:"total_price" json:"total_price"`
}

// ShipmentLine is a shipped line item owned by its Shipment.
type ShipmentLine struct {
	ID         int64           `db:"id" json:"-"`
	ShipmentID string          `db:"shipment_id" json:"shipment_id"`
	ProductID  string          `db:"product_id" json:"product_id"`
	Quantity   int             `db:"quantity" json:"quantity"`
	SellPrice  decimal.Decimal `db:"sell_price" json:"sell_price"`
	Subtotal   decimal.Decimal `db:"subtotal" json:"subtotal"`
}

// AuditEntry is one append-only trace of a product mutation.
type AuditEntry struct {
	ID        int64     `db:"id" json:"-"`
	ActorID   string    `db:"actor_id" json:"actor_id"`
	Action    string    `db:"action" json:"action"`
	ProductID string    `db:"product_id" json:"product_id"`
	At        time.Time `db:"at" json:"at"`
}

// Audit actions
const (
	AuditActionCreate = "create"
	AuditActionUpdate = "update"
	AuditActionDelete = "delete"
)

// Supplier is a goods source registered for arrival reports.
type Supplier struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   string    `db:"address" json:"address"`
	Contact   string    `db:"contact" json:"contact"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Retail is a shipping destination.
type Retail struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   string    `db:"address" json:"address"`
	Contact   string    `db:"contact" json:"contact"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DashboardSummary aggregates the headline numbers for the landing view.
type DashboardSummary struct {
	Suppliers  int             `json:"suppliers"`
	Retails    int             `json:"retails"`
	Products   int             `json:"products"`
	Items      int             `json:"items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// ProcessedEvent for consumer idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
