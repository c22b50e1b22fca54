package mocks

import (
	"context"
	"time"

	"github.com/anr091/project-kapita/internal/models"
	"github.com/anr091/project-kapita/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockStore covers every storage interface the services depend on.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) BeginTx(ctx context.Context) (store.Tx, error) {
	args := m.Called(ctx)
	if tx := args.Get(0); tx != nil {
		return tx.(store.Tx), args.Error(1)
	}
	return nil, args.Error(1)
}

// Sequence counters

func (m *MockStore) IncrementSequence(ctx context.Context, kind string) (int64, bool, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockStore) SeedSequence(ctx context.Context, kind string, lastValue int64) error {
	args := m.Called(ctx, kind, lastValue)
	return args.Error(0)
}

func (m *MockStore) LastIdentifier(ctx context.Context, kind string) (string, error) {
	args := m.Called(ctx, kind)
	return args.String(0), args.Error(1)
}

// Products

func (m *MockStore) CreateProductTx(ctx context.Context, tx store.Tx, p *models.Product) error {
	args := m.Called(ctx, tx, p)
	return args.Error(0)
}

func (m *MockStore) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*models.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) GetProducts(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	if ps := args.Get(0); ps != nil {
		return ps.([]models.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) GetActiveProducts(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	if ps := args.Get(0); ps != nil {
		return ps.([]models.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	args := m.Called(ctx, ids)
	if ps := args.Get(0); ps != nil {
		return ps.([]models.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) UpdateProductTx(ctx context.Context, tx store.Tx, p *models.Product) error {
	args := m.Called(ctx, tx, p)
	return args.Error(0)
}

func (m *MockStore) DeleteProductTx(ctx context.Context, tx store.Tx, id string) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockStore) CountProducts(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// Stock ledger

func (m *MockStore) CreateStockEntryTx(ctx context.Context, tx store.Tx, e *models.StockEntry) error {
	args := m.Called(ctx, tx, e)
	return args.Error(0)
}

func (m *MockStore) GetStockEntry(ctx context.Context, productID string) (*models.StockEntry, error) {
	args := m.Called(ctx, productID)
	if e := args.Get(0); e != nil {
		return e.(*models.StockEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) GetStockEntries(ctx context.Context) ([]models.StockEntry, error) {
	args := m.Called(ctx)
	if es := args.Get(0); es != nil {
		return es.([]models.StockEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) LockStockEntriesTx(ctx context.Context, tx store.Tx, productIDs []string) ([]models.StockEntry, error) {
	args := m.Called(ctx, tx, productIDs)
	if es := args.Get(0); es != nil {
		return es.([]models.StockEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) ApplyStockReceiptTx(ctx context.Context, tx store.Tx, productID string, quantity int, valuationDelta decimal.Decimal, receivedAt time.Time) error {
	args := m.Called(ctx, tx, productID, quantity, valuationDelta, receivedAt)
	return args.Error(0)
}

func (m *MockStore) ApplyStockShipmentTx(ctx context.Context, tx store.Tx, productID string, quantity int, valuationDelta decimal.Decimal) error {
	args := m.Called(ctx, tx, productID, quantity, valuationDelta)
	return args.Error(0)
}

func (m *MockStore) SetStockValuationTx(ctx context.Context, tx store.Tx, productID string, valuation decimal.Decimal) error {
	args := m.Called(ctx, tx, productID, valuation)
	return args.Error(0)
}

func (m *MockStore) UpdateStockLocation(ctx context.Context, stockID, location string) error {
	args := m.Called(ctx, stockID, location)
	return args.Error(0)
}

func (m *MockStore) DeleteStockEntryTx(ctx context.Context, tx store.Tx, productID string) (*models.StockEntry, error) {
	args := m.Called(ctx, tx, productID)
	if e := args.Get(0); e != nil {
		return e.(*models.StockEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

// Aggregate counter

func (m *MockStore) LatestCounterEntryTx(ctx context.Context, tx store.Tx) (*models.CounterEntry, error) {
	args := m.Called(ctx, tx)
	if e := args.Get(0); e != nil {
		return e.(*models.CounterEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) LatestCounterEntry(ctx context.Context) (*models.CounterEntry, error) {
	args := m.Called(ctx)
	if e := args.Get(0); e != nil {
		return e.(*models.CounterEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) InsertCounterEntryTx(ctx context.Context, tx store.Tx, e *models.CounterEntry) error {
	args := m.Called(ctx, tx, e)
	return args.Error(0)
}

func (m *MockStore) AdjustCounterEntryTx(ctx context.Context, tx store.Tx, id string, delta int, totalPrice decimal.Decimal) (bool, error) {
	args := m.Called(ctx, tx, id, delta, totalPrice)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) SetCounterTotalPrice(ctx context.Context, id string, totalPrice decimal.Decimal) error {
	args := m.Called(ctx, id, totalPrice)
	return args.Error(0)
}

func (m *MockStore) ListCounterEntries(ctx context.Context) ([]models.CounterEntry, error) {
	args := m.Called(ctx)
	if es := args.Get(0); es != nil {
		return es.([]models.CounterEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) SumValuationsTx(ctx context.Context, tx store.Tx) (decimal.Decimal, error) {
	args := m.Called(ctx, tx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockStore) SumValuations(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// Arrival reports

func (m *MockStore) InsertArrivalTx(ctx context.Context, tx store.Tx, r *models.ArrivalReport) error {
	args := m.Called(ctx, tx, r)
	return args.Error(0)
}

func (m *MockStore) InsertArrivalLineTx(ctx context.Context, tx store.Tx, l *models.ArrivalLine) error {
	args := m.Called(ctx, tx, l)
	return args.Error(0)
}

func (m *MockStore) GetArrivalByID(ctx context.Context, id string) (*models.ArrivalReport, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*models.ArrivalReport), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) GetArrivals(ctx context.Context) ([]models.ArrivalReport, error) {
	args := m.Called(ctx)
	if rs := args.Get(0); rs != nil {
		return rs.([]models.ArrivalReport), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) GetArrivalLines(ctx context.Context, arrivalID string) ([]models.ArrivalLine, error) {
	args := m.Called(ctx, arrivalID)
	if ls := args.Get(0); ls != nil {
		return ls.([]models.ArrivalLine), args.Error(1)
	}
	return nil, args.Error(1)
}

// Shipments

func (m *MockStore) InsertShipmentTx(ctx context.Context, tx store.Tx, sh *models.Shipment) error {
	args := m.Called(ctx, tx, sh)
	return args.Error(0)
}

func (m *MockStore) InsertShipmentLineTx(ctx context.Context, tx store.Tx, l *models.ShipmentLine) error {
	args := m.Called(ctx, tx, l)
	return args.Error(0)
}

func (m *MockStore) GetShipmentByID(ctx context.Context, id string) (*models.Shipment, error) {
	args := m.Called(ctx, id)
	if sh := args.Get(0); sh != nil {
		return sh.(*models.Shipment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) GetShipments(ctx context.Context) ([]models.Shipment, error) {
	args := m.Called(ctx)
	if shs := args.Get(0); shs != nil {
		return shs.([]models.Shipment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) GetShipmentLines(ctx context.Context, shipmentID string) ([]models.ShipmentLine, error) {
	args := m.Called(ctx, shipmentID)
	if ls := args.Get(0); ls != nil {
		return ls.([]models.ShipmentLine), args.Error(1)
	}
	return nil, args.Error(1)
}

// Suppliers and retails

func (m *MockStore) CreateSupplier(ctx context.Context, sup *models.Supplier) error {
	args := m.Called(ctx, sup)
	return args.Error(0)
}

func (m *MockStore) GetSupplierByID(ctx context.Context, id string) (*models.Supplier, error) {
	args := m.Called(ctx, id)
	if sup := args.Get(0); sup != nil {
		return sup.(*models.Supplier), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) GetSuppliers(ctx context.Context) ([]models.Supplier, error) {
	args := m.Called(ctx)
	if sups := args.Get(0); sups != nil {
		return sups.([]models.Supplier), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) UpdateSupplier(ctx context.Context, sup *models.Supplier) error {
	args := m.Called(ctx, sup)
	return args.Error(0)
}

func (m *MockStore) DeleteSupplier(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) CountSuppliers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) CreateRetail(ctx context.Context, r *models.Retail) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockStore) GetRetailByID(ctx context.Context, id string) (*models.Retail, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*models.Retail), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) GetRetails(ctx context.Context) ([]models.Retail, error) {
	args := m.Called(ctx)
	if rs := args.Get(0); rs != nil {
		return rs.([]models.Retail), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) UpdateRetail(ctx context.Context, r *models.Retail) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockStore) DeleteRetail(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) CountRetails(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// Audit trail

func (m *MockStore) InsertAuditEntry(ctx context.Context, e *models.AuditEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockStore) ListAuditEntries(ctx context.Context) ([]models.AuditEntry, error) {
	args := m.Called(ctx)
	if es := args.Get(0); es != nil {
		return es.([]models.AuditEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

// Processed events

func (m *MockStore) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	args := m.Called(ctx, eventID, eventType)
	return args.Error(0)
}
