package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/anr091/project-kapita/internal/models"
)

// InsertArrivalTx persists an arrival report header within a transaction
func (s *Store) InsertArrivalTx(ctx context.Context, tx Tx, r *models.ArrivalReport) error {
	query := `
		INSERT INTO arrival_reports (id, supplier_id, received_by, arrived_at, total_price)
		VALUES (:id, :supplier_id, :received_by, :arrived_at, :total_price)`

	_, err := sqlTx(tx).NamedExecContext(ctx, query, r)
	return err
}

// InsertArrivalLineTx persists one received line item
func (s *Store) InsertArrivalLineTx(ctx context.Context, tx Tx, l *models.ArrivalLine) error {
	query := `
		INSERT INTO arrival_lines (arrival_id, product_id, quantity, buy_price, subtotal)
		VALUES (:arrival_id, :product_id, :quantity, :buy_price, :subtotal)`

	_, err := sqlTx(tx).NamedExecContext(ctx, query, l)
	return err
}

// GetArrivalByID retrieves an arrival report by ID
func (s *Store) GetArrivalByID(ctx context.Context, id string) (*models.ArrivalReport, error) {
	var report models.ArrivalReport
	err := s.db.GetContext(ctx, &report, "SELECT * FROM arrival_reports WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("arrival report not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// GetArrivals retrieves all arrival reports, newest first
func (s *Store) GetArrivals(ctx context.Context) ([]models.ArrivalReport, error) {
	var reports []models.ArrivalReport
	err := s.db.SelectContext(ctx, &reports,
		"SELECT * FROM arrival_reports ORDER BY arrived_at DESC")
	return reports, err
}

// GetArrivalLines retrieves the line items of one arrival report
func (s *Store) GetArrivalLines(ctx context.Context, arrivalID string) ([]models.ArrivalLine, error) {
	var lines []models.ArrivalLine
	err := s.db.SelectContext(ctx, &lines,
		"SELECT * FROM arrival_lines WHERE arrival_id = $1 ORDER BY id", arrivalID)
	return lines, err
}

// InsertShipmentTx persists a shipment header within a transaction
func (s *Store) InsertShipmentTx(ctx context.Context, tx Tx, sh *models.Shipment) error {
	query := `
		INSERT INTO shipments (id, retail_id, retail_name, retail_address, created_by, shipped_at, total_price)
		VALUES (:id, :retail_id, :retail_name, :retail_address, :created_by, :shipped_at, :total_price)`

	_, err := sqlTx(tx).NamedExecContext(ctx, query, sh)
	return err
}

// InsertShipmentLineTx persists one shipped line item
func (s *Store) InsertShipmentLineTx(ctx context.Context, tx Tx, l *models.ShipmentLine) error {
	query := `
		INSERT INTO shipment_lines (shipment_id, product_id, quantity, sell_price, subtotal)
		VALUES (:shipment_id, :product_id, :quantity, :sell_price, :subtotal)`

	_, err := sqlTx(tx).NamedExecContext(ctx, query, l)
	return err
}

// GetShipmentByID retrieves a shipment by ID
func (s *Store) GetShipmentByID(ctx context.Context, id string) (*models.Shipment, error) {
	var shipment models.Shipment
	err := s.db.GetContext(ctx, &shipment, "SELECT * FROM shipments WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("shipment not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

// GetShipments retrieves all shipments, newest first
func (s *Store) GetShipments(ctx context.Context) ([]models.Shipment, error) {
	var shipments []models.Shipment
	err := s.db.SelectContext(ctx, &shipments,
		"SELECT * FROM shipments ORDER BY shipped_at DESC")
	return shipments, err
}

// GetShipmentLines retrieves the line items of one shipment
func (s *Store) GetShipmentLines(ctx context.Context, shipmentID string) ([]models.ShipmentLine, error) {
	var lines []models.ShipmentLine
	err := s.db.SelectContext(ctx, &lines,
		"SELECT * FROM shipment_lines WHERE shipment_id = $1 ORDER BY id", shipmentID)
	return lines, err
}
