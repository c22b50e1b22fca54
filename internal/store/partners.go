package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/anr091/project-kapita/internal/models"
)

// CreateSupplier inserts a supplier
func (s *Store) CreateSupplier(ctx context.Context, sup *models.Supplier) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO suppliers (id, name, address, contact)
		VALUES (:id, :name, :address, :contact)`, sup)
	return err
}

// GetSupplierByID retrieves a supplier by ID
func (s *Store) GetSupplierByID(ctx context.Context, id string) (*models.Supplier, error) {
	var sup models.Supplier
	err := s.db.GetContext(ctx, &sup, "SELECT * FROM suppliers WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("supplier not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &sup, nil
}

// GetSuppliers retrieves all suppliers
func (s *Store) GetSuppliers(ctx context.Context) ([]models.Supplier, error) {
	var sups []models.Supplier
	err := s.db.SelectContext(ctx, &sups, "SELECT * FROM suppliers ORDER BY id")
	return sups, err
}

// UpdateSupplier overwrites supplier attributes
func (s *Store) UpdateSupplier(ctx context.Context, sup *models.Supplier) error {
	res, err := s.db.NamedExecContext(ctx, `
		UPDATE suppliers SET name = :name, address = :address, contact = :contact
		WHERE id = :id`, sup)
	if err != nil {
		return err
	}
	return requireRow(res, sup.ID)
}

// DeleteSupplier removes a supplier
func (s *Store) DeleteSupplier(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM suppliers WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

// CountSuppliers returns the number of registered suppliers
func (s *Store) CountSuppliers(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM suppliers")
	return count, err
}

// CreateRetail inserts a retail destination
func (s *Store) CreateRetail(ctx context.Context, r *models.Retail) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO retails (id, name, address, contact)
		VALUES (:id, :name, :address, :contact)`, r)
	return err
}

// GetRetailByID retrieves a retail destination by ID
func (s *Store) GetRetailByID(ctx context.Context, id string) (*models.Retail, error) {
	var r models.Retail
	err := s.db.GetContext(ctx, &r, "SELECT * FROM retails WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("retail not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRetails retrieves all retail destinations
func (s *Store) GetRetails(ctx context.Context) ([]models.Retail, error) {
	var rs []models.Retail
	err := s.db.SelectContext(ctx, &rs, "SELECT * FROM retails ORDER BY id")
	return rs, err
}

// UpdateRetail overwrites retail attributes
func (s *Store) UpdateRetail(ctx context.Context, r *models.Retail) error {
	res, err := s.db.NamedExecContext(ctx, `
		UPDATE retails SET name = :name, address = :address, contact = :contact
		WHERE id = :id`, r)
	if err != nil {
		return err
	}
	return requireRow(res, r.ID)
}

// DeleteRetail removes a retail destination
func (s *Store) DeleteRetail(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM retails WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

// CountRetails returns the number of registered retail destinations
func (s *Store) CountRetails(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM retails")
	return count, err
}
