package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/anr091/project-kapita/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// Tx is the transaction handle services carry between store calls.
// Satisfied by *sqlx.Tx; mocks supply their own.
type Tx interface {
	Commit() error
	Rollback() error
}

// BeginTx starts a transaction. Workflow services run their whole
// multi-record mutation inside one of these.
func (s *Store) BeginTx(ctx context.Context) (Tx, error) {
	return s.db.BeginTxx(ctx, nil)
}

func sqlTx(tx Tx) *sqlx.Tx {
	return tx.(*sqlx.Tx)
}

// CreateProductTx inserts a product within a transaction
func (s *Store) CreateProductTx(ctx context.Context, tx Tx, p *models.Product) error {
	query := `
		INSERT INTO products (id, barcode, name, description, brand, category, abc_class,
			sell_unit, storage_unit, dimension_ref, buy_price, sell_price, status)
		VALUES (:id, :barcode, :name, :description, :brand, :category, :abc_class,
			:sell_unit, :storage_unit, :dimension_ref, :buy_price, :sell_price, :status)`

	_, err := sqlTx(tx).NamedExecContext(ctx, query, p)
	return err
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProducts retrieves all products
func (s *Store) GetProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products, "SELECT * FROM products ORDER BY id")
	return products, err
}

// GetActiveProducts retrieves products that have not been deactivated
func (s *Store) GetActiveProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products,
		"SELECT * FROM products WHERE status = $1 ORDER BY id", models.ProductStatusActive)
	return products, err
}

// GetProductsByIDs retrieves multiple products by IDs
func (s *Store) GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM products WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var products []models.Product
	err = s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// UpdateProductTx overwrites a product's mutable attributes within a transaction
func (s *Store) UpdateProductTx(ctx context.Context, tx Tx, p *models.Product) error {
	query := `
		UPDATE products SET barcode = :barcode, name = :name, description = :description,
			brand = :brand, category = :category, abc_class = :abc_class,
			sell_unit = :sell_unit, storage_unit = :storage_unit,
			dimension_ref = :dimension_ref, buy_price = :buy_price,
			sell_price = :sell_price, status = :status
		WHERE id = :id`

	res, err := sqlTx(tx).NamedExecContext(ctx, query, p)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("product not found: %s", p.ID)
	}
	return nil
}

// DeleteProductTx removes a product within a transaction
func (s *Store) DeleteProductTx(ctx context.Context, tx Tx, id string) error {
	res, err := sqlTx(tx).ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("product not found: %s", id)
	}
	return nil
}

// CountProducts returns the number of catalog products
func (s *Store) CountProducts(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM products")
	return count, err
}
