package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/anr091/project-kapita/internal/models"
	"github.com/anr091/project-kapita/internal/util"

	"go.uber.org/zap"
)

// PartnerStore is the storage capability of the supplier/retail registry.
type PartnerStore interface {
	CreateSupplier(ctx context.Context, sup *models.Supplier) error
	GetSupplierByID(ctx context.Context, id string) (*models.Supplier, error)
	GetSuppliers(ctx context.Context) ([]models.Supplier, error)
	UpdateSupplier(ctx context.Context, sup *models.Supplier) error
	DeleteSupplier(ctx context.Context, id string) error
	CreateRetail(ctx context.Context, r *models.Retail) error
	GetRetailByID(ctx context.Context, id string) (*models.Retail, error)
	GetRetails(ctx context.Context) ([]models.Retail, error)
	UpdateRetail(ctx context.Context, r *models.Retail) error
	DeleteRetail(ctx context.Context, id string) error
}

// PartnerService manages the supplier and retail registries that the
// receiving and shipping workflows reference.
type PartnerService struct {
	store     PartnerStore
	allocator *SequenceAllocator
	logger    *zap.Logger
}

// NewPartnerService creates a new partner service
func NewPartnerService(store PartnerStore, allocator *SequenceAllocator) *PartnerService {
	return &PartnerService{
		store:     store,
		allocator: allocator,
		logger:    util.GetLogger(),
	}
}

// PartnerRequest carries the mutable attributes of a supplier or retail.
type PartnerRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address" binding:"required"`
	Contact string `json:"contact" binding:"required"`
}

func (r *PartnerRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be blank"}
	}
	return nil
}

// CreateSupplier registers a new supplier with an allocated identifier.
func (s *PartnerService) CreateSupplier(ctx context.Context, req *PartnerRequest) (*models.Supplier, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	id, err := s.allocator.NextID(ctx, KindSupplier)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate supplier id: %w", err)
	}
	sup := &models.Supplier{ID: id, Name: req.Name, Address: req.Address, Contact: req.Contact}
	if err := s.store.CreateSupplier(ctx, sup); err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}
	s.logger.Info("Supplier created", zap.String("supplier_id", id), zap.String("name", req.Name))
	return sup, nil
}

// GetSupplier returns one supplier
func (s *PartnerService) GetSupplier(ctx context.Context, id string) (*models.Supplier, error) {
	return s.store.GetSupplierByID(ctx, id)
}

// ListSuppliers returns all suppliers
func (s *PartnerService) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	return s.store.GetSuppliers(ctx)
}

// UpdateSupplier overwrites a supplier's attributes
func (s *PartnerService) UpdateSupplier(ctx context.Context, id string, req *PartnerRequest) (*models.Supplier, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	sup := &models.Supplier{ID: id, Name: req.Name, Address: req.Address, Contact: req.Contact}
	if err := s.store.UpdateSupplier(ctx, sup); err != nil {
		return nil, err
	}
	return sup, nil
}

// DeleteSupplier removes a supplier. Past arrival reports keep the snapshotted
// supplier reference.
func (s *PartnerService) DeleteSupplier(ctx context.Context, id string) error {
	if err := s.store.DeleteSupplier(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Supplier deleted", zap.String("supplier_id", id))
	return nil
}

// CreateRetail registers a new retail destination with an allocated identifier.
func (s *PartnerService) CreateRetail(ctx context.Context, req *PartnerRequest) (*models.Retail, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	id, err := s.allocator.NextID(ctx, KindRetail)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate retail id: %w", err)
	}
	r := &models.Retail{ID: id, Name: req.Name, Address: req.Address, Contact: req.Contact}
	if err := s.store.CreateRetail(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to create retail: %w", err)
	}
	s.logger.Info("Retail created", zap.String("retail_id", id), zap.String("name", req.Name))
	return r, nil
}

// GetRetail returns one retail destination
func (s *PartnerService) GetRetail(ctx context.Context, id string) (*models.Retail, error) {
	return s.store.GetRetailByID(ctx, id)
}

// ListRetails returns all retail destinations
func (s *PartnerService) ListRetails(ctx context.Context) ([]models.Retail, error) {
	return s.store.GetRetails(ctx)
}

// UpdateRetail overwrites a retail destination's attributes
func (s *PartnerService) UpdateRetail(ctx context.Context, id string, req *PartnerRequest) (*models.Retail, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	r := &models.Retail{ID: id, Name: req.Name, Address: req.Address, Contact: req.Contact}
	if err := s.store.UpdateRetail(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// DeleteRetail removes a retail destination. Past shipments keep the
// snapshotted name and address.
func (s *PartnerService) DeleteRetail(ctx context.Context, id string) error {
	if err := s.store.DeleteRetail(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Retail deleted", zap.String("retail_id", id))
	return nil
}
