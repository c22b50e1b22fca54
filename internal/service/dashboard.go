package service

import (
	"context"
	"fmt"

	"github.com/anr091/project-kapita/internal/models"

	"github.com/shopspring/decimal"
)

// DashboardStore is the read surface the summary view aggregates over.
type DashboardStore interface {
	CountSuppliers(ctx context.Context) (int, error)
	CountRetails(ctx context.Context) (int, error)
	CountProducts(ctx context.Context) (int, error)
	LatestCounterEntry(ctx context.Context) (*models.CounterEntry, error)
}

// DashboardService assembles the headline numbers for the landing view.
type DashboardService struct {
	store DashboardStore
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(store DashboardStore) *DashboardService {
	return &DashboardService{store: store}
}

// Summary returns registry counts plus the latest aggregate counter bucket.
// A repository with no counter history yet reads as zero items and zero value.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	suppliers, err := s.store.CountSuppliers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count suppliers: %w", err)
	}
	retails, err := s.store.CountRetails(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count retails: %w", err)
	}
	products, err := s.store.CountProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	summary := &models.DashboardSummary{
		Suppliers:  suppliers,
		Retails:    retails,
		Products:   products,
		TotalPrice: decimal.Zero,
	}

	latest, err := s.store.LatestCounterEntry(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read counter: %w", err)
	}
	if latest != nil {
		summary.Items = latest.TotalItems
		summary.TotalPrice = latest.TotalPrice
	}
	return summary, nil
}
