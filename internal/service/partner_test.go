package service_test

import (
	"context"
	"testing"

	"github.com/anr091/project-kapita/internal/models"
	"github.com/anr091/project-kapita/internal/service"
	"github.com/anr091/project-kapita/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateSupplier(t *testing.T) {
	ctx := context.Background()

	t.Run("allocates identifier", func(t *testing.T) {
		mockStore := new(mocks.MockStore)
		svc := service.NewPartnerService(mockStore, service.NewSequenceAllocator(mockStore))

		mockStore.On("IncrementSequence", mock.Anything, "supplier").Return(int64(3), true, nil).Once()
		mockStore.On("CreateSupplier", mock.Anything, mock.MatchedBy(func(s *models.Supplier) bool {
			return s.ID == "SUPP0003" && s.Name == "Acme"
		})).Return(nil).Once()

		sup, err := svc.CreateSupplier(ctx, &service.PartnerRequest{
			Name: "Acme", Address: "1 Depot Rd", Contact: "021-555",
		})
		require.NoError(t, err)
		assert.Equal(t, "SUPP0003", sup.ID)
		mockStore.AssertExpectations(t)
	})

	t.Run("blank name rejected", func(t *testing.T) {
		mockStore := new(mocks.MockStore)
		svc := service.NewPartnerService(mockStore, service.NewSequenceAllocator(mockStore))

		_, err := svc.CreateSupplier(ctx, &service.PartnerRequest{
			Name: "   ", Address: "1 Depot Rd", Contact: "021-555",
		})

		var validationErr *service.ValidationError
		assert.ErrorAs(t, err, &validationErr)
		mockStore.AssertNotCalled(t, "CreateSupplier", mock.Anything, mock.Anything)
	})
}

func TestCreateRetail(t *testing.T) {
	ctx := context.Background()

	mockStore := new(mocks.MockStore)
	svc := service.NewPartnerService(mockStore, service.NewSequenceAllocator(mockStore))

	mockStore.On("IncrementSequence", mock.Anything, "retail").Return(int64(15), true, nil).Once()
	mockStore.On("CreateRetail", mock.Anything, mock.MatchedBy(func(r *models.Retail) bool {
		return r.ID == "RET015" && r.Name == "Corner Shop"
	})).Return(nil).Once()

	r, err := svc.CreateRetail(ctx, &service.PartnerRequest{
		Name: "Corner Shop", Address: "12 High St", Contact: "021-777",
	})
	require.NoError(t, err)
	assert.Equal(t, "RET015", r.ID)
}
