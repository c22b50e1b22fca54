package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockTx stands in for a database transaction handle.
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}
