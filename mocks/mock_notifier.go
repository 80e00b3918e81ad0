package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"complitracker/internal/domain"
)

// MockNotifier is a mock implementation of port.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyStatusChanged(ctx context.Context, req *domain.SignatureRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
