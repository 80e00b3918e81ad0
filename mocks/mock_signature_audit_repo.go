package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"complitracker/internal/domain"
)

// MockSignatureAuditRepo is a mock implementation of port.SignatureAuditRepository.
type MockSignatureAuditRepo struct {
	mock.Mock
}

func (m *MockSignatureAuditRepo) Create(ctx context.Context, event *domain.SignatureAuditEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockSignatureAuditRepo) ListByRequest(ctx context.Context, requestID uuid.UUID, offset, limit int) ([]domain.SignatureAuditEvent, int, error) {
	args := m.Called(ctx, requestID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.SignatureAuditEvent), args.Int(1), args.Error(2)
}
