package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"complitracker/internal/domain"
)

// MockSignatureRequestRepo is a mock implementation of port.SignatureRequestRepository.
type MockSignatureRequestRepo struct {
	mock.Mock
}

func (m *MockSignatureRequestRepo) Create(ctx context.Context, req *domain.SignatureRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockSignatureRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.SignatureRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SignatureRequest), args.Error(1)
}

func (m *MockSignatureRequestRepo) GetByExternalID(ctx context.Context, provider domain.SignatureProvider, externalID string) (*domain.SignatureRequest, error) {
	args := m.Called(ctx, provider, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SignatureRequest), args.Error(1)
}

func (m *MockSignatureRequestRepo) Update(ctx context.Context, req *domain.SignatureRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockSignatureRequestRepo) ListBySignerAndStatus(ctx context.Context, signerEmail string, status domain.SignatureStatus, offset, limit int) ([]domain.SignatureRequest, int, error) {
	args := m.Called(ctx, signerEmail, status, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.SignatureRequest), args.Int(1), args.Error(2)
}
