package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"complitracker/internal/domain"
	"complitracker/internal/port"
)

// MockProviderClient is a mock implementation of port.ProviderClient.
type MockProviderClient struct {
	mock.Mock
}

func (m *MockProviderClient) CreateRequest(ctx context.Context, input port.CreateRequestInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *MockProviderClient) Cancel(ctx context.Context, externalID string) error {
	args := m.Called(ctx, externalID)
	return args.Error(0)
}

func (m *MockProviderClient) VerifyWebhook(signatureHeader string, payload []byte) (bool, error) {
	args := m.Called(signatureHeader, payload)
	return args.Bool(0), args.Error(1)
}

func (m *MockProviderClient) WebhookSignatureHeader() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockProviderClient) ExtractExternalRequestID(payload []byte) (string, error) {
	args := m.Called(payload)
	return args.String(0), args.Error(1)
}

func (m *MockProviderClient) ExtractEventType(payload []byte) string {
	args := m.Called(payload)
	return args.String(0)
}

func (m *MockProviderClient) ExtractSignerStatuses(payload []byte) domain.SignerStatusMap {
	args := m.Called(payload)
	if args.Get(0) == nil {
		return domain.SignerStatusMap{}
	}
	return args.Get(0).(domain.SignerStatusMap)
}

func (m *MockProviderClient) MapEventType(eventType string) domain.SignatureStatus {
	args := m.Called(eventType)
	return args.Get(0).(domain.SignatureStatus)
}
