package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockURLSigner is a mock implementation of port.DocumentURLSigner.
type MockURLSigner struct {
	mock.Mock
}

func (m *MockURLSigner) SignedURL(ctx context.Context, fileLocation string) (string, error) {
	args := m.Called(ctx, fileLocation)
	return args.String(0), args.Error(1)
}
