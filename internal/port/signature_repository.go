package port

import (
	"context"

	"github.com/google/uuid"

	"complitracker/internal/domain"
)

// SignatureRequestRepository defines the contract for signature request persistence.
// GetByExternalID is composite-keyed by (provider, externalID) so two providers
// with colliding id spaces can never misroute a webhook.
type SignatureRequestRepository interface {
	Create(ctx context.Context, req *domain.SignatureRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.SignatureRequest, error)
	GetByExternalID(ctx context.Context, provider domain.SignatureProvider, externalID string) (*domain.SignatureRequest, error)
	Update(ctx context.Context, req *domain.SignatureRequest) error
	ListBySignerAndStatus(ctx context.Context, signerEmail string, status domain.SignatureStatus, offset, limit int) ([]domain.SignatureRequest, int, error)
}

// SignatureAuditRepository defines the contract for the append-only audit log.
// Events are never updated or deleted; corrections are new events.
type SignatureAuditRepository interface {
	Create(ctx context.Context, event *domain.SignatureAuditEvent) error
	ListByRequest(ctx context.Context, requestID uuid.UUID, offset, limit int) ([]domain.SignatureAuditEvent, int, error)
}
