package port

import (
	"context"

	"complitracker/internal/domain"
)

// Notifier is the outbound notification collaborator, invoked once per
// signature status change. Delivery retries are the collaborator's concern,
// not the pipeline's.
type Notifier interface {
	NotifyStatusChanged(ctx context.Context, req *domain.SignatureRequest) error
}
