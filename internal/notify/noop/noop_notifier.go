package noop

import (
	"context"
	"log"

	"complitracker/internal/domain"
	"complitracker/internal/port"
)

type noopNotifier struct{}

// NewNoopNotifier creates a no-op Notifier that logs status changes to stdout.
func NewNoopNotifier() port.Notifier {
	return &noopNotifier{}
}

func (n *noopNotifier) NotifyStatusChanged(_ context.Context, req *domain.SignatureRequest) error {
	log.Printf("[NOOP NOTIFY] signature request %s (%s) is now %s, signers: %v",
		req.ID, req.Provider, req.Status, req.Signers)
	return nil
}
