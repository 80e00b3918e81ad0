package port

import (
	"context"

	"complitracker/internal/domain"
)

// CreateRequestInput carries the canonical fields every provider needs to
// open a signature request.
type CreateRequestInput struct {
	DocumentURL  string
	DocumentName string
	Signers      []string
}

// ProviderClient abstracts one external e-signature provider. Implementations
// translate the canonical operations into provider-specific API calls and
// vocabularies.
type ProviderClient interface {
	// CreateRequest opens a signature request remotely and returns the
	// provider-assigned external request id. Failures classify as
	// domain.ErrProviderUnavailable (network/5xx) or domain.ErrProviderRejected (4xx).
	CreateRequest(ctx context.Context, input CreateRequestInput) (string, error)

	// Cancel voids the external request. Cancelling an already cancelled or
	// completed request is treated as satisfied, not an error.
	Cancel(ctx context.Context, externalID string) error

	// VerifyWebhook checks the provider-specific authenticity signature over
	// the raw payload. Malformed input yields false; only a missing secret is
	// an error (domain.ErrMissingWebhookSecret).
	VerifyWebhook(signatureHeader string, payload []byte) (bool, error)

	// WebhookSignatureHeader names the HTTP header carrying the authenticity
	// signature for this provider.
	WebhookSignatureHeader() string

	// ExtractExternalRequestID pulls the provider's external request id out of
	// a raw webhook payload.
	ExtractExternalRequestID(payload []byte) (string, error)

	// ExtractEventType pulls the raw provider event type out of a raw webhook
	// payload. An absent event type yields the empty string, which maps to a
	// no-op transition.
	ExtractEventType(payload []byte) string

	// ExtractSignerStatuses pulls the per-signer raw statuses out of a raw
	// webhook payload. Unparseable participant lists yield an empty map.
	ExtractSignerStatuses(payload []byte) domain.SignerStatusMap

	// MapEventType maps a raw provider event type to the canonical status.
	// Unrecognized event types map to pending, a no-op transition.
	MapEventType(eventType string) domain.SignatureStatus
}
