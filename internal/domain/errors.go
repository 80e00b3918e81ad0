package domain

import "errors"

var (
	ErrNotFound             = errors.New("resource not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrNoSigners            = errors.New("signature request requires at least one signer")
	ErrUnknownProvider      = errors.New("unknown signature provider")
	ErrProviderUnavailable  = errors.New("signature provider unavailable")
	ErrProviderRejected     = errors.New("signature provider rejected the request")
	ErrUnauthorizedWebhook  = errors.New("webhook signature verification failed")
	ErrRequestNotFound      = errors.New("signature request not found")
	ErrInvalidTransition    = errors.New("signature request is in a terminal state")
	ErrMissingWebhookSecret = errors.New("webhook secret is not configured")
	ErrDocumentNotFound     = errors.New("document not found")
)
