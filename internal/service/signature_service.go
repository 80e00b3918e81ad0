package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"complitracker/internal/domain"
	"complitracker/internal/locks"
	"complitracker/internal/port"
	"complitracker/internal/signing"
)

const notifyTimeout = 15 * time.Second

// CreateSignatureRequestInput is the DTO for opening a signature request.
type CreateSignatureRequestInput struct {
	DocumentID uuid.UUID
	Signers    []string
	Provider   domain.SignatureProvider
	CreatedBy  uuid.UUID
	IPAddress  string
}

// WebhookEventInput carries one raw webhook delivery through the ingestion pipeline.
type WebhookEventInput struct {
	Provider        domain.SignatureProvider
	SignatureHeader string
	Payload         []byte
	IPAddress       string
}

// SignatureService coordinates signature request lifecycles across providers
// and reconciles inbound webhook events into the canonical state machine.
type SignatureService interface {
	Create(ctx context.Context, input *CreateSignatureRequestInput) (*domain.SignatureRequest, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.SignatureRequest, error)
	Cancel(ctx context.Context, id, cancelledBy uuid.UUID, ipAddress string) (*domain.SignatureRequest, error)
	ListPendingForSigner(ctx context.Context, signerEmail string, offset, limit int) ([]domain.SignatureRequest, int, error)
	ListAuditEvents(ctx context.Context, requestID uuid.UUID, offset, limit int) ([]domain.SignatureAuditEvent, int, error)
	HandleWebhook(ctx context.Context, input *WebhookEventInput) error
}

type signatureService struct {
	reqRepo    port.SignatureRequestRepository
	auditRepo  port.SignatureAuditRepository
	docRepo    port.DocumentRepository
	registry   *signing.Registry
	notifier   port.Notifier
	urlSigner  port.DocumentURLSigner
	requestTTL time.Duration

	// Serializes the read-modify-write per (provider, external id) so two
	// concurrent deliveries for the same request cannot interleave.
	webhookLocks *locks.KeyedMutex
}

// NewSignatureService creates a new SignatureService implementation.
func NewSignatureService(
	reqRepo port.SignatureRequestRepository,
	auditRepo port.SignatureAuditRepository,
	docRepo port.DocumentRepository,
	registry *signing.Registry,
	notifier port.Notifier,
	urlSigner port.DocumentURLSigner,
	requestTTL time.Duration,
) SignatureService {
	return &signatureService{
		reqRepo:      reqRepo,
		auditRepo:    auditRepo,
		docRepo:      docRepo,
		registry:     registry,
		notifier:     notifier,
		urlSigner:    urlSigner,
		requestTTL:   requestTTL,
		webhookLocks: locks.NewKeyedMutex(),
	}
}

func (s *signatureService) Create(ctx context.Context, input *CreateSignatureRequestInput) (*domain.SignatureRequest, error) {
	if len(input.Signers) == 0 {
		return nil, domain.ErrNoSigners
	}

	client, err := s.registry.Get(input.Provider)
	if err != nil {
		return nil, err
	}

	doc, err := s.docRepo.GetByID(ctx, input.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("looking up document: %w", err)
	}

	// Audit first so a failed remote call is still traceable.
	eventData, _ := json.Marshal(map[string]interface{}{
		"document_id": input.DocumentID,
		"signers":     input.Signers,
	})
	s.audit(ctx, nil, &input.CreatedBy, input.Provider, domain.AuditEventRequestCreated,
		eventData, input.IPAddress, domain.AuditStatusSuccess, "")

	documentURL := doc.FileLocation
	if s.urlSigner != nil {
		documentURL, err = s.urlSigner.SignedURL(ctx, doc.FileLocation)
		if err != nil {
			return nil, fmt.Errorf("signing document url: %w", err)
		}
	}

	externalID, err := client.CreateRequest(ctx, port.CreateRequestInput{
		DocumentURL:  documentURL,
		DocumentName: doc.Name,
		Signers:      input.Signers,
	})
	if err != nil {
		s.audit(ctx, nil, &input.CreatedBy, input.Provider, domain.AuditEventRequestCreated,
			eventData, input.IPAddress, domain.AuditStatusError, err.Error())
		return nil, err
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.requestTTL)
	req := &domain.SignatureRequest{
		ID:                uuid.New(),
		ExternalRequestID: externalID,
		DocumentID:        input.DocumentID,
		Provider:          input.Provider,
		Signers:           input.Signers,
		SignerStatuses:    domain.SignerStatusMap{},
		Status:            domain.SignatureStatusPending,
		CreatedBy:         input.CreatedBy,
		CreatedAt:         now,
		UpdatedAt:         now,
		ExpiresAt:         &expiresAt,
	}

	if err := s.reqRepo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("persisting signature request: %w", err)
	}

	log.Printf("signatureService.Create: request %s opened with %s (external id %s)",
		req.ID, req.Provider, externalID)
	return req, nil
}

func (s *signatureService) GetByID(ctx context.Context, id uuid.UUID) (*domain.SignatureRequest, error) {
	return s.reqRepo.GetByID(ctx, id)
}

// Cancel voids the external request and unconditionally moves the record to
// cancelled. Unlike webhook-driven transitions, cancellation is user-initiated
// and overrides terminal-state protection.
func (s *signatureService) Cancel(ctx context.Context, id, cancelledBy uuid.UUID, ipAddress string) (*domain.SignatureRequest, error) {
	req, err := s.reqRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	client, err := s.registry.Get(req.Provider)
	if err != nil {
		return nil, err
	}

	if err := client.Cancel(ctx, req.ExternalRequestID); err != nil {
		s.audit(ctx, &req.ID, &cancelledBy, req.Provider, domain.AuditEventRequestCancelled,
			nil, ipAddress, domain.AuditStatusError, err.Error())
		return nil, err
	}

	req.Status = domain.SignatureStatusCancelled
	req.UpdatedAt = time.Now().UTC()
	if err := s.reqRepo.Update(ctx, req); err != nil {
		return nil, fmt.Errorf("persisting cancellation: %w", err)
	}

	s.audit(ctx, &req.ID, &cancelledBy, req.Provider, domain.AuditEventRequestCancelled,
		nil, ipAddress, domain.AuditStatusSuccess, "")
	s.notifyAsync(req)

	return req, nil
}

func (s *signatureService) ListPendingForSigner(ctx context.Context, signerEmail string, offset, limit int) ([]domain.SignatureRequest, int, error) {
	return s.reqRepo.ListBySignerAndStatus(ctx, signerEmail, domain.SignatureStatusPending, offset, limit)
}

func (s *signatureService) ListAuditEvents(ctx context.Context, requestID uuid.UUID, offset, limit int) ([]domain.SignatureAuditEvent, int, error) {
	if _, err := s.reqRepo.GetByID(ctx, requestID); err != nil {
		return nil, 0, err
	}
	return s.auditRepo.ListByRequest(ctx, requestID, offset, limit)
}

// HandleWebhook runs one raw delivery through the ingestion pipeline:
// authenticate, resolve, apply, audit, notify. Authentication failures are the
// only errors surfaced to the transport; everything after routing is audited
// and acknowledged so providers do not retry events we can never resolve.
func (s *signatureService) HandleWebhook(ctx context.Context, input *WebhookEventInput) error {
	client, err := s.registry.Get(input.Provider)
	if err != nil {
		return err
	}

	eventType := client.ExtractEventType(input.Payload)

	authentic, err := client.VerifyWebhook(input.SignatureHeader, input.Payload)
	if err != nil {
		s.audit(ctx, nil, nil, input.Provider, eventType, input.Payload, input.IPAddress,
			domain.AuditStatusError, err.Error())
		return err
	}
	if !authentic {
		s.audit(ctx, nil, nil, input.Provider, eventType, input.Payload, input.IPAddress,
			domain.AuditStatusError, domain.ErrUnauthorizedWebhook.Error())
		return domain.ErrUnauthorizedWebhook
	}

	externalID, err := client.ExtractExternalRequestID(input.Payload)
	if err != nil {
		// Unresolvable payload: audit and acknowledge, a retry cannot succeed.
		s.audit(ctx, nil, nil, input.Provider, eventType, input.Payload, input.IPAddress,
			domain.AuditStatusError, err.Error())
		return nil
	}

	unlock := s.webhookLocks.Lock(string(input.Provider) + ":" + externalID)
	defer unlock()

	req, err := s.reqRepo.GetByExternalID(ctx, input.Provider, externalID)
	if err != nil {
		if errors.Is(err, domain.ErrRequestNotFound) {
			s.audit(ctx, nil, nil, input.Provider, eventType, input.Payload, input.IPAddress,
				domain.AuditStatusError, fmt.Sprintf("signature request not found: %s", externalID))
			return nil
		}
		log.Printf("signatureService.HandleWebhook: resolving %s/%s: %v", input.Provider, externalID, err)
		s.audit(ctx, nil, nil, input.Provider, eventType, input.Payload, input.IPAddress,
			domain.AuditStatusError, err.Error())
		return nil
	}

	var note string
	applied := false
	if req.Status.IsTerminal() {
		// Late or duplicate delivery for a settled request. Expected under
		// at-least-once semantics, so it audits as a successful no-op.
		note = fmt.Sprintf("no-op: request already in terminal state %s", req.Status)
	} else {
		req.SignerStatuses = client.ExtractSignerStatuses(input.Payload)
		req.Status = client.MapEventType(eventType)
		req.UpdatedAt = time.Now().UTC()
		if err := s.reqRepo.Update(ctx, req); err != nil {
			log.Printf("signatureService.HandleWebhook: applying %s to %s: %v", eventType, req.ID, err)
			s.audit(ctx, &req.ID, nil, input.Provider, eventType, input.Payload, input.IPAddress,
				domain.AuditStatusError, err.Error())
			return nil
		}
		applied = true
	}

	s.audit(ctx, &req.ID, nil, input.Provider, eventType, input.Payload, input.IPAddress,
		domain.AuditStatusSuccess, note)

	if applied {
		s.notifyAsync(req)
	}
	return nil
}

// audit appends one event to the audit log. Failures are logged but never
// block the lifecycle operation that produced the event.
func (s *signatureService) audit(
	ctx context.Context,
	requestID, userID *uuid.UUID,
	provider domain.SignatureProvider,
	eventType string,
	eventData json.RawMessage,
	ipAddress string,
	status domain.AuditStatus,
	message string,
) {
	var errMsg *string
	if message != "" {
		errMsg = &message
	}
	if eventData == nil {
		eventData = json.RawMessage("{}")
	}
	event := &domain.SignatureAuditEvent{
		ID:           uuid.New(),
		RequestID:    requestID,
		UserID:       userID,
		Provider:     provider,
		EventType:    eventType,
		EventData:    eventData,
		IPAddress:    ipAddress,
		Status:       status,
		ErrorMessage: errMsg,
	}
	if err := s.auditRepo.Create(ctx, event); err != nil {
		log.Printf("signatureService.audit: failed to write %s event for %s: %v", eventType, provider, err)
	}
}

// notifyAsync fires the notification collaborator without blocking the
// pipeline. A delivery failure never rolls back the committed status update.
func (s *signatureService) notifyAsync(req *domain.SignatureRequest) {
	if s.notifier == nil {
		return
	}
	reqCopy := *req
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.NotifyStatusChanged(ctx, &reqCopy); err != nil {
			log.Printf("signatureService.notifyAsync: notification for %s failed: %v", reqCopy.ID, err)
		}
	}()
}
