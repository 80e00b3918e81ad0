package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/sync/errgroup"

	"complitracker/internal/domain"
	"complitracker/internal/port"
	"complitracker/internal/service"
	"complitracker/internal/signing"
	"complitracker/mocks"
)

func setupSignatureService() (
	*mocks.MockSignatureRequestRepo,
	*mocks.MockSignatureAuditRepo,
	*mocks.MockDocumentRepo,
	*mocks.MockProviderClient,
	*mocks.MockNotifier,
	*mocks.MockURLSigner,
	service.SignatureService,
) {
	reqRepo := new(mocks.MockSignatureRequestRepo)
	auditRepo := new(mocks.MockSignatureAuditRepo)
	docRepo := new(mocks.MockDocumentRepo)
	client := new(mocks.MockProviderClient)
	notifier := new(mocks.MockNotifier)
	urlSigner := new(mocks.MockURLSigner)

	registry := signing.NewRegistryFromClients(map[domain.SignatureProvider]port.ProviderClient{
		domain.ProviderDocuSign: client,
	})

	svc := service.NewSignatureService(reqRepo, auditRepo, docRepo, registry, notifier, urlSigner, 720*time.Hour)
	return reqRepo, auditRepo, docRepo, client, notifier, urlSigner, svc
}

func TestCreate_Success(t *testing.T) {
	reqRepo, auditRepo, docRepo, client, _, urlSigner, svc := setupSignatureService()

	docID := uuid.New()
	userID := uuid.New()
	doc := &domain.Document{
		ID:           docID,
		Name:         "msa.pdf",
		FileLocation: "s3://compli-docs/msa.pdf",
		CreatedBy:    userID,
	}

	docRepo.On("GetByID", mock.Anything, docID).Return(doc, nil)
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.SignatureAuditEvent")).Return(nil)
	urlSigner.On("SignedURL", mock.Anything, "s3://compli-docs/msa.pdf").
		Return("https://compli-docs.s3.amazonaws.com/msa.pdf?X-Amz-Signature=abc", nil)
	client.On("CreateRequest", mock.Anything, mock.MatchedBy(func(in port.CreateRequestInput) bool {
		return in.DocumentName == "msa.pdf" && len(in.Signers) == 2
	})).Return("ext-1", nil)
	reqRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.SignatureRequest")).Return(nil)

	req, err := svc.Create(context.Background(), &service.CreateSignatureRequestInput{
		DocumentID: docID,
		Provider:   domain.ProviderDocuSign,
		Signers:    []string{"alice@example.com", "bob@example.com"},
		CreatedBy:  userID,
	})

	assert.NoError(t, err)
	assert.Equal(t, "ext-1", req.ExternalRequestID)
	assert.Equal(t, domain.SignatureStatusPending, req.Status)
	assert.Empty(t, req.SignerStatuses)
	assert.NotNil(t, req.ExpiresAt)
	assert.True(t, req.ExpiresAt.After(time.Now().Add(719*time.Hour)))

	created := auditRepo.Calls[0].Arguments.Get(1).(*domain.SignatureAuditEvent)
	assert.Equal(t, "REQUEST_CREATED", created.EventType)
	assert.Equal(t, domain.AuditStatusSuccess, created.Status)
	assert.Equal(t, userID, *created.UserID)
}

func TestCreate_NoSigners(t *testing.T) {
	reqRepo, _, _, _, _, _, svc := setupSignatureService()

	_, err := svc.Create(context.Background(), &service.CreateSignatureRequestInput{
		DocumentID: uuid.New(),
		Provider:   domain.ProviderDocuSign,
		Signers:    []string{},
		CreatedBy:  uuid.New(),
	})

	assert.ErrorIs(t, err, domain.ErrNoSigners)
	reqRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreate_UnknownProvider(t *testing.T) {
	_, _, _, _, _, _, svc := setupSignatureService()

	_, err := svc.Create(context.Background(), &service.CreateSignatureRequestInput{
		DocumentID: uuid.New(),
		Provider:   domain.SignatureProvider("hellosign"),
		Signers:    []string{"alice@example.com"},
		CreatedBy:  uuid.New(),
	})

	assert.ErrorIs(t, err, domain.ErrUnknownProvider)
}

func TestCreate_ProviderFailurePersistsNothing(t *testing.T) {
	reqRepo, auditRepo, docRepo, client, _, urlSigner, svc := setupSignatureService()

	docID := uuid.New()
	docRepo.On("GetByID", mock.Anything, docID).Return(&domain.Document{
		ID: docID, Name: "msa.pdf", FileLocation: "s3://compli-docs/msa.pdf",
	}, nil)
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.SignatureAuditEvent")).Return(nil)
	urlSigner.On("SignedURL", mock.Anything, mock.Anything).Return("https://signed", nil)
	client.On("CreateRequest", mock.Anything, mock.Anything).
		Return("", signing.NewCallError("docusign", "create envelope", 503, errors.New("upstream down")))

	_, err := svc.Create(context.Background(), &service.CreateSignatureRequestInput{
		DocumentID: docID,
		Provider:   domain.ProviderDocuSign,
		Signers:    []string{"alice@example.com"},
		CreatedBy:  uuid.New(),
	})

	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
	reqRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	// Both the attempt and its failure are on the audit trail.
	assert.Len(t, auditRepo.Calls, 2)
	failed := auditRepo.Calls[1].Arguments.Get(1).(*domain.SignatureAuditEvent)
	assert.Equal(t, domain.AuditStatusError, failed.Status)
	assert.NotNil(t, failed.ErrorMessage)
}

func TestHandleWebhook_AppliesStatusAndNotifies(t *testing.T) {
	reqRepo, auditRepo, _, client, notifier, _, svc := setupSignatureService()

	reqID := uuid.New()
	payload := []byte(`{"event":"envelope-completed","envelopeId":"ext-1"}`)
	pending := &domain.SignatureRequest{
		ID:                reqID,
		ExternalRequestID: "ext-1",
		Provider:          domain.ProviderDocuSign,
		Signers:           []string{"alice@example.com"},
		SignerStatuses:    domain.SignerStatusMap{},
		Status:            domain.SignatureStatusPending,
	}

	client.On("ExtractEventType", payload).Return("envelope-completed")
	client.On("VerifyWebhook", "sig", payload).Return(true, nil)
	client.On("ExtractExternalRequestID", payload).Return("ext-1", nil)
	client.On("ExtractSignerStatuses", payload).Return(domain.SignerStatusMap{"alice@example.com": "completed"})
	client.On("MapEventType", "envelope-completed").Return(domain.SignatureStatusCompleted)
	reqRepo.On("GetByExternalID", mock.Anything, domain.ProviderDocuSign, "ext-1").Return(pending, nil)
	reqRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.SignatureRequest")).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.SignatureAuditEvent")).Return(nil)

	notified := make(chan *domain.SignatureRequest, 1)
	notifier.On("NotifyStatusChanged", mock.Anything, mock.AnythingOfType("*domain.SignatureRequest")).
		Run(func(args mock.Arguments) {
			notified <- args.Get(1).(*domain.SignatureRequest)
		}).Return(nil)

	err := svc.HandleWebhook(context.Background(), &service.WebhookEventInput{
		Provider:        domain.ProviderDocuSign,
		SignatureHeader: "sig",
		Payload:         payload,
		IPAddress:       "203.0.113.9",
	})
	assert.NoError(t, err)

	updated := reqRepo.Calls[1].Arguments.Get(1).(*domain.SignatureRequest)
	assert.Equal(t, domain.SignatureStatusCompleted, updated.Status)
	assert.Equal(t, "completed", updated.SignerStatuses["alice@example.com"])

	audited := auditRepo.Calls[0].Arguments.Get(1).(*domain.SignatureAuditEvent)
	assert.Equal(t, "envelope-completed", audited.EventType)
	assert.Equal(t, domain.AuditStatusSuccess, audited.Status)
	assert.Equal(t, reqID, *audited.RequestID)
	assert.Equal(t, "203.0.113.9", audited.IPAddress)

	select {
	case got := <-notified:
		assert.Equal(t, domain.SignatureStatusCompleted, got.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("notification was never fired")
	}
}

func TestHandleWebhook_AuthFailure(t *testing.T) {
	reqRepo, auditRepo, _, client, notifier, _, svc := setupSignatureService()

	payload := []byte(`{"event":"envelope-completed","envelopeId":"ext-1"}`)
	client.On("ExtractEventType", payload).Return("envelope-completed")
	client.On("VerifyWebhook", "bad-sig", payload).Return(false, nil)
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.SignatureAuditEvent")).Return(nil)

	err := svc.HandleWebhook(context.Background(), &service.WebhookEventInput{
		Provider:        domain.ProviderDocuSign,
		SignatureHeader: "bad-sig",
		Payload:         payload,
		IPAddress:       "203.0.113.9",
	})

	assert.ErrorIs(t, err, domain.ErrUnauthorizedWebhook)
	reqRepo.AssertNotCalled(t, "GetByExternalID", mock.Anything, mock.Anything, mock.Anything)
	reqRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "NotifyStatusChanged", mock.Anything, mock.Anything)

	assert.Len(t, auditRepo.Calls, 1)
	audited := auditRepo.Calls[0].Arguments.Get(1).(*domain.SignatureAuditEvent)
	assert.Equal(t, domain.AuditStatusError, audited.Status)
	assert.Nil(t, audited.RequestID)
}

func TestHandleWebhook_UnknownExternalID(t *testing.T) {
	reqRepo, auditRepo, _, client, notifier, _, svc := setupSignatureService()

	payload := []byte(`{"event":"envelope-completed","envelopeId":"ext-404"}`)
	client.On("ExtractEventType", payload).Return("envelope-completed")
	client.On("VerifyWebhook", "sig", payload).Return(true, nil)
	client.On("ExtractExternalRequestID", payload).Return("ext-404", nil)
	reqRepo.On("GetByExternalID", mock.Anything, domain.ProviderDocuSign, "ext-404").
		Return(nil, domain.ErrRequestNotFound)
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.SignatureAuditEvent")).Return(nil)

	err := svc.HandleWebhook(context.Background(), &service.WebhookEventInput{
		Provider:        domain.ProviderDocuSign,
		SignatureHeader: "sig",
		Payload:         payload,
		IPAddress:       "203.0.113.9",
	})

	// The delivery is acknowledged; a retry could never resolve it.
	assert.NoError(t, err)
	reqRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "NotifyStatusChanged", mock.Anything, mock.Anything)

	audited := auditRepo.Calls[0].Arguments.Get(1).(*domain.SignatureAuditEvent)
	assert.Equal(t, domain.AuditStatusError, audited.Status)
	assert.Contains(t, *audited.ErrorMessage, "ext-404")
}

func TestHandleWebhook_TerminalStateIsProtected(t *testing.T) {
	reqRepo, auditRepo, _, client, notifier, _, svc := setupSignatureService()

	reqID := uuid.New()
	payload := []byte(`{"event":"envelope-declined","envelopeId":"ext-1"}`)
	settled := &domain.SignatureRequest{
		ID:                reqID,
		ExternalRequestID: "ext-1",
		Provider:          domain.ProviderDocuSign,
		Status:            domain.SignatureStatusCompleted,
	}

	client.On("ExtractEventType", payload).Return("envelope-declined")
	client.On("VerifyWebhook", "sig", payload).Return(true, nil)
	client.On("ExtractExternalRequestID", payload).Return("ext-1", nil)
	reqRepo.On("GetByExternalID", mock.Anything, domain.ProviderDocuSign, "ext-1").Return(settled, nil)
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.SignatureAuditEvent")).Return(nil)

	input := &service.WebhookEventInput{
		Provider:        domain.ProviderDocuSign,
		SignatureHeader: "sig",
		Payload:         payload,
		IPAddress:       "203.0.113.9",
	}

	// Deliver the same event twice; each delivery audits, none mutates.
	assert.NoError(t, svc.HandleWebhook(context.Background(), input))
	assert.NoError(t, svc.HandleWebhook(context.Background(), input))

	reqRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "NotifyStatusChanged", mock.Anything, mock.Anything)

	assert.Len(t, auditRepo.Calls, 2)
	for _, call := range auditRepo.Calls {
		audited := call.Arguments.Get(1).(*domain.SignatureAuditEvent)
		assert.Equal(t, domain.AuditStatusSuccess, audited.Status)
		assert.Contains(t, *audited.ErrorMessage, "terminal state completed")
	}
}

func TestHandleWebhook_ConcurrentDeliveriesSerialize(t *testing.T) {
	reqRepo, auditRepo, _, client, notifier, _, svc := setupSignatureService()

	reqID := uuid.New()
	payload := []byte(`{"event":"envelope-completed","envelopeId":"ext-1"}`)

	// The store hands back the live record so the second delivery observes
	// whatever the first one committed.
	current := &domain.SignatureRequest{
		ID:                reqID,
		ExternalRequestID: "ext-1",
		Provider:          domain.ProviderDocuSign,
		SignerStatuses:    domain.SignerStatusMap{},
		Status:            domain.SignatureStatusPending,
	}

	client.On("ExtractEventType", payload).Return("envelope-completed")
	client.On("VerifyWebhook", "sig", payload).Return(true, nil)
	client.On("ExtractExternalRequestID", payload).Return("ext-1", nil)
	client.On("ExtractSignerStatuses", payload).Return(domain.SignerStatusMap{"alice@example.com": "completed"})
	client.On("MapEventType", "envelope-completed").Return(domain.SignatureStatusCompleted)
	reqRepo.On("GetByExternalID", mock.Anything, domain.ProviderDocuSign, "ext-1").Return(current, nil)
	reqRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.SignatureRequest")).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.SignatureAuditEvent")).Return(nil)
	notifier.On("NotifyStatusChanged", mock.Anything, mock.AnythingOfType("*domain.SignatureRequest")).Return(nil)

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			return svc.HandleWebhook(context.Background(), &service.WebhookEventInput{
				Provider:        domain.ProviderDocuSign,
				SignatureHeader: "sig",
				Payload:         payload,
				IPAddress:       "203.0.113.9",
			})
		})
	}
	assert.NoError(t, g.Wait())

	// Exactly one delivery wins the transition; the rest observe the terminal
	// state and audit as no-ops.
	reqRepo.AssertNumberOfCalls(t, "Update", 1)
	assert.Len(t, auditRepo.Calls, 8)
}

func TestCancel_OverridesTerminalState(t *testing.T) {
	reqRepo, auditRepo, _, client, notifier, _, svc := setupSignatureService()

	reqID := uuid.New()
	userID := uuid.New()
	completed := &domain.SignatureRequest{
		ID:                reqID,
		ExternalRequestID: "ext-1",
		Provider:          domain.ProviderDocuSign,
		Status:            domain.SignatureStatusCompleted,
	}

	reqRepo.On("GetByID", mock.Anything, reqID).Return(completed, nil)
	client.On("Cancel", mock.Anything, "ext-1").Return(nil)
	reqRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.SignatureRequest")).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.SignatureAuditEvent")).Return(nil)
	notifier.On("NotifyStatusChanged", mock.Anything, mock.AnythingOfType("*domain.SignatureRequest")).Return(nil)

	req, err := svc.Cancel(context.Background(), reqID, userID, "203.0.113.9")

	assert.NoError(t, err)
	assert.Equal(t, domain.SignatureStatusCancelled, req.Status)

	audited := auditRepo.Calls[0].Arguments.Get(1).(*domain.SignatureAuditEvent)
	assert.Equal(t, "REQUEST_CANCELLED", audited.EventType)
	assert.Equal(t, domain.AuditStatusSuccess, audited.Status)
	assert.Equal(t, userID, *audited.UserID)
}

func TestCancel_ProviderFailureLeavesStatusUntouched(t *testing.T) {
	reqRepo, auditRepo, _, client, _, _, svc := setupSignatureService()

	reqID := uuid.New()
	pending := &domain.SignatureRequest{
		ID:                reqID,
		ExternalRequestID: "ext-1",
		Provider:          domain.ProviderDocuSign,
		Status:            domain.SignatureStatusPending,
	}

	reqRepo.On("GetByID", mock.Anything, reqID).Return(pending, nil)
	client.On("Cancel", mock.Anything, "ext-1").
		Return(signing.NewCallError("docusign", "void envelope", 500, errors.New("upstream down")))
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.SignatureAuditEvent")).Return(nil)

	_, err := svc.Cancel(context.Background(), reqID, uuid.New(), "203.0.113.9")

	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
	reqRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)

	audited := auditRepo.Calls[0].Arguments.Get(1).(*domain.SignatureAuditEvent)
	assert.Equal(t, domain.AuditStatusError, audited.Status)
}

func TestListPendingForSigner(t *testing.T) {
	reqRepo, _, _, _, _, _, svc := setupSignatureService()

	reqRepo.On("ListBySignerAndStatus", mock.Anything, "alice@example.com", domain.SignatureStatusPending, 0, 20).
		Return([]domain.SignatureRequest{{ID: uuid.New(), Status: domain.SignatureStatusPending}}, 1, nil)

	reqs, total, err := svc.ListPendingForSigner(context.Background(), "alice@example.com", 0, 20)

	assert.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, reqs, 1)
}
