package handler_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"complitracker/internal/domain"
	"complitracker/internal/handler"
	"complitracker/internal/port"
	"complitracker/internal/service"
	"complitracker/internal/signing"
	"complitracker/mocks"
)

// stubSignatureService records webhook inputs and returns a canned error.
type stubSignatureService struct {
	webhookErr   error
	webhookInput *service.WebhookEventInput
}

func (s *stubSignatureService) Create(ctx context.Context, input *service.CreateSignatureRequestInput) (*domain.SignatureRequest, error) {
	return nil, nil
}

func (s *stubSignatureService) GetByID(ctx context.Context, id uuid.UUID) (*domain.SignatureRequest, error) {
	return nil, nil
}

func (s *stubSignatureService) Cancel(ctx context.Context, id, cancelledBy uuid.UUID, ipAddress string) (*domain.SignatureRequest, error) {
	return nil, nil
}

func (s *stubSignatureService) ListPendingForSigner(ctx context.Context, signerEmail string, offset, limit int) ([]domain.SignatureRequest, int, error) {
	return nil, 0, nil
}

func (s *stubSignatureService) ListAuditEvents(ctx context.Context, requestID uuid.UUID, offset, limit int) ([]domain.SignatureAuditEvent, int, error) {
	return nil, 0, nil
}

func (s *stubSignatureService) HandleWebhook(ctx context.Context, input *service.WebhookEventInput) error {
	s.webhookInput = input
	return s.webhookErr
}

func setupWebhookRouter(svc service.SignatureService, client port.ProviderClient) *gin.Engine {
	gin.SetMode(gin.TestMode)
	registry := signing.NewRegistryFromClients(map[domain.SignatureProvider]port.ProviderClient{
		domain.ProviderDocuSign: client,
	})
	h := handler.NewWebhookHandler(svc, registry)
	r := gin.New()
	r.POST("/api/v1/webhooks/signature/:provider", h.Receive)
	return r
}

func TestWebhookReceive_Acknowledged(t *testing.T) {
	svc := &stubSignatureService{}
	client := new(mocks.MockProviderClient)
	client.On("WebhookSignatureHeader").Return("X-DocuSign-Signature-1")

	r := setupWebhookRouter(svc, client)

	body := []byte(`{"event":"envelope-completed","envelopeId":"ext-1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/signature/docusign", bytes.NewReader(body))
	req.Header.Set("X-DocuSign-Signature-1", "sig-value")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.ProviderDocuSign, svc.webhookInput.Provider)
	assert.Equal(t, "sig-value", svc.webhookInput.SignatureHeader)
	assert.Equal(t, body, svc.webhookInput.Payload)
}

func TestWebhookReceive_UnknownProvider(t *testing.T) {
	svc := &stubSignatureService{}
	client := new(mocks.MockProviderClient)

	r := setupWebhookRouter(svc, client)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/signature/hellosign", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Nil(t, svc.webhookInput)
}

func TestWebhookReceive_AuthFailure(t *testing.T) {
	svc := &stubSignatureService{webhookErr: domain.ErrUnauthorizedWebhook}
	client := new(mocks.MockProviderClient)
	client.On("WebhookSignatureHeader").Return("X-DocuSign-Signature-1")

	r := setupWebhookRouter(svc, client)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/signature/docusign", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED_WEBHOOK")
}

func TestWebhookReceive_MissingSecretIsServerError(t *testing.T) {
	svc := &stubSignatureService{webhookErr: domain.ErrMissingWebhookSecret}
	client := new(mocks.MockProviderClient)
	client.On("WebhookSignatureHeader").Return("X-DocuSign-Signature-1")

	r := setupWebhookRouter(svc, client)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/signature/docusign", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
