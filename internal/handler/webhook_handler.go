package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"complitracker/internal/domain"
	"complitracker/internal/service"
	"complitracker/internal/signing"
)

// maxWebhookBody caps webhook payload size at 1 MiB.
const maxWebhookBody = 1 << 20

// WebhookHandler receives provider webhook callbacks.
type WebhookHandler struct {
	signatures service.SignatureService
	registry   *signing.Registry
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(signatures service.SignatureService, registry *signing.Registry) *WebhookHandler {
	return &WebhookHandler{signatures: signatures, registry: registry}
}

// Receive godoc
// @Summary      Receive a signature provider webhook
// @Description  Authenticates and processes a status callback from an e-signature provider
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        provider  path      string  true  "Provider name (docusign or adobe_sign)"
// @Success      200       {object}  APIResponse
// @Failure      401       {object}  APIResponse
// @Failure      404       {object}  APIResponse
// @Router       /webhooks/signature/{provider} [post]
func (h *WebhookHandler) Receive(c *gin.Context) {
	provider := domain.SignatureProvider(c.Param("provider"))

	client, err := h.registry.Get(provider)
	if err != nil {
		RespondError(c, http.StatusNotFound, "UNKNOWN_PROVIDER", "unknown signature provider")
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "failed to read request body")
		return
	}

	err = h.signatures.HandleWebhook(c.Request.Context(), &service.WebhookEventInput{
		Provider:        provider,
		SignatureHeader: c.GetHeader(client.WebhookSignatureHeader()),
		Payload:         payload,
		IPAddress:       c.ClientIP(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorizedWebhook) {
			RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED_WEBHOOK", "webhook signature verification failed")
			return
		}
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"received": true})
}
