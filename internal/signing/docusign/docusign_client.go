package docusign

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"complitracker/internal/config"
	"complitracker/internal/domain"
	"complitracker/internal/port"
	"complitracker/internal/signing"
)

const (
	providerName    = "docusign"
	signatureHeader = "X-DocuSign-Signature-1"
)

// eventStatuses maps DocuSign Connect event types to canonical statuses.
// Event types not listed here do not change the signature outcome.
var eventStatuses = map[string]domain.SignatureStatus{
	"envelope-completed": domain.SignatureStatusCompleted,
	"envelope-declined":  domain.SignatureStatusDeclined,
}

func init() {
	signing.Register(domain.ProviderDocuSign, New)
}

// Client implements port.ProviderClient against the DocuSign eSignature API.
type Client struct {
	baseURL       string
	apiKey        string
	webhookSecret string
	client        *http.Client
}

// New creates a DocuSign client from a provider config.
func New(cfg *config.ProviderConfig) (port.ProviderClient, error) {
	return newClient(cfg, cfg.BaseURL), nil
}

// NewWithEndpoint creates a client pointing at a custom API endpoint (for testing).
func NewWithEndpoint(cfg *config.ProviderConfig, endpoint string) *Client {
	return newClient(cfg, endpoint)
}

func newClient(cfg *config.ProviderConfig, baseURL string) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:       baseURL,
		apiKey:        cfg.APIKey,
		webhookSecret: cfg.WebhookSecret,
		client:        &http.Client{Timeout: timeout},
	}
}

func (c *Client) CreateRequest(ctx context.Context, input port.CreateRequestInput) (string, error) {
	reqBody := map[string]interface{}{
		"documentUrl":  input.DocumentURL,
		"documentName": input.DocumentName,
		"signers":      input.Signers,
		"status":       "sent",
	}

	respBody, err := c.do(ctx, http.MethodPost, c.baseURL+"/envelopes", reqBody, "create envelope")
	if err != nil {
		return "", err
	}

	var envelope struct {
		EnvelopeID string `json:"envelopeId"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil || envelope.EnvelopeID == "" {
		return "", signing.NewCallError(providerName, "create envelope", 0,
			fmt.Errorf("response missing envelopeId"))
	}
	return envelope.EnvelopeID, nil
}

// Cancel voids an envelope. A remote request that is already voided, completed,
// or gone counts as satisfied.
func (c *Client) Cancel(ctx context.Context, externalID string) error {
	reqBody := map[string]interface{}{
		"status":       "voided",
		"voidedReason": "Cancelled by requester",
	}

	_, err := c.do(ctx, http.MethodPut, c.baseURL+"/envelopes/"+externalID, reqBody, "void envelope")
	var callErr *signing.CallError
	if errors.As(err, &callErr) {
		switch callErr.StatusCode {
		case http.StatusNotFound, http.StatusConflict, http.StatusGone:
			return nil
		}
	}
	return err
}

func (c *Client) VerifyWebhook(signatureHeaderValue string, payload []byte) (bool, error) {
	if c.webhookSecret == "" {
		return false, domain.ErrMissingWebhookSecret
	}
	return signing.VerifyHMAC(c.webhookSecret, payload, signatureHeaderValue), nil
}

func (c *Client) WebhookSignatureHeader() string {
	return signatureHeader
}

func (c *Client) ExtractExternalRequestID(payload []byte) (string, error) {
	var event struct {
		EnvelopeID string `json:"envelopeId"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return "", fmt.Errorf("parsing docusign event: %w", err)
	}
	if event.EnvelopeID == "" {
		return "", fmt.Errorf("docusign event missing envelopeId")
	}
	return event.EnvelopeID, nil
}

func (c *Client) ExtractEventType(payload []byte) string {
	var event struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return ""
	}
	return event.Event
}

func (c *Client) ExtractSignerStatuses(payload []byte) domain.SignerStatusMap {
	var event struct {
		Recipients []struct {
			Email  string `json:"email"`
			Status string `json:"status"`
		} `json:"recipients"`
	}
	statuses := domain.SignerStatusMap{}
	if err := json.Unmarshal(payload, &event); err != nil {
		return statuses
	}
	for _, r := range event.Recipients {
		if r.Email != "" && r.Status != "" {
			statuses[r.Email] = r.Status
		}
	}
	return statuses
}

func (c *Client) MapEventType(eventType string) domain.SignatureStatus {
	if status, ok := eventStatuses[eventType]; ok {
		return status
	}
	return domain.SignatureStatusPending
}

func (c *Client) do(ctx context.Context, method, url string, body interface{}, operation string) ([]byte, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, signing.NewCallError(providerName, operation, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, signing.NewCallError(providerName, operation, 0, err)
	}

	if resp.StatusCode >= 400 {
		return nil, signing.NewCallError(providerName, operation, resp.StatusCode,
			fmt.Errorf("%s", string(respBody)))
	}
	return respBody, nil
}
