package adobesign

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
	providerName    = "adobe_sign"
	signatureHeader = "X-Adobe-Sign-ClientId"
)

var eventStatuses = map[string]domain.SignatureStatus{
	"AGREEMENT_COMPLETED": domain.SignatureStatusCompleted,
	"AGREEMENT_REJECTED":  domain.SignatureStatusDeclined,
}

func init() {
	signing.Register(domain.ProviderAdobeSign, New)
}

// Client implements port.ProviderClient against the Adobe Acrobat Sign API.
type Client struct {
	baseURL       string
	apiKey        string
	webhookSecret string
	client        *http.Client
}

// New creates an Adobe Sign client from a provider config.
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
	participants := make([]map[string]interface{}, 0, len(input.Signers))
	for _, signer := range input.Signers {
		participants = append(participants, map[string]interface{}{
			"email": signer,
			"role":  "SIGNER",
		})
	}

	reqBody := map[string]interface{}{
		"fileUrl":             input.DocumentURL,
		"name":                input.DocumentName,
		"participantSetsInfo": participants,
		"state":               "IN_PROCESS",
	}

	respBody, err := c.do(ctx, http.MethodPost, c.baseURL+"/agreements", reqBody, "create agreement")
	if err != nil {
		return "", err
	}

	var agreement struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &agreement); err != nil || agreement.ID == "" {
		return "", signing.NewCallError(providerName, "create agreement", 0,
			fmt.Errorf("response missing agreement id"))
	}
	return agreement.ID, nil
}

// Cancel moves an agreement to CANCELLED. Agreements already in a final remote
// state count as satisfied.
func (c *Client) Cancel(ctx context.Context, externalID string) error {
	reqBody := map[string]interface{}{
		"state":   "CANCELLED",
		"comment": "Cancelled by requester",
	}

	_, err := c.do(ctx, http.MethodPut, c.baseURL+"/agreements/"+externalID+"/state", reqBody, "cancel agreement")
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
		AgreementID string `json:"agreementId"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return "", fmt.Errorf("parsing adobe sign event: %w", err)
	}
	if event.AgreementID == "" {
		return "", fmt.Errorf("adobe sign event missing agreementId")
	}
	return event.AgreementID, nil
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
		ParticipantSets []struct {
			Email  string `json:"email"`
			Status string `json:"status"`
		} `json:"participantSets"`
	}
	statuses := domain.SignerStatusMap{}
	if err := json.Unmarshal(payload, &event); err != nil {
		return statuses
	}
	for _, p := range event.ParticipantSets {
		if p.Email != "" && p.Status != "" {
			statuses[p.Email] = p.Status
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
