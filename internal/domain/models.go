package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SignerList is an ordered list of signer email addresses stored as a jsonb array.
type SignerList []string

// Value implements driver.Valuer for jsonb storage.
func (l SignerList) Value() (driver.Value, error) {
	if l == nil {
		l = SignerList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for jsonb storage.
func (l *SignerList) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		*l = SignerList{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into SignerList", src)
	}
}

// SignerStatusMap maps signer email to the provider's raw per-signer status,
// stored as a jsonb object. It is replaced wholesale on each webhook update,
// never merged.
type SignerStatusMap map[string]string

// Value implements driver.Valuer for jsonb storage.
func (m SignerStatusMap) Value() (driver.Value, error) {
	if m == nil {
		m = SignerStatusMap{}
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for jsonb storage.
func (m *SignerStatusMap) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	case nil:
		*m = SignerStatusMap{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into SignerStatusMap", src)
	}
}

// SignatureRequest represents one e-signature workflow against an external provider.
// ExternalRequestID is assigned by the provider at creation and, together with
// Provider, is the sole demultiplexing key for inbound webhooks.
type SignatureRequest struct {
	ID                uuid.UUID         `db:"id" json:"id"`
	ExternalRequestID string            `db:"external_request_id" json:"external_request_id"`
	DocumentID        uuid.UUID         `db:"document_id" json:"document_id"`
	Provider          SignatureProvider `db:"provider" json:"provider"`
	Signers           SignerList        `db:"signers" json:"signers"`
	SignerStatuses    SignerStatusMap   `db:"signer_statuses" json:"signer_statuses"`
	Status            SignatureStatus   `db:"status" json:"status"`
	CreatedBy         uuid.UUID         `db:"created_by" json:"created_by"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updated_at"`
	ExpiresAt         *time.Time        `db:"expires_at" json:"expires_at"`
}

// SignatureAuditEvent is an append-only record of a lifecycle-affecting event.
// RequestID is nil when the event failed before a request could be resolved,
// for example a webhook carrying an unrecognized external id.
type SignatureAuditEvent struct {
	ID           uuid.UUID         `db:"id" json:"id"`
	RequestID    *uuid.UUID        `db:"request_id" json:"request_id"`
	UserID       *uuid.UUID        `db:"user_id" json:"user_id"`
	Provider     SignatureProvider `db:"provider" json:"provider"`
	EventType    string            `db:"event_type" json:"event_type"`
	EventData    json.RawMessage   `db:"event_data" json:"event_data"`
	IPAddress    string            `db:"ip_address" json:"ip_address"`
	Status       AuditStatus       `db:"status" json:"status"`
	ErrorMessage *string           `db:"error_message" json:"error_message"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
}

// Document is the slice of the document collaborator this service reads.
// The signature core never mutates documents.
type Document struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	FileLocation string    `db:"file_location" json:"file_location"`
	CreatedBy    uuid.UUID `db:"created_by" json:"created_by"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
