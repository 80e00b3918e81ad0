package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"complitracker/internal/domain"
	"complitracker/internal/port"
)

type signatureAuditRepo struct {
	db *sqlx.DB
}

// NewSignatureAuditRepo creates a new PostgreSQL-backed SignatureAuditRepository.
// The audit log is append-only; no update or delete is exposed.
func NewSignatureAuditRepo(db *sqlx.DB) port.SignatureAuditRepository {
	return &signatureAuditRepo{db: db}
}

func (r *signatureAuditRepo) Create(ctx context.Context, event *domain.SignatureAuditEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO signature_audit_log
		   (id, request_id, user_id, provider, event_type, event_data, ip_address, status, error_message)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		event.ID, event.RequestID, event.UserID, event.Provider, event.EventType,
		event.EventData, event.IPAddress, event.Status, event.ErrorMessage)
	if err != nil {
		return fmt.Errorf("signatureAuditRepo.Create: %w", err)
	}
	return nil
}

func (r *signatureAuditRepo) ListByRequest(ctx context.Context, requestID uuid.UUID, offset, limit int) ([]domain.SignatureAuditEvent, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM signature_audit_log WHERE request_id = $1`, requestID)
	if err != nil {
		return nil, 0, fmt.Errorf("signatureAuditRepo.ListByRequest count: %w", err)
	}

	var events []domain.SignatureAuditEvent
	err = r.db.SelectContext(ctx, &events,
		`SELECT * FROM signature_audit_log
		 WHERE request_id = $1
		 ORDER BY created_at ASC
		 LIMIT $2 OFFSET $3`,
		requestID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("signatureAuditRepo.ListByRequest: %w", err)
	}
	return events, total, nil
}
