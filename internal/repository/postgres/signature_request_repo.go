package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"complitracker/internal/domain"
	"complitracker/internal/port"
)

type signatureRequestRepo struct {
	db *sqlx.DB
}

// NewSignatureRequestRepo creates a new PostgreSQL-backed SignatureRequestRepository.
func NewSignatureRequestRepo(db *sqlx.DB) port.SignatureRequestRepository {
	return &signatureRequestRepo{db: db}
}

func (r *signatureRequestRepo) Create(ctx context.Context, req *domain.SignatureRequest) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO signature_requests
		   (id, external_request_id, document_id, provider, signers, signer_statuses,
		    status, created_by, created_at, updated_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		req.ID, req.ExternalRequestID, req.DocumentID, req.Provider, req.Signers,
		req.SignerStatuses, req.Status, req.CreatedBy, req.CreatedAt, req.UpdatedAt,
		req.ExpiresAt)
	if err != nil {
		return fmt.Errorf("signatureRequestRepo.Create: %w", err)
	}
	return nil
}

func (r *signatureRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.SignatureRequest, error) {
	var req domain.SignatureRequest
	err := r.db.GetContext(ctx, &req,
		`SELECT * FROM signature_requests WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("signatureRequestRepo.GetByID: %w", err)
	}
	return &req, nil
}

func (r *signatureRequestRepo) GetByExternalID(ctx context.Context, provider domain.SignatureProvider, externalID string) (*domain.SignatureRequest, error) {
	var req domain.SignatureRequest
	err := r.db.GetContext(ctx, &req,
		`SELECT * FROM signature_requests
		 WHERE provider = $1 AND external_request_id = $2`,
		provider, externalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("signatureRequestRepo.GetByExternalID: %w", err)
	}
	return &req, nil
}

// Update replaces the mutable fields wholesale. Signers, provider, and the
// external id are immutable after creation and deliberately not touched here.
func (r *signatureRequestRepo) Update(ctx context.Context, req *domain.SignatureRequest) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE signature_requests
		 SET signer_statuses = $1, status = $2, updated_at = $3, expires_at = $4
		 WHERE id = $5`,
		req.SignerStatuses, req.Status, req.UpdatedAt, req.ExpiresAt, req.ID)
	if err != nil {
		return fmt.Errorf("signatureRequestRepo.Update: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("signatureRequestRepo.Update rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

func (r *signatureRequestRepo) ListBySignerAndStatus(ctx context.Context, signerEmail string, status domain.SignatureStatus, offset, limit int) ([]domain.SignatureRequest, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM signature_requests
		 WHERE jsonb_exists(signers, $1) AND status = $2`,
		signerEmail, status)
	if err != nil {
		return nil, 0, fmt.Errorf("signatureRequestRepo.ListBySignerAndStatus count: %w", err)
	}

	var reqs []domain.SignatureRequest
	err = r.db.SelectContext(ctx, &reqs,
		`SELECT * FROM signature_requests
		 WHERE jsonb_exists(signers, $1) AND status = $2
		 ORDER BY created_at DESC
		 LIMIT $3 OFFSET $4`,
		signerEmail, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("signatureRequestRepo.ListBySignerAndStatus: %w", err)
	}
	return reqs, total, nil
}
