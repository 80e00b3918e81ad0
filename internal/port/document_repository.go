package port

import (
	"context"

	"github.com/google/uuid"

	"complitracker/internal/domain"
)

// DocumentRepository reads document metadata owned by the document collaborator.
type DocumentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error)
}
