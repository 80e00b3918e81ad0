package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"complitracker/internal/domain"
	"complitracker/internal/port"
)

// Page size used when draining the audit log for export.
const exportBatchSize = 500

// AuditExportService renders a request's full audit trail as an xlsx workbook
// for offline compliance review.
type AuditExportService interface {
	ExportByRequest(ctx context.Context, requestID uuid.UUID) ([]byte, error)
}

type auditExportService struct {
	reqRepo   port.SignatureRequestRepository
	auditRepo port.SignatureAuditRepository
}

// NewAuditExportService creates a new AuditExportService implementation.
func NewAuditExportService(reqRepo port.SignatureRequestRepository, auditRepo port.SignatureAuditRepository) AuditExportService {
	return &auditExportService{reqRepo: reqRepo, auditRepo: auditRepo}
}

var exportHeaders = []string{
	"Event ID", "Event Type", "Provider", "Status", "User ID",
	"IP Address", "Error Message", "Created At",
}

func (s *auditExportService) ExportByRequest(ctx context.Context, requestID uuid.UUID) ([]byte, error) {
	if _, err := s.reqRepo.GetByID(ctx, requestID); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Audit Trail"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}

	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("writing header: %w", err)
		}
	}

	row := 2
	offset := 0
	for {
		events, total, err := s.auditRepo.ListByRequest(ctx, requestID, offset, exportBatchSize)
		if err != nil {
			return nil, fmt.Errorf("listing audit events: %w", err)
		}
		for _, event := range events {
			if err := s.writeRow(f, sheet, row, &event); err != nil {
				return nil, err
			}
			row++
		}
		offset += len(events)
		if offset >= total || len(events) == 0 {
			break
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *auditExportService) writeRow(f *excelize.File, sheet string, row int, event *domain.SignatureAuditEvent) error {
	userID := ""
	if event.UserID != nil {
		userID = event.UserID.String()
	}
	errMsg := ""
	if event.ErrorMessage != nil {
		errMsg = *event.ErrorMessage
	}
	values := []interface{}{
		event.ID.String(),
		event.EventType,
		string(event.Provider),
		string(event.Status),
		userID,
		event.IPAddress,
		errMsg,
		event.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	for col, val := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		if err := f.SetCellValue(sheet, cell, val); err != nil {
			return fmt.Errorf("writing row %d: %w", row, err)
		}
	}
	return nil
}
