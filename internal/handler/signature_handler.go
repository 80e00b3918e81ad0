package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"complitracker/internal/domain"
	"complitracker/internal/middleware"
	"complitracker/internal/service"
)

// SignatureHandler exposes signature request lifecycle endpoints.
type SignatureHandler struct {
	signatures service.SignatureService
	exports    service.AuditExportService
}

// NewSignatureHandler creates a new SignatureHandler.
func NewSignatureHandler(signatures service.SignatureService, exports service.AuditExportService) *SignatureHandler {
	return &SignatureHandler{signatures: signatures, exports: exports}
}

// CreateSignatureRequestBody is the request payload for creating a signature request.
type CreateSignatureRequestBody struct {
	DocumentID string   `json:"document_id" binding:"required,uuid"`
	Provider   string   `json:"provider" binding:"required"`
	Signers    []string `json:"signers" binding:"required,min=1,dive,email"`
}

// Create godoc
// @Summary      Create a signature request
// @Description  Sends a document out for e-signature through the chosen provider
// @Tags         signature-requests
// @Accept       json
// @Produce      json
// @Param        request  body      CreateSignatureRequestBody  true  "Signature request details"
// @Success      201      {object}  APIResponse{data=domain.SignatureRequest}
// @Failure      400      {object}  APIResponse
// @Failure      422      {object}  APIResponse
// @Failure      502      {object}  APIResponse
// @Security     BearerAuth
// @Router       /signature-requests [post]
func (h *SignatureHandler) Create(c *gin.Context) {
	var body CreateSignatureRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	docID, err := uuid.Parse(body.DocumentID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "document_id must be a valid UUID")
		return
	}

	userID, err := middleware.GetUserID(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	req, err := h.signatures.Create(c.Request.Context(), &service.CreateSignatureRequestInput{
		DocumentID: docID,
		Provider:   domain.SignatureProvider(body.Provider),
		Signers:    body.Signers,
		CreatedBy:  userID,
		IPAddress:  c.ClientIP(),
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, req)
}

// GetByID godoc
// @Summary      Get a signature request
// @Tags         signature-requests
// @Produce      json
// @Param        id   path      string  true  "Signature request ID"
// @Success      200  {object}  APIResponse{data=domain.SignatureRequest}
// @Failure      404  {object}  APIResponse
// @Security     BearerAuth
// @Router       /signature-requests/{id} [get]
func (h *SignatureHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "id must be a valid UUID")
		return
	}

	req, err := h.signatures.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, req)
}

// Cancel godoc
// @Summary      Cancel a signature request
// @Description  Voids the request at the provider and marks it cancelled
// @Tags         signature-requests
// @Produce      json
// @Param        id   path      string  true  "Signature request ID"
// @Success      200  {object}  APIResponse{data=domain.SignatureRequest}
// @Failure      404  {object}  APIResponse
// @Failure      502  {object}  APIResponse
// @Security     BearerAuth
// @Router       /signature-requests/{id}/cancel [post]
func (h *SignatureHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "id must be a valid UUID")
		return
	}

	userID, err := middleware.GetUserID(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	req, err := h.signatures.Cancel(c.Request.Context(), id, userID, c.ClientIP())
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, req)
}

// ListPending godoc
// @Summary      List pending signature requests for a signer
// @Tags         signature-requests
// @Produce      json
// @Param        signer  query     string  false  "Signer email; defaults to the caller"
// @Param        offset  query     int     false  "Pagination offset"
// @Param        limit   query     int     false  "Page size (max 100)"
// @Success      200     {object}  APIResponse{data=[]domain.SignatureRequest}
// @Security     BearerAuth
// @Router       /signature-requests/pending [get]
func (h *SignatureHandler) ListPending(c *gin.Context) {
	signer := c.Query("signer")
	if signer == "" {
		signer = middleware.GetEmail(c)
	}
	if signer == "" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "signer email is required")
		return
	}

	offset, limit := parsePagination(c)

	reqs, total, err := h.signatures.ListPendingForSigner(c.Request.Context(), signer, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, reqs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// ListAudit godoc
// @Summary      List audit events for a signature request
// @Tags         signature-requests
// @Produce      json
// @Param        id      path      string  true   "Signature request ID"
// @Param        offset  query     int     false  "Pagination offset"
// @Param        limit   query     int     false  "Page size (max 100)"
// @Success      200     {object}  APIResponse{data=[]domain.SignatureAuditEvent}
// @Failure      404     {object}  APIResponse
// @Security     BearerAuth
// @Router       /signature-requests/{id}/audit [get]
func (h *SignatureHandler) ListAudit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "id must be a valid UUID")
		return
	}

	offset, limit := parsePagination(c)

	events, total, err := h.signatures.ListAuditEvents(c.Request.Context(), id, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, events, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// ExportAudit godoc
// @Summary      Export the audit trail of a signature request as an Excel file
// @Tags         signature-requests
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id   path  string  true  "Signature request ID"
// @Success      200  {file}    binary
// @Failure      404  {object}  APIResponse
// @Security     BearerAuth
// @Router       /signature-requests/{id}/audit/export [get]
func (h *SignatureHandler) ExportAudit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "id must be a valid UUID")
		return
	}

	data, err := h.exports.ExportByRequest(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("audit-%s-%s.xlsx", id, time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return offset, limit
}
