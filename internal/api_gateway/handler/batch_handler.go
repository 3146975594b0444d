package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/colonial-ledger-parser/internal/api_gateway/middleware"
	"github.com/colonial-ledger-parser/internal/api_gateway/service"
	"github.com/colonial-ledger-parser/internal/config"
	"github.com/colonial-ledger-parser/internal/domain/batch"
	"github.com/colonial-ledger-parser/internal/ingest/xlsx"
)

// BatchHandler handles HTTP requests for batch submission and tracking
type BatchHandler struct {
	batchService service.BatchService
	uploadCfg    config.UploadConfig
	logger       *slog.Logger
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(logger *slog.Logger, batchService service.BatchService, uploadCfg config.UploadConfig) *BatchHandler {
	return &BatchHandler{
		batchService: batchService,
		uploadCfg:    uploadCfg,
		logger:       logger,
	}
}

// Create accepts a JSON batch of transcribed rows and queues it for parsing
func (h *BatchHandler) Create(c *gin.Context) {
	var req CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if h.uploadCfg.MaxRows > 0 && len(req.Rows) > h.uploadCfg.MaxRows {
		h.logger.Error("Batch exceeds row limit", "row_count", len(req.Rows), "max_rows", h.uploadCfg.MaxRows)
		RespondPayloadTooLarge(c, "Batch exceeds the maximum number of rows")
		return
	}

	b, err := h.batchService.CreateBatch(c.Request.Context(), req.LedgerName, middleware.GetCorrelationID(c), req.Rows)
	if err != nil {
		if errors.Is(err, batch.ErrEmptyLedgerName) || errors.Is(err, batch.ErrNoRows) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to create batch", "ledger_name", req.LedgerName, "error", err)
		RespondInternalError(c)
		return
	}

	RespondAccepted(c, gin.H{
		"batch_id":  b.ID.String(),
		"status":    string(b.Status),
		"row_count": b.RowCount,
	})
}

// Upload accepts a transcription workbook (.xlsx), extracts its rows and
// queues them for parsing. The ledger name defaults to the workbook filename.
func (h *BatchHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.logger.Error("Missing workbook file in upload", "error", err)
		RespondBadRequest(c, "A workbook file is required in the 'file' form field")
		return
	}

	if h.uploadCfg.MaxFileBytes > 0 && fileHeader.Size > h.uploadCfg.MaxFileBytes {
		h.logger.Error("Uploaded workbook too large", "size", fileHeader.Size, "max_bytes", h.uploadCfg.MaxFileBytes)
		RespondPayloadTooLarge(c, "Workbook exceeds the maximum upload size")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded workbook", "filename", fileHeader.Filename, "error", err)
		RespondInternalError(c)
		return
	}
	defer f.Close()

	rows, err := xlsx.ReadRows(f)
	if err != nil {
		h.logger.Error("Failed to read uploaded workbook", "filename", fileHeader.Filename, "error", err)
		RespondBadRequest(c, "Could not read workbook: "+err.Error())
		return
	}

	if h.uploadCfg.MaxRows > 0 && len(rows) > h.uploadCfg.MaxRows {
		h.logger.Error("Uploaded workbook exceeds row limit", "row_count", len(rows), "max_rows", h.uploadCfg.MaxRows)
		RespondPayloadTooLarge(c, "Workbook exceeds the maximum number of rows")
		return
	}

	ledgerName := c.PostForm("ledger_name")
	if ledgerName == "" {
		ledgerName = strings.TrimSuffix(fileHeader.Filename, filepath.Ext(fileHeader.Filename))
	}

	b, err := h.batchService.CreateBatch(c.Request.Context(), ledgerName, middleware.GetCorrelationID(c), rows)
	if err != nil {
		if errors.Is(err, batch.ErrEmptyLedgerName) || errors.Is(err, batch.ErrNoRows) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to create batch from workbook", "ledger_name", ledgerName, "error", err)
		RespondInternalError(c)
		return
	}

	RespondAccepted(c, gin.H{
		"batch_id":  b.ID.String(),
		"status":    string(b.Status),
		"row_count": b.RowCount,
	})
}

// GetByID retrieves batch status by its ID, returns 404 if not found
func (h *BatchHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid batch ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid batch ID")
		return
	}

	b, err := h.batchService.GetBatchByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get batch", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	if b == nil {
		RespondNotFound(c, "Batch not found")
		return
	}

	RespondOK(c, mapBatchToResponse(b))
}

// GetEntries retrieves the paginated parsed entries of a batch
func (h *BatchHandler) GetEntries(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid batch ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid batch ID")
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	entries, total, err := h.batchService.GetBatchEntries(
		c.Request.Context(),
		id,
		pagination.Page,
		pagination.PerPage,
	)
	if err != nil {
		if errors.Is(err, batch.ErrBatchNotFound{}) {
			RespondNotFound(c, "Batch not found")
			return
		}
		h.logger.Error("Failed to get batch entries", "batch_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondWithPaginatedData(c, http.StatusOK, entries, pagination.Page, pagination.PerPage, int(total))
}

// mapBatchToResponse maps a batch to a response DTO
func mapBatchToResponse(b *batch.Batch) BatchResponse {
	response := BatchResponse{
		ID:            b.ID.String(),
		LedgerName:    b.LedgerName,
		Status:        string(b.Status),
		RowCount:      b.RowCount,
		FailedCount:   b.FailedCount,
		FailureReason: b.FailureReason,
		CreatedAt:     b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     b.UpdatedAt.Format(time.RFC3339),
	}

	if b.CompletedAt != nil {
		response.CompletedAt = b.CompletedAt.Format(time.RFC3339)
	}

	return response
}
