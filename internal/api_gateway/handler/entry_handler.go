package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/colonial-ledger-parser/internal/api_gateway/service"
)

// EntryHandler handles HTTP requests for parsed-entry reads
type EntryHandler struct {
	entryService service.EntryService
	logger       *slog.Logger
}

// NewEntryHandler creates a new parsed-entry handler
func NewEntryHandler(logger *slog.Logger, entryService service.EntryService) *EntryHandler {
	return &EntryHandler{
		entryService: entryService,
		logger:       logger,
	}
}

// GetByID retrieves a single parsed entry by its ID, returns 404 if not found
func (h *EntryHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid entry ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid entry ID")
		return
	}

	res, err := h.entryService.GetEntryByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get parsed entry", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	if res == nil {
		RespondNotFound(c, "Parsed entry not found")
		return
	}

	RespondOK(c, res)
}
