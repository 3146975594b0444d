package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/colonial-ledger-parser/internal/domain/batch"
	"github.com/colonial-ledger-parser/internal/parse_processor/service"
	"github.com/colonial-ledger-parser/internal/platform/messaging/producers"
)

// BatchEventHandler handles incoming parse batch request messages from Kafka
type BatchEventHandler struct {
	processingService service.ProcessingService
	producer          producers.DeadLetterPublisher
	logger            *slog.Logger
}

// NewBatchEventHandler creates a new handler
func NewBatchEventHandler(
	logger *slog.Logger,
	processingService service.ProcessingService,
	producer producers.DeadLetterPublisher,
) *BatchEventHandler {
	return &BatchEventHandler{
		processingService: processingService,
		producer:          producer,
		logger:            logger,
	}
}

// HandleMessage processes Kafka messages
func (h *BatchEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var request batch.ParseRequest
	if err := json.Unmarshal(value, &request); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal parse request from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		// Send to DLQ if available
		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
				// Return original error if DLQ fails
			} else {
				h.logger.Info("Successfully published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	// Add correlation ID to logger
	logger := h.logger
	if request.CorrelationID != "" {
		logger = h.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Received parse request for processing",
		"batch_id", request.BatchID.String(),
		"ledger_name", request.LedgerName,
		"row_count", len(request.Rows),
	)

	if err := h.processingService.ProcessBatch(ctx, &request); err != nil {
		logger.Error("Failed to process parse batch",
			"batch_id", request.BatchID.String(),
			"error", err,
		)
		return fmt.Errorf("processing batch %s failed: %w", request.BatchID.String(), err)
	}

	logger.Info("Successfully processed parse batch", "batch_id", request.BatchID.String())
	return nil // Success, commit offset
}
