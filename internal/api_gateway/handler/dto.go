package handler

import (
	"github.com/colonial-ledger-parser/internal/domain/entry"
)

// CreateBatchRequest represents a request to submit a batch of transcribed rows
type CreateBatchRequest struct {
	LedgerName string         `json:"ledger_name" binding:"required"`
	Rows       []entry.RawRow `json:"rows" binding:"required,min=1"`
}

// BatchResponse represents a batch in API responses
type BatchResponse struct {
	ID            string `json:"id"`
	LedgerName    string `json:"ledger_name"`
	Status        string `json:"status"`
	RowCount      int    `json:"row_count"`
	FailedCount   int    `json:"failed_count"`
	FailureReason string `json:"failure_reason,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
	CompletedAt   string `json:"completed_at,omitempty"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}
