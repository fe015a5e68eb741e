// Package middleware provides HTTP middleware and audit logging.
package middleware

import (
	"context"
	"log/slog"
	"time"
)

// AuditLog documents the shape of an audit log record.
type AuditLog struct {
	Operation  string `json:"operation"`
	DocumentID string `json:"document_id,omitempty"`
	Result     string `json:"result"`
	Timestamp  string `json:"timestamp"`
}

// WriteAuditLog emits an audit log record for a document operation.
func WriteAuditLog(ctx context.Context, operation string, documentID string, result string) {
	slog.InfoContext(ctx, "document operation completed",
		"operation", operation,
		"document_id", documentID,
		"result", result,
		"timestamp", time.Now().UTC().Format(time.RFC3339),
	)
}
