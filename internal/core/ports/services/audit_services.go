package services

import (
	"context"

	"github.com/hishab-app/hishab_backend/internal/core/domain"
)

// AuditSvc is the best-effort audit sink. Recording never fails the caller:
// write errors are logged and reported, then swallowed.
type AuditSvc interface {
	// Record appends one audit record. oldValues/newValues are marshalled to
	// JSON; pass nil for the missing side on creates and deletes.
	Record(ctx context.Context, tableName, recordID string, op domain.OperationType, oldValues, newValues any, actorID, description string)
}
