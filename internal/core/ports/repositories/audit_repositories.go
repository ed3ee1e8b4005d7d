package repositories

import (
	"context"

	"github.com/hishab-app/hishab_backend/internal/core/domain"
)

// AuditRecordWriter defines the append operation for the audit trail. There is
// no update or delete: records are write-once.
type AuditRecordWriter interface {
	// SaveAuditRecord appends one audit record.
	SaveAuditRecord(ctx context.Context, record domain.AuditRecord) error
}

// AuditRepositoryFacade combines all audit-related repository interfaces
type AuditRepositoryFacade interface {
	AuditRecordWriter
}
