package models

import (
	"encoding/json"
	"time"
)

// AuditRecord is one append-only row in the audit trail.
type AuditRecord struct {
	AuditID       string          `db:"audit_id"`
	TableName     string          `db:"table_name"`
	RecordID      string          `db:"record_id"`
	OperationType string          `db:"operation_type"`
	OldValues     json.RawMessage `db:"old_values"` // Nullable JSONB
	NewValues     json.RawMessage `db:"new_values"` // Nullable JSONB
	ActorID       string          `db:"actor_id"`
	Description   string          `db:"description"`
	CreatedAt     time.Time       `db:"created_at"`
}
