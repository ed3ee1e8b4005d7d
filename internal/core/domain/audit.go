package domain

import (
	"encoding/json"
	"time"
)

// AuditRecord captures before/after values of one mutation. Records are
// append-only: this core never updates or deletes them.
type AuditRecord struct {
	AuditID       string          `json:"auditID"` // Primary Key (e.g., UUID)
	TableName     string          `json:"tableName"`
	RecordID      string          `json:"recordID"`
	OperationType OperationType   `json:"operationType"`
	OldValues     json.RawMessage `json:"oldValues,omitempty"` // Nullable (creates)
	NewValues     json.RawMessage `json:"newValues,omitempty"` // Nullable (deletes)
	ActorID       string          `json:"actorID"`
	Description   string          `json:"description"`
	CreatedAt     time.Time       `json:"createdAt"`
}
