package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/hishab-app/hishab_backend/internal/core/domain"
	portsrepo "github.com/hishab-app/hishab_backend/internal/core/ports/repositories"
	portssvc "github.com/hishab-app/hishab_backend/internal/core/ports/services"
	"github.com/hishab-app/hishab_backend/internal/middleware"
)

// auditService appends audit records. Write failures never propagate: the
// financial effect is authoritative whether or not its audit record lands, so
// errors are logged and reported, then swallowed.
type auditService struct {
	auditRepo portsrepo.AuditRepositoryFacade
}

// NewAuditService creates a new audit sink.
func NewAuditService(auditRepo portsrepo.AuditRepositoryFacade) portssvc.AuditSvc {
	return &auditService{auditRepo: auditRepo}
}

var _ portssvc.AuditSvc = (*auditService)(nil)

func (s *auditService) Record(ctx context.Context, tableName, recordID string, op domain.OperationType, oldValues, newValues any, actorID, description string) {
	logger := middleware.GetLoggerFromCtx(ctx)

	record := domain.AuditRecord{
		AuditID:       uuid.NewString(),
		TableName:     tableName,
		RecordID:      recordID,
		OperationType: op,
		ActorID:       actorID,
		Description:   description,
		CreatedAt:     time.Now(),
	}

	if oldValues != nil {
		payload, err := json.Marshal(oldValues)
		if err != nil {
			logger.Error("Failed to marshal audit old values", "error", err, "table", tableName, "record_id", recordID)
			sentry.CaptureException(err)
		} else {
			record.OldValues = payload
		}
	}
	if newValues != nil {
		payload, err := json.Marshal(newValues)
		if err != nil {
			logger.Error("Failed to marshal audit new values", "error", err, "table", tableName, "record_id", recordID)
			sentry.CaptureException(err)
		} else {
			record.NewValues = payload
		}
	}

	if err := s.auditRepo.SaveAuditRecord(ctx, record); err != nil {
		logger.Error("Failed to save audit record", "error", err, "table", tableName, "record_id", recordID, "operation", string(op))
		sentry.CaptureException(err)
	}
}
