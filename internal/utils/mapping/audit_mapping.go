package mapping

import (
	"github.com/hishab-app/hishab_backend/internal/core/domain"
	"github.com/hishab-app/hishab_backend/internal/models"
)

// ToModelAuditRecord converts a domain AuditRecord to a model AuditRecord
func ToModelAuditRecord(d domain.AuditRecord) models.AuditRecord {
	return models.AuditRecord{
		AuditID:       d.AuditID,
		TableName:     d.TableName,
		RecordID:      d.RecordID,
		OperationType: string(d.OperationType),
		OldValues:     d.OldValues,
		NewValues:     d.NewValues,
		ActorID:       d.ActorID,
		Description:   d.Description,
		CreatedAt:     d.CreatedAt,
	}
}

// ToDomainAuditRecord converts a model AuditRecord to a domain AuditRecord
func ToDomainAuditRecord(m models.AuditRecord) domain.AuditRecord {
	return domain.AuditRecord{
		AuditID:       m.AuditID,
		TableName:     m.TableName,
		RecordID:      m.RecordID,
		OperationType: domain.OperationType(m.OperationType),
		OldValues:     m.OldValues,
		NewValues:     m.NewValues,
		ActorID:       m.ActorID,
		Description:   m.Description,
		CreatedAt:     m.CreatedAt,
	}
}

// ToDomainAuditRecordSlice converts a slice of model AuditRecords to a slice of domain AuditRecords
func ToDomainAuditRecordSlice(ms []models.AuditRecord) []domain.AuditRecord {
	ds := make([]domain.AuditRecord, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAuditRecord(m)
	}
	return ds
}
