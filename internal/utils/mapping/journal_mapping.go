package mapping

import (
	"github.com/hishab-app/hishab_backend/internal/core/domain"
	"github.com/hishab-app/hishab_backend/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry to a model JournalEntry.
// Lines are mapped separately; the entry model is the header row only.
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:         d.EntryID,
		EntryNumber:     d.EntryNumber,
		EntryDate:       d.EntryDate,
		Description:     d.Description,
		Reference:       d.Reference,
		TotalDebit:      d.TotalDebit,
		TotalCredit:     d.TotalCredit,
		Status:          string(d.Status),
		SourceType:      d.SourceType,
		SourceID:        d.SourceID,
		IsAutoGenerated: d.IsAutoGenerated,
		IsReversal:      d.IsReversal,
		ReversesEntryID: d.ReversesEntryID,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a model JournalEntry to a domain JournalEntry
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:         m.EntryID,
		EntryNumber:     m.EntryNumber,
		EntryDate:       m.EntryDate,
		Description:     m.Description,
		Reference:       m.Reference,
		TotalDebit:      m.TotalDebit,
		TotalCredit:     m.TotalCredit,
		Status:          domain.EntryStatus(m.Status),
		SourceType:      m.SourceType,
		SourceID:        m.SourceID,
		IsAutoGenerated: m.IsAutoGenerated,
		IsReversal:      m.IsReversal,
		ReversesEntryID: m.ReversesEntryID,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainJournalEntrySlice converts a slice of model JournalEntries to a slice of domain JournalEntries
func ToDomainJournalEntrySlice(ms []models.JournalEntry) []domain.JournalEntry {
	ds := make([]domain.JournalEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJournalEntry(m)
	}
	return ds
}

// ToModelJournalEntryLine converts a domain JournalEntryLine to a model JournalEntryLine
func ToModelJournalEntryLine(d domain.JournalEntryLine) models.JournalEntryLine {
	return models.JournalEntryLine{
		LineID:           d.LineID,
		EntryID:          d.EntryID,
		LineNo:           d.LineNo,
		AccountCode:      d.AccountCode,
		AccountName:      d.AccountName,
		AccountType:      models.AccountType(d.AccountType),
		DebitAmount:      d.DebitAmount,
		CreditAmount:     d.CreditAmount,
		FunctionalDebit:  d.FunctionalDebit,
		FunctionalCredit: d.FunctionalCredit,
		OriginalCurrency: d.OriginalCurrency,
		OriginalAmount:   d.OriginalAmount,
		FxRateUsed:       d.FxRateUsed,
		Description:      d.Description,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntryLine converts a model JournalEntryLine to a domain JournalEntryLine
func ToDomainJournalEntryLine(m models.JournalEntryLine) domain.JournalEntryLine {
	return domain.JournalEntryLine{
		LineID:           m.LineID,
		EntryID:          m.EntryID,
		LineNo:           m.LineNo,
		AccountCode:      m.AccountCode,
		AccountName:      m.AccountName,
		AccountType:      domain.AccountType(m.AccountType),
		DebitAmount:      m.DebitAmount,
		CreditAmount:     m.CreditAmount,
		FunctionalDebit:  m.FunctionalDebit,
		FunctionalCredit: m.FunctionalCredit,
		OriginalCurrency: m.OriginalCurrency,
		OriginalAmount:   m.OriginalAmount,
		FxRateUsed:       m.FxRateUsed,
		Description:      m.Description,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainJournalEntryLineSlice converts a slice of model lines to a slice of domain lines
func ToDomainJournalEntryLineSlice(ms []models.JournalEntryLine) []domain.JournalEntryLine {
	ds := make([]domain.JournalEntryLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJournalEntryLine(m)
	}
	return ds
}

// ToModelAutoJournalLink converts a domain AutoJournalLink to a model AutoJournalLink
func ToModelAutoJournalLink(d domain.AutoJournalLink) models.AutoJournalLink {
	return models.AutoJournalLink{
		LinkID:        d.LinkID,
		SourceTable:   d.SourceTable,
		SourceID:      d.SourceID,
		EntryID:       d.EntryID,
		OperationType: string(d.OperationType),
		IsReversal:    d.IsReversal,
		CreatedAt:     d.CreatedAt,
		CreatedBy:     d.CreatedBy,
	}
}

// ToDomainAutoJournalLink converts a model AutoJournalLink to a domain AutoJournalLink
func ToDomainAutoJournalLink(m models.AutoJournalLink) domain.AutoJournalLink {
	return domain.AutoJournalLink{
		LinkID:        m.LinkID,
		SourceTable:   m.SourceTable,
		SourceID:      m.SourceID,
		EntryID:       m.EntryID,
		OperationType: domain.OperationType(m.OperationType),
		IsReversal:    m.IsReversal,
		CreatedAt:     m.CreatedAt,
		CreatedBy:     m.CreatedBy,
	}
}

// ToDomainAutoJournalLinkSlice converts a slice of model links to a slice of domain links
func ToDomainAutoJournalLinkSlice(ms []models.AutoJournalLink) []domain.AutoJournalLink {
	ds := make([]domain.AutoJournalLink, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAutoJournalLink(m)
	}
	return ds
}

// ToModelFxSnapshot converts a domain FxSnapshot to a model FxSnapshot
func ToModelFxSnapshot(d domain.FxSnapshot) models.FxSnapshot {
	return models.FxSnapshot{
		SnapshotID:   d.SnapshotID,
		SourceTable:  d.SourceTable,
		SourceID:     d.SourceID,
		CurrencyCode: d.CurrencyCode,
		Rate:         d.Rate,
		RateDate:     d.RateDate,
		CreatedAt:    d.CreatedAt,
		CreatedBy:    d.CreatedBy,
	}
}

// ToDomainFxSnapshot converts a model FxSnapshot to a domain FxSnapshot
func ToDomainFxSnapshot(m models.FxSnapshot) domain.FxSnapshot {
	return domain.FxSnapshot{
		SnapshotID:   m.SnapshotID,
		SourceTable:  m.SourceTable,
		SourceID:     m.SourceID,
		CurrencyCode: m.CurrencyCode,
		Rate:         m.Rate,
		RateDate:     m.RateDate,
		CreatedAt:    m.CreatedAt,
		CreatedBy:    m.CreatedBy,
	}
}
