package dto

import (
	"time"

	"github.com/hishab-app/hishab_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalEntryLineResponse defines the data returned for one entry leg.
type JournalEntryLineResponse struct {
	LineID           string          `json:"lineID"`
	LineNo           int             `json:"lineNo"`
	AccountCode      string          `json:"accountCode"`
	AccountName      string          `json:"accountName"`
	AccountType      string          `json:"accountType"`
	DebitAmount      decimal.Decimal `json:"debitAmount"`
	CreditAmount     decimal.Decimal `json:"creditAmount"`
	FunctionalDebit  decimal.Decimal `json:"functionalDebit"`
	FunctionalCredit decimal.Decimal `json:"functionalCredit"`
	OriginalCurrency string          `json:"originalCurrency"`
	OriginalAmount   decimal.Decimal `json:"originalAmount"`
	FxRateUsed       decimal.Decimal `json:"fxRateUsed"`
	Description      string          `json:"description,omitempty"`
}

// JournalEntryResponse defines the data returned for a journal entry. Lines
// are present when the caller asked for a single entry.
type JournalEntryResponse struct {
	EntryID         string                     `json:"entryID"`
	EntryNumber     string                     `json:"entryNumber"`
	EntryDate       time.Time                  `json:"entryDate"`
	Description     string                     `json:"description"`
	Reference       string                     `json:"reference,omitempty"`
	TotalDebit      decimal.Decimal            `json:"totalDebit"`
	TotalCredit     decimal.Decimal            `json:"totalCredit"`
	Status          string                     `json:"status"`
	SourceType      string                     `json:"sourceType"`
	SourceID        string                     `json:"sourceID"`
	IsAutoGenerated bool                       `json:"isAutoGenerated"`
	IsReversal      bool                       `json:"isReversal"`
	ReversesEntryID *string                    `json:"reversesEntryID,omitempty"`
	CreatedAt       time.Time                  `json:"createdAt"`
	CreatedBy       string                     `json:"createdBy"`
	Lines           []JournalEntryLineResponse `json:"lines,omitempty"`
}

// ToJournalEntryLineResponse converts a domain.JournalEntryLine to its DTO
func ToJournalEntryLineResponse(line *domain.JournalEntryLine) JournalEntryLineResponse {
	return JournalEntryLineResponse{
		LineID:           line.LineID,
		LineNo:           line.LineNo,
		AccountCode:      line.AccountCode,
		AccountName:      line.AccountName,
		AccountType:      string(line.AccountType),
		DebitAmount:      line.DebitAmount,
		CreditAmount:     line.CreditAmount,
		FunctionalDebit:  line.FunctionalDebit,
		FunctionalCredit: line.FunctionalCredit,
		OriginalCurrency: line.OriginalCurrency,
		OriginalAmount:   line.OriginalAmount,
		FxRateUsed:       line.FxRateUsed,
		Description:      line.Description,
	}
}

// ToJournalEntryResponse converts a domain.JournalEntry to JournalEntryResponse DTO
func ToJournalEntryResponse(entry *domain.JournalEntry) JournalEntryResponse {
	resp := JournalEntryResponse{
		EntryID:         entry.EntryID,
		EntryNumber:     entry.EntryNumber,
		EntryDate:       entry.EntryDate,
		Description:     entry.Description,
		Reference:       entry.Reference,
		TotalDebit:      entry.TotalDebit,
		TotalCredit:     entry.TotalCredit,
		Status:          string(entry.Status),
		SourceType:      entry.SourceType,
		SourceID:        entry.SourceID,
		IsAutoGenerated: entry.IsAutoGenerated,
		IsReversal:      entry.IsReversal,
		ReversesEntryID: entry.ReversesEntryID,
		CreatedAt:       entry.CreatedAt,
		CreatedBy:       entry.CreatedBy,
	}
	if len(entry.Lines) > 0 {
		resp.Lines = make([]JournalEntryLineResponse, len(entry.Lines))
		for i, line := range entry.Lines {
			resp.Lines[i] = ToJournalEntryLineResponse(&line)
		}
	}
	return resp
}

// ToListJournalEntryResponse converts a slice of domain.JournalEntry to a slice of JournalEntryResponse DTOs
func ToListJournalEntryResponse(entries []domain.JournalEntry) []JournalEntryResponse {
	res := make([]JournalEntryResponse, len(entries))
	for i, entry := range entries {
		res[i] = ToJournalEntryResponse(&entry)
	}
	return res
}

// ListEntriesParams defines query parameters for listing journal entries.
type ListEntriesParams struct {
	Limit            int     `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	NextToken        *string `form:"nextToken"`
	IncludeReversals bool    `form:"includeReversals,default=true"`
}

// ListEntriesResponse wraps one page of entries with the token for the next
// page.
type ListEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}
