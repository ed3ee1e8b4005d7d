package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the state of a journal entry. Engine-generated entries
// are always posted; draft exists for the schema's sake and is never written by
// the posting pipeline.
type EntryStatus string

const (
	EntryDraft  EntryStatus = "draft"
	EntryPosted EntryStatus = "posted"
)

// BalanceTolerance is the maximum allowed difference between an entry's debit
// and credit totals, absorbing minor-unit rounding.
var BalanceTolerance = decimal.NewFromFloat(0.01)

// JournalEntry is one balanced double-entry record. Entries are immutable once
// persisted: corrections happen through new mirrored entries, never edits.
type JournalEntry struct {
	EntryID         string          `json:"entryID"`     // Primary Key (e.g., UUID)
	EntryNumber     string          `json:"entryNumber"` // e.g., JE-2024-0001, unique per year
	EntryDate       time.Time       `json:"entryDate"`
	Description     string          `json:"description"`
	Reference       string          `json:"reference"` // e.g., source doc or reversed entry number
	TotalDebit      decimal.Decimal `json:"totalDebit"`
	TotalCredit     decimal.Decimal `json:"totalCredit"`
	Status          EntryStatus     `json:"status"`
	SourceType      string          `json:"sourceType"` // Source table name, e.g., "transactions"
	SourceID        string          `json:"sourceID"`
	IsAutoGenerated bool            `json:"isAutoGenerated"`
	IsReversal      bool            `json:"isReversal"`
	ReversesEntryID *string         `json:"reversesEntryID,omitempty"` // Set on reversal entries
	AuditFields
	Lines []JournalEntryLine `json:"lines,omitempty"` // Loaded on demand
}

// IsBalanced reports whether debit and credit totals agree within tolerance.
func (e *JournalEntry) IsBalanced() bool {
	return e.TotalDebit.Sub(e.TotalCredit).Abs().LessThanOrEqual(BalanceTolerance)
}

// JournalEntryLine is one leg of an entry. Exactly one of DebitAmount and
// CreditAmount is non-zero. Lines always carry the original currency, amount
// and rate so the conversion stays traceable even when rate = 1.
type JournalEntryLine struct {
	LineID           string          `json:"lineID"` // Primary Key (e.g., UUID)
	EntryID          string          `json:"entryID"`
	LineNo           int             `json:"lineNo"`
	AccountCode      string          `json:"accountCode"`
	AccountName      string          `json:"accountName"`
	AccountType      AccountType     `json:"accountType"`
	DebitAmount      decimal.Decimal `json:"debitAmount"`  // Functional currency
	CreditAmount     decimal.Decimal `json:"creditAmount"` // Functional currency
	FunctionalDebit  decimal.Decimal `json:"functionalDebit"`
	FunctionalCredit decimal.Decimal `json:"functionalCredit"`
	OriginalCurrency string          `json:"originalCurrency"`
	OriginalAmount   decimal.Decimal `json:"originalAmount"`
	FxRateUsed       decimal.Decimal `json:"fxRateUsed"`
	Description      string          `json:"description"`
	AuditFields
}

// AutoJournalLink ties a source transaction to the entry a state change
// produced. The newest link for a source identifies its currently active entry;
// a newest link with IsReversal set means the source has no active entry.
type AutoJournalLink struct {
	LinkID        string        `json:"linkID"` // Primary Key (e.g., UUID)
	SourceTable   string        `json:"sourceTable"`
	SourceID      string        `json:"sourceID"`
	EntryID       string        `json:"entryID"`
	OperationType OperationType `json:"operationType"`
	IsReversal    bool          `json:"isReversal"`
	CreatedAt     time.Time     `json:"createdAt"`
	CreatedBy     string        `json:"createdBy"`
}

// FxSnapshot records the rate applied to one foreign-currency posting,
// independent of the journal, for point-in-time traceability.
type FxSnapshot struct {
	SnapshotID   string          `json:"snapshotID"` // Primary Key (e.g., UUID)
	SourceTable  string          `json:"sourceTable"`
	SourceID     string          `json:"sourceID"`
	CurrencyCode string          `json:"currencyCode"` // Original (foreign) currency
	Rate         decimal.Decimal `json:"rate"`
	RateDate     time.Time       `json:"rateDate"` // Effective date of the applied rate
	CreatedAt    time.Time       `json:"createdAt"`
	CreatedBy    string          `json:"createdBy"`
}
