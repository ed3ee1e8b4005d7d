package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry represents one balanced double-entry record row. Rows are
// insert-only; corrections land as new reversal rows.
type JournalEntry struct {
	EntryID         string          `db:"entry_id"`
	EntryNumber     string          `db:"entry_number"` // e.g. JE-2024-0001, unique
	EntryDate       time.Time       `db:"entry_date"`
	Description     string          `db:"description"`
	Reference       string          `db:"reference"`
	TotalDebit      decimal.Decimal `db:"total_debit"`
	TotalCredit     decimal.Decimal `db:"total_credit"`
	Status          string          `db:"status"` // draft | posted
	SourceType      string          `db:"source_type"`
	SourceID        string          `db:"source_id"`
	IsAutoGenerated bool            `db:"is_auto_generated"`
	IsReversal      bool            `db:"is_reversal"`
	ReversesEntryID *string         `db:"reverses_entry_id"` // Nullable FK
	AuditFields
}

// JournalEntryLine represents one leg of an entry. Exactly one of debit_amount
// and credit_amount is positive.
type JournalEntryLine struct {
	LineID           string          `db:"line_id"`
	EntryID          string          `db:"entry_id"`
	LineNo           int             `db:"line_no"`
	AccountCode      string          `db:"account_code"` // Snapshot, not FK
	AccountName      string          `db:"account_name"`
	AccountType      AccountType     `db:"account_type"`
	DebitAmount      decimal.Decimal `db:"debit_amount"`
	CreditAmount     decimal.Decimal `db:"credit_amount"`
	FunctionalDebit  decimal.Decimal `db:"functional_debit"`
	FunctionalCredit decimal.Decimal `db:"functional_credit"`
	OriginalCurrency string          `db:"original_currency"`
	OriginalAmount   decimal.Decimal `db:"original_amount"`
	FxRateUsed       decimal.Decimal `db:"fx_rate_used"`
	Description      string          `db:"description"`
	AuditFields
}

// AutoJournalLink ties a source row to an entry produced by one of its state
// changes. The newest link per source wins.
type AutoJournalLink struct {
	LinkID        string    `db:"link_id"`
	SourceTable   string    `db:"source_table"`
	SourceID      string    `db:"source_id"`
	EntryID       string    `db:"entry_id"`
	OperationType string    `db:"operation_type"` // create | update | delete
	IsReversal    bool      `db:"is_reversal"`
	CreatedAt     time.Time `db:"created_at"`
	CreatedBy     string    `db:"created_by"`
}

// FxSnapshot records the rate applied to one foreign-currency posting.
type FxSnapshot struct {
	SnapshotID   string          `db:"snapshot_id"`
	SourceTable  string          `db:"source_table"`
	SourceID     string          `db:"source_id"`
	CurrencyCode string          `db:"currency_code"`
	Rate         decimal.Decimal `db:"rate"`
	RateDate     time.Time       `db:"rate_date"`
	CreatedAt    time.Time       `db:"created_at"`
	CreatedBy    string          `db:"created_by"`
}
