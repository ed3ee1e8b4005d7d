package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents one source document row (expense or payment).
// exchange_rate, functional_amount and journal_entry_id are denormalized
// posting results, nullable until the first post.
type Transaction struct {
	TransactionID     string           `db:"transaction_id"`
	TransactionNumber string           `db:"transaction_number"` // e.g. EXP-2024-0001
	Kind              string           `db:"kind"`               // expense | payment
	TransactionDate   time.Time        `db:"transaction_date"`
	Amount            decimal.Decimal  `db:"amount"` // NUMERIC(18,2), original currency
	CurrencyCode      string           `db:"currency_code"`
	Category          string           `db:"category"`
	PaymentMethod     string           `db:"payment_method"`
	BankAccountID     *string          `db:"bank_account_id"` // Nullable FK
	Status            string           `db:"status"`          // pending | paid | cancelled
	Description       string           `db:"description"`
	ExchangeRate      *decimal.Decimal `db:"exchange_rate"`      // Nullable, NUMERIC(18,6)
	FunctionalAmount  *decimal.Decimal `db:"functional_amount"`  // Nullable, NUMERIC(18,2)
	CalculationMethod string           `db:"calculation_method"` // amount_drives_functional | functional_drives_rate
	RateSource        string           `db:"rate_source"`        // Nullable
	JournalEntryID    *string          `db:"journal_entry_id"`   // Nullable FK, active entry
	AuditFields
}
