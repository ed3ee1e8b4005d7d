package models

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account represents a ledger account row in the chart of accounts.
type Account struct {
	AccountID    string      `db:"account_id"`
	Code         string      `db:"code"` // Unique chart code, e.g. "5000"
	Name         string      `db:"name"`
	AccountType  AccountType `db:"account_type"`
	CurrencyCode string      `db:"currency_code"`
	Description  string      `db:"description"` // Nullable
	IsActive     bool        `db:"is_active"`
	AuditFields
}
