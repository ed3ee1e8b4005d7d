package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account represents one ledger account in the chart of accounts.
// This is the primary representation used by services.
type Account struct {
	AccountID    string      `json:"accountID"`    // Primary Key (e.g., UUID)
	Code         string      `json:"code"`         // Chart code (e.g., "5000"), unique
	Name         string      `json:"name"`         // e.g., "Office Rent"
	AccountType  AccountType `json:"accountType"`  // ASSET, LIABILITY, etc.
	CurrencyCode string      `json:"currencyCode"` // FK -> currencies.currency_code
	Description  string      `json:"description"`  // Nullable user description
	IsActive     bool        `json:"isActive"`     // Soft delete or status flag
	AuditFields
}
