package models

// BankAccount represents a real-world bank account row.
type BankAccount struct {
	BankAccountID string `db:"bank_account_id"`
	Name          string `db:"name"`
	AccountNumber string `db:"account_number"`
	BankName      string `db:"bank_name"`
	CurrencyCode  string `db:"currency_code"`
	IsActive      bool   `db:"is_active"`
	AuditFields
}
