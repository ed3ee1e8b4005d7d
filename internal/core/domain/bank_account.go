package domain

// BankAccount represents a real-world bank account a transaction can settle
// through. Its own currency (not the transaction's) decides which ledger code
// the cash/bank leg posts against.
type BankAccount struct {
	BankAccountID string `json:"bankAccountID"` // Primary Key (e.g., UUID)
	Name          string `json:"name"`          // User-defined label
	AccountNumber string `json:"accountNumber"`
	BankName      string `json:"bankName"`
	CurrencyCode  string `json:"currencyCode"` // FK -> currencies.currency_code
	IsActive      bool   `json:"isActive"`
	AuditFields
}
