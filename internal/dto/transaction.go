package dto

import (
	"time"

	"github.com/hishab-app/hishab_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest defines the data needed to record an expense or
// payment. Status defaults to pending; calculationMethod defaults to
// amount_drives_functional. Exactly one of exchangeRate/functionalAmount may
// be supplied, matching the chosen calculation method.
type CreateTransactionRequest struct {
	TransactionDate   string           `json:"transactionDate" binding:"required,datetime=2006-01-02"`
	Amount            decimal.Decimal  `json:"amount" binding:"required,dgt0"`
	CurrencyCode      string           `json:"currencyCode" binding:"required,uppercase,len=3"`
	Category          string           `json:"category"` // Expenses; resolved through the account catalog
	PaymentMethod     string           `json:"paymentMethod" binding:"required,oneof=cash bank_transfer cheque mobile_banking card"`
	BankAccountID     *string          `json:"bankAccountID"`
	Status            string           `json:"status" binding:"omitempty,oneof=pending paid"`
	Description       string           `json:"description"`
	ExchangeRate      *decimal.Decimal `json:"exchangeRate"`
	FunctionalAmount  *decimal.Decimal `json:"functionalAmount"`
	CalculationMethod string           `json:"calculationMethod" binding:"omitempty,oneof=amount_drives_functional functional_drives_rate"`
}

// UpdateTransactionRequest defines the data allowed when editing a
// transaction. Pointers distinguish "not provided" from zero values.
type UpdateTransactionRequest struct {
	TransactionDate   *string          `json:"transactionDate" binding:"omitempty,datetime=2006-01-02"`
	Amount            *decimal.Decimal `json:"amount"`
	CurrencyCode      *string          `json:"currencyCode" binding:"omitempty,uppercase,len=3"`
	Category          *string          `json:"category"`
	PaymentMethod     *string          `json:"paymentMethod" binding:"omitempty,oneof=cash bank_transfer cheque mobile_banking card"`
	BankAccountID     *string          `json:"bankAccountID"`
	Status            *string          `json:"status" binding:"omitempty,oneof=pending paid cancelled"`
	Description       *string          `json:"description"`
	ExchangeRate      *decimal.Decimal `json:"exchangeRate"`
	FunctionalAmount  *decimal.Decimal `json:"functionalAmount"`
	CalculationMethod *string          `json:"calculationMethod" binding:"omitempty,oneof=amount_drives_functional functional_drives_rate"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID     string           `json:"transactionID"`
	TransactionNumber string           `json:"transactionNumber"`
	Kind              string           `json:"kind"`
	TransactionDate   time.Time        `json:"transactionDate"`
	Amount            decimal.Decimal  `json:"amount"`
	CurrencyCode      string           `json:"currencyCode"`
	Category          string           `json:"category,omitempty"`
	PaymentMethod     string           `json:"paymentMethod"`
	BankAccountID     *string          `json:"bankAccountID,omitempty"`
	Status            string           `json:"status"`
	Description       string           `json:"description,omitempty"`
	ExchangeRate      *decimal.Decimal `json:"exchangeRate,omitempty"`
	FunctionalAmount  *decimal.Decimal `json:"functionalAmount,omitempty"`
	CalculationMethod string           `json:"calculationMethod"`
	RateSource        string           `json:"rateSource,omitempty"`
	JournalEntryID    *string          `json:"journalEntryID,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
	CreatedBy         string           `json:"createdBy"`
	LastUpdatedAt     time.Time        `json:"lastUpdatedAt"`
	LastUpdatedBy     string           `json:"lastUpdatedBy"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:     txn.TransactionID,
		TransactionNumber: txn.TransactionNumber,
		Kind:              string(txn.Kind),
		TransactionDate:   txn.TransactionDate,
		Amount:            txn.Amount,
		CurrencyCode:      txn.CurrencyCode,
		Category:          txn.Category,
		PaymentMethod:     string(txn.PaymentMethod),
		BankAccountID:     txn.BankAccountID,
		Status:            string(txn.Status),
		Description:       txn.Description,
		ExchangeRate:      txn.ExchangeRate,
		FunctionalAmount:  txn.FunctionalAmount,
		CalculationMethod: string(txn.CalculationMethod),
		RateSource:        string(txn.RateSource),
		JournalEntryID:    txn.JournalEntryID,
		CreatedAt:         txn.CreatedAt,
		CreatedBy:         txn.CreatedBy,
		LastUpdatedAt:     txn.LastUpdatedAt,
		LastUpdatedBy:     txn.LastUpdatedBy,
	}
}

// ToListTransactionResponse converts a slice of domain.Transaction to a slice of TransactionResponse DTOs
func ToListTransactionResponse(txns []domain.Transaction) []TransactionResponse {
	res := make([]TransactionResponse, len(txns))
	for i, txn := range txns {
		res[i] = ToTransactionResponse(&txn)
	}
	return res
}

// ListTransactionsParams defines query parameters for listing transactions.
type ListTransactionsParams struct {
	Status    string  `form:"status" binding:"omitempty,oneof=pending paid cancelled"`
	Limit     int     `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ListTransactionsResponse wraps one page of transactions with the token for
// the next page.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}
