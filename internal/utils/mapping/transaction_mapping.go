package mapping

import (
	"github.com/hishab-app/hishab_backend/internal/core/domain"
	"github.com/hishab-app/hishab_backend/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:     d.TransactionID,
		TransactionNumber: d.TransactionNumber,
		Kind:              string(d.Kind),
		TransactionDate:   d.TransactionDate,
		Amount:            d.Amount,
		CurrencyCode:      d.CurrencyCode,
		Category:          d.Category,
		PaymentMethod:     string(d.PaymentMethod),
		BankAccountID:     d.BankAccountID,
		Status:            string(d.Status),
		Description:       d.Description,
		ExchangeRate:      d.ExchangeRate,
		FunctionalAmount:  d.FunctionalAmount,
		CalculationMethod: string(d.CalculationMethod),
		RateSource:        string(d.RateSource),
		JournalEntryID:    d.JournalEntryID,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:     m.TransactionID,
		TransactionNumber: m.TransactionNumber,
		Kind:              domain.TransactionKind(m.Kind),
		TransactionDate:   m.TransactionDate,
		Amount:            m.Amount,
		CurrencyCode:      m.CurrencyCode,
		Category:          m.Category,
		PaymentMethod:     domain.PaymentMethod(m.PaymentMethod),
		BankAccountID:     m.BankAccountID,
		Status:            domain.TransactionStatus(m.Status),
		Description:       m.Description,
		ExchangeRate:      m.ExchangeRate,
		FunctionalAmount:  m.FunctionalAmount,
		CalculationMethod: domain.CalculationMethod(m.CalculationMethod),
		RateSource:        domain.RateSource(m.RateSource),
		JournalEntryID:    m.JournalEntryID,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTransactionSlice converts a slice of model Transactions to a slice of domain Transactions
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}
