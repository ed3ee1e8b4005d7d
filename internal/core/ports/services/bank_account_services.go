package services

import (
	"context"

	"github.com/hishab-app/hishab_backend/internal/core/domain"
	"github.com/hishab-app/hishab_backend/internal/dto"
)

// BankAccountReaderSvc defines read operations for bank account data
type BankAccountReaderSvc interface {
	// GetBankAccountByID retrieves a specific bank account by its identifier.
	GetBankAccountByID(ctx context.Context, bankAccountID string) (*domain.BankAccount, error)

	// ListBankAccounts retrieves a paginated list of bank accounts.
	ListBankAccounts(ctx context.Context, limit int, offset int) ([]domain.BankAccount, error)
}

// BankAccountWriterSvc defines write operations for bank account data
type BankAccountWriterSvc interface {
	// CreateBankAccount persists a new bank account.
	CreateBankAccount(ctx context.Context, req dto.CreateBankAccountRequest, actorID string) (*domain.BankAccount, error)

	// DeactivateBankAccount marks a bank account as inactive.
	DeactivateBankAccount(ctx context.Context, bankAccountID string, actorID string) error
}

// BankAccountSvcFacade combines all bank-account-related service interfaces
type BankAccountSvcFacade interface {
	BankAccountReaderSvc
	BankAccountWriterSvc
}
