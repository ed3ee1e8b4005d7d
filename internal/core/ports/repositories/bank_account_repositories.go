package repositories

import (
	"context"
	"time"

	"github.com/hishab-app/hishab_backend/internal/core/domain"
)

// BankAccountReader defines read operations for bank account data
type BankAccountReader interface {
	// FindBankAccountByID retrieves a specific bank account by its identifier.
	FindBankAccountByID(ctx context.Context, bankAccountID string) (*domain.BankAccount, error)

	// ListBankAccounts retrieves a paginated list of bank accounts.
	ListBankAccounts(ctx context.Context, limit int, offset int) ([]domain.BankAccount, error)
}

// BankAccountWriter defines write operations for bank account data
type BankAccountWriter interface {
	// SaveBankAccount persists a new bank account.
	SaveBankAccount(ctx context.Context, bankAccount domain.BankAccount) error

	// UpdateBankAccount updates an existing bank account's details.
	UpdateBankAccount(ctx context.Context, bankAccount domain.BankAccount) error

	// DeactivateBankAccount marks a bank account as inactive.
	DeactivateBankAccount(ctx context.Context, bankAccountID string, actorID string, now time.Time) error
}

// BankAccountRepositoryFacade combines all bank-account-related repository interfaces
type BankAccountRepositoryFacade interface {
	BankAccountReader
	BankAccountWriter
}

// BankAccountRepositoryWithTx extends BankAccountRepositoryFacade with transaction capabilities
type BankAccountRepositoryWithTx interface {
	BankAccountRepositoryFacade
	TransactionManager
}
