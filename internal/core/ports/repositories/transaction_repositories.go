package repositories

import (
	"context"

	"github.com/hishab-app/hishab_backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// TransactionReader defines read operations for source transaction data
type TransactionReader interface {
	// FindTransactionByID retrieves a specific transaction by its identifier.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions retrieves a paginated list of transactions of one kind
	// using token-based pagination, newest first. A nil status means all
	// statuses. It returns the transactions, a token for the next page, and an
	// error.
	ListTransactions(ctx context.Context, kind domain.TransactionKind, status *domain.TransactionStatus, limit int, nextToken *string) ([]domain.Transaction, *string, error)
}

// TransactionWriter defines write operations for source transaction data.
// All writes run inside the posting unit's database transaction so the
// document and its journal side effects commit or roll back together.
type TransactionWriter interface {
	// SaveTransactionInTx inserts a new transaction row.
	SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error

	// UpdateTransactionInTx rewrites a transaction's mutable fields, including
	// the denormalized posting results.
	UpdateTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error

	// DeleteTransactionInTx removes the transaction row. Journal entries and
	// links reference the source by plain id and survive the delete.
	DeleteTransactionInTx(ctx context.Context, tx pgx.Tx, transactionID string) error
}

// TransactionPostingSupport defines operations the posting pipeline needs to
// serialize concurrent state changes for the same document.
type TransactionPostingSupport interface {
	// FindTransactionByIDForUpdate selects the transaction row and locks it
	// until the surrounding database transaction ends.
	FindTransactionByIDForUpdate(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.Transaction, error)
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
	TransactionPostingSupport
}

// TransactionRepositoryWithTx extends TransactionRepositoryFacade with transaction capabilities
type TransactionRepositoryWithTx interface {
	TransactionRepositoryFacade
	TransactionManager
}
