package services

import (
	"context"

	"github.com/hishab-app/hishab_backend/internal/core/domain"
	"github.com/hishab-app/hishab_backend/internal/dto"
)

// TransactionReaderSvc defines read operations for source transactions
type TransactionReaderSvc interface {
	// GetTransactionByID retrieves a specific transaction by its identifier.
	GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions retrieves a paginated list of transactions of one kind.
	ListTransactions(ctx context.Context, kind domain.TransactionKind, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// TransactionWriterSvc defines write operations for source transactions. Every
// write runs the posting pipeline so journal side effects stay in lockstep
// with the document.
type TransactionWriterSvc interface {
	// CreateTransaction validates and persists a new expense or payment and
	// posts it when it arrives already paid.
	CreateTransaction(ctx context.Context, kind domain.TransactionKind, req dto.CreateTransactionRequest, actorID string) (*domain.Transaction, error)

	// UpdateTransaction applies the requested changes, enforcing the status
	// transition rules, and reposts or reverses per the state table.
	UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, actorID string) (*domain.Transaction, error)

	// DeleteTransaction reverses a paid transaction's entry and removes the
	// row. Deleting an already-deleted transaction is a no-op.
	DeleteTransaction(ctx context.Context, transactionID string, actorID string) error
}

// TransactionSvcFacade combines all transaction-related service interfaces
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
}
