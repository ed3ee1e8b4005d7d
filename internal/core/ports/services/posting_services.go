package services

import (
	"context"

	"github.com/hishab-app/hishab_backend/internal/core/domain"
)

// PostingSvc is the state-change handler at the center of the engine. One call
// is one atomic unit: the document write, any journal reversal/posting, the
// back-reference update, the fx snapshot and the opportunistic rate upsert
// commit or roll back together.
type PostingSvc interface {
	// HandleChange persists the document change described by
	// (prior, next, op) and executes the journal effects the state table
	// prescribes. prior is nil on create; next is nil on delete. A missing
	// rate aborts the whole unit with apperrors.ErrMissingRate and the stored
	// document keeps its prior state.
	HandleChange(ctx context.Context, prior *domain.Transaction, next *domain.Transaction, op domain.OperationType, actorID string) (*domain.PostingResult, error)
}

// AccountResolverSvc maps transaction facts to the two chart accounts an entry
// posts against. Resolution never fails on an unknown category; unknown keys
// fall back to the catalog's default code.
type AccountResolverSvc interface {
	// ResolveExpenseAccounts returns the debit (expense) and credit
	// (cash/bank) accounts for an expense.
	ResolveExpenseAccounts(ctx context.Context, category string, method domain.PaymentMethod, bankAccountID *string) (domain.Account, domain.Account, error)

	// ResolvePaymentAccounts returns the debit (cash/bank) and credit
	// (receivable) accounts for a received payment.
	ResolvePaymentAccounts(ctx context.Context, method domain.PaymentMethod, bankAccountID *string) (domain.Account, domain.Account, error)
}
