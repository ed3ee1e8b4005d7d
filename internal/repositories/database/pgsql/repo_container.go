package pgsql

import (
	portsrepo "github.com/hishab-app/hishab_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	currencyRepo := newPgxCurrencyRepository(dbPool)
	accountRepo := newPgxAccountRepository(dbPool)
	bankAccountRepo := newPgxBankAccountRepository(dbPool)
	fxRateRepo := newPgxFxRateRepository(dbPool)
	transactionRepo := newPgxTransactionRepository(dbPool)
	journalRepo := newPgxJournalRepository(dbPool)
	sequenceRepo := newPgxSequenceRepository(dbPool)
	auditRepo := newPgxAuditRepository(dbPool)

	return portsrepo.RepositoryProvider{
		CurrencyRepo:    currencyRepo,
		AccountRepo:     accountRepo,
		BankAccountRepo: bankAccountRepo,
		FxRateRepo:      fxRateRepo,
		TransactionRepo: transactionRepo,
		JournalRepo:     journalRepo,
		SequenceRepo:    sequenceRepo,
		AuditRepo:       auditRepo,
	}
}
