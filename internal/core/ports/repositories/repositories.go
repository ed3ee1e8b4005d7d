package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
// Repositories that participate in the posting unit are exposed with
// transaction capabilities.
type RepositoryProvider struct {
	CurrencyRepo    CurrencyRepositoryFacade
	AccountRepo     AccountRepositoryFacade
	BankAccountRepo BankAccountRepositoryFacade
	FxRateRepo      FxRateRepositoryWithTx
	TransactionRepo TransactionRepositoryWithTx
	JournalRepo     JournalRepositoryWithTx
	SequenceRepo    SequenceRepository
	AuditRepo       AuditRepositoryFacade
}
