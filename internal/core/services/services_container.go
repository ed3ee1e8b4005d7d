package services

import (
	portsrepo "github.com/hishab-app/hishab_backend/internal/core/ports/repositories"
	portssvc "github.com/hishab-app/hishab_backend/internal/core/ports/services"
	"github.com/hishab-app/hishab_backend/internal/platform/catalog"
	"github.com/hishab-app/hishab_backend/internal/platform/config"
	"github.com/hishab-app/hishab_backend/internal/platform/events"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, cat *catalog.Catalog, publisher events.Publisher) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Audit first: every other write path records through it.
	container.Audit = NewAuditService(repos.AuditRepo)

	container.Currency = NewCurrencyService(repos.CurrencyRepo, container.Audit)
	container.Account = NewAccountService(repos.AccountRepo, container.Currency, container.Audit)
	container.BankAccount = NewBankAccountService(repos.BankAccountRepo, container.Currency, container.Audit)
	container.FxRate = NewFxRateService(repos.FxRateRepo, container.Currency, container.Audit)

	container.Resolver = NewAccountResolver(cat, repos.AccountRepo, repos.BankAccountRepo, cfg.FunctionalCurrency)

	container.Posting = NewPostingService(
		repos.TransactionRepo,
		repos.JournalRepo,
		repos.FxRateRepo,
		repos.SequenceRepo,
		container.Resolver,
		container.Audit,
		publisher,
		cfg.FunctionalCurrency,
		cfg.EntryNumberPrefix,
	)

	container.Transaction = NewTransactionService(
		repos.TransactionRepo,
		container.Currency,
		container.BankAccount,
		container.Posting,
		container.Audit,
		cfg.FunctionalCurrency,
	)

	container.Journal = NewJournalService(repos.JournalRepo)

	return container
}
