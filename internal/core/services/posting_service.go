package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hishab-app/hishab_backend/internal/apperrors"
	"github.com/hishab-app/hishab_backend/internal/core/domain"
	portsrepo "github.com/hishab-app/hishab_backend/internal/core/ports/repositories"
	portssvc "github.com/hishab-app/hishab_backend/internal/core/ports/services"
	"github.com/hishab-app/hishab_backend/internal/middleware"
	"github.com/hishab-app/hishab_backend/internal/platform/events"
	"github.com/hishab-app/hishab_backend/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Document number prefixes per transaction kind. Journal entries use the
// configurable entry prefix instead.
const (
	expenseNumberPrefix = "EXP"
	paymentNumberPrefix = "PAY"
)

const sourceTableTransactions = "transactions"

// postingService executes one atomic unit per transaction state change: the
// document write, any reversal and fresh posting, the sequence draws, the
// back-reference update, the fx snapshot and the opportunistic rate seed all
// commit or roll back together. Audit records and ledger events go out after
// commit, best-effort.
type postingService struct {
	txnRepo      portsrepo.TransactionRepositoryWithTx
	journalRepo  portsrepo.JournalRepositoryFacade
	rateRepo     portsrepo.FxRateRepositoryFacade
	sequenceRepo portsrepo.SequenceRepository
	resolver     portssvc.AccountResolverSvc
	auditSvc     portssvc.AuditSvc
	publisher    events.Publisher
	builder      *EntryBuilder

	functionalCurrency string
	entryPrefix        string
}

// NewPostingService creates the posting state-change handler.
func NewPostingService(
	txnRepo portsrepo.TransactionRepositoryWithTx,
	journalRepo portsrepo.JournalRepositoryFacade,
	rateRepo portsrepo.FxRateRepositoryFacade,
	sequenceRepo portsrepo.SequenceRepository,
	resolver portssvc.AccountResolverSvc,
	auditSvc portssvc.AuditSvc,
	publisher events.Publisher,
	functionalCurrency string,
	entryPrefix string,
) portssvc.PostingSvc {
	return &postingService{
		txnRepo:            txnRepo,
		journalRepo:        journalRepo,
		rateRepo:           rateRepo,
		sequenceRepo:       sequenceRepo,
		resolver:           resolver,
		auditSvc:           auditSvc,
		publisher:          publisher,
		builder:            NewEntryBuilder(),
		functionalCurrency: functionalCurrency,
		entryPrefix:        entryPrefix,
	}
}

var _ portssvc.PostingSvc = (*postingService)(nil)

func (s *postingService) HandleChange(ctx context.Context, prior *domain.Transaction, next *domain.Transaction, op domain.OperationType, actorID string) (*domain.PostingResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	switch op {
	case domain.OperationCreate:
		if next == nil {
			return nil, fmt.Errorf("%w: create requires the new transaction state", apperrors.ErrValidation)
		}
	case domain.OperationUpdate:
		if prior == nil || next == nil {
			return nil, fmt.Errorf("%w: update requires prior and next transaction state", apperrors.ErrValidation)
		}
	case domain.OperationDelete:
		if prior == nil {
			return nil, fmt.Errorf("%w: delete requires the prior transaction state", apperrors.ErrValidation)
		}
	default:
		return nil, fmt.Errorf("%w: unknown operation '%s'", apperrors.ErrValidation, op)
	}

	transactionID := transactionIDFor(prior, next)

	tx, err := s.txnRepo.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin posting transaction", err)
	}
	defer s.txnRepo.Rollback(ctx, tx)

	// The locked row is the authoritative prior state: the lock serializes
	// concurrent state changes for the same document.
	var fresh *domain.Transaction
	if op != domain.OperationCreate {
		fresh, err = s.txnRepo.FindTransactionByIDForUpdate(ctx, tx, transactionID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				if op == domain.OperationDelete {
					// Already gone; deleting again has no journal effect.
					logger.Info("Delete of missing transaction is a no-op", "transaction_id", transactionID)
					return &domain.PostingResult{}, nil
				}
				return nil, fmt.Errorf("transaction %s not found: %w", transactionID, err)
			}
			return nil, fmt.Errorf("failed to lock transaction %s: %w", transactionID, err)
		}
		if !fresh.LastUpdatedAt.Equal(prior.LastUpdatedAt) {
			return nil, fmt.Errorf("%w: transaction %s changed concurrently", apperrors.ErrPostingConflict, transactionID)
		}
	}

	decision := domain.DecidePostingActions(fresh, next, op)
	now := time.Now()

	if op == domain.OperationCreate {
		number, err := s.nextDocumentNumber(ctx, tx, next.Kind, next.TransactionDate)
		if err != nil {
			return nil, err
		}
		next.TransactionNumber = number
	}

	var reversed *domain.JournalEntry
	if decision.NeedsReverse() {
		reversed, err = s.reverseActiveEntry(ctx, tx, fresh, op, actorID, now)
		if err != nil {
			return nil, err
		}
		if next != nil {
			next.JournalEntryID = nil
		}
	}

	var posted *domain.JournalEntry
	if decision.NeedsPost() {
		if !decision.NeedsReverse() {
			if err := s.guardAgainstDoublePosting(ctx, transactionID); err != nil {
				return nil, err
			}
		}
		posted, err = s.postEntry(ctx, tx, next, op, actorID, now)
		if err != nil {
			return nil, err
		}
	}

	switch op {
	case domain.OperationCreate:
		if err := s.txnRepo.SaveTransactionInTx(ctx, tx, *next); err != nil {
			return nil, fmt.Errorf("failed to insert transaction: %w", err)
		}
	case domain.OperationUpdate:
		if err := s.txnRepo.UpdateTransactionInTx(ctx, tx, *next); err != nil {
			return nil, fmt.Errorf("failed to update transaction %s: %w", transactionID, err)
		}
	case domain.OperationDelete:
		if err := s.txnRepo.DeleteTransactionInTx(ctx, tx, transactionID); err != nil {
			return nil, fmt.Errorf("failed to delete transaction %s: %w", transactionID, err)
		}
	}

	if err := s.txnRepo.Commit(ctx, tx); err != nil {
		return nil, apperrors.NewAppError(500, "failed to commit posting transaction", err)
	}

	s.afterCommit(ctx, reversed, posted, fresh, next, actorID)

	logger.Info("Posting unit committed",
		"transaction_id", transactionID,
		"operation", string(op),
		"reversed", reversed != nil,
		"posted", posted != nil,
	)

	return &domain.PostingResult{
		Decision:      decision,
		Transaction:   next,
		ReversedEntry: reversed,
		PostedEntry:   posted,
	}, nil
}

func transactionIDFor(prior, next *domain.Transaction) string {
	if next != nil {
		return next.TransactionID
	}
	return prior.TransactionID
}

// guardAgainstDoublePosting rejects a fresh posting when the source already
// has an active entry. Two racing become-paid transitions both pass the
// decision table; the second one must fail here instead of double-posting.
func (s *postingService) guardAgainstDoublePosting(ctx context.Context, transactionID string) error {
	link, err := s.journalRepo.FindNewestLinkBySource(ctx, sourceTableTransactions, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check existing journal link for %s: %w", transactionID, err)
	}
	if !link.IsReversal {
		return fmt.Errorf("%w: transaction %s already has active entry %s", apperrors.ErrPostingConflict, transactionID, link.EntryID)
	}
	return nil
}

func (s *postingService) nextDocumentNumber(ctx context.Context, tx pgx.Tx, kind domain.TransactionKind, docDate time.Time) (string, error) {
	scope := portsrepo.SequenceScopeExpense
	prefix := expenseNumberPrefix
	if kind == domain.KindPayment {
		scope = portsrepo.SequenceScopePayment
		prefix = paymentNumberPrefix
	}
	year := docDate.Year()
	seq, err := s.sequenceRepo.NextSequenceInTx(ctx, tx, scope, year)
	if err != nil {
		return "", fmt.Errorf("failed to draw %s sequence for %d: %w", scope, year, err)
	}
	return accounting.FormatEntryNumber(prefix, year, seq), nil
}

// reverseActiveEntry posts the mirror of the document's currently active
// entry. A document whose newest link is already a reversal has nothing to
// undo; that case is logged and skipped so reversal stays idempotent.
func (s *postingService) reverseActiveEntry(ctx context.Context, tx pgx.Tx, doc *domain.Transaction, op domain.OperationType, actorID string, now time.Time) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	link, err := s.journalRepo.FindNewestLinkBySource(ctx, sourceTableTransactions, doc.TransactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Paid transaction has no journal link to reverse", "transaction_id", doc.TransactionID)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find journal link for %s: %w", doc.TransactionID, err)
	}
	if link.IsReversal {
		logger.Warn("Newest journal link is already a reversal, nothing to undo", "transaction_id", doc.TransactionID, "entry_id", link.EntryID)
		return nil, nil
	}

	original, err := s.journalRepo.FindEntryByID(ctx, link.EntryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entry %s for reversal: %w", link.EntryID, err)
	}
	originalLines, err := s.journalRepo.FindLinesByEntryID(ctx, link.EntryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines of entry %s: %w", link.EntryID, err)
	}

	year := original.EntryDate.Year()
	seq, err := s.sequenceRepo.NextSequenceInTx(ctx, tx, portsrepo.SequenceScopeJournal, year)
	if err != nil {
		return nil, fmt.Errorf("failed to draw journal sequence for %d: %w", year, err)
	}
	entryNumber := accounting.FormatEntryNumber(s.entryPrefix, year, seq)
	description := fmt.Sprintf("Reversal of %s: %s", original.EntryNumber, original.Description)

	reversal, err := s.builder.BuildReversal(original, originalLines, entryNumber, description, actorID, now)
	if err != nil {
		return nil, err
	}

	if err := s.journalRepo.SaveEntryInTx(ctx, tx, *reversal, reversal.Lines); err != nil {
		return nil, fmt.Errorf("failed to save reversal entry: %w", err)
	}
	if err := s.journalRepo.SaveLinkInTx(ctx, tx, domain.AutoJournalLink{
		LinkID:        uuid.NewString(),
		SourceTable:   sourceTableTransactions,
		SourceID:      doc.TransactionID,
		EntryID:       reversal.EntryID,
		OperationType: op,
		IsReversal:    true,
		CreatedAt:     now,
		CreatedBy:     actorID,
	}); err != nil {
		return nil, fmt.Errorf("failed to save reversal link: %w", err)
	}

	return reversal, nil
}

// postEntry resolves the rate and accounts for the document, builds the
// two-leg entry and persists it with its link, snapshot and rate seed. It
// mutates doc's denormalized ExchangeRate, FunctionalAmount, RateSource and
// JournalEntryID fields.
func (s *postingService) postEntry(ctx context.Context, tx pgx.Tx, doc *domain.Transaction, op domain.OperationType, actorID string, now time.Time) (*domain.JournalEntry, error) {
	rate, functional, source, appliedRate, err := s.resolveConversion(ctx, doc)
	if err != nil {
		return nil, err
	}
	doc.ExchangeRate = &rate
	doc.FunctionalAmount = &functional
	doc.RateSource = source

	var debit, credit domain.Account
	if doc.Kind == domain.KindPayment {
		debit, credit, err = s.resolver.ResolvePaymentAccounts(ctx, doc.PaymentMethod, doc.BankAccountID)
	} else {
		debit, credit, err = s.resolver.ResolveExpenseAccounts(ctx, doc.Category, doc.PaymentMethod, doc.BankAccountID)
	}
	if err != nil {
		return nil, err
	}

	year := doc.TransactionDate.Year()
	seq, err := s.sequenceRepo.NextSequenceInTx(ctx, tx, portsrepo.SequenceScopeJournal, year)
	if err != nil {
		return nil, fmt.Errorf("failed to draw journal sequence for %d: %w", year, err)
	}
	entryNumber := accounting.FormatEntryNumber(s.entryPrefix, year, seq)

	description := doc.Description
	if description == "" {
		description = fmt.Sprintf("Auto posting for %s", doc.TransactionNumber)
	}

	entry, err := s.builder.Build(BuildEntryInput{
		EntryNumber:    entryNumber,
		EntryDate:      doc.TransactionDate,
		Description:    description,
		Reference:      doc.TransactionNumber,
		SourceType:     sourceTableTransactions,
		SourceID:       doc.TransactionID,
		CurrencyCode:   doc.CurrencyCode,
		OriginalAmount: doc.Amount,
		Rate:           rate,
		Legs: []EntryLeg{
			{Account: debit, Debit: true, Functional: functional},
			{Account: credit, Debit: false, Functional: functional},
		},
		ActorID: actorID,
		Now:     now,
	})
	if err != nil {
		return nil, err
	}

	if err := s.journalRepo.SaveEntryInTx(ctx, tx, *entry, entry.Lines); err != nil {
		return nil, fmt.Errorf("failed to save journal entry: %w", err)
	}
	if err := s.journalRepo.SaveLinkInTx(ctx, tx, domain.AutoJournalLink{
		LinkID:        uuid.NewString(),
		SourceTable:   sourceTableTransactions,
		SourceID:      doc.TransactionID,
		EntryID:       entry.EntryID,
		OperationType: op,
		IsReversal:    false,
		CreatedAt:     now,
		CreatedBy:     actorID,
	}); err != nil {
		return nil, fmt.Errorf("failed to save journal link: %w", err)
	}

	if doc.IsForeign(s.functionalCurrency) {
		if err := s.recordFxTrace(ctx, tx, doc, rate, source, appliedRate, actorID, now); err != nil {
			return nil, err
		}
	}

	doc.JournalEntryID = &entry.EntryID
	return entry, nil
}

// resolveConversion yields the applied rate, the rounded functional amount
// and the rate's provenance. appliedRate is the stored rate the lookup
// matched, nil when the rate came from the document itself.
func (s *postingService) resolveConversion(ctx context.Context, doc *domain.Transaction) (decimal.Decimal, decimal.Decimal, domain.RateSource, *domain.FxRate, error) {
	if !doc.IsForeign(s.functionalCurrency) {
		// Identity invariant: rate is exactly 1 and the functional amount is
		// the original amount, unconditionally.
		return decimal.NewFromInt(1), accounting.RoundFunctional(doc.Amount), "", nil, nil
	}

	if doc.CalculationMethod == domain.FunctionalDrivesRate {
		if doc.FunctionalAmount == nil {
			return decimal.Zero, decimal.Zero, "", nil, fmt.Errorf("%w: functional amount is required when it drives the rate", apperrors.ErrValidation)
		}
		functional := accounting.RoundFunctional(*doc.FunctionalAmount)
		rate, err := accounting.DeriveRate(functional, doc.Amount)
		if err != nil {
			return decimal.Zero, decimal.Zero, "", nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		return rate, functional, domain.RateSourceDocument, nil, nil
	}

	if doc.ExchangeRate != nil {
		rate := *doc.ExchangeRate
		if rate.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, decimal.Zero, "", nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
		}
		return rate, accounting.ConvertToFunctional(doc.Amount, rate), domain.RateSourceDocument, nil, nil
	}

	stored, err := s.rateRepo.FindRateOnOrBefore(ctx, doc.CurrencyCode, s.functionalCurrency, doc.TransactionDate)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, decimal.Zero, "", nil, apperrors.NewMissingRateError(doc.CurrencyCode, s.functionalCurrency, doc.TransactionDate.Format(dateLayout))
		}
		return decimal.Zero, decimal.Zero, "", nil, fmt.Errorf("failed to resolve rate %s->%s: %w", doc.CurrencyCode, s.functionalCurrency, err)
	}
	return stored.Rate, accounting.ConvertToFunctional(doc.Amount, stored.Rate), stored.Source, stored, nil
}

// recordFxTrace writes the per-posting snapshot and seeds the rate store with
// a document-dated rate. A rate the lookup matched on the exact document date
// is not re-seeded; everything else pins the applied rate to the document's
// own date for later lookups.
func (s *postingService) recordFxTrace(ctx context.Context, tx pgx.Tx, doc *domain.Transaction, rate decimal.Decimal, source domain.RateSource, appliedRate *domain.FxRate, actorID string, now time.Time) error {
	rateDate := doc.TransactionDate

	if err := s.rateRepo.SaveFxSnapshotInTx(ctx, tx, domain.FxSnapshot{
		SnapshotID:   uuid.NewString(),
		SourceTable:  sourceTableTransactions,
		SourceID:     doc.TransactionID,
		CurrencyCode: doc.CurrencyCode,
		Rate:         rate,
		RateDate:     rateDate,
		CreatedAt:    now,
		CreatedBy:    actorID,
	}); err != nil {
		return fmt.Errorf("failed to save fx snapshot: %w", err)
	}

	if appliedRate != nil && appliedRate.EffectiveDate.Equal(rateDate) {
		return nil
	}

	seedSource := source
	if seedSource == "" {
		seedSource = domain.RateSourceDocument
	}
	if err := s.rateRepo.UpsertRateInTx(ctx, tx, domain.FxRate{
		RateID:           uuid.NewString(),
		FromCurrencyCode: doc.CurrencyCode,
		ToCurrencyCode:   s.functionalCurrency,
		Rate:             rate,
		EffectiveDate:    rateDate,
		Source:           seedSource,
		Notes:            fmt.Sprintf("seeded by %s", doc.TransactionNumber),
		IsActive:         true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}); err != nil {
		return fmt.Errorf("failed to seed rate from document: %w", err)
	}
	return nil
}

// afterCommit emits audit records and ledger events for the committed
// effects. Failures here are logged, never propagated: the posting itself is
// already authoritative.
func (s *postingService) afterCommit(ctx context.Context, reversed, posted *domain.JournalEntry, fresh, next *domain.Transaction, actorID string) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if reversed != nil {
		s.auditSvc.Record(ctx, "journal_entries", reversed.EntryID, domain.OperationCreate, nil, reversed, actorID,
			fmt.Sprintf("reversal of entry %s", reversed.Reference))
		if err := s.publisher.Publish(ctx, s.ledgerEvent(events.TypeEntryReversed, reversed, fresh)); err != nil {
			logger.Warn("Failed to publish reversal event", "error", err, "entry_id", reversed.EntryID)
		}
	}
	if posted != nil {
		s.auditSvc.Record(ctx, "journal_entries", posted.EntryID, domain.OperationCreate, nil, posted, actorID,
			fmt.Sprintf("auto posting for %s", posted.Reference))
		if err := s.publisher.Publish(ctx, s.ledgerEvent(events.TypeEntryPosted, posted, next)); err != nil {
			logger.Warn("Failed to publish posting event", "error", err, "entry_id", posted.EntryID)
		}
	}
}

func (s *postingService) ledgerEvent(eventType string, entry *domain.JournalEntry, doc *domain.Transaction) events.LedgerEvent {
	event := events.LedgerEvent{
		Type:             eventType,
		SourceTable:      entry.SourceType,
		SourceID:         entry.SourceID,
		EntryID:          entry.EntryID,
		EntryNumber:      entry.EntryNumber,
		FunctionalAmount: entry.TotalDebit,
		OccurredAt:       time.Now(),
	}
	if doc != nil {
		event.Amount = doc.Amount
		event.CurrencyCode = doc.CurrencyCode
	}
	return event
}
