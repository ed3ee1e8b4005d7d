package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/hishab-app/hishab_backend/internal/apperrors"
	"github.com/hishab-app/hishab_backend/internal/core/domain"
	portsrepo "github.com/hishab-app/hishab_backend/internal/core/ports/repositories"
	portssvc "github.com/hishab-app/hishab_backend/internal/core/ports/services"
	"github.com/hishab-app/hishab_backend/internal/core/services"
	"github.com/hishab-app/hishab_backend/internal/platform/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type PostingServiceTestSuite struct {
	suite.Suite
	mockTxnRepo     *MockTransactionRepository
	mockJournalRepo *MockJournalRepository
	mockRateRepo    *MockFxRateRepository
	mockSeqRepo     *MockSequenceRepository
	mockResolver    *MockAccountResolver
	mockAudit       *MockAuditService
	mockPublisher   *MockPublisher
	service         portssvc.PostingSvc

	actorID        string
	txnDate        time.Time
	expenseAccount domain.Account
	cashAccount    domain.Account
	bankAccount    domain.Account
	receivable     domain.Account
}

func (suite *PostingServiceTestSuite) SetupTest() {
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.mockRateRepo = new(MockFxRateRepository)
	suite.mockSeqRepo = new(MockSequenceRepository)
	suite.mockResolver = new(MockAccountResolver)
	suite.mockAudit = new(MockAuditService)
	suite.mockPublisher = new(MockPublisher)

	suite.service = services.NewPostingService(
		suite.mockTxnRepo,
		suite.mockJournalRepo,
		suite.mockRateRepo,
		suite.mockSeqRepo,
		suite.mockResolver,
		suite.mockAudit,
		suite.mockPublisher,
		"BDT",
		"JE",
	)

	suite.actorID = uuid.NewString()
	suite.txnDate = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	suite.expenseAccount = domain.Account{
		AccountID: uuid.NewString(), Code: "5000", Name: "Office Rent",
		AccountType: domain.Expense, CurrencyCode: "BDT", IsActive: true,
	}
	suite.cashAccount = domain.Account{
		AccountID: uuid.NewString(), Code: "1000", Name: "Cash",
		AccountType: domain.Asset, CurrencyCode: "BDT", IsActive: true,
	}
	suite.bankAccount = domain.Account{
		AccountID: uuid.NewString(), Code: "1100", Name: "Bank - Local",
		AccountType: domain.Asset, CurrencyCode: "BDT", IsActive: true,
	}
	suite.receivable = domain.Account{
		AccountID: uuid.NewString(), Code: "1200", Name: "Accounts Receivable",
		AccountType: domain.Asset, CurrencyCode: "BDT", IsActive: true,
	}
}

func (suite *PostingServiceTestSuite) expectUnitBoundaries() {
	suite.mockTxnRepo.On("Begin", mock.Anything).Return(nil, nil)
	suite.mockTxnRepo.On("Rollback", mock.Anything, mock.Anything).Return(nil)
}

func (suite *PostingServiceTestSuite) expectAfterCommitSinks() {
	suite.mockAudit.On("Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()
	suite.mockPublisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
}

func (suite *PostingServiceTestSuite) foreignExpense(status domain.TransactionStatus) domain.Transaction {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	return domain.Transaction{
		TransactionID:     uuid.NewString(),
		Kind:              domain.KindExpense,
		TransactionDate:   suite.txnDate,
		Amount:            decimal.NewFromInt(100),
		CurrencyCode:      "USD",
		Category:          "office_rent",
		PaymentMethod:     domain.MethodCash,
		Status:            status,
		Description:       "Office rent March",
		CalculationMethod: domain.AmountDrivesFunctional,
		AuditFields: domain.AuditFields{
			CreatedAt: now, CreatedBy: suite.actorID,
			LastUpdatedAt: now, LastUpdatedBy: suite.actorID,
		},
	}
}

// postedEntryFixture builds the active entry and lines a previously posted
// document would have on file.
func (suite *PostingServiceTestSuite) postedEntryFixture(doc *domain.Transaction, entryNumber string, functional decimal.Decimal, rate decimal.Decimal) (domain.JournalEntry, []domain.JournalEntryLine) {
	entryID := uuid.NewString()
	entry := domain.JournalEntry{
		EntryID:         entryID,
		EntryNumber:     entryNumber,
		EntryDate:       doc.TransactionDate,
		Description:     doc.Description,
		Reference:       doc.TransactionNumber,
		TotalDebit:      functional,
		TotalCredit:     functional,
		Status:          domain.EntryPosted,
		SourceType:      "transactions",
		SourceID:        doc.TransactionID,
		IsAutoGenerated: true,
	}
	lines := []domain.JournalEntryLine{
		{
			LineID: uuid.NewString(), EntryID: entryID, LineNo: 1,
			AccountCode: suite.expenseAccount.Code, AccountName: suite.expenseAccount.Name, AccountType: domain.Expense,
			DebitAmount: functional, FunctionalDebit: functional,
			OriginalCurrency: doc.CurrencyCode, OriginalAmount: doc.Amount, FxRateUsed: rate,
		},
		{
			LineID: uuid.NewString(), EntryID: entryID, LineNo: 2,
			AccountCode: suite.cashAccount.Code, AccountName: suite.cashAccount.Name, AccountType: domain.Asset,
			CreditAmount: functional, FunctionalCredit: functional,
			OriginalCurrency: doc.CurrencyCode, OriginalAmount: doc.Amount, FxRateUsed: rate,
		},
	}
	return entry, lines
}

// Creating a paid foreign expense posts a balanced two-leg entry at the stored
// rate, stamps the document with the conversion results, and traces the rate.
func (suite *PostingServiceTestSuite) TestCreatePaidForeignExpense_PostsEntry() {
	ctx := context.Background()
	txn := suite.foreignExpense(domain.StatusPaid)
	storedRate := &domain.FxRate{
		RateID:           uuid.NewString(),
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "BDT",
		Rate:             decimal.NewFromInt(110),
		EffectiveDate:    time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Source:           domain.RateSourceManual,
		IsActive:         true,
	}

	suite.expectUnitBoundaries()
	suite.mockSeqRepo.On("NextSequenceInTx", mock.Anything, mock.Anything, portsrepo.SequenceScopeExpense, 2024).Return(int64(1), nil).Once()
	suite.mockJournalRepo.On("FindNewestLinkBySource", mock.Anything, "transactions", txn.TransactionID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindRateOnOrBefore", mock.Anything, "USD", "BDT", suite.txnDate).Return(storedRate, nil).Once()
	suite.mockResolver.On("ResolveExpenseAccounts", mock.Anything, "office_rent", domain.MethodCash, mock.Anything).Return(suite.expenseAccount, suite.cashAccount, nil).Once()
	suite.mockSeqRepo.On("NextSequenceInTx", mock.Anything, mock.Anything, portsrepo.SequenceScopeJournal, 2024).Return(int64(7), nil).Once()

	var savedEntry domain.JournalEntry
	var savedLines []domain.JournalEntryLine
	suite.mockJournalRepo.On("SaveEntryInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		savedEntry = args.Get(2).(domain.JournalEntry)
		savedLines = args.Get(3).([]domain.JournalEntryLine)
	}).Return(nil).Once()

	var savedLink domain.AutoJournalLink
	suite.mockJournalRepo.On("SaveLinkInTx", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		savedLink = args.Get(2).(domain.AutoJournalLink)
	}).Return(nil).Once()

	var savedSnapshot domain.FxSnapshot
	suite.mockRateRepo.On("SaveFxSnapshotInTx", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		savedSnapshot = args.Get(2).(domain.FxSnapshot)
	}).Return(nil).Once()

	var seededRate domain.FxRate
	suite.mockRateRepo.On("UpsertRateInTx", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		seededRate = args.Get(2).(domain.FxRate)
	}).Return(nil).Once()

	var persistedDoc domain.Transaction
	suite.mockTxnRepo.On("SaveTransactionInTx", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		persistedDoc = args.Get(2).(domain.Transaction)
	}).Return(nil).Once()
	suite.mockTxnRepo.On("Commit", mock.Anything, mock.Anything).Return(nil).Once()

	var publishedEvent events.LedgerEvent
	suite.mockAudit.On("Record", mock.Anything, "journal_entries", mock.Anything, domain.OperationCreate, mock.Anything, mock.Anything, suite.actorID, mock.Anything).Return()
	suite.mockPublisher.On("Publish", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		publishedEvent = args.Get(1).(events.LedgerEvent)
	}).Return(nil).Once()

	result, err := suite.service.HandleChange(ctx, nil, &txn, domain.OperationCreate, suite.actorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(result)
	suite.Require().NotNil(result.PostedEntry)
	suite.Nil(result.ReversedEntry)

	suite.Equal("JE-2024-0007", savedEntry.EntryNumber)
	suite.Equal(suite.txnDate, savedEntry.EntryDate)
	suite.Equal("transactions", savedEntry.SourceType)
	suite.Equal(txn.TransactionID, savedEntry.SourceID)
	suite.True(savedEntry.IsAutoGenerated)
	suite.False(savedEntry.IsReversal)
	suite.True(savedEntry.TotalDebit.Equal(decimal.NewFromInt(11000)))
	suite.True(savedEntry.TotalCredit.Equal(decimal.NewFromInt(11000)))

	suite.Require().Len(savedLines, 2)
	suite.Equal("5000", savedLines[0].AccountCode)
	suite.True(savedLines[0].DebitAmount.Equal(decimal.NewFromInt(11000)))
	suite.True(savedLines[0].FunctionalDebit.Equal(decimal.NewFromInt(11000)))
	suite.True(savedLines[0].CreditAmount.IsZero())
	suite.Equal("1000", savedLines[1].AccountCode)
	suite.True(savedLines[1].CreditAmount.Equal(decimal.NewFromInt(11000)))
	for _, line := range savedLines {
		suite.Equal("USD", line.OriginalCurrency)
		suite.True(line.OriginalAmount.Equal(decimal.NewFromInt(100)))
		suite.True(line.FxRateUsed.Equal(decimal.NewFromInt(110)))
	}

	suite.Equal(savedEntry.EntryID, savedLink.EntryID)
	suite.Equal(txn.TransactionID, savedLink.SourceID)
	suite.False(savedLink.IsReversal)
	suite.Equal(domain.OperationCreate, savedLink.OperationType)

	suite.Equal("EXP-2024-0001", persistedDoc.TransactionNumber)
	suite.Require().NotNil(persistedDoc.ExchangeRate)
	suite.True(persistedDoc.ExchangeRate.Equal(decimal.NewFromInt(110)))
	suite.Require().NotNil(persistedDoc.FunctionalAmount)
	suite.True(persistedDoc.FunctionalAmount.Equal(decimal.NewFromInt(11000)))
	suite.Equal(domain.RateSourceManual, persistedDoc.RateSource)
	suite.Require().NotNil(persistedDoc.JournalEntryID)
	suite.Equal(savedEntry.EntryID, *persistedDoc.JournalEntryID)

	suite.Equal("USD", savedSnapshot.CurrencyCode)
	suite.True(savedSnapshot.Rate.Equal(decimal.NewFromInt(110)))
	suite.Equal(suite.txnDate, savedSnapshot.RateDate)

	// The matched rate was effective on 2024-03-10; the posting pins a copy to
	// the document's own date.
	suite.Equal("USD", seededRate.FromCurrencyCode)
	suite.Equal("BDT", seededRate.ToCurrencyCode)
	suite.Equal(suite.txnDate, seededRate.EffectiveDate)
	suite.Equal(domain.RateSourceManual, seededRate.Source)
	suite.Contains(seededRate.Notes, "EXP-2024-0001")

	suite.Equal(events.TypeEntryPosted, publishedEvent.Type)
	suite.True(publishedEvent.Amount.Equal(decimal.NewFromInt(100)))
	suite.Equal("USD", publishedEvent.CurrencyCode)
	suite.True(publishedEvent.FunctionalAmount.Equal(decimal.NewFromInt(11000)))

	suite.mockTxnRepo.AssertExpectations(suite.T())
	suite.mockJournalRepo.AssertExpectations(suite.T())
	suite.mockRateRepo.AssertExpectations(suite.T())
	suite.mockSeqRepo.AssertExpectations(suite.T())
}

// Editing the amount of a paid document reverses the active entry and posts a
// fresh one at the re-resolved rate, inside the same unit.
func (suite *PostingServiceTestSuite) TestUpdatePaidAmountChange_ReversesAndReposts() {
	ctx := context.Background()
	prior := suite.foreignExpense(domain.StatusPaid)
	prior.TransactionNumber = "EXP-2024-0001"
	rate110 := decimal.NewFromInt(110)
	functional11000 := decimal.NewFromInt(11000)
	prior.ExchangeRate = &rate110
	prior.FunctionalAmount = &functional11000
	prior.RateSource = domain.RateSourceManual
	originalEntry, originalLines := suite.postedEntryFixture(&prior, "JE-2024-0007", functional11000, rate110)
	prior.JournalEntryID = &originalEntry.EntryID

	next := prior
	next.Amount = decimal.NewFromInt(150)
	next.ExchangeRate = nil
	next.FunctionalAmount = nil
	next.RateSource = ""

	storedRate := &domain.FxRate{
		RateID:           uuid.NewString(),
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "BDT",
		Rate:             rate110,
		EffectiveDate:    suite.txnDate,
		Source:           domain.RateSourceDocument,
		IsActive:         true,
	}

	suite.expectUnitBoundaries()
	suite.expectAfterCommitSinks()
	freshCopy := prior
	suite.mockTxnRepo.On("FindTransactionByIDForUpdate", mock.Anything, mock.Anything, prior.TransactionID).Return(&freshCopy, nil).Once()

	activeLink := &domain.AutoJournalLink{
		LinkID: uuid.NewString(), SourceTable: "transactions", SourceID: prior.TransactionID,
		EntryID: originalEntry.EntryID, OperationType: domain.OperationCreate, IsReversal: false,
	}
	suite.mockJournalRepo.On("FindNewestLinkBySource", mock.Anything, "transactions", prior.TransactionID).Return(activeLink, nil).Once()
	suite.mockJournalRepo.On("FindEntryByID", mock.Anything, originalEntry.EntryID).Return(&originalEntry, nil).Once()
	suite.mockJournalRepo.On("FindLinesByEntryID", mock.Anything, originalEntry.EntryID).Return(originalLines, nil).Once()

	suite.mockSeqRepo.On("NextSequenceInTx", mock.Anything, mock.Anything, portsrepo.SequenceScopeJournal, 2024).Return(int64(8), nil).Once()
	suite.mockSeqRepo.On("NextSequenceInTx", mock.Anything, mock.Anything, portsrepo.SequenceScopeJournal, 2024).Return(int64(9), nil).Once()

	suite.mockRateRepo.On("FindRateOnOrBefore", mock.Anything, "USD", "BDT", suite.txnDate).Return(storedRate, nil).Once()
	suite.mockResolver.On("ResolveExpenseAccounts", mock.Anything, "office_rent", domain.MethodCash, mock.Anything).Return(suite.expenseAccount, suite.cashAccount, nil).Once()

	var savedEntries []domain.JournalEntry
	suite.mockJournalRepo.On("SaveEntryInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		savedEntries = append(savedEntries, args.Get(2).(domain.JournalEntry))
	}).Return(nil).Twice()

	var savedLinks []domain.AutoJournalLink
	suite.mockJournalRepo.On("SaveLinkInTx", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		savedLinks = append(savedLinks, args.Get(2).(domain.AutoJournalLink))
	}).Return(nil).Twice()

	suite.mockRateRepo.On("SaveFxSnapshotInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	var persistedDoc domain.Transaction
	suite.mockTxnRepo.On("UpdateTransactionInTx", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		persistedDoc = args.Get(2).(domain.Transaction)
	}).Return(nil).Once()
	suite.mockTxnRepo.On("Commit", mock.Anything, mock.Anything).Return(nil).Once()

	result, err := suite.service.HandleChange(ctx, &prior, &next, domain.OperationUpdate, suite.actorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(result.ReversedEntry)
	suite.Require().NotNil(result.PostedEntry)

	reversal := savedEntries[0]
	suite.Equal("JE-2024-0008", reversal.EntryNumber)
	suite.True(reversal.IsReversal)
	suite.Require().NotNil(reversal.ReversesEntryID)
	suite.Equal(originalEntry.EntryID, *reversal.ReversesEntryID)
	suite.Equal(originalEntry.EntryDate, reversal.EntryDate)
	suite.Equal("JE-2024-0007", reversal.Reference)
	suite.True(reversal.TotalDebit.Equal(functional11000))
	suite.Require().Len(reversal.Lines, 2)
	// Debits and credits swap sides; the expense line is now the credit.
	suite.Equal("5000", reversal.Lines[0].AccountCode)
	suite.True(reversal.Lines[0].CreditAmount.Equal(functional11000))
	suite.True(reversal.Lines[0].DebitAmount.IsZero())
	suite.Equal("1000", reversal.Lines[1].AccountCode)
	suite.True(reversal.Lines[1].DebitAmount.Equal(functional11000))

	repost := savedEntries[1]
	suite.Equal("JE-2024-0009", repost.EntryNumber)
	suite.False(repost.IsReversal)
	suite.True(repost.TotalDebit.Equal(decimal.NewFromInt(16500)))

	suite.Require().Len(savedLinks, 2)
	suite.True(savedLinks[0].IsReversal)
	suite.Equal(domain.OperationUpdate, savedLinks[0].OperationType)
	suite.False(savedLinks[1].IsReversal)
	suite.Equal(repost.EntryID, savedLinks[1].EntryID)

	suite.Require().NotNil(persistedDoc.FunctionalAmount)
	suite.True(persistedDoc.FunctionalAmount.Equal(decimal.NewFromInt(16500)))
	suite.Require().NotNil(persistedDoc.JournalEntryID)
	suite.Equal(repost.EntryID, *persistedDoc.JournalEntryID)

	// The matched rate is already effective on the document date; no re-seed.
	suite.mockRateRepo.AssertNotCalled(suite.T(), "UpsertRateInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockJournalRepo.AssertExpectations(suite.T())
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

// A paid foreign posting with no resolvable rate aborts the whole unit: no
// document write, no entry, no commit.
func (suite *PostingServiceTestSuite) TestCreatePaidForeign_MissingRateAbortsUnit() {
	ctx := context.Background()
	txn := suite.foreignExpense(domain.StatusPaid)

	suite.expectUnitBoundaries()
	suite.mockSeqRepo.On("NextSequenceInTx", mock.Anything, mock.Anything, portsrepo.SequenceScopeExpense, 2024).Return(int64(1), nil).Once()
	suite.mockJournalRepo.On("FindNewestLinkBySource", mock.Anything, "transactions", txn.TransactionID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindRateOnOrBefore", mock.Anything, "USD", "BDT", suite.txnDate).Return(nil, apperrors.ErrNotFound).Once()

	result, err := suite.service.HandleChange(ctx, nil, &txn, domain.OperationCreate, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrMissingRate)
	suite.Contains(err.Error(), "USD->BDT")
	suite.Contains(err.Error(), "2024-03-15")
	suite.Nil(result)

	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransactionInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntryInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockPublisher.AssertNotCalled(suite.T(), "Publish", mock.Anything, mock.Anything)
	suite.mockTxnRepo.AssertCalled(suite.T(), "Rollback", mock.Anything, mock.Anything)
}

// Deleting a paid document reverses its active entry and removes the row.
func (suite *PostingServiceTestSuite) TestDeletePaid_ReversesEntry() {
	ctx := context.Background()
	prior := suite.foreignExpense(domain.StatusPaid)
	prior.TransactionNumber = "EXP-2024-0001"
	rate110 := decimal.NewFromInt(110)
	functional11000 := decimal.NewFromInt(11000)
	prior.ExchangeRate = &rate110
	prior.FunctionalAmount = &functional11000
	originalEntry, originalLines := suite.postedEntryFixture(&prior, "JE-2024-0007", functional11000, rate110)
	prior.JournalEntryID = &originalEntry.EntryID

	suite.expectUnitBoundaries()
	suite.expectAfterCommitSinks()
	freshCopy := prior
	suite.mockTxnRepo.On("FindTransactionByIDForUpdate", mock.Anything, mock.Anything, prior.TransactionID).Return(&freshCopy, nil).Once()

	activeLink := &domain.AutoJournalLink{
		LinkID: uuid.NewString(), SourceTable: "transactions", SourceID: prior.TransactionID,
		EntryID: originalEntry.EntryID, OperationType: domain.OperationCreate, IsReversal: false,
	}
	suite.mockJournalRepo.On("FindNewestLinkBySource", mock.Anything, "transactions", prior.TransactionID).Return(activeLink, nil).Once()
	suite.mockJournalRepo.On("FindEntryByID", mock.Anything, originalEntry.EntryID).Return(&originalEntry, nil).Once()
	suite.mockJournalRepo.On("FindLinesByEntryID", mock.Anything, originalEntry.EntryID).Return(originalLines, nil).Once()
	suite.mockSeqRepo.On("NextSequenceInTx", mock.Anything, mock.Anything, portsrepo.SequenceScopeJournal, 2024).Return(int64(8), nil).Once()

	var savedEntry domain.JournalEntry
	suite.mockJournalRepo.On("SaveEntryInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		savedEntry = args.Get(2).(domain.JournalEntry)
	}).Return(nil).Once()

	var savedLink domain.AutoJournalLink
	suite.mockJournalRepo.On("SaveLinkInTx", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		savedLink = args.Get(2).(domain.AutoJournalLink)
	}).Return(nil).Once()

	suite.mockTxnRepo.On("DeleteTransactionInTx", mock.Anything, mock.Anything, prior.TransactionID).Return(nil).Once()
	suite.mockTxnRepo.On("Commit", mock.Anything, mock.Anything).Return(nil).Once()

	result, err := suite.service.HandleChange(ctx, &prior, nil, domain.OperationDelete, suite.actorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(result.ReversedEntry)
	suite.Nil(result.PostedEntry)
	suite.Nil(result.Transaction)

	suite.True(savedEntry.IsReversal)
	suite.True(savedEntry.TotalDebit.Equal(functional11000))
	suite.True(savedLink.IsReversal)
	suite.Equal(domain.OperationDelete, savedLink.OperationType)

	suite.mockTxnRepo.AssertExpectations(suite.T())
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

// A paid document whose newest link is already a reversal has nothing to undo:
// the delete proceeds without writing another reversal.
func (suite *PostingServiceTestSuite) TestDeletePaid_AlreadyReversed_SkipsReversal() {
	ctx := context.Background()
	prior := suite.foreignExpense(domain.StatusPaid)

	suite.expectUnitBoundaries()
	freshCopy := prior
	suite.mockTxnRepo.On("FindTransactionByIDForUpdate", mock.Anything, mock.Anything, prior.TransactionID).Return(&freshCopy, nil).Once()

	reversalLink := &domain.AutoJournalLink{
		LinkID: uuid.NewString(), SourceTable: "transactions", SourceID: prior.TransactionID,
		EntryID: uuid.NewString(), OperationType: domain.OperationUpdate, IsReversal: true,
	}
	suite.mockJournalRepo.On("FindNewestLinkBySource", mock.Anything, "transactions", prior.TransactionID).Return(reversalLink, nil).Once()
	suite.mockTxnRepo.On("DeleteTransactionInTx", mock.Anything, mock.Anything, prior.TransactionID).Return(nil).Once()
	suite.mockTxnRepo.On("Commit", mock.Anything, mock.Anything).Return(nil).Once()

	result, err := suite.service.HandleChange(ctx, &prior, nil, domain.OperationDelete, suite.actorID)

	suite.Require().NoError(err)
	suite.Nil(result.ReversedEntry)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntryInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

// Deleting a row that vanished between read and lock is a quiet no-op.
func (suite *PostingServiceTestSuite) TestDeleteMissingRow_NoOp() {
	ctx := context.Background()
	prior := suite.foreignExpense(domain.StatusPaid)

	suite.expectUnitBoundaries()
	suite.mockTxnRepo.On("FindTransactionByIDForUpdate", mock.Anything, mock.Anything, prior.TransactionID).Return(nil, apperrors.ErrNotFound).Once()

	result, err := suite.service.HandleChange(ctx, &prior, nil, domain.OperationDelete, suite.actorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(result)
	suite.Nil(result.ReversedEntry)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "DeleteTransactionInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

// An edit that touches no posting input leaves the ledger alone; only the
// document row is rewritten.
func (suite *PostingServiceTestSuite) TestUpdatePaidNoInputChange_NoJournalEffect() {
	ctx := context.Background()
	prior := suite.foreignExpense(domain.StatusPaid)
	prior.TransactionNumber = "EXP-2024-0001"
	rate110 := decimal.NewFromInt(110)
	functional11000 := decimal.NewFromInt(11000)
	prior.ExchangeRate = &rate110
	prior.FunctionalAmount = &functional11000
	prior.RateSource = domain.RateSourceManual

	next := prior
	next.Description = "Office rent March, corrected memo"

	suite.expectUnitBoundaries()
	freshCopy := prior
	suite.mockTxnRepo.On("FindTransactionByIDForUpdate", mock.Anything, mock.Anything, prior.TransactionID).Return(&freshCopy, nil).Once()
	suite.mockTxnRepo.On("UpdateTransactionInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockTxnRepo.On("Commit", mock.Anything, mock.Anything).Return(nil).Once()

	result, err := suite.service.HandleChange(ctx, &prior, &next, domain.OperationUpdate, suite.actorID)

	suite.Require().NoError(err)
	suite.True(result.Decision.IsNoop())
	suite.Nil(result.ReversedEntry)
	suite.Nil(result.PostedEntry)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntryInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockPublisher.AssertNotCalled(suite.T(), "Publish", mock.Anything, mock.Anything)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

// Un-paying a document reverses its entry and clears the back-reference.
func (suite *PostingServiceTestSuite) TestUpdateLeavesPaid_ReversesAndClearsLink() {
	ctx := context.Background()
	prior := suite.foreignExpense(domain.StatusPaid)
	prior.TransactionNumber = "EXP-2024-0001"
	rate110 := decimal.NewFromInt(110)
	functional11000 := decimal.NewFromInt(11000)
	prior.ExchangeRate = &rate110
	prior.FunctionalAmount = &functional11000
	originalEntry, originalLines := suite.postedEntryFixture(&prior, "JE-2024-0007", functional11000, rate110)
	prior.JournalEntryID = &originalEntry.EntryID

	next := prior
	next.Status = domain.StatusPending

	suite.expectUnitBoundaries()
	suite.expectAfterCommitSinks()
	freshCopy := prior
	suite.mockTxnRepo.On("FindTransactionByIDForUpdate", mock.Anything, mock.Anything, prior.TransactionID).Return(&freshCopy, nil).Once()

	activeLink := &domain.AutoJournalLink{
		LinkID: uuid.NewString(), SourceTable: "transactions", SourceID: prior.TransactionID,
		EntryID: originalEntry.EntryID, IsReversal: false,
	}
	suite.mockJournalRepo.On("FindNewestLinkBySource", mock.Anything, "transactions", prior.TransactionID).Return(activeLink, nil).Once()
	suite.mockJournalRepo.On("FindEntryByID", mock.Anything, originalEntry.EntryID).Return(&originalEntry, nil).Once()
	suite.mockJournalRepo.On("FindLinesByEntryID", mock.Anything, originalEntry.EntryID).Return(originalLines, nil).Once()
	suite.mockSeqRepo.On("NextSequenceInTx", mock.Anything, mock.Anything, portsrepo.SequenceScopeJournal, 2024).Return(int64(8), nil).Once()
	suite.mockJournalRepo.On("SaveEntryInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockJournalRepo.On("SaveLinkInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	var persistedDoc domain.Transaction
	suite.mockTxnRepo.On("UpdateTransactionInTx", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		persistedDoc = args.Get(2).(domain.Transaction)
	}).Return(nil).Once()
	suite.mockTxnRepo.On("Commit", mock.Anything, mock.Anything).Return(nil).Once()

	result, err := suite.service.HandleChange(ctx, &prior, &next, domain.OperationUpdate, suite.actorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(result.ReversedEntry)
	suite.Nil(result.PostedEntry)
	suite.Nil(persistedDoc.JournalEntryID)
	suite.Equal(domain.StatusPending, persistedDoc.Status)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

// Two racing become-paid transitions both pass the decision table; the loser
// must hit the double-posting guard.
func (suite *PostingServiceTestSuite) TestBecomesPaid_ActiveLinkExists_Conflict() {
	ctx := context.Background()
	prior := suite.foreignExpense(domain.StatusPending)
	next := prior
	next.Status = domain.StatusPaid

	suite.expectUnitBoundaries()
	freshCopy := prior
	suite.mockTxnRepo.On("FindTransactionByIDForUpdate", mock.Anything, mock.Anything, prior.TransactionID).Return(&freshCopy, nil).Once()

	activeLink := &domain.AutoJournalLink{
		LinkID: uuid.NewString(), SourceTable: "transactions", SourceID: prior.TransactionID,
		EntryID: uuid.NewString(), IsReversal: false,
	}
	suite.mockJournalRepo.On("FindNewestLinkBySource", mock.Anything, "transactions", prior.TransactionID).Return(activeLink, nil).Once()

	result, err := suite.service.HandleChange(ctx, &prior, &next, domain.OperationUpdate, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrPostingConflict)
	suite.Nil(result)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "UpdateTransactionInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

// A caller working from a stale read loses to whoever committed in between.
func (suite *PostingServiceTestSuite) TestUpdateStaleRead_Conflict() {
	ctx := context.Background()
	prior := suite.foreignExpense(domain.StatusPaid)
	next := prior
	next.Amount = decimal.NewFromInt(150)

	fresh := prior
	fresh.LastUpdatedAt = prior.LastUpdatedAt.Add(5 * time.Second)

	suite.expectUnitBoundaries()
	suite.mockTxnRepo.On("FindTransactionByIDForUpdate", mock.Anything, mock.Anything, prior.TransactionID).Return(&fresh, nil).Once()

	_, err := suite.service.HandleChange(ctx, &prior, &next, domain.OperationUpdate, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrPostingConflict)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

// When the functional amount drives the rate, posting derives the rate from
// the document and seeds the store with it.
func (suite *PostingServiceTestSuite) TestCreatePaidPayment_FunctionalDrivesRate() {
	ctx := context.Background()
	functional := decimal.NewFromInt(16500)
	txn := domain.Transaction{
		TransactionID:     uuid.NewString(),
		Kind:              domain.KindPayment,
		TransactionDate:   suite.txnDate,
		Amount:            decimal.NewFromInt(150),
		CurrencyCode:      "USD",
		PaymentMethod:     domain.MethodBankTransfer,
		Status:            domain.StatusPaid,
		Description:       "Client settlement",
		FunctionalAmount:  &functional,
		CalculationMethod: domain.FunctionalDrivesRate,
		RateSource:        domain.RateSourceDocument,
	}

	suite.expectUnitBoundaries()
	suite.expectAfterCommitSinks()
	suite.mockSeqRepo.On("NextSequenceInTx", mock.Anything, mock.Anything, portsrepo.SequenceScopePayment, 2024).Return(int64(3), nil).Once()
	suite.mockJournalRepo.On("FindNewestLinkBySource", mock.Anything, "transactions", txn.TransactionID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockResolver.On("ResolvePaymentAccounts", mock.Anything, domain.MethodBankTransfer, mock.Anything).Return(suite.bankAccount, suite.receivable, nil).Once()
	suite.mockSeqRepo.On("NextSequenceInTx", mock.Anything, mock.Anything, portsrepo.SequenceScopeJournal, 2024).Return(int64(10), nil).Once()

	var savedEntry domain.JournalEntry
	suite.mockJournalRepo.On("SaveEntryInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		savedEntry = args.Get(2).(domain.JournalEntry)
	}).Return(nil).Once()
	suite.mockJournalRepo.On("SaveLinkInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockRateRepo.On("SaveFxSnapshotInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	var seededRate domain.FxRate
	suite.mockRateRepo.On("UpsertRateInTx", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		seededRate = args.Get(2).(domain.FxRate)
	}).Return(nil).Once()

	var persistedDoc domain.Transaction
	suite.mockTxnRepo.On("SaveTransactionInTx", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		persistedDoc = args.Get(2).(domain.Transaction)
	}).Return(nil).Once()
	suite.mockTxnRepo.On("Commit", mock.Anything, mock.Anything).Return(nil).Once()

	result, err := suite.service.HandleChange(ctx, nil, &txn, domain.OperationCreate, suite.actorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(result.PostedEntry)

	suite.Equal("PAY-2024-0003", persistedDoc.TransactionNumber)
	suite.Require().NotNil(persistedDoc.ExchangeRate)
	suite.True(persistedDoc.ExchangeRate.Equal(decimal.NewFromInt(110)), "derived rate should be 16500/150")
	suite.Equal(domain.RateSourceDocument, persistedDoc.RateSource)

	// Payment posts money in: debit bank, credit receivable.
	suite.Require().Len(savedEntry.Lines, 2)
	suite.Equal("1100", savedEntry.Lines[0].AccountCode)
	suite.True(savedEntry.Lines[0].DebitAmount.Equal(functional))
	suite.Equal("1200", savedEntry.Lines[1].AccountCode)
	suite.True(savedEntry.Lines[1].CreditAmount.Equal(functional))

	// No stored rate was consulted; the derived rate is pinned to the document
	// date with document provenance.
	suite.mockRateRepo.AssertNotCalled(suite.T(), "FindRateOnOrBefore", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.Equal(domain.RateSourceDocument, seededRate.Source)
	suite.True(seededRate.Rate.Equal(decimal.NewFromInt(110)))
	suite.Equal(suite.txnDate, seededRate.EffectiveDate)
}

// A functional-currency document posts at the identity rate and records no fx
// trace.
func (suite *PostingServiceTestSuite) TestCreatePaidFunctionalCurrency_IdentityRate() {
	ctx := context.Background()
	txn := suite.foreignExpense(domain.StatusPaid)
	txn.CurrencyCode = "BDT"
	txn.Amount = decimal.NewFromInt(2500)

	suite.expectUnitBoundaries()
	suite.expectAfterCommitSinks()
	suite.mockSeqRepo.On("NextSequenceInTx", mock.Anything, mock.Anything, portsrepo.SequenceScopeExpense, 2024).Return(int64(2), nil).Once()
	suite.mockJournalRepo.On("FindNewestLinkBySource", mock.Anything, "transactions", txn.TransactionID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockResolver.On("ResolveExpenseAccounts", mock.Anything, "office_rent", domain.MethodCash, mock.Anything).Return(suite.expenseAccount, suite.cashAccount, nil).Once()
	suite.mockSeqRepo.On("NextSequenceInTx", mock.Anything, mock.Anything, portsrepo.SequenceScopeJournal, 2024).Return(int64(11), nil).Once()
	suite.mockJournalRepo.On("SaveEntryInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockJournalRepo.On("SaveLinkInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	var persistedDoc domain.Transaction
	suite.mockTxnRepo.On("SaveTransactionInTx", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		persistedDoc = args.Get(2).(domain.Transaction)
	}).Return(nil).Once()
	suite.mockTxnRepo.On("Commit", mock.Anything, mock.Anything).Return(nil).Once()

	_, err := suite.service.HandleChange(ctx, nil, &txn, domain.OperationCreate, suite.actorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(persistedDoc.ExchangeRate)
	suite.True(persistedDoc.ExchangeRate.Equal(decimal.NewFromInt(1)))
	suite.Require().NotNil(persistedDoc.FunctionalAmount)
	suite.True(persistedDoc.FunctionalAmount.Equal(decimal.NewFromInt(2500)))

	suite.mockRateRepo.AssertNotCalled(suite.T(), "FindRateOnOrBefore", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "SaveFxSnapshotInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "UpsertRateInTx", mock.Anything, mock.Anything, mock.Anything)
}

// Creating a pending document assigns its number but touches no journal.
func (suite *PostingServiceTestSuite) TestCreatePending_NoJournalEffect() {
	ctx := context.Background()
	txn := suite.foreignExpense(domain.StatusPending)

	suite.expectUnitBoundaries()
	suite.mockSeqRepo.On("NextSequenceInTx", mock.Anything, mock.Anything, portsrepo.SequenceScopeExpense, 2024).Return(int64(5), nil).Once()

	var persistedDoc domain.Transaction
	suite.mockTxnRepo.On("SaveTransactionInTx", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		persistedDoc = args.Get(2).(domain.Transaction)
	}).Return(nil).Once()
	suite.mockTxnRepo.On("Commit", mock.Anything, mock.Anything).Return(nil).Once()

	result, err := suite.service.HandleChange(ctx, nil, &txn, domain.OperationCreate, suite.actorID)

	suite.Require().NoError(err)
	suite.True(result.Decision.IsNoop())
	suite.Equal("EXP-2024-0005", persistedDoc.TransactionNumber)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntryInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "FindRateOnOrBefore", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// A caller-pinned rate wins over the store and propagates document provenance.
func (suite *PostingServiceTestSuite) TestCreatePaid_DocumentRateSkipsLookup() {
	ctx := context.Background()
	txn := suite.foreignExpense(domain.StatusPaid)
	rate115 := decimal.NewFromFloat(115.5)
	txn.ExchangeRate = &rate115
	txn.RateSource = domain.RateSourceDocument

	suite.expectUnitBoundaries()
	suite.expectAfterCommitSinks()
	suite.mockSeqRepo.On("NextSequenceInTx", mock.Anything, mock.Anything, portsrepo.SequenceScopeExpense, 2024).Return(int64(6), nil).Once()
	suite.mockJournalRepo.On("FindNewestLinkBySource", mock.Anything, "transactions", txn.TransactionID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockResolver.On("ResolveExpenseAccounts", mock.Anything, "office_rent", domain.MethodCash, mock.Anything).Return(suite.expenseAccount, suite.cashAccount, nil).Once()
	suite.mockSeqRepo.On("NextSequenceInTx", mock.Anything, mock.Anything, portsrepo.SequenceScopeJournal, 2024).Return(int64(12), nil).Once()
	suite.mockJournalRepo.On("SaveEntryInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockJournalRepo.On("SaveLinkInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockRateRepo.On("SaveFxSnapshotInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	var seededRate domain.FxRate
	suite.mockRateRepo.On("UpsertRateInTx", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		seededRate = args.Get(2).(domain.FxRate)
	}).Return(nil).Once()

	var persistedDoc domain.Transaction
	suite.mockTxnRepo.On("SaveTransactionInTx", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		persistedDoc = args.Get(2).(domain.Transaction)
	}).Return(nil).Once()
	suite.mockTxnRepo.On("Commit", mock.Anything, mock.Anything).Return(nil).Once()

	_, err := suite.service.HandleChange(ctx, nil, &txn, domain.OperationCreate, suite.actorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(persistedDoc.FunctionalAmount)
	suite.True(persistedDoc.FunctionalAmount.Equal(decimal.NewFromInt(11550)), "100 * 115.5")
	suite.Equal(domain.RateSourceDocument, persistedDoc.RateSource)
	suite.Equal(domain.RateSourceDocument, seededRate.Source)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "FindRateOnOrBefore", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPostingServiceSuite(t *testing.T) {
	suite.Run(t, new(PostingServiceTestSuite))
}
