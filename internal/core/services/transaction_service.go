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
	"github.com/hishab-app/hishab_backend/internal/dto"
	"github.com/hishab-app/hishab_backend/internal/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// transactionService provides CRUD for source documents (expenses and
// payments). Every write funnels through the posting service so journal side
// effects stay in lockstep with the document.
type transactionService struct {
	txnRepo        portsrepo.TransactionRepositoryWithTx
	currencySvc    portssvc.CurrencyReaderSvc
	bankAccountSvc portssvc.BankAccountReaderSvc
	postingSvc     portssvc.PostingSvc
	auditSvc       portssvc.AuditSvc

	functionalCurrency string
}

// NewTransactionService creates a new transaction service.
func NewTransactionService(
	txnRepo portsrepo.TransactionRepositoryWithTx,
	currencySvc portssvc.CurrencyReaderSvc,
	bankAccountSvc portssvc.BankAccountReaderSvc,
	postingSvc portssvc.PostingSvc,
	auditSvc portssvc.AuditSvc,
	functionalCurrency string,
) portssvc.TransactionSvcFacade {
	return &transactionService{
		txnRepo:            txnRepo,
		currencySvc:        currencySvc,
		bankAccountSvc:     bankAccountSvc,
		postingSvc:         postingSvc,
		auditSvc:           auditSvc,
		functionalCurrency: functionalCurrency,
	}
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

func (s *transactionService) GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", transactionID, err)
	}
	return txn, nil
}

func (s *transactionService) ListTransactions(ctx context.Context, kind domain.TransactionKind, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	var status *domain.TransactionStatus
	if params.Status != "" {
		st := domain.TransactionStatus(params.Status)
		status = &st
	}

	txns, nextToken, err := s.txnRepo.ListTransactions(ctx, kind, status, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s transactions: %w", kind, err)
	}

	return &dto.ListTransactionsResponse{
		Transactions: dto.ToListTransactionResponse(txns),
		NextToken:    nextToken,
	}, nil
}

func (s *transactionService) CreateTransaction(ctx context.Context, kind domain.TransactionKind, req dto.CreateTransactionRequest, actorID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	transactionDate, err := time.Parse(dateLayout, req.TransactionDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid transaction date '%s'", apperrors.ErrValidation, req.TransactionDate)
	}

	status := domain.StatusPending
	if req.Status != "" {
		status = domain.TransactionStatus(req.Status)
	}
	calcMethod := domain.AmountDrivesFunctional
	if req.CalculationMethod != "" {
		calcMethod = domain.CalculationMethod(req.CalculationMethod)
	}

	now := time.Now()
	txn := domain.Transaction{
		TransactionID:     uuid.NewString(),
		Kind:              kind,
		TransactionDate:   transactionDate,
		Amount:            req.Amount,
		CurrencyCode:      req.CurrencyCode,
		Category:          req.Category,
		PaymentMethod:     domain.PaymentMethod(req.PaymentMethod),
		BankAccountID:     req.BankAccountID,
		Status:            status,
		Description:       req.Description,
		ExchangeRate:      req.ExchangeRate,
		FunctionalAmount:  req.FunctionalAmount,
		CalculationMethod: calcMethod,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}
	if req.ExchangeRate != nil {
		txn.RateSource = domain.RateSourceDocument
	}

	if err := validateConversionRequest(calcMethod, req.ExchangeRate != nil, req.FunctionalAmount != nil); err != nil {
		return nil, err
	}
	if err := s.validateDocument(ctx, &txn); err != nil {
		return nil, err
	}
	s.normalizeConversionInputs(&txn)

	result, err := s.postingSvc.HandleChange(ctx, nil, &txn, domain.OperationCreate, actorID)
	if err != nil {
		logger.Error("Failed to create transaction", "error", err, "kind", string(kind))
		return nil, err
	}

	s.auditSvc.Record(ctx, "transactions", txn.TransactionID, domain.OperationCreate, nil, result.Transaction, actorID,
		fmt.Sprintf("%s created", kind))

	logger.Info("Transaction created", "transaction_id", txn.TransactionID, "number", result.Transaction.TransactionNumber, "kind", string(kind), "status", string(result.Transaction.Status))
	return result.Transaction, nil
}

func (s *transactionService) UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, actorID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	prior, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}

	next := *prior
	if req.Status != nil {
		nextStatus := domain.TransactionStatus(*req.Status)
		if !prior.Status.CanTransitionTo(nextStatus) {
			return nil, fmt.Errorf("%w: cannot transition status from %s to %s", apperrors.ErrConflict, prior.Status, nextStatus)
		}
		next.Status = nextStatus
	}
	if prior.Status == domain.StatusCancelled {
		// Cancelled is terminal; the document is frozen apart from deletion.
		return nil, fmt.Errorf("%w: cancelled transactions cannot be edited", apperrors.ErrConflict)
	}

	if req.TransactionDate != nil {
		transactionDate, err := time.Parse(dateLayout, *req.TransactionDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid transaction date '%s'", apperrors.ErrValidation, *req.TransactionDate)
		}
		next.TransactionDate = transactionDate
	}
	if req.Amount != nil {
		next.Amount = *req.Amount
	}
	if req.CurrencyCode != nil {
		next.CurrencyCode = *req.CurrencyCode
	}
	if req.Category != nil {
		next.Category = *req.Category
	}
	if req.PaymentMethod != nil {
		next.PaymentMethod = domain.PaymentMethod(*req.PaymentMethod)
	}
	if req.BankAccountID != nil {
		if *req.BankAccountID == "" {
			next.BankAccountID = nil
		} else {
			next.BankAccountID = req.BankAccountID
		}
	}
	if req.Description != nil {
		next.Description = *req.Description
	}
	if req.CalculationMethod != nil {
		next.CalculationMethod = domain.CalculationMethod(*req.CalculationMethod)
	}
	if req.ExchangeRate != nil {
		next.ExchangeRate = req.ExchangeRate
		next.RateSource = domain.RateSourceDocument
	} else if req.CurrencyCode != nil && *req.CurrencyCode != prior.CurrencyCode {
		// A document rate belongs to the pair it was captured for. On a
		// currency change without a fresh rate the store is consulted instead
		// of carrying the old pair's rate over.
		next.ExchangeRate = nil
		next.RateSource = ""
	}
	if req.FunctionalAmount != nil {
		next.FunctionalAmount = req.FunctionalAmount
	}

	if err := validateConversionRequest(next.CalculationMethod, req.ExchangeRate != nil, req.FunctionalAmount != nil); err != nil {
		return nil, err
	}
	if err := s.validateDocument(ctx, &next); err != nil {
		return nil, err
	}
	s.normalizeConversionInputs(&next)

	next.LastUpdatedAt = time.Now()
	next.LastUpdatedBy = actorID

	result, err := s.postingSvc.HandleChange(ctx, prior, &next, domain.OperationUpdate, actorID)
	if err != nil {
		logger.Error("Failed to update transaction", "error", err, "transaction_id", transactionID)
		return nil, err
	}

	s.auditSvc.Record(ctx, "transactions", transactionID, domain.OperationUpdate, prior, result.Transaction, actorID,
		fmt.Sprintf("%s updated", prior.Kind))

	logger.Info("Transaction updated", "transaction_id", transactionID, "status", string(result.Transaction.Status))
	return result.Transaction, nil
}

func (s *transactionService) DeleteTransaction(ctx context.Context, transactionID string, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	prior, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Hard deletes are idempotent.
			logger.Info("Transaction already deleted", "transaction_id", transactionID)
			return nil
		}
		return fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}

	if _, err := s.postingSvc.HandleChange(ctx, prior, nil, domain.OperationDelete, actorID); err != nil {
		logger.Error("Failed to delete transaction", "error", err, "transaction_id", transactionID)
		return err
	}

	s.auditSvc.Record(ctx, "transactions", transactionID, domain.OperationDelete, prior, nil, actorID,
		fmt.Sprintf("%s deleted", prior.Kind))

	logger.Info("Transaction deleted", "transaction_id", transactionID)
	return nil
}

// validateConversionRequest rejects a request that supplies the derived side
// of the conversion: only the calculation method's independent input may be
// given.
func validateConversionRequest(method domain.CalculationMethod, rateSupplied, functionalSupplied bool) error {
	switch method {
	case domain.FunctionalDrivesRate:
		if rateSupplied {
			return fmt.Errorf("%w: exchange rate cannot be supplied when the functional amount drives it", apperrors.ErrValidation)
		}
	default:
		if functionalSupplied {
			return fmt.Errorf("%w: functional amount is derived when the rate drives it", apperrors.ErrValidation)
		}
	}
	return nil
}

// validateDocument checks the cross-field rules DTO binding cannot express.
func (s *transactionService) validateDocument(ctx context.Context, txn *domain.Transaction) error {
	if txn.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	if _, err := s.currencySvc.GetCurrencyByCode(ctx, txn.CurrencyCode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: currency code '%s' not found", apperrors.ErrValidation, txn.CurrencyCode)
		}
		return fmt.Errorf("failed to validate currency '%s': %w", txn.CurrencyCode, err)
	}

	if txn.BankAccountID != nil {
		if txn.PaymentMethod == domain.MethodCash {
			return fmt.Errorf("%w: cash transactions cannot reference a bank account", apperrors.ErrValidation)
		}
		bankAccount, err := s.bankAccountSvc.GetBankAccountByID(ctx, *txn.BankAccountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: bank account '%s' not found", apperrors.ErrValidation, *txn.BankAccountID)
			}
			return fmt.Errorf("failed to validate bank account '%s': %w", *txn.BankAccountID, err)
		}
		if !bankAccount.IsActive {
			return fmt.Errorf("%w: bank account '%s' is deactivated", apperrors.ErrValidation, *txn.BankAccountID)
		}
	}

	if txn.ExchangeRate != nil && txn.ExchangeRate.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}
	if txn.FunctionalAmount != nil && txn.FunctionalAmount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: functional amount must be positive", apperrors.ErrValidation)
	}

	if txn.IsForeign(s.functionalCurrency) {
		if txn.CalculationMethod == domain.FunctionalDrivesRate && txn.FunctionalAmount == nil {
			return fmt.Errorf("%w: functional amount is required when it drives the rate", apperrors.ErrValidation)
		}
		return nil
	}

	// Functional-currency identity: rate is 1 and functional equals amount,
	// unconditionally. Conflicting inputs are rejected rather than ignored.
	if txn.ExchangeRate != nil && !txn.ExchangeRate.Equal(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: exchange rate must be 1 for %s transactions", apperrors.ErrValidation, s.functionalCurrency)
	}
	if txn.FunctionalAmount != nil && !txn.FunctionalAmount.Equal(txn.Amount) {
		return fmt.Errorf("%w: functional amount must equal amount for %s transactions", apperrors.ErrValidation, s.functionalCurrency)
	}
	return nil
}

// normalizeConversionInputs clears derived conversion fields so the posting
// pipeline recomputes them from the independent input, and pins the identity
// values for functional-currency documents.
func (s *transactionService) normalizeConversionInputs(txn *domain.Transaction) {
	if !txn.IsForeign(s.functionalCurrency) {
		one := decimal.NewFromInt(1)
		amount := txn.Amount
		txn.ExchangeRate = &one
		txn.FunctionalAmount = &amount
		txn.RateSource = ""
		return
	}

	switch txn.CalculationMethod {
	case domain.FunctionalDrivesRate:
		// The rate is derived from the functional amount at posting time.
		txn.ExchangeRate = nil
		txn.RateSource = domain.RateSourceDocument
	default:
		// The functional amount is derived; a non-document rate is stale
		// denormalized state and gets re-resolved from the store.
		txn.FunctionalAmount = nil
		if txn.RateSource != domain.RateSourceDocument {
			txn.ExchangeRate = nil
			txn.RateSource = ""
		}
	}
}
