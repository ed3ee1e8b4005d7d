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
)

// bankAccountService provides business logic for bank account reference data.
type bankAccountService struct {
	bankAccountRepo portsrepo.BankAccountRepositoryFacade
	currencySvc     portssvc.CurrencyReaderSvc
	auditSvc        portssvc.AuditSvc
}

// NewBankAccountService creates a new bank account service.
func NewBankAccountService(bankAccountRepo portsrepo.BankAccountRepositoryFacade, currencySvc portssvc.CurrencyReaderSvc, auditSvc portssvc.AuditSvc) portssvc.BankAccountSvcFacade {
	return &bankAccountService{
		bankAccountRepo: bankAccountRepo,
		currencySvc:     currencySvc,
		auditSvc:        auditSvc,
	}
}

var _ portssvc.BankAccountSvcFacade = (*bankAccountService)(nil)

func (s *bankAccountService) CreateBankAccount(ctx context.Context, req dto.CreateBankAccountRequest, actorID string) (*domain.BankAccount, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.currencySvc.GetCurrencyByCode(ctx, req.CurrencyCode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: currency code '%s' not found", apperrors.ErrValidation, req.CurrencyCode)
		}
		return nil, fmt.Errorf("failed to validate currency '%s': %w", req.CurrencyCode, err)
	}

	now := time.Now()
	bankAccount := domain.BankAccount{
		BankAccountID: uuid.NewString(),
		Name:          req.Name,
		AccountNumber: req.AccountNumber,
		BankName:      req.BankName,
		CurrencyCode:  req.CurrencyCode,
		IsActive:      true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.bankAccountRepo.SaveBankAccount(ctx, bankAccount); err != nil {
		logger.Error("Failed to save bank account", "error", err, "name", req.Name)
		return nil, fmt.Errorf("failed to create bank account: %w", err)
	}

	s.auditSvc.Record(ctx, "bank_accounts", bankAccount.BankAccountID, domain.OperationCreate, nil, bankAccount, actorID, "bank account created")

	logger.Info("Bank account created", "bank_account_id", bankAccount.BankAccountID)
	return &bankAccount, nil
}

func (s *bankAccountService) GetBankAccountByID(ctx context.Context, bankAccountID string) (*domain.BankAccount, error) {
	bankAccount, err := s.bankAccountRepo.FindBankAccountByID(ctx, bankAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bank account %s: %w", bankAccountID, err)
	}
	return bankAccount, nil
}

func (s *bankAccountService) ListBankAccounts(ctx context.Context, limit int, offset int) ([]domain.BankAccount, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	bankAccounts, err := s.bankAccountRepo.ListBankAccounts(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank accounts: %w", err)
	}
	if bankAccounts == nil {
		return []domain.BankAccount{}, nil
	}
	return bankAccounts, nil
}

func (s *bankAccountService) DeactivateBankAccount(ctx context.Context, bankAccountID string, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	bankAccount, err := s.bankAccountRepo.FindBankAccountByID(ctx, bankAccountID)
	if err != nil {
		return fmt.Errorf("failed to find bank account %s for deactivation: %w", bankAccountID, err)
	}
	if !bankAccount.IsActive {
		return nil
	}

	now := time.Now()
	if err := s.bankAccountRepo.DeactivateBankAccount(ctx, bankAccountID, actorID, now); err != nil {
		logger.Error("Failed to deactivate bank account", "error", err, "bank_account_id", bankAccountID)
		return fmt.Errorf("failed to deactivate bank account %s: %w", bankAccountID, err)
	}

	deactivated := *bankAccount
	deactivated.IsActive = false
	deactivated.LastUpdatedAt = now
	deactivated.LastUpdatedBy = actorID
	s.auditSvc.Record(ctx, "bank_accounts", bankAccountID, domain.OperationUpdate, bankAccount, deactivated, actorID, "bank account deactivated")

	logger.Info("Bank account deactivated", "bank_account_id", bankAccountID)
	return nil
}
