package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/hishab-app/hishab_backend/internal/apperrors"
	"github.com/hishab-app/hishab_backend/internal/core/domain"
	portsrepo "github.com/hishab-app/hishab_backend/internal/core/ports/repositories"
	portssvc "github.com/hishab-app/hishab_backend/internal/core/ports/services"
	"github.com/hishab-app/hishab_backend/internal/middleware"
	"github.com/hishab-app/hishab_backend/internal/platform/catalog"
)

// accountResolver maps transaction facts to chart accounts through the
// account catalog. Unknown categories never fail: they resolve to the
// catalog's default expense code. A catalog code with no matching chart row
// is a provisioning fault, not user error.
type accountResolver struct {
	catalog            *catalog.Catalog
	accountRepo        portsrepo.AccountRepositoryFacade
	bankAccountRepo    portsrepo.BankAccountRepositoryFacade
	functionalCurrency string
}

// NewAccountResolver creates a new account resolver.
func NewAccountResolver(cat *catalog.Catalog, accountRepo portsrepo.AccountRepositoryFacade, bankAccountRepo portsrepo.BankAccountRepositoryFacade, functionalCurrency string) portssvc.AccountResolverSvc {
	return &accountResolver{
		catalog:            cat,
		accountRepo:        accountRepo,
		bankAccountRepo:    bankAccountRepo,
		functionalCurrency: functionalCurrency,
	}
}

var _ portssvc.AccountResolverSvc = (*accountResolver)(nil)

func (r *accountResolver) ResolveExpenseAccounts(ctx context.Context, category string, method domain.PaymentMethod, bankAccountID *string) (domain.Account, domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	expenseCode := r.catalog.ExpenseCode(category)
	if !r.catalog.HasCategory(category) && category != "" {
		logger.Debug("Unmapped expense category, using default account", "category", category, "code", expenseCode)
	}

	debit, err := r.chartAccount(ctx, expenseCode)
	if err != nil {
		return domain.Account{}, domain.Account{}, err
	}

	moneyCode, err := r.moneyAccountCode(ctx, method, bankAccountID)
	if err != nil {
		return domain.Account{}, domain.Account{}, err
	}
	credit, err := r.chartAccount(ctx, moneyCode)
	if err != nil {
		return domain.Account{}, domain.Account{}, err
	}

	return debit, credit, nil
}

func (r *accountResolver) ResolvePaymentAccounts(ctx context.Context, method domain.PaymentMethod, bankAccountID *string) (domain.Account, domain.Account, error) {
	moneyCode, err := r.moneyAccountCode(ctx, method, bankAccountID)
	if err != nil {
		return domain.Account{}, domain.Account{}, err
	}
	debit, err := r.chartAccount(ctx, moneyCode)
	if err != nil {
		return domain.Account{}, domain.Account{}, err
	}

	credit, err := r.chartAccount(ctx, r.catalog.ReceivableCode())
	if err != nil {
		return domain.Account{}, domain.Account{}, err
	}

	return debit, credit, nil
}

// moneyAccountCode picks the cash or bank chart code for the settling side.
// Bank-settled methods route to the local or foreign bank account code based
// on the bank account's own currency.
func (r *accountResolver) moneyAccountCode(ctx context.Context, method domain.PaymentMethod, bankAccountID *string) (string, error) {
	if method == domain.MethodCash {
		return r.catalog.CashCode(), nil
	}

	if bankAccountID == nil || *bankAccountID == "" {
		return r.catalog.BankLocalCode(), nil
	}

	bankAccount, err := r.bankAccountRepo.FindBankAccountByID(ctx, *bankAccountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("%w: bank account '%s' not found", apperrors.ErrValidation, *bankAccountID)
		}
		return "", fmt.Errorf("failed to load bank account '%s': %w", *bankAccountID, err)
	}

	if bankAccount.CurrencyCode != r.functionalCurrency {
		return r.catalog.BankForeignCode(), nil
	}
	return r.catalog.BankLocalCode(), nil
}

func (r *accountResolver) chartAccount(ctx context.Context, code string) (domain.Account, error) {
	account, err := r.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.Account{}, fmt.Errorf("%w: chart account '%s' is not provisioned", apperrors.ErrInternal, code)
		}
		return domain.Account{}, fmt.Errorf("failed to load chart account '%s': %w", code, err)
	}
	if !account.IsActive {
		return domain.Account{}, fmt.Errorf("%w: chart account '%s' is deactivated", apperrors.ErrInternal, code)
	}
	return *account, nil
}
