package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hishab-app/hishab_backend/internal/apperrors"
	"github.com/hishab-app/hishab_backend/internal/core/domain"
	portsrepo "github.com/hishab-app/hishab_backend/internal/core/ports/repositories"
	"github.com/hishab-app/hishab_backend/internal/models"
	"github.com/hishab-app/hishab_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxBankAccountRepository struct {
	BaseRepository
}

// newPgxBankAccountRepository creates a new repository for bank account data.
func newPgxBankAccountRepository(pool *pgxpool.Pool) portsrepo.BankAccountRepositoryWithTx {
	return &PgxBankAccountRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxBankAccountRepository implements portsrepo.BankAccountRepositoryWithTx
var _ portsrepo.BankAccountRepositoryWithTx = (*PgxBankAccountRepository)(nil)

const bankAccountColumns = `bank_account_id, name, account_number, bank_name, currency_code, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanBankAccount(row pgx.Row) (models.BankAccount, error) {
	var m models.BankAccount
	err := row.Scan(
		&m.BankAccountID,
		&m.Name,
		&m.AccountNumber,
		&m.BankName,
		&m.CurrencyCode,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveBankAccount inserts a new bank account into the database.
func (r *PgxBankAccountRepository) SaveBankAccount(ctx context.Context, bankAccount domain.BankAccount) error {
	modelBA := mapping.ToModelBankAccount(bankAccount)

	query := `
		INSERT INTO bank_accounts (bank_account_id, name, account_number, bank_name, currency_code, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		modelBA.BankAccountID,
		modelBA.Name,
		modelBA.AccountNumber,
		modelBA.BankName,
		modelBA.CurrencyCode,
		modelBA.IsActive,
		modelBA.CreatedAt,
		modelBA.CreatedBy,
		modelBA.LastUpdatedAt,
		modelBA.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bank account %s: %w", modelBA.BankAccountID, err)
	}
	return nil
}

// FindBankAccountByID retrieves a bank account by its identifier.
func (r *PgxBankAccountRepository) FindBankAccountByID(ctx context.Context, bankAccountID string) (*domain.BankAccount, error) {
	query := `SELECT ` + bankAccountColumns + ` FROM bank_accounts WHERE bank_account_id = $1;`

	modelBA, err := scanBankAccount(r.Pool.QueryRow(ctx, query, bankAccountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find bank account by ID %s: %w", bankAccountID, err)
	}

	domainBA := mapping.ToDomainBankAccount(modelBA)
	return &domainBA, nil
}

// ListBankAccounts retrieves a paginated list of bank accounts ordered by name.
func (r *PgxBankAccountRepository) ListBankAccounts(ctx context.Context, limit int, offset int) ([]domain.BankAccount, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + bankAccountColumns + ` FROM bank_accounts ORDER BY name, bank_account_id LIMIT $1 OFFSET $2;`

	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query bank accounts: %w", err)
	}
	defer rows.Close()

	modelBAs := []models.BankAccount{}
	for rows.Next() {
		modelBA, err := scanBankAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bank account row: %w", err)
		}
		modelBAs = append(modelBAs, modelBA)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bank account rows: %w", err)
	}

	return mapping.ToDomainBankAccountSlice(modelBAs), nil
}

// UpdateBankAccount updates an existing bank account's details.
func (r *PgxBankAccountRepository) UpdateBankAccount(ctx context.Context, bankAccount domain.BankAccount) error {
	modelBA := mapping.ToModelBankAccount(bankAccount)

	query := `
		UPDATE bank_accounts
		SET name = $2, account_number = $3, bank_name = $4, is_active = $5, last_updated_at = $6, last_updated_by = $7
		WHERE bank_account_id = $1;
	`
	// currency_code stays fixed: the account resolver keys the foreign/local
	// split off it, so flipping it would re-route future postings silently.

	cmdTag, err := r.Pool.Exec(ctx, query,
		modelBA.BankAccountID,
		modelBA.Name,
		modelBA.AccountNumber,
		modelBA.BankName,
		modelBA.IsActive,
		modelBA.LastUpdatedAt,
		modelBA.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to execute update bank account %s: %w", modelBA.BankAccountID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// DeactivateBankAccount marks a bank account as inactive.
func (r *PgxBankAccountRepository) DeactivateBankAccount(ctx context.Context, bankAccountID string, actorID string, now time.Time) error {
	query := `
		UPDATE bank_accounts
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE bank_account_id = $1 AND is_active = TRUE;
	`

	cmdTag, err := r.Pool.Exec(ctx, query, bankAccountID, now, actorID)
	if err != nil {
		return fmt.Errorf("failed to execute deactivate bank account %s: %w", bankAccountID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		_, findErr := r.FindBankAccountByID(ctx, bankAccountID)
		if errors.Is(findErr, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		} else if findErr != nil {
			return fmt.Errorf("failed to check bank account status after deactivation attempt for %s: %w", bankAccountID, findErr)
		}
		return nil
	}

	return nil
}
