package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/hishab-app/hishab_backend/internal/apperrors"
	"github.com/hishab-app/hishab_backend/internal/core/domain"
	portsrepo "github.com/hishab-app/hishab_backend/internal/core/ports/repositories"
	"github.com/hishab-app/hishab_backend/internal/models"
	"github.com/hishab-app/hishab_backend/internal/utils/mapping"
	"github.com/hishab-app/hishab_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxTransactionRepository persists source documents (expenses and payments).
// All writes go through an externally owned pgx transaction so the document
// row commits or rolls back together with its journal side effects.
type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for source transaction data.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryWithTx {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryWithTx
var _ portsrepo.TransactionRepositoryWithTx = (*PgxTransactionRepository)(nil)

const transactionColumns = `transaction_id, transaction_number, kind, transaction_date, amount, currency_code, category, payment_method, bank_account_id, status, description, exchange_rate, functional_amount, calculation_method, rate_source, journal_entry_id, created_at, created_by, last_updated_at, last_updated_by`

// scanTransaction scans one transactions row. bank_account_id, exchange_rate,
// functional_amount, rate_source and journal_entry_id are nullable until the
// document is first posted.
func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	var bankAccountID, rateSource, journalEntryID sql.NullString
	var exchangeRate, functionalAmount decimal.NullDecimal
	err := row.Scan(
		&m.TransactionID,
		&m.TransactionNumber,
		&m.Kind,
		&m.TransactionDate,
		&m.Amount,
		&m.CurrencyCode,
		&m.Category,
		&m.PaymentMethod,
		&bankAccountID,
		&m.Status,
		&m.Description,
		&exchangeRate,
		&functionalAmount,
		&m.CalculationMethod,
		&rateSource,
		&journalEntryID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return m, err
	}
	if bankAccountID.Valid {
		m.BankAccountID = &bankAccountID.String
	}
	if exchangeRate.Valid {
		m.ExchangeRate = &exchangeRate.Decimal
	}
	if functionalAmount.Valid {
		m.FunctionalAmount = &functionalAmount.Decimal
	}
	if rateSource.Valid {
		m.RateSource = rateSource.String
	}
	if journalEntryID.Valid {
		m.JournalEntryID = &journalEntryID.String
	}
	return m, nil
}

// FindTransactionByID retrieves a transaction by its identifier.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`

	modelTxn, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction by ID "+transactionID, err)
	}

	domainTxn := mapping.ToDomainTransaction(modelTxn)
	return &domainTxn, nil
}

// FindTransactionByIDForUpdate selects the transaction row and locks it until
// the surrounding database transaction ends. Concurrent state changes for the
// same document queue up here instead of double-posting.
func (r *PgxTransactionRepository) FindTransactionByIDForUpdate(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1 FOR UPDATE;`

	modelTxn, err := scanTransaction(tx.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to lock transaction "+transactionID, err)
	}

	domainTxn := mapping.ToDomainTransaction(modelTxn)
	return &domainTxn, nil
}

// ListTransactions retrieves a paginated list of one kind of transaction using
// token-based pagination, newest first. A nil status means all statuses.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, kind domain.TransactionKind, status *domain.TransactionStatus, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to know whether a next page exists.
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + transactionColumns + ` FROM transactions WHERE kind = $1`
	args := []interface{}{string(kind)}

	if status != nil {
		args = append(args, string(*status))
		baseQuery += ` AND status = $` + strconv.Itoa(len(args))
	}

	// Ordering must be stable across pages: transaction_date with created_at
	// as the tie-breaker, matching the cursor tuple.
	orderByClause := `ORDER BY transaction_date DESC, created_at DESC`

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastDate, lastCreatedAt)
		baseQuery += ` AND (transaction_date, created_at) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query := baseQuery + ` ` + orderByClause + ` LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query transactions of kind "+string(kind), err)
	}
	defer rows.Close()

	modelTxns := make([]models.Transaction, 0, fetchLimit)
	for rows.Next() {
		modelTxn, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan transaction row", err)
		}
		modelTxns = append(modelTxns, modelTxn)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating transaction rows", err)
	}

	var nextTokenVal *string
	if len(modelTxns) > limit {
		last := modelTxns[limit-1]
		token := pagination.EncodeToken(last.TransactionDate, last.CreatedAt)
		nextTokenVal = &token
		modelTxns = modelTxns[:limit]
	}

	return mapping.ToDomainTransactionSlice(modelTxns), nextTokenVal, nil
}

// SaveTransactionInTx inserts a new transaction row inside an existing
// database transaction.
func (r *PgxTransactionRepository) SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	modelTxn := mapping.ToModelTransaction(txn)

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
	`
	_, err := tx.Exec(ctx, query,
		modelTxn.TransactionID,
		modelTxn.TransactionNumber,
		modelTxn.Kind,
		modelTxn.TransactionDate,
		modelTxn.Amount,
		modelTxn.CurrencyCode,
		modelTxn.Category,
		modelTxn.PaymentMethod,
		modelTxn.BankAccountID,
		modelTxn.Status,
		modelTxn.Description,
		modelTxn.ExchangeRate,
		modelTxn.FunctionalAmount,
		modelTxn.CalculationMethod,
		nullIfEmpty(modelTxn.RateSource),
		modelTxn.JournalEntryID,
		modelTxn.CreatedAt,
		modelTxn.CreatedBy,
		modelTxn.LastUpdatedAt,
		modelTxn.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert transaction "+modelTxn.TransactionID, err)
	}
	return nil
}

// UpdateTransactionInTx rewrites a transaction's mutable fields, including the
// denormalized posting results, inside an existing database transaction.
func (r *PgxTransactionRepository) UpdateTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	modelTxn := mapping.ToModelTransaction(txn)

	query := `
		UPDATE transactions
		SET transaction_date = $2, amount = $3, currency_code = $4, category = $5, payment_method = $6,
		    bank_account_id = $7, status = $8, description = $9, exchange_rate = $10, functional_amount = $11,
		    calculation_method = $12, rate_source = $13, journal_entry_id = $14, last_updated_at = $15, last_updated_by = $16
		WHERE transaction_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		modelTxn.TransactionID,
		modelTxn.TransactionDate,
		modelTxn.Amount,
		modelTxn.CurrencyCode,
		modelTxn.Category,
		modelTxn.PaymentMethod,
		modelTxn.BankAccountID,
		modelTxn.Status,
		modelTxn.Description,
		modelTxn.ExchangeRate,
		modelTxn.FunctionalAmount,
		modelTxn.CalculationMethod,
		nullIfEmpty(modelTxn.RateSource),
		modelTxn.JournalEntryID,
		modelTxn.LastUpdatedAt,
		modelTxn.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update transaction "+modelTxn.TransactionID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// DeleteTransactionInTx removes the transaction row. Journal entries and links
// reference the source by plain id, so ledger history survives the delete.
func (r *PgxTransactionRepository) DeleteTransactionInTx(ctx context.Context, tx pgx.Tx, transactionID string) error {
	query := `DELETE FROM transactions WHERE transaction_id = $1;`

	cmdTag, err := tx.Exec(ctx, query, transactionID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete transaction "+transactionID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
