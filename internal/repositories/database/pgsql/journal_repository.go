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
)

// PgxJournalRepository persists the auto-generated ledger. Entries and lines
// are insert-only; the newest auto_journal_links row per source decides which
// entry is currently active.
type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal entry data.
func newPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepositoryWithTx {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryWithTx
var _ portsrepo.JournalRepositoryWithTx = (*PgxJournalRepository)(nil)

const entryColumns = `entry_id, entry_number, entry_date, description, reference, total_debit, total_credit, status, source_type, source_id, is_auto_generated, is_reversal, reverses_entry_id, created_at, created_by, last_updated_at, last_updated_by`

// autoJournalLinkColumns excludes link_seq: the database assigns it and the
// queries only order by it.
const autoJournalLinkColumns = `link_id, source_table, source_id, entry_id, operation_type, is_reversal, created_at, created_by`

// scanEntry scans one journal_entries row. reverses_entry_id is only set on
// reversal entries.
func scanEntry(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	var reversesEntryID sql.NullString
	err := row.Scan(
		&m.EntryID,
		&m.EntryNumber,
		&m.EntryDate,
		&m.Description,
		&m.Reference,
		&m.TotalDebit,
		&m.TotalCredit,
		&m.Status,
		&m.SourceType,
		&m.SourceID,
		&m.IsAutoGenerated,
		&m.IsReversal,
		&reversesEntryID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return m, err
	}
	if reversesEntryID.Valid {
		m.ReversesEntryID = &reversesEntryID.String
	}
	return m, nil
}

// FindEntryByID retrieves an entry header by its identifier.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`

	modelEntry, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find journal entry by ID "+entryID, err)
	}

	domainEntry := mapping.ToDomainJournalEntry(modelEntry)
	return &domainEntry, nil
}

// FindLinesByEntryID retrieves an entry's lines ordered by line number.
func (r *PgxJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalEntryLine, error) {
	query := `
		SELECT line_id, entry_id, line_no, account_code, account_name, account_type,
		       debit_amount, credit_amount, functional_debit, functional_credit,
		       original_currency, original_amount, fx_rate_used, description,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM journal_entry_lines
		WHERE entry_id = $1
		ORDER BY line_no;
	`
	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for entry "+entryID, err)
	}
	defer rows.Close()

	lines := []models.JournalEntryLine{}
	for rows.Next() {
		var l models.JournalEntryLine
		err := rows.Scan(
			&l.LineID,
			&l.EntryID,
			&l.LineNo,
			&l.AccountCode,
			&l.AccountName,
			&l.AccountType,
			&l.DebitAmount,
			&l.CreditAmount,
			&l.FunctionalDebit,
			&l.FunctionalCredit,
			&l.OriginalCurrency,
			&l.OriginalAmount,
			&l.FxRateUsed,
			&l.Description,
			&l.CreatedAt,
			&l.CreatedBy,
			&l.LastUpdatedAt,
			&l.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line row for entry "+entryID, err)
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line rows for entry "+entryID, err)
	}

	return mapping.ToDomainJournalEntryLineSlice(lines), nil
}

// ListEntries retrieves a paginated list of entries using token-based
// pagination, newest first. includeReversals=false hides reversal entries.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, limit int, nextToken *string, includeReversals bool) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to know whether a next page exists.
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + entryColumns + ` FROM journal_entries WHERE status = 'posted'`
	if !includeReversals {
		baseQuery += ` AND is_reversal = FALSE`
	}

	// Stable ordering: entry_date with created_at as the tie-breaker, matching
	// the cursor tuple.
	orderByClause := `ORDER BY entry_date DESC, created_at DESC`

	args := []interface{}{}
	if nextToken != nil && *nextToken != "" {
		lastEntryDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastEntryDate, lastCreatedAt)
		baseQuery += ` AND (entry_date, created_at) < ($1, $2)`
	}

	args = append(args, fetchLimit)
	query := baseQuery + ` ` + orderByClause + ` LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query journal entries", err)
	}
	defer rows.Close()

	modelEntries := make([]models.JournalEntry, 0, fetchLimit)
	for rows.Next() {
		modelEntry, err := scanEntry(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan journal entry row", err)
		}
		modelEntries = append(modelEntries, modelEntry)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating journal entry rows", err)
	}

	var nextTokenVal *string
	if len(modelEntries) > limit {
		last := modelEntries[limit-1]
		token := pagination.EncodeToken(last.EntryDate, last.CreatedAt)
		nextTokenVal = &token
		modelEntries = modelEntries[:limit]
	}

	return mapping.ToDomainJournalEntrySlice(modelEntries), nextTokenVal, nil
}

// FindNewestLinkBySource retrieves the most recent auto-journal link for a
// source document. link_seq breaks ties when a reversal and a repost land in
// the same posting unit with identical timestamps.
func (r *PgxJournalRepository) FindNewestLinkBySource(ctx context.Context, sourceTable, sourceID string) (*domain.AutoJournalLink, error) {
	query := `
		SELECT ` + autoJournalLinkColumns + `
		FROM auto_journal_links
		WHERE source_table = $1 AND source_id = $2
		ORDER BY link_seq DESC
		LIMIT 1;
	`
	var m models.AutoJournalLink
	err := r.Pool.QueryRow(ctx, query, sourceTable, sourceID).Scan(
		&m.LinkID,
		&m.SourceTable,
		&m.SourceID,
		&m.EntryID,
		&m.OperationType,
		&m.IsReversal,
		&m.CreatedAt,
		&m.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find newest link for "+sourceTable+"/"+sourceID, err)
	}

	domainLink := mapping.ToDomainAutoJournalLink(m)
	return &domainLink, nil
}

// SaveEntryInTx inserts the entry header and its lines inside an existing
// database transaction.
func (r *PgxJournalRepository) SaveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.JournalEntryLine) error {
	modelEntry := mapping.ToModelJournalEntry(entry)

	entryQuery := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := tx.Exec(ctx, entryQuery,
		modelEntry.EntryID,
		modelEntry.EntryNumber,
		modelEntry.EntryDate,
		modelEntry.Description,
		modelEntry.Reference,
		modelEntry.TotalDebit,
		modelEntry.TotalCredit,
		modelEntry.Status,
		modelEntry.SourceType,
		modelEntry.SourceID,
		modelEntry.IsAutoGenerated,
		modelEntry.IsReversal,
		modelEntry.ReversesEntryID,
		modelEntry.CreatedAt,
		modelEntry.CreatedBy,
		modelEntry.LastUpdatedAt,
		modelEntry.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert journal entry "+modelEntry.EntryID, err)
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO journal_entry_lines (line_id, entry_id, line_no, account_code, account_name, account_type,
			debit_amount, credit_amount, functional_debit, functional_credit,
			original_currency, original_amount, fx_rate_used, description,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	for _, line := range lines {
		modelLine := mapping.ToModelJournalEntryLine(line)
		batch.Queue(lineQuery,
			modelLine.LineID,
			modelLine.EntryID,
			modelLine.LineNo,
			modelLine.AccountCode,
			modelLine.AccountName,
			modelLine.AccountType,
			modelLine.DebitAmount,
			modelLine.CreditAmount,
			modelLine.FunctionalDebit,
			modelLine.FunctionalCredit,
			modelLine.OriginalCurrency,
			modelLine.OriginalAmount,
			modelLine.FxRateUsed,
			modelLine.Description,
			modelLine.CreatedAt,
			modelLine.CreatedBy,
			modelLine.LastUpdatedAt,
			modelLine.LastUpdatedBy,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to execute line batch for entry "+modelEntry.EntryID, err)
	}

	return nil
}

// SaveLinkInTx appends an auto-journal link inside an existing database
// transaction. link_seq is assigned by the database.
func (r *PgxJournalRepository) SaveLinkInTx(ctx context.Context, tx pgx.Tx, link domain.AutoJournalLink) error {
	modelLink := mapping.ToModelAutoJournalLink(link)

	query := `
		INSERT INTO auto_journal_links (` + autoJournalLinkColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := tx.Exec(ctx, query,
		modelLink.LinkID,
		modelLink.SourceTable,
		modelLink.SourceID,
		modelLink.EntryID,
		modelLink.OperationType,
		modelLink.IsReversal,
		modelLink.CreatedAt,
		modelLink.CreatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert journal link "+modelLink.LinkID, err)
	}
	return nil
}
