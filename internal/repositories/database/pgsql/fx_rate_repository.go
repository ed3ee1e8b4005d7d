package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hishab-app/hishab_backend/internal/apperrors"
	"github.com/hishab-app/hishab_backend/internal/core/domain"
	portsrepo "github.com/hishab-app/hishab_backend/internal/core/ports/repositories"
	"github.com/hishab-app/hishab_backend/internal/models"
	"github.com/hishab-app/hishab_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxFxRateRepository implements the rate store on pgxpool. Rates are
// versioned by (from, to, effective_date); the upserts are native ON CONFLICT
// statements so concurrent writers of the same key cannot race each other.
type PgxFxRateRepository struct {
	BaseRepository
}

// newPgxFxRateRepository creates a new repository for exchange rate data.
func newPgxFxRateRepository(pool *pgxpool.Pool) portsrepo.FxRateRepositoryWithTx {
	return &PgxFxRateRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxFxRateRepository implements portsrepo.FxRateRepositoryWithTx
var _ portsrepo.FxRateRepositoryWithTx = (*PgxFxRateRepository)(nil)

const fxRateColumns = `rate_id, from_currency_code, to_currency_code, rate, effective_date, source, notes, is_active, created_at, created_by, last_updated_at, last_updated_by`

const fxRateUpsert = `
	INSERT INTO fx_rates (rate_id, from_currency_code, to_currency_code, rate, effective_date, source, notes, is_active, created_at, created_by, last_updated_at, last_updated_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (from_currency_code, to_currency_code, effective_date) DO UPDATE SET
		rate = EXCLUDED.rate,
		source = EXCLUDED.source,
		notes = EXCLUDED.notes,
		is_active = EXCLUDED.is_active,
		last_updated_at = EXCLUDED.last_updated_at,
		last_updated_by = EXCLUDED.last_updated_by
`

func scanFxRate(row pgx.Row) (models.FxRate, error) {
	var m models.FxRate
	err := row.Scan(
		&m.RateID,
		&m.FromCurrencyCode,
		&m.ToCurrencyCode,
		&m.Rate,
		&m.EffectiveDate,
		&m.Source,
		&m.Notes,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindRateOnOrBefore retrieves the newest active rate for the exact pair with
// effective_date <= onOrBefore. There is no inverse-pair or triangulated
// fallback; a missing rate is the caller's signal to record one.
func (r *PgxFxRateRepository) FindRateOnOrBefore(ctx context.Context, fromCurrencyCode, toCurrencyCode string, onOrBefore time.Time) (*domain.FxRate, error) {
	fromCurrency := strings.ToUpper(fromCurrencyCode)
	toCurrency := strings.ToUpper(toCurrencyCode)

	query := `
		SELECT ` + fxRateColumns + `
		FROM fx_rates
		WHERE from_currency_code = $1 AND to_currency_code = $2 AND effective_date <= $3 AND is_active = TRUE
		ORDER BY effective_date DESC
		LIMIT 1;
	`

	modelRate, err := scanFxRate(r.Pool.QueryRow(ctx, query, fromCurrency, toCurrency, onOrBefore))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find rate "+fromCurrency+"->"+toCurrency, err)
	}

	domainRate := mapping.ToDomainFxRate(modelRate)
	return &domainRate, nil
}

// FindRateByID retrieves a rate by its identifier.
func (r *PgxFxRateRepository) FindRateByID(ctx context.Context, rateID string) (*domain.FxRate, error) {
	query := `SELECT ` + fxRateColumns + ` FROM fx_rates WHERE rate_id = $1;`

	modelRate, err := scanFxRate(r.Pool.QueryRow(ctx, query, rateID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("exchange rate with ID " + rateID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to get rate by ID "+rateID, err)
	}

	domainRate := mapping.ToDomainFxRate(modelRate)
	return &domainRate, nil
}

// FindRateByKey retrieves the rate for the exact (from, to, effectiveDate)
// key regardless of its active flag.
func (r *PgxFxRateRepository) FindRateByKey(ctx context.Context, fromCurrencyCode, toCurrencyCode string, effectiveDate time.Time) (*domain.FxRate, error) {
	query := `
		SELECT ` + fxRateColumns + `
		FROM fx_rates
		WHERE from_currency_code = $1 AND to_currency_code = $2 AND effective_date = $3;
	`

	modelRate, err := scanFxRate(r.Pool.QueryRow(ctx, query, strings.ToUpper(fromCurrencyCode), strings.ToUpper(toCurrencyCode), effectiveDate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find rate by key", err)
	}

	domainRate := mapping.ToDomainFxRate(modelRate)
	return &domainRate, nil
}

// ListRates retrieves a paginated rate listing with optional pair filtering.
func (r *PgxFxRateRepository) ListRates(ctx context.Context, fromCurrencyCode, toCurrencyCode string, limit int, offset int) ([]domain.FxRate, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	baseQuery := `SELECT ` + fxRateColumns + ` FROM fx_rates WHERE 1=1`
	args := []interface{}{}
	argNum := 1

	if fromCurrencyCode != "" {
		baseQuery += fmt.Sprintf(" AND from_currency_code = $%d", argNum)
		args = append(args, strings.ToUpper(fromCurrencyCode))
		argNum++
	}
	if toCurrencyCode != "" {
		baseQuery += fmt.Sprintf(" AND to_currency_code = $%d", argNum)
		args = append(args, strings.ToUpper(toCurrencyCode))
		argNum++
	}

	baseQuery += fmt.Sprintf(" ORDER BY from_currency_code, to_currency_code, effective_date DESC LIMIT $%d OFFSET $%d;", argNum, argNum+1)
	args = append(args, limit, offset)

	rows, err := r.Pool.Query(ctx, baseQuery, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list rates", err)
	}
	defer rows.Close()

	modelRates := []models.FxRate{}
	for rows.Next() {
		modelRate, err := scanFxRate(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan rate row", err)
		}
		modelRates = append(modelRates, modelRate)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating rate rows", err)
	}

	return mapping.ToDomainFxRateSlice(modelRates), nil
}

// CountFxSnapshots reports how many postings captured a snapshot for the given
// original currency on the given rate date.
func (r *PgxFxRateRepository) CountFxSnapshots(ctx context.Context, currencyCode string, rateDate time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM fx_snapshots WHERE currency_code = $1 AND rate_date = $2;`

	var count int64
	err := r.Pool.QueryRow(ctx, query, strings.ToUpper(currencyCode), rateDate).Scan(&count)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to count fx snapshots", err)
	}
	return count, nil
}

// UpsertRate inserts the rate or rewrites the row holding the same
// (from, to, effective_date) key, returning the persisted row. On update the
// original rate_id survives.
func (r *PgxFxRateRepository) UpsertRate(ctx context.Context, rate domain.FxRate) (*domain.FxRate, error) {
	modelRate := mapping.ToModelFxRate(rate)
	modelRate.FromCurrencyCode = strings.ToUpper(modelRate.FromCurrencyCode)
	modelRate.ToCurrencyCode = strings.ToUpper(modelRate.ToCurrencyCode)

	query := fxRateUpsert + ` RETURNING ` + fxRateColumns + `;`

	persisted, err := scanFxRate(r.Pool.QueryRow(ctx, query,
		modelRate.RateID,
		modelRate.FromCurrencyCode,
		modelRate.ToCurrencyCode,
		modelRate.Rate,
		modelRate.EffectiveDate,
		modelRate.Source,
		modelRate.Notes,
		modelRate.IsActive,
		modelRate.CreatedAt,
		modelRate.CreatedBy,
		modelRate.LastUpdatedAt,
		modelRate.LastUpdatedBy,
	))
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to upsert rate "+modelRate.FromCurrencyCode+"->"+modelRate.ToCurrencyCode, err)
	}

	domainRate := mapping.ToDomainFxRate(persisted)
	return &domainRate, nil
}

// UpsertRateInTx is UpsertRate inside an existing database transaction. Used
// by the posting pipeline to seed document-sourced rates alongside the entry.
func (r *PgxFxRateRepository) UpsertRateInTx(ctx context.Context, tx pgx.Tx, rate domain.FxRate) error {
	modelRate := mapping.ToModelFxRate(rate)
	modelRate.FromCurrencyCode = strings.ToUpper(modelRate.FromCurrencyCode)
	modelRate.ToCurrencyCode = strings.ToUpper(modelRate.ToCurrencyCode)

	_, err := tx.Exec(ctx, fxRateUpsert+`;`,
		modelRate.RateID,
		modelRate.FromCurrencyCode,
		modelRate.ToCurrencyCode,
		modelRate.Rate,
		modelRate.EffectiveDate,
		modelRate.Source,
		modelRate.Notes,
		modelRate.IsActive,
		modelRate.CreatedAt,
		modelRate.CreatedBy,
		modelRate.LastUpdatedAt,
		modelRate.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to upsert rate in tx "+modelRate.FromCurrencyCode+"->"+modelRate.ToCurrencyCode, err)
	}
	return nil
}

// DeactivateRate hides a rate from future lookups without deleting the row.
func (r *PgxFxRateRepository) DeactivateRate(ctx context.Context, rateID string, actorID string, now time.Time) error {
	query := `
		UPDATE fx_rates
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE rate_id = $1;
	`

	cmdTag, err := r.Pool.Exec(ctx, query, rateID, now, actorID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to deactivate rate "+rateID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// SaveFxSnapshotInTx appends a point-in-time rate trace inside an existing
// database transaction.
func (r *PgxFxRateRepository) SaveFxSnapshotInTx(ctx context.Context, tx pgx.Tx, snapshot domain.FxSnapshot) error {
	modelSnap := mapping.ToModelFxSnapshot(snapshot)

	query := `
		INSERT INTO fx_snapshots (snapshot_id, source_table, source_id, currency_code, rate, rate_date, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := tx.Exec(ctx, query,
		modelSnap.SnapshotID,
		modelSnap.SourceTable,
		modelSnap.SourceID,
		modelSnap.CurrencyCode,
		modelSnap.Rate,
		modelSnap.RateDate,
		modelSnap.CreatedAt,
		modelSnap.CreatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert fx snapshot for "+modelSnap.SourceID, err)
	}
	return nil
}
