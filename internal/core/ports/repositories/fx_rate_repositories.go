package repositories

import (
	"context"
	"time"

	"github.com/hishab-app/hishab_backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// FxRateReader defines read operations for exchange rate data
type FxRateReader interface {
	// FindRateOnOrBefore retrieves the newest active rate for the exact pair
	// with effectiveDate <= onOrBefore. Returns apperrors.ErrNotFound when no
	// such rate exists. Never triangulates or falls back to the inverse pair.
	FindRateOnOrBefore(ctx context.Context, fromCurrencyCode, toCurrencyCode string, onOrBefore time.Time) (*domain.FxRate, error)

	// FindRateByID retrieves a rate by its identifier.
	FindRateByID(ctx context.Context, rateID string) (*domain.FxRate, error)

	// FindRateByKey retrieves the rate for the exact (from, to, effectiveDate)
	// key regardless of active flag.
	FindRateByKey(ctx context.Context, fromCurrencyCode, toCurrencyCode string, effectiveDate time.Time) (*domain.FxRate, error)

	// ListRates retrieves a paginated rate listing, optionally filtered by
	// pair. Empty currency codes mean no filter.
	ListRates(ctx context.Context, fromCurrencyCode, toCurrencyCode string, limit int, offset int) ([]domain.FxRate, error)

	// CountFxSnapshots reports how many postings recorded a snapshot for the
	// given original currency on the given rate date.
	CountFxSnapshots(ctx context.Context, currencyCode string, rateDate time.Time) (int64, error)
}

// FxRateWriter defines write operations for exchange rate data
type FxRateWriter interface {
	// UpsertRate inserts the rate or updates the row holding the same
	// (from, to, effectiveDate) key, and returns the persisted row.
	UpsertRate(ctx context.Context, rate domain.FxRate) (*domain.FxRate, error)

	// UpsertRateInTx is UpsertRate inside an existing database transaction.
	UpsertRateInTx(ctx context.Context, tx pgx.Tx, rate domain.FxRate) error

	// DeactivateRate hides a rate from future lookups without deleting it.
	DeactivateRate(ctx context.Context, rateID string, actorID string, now time.Time) error

	// SaveFxSnapshotInTx appends a point-in-time rate trace inside an existing
	// database transaction.
	SaveFxSnapshotInTx(ctx context.Context, tx pgx.Tx, snapshot domain.FxSnapshot) error
}

// FxRateRepositoryFacade combines all rate-related repository interfaces
type FxRateRepositoryFacade interface {
	FxRateReader
	FxRateWriter
}

// FxRateRepositoryWithTx extends FxRateRepositoryFacade with transaction capabilities
type FxRateRepositoryWithTx interface {
	FxRateRepositoryFacade
	TransactionManager
}
