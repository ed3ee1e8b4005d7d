package services

import (
	"context"
	"time"

	"github.com/hishab-app/hishab_backend/internal/core/domain"
	"github.com/hishab-app/hishab_backend/internal/dto"
)

// FxRateReaderSvc defines read operations for exchange rate data
type FxRateReaderSvc interface {
	// GetRate resolves the applicable rate for the pair on or before the given
	// date: the newest active rate wins, a same-currency pair resolves to the
	// identity rate, and a missing rate returns apperrors.ErrMissingRate
	// naming the pair and date.
	GetRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string, onOrBefore time.Time) (*domain.FxRate, error)

	// GetRateByID retrieves a rate by its identifier.
	GetRateByID(ctx context.Context, rateID string) (*domain.FxRate, error)

	// ListRates retrieves a paginated rate listing.
	ListRates(ctx context.Context, params dto.ListFxRatesParams) (*dto.ListFxRatesResponse, error)
}

// FxRateWriterSvc defines write operations for exchange rate data
type FxRateWriterSvc interface {
	// UpsertRate inserts or updates the rate for the exact
	// (from, to, effectiveDate) key and audits the change. The returned warning
	// is non-nil when postings already recorded snapshots against that date;
	// those postings are never retroactively adjusted.
	UpsertRate(ctx context.Context, req dto.UpsertFxRateRequest, actorID string) (*domain.FxRate, *string, error)

	// DeactivateRate hides a rate from future lookups, audited.
	DeactivateRate(ctx context.Context, rateID string, actorID string) error
}

// FxRateSvcFacade combines all rate-related service interfaces
type FxRateSvcFacade interface {
	FxRateReaderSvc
	FxRateWriterSvc
}
